package auth

import "errors"

// Token verification failures. Codecs wrap these so callers can match with errors.Is.
var (
	ErrTokenMalformed        = errors.New("token malformed")
	ErrTokenInvalidSignature = errors.New("token signature invalid")
	ErrTokenExpired          = errors.New("token expired")
)
