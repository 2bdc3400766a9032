// Package errors defines the application error type shared by repositories,
// services and the HTTP layer. The HTTP layer maps Code to a status and
// renders Message to clients; Cause is for logs only.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes an AppError.
type ErrorCode string

const (
	ErrCodeNotFound   ErrorCode = "not_found"
	ErrCodeConflict   ErrorCode = "conflict"
	ErrCodeValidation ErrorCode = "validation"
	ErrCodeForeignKey ErrorCode = "foreign_key"
	ErrCodeInternal   ErrorCode = "internal"
	ErrCodeTimeout    ErrorCode = "timeout"
	ErrCodeCanceled   ErrorCode = "canceled"

	// ErrCodeUnauthenticated: the request carries no usable identity (401).
	ErrCodeUnauthenticated ErrorCode = "unauthenticated"
	// ErrCodeForbidden: an identity without the required role or ownership (403).
	ErrCodeForbidden ErrorCode = "forbidden"
	// ErrCodeInvalidCredentials never says which of email or password was wrong.
	ErrCodeInvalidCredentials ErrorCode = "invalid_credentials"
	// ErrCodeRefreshFailed means the client has to log in again.
	ErrCodeRefreshFailed ErrorCode = "refresh_failed"
	// ErrCodeStoreUnavailable means the session store could not be reached.
	ErrCodeStoreUnavailable ErrorCode = "store_unavailable"
)

const (
	msgInvalidCredentials = "Wrong email or password"
	msgRefreshFailed      = "Could not refresh access token"
	msgStoreUnavailable   = "session store unavailable"
)

// AppError carries a code, a client-facing message, and optionally the
// offending field and the underlying cause.
type AppError struct {
	Code    ErrorCode
	Message string
	Field   string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Cause)
}

func (e *AppError) Unwrap() error { return e.Cause }

func newErr(code ErrorCode, msg string) *AppError {
	return &AppError{Code: code, Message: msg}
}

func NotFound(message string) *AppError { return newErr(ErrCodeNotFound, message) }
func Conflict(message string) *AppError { return newErr(ErrCodeConflict, message) }
func Validation(message string) *AppError { return newErr(ErrCodeValidation, message) }
func Unauthenticated(message string) *AppError { return newErr(ErrCodeUnauthenticated, message) }
func Forbidden(message string) *AppError { return newErr(ErrCodeForbidden, message) }

// ValidationField is a Validation error naming the input field at fault.
func ValidationField(field, message string) *AppError {
	e := newErr(ErrCodeValidation, message)
	e.Field = field
	return e
}

// InvalidCredentials is the single login failure for unknown email and wrong password alike.
func InvalidCredentials() *AppError {
	return newErr(ErrCodeInvalidCredentials, msgInvalidCredentials)
}

// RefreshFailed hides cause from the client.
func RefreshFailed(cause error) *AppError {
	return Wrap(cause, ErrCodeRefreshFailed, msgRefreshFailed)
}

func StoreUnavailable(cause error) *AppError {
	return Wrap(cause, ErrCodeStoreUnavailable, msgStoreUnavailable)
}

// Wrap attaches code and message to err. A nil err yields an AppError without a cause.
func Wrap(err error, code ErrorCode, message string) *AppError {
	e := newErr(code, message)
	e.Cause = err
	return e
}

func asApp(err error) (*AppError, bool) {
	var appErr *AppError
	ok := errors.As(err, &appErr)
	return appErr, ok
}

// GetCode returns the code of the outermost AppError in err's chain, or "".
func GetCode(err error) ErrorCode {
	if appErr, ok := asApp(err); ok {
		return appErr.Code
	}
	return ""
}

// GetField returns the field of the outermost AppError in err's chain, or "".
func GetField(err error) string {
	if appErr, ok := asApp(err); ok {
		return appErr.Field
	}
	return ""
}

// HasCode reports whether the outermost AppError in err's chain has code.
func HasCode(err error, code ErrorCode) bool {
	return err != nil && GetCode(err) == code
}

func IsNotFound(err error) bool { return HasCode(err, ErrCodeNotFound) }
func IsConflict(err error) bool { return HasCode(err, ErrCodeConflict) }
func IsValidation(err error) bool { return HasCode(err, ErrCodeValidation) }
func IsInternal(err error) bool { return HasCode(err, ErrCodeInternal) }
func IsUnauthenticated(err error) bool { return HasCode(err, ErrCodeUnauthenticated) }
func IsForbidden(err error) bool { return HasCode(err, ErrCodeForbidden) }
func IsInvalidCredentials(err error) bool { return HasCode(err, ErrCodeInvalidCredentials) }
func IsRefreshFailed(err error) bool { return HasCode(err, ErrCodeRefreshFailed) }
func IsStoreUnavailable(err error) bool { return HasCode(err, ErrCodeStoreUnavailable) }
