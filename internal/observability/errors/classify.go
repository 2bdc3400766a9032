// Package errors turns arbitrary errors into short, low-cardinality class names for metric tags.
package errors

import (
	goerrors "errors"
	"reflect"
	"strings"

	domainauth "github.com/estatehub/estate-api/internal/domain/auth"
	apperrors "github.com/estatehub/estate-api/internal/errors"
)

var tokenClasses = []struct {
	err   error
	class string
}{
	{domainauth.ErrTokenExpired, "token_expired"},
	{domainauth.ErrTokenInvalidSignature, "token_invalid_signature"},
	{domainauth.ErrTokenMalformed, "token_malformed"},
}

// Classify returns a normalized error class suitable for tagging metrics and logs.
// Token sentinels and application error codes win; anything else is named after
// its innermost concrete type.
func Classify(err error) string {
	if err == nil {
		return ""
	}

	for _, tc := range tokenClasses {
		if goerrors.Is(err, tc.err) {
			return tc.class
		}
	}
	if code := apperrors.GetCode(err); code != "" {
		// refresh_failed is opaque to callers; the cause is the useful tag.
		var appErr *apperrors.AppError
		if code == apperrors.ErrCodeRefreshFailed && goerrors.As(err, &appErr) && appErr.Cause != nil {
			if inner := Classify(appErr.Cause); inner != "" {
				return inner
			}
		}
		return string(code)
	}

	for {
		unwrapped := goerrors.Unwrap(err)
		if unwrapped == nil {
			break
		}
		err = unwrapped
	}

	t := reflect.TypeOf(err)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "unknown"
	}

	name := strings.ToLower(strings.ReplaceAll(t.String(), "*", ""))
	name = strings.ReplaceAll(name, ".", "_")
	if name == "" {
		return "unknown"
	}
	return name
}
