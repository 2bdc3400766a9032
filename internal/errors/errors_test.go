package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestAppErrorMessageAndCause(t *testing.T) {
	cause := errors.New("dial tcp: refused")

	plain := NotFound("property not found")
	if got := plain.Error(); got != "property not found" {
		t.Errorf("Error() = %q", got)
	}
	if plain.Unwrap() != nil {
		t.Error("expected no cause")
	}

	wrapped := StoreUnavailable(cause)
	if got := wrapped.Error(); got != "session store unavailable: dial tcp: refused" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(wrapped, cause) {
		t.Error("errors.Is should reach the cause")
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		code ErrorCode
		msg  string
	}{
		{"not found", NotFound("nope"), ErrCodeNotFound, "nope"},
		{"conflict", Conflict("dup"), ErrCodeConflict, "dup"},
		{"validation", Validation("bad"), ErrCodeValidation, "bad"},
		{"unauthenticated", Unauthenticated("who"), ErrCodeUnauthenticated, "who"},
		{"forbidden", Forbidden("no"), ErrCodeForbidden, "no"},
		{"invalid credentials", InvalidCredentials(), ErrCodeInvalidCredentials, "Wrong email or password"},
		{"refresh failed", RefreshFailed(errors.New("expired")), ErrCodeRefreshFailed, "Could not refresh access token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code || tt.err.Message != tt.msg {
				t.Errorf("got (%s, %q), want (%s, %q)", tt.err.Code, tt.err.Message, tt.code, tt.msg)
			}
		})
	}
}

func TestValidationFieldCarriesField(t *testing.T) {
	err := fmt.Errorf("register: %w", ValidationField("email", "Invalid email"))

	if !IsValidation(err) {
		t.Fatalf("expected validation, got %q", GetCode(err))
	}
	if got := GetField(err); got != "email" {
		t.Errorf("GetField() = %q, want email", got)
	}
}

func TestRefreshFailedHidesCauseFromMessage(t *testing.T) {
	err := RefreshFailed(errors.New("token is expired"))
	if err.Message != msgRefreshFailed {
		t.Errorf("Message = %q", err.Message)
	}
	if RefreshFailed(nil).Cause != nil {
		t.Error("nil cause should stay nil")
	}
}

func TestPredicatesFollowWrapChain(t *testing.T) {
	preds := map[ErrorCode]func(error) bool{
		ErrCodeNotFound:           IsNotFound,
		ErrCodeConflict:           IsConflict,
		ErrCodeValidation:         IsValidation,
		ErrCodeInternal:           IsInternal,
		ErrCodeUnauthenticated:    IsUnauthenticated,
		ErrCodeForbidden:          IsForbidden,
		ErrCodeInvalidCredentials: IsInvalidCredentials,
		ErrCodeRefreshFailed:      IsRefreshFailed,
		ErrCodeStoreUnavailable:   IsStoreUnavailable,
	}
	for code, pred := range preds {
		t.Run(string(code), func(t *testing.T) {
			err := fmt.Errorf("outer: %w", Wrap(errors.New("inner"), code, "msg"))
			if !pred(err) {
				t.Errorf("predicate for %s did not match", code)
			}
			other := Wrap(errors.New("inner"), "something_else", "msg")
			if pred(other) {
				t.Errorf("predicate for %s matched another code", code)
			}
			if pred(nil) {
				t.Errorf("predicate for %s matched nil", code)
			}
		})
	}
}

func TestGetCodeOnPlainErrors(t *testing.T) {
	if code := GetCode(errors.New("plain")); code != "" {
		t.Errorf("GetCode() = %q, want empty", code)
	}
	if field := GetField(nil); field != "" {
		t.Errorf("GetField(nil) = %q, want empty", field)
	}
}

func TestOutermostAppErrorWins(t *testing.T) {
	inner := NotFound("user not found")
	outer := Wrap(inner, ErrCodeRefreshFailed, "Could not refresh access token")

	if GetCode(outer) != ErrCodeRefreshFailed {
		t.Errorf("GetCode() = %q", GetCode(outer))
	}
	if !errors.Is(outer, inner) {
		t.Error("inner error should remain reachable")
	}
}
