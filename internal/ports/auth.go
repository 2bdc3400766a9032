package ports

// Package ports defines interfaces (hexagonal ports) for auth-related behavior.
// Implementations live in internal/adapters; orchestration in internal/service.

import (
	"context"
	"errors"
	"time"

	domainauth "github.com/estatehub/estate-api/internal/domain/auth"
	"github.com/estatehub/estate-api/internal/domain/model"
)

var (
	// ErrSessionNotFound means there is no live session for the subject.
	// It is a normal "not logged in" outcome, never an infrastructure fault.
	ErrSessionNotFound = errors.New("session not found")
	// ErrUserNotFound is returned by UserLookup when no user has the given id.
	ErrUserNotFound = errors.New("user not found")
)

// TokenCodec signs and verifies identity tokens, one key pair per kind.
type TokenCodec interface {
	// Issue returns a signed token for subject that expires after ttl.
	Issue(subject string, kind domainauth.TokenKind, ttl time.Duration) (string, error)
	// Verify checks the token against the public key for kind and returns its subject.
	// Failures wrap domainauth.ErrTokenMalformed, ErrTokenInvalidSignature or ErrTokenExpired.
	Verify(token string, kind domainauth.TokenKind) (string, error)
}

// SessionStore persists one live session per subject with a store-enforced TTL.
type SessionStore interface {
	// Put overwrites any existing session for subject and resets its TTL.
	Put(ctx context.Context, subject string, snapshot domainauth.Session, ttl time.Duration) error
	// Get returns ErrSessionNotFound when absent. Transport failures are
	// reported as apperrors.StoreUnavailable, never as absent.
	Get(ctx context.Context, subject string) (domainauth.Session, error)
	// Delete is idempotent.
	Delete(ctx context.Context, subject string) error
}

// UserLookup loads the current user record by id.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
}

// CredentialVerifier maps (email, password) to a user or apperrors.InvalidCredentials.
type CredentialVerifier interface {
	VerifyCredentials(ctx context.Context, email, password string) (*model.User, error)
}

// PasswordHasher hashes and compares secrets.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}
