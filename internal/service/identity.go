package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	domainauth "github.com/estatehub/estate-api/internal/domain/auth"
	"github.com/estatehub/estate-api/internal/domain/model"
	apperrors "github.com/estatehub/estate-api/internal/errors"
	"github.com/estatehub/estate-api/internal/ports"
)

// AuthContext is the request-scoped identity. A nil User means anonymous.
type AuthContext struct {
	User *model.User
}

// Authenticated reports whether a user was resolved.
func (a AuthContext) Authenticated() bool { return a.User != nil }

// Role returns the resolved user's role, or "" when anonymous.
func (a AuthContext) Role() domainauth.Role {
	if a.User == nil {
		return ""
	}
	return a.User.Role
}

// UserID returns the resolved user's id, or "" when anonymous.
func (a AuthContext) UserID() string {
	if a.User == nil {
		return ""
	}
	return a.User.ID
}

// IdentityResolverOptions groups dependencies for IdentityResolver.
type IdentityResolverOptions struct {
	Tokens   ports.TokenCodec
	Sessions ports.SessionStore
	Users    ports.UserLookup
	Logger   *slog.Logger
}

// IdentityResolver turns a presented access token into an AuthContext.
// It only reads; cookies and sessions are never written here.
type IdentityResolver struct {
	tokens   ports.TokenCodec
	sessions ports.SessionStore
	users    ports.UserLookup
	logger   *slog.Logger
}

// NewIdentityResolver constructs a new IdentityResolver.
func NewIdentityResolver(opts IdentityResolverOptions) *IdentityResolver {
	return &IdentityResolver{
		tokens:   opts.Tokens,
		sessions: opts.Sessions,
		users:    opts.Users,
		logger:   opts.Logger,
	}
}

func (r *IdentityResolver) log() *slog.Logger {
	if r.logger != nil {
		return r.logger
	}
	return slog.Default()
}

// Resolve returns the identity behind token.
//
// Token and session problems resolve to anonymous. A session store outage is
// returned as apperrors.StoreUnavailable so the caller can fail the request, and
// so is any user lookup failure other than "not found".
func (r *IdentityResolver) Resolve(ctx context.Context, token string) (AuthContext, error) {
	if token == "" {
		return AuthContext{}, nil
	}

	subject, err := r.tokens.Verify(token, domainauth.TokenKindAccess)
	if err != nil {
		r.log().DebugContext(ctx, "access token rejected", "error", err)
		return AuthContext{}, nil
	}

	snapshot, err := r.sessions.Get(ctx, subject)
	switch {
	case err == nil:
	case apperrors.IsStoreUnavailable(err):
		r.log().ErrorContext(ctx, "session store unavailable while resolving identity", "error", err)
		return AuthContext{}, err
	case errors.Is(err, ports.ErrSessionNotFound):
		r.log().DebugContext(ctx, "no live session for access token", "user_id", subject)
		return AuthContext{}, nil
	default:
		r.log().WarnContext(ctx, "session lookup failed; treating request as anonymous", "user_id", subject, "error", err)
		return AuthContext{}, nil
	}
	if snapshot.UserID != subject {
		r.log().WarnContext(ctx, "session snapshot does not match token subject", "user_id", subject)
		return AuthContext{}, nil
	}

	user, err := r.users.GetByID(ctx, snapshot.UserID)
	if err != nil {
		if isUserNotFound(err) {
			r.log().DebugContext(ctx, "session user no longer exists", "user_id", subject)
			return AuthContext{}, nil
		}
		return AuthContext{}, fmt.Errorf("load session user: %w", err)
	}
	return AuthContext{User: user}, nil
}

func isUserNotFound(err error) bool {
	return errors.Is(err, ports.ErrUserNotFound) || apperrors.IsNotFound(err)
}
