package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	domainauth "github.com/estatehub/estate-api/internal/domain/auth"
	"github.com/estatehub/estate-api/internal/domain/model"
	apperrors "github.com/estatehub/estate-api/internal/errors"
	"github.com/estatehub/estate-api/internal/observability/metrics"
	"github.com/estatehub/estate-api/internal/observability/statsd"
	"github.com/estatehub/estate-api/internal/ports"
)

// Default lifetimes.
const (
	DefaultAccessTTL  = 15 * time.Minute
	DefaultRefreshTTL = 60 * time.Minute
	DefaultSessionTTL = time.Hour
)

var (
	errMissingRefreshToken = errors.New("refresh token missing")
	errSessionMismatch     = errors.New("session does not belong to token subject")
)

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Tokens      ports.TokenCodec
	Sessions    ports.SessionStore
	Users       ports.UserLookup
	Credentials ports.CredentialVerifier

	AccessTTL  time.Duration
	RefreshTTL time.Duration
	SessionTTL time.Duration

	Clock   func() time.Time
	Logger  *slog.Logger
	Metrics statsd.Sink
}

// AuthService drives the session lifecycle: login creates the session, logout
// deletes it, refresh reissues an access token while it lives. It is the only
// writer of the session store.
type AuthService struct {
	tokens      ports.TokenCodec
	sessions    ports.SessionStore
	users       ports.UserLookup
	credentials ports.CredentialVerifier

	accessTTL  time.Duration
	refreshTTL time.Duration
	sessionTTL time.Duration

	clock   func() time.Time
	logger  *slog.Logger
	metrics statsd.Sink
}

// NewAuthService constructs a new AuthService. Zero TTLs take the defaults.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	s := &AuthService{
		tokens:      opts.Tokens,
		sessions:    opts.Sessions,
		users:       opts.Users,
		credentials: opts.Credentials,
		accessTTL:   opts.AccessTTL,
		refreshTTL:  opts.RefreshTTL,
		sessionTTL:  opts.SessionTTL,
		clock:       opts.Clock,
		logger:      opts.Logger,
		metrics:     opts.Metrics,
	}
	if s.accessTTL <= 0 {
		s.accessTTL = DefaultAccessTTL
	}
	if s.refreshTTL <= 0 {
		s.refreshTTL = DefaultRefreshTTL
	}
	if s.sessionTTL <= 0 {
		s.sessionTTL = DefaultSessionTTL
	}
	if s.clock == nil {
		s.clock = time.Now
	}
	return s
}

// AccessTTL is the lifetime of issued access tokens.
func (s *AuthService) AccessTTL() time.Duration { return s.accessTTL }

// RefreshTTL is the lifetime of issued refresh tokens.
func (s *AuthService) RefreshTTL() time.Duration { return s.refreshTTL }

// SessionTTL is the lifetime of the stored session.
func (s *AuthService) SessionTTL() time.Duration { return s.sessionTTL }

func (s *AuthService) log() *slog.Logger {
	if s.logger != nil {
		return s.logger
	}
	return slog.Default()
}

// LoginResult contains the tokens minted by a successful login.
type LoginResult struct {
	User         *model.User
	AccessToken  string
	RefreshToken string
}

// Login verifies credentials, mints both tokens and stores the session snapshot,
// replacing any previous session of the same user.
func (s *AuthService) Login(ctx context.Context, email, password string) (res *LoginResult, err error) {
	start := s.clock()
	defer func() { s.emit(metrics.OpLogin, start, err) }()

	user, err := s.credentials.VerifyCredentials(ctx, email, password)
	if err != nil {
		if apperrors.IsInvalidCredentials(err) {
			s.log().InfoContext(ctx, "login rejected")
			return nil, err
		}
		return nil, fmt.Errorf("verify credentials: %w", err)
	}

	access, err := s.tokens.Issue(user.ID, domainauth.TokenKindAccess, s.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := s.tokens.Issue(user.ID, domainauth.TokenKindRefresh, s.refreshTTL)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}

	if putErr := s.sessions.Put(ctx, user.ID, user.Snapshot(s.clock()), s.sessionTTL); putErr != nil {
		if apperrors.IsStoreUnavailable(putErr) {
			s.log().ErrorContext(ctx, "session store unavailable during login", "error", putErr)
			return nil, putErr
		}
		return nil, fmt.Errorf("store session: %w", putErr)
	}

	s.log().InfoContext(ctx, "user logged in", "user_id", user.ID)
	return &LoginResult{User: user, AccessToken: access, RefreshToken: refresh}, nil
}

// Logout deletes the caller's session. Anonymous callers are a no-op.
func (s *AuthService) Logout(ctx context.Context, actx AuthContext) (err error) {
	if !actx.Authenticated() {
		metrics.EmitAuthEvent(s.metrics, metrics.AuthMetric{Operation: metrics.OpLogout, Result: metrics.ResultNoop})
		return nil
	}
	start := s.clock()
	defer func() { s.emit(metrics.OpLogout, start, err) }()

	if err = s.sessions.Delete(ctx, actx.User.ID); err != nil {
		s.log().ErrorContext(ctx, "failed to delete session on logout", "user_id", actx.User.ID, "error", err)
		return err
	}
	s.log().InfoContext(ctx, "user logged out", "user_id", actx.User.ID)
	return nil
}

// RefreshResult carries the reissued access token.
type RefreshResult struct {
	User        *model.User
	AccessToken string
}

// Refresh exchanges a refresh token for a new access token while the session
// lives. The refresh token itself is not rotated. Token, session and unknown-user
// failures are reported as apperrors.RefreshFailed; a store outage or a user
// lookup failure passes through.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (res *RefreshResult, err error) {
	start := s.clock()
	defer func() { s.emit(metrics.OpRefresh, start, err) }()

	subject, err := s.refreshSubject(ctx, refreshToken)
	if err != nil {
		if apperrors.IsStoreUnavailable(err) {
			s.log().ErrorContext(ctx, "session store unavailable during refresh", "error", err)
			return nil, err
		}
		s.log().InfoContext(ctx, "refresh rejected", "reason", refreshReason(err))
		return nil, apperrors.RefreshFailed(err)
	}

	user, err := s.users.GetByID(ctx, subject)
	switch {
	case isUserNotFound(err):
		s.log().InfoContext(ctx, "refresh rejected", "reason", "user_not_found")
		return nil, apperrors.RefreshFailed(err)
	case err != nil:
		return nil, fmt.Errorf("load refresh user: %w", err)
	}

	access, err := s.tokens.Issue(user.ID, domainauth.TokenKindAccess, s.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	return &RefreshResult{User: user, AccessToken: access}, nil
}

// refreshSubject verifies the refresh token and its live session.
func (s *AuthService) refreshSubject(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", errMissingRefreshToken
	}
	subject, err := s.tokens.Verify(refreshToken, domainauth.TokenKindRefresh)
	if err != nil {
		return "", err
	}
	snapshot, err := s.sessions.Get(ctx, subject)
	if err != nil {
		return "", err
	}
	if snapshot.UserID != subject {
		return "", errSessionMismatch
	}
	return subject, nil
}

func refreshReason(err error) string {
	switch {
	case errors.Is(err, errMissingRefreshToken):
		return "missing_token"
	case errors.Is(err, domainauth.ErrTokenExpired):
		return "token_expired"
	case errors.Is(err, domainauth.ErrTokenInvalidSignature):
		return "token_invalid_signature"
	case errors.Is(err, domainauth.ErrTokenMalformed):
		return "token_malformed"
	case errors.Is(err, ports.ErrSessionNotFound):
		return "no_session"
	case errors.Is(err, errSessionMismatch):
		return "session_mismatch"
	default:
		return "other"
	}
}

// RevokeSession deletes userID's session regardless of who holds its tokens.
// Outstanding access tokens stop resolving on their next use.
func (s *AuthService) RevokeSession(ctx context.Context, userID string) (err error) {
	if userID == "" {
		return apperrors.ValidationField("user_id", "user id is required")
	}
	start := s.clock()
	defer func() { s.emit(metrics.OpRevoke, start, err) }()

	if err = s.sessions.Delete(ctx, userID); err != nil {
		return err
	}
	s.log().InfoContext(ctx, "session revoked", "user_id", userID)
	return nil
}

func (s *AuthService) emit(op string, start time.Time, err error) {
	metrics.EmitAuthEvent(s.metrics, metrics.AuthMetric{
		Operation: op,
		Result:    metrics.ResultFor(err),
		Duration:  s.clock().Sub(start),
		Err:       err,
	})
}
