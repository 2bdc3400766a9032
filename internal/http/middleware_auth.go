package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	domainauth "github.com/estatehub/estate-api/internal/domain/auth"
	apperrors "github.com/estatehub/estate-api/internal/errors"
	"github.com/estatehub/estate-api/internal/service"
)

// IdentityResolverInterface resolves a presented access token into an identity.
type IdentityResolverInterface interface {
	Resolve(ctx context.Context, token string) (service.AuthContext, error)
}

// ResolveIdentity attaches the request's AuthContext before routing. Missing or
// invalid credentials leave the request anonymous. A session store outage also
// leaves it anonymous but marked, so public routes keep working while Authorize
// and logout answer 503.
func ResolveIdentity(resolver IdentityResolverInterface, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if resolver == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actx, err := resolver.Resolve(r.Context(), accessTokenFromRequest(r))
			switch {
			case apperrors.IsStoreUnavailable(err):
				next.ServeHTTP(w, r.WithContext(withIdentityError(r.Context(), err)))
				return
			case err != nil:
				WriteAppError(w, r, logger, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(SetAuthContext(r.Context(), actx)))
		})
	}
}

// accessTokenFromRequest prefers an Authorization bearer token over the cookie.
func accessTokenFromRequest(r *http.Request) string {
	if tok := bearerToken(r); tok != "" {
		return tok
	}
	if c, err := r.Cookie(AccessTokenCookie); err == nil {
		return c.Value
	}
	return ""
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	scheme, tok, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(tok)
}

// Authorize admits authenticated requests whose role is in allowed. An empty
// set admits any authenticated role. Anonymous requests get 401, others 403.
// Requests left unresolved by a store outage get 503.
func Authorize(allowed domainauth.RoleSet) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := IdentityError(r.Context()); err != nil {
				WriteAppError(w, r, nil, err)
				return
			}
			actx := GetAuthContext(r.Context())
			if !actx.Authenticated() {
				WriteError(w, ErrorParams{
					Code:    http.StatusUnauthorized,
					ErrCode: string(apperrors.ErrCodeUnauthenticated),
					Err:     apperrors.Unauthenticated("You are not logged in"),
				})
				return
			}
			if !allowed.Allows(actx.Role()) {
				WriteError(w, ErrorParams{
					Code:    http.StatusForbidden,
					ErrCode: string(apperrors.ErrCodeForbidden),
					Err:     apperrors.Forbidden("You are not allowed to perform this action"),
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth admits any authenticated user.
func RequireAuth() func(http.Handler) http.Handler {
	return Authorize(nil)
}

// RequireRole admits users holding one of roles.
func RequireRole(roles ...domainauth.Role) func(http.Handler) http.Handler {
	return Authorize(domainauth.Roles(roles...))
}
