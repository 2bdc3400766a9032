package httpx

import (
	"context"

	"github.com/estatehub/estate-api/internal/domain/model"
	"github.com/estatehub/estate-api/internal/service"
)

// authContextKey is an unexported context key type to avoid collisions across packages.
type authContextKey struct{}

// SetAuthContext returns a child context that carries actx.
func SetAuthContext(ctx context.Context, actx service.AuthContext) context.Context {
	return context.WithValue(ctx, authContextKey{}, actx)
}

// GetAuthContext returns the identity resolved for this request. Requests that
// never passed through ResolveIdentity are anonymous.
func GetAuthContext(ctx context.Context) service.AuthContext {
	if actx, ok := ctx.Value(authContextKey{}).(service.AuthContext); ok {
		return actx
	}
	return service.AuthContext{}
}

// CurrentUser returns the resolved user and whether one is present.
func CurrentUser(ctx context.Context) (*model.User, bool) {
	u := GetAuthContext(ctx).User
	return u, u != nil
}

type identityErrKey struct{}

// withIdentityError marks a request whose identity could not be resolved
// because the session store was unreachable. It proceeds anonymously.
func withIdentityError(ctx context.Context, err error) context.Context {
	return context.WithValue(ctx, identityErrKey{}, err)
}

// IdentityError returns the store failure that left this request unresolved,
// or nil.
func IdentityError(ctx context.Context) error {
	err, _ := ctx.Value(identityErrKey{}).(error)
	return err
}
