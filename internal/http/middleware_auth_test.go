package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/estatehub/estate-api/internal/domain/auth"
	"github.com/estatehub/estate-api/internal/domain/model"
	apperrors "github.com/estatehub/estate-api/internal/errors"
	"github.com/estatehub/estate-api/internal/service"
)

type resolverFunc func(ctx context.Context, token string) (service.AuthContext, error)

func (f resolverFunc) Resolve(ctx context.Context, token string) (service.AuthContext, error) {
	return f(ctx, token)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func withUser(r *http.Request, role domainauth.Role) *http.Request {
	user := &model.User{ID: "u1", Email: "jane@example.com", Role: role}
	return r.WithContext(SetAuthContext(r.Context(), service.AuthContext{User: user}))
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
})

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name     string
		gate     func(http.Handler) http.Handler
		role     domainauth.Role
		wantCode int
		wantErr  string
		wantMsg  string
	}{
		{
			name:     "anonymous on auth route",
			gate:     RequireAuth(),
			wantCode: http.StatusUnauthorized,
			wantErr:  "unauthenticated",
			wantMsg:  "You are not logged in",
		},
		{name: "user on auth route", gate: RequireAuth(), role: domainauth.RoleUser, wantCode: http.StatusNoContent},
		{name: "admin on auth route", gate: RequireAuth(), role: domainauth.RoleAdmin, wantCode: http.StatusNoContent},
		{
			name:     "anonymous on admin route",
			gate:     RequireRole(domainauth.RoleAdmin),
			wantCode: http.StatusUnauthorized,
			wantErr:  "unauthenticated",
		},
		{
			name:     "user on admin route",
			gate:     RequireRole(domainauth.RoleAdmin),
			role:     domainauth.RoleUser,
			wantCode: http.StatusForbidden,
			wantErr:  "forbidden",
			wantMsg:  "You are not allowed to perform this action",
		},
		{name: "admin on admin route", gate: RequireRole(domainauth.RoleAdmin), role: domainauth.RoleAdmin, wantCode: http.StatusNoContent},
		{
			name:     "unknown role is denied",
			gate:     RequireAuth(),
			role:     domainauth.Role("superuser"),
			wantCode: http.StatusForbidden,
			wantErr:  "forbidden",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			if tt.role != "" {
				req = withUser(req, tt.role)
			}
			rec := httptest.NewRecorder()

			tt.gate(okHandler).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantErr == "" {
				return
			}
			body := decodeBody(t, rec)
			assert.Equal(t, tt.wantErr, body["error"])
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, body["message"])
			}
		})
	}
}

func TestResolveIdentity_TokenSources(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(r *http.Request)
		want    string
	}{
		{name: "no credentials", prepare: func(*http.Request) {}, want: ""},
		{
			name:    "cookie",
			prepare: func(r *http.Request) { r.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "from-cookie"}) },
			want:    "from-cookie",
		},
		{
			name:    "bearer",
			prepare: func(r *http.Request) { r.Header.Set("Authorization", "Bearer from-header") },
			want:    "from-header",
		},
		{
			name: "bearer wins over cookie",
			prepare: func(r *http.Request) {
				r.Header.Set("Authorization", "bearer from-header")
				r.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "from-cookie"})
			},
			want: "from-header",
		},
		{
			name:    "non-bearer scheme ignored",
			prepare: func(r *http.Request) { r.Header.Set("Authorization", "Basic dXNlcjpwdw==") },
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			resolver := resolverFunc(func(_ context.Context, token string) (service.AuthContext, error) {
				seen = token
				return service.AuthContext{}, nil
			})
			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			tt.prepare(req)

			ResolveIdentity(resolver, nil)(okHandler).ServeHTTP(httptest.NewRecorder(), req)
			assert.Equal(t, tt.want, seen)
		})
	}
}

func TestResolveIdentity_AttachesContext(t *testing.T) {
	user := &model.User{ID: "u1", Role: domainauth.RoleUser}
	resolver := resolverFunc(func(context.Context, string) (service.AuthContext, error) {
		return service.AuthContext{User: user}, nil
	})

	var got service.AuthContext
	next := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got = GetAuthContext(r.Context())
	})
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer tok")

	ResolveIdentity(resolver, nil)(next).ServeHTTP(httptest.NewRecorder(), req)
	assert.Same(t, user, got.User)
}

func TestResolveIdentity_StoreUnavailable(t *testing.T) {
	resolver := resolverFunc(func(context.Context, string) (service.AuthContext, error) {
		return service.AuthContext{}, apperrors.StoreUnavailable(errors.New("dial tcp: refused"))
	})
	newReq := func() *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("Authorization", "Bearer tok")
		return req
	}

	t.Run("public handler runs anonymously", func(t *testing.T) {
		var got service.AuthContext
		var marked error
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = GetAuthContext(r.Context())
			marked = IdentityError(r.Context())
			w.WriteHeader(http.StatusOK)
		})
		rec := httptest.NewRecorder()
		ResolveIdentity(resolver, nil)(next).ServeHTTP(rec, newReq())

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.False(t, got.Authenticated())
		assert.True(t, apperrors.IsStoreUnavailable(marked))
	})

	t.Run("gated handler answers 503", func(t *testing.T) {
		rec := httptest.NewRecorder()
		ResolveIdentity(resolver, nil)(RequireAuth()(okHandler)).ServeHTTP(rec, newReq())

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, "store_unavailable", decodeBody(t, rec)["error"])
	})

	t.Run("role gate answers 503 before 403", func(t *testing.T) {
		rec := httptest.NewRecorder()
		ResolveIdentity(resolver, nil)(RequireRole(domainauth.RoleAdmin)(okHandler)).ServeHTTP(rec, newReq())

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestResolveIdentity_LookupFailure(t *testing.T) {
	resolver := resolverFunc(func(context.Context, string) (service.AuthContext, error) {
		return service.AuthContext{}, errors.New("load session user: connection reset")
	})
	called := false
	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer tok")
	rec := httptest.NewRecorder()
	ResolveIdentity(resolver, nil)(next).ServeHTTP(rec, req)

	assert.False(t, called)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal", decodeBody(t, rec)["error"])
}
