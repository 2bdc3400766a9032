package httpx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/estatehub/estate-api/internal/domain/auth"
	"github.com/estatehub/estate-api/internal/domain/model"
	apperrors "github.com/estatehub/estate-api/internal/errors"
	"github.com/estatehub/estate-api/internal/service"
)

type fakeAuthService struct {
	loginFn   func(ctx context.Context, email, password string) (*service.LoginResult, error)
	logoutFn  func(ctx context.Context, actx service.AuthContext) error
	refreshFn func(ctx context.Context, token string) (*service.RefreshResult, error)
	revokeFn  func(ctx context.Context, userID string) error
}

func (f *fakeAuthService) Login(ctx context.Context, email, password string) (*service.LoginResult, error) {
	return f.loginFn(ctx, email, password)
}

func (f *fakeAuthService) Logout(ctx context.Context, actx service.AuthContext) error {
	return f.logoutFn(ctx, actx)
}

func (f *fakeAuthService) Refresh(ctx context.Context, token string) (*service.RefreshResult, error) {
	return f.refreshFn(ctx, token)
}

func (f *fakeAuthService) RevokeSession(ctx context.Context, userID string) error {
	return f.revokeFn(ctx, userID)
}

func newAuthHandlers(svc *fakeAuthService) *AuthHandlers {
	return &AuthHandlers{Svc: svc, Cookies: newTestCookies()}
}

func TestAuthHandlers_Login(t *testing.T) {
	svc := &fakeAuthService{
		loginFn: func(_ context.Context, email, password string) (*service.LoginResult, error) {
			assert.Equal(t, "jane@example.com", email)
			assert.Equal(t, "secret123", password)
			return &service.LoginResult{User: &model.User{ID: "u1"}, AccessToken: "acc", RefreshToken: "ref"}, nil
		},
	}
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email":"jane@example.com","password":"secret123"}`))
	rec := httptest.NewRecorder()

	newAuthHandlers(svc).Login(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, "acc", body["access_token"])

	got := cookiesByName(rec)
	assert.Equal(t, "acc", got[AccessTokenCookie].Value)
	assert.Equal(t, "ref", got[RefreshTokenCookie].Value)
	assert.Equal(t, "true", got[LoggedInCookie].Value)
}

func TestAuthHandlers_Login_InvalidCredentialsSetsNoCookies(t *testing.T) {
	svc := &fakeAuthService{
		loginFn: func(context.Context, string, string) (*service.LoginResult, error) {
			return nil, apperrors.InvalidCredentials()
		},
	}
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"x@y.z","password":"nope"}`))
	rec := httptest.NewRecorder()

	newAuthHandlers(svc).Login(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid_credentials", decodeBody(t, rec)["error"])
	assert.Empty(t, rec.Result().Cookies())
}

func TestAuthHandlers_Login_BadJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{`))

	newAuthHandlers(&fakeAuthService{}).Login(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthHandlers_Logout(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{name: "success", wantCode: http.StatusOK},
		{name: "store unavailable still clears cookies", err: apperrors.StoreUnavailable(errors.New("down")), wantCode: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen service.AuthContext
			svc := &fakeAuthService{
				logoutFn: func(_ context.Context, actx service.AuthContext) error {
					seen = actx
					return tt.err
				},
			}
			req := withUser(httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil), domainauth.RoleUser)
			rec := httptest.NewRecorder()

			newAuthHandlers(svc).Logout(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, "u1", seen.UserID())
			for _, c := range rec.Result().Cookies() {
				assert.Equal(t, -1, c.MaxAge, c.Name)
			}
			assert.Len(t, rec.Result().Cookies(), 3)
		})
	}
}

func TestAuthHandlers_Logout_UnresolvedIdentity(t *testing.T) {
	called := false
	svc := &fakeAuthService{
		logoutFn: func(context.Context, service.AuthContext) error {
			called = true
			return nil
		},
	}
	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req = req.WithContext(withIdentityError(req.Context(), apperrors.StoreUnavailable(errors.New("down"))))
	rec := httptest.NewRecorder()

	newAuthHandlers(svc).Logout(rec, req)

	assert.False(t, called)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Len(t, rec.Result().Cookies(), 3)
	for _, c := range rec.Result().Cookies() {
		assert.Equal(t, -1, c.MaxAge, c.Name)
	}
}

func TestAuthHandlers_Refresh_TokenSources(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(r *http.Request)
		want    string
	}{
		{
			name:    "cookie",
			prepare: func(r *http.Request) { r.AddCookie(&http.Cookie{Name: RefreshTokenCookie, Value: "ref-cookie"}) },
			want:    "ref-cookie",
		},
		{
			name:    "bearer fallback",
			prepare: func(r *http.Request) { r.Header.Set("Authorization", "Bearer ref-header") },
			want:    "ref-header",
		},
		{
			name: "cookie preferred",
			prepare: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: RefreshTokenCookie, Value: "ref-cookie"})
				r.Header.Set("Authorization", "Bearer ref-header")
			},
			want: "ref-cookie",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeAuthService{
				refreshFn: func(_ context.Context, token string) (*service.RefreshResult, error) {
					assert.Equal(t, tt.want, token)
					return &service.RefreshResult{User: &model.User{ID: "u1"}, AccessToken: "acc2"}, nil
				},
			}
			req := httptest.NewRequest(http.MethodGet, "/api/auth/refresh", nil)
			tt.prepare(req)
			rec := httptest.NewRecorder()

			newAuthHandlers(svc).Refresh(rec, req)

			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "acc2", decodeBody(t, rec)["access_token"])
			got := cookiesByName(rec)
			assert.Equal(t, "acc2", got[AccessTokenCookie].Value)
			assert.NotContains(t, got, RefreshTokenCookie)
		})
	}
}

func TestAuthHandlers_Refresh_Failed(t *testing.T) {
	svc := &fakeAuthService{
		refreshFn: func(context.Context, string) (*service.RefreshResult, error) {
			return nil, apperrors.RefreshFailed(errors.New("session gone"))
		},
	}
	rec := httptest.NewRecorder()

	newAuthHandlers(svc).Refresh(rec, httptest.NewRequest(http.MethodGet, "/api/auth/refresh", nil))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "refresh_failed", decodeBody(t, rec)["error"])
	assert.Empty(t, rec.Result().Cookies())
}

func TestAuthHandlers_Refresh_LookupFailureIsInternal(t *testing.T) {
	svc := &fakeAuthService{
		refreshFn: func(context.Context, string) (*service.RefreshResult, error) {
			return nil, errors.New("load refresh user: conn closed")
		},
	}
	rec := httptest.NewRecorder()

	newAuthHandlers(svc).Refresh(rec, httptest.NewRequest(http.MethodGet, "/api/auth/refresh", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal", decodeBody(t, rec)["error"])
	assert.Empty(t, rec.Result().Cookies())
}
