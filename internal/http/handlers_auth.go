package httpx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/estatehub/estate-api/internal/domain/model"
	"github.com/estatehub/estate-api/internal/service"
)

// AuthServiceInterface defines the session lifecycle operations used by handlers.
type AuthServiceInterface interface {
	Login(ctx context.Context, email, password string) (*service.LoginResult, error)
	Logout(ctx context.Context, actx service.AuthContext) error
	Refresh(ctx context.Context, refreshToken string) (*service.RefreshResult, error)
	RevokeSession(ctx context.Context, userID string) error
}

// AuthHandlers provides HTTP handlers for authentication operations.
type AuthHandlers struct {
	Svc     AuthServiceInterface
	Cookies *CookieTransport
	Logger  *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

type tokenResponse struct {
	Status      string `json:"status"`
	AccessToken string `json:"access_token"`
}

// Login handles POST /api/auth/login.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	res, err := h.Svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		WriteAppError(w, r, h.logger(), err)
		return
	}

	h.Cookies.SetAuthCookies(w, res.AccessToken, res.RefreshToken)
	WriteJSON(w, http.StatusOK, tokenResponse{Status: "success", AccessToken: res.AccessToken})
}

// Logout handles POST /api/auth/logout. Cookies are cleared even when the
// session could not be deleted or the store was unreachable while resolving
// the caller.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	err := IdentityError(r.Context())
	if err == nil {
		err = h.Svc.Logout(r.Context(), GetAuthContext(r.Context()))
	}
	h.Cookies.ClearAuthCookies(w)
	if err != nil {
		WriteAppError(w, r, h.logger(), err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// Refresh handles GET /api/auth/refresh. The refresh_token cookie is read
// first; non-browser clients may send it as a bearer token instead.
func (h *AuthHandlers) Refresh(w http.ResponseWriter, r *http.Request) {
	token := ""
	if c, err := r.Cookie(RefreshTokenCookie); err == nil {
		token = c.Value
	}
	if token == "" {
		token = bearerToken(r)
	}

	res, err := h.Svc.Refresh(r.Context(), token)
	if err != nil {
		WriteAppError(w, r, h.logger(), err)
		return
	}

	h.Cookies.SetAccessCookies(w, res.AccessToken)
	WriteJSON(w, http.StatusOK, tokenResponse{Status: "success", AccessToken: res.AccessToken})
}
