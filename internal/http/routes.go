package httpx

import (
	"log/slog"
	"net/http"

	domainauth "github.com/estatehub/estate-api/internal/domain/auth"
	apperrors "github.com/estatehub/estate-api/internal/errors"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Auth       AuthServiceInterface
	Identity   IdentityResolverInterface
	Users      UserServiceInterface
	Properties PropertyServiceInterface
	Cookies    *CookieTransport
	// Readiness checks run by GET /readyz, keyed by dependency name.
	Readiness map[string]ReadinessCheck
	Logger    *slog.Logger
}

// NewRouter creates the API router. Every request passes through identity
// resolution before routing; unmatched paths get a JSON 404.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}
	mux := http.NewServeMux()

	registerHealthRoutes(mux, services.Readiness)
	registerAuthRoutes(mux, &AuthHandlers{Svc: services.Auth, Cookies: services.Cookies, Logger: logger})
	registerUserRoutes(mux, &UserHandlers{Svc: services.Users, Logger: logger})
	registerPropertyRoutes(mux, &PropertyHandlers{Svc: services.Properties, Logger: logger})
	registerAdminRoutes(mux, &AdminHandlers{Users: services.Users, Auth: services.Auth, Logger: logger})
	mux.HandleFunc("/", notFoundHandler)

	return ResolveIdentity(services.Identity, logger)(mux)
}

func registerHealthRoutes(mux *http.ServeMux, checks map[string]ReadinessCheck) {
	mux.HandleFunc("GET /healthz", healthHandler)
	mux.HandleFunc("HEAD /healthz", healthHandler)
	mux.HandleFunc("GET /readyz", readyHandler(checks))
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers) {
	mux.HandleFunc("POST /api/auth/login", h.Login)
	mux.HandleFunc("POST /api/auth/logout", h.Logout)
	mux.HandleFunc("GET /api/auth/refresh", h.Refresh)
}

func registerUserRoutes(mux *http.ServeMux, h *UserHandlers) {
	authed := RequireAuth()
	mux.HandleFunc("POST /api/auth/register", h.Register)
	mux.Handle("GET /api/users/me", authed(http.HandlerFunc(h.Me)))
	mux.Handle("PATCH /api/users/me", authed(http.HandlerFunc(h.UpdateMe)))
	mux.Handle("POST /api/users/me/featured", authed(http.HandlerFunc(h.ToggleFeatured)))
	mux.Handle("GET /api/users/me/overview", authed(http.HandlerFunc(h.Overview)))
}

func registerPropertyRoutes(mux *http.ServeMux, h *PropertyHandlers) {
	authed := RequireAuth()
	mux.HandleFunc("GET /api/properties", h.List)
	mux.HandleFunc("GET /api/properties/{id}", h.Get)
	mux.Handle("POST /api/properties", authed(http.HandlerFunc(h.Create)))
	mux.Handle("PATCH /api/properties/{id}", authed(http.HandlerFunc(h.Update)))
	mux.Handle("DELETE /api/properties/{id}", authed(http.HandlerFunc(h.Delete)))
	mux.Handle("GET /api/authors/{email}/properties", authed(http.HandlerFunc(h.ListByAuthor)))
}

func registerAdminRoutes(mux *http.ServeMux, h *AdminHandlers) {
	admin := RequireRole(domainauth.RoleAdmin)
	mux.Handle("PATCH /api/admin/users/{id}/role", admin(http.HandlerFunc(h.SetRole)))
	mux.Handle("DELETE /api/admin/users/{id}/session", admin(http.HandlerFunc(h.RevokeSession)))
}

func notFoundHandler(w http.ResponseWriter, _ *http.Request) {
	WriteError(w, ErrorParams{
		Code:    http.StatusNotFound,
		ErrCode: string(apperrors.ErrCodeNotFound),
		Err:     apperrors.NotFound("Endpoint not found!"),
	})
}
