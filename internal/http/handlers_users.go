package httpx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/estatehub/estate-api/internal/domain/model"
	"github.com/estatehub/estate-api/internal/service"
)

// UserServiceInterface defines the account operations used by handlers.
type UserServiceInterface interface {
	Register(ctx context.Context, req *model.CreateUserRequest) (*model.User, error)
	Update(ctx context.Context, id string, req model.UpdateUserRequest) (*model.User, error)
	ToggleFeatured(ctx context.Context, user *model.User, propertyID string) (*model.User, error)
	Overview(ctx context.Context, user *model.User) (*service.Overview, error)
	SetRole(ctx context.Context, id string, role string) (*model.User, error)
}

// UserHandlers serves registration and the current user's profile.
type UserHandlers struct {
	Svc    UserServiceInterface
	Logger *slog.Logger
}

type userResponse struct {
	Status string      `json:"status"`
	User   *model.User `json:"user"`
}

// Register handles POST /api/auth/register.
func (h *UserHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req model.CreateUserRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	user, err := h.Svc.Register(r.Context(), &req)
	if err != nil {
		WriteAppError(w, r, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusCreated, userResponse{Status: "success", User: user})
}

// Me handles GET /api/users/me.
func (h *UserHandlers) Me(w http.ResponseWriter, r *http.Request) {
	user, _ := CurrentUser(r.Context())
	WriteJSON(w, http.StatusOK, userResponse{Status: "success", User: user})
}

// UpdateMe handles PATCH /api/users/me.
func (h *UserHandlers) UpdateMe(w http.ResponseWriter, r *http.Request) {
	current, _ := CurrentUser(r.Context())
	var req model.UpdateUserRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	user, err := h.Svc.Update(r.Context(), current.ID, req)
	if err != nil {
		WriteAppError(w, r, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, userResponse{Status: "success", User: user})
}

// ToggleFeatured handles POST /api/users/me/featured.
func (h *UserHandlers) ToggleFeatured(w http.ResponseWriter, r *http.Request) {
	current, _ := CurrentUser(r.Context())
	var req struct {
		PropertyID string `json:"property_id"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}
	user, err := h.Svc.ToggleFeatured(r.Context(), current, req.PropertyID)
	if err != nil {
		WriteAppError(w, r, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, userResponse{Status: "success", User: user})
}

// Overview handles GET /api/users/me/overview.
func (h *UserHandlers) Overview(w http.ResponseWriter, r *http.Request) {
	current, _ := CurrentUser(r.Context())
	ov, err := h.Svc.Overview(r.Context(), current)
	if err != nil {
		WriteAppError(w, r, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"status": "success", "data": ov})
}
