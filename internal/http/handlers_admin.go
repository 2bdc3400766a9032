package httpx

import (
	"log/slog"
	"net/http"
)

// AdminHandlers serves admin-only account management.
type AdminHandlers struct {
	Users  UserServiceInterface
	Auth   AuthServiceInterface
	Logger *slog.Logger
}

// SetRole handles PATCH /api/admin/users/{id}/role.
func (h *AdminHandlers) SetRole(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Role string `json:"role"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}
	user, err := h.Users.SetRole(r.Context(), r.PathValue("id"), req.Role)
	if err != nil {
		WriteAppError(w, r, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, userResponse{Status: "success", User: user})
}

// RevokeSession handles DELETE /api/admin/users/{id}/session.
func (h *AdminHandlers) RevokeSession(w http.ResponseWriter, r *http.Request) {
	if err := h.Auth.RevokeSession(r.Context(), r.PathValue("id")); err != nil {
		WriteAppError(w, r, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "success"})
}
