package httpx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/estatehub/estate-api/internal/domain/model"
	apperrors "github.com/estatehub/estate-api/internal/errors"
)

const (
	defaultPropertyLimit = 20
	maxPropertyLimit     = 100
)

// PropertyServiceInterface defines the listing operations used by handlers.
type PropertyServiceInterface interface {
	Create(ctx context.Context, actor *model.User, req *model.CreatePropertyRequest) (*model.Property, error)
	GetByID(ctx context.Context, id string) (*model.Property, error)
	List(ctx context.Context, opts model.PropertyListOptions) ([]*model.Property, error)
	ListByAuthor(ctx context.Context, email string, limit, offset int) ([]*model.Property, error)
	Update(ctx context.Context, actor *model.User, id string, req model.UpdatePropertyRequest) (*model.Property, error)
	Delete(ctx context.Context, actor *model.User, id string) error
}

// PropertyHandlers serves listing CRUD.
type PropertyHandlers struct {
	Svc    PropertyServiceInterface
	Logger *slog.Logger
}

type propertyResponse struct {
	Status   string          `json:"status"`
	Property *model.Property `json:"property"`
}

type propertiesResponse struct {
	Status     string            `json:"status"`
	Properties []*model.Property `json:"properties"`
}

// List handles GET /api/properties?type=&state=&limit=&offset=.
func (h *PropertyHandlers) List(w http.ResponseWriter, r *http.Request) {
	pg := parsePage(r, defaultPropertyLimit, maxPropertyLimit)
	opts := model.PropertyListOptions{Limit: pg.Limit, Offset: pg.Offset}

	q := r.URL.Query()
	if v := q.Get("type"); v != "" {
		t, ok := model.ParsePropertyType(v)
		if !ok {
			WriteAppError(w, r, h.Logger, apperrors.ValidationField("type", "type must be one of: house, apartment, townhouse"))
			return
		}
		opts.Type = &t
	}
	if v := q.Get("state"); v != "" {
		s, ok := model.ParsePropertyState(v)
		if !ok {
			WriteAppError(w, r, h.Logger, apperrors.ValidationField("state", "state must be one of: new, secondary"))
			return
		}
		opts.State = &s
	}

	props, err := h.Svc.List(r.Context(), opts)
	if err != nil {
		WriteAppError(w, r, h.Logger, err)
		return
	}
	writeProperties(w, props)
}

// Get handles GET /api/properties/{id}.
func (h *PropertyHandlers) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.Svc.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteAppError(w, r, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, propertyResponse{Status: "success", Property: p})
}

// Create handles POST /api/properties.
func (h *PropertyHandlers) Create(w http.ResponseWriter, r *http.Request) {
	actor, _ := CurrentUser(r.Context())
	var req model.CreatePropertyRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	p, err := h.Svc.Create(r.Context(), actor, &req)
	if err != nil {
		WriteAppError(w, r, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusCreated, propertyResponse{Status: "success", Property: p})
}

// Update handles PATCH /api/properties/{id}.
func (h *PropertyHandlers) Update(w http.ResponseWriter, r *http.Request) {
	actor, _ := CurrentUser(r.Context())
	var req model.UpdatePropertyRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	p, err := h.Svc.Update(r.Context(), actor, r.PathValue("id"), req)
	if err != nil {
		WriteAppError(w, r, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, propertyResponse{Status: "success", Property: p})
}

// Delete handles DELETE /api/properties/{id}.
func (h *PropertyHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	actor, _ := CurrentUser(r.Context())
	if err := h.Svc.Delete(r.Context(), actor, r.PathValue("id")); err != nil {
		WriteAppError(w, r, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// ListByAuthor handles GET /api/authors/{email}/properties.
func (h *PropertyHandlers) ListByAuthor(w http.ResponseWriter, r *http.Request) {
	pg := parsePage(r, defaultPropertyLimit, maxPropertyLimit)
	props, err := h.Svc.ListByAuthor(r.Context(), r.PathValue("email"), pg.Limit, pg.Offset)
	if err != nil {
		WriteAppError(w, r, h.Logger, err)
		return
	}
	writeProperties(w, props)
}

func writeProperties(w http.ResponseWriter, props []*model.Property) {
	if props == nil {
		props = []*model.Property{}
	}
	WriteJSON(w, http.StatusOK, propertiesResponse{Status: "success", Properties: props})
}
