package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/estatehub/estate-api/internal/core"
	"github.com/estatehub/estate-api/internal/domain/model"
	apperrors "github.com/estatehub/estate-api/internal/errors"
)

const (
	defaultPropertyPageSize = 20
	maxPropertyPageSize     = 100
)

// PropertyServiceOptions groups dependencies for PropertyService.
type PropertyServiceOptions struct {
	Properties core.PropertyRepository
}

// PropertyService manages listings and enforces author-or-admin writes.
type PropertyService struct {
	properties core.PropertyRepository
}

// NewPropertyService constructs a new PropertyService.
func NewPropertyService(opts PropertyServiceOptions) *PropertyService {
	return &PropertyService{properties: opts.Properties}
}

// Create stores a listing authored by actor.
func (s *PropertyService) Create(ctx context.Context, actor *model.User, req *model.CreatePropertyRequest) (*model.Property, error) {
	if actor == nil {
		return nil, apperrors.Unauthenticated("authentication required")
	}
	if req == nil {
		return nil, apperrors.Validation("property payload is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.properties.Create(ctx, actor.ID, req)
}

// GetByID retrieves a listing.
func (s *PropertyService) GetByID(ctx context.Context, id string) (*model.Property, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.NotFound(msgPropertyNotFound)
	}
	return s.properties.GetByID(ctx, id)
}

// List returns a page of listings.
func (s *PropertyService) List(ctx context.Context, opts model.PropertyListOptions) ([]*model.Property, error) {
	return s.properties.List(ctx, normalizePropertyListOptions(opts))
}

// ListByAuthor returns a page of listings authored by email.
func (s *PropertyService) ListByAuthor(ctx context.Context, email string, limit, offset int) ([]*model.Property, error) {
	normalized, err := model.NormalizeEmail(email)
	if err != nil {
		return nil, err
	}
	return s.properties.List(ctx, normalizePropertyListOptions(model.PropertyListOptions{
		AuthorEmail: &normalized,
		Limit:       limit,
		Offset:      offset,
	}))
}

// Update applies req when actor owns the listing or is an admin.
func (s *PropertyService) Update(ctx context.Context, actor *model.User, id string, req model.UpdatePropertyRequest) (*model.Property, error) {
	if _, err := s.authorizeWrite(ctx, actor, id); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.properties.Update(ctx, id, req)
}

// Delete removes the listing when actor owns it or is an admin.
func (s *PropertyService) Delete(ctx context.Context, actor *model.User, id string) error {
	if _, err := s.authorizeWrite(ctx, actor, id); err != nil {
		return err
	}
	return s.properties.Delete(ctx, id)
}

func (s *PropertyService) authorizeWrite(ctx context.Context, actor *model.User, id string) (*model.Property, error) {
	if actor == nil {
		return nil, apperrors.Unauthenticated("authentication required")
	}
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.OwnedBy(actor.ID) && !actor.IsAdmin() {
		return nil, apperrors.Forbidden("only the author or an admin can modify this property")
	}
	return p, nil
}

func normalizePropertyListOptions(opts model.PropertyListOptions) model.PropertyListOptions {
	if opts.Limit <= 0 {
		opts.Limit = defaultPropertyPageSize
	}
	if opts.Limit > maxPropertyPageSize {
		opts.Limit = maxPropertyPageSize
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}
	return opts
}
