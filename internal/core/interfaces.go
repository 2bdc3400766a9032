package core

import (
	"context"

	domainauth "github.com/estatehub/estate-api/internal/domain/auth"
	"github.com/estatehub/estate-api/internal/domain/model"
)

// This file contains repository interface definitions (ports in hexagonal architecture).
// These interfaces define the contracts between the service layer and data layer.
// Service implementations should depend on these interfaces, not concrete implementations.

// CreateUserParams carries a validated registration with the password already hashed.
type CreateUserParams struct {
	Email        string
	PasswordHash string
	Name         string
	Surname      string
	PhoneNumber  string
	Info         string
	ProfilePic   string
	Role         domainauth.Role
}

// UpdateUserParams carries a validated partial update. PasswordHash replaces the raw password.
type UpdateUserParams struct {
	PasswordHash *string
	Name         *string
	Surname      *string
	PhoneNumber  *string
	Info         *string
	ProfilePic   *string
}

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	Create(ctx context.Context, params CreateUserParams) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Update(ctx context.Context, id string, params UpdateUserParams) (*model.User, error)
	SetRole(ctx context.Context, id string, role domainauth.Role) (*model.User, error)
	// ToggleFeatured adds propertyID to the user's featured list, or removes it if present.
	ToggleFeatured(ctx context.Context, userID, propertyID string) (*model.User, error)
}

// PropertyRepository defines the interface for property data operations.
type PropertyRepository interface {
	Create(ctx context.Context, authorID string, req *model.CreatePropertyRequest) (*model.Property, error)
	GetByID(ctx context.Context, id string) (*model.Property, error)
	List(ctx context.Context, opts model.PropertyListOptions) ([]*model.Property, error)
	Update(ctx context.Context, id string, req model.UpdatePropertyRequest) (*model.Property, error)
	// Delete removes the listing and drops it from every featured list.
	Delete(ctx context.Context, id string) error
}
