package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/estatehub/estate-api/internal/core"
	domainauth "github.com/estatehub/estate-api/internal/domain/auth"
	"github.com/estatehub/estate-api/internal/domain/model"
	apperrors "github.com/estatehub/estate-api/internal/errors"
	"github.com/estatehub/estate-api/internal/ports"
)

const (
	msgEmailRegistered  = "This email address already registered!"
	msgPropertyNotFound = "Property doesn't exist"
	overviewListingsCap = 100
)

// UserServiceOptions groups dependencies for UserService.
type UserServiceOptions struct {
	Users      core.UserRepository
	Properties core.PropertyRepository
	Hasher     ports.PasswordHasher
	Logger     *slog.Logger
}

// UserService owns registration and profile management.
type UserService struct {
	users      core.UserRepository
	properties core.PropertyRepository
	hasher     ports.PasswordHasher
	logger     *slog.Logger
}

var _ ports.UserLookup = (*UserService)(nil)

// NewUserService constructs a new UserService.
func NewUserService(opts UserServiceOptions) *UserService {
	return &UserService{
		users:      opts.Users,
		properties: opts.Properties,
		hasher:     opts.Hasher,
		logger:     opts.Logger,
	}
}

func (s *UserService) log() *slog.Logger {
	if s.logger != nil {
		return s.logger
	}
	return slog.Default()
}

// Register validates req, hashes the password and creates a user with the default role.
func (s *UserService) Register(ctx context.Context, req *model.CreateUserRequest) (*model.User, error) {
	if req == nil {
		return nil, apperrors.Validation("registration payload is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, core.CreateUserParams{
		Email:        req.Email,
		PasswordHash: hash,
		Name:         req.Name,
		Surname:      req.Surname,
		PhoneNumber:  req.PhoneNumber,
		Info:         req.Info,
		ProfilePic:   req.ProfilePic,
		Role:         domainauth.RoleUser,
	})
	if err != nil {
		if apperrors.IsConflict(err) {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeConflict, msgEmailRegistered)
		}
		return nil, err
	}
	s.log().InfoContext(ctx, "user registered", "user_id", user.ID)
	return user, nil
}

// GetByID implements ports.UserLookup. Unknown or malformed ids wrap ports.ErrUserNotFound.
func (s *UserService) GetByID(ctx context.Context, id string) (*model.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ports.ErrUserNotFound
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, fmt.Errorf("%w: %w", ports.ErrUserNotFound, err)
		}
		return nil, err
	}
	return user, nil
}

// Update applies a partial profile update. A new password is re-hashed.
func (s *UserService) Update(ctx context.Context, id string, req model.UpdateUserRequest) (*model.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	params := core.UpdateUserParams{
		Name:        req.Name,
		Surname:     req.Surname,
		PhoneNumber: req.PhoneNumber,
		Info:        req.Info,
		ProfilePic:  req.ProfilePic,
	}
	if req.Password != nil {
		hash, err := s.hasher.Hash(*req.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		params.PasswordHash = &hash
	}
	return s.users.Update(ctx, id, params)
}

// ToggleFeatured adds propertyID to the user's featured list, or removes it if present.
func (s *UserService) ToggleFeatured(ctx context.Context, user *model.User, propertyID string) (*model.User, error) {
	if user == nil {
		return nil, apperrors.Unauthenticated("authentication required")
	}
	if _, err := uuid.Parse(propertyID); err != nil {
		return nil, apperrors.NotFound(msgPropertyNotFound)
	}
	// Removing a listing that was since deleted must still work.
	if !user.HasFeatured(propertyID) {
		if _, err := s.properties.GetByID(ctx, propertyID); err != nil {
			return nil, err
		}
	}
	return s.users.ToggleFeatured(ctx, user.ID, propertyID)
}

// Overview bundles a user with their featured listings and their own listings.
type Overview struct {
	User     *model.User       `json:"user"`
	Featured []*model.Property `json:"featured"`
	Listings []*model.Property `json:"listings"`
}

// Overview loads featured and authored listings concurrently.
func (s *UserService) Overview(ctx context.Context, user *model.User) (*Overview, error) {
	if user == nil {
		return nil, apperrors.Unauthenticated("authentication required")
	}

	out := &Overview{User: user, Featured: []*model.Property{}, Listings: []*model.Property{}}
	g, gctx := errgroup.WithContext(ctx)

	if len(user.Featured) > 0 {
		g.Go(func() error {
			props, err := s.properties.List(gctx, model.PropertyListOptions{
				IDs:   user.Featured,
				Limit: len(user.Featured),
			})
			if err != nil {
				return fmt.Errorf("load featured properties: %w", err)
			}
			out.Featured = props
			return nil
		})
	}
	g.Go(func() error {
		email := user.Email
		props, err := s.properties.List(gctx, model.PropertyListOptions{
			AuthorEmail: &email,
			Limit:       overviewListingsCap,
		})
		if err != nil {
			return fmt.Errorf("load own properties: %w", err)
		}
		out.Listings = props
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// SetRole changes a user's role.
func (s *UserService) SetRole(ctx context.Context, id string, role string) (*model.User, error) {
	r, err := domainauth.ParseRole(role)
	if err != nil {
		return nil, apperrors.ValidationField("role", err.Error())
	}
	if _, parseErr := uuid.Parse(id); parseErr != nil {
		return nil, apperrors.NotFound("User not found")
	}
	user, err := s.users.SetRole(ctx, id, r)
	if err != nil {
		return nil, err
	}
	s.log().InfoContext(ctx, "user role changed", "user_id", id, "role", string(r))
	return user, nil
}
