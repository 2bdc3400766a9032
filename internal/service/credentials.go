package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/estatehub/estate-api/internal/core"
	"github.com/estatehub/estate-api/internal/domain/model"
	apperrors "github.com/estatehub/estate-api/internal/errors"
	"github.com/estatehub/estate-api/internal/ports"
)

const dummyPassword = "estate-api/no-such-user"

// CredentialServiceOptions groups dependencies for CredentialService.
type CredentialServiceOptions struct {
	Users  core.UserRepository
	Hasher ports.PasswordHasher
	Logger *slog.Logger
}

// CredentialService implements ports.CredentialVerifier on top of the user repository.
type CredentialService struct {
	users  core.UserRepository
	hasher ports.PasswordHasher
	logger *slog.Logger

	dummyOnce sync.Once
	dummyHash string
}

var _ ports.CredentialVerifier = (*CredentialService)(nil)

// NewCredentialService constructs a new CredentialService.
func NewCredentialService(opts CredentialServiceOptions) *CredentialService {
	return &CredentialService{users: opts.Users, hasher: opts.Hasher, logger: opts.Logger}
}

func (s *CredentialService) log() *slog.Logger {
	if s.logger != nil {
		return s.logger
	}
	return slog.Default()
}

// VerifyCredentials returns the user owning email when password matches.
// Unknown emails still pay for one hash comparison so response timing does not
// reveal which addresses are registered.
func (s *CredentialService) VerifyCredentials(ctx context.Context, email, password string) (*model.User, error) {
	password = strings.TrimSpace(password)

	normalized, err := model.NormalizeEmail(email)
	if err != nil {
		s.burnComparison(password)
		return nil, apperrors.InvalidCredentials()
	}

	user, err := s.users.GetByEmail(ctx, normalized)
	if err != nil {
		if apperrors.IsNotFound(err) {
			s.burnComparison(password)
			return nil, apperrors.InvalidCredentials()
		}
		return nil, fmt.Errorf("load user by email: %w", err)
	}

	if cmpErr := s.hasher.Compare(user.PasswordHash, password); cmpErr != nil {
		return nil, apperrors.InvalidCredentials()
	}
	return user, nil
}

func (s *CredentialService) burnComparison(password string) {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.Hash(dummyPassword)
		if err != nil {
			s.log().Warn("failed to prepare dummy password hash", "error", err)
			return
		}
		s.dummyHash = h
	})
	if s.dummyHash == "" {
		return
	}
	_ = s.hasher.Compare(s.dummyHash, password)
}
