package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"github.com/estatehub/estate-api/internal/adapters/password"
	apperrors "github.com/estatehub/estate-api/internal/errors"
	"github.com/estatehub/estate-api/internal/mocks"
)

func newCredentialService(t *testing.T) (*mocks.MockUserRepository, *password.Hasher, *CredentialService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockUserRepository(ctrl)
	hasher := password.NewHasher(bcrypt.MinCost)
	return repo, hasher, NewCredentialService(CredentialServiceOptions{Users: repo, Hasher: hasher})
}

func TestCredentialService_VerifyCredentials_Success(t *testing.T) {
	repo, hasher, svc := newCredentialService(t)
	hash, err := hasher.Hash(testPassword)
	require.NoError(t, err)
	stored := testUser()
	stored.PasswordHash = hash

	repo.EXPECT().GetByEmail(gomock.Any(), testEmail).Return(stored, nil)

	user, err := svc.VerifyCredentials(context.Background(), "  Jane@Example.com ", testPassword)
	require.NoError(t, err)
	assert.Equal(t, testUserID, user.ID)
}

func TestCredentialService_VerifyCredentials_WrongPassword(t *testing.T) {
	repo, hasher, svc := newCredentialService(t)
	hash, err := hasher.Hash(testPassword)
	require.NoError(t, err)
	stored := testUser()
	stored.PasswordHash = hash

	repo.EXPECT().GetByEmail(gomock.Any(), testEmail).Return(stored, nil)

	user, err := svc.VerifyCredentials(context.Background(), testEmail, "wrong-password")
	assert.Nil(t, user)
	assert.True(t, apperrors.IsInvalidCredentials(err))
	assert.Equal(t, "Wrong email or password", err.Error())
}

func TestCredentialService_VerifyCredentials_UnknownEmail(t *testing.T) {
	repo, _, svc := newCredentialService(t)
	repo.EXPECT().GetByEmail(gomock.Any(), "ghost@example.com").Return(nil, apperrors.NotFound("User not found"))

	user, err := svc.VerifyCredentials(context.Background(), "ghost@example.com", testPassword)
	assert.Nil(t, user)
	assert.True(t, apperrors.IsInvalidCredentials(err))
}

func TestCredentialService_VerifyCredentials_InvalidEmailSkipsLookup(t *testing.T) {
	_, _, svc := newCredentialService(t)

	_, err := svc.VerifyCredentials(context.Background(), "not-an-email", testPassword)
	assert.True(t, apperrors.IsInvalidCredentials(err))
}

func TestCredentialService_VerifyCredentials_RepositoryFailure(t *testing.T) {
	repo, _, svc := newCredentialService(t)
	repo.EXPECT().GetByEmail(gomock.Any(), testEmail).Return(nil, errors.New("connection reset"))

	_, err := svc.VerifyCredentials(context.Background(), testEmail, testPassword)
	require.Error(t, err)
	assert.False(t, apperrors.IsInvalidCredentials(err))
	assert.Contains(t, err.Error(), "load user by email")
}

func TestCredentialService_UnknownEmailStillCompares(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockUserRepository(ctrl)
	hasher := mocks.NewMockPasswordHasher(ctrl)
	svc := NewCredentialService(CredentialServiceOptions{Users: repo, Hasher: hasher})

	repo.EXPECT().GetByEmail(gomock.Any(), gomock.Any()).Return(nil, apperrors.NotFound("User not found")).Times(2)
	hasher.EXPECT().Hash(dummyPassword).Return("$dummy$", nil).Times(1)
	hasher.EXPECT().Compare("$dummy$", testPassword).Return(errors.New("mismatch")).Times(2)

	for range 2 {
		_, err := svc.VerifyCredentials(context.Background(), "ghost@example.com", testPassword)
		assert.True(t, apperrors.IsInvalidCredentials(err))
	}
}
