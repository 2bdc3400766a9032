package data

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/estatehub/estate-api/internal/core"
	domainauth "github.com/estatehub/estate-api/internal/domain/auth"
	"github.com/estatehub/estate-api/internal/domain/model"
	apperrors "github.com/estatehub/estate-api/internal/errors"
	"github.com/estatehub/estate-api/internal/testutil"
)

var phoneSeq int

func createTestUser(t *testing.T, db *sql.DB, email string) *model.User {
	t.Helper()
	phoneSeq++
	u, err := NewUserRepo(db).Create(context.Background(), core.CreateUserParams{
		Email:        email,
		PasswordHash: "$2a$04$hash",
		Name:         "Test",
		Surname:      "User",
		PhoneNumber:  fmt.Sprintf("+38-050-%03d-45-67", phoneSeq%1000),
	})
	require.NoError(t, err)
	return u
}

func TestUserRepo_CreateAndGet(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewUserRepo(db)

		u := createTestUser(t, db, "Alice@Example.com")
		require.NotEmpty(t, u.ID)
		assert.Equal(t, "alice@example.com", u.Email)
		assert.Equal(t, domainauth.RoleUser, u.Role)
		assert.Equal(t, []string{}, u.Featured)
		assert.NotZero(t, u.CreatedAt)

		byID, err := repo.GetByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, u.Email, byID.Email)

		byEmail, err := repo.GetByEmail(ctx, " ALICE@example.com ")
		require.NoError(t, err)
		assert.Equal(t, u.ID, byEmail.ID)
	})
}

func TestUserRepo_DuplicateEmailIsConflict(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		createTestUser(t, db, "dup@example.com")

		_, err := NewUserRepo(db).Create(context.Background(), core.CreateUserParams{
			Email: "dup@example.com", PasswordHash: "x", Name: "a", Surname: "b", PhoneNumber: "+38-099-999-99-99",
		})
		require.Error(t, err)
		assert.True(t, apperrors.IsConflict(err))
		assert.Equal(t, "email", apperrors.GetField(err))
	})
}

func TestUserRepo_GetMissing(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		_, err := NewUserRepo(db).GetByID(context.Background(), "00000000-0000-0000-0000-000000000000")
		require.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestUserRepo_UpdateAndSetRole(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		tp := testutil.NewFakeClock(time.Now().Add(time.Hour).UTC().Truncate(time.Microsecond))
		repo := NewUserRepoWithClock(db, tp.Now)
		u := createTestUser(t, db, "bob@example.com")

		updated, err := repo.Update(ctx, u.ID, core.UpdateUserParams{
			Name: testutil.StringPtr("Robert"),
			Info: testutil.StringPtr("likes lofts"),
		})
		require.NoError(t, err)
		assert.Equal(t, "Robert", updated.Name)
		assert.Equal(t, "likes lofts", updated.Info)
		assert.Equal(t, "User", updated.Surname)
		assert.True(t, updated.UpdatedAt.Equal(tp.Now()))

		same, err := repo.Update(ctx, u.ID, core.UpdateUserParams{})
		require.NoError(t, err)
		assert.Equal(t, "Robert", same.Name)

		admin, err := repo.SetRole(ctx, u.ID, domainauth.RoleAdmin)
		require.NoError(t, err)
		assert.True(t, admin.IsAdmin())

		_, err = repo.SetRole(ctx, u.ID, domainauth.Role("root"))
		assert.True(t, apperrors.IsValidation(err))
	})
}

func TestUserRepo_ToggleFeatured(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewUserRepo(db)
		u := createTestUser(t, db, "carol@example.com")

		on, err := repo.ToggleFeatured(ctx, u.ID, "p1")
		require.NoError(t, err)
		assert.Equal(t, []string{"p1"}, on.Featured)

		both, err := repo.ToggleFeatured(ctx, u.ID, "p2")
		require.NoError(t, err)
		assert.Equal(t, []string{"p1", "p2"}, both.Featured)

		off, err := repo.ToggleFeatured(ctx, u.ID, "p1")
		require.NoError(t, err)
		assert.Equal(t, []string{"p2"}, off.Featured)
	})
}
