package data

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/estatehub/estate-api/internal/domain/model"
	"github.com/estatehub/estate-api/internal/testutil"
)

func newPropertyRequest(typ string) *model.CreatePropertyRequest {
	return testutil.NewPropertyRequest().WithType(typ).Build()
}

func TestPropertyRepo_CRUD(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewPropertyRepo(db)
		author := createTestUser(t, db, "author@example.com")

		p, err := repo.Create(ctx, author.ID, newPropertyRequest("house"))
		require.NoError(t, err)
		require.NotEmpty(t, p.ID)
		assert.Equal(t, model.PropertyTypeHouse, p.Type)
		assert.Equal(t, author.ID, p.AuthorID)
		assert.Equal(t, author.Author(), p.Author)

		got, err := repo.GetByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, p.Address, got.Address)

		price := "95000"
		updated, err := repo.Update(ctx, p.ID, model.UpdatePropertyRequest{Price: &price})
		require.NoError(t, err)
		assert.Equal(t, "95000", updated.Price)
		assert.Equal(t, "1 Main St", updated.Address)

		require.NoError(t, repo.Delete(ctx, p.ID))
		_, err = repo.GetByID(ctx, p.ID)
		require.ErrorIs(t, err, ErrPropertyNotFound)
		require.ErrorIs(t, repo.Delete(ctx, p.ID), ErrPropertyNotFound)
	})
}

func TestPropertyRepo_ListFilters(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewPropertyRepo(db)
		a := createTestUser(t, db, "a@example.com")
		b := createTestUser(t, db, "b@example.com")

		house, err := repo.Create(ctx, a.ID, newPropertyRequest("house"))
		require.NoError(t, err)
		flat, err := repo.Create(ctx, b.ID, newPropertyRequest("apartment"))
		require.NoError(t, err)

		all, err := repo.List(ctx, model.PropertyListOptions{})
		require.NoError(t, err)
		assert.Len(t, all, 2)

		typ := model.PropertyTypeApartment
		onlyFlats, err := repo.List(ctx, model.PropertyListOptions{Type: &typ})
		require.NoError(t, err)
		require.Len(t, onlyFlats, 1)
		assert.Equal(t, flat.ID, onlyFlats[0].ID)

		email := "A@example.com"
		byAuthor, err := repo.List(ctx, model.PropertyListOptions{AuthorEmail: &email})
		require.NoError(t, err)
		require.Len(t, byAuthor, 1)
		assert.Equal(t, house.ID, byAuthor[0].ID)

		byIDs, err := repo.List(ctx, model.PropertyListOptions{IDs: []string{house.ID}})
		require.NoError(t, err)
		require.Len(t, byIDs, 1)

		none, err := repo.List(ctx, model.PropertyListOptions{IDs: []string{}})
		require.NoError(t, err)
		assert.Empty(t, none)
	})
}

func TestPropertyRepo_DeleteClearsFeatured(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		ctx := context.Background()
		props := NewPropertyRepo(db)
		users := NewUserRepo(db)
		author := createTestUser(t, db, "owner@example.com")
		fan := createTestUser(t, db, "fan@example.com")

		p, err := props.Create(ctx, author.ID, newPropertyRequest("townhouse"))
		require.NoError(t, err)
		_, err = users.ToggleFeatured(ctx, fan.ID, p.ID)
		require.NoError(t, err)

		require.NoError(t, props.Delete(ctx, p.ID))

		got, err := users.GetByID(ctx, fan.ID)
		require.NoError(t, err)
		assert.Empty(t, got.Featured)
	})
}
