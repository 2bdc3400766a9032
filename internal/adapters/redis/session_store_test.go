package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/estatehub/estate-api/internal/domain/auth"
	apperrors "github.com/estatehub/estate-api/internal/errors"
	"github.com/estatehub/estate-api/internal/ports"
	"github.com/estatehub/estate-api/internal/testutil"
)

func setupStore(t *testing.T) (*SessionStore, *miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, client := testutil.SetupTestRedis(t)
	return NewSessionStore(client), mr, client
}

func testSnapshot(userID string) domainauth.Session {
	return domainauth.Session{
		UserID:      userID,
		Email:       userID + "@example.com",
		Name:        "Test",
		Surname:     "User",
		PhoneNumber: "+38-050-123-45-67",
		Role:        domainauth.RoleUser,
		IssuedAt:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestSessionStore_PutAndGet(t *testing.T) {
	store, mr, _ := setupStore(t)
	ctx := context.Background()

	snap := testSnapshot("u1")
	require.NoError(t, store.Put(ctx, "u1", snap, time.Hour))

	got, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, snap, got)

	assert.True(t, mr.Exists("session:u1"))
	assert.Equal(t, time.Hour, mr.TTL("session:u1"))
}

func TestSessionStore_GetMissing(t *testing.T) {
	store, _, _ := setupStore(t)

	_, err := store.Get(context.Background(), "nobody")
	require.ErrorIs(t, err, ports.ErrSessionNotFound)

	_, err = store.Get(context.Background(), "")
	require.ErrorIs(t, err, ports.ErrSessionNotFound)
}

func TestSessionStore_PutOverwritesAndResetsTTL(t *testing.T) {
	store, mr, _ := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "u1", testSnapshot("u1"), time.Hour))
	mr.FastForward(30 * time.Minute)

	second := testSnapshot("u1")
	second.Name = "Renamed"
	require.NoError(t, store.Put(ctx, "u1", second, time.Hour))

	assert.Equal(t, time.Hour, mr.TTL("session:u1"))
	assert.Len(t, mr.Keys(), 1)

	got, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
}

func TestSessionStore_Expiry(t *testing.T) {
	store, mr, _ := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "u1", testSnapshot("u1"), time.Minute))
	mr.FastForward(time.Minute + time.Second)

	_, err := store.Get(ctx, "u1")
	require.ErrorIs(t, err, ports.ErrSessionNotFound)
}

func TestSessionStore_DeleteIsIdempotent(t *testing.T) {
	store, _, _ := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "u1", testSnapshot("u1"), time.Hour))
	require.NoError(t, store.Delete(ctx, "u1"))
	require.NoError(t, store.Delete(ctx, "u1"))
	require.NoError(t, store.Delete(ctx, ""))

	_, err := store.Get(ctx, "u1")
	require.ErrorIs(t, err, ports.ErrSessionNotFound)
}

func TestSessionStore_PutRejectsBadInput(t *testing.T) {
	store, _, _ := setupStore(t)
	ctx := context.Background()

	require.Error(t, store.Put(ctx, "", testSnapshot("u1"), time.Hour))
	require.Error(t, store.Put(ctx, "u1", testSnapshot("u1"), 0))
}

func TestSessionStore_CorruptValue(t *testing.T) {
	store, mr, _ := setupStore(t)
	require.NoError(t, mr.Set("session:u1", "{not json"))

	_, err := store.Get(context.Background(), "u1")
	require.Error(t, err)
	assert.True(t, apperrors.IsInternal(err))
	assert.False(t, errors.Is(err, ports.ErrSessionNotFound))
}

func TestSessionStore_UnavailableIsNotAbsent(t *testing.T) {
	store, mr, _ := setupStore(t)
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "u1", testSnapshot("u1"), time.Hour))

	mr.Close()

	_, err := store.Get(ctx, "u1")
	require.Error(t, err)
	assert.True(t, apperrors.IsStoreUnavailable(err))
	assert.False(t, errors.Is(err, ports.ErrSessionNotFound))

	assert.True(t, apperrors.IsStoreUnavailable(store.Put(ctx, "u1", testSnapshot("u1"), time.Hour)))
	assert.True(t, apperrors.IsStoreUnavailable(store.Delete(ctx, "u1")))
	assert.True(t, apperrors.IsStoreUnavailable(store.Ping(ctx)))
}

func TestSessionStore_CustomPrefix(t *testing.T) {
	_, mr, client := setupStore(t)
	store := NewSessionStoreWithPrefix(client, "test-prefix:")

	require.NoError(t, store.Put(context.Background(), "u1", testSnapshot("u1"), time.Hour))
	assert.True(t, mr.Exists("test-prefix:u1"))
	assert.False(t, mr.Exists("session:u1"))
}

func TestSessionStore_Scan(t *testing.T) {
	store, mr, _ := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "u1", testSnapshot("u1"), time.Hour))
	require.NoError(t, store.Put(ctx, "u2", testSnapshot("u2"), 2*time.Hour))
	require.NoError(t, mr.Set("session:broken", "nope"))
	require.NoError(t, mr.Set("unrelated", "x"))

	seen := map[string]time.Duration{}
	err := store.Scan(ctx, func(ls LiveSession) error {
		assert.Equal(t, ls.Subject, ls.Session.UserID)
		seen[ls.Subject] = ls.TTL
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]time.Duration{"u1": time.Hour, "u2": 2 * time.Hour}, seen)

	stop := errors.New("stop")
	calls := 0
	err = store.Scan(ctx, func(LiveSession) error {
		calls++
		return stop
	})
	require.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}
