package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/estatehub/estate-api/internal/domain/auth"
	"github.com/estatehub/estate-api/internal/domain/model"
	apperrors "github.com/estatehub/estate-api/internal/errors"
	"github.com/estatehub/estate-api/internal/ports"
)

func TestStubTokenCodec_RoundTrip(t *testing.T) {
	codec := &StubTokenCodec{}

	token, err := codec.Issue("u-1", domainauth.TokenKindAccess, time.Minute)
	require.NoError(t, err)

	subject, err := codec.Verify(token, domainauth.TokenKindAccess)
	require.NoError(t, err)
	assert.Equal(t, "u-1", subject)

	_, err = codec.Verify(token, domainauth.TokenKindRefresh)
	require.ErrorIs(t, err, domainauth.ErrTokenInvalidSignature)

	_, err = codec.Verify("garbage", domainauth.TokenKindAccess)
	require.ErrorIs(t, err, domainauth.ErrTokenMalformed)
}

func TestStubTokenCodec_Overrides(t *testing.T) {
	codec := &StubTokenCodec{
		VerifyFunc: func(string, domainauth.TokenKind) (string, error) {
			return "", domainauth.ErrTokenExpired
		},
	}
	_, err := codec.Verify("access:u-1", domainauth.TokenKindAccess)
	require.ErrorIs(t, err, domainauth.ErrTokenExpired)
}

func TestMemorySessionStore_Lifecycle(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	_, err := store.Get(ctx, "u-1")
	require.ErrorIs(t, err, ports.ErrSessionNotFound)

	require.NoError(t, store.Put(ctx, "u-1", domainauth.Session{UserID: "u-1", Role: domainauth.RoleUser}, time.Hour))
	assert.True(t, store.Has("u-1"))
	assert.Equal(t, time.Hour, store.TTL("u-1"))

	// Last writer wins.
	require.NoError(t, store.Put(ctx, "u-1", domainauth.Session{UserID: "u-1", Role: domainauth.RoleAdmin}, time.Minute))
	sess, err := store.Get(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, domainauth.RoleAdmin, sess.Role)

	store.Expire("u-1")
	assert.False(t, store.Has("u-1"))

	require.NoError(t, store.Delete(ctx, "missing"))
	require.Error(t, store.Put(ctx, "", domainauth.Session{}, time.Minute))
}

func TestMemorySessionStore_Unavailable(t *testing.T) {
	store := NewMemorySessionStore()
	store.Err = errors.New("connection refused")

	_, err := store.Get(context.Background(), "u-1")
	assert.True(t, apperrors.IsStoreUnavailable(err))
}

func TestStaticUserLookup(t *testing.T) {
	users := NewStaticUserLookup(&model.User{ID: "u-1", Email: "a@example.com"})
	ctx := context.Background()

	u, err := users.GetByID(ctx, "u-1")
	require.NoError(t, err)
	u.Email = "changed@example.com"

	again, err := users.GetByID(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", again.Email, "lookups return copies")

	users.Remove("u-1")
	_, err = users.GetByID(ctx, "u-1")
	require.ErrorIs(t, err, ports.ErrUserNotFound)
}

func TestStaticCredentialVerifier(t *testing.T) {
	users := NewStaticUserLookup(&model.User{ID: "u-1", Email: "a@example.com"})
	verifier := &StaticCredentialVerifier{
		Passwords: map[string]string{"a@example.com": "pw"},
		Users:     users,
	}
	ctx := context.Background()

	u, err := verifier.VerifyCredentials(ctx, " A@example.com ", "pw")
	require.NoError(t, err)
	assert.Equal(t, "u-1", u.ID)

	_, err = verifier.VerifyCredentials(ctx, "a@example.com", "nope")
	assert.True(t, apperrors.IsInvalidCredentials(err))
}
