package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	domainauth "github.com/estatehub/estate-api/internal/domain/auth"
	apperrors "github.com/estatehub/estate-api/internal/errors"
	"github.com/estatehub/estate-api/internal/mocks"
	authmocks "github.com/estatehub/estate-api/internal/mocks/auth"
)

func newResolverFixture(t *testing.T) (*IdentityResolver, *authmocks.MemorySessionStore, *authmocks.StaticUserLookup) {
	t.Helper()
	sessions := authmocks.NewMemorySessionStore()
	users := authmocks.NewStaticUserLookup(testUser())
	r := NewIdentityResolver(IdentityResolverOptions{
		Tokens:   &authmocks.StubTokenCodec{},
		Sessions: sessions,
		Users:    users,
	})
	require.NoError(t, sessions.Put(context.Background(), testUserID,
		testUser().Snapshot(time.Now()), time.Hour))
	return r, sessions, users
}

func TestIdentityResolver_Resolve(t *testing.T) {
	r, _, _ := newResolverFixture(t)

	actx, err := r.Resolve(context.Background(), "access:"+testUserID)

	require.NoError(t, err)
	assert.True(t, actx.Authenticated())
	assert.Equal(t, testUserID, actx.UserID())
	assert.Equal(t, domainauth.RoleUser, actx.Role())
}

func TestIdentityResolver_ReturnsFreshUserNotSnapshot(t *testing.T) {
	r, _, users := newResolverFixture(t)
	promoted := testUser()
	promoted.Role = domainauth.RoleAdmin
	promoted.Name = "Janet"
	users.Users[testUserID] = promoted

	actx, err := r.Resolve(context.Background(), "access:"+testUserID)

	require.NoError(t, err)
	assert.Equal(t, domainauth.RoleAdmin, actx.Role())
	assert.Equal(t, "Janet", actx.User.Name)
}

func TestIdentityResolver_Anonymous(t *testing.T) {
	tests := []struct {
		name  string
		token string
		setup func(*authmocks.MemorySessionStore, *authmocks.StaticUserLookup)
	}{
		{name: "no token", token: ""},
		{name: "malformed token", token: "garbage"},
		{name: "refresh token presented as access", token: "refresh:" + testUserID},
		{
			name:  "session expired",
			token: "access:" + testUserID,
			setup: func(s *authmocks.MemorySessionStore, _ *authmocks.StaticUserLookup) { s.Expire(testUserID) },
		},
		{
			name:  "user deleted",
			token: "access:" + testUserID,
			setup: func(_ *authmocks.MemorySessionStore, u *authmocks.StaticUserLookup) { u.Remove(testUserID) },
		},
		{
			name:  "snapshot for another user",
			token: "access:" + testUserID,
			setup: func(s *authmocks.MemorySessionStore, _ *authmocks.StaticUserLookup) {
				_ = s.Put(context.Background(), testUserID, domainauth.Session{UserID: otherUserID}, time.Hour)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, sessions, users := newResolverFixture(t)
			if tt.setup != nil {
				tt.setup(sessions, users)
			}

			actx, err := r.Resolve(context.Background(), tt.token)

			require.NoError(t, err)
			assert.False(t, actx.Authenticated())
			assert.Empty(t, actx.UserID())
			assert.Empty(t, actx.Role())
		})
	}
}

func TestIdentityResolver_StoreUnavailableSurfaces(t *testing.T) {
	r, sessions, _ := newResolverFixture(t)
	sessions.Err = errors.New("dial tcp: connection refused")

	actx, err := r.Resolve(context.Background(), "access:"+testUserID)

	assert.True(t, apperrors.IsStoreUnavailable(err))
	assert.False(t, actx.Authenticated())
}

func TestIdentityResolver_UserLookupFailureSurfaces(t *testing.T) {
	r, _, users := newResolverFixture(t)
	users.Err = errors.New("db down")

	_, err := r.Resolve(context.Background(), "access:"+testUserID)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "load session user")
}

func TestIdentityResolver_VerifiesAsAccessKind(t *testing.T) {
	ctrl := gomock.NewController(t)
	codec := mocks.NewMockTokenCodec(ctrl)
	codec.EXPECT().Verify("tok", domainauth.TokenKindAccess).Return("", domainauth.ErrTokenExpired)

	r := NewIdentityResolver(IdentityResolverOptions{
		Tokens:   codec,
		Sessions: authmocks.NewMemorySessionStore(),
		Users:    authmocks.NewStaticUserLookup(),
	})

	actx, err := r.Resolve(context.Background(), "tok")
	require.NoError(t, err)
	assert.False(t, actx.Authenticated())
}
