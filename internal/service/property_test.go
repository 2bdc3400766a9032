package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	domainauth "github.com/estatehub/estate-api/internal/domain/auth"
	"github.com/estatehub/estate-api/internal/domain/model"
	apperrors "github.com/estatehub/estate-api/internal/errors"
	"github.com/estatehub/estate-api/internal/mocks"
	"github.com/estatehub/estate-api/internal/testutil"
)

func newPropertyService(t *testing.T) (*mocks.MockPropertyRepository, *PropertyService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockPropertyRepository(ctrl)
	return repo, NewPropertyService(PropertyServiceOptions{Properties: repo})
}

func ownedProperty() *model.Property {
	return &model.Property{ID: testPropertyID, AuthorID: testUserID, Type: model.PropertyTypeHouse}
}

func TestPropertyService_Create(t *testing.T) {
	repo, svc := newPropertyService(t)
	req := &model.CreatePropertyRequest{
		Type: "House", State: "new", Price: "100000", Address: "1 Main St",
		Area: "120", Rooms: "4", Floor: "2", Images: []string{" https://img/1.jpg "},
	}
	repo.EXPECT().Create(gomock.Any(), testUserID, req).Return(ownedProperty(), nil)

	p, err := svc.Create(context.Background(), testUser(), req)
	require.NoError(t, err)
	assert.Equal(t, testPropertyID, p.ID)
	assert.Equal(t, "house", req.Type)
	assert.Equal(t, []string{"https://img/1.jpg"}, req.Images)
}

func TestPropertyService_Create_RequiresActorAndValidPayload(t *testing.T) {
	_, svc := newPropertyService(t)

	_, err := svc.Create(context.Background(), nil, &model.CreatePropertyRequest{})
	assert.True(t, apperrors.IsUnauthenticated(err))

	_, err = svc.Create(context.Background(), testUser(), &model.CreatePropertyRequest{Type: "castle"})
	assert.True(t, apperrors.IsValidation(err))
}

func TestPropertyService_GetByID_InvalidID(t *testing.T) {
	_, svc := newPropertyService(t)
	_, err := svc.GetByID(context.Background(), "nope")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestPropertyService_List_NormalizesPaging(t *testing.T) {
	repo, svc := newPropertyService(t)
	repo.EXPECT().List(gomock.Any(), model.PropertyListOptions{Limit: 100, Offset: 0}).Return(nil, nil)
	repo.EXPECT().List(gomock.Any(), model.PropertyListOptions{Limit: 20, Offset: 5}).Return(nil, nil)

	_, err := svc.List(context.Background(), model.PropertyListOptions{Limit: 500, Offset: -3})
	require.NoError(t, err)
	_, err = svc.List(context.Background(), model.PropertyListOptions{Offset: 5})
	require.NoError(t, err)
}

func TestPropertyService_ListByAuthor(t *testing.T) {
	repo, svc := newPropertyService(t)
	repo.EXPECT().List(gomock.Any(), gomock.Cond(func(o model.PropertyListOptions) bool {
		return o.AuthorEmail != nil && *o.AuthorEmail == testEmail && o.Limit == 20
	})).Return([]*model.Property{ownedProperty()}, nil)

	props, err := svc.ListByAuthor(context.Background(), "JANE@example.com", 0, 0)
	require.NoError(t, err)
	assert.Len(t, props, 1)

	_, err = svc.ListByAuthor(context.Background(), "bad", 0, 0)
	assert.True(t, apperrors.IsValidation(err))
}

func TestPropertyService_Update_Ownership(t *testing.T) {
	stranger := testUser()
	stranger.ID = otherUserID
	admin := testUser()
	admin.ID = otherUserID
	admin.Role = domainauth.RoleAdmin

	tests := []struct {
		name    string
		actor   *model.User
		allowed bool
	}{
		{"author", testUser(), true},
		{"admin", admin, true},
		{"stranger", stranger, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, svc := newPropertyService(t)
			repo.EXPECT().GetByID(gomock.Any(), testPropertyID).Return(ownedProperty(), nil)
			if tt.allowed {
				repo.EXPECT().Update(gomock.Any(), testPropertyID, gomock.Any()).Return(ownedProperty(), nil)
			}

			_, err := svc.Update(context.Background(), tt.actor, testPropertyID,
				model.UpdatePropertyRequest{Price: testutil.StringPtr("90000")})

			if tt.allowed {
				require.NoError(t, err)
				return
			}
			assert.True(t, apperrors.IsForbidden(err))
		})
	}
}

func TestPropertyService_Delete(t *testing.T) {
	repo, svc := newPropertyService(t)
	repo.EXPECT().GetByID(gomock.Any(), testPropertyID).Return(ownedProperty(), nil)
	repo.EXPECT().Delete(gomock.Any(), testPropertyID).Return(nil)

	require.NoError(t, svc.Delete(context.Background(), testUser(), testPropertyID))
}

func TestPropertyService_Delete_Missing(t *testing.T) {
	repo, svc := newPropertyService(t)
	repo.EXPECT().GetByID(gomock.Any(), testPropertyID).Return(nil, apperrors.NotFound("Property doesn't exist"))

	err := svc.Delete(context.Background(), testUser(), testPropertyID)
	assert.True(t, apperrors.IsNotFound(err))
}
