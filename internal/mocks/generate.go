// Package mocks provides gomock implementations of the repository and token interfaces.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	users := mocks.NewMockUserRepository(ctrl)
//	users.EXPECT().GetByEmail(gomock.Any(), "a@b.com").Return(user, nil)
//
// Hand-rolled fakes for the session-lifecycle ports live in mocks/auth.
package mocks

// Create, GetByID, GetByEmail, Update, SetRole, ToggleFeatured
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=user_repository_mock.go github.com/estatehub/estate-api/internal/core UserRepository

// Create, GetByID, List, Update, Delete
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=property_repository_mock.go github.com/estatehub/estate-api/internal/core PropertyRepository

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=token_codec_mock.go github.com/estatehub/estate-api/internal/ports TokenCodec

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=password_hasher_mock.go github.com/estatehub/estate-api/internal/ports PasswordHasher
