package data

import apperrors "github.com/estatehub/estate-api/internal/errors"

// Shared sentinel errors for data-layer repositories.
var (
	// ErrUserNotFound is returned when a user row does not exist.
	ErrUserNotFound = apperrors.NotFound("User not found")
	// ErrPropertyNotFound is returned when a listing does not exist.
	ErrPropertyNotFound = apperrors.NotFound("Property doesn't exist")
)
