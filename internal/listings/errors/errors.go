package errors

import "errors"

var (
	ErrNotFound = errors.New("listing not found")

	ErrInvalidID = errors.New("invalid listing ID format")

	ErrDuplicateFavorite = errors.New("listing already in favorites")

	ErrFavoriteNotFound = errors.New("favorite not found")
)
