package errors

import "errors"

var (
	ErrNotFound = errors.New("message not found")

	ErrInvalidID = errors.New("invalid message ID format")
)
