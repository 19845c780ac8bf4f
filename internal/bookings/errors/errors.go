package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	// ErrDuplicate surfaces the partial unique index on
	// (learner, listing, requested date) over non-terminal bookings.
	ErrDuplicate = errors.New("duplicate booking for listing and date")
)
