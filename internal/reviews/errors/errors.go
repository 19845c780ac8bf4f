package errors

import "errors"

var (
	ErrNotFound = errors.New("review not found")

	ErrInvalidID = errors.New("invalid review ID format")

	// ErrDuplicateBooking surfaces the unique index on booking_id.
	ErrDuplicateBooking = errors.New("booking already reviewed")
)
