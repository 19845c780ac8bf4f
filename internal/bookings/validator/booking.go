package validator

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"

	"skillex/pkg/logger"
	"skillex/pkg/model"
	"skillex/pkg/validation"
)

// DateLayout is the wire format for requested dates.
const DateLayout = "2006-01-02"

type BookingValidator struct {
	validate *validator.Validate
	log      *logger.Logger
}

func NewBookingValidator(log *logger.Logger) *BookingValidator {
	return &BookingValidator{
		validate: validator.New(),
		log:      log,
	}
}

// ParseRequestedDate parses and range-checks the requested date. Dates are
// stored as UTC midnight; anything before today is rejected.
func (v *BookingValidator) ParseRequestedDate(raw string) (time.Time, error) {
	parsed, err := time.Parse(DateLayout, raw)
	if err != nil {
		return time.Time{}, validation.FieldErrors{
			validation.FieldError{Field: "RequestedDate", Message: "requested date must look like 2006-01-02"},
		}
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	if parsed.Before(today) {
		return time.Time{}, validation.FieldErrors{
			validation.FieldError{Field: "RequestedDate", Message: "requested date cannot be in the past"},
		}
	}

	return parsed, nil
}

func (v *BookingValidator) ValidateRequest(req *model.BookingRequest) error {
	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return validation.Translate(validationErrs)
		}
		return err
	}
	return nil
}

func (v *BookingValidator) Validate(booking *model.Booking) error {
	if err := v.validate.Struct(booking); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return validation.Translate(validationErrs)
		}
		return err
	}
	return nil
}
