package validator

import (
	"errors"
	"regexp"

	"github.com/go-playground/validator/v10"

	"skillex/pkg/logger"
	"skillex/pkg/model"
	"skillex/pkg/validation"
)

// Time slots use 24h ranges like "09:00-11:30".
var timeSlotRegex = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d-([01]\d|2[0-3]):[0-5]\d$`)

type ListingValidator struct {
	validate *validator.Validate
	log      *logger.Logger
}

func NewListingValidator(log *logger.Logger) *ListingValidator {
	return &ListingValidator{
		validate: validator.New(),
		log:      log,
	}
}

func (v *ListingValidator) Validate(listing *model.Listing) error {
	if err := v.validate.Struct(listing); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return validation.Translate(validationErrs)
		}
		return err
	}

	return checkTimeSlots(listing.Availability.TimeSlots)
}

func (v *ListingValidator) ValidateUpdate(update *model.ListingUpdate) error {
	if err := v.validate.Struct(update); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return validation.Translate(validationErrs)
		}
		return err
	}

	if update.Location != nil && update.Location.Type != "" {
		switch update.Location.Type {
		case "in-person", "online", "both":
		default:
			return validation.FieldErrors{
				validation.FieldError{Field: "Location.Type", Message: "location type must be one of: in-person online both"},
			}
		}
	}
	if update.Availability != nil {
		return checkTimeSlots(update.Availability.TimeSlots)
	}
	return nil
}

func checkTimeSlots(slots []string) error {
	for _, slot := range slots {
		if !timeSlotRegex.MatchString(slot) {
			return validation.FieldErrors{
				validation.FieldError{Field: "Availability.TimeSlots", Message: "time slots must look like 09:00-11:30"},
			}
		}
	}
	return nil
}
