package validator

import (
	"errors"

	"github.com/go-playground/validator/v10"

	"skillex/pkg/logger"
	"skillex/pkg/model"
	"skillex/pkg/validation"
)

const (
	maxTags      = 20
	maxTagLength = 50
)

type UserValidator struct {
	validate *validator.Validate
	log      *logger.Logger
}

func NewUserValidator(log *logger.Logger) *UserValidator {
	return &UserValidator{
		validate: validator.New(),
		log:      log,
	}
}

func (v *UserValidator) Validate(user *model.User) error {
	if err := v.validate.Struct(user); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return validation.Translate(validationErrs)
		}
		return err
	}

	if err := checkTagList("Skills", user.Skills); err != nil {
		return err
	}
	return checkTagList("Interests", user.Interests)
}

func (v *UserValidator) ValidateUpdate(update *model.UserUpdate) error {
	if err := v.validate.Struct(update); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return validation.Translate(validationErrs)
		}
		return err
	}

	if err := checkTagList("Skills", update.Skills); err != nil {
		return err
	}
	return checkTagList("Interests", update.Interests)
}

func checkTagList(field string, tags []string) error {
	if len(tags) > maxTags {
		return validation.FieldErrors{
			validation.FieldError{Field: field, Message: field + " must have at most 20 entries"},
		}
	}
	for _, t := range tags {
		if len(t) > maxTagLength {
			return validation.FieldErrors{
				validation.FieldError{Field: field, Message: field + " entries must be at most 50 characters"},
			}
		}
	}
	return nil
}
