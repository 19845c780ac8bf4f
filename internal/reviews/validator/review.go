package validator

import (
	"errors"

	"github.com/go-playground/validator/v10"

	"skillex/pkg/logger"
	"skillex/pkg/model"
	"skillex/pkg/validation"
)

type ReviewValidator struct {
	validate *validator.Validate
	log      *logger.Logger
}

func NewReviewValidator(log *logger.Logger) *ReviewValidator {
	return &ReviewValidator{
		validate: validator.New(),
		log:      log,
	}
}

func (v *ReviewValidator) Validate(review *model.Review) error {
	if err := v.validate.Struct(review); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return validation.Translate(validationErrs)
		}
		return err
	}
	return nil
}

func (v *ReviewValidator) ValidateUpdate(update *model.ReviewUpdate) error {
	if err := v.validate.Struct(update); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return validation.Translate(validationErrs)
		}
		return err
	}
	return nil
}
