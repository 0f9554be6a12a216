package dto

import (
	"errors"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/spec-kit/staffing-service/pkg/util"
)

var validate = validator.New()

// Validate checks the struct tags on a request payload and converts
// failures into the shared validation error shape.
func Validate(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	details := map[string]any{}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			details[fe.Field()] = fe.Tag()
		}
	}
	return apperrors.NewValidationError("invalid payload", details)
}
