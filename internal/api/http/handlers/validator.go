package handlers

import (
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/SAGARSINGH-1/HostelCMS/pkg/util"
)

// Validator wraps struct validation and translates failures into domain
// errors the error middleware already knows how to render.
type Validator struct {
	validate *validator.Validate
}

// NewValidator constructs a Validator with struct-tag validation enabled.
func NewValidator() *Validator {
	return &Validator{validate: validator.New(validator.WithRequiredStructEnabled())}
}

// Struct validates v and returns a 400 DomainError listing each failed field.
func (av *Validator) Struct(v any) error {
	err := av.validate.Struct(v)
	if err == nil {
		return nil
	}

	var violations validator.ValidationErrors
	details := map[string]any{}
	if ok := asValidationErrors(err, &violations); ok {
		for _, fe := range violations {
			details[strings.ToLower(fe.Field())] = validationMessage(fe)
		}
	}
	return apperrors.NewValidationError("validation failed", details)
}

func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	if ve, ok := err.(validator.ValidationErrors); ok {
		*target = ve
		return true
	}
	return false
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "email":
		return "must be a valid email address"
	default:
		return "is invalid"
	}
}
