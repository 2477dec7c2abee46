package httphandler

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/lllypuk/threads/internal/application/appcore"
)

// RequestValidator implements echo.Validator with struct tags.
type RequestValidator struct {
	validate *validator.Validate
}

// NewRequestValidator creates a validator that reports fields by their JSON names.
func NewRequestValidator() *RequestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &RequestValidator{validate: v}
}

// Validate returns an *appcore.ValidationError for the first failing field.
func (v *RequestValidator) Validate(i any) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return appcore.NewValidationError("request", err.Error())
	}

	fe := fieldErrs[0]
	return appcore.NewValidationError(fe.Field(), describe(fe))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "uuid":
		return "must be a valid UUID"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "url":
		return "must be a valid URL"
	default:
		return "failed " + fe.Tag() + " validation"
	}
}
