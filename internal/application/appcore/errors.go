package appcore

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/lllypuk/threads/internal/domain/errs"
)

// ErrValidationFailed is matched by every ValidationError.
var ErrValidationFailed = errors.New("validation failed")

// ValidationError represents a validation error with context
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// Is makes errors.Is(err, ErrValidationFailed) true for any ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}

// HTTPStatus implements httpserver.HTTPError.
func (e *ValidationError) HTTPStatus() int { return http.StatusBadRequest }

// HTTPCode implements httpserver.HTTPError.
func (e *ValidationError) HTTPCode() string { return "VALIDATION_ERROR" }

// HTTPMessage implements httpserver.HTTPError.
func (e *ValidationError) HTTPMessage() string { return e.Field + " " + e.Message }

// NewValidationError creates a ValidationError
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// ClassifyError maps a failure cause to an HTTP status and error code.
func ClassifyError(err error) (int, string) {
	switch {
	case errors.Is(err, ErrValidationFailed), errors.Is(err, errs.ErrInvalidInput):
		return http.StatusBadRequest, "VALIDATION_ERROR"
	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, errs.ErrAlreadyExists):
		return http.StatusConflict, "CONFLICT"
	case errors.Is(err, errs.ErrUnavailable):
		return http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}
