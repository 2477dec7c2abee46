package appcore

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/lllypuk/threads/internal/domain/uuid"
)

// ValidateRequired checks that the value is not blank
func ValidateRequired(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return NewValidationError(field, "is required")
	}
	return nil
}

// ValidateUUID checks that the identifier is set
func ValidateUUID(field string, id uuid.UUID) error {
	if id.IsZero() {
		return NewValidationError(field, "must be a valid UUID")
	}
	return nil
}

// ValidateMaxLength checks the length in characters
func ValidateMaxLength(field, value string, maxLength int) error {
	if utf8.RuneCountInString(value) > maxLength {
		return NewValidationError(field, fmt.Sprintf("must be at most %d characters", maxLength))
	}
	return nil
}

// ValidateNonNegative checks that the number is not negative
func ValidateNonNegative(field string, value int) error {
	if value < 0 {
		return NewValidationError(field, "must be non-negative")
	}
	return nil
}

// ValidateRange checks that the value lies within [minValue, maxValue]
func ValidateRange(field string, value, minValue, maxValue int) error {
	if value < minValue || value > maxValue {
		return NewValidationError(field, fmt.Sprintf("must be between %d and %d", minValue, maxValue))
	}
	return nil
}
