// Package errs holds storage-agnostic sentinel errors shared by all layers.
package errs

import "errors"

var (
	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrAlreadyExists is returned when a unique constraint is violated
	ErrAlreadyExists = errors.New("resource already exists")

	// ErrInvalidInput is returned when input data is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnavailable is returned when the backing store cannot be reached
	ErrUnavailable = errors.New("store unavailable")
)
