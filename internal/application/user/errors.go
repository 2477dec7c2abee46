package user

import (
	"fmt"

	"github.com/lllypuk/threads/internal/application/appcore"
)

// UpdateUserError is returned by Service.UpdateUser.
type UpdateUserError struct {
	Err error
}

func (e *UpdateUserError) Error() string {
	return fmt.Sprintf("failed to create/update user: %v", e.Err)
}

func (e *UpdateUserError) Unwrap() error { return e.Err }

// HTTPStatus implements httpserver.HTTPError.
func (e *UpdateUserError) HTTPStatus() int {
	status, _ := appcore.ClassifyError(e.Err)
	return status
}

// HTTPCode implements httpserver.HTTPError.
func (e *UpdateUserError) HTTPCode() string {
	_, code := appcore.ClassifyError(e.Err)
	return code
}

// HTTPMessage implements httpserver.HTTPError.
func (e *UpdateUserError) HTTPMessage() string { return e.Error() }

// FetchUserError is returned by Service.FetchUser.
type FetchUserError struct {
	Err error
}

func (e *FetchUserError) Error() string {
	return fmt.Sprintf("failed to fetch user: %v", e.Err)
}

func (e *FetchUserError) Unwrap() error { return e.Err }

// HTTPStatus implements httpserver.HTTPError.
func (e *FetchUserError) HTTPStatus() int {
	status, _ := appcore.ClassifyError(e.Err)
	return status
}

// HTTPCode implements httpserver.HTTPError.
func (e *FetchUserError) HTTPCode() string {
	_, code := appcore.ClassifyError(e.Err)
	return code
}

// HTTPMessage implements httpserver.HTTPError.
func (e *FetchUserError) HTTPMessage() string { return e.Error() }
