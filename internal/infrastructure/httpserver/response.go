package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/lllypuk/threads/internal/application/appcore"
)

// Response represents a standard API response.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   *Error `json:"error,omitempty"`
}

// Error represents an error in the API response.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HTTPError interface allows application errors to define their HTTP representation.
// Errors implementing this interface will be automatically mapped to proper HTTP responses.
type HTTPError interface {
	error
	HTTPStatus() int
	HTTPCode() string
	HTTPMessage() string
}

// RespondJSON sends a successful JSON response.
func RespondJSON(c echo.Context, code int, data any) error {
	return c.JSON(code, Response{
		Success: true,
		Data:    data,
	})
}

// RespondOK sends a 200 OK response with data.
func RespondOK(c echo.Context, data any) error {
	return RespondJSON(c, http.StatusOK, data)
}

// RespondCreated sends a 201 Created response with data.
func RespondCreated(c echo.Context, data any) error {
	return RespondJSON(c, http.StatusCreated, data)
}

// RespondNoContent sends a 204 No Content response.
func RespondNoContent(c echo.Context) error {
	return c.NoContent(http.StatusNoContent)
}

// RespondError sends an error JSON response based on the error type.
func RespondError(c echo.Context, err error) error {
	statusCode, apiError := mapError(err)
	return c.JSON(statusCode, Response{
		Success: false,
		Error:   apiError,
	})
}

// RespondErrorWithCode sends an error JSON response with a specific HTTP status code.
func RespondErrorWithCode(c echo.Context, code int, errorCode, message string) error {
	return c.JSON(code, Response{
		Success: false,
		Error: &Error{
			Code:    errorCode,
			Message: message,
		},
	})
}

// mapError prefers the error's own HTTP representation, then echo's, then
// the shared classification also used for metrics.
func mapError(err error) (int, *Error) {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.HTTPStatus(), &Error{
			Code:    httpErr.HTTPCode(),
			Message: httpErr.HTTPMessage(),
		}
	}

	// echo reports binding failures this way
	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		return echoErr.Code, &Error{
			Code:    statusCode(echoErr.Code),
			Message: fmt.Sprint(echoErr.Message),
		}
	}

	status, code := appcore.ClassifyError(err)
	return status, &Error{Code: code, Message: fallbackMessages[code]}
}

// fallbackMessages hide the cause of errors that carry no HTTP representation.
var fallbackMessages = map[string]string{
	"VALIDATION_ERROR":    "Invalid input data",
	"NOT_FOUND":           "The requested resource was not found",
	"CONFLICT":            "The resource already exists",
	"SERVICE_UNAVAILABLE": "The service is temporarily unavailable",
	"INTERNAL_ERROR":      "An internal error occurred",
}

// statusCode turns a status into an error code, e.g. 413 -> REQUEST_ENTITY_TOO_LARGE.
func statusCode(status int) string {
	text := http.StatusText(status)
	if text == "" {
		return "HTTP_ERROR"
	}
	return strings.ToUpper(strings.ReplaceAll(text, " ", "_"))
}
