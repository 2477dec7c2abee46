package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime"

	"github.com/labstack/echo/v4"

	"github.com/lllypuk/threads/internal/application/appcore"
)

// DefaultStackSize is the default stack trace size (4KB).
const DefaultStackSize = 4 << 10

// RecoveryConfig holds configuration for the recovery middleware.
type RecoveryConfig struct {
	Logger *slog.Logger

	// StackSize is the maximum size of the captured stack trace.
	StackSize int

	// DisablePrintStack omits the stack trace from the log entry.
	DisablePrintStack bool
}

// DefaultRecoveryConfig returns a RecoveryConfig with sensible defaults.
func DefaultRecoveryConfig() RecoveryConfig {
	return RecoveryConfig{
		Logger:    slog.Default(),
		StackSize: DefaultStackSize,
	}
}

// Recovery returns a middleware that turns panics into 500 responses.
func Recovery(config RecoveryConfig) echo.MiddlewareFunc {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.StackSize <= 0 {
		config.StackSize = DefaultStackSize
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}

				panicErr, ok := r.(error)
				if !ok {
					panicErr = fmt.Errorf("%v", r)
				}

				req := c.Request()
				attrs := []any{
					slog.String("error", panicErr.Error()),
					slog.String("method", req.Method),
					slog.String("path", req.URL.Path),
					slog.String("remote_ip", c.RealIP()),
				}
				if requestID := appcore.GetRequestID(req.Context()); requestID != "" {
					attrs = append(attrs, slog.String("request_id", requestID))
				}
				if !config.DisablePrintStack {
					stack := make([]byte, config.StackSize)
					stack = stack[:runtime.Stack(stack, false)]
					attrs = append(attrs, slog.String("stack", string(stack)))
				}

				config.Logger.ErrorContext(req.Context(), "panic recovered", attrs...)

				if !c.Response().Committed {
					err = c.JSON(http.StatusInternalServerError, map[string]any{
						"success": false,
						"error": map[string]string{
							"code":    "INTERNAL_ERROR",
							"message": "An internal error occurred",
						},
					})
				}
			}()

			return next(c)
		}
	}
}
