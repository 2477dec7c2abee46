package middleware

import (
	"slices"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// DefaultCORSMaxAge is the preflight cache lifetime in seconds.
const DefaultCORSMaxAge = 86400

// CORSConfig holds CORS middleware configuration.
type CORSConfig struct {
	AllowOrigins     []string
	AllowMethods     []string
	AllowHeaders     []string
	AllowCredentials bool
	ExposeHeaders    []string
	MaxAge           int
}

// DefaultCORSConfig allows any origin to read the feed and post to the API.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{echo.GET, echo.HEAD, echo.POST, echo.PUT, echo.OPTIONS},
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderContentType,
			echo.HeaderAccept,
			RequestIDHeader,
		},
		ExposeHeaders: []string{
			RequestIDHeader,
			"X-Ratelimit-Limit",
			"X-Ratelimit-Remaining",
			"X-Ratelimit-Reset",
			"Retry-After",
		},
		MaxAge: DefaultCORSMaxAge,
	}
}

// CORS returns a CORS middleware with the given configuration.
func CORS(config CORSConfig) echo.MiddlewareFunc {
	return middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     config.AllowOrigins,
		AllowMethods:     config.AllowMethods,
		AllowHeaders:     config.AllowHeaders,
		AllowCredentials: config.AllowCredentials,
		ExposeHeaders:    config.ExposeHeaders,
		MaxAge:           config.MaxAge,
	})
}

// CORSWithOrigins restricts the allowed origins. Credentials are allowed
// only for an explicit origin list.
func CORSWithOrigins(origins ...string) echo.MiddlewareFunc {
	config := DefaultCORSConfig()
	config.AllowOrigins = origins
	config.AllowCredentials = len(origins) > 0 && !slices.Contains(origins, "*")
	return CORS(config)
}
