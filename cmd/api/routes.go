// Package main provides the API server entry point.
package main

import (
	"slices"

	"github.com/labstack/echo/v4"

	httphandler "github.com/lllypuk/threads/internal/handler/http"
	"github.com/lllypuk/threads/internal/infrastructure/httpserver"
	"github.com/lllypuk/threads/internal/middleware"
)

// SetupServer builds the HTTP server with every route registered.
func SetupServer(c *Container) *httpserver.Server {
	server := httpserver.NewServer(httpserver.ServerConfig{
		Host:            c.Config.Server.Host,
		Port:            c.Config.Server.Port,
		ReadTimeout:     c.Config.Server.ReadTimeout,
		WriteTimeout:    c.Config.Server.WriteTimeout,
		ShutdownTimeout: c.Config.Server.ShutdownTimeout,
		BodyLimit:       c.Config.Server.BodyLimit,
	}, c.Logger)
	server.SetValidator(httphandler.NewRequestValidator())

	SetupRoutes(server.Echo(), c)

	return server
}

// SetupRoutes configures the middleware chains and registers the API,
// health and metrics endpoints on e.
func SetupRoutes(e *echo.Echo, c *Container) *httpserver.Router {
	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.Logger = c.Logger

	recoveryConfig := middleware.DefaultRecoveryConfig()
	recoveryConfig.Logger = c.Logger

	routerConfig := httpserver.RouterConfig{
		Logger:          c.Logger,
		WriteMiddleware: writeMiddleware(c),
		CORSConfig:      corsConfig(c.Config.Server.AllowedOrigins()),
		LoggingConfig:   loggingConfig,
		RecoveryConfig:  recoveryConfig,
		APIPrefix:       httpserver.DefaultAPIPrefix,
	}

	router := httpserver.NewRouter(e, routerConfig)

	router.RegisterHealthEndpoints(c)
	router.RegisterMetricsEndpoint(c.Registry)
	router.RegisterAll(c.ThreadHandler, c.UserHandler)

	if c.Config.IsDevelopment() {
		router.PrintRoutes()
	}

	return router
}

func corsConfig(origins []string) middleware.CORSConfig {
	config := middleware.DefaultCORSConfig()
	config.AllowOrigins = origins
	config.AllowCredentials = !slices.Contains(origins, "*")
	return config
}

// writeMiddleware returns the chain applied to POST and PUT routes.
func writeMiddleware(c *Container) []echo.MiddlewareFunc {
	if c.RateLimitStore == nil {
		return nil
	}

	rl := c.Config.RateLimit
	return []echo.MiddlewareFunc{
		middleware.RateLimit(middleware.RateLimitConfig{
			Logger:    c.Logger,
			Store:     c.RateLimitStore,
			Limit:     rl.Limit,
			Window:    rl.Window,
			BurstSize: rl.Burst,
			Message:   "Too many write requests. Please try again later.",
		}),
	}
}
