package httpserver

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lllypuk/threads/internal/middleware"
)

// DefaultAPIPrefix is the prefix for all API routes.
const DefaultAPIPrefix = "/api/v1"

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Logger *slog.Logger

	// WriteMiddleware guards routes that create or change data, typically
	// the rate limiter. Reads never pass through it.
	WriteMiddleware []echo.MiddlewareFunc

	CORSConfig     middleware.CORSConfig
	LoggingConfig  middleware.LoggingConfig
	RecoveryConfig middleware.RecoveryConfig

	// APIPrefix defaults to DefaultAPIPrefix.
	APIPrefix string
}

// DefaultRouterConfig returns a RouterConfig with sensible defaults.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		Logger:         slog.Default(),
		CORSConfig:     middleware.DefaultCORSConfig(),
		LoggingConfig:  middleware.DefaultLoggingConfig(),
		RecoveryConfig: middleware.DefaultRecoveryConfig(),
		APIPrefix:      DefaultAPIPrefix,
	}
}

// Router manages HTTP route groups and middleware chains.
type Router struct {
	echo   *echo.Echo
	config RouterConfig
	logger *slog.Logger

	public *echo.Group
	writes *echo.Group
}

// NewRouter applies the global middleware and creates the route groups.
func NewRouter(e *echo.Echo, config RouterConfig) *Router {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.APIPrefix == "" {
		config.APIPrefix = DefaultAPIPrefix
	}

	r := &Router{
		echo:   e,
		config: config,
		logger: config.Logger,
	}

	// Recovery first so it also catches panics in the other middleware.
	e.Use(middleware.Recovery(config.RecoveryConfig))
	e.Use(middleware.CORS(config.CORSConfig))
	e.Use(middleware.Logging(config.LoggingConfig))

	r.public = e.Group(config.APIPrefix)
	r.writes = r.public.Group("", config.WriteMiddleware...)

	return r
}

// Echo returns the underlying Echo instance.
func (r *Router) Echo() *echo.Echo {
	return r.echo
}

// Public returns the group for read routes.
func (r *Router) Public() *echo.Group {
	return r.public
}

// Writes returns the group for routes that create or change data.
func (r *Router) Writes() *echo.Group {
	return r.writes
}

// RouteRegistrar defines the interface for registering routes.
type RouteRegistrar interface {
	RegisterRoutes(r *Router)
}

// RegisterAll registers all route registrars with the router.
func (r *Router) RegisterAll(registrars ...RouteRegistrar) {
	for _, registrar := range registrars {
		registrar.RegisterRoutes(r)
	}
}

// PrintRoutes logs all registered routes at debug level.
func (r *Router) PrintRoutes() {
	for _, route := range r.echo.Routes() {
		r.logger.Debug("registered route",
			slog.String("method", route.Method),
			slog.String("path", route.Path),
			slog.String("name", route.Name),
		)
	}
}

// RegisterMetricsEndpoint serves the gatherer's metrics on /metrics. A nil
// gatherer serves the default registry.
func (r *Router) RegisterMetricsEndpoint(gatherer prometheus.Gatherer) {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.echo.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
}
