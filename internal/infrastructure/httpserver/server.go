package httpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// Default server configuration values.
const (
	DefaultHost            = "0.0.0.0"
	DefaultPort            = 8080
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
	DefaultBodyLimit       = "1M"
	DefaultMaxHeaderBytes  = 1 << 20 // 1MB
)

// ServerConfig holds configuration for the HTTP server.
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	// BodyLimit caps request bodies, e.g. "1M". Empty disables the limit.
	BodyLimit string
}

// DefaultServerConfig returns a ServerConfig with sensible defaults.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:            DefaultHost,
		Port:            DefaultPort,
		ReadTimeout:     DefaultReadTimeout,
		WriteTimeout:    DefaultWriteTimeout,
		ShutdownTimeout: DefaultShutdownTimeout,
		BodyLimit:       DefaultBodyLimit,
	}
}

// Server represents the HTTP server.
type Server struct {
	echo            *echo.Echo
	config          ServerConfig
	logger          *slog.Logger
	shutdownTimeout time.Duration
}

// NewServer creates a new HTTP server. Handler errors are rendered with
// RespondError so every failure shares the API error envelope.
func NewServer(config ServerConfig, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Server.ReadTimeout = config.ReadTimeout
	e.Server.WriteTimeout = config.WriteTimeout
	e.Server.MaxHeaderBytes = DefaultMaxHeaderBytes

	if config.BodyLimit != "" {
		e.Use(echomw.BodyLimit(config.BodyLimit))
	}

	s := &Server{
		echo:            e,
		config:          config,
		logger:          logger,
		shutdownTimeout: config.ShutdownTimeout,
	}
	e.HTTPErrorHandler = s.handleError

	return s
}

func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, _ := mapError(err)
	if status >= http.StatusInternalServerError {
		s.logger.ErrorContext(c.Request().Context(), "request failed",
			slog.String("method", c.Request().Method),
			slog.String("path", c.Request().URL.Path),
			slog.String("error", err.Error()),
		)
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status)
		return
	}
	if respErr := RespondError(c, err); respErr != nil {
		s.logger.Error("failed to write error response", slog.String("error", respErr.Error()))
	}
}

// SetValidator installs the validator used by echo.Context.Validate.
func (s *Server) SetValidator(v echo.Validator) {
	s.echo.Validator = v
}

// Echo returns the underlying Echo instance for middleware and route registration.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// Use adds middleware to the server.
func (s *Server) Use(middleware ...echo.MiddlewareFunc) {
	s.echo.Use(middleware...)
}

// RegisterRoutes allows external route registration via a callback function.
func (s *Server) RegisterRoutes(register func(e *echo.Echo)) {
	register(s.echo)
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := s.Address()
	s.logger.Info("starting HTTP server",
		slog.String("address", addr),
		slog.Duration("read_timeout", s.config.ReadTimeout),
		slog.Duration("write_timeout", s.config.WriteTimeout),
		slog.String("body_limit", s.config.BodyLimit),
	)

	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.InfoContext(ctx, "shutting down HTTP server",
		slog.Duration("timeout", s.shutdownTimeout),
	)

	shutdownCtx, cancel := context.WithTimeout(ctx, s.shutdownTimeout)
	defer cancel()

	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	s.logger.InfoContext(ctx, "HTTP server stopped")
	return nil
}

// Address returns the server address.
func (s *Server) Address() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}
