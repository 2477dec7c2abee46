// Package main provides the API server entry point.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lllypuk/threads/internal/config"
	"github.com/lllypuk/threads/internal/infrastructure/httpserver"
)

const warmupTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		//nolint:sloglint // No context available before logger setup
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := cfg.NewLogger(os.Stdout)
	slog.SetDefault(logger)

	logger.Info("starting threads API server",
		slog.String("version", "0.1.0"),
		slog.String("environment", getEnvironment(cfg)),
	)

	container, err := NewContainer(cfg, WithLogger(logger))
	if err != nil {
		logger.Error("failed to build container", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	warmupCtx, warmupCancel := context.WithTimeout(ctx, warmupTimeout)
	container.Warmup(warmupCtx)
	warmupCancel()

	server := SetupServer(container)

	go gracefulShutdown(ctx, cancel, server, container, logger)

	if serverErr := server.Start(); serverErr != nil {
		logger.Error("server error", slog.String("error", serverErr.Error()))
		cancel()
		_ = container.Close()
		os.Exit(1) //nolint:gocritic // Intentional exit after cleanup
	}
}

// getEnvironment returns the environment name based on configuration.
func getEnvironment(cfg *config.Config) string {
	if cfg.IsProduction() {
		return "production"
	}
	if cfg.IsDevelopment() {
		return "development"
	}
	return "unknown"
}

// gracefulShutdown stops the server on SIGINT/SIGTERM or when ctx ends,
// then releases the container.
func gracefulShutdown(
	ctx context.Context,
	cancel context.CancelFunc,
	server *httpserver.Server,
	container *Container,
	logger *slog.Logger,
) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer signal.Stop(quit)

	shutdownLogCtx := context.Background()

	select {
	case sig := <-quit:
		logger.InfoContext(shutdownLogCtx, "received shutdown signal", slog.String("signal", sig.String()))
	case <-ctx.Done():
		logger.InfoContext(shutdownLogCtx, "context cancelled, initiating shutdown")
	}

	if err := server.Shutdown(shutdownLogCtx); err != nil {
		logger.ErrorContext(shutdownLogCtx, "server shutdown error", slog.String("error", err.Error()))
	}

	cancel()

	if err := container.Close(); err != nil {
		logger.ErrorContext(shutdownLogCtx, "container close error", slog.String("error", err.Error()))
	}

	logger.InfoContext(shutdownLogCtx, "server shutdown complete")
}
