// Package main provides the revalidation worker entry point.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/lllypuk/threads/internal/config"
	"github.com/lllypuk/threads/internal/infrastructure/revalidate"
	"github.com/lllypuk/threads/internal/worker"
)

// Timeout constants for worker service.
const (
	redisPingTimeout       = 5 * time.Second
	metricsShutdownTimeout = 5 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		//nolint:sloglint // No context available before logger setup
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := cfg.NewLogger(os.Stdout)
	slog.SetDefault(logger)

	logger.Info("starting threads revalidation worker",
		slog.String("version", "0.1.0"),
		slog.String("environment", getEnvironment(cfg)),
	)

	if cfg.Revalidation.Type != config.RevalidationRedis || cfg.Redis.Addr == "" {
		logger.Info("redis revalidation is not configured, nothing to listen to")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go handleShutdown(cancel, logger)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	defer func() {
		if closeErr := redisClient.Close(); closeErr != nil {
			logger.Error("failed to close Redis", slog.String("error", closeErr.Error()))
		}
	}()

	pingCtx, pingCancel := context.WithTimeout(ctx, redisPingTimeout)
	if pingErr := redisClient.Ping(pingCtx).Err(); pingErr != nil {
		// The worker retries the subscription, so an unreachable Redis is not fatal.
		logger.Warn("redis is not reachable yet", slog.String("error", pingErr.Error()))
	}
	pingCancel()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	received := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "threads_invalidations_received_total",
		Help: "Invalidations delivered on the revalidation channel",
	})
	registry.MustRegister(received)

	revalidator := revalidate.NewRedisRevalidator(redisClient,
		revalidate.WithLogger(logger),
		revalidate.WithChannel(cfg.Revalidation.Channel),
		revalidate.WithCachePrefix(cfg.Revalidation.CachePrefix),
	)

	revalidationWorker := worker.NewRevalidationWorker(revalidator, logger,
		worker.RevalidationConfig{
			RetryInterval: cfg.Worker.RetryInterval,
			Enabled:       true,
		},
		worker.WithReceivedCounter(received),
	)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if runErr := revalidationWorker.Run(ctx); runErr != nil && !errors.Is(runErr, context.Canceled) {
			logger.Error("revalidation worker error", slog.String("error", runErr.Error()))
		}
	}()

	if cfg.Worker.MetricsAddr != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			serveMetrics(ctx, cfg.Worker.MetricsAddr, registry, logger)
		}()
	}

	wg.Wait()

	logger.Info("worker service shutdown complete",
		slog.Int64("invalidations", revalidationWorker.Received()),
	)
}

// serveMetrics exposes /metrics and /health until ctx is cancelled.
func serveMetrics(ctx context.Context, addr string, gatherer prometheus.Gatherer, logger *slog.Logger) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
	})

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			logger.Error("metrics server shutdown error", slog.String("error", err.Error()))
		}
	}()

	logger.Info("metrics listening", slog.String("address", addr))
	if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("metrics server error", slog.String("error", err.Error()))
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

// handleShutdown cancels the context on SIGINT or SIGTERM.
func handleShutdown(cancel context.CancelFunc, logger *slog.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	sig := <-quit
	logger.Info("received shutdown signal", slog.String("signal", sig.String()))
	cancel()
}
