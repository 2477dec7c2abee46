// Package worker holds background processes that run next to the API.
package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/lllypuk/threads/internal/infrastructure/revalidate"
)

const defaultRetryInterval = 5 * time.Second

// RevalidationConfig contains configuration for the revalidation worker.
type RevalidationConfig struct {
	// RetryInterval is the pause before resubscribing after a failure.
	RetryInterval time.Duration

	// Enabled determines if the worker should run.
	Enabled bool
}

// DefaultRevalidationConfig returns sensible default configuration.
func DefaultRevalidationConfig() RevalidationConfig {
	return RevalidationConfig{
		RetryInterval: defaultRetryInterval,
		Enabled:       true,
	}
}

// InvalidationSource is satisfied by revalidate.RedisRevalidator.
type InvalidationSource interface {
	Listen(ctx context.Context, handler revalidate.Handler) error
}

// RevalidationWorker follows the invalidation channel and hands every
// invalidated path to the configured handler.
type RevalidationWorker struct {
	source   InvalidationSource
	handler  revalidate.Handler
	logger   *slog.Logger
	config   RevalidationConfig
	received prometheus.Counter

	count atomic.Int64
}

// RevalidationOption configures a RevalidationWorker.
type RevalidationOption func(*RevalidationWorker)

// WithHandler sets a handler called for each invalidation after it is logged.
func WithHandler(handler revalidate.Handler) RevalidationOption {
	return func(w *RevalidationWorker) {
		w.handler = handler
	}
}

// WithReceivedCounter counts delivered invalidations.
func WithReceivedCounter(counter prometheus.Counter) RevalidationOption {
	return func(w *RevalidationWorker) {
		w.received = counter
	}
}

// NewRevalidationWorker creates a new revalidation worker.
func NewRevalidationWorker(
	source InvalidationSource,
	logger *slog.Logger,
	config RevalidationConfig,
	opts ...RevalidationOption,
) *RevalidationWorker {
	if logger == nil {
		logger = slog.Default()
	}
	if config.RetryInterval <= 0 {
		config.RetryInterval = defaultRetryInterval
	}

	w := &RevalidationWorker{
		source: source,
		logger: logger,
		config: config,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run listens until ctx is cancelled, resubscribing after failures.
func (w *RevalidationWorker) Run(ctx context.Context) error {
	if !w.config.Enabled {
		w.logger.InfoContext(ctx, "revalidation worker is disabled")
		return nil
	}

	w.logger.InfoContext(ctx, "starting revalidation worker",
		slog.Duration("retry_interval", w.config.RetryInterval),
	)

	for {
		err := w.source.Listen(ctx, w.handle)
		if ctx.Err() != nil {
			w.logger.InfoContext(ctx, "revalidation worker stopped",
				slog.Int64("received", w.Received()),
			)
			return ctx.Err()
		}

		if err != nil && !errors.Is(err, context.Canceled) {
			w.logger.ErrorContext(ctx, "invalidation subscription failed",
				slog.String("error", err.Error()),
			)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(w.config.RetryInterval):
		}
	}
}

// Received returns the number of invalidations handled so far.
func (w *RevalidationWorker) Received() int64 {
	return w.count.Load()
}

func (w *RevalidationWorker) handle(ctx context.Context, inv revalidate.Invalidation) {
	w.count.Add(1)
	if w.received != nil {
		w.received.Inc()
	}

	w.logger.InfoContext(ctx, "path invalidated",
		slog.String("path", inv.Path),
		slog.Time("at", inv.At),
	)

	if w.handler != nil {
		w.handler(ctx, inv)
	}
}
