// Package revalidate marks cached views stale after writes.
package revalidate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Default Redis names.
const (
	DefaultChannel     = "threads:revalidate"
	DefaultCachePrefix = "page:"
)

// Invalidation is the message published for every revalidated path.
type Invalidation struct {
	Path string    `json:"path"`
	At   time.Time `json:"at"`
}

// Handler receives invalidations in Listen.
type Handler func(ctx context.Context, inv Invalidation)

// RedisRevalidator drops the cached page and announces the invalidation on
// a pub/sub channel so presentation processes can refresh.
type RedisRevalidator struct {
	client      *redis.Client
	channel     string
	cachePrefix string
	logger      *slog.Logger
	now         func() time.Time
}

// Option configures a RedisRevalidator.
type Option func(*RedisRevalidator)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *RedisRevalidator) {
		r.logger = logger
	}
}

// WithChannel sets the pub/sub channel.
func WithChannel(channel string) Option {
	return func(r *RedisRevalidator) {
		r.channel = channel
	}
}

// WithCachePrefix sets the prefix of cached page keys.
func WithCachePrefix(prefix string) Option {
	return func(r *RedisRevalidator) {
		r.cachePrefix = prefix
	}
}

// NewRedisRevalidator creates a RedisRevalidator.
func NewRedisRevalidator(client *redis.Client, opts ...Option) *RedisRevalidator {
	r := &RedisRevalidator{
		client:      client,
		channel:     DefaultChannel,
		cachePrefix: DefaultCachePrefix,
		logger:      slog.Default(),
		now:         func() time.Time { return time.Now().UTC() },
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Revalidate implements appcore.Revalidator. Failures are logged, never returned.
func (r *RedisRevalidator) Revalidate(ctx context.Context, path string) {
	if path == "" {
		return
	}

	if err := r.client.Del(ctx, r.CacheKey(path)).Err(); err != nil {
		r.logger.WarnContext(ctx, "failed to drop cached page",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
	}

	data, err := json.Marshal(Invalidation{Path: path, At: r.now()})
	if err != nil {
		r.logger.WarnContext(ctx, "failed to encode invalidation",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return
	}

	if err = r.client.Publish(ctx, r.channel, data).Err(); err != nil {
		r.logger.WarnContext(ctx, "failed to publish invalidation",
			slog.String("path", path),
			slog.String("channel", r.channel),
			slog.String("error", err.Error()),
		)
		return
	}

	r.logger.DebugContext(ctx, "path revalidated",
		slog.String("path", path),
		slog.String("channel", r.channel),
	)
}

// CacheKey returns the Redis key of the cached page for path.
func (r *RedisRevalidator) CacheKey(path string) string {
	return r.cachePrefix + path
}

// Listen delivers invalidations to handler until ctx is cancelled.
// It fails only when the subscription cannot be established.
func (r *RedisRevalidator) Listen(ctx context.Context, handler Handler) error {
	if handler == nil {
		return errors.New("handler cannot be nil")
	}

	pubsub := r.client.Subscribe(ctx, r.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", r.channel, err)
	}

	r.logger.InfoContext(ctx, "listening for invalidations", slog.String("channel", r.channel))

	msgCh := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case msg, ok := <-msgCh:
			if !ok {
				r.logger.WarnContext(ctx, "invalidation channel closed")
				return nil
			}

			var inv Invalidation
			if err := json.Unmarshal([]byte(msg.Payload), &inv); err != nil {
				r.logger.ErrorContext(ctx, "failed to decode invalidation",
					slog.String("channel", msg.Channel),
					slog.String("error", err.Error()),
				)
				continue
			}
			handler(ctx, inv)
		}
	}
}

// NoopRevalidator is used when no cache sits in front of the views.
type NoopRevalidator struct {
	logger *slog.Logger
}

// NewNoopRevalidator creates a NoopRevalidator; a nil logger uses slog.Default().
func NewNoopRevalidator(logger *slog.Logger) *NoopRevalidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &NoopRevalidator{logger: logger}
}

// Revalidate implements appcore.Revalidator.
func (n *NoopRevalidator) Revalidate(ctx context.Context, path string) {
	n.logger.DebugContext(ctx, "revalidation skipped", slog.String("path", path))
}
