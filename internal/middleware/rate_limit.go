package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// Rate limit defaults.
const (
	DefaultRateLimit       = 30
	DefaultRateLimitWindow = time.Minute
	DefaultBurstSize       = 10

	defaultRateLimitPrefix = "threads:ratelimit:"
)

// RateLimitStore counts requests per key within a window.
type RateLimitStore interface {
	// Increment increments the counter for the given key and returns the new count.
	// It also sets the expiration time if the key is new.
	Increment(ctx context.Context, key string, window time.Duration) (int64, error)

	// GetTTL returns the remaining TTL for the given key.
	GetTTL(ctx context.Context, key string) (time.Duration, error)
}

// RateLimitConfig holds configuration for the rate limit middleware.
type RateLimitConfig struct {
	Logger *slog.Logger

	// Store is the counter backend. A nil store disables limiting.
	Store RateLimitStore

	// Limit is the maximum number of requests allowed per window.
	Limit int

	// Window is the time window for rate limiting.
	Window time.Duration

	// BurstSize is added to Limit.
	BurstSize int

	// KeyFunc generates the counter key. Defaults to method, route and client IP.
	KeyFunc func(c echo.Context) string

	// Message is the error message returned when rate limit is exceeded.
	Message string
}

// DefaultRateLimitConfig returns a RateLimitConfig with sensible defaults.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Logger:    slog.Default(),
		Limit:     DefaultRateLimit,
		Window:    DefaultRateLimitWindow,
		BurstSize: DefaultBurstSize,
		Message:   "Too many requests. Please try again later.",
	}
}

// RateLimit returns a middleware that rejects requests over the limit with 429.
// Store failures let the request through.
func RateLimit(config RateLimitConfig) echo.MiddlewareFunc {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Limit <= 0 {
		config.Limit = DefaultRateLimit
	}
	if config.Window <= 0 {
		config.Window = DefaultRateLimitWindow
	}
	if config.Message == "" {
		config.Message = "Too many requests. Please try again later."
	}
	if config.KeyFunc == nil {
		config.KeyFunc = routeIPKey
	}
	totalLimit := int64(config.Limit + config.BurstSize)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if config.Store == nil {
				return next(c)
			}

			ctx := c.Request().Context()
			key := config.KeyFunc(c)

			count, err := config.Store.Increment(ctx, key, config.Window)
			if err != nil {
				config.Logger.ErrorContext(ctx, "failed to increment rate limit counter",
					slog.String("key", key),
					slog.String("error", err.Error()),
				)
				return next(c)
			}

			header := c.Response().Header()
			header.Set("X-Ratelimit-Limit", strconv.FormatInt(totalLimit, 10))
			header.Set("X-Ratelimit-Remaining", strconv.FormatInt(max(totalLimit-count, 0), 10))

			ttl, err := config.Store.GetTTL(ctx, key)
			if err == nil && ttl > 0 {
				header.Set("X-Ratelimit-Reset", strconv.FormatInt(time.Now().Add(ttl).Unix(), 10))
			}

			if count > totalLimit {
				config.Logger.WarnContext(ctx, "rate limit exceeded",
					slog.String("key", key),
					slog.Int64("count", count),
					slog.Int64("limit", totalLimit),
					slog.String("remote_ip", c.RealIP()),
				)
				return respondRateLimitError(c, config.Message, ttl)
			}

			return next(c)
		}
	}
}

// routeIPKey limits each client per route, so replies do not eat the
// budget for new threads.
func routeIPKey(c echo.Context) string {
	return fmt.Sprintf("%s:%s:%s", c.Request().Method, c.Path(), c.RealIP())
}

func respondRateLimitError(c echo.Context, message string, retryAfter time.Duration) error {
	if retryAfter > 0 {
		c.Response().Header().Set("Retry-After", strconv.FormatInt(int64(retryAfter.Seconds()), 10))
	}

	return c.JSON(http.StatusTooManyRequests, map[string]any{
		"success": false,
		"error": map[string]any{
			"code":        "RATE_LIMIT_EXCEEDED",
			"message":     message,
			"retry_after": int64(retryAfter.Seconds()),
		},
	})
}

// MemoryRateLimitStore keeps counters in process memory. Used when Redis is
// not configured and in tests.
type MemoryRateLimitStore struct {
	mu        sync.Mutex
	counts    map[string]*rateLimitEntry
	now       func() time.Time
	lastSweep time.Time
}

// memorySweepInterval bounds how often Increment drops expired counters.
const memorySweepInterval = time.Minute

type rateLimitEntry struct {
	count     int64
	expiresAt time.Time
}

// MemoryStoreOption configures MemoryRateLimitStore.
type MemoryStoreOption func(*MemoryRateLimitStore)

// WithMemoryClock replaces time.Now.
func WithMemoryClock(now func() time.Time) MemoryStoreOption {
	return func(s *MemoryRateLimitStore) {
		s.now = now
	}
}

// NewMemoryRateLimitStore creates a new in-memory rate limit store.
func NewMemoryRateLimitStore(opts ...MemoryStoreOption) *MemoryRateLimitStore {
	s := &MemoryRateLimitStore{
		counts: make(map[string]*rateLimitEntry),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Increment increments the counter for the given key.
func (s *MemoryRateLimitStore) Increment(_ context.Context, key string, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if now.Sub(s.lastSweep) >= memorySweepInterval {
		s.sweep(now)
	}

	entry, exists := s.counts[key]
	if exists && now.Before(entry.expiresAt) {
		entry.count++
		return entry.count, nil
	}

	s.counts[key] = &rateLimitEntry{count: 1, expiresAt: now.Add(window)}
	return 1, nil
}

func (s *MemoryRateLimitStore) sweep(now time.Time) {
	for key, entry := range s.counts {
		if !now.Before(entry.expiresAt) {
			delete(s.counts, key)
		}
	}
	s.lastSweep = now
}

// Len returns the number of live and not yet swept counters.
func (s *MemoryRateLimitStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.counts)
}

// GetTTL returns the remaining TTL for the given key.
func (s *MemoryRateLimitStore) GetTTL(_ context.Context, key string) (time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, exists := s.counts[key]
	if !exists {
		return 0, nil
	}
	return max(entry.expiresAt.Sub(s.now()), 0), nil
}

// RedisRateLimitStore keeps counters in Redis so limits hold across replicas.
type RedisRateLimitStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisRateLimitStore creates a new Redis-based rate limit store.
func NewRedisRateLimitStore(client *redis.Client, keyPrefix string) *RedisRateLimitStore {
	if keyPrefix == "" {
		keyPrefix = defaultRateLimitPrefix
	}
	return &RedisRateLimitStore{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Increment increments the counter. The window starts with SET NX EX in the
// same transaction, so a counter never exists without a TTL.
func (s *RedisRateLimitStore) Increment(ctx context.Context, key string, window time.Duration) (int64, error) {
	fullKey := s.keyPrefix + key

	var incr *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SetNX(ctx, fullKey, 0, window)
		incr = pipe.Incr(ctx, fullKey)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to increment counter: %w", err)
	}

	return incr.Val(), nil
}

// GetTTL returns the remaining TTL for the given key.
func (s *RedisRateLimitStore) GetTTL(ctx context.Context, key string) (time.Duration, error) {
	ttl, err := s.client.TTL(ctx, s.keyPrefix+key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to read ttl: %w", err)
	}
	return max(ttl, 0), nil
}
