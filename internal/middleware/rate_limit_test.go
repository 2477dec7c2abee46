package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lllypuk/threads/internal/middleware"
)

func newLimitedEcho(store middleware.RateLimitStore, limit, burst int) *echo.Echo {
	e := echo.New()
	limiter := middleware.RateLimit(middleware.RateLimitConfig{
		Store:     store,
		Limit:     limit,
		BurstSize: burst,
		Window:    time.Minute,
	})
	e.POST("/threads", func(c echo.Context) error { return c.NoContent(http.StatusCreated) }, limiter)
	e.POST("/threads/:id/comments", func(c echo.Context) error { return c.NoContent(http.StatusCreated) }, limiter)
	return e
}

func post(e *echo.Echo, path, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, nil)
	req.Header.Set(echo.HeaderXRealIP, ip)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRateLimit_MemoryStore(t *testing.T) {
	e := newLimitedEcho(middleware.NewMemoryRateLimitStore(), 2, 1)

	for i := range 3 {
		rec := post(e, "/threads", "10.0.0.1")
		require.Equal(t, http.StatusCreated, rec.Code, "request %d", i)
		assert.Equal(t, "3", rec.Header().Get("X-Ratelimit-Limit"))
	}

	rec := post(e, "/threads", "10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-Ratelimit-Remaining"))
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "RATE_LIMIT_EXCEEDED")

	assert.Equal(t, http.StatusCreated, post(e, "/threads", "10.0.0.2").Code, "other clients are unaffected")
	assert.Equal(t, http.StatusCreated, post(e, "/threads/x/comments", "10.0.0.1").Code, "routes are counted separately")
}

func TestRateLimit_RedisStore(t *testing.T) {
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := middleware.NewRedisRateLimitStore(client, "test:rl:")
	e := newLimitedEcho(store, 1, 0)

	assert.Equal(t, http.StatusCreated, post(e, "/threads", "10.0.0.1").Code)
	assert.Equal(t, http.StatusTooManyRequests, post(e, "/threads", "10.0.0.1").Code)

	keys := s.Keys()
	require.Len(t, keys, 1)
	assert.Equal(t, "test:rl:POST:/threads:10.0.0.1", keys[0])
	assert.Positive(t, s.TTL(keys[0]))

	s.FastForward(time.Minute + time.Second)
	assert.Equal(t, http.StatusCreated, post(e, "/threads", "10.0.0.1").Code, "window resets")
}

func TestRateLimit_StoreFailureAllowsRequest(t *testing.T) {
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	s.Close()

	e := newLimitedEcho(middleware.NewRedisRateLimitStore(client, ""), 1, 0)
	assert.Equal(t, http.StatusCreated, post(e, "/threads", "10.0.0.1").Code)
	assert.Equal(t, http.StatusCreated, post(e, "/threads", "10.0.0.1").Code)
}

func TestRateLimit_NilStoreDisables(t *testing.T) {
	e := newLimitedEcho(nil, 1, 0)
	for range 5 {
		assert.Equal(t, http.StatusCreated, post(e, "/threads", "10.0.0.1").Code)
	}
}

func TestMemoryRateLimitStore_TTL(t *testing.T) {
	store := middleware.NewMemoryRateLimitStore()
	ctx := context.Background()

	ttl, err := store.GetTTL(ctx, "missing")
	require.NoError(t, err)
	assert.Zero(t, ttl)

	count, err := store.Increment(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	ttl, err = store.GetTTL(ctx, "k")
	require.NoError(t, err)
	assert.Greater(t, ttl, 50*time.Second)
}

func TestMemoryRateLimitStore_SweepsExpiredCounters(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store := middleware.NewMemoryRateLimitStore(middleware.WithMemoryClock(func() time.Time { return now }))
	ctx := context.Background()

	for _, ip := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
		_, err := store.Increment(ctx, "POST:/threads:"+ip, 10*time.Second)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, store.Len())

	now = now.Add(2 * time.Minute)
	count, err := store.Increment(ctx, "POST:/threads:10.0.0.4", 10*time.Second)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, 1, store.Len(), "expired counters are dropped")
}

func TestMemoryRateLimitStore_WindowResets(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store := middleware.NewMemoryRateLimitStore(middleware.WithMemoryClock(func() time.Time { return now }))
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		count, err := store.Increment(ctx, "k", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, want, count)
	}

	now = now.Add(time.Minute)
	count, err := store.Increment(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestRedisRateLimitStore_CounterAlwaysExpires(t *testing.T) {
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := middleware.NewRedisRateLimitStore(client, "test:rl:")
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		count, err := store.Increment(ctx, "k", 30*time.Second)
		require.NoError(t, err)
		assert.Equal(t, want, count)
		assert.Positive(t, s.TTL("test:rl:k"), "counter carries a ttl after every increment")
	}

	ttl, err := store.GetTTL(ctx, "k")
	require.NoError(t, err)
	assert.LessOrEqual(t, ttl, 30*time.Second)

	s.FastForward(31 * time.Second)
	assert.False(t, s.Exists("test:rl:k"))

	count, err := store.Increment(ctx, "k", 30*time.Second)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
