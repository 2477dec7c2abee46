package worker_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lllypuk/threads/internal/infrastructure/revalidate"
	"github.com/lllypuk/threads/internal/worker"
)

// flakySource fails the first failures subscriptions, then blocks.
type flakySource struct {
	failures int32
	calls    atomic.Int32
}

func (s *flakySource) Listen(ctx context.Context, handler revalidate.Handler) error {
	n := s.calls.Add(1)
	if n <= s.failures {
		return errors.New("subscribe failed")
	}
	handler(ctx, revalidate.Invalidation{Path: "/", At: time.Now()})
	<-ctx.Done()
	return ctx.Err()
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestDefaultRevalidationConfig(t *testing.T) {
	cfg := worker.DefaultRevalidationConfig()

	assert.True(t, cfg.Enabled)
	assert.Equal(t, 5*time.Second, cfg.RetryInterval)
}

func TestRevalidationWorker_Disabled(t *testing.T) {
	source := &flakySource{}
	w := worker.NewRevalidationWorker(source, discardLogger(), worker.RevalidationConfig{})

	require.NoError(t, w.Run(context.Background()))
	assert.Zero(t, source.calls.Load())
}

func TestRevalidationWorker_RetriesAfterFailure(t *testing.T) {
	source := &flakySource{failures: 2}
	w := worker.NewRevalidationWorker(source, discardLogger(), worker.RevalidationConfig{
		Enabled:       true,
		RetryInterval: 10 * time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool { return w.Received() == 1 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(3), source.calls.Load())

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestRevalidationWorker_StopsDuringRetryWait(t *testing.T) {
	source := &flakySource{failures: 100}
	w := worker.NewRevalidationWorker(source, discardLogger(), worker.RevalidationConfig{
		Enabled:       true,
		RetryInterval: time.Hour,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool { return source.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestRevalidationWorker_DeliversRedisInvalidations(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	revalidator := revalidate.NewRedisRevalidator(client,
		revalidate.WithLogger(discardLogger()),
		revalidate.WithChannel("test:revalidate"),
	)

	var (
		mu    sync.Mutex
		paths []string
	)
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_invalidations_total"})

	w := worker.NewRevalidationWorker(revalidator, discardLogger(), worker.DefaultRevalidationConfig(),
		worker.WithReceivedCounter(counter),
		worker.WithHandler(func(_ context.Context, inv revalidate.Invalidation) {
			mu.Lock()
			defer mu.Unlock()
			paths = append(paths, inv.Path)
		}),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool {
		return len(mr.PubSubChannels("test:revalidate")) == 1
	}, 2*time.Second, 10*time.Millisecond)

	revalidator.Revalidate(context.Background(), "/")
	revalidator.Revalidate(context.Background(), "/profile/edit")

	require.Eventually(t, func() bool { return w.Received() == 2 }, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	assert.Equal(t, []string{"/", "/profile/edit"}, paths)
	mu.Unlock()
	assert.InDelta(t, 2, testutil.ToFloat64(counter), 0)

	cancel()
	<-done
}
