package mongodb_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lllypuk/threads/internal/domain/errs"
	"github.com/lllypuk/threads/internal/infrastructure/mongodb"
	"github.com/lllypuk/threads/tests/testutil"
)

func TestNewConnector_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  mongodb.ConnectorConfig
	}{
		{"empty uri", mongodb.ConnectorConfig{Database: "db"}},
		{"empty database", mongodb.ConnectorConfig{URI: "mongodb://localhost:27017"}},
		{"bad scheme", mongodb.ConnectorConfig{URI: "http://localhost", Database: "db"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := mongodb.NewConnector(tt.cfg)
			require.Error(t, err)
			assert.Nil(t, c)

			var connErr *mongodb.ConnectionError
			require.ErrorAs(t, err, &connErr)
			assert.Equal(t, "configure", connErr.Op)
			assert.True(t, mongodb.IsConnectionError(err))
		})
	}
}

func TestConnector_EnsureConnected_Unreachable(t *testing.T) {
	c, err := mongodb.NewConnector(mongodb.ConnectorConfig{
		URI:      "mongodb://127.0.0.1:1",
		Database: "threads",
		Timeout:  200 * time.Millisecond,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close(context.Background()) })

	ctx := context.Background()
	err = c.EnsureConnected(ctx)
	require.Error(t, err)
	assert.True(t, mongodb.IsConnectionError(err))
	assert.False(t, c.IsConnected())

	// failures are not remembered
	err = c.EnsureConnected(ctx)
	require.Error(t, err)
	assert.Equal(t, 503, err.(*mongodb.ConnectionError).HTTPStatus())
}

func TestConnector_RunInTransaction_Disabled(t *testing.T) {
	c, err := mongodb.NewConnector(mongodb.ConnectorConfig{
		URI:      "mongodb://127.0.0.1:1",
		Database: "threads",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close(context.Background()) })

	assert.False(t, c.TransactionsEnabled())

	calls := 0
	boom := errors.New("boom")
	err = c.RunInTransaction(context.Background(), func(context.Context) error {
		calls++
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestConnector_EnsureConnected(t *testing.T) {
	uri, db := testutil.SetupSharedTestMongoDBWithURI(t)

	c, err := mongodb.NewConnector(mongodb.ConnectorConfig{
		URI:      uri,
		Database: db.Name(),
		Timeout:  5 * time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close(context.Background()) })

	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = c.EnsureConnected(ctx)
		}(i)
	}
	wg.Wait()

	for _, e := range errs {
		require.NoError(t, e)
	}
	assert.True(t, c.IsConnected())
	require.NoError(t, c.Ping(ctx))
	assert.Equal(t, db.Name(), c.Database().Name())

	indexes := getCollectionIndexes(ctx, t, c.Database(), mongodb.CollectionThreads)
	assert.NotNil(t, findIndexInDBByName(indexes, "idx_threads_parent_time"))
}

func TestConnectionError_MatchesUnavailable(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", &mongodb.ConnectionError{Op: "ping", Err: errors.New("refused")})

	require.ErrorIs(t, err, errs.ErrUnavailable)
	assert.Contains(t, err.Error(), "mongodb ping: refused")
}
