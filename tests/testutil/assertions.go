package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lllypuk/threads/internal/domain/thread"
	"github.com/lllypuk/threads/internal/domain/uuid"
)

const contextTimeout = 30 * time.Second

// NewTestContext returns a context cancelled when the test ends.
func NewTestContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), contextTimeout)
	t.Cleanup(cancel)
	return ctx
}

// AssertNoError stops the test on err.
func AssertNoError(t *testing.T, err error, msgAndArgs ...any) {
	t.Helper()
	require.NoError(t, err, msgAndArgs...)
}

// AssertTreeDepth checks that no node at or below maxDepth has been expanded.
func AssertTreeDepth(t *testing.T, root *thread.Node, maxDepth int) {
	t.Helper()

	root.Walk(func(node *thread.Node, level int) {
		if level >= maxDepth {
			assert.False(t, node.Expanded(), "node %s at level %d should not be expanded", node.Thread.ID(), level)
		}
	})
}

// RequireChildIDs checks the ids of a node's expanded children in order.
func RequireChildIDs(t *testing.T, node *thread.Node, expected ...uuid.UUID) {
	t.Helper()

	require.True(t, node.Expanded(), "node %s should be expanded", node.Thread.ID())
	actual := make([]uuid.UUID, 0, len(node.Children))
	for _, child := range node.Children {
		actual = append(actual, child.Thread.ID())
	}
	require.Equal(t, expected, actual)
}

// AssertTimeApproximatelyEqual allows for the millisecond truncation the
// document store applies to timestamps.
func AssertTimeApproximatelyEqual(t *testing.T, expected, actual time.Time, delta time.Duration, msgAndArgs ...any) {
	t.Helper()

	assert.WithinDuration(t, expected, actual, delta, msgAndArgs...)
}
