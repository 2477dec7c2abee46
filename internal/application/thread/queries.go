package thread

import (
	"github.com/lllypuk/threads/internal/domain/thread"
	"github.com/lllypuk/threads/internal/domain/uuid"
)

// FetchPostsQuery selects a page of the feed. Zero values take the defaults.
type FetchPostsQuery struct {
	PageNumber int
	PageSize   int
}

// FetchThreadQuery selects one thread and how many reply levels to expand.
// A nil Depth uses the configured depth; zero expands nothing.
type FetchThreadQuery struct {
	ThreadID uuid.UUID
	Depth    *int
}

// FetchPostsResult is one page of the feed.
type FetchPostsResult struct {
	Posts  []*thread.Node
	IsNext bool
}

// FetchThreadResult is a thread page. Found is false when the thread does not exist.
type FetchThreadResult struct {
	Thread *thread.Node
	Found  bool
}
