package thread

import (
	"context"

	"github.com/lllypuk/threads/internal/domain/thread"
	"github.com/lllypuk/threads/internal/domain/user"
	"github.com/lllypuk/threads/internal/domain/uuid"
)

// ThreadRepository defines the thread storage used by the thread operations.
// interface declared on the consumer side (application layer)
type ThreadRepository interface {
	// Insert stores a new thread
	Insert(ctx context.Context, t *thread.Thread) error

	// FindByID returns errs.ErrNotFound when the thread does not exist
	FindByID(ctx context.Context, id uuid.UUID) (*thread.Thread, error)

	// FindByIDs loads many threads at once; missing IDs are skipped
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*thread.Thread, error)

	// FindTopLevel returns threads without a parent, newest first
	FindTopLevel(ctx context.Context, offset, limit int) ([]*thread.Thread, error)

	// CountTopLevel counts threads without a parent
	CountTopLevel(ctx context.Context) (int, error)

	// AppendChild adds a reply ID to the parent's children
	AppendChild(ctx context.Context, parentID, childID uuid.UUID) error
}

// UserRepository defines the author lookups and links used by the thread operations.
type UserRepository interface {
	// FindByID loads the selected fields of one user; nil fields loads all
	FindByID(ctx context.Context, id uuid.UUID, fields []user.Field) (*user.User, error)

	// FindByIDs loads the selected fields of many users; missing IDs are skipped
	FindByIDs(ctx context.Context, ids []uuid.UUID, fields []user.Field) ([]*user.User, error)

	// AppendThread adds a thread ID to the user's authored threads once
	AppendThread(ctx context.Context, userID, threadID uuid.UUID) error
}
