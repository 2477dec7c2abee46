package thread

import "github.com/lllypuk/threads/internal/domain/uuid"

// CreateThreadCommand posts a new top-level thread.
type CreateThreadCommand struct {
	Text     string
	AuthorID uuid.UUID
	// CommunityID is accepted but never stored.
	CommunityID uuid.UUID
	// Path is the page to revalidate afterwards.
	Path string
}

// AddCommentCommand replies to an existing thread.
type AddCommentCommand struct {
	ThreadID uuid.UUID
	Text     string
	AuthorID uuid.UUID
	Path     string
}
