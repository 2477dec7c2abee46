// Package thread models posts and their replies as a tree of flat records
// linked by parent ID (backward) and children IDs (forward).
package thread

import (
	"slices"
	"strings"
	"time"

	"github.com/lllypuk/threads/internal/domain/errs"
	"github.com/lllypuk/threads/internal/domain/uuid"
)

// Thread is a top-level post or a reply to another thread.
type Thread struct {
	id          uuid.UUID
	text        string
	authorID    uuid.UUID
	communityID uuid.UUID // always zero, communities are not implemented
	parentID    uuid.UUID // zero for top-level posts
	children    []uuid.UUID
	createdAt   time.Time
}

// NewThread creates a top-level post.
func NewThread(text string, authorID uuid.UUID) (*Thread, error) {
	return newThread(text, authorID, "")
}

// NewReply creates a reply to the thread with parentID.
func NewReply(text string, authorID, parentID uuid.UUID) (*Thread, error) {
	if parentID.IsZero() {
		return nil, errs.ErrInvalidInput
	}
	return newThread(text, authorID, parentID)
}

func newThread(text string, authorID, parentID uuid.UUID) (*Thread, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errs.ErrInvalidInput
	}
	if authorID.IsZero() {
		return nil, errs.ErrInvalidInput
	}

	return &Thread{
		id:        uuid.NewUUID(),
		text:      text,
		authorID:  authorID,
		parentID:  parentID,
		children:  make([]uuid.UUID, 0),
		createdAt: time.Now().UTC(),
	}, nil
}

// Reconstruct restores a thread from storage.
func Reconstruct(
	id uuid.UUID,
	text string,
	authorID, communityID, parentID uuid.UUID,
	children []uuid.UUID,
	createdAt time.Time,
) *Thread {
	if children == nil {
		children = make([]uuid.UUID, 0)
	}
	return &Thread{
		id:          id,
		text:        text,
		authorID:    authorID,
		communityID: communityID,
		parentID:    parentID,
		children:    children,
		createdAt:   createdAt,
	}
}

// ID returns the thread identifier
func (t *Thread) ID() uuid.UUID { return t.id }

// Text returns the body
func (t *Thread) Text() string { return t.text }

// AuthorID returns the author identifier
func (t *Thread) AuthorID() uuid.UUID { return t.authorID }

// CommunityID returns the community identifier, always zero for now
func (t *Thread) CommunityID() uuid.UUID { return t.communityID }

// ParentID returns the parent identifier, zero for top-level posts
func (t *Thread) ParentID() uuid.UUID { return t.parentID }

// IsTopLevel reports whether the thread has no parent
func (t *Thread) IsTopLevel() bool { return t.parentID.IsZero() }

// Children returns a copy of the reply IDs in reply creation order
func (t *Thread) Children() []uuid.UUID { return slices.Clone(t.children) }

// CreatedAt returns creation time
func (t *Thread) CreatedAt() time.Time { return t.createdAt }

// AddChild links a reply. The reply must point back at this thread.
func (t *Thread) AddChild(reply *Thread) error {
	if reply == nil || reply.parentID != t.id {
		return errs.ErrInvalidInput
	}
	if slices.Contains(t.children, reply.id) {
		return errs.ErrAlreadyExists
	}
	t.children = append(t.children, reply.id)
	return nil
}
