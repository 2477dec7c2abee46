package thread_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lllypuk/threads/internal/domain/errs"
	"github.com/lllypuk/threads/internal/domain/thread"
	"github.com/lllypuk/threads/internal/domain/uuid"
)

func TestNewThread(t *testing.T) {
	author := uuid.NewUUID()

	th, err := thread.NewThread("hello", author)

	require.NoError(t, err)
	assert.False(t, th.ID().IsZero())
	assert.Equal(t, "hello", th.Text())
	assert.Equal(t, author, th.AuthorID())
	assert.True(t, th.IsTopLevel())
	assert.True(t, th.CommunityID().IsZero())
	assert.Empty(t, th.Children())
	assert.WithinDuration(t, time.Now(), th.CreatedAt(), time.Second)
}

func TestNewThread_InvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		author uuid.UUID
	}{
		{"empty text", "", uuid.NewUUID()},
		{"whitespace text", "  \n\t", uuid.NewUUID()},
		{"missing author", "hello", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th, err := thread.NewThread(tt.text, tt.author)
			require.ErrorIs(t, err, errs.ErrInvalidInput)
			assert.Nil(t, th)
		})
	}
}

func TestNewReply(t *testing.T) {
	parent, err := thread.NewThread("hello", uuid.NewUUID())
	require.NoError(t, err)

	reply, err := thread.NewReply("hi", uuid.NewUUID(), parent.ID())
	require.NoError(t, err)
	assert.False(t, reply.IsTopLevel())
	assert.Equal(t, parent.ID(), reply.ParentID())

	_, err = thread.NewReply("hi", uuid.NewUUID(), "")
	require.ErrorIs(t, err, errs.ErrInvalidInput)
}

func TestThread_AddChild(t *testing.T) {
	parent, err := thread.NewThread("hello", uuid.NewUUID())
	require.NoError(t, err)
	other, err := thread.NewThread("other", uuid.NewUUID())
	require.NoError(t, err)

	first, err := thread.NewReply("one", uuid.NewUUID(), parent.ID())
	require.NoError(t, err)
	second, err := thread.NewReply("two", uuid.NewUUID(), parent.ID())
	require.NoError(t, err)

	require.NoError(t, parent.AddChild(first))
	require.NoError(t, parent.AddChild(second))
	assert.Equal(t, []uuid.UUID{first.ID(), second.ID()}, parent.Children())

	t.Run("duplicate", func(t *testing.T) {
		require.ErrorIs(t, parent.AddChild(first), errs.ErrAlreadyExists)
	})

	t.Run("reply of another thread", func(t *testing.T) {
		require.ErrorIs(t, other.AddChild(first), errs.ErrInvalidInput)
	})

	t.Run("children copy is detached", func(t *testing.T) {
		ids := parent.Children()
		ids[0] = "mutated"
		assert.Equal(t, first.ID(), parent.Children()[0])
	})
}

func TestNode_WalkAndFind(t *testing.T) {
	root, _ := thread.NewThread("root", uuid.NewUUID())
	child, _ := thread.NewReply("child", uuid.NewUUID(), root.ID())
	grandchild, _ := thread.NewReply("grandchild", uuid.NewUUID(), child.ID())

	tree := &thread.Node{
		Thread: root,
		Children: []*thread.Node{
			{Thread: child, Children: []*thread.Node{{Thread: grandchild}}},
		},
	}

	levels := map[uuid.UUID]int{}
	tree.Walk(func(n *thread.Node, level int) {
		levels[n.Thread.ID()] = level
	})

	assert.Equal(t, 0, levels[root.ID()])
	assert.Equal(t, 1, levels[child.ID()])
	assert.Equal(t, 2, levels[grandchild.ID()])
	assert.Same(t, tree.Children[0].Children[0], tree.Find(grandchild.ID()))
	assert.Nil(t, tree.Find(uuid.NewUUID()))
	assert.True(t, tree.Expanded())
	assert.False(t, tree.Children[0].Children[0].Expanded())
}
