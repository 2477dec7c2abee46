package thread

import (
	"github.com/lllypuk/threads/internal/domain/user"
	"github.com/lllypuk/threads/internal/domain/uuid"
)

// DefaultDepth is how many reply levels a thread page expands.
const DefaultDepth = 2

// Node is a thread with its author and, up to some depth, its replies resolved.
// Author may be partially populated depending on the selected user fields.
// Children is nil when the level was not expanded; the unresolved reply IDs
// are still available through Thread.Children().
type Node struct {
	Thread   *Thread
	Author   *user.User
	Children []*Node
}

// Expanded reports whether the replies of this node were resolved.
func (n *Node) Expanded() bool {
	return n.Children != nil
}

// Walk visits the node and its resolved descendants depth-first, passing
// the level (0 for the root).
func (n *Node) Walk(fn func(node *Node, level int)) {
	n.walk(fn, 0)
}

func (n *Node) walk(fn func(node *Node, level int), level int) {
	fn(n, level)
	for _, c := range n.Children {
		c.walk(fn, level+1)
	}
}

// Find returns the resolved descendant (or the node itself) with the given ID.
func (n *Node) Find(id uuid.UUID) *Node {
	var found *Node
	n.Walk(func(node *Node, _ int) {
		if found == nil && node.Thread.ID() == id {
			found = node
		}
	})
	return found
}
