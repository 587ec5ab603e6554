package tree

import "taskdeck/internal/domain"

// Node represents a task within the hierarchy used by the UI.
type Node struct {
	Task     domain.Task
	Children []*Node
	Parent   *Node

	Expanded bool
	Depth    int
}

// ID returns the node's task id.
func (n *Node) ID() int64 { return n.Task.ID }

// HasChildren reports whether the node owns any subtasks.
func (n *Node) HasChildren() bool { return len(n.Children) > 0 }

// Walk visits the node and its descendants depth-first in sibling order.
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, child := range n.Children {
		child.Walk(fn)
	}
}
