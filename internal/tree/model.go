// Package tree maintains the in-memory task hierarchy for the current view
// and plans structural edits as atomic change-sets for the store.
//
// Two invariants hold after every operation: each task's priority equals its
// parent's priority (top-level tasks carry their section's priority), and
// display orders within a sibling group are contiguous starting at 1. A
// sibling group is the children of one parent, or the top-level tasks of one
// priority section.
package tree

import (
	"fmt"
	"sort"

	"taskdeck/internal/domain"
	apperrors "taskdeck/internal/errors"
	"taskdeck/internal/store"
)

// Model is the in-memory hierarchy for one view's tasks.
type Model struct {
	nodes map[int64]*Node

	// rootsByPriority holds top-level nodes per priority section in
	// display order. priorities preserves catalog order for iteration.
	rootsByPriority map[string][]*Node
	priorities      []string
}

// Build constructs the hierarchy from a flat task list. Tasks whose parent is
// not in the list are treated as top-level; the reference is dropped, not the
// task. priorities fixes the section order and must contain every priority
// that appears in tasks.
func Build(tasks []domain.Task, priorities []string) (*Model, error) {
	m := &Model{
		nodes:           make(map[int64]*Node, len(tasks)),
		rootsByPriority: make(map[string][]*Node, len(priorities)),
		priorities:      append([]string{}, priorities...),
	}
	for _, p := range priorities {
		m.rootsByPriority[p] = nil
	}
	for _, t := range tasks {
		if _, ok := m.rootsByPriority[t.Priority]; !ok {
			return nil, apperrors.New(apperrors.CodeInvalidPriority,
				fmt.Sprintf("task %d has unknown priority %q", t.ID, t.Priority), nil)
		}
		m.nodes[t.ID] = &Node{Task: t}
	}

	for _, n := range m.nodes {
		pid := n.Task.ParentID
		if pid == nil {
			continue
		}
		parent, ok := m.nodes[*pid]
		if !ok {
			// Parent missing from this view; surface the task at
			// top level rather than hiding the subtree.
			n.Task.ParentID = nil
			continue
		}
		n.Parent = parent
		parent.Children = append(parent.Children, n)
	}

	for _, n := range m.nodes {
		if n.Parent == nil {
			m.rootsByPriority[n.Task.Priority] = append(m.rootsByPriority[n.Task.Priority], n)
		}
		sortSiblings(n.Children)
	}
	for _, p := range m.priorities {
		sortSiblings(m.rootsByPriority[p])
	}
	m.renumberAll()
	m.recomputeDepths()
	return m, nil
}

func sortSiblings(siblings []*Node) {
	sort.SliceStable(siblings, func(i, j int) bool {
		if siblings[i].Task.DisplayOrder != siblings[j].Task.DisplayOrder {
			return siblings[i].Task.DisplayOrder < siblings[j].Task.DisplayOrder
		}
		return siblings[i].Task.ID < siblings[j].Task.ID
	})
}

// renumberAll rewrites contiguous 1-based display orders across every
// sibling group, preserving relative order.
func (m *Model) renumberAll() {
	renumber := func(siblings []*Node) {
		for i, n := range siblings {
			n.Task.DisplayOrder = i + 1
		}
	}
	for _, p := range m.priorities {
		renumber(m.rootsByPriority[p])
	}
	for _, n := range m.nodes {
		renumber(n.Children)
	}
}

func (m *Model) recomputeDepths() {
	var set func(n *Node, depth int)
	set = func(n *Node, depth int) {
		n.Depth = depth
		for _, c := range n.Children {
			set(c, depth+1)
		}
	}
	for _, p := range m.priorities {
		for _, root := range m.rootsByPriority[p] {
			set(root, 0)
		}
	}
}

// Node returns the node for id, or nil when the id is not in this view.
func (m *Model) Node(id int64) *Node { return m.nodes[id] }

// Len returns the number of tasks in the model.
func (m *Model) Len() int { return len(m.nodes) }

// Priorities returns the section order the model was built with.
func (m *Model) Priorities() []string { return m.priorities }

// Roots returns the top-level nodes of one priority section in display order.
func (m *Model) Roots(priority string) []*Node { return m.rootsByPriority[priority] }

// Descendants returns the subtree below id, root first, depth-first in
// sibling order. Returns nil for unknown ids.
func (m *Model) Descendants(id int64) []*Node {
	n := m.nodes[id]
	if n == nil {
		return nil
	}
	var out []*Node
	n.Walk(func(d *Node) { out = append(out, d) })
	return out
}

// inSubtree reports whether candidate is id itself or one of its descendants.
func (m *Model) inSubtree(id, candidate int64) bool {
	n := m.nodes[candidate]
	for n != nil {
		if n.Task.ID == id {
			return true
		}
		n = n.Parent
	}
	return false
}

// siblingsOf returns the sibling group containing n.
func (m *Model) siblingsOf(n *Node) []*Node {
	if n.Parent != nil {
		return n.Parent.Children
	}
	return m.rootsByPriority[n.Task.Priority]
}

// PlanMove computes the change-set for moving id to a new position without
// mutating the model. newParent nil targets the top level of the priority
// section; otherwise priority is overridden by the parent's own. position is
// the 1-based slot in the destination sibling group; values past the end (or
// <= 0) append. Returns CodeCycleDetected when the destination lies inside
// the moved subtree.
func (m *Model) PlanMove(id int64, newParent *int64, priority string, position int) ([]store.StructChange, error) {
	n := m.nodes[id]
	if n == nil {
		return nil, apperrors.New(apperrors.CodeNotFound, fmt.Sprintf("task %d not in view", id), nil)
	}
	var parentNode *Node
	if newParent != nil {
		if m.inSubtree(id, *newParent) {
			return nil, apperrors.New(apperrors.CodeCycleDetected,
				fmt.Sprintf("cannot move task %d under its own subtree (task %d)", id, *newParent), nil)
		}
		parentNode = m.nodes[*newParent]
		if parentNode == nil {
			return nil, apperrors.New(apperrors.CodeNotFound,
				fmt.Sprintf("destination task %d not in view", *newParent), nil)
		}
		priority = parentNode.Task.Priority
	} else if _, ok := m.rootsByPriority[priority]; !ok {
		return nil, apperrors.New(apperrors.CodeInvalidPriority,
			fmt.Sprintf("unknown priority %q", priority), nil)
	}

	changes := make([]store.StructChange, 0, 8)
	add := func(id int64, parent *int64, prio string, order int) {
		changes = append(changes, store.StructChange{
			ID: id, ParentID: parent, Priority: prio, DisplayOrder: order,
		})
	}

	sameGroup := (parentNode != nil && n.Parent == parentNode) ||
		(parentNode == nil && n.Parent == nil && n.Task.Priority == priority)

	// Source group closes the gap left by the moved node.
	if !sameGroup {
		order := 0
		for _, sib := range m.siblingsOf(n) {
			if sib.Task.ID == id {
				continue
			}
			order++
			if sib.Task.DisplayOrder != order {
				add(sib.Task.ID, sib.Task.ParentID, sib.Task.Priority, order)
			}
		}
	}

	// Destination group makes room at position.
	var dest []*Node
	if parentNode != nil {
		dest = parentNode.Children
	} else {
		dest = m.rootsByPriority[priority]
	}
	remaining := make([]*Node, 0, len(dest)+1)
	for _, sib := range dest {
		if sib.Task.ID != id {
			remaining = append(remaining, sib)
		}
	}
	if position <= 0 || position > len(remaining)+1 {
		position = len(remaining) + 1
	}
	ordered := make([]*Node, 0, len(remaining)+1)
	ordered = append(ordered, remaining[:position-1]...)
	ordered = append(ordered, n)
	ordered = append(ordered, remaining[position-1:]...)
	for i, sib := range ordered {
		ord := i + 1
		if sib.Task.ID == id {
			add(id, newParent, priority, ord)
			continue
		}
		if sib.Task.DisplayOrder != ord {
			add(sib.Task.ID, sib.Task.ParentID, sib.Task.Priority, ord)
		}
	}

	// Priority cascades through the moved subtree.
	if n.Task.Priority != priority {
		for _, d := range m.Descendants(id) {
			if d.Task.ID == id {
				continue
			}
			add(d.Task.ID, d.Task.ParentID, priority, d.Task.DisplayOrder)
		}
	}
	return changes, nil
}

// Apply mutates the model with a committed change-set and rebuilds the
// affected sibling groups. Unknown ids are ignored so a change-set computed
// against a slightly stale view degrades gracefully.
func (m *Model) Apply(changes []store.StructChange) {
	for _, ch := range changes {
		n := m.nodes[ch.ID]
		if n == nil {
			continue
		}
		m.detach(n)
		n.Task.ParentID = ch.ParentID
		n.Task.Priority = ch.Priority
		n.Task.DisplayOrder = ch.DisplayOrder
	}
	// Relink everything that moved.
	for _, ch := range changes {
		n := m.nodes[ch.ID]
		if n == nil || n.Parent != nil || containsNode(m.rootsByPriority[n.Task.Priority], n) {
			continue
		}
		m.attach(n)
	}
	for _, p := range m.priorities {
		sortSiblings(m.rootsByPriority[p])
	}
	for _, n := range m.nodes {
		sortSiblings(n.Children)
	}
	m.renumberAll()
	m.recomputeDepths()
}

func containsNode(siblings []*Node, n *Node) bool {
	for _, sib := range siblings {
		if sib == n {
			return true
		}
	}
	return false
}

// detach removes n from its current sibling group without touching the
// subtree below it.
func (m *Model) detach(n *Node) {
	if n.Parent != nil {
		n.Parent.Children = removeNode(n.Parent.Children, n)
		n.Parent = nil
		return
	}
	p := n.Task.Priority
	m.rootsByPriority[p] = removeNode(m.rootsByPriority[p], n)
}

// attach links n into the group named by its task fields.
func (m *Model) attach(n *Node) {
	if n.Task.ParentID != nil {
		if parent := m.nodes[*n.Task.ParentID]; parent != nil {
			n.Parent = parent
			parent.Children = append(parent.Children, n)
			return
		}
		n.Task.ParentID = nil
	}
	p := n.Task.Priority
	m.rootsByPriority[p] = append(m.rootsByPriority[p], n)
}

func removeNode(siblings []*Node, n *Node) []*Node {
	out := siblings[:0]
	for _, sib := range siblings {
		if sib != n {
			out = append(out, sib)
		}
	}
	return out
}

// Insert adds a task to the model at the end of its sibling group.
func (m *Model) Insert(t domain.Task) *Node {
	n := &Node{Task: t}
	m.nodes[t.ID] = n
	m.attach(n)
	siblings := m.siblingsOf(n)
	n.Task.DisplayOrder = len(siblings)
	if n.Parent != nil {
		n.Depth = n.Parent.Depth + 1
	}
	return n
}

// RemoveSubtree drops id and its descendants from the model and renumbers
// the remaining siblings. Returns the removed ids root first.
func (m *Model) RemoveSubtree(id int64) []int64 {
	n := m.nodes[id]
	if n == nil {
		return nil
	}
	m.detach(n)
	var removed []int64
	n.Walk(func(d *Node) {
		removed = append(removed, d.Task.ID)
		delete(m.nodes, d.Task.ID)
	})
	m.renumberAll()
	return removed
}

// SetExpanded records the subtree visibility flag for id.
func (m *Model) SetExpanded(id int64, expanded bool) {
	if n := m.nodes[id]; n != nil {
		n.Expanded = expanded
	}
}

// SetCompact records the row density flag for id, leaving every other node
// untouched.
func (m *Model) SetCompact(id int64, compact bool) {
	if n := m.nodes[id]; n != nil {
		n.Task.IsCompact = compact
	}
}

// Tasks returns every task in the model in section and sibling order,
// parents before children. The result is suitable for rebuilding the model.
func (m *Model) Tasks() []domain.Task {
	out := make([]domain.Task, 0, len(m.nodes))
	for _, p := range m.priorities {
		for _, root := range m.rootsByPriority[p] {
			root.Walk(func(n *Node) { out = append(out, n.Task) })
		}
	}
	return out
}
