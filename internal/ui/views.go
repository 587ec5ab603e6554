package ui

import (
	"context"
	"time"

	"taskdeck/internal/debug"
	"taskdeck/internal/domain"
	apperrors "taskdeck/internal/errors"
	"taskdeck/internal/store"
	"taskdeck/internal/tree"
)

// Views partitions the task set into the three status views. The current
// view is hierarchical and backed by a tree controller; backlog and
// completed are flat lists. Every task lives in exactly one view at a time,
// decided solely by its status.
type Views struct {
	st store.Store

	current   *tree.Controller
	backlog   []*tree.Node
	completed []*tree.Node

	// expanded tracks which current-view subtrees are open so a rebuild
	// can restore them by id.
	expanded map[int64]bool

	active domain.View
}

func NewViews(st store.Store) *Views {
	return &Views{
		st:       st,
		current:  tree.NewController(st),
		expanded: make(map[int64]bool),
		active:   domain.ViewCurrent,
	}
}

// Active returns the view the user is looking at.
func (v *Views) Active() domain.View { return v.active }

// SetActive switches the visible view.
func (v *Views) SetActive(view domain.View) { v.active = view }

// Current exposes the hierarchy controller for the current view.
func (v *Views) Current() *tree.Controller { return v.current }

// Backlog returns the flat backlog rows.
func (v *Views) Backlog() []*tree.Node { return v.backlog }

// Completed returns the flat completed rows, newest completion first.
func (v *Views) Completed() []*tree.Node { return v.completed }

// ReloadAll rebuilds all three views from the store, restoring expansion
// flags by id afterwards.
func (v *Views) ReloadAll(ctx context.Context) error {
	for _, view := range domain.AllViews {
		if err := v.Reload(ctx, view); err != nil {
			return err
		}
	}
	return nil
}

// Reload rebuilds one view from the store.
func (v *Views) Reload(ctx context.Context, view domain.View) error {
	switch view {
	case domain.ViewCurrent:
		if err := v.current.Reload(ctx); err != nil {
			return err
		}
		v.restoreExpansion()
	case domain.ViewBacklog:
		tasks, err := v.st.ListTasksByView(ctx, view)
		if err != nil {
			return err
		}
		v.backlog = flatNodes(tasks)
	case domain.ViewCompleted:
		tasks, err := v.st.ListTasksByView(ctx, view)
		if err != nil {
			return err
		}
		v.completed = flatNodes(tasks)
	}
	return nil
}

// flatNodes wraps tasks as parentless rows for the flat views. Hierarchy is
// intentionally dropped: a task shown here may have relatives in another
// partition.
func flatNodes(tasks []domain.Task) []*tree.Node {
	nodes := make([]*tree.Node, len(tasks))
	for i, t := range tasks {
		t.ParentID = nil
		nodes[i] = &tree.Node{Task: t}
	}
	return nodes
}

// Find locates a task in whichever view holds it.
func (v *Views) Find(id int64) (*tree.Node, domain.View) {
	if n := v.current.Model().Node(id); n != nil {
		return n, domain.ViewCurrent
	}
	for _, n := range v.backlog {
		if n.Task.ID == id {
			return n, domain.ViewBacklog
		}
	}
	for _, n := range v.completed {
		if n.Task.ID == id {
			return n, domain.ViewCompleted
		}
	}
	return nil, domain.ViewCurrent
}

// ChangeStatus persists a status change and moves the task between views
// when the change crosses a partition boundary. Only the two affected views
// are rebuilt; the third keeps its state untouched.
func (v *Views) ChangeStatus(ctx context.Context, id int64, newStatus string, now time.Time) (crossed bool, err error) {
	n, from := v.Find(id)
	if n == nil {
		return false, apperrors.New(apperrors.CodeNotFound, "task not loaded in any view", nil)
	}

	updated := n.Task
	domain.ApplyStatusChange(&updated, newStatus, now)
	upd := store.TaskUpdate{Status: &updated.Status, SetCompleted: true}
	if updated.CompletedAt != nil {
		stamp := updated.CompletedAt.UTC().Format(time.RFC3339)
		upd.CompletedAt = &stamp
	}
	if err := v.st.UpdateTask(ctx, id, upd); err != nil {
		return false, err
	}

	to := domain.ViewForStatus(newStatus)
	if !domain.CrossesPartition(n.Task.Status, newStatus) {
		n.Task = updated
		return false, nil
	}

	debug.Logf("views: task %d crossed %s -> %s", id, from, to)
	if err := v.Reload(ctx, from); err != nil {
		return true, err
	}
	if err := v.Reload(ctx, to); err != nil {
		return true, err
	}
	return true, nil
}

// SetExpanded records and applies a subtree visibility change.
func (v *Views) SetExpanded(id int64, expanded bool) {
	if expanded {
		v.expanded[id] = true
	} else {
		delete(v.expanded, id)
	}
	v.current.SetExpanded(id, expanded)
}

// ExpandedIDs returns the open subtree ids for view-state persistence.
func (v *Views) ExpandedIDs() []int64 {
	out := make([]int64, 0, len(v.expanded))
	for id := range v.expanded {
		out = append(out, id)
	}
	return out
}

// RestoreExpandedIDs seeds the expansion set, e.g. from a saved view state.
func (v *Views) RestoreExpandedIDs(ids []int64) {
	v.expanded = make(map[int64]bool, len(ids))
	for _, id := range ids {
		v.expanded[id] = true
	}
	v.restoreExpansion()
}

func (v *Views) restoreExpansion() {
	m := v.current.Model()
	for id := range v.expanded {
		if m.Node(id) == nil {
			// Task left the view; drop the stale flag.
			delete(v.expanded, id)
			continue
		}
		m.SetExpanded(id, true)
	}
}
