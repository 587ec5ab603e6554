package tree

import (
	"context"
	"fmt"

	"taskdeck/internal/debug"
	"taskdeck/internal/domain"
	apperrors "taskdeck/internal/errors"
	"taskdeck/internal/store"
)

// Controller binds the in-memory hierarchy to the store. Every mutation is
// written to the store first; the model is only updated after the write
// commits, so the screen never shows state the database does not have.
type Controller struct {
	st    store.Store
	model *Model
}

// NewController creates a controller over an empty model. Call Reload before
// first use.
func NewController(st store.Store) *Controller {
	return &Controller{st: st, model: &Model{
		nodes:           map[int64]*Node{},
		rootsByPriority: map[string][]*Node{},
	}}
}

// Model exposes the current hierarchy for rendering.
func (c *Controller) Model() *Model { return c.model }

// Reload rebuilds the model from the store's current-view tasks.
func (c *Controller) Reload(ctx context.Context) error {
	prios, err := c.st.Priorities(ctx)
	if err != nil {
		return err
	}
	names := make([]string, len(prios))
	for i, p := range prios {
		names[i] = p.Name
	}
	tasks, err := c.st.ListTasksByView(ctx, domain.ViewCurrent)
	if err != nil {
		return err
	}
	m, err := Build(tasks, names)
	if err != nil {
		return err
	}
	c.model = m
	debug.Logf("tree: reloaded %d tasks across %d priorities", len(tasks), len(names))
	return nil
}

// Move reparents or reorders one task. newParent nil with a priority name
// targets the top level of that section (a header drop); position <= 0
// appends. The moved subtree inherits the destination priority. A
// destination inside the moved subtree fails with CodeCycleDetected before
// anything is written.
func (c *Controller) Move(ctx context.Context, id int64, newParent *int64, priority string, position int) error {
	changes, err := c.model.PlanMove(id, newParent, priority, position)
	if err != nil {
		return err
	}
	if len(changes) == 0 {
		return nil
	}
	if err := c.st.ApplyStructure(ctx, changes); err != nil {
		return err
	}
	c.model.Apply(changes)
	debug.Logf("tree: moved task %d (%d rows touched)", id, len(changes))
	return nil
}

// Create inserts a task as the last sibling of its group and adds it to the
// model with the id the store assigned.
func (c *Controller) Create(ctx context.Context, t domain.Task) (int64, error) {
	if t.ParentID != nil {
		parent := c.model.Node(*t.ParentID)
		if parent == nil {
			return 0, apperrors.New(apperrors.CodeNotFound,
				fmt.Sprintf("parent task %d not in view", *t.ParentID), nil)
		}
		t.Priority = parent.Task.Priority
	}
	id, err := c.st.CreateTask(ctx, t)
	if err != nil {
		return 0, err
	}
	t.ID = id
	if domain.ViewForStatus(t.Status) == domain.ViewCurrent {
		c.model.Insert(t)
	}
	return id, nil
}

// Delete removes the task and its whole subtree, returning the deleted ids
// root first.
func (c *Controller) Delete(ctx context.Context, id int64) ([]int64, error) {
	deleted, err := c.st.DeleteTaskCascade(ctx, id)
	if err != nil {
		return nil, err
	}
	c.model.RemoveSubtree(id)
	debug.Logf("tree: deleted task %d and %d descendants", id, len(deleted)-1)
	return deleted, nil
}

// ToggleCompact flips one task's row density and persists it. No other
// task's flag changes.
func (c *Controller) ToggleCompact(ctx context.Context, id int64) error {
	n := c.model.Node(id)
	if n == nil {
		return apperrors.New(apperrors.CodeNotFound, fmt.Sprintf("task %d not in view", id), nil)
	}
	compact := !n.Task.IsCompact
	if err := c.st.SetCompact(ctx, id, compact); err != nil {
		return err
	}
	c.model.SetCompact(id, compact)
	return nil
}

// SetExpanded records subtree visibility. Presentation only, persisted via
// the view-state sidecar rather than the task table.
func (c *Controller) SetExpanded(id int64, expanded bool) {
	c.model.SetExpanded(id, expanded)
}
