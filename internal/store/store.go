// Package store persists tasks, catalogs, and attachments for taskdeck.
package store

import (
	"context"

	"taskdeck/internal/domain"
)

// TaskUpdate carries field edits for a single task. Nil pointers leave the
// column untouched. Parent and completion are nullable, so they get explicit
// Set flags instead of double pointers.
type TaskUpdate struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *string
	DueDate     *string
	Category    *string // catalog name; empty string clears the category

	SetParent bool
	ParentID  *int64

	SetCompleted bool
	CompletedAt  *string // RFC3339, nil clears

	DisplayOrder *int
	IsCompact    *bool
}

// StructChange records one task's structural fields after a hierarchy
// operation. The change-set always carries the full (parent, priority,
// display_order) triple so a reparent plus cascade plus renumber can be
// written as one atomic batch.
type StructChange struct {
	ID           int64
	ParentID     *int64
	Priority     string
	DisplayOrder int
}

// Store is the persistence boundary consumed by the hierarchy controller
// and the view partitioner.
type Store interface {
	// CreateTask inserts the task and returns its store-assigned id. The
	// store assigns the next display_order in the destination sibling
	// group; the DisplayOrder field on t is ignored.
	CreateTask(ctx context.Context, t domain.Task) (int64, error)

	// UpdateTask applies field edits to one task.
	UpdateTask(ctx context.Context, id int64, upd TaskUpdate) error

	// DeleteTaskCascade removes the task and every descendant, returning
	// the ids that were deleted (root first).
	DeleteTaskCascade(ctx context.Context, id int64) ([]int64, error)

	// ListTasksByView returns the tasks belonging to one partition with
	// links and files populated, ordered parent-first then by sibling
	// order (completed view: by completion time, newest first).
	ListTasksByView(ctx context.Context, view domain.View) ([]domain.Task, error)

	// ListChildren returns the direct children of parentID in sibling
	// order. A nil parentID lists the top-level tasks.
	ListChildren(ctx context.Context, parentID *int64) ([]domain.Task, error)

	// SetAttachments replaces the link and file rows for one task.
	SetAttachments(ctx context.Context, taskID int64, links []domain.Link, files []domain.FileRef) error

	// ApplyStructure writes a change-set of parent/priority/order triples
	// in a single transaction. Either every change lands or none do.
	ApplyStructure(ctx context.Context, changes []StructChange) error

	// SetCompact persists the per-task presentation flag.
	SetCompact(ctx context.Context, id int64, compact bool) error

	// Catalog reads.
	Priorities(ctx context.Context) ([]domain.Priority, error)
	Statuses(ctx context.Context) ([]domain.Status, error)
	Categories(ctx context.Context) ([]domain.Category, error)
}
