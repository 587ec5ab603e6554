// Package domain holds the core task-management types shared by the store,
// the hierarchy model, and the UI.
package domain

import "time"

// Task is one row in the task tree. IDs are store-assigned and stable.
type Task struct {
	ID          int64
	Title       string
	Description string
	Status      string
	Priority    string
	DueDate     string // ISO date, empty when unset
	Category    string // catalog name, empty when unset

	// ParentID is nil for top-level tasks. Ownership is a tree: at most one
	// parent, and a task may never become its own ancestor.
	ParentID *int64

	// DisplayOrder is 1-based, unique and contiguous within a sibling group.
	DisplayOrder int

	// IsCompact is presentation state persisted with the task row.
	IsCompact bool

	// CompletedAt is non-nil exactly when Status == StatusCompleted.
	CompletedAt *time.Time

	Links []Link
	Files []FileRef
}

// Link is an ordered URL attachment on a task.
type Link struct {
	ID    int64
	URL   string
	Label string
}

// FileRef is an ordered file attachment on a task. The path is resolved
// lazily at open time, never at load time.
type FileRef struct {
	ID   int64
	Path string
	Name string
}

// Priority is a catalog entry. DisplayOrder 1 is the highest priority and
// defines header ordering in the current view.
type Priority struct {
	ID           int64
	Name         string
	Color        string
	DisplayOrder int
}

// Status is a catalog entry. Exactly one status, StatusCompleted, is
// terminal and cannot be deleted.
type Status struct {
	ID           int64
	Name         string
	Color        string
	DisplayOrder int
}

// Category is a catalog entry used only for row tinting.
type Category struct {
	ID    int64
	Name  string
	Color string
}

// HasParent reports whether the task is a child of another task.
func (t Task) HasParent() bool {
	return t.ParentID != nil
}

// IsCompleted reports whether the task is in the terminal status.
func (t Task) IsCompleted() bool {
	return t.Status == StatusCompleted
}
