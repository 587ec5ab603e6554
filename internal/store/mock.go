package store

import (
	"context"
	"errors"
	"sync"

	"taskdeck/internal/domain"
)

// ErrMockNotImplemented is returned when a MockStore method lacks an override.
var ErrMockNotImplemented = errors.New("store.MockStore: method not implemented")

// MockStore is a test double for the Store interface.
type MockStore struct {
	CreateTaskFn        func(context.Context, domain.Task) (int64, error)
	UpdateTaskFn        func(context.Context, int64, TaskUpdate) error
	DeleteTaskCascadeFn func(context.Context, int64) ([]int64, error)
	ListTasksByViewFn   func(context.Context, domain.View) ([]domain.Task, error)
	ListChildrenFn      func(context.Context, *int64) ([]domain.Task, error)
	ApplyStructureFn    func(context.Context, []StructChange) error
	SetCompactFn        func(context.Context, int64, bool) error
	SetAttachmentsFn    func(context.Context, int64, []domain.Link, []domain.FileRef) error
	PrioritiesFn        func(context.Context) ([]domain.Priority, error)
	StatusesFn          func(context.Context) ([]domain.Status, error)
	CategoriesFn        func(context.Context) ([]domain.Category, error)

	mu                         sync.Mutex
	CreateTaskCallCount        int
	UpdateTaskCallCount        int
	DeleteTaskCascadeCallCount int
	ListTasksByViewCallCount   int
	ListChildrenCallCount      int
	ApplyStructureCallCount    int
	SetCompactCallCount        int
	SetAttachmentsCallCount    int
	CreateTaskCallArgs         []domain.Task
	UpdateTaskCallArgs         []UpdateTaskCallArg
	DeleteTaskCascadeCallArgs  []int64
	ListTasksByViewCallArgs    []domain.View
	ApplyStructureCallArgs     [][]StructChange
	SetCompactCallArgs         []SetCompactCallArg
}

// UpdateTaskCallArg captures arguments passed to UpdateTask.
type UpdateTaskCallArg struct {
	ID     int64
	Update TaskUpdate
}

// SetCompactCallArg captures arguments passed to SetCompact.
type SetCompactCallArg struct {
	ID      int64
	Compact bool
}

var _ Store = (*MockStore)(nil)

// NewMockStore returns a MockStore with zeroed handlers.
func NewMockStore() *MockStore {
	return &MockStore{}
}

// CreateTask invokes the configured stub or returns ErrMockNotImplemented.
func (m *MockStore) CreateTask(ctx context.Context, t domain.Task) (int64, error) {
	m.mu.Lock()
	m.CreateTaskCallCount++
	m.CreateTaskCallArgs = append(m.CreateTaskCallArgs, t)
	m.mu.Unlock()

	if m.CreateTaskFn == nil {
		return 0, ErrMockNotImplemented
	}
	return m.CreateTaskFn(ctx, t)
}

// UpdateTask invokes the configured stub or returns nil (no-op by default).
func (m *MockStore) UpdateTask(ctx context.Context, id int64, upd TaskUpdate) error {
	m.mu.Lock()
	m.UpdateTaskCallCount++
	m.UpdateTaskCallArgs = append(m.UpdateTaskCallArgs, UpdateTaskCallArg{ID: id, Update: upd})
	m.mu.Unlock()

	if m.UpdateTaskFn == nil {
		return nil // Default to no-op for tests
	}
	return m.UpdateTaskFn(ctx, id, upd)
}

// DeleteTaskCascade invokes the configured stub or returns ErrMockNotImplemented.
func (m *MockStore) DeleteTaskCascade(ctx context.Context, id int64) ([]int64, error) {
	m.mu.Lock()
	m.DeleteTaskCascadeCallCount++
	m.DeleteTaskCascadeCallArgs = append(m.DeleteTaskCascadeCallArgs, id)
	m.mu.Unlock()

	if m.DeleteTaskCascadeFn == nil {
		return nil, ErrMockNotImplemented
	}
	return m.DeleteTaskCascadeFn(ctx, id)
}

// ListTasksByView invokes the configured stub or returns ErrMockNotImplemented.
func (m *MockStore) ListTasksByView(ctx context.Context, view domain.View) ([]domain.Task, error) {
	m.mu.Lock()
	m.ListTasksByViewCallCount++
	m.ListTasksByViewCallArgs = append(m.ListTasksByViewCallArgs, view)
	m.mu.Unlock()

	if m.ListTasksByViewFn == nil {
		return nil, ErrMockNotImplemented
	}
	return m.ListTasksByViewFn(ctx, view)
}

// ListChildren invokes the configured stub or returns ErrMockNotImplemented.
func (m *MockStore) ListChildren(ctx context.Context, parentID *int64) ([]domain.Task, error) {
	m.mu.Lock()
	m.ListChildrenCallCount++
	m.mu.Unlock()

	if m.ListChildrenFn == nil {
		return nil, ErrMockNotImplemented
	}
	return m.ListChildrenFn(ctx, parentID)
}

// ApplyStructure invokes the configured stub or returns nil (no-op by default).
func (m *MockStore) ApplyStructure(ctx context.Context, changes []StructChange) error {
	m.mu.Lock()
	m.ApplyStructureCallCount++
	copied := append([]StructChange{}, changes...)
	m.ApplyStructureCallArgs = append(m.ApplyStructureCallArgs, copied)
	m.mu.Unlock()

	if m.ApplyStructureFn == nil {
		return nil // Default to no-op for tests
	}
	return m.ApplyStructureFn(ctx, changes)
}

// SetCompact invokes the configured stub or returns nil (no-op by default).
func (m *MockStore) SetCompact(ctx context.Context, id int64, compact bool) error {
	m.mu.Lock()
	m.SetCompactCallCount++
	m.SetCompactCallArgs = append(m.SetCompactCallArgs, SetCompactCallArg{ID: id, Compact: compact})
	m.mu.Unlock()

	if m.SetCompactFn == nil {
		return nil // Default to no-op for tests
	}
	return m.SetCompactFn(ctx, id, compact)
}

// SetAttachments invokes the configured stub or returns nil (no-op by default).
func (m *MockStore) SetAttachments(ctx context.Context, taskID int64, links []domain.Link, files []domain.FileRef) error {
	m.mu.Lock()
	m.SetAttachmentsCallCount++
	m.mu.Unlock()

	if m.SetAttachmentsFn == nil {
		return nil // Default to no-op for tests
	}
	return m.SetAttachmentsFn(ctx, taskID, links, files)
}

// Priorities invokes the configured stub or returns ErrMockNotImplemented.
func (m *MockStore) Priorities(ctx context.Context) ([]domain.Priority, error) {
	if m.PrioritiesFn == nil {
		return nil, ErrMockNotImplemented
	}
	return m.PrioritiesFn(ctx)
}

// Statuses invokes the configured stub or returns ErrMockNotImplemented.
func (m *MockStore) Statuses(ctx context.Context) ([]domain.Status, error) {
	if m.StatusesFn == nil {
		return nil, ErrMockNotImplemented
	}
	return m.StatusesFn(ctx)
}

// Categories invokes the configured stub or returns ErrMockNotImplemented.
func (m *MockStore) Categories(ctx context.Context) ([]domain.Category, error) {
	if m.CategoriesFn == nil {
		return nil, ErrMockNotImplemented
	}
	return m.CategoriesFn(ctx)
}
