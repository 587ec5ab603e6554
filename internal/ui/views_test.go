package ui

import (
	"context"
	"testing"
	"time"

	"taskdeck/internal/domain"
	"taskdeck/internal/store"
)

type viewsFixture struct {
	mock  *store.MockStore
	tasks map[domain.View][]domain.Task
}

func newViewsFixture() *viewsFixture {
	f := &viewsFixture{
		mock: store.NewMockStore(),
		tasks: map[domain.View][]domain.Task{
			domain.ViewCurrent: {
				{ID: 1, Title: "Plan trip", Status: "Not Started", Priority: "High", DisplayOrder: 1},
				{ID: 2, Title: "Book hotel", Status: "In Progress", Priority: "High", DisplayOrder: 2},
				{ID: 3, Title: "Pack bags", Status: "Not Started", Priority: "Low", DisplayOrder: 1},
			},
			domain.ViewBacklog: {
				{ID: 10, Title: "Someday idea", Status: domain.StatusBacklog, Priority: "Medium", DisplayOrder: 1},
			},
			domain.ViewCompleted: {
				{ID: 20, Title: "Old task", Status: domain.StatusCompleted, Priority: "Low", DisplayOrder: 1},
			},
		},
	}
	f.mock.PrioritiesFn = func(context.Context) ([]domain.Priority, error) {
		return []domain.Priority{
			{ID: 1, Name: "High", DisplayOrder: 1},
			{ID: 2, Name: "Medium", DisplayOrder: 2},
			{ID: 3, Name: "Low", DisplayOrder: 3},
		}, nil
	}
	f.mock.ListTasksByViewFn = func(_ context.Context, view domain.View) ([]domain.Task, error) {
		return f.tasks[view], nil
	}
	return f
}

func listCalls(m *store.MockStore, view domain.View) int {
	n := 0
	for _, v := range m.ListTasksByViewCallArgs {
		if v == view {
			n++
		}
	}
	return n
}

func TestReloadAllPartitionsTasks(t *testing.T) {
	f := newViewsFixture()
	v := NewViews(f.mock)
	if err := v.ReloadAll(context.Background()); err != nil {
		t.Fatalf("ReloadAll: %v", err)
	}

	if v.Current().Model().Len() != 3 {
		t.Fatalf("current view holds %d tasks, want 3", v.Current().Model().Len())
	}
	if len(v.Backlog()) != 1 || v.Backlog()[0].Task.ID != 10 {
		t.Fatalf("unexpected backlog rows: %+v", v.Backlog())
	}
	if len(v.Completed()) != 1 || v.Completed()[0].Task.ID != 20 {
		t.Fatalf("unexpected completed rows: %+v", v.Completed())
	}
}

func TestFlatViewsDropHierarchy(t *testing.T) {
	f := newViewsFixture()
	parent := int64(99)
	f.tasks[domain.ViewCompleted] = []domain.Task{
		{ID: 21, Title: "Finished subtask", Status: domain.StatusCompleted, Priority: "High", ParentID: &parent, DisplayOrder: 1},
	}
	v := NewViews(f.mock)
	if err := v.ReloadAll(context.Background()); err != nil {
		t.Fatalf("ReloadAll: %v", err)
	}
	row := v.Completed()[0]
	if row.Task.ParentID != nil || row.Parent != nil {
		t.Fatal("flat views must render rows as parentless")
	}
}

func TestChangeStatusWithinPartitionUpdatesInPlace(t *testing.T) {
	f := newViewsFixture()
	v := NewViews(f.mock)
	if err := v.ReloadAll(context.Background()); err != nil {
		t.Fatalf("ReloadAll: %v", err)
	}
	before := f.mock.ListTasksByViewCallCount

	crossed, err := v.ChangeStatus(context.Background(), 1, "In Progress", time.Now())
	if err != nil {
		t.Fatalf("ChangeStatus: %v", err)
	}
	if crossed {
		t.Fatal("Not Started -> In Progress stays in the current partition")
	}
	if f.mock.ListTasksByViewCallCount != before {
		t.Fatal("a non-crossing change must not reload any view")
	}
	if got := v.Current().Model().Node(1).Task.Status; got != "In Progress" {
		t.Fatalf("node status = %q, want In Progress", got)
	}
	if f.mock.UpdateTaskCallCount != 1 {
		t.Fatalf("UpdateTask called %d times, want 1", f.mock.UpdateTaskCallCount)
	}
}

func TestChangeStatusCrossingRebuildsBothViews(t *testing.T) {
	f := newViewsFixture()
	v := NewViews(f.mock)
	if err := v.ReloadAll(context.Background()); err != nil {
		t.Fatalf("ReloadAll: %v", err)
	}
	backlogBefore := listCalls(f.mock, domain.ViewBacklog)

	// The store is the source of truth after the write; mimic it moving
	// the task between partitions.
	done := time.Now()
	f.tasks[domain.ViewCurrent] = f.tasks[domain.ViewCurrent][1:]
	f.tasks[domain.ViewCompleted] = append([]domain.Task{
		{ID: 1, Title: "Plan trip", Status: domain.StatusCompleted, Priority: "High", DisplayOrder: 1, CompletedAt: &done},
	}, f.tasks[domain.ViewCompleted]...)

	crossed, err := v.ChangeStatus(context.Background(), 1, domain.StatusCompleted, done)
	if err != nil {
		t.Fatalf("ChangeStatus: %v", err)
	}
	if !crossed {
		t.Fatal("completing a current task crosses partitions")
	}

	if v.Current().Model().Node(1) != nil {
		t.Fatal("completed task must leave the current view")
	}
	if v.Completed()[0].Task.ID != 1 {
		t.Fatalf("completed view head = %d, want 1", v.Completed()[0].Task.ID)
	}
	if got := listCalls(f.mock, domain.ViewBacklog); got != backlogBefore {
		t.Fatal("the untouched third view must not be reloaded")
	}

	upd := f.mock.UpdateTaskCallArgs[0].Update
	if !upd.SetCompleted || upd.CompletedAt == nil {
		t.Fatalf("completion must stamp completed_at, got %+v", upd)
	}
}

func TestChangeStatusClearsCompletionStamp(t *testing.T) {
	f := newViewsFixture()
	v := NewViews(f.mock)
	if err := v.ReloadAll(context.Background()); err != nil {
		t.Fatalf("ReloadAll: %v", err)
	}

	f.tasks[domain.ViewCompleted] = nil
	if _, err := v.ChangeStatus(context.Background(), 20, "Not Started", time.Now()); err != nil {
		t.Fatalf("ChangeStatus: %v", err)
	}
	upd := f.mock.UpdateTaskCallArgs[0].Update
	if !upd.SetCompleted || upd.CompletedAt != nil {
		t.Fatalf("reopening must clear completed_at, got %+v", upd)
	}
}

func TestChangeStatusUnknownTask(t *testing.T) {
	f := newViewsFixture()
	v := NewViews(f.mock)
	if err := v.ReloadAll(context.Background()); err != nil {
		t.Fatalf("ReloadAll: %v", err)
	}
	if _, err := v.ChangeStatus(context.Background(), 404, "In Progress", time.Now()); err == nil {
		t.Fatal("expected an error for a task no view holds")
	}
	if f.mock.UpdateTaskCallCount != 0 {
		t.Fatal("a missing task must not reach the store")
	}
}

func TestExpansionSurvivesReload(t *testing.T) {
	f := newViewsFixture()
	child := int64(1)
	f.tasks[domain.ViewCurrent] = append(f.tasks[domain.ViewCurrent],
		domain.Task{ID: 4, Title: "Sub", Status: "Not Started", Priority: "High", ParentID: &child, DisplayOrder: 1})
	v := NewViews(f.mock)
	if err := v.ReloadAll(context.Background()); err != nil {
		t.Fatalf("ReloadAll: %v", err)
	}

	v.SetExpanded(1, true)
	if err := v.Reload(context.Background(), domain.ViewCurrent); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if !v.Current().Model().Node(1).Expanded {
		t.Fatal("expansion flag must survive a rebuild")
	}
}

func TestStaleExpansionDropped(t *testing.T) {
	f := newViewsFixture()
	v := NewViews(f.mock)
	if err := v.ReloadAll(context.Background()); err != nil {
		t.Fatalf("ReloadAll: %v", err)
	}

	v.RestoreExpandedIDs([]int64{1, 999})
	got := v.ExpandedIDs()
	if len(got) != 1 || got[0] != 1 {
		t.Fatalf("expected only id 1 to survive, got %v", got)
	}
}

func TestFindSearchesAllViews(t *testing.T) {
	f := newViewsFixture()
	v := NewViews(f.mock)
	if err := v.ReloadAll(context.Background()); err != nil {
		t.Fatalf("ReloadAll: %v", err)
	}

	if n, view := v.Find(2); n == nil || view != domain.ViewCurrent {
		t.Fatalf("Find(2) = %+v in %v", n, view)
	}
	if n, view := v.Find(10); n == nil || view != domain.ViewBacklog {
		t.Fatalf("Find(10) = %+v in %v", n, view)
	}
	if n, view := v.Find(20); n == nil || view != domain.ViewCompleted {
		t.Fatalf("Find(20) = %+v in %v", n, view)
	}
	if n, _ := v.Find(404); n != nil {
		t.Fatal("Find(404) should miss")
	}
}
