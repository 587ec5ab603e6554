package ui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"taskdeck/internal/config"
	"taskdeck/internal/domain"
	"taskdeck/internal/store"
)

func newTestApp(t *testing.T) (*App, *viewsFixture) {
	t.Helper()
	cleanup := config.ResetForTesting(t)
	t.Cleanup(cleanup)

	f := newViewsFixture()
	f.mock.StatusesFn = func(context.Context) ([]domain.Status, error) {
		return []domain.Status{
			{ID: 1, Name: "Not Started", DisplayOrder: 1},
			{ID: 2, Name: "In Progress", DisplayOrder: 2},
			{ID: 3, Name: "On Hold", DisplayOrder: 3},
			{ID: 4, Name: domain.StatusBacklog, DisplayOrder: 4},
			{ID: 5, Name: domain.StatusCompleted, DisplayOrder: 5},
		}, nil
	}
	f.mock.CategoriesFn = func(context.Context) ([]domain.Category, error) {
		return nil, nil
	}

	a := NewApp(f.mock)
	a.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	msg := a.reloadCmd()()
	if rc, ok := msg.(reloadCompleteMsg); !ok || rc.err != nil {
		t.Fatalf("initial reload failed: %#v", msg)
	}
	a.Update(msg)
	return a, f
}

func keyPress(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestTabCyclesThroughViews(t *testing.T) {
	a, _ := newTestApp(t)
	if a.views.Active() != domain.ViewCurrent {
		t.Fatalf("start view = %v", a.views.Active())
	}
	a.Update(tea.KeyMsg{Type: tea.KeyTab})
	if a.views.Active() != domain.ViewBacklog {
		t.Fatalf("after tab: %v", a.views.Active())
	}
	a.Update(tea.KeyMsg{Type: tea.KeyTab})
	a.Update(tea.KeyMsg{Type: tea.KeyTab})
	if a.views.Active() != domain.ViewCurrent {
		t.Fatalf("tab should wrap back to current, got %v", a.views.Active())
	}
	a.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	if a.views.Active() != domain.ViewCompleted {
		t.Fatalf("shift-tab should wrap backwards, got %v", a.views.Active())
	}
}

func TestSelectionClampsAtEdges(t *testing.T) {
	a, _ := newTestApp(t)
	rows := a.visibleRows()
	if len(rows) != 3 {
		t.Fatalf("expected 3 visible rows, got %d", len(rows))
	}

	a.Update(tea.KeyMsg{Type: tea.KeyUp})
	if a.selectedNode().Task.ID != rows[0].Task.ID {
		t.Fatal("up at the top must stay on the first row")
	}
	for i := 0; i < 10; i++ {
		a.Update(tea.KeyMsg{Type: tea.KeyDown})
	}
	if a.selectedNode().Task.ID != rows[len(rows)-1].Task.ID {
		t.Fatal("down past the bottom must stay on the last row")
	}
	a.Update(tea.KeyMsg{Type: tea.KeyHome})
	if a.selectedNode().Task.ID != rows[0].Task.ID {
		t.Fatal("home must select the first row")
	}
}

func TestCompleteKeyCrossesPartition(t *testing.T) {
	a, f := newTestApp(t)
	a.selectedID = 1

	// The store moves the task between partitions on reload.
	f.tasks[domain.ViewCurrent] = f.tasks[domain.ViewCurrent][1:]
	done := domain.Task{ID: 1, Title: "Plan trip", Status: domain.StatusCompleted, Priority: "High", DisplayOrder: 1}
	f.tasks[domain.ViewCompleted] = append([]domain.Task{done}, f.tasks[domain.ViewCompleted]...)

	a.Update(keyPress('x'))

	if a.views.Current().Model().Node(1) != nil {
		t.Fatal("completed task should leave the current view")
	}
	if a.views.Completed()[0].Task.ID != 1 {
		t.Fatal("completed task should head the completed view")
	}
	if a.toast == nil {
		t.Fatal("crossing should surface an info toast")
	}
}

func TestStatusKeyCyclesWithinCatalog(t *testing.T) {
	a, f := newTestApp(t)
	a.selectedID = 1 // Not Started

	a.Update(keyPress('s'))
	if got := a.views.Current().Model().Node(1).Task.Status; got != "In Progress" {
		t.Fatalf("status after cycle = %q, want In Progress", got)
	}
	if f.mock.UpdateTaskCallCount != 1 {
		t.Fatalf("UpdateTask calls = %d, want 1", f.mock.UpdateTaskCallCount)
	}
}

func TestPriorityKeyRefusesSubtasks(t *testing.T) {
	a, f := newTestApp(t)
	parent := int64(1)
	f.tasks[domain.ViewCurrent] = append(f.tasks[domain.ViewCurrent],
		domain.Task{ID: 5, Title: "Sub", Status: "Not Started", Priority: "High", ParentID: &parent, DisplayOrder: 1})
	if err := a.views.Reload(context.Background(), domain.ViewCurrent); err != nil {
		t.Fatal(err)
	}
	a.views.SetExpanded(1, true)
	a.selectedID = 5

	a.Update(keyPress('p'))
	if f.mock.ApplyStructureCallCount != 0 {
		t.Fatal("cycling priority on a subtask must not touch the store")
	}
	if a.toast == nil {
		t.Fatal("expected an explanatory toast")
	}
}

func TestPriorityKeyMovesTopLevelTask(t *testing.T) {
	a, _ := newTestApp(t)
	a.selectedID = 3 // Low

	a.Update(keyPress('p'))
	n := a.views.Current().Model().Node(3)
	if n.Task.Priority != "High" {
		t.Fatalf("Low wraps to High in the seeded catalog, got %q", n.Task.Priority)
	}
}

func TestFilterNarrowsVisibleRows(t *testing.T) {
	a, _ := newTestApp(t)
	a.Update(keyPress('/'))
	if a.inputMode != minibufferFilter {
		t.Fatalf("expected filter mode, got %v", a.inputMode)
	}
	a.Update(keyPress('h'))
	a.Update(keyPress('o'))
	a.Update(keyPress('t'))
	a.Update(tea.KeyMsg{Type: tea.KeyEnter})

	rows := a.visibleRows()
	if len(rows) != 1 || rows[0].Task.ID != 2 {
		t.Fatalf("filter 'hot' should keep only 'Book hotel', got %d rows", len(rows))
	}

	a.Update(tea.KeyMsg{Type: tea.KeyEscape})
	if a.filterQuery != "" {
		t.Fatal("escape must clear the filter")
	}
}

func TestNewTaskEntersAndLeavesMinibuffer(t *testing.T) {
	a, f := newTestApp(t)
	f.mock.CreateTaskFn = func(_ context.Context, task domain.Task) (int64, error) {
		if task.Title != "Call the bank" {
			t.Fatalf("created title %q", task.Title)
		}
		return 42, nil
	}
	a.Update(keyPress('n'))
	if a.inputMode != minibufferNewSibling {
		t.Fatalf("expected new-task mode, got %v", a.inputMode)
	}
	for _, r := range "Call the bank" {
		a.Update(keyPress(r))
	}
	a.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if a.inputMode != minibufferOff {
		t.Fatal("enter must close the minibuffer")
	}
	if f.mock.CreateTaskCallCount != 1 {
		t.Fatalf("CreateTask calls = %d, want 1", f.mock.CreateTaskCallCount)
	}
	if a.selectedID != 42 {
		t.Fatalf("new task should be selected, selectedID=%d", a.selectedID)
	}
}

func TestEscapeAbandonsMinibuffer(t *testing.T) {
	a, f := newTestApp(t)
	a.Update(keyPress('n'))
	a.Update(keyPress('x'))
	a.Update(tea.KeyMsg{Type: tea.KeyEscape})
	if a.inputMode != minibufferOff {
		t.Fatal("escape must close the minibuffer")
	}
	if f.mock.CreateTaskCallCount != 0 {
		t.Fatal("abandoned input must not create a task")
	}
}

func TestDropOnHeaderCascadesPriority(t *testing.T) {
	a, f := newTestApp(t)
	a.handleDrop(dropAction{Kind: dropOnHeader, SourceID: 1, Priority: "Low"})

	n := a.views.Current().Model().Node(1)
	if n.Task.Priority != "Low" || n.Task.ParentID != nil {
		t.Fatalf("expected task 1 top-level in Low, got %+v", n.Task)
	}
	if f.mock.ApplyStructureCallCount != 1 {
		t.Fatalf("ApplyStructure calls = %d, want 1", f.mock.ApplyStructureCallCount)
	}
}

func TestDropOnSameHeaderIsNoop(t *testing.T) {
	a, f := newTestApp(t)
	a.handleDrop(dropAction{Kind: dropOnHeader, SourceID: 1, Priority: "High"})
	if f.mock.ApplyStructureCallCount != 0 {
		t.Fatal("dropping onto the task's own section must not write")
	}
}

func TestDropIntoNodeReparents(t *testing.T) {
	a, _ := newTestApp(t)
	a.handleDrop(dropAction{Kind: dropOnNode, SourceID: 3, TargetID: 1, Zone: zoneInto})

	n := a.views.Current().Model().Node(3)
	if n.Task.ParentID == nil || *n.Task.ParentID != 1 {
		t.Fatalf("expected task 3 under task 1, got %+v", n.Task)
	}
	if n.Task.Priority != "High" {
		t.Fatalf("child must inherit the parent's priority, got %q", n.Task.Priority)
	}
	if !a.views.Current().Model().Node(1).Expanded {
		t.Fatal("drop target should expand to show the new child")
	}
}

func TestDropAboveReordersSiblings(t *testing.T) {
	a, _ := newTestApp(t)
	// Task 2 sits below task 1 in High; drop 2 above 1.
	a.handleDrop(dropAction{Kind: dropOnNode, SourceID: 2, TargetID: 1, Zone: zoneAbove})

	model := a.views.Current().Model()
	roots := model.Roots("High")
	if roots[0].Task.ID != 2 || roots[1].Task.ID != 1 {
		t.Fatalf("expected order [2 1], got [%d %d]", roots[0].Task.ID, roots[1].Task.ID)
	}
	if roots[0].Task.DisplayOrder != 1 || roots[1].Task.DisplayOrder != 2 {
		t.Fatal("display order must stay contiguous after the reorder")
	}
}

func TestCycleDropSurfacesInfoToast(t *testing.T) {
	a, f := newTestApp(t)
	parent := int64(1)
	f.tasks[domain.ViewCurrent] = append(f.tasks[domain.ViewCurrent],
		domain.Task{ID: 5, Title: "Sub", Status: "Not Started", Priority: "High", ParentID: &parent, DisplayOrder: 1})
	if err := a.views.Reload(context.Background(), domain.ViewCurrent); err != nil {
		t.Fatal(err)
	}
	calls := f.mock.ApplyStructureCallCount

	a.handleDrop(dropAction{Kind: dropOnNode, SourceID: 1, TargetID: 5, Zone: zoneInto})
	if f.mock.ApplyStructureCallCount != calls {
		t.Fatal("a cycle-producing drop must not reach the store")
	}
	if a.toast == nil || a.toast.isError {
		t.Fatal("cycle rejection should be an info toast")
	}
}

func TestPanelClickOpensAttachments(t *testing.T) {
	a, _ := newTestApp(t)
	n := a.views.Current().Model().Node(1)
	n.Task.Links = []domain.Link{{ID: 1, URL: "https://example.com"}}

	a.hitmap.Reset()
	a.hitmap.Add(HitRect{Kind: hitRow, TaskID: 1, X: 0, Y: 1, W: 80, H: 3})
	a.hitmap.Add(HitRect{Kind: hitPanel, TaskID: 1, Panel: "links", X: 70, Y: 2, W: 7, H: 1})
	a.hitmap.Add(HitRect{Kind: hitRow, TaskID: 2, X: 0, Y: 4, W: 80, H: 3})
	a.hitmap.Add(HitRect{Kind: hitPanel, TaskID: 2, Panel: "files", X: 70, Y: 5, W: 7, H: 1})

	_, cmd := a.handleClick(mouse(tea.MouseActionRelease, tea.MouseButtonLeft, 72, 2))
	if a.selectedID != 1 {
		t.Fatalf("panel click must select the row, selected=%d", a.selectedID)
	}
	if cmd == nil {
		t.Fatal("clicking a links cell with links must return an open command")
	}

	// An empty attachment cell still selects but opens nothing.
	_, cmd = a.handleClick(mouse(tea.MouseActionRelease, tea.MouseButtonLeft, 72, 5))
	if a.selectedID != 2 {
		t.Fatalf("empty files cell must still select, selected=%d", a.selectedID)
	}
	if cmd != nil {
		t.Fatal("clicking a files cell without files must not open anything")
	}
}

func TestCompactPanelHoverShowsTooltip(t *testing.T) {
	a, _ := newTestApp(t)
	a.views.Current().Model().Node(1).Task.IsCompact = true

	a.hitmap.Reset()
	a.hitmap.Add(HitRect{Kind: hitRow, TaskID: 1, X: 0, Y: 2, W: 80, H: 3})
	a.hitmap.Add(HitRect{Kind: hitPanel, TaskID: 1, Panel: "due", X: 60, Y: 3, W: 5, H: 1})
	a.hitmap.Add(HitRect{Kind: hitRow, TaskID: 2, X: 0, Y: 5, W: 80, H: 3})
	a.hitmap.Add(HitRect{Kind: hitPanel, TaskID: 2, Panel: "due", X: 60, Y: 6, W: 5, H: 1})

	a.handleMouse(mouse(tea.MouseActionMotion, tea.MouseButtonNone, 62, 3))
	if a.hoverPanel == nil || a.hoverPanel.Panel != "due" || a.hoverPanel.TaskID != 1 {
		t.Fatalf("expected hover on the due cell of task 1, got %+v", a.hoverPanel)
	}
	tip, _, _, ok := a.panelTooltip()
	if !ok || !strings.Contains(ansi.Strip(tip), "Due") {
		t.Fatalf("tooltip = %q ok=%v, want the due text", tip, ok)
	}

	// Expanded rows show their panel values already.
	a.handleMouse(mouse(tea.MouseActionMotion, tea.MouseButtonNone, 62, 6))
	if a.hoverPanel != nil {
		t.Fatalf("expanded row must not grow a tooltip, got %+v", a.hoverPanel)
	}

	a.handleMouse(mouse(tea.MouseActionMotion, tea.MouseButtonNone, 62, 3))
	a.handleMouse(mouse(tea.MouseActionMotion, tea.MouseButtonNone, 0, 20))
	if a.hoverPanel != nil {
		t.Fatal("leaving the cell must clear the tooltip")
	}
}

func TestViewRenders(t *testing.T) {
	a, _ := newTestApp(t)
	out := a.View()
	if out == "" {
		t.Fatal("expected rendered output")
	}
	if a.hitmap.Len() == 0 {
		t.Fatal("render must register hit rects")
	}
}

func TestViewStateRoundTripsThroughPersister(t *testing.T) {
	a, _ := newTestApp(t)
	saved := make(chan *store.ViewState, 1)
	a.persist = viewStatePersisterFunc{
		load: func() (*store.ViewState, error) {
			return &store.ViewState{Version: 1, ActiveView: "backlog", SelectedTaskID: 10}, nil
		},
		save: func(st *store.ViewState) error {
			saved <- st
			return nil
		},
	}

	a.restoreViewState()
	if a.views.Active() != domain.ViewBacklog || a.selectedID != 10 {
		t.Fatalf("restore applied view=%v selected=%d", a.views.Active(), a.selectedID)
	}

	a.saveViewState()
	st := <-saved
	if st.ActiveView != "backlog" || st.SelectedTaskID != 10 {
		t.Fatalf("saved state %+v", st)
	}
}

type viewStatePersisterFunc struct {
	load func() (*store.ViewState, error)
	save func(*store.ViewState) error
}

func (p viewStatePersisterFunc) LoadViewState() (*store.ViewState, error) { return p.load() }
func (p viewStatePersisterFunc) SaveViewState(st *store.ViewState) error { return p.save(st) }
