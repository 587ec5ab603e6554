package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"taskdeck/internal/domain"
	"taskdeck/internal/tree"
)

func (m *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Overlay and input modes capture keys before the main keymap.
	if m.inputMode != minibufferOff {
		return m.handleMinibufferKey(msg)
	}
	if m.showHelp || m.showDetail {
		switch {
		case key.Matches(msg, m.keys.Escape), key.Matches(msg, m.keys.Enter),
			key.Matches(msg, m.keys.Help), key.Matches(msg, m.keys.Quit):
			m.showHelp = false
			m.showDetail = false
			return m, nil
		}
		return m, nil
	}

	ctx := context.Background()
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.saveViewState()
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Escape):
		if m.toast != nil {
			m.toast = nil
			return m, nil
		}
		if m.filterQuery != "" {
			m.filterQuery = ""
			return m, nil
		}
		m.drag.cancel()
		return m, nil

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.Tab):
		return m.switchView(1)
	case key.Matches(msg, m.keys.ShiftTab):
		return m.switchView(-1)

	case key.Matches(msg, m.keys.Up):
		return m.moveSelection(-1)
	case key.Matches(msg, m.keys.Down):
		return m.moveSelection(1)
	case key.Matches(msg, m.keys.Home):
		return m.selectEdge(true)
	case key.Matches(msg, m.keys.End):
		return m.selectEdge(false)
	case key.Matches(msg, m.keys.PageUp):
		return m.scrollBy(-m.viewportHeight())
	case key.Matches(msg, m.keys.PageDown):
		return m.scrollBy(m.viewportHeight())

	case key.Matches(msg, m.keys.Left):
		return m.setSubtree(false)
	case key.Matches(msg, m.keys.Right):
		return m.setSubtree(true)
	case key.Matches(msg, m.keys.Space):
		n := m.selectedNode()
		if n == nil || !n.HasChildren() {
			return m, nil
		}
		m.views.SetExpanded(n.Task.ID, !n.Expanded)
		return m, nil

	case key.Matches(msg, m.keys.Enter):
		if m.selectedNode() != nil {
			m.showDetail = true
		}
		return m, nil

	case key.Matches(msg, m.keys.Search):
		m.inputMode = minibufferFilter
		m.minibuffer.Prompt = "/"
		m.minibuffer.SetValue(m.filterQuery)
		m.minibuffer.Focus()
		return m, nil

	case key.Matches(msg, m.keys.NewSibling):
		return m.startMinibuffer(minibufferNewSibling, "New task: ")
	case key.Matches(msg, m.keys.NewChild):
		if m.views.Active() != domain.ViewCurrent {
			return m, m.setToast(infoToast("Subtasks live in the current view."))
		}
		if m.selectedNode() == nil {
			return m, nil
		}
		return m.startMinibuffer(minibufferNewChild, "New subtask: ")

	case key.Matches(msg, m.keys.Delete):
		return m.deleteSelected(ctx)

	case key.Matches(msg, m.keys.Complete):
		n := m.selectedNode()
		if n == nil {
			return m, nil
		}
		return m.changeStatus(ctx, n.Task.ID, domain.StatusCompleted)

	case key.Matches(msg, m.keys.Status):
		n := m.selectedNode()
		if n == nil {
			return m, nil
		}
		return m.changeStatus(ctx, n.Task.ID, m.nextStatus(n.Task.Status))

	case key.Matches(msg, m.keys.Priority):
		return m.cyclePriority(ctx)

	case key.Matches(msg, m.keys.Compact):
		return m.toggleCompactSelected(ctx)

	case key.Matches(msg, m.keys.ToggleAll):
		return m.toggleAllCompact(ctx)

	case key.Matches(msg, m.keys.ExpandAll):
		for _, n := range m.allCurrentNodes() {
			if n.HasChildren() {
				m.views.SetExpanded(n.Task.ID, true)
			}
		}
		return m, nil
	case key.Matches(msg, m.keys.CollapseAll):
		for _, n := range m.allCurrentNodes() {
			if n.HasChildren() {
				m.views.SetExpanded(n.Task.ID, false)
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.OpenLinks):
		n := m.selectedNode()
		if n == nil || len(n.Task.Links) == 0 {
			return m, m.setToast(infoToast("No links on this task."))
		}
		return m, openLinksCmd(n.Task.Links)
	case key.Matches(msg, m.keys.OpenFiles):
		n := m.selectedNode()
		if n == nil || len(n.Task.Files) == 0 {
			return m, m.setToast(infoToast("No files on this task."))
		}
		return m, openFileLocationsCmd(n.Task.Files)

	case key.Matches(msg, m.keys.Yank):
		n := m.selectedNode()
		if n == nil {
			return m, nil
		}
		return m, yankCmd(n.Task.Title)

	case key.Matches(msg, m.keys.Refresh):
		return m, m.reloadCmd()
	}
	return m, nil
}

func (m *App) handleMinibufferKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		if m.inputMode == minibufferFilter {
			m.filterQuery = ""
		}
		m.closeMinibuffer()
		return m, nil

	case key.Matches(msg, m.keys.Enter):
		mode := m.inputMode
		text := strings.TrimSpace(m.minibuffer.Value())
		m.closeMinibuffer()
		switch mode {
		case minibufferFilter:
			m.filterQuery = text
			return m, nil
		case minibufferNewSibling, minibufferNewChild:
			if text == "" {
				return m, nil
			}
			return m.createTask(context.Background(), mode, text)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.minibuffer, cmd = m.minibuffer.Update(msg)
	if m.inputMode == minibufferFilter {
		// Incremental: the filter tracks every keystroke.
		m.filterQuery = m.minibuffer.Value()
	}
	return m, cmd
}

func (m *App) startMinibuffer(mode minibufferMode, prompt string) (tea.Model, tea.Cmd) {
	m.inputMode = mode
	m.minibuffer.Prompt = prompt
	m.minibuffer.SetValue("")
	m.minibuffer.Focus()
	return m, textinput.Blink
}

func (m *App) closeMinibuffer() {
	m.inputMode = minibufferOff
	m.minibuffer.Blur()
	m.minibuffer.SetValue("")
}

func (m *App) switchView(delta int) (tea.Model, tea.Cmd) {
	views := domain.AllViews
	cur := 0
	for i, v := range views {
		if v == m.views.Active() {
			cur = i
		}
	}
	next := (cur + delta + len(views)) % len(views)
	m.views.SetActive(views[next])
	m.filterQuery = ""
	return m, nil
}

func (m *App) moveSelection(delta int) (tea.Model, tea.Cmd) {
	rows := m.visibleRows()
	if len(rows) == 0 {
		return m, nil
	}
	idx := 0
	for i, n := range rows {
		if n.Task.ID == m.selectedID {
			idx = i
			break
		}
	}
	idx += delta
	if idx < 0 {
		idx = 0
	}
	if idx >= len(rows) {
		idx = len(rows) - 1
	}
	m.selectedID = rows[idx].Task.ID
	m.ensureSelectedVisible()
	return m, nil
}

func (m *App) selectEdge(top bool) (tea.Model, tea.Cmd) {
	rows := m.visibleRows()
	if len(rows) == 0 {
		return m, nil
	}
	if top {
		m.selectedID = rows[0].Task.ID
	} else {
		m.selectedID = rows[len(rows)-1].Task.ID
	}
	m.ensureSelectedVisible()
	return m, nil
}

func (m *App) scrollBy(delta int) (tea.Model, tea.Cmd) {
	v := m.views.Active()
	m.scroll[v] += delta
	if m.scroll[v] < 0 {
		m.scroll[v] = 0
	}
	if max := m.contentHeight() - m.viewportHeight(); m.scroll[v] > max {
		if max < 0 {
			max = 0
		}
		m.scroll[v] = max
	}
	return m, nil
}

func (m *App) setSubtree(expanded bool) (tea.Model, tea.Cmd) {
	n := m.selectedNode()
	if n == nil || !n.HasChildren() {
		return m, nil
	}
	m.views.SetExpanded(n.Task.ID, expanded)
	return m, nil
}

func (m *App) changeStatus(ctx context.Context, id int64, newStatus string) (tea.Model, tea.Cmd) {
	crossed, err := m.views.ChangeStatus(ctx, id, newStatus, m.now())
	if err != nil {
		return m, m.surfaceError(err)
	}
	if crossed {
		return m, m.setToast(infoToast(fmt.Sprintf("Moved to %s.", domain.ViewForStatus(newStatus).Title())))
	}
	return m, nil
}

// cyclePriority moves a top-level current-view task to the next priority
// section. Child tasks inherit priority from their parent and cannot be
// cycled directly.
func (m *App) cyclePriority(ctx context.Context) (tea.Model, tea.Cmd) {
	if m.views.Active() != domain.ViewCurrent {
		return m, m.setToast(infoToast("Priorities apply in the current view."))
	}
	n := m.selectedNode()
	if n == nil {
		return m, nil
	}
	if n.Parent != nil {
		return m, m.setToast(infoToast("Subtasks follow their parent's priority."))
	}
	next := m.nextPriority(n.Task.Priority)
	if err := m.views.Current().Move(ctx, n.Task.ID, nil, next, 0); err != nil {
		return m, m.surfaceError(err)
	}
	return m, nil
}

func (m *App) createTask(ctx context.Context, mode minibufferMode, title string) (tea.Model, tea.Cmd) {
	t := domain.Task{Title: title, Status: m.defaultStatus(), Priority: m.defaultPriority()}
	sel := m.selectedNode()

	switch m.views.Active() {
	case domain.ViewBacklog:
		t.Status = domain.StatusBacklog
	case domain.ViewCompleted:
		return m, m.setToast(infoToast("Completed tasks are created by completing them."))
	}

	if sel != nil && m.views.Active() == domain.ViewCurrent {
		if mode == minibufferNewChild {
			id := sel.Task.ID
			t.ParentID = &id
		} else {
			t.ParentID = sel.Task.ParentID
			t.Priority = sel.Task.Priority
		}
	}

	if m.views.Active() == domain.ViewCurrent {
		id, err := m.views.Current().Create(ctx, t)
		if err != nil {
			return m, m.surfaceError(err)
		}
		if mode == minibufferNewChild && sel != nil {
			m.views.SetExpanded(sel.Task.ID, true)
		}
		m.selectedID = id
		return m, nil
	}

	id, err := m.st.CreateTask(ctx, t)
	if err != nil {
		return m, m.surfaceError(err)
	}
	if err := m.views.Reload(ctx, m.views.Active()); err != nil {
		return m, m.surfaceError(err)
	}
	m.selectedID = id
	return m, nil
}

func (m *App) deleteSelected(ctx context.Context) (tea.Model, tea.Cmd) {
	n := m.selectedNode()
	if n == nil {
		return m, nil
	}
	if m.views.Active() == domain.ViewCurrent {
		deleted, err := m.views.Current().Delete(ctx, n.Task.ID)
		if err != nil {
			return m, m.surfaceError(err)
		}
		msg := "Deleted 1 task."
		if len(deleted) > 1 {
			msg = fmt.Sprintf("Deleted %d tasks (1 task, %d subtasks).", len(deleted), len(deleted)-1)
		}
		return m, m.setToast(infoToast(msg))
	}

	deleted, err := m.st.DeleteTaskCascade(ctx, n.Task.ID)
	if err != nil {
		return m, m.surfaceError(err)
	}
	if err := m.views.Reload(ctx, m.views.Active()); err != nil {
		return m, m.surfaceError(err)
	}
	return m, m.setToast(infoToast(fmt.Sprintf("Deleted %d task(s).", len(deleted))))
}

func (m *App) toggleCompactSelected(ctx context.Context) (tea.Model, tea.Cmd) {
	n := m.selectedNode()
	if n == nil {
		return m, nil
	}
	if m.views.Active() == domain.ViewCurrent {
		if err := m.views.Current().ToggleCompact(ctx, n.Task.ID); err != nil {
			return m, m.surfaceError(err)
		}
		return m, nil
	}
	compact := !n.Task.IsCompact
	if err := m.st.SetCompact(ctx, n.Task.ID, compact); err != nil {
		return m, m.surfaceError(err)
	}
	n.Task.IsCompact = compact
	return m, nil
}

// toggleAllCompact compacts every row if any is expanded, expands all
// otherwise.
func (m *App) toggleAllCompact(ctx context.Context) (tea.Model, tea.Cmd) {
	var nodes []*tree.Node
	switch m.views.Active() {
	case domain.ViewBacklog:
		nodes = m.views.Backlog()
	case domain.ViewCompleted:
		nodes = m.views.Completed()
	default:
		nodes = m.allCurrentNodes()
	}
	if len(nodes) == 0 {
		return m, nil
	}
	compact := false
	for _, n := range nodes {
		if !n.Task.IsCompact {
			compact = true
			break
		}
	}
	for _, n := range nodes {
		if n.Task.IsCompact == compact {
			continue
		}
		if err := m.st.SetCompact(ctx, n.Task.ID, compact); err != nil {
			return m, m.surfaceError(err)
		}
		n.Task.IsCompact = compact
	}
	return m, nil
}
