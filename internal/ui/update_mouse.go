package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"taskdeck/internal/domain"
	"taskdeck/internal/tree"
)

func (m *App) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.showHelp || m.showDetail || m.inputMode != minibufferOff {
		return m, nil
	}

	// The tab bar and footer have no hit rects; stale rects from scrolled
	// rows must not swallow presses there.
	if msg.Action == tea.MouseActionPress && (msg.Y < tabBarHeight || msg.Y >= m.height-1) {
		return m, nil
	}

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		return m.scrollBy(-3)
	case tea.MouseButtonWheelDown:
		return m.scrollBy(3)
	}

	switch msg.Action {
	case tea.MouseActionPress:
		// Dragging only rearranges the hierarchy, so only the current
		// view arms a drag.
		if m.views.Active() == domain.ViewCurrent {
			m.drag.press(msg, &m.hitmap)
		}
		return m, nil

	case tea.MouseActionMotion:
		m.drag.motion(msg)
		m.hoverToggleID = 0
		m.hoverPanel = nil
		if hit, ok := m.hitmap.At(msg.X, msg.Y); ok {
			switch hit.Kind {
			case hitToggle:
				m.hoverToggleID = hit.TaskID
			case hitPanel:
				// Expanded rows show panel values in full; only compact
				// cells need the tooltip.
				if n, _ := m.views.Find(hit.TaskID); n != nil && n.Task.IsCompact {
					m.hoverPanel = &hit
				}
			}
		}
		return m, nil

	case tea.MouseActionRelease:
		action := m.drag.release(msg, &m.hitmap)
		if action.Kind == dropNone {
			return m.handleClick(msg)
		}
		return m.handleDrop(action)
	}
	return m, nil
}

// handleClick resolves a press-release that never became a drag.
func (m *App) handleClick(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	hit, ok := m.hitmap.At(msg.X, msg.Y)
	if !ok {
		return m, nil
	}
	switch hit.Kind {
	case hitToggle:
		m.selectedID = hit.TaskID
		return m.toggleCompactSelected(context.Background())

	case hitExpand:
		if n, _ := m.views.Find(hit.TaskID); n != nil && n.HasChildren() {
			m.views.SetExpanded(n.Task.ID, !n.Expanded)
		}
		m.selectedID = hit.TaskID
		return m, nil

	case hitHeader:
		m.collapsedSections[hit.Priority] = !m.collapsedSections[hit.Priority]
		return m, nil

	case hitPanel:
		m.selectedID = hit.TaskID
		n, _ := m.views.Find(hit.TaskID)
		if n == nil {
			return m, nil
		}
		switch hit.Panel {
		case "links":
			if len(n.Task.Links) > 0 {
				return m, openLinksCmd(n.Task.Links)
			}
		case "files":
			if len(n.Task.Files) > 0 {
				return m, openFileLocationsCmd(n.Task.Files)
			}
		}
		return m, nil

	case hitRow:
		if row, ok := m.hitmap.RowAt(msg.X, msg.Y); ok {
			m.selectedID = row.TaskID
		}
		return m, nil
	}
	return m, nil
}

func (m *App) handleDrop(action dropAction) (tea.Model, tea.Cmd) {
	if m.views.Active() != domain.ViewCurrent {
		return m, nil
	}
	ctx := context.Background()
	ctrl := m.views.Current()

	switch action.Kind {
	case dropOnHeader:
		src := ctrl.Model().Node(action.SourceID)
		if src == nil {
			return m, nil
		}
		if src.Parent == nil && src.Task.Priority == action.Priority {
			return m, nil
		}
		if err := ctrl.Move(ctx, action.SourceID, nil, action.Priority, 0); err != nil {
			return m, m.surfaceError(err)
		}
		return m, nil

	case dropOnNode:
		target := ctrl.Model().Node(action.TargetID)
		if target == nil {
			return m, nil
		}
		if action.Zone == zoneInto {
			if err := ctrl.Move(ctx, action.SourceID, &action.TargetID, "", 0); err != nil {
				return m, m.surfaceError(err)
			}
			m.views.SetExpanded(action.TargetID, true)
			return m, nil
		}
		parent := target.Task.ParentID
		pos := dropPosition(ctrl.Model(), action.SourceID, target, action.Zone)
		if err := ctrl.Move(ctx, action.SourceID, parent, target.Task.Priority, pos); err != nil {
			return m, m.surfaceError(err)
		}
		return m, nil
	}
	// dropOnEmpty and dropCancelled leave everything in place.
	return m, nil
}

// dropPosition converts an above/below drop next to target into a 1-based
// slot in the destination sibling group, counted with the moved task
// already taken out of the group.
func dropPosition(model *tree.Model, sourceID int64, target *tree.Node, zone dropZone) int {
	var siblings []*tree.Node
	if target.Parent != nil {
		siblings = target.Parent.Children
	} else {
		siblings = model.Roots(target.Task.Priority)
	}
	pos := 1
	for _, sib := range siblings {
		if sib.Task.ID == sourceID {
			continue
		}
		if sib.Task.ID == target.Task.ID {
			if zone == zoneBelow {
				pos++
			}
			return pos
		}
		pos++
	}
	return 0
}
