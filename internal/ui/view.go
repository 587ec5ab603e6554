package ui

import (
	"github.com/charmbracelet/lipgloss"

	"taskdeck/internal/domain"
	"taskdeck/internal/tree"
)

const tabBarHeight = 1

// renderItem is one vertical slot in the scrollable content area: either a
// priority section header or a task pill.
type renderItem struct {
	header   bool
	priority string
	count    int
	node     *tree.Node
	offset   int
	height   int
}

// layoutItems flattens the active view into positioned render items.
func (m *App) layoutItems() []renderItem {
	var items []renderItem
	y := 0
	add := func(it renderItem) {
		it.offset = y
		y += it.height
		items = append(items, it)
	}

	if m.views.Active() == domain.ViewCurrent {
		model := m.views.Current().Model()
		matched := matchTasks(m.allCurrentNodes(), m.filterQuery)
		for _, p := range m.priorities {
			roots := model.Roots(p.Name)
			count := 0
			for _, root := range roots {
				root.Walk(func(*tree.Node) { count++ })
			}
			add(renderItem{header: true, priority: p.Name, count: count, height: HeaderHeight})
			if m.collapsedSections[p.Name] {
				continue
			}
			var walk func(n *tree.Node)
			walk = func(n *tree.Node) {
				if !filterVisible(matched, n) {
					return
				}
				add(renderItem{node: n, height: m.delegate.Measure(n)})
				if !n.Expanded {
					return
				}
				for _, c := range n.Children {
					walk(c)
				}
			}
			for _, root := range roots {
				walk(root)
			}
		}
		return items
	}

	for _, n := range m.visibleRows() {
		add(renderItem{node: n, height: m.delegate.Measure(n)})
	}
	return items
}

func (m *App) viewportHeight() int {
	h := m.height - tabBarHeight - 1
	if h < 1 {
		h = 1
	}
	return h
}

func (m *App) contentHeight() int {
	items := m.layoutItems()
	if len(items) == 0 {
		return 0
	}
	last := items[len(items)-1]
	return last.offset + last.height
}

// ensureSelectedVisible scrolls the active view so the selected pill is
// fully inside the viewport.
func (m *App) ensureSelectedVisible() {
	v := m.views.Active()
	for _, it := range m.layoutItems() {
		if it.node == nil || it.node.Task.ID != m.selectedID {
			continue
		}
		if it.offset < m.scroll[v] {
			m.scroll[v] = it.offset
		} else if bottom := it.offset + it.height; bottom > m.scroll[v]+m.viewportHeight() {
			m.scroll[v] = bottom - m.viewportHeight()
		}
		return
	}
}

func (m *App) View() string {
	if m.quitting || m.width == 0 || m.height == 0 {
		return ""
	}

	// Resolve the drop hover against last frame's hit rects before the
	// rebuild below throws them away.
	var dropRowID int64
	var dropRowZone dropZone
	var dropHeader string
	if hx, hy, ok := m.drag.hover(); ok {
		if hit, ok := m.hitmap.At(hx, hy); ok && hit.Kind == hitHeader {
			dropHeader = hit.Priority
		} else if row, ok := m.hitmap.RowAt(hx, hy); ok {
			if _, dragging := m.drag.source(); dragging && row.TaskID != m.drag.sourceID {
				dropRowID = row.TaskID
				dropRowZone = row.Zone(hy)
			}
		}
	}
	m.hitmap.Reset()

	canvas := NewCanvas(m.width, m.height)
	canvas.Fill(cBase)

	items := m.layoutItems()
	scroll := m.scroll[m.views.Active()]
	footerY := m.height - 1

	if len(items) == 0 {
		canvas.DrawStringAt(2, tabBarHeight+1, styleFooterHint.Render(m.emptyMessage()))
	}
	for _, it := range items {
		y := tabBarHeight + it.offset - scroll
		if y+it.height <= tabBarHeight || y >= footerY {
			continue
		}
		if it.header {
			m.renderSectionHeader(canvas, y, it, dropHeader == it.priority)
			continue
		}
		st := rowState{
			Selected:    it.node.Task.ID == m.selectedID && !m.drag.active(),
			HoverToggle: it.node.Task.ID == m.hoverToggleID,
		}
		if src, ok := m.drag.source(); ok && src == it.node.Task.ID {
			st.Dragging = true
		}
		if it.node.Task.ID == dropRowID {
			st.DropZone = dropRowZone
		}
		m.delegate.RenderRow(canvas, &m.hitmap, y, it.node, st)
	}

	canvas.DrawStringAt(0, 0, m.renderTabBar())
	if m.inputMode != minibufferOff {
		canvas.DrawStringAt(0, footerY, padLineToWidth(m.minibuffer.View(), m.width))
	} else {
		canvas.DrawStringAt(0, footerY, m.renderFooter())
	}

	if tip, tx, ty, ok := m.panelTooltip(); ok {
		canvas.DrawStringAt(tx, ty, tip)
	}

	if m.showHelp {
		canvas.CenterOverlay(m.renderHelp(), tabBarHeight, 1)
	} else if m.showDetail {
		if n := m.selectedNode(); n != nil {
			canvas.CenterOverlay(m.renderDetail(n), tabBarHeight, 1)
		}
	}
	if m.toast != nil {
		canvas.BottomRightOverlay(m.toast.render(m.now()), 1)
	}
	return canvas.Render()
}

// panelTooltip expands the hovered compact panel cell into its full text,
// placed just above the cell (or below when the row touches the tab bar).
func (m *App) panelTooltip() (string, int, int, bool) {
	if m.hoverPanel == nil || m.drag.active() {
		return "", 0, 0, false
	}
	n, _ := m.views.Find(m.hoverPanel.TaskID)
	if n == nil || !n.Task.IsCompact {
		return "", 0, 0, false
	}
	text, ok := m.delegate.panelText(n, m.hoverPanel.Panel)
	if !ok {
		return "", 0, 0, false
	}
	tip := stylePanelTooltip.Render(text)
	x := m.hoverPanel.X
	if limit := m.width - lipgloss.Width(tip); x > limit {
		x = limit
	}
	if x < 0 {
		x = 0
	}
	y := m.hoverPanel.Y - 1
	if y <= tabBarHeight {
		y = m.hoverPanel.Y + 1
	}
	return tip, x, y, true
}

// renderSectionHeader draws a priority header, highlighted while a drag
// hovers over it.
func (m *App) renderSectionHeader(c *Canvas, y int, it renderItem, dropTarget bool) {
	if dropTarget {
		c.DrawStringAt(0, y, styleDropTarget.Render(padLineToWidth(" "+it.priority, m.width)))
		m.hitmap.Add(HitRect{Kind: hitHeader, Priority: it.priority, X: 0, Y: y, W: m.width, H: HeaderHeight})
		return
	}
	m.delegate.RenderHeader(c, &m.hitmap, y, it.priority, it.count, !m.collapsedSections[it.priority])
}

func (m *App) renderTabBar() string {
	var cells string
	for _, v := range domain.AllViews {
		style := styleTabInactive
		if v == m.views.Active() {
			style = styleTabActive
		}
		cells += style.Render(" " + v.Title() + " ")
	}
	if m.filterQuery != "" {
		cells += styleFilterPrompt.Render(" /" + m.filterQuery)
	}
	return padLineToWidth(cells, m.width)
}

func (m *App) emptyMessage() string {
	if m.filterQuery != "" {
		return "No tasks match the filter."
	}
	switch m.views.Active() {
	case domain.ViewBacklog:
		return "Backlog is empty. Press n to add a task."
	case domain.ViewCompleted:
		return "Nothing completed yet."
	}
	return "No tasks. Press n to create one."
}
