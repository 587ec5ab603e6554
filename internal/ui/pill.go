package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"taskdeck/internal/tree"
)

const (
	// panelWidth is the column reserved for one accessory panel.
	panelWidth = 16

	// indentStep is the horizontal shift per hierarchy level.
	indentStep = 2

	toggleCompact  = "[+]"
	toggleExpanded = "[-]"
	toggleWidth    = 3

	expandClosed = "▸ "
	expandOpen   = "▾ "

	compactRowHeight = 3
)

// rowState carries the per-row presentation flags the app layer knows about.
type rowState struct {
	Selected    bool
	Dragging    bool // row is the drag source
	DropZone    dropZone
	HoverToggle bool
}

// PillDelegate measures and renders task rows as bordered pills on a Canvas,
// registering hit rectangles for every interactive region as it draws.
type PillDelegate struct {
	Width        int
	MaxDescLines int

	// LeftPanels and RightPanels name up to two accessory items each,
	// drawn from the panel vocabulary (unknown names are skipped).
	LeftPanels  []string
	RightPanels []string

	// Catalog colors by name. A missing entry falls back to the neutral
	// placeholder.
	PriorityColors map[string]string
	StatusColors   map[string]string
	CategoryColors map[string]string
}

// sectionColor returns the color of a priority section.
func (d *PillDelegate) sectionColor(priority string) string {
	return d.PriorityColors[priority]
}

// Measure returns the height in lines the row will occupy.
func (d *PillDelegate) Measure(n *tree.Node) int {
	if n.Task.IsCompact {
		return compactRowHeight
	}
	left, right := d.panelCells(n)
	_, center := d.centerLines(n, d.contentWidth(n, len(left) > 0, len(right) > 0))
	h := len(center)
	if lh := stackHeight(left); lh > h {
		h = lh
	}
	if rh := stackHeight(right); rh > h {
		h = rh
	}
	if h < 1 {
		h = 1
	}
	return h + 2
}

// HeaderHeight is the fixed height of a priority section header row.
const HeaderHeight = 1

// RenderHeader draws one priority section header and registers its hit rect.
// Returns the height drawn.
func (d *PillDelegate) RenderHeader(c *Canvas, hm *HitMap, y int, priority string, count int, expanded bool) int {
	indicator := expandOpen
	if !expanded {
		indicator = expandClosed
	}
	label := styleSectionHeader.
		Background(catalogColor(d.sectionColor(priority))).
		Render(indicator + priority)
	counter := styleSectionCount.Render(fmt.Sprintf(" (%d)", count))
	c.DrawStringAt(0, y, padLineToWidth(label+counter, d.Width))
	hm.Add(HitRect{Kind: hitHeader, Priority: priority, X: 0, Y: y, W: d.Width, H: HeaderHeight})
	return HeaderHeight
}

// RenderRow draws one task pill at y and registers its hit rects. Returns
// the height drawn, which always matches Measure for the same node.
func (d *PillDelegate) RenderRow(c *Canvas, hm *HitMap, y int, n *tree.Node, st rowState) int {
	indent := n.Depth * indentStep
	rowWidth := d.Width - indent
	if rowWidth < toggleWidth+4 {
		rowWidth = toggleWidth + 4
	}
	height := d.Measure(n)

	border := pillBorderStyle(d.sectionColor(n.Task.Priority), st.Selected, st.DropZone == zoneInto)
	if st.Dragging {
		border = styleDragSource
	}

	// Top border with the compact/expand hotspot centered on it.
	top := "╭" + strings.Repeat("─", rowWidth-2) + "╮"
	if st.DropZone == zoneAbove {
		c.DrawStringAt(indent, y, styleDropIndicator.Render(strings.Repeat("▔", rowWidth)))
	} else {
		c.DrawStringAt(indent, y, border.Render(top))
	}
	toggle := toggleExpanded
	if n.Task.IsCompact {
		toggle = toggleCompact
	}
	toggleX := indent + (rowWidth-toggleWidth)/2
	toggleStyle := styleToggleHotspot
	if st.HoverToggle {
		toggleStyle = styleToggleHover
	}
	c.DrawStringAt(toggleX, y, toggleStyle.Render(toggle))

	// Content lines between the borders.
	innerW := rowWidth - 4
	var lines []string
	if n.Task.IsCompact {
		lines = []string{d.compactLine(n, innerW)}
	} else {
		lines = d.expandedLines(n, innerW, height-2)
	}
	for i, line := range lines {
		row := y + 1 + i
		c.DrawStringAt(indent, row, border.Render("│"))
		c.DrawStringAt(indent+2, row, padLineToWidth(line, innerW))
		c.DrawStringAt(indent+rowWidth-1, row, border.Render("│"))
	}

	// Bottom border.
	bottomY := y + height - 1
	if st.DropZone == zoneBelow {
		c.DrawStringAt(indent, bottomY, styleDropIndicator.Render(strings.Repeat("▁", rowWidth)))
	} else {
		c.DrawStringAt(indent, bottomY, border.Render("╰"+strings.Repeat("─", rowWidth-2)+"╯"))
	}

	hm.Add(HitRect{
		Kind: hitRow, TaskID: n.Task.ID, Priority: n.Task.Priority,
		X: indent, Y: y, W: rowWidth, H: height,
	})
	hm.Add(HitRect{Kind: hitToggle, TaskID: n.Task.ID, X: toggleX, Y: y, W: toggleWidth, H: 1})
	if n.HasChildren() {
		hm.Add(HitRect{Kind: hitExpand, TaskID: n.Task.ID, X: indent + 2, Y: y + 1, W: 2, H: 1})
	}
	d.addPanelRects(hm, n, indent, y, rowWidth, height)
	return height
}

// compactLine renders the single content line of a compact pill: disclosure
// indicator, title, and the accessory panels side by side.
func (d *PillDelegate) compactLine(n *tree.Node, innerW int) string {
	left, right := d.panelCells(n)
	leftText := inlineCells(left)
	rightText := inlineCells(right)

	titleW := innerW - lipgloss.Width(leftText) - lipgloss.Width(rightText)
	title := d.titleText(n, &titleW)
	gap := innerW - lipgloss.Width(leftText) - lipgloss.Width(title) - lipgloss.Width(rightText)
	if gap < 1 {
		gap = 1
	}
	if leftText != "" {
		return leftText + " " + title + strings.Repeat(" ", gap-1) + rightText
	}
	return title + strings.Repeat(" ", gap) + rightText
}

// expandedLines renders the stacked layout: left panel column, centered
// title and description, right panel column.
func (d *PillDelegate) expandedLines(n *tree.Node, innerW, contentH int) []string {
	left, right := d.panelCells(n)
	centerW, center := d.centerLines(n, d.contentWidth(n, len(left) > 0, len(right) > 0))

	leftCol := stackCells(left, contentH)
	rightCol := stackCells(right, contentH)

	lines := make([]string, contentH)
	for i := 0; i < contentH; i++ {
		var sb strings.Builder
		if len(left) > 0 {
			sb.WriteString(padLineToWidth(colLine(leftCol, i), panelWidth))
			sb.WriteString(" ")
		}
		var mid string
		if i < len(center) {
			mid = center[i]
		}
		sb.WriteString(padLineToWidth(mid, centerW))
		if len(right) > 0 {
			sb.WriteString(" ")
			sb.WriteString(padLineToWidth(colLine(rightCol, i), panelWidth))
		}
		lines[i] = clipLine(sb.String(), innerW)
	}
	return lines
}

// contentWidth computes the center column width for the given panel layout.
func (d *PillDelegate) contentWidth(n *tree.Node, hasLeft, hasRight bool) int {
	indent := n.Depth * indentStep
	w := d.Width - indent - 4
	if hasLeft {
		w -= panelWidth + 1
	}
	if hasRight {
		w -= panelWidth + 1
	}
	if w < 8 {
		w = 8
	}
	return w
}

// centerLines builds the title and clamped description block.
func (d *PillDelegate) centerLines(n *tree.Node, width int) (int, []string) {
	w := width
	title := d.titleText(n, &w)
	lines := []string{title}
	if n.Task.Description != "" {
		desc := wrapClamp(n.Task.Description, width, d.MaxDescLines)
		for _, l := range desc {
			lines = append(lines, styleDescription.Render(l))
		}
	}
	return width, lines
}

// titleText renders the disclosure indicator plus the styled, clipped title.
// width is reduced to what the title actually consumed.
func (d *PillDelegate) titleText(n *tree.Node, width *int) string {
	indicator := ""
	if n.HasChildren() {
		if n.Expanded {
			indicator = expandOpen
		} else {
			indicator = expandClosed
		}
	}
	style := styleTitle
	if n.Task.IsCompleted() {
		style = styleTitleCompleted
	}
	text := clipLine(n.Task.Title, *width-lipgloss.Width(indicator))
	out := indicator + style.Render(text)
	if w := lipgloss.Width(out); w < *width {
		*width = w
	}
	return out
}

// panelCell is one rendered accessory panel item. tint carries the catalog
// color for items that have one.
type panelCell struct {
	item  string
	tint  string
	lines []string
}

// panelCells resolves the configured panel items for one node. Unknown
// items are skipped; missing values render the neutral placeholder.
func (d *PillDelegate) panelCells(n *tree.Node) (left, right []panelCell) {
	build := func(items []string) []panelCell {
		var cells []panelCell
		for _, item := range items {
			if len(cells) == 2 {
				break
			}
			text, ok := d.panelText(n, item)
			if !ok {
				continue
			}
			cells = append(cells, panelCell{
				item:  item,
				tint:  d.panelTint(n, item),
				lines: wrapClamp(text, panelWidth, 2),
			})
		}
		return cells
	}
	return build(d.LeftPanels), build(d.RightPanels)
}

// panelTint resolves the catalog color behind a panel item, if any.
func (d *PillDelegate) panelTint(n *tree.Node, item string) string {
	switch item {
	case "priority":
		return d.PriorityColors[n.Task.Priority]
	case "status":
		return d.StatusColors[n.Task.Status]
	case "category":
		return d.CategoryColors[n.Task.Category]
	}
	return ""
}

// panelText maps a panel item name to its display text for one node.
func (d *PillDelegate) panelText(n *tree.Node, item string) (string, bool) {
	t := n.Task
	placeholder := func(s string) string {
		if s == "" {
			return "—"
		}
		return s
	}
	switch item {
	case "priority":
		return placeholder(t.Priority), true
	case "status":
		return placeholder(t.Status), true
	case "due":
		return "Due " + placeholder(t.DueDate), true
	case "category":
		return placeholder(t.Category), true
	case "links":
		return fmt.Sprintf("%d links", len(t.Links)), true
	case "files":
		return fmt.Sprintf("%d files", len(t.Files)), true
	case "subtasks":
		return fmt.Sprintf("%d subtasks", len(n.Children)), true
	case "completed":
		if t.CompletedAt == nil {
			return "—", true
		}
		return t.CompletedAt.Format("2006-01-02"), true
	case "progress":
		done := 0
		for _, c := range n.Children {
			if c.Task.IsCompleted() {
				done++
			}
		}
		return fmt.Sprintf("%d/%d done", done, len(n.Children)), true
	default:
		return "", false
	}
}

// addPanelRects registers hit rects for the panel cells of a row so panel
// clicks and hovers can be resolved by item name.
func (d *PillDelegate) addPanelRects(hm *HitMap, n *tree.Node, indent, y, rowWidth, height int) {
	left, right := d.panelCells(n)
	if n.Task.IsCompact {
		innerW := rowWidth - 4
		x := indent + 2
		for _, cell := range left {
			w := lipgloss.Width(inlineCellText(cell))
			hm.Add(HitRect{Kind: hitPanel, TaskID: n.Task.ID, Panel: cell.item, X: x, Y: y + 1, W: w, H: 1})
			x += w + 1
		}
		rightW := 0
		for i, cell := range right {
			if i > 0 {
				rightW++
			}
			rightW += lipgloss.Width(inlineCellText(cell))
		}
		x = indent + 2 + innerW - rightW
		for _, cell := range right {
			w := lipgloss.Width(inlineCellText(cell))
			hm.Add(HitRect{Kind: hitPanel, TaskID: n.Task.ID, Panel: cell.item, X: x, Y: y + 1, W: w, H: 1})
			x += w + 1
		}
		return
	}
	row := y + 1
	for _, cell := range left {
		h := len(cell.lines)
		hm.Add(HitRect{Kind: hitPanel, TaskID: n.Task.ID, Panel: cell.item, X: indent + 2, Y: row, W: panelWidth, H: h})
		row += h
	}
	row = y + 1
	for _, cell := range right {
		h := len(cell.lines)
		hm.Add(HitRect{
			Kind: hitPanel, TaskID: n.Task.ID, Panel: cell.item,
			X: indent + rowWidth - 2 - panelWidth, Y: row, W: panelWidth, H: h,
		})
		row += h
	}
}

// cellStyle tints a panel cell with its catalog color when it has one.
func cellStyle(base lipgloss.Style, cell panelCell) lipgloss.Style {
	if cell.tint == "" {
		return base
	}
	return base.Foreground(catalogColor(cell.tint))
}

// inlineCellText is the single-line form of a panel cell used by the
// compact layout.
func inlineCellText(cell panelCell) string {
	if len(cell.lines) > 1 {
		return clipLine(strings.Join(cell.lines, " "), panelWidth)
	}
	return cell.lines[0]
}

// inlineCells joins panel cells into one line for the compact layout.
func inlineCells(cells []panelCell) string {
	parts := make([]string, 0, len(cells))
	for _, cell := range cells {
		parts = append(parts, cellStyle(stylePanelValue, cell).Render(inlineCellText(cell)))
	}
	return strings.Join(parts, " ")
}

// stackCells flattens panel cells into a padded column of at most h lines.
func stackCells(cells []panelCell, h int) []string {
	var out []string
	for _, cell := range cells {
		style := cellStyle(stylePanelLabel, cell)
		for _, line := range cell.lines {
			out = append(out, style.Render(line))
		}
	}
	if len(out) > h {
		out = out[:h]
	}
	return out
}

func colLine(col []string, i int) string {
	if i < len(col) {
		return col[i]
	}
	return ""
}

func stackHeight(cells []panelCell) int {
	h := 0
	for _, cell := range cells {
		h += len(cell.lines)
	}
	return h
}
