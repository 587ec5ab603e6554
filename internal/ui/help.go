package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

// helpSection groups bindings under a heading in the help overlay.
type helpSection struct {
	title    string
	bindings []key.Binding
}

func (m *App) helpSections() []helpSection {
	k := m.keys
	return []helpSection{
		{"Navigation", []key.Binding{k.Up, k.Left, k.Space, k.Home, k.End, k.PageUp, k.PageDown}},
		{"Views", []key.Binding{k.Tab, k.ShiftTab, k.Search}},
		{"Tasks", []key.Binding{k.NewSibling, k.NewChild, k.Delete, k.Complete, k.Status, k.Priority}},
		{"Presentation", []key.Binding{k.Compact, k.ToggleAll, k.ExpandAll, k.CollapseAll}},
		{"Other", []key.Binding{k.Enter, k.OpenLinks, k.OpenFiles, k.Yank, k.Refresh, k.Help, k.Quit}},
	}
}

// renderHelp builds the help overlay listing every binding by section.
// Bindings that share help text (Up/Down, Left/Right) appear once.
func (m *App) renderHelp() string {
	var sb strings.Builder
	sb.WriteString(styleTitle.Render("Keyboard Shortcuts"))
	sb.WriteString("\n")
	for _, section := range m.helpSections() {
		sb.WriteString("\n")
		sb.WriteString(styleSectionCount.Render(section.title))
		sb.WriteString("\n")
		for _, b := range section.bindings {
			h := b.Help()
			sb.WriteString("  ")
			sb.WriteString(styleHelpKey.Render(padRight(h.Key, 14)))
			sb.WriteString(styleHelpDesc.Render(h.Desc))
			sb.WriteString("\n")
		}
	}
	sb.WriteString("\n")
	sb.WriteString(styleHelpDesc.Render("Drag a task with the mouse to reparent or reorder it."))
	return styleOverlay.Render(sb.String())
}

func padRight(s string, width int) string {
	for len([]rune(s)) < width {
		s += " "
	}
	return s
}
