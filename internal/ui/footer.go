package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// footerHint defines a key hint for the footer bar. These are intentionally
// shorter than the KeyMap help text.
type footerHint struct {
	key  string
	desc string
}

var globalFooterHints = []footerHint{
	{"⇥", "View"},
	{"/", "Filter"},
	{"⏎", "Detail"},
	{"?", "Help"},
	{"q", "Quit"},
}

var currentFooterHints = []footerHint{
	{"↑↓", "Navigate"},
	{"Space", "Subtasks"},
	{"z", "Compact"},
	{"n", "New"},
}

var flatFooterHints = []footerHint{
	{"↑↓", "Navigate"},
	{"s", "Status"},
}

func keyPill(key, desc string) string {
	return styleFooterKey.Render(key) + " " + styleFooterHint.Render(desc)
}

// renderFooter renders the footer bar with the hints for the active view,
// dropping trailing hints when the terminal is narrow.
func (m *App) renderFooter() string {
	var hints []footerHint
	if m.views.Active().UsesPriorityHeaders() {
		hints = append(hints, currentFooterHints...)
	} else {
		hints = append(hints, flatFooterHints...)
	}
	hints = append(hints, globalFooterHints...)

	var parts []string
	width := 0
	for _, h := range hints {
		pill := keyPill(h.key, h.desc)
		w := lipgloss.Width(pill) + 2
		if width+w > m.width && len(parts) > 0 {
			break
		}
		parts = append(parts, pill)
		width += w
	}
	return padLineToWidth(strings.Join(parts, "  "), m.width)
}
