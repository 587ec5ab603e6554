package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/reflow/wordwrap"

	"taskdeck/internal/config"
	"taskdeck/internal/tree"
)

const detailWidth = 72

// buildMarkdownRenderer returns a description renderer honoring the
// configured output format. Anything glamour cannot handle falls back to a
// plain word wrap.
func buildMarkdownRenderer(format string, width int) func(string) string {
	fallback := func(input string) string {
		return wordwrap.String(input, width)
	}

	style := strings.ToLower(strings.TrimSpace(format))
	if style == "" || style == "rich" {
		style = "dark"
	}
	if style == "plain" {
		return fallback
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return fallback
	}
	return func(input string) string {
		out, err := renderer.Render(input)
		if err != nil {
			return fallback(input)
		}
		return strings.TrimSpace(out)
	}
}

// renderDetail builds the detail overlay for one task: metadata header,
// markdown-rendered description, and attachment listings.
func (m *App) renderDetail(n *tree.Node) string {
	t := n.Task
	width := detailWidth
	if m.width-8 < width {
		width = m.width - 8
	}
	if width < 20 {
		width = 20
	}

	var sb strings.Builder
	sb.WriteString(styleTitle.Render(clipLine(t.Title, width)))
	sb.WriteString("\n\n")

	meta := []struct{ label, value string }{
		{"Status", t.Status},
		{"Priority", t.Priority},
		{"Category", t.Category},
		{"Due", t.DueDate},
	}
	if t.CompletedAt != nil {
		meta = append(meta, struct{ label, value string }{"Completed", t.CompletedAt.Format("2006-01-02 15:04")})
	}
	for _, f := range meta {
		if f.value == "" {
			continue
		}
		sb.WriteString(stylePanelLabel.Render(padRight(f.label, 10)))
		sb.WriteString(stylePanelValue.Render(f.value))
		sb.WriteString("\n")
	}

	if t.Description != "" {
		render := buildMarkdownRenderer(config.GetString(config.KeyOutputFormat), width)
		sb.WriteString("\n")
		sb.WriteString(render(t.Description))
		sb.WriteString("\n")
	}

	if len(t.Links) > 0 {
		sb.WriteString("\n")
		sb.WriteString(styleSectionCount.Render(fmt.Sprintf("Links (%d)", len(t.Links))))
		sb.WriteString("\n")
		for _, l := range t.Links {
			label := l.Label
			if label == "" {
				label = l.URL
			}
			sb.WriteString("  " + stylePanelValue.Render(clipLine(label, width-2)) + "\n")
		}
	}
	if len(t.Files) > 0 {
		sb.WriteString("\n")
		sb.WriteString(styleSectionCount.Render(fmt.Sprintf("Files (%d)", len(t.Files))))
		sb.WriteString("\n")
		for _, f := range t.Files {
			name := f.Name
			if name == "" {
				name = f.Path
			}
			sb.WriteString("  " + stylePanelValue.Render(clipLine(name, width-2)) + "\n")
		}
	}
	return styleOverlay.Render(sb.String())
}
