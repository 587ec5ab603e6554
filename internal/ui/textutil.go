package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"
)

const ellipsis = "…"

// padLineToWidth pads a line with the base background so it reaches the
// provided width.
func padLineToWidth(line string, width int) string {
	if width <= 0 {
		return line
	}
	lineWidth := lipgloss.Width(line)
	if lineWidth >= width {
		return line
	}
	padding := baseStyle().Render(strings.Repeat(" ", width-lineWidth))
	return line + padding
}

func maxLineWidth(lines []string) int {
	max := 0
	for _, line := range lines {
		if w := lipgloss.Width(line); w > max {
			max = w
		}
	}
	return max
}

// wrapClamp greedily word-wraps text to width, treating embedded newlines as
// hard breaks, and clamps the result to maxLines. A clamped block gets a
// trailing ellipsis on its last visible line.
func wrapClamp(text string, width, maxLines int) []string {
	if width <= 0 || maxLines <= 0 {
		return nil
	}
	var lines []string
	for _, para := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if para == "" {
			lines = append(lines, "")
			continue
		}
		wrapped := wordwrap.String(para, width)
		lines = append(lines, strings.Split(wrapped, "\n")...)
	}
	if len(lines) <= maxLines {
		return lines
	}
	lines = lines[:maxLines]
	last := lines[maxLines-1]
	if ansi.PrintableRuneWidth(last) >= width {
		last = truncate.String(last, uint(width-1))
	}
	lines[maxLines-1] = last + ellipsis
	return lines
}

// clipLine hard-truncates one line to width with an ellipsis when it
// overflows.
func clipLine(line string, width int) string {
	if width <= 0 {
		return ""
	}
	if ansi.PrintableRuneWidth(line) <= width {
		return line
	}
	return truncate.String(line, uint(width-1)) + ellipsis
}
