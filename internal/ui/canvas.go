package ui

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/cellbuf"
)

// Canvas wraps cellbuf.Screen so pill rows, headers, and overlays can be
// composed into a cell buffer before the frame is handed back to Bubble Tea
// as a string.
type Canvas struct {
	screen *cellbuf.Screen
	writer *cellbuf.ScreenWriter
	width  int
	height int
}

func NewCanvas(width, height int) *Canvas {
	if width <= 0 {
		width = 1
	}
	if height <= 0 {
		height = 1
	}
	screen := cellbuf.NewScreen(io.Discard, width, height, &cellbuf.ScreenOptions{
		ShowCursor: false,
		AltScreen:  false,
	})
	return &Canvas{
		screen: screen,
		writer: cellbuf.NewScreenWriter(screen),
		width:  width,
		height: height,
	}
}

func (c *Canvas) Width() int  { return c.width }
func (c *Canvas) Height() int { return c.height }

// Fill paints the whole canvas with the given background color.
func (c *Canvas) Fill(bg lipgloss.TerminalColor) {
	if c == nil {
		return
	}
	fill := lipgloss.NewStyle().
		Background(bg).
		Width(c.width).
		Height(c.height).
		Render("")
	c.DrawStringAt(0, 0, fill)
}

// DrawStringAt writes the block starting at x,y. Newlines are normalized so
// each line begins at column 0 relative to x; content past the right edge is
// cropped.
func (c *Canvas) DrawStringAt(x, y int, content string) {
	if content == "" || c == nil || c.writer == nil {
		return
	}
	c.writer.PrintCropAt(x, y, normalizeForCellbuf(content), "")
}

// CenterOverlay draws the overlay centered within the canvas, keeping the
// top/bottom margins clear so the tab bar and footer stay visible.
func (c *Canvas) CenterOverlay(overlay string, topMargin, bottomMargin int) {
	lines := splitOverlayLines(overlay)
	if len(lines) == 0 || c == nil {
		return
	}
	if topMargin < 0 {
		topMargin = 0
	}
	if bottomMargin < 0 {
		bottomMargin = 0
	}

	overlayHeight := len(lines)
	overlayWidth := maxLineWidth(lines)
	if overlayWidth > c.width {
		overlayWidth = c.width
	}

	usable := c.height - topMargin - bottomMargin
	if usable < overlayHeight {
		usable = overlayHeight
	}
	startY := topMargin
	if usable > overlayHeight {
		startY = topMargin + (usable-overlayHeight)/2
	}
	if maxY := c.height - bottomMargin - overlayHeight; startY > maxY {
		startY = maxY
	}
	if startY < 0 {
		startY = 0
	}
	startX := (c.width - overlayWidth) / 2
	if startX < 0 {
		startX = 0
	}
	c.drawBlockAt(startX, startY, lines)
}

// BottomRightOverlay anchors the overlay to the bottom-right corner with the
// given padding. Used for toasts.
func (c *Canvas) BottomRightOverlay(overlay string, padding int) {
	lines := splitOverlayLines(overlay)
	if len(lines) == 0 || c == nil {
		return
	}
	if padding < 0 {
		padding = 0
	}
	startY := c.height - len(lines) - padding
	if startY < 0 {
		startY = 0
	}
	startX := c.width - maxLineWidth(lines) - padding
	if startX < 0 {
		startX = 0
	}
	c.drawBlockAt(startX, startY, lines)
}

func (c *Canvas) drawBlockAt(x, y int, lines []string) {
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	for i, line := range lines {
		row := y + i
		if row >= c.height {
			break
		}
		if line == "" {
			continue
		}
		c.writer.PrintCropAt(x, row, line, "")
	}
}

// Render returns the composed frame as a newline-delimited string.
func (c *Canvas) Render() string {
	if c == nil || c.screen == nil {
		return ""
	}
	raw := cellbuf.Render(c.screen)
	_ = c.screen.Close()
	return strings.ReplaceAll(raw, "\r\n", "\n")
}

func normalizeForCellbuf(content string) string {
	if content == "" {
		return ""
	}
	content = strings.ReplaceAll(content, "\r\n", "\n")
	return strings.ReplaceAll(content, "\n", "\r\n")
}

func splitOverlayLines(content string) []string {
	if content == "" {
		return nil
	}
	return strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
}
