package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	cPurple     = lipgloss.Color("99")
	cCyan       = lipgloss.Color("39")
	cRed        = lipgloss.Color("203")
	cGold       = lipgloss.Color("220")
	cGray       = lipgloss.Color("240")
	cBrightGray = lipgloss.Color("246")
	cLightGray  = lipgloss.Color("250")
	cWhite      = lipgloss.Color("255")
	cHighlight  = lipgloss.Color("57")
	cBase       = lipgloss.Color("235")

	// neutralColor stands in when a catalog row has no color or the row
	// itself is gone.
	neutralColor = lipgloss.Color("244")

	styleTitle = lipgloss.NewStyle().Foreground(cWhite).Bold(true)

	styleTitleCompleted = lipgloss.NewStyle().
				Foreground(cBrightGray).
				Strikethrough(true)

	styleDescription = lipgloss.NewStyle().Foreground(cLightGray)

	styleSectionHeader = lipgloss.NewStyle().
				Foreground(cWhite).
				Bold(true).
				Padding(0, 1)

	styleSectionCount = lipgloss.NewStyle().Foreground(cLightGray)

	styleTabActive = lipgloss.NewStyle().
			Foreground(cWhite).
			Background(cPurple).
			Bold(true).
			Padding(0, 2)

	styleTabInactive = lipgloss.NewStyle().
				Foreground(cLightGray).
				Background(cBase).
				Padding(0, 2)

	stylePanelLabel = lipgloss.NewStyle().Foreground(cBrightGray)

	stylePanelValue = lipgloss.NewStyle().Foreground(cWhite)

	stylePanelTooltip = lipgloss.NewStyle().
				Foreground(cBase).
				Background(cBrightGray).
				Padding(0, 1)

	styleToggleHotspot = lipgloss.NewStyle().Foreground(cGold).Bold(true)

	styleToggleHover = lipgloss.NewStyle().
				Foreground(cBase).
				Background(cGold).
				Bold(true)

	styleSelectedBorder = lipgloss.NewStyle().Foreground(cCyan).Bold(true)

	styleDragSource = lipgloss.NewStyle().Foreground(cGray)

	styleDropTarget = lipgloss.NewStyle().
			Foreground(cWhite).
			Background(cHighlight).
			Bold(true)

	styleDropIndicator = lipgloss.NewStyle().Foreground(cGold).Bold(true)

	styleFooterHint = lipgloss.NewStyle().Foreground(cBrightGray)

	styleFooterKey = lipgloss.NewStyle().Foreground(cGold)

	styleFilterPrompt = lipgloss.NewStyle().Foreground(cGold).Bold(true)

	styleErrorToast = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(cRed).
			Foreground(cWhite).
			Padding(0, 1)

	styleInfoToast = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(cCyan).
			Foreground(cWhite).
			Padding(0, 1)

	styleOverlay = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(cPurple).
			Padding(0, 2)

	styleHelpKey = lipgloss.NewStyle().Foreground(cGold).Bold(true)

	styleHelpDesc = lipgloss.NewStyle().Foreground(cLightGray)
)

func baseStyle() lipgloss.Style {
	return lipgloss.NewStyle().Background(cBase)
}

// catalogColor renders a catalog-provided color, falling back to the neutral
// placeholder for empty or garbage values.
func catalogColor(hex string) lipgloss.TerminalColor {
	hex = strings.TrimSpace(hex)
	if hex == "" {
		return neutralColor
	}
	return lipgloss.Color(hex)
}

// pillBorderStyle colors a task row's border by its priority section color,
// brightening when the row is selected or targeted by a drag.
func pillBorderStyle(sectionColor string, selected, dropTarget bool) lipgloss.Style {
	if dropTarget {
		return styleDropTarget
	}
	if selected {
		return styleSelectedBorder
	}
	return lipgloss.NewStyle().Foreground(catalogColor(sectionColor))
}
