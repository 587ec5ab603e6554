package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all keyboard shortcuts for the application.
// Related bindings (Up/Down, Left/Right) share identical help text since
// they appear as a single row in the help overlay.
type KeyMap struct {
	// Navigation
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	Space    key.Binding
	Home     key.Binding
	End      key.Binding
	PageUp   key.Binding
	PageDown key.Binding

	// Views
	Tab      key.Binding
	ShiftTab key.Binding

	// Actions
	Enter       key.Binding
	NewSibling  key.Binding
	NewChild    key.Binding
	Delete      key.Binding
	Complete    key.Binding
	Status      key.Binding
	Priority    key.Binding
	Compact     key.Binding
	ToggleAll   key.Binding
	ExpandAll   key.Binding
	CollapseAll key.Binding
	OpenLinks   key.Binding
	OpenFiles   key.Binding
	Yank        key.Binding
	Refresh     key.Binding
	Help        key.Binding
	Quit        key.Binding

	// Search
	Search    key.Binding
	Escape    key.Binding
	Backspace key.Binding
}

// DefaultKeyMap returns the default keybindings for taskdeck.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		// Navigation - Up/Down share help text (displayed as single row)
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/↓  j/k", "Move up/down"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↑/↓  j/k", "Move up/down"),
		),
		// Left/Right share help text (displayed as single row)
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/→  h/l", "Collapse/Expand"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("←/→  h/l", "Collapse/Expand"),
		),
		Space: key.NewBinding(
			key.WithKeys(" ", "space"),
			key.WithHelp("Space", "Toggle subtasks"),
		),
		Home: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("Home  g", "Jump to top"),
		),
		End: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("End   G", "Jump to bottom"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+b"),
			key.WithHelp("PgUp  Ctrl+B", "Page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+f"),
			key.WithHelp("PgDn  Ctrl+F", "Page down"),
		),

		// Views
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("⇥ (Tab)", "Next view"),
		),
		ShiftTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("⇧⇥", "Previous view"),
		),

		// Actions
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("⏎ (Enter)", "Toggle detail"),
		),
		NewSibling: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "New task"),
		),
		NewChild: key.NewBinding(
			key.WithKeys("N"),
			key.WithHelp("N", "New subtask"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "Delete task"),
		),
		Complete: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "Mark complete"),
		),
		Status: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "Cycle status"),
		),
		Priority: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "Cycle priority"),
		),
		Compact: key.NewBinding(
			key.WithKeys("z"),
			key.WithHelp("z", "Compact row"),
		),
		ToggleAll: key.NewBinding(
			key.WithKeys("Z"),
			key.WithHelp("Z", "Compact/expand all"),
		),
		ExpandAll: key.NewBinding(
			key.WithKeys("E"),
			key.WithHelp("E", "Expand all subtasks"),
		),
		CollapseAll: key.NewBinding(
			key.WithKeys("C"),
			key.WithHelp("C", "Collapse all subtasks"),
		),
		OpenLinks: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "Open links"),
		),
		OpenFiles: key.NewBinding(
			key.WithKeys("O"),
			key.WithHelp("O", "Open file locations"),
		),
		Yank: key.NewBinding(
			key.WithKeys("c", "y"),
			key.WithHelp("c/y", "Copy title"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Reload"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "Help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "Quit"),
		),

		// Search
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "Filter tasks"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Esc", "Clear/cancel"),
		),
		Backspace: key.NewBinding(
			key.WithKeys("backspace"),
			key.WithHelp("⌫", "Delete char"),
		),
	}
}
