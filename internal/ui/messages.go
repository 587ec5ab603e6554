package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// toastTickMsg drives toast countdowns once a second while any toast is up.
type toastTickMsg struct{}

func scheduleToastTick() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg { return toastTickMsg{} })
}

// dbChangedMsg arrives from the filesystem watcher when the database file
// was written by another process.
type dbChangedMsg struct{}

// reloadDebounceMsg fires after the debounce window so a burst of writes
// triggers a single reload.
type reloadDebounceMsg struct {
	generation int
}

func scheduleReloadDebounce(generation int) tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(time.Time) tea.Msg {
		return reloadDebounceMsg{generation: generation}
	})
}

// reloadCompleteMsg reports the outcome of a full rebuild of the views.
type reloadCompleteMsg struct {
	err error
}

// openCompleteMsg reports the outcome of launching external links or files.
type openCompleteMsg struct {
	opened int
	err    error
}

// yankCompleteMsg reports the outcome of a clipboard copy.
type yankCompleteMsg struct {
	text string
	err  error
}
