package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"taskdeck/internal/config"
	"taskdeck/internal/debug"
	apperrors "taskdeck/internal/errors"
)

// Update is the single mutation point for the whole model. Store writes
// happen synchronously inside the message that triggered them; background
// work re-enters through messages only.
func (m *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.delegate.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case reloadCompleteMsg:
		return m.handleReloadComplete(msg)

	case dbChangedMsg:
		return m.handleDBChanged()

	case reloadDebounceMsg:
		if msg.generation != m.reloadGen {
			return m, nil // superseded by a later change
		}
		debug.Log("app: debounced external change, reloading")
		return m, m.reloadCmd()

	case toastTickMsg:
		if m.toast == nil {
			return m, nil
		}
		if m.toast.expired(time.Now()) {
			m.toast = nil
			return m, nil
		}
		return m, scheduleToastTick()

	case openCompleteMsg:
		if msg.err != nil {
			return m, m.setToast(errorToast("Open failed: "+msg.err.Error(), false))
		}
		if msg.opened == 0 {
			return m, m.setToast(infoToast("Nothing to open."))
		}
		return m, nil

	case yankCompleteMsg:
		if msg.err != nil {
			return m, m.setToast(errorToast("Copy failed: "+msg.err.Error(), false))
		}
		return m, m.setToast(infoToast("Copied '" + clipLine(msg.text, 40) + "' to clipboard."))
	}
	return m, nil
}

func (m *App) handleReloadComplete(msg reloadCompleteMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		if m.views.Current().Model().Len() == 0 && m.fatalErr == nil {
			// Nothing usable was ever loaded.
			m.fatalErr = msg.err
			m.quitting = true
			return m, tea.Quit
		}
		return m, m.setToast(errorToast("Reload failed: "+msg.err.Error(), true))
	}
	if !m.stateRestored {
		m.stateRestored = true
		m.restoreViewState()
	} else {
		m.views.RestoreExpandedIDs(m.views.ExpandedIDs())
	}
	m.drag.cancel()
	m.hitmap.Reset()
	m.hoverPanel = nil
	return m, nil
}

func (m *App) handleDBChanged() (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{}
	if m.watcher != nil {
		cmds = append(cmds, m.watcher.WaitForChange())
	}
	if config.GetBool(config.KeyAutoReload) {
		m.reloadGen++
		cmds = append(cmds, scheduleReloadDebounce(m.reloadGen))
	}
	return m, tea.Batch(cmds...)
}

// FatalErr reports the error that forced the app to exit, if any.
func (m *App) FatalErr() error { return m.fatalErr }

// surfaceError maps a failed operation to the right toast: cycle rejections
// are informational, store-write failures block until dismissed.
func (m *App) surfaceError(err error) tea.Cmd {
	switch apperrors.CodeOf(err) {
	case apperrors.CodeCycleDetected:
		return m.setToast(infoToast("Cannot move a task into its own subtree."))
	case apperrors.CodeStoreWriteFailed:
		return m.setToast(errorToast(err.Error(), true))
	default:
		return m.setToast(errorToast(err.Error(), false))
	}
}
