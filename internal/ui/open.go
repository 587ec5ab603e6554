package ui

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"taskdeck/internal/domain"
)

// openExternal hands a URL or path to the platform opener.
func openExternal(target string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", target).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", target).Start()
	default:
		return exec.Command("xdg-open", target).Start()
	}
}

// openLinksCmd launches every link attached to the task.
func openLinksCmd(links []domain.Link) tea.Cmd {
	return func() tea.Msg {
		opened := 0
		for _, l := range links {
			if l.URL == "" {
				continue
			}
			if err := openExternal(l.URL); err != nil {
				return openCompleteMsg{opened: opened, err: fmt.Errorf("open %s: %w", l.URL, err)}
			}
			opened++
		}
		return openCompleteMsg{opened: opened}
	}
}

// openFileLocationsCmd opens the containing directory of every attached
// file, deduplicated so siblings in the same folder open it once.
func openFileLocationsCmd(files []domain.FileRef) tea.Cmd {
	return func() tea.Msg {
		seen := make(map[string]bool)
		opened := 0
		for _, f := range files {
			if f.Path == "" {
				continue
			}
			dir := filepath.Dir(f.Path)
			if seen[dir] {
				continue
			}
			seen[dir] = true
			if err := openExternal(dir); err != nil {
				return openCompleteMsg{opened: opened, err: fmt.Errorf("open %s: %w", dir, err)}
			}
			opened++
		}
		return openCompleteMsg{opened: opened}
	}
}

// yankCmd copies text to the system clipboard.
func yankCmd(text string) tea.Cmd {
	return func() tea.Msg {
		return yankCompleteMsg{text: text, err: clipboard.WriteAll(text)}
	}
}
