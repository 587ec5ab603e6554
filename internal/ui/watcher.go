package ui

import (
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"

	"taskdeck/internal/debug"
)

// Watcher notices external writes to the task database and surfaces them to
// the Bubble Tea loop as dbChangedMsg. It watches the database's directory
// rather than the file itself: SQLite in WAL mode touches sidecar files, and
// some editors replace files by rename.
type Watcher struct {
	fw     *fsnotify.Watcher
	dbPath string
	events chan struct{}
	done   chan struct{}
}

func NewWatcher(dbPath string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(dbPath)); err != nil {
		_ = fw.Close()
		return nil, err
	}
	w := &Watcher{
		fw:     fw,
		dbPath: dbPath,
		events: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	base := filepath.Base(w.dbPath)
	for {
		select {
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if !strings.HasPrefix(filepath.Base(ev.Name), base) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			select {
			case w.events <- struct{}{}:
			default: // a change is already pending
			}
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			debug.Logf("watcher: %v", err)
		case <-w.done:
			return
		}
	}
}

// WaitForChange blocks until the next database change. The app re-issues
// this command after handling each dbChangedMsg.
func (w *Watcher) WaitForChange() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-w.events:
			return dbChangedMsg{}
		case <-w.done:
			return nil
		}
	}
}

func (w *Watcher) Close() {
	close(w.done)
	_ = w.fw.Close()
}
