package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

const viewStateSuffix = ".viewstate.json"

// ViewState stores small, user-facing UI state for restoring the screen on
// relaunch: which view was active, which priority sections were expanded,
// and which parent tasks had their subtrees open.
//
// The file lives next to the task database so state is naturally scoped per
// database. It is intentionally best effort: callers should tolerate
// missing or invalid data.
type ViewState struct {
	Version int `json:"version"`

	// ActiveView is one of: current|backlog|completed.
	ActiveView string `json:"activeView,omitempty"`

	// ExpandedPriorities lists the priority sections open in the current
	// view. A missing list means all sections are expanded.
	ExpandedPriorities []string `json:"expandedPriorities,omitempty"`

	// ExpandedTasks lists parent task ids whose subtrees are open,
	// keyed by view name.
	ExpandedTasks map[string][]int64 `json:"expandedTasks,omitempty"`

	// SelectedTaskID restores the cursor after relaunch.
	SelectedTaskID int64 `json:"selectedTaskId,omitempty"`
}

// viewStatePath derives the sidecar path from the database path.
func viewStatePath(dbPath string) string {
	dir := filepath.Dir(dbPath)
	base := filepath.Base(dbPath)
	if ext := filepath.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	return filepath.Join(dir, base+viewStateSuffix)
}

// LoadViewState reads the sidecar state file for the store's database.
// A missing or corrupted file yields a fresh state, not an error.
func (s *SQLiteStore) LoadViewState() (*ViewState, error) {
	b, err := os.ReadFile(viewStatePath(s.dbPath))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &ViewState{Version: 1}, nil
		}
		return nil, err
	}
	var st ViewState
	if err := json.Unmarshal(b, &st); err != nil {
		// Best-effort; if corrupted, treat as missing.
		return &ViewState{Version: 1}, nil
	}
	if st.Version == 0 {
		st.Version = 1
	}
	return &st, nil
}

// SaveViewState writes the sidecar state file atomically.
func (s *SQLiteStore) SaveViewState(st *ViewState) error {
	if st == nil {
		return nil
	}
	if st.Version == 0 {
		st.Version = 1
	}
	b, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	path := viewStatePath(s.dbPath)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
