// Package ui implements the taskdeck terminal interface: three status
// views rendered as pill rows on a cell canvas, with keyboard and mouse
// (drag-and-drop) interaction.
package ui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"taskdeck/internal/config"
	"taskdeck/internal/domain"
	"taskdeck/internal/store"
	"taskdeck/internal/tree"
)

// statePersister saves and restores presentation state across relaunches.
// Satisfied by the SQLite store's view-state sidecar; nil disables
// persistence.
type statePersister interface {
	LoadViewState() (*store.ViewState, error)
	SaveViewState(*store.ViewState) error
}

// minibufferMode says what the one-line input at the bottom is capturing.
type minibufferMode int

const (
	minibufferOff minibufferMode = iota
	minibufferNewSibling
	minibufferNewChild
	minibufferFilter
)

// App is the Bubble Tea model for the whole application.
type App struct {
	st      store.Store
	persist statePersister
	views   *Views
	keys    KeyMap

	delegate PillDelegate
	hitmap   HitMap
	drag     dragState
	watcher  *Watcher

	priorities []domain.Priority
	statuses   []domain.Status

	width  int
	height int

	selectedID int64
	scroll     map[domain.View]int

	// collapsedSections tracks closed priority headers in the current view.
	collapsedSections map[string]bool

	filterQuery string
	minibuffer  textinput.Model
	inputMode   minibufferMode

	showHelp   bool
	showDetail bool

	hoverToggleID int64

	// hoverPanel is the compact panel cell under the pointer, if any.
	hoverPanel *HitRect

	toast         *toast
	reloadGen     int
	stateRestored bool

	quitting bool
	fatalErr error
}

// Option configures the App.
type Option func(*App)

// WithWatcher attaches a database file watcher for auto-reload.
func WithWatcher(w *Watcher) Option {
	return func(a *App) { a.watcher = w }
}

// WithStatePersistence restores and saves presentation state via p.
func WithStatePersistence(p statePersister) Option {
	return func(a *App) { a.persist = p }
}

// NewApp builds the application model around a store.
func NewApp(st store.Store, opts ...Option) *App {
	input := textinput.New()
	input.CharLimit = 200
	input.Width = 40

	a := &App{
		st:                st,
		views:             NewViews(st),
		keys:              DefaultKeyMap(),
		scroll:            make(map[domain.View]int),
		collapsedSections: make(map[string]bool),
		minibuffer:        input,
		delegate: PillDelegate{
			MaxDescLines: config.GetInt(config.KeyMaxDescriptionLines),
			LeftPanels:   config.GetStringSlice(config.KeyLeftPanelContents),
			RightPanels:  config.GetStringSlice(config.KeyRightPanelContents),
		},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Init loads the catalogs and views and starts the watcher loop.
func (m *App) Init() tea.Cmd {
	cmds := []tea.Cmd{m.reloadCmd()}
	if m.watcher != nil {
		cmds = append(cmds, m.watcher.WaitForChange())
	}
	return tea.Batch(cmds...)
}

// reloadCmd rebuilds all three views and the catalogs off the main loop.
func (m *App) reloadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		if err := m.loadCatalogs(ctx); err != nil {
			return reloadCompleteMsg{err: err}
		}
		return reloadCompleteMsg{err: m.views.ReloadAll(ctx)}
	}
}

func (m *App) loadCatalogs(ctx context.Context) error {
	prios, err := m.st.Priorities(ctx)
	if err != nil {
		return err
	}
	statuses, err := m.st.Statuses(ctx)
	if err != nil {
		return err
	}
	cats, err := m.st.Categories(ctx)
	if err != nil {
		return err
	}
	m.priorities = prios
	m.statuses = statuses

	m.delegate.PriorityColors = make(map[string]string, len(prios))
	for _, p := range prios {
		m.delegate.PriorityColors[p.Name] = p.Color
	}
	m.delegate.StatusColors = make(map[string]string, len(statuses))
	for _, s := range statuses {
		m.delegate.StatusColors[s.Name] = s.Color
	}
	m.delegate.CategoryColors = make(map[string]string, len(cats))
	for _, c := range cats {
		m.delegate.CategoryColors[c.Name] = c.Color
	}
	return nil
}

// restoreViewState applies a saved sidecar state after the first load.
func (m *App) restoreViewState() {
	if m.persist == nil {
		return
	}
	st, err := m.persist.LoadViewState()
	if err != nil || st == nil {
		return
	}
	for _, v := range domain.AllViews {
		if v.String() == st.ActiveView {
			m.views.SetActive(v)
		}
	}
	if len(st.ExpandedPriorities) > 0 {
		open := make(map[string]bool, len(st.ExpandedPriorities))
		for _, p := range st.ExpandedPriorities {
			open[p] = true
		}
		for _, p := range m.priorities {
			if !open[p.Name] {
				m.collapsedSections[p.Name] = true
			}
		}
	}
	if ids := st.ExpandedTasks[domain.ViewCurrent.String()]; len(ids) > 0 {
		m.views.RestoreExpandedIDs(ids)
	}
	if st.SelectedTaskID != 0 {
		m.selectedID = st.SelectedTaskID
	}
}

// saveViewState writes the sidecar state; errors are deliberately dropped,
// presentation state is best effort.
func (m *App) saveViewState() {
	if m.persist == nil {
		return
	}
	expanded := make([]string, 0, len(m.priorities))
	for _, p := range m.priorities {
		if !m.collapsedSections[p.Name] {
			expanded = append(expanded, p.Name)
		}
	}
	_ = m.persist.SaveViewState(&store.ViewState{
		Version:            1,
		ActiveView:         m.views.Active().String(),
		ExpandedPriorities: expanded,
		ExpandedTasks: map[string][]int64{
			domain.ViewCurrent.String(): m.views.ExpandedIDs(),
		},
		SelectedTaskID: m.selectedID,
	})
}

// visibleRows flattens the active view into the rows currently on screen,
// honoring collapsed sections, collapsed subtrees, and the filter.
func (m *App) visibleRows() []*tree.Node {
	switch m.views.Active() {
	case domain.ViewBacklog:
		return m.filterFlat(m.views.Backlog())
	case domain.ViewCompleted:
		return m.filterFlat(m.views.Completed())
	}

	matched := matchTasks(m.allCurrentNodes(), m.filterQuery)
	var rows []*tree.Node
	var walk func(n *tree.Node)
	walk = func(n *tree.Node) {
		if !filterVisible(matched, n) {
			return
		}
		rows = append(rows, n)
		if !n.Expanded {
			return
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	model := m.views.Current().Model()
	for _, p := range m.priorities {
		if m.collapsedSections[p.Name] {
			continue
		}
		for _, root := range model.Roots(p.Name) {
			walk(root)
		}
	}
	return rows
}

func (m *App) filterFlat(nodes []*tree.Node) []*tree.Node {
	matched := matchTasks(nodes, m.filterQuery)
	if matched == nil {
		return nodes
	}
	var rows []*tree.Node
	for _, n := range nodes {
		if matched[n.Task.ID] {
			rows = append(rows, n)
		}
	}
	return rows
}

func (m *App) allCurrentNodes() []*tree.Node {
	model := m.views.Current().Model()
	var nodes []*tree.Node
	for _, p := range m.priorities {
		for _, root := range model.Roots(p.Name) {
			root.Walk(func(n *tree.Node) { nodes = append(nodes, n) })
		}
	}
	return nodes
}

// selectedNode resolves the selection against the active view, falling back
// to the first visible row when the selection left the view.
func (m *App) selectedNode() *tree.Node {
	rows := m.visibleRows()
	if len(rows) == 0 {
		return nil
	}
	for _, n := range rows {
		if n.Task.ID == m.selectedID {
			return n
		}
	}
	m.selectedID = rows[0].Task.ID
	return rows[0]
}

func (m *App) setToast(t *toast) tea.Cmd {
	m.toast = t
	if t != nil && !t.blocking {
		return scheduleToastTick()
	}
	return nil
}

// nextStatus returns the catalog status after current, wrapping around.
func (m *App) nextStatus(current string) string {
	for i, s := range m.statuses {
		if s.Name == current {
			return m.statuses[(i+1)%len(m.statuses)].Name
		}
	}
	if len(m.statuses) > 0 {
		return m.statuses[0].Name
	}
	return current
}

// nextPriority returns the catalog priority after current, wrapping around.
func (m *App) nextPriority(current string) string {
	for i, p := range m.priorities {
		if p.Name == current {
			return m.priorities[(i+1)%len(m.priorities)].Name
		}
	}
	if len(m.priorities) > 0 {
		return m.priorities[0].Name
	}
	return current
}

// defaultStatus returns the first catalog status that belongs to the
// current view's partition.
func (m *App) defaultStatus() string {
	for _, s := range m.statuses {
		if domain.ViewForStatus(s.Name) == domain.ViewCurrent {
			return s.Name
		}
	}
	return "Not Started"
}

func (m *App) defaultPriority() string {
	for _, p := range m.priorities {
		if p.Name == "Medium" {
			return p.Name
		}
	}
	if len(m.priorities) > 0 {
		return m.priorities[0].Name
	}
	return "Medium"
}

func (m *App) now() time.Time { return time.Now() }
