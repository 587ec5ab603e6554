package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// dragThreshold is how far the pointer must travel from the press point
// before an armed drag becomes active. Below it a press-release is a click.
const dragThreshold = 2

type dragPhase int

const (
	dragIdle dragPhase = iota
	dragArmed
	dragActive
)

type dropKind int

const (
	dropNone dropKind = iota
	dropOnHeader
	dropOnNode
	dropOnEmpty
	dropCancelled
)

// dropAction describes how an active drag ended.
type dropAction struct {
	Kind     dropKind
	SourceID int64
	TargetID int64  // dropOnNode
	Priority string // dropOnHeader
	Zone     dropZone
}

// dragState is the Idle -> Dragging -> drop state machine over mouse
// messages. The app owns one instance and feeds it every tea.MouseMsg.
type dragState struct {
	phase    dragPhase
	sourceID int64
	startX   int
	startY   int
	curX     int
	curY     int
}

func (d *dragState) active() bool { return d.phase == dragActive }

func (d *dragState) source() (int64, bool) {
	if d.phase == dragActive {
		return d.sourceID, true
	}
	return 0, false
}

// hover returns the current pointer position of an active drag.
func (d *dragState) hover() (x, y int, ok bool) {
	if d.phase != dragActive {
		return 0, 0, false
	}
	return d.curX, d.curY, true
}

func (d *dragState) reset() {
	*d = dragState{}
}

// press arms a potential drag when the press lands on a task row. Presses on
// toggles, headers, and empty space never start a drag.
func (d *dragState) press(msg tea.MouseMsg, hm *HitMap) {
	if msg.Button != tea.MouseButtonLeft {
		return
	}
	hit, ok := hm.At(msg.X, msg.Y)
	if !ok || (hit.Kind != hitRow && hit.Kind != hitExpand && hit.Kind != hitPanel) {
		return
	}
	row, ok := hm.RowAt(msg.X, msg.Y)
	if !ok {
		return
	}
	d.phase = dragArmed
	d.sourceID = row.TaskID
	d.startX, d.startY = msg.X, msg.Y
	d.curX, d.curY = msg.X, msg.Y
}

// motion promotes an armed drag to active once the pointer has moved past
// the threshold, and tracks the pointer while active.
func (d *dragState) motion(msg tea.MouseMsg) {
	switch d.phase {
	case dragIdle:
		return
	case dragArmed:
		if abs(msg.X-d.startX)+abs(msg.Y-d.startY) >= dragThreshold {
			d.phase = dragActive
		}
	}
	d.curX, d.curY = msg.X, msg.Y
}

// release resolves the drag. An armed drag that never crossed the threshold
// resolves to dropNone so the app can treat the gesture as a click.
func (d *dragState) release(msg tea.MouseMsg, hm *HitMap) dropAction {
	defer d.reset()
	if d.phase != dragActive {
		return dropAction{Kind: dropNone}
	}
	action := dropAction{SourceID: d.sourceID}

	if hit, ok := hm.At(msg.X, msg.Y); ok && hit.Kind == hitHeader {
		action.Kind = dropOnHeader
		action.Priority = hit.Priority
		return action
	}
	if row, ok := hm.RowAt(msg.X, msg.Y); ok {
		if row.TaskID == d.sourceID {
			action.Kind = dropCancelled
			return action
		}
		action.Kind = dropOnNode
		action.TargetID = row.TaskID
		action.Zone = row.Zone(msg.Y)
		return action
	}
	action.Kind = dropOnEmpty
	return action
}

// cancel aborts any drag in progress, e.g. on Escape or reload.
func (d *dragState) cancel() dropAction {
	active := d.phase == dragActive
	source := d.sourceID
	d.reset()
	if !active {
		return dropAction{Kind: dropNone}
	}
	return dropAction{Kind: dropCancelled, SourceID: source}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
