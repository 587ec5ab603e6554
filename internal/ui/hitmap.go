package ui

// hitKind identifies what a screen coordinate resolves to.
type hitKind int

const (
	hitNone hitKind = iota
	hitRow          // a task pill (any part not claimed by a finer rect)
	hitToggle       // the compact/expand hotspot on the pill's top border
	hitExpand       // the subtree disclosure indicator
	hitHeader       // a priority section header
	hitPanel        // an accessory panel cell
)

// dropZone locates a drop within a task row.
type dropZone int

const (
	zoneNone dropZone = iota
	zoneAbove
	zoneInto
	zoneBelow
)

// HitRect maps a screen rectangle back to the thing that drew it.
type HitRect struct {
	Kind     hitKind
	TaskID   int64
	Priority string // section name for hitHeader, section of the row otherwise
	Panel    string // panel item name for hitPanel
	X, Y     int
	W, H     int
}

func (r HitRect) contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Zone maps a y coordinate inside a row rect to a drop zone: the top line
// means above, the bottom line below, anything between lands into the task.
func (r HitRect) Zone(y int) dropZone {
	if r.Kind != hitRow || y < r.Y || y >= r.Y+r.H {
		return zoneNone
	}
	switch {
	case y == r.Y:
		return zoneAbove
	case y == r.Y+r.H-1 && r.H > 1:
		return zoneBelow
	default:
		return zoneInto
	}
}

// HitMap is the arena of clickable rectangles for one rendered frame. It is
// rebuilt on every render pass and thrown away on reload, so rects can never
// outlive the layout that produced them.
type HitMap struct {
	rects []HitRect
}

// Reset clears the arena for the next render pass.
func (h *HitMap) Reset() {
	h.rects = h.rects[:0]
}

// Add registers a rectangle. Later rects win over earlier ones at lookup, so
// fine-grained targets (toggles, panel cells) are added after their row.
func (h *HitMap) Add(r HitRect) {
	if r.W <= 0 || r.H <= 0 {
		return
	}
	h.rects = append(h.rects, r)
}

// At resolves a coordinate to the topmost rectangle covering it.
func (h *HitMap) At(x, y int) (HitRect, bool) {
	for i := len(h.rects) - 1; i >= 0; i-- {
		if h.rects[i].contains(x, y) {
			return h.rects[i], true
		}
	}
	return HitRect{}, false
}

// RowAt resolves a coordinate to the task row covering it, looking through
// finer rects drawn on top of the row.
func (h *HitMap) RowAt(x, y int) (HitRect, bool) {
	for i := len(h.rects) - 1; i >= 0; i-- {
		if h.rects[i].Kind == hitRow && h.rects[i].contains(x, y) {
			return h.rects[i], true
		}
	}
	return HitRect{}, false
}

// Len reports the number of registered rectangles.
func (h *HitMap) Len() int { return len(h.rects) }
