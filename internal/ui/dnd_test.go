package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func dndFixture() *HitMap {
	hm := &HitMap{}
	hm.Add(HitRect{Kind: hitHeader, Priority: "Low", X: 0, Y: 0, W: 60, H: 1})
	hm.Add(HitRect{Kind: hitRow, TaskID: 1, Priority: "High", X: 0, Y: 1, W: 60, H: 3})
	hm.Add(HitRect{Kind: hitRow, TaskID: 2, Priority: "High", X: 0, Y: 4, W: 60, H: 4})
	hm.Add(HitRect{Kind: hitToggle, TaskID: 1, X: 28, Y: 1, W: 3, H: 1})
	return hm
}

func mouse(action tea.MouseAction, button tea.MouseButton, x, y int) tea.MouseMsg {
	return tea.MouseMsg{Action: action, Button: button, X: x, Y: y}
}

func TestPressOnRowArmsDrag(t *testing.T) {
	hm := dndFixture()
	var d dragState
	d.press(mouse(tea.MouseActionPress, tea.MouseButtonLeft, 5, 2), hm)
	if d.phase != dragArmed || d.sourceID != 1 {
		t.Fatalf("expected armed drag on task 1, got phase=%v source=%d", d.phase, d.sourceID)
	}
	if d.active() {
		t.Fatal("armed drag must not report active")
	}
}

func TestPressOnHeaderOrEmptyDoesNotArm(t *testing.T) {
	hm := dndFixture()
	var d dragState
	d.press(mouse(tea.MouseActionPress, tea.MouseButtonLeft, 5, 0), hm)
	if d.phase != dragIdle {
		t.Fatalf("header press should stay idle, got %v", d.phase)
	}
	d.press(mouse(tea.MouseActionPress, tea.MouseButtonLeft, 5, 30), hm)
	if d.phase != dragIdle {
		t.Fatalf("empty-space press should stay idle, got %v", d.phase)
	}
}

func TestRightButtonNeverArms(t *testing.T) {
	hm := dndFixture()
	var d dragState
	d.press(mouse(tea.MouseActionPress, tea.MouseButtonRight, 5, 2), hm)
	if d.phase != dragIdle {
		t.Fatalf("right-button press should stay idle, got %v", d.phase)
	}
}

func TestMotionBelowThresholdStaysArmed(t *testing.T) {
	hm := dndFixture()
	var d dragState
	d.press(mouse(tea.MouseActionPress, tea.MouseButtonLeft, 5, 2), hm)
	d.motion(mouse(tea.MouseActionMotion, tea.MouseButtonNone, 6, 2))
	if d.phase != dragArmed {
		t.Fatalf("one cell of travel should stay armed, got %v", d.phase)
	}
	d.motion(mouse(tea.MouseActionMotion, tea.MouseButtonNone, 6, 3))
	if !d.active() {
		t.Fatal("threshold travel should activate the drag")
	}
}

func TestClickResolvesToDropNone(t *testing.T) {
	hm := dndFixture()
	var d dragState
	d.press(mouse(tea.MouseActionPress, tea.MouseButtonLeft, 5, 2), hm)
	action := d.release(mouse(tea.MouseActionRelease, tea.MouseButtonLeft, 5, 2), hm)
	if action.Kind != dropNone {
		t.Fatalf("press-release without travel should be a click, got %v", action.Kind)
	}
	if d.phase != dragIdle {
		t.Fatalf("release must reset the machine, got %v", d.phase)
	}
}

func TestReleaseOnHeaderDropsOntoSection(t *testing.T) {
	hm := dndFixture()
	var d dragState
	d.press(mouse(tea.MouseActionPress, tea.MouseButtonLeft, 5, 2), hm)
	d.motion(mouse(tea.MouseActionMotion, tea.MouseButtonNone, 5, 0))
	action := d.release(mouse(tea.MouseActionRelease, tea.MouseButtonLeft, 5, 0), hm)
	if action.Kind != dropOnHeader || action.Priority != "Low" || action.SourceID != 1 {
		t.Fatalf("expected drop of task 1 onto Low header, got %+v", action)
	}
}

func TestReleaseOnRowCarriesZone(t *testing.T) {
	hm := dndFixture()
	var d dragState
	d.press(mouse(tea.MouseActionPress, tea.MouseButtonLeft, 5, 2), hm)
	d.motion(mouse(tea.MouseActionMotion, tea.MouseButtonNone, 5, 5))
	action := d.release(mouse(tea.MouseActionRelease, tea.MouseButtonLeft, 5, 5), hm)
	if action.Kind != dropOnNode || action.TargetID != 2 {
		t.Fatalf("expected drop on task 2, got %+v", action)
	}
	if action.Zone != zoneInto {
		t.Fatalf("middle of row 2 should be zoneInto, got %v", action.Zone)
	}

	d.press(mouse(tea.MouseActionPress, tea.MouseButtonLeft, 5, 2), hm)
	d.motion(mouse(tea.MouseActionMotion, tea.MouseButtonNone, 5, 7))
	action = d.release(mouse(tea.MouseActionRelease, tea.MouseButtonLeft, 5, 7), hm)
	if action.Kind != dropOnNode || action.Zone != zoneBelow {
		t.Fatalf("bottom border should be zoneBelow, got %+v", action)
	}
}

func TestReleaseOnSelfCancels(t *testing.T) {
	hm := dndFixture()
	var d dragState
	d.press(mouse(tea.MouseActionPress, tea.MouseButtonLeft, 5, 2), hm)
	d.motion(mouse(tea.MouseActionMotion, tea.MouseButtonNone, 8, 2))
	action := d.release(mouse(tea.MouseActionRelease, tea.MouseButtonLeft, 8, 2), hm)
	if action.Kind != dropCancelled {
		t.Fatalf("dropping a task onto itself should cancel, got %v", action.Kind)
	}
}

func TestReleaseOnEmptySpace(t *testing.T) {
	hm := dndFixture()
	var d dragState
	d.press(mouse(tea.MouseActionPress, tea.MouseButtonLeft, 5, 2), hm)
	d.motion(mouse(tea.MouseActionMotion, tea.MouseButtonNone, 5, 30))
	action := d.release(mouse(tea.MouseActionRelease, tea.MouseButtonLeft, 5, 30), hm)
	if action.Kind != dropOnEmpty {
		t.Fatalf("expected dropOnEmpty, got %v", action.Kind)
	}
}

func TestCancelAbortsActiveDrag(t *testing.T) {
	hm := dndFixture()
	var d dragState
	d.press(mouse(tea.MouseActionPress, tea.MouseButtonLeft, 5, 2), hm)
	d.motion(mouse(tea.MouseActionMotion, tea.MouseButtonNone, 5, 6))
	action := d.cancel()
	if action.Kind != dropCancelled || action.SourceID != 1 {
		t.Fatalf("expected cancelled drag of task 1, got %+v", action)
	}
	if d.phase != dragIdle {
		t.Fatalf("cancel must reset the machine, got %v", d.phase)
	}

	action = d.cancel()
	if action.Kind != dropNone {
		t.Fatalf("cancel with nothing in flight should be a no-op, got %v", action.Kind)
	}
}

func TestHoverOnlyWhileActive(t *testing.T) {
	hm := dndFixture()
	var d dragState
	if _, _, ok := d.hover(); ok {
		t.Fatal("idle drag must not report hover")
	}
	d.press(mouse(tea.MouseActionPress, tea.MouseButtonLeft, 5, 2), hm)
	if _, _, ok := d.hover(); ok {
		t.Fatal("armed drag must not report hover")
	}
	d.motion(mouse(tea.MouseActionMotion, tea.MouseButtonNone, 5, 6))
	x, y, ok := d.hover()
	if !ok || x != 5 || y != 6 {
		t.Fatalf("expected hover at 5,6, got %d,%d ok=%v", x, y, ok)
	}
}
