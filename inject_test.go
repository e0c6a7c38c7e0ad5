package delin

import "testing"

func TestInjectDragFrameCount(t *testing.T) {
	ed, _, _, _ := newTestEditor(t)
	ed.InjectDrag(0, 0, 100, 0, 6)
	if len(ed.injectQueue) != 6 {
		t.Errorf("queue = %d events, want 6", len(ed.injectQueue))
	}
}

func TestInjectDragMinimumFrames(t *testing.T) {
	ed, _, _, _ := newTestEditor(t)
	ed.InjectDrag(0, 0, 100, 0, 0)
	// Clamped to press + release.
	if len(ed.injectQueue) != 2 {
		t.Errorf("queue = %d events, want 2", len(ed.injectQueue))
	}
}

func TestInjectDragInterpolatesLinearly(t *testing.T) {
	ed, _, _, _ := newTestEditor(t)
	ed.InjectDrag(0, 0, 100, 50, 6)
	// 4 intermediate moves at t = 1/5 .. 4/5.
	for i := 1; i <= 4; i++ {
		evt := ed.injectQueue[i]
		want := float64(i) / 5 * 100
		assertNear(t, "x", evt.x, want)
		assertNear(t, "y", evt.y, want/2)
	}
}

func TestInjectHoverMovesWithoutDrawing(t *testing.T) {
	ed, _, rec, _ := newTestEditor(t)
	ed.SetTool(NewBrushTool(ed))

	ed.InjectHover(50, 50)
	ed.InjectHover(90, 50)
	runUpdates(ed, 2)

	if ed.GestureActive() {
		t.Error("hover must not start a gesture")
	}
	if len(rec.actions) != 0 {
		t.Errorf("actions = %v", rec.kinds())
	}
}

func TestInjectKeyRoutesToTool(t *testing.T) {
	ed, vp, _, _ := newTestEditor(t)
	tool := NewPenTool(ed)
	ed.SetTool(tool)
	vp.Segments = append(vp.Segments,
		segmentFromPoints("seg", true, Vec3{X: 10}, Vec3{X: 20}, Vec3{X: 20, Y: 10}))

	ed.InjectKey(KeyC, ModCtrl)
	ed.Update()
	if tool.clipboard == nil {
		t.Error("Ctrl+C must reach the pen tool")
	}
}

func TestInjectedEventsSkipRealInput(t *testing.T) {
	// With injected events queued, attached real input is not read that
	// frame; with the queue empty and input detached, Update is inert.
	ed, _, rec, _ := newTestEditor(t)
	ed.SetTool(NewBrushTool(ed))
	runUpdates(ed, 3)
	if len(rec.actions) != 0 || ed.GestureActive() {
		t.Error("no input, no gestures")
	}
}
