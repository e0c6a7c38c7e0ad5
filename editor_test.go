package delin

import (
	"testing"
	"time"
)

// actionRecorder captures every action the editor emits.
type actionRecorder struct {
	actions []Action
}

func (r *actionRecorder) HandleAction(a Action) {
	r.actions = append(r.actions, a)
}

func (r *actionRecorder) kinds() []ActionKind {
	ks := make([]ActionKind, len(r.actions))
	for i, a := range r.actions {
		ks[i] = a.Kind
	}
	return ks
}

// newTestEditor builds an editor on a manual clock and scheduler with one
// 200x200 viewport and a structure selected.
func newTestEditor(t *testing.T) (*Editor, *Viewport, *actionRecorder, *ManualClock) {
	t.Helper()
	clock := NewManualClock(time.Unix(1000, 0))
	rec := &actionRecorder{}
	ed := NewEditor(Config{
		Sink:      rec,
		Clock:     clock,
		Scheduler: &ManualScheduler{},
	})
	vp := ed.AddViewport(Rect{Width: 200, Height: 200})
	ed.SelectStructure("ptv", Color{R: 1, A: 1})
	return ed, vp, rec, clock
}

// runUpdates drains n frames.
func runUpdates(e *Editor, n int) {
	for i := 0; i < n; i++ {
		e.Update()
	}
}

// --- construction ---

func TestNewEditorDefaults(t *testing.T) {
	ed := NewEditor(Config{})
	if ed.Settings() == nil || ed.Ghosts() == nil {
		t.Fatal("editor must default its settings and ghost feed")
	}
	// A zero config editor must survive an update and a close.
	ed.Update()
	ed.Close()
}

func TestAddViewport(t *testing.T) {
	ed, vp, _, _ := newTestEditor(t)
	if len(ed.Viewports()) != 1 || ed.Viewports()[0] != vp {
		t.Fatal("viewport not registered")
	}
	if vp.ID == "" {
		t.Error("viewport needs an id")
	}
}

// --- injected gesture to action ---

func TestInjectDragEmitsBrushStroke(t *testing.T) {
	ed, _, rec, _ := newTestEditor(t)
	ed.SetTool(NewBrushTool(ed))

	ed.InjectDrag(20, 100, 180, 100, 6)
	runUpdates(ed, 6)

	if len(rec.actions) != 1 {
		t.Fatalf("actions = %v, want one brush_stroke", rec.kinds())
	}
	a := rec.actions[0]
	if a.Kind != ActionBrushStroke {
		t.Errorf("kind = %s", a.Kind)
	}
	if a.StructureID != "ptv" {
		t.Errorf("structure = %q", a.StructureID)
	}
	if a.Mode != ModeAdd {
		t.Errorf("mode = %s", a.Mode)
	}
	if len(a.Points) < 2 {
		t.Errorf("points = %d, want >= 2", len(a.Points))
	}
	// Identity plane: patient mm equal screen px here.
	assertNear(t, "first.X", a.Points[0].X, 20)
	assertNear(t, "last.X", a.Points[len(a.Points)-1].X, 180)
}

func TestOneInjectedEventPerUpdate(t *testing.T) {
	ed, _, rec, _ := newTestEditor(t)
	ed.SetTool(NewBrushTool(ed))

	ed.InjectPress(10, 10)
	ed.InjectRelease(10, 10)
	ed.Update()
	if len(rec.actions) != 0 {
		t.Fatal("release must not be consumed on the same frame as the press")
	}
	ed.Update()
	if len(rec.actions) != 1 {
		t.Fatalf("actions after both frames = %v", rec.kinds())
	}
}

func TestPressOutsideViewportIsSuppressed(t *testing.T) {
	ed, _, rec, _ := newTestEditor(t)
	ed.SetTool(NewBrushTool(ed))

	ed.InjectPress(500, 500)
	ed.InjectMove(50, 50) // re-entering does not start a gesture
	ed.InjectRelease(50, 50)
	runUpdates(ed, 3)

	if len(rec.actions) != 0 {
		t.Errorf("actions = %v, want none", rec.kinds())
	}
}

func TestLeavingViewportForceFinalizes(t *testing.T) {
	ed, _, rec, _ := newTestEditor(t)
	ed.SetTool(NewBrushTool(ed))

	ed.InjectPress(100, 100)
	ed.InjectMove(180, 100)
	ed.InjectMove(300, 100) // outside the 200x200 bounds
	ed.InjectMove(350, 100)
	ed.InjectRelease(350, 100)
	runUpdates(ed, 5)

	if len(rec.actions) != 1 {
		t.Fatalf("actions = %v, want exactly one", rec.kinds())
	}
	// Finalized at the last position inside the viewport.
	last := rec.actions[0].Points[len(rec.actions[0].Points)-1]
	assertNear(t, "last.X", last.X, 180)
	if ed.GestureActive() {
		t.Error("gesture must be over after the force finalize")
	}
}

// --- tool switching and close ---

func TestSetToolFlushesPreviousGesture(t *testing.T) {
	ed, _, rec, _ := newTestEditor(t)
	ed.SetTool(NewBrushTool(ed))

	ed.InjectPress(50, 50)
	ed.InjectMove(100, 50)
	runUpdates(ed, 2)
	if !ed.GestureActive() {
		t.Fatal("gesture should be in flight")
	}

	ed.SetTool(NewPenTool(ed))
	if len(rec.actions) != 1 || rec.actions[0].Kind != ActionBrushStroke {
		t.Fatalf("switch must finalize the brush stroke, got %v", rec.kinds())
	}
	if _, ok := ed.Ghosts().Active(ed.Viewports()[0].ID); ok {
		t.Error("ghost must end on tool switch")
	}
}

func TestCloseFlushesAndCancelsRedraw(t *testing.T) {
	clock := NewManualClock(time.Unix(1000, 0))
	sched := &ManualScheduler{}
	rec := &actionRecorder{}
	redraws := 0
	ed := NewEditor(Config{
		Sink: rec, Clock: clock, Scheduler: sched,
		OnRedraw: func() { redraws++ },
	})
	ed.AddViewport(Rect{Width: 200, Height: 200})
	ed.SelectStructure("ptv", ColorWhite)
	ed.SetTool(NewBrushTool(ed))

	ed.InjectPress(50, 50)
	ed.InjectMove(90, 50)
	runUpdates(ed, 2)

	ed.Close()
	if len(rec.actions) != 1 {
		t.Fatalf("close must finalize, got %v", rec.kinds())
	}
	sched.Fire()
	if redraws != 0 {
		t.Error("pending redraw must be canceled on close")
	}
	// Closed editors ignore further updates.
	ed.Update()
}

// --- redraw throttling ---

func TestRedrawThrottleCoalesces(t *testing.T) {
	clock := NewManualClock(time.Unix(1000, 0))
	sched := &ManualScheduler{}
	redraws := 0
	ed := NewEditor(Config{
		Clock: clock, Scheduler: sched,
		OnRedraw: func() { redraws++ },
	})

	// Clock frozen: only the first update schedules.
	runUpdates(ed, 5)
	if sched.Pending() != 1 {
		t.Fatalf("pending = %d, want 1", sched.Pending())
	}
	sched.Fire()
	if redraws != 1 {
		t.Fatalf("redraws = %d, want 1", redraws)
	}

	// Past the idle interval another one goes through.
	clock.Advance(idleRedrawInterval)
	ed.Update()
	sched.Fire()
	if redraws != 2 {
		t.Errorf("redraws = %d, want 2", redraws)
	}
}

// --- no structure selected ---

func TestNoStructureSelectedDropsActions(t *testing.T) {
	clock := NewManualClock(time.Unix(1000, 0))
	rec := &actionRecorder{}
	ed := NewEditor(Config{Sink: rec, Clock: clock, Scheduler: &ManualScheduler{}})
	ed.AddViewport(Rect{Width: 200, Height: 200})
	ed.SetTool(NewBrushTool(ed))

	ed.InjectDrag(20, 20, 120, 20, 4)
	runUpdates(ed, 4)
	if len(rec.actions) != 0 {
		t.Errorf("actions = %v, want none without a structure", rec.kinds())
	}
}

// --- explicit operations ---

func TestExplicitPredictionOperations(t *testing.T) {
	ed, vp, rec, _ := newTestEditor(t)
	vp.SetSlice(0)

	ed.AcceptPredictions()
	ed.RejectPredictions()
	ed.TriggerPrediction()
	ed.PreviewGrow(3)
	ed.ApplyGrow(-2)

	want := []ActionKind{
		ActionAcceptPredictions, ActionRejectPredictions,
		ActionTriggerPrediction, ActionPreviewGrow, ActionApplyGrow,
	}
	got := rec.kinds()
	if len(got) != len(want) {
		t.Fatalf("kinds = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("kind %d = %s, want %s", i, got[i], want[i])
		}
	}
	assertNear(t, "grow margin", rec.actions[3].MarginMM, 3)
	assertNear(t, "shrink margin", rec.actions[4].MarginMM, -2)
}

func TestExplicitOperationsNeedAViewport(t *testing.T) {
	rec := &actionRecorder{}
	ed := NewEditor(Config{Sink: rec})
	ed.SelectStructure("ptv", ColorWhite)
	ed.AcceptPredictions()
	if len(rec.actions) != 0 {
		t.Error("no viewport mounted, nothing should be emitted")
	}
}

// --- marching ants ---

func TestAntsPhaseAdvances(t *testing.T) {
	ed, _, _, clock := newTestEditor(t)
	ed.Update() // primes lastTick
	clock.Advance(100 * time.Millisecond)
	ed.Update()
	if ed.AntsPhase() <= 0 {
		t.Errorf("antsPhase = %v, want > 0", ed.AntsPhase())
	}
	// 100 ms of a 500 ms cycle over 10 px. The tween runs in float32.
	if p := ed.AntsPhase(); p < 2-1e-4 || p > 2+1e-4 {
		t.Errorf("antsPhase = %v, want ~2", p)
	}
}

func TestAntsPhaseLoops(t *testing.T) {
	ed, _, _, clock := newTestEditor(t)
	ed.Update()
	for i := 0; i < 12; i++ {
		clock.Advance(100 * time.Millisecond)
		ed.Update()
	}
	if ed.AntsPhase() < 0 || ed.AntsPhase() > antsPeriodPx {
		t.Errorf("antsPhase = %v, out of range", ed.AntsPhase())
	}
}
