package delin

import (
	"time"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// antsPeriodPx is one dash cycle of the marching-ants pattern (on + off),
// and antsCycleSeconds how long one cycle takes to march.
const (
	dashOnPx         = 6.0
	dashOffPx        = 4.0
	antsPeriodPx     = dashOnPx + dashOffPx
	antsCycleSeconds = 0.5
)

// Config configures an Editor. Zero-value fields get production defaults:
// a system clock, a tick scheduler driven by Update, an in-memory settings
// store, and a discarding sink.
type Config struct {
	Sink      ActionSink
	Settings  *Settings
	Clock     Clock
	Scheduler FrameScheduler
	// OnRedraw, when set, is the frame callback scheduled (throttled)
	// whenever overlay state changes.
	OnRedraw func()
}

// Editor owns the viewports, the ghost feed, the active tool, and the
// structure selection, and routes pointer and key events to the active tool
// for the viewport under the cursor. Everything runs on the UI goroutine.
type Editor struct {
	viewports []*Viewport
	ghosts    *GhostFeed
	settings  *Settings
	sink      ActionSink
	clock     Clock
	sched     FrameScheduler
	ownSched  *TickScheduler // non-nil when the editor drives its own ticks

	tool Tool

	structureID    string
	structureColor Color

	pointer struct {
		down       bool
		button     MouseButton
		vp         *Viewport
		lastX      float64
		lastY      float64
		suppressed bool // press began outside any viewport or was force-ended
	}

	injectQueue []syntheticEvent
	script      *GestureScript

	throttle      drawThrottle
	pendingRedraw CancelFunc
	onRedraw      func()

	antsTween *gween.Tween
	antsPhase float64
	lastTick  time.Time

	attachReal bool
	closed     bool
}

// NewEditor creates an editor from the config.
func NewEditor(cfg Config) *Editor {
	e := &Editor{
		ghosts:         nil,
		sink:           cfg.Sink,
		settings:       cfg.Settings,
		clock:          cfg.Clock,
		sched:          cfg.Scheduler,
		onRedraw:       cfg.OnRedraw,
		structureColor: ColorWhite,
	}
	if e.clock == nil {
		e.clock = SystemClock{}
	}
	if e.settings == nil {
		e.settings = NewSettings(&MemoryStore{})
	}
	if e.sink == nil {
		e.sink = ActionSinkFunc(func(Action) {})
	}
	if e.sched == nil {
		e.ownSched = &TickScheduler{}
		e.sched = e.ownSched
	}
	e.ghosts = NewGhostFeed(e.clock)
	e.throttle = drawThrottle{clock: e.clock}
	e.antsTween = gween.New(0, antsPeriodPx, antsCycleSeconds, ease.Linear)
	return e
}

// AddViewport mounts a new viewport at the given screen bounds.
func (e *Editor) AddViewport(bounds Rect) *Viewport {
	vp := NewViewport(bounds)
	e.viewports = append(e.viewports, vp)
	return vp
}

// Viewports returns the mounted viewports.
func (e *Editor) Viewports() []*Viewport {
	return e.viewports
}

// Ghosts returns the cross-viewport ghost feed.
func (e *Editor) Ghosts() *GhostFeed {
	return e.ghosts
}

// Settings returns the settings service.
func (e *Editor) Settings() *Settings {
	return e.settings
}

// SetTool switches the active tool, synchronously flushing any in-progress
// gesture of the previous tool first.
func (e *Editor) SetTool(t Tool) {
	e.flushTool()
	e.tool = t
}

// Tool returns the active tool, nil when none is set.
func (e *Editor) Tool() Tool {
	return e.tool
}

// SelectStructure sets the structure edits apply to. Gestures finalized
// with no structure selected are silent no-ops.
func (e *Editor) SelectStructure(id string, color Color) {
	e.structureID = id
	e.structureColor = color
}

// SelectedStructure returns the selected structure id and color.
func (e *Editor) SelectedStructure() (string, Color) {
	return e.structureID, e.structureColor
}

// AttachInput enables reading real mouse and keyboard state each Update.
// Leave detached for tests and script-driven runs.
func (e *Editor) AttachInput(attach bool) {
	e.attachReal = attach
}

// Update drains injected input (or reads real input when attached), routes
// events to the active tool, advances animations, and schedules at most one
// throttled redraw. Call once per host frame.
func (e *Editor) Update() {
	if e.closed {
		return
	}
	if e.ownSched != nil {
		e.ownSched.Tick()
	}

	now := e.clock.Now()
	var dt float32
	if !e.lastTick.IsZero() {
		dt = float32(now.Sub(e.lastTick).Seconds())
	}
	e.lastTick = now
	e.advanceAnts(dt)

	if e.script != nil {
		e.script.step(e)
	}

	if !e.processInjected() && e.attachReal {
		e.processRealInput()
	}

	e.requestRedraw()
}

// Close synchronously flushes any in-progress gesture and cancels the
// pending frame callback. The editor is unusable afterwards.
func (e *Editor) Close() {
	if e.closed {
		return
	}
	e.flushTool()
	if e.pendingRedraw != nil {
		e.pendingRedraw()
		e.pendingRedraw = nil
	}
	e.closed = true
}

// GestureActive reports whether the active tool has a gesture in progress.
func (e *Editor) GestureActive() bool {
	return e.tool != nil && e.tool.Active()
}

// AntsPhase returns the current marching-ants dash offset in pixels.
func (e *Editor) AntsPhase() float64 {
	return e.antsPhase
}

// --- explicit operations (not gesture-driven) ---

// AcceptPredictions emits accept_predictions for the selected structure.
func (e *Editor) AcceptPredictions() {
	e.emitSimple(ActionAcceptPredictions, 0)
}

// RejectPredictions emits reject_predictions for the selected structure.
func (e *Editor) RejectPredictions() {
	e.emitSimple(ActionRejectPredictions, 0)
}

// TriggerPrediction emits trigger_prediction for the selected structure.
func (e *Editor) TriggerPrediction() {
	e.emitSimple(ActionTriggerPrediction, 0)
}

// PreviewGrow emits preview_grow_structure with the margin in mm.
// Negative margins shrink.
func (e *Editor) PreviewGrow(marginMM float64) {
	e.emitSimple(ActionPreviewGrow, marginMM)
}

// ApplyGrow emits apply_grow_structure with the margin in mm.
func (e *Editor) ApplyGrow(marginMM float64) {
	e.emitSimple(ActionApplyGrow, marginMM)
}

func (e *Editor) emitSimple(kind ActionKind, marginMM float64) {
	vp := e.focusedViewport()
	if vp == nil {
		return
	}
	e.emit(Action{
		Kind:        kind,
		StructureID: e.structureID,
		SliceIndex:  vp.Slice(),
		SliceZ:      vp.SliceZ(),
		MarginMM:    marginMM,
	})
}

// --- internals ---

// emit delivers a finalized action to the sink. Invalid payloads (no
// structure selected, stroke kinds without points) are silent no-ops per
// the degradation policy; they are logged in debug mode only.
func (e *Editor) emit(a Action) {
	if err := a.Validate(); err != nil {
		debugf("drop action: %v", err)
		return
	}
	e.sink.HandleAction(a)
}

// flushTool synchronously ends the active tool's gesture and its ghost.
func (e *Editor) flushTool() {
	if e.tool == nil {
		return
	}
	e.tool.Flush(e.pointer.vp)
	e.pointer.down = false
	e.pointer.suppressed = false
}

// focusedViewport is the gesture viewport if one is active, else the
// viewport under the cursor, else the first mounted one.
func (e *Editor) focusedViewport() *Viewport {
	if e.pointer.vp != nil {
		return e.pointer.vp
	}
	if vp := e.viewportAt(e.pointer.lastX, e.pointer.lastY); vp != nil {
		return vp
	}
	if len(e.viewports) > 0 {
		return e.viewports[0]
	}
	return nil
}

// viewportAt returns the viewport whose bounds contain (x, y).
func (e *Editor) viewportAt(x, y float64) *Viewport {
	for _, vp := range e.viewports {
		if vp.Bounds.Contains(x, y) {
			return vp
		}
	}
	return nil
}

// routePointer runs the single-pointer state machine. A gesture is captured
// by the viewport it started in; leaving that viewport's bounds while
// drawing force-finalizes at the last inside position.
func (e *Editor) routePointer(x, y float64, pressed bool, button MouseButton, mods KeyModifiers) {
	if e.tool == nil {
		e.pointer.lastX, e.pointer.lastY = x, y
		return
	}
	ev := PointerEvent{X: x, Y: y, Button: button, Modifiers: mods}

	switch {
	case pressed && !e.pointer.down:
		vp := e.viewportAt(x, y)
		e.pointer.down = true
		e.pointer.button = button
		e.pointer.vp = vp
		e.pointer.suppressed = vp == nil
		if vp != nil {
			e.tool.Down(vp, ev)
		}

	case pressed && e.pointer.down:
		if e.pointer.suppressed {
			break
		}
		vp := e.pointer.vp
		if !vp.Bounds.Contains(x, y) {
			// Pointer left the owning viewport mid-gesture: finalize at
			// the last inside position and ignore until release.
			e.tool.Up(vp, PointerEvent{
				X: e.pointer.lastX, Y: e.pointer.lastY,
				Button: e.pointer.button, Modifiers: mods,
			})
			e.pointer.suppressed = true
			break
		}
		ev.Button = e.pointer.button
		e.tool.Move(vp, ev)

	case !pressed && e.pointer.down:
		if !e.pointer.suppressed {
			ev.Button = e.pointer.button
			e.tool.Up(e.pointer.vp, ev)
		}
		e.pointer.down = false
		e.pointer.vp = nil
		e.pointer.suppressed = false

	default: // hover
		if vp := e.viewportAt(x, y); vp != nil {
			e.tool.Move(vp, ev)
		}
	}
	e.pointer.lastX, e.pointer.lastY = x, y
}

// routeKey delivers a key press to the active tool.
func (e *Editor) routeKey(ev KeyEvent) {
	if e.tool == nil {
		return
	}
	vp := e.focusedViewport()
	if vp == nil {
		return
	}
	e.tool.KeyDown(vp, ev)
}

// advanceAnts moves the marching-ants phase, looping the tween.
func (e *Editor) advanceAnts(dt float32) {
	if dt <= 0 {
		return
	}
	phase, done := e.antsTween.Update(dt)
	e.antsPhase = float64(phase)
	if done {
		e.antsTween = gween.New(0, antsPeriodPx, antsCycleSeconds, ease.Linear)
	}
}

// requestRedraw schedules the redraw callback, coalesced to ~120 Hz during
// a gesture and 30 Hz idle. At most one callback is pending at a time.
func (e *Editor) requestRedraw() {
	if e.onRedraw == nil {
		return
	}
	if !e.throttle.allow(e.GestureActive()) {
		return
	}
	if e.pendingRedraw != nil {
		e.pendingRedraw()
	}
	fn := e.onRedraw
	e.pendingRedraw = e.sched.Request(func() {
		e.pendingRedraw = nil
		fn()
	})
}
