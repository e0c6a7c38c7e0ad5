package delin

// syntheticEvent is a single injected input event. Screen coordinates are
// used, identical to real mouse input.
type syntheticEvent struct {
	x, y      float64
	pressed   bool
	button    MouseButton
	modifiers KeyModifiers
	key       Key
	isKey     bool
}

// InjectPointer queues a raw pointer event with full button and modifier
// control. The event is consumed on the next Update.
func (e *Editor) InjectPointer(ev PointerEvent, pressed bool) {
	e.injectQueue = append(e.injectQueue, syntheticEvent{
		x: ev.X, y: ev.Y,
		pressed:   pressed,
		button:    ev.Button,
		modifiers: ev.Modifiers,
	})
}

// InjectPress queues a left-button press at the given screen coordinates.
func (e *Editor) InjectPress(x, y float64) {
	e.InjectPointer(PointerEvent{X: x, Y: y, Button: MouseButtonLeft}, true)
}

// InjectMove queues a pointer move with the button held down. Use this
// between InjectPress and InjectRelease to simulate a drag.
func (e *Editor) InjectMove(x, y float64) {
	e.InjectPointer(PointerEvent{X: x, Y: y, Button: MouseButtonLeft}, true)
}

// InjectHover queues a pointer move with no button held.
func (e *Editor) InjectHover(x, y float64) {
	e.InjectPointer(PointerEvent{X: x, Y: y, Button: MouseButtonLeft}, false)
}

// InjectRelease queues a pointer release at the given screen coordinates.
func (e *Editor) InjectRelease(x, y float64) {
	e.InjectPointer(PointerEvent{X: x, Y: y, Button: MouseButtonLeft}, false)
}

// InjectClick queues a press followed by a release at the same screen
// coordinates. Consumes two Updates.
func (e *Editor) InjectClick(x, y float64) {
	e.InjectPress(x, y)
	e.InjectRelease(x, y)
}

// InjectRightClick queues a right-button press and release.
func (e *Editor) InjectRightClick(x, y float64) {
	e.InjectPointer(PointerEvent{X: x, Y: y, Button: MouseButtonRight}, true)
	e.InjectPointer(PointerEvent{X: x, Y: y, Button: MouseButtonRight}, false)
}

// InjectDrag queues a full drag sequence: press at (fromX, fromY), linearly
// interpolated moves over frames-2 intermediate frames, and release at
// (toX, toY). The total sequence consumes `frames` Updates. Minimum frames
// is 2 (press + release).
func (e *Editor) InjectDrag(fromX, fromY, toX, toY float64, frames int) {
	if frames < 2 {
		frames = 2
	}
	e.InjectPress(fromX, fromY)
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps+1)
		e.InjectMove(fromX+(toX-fromX)*t, fromY+(toY-fromY)*t)
	}
	e.InjectRelease(toX, toY)
}

// InjectKey queues a key press with the given modifiers.
func (e *Editor) InjectKey(k Key, mods KeyModifiers) {
	e.injectQueue = append(e.injectQueue, syntheticEvent{
		key: k, modifiers: mods, isKey: true,
	})
}

// processInjected pops one event from the inject queue and feeds it through
// the same routing as real input. Returns true if an event was consumed
// (real input is skipped that frame).
func (e *Editor) processInjected() bool {
	if len(e.injectQueue) == 0 {
		return false
	}
	evt := e.injectQueue[0]
	copy(e.injectQueue, e.injectQueue[1:])
	e.injectQueue = e.injectQueue[:len(e.injectQueue)-1]

	if evt.isKey {
		e.routeKey(KeyEvent{Key: evt.key, Modifiers: evt.modifiers})
		return true
	}
	e.routePointer(evt.x, evt.y, evt.pressed, evt.button, evt.modifiers)
	return true
}
