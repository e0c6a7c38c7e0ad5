package delin

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// readModifiers reads the current keyboard modifier state.
func readModifiers() KeyModifiers {
	var mods KeyModifiers
	if ebiten.IsKeyPressed(ebiten.KeyShift) || ebiten.IsKeyPressed(ebiten.KeyShiftLeft) || ebiten.IsKeyPressed(ebiten.KeyShiftRight) {
		mods |= ModShift
	}
	if ebiten.IsKeyPressed(ebiten.KeyControl) || ebiten.IsKeyPressed(ebiten.KeyControlLeft) || ebiten.IsKeyPressed(ebiten.KeyControlRight) {
		mods |= ModCtrl
	}
	if ebiten.IsKeyPressed(ebiten.KeyAlt) || ebiten.IsKeyPressed(ebiten.KeyAltLeft) || ebiten.IsKeyPressed(ebiten.KeyAltRight) {
		mods |= ModAlt
	}
	if ebiten.IsKeyPressed(ebiten.KeyMeta) || ebiten.IsKeyPressed(ebiten.KeyMetaLeft) || ebiten.IsKeyPressed(ebiten.KeyMetaRight) {
		mods |= ModMeta
	}
	return mods
}

// routedKeys maps the ebiten keys the tools react to onto the editor's Key
// set.
var routedKeys = [...]struct {
	ebiten ebiten.Key
	key    Key
}{
	{ebiten.KeyC, KeyC},
	{ebiten.KeyX, KeyX},
	{ebiten.KeyV, KeyV},
	{ebiten.KeyDelete, KeyDelete},
	{ebiten.KeyEscape, KeyEscape},
}

// processRealInput reads the live mouse and keyboard state and feeds it
// through the same routing as injected input. Touch is not supported:
// contour editing is a precision mouse interaction.
func (e *Editor) processRealInput() {
	mods := readModifiers()

	mx, my := ebiten.CursorPosition()
	x, y := float64(mx), float64(my)

	// Detect which button is pressed. If the pointer is already down, keep
	// the stored button so it cannot change mid-gesture.
	var pressed bool
	button := MouseButtonLeft
	left := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	right := ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight)
	middle := ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle)
	if left || right || middle {
		pressed = true
		if left {
			button = MouseButtonLeft
		} else if right {
			button = MouseButtonRight
		} else {
			button = MouseButtonMiddle
		}
	}
	if e.pointer.down {
		button = e.pointer.button
	}
	e.routePointer(x, y, pressed, button, mods)

	for _, rk := range routedKeys {
		if inpututil.IsKeyJustPressed(rk.ebiten) {
			e.routeKey(KeyEvent{Key: rk.key, Modifiers: mods})
		}
	}
}
