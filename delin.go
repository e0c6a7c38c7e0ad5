package delin

import (
	"encoding/json"
	"fmt"
	"math"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// Premultiplication occurs at overlay submission time.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the default structure color when none is selected.
var ColorWhite = Color{1, 1, 1, 1}

// WithAlpha returns the color with its alpha replaced by a.
func (c Color) WithAlpha(a float64) Color {
	c.A = a
	return c
}

// Vec2 is a 2D vector used for screen and image-pixel positions.
type Vec2 struct {
	X, Y float64
}

// Dist returns the Euclidean distance between v and o.
func (v Vec2) Dist(o Vec2) float64 {
	dx := v.X - o.X
	dy := v.Y - o.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Vec3 is a 3D vector in patient space (millimeters).
type Vec3 struct {
	X, Y, Z float64
}

// Dist returns the Euclidean distance between v and o in mm.
func (v Vec3) Dist(o Vec3) float64 {
	dx := v.X - o.X
	dy := v.Y - o.Y
	dz := v.Z - o.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Rect is an axis-aligned rectangle in screen pixels. The coordinate system
// has its origin at the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Intersects reports whether r and other overlap.
func (r Rect) Intersects(other Rect) bool {
	return r.X <= other.X+other.Width &&
		r.X+r.Width >= other.X &&
		r.Y <= other.Y+other.Height &&
		r.Y+r.Height >= other.Y
}

// MouseButton identifies a mouse button.
type MouseButton uint8

const (
	MouseButtonLeft   MouseButton = iota // primary (left) mouse button
	MouseButtonRight                     // secondary (right) mouse button
	MouseButtonMiddle                    // middle mouse button
)

// KeyModifiers is a bitmask of keyboard modifier keys.
// Values can be combined with bitwise OR (e.g. ModShift | ModCtrl).
type KeyModifiers uint8

const (
	ModShift KeyModifiers = 1 << iota // Shift key
	ModCtrl                           // Control key
	ModAlt                            // Alt / Option key
	ModMeta                           // Meta / Command / Windows key
)

// ToolType identifies a contour editing tool.
type ToolType uint8

const (
	ToolNone       ToolType = iota // no tool active
	ToolBrush                      // freehand circular brush
	ToolSmartBrush                 // intensity-adaptive brush
	ToolErase                      // dedicated erase brush
	ToolPen                        // planar point-by-point / continuous pen
)

// String returns the lowercase tool name.
func (t ToolType) String() string {
	switch t {
	case ToolBrush:
		return "brush"
	case ToolSmartBrush:
		return "smart_brush"
	case ToolErase:
		return "erase"
	case ToolPen:
		return "pen"
	default:
		return "none"
	}
}

// Mode distinguishes additive from subtractive edits.
type Mode uint8

const (
	ModeAdd      Mode = iota // stroke adds to the structure
	ModeSubtract             // stroke is carved out of the structure
)

// String returns "add" or "subtract".
func (m Mode) String() string {
	if m == ModeSubtract {
		return "subtract"
	}
	return "add"
}

// MarshalJSON encodes the mode as its string name.
func (m Mode) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON decodes "add" or "subtract".
func (m *Mode) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "add":
		*m = ModeAdd
	case "subtract":
		*m = ModeSubtract
	default:
		return fmt.Errorf("unknown mode %q", s)
	}
	return nil
}

// Key identifies the keyboard keys the editor reacts to while a tool is
// active. Raw key state beyond this set is not routed to tools.
type Key uint8

const (
	KeyNone   Key = iota
	KeyC          // copy (with Ctrl)
	KeyX          // cut (with Ctrl)
	KeyV          // paste (with Ctrl)
	KeyDelete     // clear all local segments
	KeyEscape     // cancel the open segment
)

// PointerEvent carries one pointer sample in screen coordinates.
type PointerEvent struct {
	X, Y      float64
	Button    MouseButton
	Modifiers KeyModifiers
}

// KeyEvent carries one key press with the modifier state at press time.
type KeyEvent struct {
	Key       Key
	Modifiers KeyModifiers
}
