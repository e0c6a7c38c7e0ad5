package delin

// minZoom is the smallest scale the pan/zoom controller will set. Converters
// never observe a non-positive scale.
const minZoom = 0.05

// ViewTransform is the zoom/pan state of one viewport:
// screen = image*Scale + Offset.
type ViewTransform struct {
	Scale            float64
	OffsetX, OffsetY float64
	// ImageW and ImageH are the pixel dimensions of the displayed slice,
	// used for fit-to-viewport computations. Zero when unknown.
	ImageW, ImageH int
}

// IdentityView is the default view: 1:1 scale, no pan.
func IdentityView() ViewTransform {
	return ViewTransform{Scale: 1}
}

// matrix returns the affine image→screen matrix.
func (v ViewTransform) matrix() [6]float64 {
	return [6]float64{v.Scale, 0, 0, v.Scale, v.OffsetX, v.OffsetY}
}

// ImageToScreen converts an image-pixel position to screen pixels.
func (v ViewTransform) ImageToScreen(ix, iy float64) (sx, sy float64) {
	return transformPoint(v.matrix(), ix, iy)
}

// ScreenToImage converts a screen-pixel position to image pixels.
func (v ViewTransform) ScreenToImage(sx, sy float64) (ix, iy float64) {
	return transformPoint(invertAffine(v.matrix()), sx, sy)
}

// ViewCell is a shared mutable cell holding the current ViewTransform of a
// viewport. It is deliberately non-reactive: the pan/zoom controller is the
// single writer, and tools and the draw loop re-read it each tick instead of
// subscribing to changes. All access happens on the UI goroutine; there is
// no locking.
type ViewCell struct {
	v ViewTransform
}

// NewViewCell creates a cell initialized to the identity view.
func NewViewCell() *ViewCell {
	return &ViewCell{v: IdentityView()}
}

// Get returns the current transform.
func (c *ViewCell) Get() ViewTransform {
	return c.v
}

// Set replaces the transform, clamping Scale to the minimum zoom.
// Only the pan/zoom controller should call this.
func (c *ViewCell) Set(v ViewTransform) {
	if v.Scale < minZoom {
		v.Scale = minZoom
	}
	c.v = v
}

// Pan shifts the view offset by (dx, dy) screen pixels.
func (c *ViewCell) Pan(dx, dy float64) {
	c.v.OffsetX += dx
	c.v.OffsetY += dy
}

// ZoomAt scales the view by factor about the screen point (sx, sy), so the
// image point under the cursor stays fixed.
func (c *ViewCell) ZoomAt(factor, sx, sy float64) {
	s := c.v.Scale * factor
	if s < minZoom {
		s = minZoom
	}
	factor = s / c.v.Scale
	c.v.OffsetX = sx + (c.v.OffsetX-sx)*factor
	c.v.OffsetY = sy + (c.v.OffsetY-sy)*factor
	c.v.Scale = s
}
