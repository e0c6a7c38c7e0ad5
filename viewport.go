package delin

import (
	"math"

	"github.com/google/uuid"
)

// segmentHitDistance is the maximum screen-pixel distance from a completed
// segment polyline for HitSegment to report a hit.
const segmentHitDistance = 8.0

// Viewport is one mounted slice view: a stack of slice planes, the current
// slice, the zoom/pan cell, and the completed segments drawn locally this
// session. Viewports share an Editor; the editor routes input to whichever
// viewport the cursor is over.
type Viewport struct {
	ID string
	// Bounds is the screen-space rectangle the viewport occupies.
	Bounds Rect

	planes       []SlicePlane
	grids        []*IntensityGrid // parallel to planes; entries may be nil
	sliceSpacing float64
	slice        int

	view *ViewCell

	// Segments holds completed, not-yet-discarded local segments, most
	// recent last. The pen tool's clipboard and remove-segment picking
	// read from here.
	Segments []Stroke
}

// NewViewport creates a viewport showing the identity plane at slice 0.
func NewViewport(bounds Rect) *Viewport {
	return &Viewport{
		ID:           uuid.NewString(),
		Bounds:       bounds,
		planes:       []SlicePlane{IdentityPlane()},
		grids:        []*IntensityGrid{nil},
		sliceSpacing: 1,
		view:         NewViewCell(),
	}
}

// SetSeries installs the slice planes, intensity grids, and spacing of a
// loaded series. Grids may be nil or shorter than planes. The current slice
// is clamped into range.
func (vp *Viewport) SetSeries(planes []SlicePlane, grids []*IntensityGrid, sliceSpacing float64) {
	if len(planes) == 0 {
		planes = []SlicePlane{IdentityPlane()}
	}
	vp.planes = planes
	vp.grids = make([]*IntensityGrid, len(planes))
	copy(vp.grids, grids)
	if sliceSpacing > 0 {
		vp.sliceSpacing = sliceSpacing
	} else {
		vp.sliceSpacing = 1
	}
	if vp.slice >= len(planes) {
		vp.slice = len(planes) - 1
	}
}

// View returns the zoom/pan cell. The pan/zoom controller writes it; tools
// and the draw loop re-read it every tick.
func (vp *Viewport) View() *ViewCell {
	return vp.view
}

// SliceCount returns the number of slices.
func (vp *Viewport) SliceCount() int {
	return len(vp.planes)
}

// Slice returns the current slice index.
func (vp *Viewport) Slice() int {
	return vp.slice
}

// SetSlice moves to the given slice, clamped into range.
func (vp *Viewport) SetSlice(i int) {
	if i < 0 {
		i = 0
	}
	if i >= len(vp.planes) {
		i = len(vp.planes) - 1
	}
	vp.slice = i
}

// Plane returns the current slice's plane.
func (vp *Viewport) Plane() SlicePlane {
	return vp.planes[vp.slice]
}

// Intensity returns the current slice's intensity grid, or nil when pixel
// data was not loaded for it.
func (vp *Viewport) Intensity() *IntensityGrid {
	if vp.slice < len(vp.grids) {
		return vp.grids[vp.slice]
	}
	return nil
}

// SliceSpacing returns the mm distance between adjacent slices.
func (vp *Viewport) SliceSpacing() float64 {
	return vp.sliceSpacing
}

// SliceZ returns the current slice's position along the plane normal, mm.
func (vp *Viewport) SliceZ() float64 {
	return vp.Plane().Z()
}

// ScreenToPatient composes the view and plane transforms: screen pixels to
// patient-space mm on the current slice.
func (vp *Viewport) ScreenToPatient(sx, sy float64) Vec3 {
	ix, iy := vp.view.Get().ScreenToImage(sx, sy)
	return vp.Plane().ImageToPatient(ix, iy)
}

// PatientToScreen projects a patient-space point onto the current slice and
// returns its screen position.
func (vp *Viewport) PatientToScreen(p Vec3) (sx, sy float64) {
	ix, iy := vp.Plane().PatientToImage(p)
	return vp.view.Get().ImageToScreen(ix, iy)
}

// ScreenToImage converts screen pixels to image pixels via the view cell.
func (vp *Viewport) ScreenToImage(sx, sy float64) (ix, iy float64) {
	return vp.view.Get().ScreenToImage(sx, sy)
}

// HitSegment returns the ID of the completed segment whose polyline passes
// within 8 screen pixels of (sx, sy), preferring the most recent, for
// remove-segment picking.
func (vp *Viewport) HitSegment(sx, sy float64) (string, bool) {
	for i := len(vp.Segments) - 1; i >= 0; i-- {
		seg := &vp.Segments[i]
		if vp.segmentDistance(seg, sx, sy) <= segmentHitDistance {
			return seg.ID, true
		}
	}
	return "", false
}

// RemoveSegment deletes the completed segment with the given ID.
// Reports whether it existed.
func (vp *Viewport) RemoveSegment(id string) bool {
	for i := range vp.Segments {
		if vp.Segments[i].ID == id {
			vp.Segments = append(vp.Segments[:i], vp.Segments[i+1:]...)
			return true
		}
	}
	return false
}

// segmentDistance returns the minimum screen distance from (sx, sy) to the
// segment's polyline, projecting each stored point through the current
// view. Closed segments include the closing edge.
func (vp *Viewport) segmentDistance(seg *Stroke, sx, sy float64) float64 {
	n := len(seg.Points)
	if n == 0 {
		return math.Inf(1)
	}
	screen := make([]Vec2, n)
	for i := range seg.Points {
		x, y := vp.PatientToScreen(seg.Points[i].Position)
		screen[i] = Vec2{X: x, Y: y}
	}
	if n == 1 {
		return screen[0].Dist(Vec2{X: sx, Y: sy})
	}
	min := math.Inf(1)
	edges := n - 1
	if seg.Closed {
		edges = n
	}
	for i := 0; i < edges; i++ {
		d := pointSegmentDistance(Vec2{X: sx, Y: sy}, screen[i], screen[(i+1)%n])
		if d < min {
			min = d
		}
	}
	return min
}

// pointSegmentDistance returns the distance from p to the segment ab.
func pointSegmentDistance(p, a, b Vec2) float64 {
	abx := b.X - a.X
	aby := b.Y - a.Y
	lenSq := abx*abx + aby*aby
	if lenSq == 0 {
		return p.Dist(a)
	}
	t := ((p.X-a.X)*abx + (p.Y-a.Y)*aby) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return p.Dist(Vec2{X: a.X + t*abx, Y: a.Y + t*aby})
}
