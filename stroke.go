package delin

import (
	"time"

	"github.com/google/uuid"
)

// DefaultMinStrokeSpacingMM is the minimum patient-space distance between
// consecutive points of a finalized stroke.
const DefaultMinStrokeSpacingMM = 0.5

// ContourPoint is one captured pointer sample of a stroke. Immutable once
// appended.
type ContourPoint struct {
	ID       string
	Position Vec3 // patient space, mm
	Screen   Vec2 // capture-time screen pixels
	Index    int
	At       time.Time
}

// Stroke is a temporally ordered run of contour points on a single slice.
// It is appended to while a gesture is in progress, then emitted through the
// action sink and discarded; ownership of the point data passes to the
// consumer. A stroke never spans slices.
type Stroke struct {
	ID         string
	Points     []ContourPoint
	Closed     bool
	Complete   bool
	SliceIndex int
	SliceZ     float64
}

// PatientPoints returns the patient-space positions of all points.
func (s *Stroke) PatientPoints() []Vec3 {
	pts := make([]Vec3, len(s.Points))
	for i := range s.Points {
		pts[i] = s.Points[i].Position
	}
	return pts
}

// adaptiveMinStep returns the minimum screen-pixel distance between stored
// samples for a brush of the given radius: max(2, min(radius*0.3, 6)).
// Density scales with brush size so fast strokes don't explode the point
// count while slow, small-brush strokes keep their curvature.
func adaptiveMinStep(radius float64) float64 {
	step := radius * 0.3
	if step > 6 {
		step = 6
	}
	if step < 2 {
		step = 2
	}
	return step
}

// StrokeBuilder accumulates pointer samples for one gesture, rejecting
// samples closer than a minimum screen step to the previously stored one.
type StrokeBuilder struct {
	stroke  Stroke
	minStep float64
	clock   Clock
}

// NewStrokeBuilder starts an empty stroke on the given slice.
func NewStrokeBuilder(sliceIndex int, sliceZ float64, clock Clock) *StrokeBuilder {
	if clock == nil {
		clock = SystemClock{}
	}
	return &StrokeBuilder{
		stroke: Stroke{
			ID:         uuid.NewString(),
			SliceIndex: sliceIndex,
			SliceZ:     sliceZ,
		},
		minStep: 2,
		clock:   clock,
	}
}

// SetMinStep sets the minimum screen-pixel distance between stored samples.
func (b *StrokeBuilder) SetMinStep(px float64) {
	if px > 0 {
		b.minStep = px
	}
}

// Add stores a sample if it is at least the minimum step away from the last
// stored sample (the first sample is always stored). Reports whether the
// sample was kept.
func (b *StrokeBuilder) Add(screen Vec2, patient Vec3) bool {
	if n := len(b.stroke.Points); n > 0 {
		if screen.Dist(b.stroke.Points[n-1].Screen) < b.minStep {
			return false
		}
	}
	b.stroke.Points = append(b.stroke.Points, ContourPoint{
		ID:       uuid.NewString(),
		Position: patient,
		Screen:   screen,
		Index:    len(b.stroke.Points),
		At:       b.clock.Now(),
	})
	return true
}

// Len returns the number of stored samples.
func (b *StrokeBuilder) Len() int {
	return len(b.stroke.Points)
}

// Last returns the most recently stored sample.
func (b *StrokeBuilder) Last() (ContourPoint, bool) {
	if len(b.stroke.Points) == 0 {
		return ContourPoint{}, false
	}
	return b.stroke.Points[len(b.stroke.Points)-1], true
}

// Stroke returns the stroke under construction. The returned pointer stays
// valid until the builder is discarded.
func (b *StrokeBuilder) Stroke() *Stroke {
	return &b.stroke
}

// Finalize marks the stroke complete and returns its patient-space points
// decimated by the given minimum physical distance.
func (b *StrokeBuilder) Finalize(minDistMM float64) []Vec3 {
	b.stroke.Complete = true
	return decimate(b.stroke.PatientPoints(), minDistMM)
}

// decimate drops points closer than minDist mm to the previously kept
// point. The first point is always kept, and the final point is always kept
// so the stroke never loses its endpoint, even if it lands inside minDist.
func decimate(pts []Vec3, minDist float64) []Vec3 {
	if len(pts) <= 2 || minDist <= 0 {
		return pts
	}
	out := make([]Vec3, 1, len(pts))
	out[0] = pts[0]
	for i := 1; i < len(pts)-1; i++ {
		if pts[i].Dist(out[len(out)-1]) >= minDist {
			out = append(out, pts[i])
		}
	}
	return append(out, pts[len(pts)-1])
}
