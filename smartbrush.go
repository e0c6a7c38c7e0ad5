package delin

import (
	"math"

	polyclip "github.com/akavel/polyclip-go"
	"gonum.org/v1/gonum/stat"
)

const (
	// stampRays is the radial resolution used for temporal stamp blending.
	stampRays = 64
	// Temporal smoothing weights: 70% current frame, 30% previous.
	blendNew  = 0.7
	blendPrev = 0.3
	// circleStampSegments is the vertex count of the fallback circular stamp.
	circleStampSegments = 32
)

// SmartBrushTool paints with an intensity-adaptive stamp: each pointer
// sample thresholds the image around the cursor, keeps the connected region
// under it, and traces its boundary. Per-frame stamps are smoothed against
// the previous frame and unioned into a single contour on stroke end.
type SmartBrushTool struct {
	ed *Editor

	state   brushState
	mode    Mode
	builder *StrokeBuilder
	vp      *Viewport

	stamps    [][]Vec2 // image-pixel-space polygons, one per stored sample
	prevRadii []float64
	loggedErr bool

	cursor    Vec2
	hasCursor bool

	sizeStartX      float64
	sizeStartRadius float64

	stats gestureStats
}

// NewSmartBrushTool creates the smart brush.
func NewSmartBrushTool(ed *Editor) *SmartBrushTool {
	return &SmartBrushTool{ed: ed}
}

// Type returns ToolSmartBrush.
func (t *SmartBrushTool) Type() ToolType { return ToolSmartBrush }

// Active reports whether a gesture is in progress.
func (t *SmartBrushTool) Active() bool { return t.state != brushIdle }

// Down starts a draw gesture (left) or sizing (right), mirroring the
// regular brush.
func (t *SmartBrushTool) Down(vp *Viewport, ev PointerEvent) {
	if t.state != brushIdle {
		return
	}
	t.cursor = Vec2{X: ev.X, Y: ev.Y}
	t.hasCursor = true

	if ev.Button == MouseButtonRight {
		t.state = brushSizing
		t.sizeStartX = ev.X
		t.sizeStartRadius = t.ed.settings.Values().BrushRadius
		return
	}
	if ev.Button != MouseButtonLeft {
		return
	}

	t.state = brushDrawing
	t.mode = ModeAdd
	if ev.Modifiers&ModShift != 0 {
		t.mode = ModeSubtract
	}
	t.vp = vp
	t.stamps = nil
	t.prevRadii = nil
	t.loggedErr = false
	t.stats = gestureStats{tool: ToolSmartBrush, start: t.ed.clock.Now()}

	radius := t.ed.settings.Values().BrushRadius
	t.builder = NewStrokeBuilder(vp.Slice(), vp.SliceZ(), t.ed.clock)
	t.builder.SetMinStep(adaptiveMinStep(radius))
	t.sample(vp, ev)

	t.ed.ghosts.Begin(t.ghostStroke(radius))
}

// Move extends the gesture with a new adaptive stamp, or adjusts the radius
// while sizing.
func (t *SmartBrushTool) Move(vp *Viewport, ev PointerEvent) {
	t.cursor = Vec2{X: ev.X, Y: ev.Y}
	t.hasCursor = true

	switch t.state {
	case brushSizing:
		r := t.sizeStartRadius + (ev.X-t.sizeStartX)*sizingPerPixel
		if r < minBrushRadius {
			r = minBrushRadius
		} else if r > maxBrushRadius {
			r = maxBrushRadius
		}
		vals := t.ed.settings.Values()
		vals.BrushRadius = r
		t.ed.settings.Set(vals)
	case brushDrawing:
		if t.sample(t.vp, ev) {
			t.ed.ghosts.Update(t.ghostStroke(t.ed.settings.Values().BrushRadius))
		}
	}
}

// Up finalizes the gesture.
func (t *SmartBrushTool) Up(vp *Viewport, ev PointerEvent) {
	switch t.state {
	case brushSizing:
		t.state = brushIdle
	case brushDrawing:
		t.sample(t.vp, ev)
		t.finalize()
	}
}

// KeyDown is a no-op for the smart brush.
func (t *SmartBrushTool) KeyDown(vp *Viewport, ev KeyEvent) {}

// Flush synchronously ends any in-progress gesture.
func (t *SmartBrushTool) Flush(vp *Viewport) {
	switch t.state {
	case brushSizing:
		t.state = brushIdle
	case brushDrawing:
		t.finalize()
	}
}

// sample stores a pointer sample and computes the adaptive stamp for it.
// Stamp failures fall back to a circular stamp: the gesture continues, the
// failure is logged once, and only the preview quality degrades.
func (t *SmartBrushTool) sample(vp *Viewport, ev PointerEvent) bool {
	screen := Vec2{X: ev.X, Y: ev.Y}
	if !t.builder.Add(screen, vp.ScreenToPatient(ev.X, ev.Y)) {
		t.stats.rejected++
		return false
	}
	t.stats.samples++

	vals := t.ed.settings.Values()
	view := vp.View().Get()
	ix, iy := view.ScreenToImage(ev.X, ev.Y)
	radiusImg := vals.BrushRadius / view.Scale

	stamp, err := adaptiveStamp(vp.Intensity(), ix, iy, radiusImg, vals.SmartSensitivity)
	if err != nil {
		t.stats.sampleErrs++
		if !t.loggedErr {
			debugf("smart brush sample: %v", err)
			t.loggedErr = true
		}
		stamp = circlePolygon(ix, iy, radiusImg, circleStampSegments)
	}

	stamp, t.prevRadii = blendStamp(stamp, t.prevRadii, Vec2{X: ix, Y: iy})
	t.stamps = append(t.stamps, stamp)
	return true
}

// finalize unions all per-frame stamps, converts the outer contour to
// patient space, decimates, and emits. Resets to idle.
func (t *SmartBrushTool) finalize() {
	stroke := t.builder.Stroke()
	vals := t.ed.settings.Values()

	outline := unionStamps(t.stamps)
	pts := make([]Vec3, len(outline))
	plane := t.vp.Plane()
	for i, p := range outline {
		pts[i] = plane.ImageToPatient(p.X, p.Y)
	}
	pts = decimate(pts, vals.MinStrokeSpacingMM)
	t.stats.emitted = len(pts)

	kind := ActionSmartBrushStroke
	if t.mode == ModeSubtract {
		kind = ActionEraseStroke
	}
	id, _ := t.ed.SelectedStructure()
	t.ed.emit(Action{
		Kind:        kind,
		StructureID: id,
		SliceIndex:  stroke.SliceIndex,
		SliceZ:      stroke.SliceZ,
		Points:      pts,
		Closed:      true,
		Mode:        t.mode,
		BrushRadius: vals.BrushRadius,
	})

	t.ed.ghosts.End(t.vp.ID)
	t.stats.log(t.ed.clock)
	t.builder = nil
	t.stamps = nil
	t.prevRadii = nil
	t.vp = nil
	t.state = brushIdle
}

// Overlay draws the latest stamp outline and the brush cursor.
func (t *SmartBrushTool) Overlay(vp *Viewport, buf []OverlayCommand) []OverlayCommand {
	_, color := t.ed.SelectedStructure()
	if t.state == brushDrawing && t.vp == vp && len(t.stamps) > 0 {
		stamp := t.stamps[len(t.stamps)-1]
		view := vp.View().Get()
		pts := make([]Vec2, len(stamp))
		for i, p := range stamp {
			x, y := view.ImageToScreen(p.X, p.Y)
			pts[i] = Vec2{X: x, Y: y}
		}
		buf = append(buf, OverlayCommand{
			Kind: OverlayPolyline, Points: pts, Closed: true,
			Color: color, Width: 2,
		})
	}
	if t.hasCursor && vp.Bounds.Contains(t.cursor.X, t.cursor.Y) {
		buf = append(buf, OverlayCommand{
			Kind:  OverlayCircle,
			CX:    t.cursor.X,
			CY:    t.cursor.Y,
			R:     t.ed.settings.Values().BrushRadius,
			Color: color.WithAlpha(0.8),
			Width: 1,
		})
	}
	return buf
}

// ghostStroke snapshots the stroke path for the cross-viewport feed.
func (t *SmartBrushTool) ghostStroke(radius float64) GhostStroke {
	stroke := t.builder.Stroke()
	screen := make([]Vec2, len(stroke.Points))
	for i := range stroke.Points {
		screen[i] = stroke.Points[i].Screen
	}
	id, color := t.ed.SelectedStructure()
	return GhostStroke{
		SourceViewport: t.vp.ID,
		Tool:           ToolSmartBrush,
		StructureID:    id,
		Color:          color,
		SliceZ:         stroke.SliceZ,
		Points:         screen,
		PatientPoints:  stroke.PatientPoints(),
		Mode:           t.mode,
		BrushRadius:    radius,
	}
}

// adaptiveStamp computes the edge-seeking stamp polygon around the cursor:
// intensities inside the brush radius define a mean ± sensitivity·stddev
// window, the radius-sized square around the cursor is thresholded against
// it, the component under the cursor is kept, and its boundary traced.
// Coordinates in and out are image pixels.
func adaptiveStamp(src IntensitySource, cx, cy, radius, sensitivity float64) ([]Vec2, error) {
	if src == nil {
		return nil, errNoIntensity
	}
	r := int(math.Ceil(radius))
	if r < 1 {
		r = 1
	}
	icx, icy := int(math.Round(cx)), int(math.Round(cy))

	// Sample intensities inside the brush circle.
	vals := make([]float64, 0, (2*r+1)*(2*r+1))
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy > r*r {
				continue
			}
			if v, ok := src.At(icx+dx, icy+dy); ok {
				vals = append(vals, v)
			}
		}
	}
	if len(vals) < 4 {
		return nil, errSampleWindow
	}
	mean := stat.Mean(vals, nil)
	sd := stat.StdDev(vals, nil)
	if math.IsNaN(sd) {
		sd = 0
	}
	lo := mean - sensitivity*sd
	hi := mean + sensitivity*sd

	// Threshold the square window into a mask, keep the cursor's component.
	side := 2*r + 1
	grid := newBitGrid(side, side)
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if v, ok := src.At(icx+dx, icy+dy); ok && v >= lo && v <= hi {
				grid.set(dx+r, dy+r, true)
			}
		}
	}
	if !grid.keepComponent(r, r) {
		return nil, errCursorOutside
	}
	boundary := traceBoundary(grid)
	if len(boundary) < 3 {
		return nil, errDegenerateStamp
	}
	offX, offY := float64(icx-r), float64(icy-r)
	for i := range boundary {
		boundary[i].X += offX
		boundary[i].Y += offY
	}
	return boundary, nil
}

// blendStamp smooths the stamp against the previous frame: both are
// resampled to a fixed radial profile about the cursor and the radii mixed
// 70/30. Returns the blended polygon and its profile for the next frame.
func blendStamp(stamp []Vec2, prevRadii []float64, center Vec2) ([]Vec2, []float64) {
	radii := radialProfile(stamp, center, stampRays)
	if prevRadii == nil {
		return stamp, radii
	}
	for i := range radii {
		radii[i] = blendNew*radii[i] + blendPrev*prevRadii[i]
	}
	return polygonFromProfile(center, radii), radii
}

// radialProfile samples the polygon boundary distance from c along n evenly
// spaced rays. Rays that miss the polygon get radius 0.
func radialProfile(poly []Vec2, c Vec2, n int) []float64 {
	radii := make([]float64, n)
	m := len(poly)
	if m < 3 {
		return radii
	}
	for i := 0; i < n; i++ {
		a := 2 * math.Pi * float64(i) / float64(n)
		dir := Vec2{X: math.Cos(a), Y: math.Sin(a)}
		best := 0.0
		for j := 0; j < m; j++ {
			p1 := poly[j]
			p2 := poly[(j+1)%m]
			if d, ok := raySegment(c, dir, p1, p2); ok && d > best {
				best = d
			}
		}
		radii[i] = best
	}
	return radii
}

// polygonFromProfile rebuilds a polygon from a radial profile about c.
func polygonFromProfile(c Vec2, radii []float64) []Vec2 {
	pts := make([]Vec2, len(radii))
	for i, r := range radii {
		a := 2 * math.Pi * float64(i) / float64(len(radii))
		pts[i] = Vec2{X: c.X + r*math.Cos(a), Y: c.Y + r*math.Sin(a)}
	}
	return pts
}

// raySegment intersects the ray from origin o along unit direction d with
// segment ab, returning the ray distance.
func raySegment(o, d, a, b Vec2) (float64, bool) {
	ex := b.X - a.X
	ey := b.Y - a.Y
	denom := d.X*ey - d.Y*ex
	if denom > -1e-12 && denom < 1e-12 {
		return 0, false
	}
	t := ((a.X-o.X)*ey - (a.Y-o.Y)*ex) / denom
	u := ((a.X-o.X)*d.Y - (a.Y-o.Y)*d.X) / denom
	if t < 0 || u < 0 || u > 1 {
		return 0, false
	}
	return t, true
}

// unionStamps merges all per-frame stamps into one polygon via polyclip and
// returns the outer contour (the one with the longest perimeter). A single
// stamp passes through unchanged.
func unionStamps(stamps [][]Vec2) []Vec2 {
	var acc polyclip.Polygon
	for _, s := range stamps {
		if len(s) < 3 {
			continue
		}
		c := make(polyclip.Contour, len(s))
		for i, p := range s {
			c[i] = polyclip.Point{X: p.X, Y: p.Y}
		}
		next := polyclip.Polygon{c}
		if acc == nil {
			acc = next
			continue
		}
		acc = acc.Construct(polyclip.UNION, next)
	}
	if len(acc) == 0 {
		return nil
	}
	best := 0
	bestLen := -1.0
	for i, c := range acc {
		pts := contourPoints(c)
		if l := polygonPerimeter(pts); l > bestLen {
			bestLen = l
			best = i
		}
	}
	return contourPoints(acc[best])
}

func contourPoints(c polyclip.Contour) []Vec2 {
	pts := make([]Vec2, len(c))
	for i, p := range c {
		pts[i] = Vec2{X: p.X, Y: p.Y}
	}
	return pts
}

// Stamp failure reasons. All are non-fatal: the caller falls back to a
// circular stamp.
var (
	errNoIntensity     = errorString("no intensity source for slice")
	errSampleWindow    = errorString("sample window empty")
	errCursorOutside   = errorString("cursor outside thresholded region")
	errDegenerateStamp = errorString("degenerate stamp boundary")
)

// errorString is a trivial constant error type.
type errorString string

func (e errorString) Error() string { return string(e) }
