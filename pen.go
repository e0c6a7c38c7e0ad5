package delin

import "github.com/google/uuid"

const (
	// closureDistance is the screen-pixel proximity to the first vertex
	// that closes a segment.
	closureDistance = 15.0
	// minClosurePoints is the minimum vertex count before a segment may
	// close.
	minClosurePoints = 3
	// continuousMinStep is the screen-pixel sample step in continuous mode.
	continuousMinStep = 2.4 // adaptiveMinStep(8)
	// pasteOffsetPx is the screen offset applied to pasted segments.
	pasteOffsetPx = 5.0
)

type penState uint8

const (
	penIdle penState = iota
	penStraight
	penCurved
)

// PenTool places planar contours vertex by vertex. Point-by-point mode
// appends one vertex per left click; continuous mode (Ctrl at gesture
// start, or the ContinuousPen setting) appends per move sample while the
// button is held. A segment closes when a vertex lands within 15 px of the
// first vertex with at least 3 placed, or on right click with at least 3.
// Modifiers held at gesture start pick the emitted kind: Ctrl adds a
// segment, Shift removes one, neither adds a contour.
type PenTool struct {
	ed *Editor

	state     penState
	builder   *StrokeBuilder
	vp        *Viewport
	kind      ActionKind
	mouseDown bool

	clipboard *Stroke

	cursor    Vec2
	hasCursor bool

	stats gestureStats
}

// NewPenTool creates the planar pen.
func NewPenTool(ed *Editor) *PenTool {
	return &PenTool{ed: ed}
}

// Type returns ToolPen.
func (t *PenTool) Type() ToolType { return ToolPen }

// Active reports whether a segment is open.
func (t *PenTool) Active() bool { return t.state != penIdle }

// Down places a vertex, starts a gesture, or closes the open segment.
func (t *PenTool) Down(vp *Viewport, ev PointerEvent) {
	t.cursor = Vec2{X: ev.X, Y: ev.Y}
	t.hasCursor = true

	if ev.Button == MouseButtonRight {
		// Right click closes when enough points exist; otherwise ignored.
		if t.state != penIdle && t.builder.Len() >= minClosurePoints {
			t.close()
		}
		return
	}
	if ev.Button != MouseButtonLeft {
		return
	}
	t.mouseDown = true

	if t.state == penIdle {
		t.start(vp, ev)
		return
	}

	// Proximity closure: a new point within 15 px of the first vertex with
	// >= 3 points already placed closes the segment.
	if t.builder.Len() >= minClosurePoints {
		first := t.builder.Stroke().Points[0].Screen
		if first.Dist(Vec2{X: ev.X, Y: ev.Y}) <= closureDistance {
			t.addVertex(ev)
			t.close()
			return
		}
	}
	t.addVertex(ev)
	t.ed.ghosts.Update(t.ghostStroke())
}

// start opens a new segment and resolves the drawing mode and action kind
// from the modifiers held at gesture start.
func (t *PenTool) start(vp *Viewport, ev PointerEvent) {
	t.vp = vp
	t.kind = ActionAddContour
	if ev.Modifiers&ModShift != 0 {
		t.kind = ActionRemoveSegment
	} else if ev.Modifiers&ModCtrl != 0 {
		t.kind = ActionAddSegment
	}

	t.state = penStraight
	if ev.Modifiers&ModCtrl != 0 || t.ed.settings.Values().ContinuousPen {
		t.state = penCurved
	}
	t.stats = gestureStats{tool: ToolPen, start: t.ed.clock.Now()}

	t.builder = NewStrokeBuilder(vp.Slice(), vp.SliceZ(), t.ed.clock)
	if t.state == penCurved {
		t.builder.SetMinStep(continuousMinStep)
	} else {
		t.builder.SetMinStep(0.5) // distinct clicks only
	}
	t.addVertex(ev)
	t.ed.ghosts.Begin(t.ghostStroke())
}

// Move appends vertices in continuous mode while the button is held, and
// tracks the cursor otherwise.
func (t *PenTool) Move(vp *Viewport, ev PointerEvent) {
	t.cursor = Vec2{X: ev.X, Y: ev.Y}
	t.hasCursor = true
	if t.state == penCurved && t.mouseDown {
		if t.addVertex(ev) {
			t.ed.ghosts.Update(t.ghostStroke())
		}
	}
}

// Up releases the button. The open segment stays open; closure happens only
// by proximity or right click.
func (t *PenTool) Up(vp *Viewport, ev PointerEvent) {
	t.mouseDown = false
}

// KeyDown handles the segment clipboard, clear-all, and cancel.
func (t *PenTool) KeyDown(vp *Viewport, ev KeyEvent) {
	switch {
	case ev.Key == KeyC && ev.Modifiers&ModCtrl != 0:
		t.copySegment(vp)
	case ev.Key == KeyX && ev.Modifiers&ModCtrl != 0:
		t.cutSegment(vp)
	case ev.Key == KeyV && ev.Modifiers&ModCtrl != 0:
		t.pasteSegment(vp)
	case ev.Key == KeyDelete:
		t.clearAll(vp)
	case ev.Key == KeyEscape:
		t.cancel()
	}
}

// Flush cancels the open segment silently. Unlike the brush, an unfinished
// pen segment is not a committable edit.
func (t *PenTool) Flush(vp *Viewport) {
	t.cancel()
}

// addVertex appends one vertex at the event position.
func (t *PenTool) addVertex(ev PointerEvent) bool {
	ok := t.builder.Add(Vec2{X: ev.X, Y: ev.Y}, t.vp.ScreenToPatient(ev.X, ev.Y))
	if ok {
		t.stats.samples++
	} else {
		t.stats.rejected++
	}
	return ok
}

// close finalizes the open segment: emits one action with the full vertex
// list and records the completed segment locally.
func (t *PenTool) close() {
	stroke := t.builder.Stroke()
	stroke.Closed = true
	stroke.Complete = true
	pts := stroke.PatientPoints()
	t.stats.emitted = len(pts)

	id, _ := t.ed.SelectedStructure()
	mode := ModeAdd
	if t.kind == ActionRemoveSegment {
		mode = ModeSubtract
	}
	t.ed.emit(Action{
		Kind:        t.kind,
		StructureID: id,
		SliceIndex:  stroke.SliceIndex,
		SliceZ:      stroke.SliceZ,
		Points:      pts,
		Closed:      true,
		Mode:        mode,
	})
	t.vp.Segments = append(t.vp.Segments, *stroke)

	t.ed.ghosts.End(t.vp.ID)
	t.stats.log(t.ed.clock)
	t.reset()
}

// cancel abandons the open segment without emitting.
func (t *PenTool) cancel() {
	if t.state == penIdle {
		return
	}
	t.ed.ghosts.End(t.vp.ID)
	t.reset()
}

func (t *PenTool) reset() {
	t.builder = nil
	t.vp = nil
	t.state = penIdle
	t.mouseDown = false
}

// copySegment copies the most recent completed segment to the clipboard.
func (t *PenTool) copySegment(vp *Viewport) {
	if n := len(vp.Segments); n > 0 {
		seg := vp.Segments[n-1]
		t.clipboard = &seg
	}
}

// cutSegment copies the most recent completed segment, removes it locally,
// and emits remove_segment for it.
func (t *PenTool) cutSegment(vp *Viewport) {
	n := len(vp.Segments)
	if n == 0 {
		return
	}
	seg := vp.Segments[n-1]
	t.clipboard = &seg
	vp.RemoveSegment(seg.ID)

	id, _ := t.ed.SelectedStructure()
	t.ed.emit(Action{
		Kind:        ActionRemoveSegment,
		StructureID: id,
		SliceIndex:  seg.SliceIndex,
		SliceZ:      seg.SliceZ,
		Points:      seg.PatientPoints(),
		Closed:      seg.Closed,
		Mode:        ModeSubtract,
		SegmentID:   seg.ID,
	})
}

// pasteSegment re-adds the clipboard segment at a 5 px screen offset on the
// viewport's current slice.
func (t *PenTool) pasteSegment(vp *Viewport) {
	if t.clipboard == nil {
		return
	}
	pasted := Stroke{
		ID:         uuid.NewString(),
		Closed:     t.clipboard.Closed,
		Complete:   true,
		SliceIndex: vp.Slice(),
		SliceZ:     vp.SliceZ(),
	}
	for i, p := range t.clipboard.Points {
		sx, sy := vp.PatientToScreen(p.Position)
		sx += pasteOffsetPx
		sy += pasteOffsetPx
		pasted.Points = append(pasted.Points, ContourPoint{
			ID:       uuid.NewString(),
			Position: vp.ScreenToPatient(sx, sy),
			Screen:   Vec2{X: sx, Y: sy},
			Index:    i,
			At:       t.ed.clock.Now(),
		})
	}
	vp.Segments = append(vp.Segments, pasted)

	id, _ := t.ed.SelectedStructure()
	t.ed.emit(Action{
		Kind:        ActionAddSegment,
		StructureID: id,
		SliceIndex:  pasted.SliceIndex,
		SliceZ:      pasted.SliceZ,
		Points:      pasted.PatientPoints(),
		Closed:      pasted.Closed,
	})
}

// clearAll discards all local segments and the open one, and emits
// clear_all_contours.
func (t *PenTool) clearAll(vp *Viewport) {
	t.cancel()
	vp.Segments = nil
	id, _ := t.ed.SelectedStructure()
	t.ed.emit(Action{
		Kind:        ActionClearAllContours,
		StructureID: id,
		SliceIndex:  vp.Slice(),
		SliceZ:      vp.SliceZ(),
	})
}

// ghostStroke snapshots the open segment for the cross-viewport feed.
func (t *PenTool) ghostStroke() GhostStroke {
	stroke := t.builder.Stroke()
	screen := make([]Vec2, len(stroke.Points))
	for i := range stroke.Points {
		screen[i] = stroke.Points[i].Screen
	}
	id, color := t.ed.SelectedStructure()
	return GhostStroke{
		SourceViewport: t.vp.ID,
		Tool:           ToolPen,
		StructureID:    id,
		Color:          color,
		SliceZ:         stroke.SliceZ,
		Points:         screen,
		PatientPoints:  stroke.PatientPoints(),
		Mode:           ModeAdd,
	}
}

// Overlay draws the open segment polyline, its vertices, and a closure hint
// when the cursor is within closing range of the first vertex.
func (t *PenTool) Overlay(vp *Viewport, buf []OverlayCommand) []OverlayCommand {
	if t.state == penIdle || t.vp != vp {
		return buf
	}
	_, color := t.ed.SelectedStructure()
	stroke := t.builder.Stroke()
	pts := make([]Vec2, len(stroke.Points))
	for i := range stroke.Points {
		pts[i] = stroke.Points[i].Screen
	}
	if len(pts) > 1 {
		buf = append(buf, OverlayCommand{
			Kind: OverlayPolyline, Points: pts, Color: color, Width: 2,
		})
	}
	for _, p := range pts {
		buf = append(buf, OverlayCommand{
			Kind: OverlayFilledCircle, CX: p.X, CY: p.Y, R: 3, Color: color,
		})
	}
	if t.hasCursor && len(pts) >= minClosurePoints &&
		pts[0].Dist(t.cursor) <= closureDistance {
		buf = append(buf, OverlayCommand{
			Kind: OverlayCircle, CX: pts[0].X, CY: pts[0].Y,
			R: closureDistance, Color: color.WithAlpha(0.6), Width: 1,
		})
	}
	return buf
}
