package delin

// Brush radius limits for live right-drag sizing, screen px.
const (
	minBrushRadius = 1.0
	maxBrushRadius = 100.0
	// sizingPerPixel converts horizontal drag distance to radius delta.
	sizingPerPixel = 0.5
)

type brushState uint8

const (
	brushIdle brushState = iota
	brushDrawing
	brushSizing
)

// Tool is a contour editing tool driven by the editor's pointer and key
// routing. Implementations hold no authoritative contour state; everything
// they produce leaves through the editor's action sink.
type Tool interface {
	Type() ToolType
	// Down, Move, and Up receive screen-space pointer samples. Move is
	// also called for hover (no button held).
	Down(vp *Viewport, ev PointerEvent)
	Move(vp *Viewport, ev PointerEvent)
	Up(vp *Viewport, ev PointerEvent)
	KeyDown(vp *Viewport, ev KeyEvent)
	// Active reports whether a gesture is in progress.
	Active() bool
	// Flush synchronously ends any in-progress gesture: finalize or
	// cancel, end the ghost, reset state. Called on tool switch, pointer
	// leave, and editor close.
	Flush(vp *Viewport)
	// Overlay appends the tool's preview drawing commands for vp.
	Overlay(vp *Viewport, buf []OverlayCommand) []OverlayCommand
}

// BrushTool paints freehand strokes with a fixed circular brush. A
// dedicated erase variant and a temporary Shift modifier share one model:
// the mode is computed once at gesture start and only changes the emitted
// action kind and ghost mode. The right button adjusts the radius instead
// of drawing; sizing and drawing are mutually exclusive.
type BrushTool struct {
	ed    *Editor
	erase bool // dedicated erase variant

	state   brushState
	mode    Mode
	builder *StrokeBuilder
	vp      *Viewport

	cursor    Vec2
	hasCursor bool

	sizeStartX      float64
	sizeStartRadius float64

	stats gestureStats
}

// NewBrushTool creates the additive brush.
func NewBrushTool(ed *Editor) *BrushTool {
	return &BrushTool{ed: ed}
}

// NewEraseTool creates the dedicated erase brush. It behaves exactly like
// the brush with Shift held.
func NewEraseTool(ed *Editor) *BrushTool {
	return &BrushTool{ed: ed, erase: true}
}

// Type returns ToolBrush or ToolErase.
func (t *BrushTool) Type() ToolType {
	if t.erase {
		return ToolErase
	}
	return ToolBrush
}

// Active reports whether a draw or sizing gesture is in progress.
func (t *BrushTool) Active() bool {
	return t.state != brushIdle
}

// strokeMode resolves the gesture mode: the dedicated erase tool or a held
// Shift both subtract.
func (t *BrushTool) strokeMode(mods KeyModifiers) Mode {
	if t.erase || mods&ModShift != 0 {
		return ModeSubtract
	}
	return ModeAdd
}

// Down starts a draw gesture (left) or a sizing gesture (right).
func (t *BrushTool) Down(vp *Viewport, ev PointerEvent) {
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
	t.mode = t.strokeMode(ev.Modifiers)
	t.vp = vp
	t.stats = gestureStats{tool: t.Type(), start: t.ed.clock.Now()}

	radius := t.ed.settings.Values().BrushRadius
	t.builder = NewStrokeBuilder(vp.Slice(), vp.SliceZ(), t.ed.clock)
	t.builder.SetMinStep(adaptiveMinStep(radius))
	t.addSample(vp, ev)

	t.ed.ghosts.Begin(t.ghostStroke(radius))
}

// Move extends the active gesture, or just tracks the cursor when idle.
func (t *BrushTool) Move(vp *Viewport, ev PointerEvent) {
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
		if t.addSample(t.vp, ev) {
			t.ed.ghosts.Update(t.ghostStroke(t.ed.settings.Values().BrushRadius))
		}
	}
}

// Up finalizes a draw gesture or ends sizing. Sizing never emits actions.
func (t *BrushTool) Up(vp *Viewport, ev PointerEvent) {
	switch t.state {
	case brushSizing:
		t.state = brushIdle
	case brushDrawing:
		t.addSample(t.vp, ev)
		t.finalize()
	}
}

// KeyDown is a no-op for the brush.
func (t *BrushTool) KeyDown(vp *Viewport, ev KeyEvent) {}

// Flush synchronously ends any in-progress gesture, finalizing a draw in
// flight so no points are lost on tool switch or unmount.
func (t *BrushTool) Flush(vp *Viewport) {
	switch t.state {
	case brushSizing:
		t.state = brushIdle
	case brushDrawing:
		t.finalize()
	}
}

// addSample stores one pointer sample, converting through the owning
// viewport's live view transform.
func (t *BrushTool) addSample(vp *Viewport, ev PointerEvent) bool {
	screen := Vec2{X: ev.X, Y: ev.Y}
	ok := t.builder.Add(screen, vp.ScreenToPatient(ev.X, ev.Y))
	if ok {
		t.stats.samples++
	} else {
		t.stats.rejected++
	}
	return ok
}

// ghostStroke snapshots the in-progress stroke for the cross-viewport feed.
func (t *BrushTool) ghostStroke(radius float64) GhostStroke {
	stroke := t.builder.Stroke()
	screen := make([]Vec2, len(stroke.Points))
	for i := range stroke.Points {
		screen[i] = stroke.Points[i].Screen
	}
	id, color := t.ed.SelectedStructure()
	return GhostStroke{
		SourceViewport: t.vp.ID,
		Tool:           t.Type(),
		StructureID:    id,
		Color:          color,
		SliceZ:         stroke.SliceZ,
		Points:         screen,
		PatientPoints:  stroke.PatientPoints(),
		Mode:           t.mode,
		BrushRadius:    radius,
	}
}

// finalize converts, decimates, and emits the stroke, then resets to idle.
// With no selected structure or no points this is a silent no-op (the ghost
// still ends).
func (t *BrushTool) finalize() {
	stroke := t.builder.Stroke()
	vals := t.ed.settings.Values()
	pts := t.builder.Finalize(vals.MinStrokeSpacingMM)
	t.stats.emitted = len(pts)

	kind := ActionBrushStroke
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
		Mode:        t.mode,
		BrushRadius: vals.BrushRadius,
	})

	t.ed.ghosts.End(t.vp.ID)
	t.stats.log(t.ed.clock)
	t.builder = nil
	t.vp = nil
	t.state = brushIdle
}

// Overlay draws the brush cursor circle and the in-progress stroke.
func (t *BrushTool) Overlay(vp *Viewport, buf []OverlayCommand) []OverlayCommand {
	_, color := t.ed.SelectedStructure()
	if t.state == brushDrawing && t.vp == vp && t.builder.Len() > 1 {
		stroke := t.builder.Stroke()
		pts := make([]Vec2, len(stroke.Points))
		for i := range stroke.Points {
			pts[i] = stroke.Points[i].Screen
		}
		c := color
		if t.mode == ModeSubtract {
			c = Color{R: 1, G: 0.3, B: 0.3, A: 1}
		}
		buf = append(buf, OverlayCommand{
			Kind: OverlayPolyline, Points: pts, Color: c, Width: 2,
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
