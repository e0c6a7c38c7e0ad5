package delin

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// OverlayKind identifies the kind of overlay drawing command.
type OverlayKind uint8

const (
	OverlayPolyline     OverlayKind = iota // solid stroked polyline
	OverlayDashed                          // dashed polyline (marching ants)
	OverlayCircle                          // stroked circle
	OverlayFilledCircle                    // filled circle (vertex handles)
)

// OverlayCommand is a single overlay draw instruction, emitted in screen
// coordinates. Commands are pure data so overlay content can be asserted in
// tests without a display.
type OverlayCommand struct {
	Kind   OverlayKind
	Points []Vec2
	Closed bool
	Color  Color
	Width  float32
	// Dash parameters (OverlayDashed only), screen px.
	DashOn, DashOff, DashPhase float64
	// Circle parameters.
	CX, CY, R float64
}

// AppendOverlay collects the overlay commands for one viewport: completed
// segments, the active tool's preview, and ghost strokes from sibling
// viewports projected into this viewport's view. Append-style to allow
// buffer reuse across frames.
func (e *Editor) AppendOverlay(vp *Viewport, buf []OverlayCommand) []OverlayCommand {
	_, structColor := e.SelectedStructure()

	// Completed local segments.
	for i := range vp.Segments {
		seg := &vp.Segments[i]
		if seg.SliceIndex != vp.Slice() || len(seg.Points) < 2 {
			continue
		}
		pts := make([]Vec2, len(seg.Points))
		for j := range seg.Points {
			x, y := vp.PatientToScreen(seg.Points[j].Position)
			pts[j] = Vec2{X: x, Y: y}
		}
		buf = append(buf, OverlayCommand{
			Kind: OverlayPolyline, Points: pts, Closed: seg.Closed,
			Color: structColor, Width: 2,
		})
	}

	// Active tool preview.
	if e.tool != nil {
		buf = e.tool.Overlay(vp, buf)
	}

	// Ghost strokes from sibling viewports, dashed and semi-transparent.
	if e.settings.Values().ShowGhosts {
		opacity := e.settings.Values().GhostOpacity
		for _, g := range e.ghosts.VisibleIn(vp) {
			if len(g.PatientPoints) < 2 {
				continue
			}
			pts := make([]Vec2, len(g.PatientPoints))
			for i, p := range g.PatientPoints {
				x, y := vp.PatientToScreen(p)
				pts[i] = Vec2{X: x, Y: y}
			}
			buf = append(buf, OverlayCommand{
				Kind:      OverlayDashed,
				Points:    pts,
				Color:     g.Color.WithAlpha(g.Color.A * opacity),
				Width:     2,
				DashOn:    dashOnPx,
				DashOff:   dashOffPx,
				DashPhase: e.antsPhase,
			})
		}
	}
	return buf
}

// SubmitOverlay rasterizes overlay commands onto dst.
func SubmitOverlay(dst *ebiten.Image, cmds []OverlayCommand) {
	for i := range cmds {
		cmd := &cmds[i]
		clr := toNRGBA(cmd.Color)
		switch cmd.Kind {
		case OverlayPolyline:
			strokePolyline(dst, cmd.Points, cmd.Closed, cmd.Width, clr)
		case OverlayDashed:
			for _, seg := range dashSegments(cmd.Points, cmd.DashOn, cmd.DashOff, cmd.DashPhase) {
				vector.StrokeLine(dst,
					float32(seg[0].X), float32(seg[0].Y),
					float32(seg[1].X), float32(seg[1].Y),
					cmd.Width, clr, true)
			}
		case OverlayCircle:
			vector.StrokeCircle(dst, float32(cmd.CX), float32(cmd.CY), float32(cmd.R), cmd.Width, clr, true)
		case OverlayFilledCircle:
			vector.DrawFilledCircle(dst, float32(cmd.CX), float32(cmd.CY), float32(cmd.R), clr, true)
		}
	}
}

func strokePolyline(dst *ebiten.Image, pts []Vec2, closed bool, width float32, clr color.Color) {
	n := len(pts)
	if n < 2 {
		return
	}
	edges := n - 1
	if closed {
		edges = n
	}
	for i := 0; i < edges; i++ {
		a := pts[i]
		b := pts[(i+1)%n]
		vector.StrokeLine(dst, float32(a.X), float32(a.Y), float32(b.X), float32(b.Y), width, clr, true)
	}
}

func toNRGBA(c Color) color.NRGBA {
	clamp := func(v float64) uint8 {
		if v <= 0 {
			return 0
		}
		if v >= 1 {
			return 255
		}
		return uint8(v*255 + 0.5)
	}
	return color.NRGBA{R: clamp(c.R), G: clamp(c.G), B: clamp(c.B), A: clamp(c.A)}
}

// dashSegments cuts an open polyline into dash segments of the given on/off
// pattern, offset by phase. Phase advancing over time produces the marching
// ants effect. Pure so the pattern is testable without a display.
func dashSegments(pts []Vec2, on, off, phase float64) [][2]Vec2 {
	if len(pts) < 2 || on <= 0 || off < 0 {
		return nil
	}
	period := on + off
	// Distance along the pattern, starting mid-pattern per phase.
	dist := math.Mod(phase, period)
	var out [][2]Vec2
	var openStart Vec2
	drawing := dist < on
	if drawing {
		openStart = pts[0]
	}

	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		segLen := a.Dist(b)
		if segLen == 0 {
			continue
		}
		t := 0.0
		for t < segLen {
			var boundary float64
			if drawing {
				boundary = on - dist
			} else {
				boundary = period - dist
			}
			remain := segLen - t
			if boundary > remain {
				dist += remain
				t = segLen
				break
			}
			t += boundary
			p := lerp(a, b, t/segLen)
			if drawing {
				out = append(out, [2]Vec2{openStart, p})
			} else {
				openStart = p
			}
			drawing = !drawing
			if drawing {
				dist = 0
				openStart = p
			} else {
				dist = on
			}
		}
		if drawing && openStart != b {
			// Close the running dash at the vertex and re-open it so each
			// emitted segment stays straight.
			out = append(out, [2]Vec2{openStart, b})
			openStart = b
		}
	}
	return out
}

func lerp(a, b Vec2, t float64) Vec2 {
	return Vec2{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t}
}
