// paint mounts two synchronized viewports over a synthetic three-slice
// phantom and wires up the full contour toolset. Draw in either viewport and
// watch the ghost preview march in the other one.
//
// Keys: 1 brush, 2 smart brush, 3 erase, 4 pen, up/down slice (right
// viewport), g toggle ghosts. Right-drag resizes the brush.
package main

import (
	"image"
	"image/color"
	"log"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/axialview/delin"
)

const (
	viewSize = 512
	gutter   = 16
	screenW  = viewSize*2 + gutter
	screenH  = viewSize

	phantomSize  = 256
	sliceCount   = 3
	sliceSpacing = 2.5
)

// phantomSlice builds one slice of the synthetic phantom: a bright ellipse
// with a darker core, offset a little per slice so contours differ.
func phantomSlice(i int) *delin.IntensityGrid {
	g := &delin.IntensityGrid{
		W:    phantomSize,
		H:    phantomSize,
		Data: make([]float64, phantomSize*phantomSize),
	}
	cx := float64(phantomSize)/2 + float64(i-1)*12
	cy := float64(phantomSize) / 2
	for y := 0; y < phantomSize; y++ {
		for x := 0; x < phantomSize; x++ {
			dx := (float64(x) - cx) / 70
			dy := (float64(y) - cy) / 95
			d := dx*dx + dy*dy
			v := 40.0
			if d < 1 {
				v = 800
				if d < 0.15 {
					v = 300
				}
			}
			g.Data[y*phantomSize+x] = v
		}
	}
	return g
}

// sliceImage renders an intensity grid to a grayscale image with a fixed
// window.
func sliceImage(g *delin.IntensityGrid) *ebiten.Image {
	img := image.NewGray(image.Rect(0, 0, g.W, g.H))
	const lo, hi = 0.0, 900.0
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			v, _ := g.At(x, y)
			t := (v - lo) / (hi - lo)
			t = math.Max(0, math.Min(1, t))
			img.SetGray(x, y, color.Gray{Y: uint8(t * 255)})
		}
	}
	return ebiten.NewImageFromImage(img)
}

type game struct {
	ed     *delin.Editor
	left   *delin.Viewport
	right  *delin.Viewport
	slices []*ebiten.Image
	buf    []delin.OverlayCommand
}

func newGame() *game {
	planes := make([]delin.SlicePlane, sliceCount)
	grids := make([]*delin.IntensityGrid, sliceCount)
	images := make([]*ebiten.Image, sliceCount)
	for i := 0; i < sliceCount; i++ {
		p := delin.IdentityPlane()
		p.Origin.Z = float64(i) * sliceSpacing
		planes[i] = p
		grids[i] = phantomSlice(i)
		images[i] = sliceImage(grids[i])
	}

	ed := delin.NewEditor(delin.Config{
		Sink: delin.ActionSinkFunc(func(a delin.Action) {
			log.Printf("action %s structure=%s slice=%d points=%d",
				a.Kind, a.StructureID, a.SliceIndex, len(a.Points))
		}),
	})
	ed.SelectStructure("demo", delin.Color{R: 0.2, G: 0.9, B: 0.4, A: 1})
	ed.AttachInput(true)

	left := ed.AddViewport(delin.Rect{Width: viewSize, Height: viewSize})
	right := ed.AddViewport(delin.Rect{X: viewSize + gutter, Width: viewSize, Height: viewSize})
	scale := float64(viewSize) / phantomSize
	for _, vp := range []*delin.Viewport{left, right} {
		vp.SetSeries(planes, grids, sliceSpacing)
		vp.View().Set(delin.ViewTransform{
			Scale:   scale,
			OffsetX: vp.Bounds.X,
			ImageW:  phantomSize,
			ImageH:  phantomSize,
		})
	}

	ed.SetTool(delin.NewBrushTool(ed))
	return &game{ed: ed, left: left, right: right, slices: images}
}

func (g *game) Update() error {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyDigit1):
		g.ed.SetTool(delin.NewBrushTool(g.ed))
	case inpututil.IsKeyJustPressed(ebiten.KeyDigit2):
		g.ed.SetTool(delin.NewSmartBrushTool(g.ed))
	case inpututil.IsKeyJustPressed(ebiten.KeyDigit3):
		g.ed.SetTool(delin.NewEraseTool(g.ed))
	case inpututil.IsKeyJustPressed(ebiten.KeyDigit4):
		g.ed.SetTool(delin.NewPenTool(g.ed))
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowUp):
		g.right.SetSlice(g.right.Slice() + 1)
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowDown):
		g.right.SetSlice(g.right.Slice() - 1)
	case inpututil.IsKeyJustPressed(ebiten.KeyG):
		vals := g.ed.Settings().Values()
		vals.ShowGhosts = !vals.ShowGhosts
		g.ed.Settings().Set(vals)
	}
	g.ed.Update()
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	for _, vp := range []*delin.Viewport{g.left, g.right} {
		view := vp.View().Get()
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Scale(view.Scale, view.Scale)
		op.GeoM.Translate(view.OffsetX, view.OffsetY)
		screen.DrawImage(g.slices[vp.Slice()], op)

		g.buf = g.ed.AppendOverlay(vp, g.buf[:0])
		delin.SubmitOverlay(screen, g.buf)
	}
}

func (g *game) Layout(_, _ int) (int, int) {
	return screenW, screenH
}

func main() {
	ebiten.SetWindowSize(screenW, screenH)
	ebiten.SetWindowTitle("delin paint demo")
	if err := ebiten.RunGame(newGame()); err != nil {
		log.Fatal(err)
	}
}
