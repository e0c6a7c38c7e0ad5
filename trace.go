package delin

import "math"

// bitGrid is a w×h binary mask used for smart-brush thresholding.
type bitGrid struct {
	w, h int
	bits []bool
}

func newBitGrid(w, h int) *bitGrid {
	return &bitGrid{w: w, h: h, bits: make([]bool, w*h)}
}

func (g *bitGrid) at(x, y int) bool {
	if x < 0 || y < 0 || x >= g.w || y >= g.h {
		return false
	}
	return g.bits[y*g.w+x]
}

func (g *bitGrid) set(x, y int, v bool) {
	if x >= 0 && y >= 0 && x < g.w && y < g.h {
		g.bits[y*g.w+x] = v
	}
}

// keepComponent clears every set cell not 4-connected to (sx, sy).
// Reports whether (sx, sy) was set at all.
func (g *bitGrid) keepComponent(sx, sy int) bool {
	if !g.at(sx, sy) {
		return false
	}
	marked := make([]bool, len(g.bits))
	stack := make([][2]int, 0, 64)
	stack = append(stack, [2]int{sx, sy})
	marked[sy*g.w+sx] = true
	for len(stack) > 0 {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, d := range [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
			nx, ny := c[0]+d[0], c[1]+d[1]
			if g.at(nx, ny) && !marked[ny*g.w+nx] {
				marked[ny*g.w+nx] = true
				stack = append(stack, [2]int{nx, ny})
			}
		}
	}
	for i := range g.bits {
		g.bits[i] = g.bits[i] && marked[i]
	}
	return true
}

// mooreOffsets is the clockwise Moore neighbourhood starting at west.
var mooreOffsets = [8][2]int{
	{-1, 0}, {-1, -1}, {0, -1}, {1, -1}, {1, 0}, {1, 1}, {0, 1}, {-1, 1},
}

// traceBoundary extracts the outer boundary polygon of the set region of g
// using Moore-neighbour tracing, with collinear intermediate points
// removed. Returned points are pixel-center coordinates in grid space.
// Returns nil when the grid has no set cells.
func traceBoundary(g *bitGrid) []Vec2 {
	sx, sy := -1, -1
	for y := 0; y < g.h && sx < 0; y++ {
		for x := 0; x < g.w; x++ {
			if g.at(x, y) {
				sx, sy = x, y
				break
			}
		}
	}
	if sx < 0 {
		return nil
	}

	pts := make([]Vec2, 0, 64)
	addPoint := func(x, y int) {
		p := Vec2{X: float64(x), Y: float64(y)}
		if n := len(pts); n >= 2 {
			a, b := pts[n-2], pts[n-1]
			// Drop b when a→b→p is collinear.
			if (b.X-a.X)*(p.Y-b.Y)-(b.Y-a.Y)*(p.X-b.X) == 0 {
				pts = pts[:n-1]
			}
		}
		pts = append(pts, p)
	}

	cx, cy := sx, sy
	bx, by := sx-1, sy // backtrack starts to the west
	addPoint(cx, cy)
	maxSteps := 4*g.w*g.h + 8

	for steps := 0; steps < maxSteps; steps++ {
		// Walk the Moore neighbourhood clockwise starting from the
		// backtrack cell.
		start := 0
		for i, d := range mooreOffsets {
			if cx+d[0] == bx && cy+d[1] == by {
				start = i
				break
			}
		}
		found := false
		prevX, prevY := bx, by
		for i := 1; i <= 8; i++ {
			d := mooreOffsets[(start+i)%8]
			nx, ny := cx+d[0], cy+d[1]
			if g.at(nx, ny) {
				bx, by = prevX, prevY
				cx, cy = nx, ny
				found = true
				break
			}
			prevX, prevY = nx, ny
		}
		if !found {
			break // isolated pixel
		}
		if cx == sx && cy == sy {
			break
		}
		if last := pts[len(pts)-1]; last.X != float64(cx) || last.Y != float64(cy) {
			addPoint(cx, cy)
		}
	}

	// Drop a duplicated closing point if the trace re-added the start.
	if n := len(pts); n >= 2 && pts[0] == pts[n-1] {
		pts = pts[:n-1]
	}
	return pts
}

// pointInPolygon reports whether p lies inside the polygon using the
// even-odd ray crossing rule.
func pointInPolygon(p Vec2, poly []Vec2) bool {
	n := len(poly)
	if n < 3 {
		return false
	}
	inside := false
	j := n - 1
	for i := 0; i < n; i++ {
		a, b := poly[i], poly[j]
		if (a.Y > p.Y) != (b.Y > p.Y) &&
			p.X < (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y)+a.X {
			inside = !inside
		}
		j = i
	}
	return inside
}

// circlePolygon approximates a circle as a polygon with the given number of
// segments, counter-clockwise from angle 0.
func circlePolygon(cx, cy, r float64, segments int) []Vec2 {
	if segments < 3 {
		segments = 3
	}
	pts := make([]Vec2, segments)
	for i := 0; i < segments; i++ {
		a := 2 * math.Pi * float64(i) / float64(segments)
		pts[i] = Vec2{X: cx + r*math.Cos(a), Y: cy + r*math.Sin(a)}
	}
	return pts
}

// polygonPerimeter returns the closed perimeter length of a polygon.
func polygonPerimeter(poly []Vec2) float64 {
	n := len(poly)
	if n < 2 {
		return 0
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += poly[i].Dist(poly[(i+1)%n])
	}
	return sum
}
