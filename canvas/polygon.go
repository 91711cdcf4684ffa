package canvas

import "sort"

// bresenhamPoints returns every pixel plotLine would draw, without drawing
// it — used to build the edge list filledTriangle rasterizes from.
func bresenhamPoints(x0, y0, x1, y1 int) []Point {
	var pts []Point
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := sign(x1-x0), sign(y1-y0)
	err := dx + dy

	for {
		pts = append(pts, Point{X: x0, Y: y0})
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
	return pts
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// filledTriangle rasterizes a solid triangle: the three edges are plotted
// with Bresenham, out-of-range rows are dropped, the remaining points are
// sorted by (y, x), and each same-y consecutive pair is filled as a
// horizontal span. A row with only one point on it (the triangle's apex
// row, or a fully degenerate/collinear triangle) is written as a single
// pixel. A zero-area triangle's three edges lie on top of each other, so
// every span filled between two of its points stays on those edges: it is
// drawn as exactly its Bresenham edges.
func (c *Canvas) filledTriangle(a, b, cc Point, color uint8) {
	pts := make([]Point, 0, 3*(abs(b.X-a.X)+abs(b.Y-a.Y)+1))
	pts = append(pts, bresenhamPoints(a.X, a.Y, b.X, b.Y)...)
	pts = append(pts, bresenhamPoints(b.X, b.Y, cc.X, cc.Y)...)
	pts = append(pts, bresenhamPoints(cc.X, cc.Y, a.X, a.Y)...)

	h := c.Height()
	w := c.Width()
	filtered := pts[:0]
	for _, p := range pts {
		if p.Y < 0 || p.Y >= h {
			continue
		}
		filtered = append(filtered, p)
	}

	sort.Slice(filtered, func(i, j int) bool {
		if filtered[i].Y != filtered[j].Y {
			return filtered[i].Y < filtered[j].Y
		}
		return filtered[i].X < filtered[j].X
	})

	i := 0
	for i < len(filtered) {
		if i+1 < len(filtered) && filtered[i].Y == filtered[i+1].Y {
			xl, xr := filtered[i].X, filtered[i+1].X
			if xl < 0 {
				xl = 0
			}
			if xr > w-1 {
				xr = w - 1
			}
			y := filtered[i].Y
			for x := xl; x <= xr; x++ {
				c.setPixel(x, y, color)
			}
			i += 2
			continue
		}
		c.setPixel(filtered[i].X, filtered[i].Y, color)
		i++
	}
}

// Polygon fills the region described by rings: rings[0] is the outer
// boundary, rings[1:] are holes cut out of it. The outer ring must have at
// least 3 vertices or Polygon fails and draws nothing; inner rings with
// fewer than 3 vertices are silently skipped. The boundary is triangulated
// with an ear-cut algorithm before anything is drawn, so a triangulation
// failure also draws nothing — Polygon never leaves a partially-rendered
// shape behind.
func (c *Canvas) Polygon(rings [][]Point, color uint8) bool {
	triangles, ok := Triangulate(rings)
	if !ok {
		return false
	}
	for _, tri := range triangles {
		c.filledTriangle(tri[0], tri[1], tri[2], color)
	}
	return true
}
