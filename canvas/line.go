package canvas

import (
	"math"

	"github.com/mapscii-go/mapscii/internal/utils"
)

func sign(n int) int {
	if n < 0 {
		return -1
	}
	return 1
}

func (c *Canvas) setPixel(x, y int, color uint8) {
	c.buf.SetPixel(x, y, color)
}

// plotLine is Zingl's generalized Bresenham algorithm: 4-connected, handles
// all octants without the classic algorithm's slope restriction.
func (c *Canvas) plotLine(x0, y0, x1, y1 int, color uint8) {
	dx := utils.Abs(x1 - x0)
	dy := -utils.Abs(y1 - y0)
	sx, sy := sign(x1-x0), sign(y1-y0)
	err := dx + dy

	for {
		c.setPixel(x0, y0, color)
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
}

// plotLineWidth is Zingl's thick-line variant, walking the same Bresenham
// error field but drawing perpendicular extensions. Zingl's original uses
// the running distance to antialias; this spec's Non-goals exclude
// antialiasing, so extensions are drawn solid once they fall within
// width/2 of the ideal line (scaled by the segment's Euclidean length ed)
// and skipped once they exceed it.
func (c *Canvas) plotLineWidth(x0, y0, x1, y1 int, width int, color uint8) {
	dx := utils.Abs(x1 - x0)
	dy := utils.Abs(y1 - y0)
	sx, sy := sign(x1-x0), sign(y1-y0)
	err := dx - dy

	ed := 1.0
	if dx+dy != 0 {
		ed = math.Sqrt(float64(dx*dx + dy*dy))
	}
	wd := float64(width) / 2

	for {
		c.setPixel(x0, y0, color)
		e2, x2 := err, x0

		if 2*e2 >= -dx {
			e2 += dy
			y2 := y0
			for float64(e2) < ed*wd && (y1 != y2 || dx > dy) {
				y2 += sy
				c.setPixel(x0, y2, color)
				e2 += dx
			}
			if x0 == x1 {
				break
			}
			e2 = err
			err -= dy
			x0 += sx
		}

		if 2*e2 <= dx {
			e2 = dx - e2
			for float64(e2) < ed*wd && (x1 != x2 || dx < dy) {
				x2 += sx
				c.setPixel(x2, y0, color)
				e2 += dy
			}
			if y0 == y1 {
				break
			}
			err += dx
			y0 += sy
		}
	}
}

// Line draws a straight segment from a to b. width <= 1 draws a bare
// 4-connected Bresenham line; width > 1 uses the thick-line variant.
func (c *Canvas) Line(a, b Point, color uint8, width int) {
	if width <= 1 {
		c.plotLine(a.X, a.Y, b.X, b.Y, color)
		return
	}
	c.plotLineWidth(a.X, a.Y, b.X, b.Y, width, color)
}

// Polyline draws consecutive segments through points.
func (c *Canvas) Polyline(points []Point, color uint8, width int) {
	for i := 1; i < len(points); i++ {
		c.Line(points[i-1], points[i], color, width)
	}
}
