package canvas

import (
	"testing"

	"github.com/mapscii-go/mapscii/braille"
)

func newTestCanvas(w, h int) *Canvas {
	return New(braille.New(w, h, braille.Config{UseBraille: true}))
}

// setPixels decodes a braille frame back into a w x h grid of set pixels, so
// tests can check what was drawn rather than only that a frame came out.
func setPixels(frame string, w, h int) [][]bool {
	bits := [2][4]rune{{0x01, 0x02, 0x04, 0x40}, {0x08, 0x10, 0x20, 0x80}}
	grid := make([][]bool, h)
	for y := range grid {
		grid[y] = make([]bool, w)
	}
	col, row, inSGR := 0, 0, false
	for _, r := range frame {
		switch {
		case inSGR:
			inSGR = r != 'm'
		case r == 0x1b:
			inSGR = true
		case r == '\n':
			col, row = 0, row+1
		case r >= 0x2800 && r <= 0x28ff:
			for dx := 0; dx < 2; dx++ {
				for dy := 0; dy < 4; dy++ {
					x, y := col*2+dx, row*4+dy
					if (r-0x2800)&bits[dx][dy] != 0 && x < w && y < h {
						grid[y][x] = true
					}
				}
			}
			col++
		}
	}
	return grid
}

// E3 — a filled triangle leaves every interior row fully set between its
// left and right edges.
func TestPolygonFillsTriangle(t *testing.T) {
	c := newTestCanvas(20, 20)
	ok := c.Polygon([][]Point{{
		{X: 2, Y: 2}, {X: 16, Y: 2}, {X: 9, Y: 16},
	}}, 1)
	if !ok {
		t.Fatal("Polygon returned false for a valid outer ring")
	}

	frame := c.Frame()
	if frame == "" {
		t.Fatal("expected non-empty frame after filling a triangle")
	}

	px := setPixels(frame, 20, 20)
	for y := 2; y <= 16; y++ {
		left, right := -1, -1
		for x := 0; x < 20; x++ {
			if px[y][x] {
				if left < 0 {
					left = x
				}
				right = x
			}
		}
		if left < 0 {
			t.Errorf("row %d: no pixel set inside the triangle", y)
			continue
		}
		for x := left; x <= right; x++ {
			if !px[y][x] {
				t.Errorf("row %d: gap at x=%d between edges %d and %d", y, x, left, right)
			}
		}
	}
}

func TestPolygonRejectsDegenerateOuterRing(t *testing.T) {
	c := newTestCanvas(10, 10)
	if c.Polygon([][]Point{{{X: 0, Y: 0}, {X: 1, Y: 1}}}, 1) {
		t.Error("Polygon should fail for an outer ring with < 3 vertices")
	}
}

func TestPolygonSkipsDegenerateHole(t *testing.T) {
	c := newTestCanvas(20, 20)
	outer := []Point{{X: 2, Y: 2}, {X: 16, Y: 2}, {X: 16, Y: 16}, {X: 2, Y: 16}}
	degenerateHole := []Point{{X: 5, Y: 5}, {X: 6, Y: 6}}
	if !c.Polygon([][]Point{outer, degenerateHole}, 1) {
		t.Error("a degenerate hole should be skipped, not fail the whole polygon")
	}
}

func TestPolygonWithHoleSucceeds(t *testing.T) {
	c := newTestCanvas(40, 40)
	outer := []Point{{X: 2, Y: 2}, {X: 30, Y: 2}, {X: 30, Y: 30}, {X: 2, Y: 30}}
	hole := []Point{{X: 10, Y: 10}, {X: 20, Y: 10}, {X: 20, Y: 20}, {X: 10, Y: 20}}
	if !c.Polygon([][]Point{outer, hole}, 1) {
		t.Fatal("Polygon with a valid hole should succeed")
	}
}

func TestLineDrawsEndpoints(t *testing.T) {
	c := newTestCanvas(10, 10)
	c.Line(Point{X: 0, Y: 0}, Point{X: 8, Y: 0}, 1, 1)
	frame := c.Frame()
	if frame == "" {
		t.Fatal("expected non-empty frame after drawing a line")
	}
	px := setPixels(frame, 10, 10)
	if !px[0][0] || !px[0][8] {
		t.Errorf("line endpoints (0,0)=%v (8,0)=%v, want both set", px[0][0], px[0][8])
	}
}

func TestPolylineConnectsSegments(t *testing.T) {
	c := newTestCanvas(12, 12)
	c.Polyline([]Point{{X: 0, Y: 0}, {X: 8, Y: 0}, {X: 8, Y: 8}}, 1, 1)
	frame := c.Frame()
	if frame == "" {
		t.Fatal("expected non-empty frame after drawing a polyline")
	}
	px := setPixels(frame, 12, 12)
	for _, p := range []Point{{X: 0, Y: 0}, {X: 8, Y: 0}, {X: 8, Y: 4}, {X: 8, Y: 8}} {
		if !px[p.Y][p.X] {
			t.Errorf("polyline pixel (%d,%d) not set", p.X, p.Y)
		}
	}
}

func TestTriangulateRejectsTooFewVertices(t *testing.T) {
	if _, ok := Triangulate([][]Point{{{X: 0, Y: 0}, {X: 1, Y: 1}}}); ok {
		t.Error("Triangulate should reject an outer ring with < 3 vertices")
	}
}

func TestTriangulateSquareProducesTwoTriangles(t *testing.T) {
	square := []Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}
	tris, ok := Triangulate([][]Point{square})
	if !ok {
		t.Fatal("Triangulate should succeed on a convex square")
	}
	if len(tris) != 2 {
		t.Errorf("expected 2 triangles for a square, got %d", len(tris))
	}
}
