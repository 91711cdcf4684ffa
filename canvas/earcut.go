package canvas

import "math"

// ecNode is a doubly-linked-list node used by the ear-clipping
// triangulator. Coordinates are float64 for area/intersection precision;
// they are truncated back to canvas pixels only when a triangle is emitted.
type ecNode struct {
	x, y       float64
	prev, next *ecNode
}

func ecInsert(x, y float64, last *ecNode) *ecNode {
	n := &ecNode{x: x, y: y}
	if last == nil {
		n.prev, n.next = n, n
		return n
	}
	n.next = last.next
	n.prev = last
	last.next.prev = n
	last.next = n
	return n
}

func ecRemove(n *ecNode) {
	n.prev.next = n.next
	n.next.prev = n.prev
}

// signedArea is twice the shoelace-formula signed area of a ring; positive
// means the ring is wound counter-clockwise in standard (x-right, y-up)
// orientation.
func signedArea(pts []Point) float64 {
	var sum float64
	n := len(pts)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += float64(pts[i].X)*float64(pts[j].Y) - float64(pts[j].X)*float64(pts[i].Y)
	}
	return sum
}

func buildRing(pts []Point, reverse bool) *ecNode {
	var last *ecNode
	n := len(pts)
	for i := 0; i < n; i++ {
		p := pts[i]
		if reverse {
			p = pts[n-1-i]
		}
		last = ecInsert(float64(p.X), float64(p.Y), last)
	}
	return last
}

// bridgePolygon splices hole's ring into a's ring by duplicating both nodes
// and rewiring around the hole once, the standard earcut hole-elimination
// technique: a -> b -> ...hole ring... -> bp -> b2 -> a2 -> an -> ...
func bridgePolygon(a, b *ecNode) *ecNode {
	a2 := &ecNode{x: a.x, y: a.y}
	b2 := &ecNode{x: b.x, y: b.y}
	an := a.next
	bp := b.prev

	a.next = b
	b.prev = a

	a2.next = an
	an.prev = a2

	b2.next = a2
	a2.prev = b2

	bp.next = b2
	b2.prev = bp

	return b2
}

func segmentsIntersect(ax, ay, bx, by, cx, cy, dx, dy float64) bool {
	d1 := crossSign(cx, cy, dx, dy, ax, ay)
	d2 := crossSign(cx, cy, dx, dy, bx, by)
	d3 := crossSign(ax, ay, bx, by, cx, cy)
	d4 := crossSign(ax, ay, bx, by, dx, dy)
	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}

func crossSign(ax, ay, bx, by, px, py float64) float64 {
	return (bx-ax)*(py-ay) - (px-ax)*(by-ay)
}

// bridgeCrossesRing reports whether segment (a,b) crosses any edge of the
// ring reachable from start, ignoring edges incident to a or b themselves.
func bridgeCrossesRing(a, b *ecNode, start *ecNode) bool {
	p := start
	for {
		q := p.next
		if p != a && p != b && q != a && q != b {
			if segmentsIntersect(a.x, a.y, b.x, b.y, p.x, p.y, q.x, q.y) {
				return true
			}
		}
		p = p.next
		if p == start {
			return false
		}
	}
}

// findBridge locates the outer-ring node closest to hole that can be
// connected without crossing an edge of the ring reachable from outerStart
// (the outer ring plus any holes already bridged into it); the edges of
// hole's own ring are not tested. This is a simplified,
// closest-visible-point stand-in for earcut.js's findHoleBridge: adequate
// for the mostly-convex building/parcel footprints vector tiles carry, at
// the cost of an O(n) scan per candidate rather than a directed ray cast.
func findBridge(hole, outerStart *ecNode) *ecNode {
	best := outerStart
	bestDist := math.Inf(1)
	p := outerStart
	for {
		if !bridgeCrossesRing(hole, p, outerStart) {
			dx, dy := p.x-hole.x, p.y-hole.y
			d := dx*dx + dy*dy
			if d < bestDist {
				bestDist = d
				best = p
			}
		}
		p = p.next
		if p == outerStart {
			break
		}
	}
	return best
}

func rightmostNode(ring *ecNode) *ecNode {
	best := ring
	p := ring.next
	for p != ring {
		if p.x > best.x {
			best = p
		}
		p = p.next
	}
	return best
}

// eliminateHoles bridges every hole ring into the outer ring, returning a
// single simple-polygon linked list ready for ear clipping. rings[0] is the
// outer ring; rings[1:] are holes. Holes with fewer than 3 vertices are
// silently skipped, per spec.
func eliminateHoles(rings [][]Point) *ecNode {
	outer := rings[0]
	var start *ecNode
	if signedArea(outer) < 0 {
		start = buildRing(outer, true)
	} else {
		start = buildRing(outer, false)
	}

	for _, hole := range rings[1:] {
		if len(hole) < 3 {
			continue
		}
		var holeRing *ecNode
		if signedArea(hole) > 0 {
			holeRing = buildRing(hole, true)
		} else {
			holeRing = buildRing(hole, false)
		}
		holeNode := rightmostNode(holeRing)
		bridge := findBridge(holeNode, start)
		start = bridgePolygon(bridge, holeNode)
	}
	return start
}

func triArea(a, b, c *ecNode) float64 {
	return (b.x-a.x)*(c.y-a.y) - (c.x-a.x)*(b.y-a.y)
}

func pointInTriangle(ax, ay, bx, by, cx, cy, px, py float64) bool {
	d1 := crossSign(ax, ay, bx, by, px, py)
	d2 := crossSign(bx, by, cx, cy, px, py)
	d3 := crossSign(cx, cy, ax, ay, px, py)
	hasNeg := d1 < 0 || d2 < 0 || d3 < 0
	hasPos := d1 > 0 || d2 > 0 || d3 > 0
	return !(hasNeg && hasPos)
}

func isEar(a, b, c *ecNode) bool {
	if triArea(a, b, c) <= 0 {
		return false
	}
	p := c.next
	for p != a {
		// Hole bridging duplicates vertices; a copy sitting exactly on one
		// of the triangle's corners does not block the ear.
		onCorner := (p.x == a.x && p.y == a.y) || (p.x == b.x && p.y == b.y) || (p.x == c.x && p.y == c.y)
		if !onCorner && pointInTriangle(a.x, a.y, b.x, b.y, c.x, c.y, p.x, p.y) {
			return false
		}
		p = p.next
	}
	return true
}

// ecTriangle is three canvas points, ready to hand to filledTriangle.
type ecTriangle [3]Point

func toPoint(n *ecNode) Point {
	return Point{X: int(math.Round(n.x)), Y: int(math.Round(n.y))}
}

// earClip triangulates the simple polygon starting at start with vertexCount
// nodes, in place (nodes are unlinked as they're consumed). It returns
// ok=false — with no triangles — if a full pass finds no valid ear, which
// spec treats as an unrecoverable triangulation failure for that polygon.
func earClip(start *ecNode, vertexCount int) ([]ecTriangle, bool) {
	if vertexCount < 3 {
		return nil, false
	}
	if vertexCount == 3 {
		return []ecTriangle{{toPoint(start.prev), toPoint(start), toPoint(start.next)}}, true
	}

	var triangles []ecTriangle
	remaining := vertexCount
	ear := start
	stall := 0

	for remaining > 3 {
		prev, next := ear.prev, ear.next
		if isEar(prev, ear, next) {
			triangles = append(triangles, ecTriangle{toPoint(prev), toPoint(ear), toPoint(next)})
			ecRemove(ear)
			ear = next
			remaining--
			stall = 0
			continue
		}
		ear = next
		stall++
		if stall > remaining {
			return nil, false
		}
	}

	triangles = append(triangles, ecTriangle{toPoint(ear.prev), toPoint(ear), toPoint(ear.next)})
	return triangles, true
}

// Triangulate implements the ear-cut algorithm of spec §4.2: rings is the
// outer ring followed by any hole rings, flattened conceptually into one
// bridged boundary before ear clipping. It returns ok=false if the outer
// ring has fewer than 3 vertices or the polygon cannot be fully
// triangulated; callers must not draw anything in that case.
func Triangulate(rings [][]Point) ([]ecTriangle, bool) {
	if len(rings) == 0 || len(rings[0]) < 3 {
		return nil, false
	}
	start := eliminateHoles(rings)
	count := 0
	p := start
	for {
		count++
		p = p.next
		if p == start {
			break
		}
	}
	return earClip(start, count)
}
