// Package tile decodes a Mapbox Vector Tile protobuf payload, applies a
// compiled style to each feature, and indexes the resulting drawable
// records in a per-layer R-tree.
package tile

import (
	"math"

	"github.com/dhconnelly/rtreego"
	"github.com/mapscii-go/mapscii/style"
)

// Point is a tile-extent coordinate (before any viewport projection).
type Point struct {
	X, Y float64
}

// GeomType is the feature's geometry kind, derived from the protobuf
// geometry-type enum — exported so callers (the renderer, tests) can branch
// on it without importing orb themselves.
type GeomType int

const (
	GeomPoint GeomType = iota
	GeomLineString
	GeomPolygon
)

// Record is one drawable feature (or, for line/point geometries, one
// sub-geometry of a feature — see spec.md §4.5 point 6). Exactly one of
// Polygons or Line is populated, matching GeomType.
type Record struct {
	SourceLayer string
	Style       *style.Layer
	Label       string
	SortKey     int
	GeomType    GeomType

	// Polygons holds one entry per sub-polygon (for a MultiPolygon
	// feature), each a ring list: outer boundary first, then holes.
	// Populated only when GeomType == GeomPolygon.
	Polygons [][][]Point

	// Line holds a single line-string, or a single point as a
	// length-1 line. Populated only when GeomType != GeomPolygon.
	Line []Point

	Color uint8

	bbox *rtreego.Rect
}

// Bounds satisfies rtreego.Spatial.
func (r *Record) Bounds() *rtreego.Rect { return r.bbox }

// Layer is one decoded tile layer: its declared extent and an R-tree of
// every styled Record built from its features.
type Layer struct {
	Extent int
	Tree   *rtreego.Rtree
}

// Tile is a fully decoded, immutable vector tile.
type Tile struct {
	Layers map[string]*Layer
}

// Layer looks up a decoded layer by name.
func (t *Tile) Layer(name string) (*Layer, bool) {
	l, ok := t.Layers[name]
	return l, ok
}

func boundsOfPoints(pts []Point) *rtreego.Rect {
	if len(pts) == 0 {
		r, _ := rtreego.NewRect(rtreego.Point{0, 0}, []float64{1, 1})
		return r
	}
	minX, minY := pts[0].X, pts[0].Y
	maxX, maxY := minX, minY
	for _, p := range pts[1:] {
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}
	lenX, lenY := maxX-minX, maxY-minY
	if lenX < 1 {
		lenX = 1
	}
	if lenY < 1 {
		lenY = 1
	}
	r, _ := rtreego.NewRect(rtreego.Point{minX, minY}, []float64{lenX, lenY})
	return r
}

func boundsOfPolygons(polys [][][]Point) *rtreego.Rect {
	var all []Point
	for _, poly := range polys {
		for _, ring := range poly {
			all = append(all, ring...)
		}
	}
	return boundsOfPoints(all)
}
