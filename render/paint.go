package render

import (
	"math"
	"sort"
	"strconv"

	"github.com/dhconnelly/rtreego"

	"github.com/mapscii-go/mapscii/canvas"
	"github.com/mapscii-go/mapscii/internal/utils"
	"github.com/mapscii-go/mapscii/style"
	"github.com/mapscii-go/mapscii/tile"
)

// viewportGeom carries the per-draw projection parameters every tile's
// features are converted through. tilePixelSize is the canvas-pixel
// footprint of one full z-level tile; dividing it by a tile's extent
// gives the extent-unit-to-canvas-pixel scale used below.
type viewportGeom struct {
	centerTX, centerTY float64
	tilePixelSize      float64
	w, h               int
}

// scaleFor returns the canvas-pixels-per-extent-unit factor for a tile
// whose MVT layer declared extent.
func (v viewportGeom) scaleFor(extent int) float64 {
	return v.tilePixelSize / float64(extent)
}

// tileOriginIn returns the extent-coordinate of the viewport center,
// expressed within coord's own tile (which may fall outside [0, extent)
// when the center is in a neighboring tile — that's fine, projection is
// a plain affine transform).
func (v viewportGeom) tileOriginIn(coord tileCoord, extent int) (ox, oy float64) {
	ox = (v.centerTX - float64(coord.X)) * float64(extent)
	oy = (v.centerTY - float64(coord.Y)) * float64(extent)
	return
}

func (v viewportGeom) project(p tile.Point, coord tileCoord, extent int) canvas.Point {
	ox, oy := v.tileOriginIn(coord, extent)
	scale := v.scaleFor(extent)
	cx := (p.X-ox)*scale + float64(v.w)/2
	cy := (p.Y-oy)*scale + float64(v.h)/2
	return canvas.Point{X: int(math.Round(cx)), Y: int(math.Round(cy))}
}

// extentViewportRect returns the viewport's canvas rectangle expressed in
// coord's tile-extent coordinate space, for querying that tile's R-tree.
func (v viewportGeom) extentViewportRect(coord tileCoord, extent int) (*rtreego.Rect, error) {
	ox, oy := v.tileOriginIn(coord, extent)
	scale := v.scaleFor(extent)
	minX := ox - float64(v.w)/2/scale
	minY := oy - float64(v.h)/2/scale
	lenX := float64(v.w) / scale
	lenY := float64(v.h) / scale
	return rtreego.NewRect(rtreego.Point{minX, minY}, []float64{lenX, lenY})
}

func (r *Renderer) paintBackground() {
	for _, layer := range r.styler.Layers() {
		if layer.Type != "background" {
			continue
		}
		val, ok := layer.Paint["background-color"]
		if !ok {
			continue
		}
		idx, err := utils.ColorToPaletteIndex(val.FirstStop())
		if err != nil {
			continue
		}
		r.canvas.SetBackground(idx)
		return
	}
}

// paintLayer draws every feature of layer across the tiles that were
// fetched, in ascending sort order within the layer (spec.md §4.7's
// ordering guarantee), before moving on to the next layer.
func (r *Renderer) paintLayer(layer *style.Layer, coords []tileCoord, tiles map[tileCoord]*tile.Tile, view viewportGeom) {
	type hit struct {
		rec   *tile.Record
		coord tileCoord
	}
	var hits []hit

	for _, coord := range coords {
		t, ok := tiles[coord]
		if !ok {
			continue
		}
		tl, ok := t.Layer(layer.SourceLayer)
		if !ok {
			continue
		}
		rect, err := view.extentViewportRect(coord, tl.Extent)
		if err != nil {
			continue
		}
		for _, spatial := range tl.Tree.SearchIntersect(rect) {
			rec, ok := spatial.(*tile.Record)
			if !ok {
				continue
			}
			hits = append(hits, hit{rec: rec, coord: coord})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].rec.SortKey < hits[j].rec.SortKey })

	for _, h := range hits {
		extent := tiles[h.coord].Layers[layer.SourceLayer].Extent
		r.paintRecord(layer, h.rec, h.coord, extent, view)
	}
}

func (r *Renderer) paintRecord(layer *style.Layer, rec *tile.Record, coord tileCoord, extent int, view viewportGeom) {
	switch layer.Type {
	case "fill":
		for _, poly := range rec.Polygons {
			rings := make([][]canvas.Point, len(poly))
			for i, ring := range poly {
				rings[i] = projectPoints(ring, coord, extent, view)
			}
			r.canvas.Polygon(rings, rec.Color)
		}

	case "line":
		points := projectPoints(rec.Line, coord, extent, view)
		r.canvas.Polyline(points, rec.Color, lineWidth(layer))

	case "symbol":
		r.paintSymbol(layer, rec, coord, extent, view)
	}
}

func projectPoints(pts []tile.Point, coord tileCoord, extent int, view viewportGeom) []canvas.Point {
	out := make([]canvas.Point, len(pts))
	for i, p := range pts {
		out[i] = view.project(p, coord, extent)
	}
	return out
}

func lineWidth(layer *style.Layer) int {
	val, ok := layer.Paint["line-width"]
	if !ok {
		return 1
	}
	w, err := strconv.ParseFloat(val.FirstStop(), 64)
	if err != nil || w <= 0 {
		return 1
	}
	return int(math.Round(w))
}

func (r *Renderer) paintSymbol(layer *style.Layer, rec *tile.Record, coord tileCoord, extent int, view viewportGeom) {
	centroid := centroidOf(rec.Line)
	pt := view.project(centroid, coord, extent)

	margin := r.cfg.MarginFor(layer.SourceLayer)
	cluster := r.cfg.ClusterFor(layer.SourceLayer)

	if rec.Label != "" {
		if r.labels.WriteIfPossible(rec.Label, pt.X, pt.Y, rec, margin) {
			r.canvas.Text(rec.Label, pt.X, pt.Y, rec.Color, true)
			return
		}
		if !cluster {
			return
		}
	}

	marker := string(r.cfg.PoiMarker)
	if r.labels.WriteIfPossible(marker, pt.X, pt.Y, rec, margin) {
		r.canvas.Text(marker, pt.X, pt.Y, rec.Color, true)
	}
}

func centroidOf(pts []tile.Point) tile.Point {
	if len(pts) == 0 {
		return tile.Point{}
	}
	var sx, sy float64
	for _, p := range pts {
		sx += p.X
		sy += p.Y
	}
	n := float64(len(pts))
	return tile.Point{X: sx / n, Y: sy / n}
}
