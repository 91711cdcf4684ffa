package tile

import (
	"bytes"
	"compress/gzip"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/mvt"
	"github.com/paulmach/orb/geojson"

	"github.com/mapscii-go/mapscii/internal/utils"
	"github.com/mapscii-go/mapscii/style"
)

// rtree node size ~18, per spec.md §4.5.
const (
	rtreeMinChildren = 9
	rtreeMaxChildren = 18
)

var gzipMagic = [2]byte{0x1F, 0x8B}

// Decode parses a tile byte buffer (gunzipping first if it carries the
// gzip magic), styles every feature against styler, and returns the
// resulting layer-indexed Tile. language picks the `name_<language>` label
// preference; pass "" to skip straight to name_en.
func Decode(data []byte, styler *style.Styler, language string) (*Tile, error) {
	raw, err := maybeGunzip(data)
	if err != nil {
		return nil, errors.Wrap(err, "tile: gunzip")
	}

	mvtLayers, err := mvt.Unmarshal(raw)
	if err != nil {
		return nil, errors.Wrap(err, "tile: decode mvt")
	}

	t := &Tile{Layers: make(map[string]*Layer, len(mvtLayers))}
	for _, layer := range mvtLayers {
		name := layer.Name
		tree := rtreego.NewTree(2, rtreeMinChildren, rtreeMaxChildren)
		for _, feature := range layer.Features {
			if feature.Geometry == nil {
				continue
			}
			geomType, ok := classify(feature.Geometry)
			if !ok {
				continue
			}
			styleLayer, ok := styler.GetStyleFor(name, style.Properties(feature.Properties))
			if !ok {
				continue
			}
			for _, rec := range buildRecords(feature, geomType, styleLayer, language) {
				tree.Insert(rec)
			}
		}
		t.Layers[name] = &Layer{Extent: int(layer.Extent), Tree: tree}
	}
	return t, nil
}

func maybeGunzip(data []byte) ([]byte, error) {
	if len(data) < 2 || data[0] != gzipMagic[0] || data[1] != gzipMagic[1] {
		return data, nil
	}
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

func classify(g orb.Geometry) (GeomType, bool) {
	switch g.(type) {
	case orb.Point, orb.MultiPoint:
		return GeomPoint, true
	case orb.LineString, orb.MultiLineString:
		return GeomLineString, true
	case orb.Polygon, orb.MultiPolygon:
		return GeomPolygon, true
	default:
		return 0, false
	}
}

func buildRecords(f *geojson.Feature, geomType GeomType, styleLayer *style.Layer, language string) []*Record {
	props := style.Properties(f.Properties)
	sortKey := sortKeyOf(props)
	label := ""
	if styleLayer.Type == "symbol" {
		label = labelTextOf(props, language)
	}
	color := resolveColor(styleLayer, geomType)

	switch geomType {
	case GeomPolygon:
		var polys [][][]Point
		switch g := f.Geometry.(type) {
		case orb.Polygon:
			polys = [][][]Point{toPolygonRings(g)}
		case orb.MultiPolygon:
			for _, p := range g {
				polys = append(polys, toPolygonRings(p))
			}
		}
		rec := &Record{
			SourceLayer: styleLayer.SourceLayer, Style: styleLayer, Label: label,
			SortKey: sortKey, GeomType: geomType, Polygons: polys, Color: color,
		}
		rec.bbox = boundsOfPolygons(polys)
		return []*Record{rec}

	case GeomLineString:
		var lines [][]Point
		switch g := f.Geometry.(type) {
		case orb.LineString:
			lines = [][]Point{toLine(g)}
		case orb.MultiLineString:
			for _, l := range g {
				lines = append(lines, toLine(l))
			}
		}
		recs := make([]*Record, 0, len(lines))
		for _, ln := range lines {
			rec := &Record{
				SourceLayer: styleLayer.SourceLayer, Style: styleLayer, Label: label,
				SortKey: sortKey, GeomType: geomType, Line: ln, Color: color,
			}
			rec.bbox = boundsOfPoints(ln)
			recs = append(recs, rec)
		}
		return recs

	default: // GeomPoint
		var pts []Point
		switch g := f.Geometry.(type) {
		case orb.Point:
			pts = []Point{toPoint(g)}
		case orb.MultiPoint:
			for _, p := range g {
				pts = append(pts, toPoint(orb.Point(p)))
			}
		}
		recs := make([]*Record, 0, len(pts))
		for _, p := range pts {
			line := []Point{p}
			rec := &Record{
				SourceLayer: styleLayer.SourceLayer, Style: styleLayer, Label: label,
				SortKey: sortKey, GeomType: geomType, Line: line, Color: color,
			}
			rec.bbox = boundsOfPoints(line)
			recs = append(recs, rec)
		}
		return recs
	}
}

func toPoint(p orb.Point) Point { return Point{X: p[0], Y: p[1]} }

func toLine(ls orb.LineString) []Point {
	pts := make([]Point, len(ls))
	for i, p := range ls {
		pts[i] = toPoint(p)
	}
	return pts
}

func toPolygonRings(p orb.Polygon) [][]Point {
	rings := make([][]Point, len(p))
	for i, r := range p {
		rings[i] = toLine(orb.LineString(r))
	}
	return rings
}

// resolveColor picks the paint key appropriate to geomType, resolves its
// first zoom stop, and converts the CSS color to a 256-palette index. A
// missing or unparseable color resolves to palette index 0 rather than
// failing the feature, per spec §7's "degrade, don't crash" rule.
func resolveColor(l *style.Layer, geomType GeomType) uint8 {
	key := "fill-color"
	switch geomType {
	case GeomLineString:
		key = "line-color"
	case GeomPoint:
		key = "text-color"
	}
	val, ok := l.Paint[key]
	if !ok {
		return 0
	}
	idx, err := utils.ColorToPaletteIndex(val.FirstStop())
	if err != nil {
		return 0
	}
	return idx
}

func sortKeyOf(props style.Properties) int {
	if n, ok := propNumber(props, "localrank"); ok {
		return int(n)
	}
	if n, ok := propNumber(props, "scalerank"); ok {
		return int(n)
	}
	return 0
}

func propNumber(props style.Properties, key string) (float64, bool) {
	v, ok := props[key]
	if !ok {
		return 0, false
	}
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	default:
		return 0, false
	}
}

// labelTextOf picks the label text in priority order: name_<language>,
// name_en, name, house_num.
func labelTextOf(props style.Properties, language string) string {
	candidates := make([]string, 0, 4)
	if language != "" {
		candidates = append(candidates, "name_"+language)
	}
	candidates = append(candidates, "name_en", "name", "house_num")

	for _, k := range candidates {
		if s, ok := props[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
