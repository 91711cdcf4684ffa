package tile

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/mvt"
	"github.com/paulmach/orb/geojson"

	"github.com/mapscii-go/mapscii/internal/utils"
	"github.com/mapscii-go/mapscii/style"
)

func mustCompileStyle(t *testing.T, doc string) *style.Styler {
	t.Helper()
	s, err := style.Compile([]byte(doc))
	if err != nil {
		t.Fatalf("style.Compile failed: %v", err)
	}
	return s
}

func TestClassify(t *testing.T) {
	cases := []struct {
		g    orb.Geometry
		want GeomType
	}{
		{orb.Point{0, 0}, GeomPoint},
		{orb.MultiPoint{{0, 0}}, GeomPoint},
		{orb.LineString{{0, 0}, {1, 1}}, GeomLineString},
		{orb.MultiLineString{{{0, 0}, {1, 1}}}, GeomLineString},
		{orb.Polygon{{{0, 0}, {1, 0}, {1, 1}, {0, 0}}}, GeomPolygon},
		{orb.MultiPolygon{{{{0, 0}, {1, 0}, {1, 1}, {0, 0}}}}, GeomPolygon},
	}
	for _, c := range cases {
		got, ok := classify(c.g)
		if !ok || got != c.want {
			t.Errorf("classify(%T) = %v, %v; want %v, true", c.g, got, ok, c.want)
		}
	}
}

func TestLabelTextOfPriority(t *testing.T) {
	cases := []struct {
		props    style.Properties
		language string
		want     string
	}{
		{style.Properties{"name_de": "Berlin", "name_en": "Berlin", "name": "Berlin"}, "de", "Berlin"},
		{style.Properties{"name_en": "Paris", "name": "Paris (fr)"}, "de", "Paris"},
		{style.Properties{"name": "Rome"}, "de", "Rome"},
		{style.Properties{"house_num": "12"}, "de", "12"},
		{style.Properties{}, "de", ""},
	}
	for i, c := range cases {
		got := labelTextOf(c.props, c.language)
		if got != c.want {
			t.Errorf("case %d: labelTextOf() = %q, want %q", i, got, c.want)
		}
	}
}

func TestSortKeyOf(t *testing.T) {
	if got := sortKeyOf(style.Properties{"localrank": float64(3), "scalerank": float64(9)}); got != 3 {
		t.Errorf("localrank should win, got %d", got)
	}
	if got := sortKeyOf(style.Properties{"scalerank": float64(5)}); got != 5 {
		t.Errorf("scalerank fallback, got %d", got)
	}
	if got := sortKeyOf(style.Properties{}); got != 0 {
		t.Errorf("default sort key should be 0, got %d", got)
	}
}

func TestResolveColorUsesFirstStopAndGeomKey(t *testing.T) {
	doc := `{"layers":[{"id":"roads","type":"line","source-layer":"roads",
		"paint":{"line-color":{"stops":[[5,"#ff0000"],[10,"#00ff00"]]}}}]}`
	s := mustCompileStyle(t, doc)
	layer := s.Layers()[0]

	idx := resolveColor(layer, GeomLineString)
	want, _ := utils.ColorToPaletteIndex("#ff0000")
	if idx != want {
		t.Errorf("resolveColor = %d, want index for #ff0000 (%d)", idx, want)
	}
}

func TestBuildRecordsSplitsMultiLineString(t *testing.T) {
	doc := `{"layers":[{"id":"roads","type":"line","source-layer":"roads"}]}`
	s := mustCompileStyle(t, doc)
	layer := s.Layers()[0]

	f := geojson.NewFeature(orb.MultiLineString{
		{{0, 0}, {10, 10}},
		{{20, 20}, {30, 30}},
	})
	f.Properties = geojson.Properties{"class": "motorway"}

	recs := buildRecords(f, GeomLineString, layer, "")
	if len(recs) != 2 {
		t.Fatalf("expected 2 records for a 2-line MultiLineString, got %d", len(recs))
	}
	for _, r := range recs {
		if len(r.Line) != 2 {
			t.Errorf("each split record should keep its own 2-point line, got %d points", len(r.Line))
		}
	}
}

func TestBuildRecordsKeepsPolygonAsOneRecord(t *testing.T) {
	doc := `{"layers":[{"id":"water","type":"fill","source-layer":"water"}]}`
	s := mustCompileStyle(t, doc)
	layer := s.Layers()[0]

	f := geojson.NewFeature(orb.MultiPolygon{
		{{{0, 0}, {10, 0}, {10, 10}, {0, 0}}},
		{{{20, 20}, {30, 20}, {30, 30}, {20, 20}}},
	})
	f.Properties = geojson.Properties{}

	recs := buildRecords(f, GeomPolygon, layer, "")
	if len(recs) != 1 {
		t.Fatalf("a multipolygon feature should stay one record, got %d", len(recs))
	}
	if len(recs[0].Polygons) != 2 {
		t.Errorf("expected 2 sub-polygons, got %d", len(recs[0].Polygons))
	}
}

// Property 6: Tile decode is idempotent — decoding the same bytes twice
// yields equal feature counts per layer.
func TestDecodeIdempotent(t *testing.T) {
	fc := geojson.NewFeatureCollection()
	f := geojson.NewFeature(orb.LineString{{0, 0}, {100, 100}})
	f.Properties = geojson.Properties{"class": "motorway", "name": "Test Road"}
	fc.Append(f)

	layers := mvt.NewLayers(map[string]*geojson.FeatureCollection{"roads": fc})
	data, err := mvt.Marshal(layers)
	if err != nil {
		t.Fatalf("mvt.Marshal failed: %v", err)
	}

	s := mustCompileStyle(t, `{"layers":[{"id":"roads","type":"line","source-layer":"roads"}]}`)

	t1, err1 := Decode(data, s, "")
	t2, err2 := Decode(data, s, "")
	if err1 != nil || err2 != nil {
		t.Fatalf("Decode errors: %v, %v", err1, err2)
	}

	l1, ok1 := t1.Layer("roads")
	l2, ok2 := t2.Layer("roads")
	if !ok1 || !ok2 {
		t.Fatal("expected a 'roads' layer in both decodes")
	}
	if l1.Tree.Size() != l2.Tree.Size() {
		t.Errorf("decode is not idempotent: %d vs %d features", l1.Tree.Size(), l2.Tree.Size())
	}
}

func TestDecodeGunzipsMagicBytes(t *testing.T) {
	fc := geojson.NewFeatureCollection()
	f := geojson.NewFeature(orb.Point{5, 5})
	f.Properties = geojson.Properties{"name": "Origin"}
	fc.Append(f)
	layers := mvt.NewLayers(map[string]*geojson.FeatureCollection{"places": fc})
	data, err := mvt.MarshalGzipped(layers)
	if err != nil {
		t.Fatalf("mvt.MarshalGzipped failed: %v", err)
	}

	s := mustCompileStyle(t, `{"layers":[{"id":"places","type":"symbol","source-layer":"places"}]}`)
	tl, err := Decode(data, s, "")
	if err != nil {
		t.Fatalf("Decode of gzipped tile failed: %v", err)
	}
	if _, ok := tl.Layer("places"); !ok {
		t.Error("expected a 'places' layer after gunzip")
	}
}
