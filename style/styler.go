// Package style compiles a Mapbox-GL-style document into a form cheap to
// evaluate per feature: constants substituted, ref-inheritance resolved,
// and every layer's filter reduced to a tagged-sum Filter tree instead of a
// JSON array walked at paint time.
package style

import (
	"github.com/cockroachdb/errors"
	"github.com/tidwall/gjson"
)

// Value is a compiled paint value: either a literal (already
// constant-substituted) or a zoom-stop record, of which only the first
// stop is honored — matching the GLOSSARY's "only the first stop is
// honored here."
type Value struct {
	Literal  string
	HasStops bool
	Stops    [][2]string
}

// FirstStop returns the value to paint with: the first zoom stop if this
// Value carries stops, otherwise the literal.
func (v Value) FirstStop() string {
	if v.HasStops && len(v.Stops) > 0 {
		return v.Stops[0][1]
	}
	return v.Literal
}

// Layer is a compiled style layer.
type Layer struct {
	ID          string
	Type        string // fill | line | symbol | background
	SourceLayer string
	MinZoom     float64
	MaxZoom     float64
	Paint       map[string]Value
	filter      *Filter
}

// Filter exposes the compiled predicate for callers that want to evaluate
// it directly (Styler.GetStyleFor is the usual entry point).
func (l *Layer) Filter() *Filter { return l.filter }

// Styler holds every compiled layer, indexed by id (for ref-inheritance)
// and by source-layer (for per-feature lookup), in style-declaration order.
type Styler struct {
	layers        []*Layer
	bySourceLayer map[string][]*Layer

	// Defects records compile-time anomalies (unknown ref targets,
	// malformed filters degraded to always-true) for diagnostics; it never
	// affects compilation's success.
	Defects []string
}

// Layers returns every compiled layer in style-declaration order.
func (s *Styler) Layers() []*Layer { return s.layers }

// Compile parses a Mapbox-GL-style document (name?, constants?, layers[])
// into a Styler. A document with no top-level object is an error; anything
// else degrades per layer rather than failing the whole compile.
func Compile(doc []byte) (*Styler, error) {
	root := gjson.ParseBytes(doc)
	if !root.Exists() || !root.IsObject() {
		return nil, errors.New("style: document is not a JSON object")
	}

	constants := map[string]string{}
	root.Get("constants").ForEach(func(k, v gjson.Result) bool {
		constants[k.String()] = v.String()
		return true
	})

	s := &Styler{bySourceLayer: map[string][]*Layer{}}
	byID := map[string]*Layer{}

	root.Get("layers").ForEach(func(_, v gjson.Result) bool {
		layer := compileLayer(v, constants, byID, &s.Defects)
		s.layers = append(s.layers, layer)
		if layer.ID != "" {
			byID[layer.ID] = layer
		}
		s.bySourceLayer[layer.SourceLayer] = append(s.bySourceLayer[layer.SourceLayer], layer)
		return true
	})

	return s, nil
}

func compileLayer(v gjson.Result, constants map[string]string, byID map[string]*Layer, defects *[]string) *Layer {
	layer := &Layer{ID: v.Get("id").String(), MaxZoom: 24}

	if ref := v.Get("ref").String(); ref != "" {
		if base, ok := byID[ref]; ok {
			layer.Type = base.Type
			layer.SourceLayer = base.SourceLayer
			layer.MinZoom = base.MinZoom
			layer.MaxZoom = base.MaxZoom
			layer.filter = base.filter
		} else {
			*defects = append(*defects, "layer "+layer.ID+" refs unknown layer "+ref)
		}
	}

	if t := v.Get("type"); t.Exists() {
		layer.Type = t.String()
	}
	if sl := v.Get("source-layer"); sl.Exists() {
		layer.SourceLayer = sl.String()
	}
	if mz := v.Get("minzoom"); mz.Exists() {
		layer.MinZoom = mz.Num
	}
	if mz := v.Get("maxzoom"); mz.Exists() {
		layer.MaxZoom = mz.Num
	}
	if f := v.Get("filter"); f.Exists() {
		layer.filter = compileFilter(f, constants, defects)
	} else if layer.filter == nil {
		layer.filter = &Filter{Kind: FilterAlwaysTrue}
	}

	layer.Paint = map[string]Value{}
	v.Get("paint").ForEach(func(k, pv gjson.Result) bool {
		layer.Paint[k.String()] = compileValue(pv, constants)
		return true
	})

	return layer
}

func compileValue(r gjson.Result, constants map[string]string) Value {
	if r.IsObject() && r.Get("stops").Exists() {
		var stops [][2]string
		r.Get("stops").ForEach(func(_, stop gjson.Result) bool {
			arr := stop.Array()
			if len(arr) == 2 {
				stops = append(stops, [2]string{arr[0].String(), resolveConstant(arr[1].String(), constants)})
			}
			return true
		})
		return Value{HasStops: true, Stops: stops}
	}
	return Value{Literal: resolveConstant(r.String(), constants)}
}

// GetStyleFor returns the first layer, in declaration order, whose source
// layer matches sourceLayer and whose compiled filter accepts props. The
// bool return is false ("do not draw") if no layer matches.
func (s *Styler) GetStyleFor(sourceLayer string, props Properties) (*Layer, bool) {
	for _, l := range s.bySourceLayer[sourceLayer] {
		if l.filter.Matches(props) {
			return l, true
		}
	}
	return nil, false
}
