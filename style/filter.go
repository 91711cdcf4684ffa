package style

import (
	"strconv"

	"github.com/tidwall/gjson"
)

// FilterKind tags the compiled predicate forms (all, any, none, ==, !=, in,
// !in, has, !has, <, <=, >, >=), plus the always-true default for an absent
// or unrecognized filter.
type FilterKind int

const (
	FilterAlwaysTrue FilterKind = iota
	FilterAll
	FilterAny
	FilterNone
	FilterEq
	FilterNeq
	FilterIn
	FilterNotIn
	FilterHas
	FilterNotHas
	FilterLt
	FilterLte
	FilterGt
	FilterGte
)

// Filter is a compiled Mapbox-style filter predicate: a tagged sum over the
// forms in FilterKind. All, Any, and None hold Sub; the comparison and
// membership forms hold Key/Values/Num.
type Filter struct {
	Kind   FilterKind
	Key    string
	Values []string
	Num    float64
	hasNum bool
	Sub    []*Filter
}

// Properties is the per-feature attribute bag filters evaluate against.
type Properties map[string]any

// Matches evaluates the compiled predicate against props. The "all" form is
// implemented as the correct logical AND — spec.md's recorded defect is
// that its source returns true when any sub-filter *fails*; that inverted
// behavior is deliberately not reproduced here.
func (f *Filter) Matches(props Properties) bool {
	switch f.Kind {
	case FilterAlwaysTrue:
		return true
	case FilterAll:
		for _, s := range f.Sub {
			if !s.Matches(props) {
				return false
			}
		}
		return true
	case FilterAny:
		for _, s := range f.Sub {
			if s.Matches(props) {
				return true
			}
		}
		return false
	case FilterNone:
		for _, s := range f.Sub {
			if s.Matches(props) {
				return false
			}
		}
		return true
	case FilterEq:
		return propString(props, f.Key) == f.Values[0]
	case FilterNeq:
		return propString(props, f.Key) != f.Values[0]
	case FilterIn:
		v := propString(props, f.Key)
		for _, c := range f.Values {
			if c == v {
				return true
			}
		}
		return false
	case FilterNotIn:
		v := propString(props, f.Key)
		for _, c := range f.Values {
			if c == v {
				return false
			}
		}
		return true
	case FilterHas:
		v, ok := props[f.Key]
		return ok && isTruthy(v)
	case FilterNotHas:
		v, ok := props[f.Key]
		return !ok || !isTruthy(v)
	case FilterLt, FilterLte, FilterGt, FilterGte:
		pv, ok := propNumber(props, f.Key)
		if !ok || !f.hasNum {
			return false
		}
		switch f.Kind {
		case FilterLt:
			return pv < f.Num
		case FilterLte:
			return pv <= f.Num
		case FilterGt:
			return pv > f.Num
		default:
			return pv >= f.Num
		}
	default:
		return true
	}
}

func isTruthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0
	default:
		return true
	}
}

func propString(props Properties, key string) string {
	v, ok := props[key]
	if !ok {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

func propNumber(props Properties, key string) (float64, bool) {
	v, ok := props[key]
	if !ok {
		return 0, false
	}
	switch t := v.(type) {
	case float64:
		return t, true
	case string:
		n, err := strconv.ParseFloat(t, 64)
		return n, err == nil
	default:
		return 0, false
	}
}

// compileFilter compiles a single filter array (or non-array, treated as
// malformed) into a Filter. Malformed input degrades to FilterAlwaysTrue and
// records a note in *defects, matching spec §7's StylerCompile rule: a bad
// filter must not stop the whole style from compiling.
func compileFilter(r gjson.Result, constants map[string]string, defects *[]string) *Filter {
	if !r.Exists() {
		return &Filter{Kind: FilterAlwaysTrue}
	}

	degrade := func(reason string) *Filter {
		*defects = append(*defects, reason)
		return &Filter{Kind: FilterAlwaysTrue}
	}

	if !r.IsArray() {
		return degrade("malformed filter, not an array: " + r.Raw)
	}
	arr := r.Array()
	if len(arr) == 0 {
		return &Filter{Kind: FilterAlwaysTrue}
	}

	op := arr[0].String()
	switch op {
	case "all", "any", "none":
		sub := make([]*Filter, 0, len(arr)-1)
		for _, s := range arr[1:] {
			sub = append(sub, compileFilter(s, constants, defects))
		}
		kind := FilterAll
		if op == "any" {
			kind = FilterAny
		} else if op == "none" {
			kind = FilterNone
		}
		return &Filter{Kind: kind, Sub: sub}

	case "==", "!=", "<", "<=", ">", ">=":
		if len(arr) < 3 {
			return degrade("malformed comparison filter: " + r.Raw)
		}
		kind := map[string]FilterKind{
			"==": FilterEq, "!=": FilterNeq,
			"<": FilterLt, "<=": FilterLte, ">": FilterGt, ">=": FilterGte,
		}[op]
		val := resolveConstant(arr[2].String(), constants)
		num, hasNum := arr[2].Num, arr[2].Type == gjson.Number
		return &Filter{Kind: kind, Key: arr[1].String(), Values: []string{val}, Num: num, hasNum: hasNum}

	case "in", "!in":
		if len(arr) < 2 {
			return degrade("malformed membership filter: " + r.Raw)
		}
		vals := make([]string, 0, len(arr)-2)
		for _, v := range arr[2:] {
			vals = append(vals, resolveConstant(v.String(), constants))
		}
		kind := FilterIn
		if op == "!in" {
			kind = FilterNotIn
		}
		return &Filter{Kind: kind, Key: arr[1].String(), Values: vals}

	case "has", "!has":
		if len(arr) < 2 {
			return degrade("malformed has filter: " + r.Raw)
		}
		kind := FilterHas
		if op == "!has" {
			kind = FilterNotHas
		}
		return &Filter{Kind: kind, Key: arr[1].String()}

	default:
		return degrade("unknown filter operator: " + op)
	}
}

func resolveConstant(s string, constants map[string]string) string {
	if len(s) > 0 && s[0] == '@' {
		if v, ok := constants[s[1:]]; ok {
			return v
		}
	}
	return s
}
