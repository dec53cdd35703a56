package dict

import (
	"math"

	perr "github.com/matzehuels/plotmsg/pkg/errors"
)

// ScalarKind identifies which variant of a [Scalar] is active.
type ScalarKind uint8

const (
	// ScalarNull marks a gap; renderers break the line at this position.
	ScalarNull ScalarKind = iota
	ScalarString
	ScalarDouble
	ScalarInt
)

func (k ScalarKind) String() string {
	switch k {
	case ScalarNull:
		return "Null"
	case ScalarString:
		return "String"
	case ScalarDouble:
		return "Double"
	case ScalarInt:
		return "Int"
	}
	return "<unknown ScalarKind>"
}

// Scalar is one element of an any-series. The zero Scalar is [Null].
type Scalar struct {
	kind ScalarKind
	s    string
	f    float64
	i    int64
}

// Null is the gap marker of an any-series.
var Null = Scalar{}

// AnyString returns a string element.
func AnyString(v string) Scalar { return Scalar{kind: ScalarString, s: v} }

// AnyDouble returns a double element.
func AnyDouble(v float64) Scalar { return Scalar{kind: ScalarDouble, f: v} }

// AnyInt returns an integer element.
func AnyInt(v int64) Scalar { return Scalar{kind: ScalarInt, i: v} }

// Kind returns the active variant.
func (s Scalar) Kind() ScalarKind { return s.kind }

// IsNull reports whether s is a gap marker.
func (s Scalar) IsNull() bool { return s.kind == ScalarNull }

// Str returns the string payload, or "" for other kinds.
func (s Scalar) Str() string { return s.s }

// Double returns the double payload, or 0 for other kinds.
func (s Scalar) Double() float64 { return s.f }

// Int returns the integer payload, or 0 for other kinds.
func (s Scalar) Int() int64 { return s.i }

// Equal reports whether s and t hold the same variant and payload.
func (s Scalar) Equal(t Scalar) bool {
	if s.kind != t.kind {
		return false
	}
	switch s.kind {
	case ScalarString:
		return s.s == t.s
	case ScalarDouble:
		return math.Float64bits(s.f) == math.Float64bits(t.f)
	case ScalarInt:
		return s.i == t.i
	}
	return true
}

// Any returns the payload as a plain Go value: nil, string, float64 or int64.
func (s Scalar) Any() any {
	switch s.kind {
	case ScalarString:
		return s.s
	case ScalarDouble:
		return s.f
	case ScalarInt:
		return s.i
	}
	return nil
}

// AnyOf builds an any-series from Go values. nil and [Null] become gaps;
// strings, floats and integers become the matching element.
// It panics on any other type.
//
//	xs := dict.AnyOf(0, 1, nil, 2.5, 3)  // 0, 1, <gap>, 2.5, 3
func AnyOf(vals ...any) []Scalar {
	out, err := BuildAnySeries(vals...)
	if err != nil {
		panic(err)
	}
	return out
}

// BuildAnySeries is like [AnyOf] but returns an error instead of panicking.
func BuildAnySeries(vals ...any) ([]Scalar, error) {
	out := make([]Scalar, 0, len(vals))
	for i, v := range vals {
		s, err := scalarOf(v)
		if err != nil {
			return nil, perr.Wrap(perr.ErrCodeUnsupportedType, err, "any-series element %d", i)
		}
		out = append(out, s)
	}
	return out, nil
}

// AppendNull appends a gap marker to xs.
func AppendNull(xs []Scalar) []Scalar { return append(xs, Null) }

func scalarOf(v any) (Scalar, error) {
	switch x := v.(type) {
	case nil:
		return Null, nil
	case Scalar:
		return x, nil
	case string:
		return AnyString(x), nil
	case float64:
		return AnyDouble(x), nil
	case float32:
		return AnyDouble(float64(x)), nil
	case int:
		return AnyInt(int64(x)), nil
	case int8:
		return AnyInt(int64(x)), nil
	case int16:
		return AnyInt(int64(x)), nil
	case int32:
		return AnyInt(int64(x)), nil
	case int64:
		return AnyInt(x), nil
	case uint8:
		return AnyInt(int64(x)), nil
	case uint16:
		return AnyInt(int64(x)), nil
	case uint32:
		return AnyInt(int64(x)), nil
	}
	return Null, perr.New(perr.ErrCodeUnsupportedType, "unsupported any-series type %T", v)
}
