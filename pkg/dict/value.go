package dict

import (
	"math"
	"slices"

	perr "github.com/matzehuels/plotmsg/pkg/errors"
)

// Kind identifies which variant of a [Value] is active.
type Kind uint8

const (
	// KindUnset is the zero Value: a key that was declared but never assigned.
	KindUnset Kind = iota
	KindBool
	KindInt
	KindDouble
	KindString
	KindDoubleSeries
	KindIntSeries
	KindStringSeries
	KindAnySeries
	KindDict
)

var kindNames = [...]string{
	KindUnset:        "Unset",
	KindBool:         "Bool",
	KindInt:          "Int",
	KindDouble:       "Double",
	KindString:       "String",
	KindDoubleSeries: "DoubleSeries",
	KindIntSeries:    "IntSeries",
	KindStringSeries: "StringSeries",
	KindAnySeries:    "AnySeries",
	KindDict:         "Dict",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "<unknown Kind>"
}

// Value is a tagged union holding exactly one variant at a time.
// The zero Value is unset.
//
// Series payloads are never mutated once stored, so Values may be copied
// freely; a nested Dictionary is owned by the Value that holds it.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
	ds   []float64
	is   []int64
	ss   []string
	as   []Scalar
	d    *Dictionary
}

// BoolValue returns a Value for a bool.
func BoolValue(v bool) Value { return Value{kind: KindBool, b: v} }

// IntValue returns a Value for an integer.
func IntValue(v int64) Value { return Value{kind: KindInt, i: v} }

// DoubleValue returns a Value for a float64.
func DoubleValue(v float64) Value { return Value{kind: KindDouble, f: v} }

// StringValue returns a Value for a string.
func StringValue(v string) Value { return Value{kind: KindString, s: v} }

// DoubleSeries returns a Value for a series of doubles. The slice is copied.
func DoubleSeries(v []float64) Value { return Value{kind: KindDoubleSeries, ds: slices.Clone(v)} }

// IntSeries returns a Value for a series of ints. The slice is copied.
func IntSeries(v []int64) Value { return Value{kind: KindIntSeries, is: slices.Clone(v)} }

// StringSeries returns a Value for a series of strings. The slice is copied.
func StringSeries(v []string) Value { return Value{kind: KindStringSeries, ss: slices.Clone(v)} }

// AnySeries returns a Value for a heterogeneous series with null gaps.
// The slice is copied.
func AnySeries(v []Scalar) Value { return Value{kind: KindAnySeries, as: slices.Clone(v)} }

// DictValue returns a Value holding d. The backing store of d is moved into
// the Value and d is left empty. A nil d yields an empty nested Dictionary.
func DictValue(d *Dictionary) Value {
	if d == nil {
		return Value{kind: KindDict, d: &Dictionary{}}
	}
	return Value{kind: KindDict, d: d.Take()}
}

// Kind returns the active variant.
func (v Value) Kind() Kind { return v.kind }

// IsUnset reports whether v holds no value.
func (v Value) IsUnset() bool { return v.kind == KindUnset }

// Bool returns v's bool. It panics if v is not a KindBool.
func (v Value) Bool() bool {
	v.mustBe(KindBool)
	return v.b
}

// Int returns v's integer. It panics if v is not a KindInt.
func (v Value) Int() int64 {
	v.mustBe(KindInt)
	return v.i
}

// Double returns v's float64. It panics if v is not a KindDouble.
func (v Value) Double() float64 {
	v.mustBe(KindDouble)
	return v.f
}

// Str returns v's string. It panics if v is not a KindString.
// Use String for the diagnostic rendering of any Value.
func (v Value) Str() string {
	v.mustBe(KindString)
	return v.s
}

// Doubles returns a copy of v's double series.
func (v Value) Doubles() []float64 {
	v.mustBe(KindDoubleSeries)
	return slices.Clone(v.ds)
}

// Ints returns a copy of v's int series.
func (v Value) Ints() []int64 {
	v.mustBe(KindIntSeries)
	return slices.Clone(v.is)
}

// Strings returns a copy of v's string series.
func (v Value) Strings() []string {
	v.mustBe(KindStringSeries)
	return slices.Clone(v.ss)
}

// Anys returns a copy of v's any-series.
func (v Value) Anys() []Scalar {
	v.mustBe(KindAnySeries)
	return slices.Clone(v.as)
}

// Dict returns the nested Dictionary owned by v. Mutating the result
// mutates the Dictionary v belongs to.
func (v Value) Dict() *Dictionary {
	v.mustBe(KindDict)
	return v.d
}

// SeriesLen returns the element count of a series Value, or 0 otherwise.
func (v Value) SeriesLen() int {
	switch v.kind {
	case KindDoubleSeries:
		return len(v.ds)
	case KindIntSeries:
		return len(v.is)
	case KindStringSeries:
		return len(v.ss)
	case KindAnySeries:
		return len(v.as)
	}
	return 0
}

// Equal reports whether v and w hold the same variant with the same content.
// Doubles compare by bit pattern, matching their wire encoding.
func (v Value) Equal(w Value) bool {
	if v.kind != w.kind {
		return false
	}
	switch v.kind {
	case KindUnset:
		return true
	case KindBool:
		return v.b == w.b
	case KindInt:
		return v.i == w.i
	case KindDouble:
		return math.Float64bits(v.f) == math.Float64bits(w.f)
	case KindString:
		return v.s == w.s
	case KindDoubleSeries:
		return slices.EqualFunc(v.ds, w.ds, func(a, b float64) bool {
			return math.Float64bits(a) == math.Float64bits(b)
		})
	case KindIntSeries:
		return slices.Equal(v.is, w.is)
	case KindStringSeries:
		return slices.Equal(v.ss, w.ss)
	case KindAnySeries:
		return slices.EqualFunc(v.as, w.as, Scalar.Equal)
	case KindDict:
		return v.d.Equal(w.d)
	default:
		panic(unknownKind(v.kind))
	}
}

// clone returns an independent copy of v, recursing into nested dictionaries.
func (v Value) clone() Value {
	switch v.kind {
	case KindUnset, KindBool, KindInt, KindDouble, KindString:
		return v
	case KindDoubleSeries:
		return Value{kind: v.kind, ds: slices.Clone(v.ds)}
	case KindIntSeries:
		return Value{kind: v.kind, is: slices.Clone(v.is)}
	case KindStringSeries:
		return Value{kind: v.kind, ss: slices.Clone(v.ss)}
	case KindAnySeries:
		return Value{kind: v.kind, as: slices.Clone(v.as)}
	case KindDict:
		return Value{kind: v.kind, d: v.d.Clone()}
	default:
		panic(unknownKind(v.kind))
	}
}

func (v Value) mustBe(k Kind) {
	if v.kind != k {
		panic(perr.New(perr.ErrCodeInvalidInput, "dict: Value is %s, not %s", v.kind, k))
	}
}

func unknownKind(k Kind) error {
	return perr.New(perr.ErrCodeUnknownTag, "dict: unrecognized value kind %d", uint8(k))
}
