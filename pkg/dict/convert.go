package dict

import (
	"fmt"
	"math"

	perr "github.com/matzehuels/plotmsg/pkg/errors"
)

// ValueOf converts a Go value into a [Value].
//
// Supported inputs:
//   - nil: the unset Value
//   - Value: stored as is (a KindDict Value is moved, see below)
//   - bool, string, signed/unsigned integers, float32/float64
//   - []float64, []float32, []int, []int32, []int64, []string
//   - []Scalar and []any (both become an any-series)
//   - *Dictionary: moved in, the argument is left empty
//   - map[string]any: converted with [FromMap]
//
// A Dictionary passed by value is rejected: copying the struct would alias
// its backing store.
func ValueOf(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return Value{}, nil
	case Value:
		if x.kind == KindDict {
			return DictValue(x.d), nil
		}
		return x, nil
	case *Dictionary:
		return DictValue(x), nil
	case Dictionary:
		return Value{}, perr.New(perr.ErrCodeUnsupportedType, "pass *dict.Dictionary, not dict.Dictionary")
	case bool:
		return BoolValue(x), nil
	case string:
		return StringValue(x), nil
	case int:
		return IntValue(int64(x)), nil
	case int8:
		return IntValue(int64(x)), nil
	case int16:
		return IntValue(int64(x)), nil
	case int32:
		return IntValue(int64(x)), nil
	case int64:
		return IntValue(x), nil
	case uint8:
		return IntValue(int64(x)), nil
	case uint16:
		return IntValue(int64(x)), nil
	case uint32:
		return IntValue(int64(x)), nil
	case uint:
		if uint64(x) > math.MaxInt64 {
			return Value{}, perr.New(perr.ErrCodeUnsupportedType, "integer %d overflows int64", x)
		}
		return IntValue(int64(x)), nil
	case uint64:
		if x > math.MaxInt64 {
			return Value{}, perr.New(perr.ErrCodeUnsupportedType, "integer %d overflows int64", x)
		}
		return IntValue(int64(x)), nil
	case float32:
		return DoubleValue(float64(x)), nil
	case float64:
		return DoubleValue(x), nil
	case []float64:
		return DoubleSeries(x), nil
	case []float32:
		out := make([]float64, len(x))
		for i, f := range x {
			out[i] = float64(f)
		}
		return Value{kind: KindDoubleSeries, ds: out}, nil
	case []int:
		return Value{kind: KindIntSeries, is: widen(x)}, nil
	case []int32:
		return Value{kind: KindIntSeries, is: widen(x)}, nil
	case []int64:
		return IntSeries(x), nil
	case []string:
		return StringSeries(x), nil
	case []Scalar:
		return AnySeries(x), nil
	case []any:
		return listValue(x)
	case map[string]any:
		nested, err := FromMap(x)
		if err != nil {
			return Value{}, err
		}
		return Value{kind: KindDict, d: nested}, nil
	}
	return Value{}, perr.New(perr.ErrCodeUnsupportedType, "unsupported value type %T", v)
}

func widen[T int | int32](xs []T) []int64 {
	out := make([]int64, len(xs))
	for i, x := range xs {
		out[i] = int64(x)
	}
	return out
}

// FromMap converts a decoded document (YAML, JSON, TOML) into a Dictionary.
//
// Nested maps become nested Dictionaries. Lists become the narrowest series
// that holds every element: all integers give an int series, numbers with at
// least one float give a double series, all strings give a string series,
// and anything mixing strings with numbers or containing nulls gives an
// any-series. An empty list becomes an empty double series.
func FromMap(m map[string]any) (*Dictionary, error) {
	d := &Dictionary{}
	for k, raw := range m {
		v, err := documentValue(raw)
		if err != nil {
			return nil, perr.Wrap(perr.ErrCodeUnsupportedType, err, "key %q", k)
		}
		d.put(k, v)
	}
	return d, nil
}

// FromDocument converts a single decoded document value the way [FromMap]
// converts map entries.
func FromDocument(raw any) (Value, error) {
	return documentValue(raw)
}

func documentValue(raw any) (Value, error) {
	switch x := raw.(type) {
	case map[string]any:
		nested, err := FromMap(x)
		if err != nil {
			return Value{}, err
		}
		return Value{kind: KindDict, d: nested}, nil
	case map[any]any:
		conv := make(map[string]any, len(x))
		for k, v := range x {
			conv[fmt.Sprint(k)] = v
		}
		return documentValue(conv)
	case []any:
		return listValue(x)
	}
	return ValueOf(raw)
}

func listValue(xs []any) (Value, error) {
	if len(xs) == 0 {
		return Value{kind: KindDoubleSeries}, nil
	}

	// nil and Scalar elements force an any-series.
	var ints, floats, strs, scalars, other int
	for _, x := range xs {
		switch x.(type) {
		case nil, Scalar:
			scalars++
		case int, int8, int16, int32, int64, uint8, uint16, uint32:
			ints++
		case float32, float64:
			floats++
		case string:
			strs++
		default:
			other++
		}
	}
	if other > 0 {
		for _, x := range xs {
			if _, err := scalarOf(x); err != nil {
				return Value{}, err
			}
		}
	}

	switch {
	case scalars == 0 && strs == len(xs):
		out := make([]string, len(xs))
		for i, x := range xs {
			out[i] = x.(string)
		}
		return Value{kind: KindStringSeries, ss: out}, nil
	case scalars == 0 && ints == len(xs):
		out := make([]int64, len(xs))
		for i, x := range xs {
			s, _ := scalarOf(x)
			out[i] = s.i
		}
		return Value{kind: KindIntSeries, is: out}, nil
	case scalars == 0 && strs == 0:
		out := make([]float64, len(xs))
		for i, x := range xs {
			s, _ := scalarOf(x)
			if s.kind == ScalarInt {
				out[i] = float64(s.i)
			} else {
				out[i] = s.f
			}
		}
		return Value{kind: KindDoubleSeries, ds: out}, nil
	}

	as, err := BuildAnySeries(xs...)
	if err != nil {
		return Value{}, err
	}
	return Value{kind: KindAnySeries, as: as}, nil
}

// ToMap converts d into plain Go values: nested Dictionaries become
// map[string]any, series become []float64, []int64, []string or []any (with
// nil gaps), and unset Values become nil.
func (d *Dictionary) ToMap() map[string]any {
	out := make(map[string]any, d.Len())
	d.Range(func(k string, v Value) bool {
		out[k] = v.Any()
		return true
	})
	return out
}

// Any returns v's payload as a plain Go value, see [Dictionary.ToMap].
func (v Value) Any() any {
	switch v.kind {
	case KindUnset:
		return nil
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindDouble:
		return v.f
	case KindString:
		return v.s
	case KindDoubleSeries:
		return v.Doubles()
	case KindIntSeries:
		return v.Ints()
	case KindStringSeries:
		return v.Strings()
	case KindAnySeries:
		out := make([]any, len(v.as))
		for i, s := range v.as {
			out[i] = s.Any()
		}
		return out
	case KindDict:
		return v.d.ToMap()
	default:
		panic(unknownKind(v.kind))
	}
}
