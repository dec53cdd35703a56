package wire

import (
	"context"
	"math"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/matzehuels/plotmsg/pkg/dict"
	perr "github.com/matzehuels/plotmsg/pkg/errors"
	"github.com/matzehuels/plotmsg/pkg/observability"
)

// Decode unmarshals b and reports the result to the registered encode hooks.
func Decode(ctx context.Context, b []byte) (Envelope, error) {
	e, err := Unmarshal(b)
	observability.Encode().OnDecode(ctx, e.Kind(), len(b), err)
	return e, err
}

// Unmarshal decodes a MessageContainer.
//
// Both packed and unpacked numeric series are accepted and unknown fields
// are skipped, except inside DictItemVal and SeriesAny.value: those hold
// nothing but a oneof, so an unknown field there is reported as UNKNOWN_TAG.
// Truncated or otherwise invalid input is MALFORMED_MESSAGE.
func Unmarshal(b []byte) (Envelope, error) {
	var e Envelope
	err := eachField(b, func(f field) error {
		switch f.num {
		case containerFig:
			body, err := f.message()
			if err != nil {
				return err
			}
			fig, err := decodeFigure(body)
			if err != nil {
				return err
			}
			e = Envelope{Figure: fig}
		case containerDict:
			body, err := f.message()
			if err != nil {
				return err
			}
			d, err := UnmarshalDictionary(body)
			if err != nil {
				return err
			}
			e = Envelope{Dict: d}
		}
		return nil
	})
	if err != nil {
		return Envelope{}, err
	}
	if e.Kind() == "" {
		return Envelope{}, perr.New(perr.ErrCodeMalformedMessage, "message holds neither a figure nor a dictionary")
	}
	return e, nil
}

// UnmarshalDictionary decodes a bare Dictionary message body. Repeated keys
// keep the last entry, as protobuf map semantics require.
func UnmarshalDictionary(b []byte) (*dict.Dictionary, error) {
	d := &dict.Dictionary{}
	err := eachField(b, func(f field) error {
		if f.num != dictData {
			return nil
		}
		body, err := f.message()
		if err != nil {
			return err
		}
		key, v, err := decodeEntry(body)
		if err != nil {
			return err
		}
		return d.TryAdd(key, v)
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

func decodeFigure(b []byte) (*Figure, error) {
	fig := &Figure{}
	err := eachField(b, func(f field) error {
		switch f.num {
		case figureUUID:
			s, err := f.message()
			if err != nil {
				return err
			}
			fig.UUID = string(s)
		case figureTraces:
			body, err := f.message()
			if err != nil {
				return err
			}
			t, err := decodeTrace(body)
			if err != nil {
				return perr.Wrap(perr.GetCode(err), err, "trace %d", len(fig.Traces))
			}
			fig.Traces = append(fig.Traces, t)
		case figureCommands:
			body, err := f.message()
			if err != nil {
				return err
			}
			c, err := decodeCommand(body)
			if err != nil {
				return perr.Wrap(perr.GetCode(err), err, "command %d", len(fig.Commands))
			}
			fig.Commands = append(fig.Commands, c)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return fig, nil
}

func decodeTrace(b []byte) (Trace, error) {
	t := Trace{Kwargs: &dict.Dictionary{}}
	err := eachField(b, func(f field) error {
		switch f.num {
		case traceMethod:
			v, err := f.varint()
			if err != nil {
				return err
			}
			t.Method = CreationMethod(int32(v))
		case traceMethodFunc:
			s, err := f.message()
			if err != nil {
				return err
			}
			t.MethodFunc = string(s)
		case traceKwargs:
			body, err := f.message()
			if err != nil {
				return err
			}
			kw, err := UnmarshalDictionary(body)
			if err != nil {
				return err
			}
			t.Kwargs = kw
		}
		return nil
	})
	return t, err
}

func decodeCommand(b []byte) (Command, error) {
	c := Command{Kwargs: &dict.Dictionary{}}
	err := eachField(b, func(f field) error {
		switch f.num {
		case commandFunc:
			s, err := f.message()
			if err != nil {
				return err
			}
			c.Func = string(s)
		case commandKwargs:
			body, err := f.message()
			if err != nil {
				return err
			}
			kw, err := UnmarshalDictionary(body)
			if err != nil {
				return err
			}
			c.Kwargs = kw
		}
		return nil
	})
	return c, err
}

// decodeEntry decodes one map entry. A missing value is the unset Value.
func decodeEntry(b []byte) (string, dict.Value, error) {
	var (
		key string
		v   dict.Value
	)
	err := eachField(b, func(f field) error {
		switch f.num {
		case entryKey:
			s, err := f.message()
			if err != nil {
				return err
			}
			key = string(s)
		case entryVal:
			body, err := f.message()
			if err != nil {
				return err
			}
			item, err := decodeItem(body)
			if err != nil {
				return err
			}
			v = item
		}
		return nil
	})
	if err != nil {
		return "", dict.Value{}, perr.Wrap(perr.GetCode(err), err, "key %q", key)
	}
	return key, v, nil
}

// decodeItem decodes a DictItemVal. An empty body is the unset Value; when
// several oneof members are present the last one wins.
func decodeItem(b []byte) (dict.Value, error) {
	var v dict.Value
	err := eachField(b, func(f field) error {
		switch f.num {
		case itemBool:
			x, err := f.varint()
			if err != nil {
				return err
			}
			v = dict.BoolValue(protowire.DecodeBool(x))
		case itemInt:
			x, err := f.varint()
			if err != nil {
				return err
			}
			v = dict.IntValue(int64(x))
		case itemDouble:
			x, err := f.fixed64()
			if err != nil {
				return err
			}
			v = dict.DoubleValue(math.Float64frombits(x))
		case itemString:
			s, err := f.message()
			if err != nil {
				return err
			}
			v = dict.StringValue(string(s))
		case itemSeriesD:
			body, err := f.message()
			if err != nil {
				return err
			}
			xs, err := decodeDoubles(body)
			if err != nil {
				return err
			}
			v = dict.DoubleSeries(xs)
		case itemSeriesI:
			body, err := f.message()
			if err != nil {
				return err
			}
			xs, err := decodeInts(body)
			if err != nil {
				return err
			}
			v = dict.IntSeries(xs)
		case itemSeriesString:
			body, err := f.message()
			if err != nil {
				return err
			}
			var xs []string
			err = eachField(body, func(f field) error {
				if f.num != seriesVal {
					return nil
				}
				s, err := f.message()
				if err != nil {
					return err
				}
				xs = append(xs, string(s))
				return nil
			})
			if err != nil {
				return err
			}
			v = dict.StringSeries(xs)
		case itemSeriesAny:
			body, err := f.message()
			if err != nil {
				return err
			}
			var xs []dict.Scalar
			err = eachField(body, func(f field) error {
				if f.num != seriesVal {
					return nil
				}
				el, err := f.message()
				if err != nil {
					return err
				}
				s, err := decodeScalar(el)
				if err != nil {
					return perr.Wrap(perr.GetCode(err), err, "any-series element %d", len(xs))
				}
				xs = append(xs, s)
				return nil
			})
			if err != nil {
				return err
			}
			v = dict.AnySeries(xs)
		case itemDict:
			body, err := f.message()
			if err != nil {
				return err
			}
			nested, err := UnmarshalDictionary(body)
			if err != nil {
				return err
			}
			v = dict.DictValue(nested)
		default:
			return perr.New(perr.ErrCodeUnknownTag, "unknown value tag %d", f.num)
		}
		return nil
	})
	return v, err
}

// decodeScalar decodes a SeriesAny.value. An empty body is read as a gap.
func decodeScalar(b []byte) (dict.Scalar, error) {
	s := dict.Null
	err := eachField(b, func(f field) error {
		switch f.num {
		case anyNull:
			if _, err := f.varint(); err != nil {
				return err
			}
			s = dict.Null
		case anyString:
			str, err := f.message()
			if err != nil {
				return err
			}
			s = dict.AnyString(string(str))
		case anyDouble:
			x, err := f.fixed64()
			if err != nil {
				return err
			}
			s = dict.AnyDouble(math.Float64frombits(x))
		case anyInt:
			x, err := f.varint()
			if err != nil {
				return err
			}
			s = dict.AnyInt(int64(x))
		default:
			return perr.New(perr.ErrCodeUnknownTag, "unknown any-series tag %d", f.num)
		}
		return nil
	})
	return s, err
}

func decodeDoubles(b []byte) ([]float64, error) {
	var xs []float64
	err := eachField(b, func(f field) error {
		if f.num != seriesVal {
			return nil
		}
		if f.typ == protowire.BytesType {
			packed, err := f.message()
			if err != nil {
				return err
			}
			for len(packed) > 0 {
				x, n := protowire.ConsumeFixed64(packed)
				if n < 0 {
					return malformed(n)
				}
				xs = append(xs, math.Float64frombits(x))
				packed = packed[n:]
			}
			return nil
		}
		x, err := f.fixed64()
		if err != nil {
			return err
		}
		xs = append(xs, math.Float64frombits(x))
		return nil
	})
	return xs, err
}

func decodeInts(b []byte) ([]int64, error) {
	var xs []int64
	err := eachField(b, func(f field) error {
		if f.num != seriesVal {
			return nil
		}
		if f.typ == protowire.BytesType {
			packed, err := f.message()
			if err != nil {
				return err
			}
			for len(packed) > 0 {
				x, n := protowire.ConsumeVarint(packed)
				if n < 0 {
					return malformed(n)
				}
				xs = append(xs, int64(x))
				packed = packed[n:]
			}
			return nil
		}
		x, err := f.varint()
		if err != nil {
			return err
		}
		xs = append(xs, int64(x))
		return nil
	})
	return xs, err
}

// field is one undecoded field: its number, wire type and raw value bytes
// (for BytesType, including the length prefix).
type field struct {
	num protowire.Number
	typ protowire.Type
	raw []byte
}

func (f field) message() ([]byte, error) {
	if f.typ != protowire.BytesType {
		return nil, wrongType(f, protowire.BytesType)
	}
	v, n := protowire.ConsumeBytes(f.raw)
	if n < 0 {
		return nil, malformed(n)
	}
	return v, nil
}

func (f field) varint() (uint64, error) {
	if f.typ != protowire.VarintType {
		return 0, wrongType(f, protowire.VarintType)
	}
	v, n := protowire.ConsumeVarint(f.raw)
	if n < 0 {
		return 0, malformed(n)
	}
	return v, nil
}

func (f field) fixed64() (uint64, error) {
	if f.typ != protowire.Fixed64Type {
		return 0, wrongType(f, protowire.Fixed64Type)
	}
	v, n := protowire.ConsumeFixed64(f.raw)
	if n < 0 {
		return 0, malformed(n)
	}
	return v, nil
}

// eachField walks the fields of a message body in order and hands each one
// to fn. Fields fn ignores are skipped.
func eachField(b []byte, fn func(field) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return malformed(n)
		}
		b = b[n:]
		m := protowire.ConsumeFieldValue(num, typ, b)
		if m < 0 {
			return malformed(m)
		}
		if err := fn(field{num: num, typ: typ, raw: b[:m]}); err != nil {
			return err
		}
		b = b[m:]
	}
	return nil
}

func malformed(n int) error {
	return perr.Wrap(perr.ErrCodeMalformedMessage, protowire.ParseError(n), "invalid protobuf encoding")
}

func wrongType(f field, want protowire.Type) error {
	return perr.New(perr.ErrCodeMalformedMessage, "field %d has wire type %d, want %d", f.num, f.typ, want)
}
