package wire

import (
	"context"
	"math"
	"time"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/matzehuels/plotmsg/pkg/dict"
	perr "github.com/matzehuels/plotmsg/pkg/errors"
	"github.com/matzehuels/plotmsg/pkg/observability"
)

// Encode marshals e and reports the result to the registered encode hooks.
func Encode(ctx context.Context, e Envelope) ([]byte, error) {
	start := time.Now()
	b, err := Marshal(e)
	if err != nil {
		return nil, err
	}
	observability.Encode().OnEncode(ctx, e.Kind(), len(b), time.Since(start))
	return b, nil
}

// Marshal encodes e as a MessageContainer.
//
// It returns INVALID_INPUT when e holds neither or both payloads. A Value
// with an unrecognized kind panics: it means the in-memory tag set and the
// schema have drifted apart.
func Marshal(e Envelope) ([]byte, error) {
	switch {
	case e.Figure != nil && e.Dict != nil:
		return nil, perr.New(perr.ErrCodeInvalidInput, "message holds both a figure and a dictionary")
	case e.Figure != nil:
		return appendMessage(nil, containerFig, func(b []byte) []byte {
			return appendFigure(b, e.Figure)
		}), nil
	case e.Dict != nil:
		return appendMessage(nil, containerDict, func(b []byte) []byte {
			return AppendDictionary(b, e.Dict)
		}), nil
	}
	return nil, perr.New(perr.ErrCodeInvalidInput, "message holds neither a figure nor a dictionary")
}

// MarshalFigure encodes f wrapped in a MessageContainer.
func MarshalFigure(f *Figure) []byte {
	b, _ := Marshal(Envelope{Figure: f})
	return b
}

// MarshalDictionary encodes d as a bare Dictionary message, without the
// MessageContainer wrapper. A nil d encodes as an empty message.
func MarshalDictionary(d *dict.Dictionary) []byte {
	return AppendDictionary(nil, d)
}

// AppendDictionary appends the Dictionary message body for d to b.
func AppendDictionary(b []byte, d *dict.Dictionary) []byte {
	d.Range(func(k string, v dict.Value) bool {
		b = appendMessage(b, dictData, func(b []byte) []byte {
			b = protowire.AppendTag(b, entryKey, protowire.BytesType)
			b = protowire.AppendString(b, k)
			return appendMessage(b, entryVal, func(b []byte) []byte {
				return appendItem(b, v)
			})
		})
		return true
	})
	return b
}

func appendFigure(b []byte, f *Figure) []byte {
	if f.UUID != "" {
		b = protowire.AppendTag(b, figureUUID, protowire.BytesType)
		b = protowire.AppendString(b, f.UUID)
	}
	for i := range f.Traces {
		t := &f.Traces[i]
		b = appendMessage(b, figureTraces, func(b []byte) []byte {
			if t.Method != GraphObjects {
				b = protowire.AppendTag(b, traceMethod, protowire.VarintType)
				b = protowire.AppendVarint(b, uint64(int64(t.Method)))
			}
			if t.MethodFunc != "" {
				b = protowire.AppendTag(b, traceMethodFunc, protowire.BytesType)
				b = protowire.AppendString(b, t.MethodFunc)
			}
			return appendMessage(b, traceKwargs, func(b []byte) []byte {
				return AppendDictionary(b, t.Kwargs)
			})
		})
	}
	for i := range f.Commands {
		c := &f.Commands[i]
		b = appendMessage(b, figureCommands, func(b []byte) []byte {
			if c.Func != "" {
				b = protowire.AppendTag(b, commandFunc, protowire.BytesType)
				b = protowire.AppendString(b, c.Func)
			}
			return appendMessage(b, commandKwargs, func(b []byte) []byte {
				return AppendDictionary(b, c.Kwargs)
			})
		})
	}
	return b
}

// appendItem appends a DictItemVal body. Oneof members are emitted even
// when they hold the zero value; the unset Value leaves the body empty.
func appendItem(b []byte, v dict.Value) []byte {
	switch v.Kind() {
	case dict.KindUnset:
		return b
	case dict.KindBool:
		b = protowire.AppendTag(b, itemBool, protowire.VarintType)
		return protowire.AppendVarint(b, protowire.EncodeBool(v.Bool()))
	case dict.KindInt:
		b = protowire.AppendTag(b, itemInt, protowire.VarintType)
		return protowire.AppendVarint(b, uint64(v.Int()))
	case dict.KindDouble:
		b = protowire.AppendTag(b, itemDouble, protowire.Fixed64Type)
		return protowire.AppendFixed64(b, math.Float64bits(v.Double()))
	case dict.KindString:
		b = protowire.AppendTag(b, itemString, protowire.BytesType)
		return protowire.AppendString(b, v.Str())
	case dict.KindDoubleSeries:
		return appendMessage(b, itemSeriesD, func(b []byte) []byte {
			xs := v.Doubles()
			if len(xs) == 0 {
				return b
			}
			b = protowire.AppendTag(b, seriesVal, protowire.BytesType)
			b = protowire.AppendVarint(b, uint64(8*len(xs)))
			for _, x := range xs {
				b = protowire.AppendFixed64(b, math.Float64bits(x))
			}
			return b
		})
	case dict.KindIntSeries:
		return appendMessage(b, itemSeriesI, func(b []byte) []byte {
			xs := v.Ints()
			if len(xs) == 0 {
				return b
			}
			n := 0
			for _, x := range xs {
				n += protowire.SizeVarint(uint64(x))
			}
			b = protowire.AppendTag(b, seriesVal, protowire.BytesType)
			b = protowire.AppendVarint(b, uint64(n))
			for _, x := range xs {
				b = protowire.AppendVarint(b, uint64(x))
			}
			return b
		})
	case dict.KindStringSeries:
		return appendMessage(b, itemSeriesString, func(b []byte) []byte {
			for _, s := range v.Strings() {
				b = protowire.AppendTag(b, seriesVal, protowire.BytesType)
				b = protowire.AppendString(b, s)
			}
			return b
		})
	case dict.KindAnySeries:
		return appendMessage(b, itemSeriesAny, func(b []byte) []byte {
			for _, s := range v.Anys() {
				b = appendMessage(b, seriesVal, func(b []byte) []byte {
					return appendScalar(b, s)
				})
			}
			return b
		})
	case dict.KindDict:
		return appendMessage(b, itemDict, func(b []byte) []byte {
			return AppendDictionary(b, v.Dict())
		})
	}
	panic(perr.New(perr.ErrCodeUnknownTag, "cannot encode value kind %d", int(v.Kind())))
}

func appendScalar(b []byte, s dict.Scalar) []byte {
	switch s.Kind() {
	case dict.ScalarNull:
		b = protowire.AppendTag(b, anyNull, protowire.VarintType)
		return protowire.AppendVarint(b, 0)
	case dict.ScalarString:
		b = protowire.AppendTag(b, anyString, protowire.BytesType)
		return protowire.AppendString(b, s.Str())
	case dict.ScalarDouble:
		b = protowire.AppendTag(b, anyDouble, protowire.Fixed64Type)
		return protowire.AppendFixed64(b, math.Float64bits(s.Double()))
	case dict.ScalarInt:
		b = protowire.AppendTag(b, anyInt, protowire.VarintType)
		return protowire.AppendVarint(b, uint64(s.Int()))
	}
	panic(perr.New(perr.ErrCodeUnknownTag, "cannot encode any-series element kind %d", int(s.Kind())))
}

// appendMessage appends a length-delimited sub-message under field num.
// The body is built in a scratch buffer so its length is known up front.
func appendMessage(b []byte, num protowire.Number, body func([]byte) []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, body(nil))
}
