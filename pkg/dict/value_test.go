package dict

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueKinds(t *testing.T) {
	tests := []struct {
		name string
		in   any
		kind Kind
	}{
		{"nil", nil, KindUnset},
		{"bool", true, KindBool},
		{"int", 3, KindInt},
		{"int32", int32(3), KindInt},
		{"uint16", uint16(3), KindInt},
		{"float32", float32(1.5), KindDouble},
		{"float64", 1.5, KindDouble},
		{"string", "s", KindString},
		{"float series", []float64{1}, KindDoubleSeries},
		{"float32 series", []float32{1}, KindDoubleSeries},
		{"int series", []int{1}, KindIntSeries},
		{"int32 series", []int32{1}, KindIntSeries},
		{"int64 series", []int64{1}, KindIntSeries},
		{"string series", []string{"a"}, KindStringSeries},
		{"scalar series", []Scalar{Null}, KindAnySeries},
		{"any list", []any{1, nil}, KindAnySeries},
		{"dictionary", New(), KindDict},
		{"document map", map[string]any{"a": 1}, KindDict},
		{"value", StringValue("v"), KindString},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := ValueOf(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, v.Kind())
		})
	}
}

func TestValueOfOverflow(t *testing.T) {
	_, err := ValueOf(uint64(math.MaxUint64))
	assert.Error(t, err)
	v, err := ValueOf(uint64(7))
	require.NoError(t, err)
	assert.Equal(t, int64(7), v.Int())
}

func TestSeriesConstructorsCopy(t *testing.T) {
	xs := []float64{1, 2, 3}
	v := DoubleSeries(xs)
	xs[0] = 100
	assert.Equal(t, []float64{1, 2, 3}, v.Doubles())

	out := v.Doubles()
	out[1] = 200
	assert.Equal(t, []float64{1, 2, 3}, v.Doubles(), "accessor returns a copy")
}

func TestValueAccessorPanicsOnWrongKind(t *testing.T) {
	assert.Panics(t, func() { StringValue("x").Int() })
	assert.Panics(t, func() { Value{}.Bool() })
	assert.Panics(t, func() { IntValue(1).Dict() })
}

func TestUnknownKindPanics(t *testing.T) {
	bogus := Value{kind: Kind(200)}
	assert.Panics(t, func() { _ = bogus.String() })
	assert.Panics(t, func() { _ = bogus.clone() })
	assert.Equal(t, "<unknown Kind>", Kind(200).String())
}

func TestValueEqualDoublesByBits(t *testing.T) {
	nan := math.NaN()
	assert.True(t, DoubleValue(nan).Equal(DoubleValue(nan)))
	assert.False(t, DoubleValue(0).Equal(DoubleValue(math.Copysign(0, -1))))
}

func TestSeriesLen(t *testing.T) {
	assert.Equal(t, 3, IntSeries([]int64{1, 2, 3}).SeriesLen())
	assert.Equal(t, 2, AnySeries(AnyOf(1, nil)).SeriesLen())
	assert.Equal(t, 0, IntValue(4).SeriesLen())
}

func TestAnyOf(t *testing.T) {
	xs := AnyOf(0, 1, nil, 2.5, "label", Null, int64(3))
	require.Len(t, xs, 7)
	assert.Equal(t, ScalarInt, xs[0].Kind())
	assert.True(t, xs[2].IsNull())
	assert.Equal(t, 2.5, xs[3].Double())
	assert.Equal(t, "label", xs[4].Str())
	assert.True(t, xs[5].IsNull())
	assert.Equal(t, int64(3), xs[6].Int())

	assert.Panics(t, func() { AnyOf(true) })
	_, err := BuildAnySeries(struct{}{})
	assert.Error(t, err)
}

func TestAnySeriesPreservesGaps(t *testing.T) {
	xs := AppendNull(AnyOf(1, 2))
	xs = append(xs, AnyOf(3, 4)...)
	v := AnySeries(xs)
	got := v.Any().([]any)
	assert.Equal(t, []any{int64(1), int64(2), nil, int64(3), int64(4)}, got)
}

func TestScalarString(t *testing.T) {
	assert.Equal(t, "null", Null.String())
	assert.Equal(t, "1.5", AnyDouble(1.5).String())
	assert.Equal(t, "-2", AnyInt(-2).String())
	assert.Equal(t, "x", AnyString("x").String())
}
