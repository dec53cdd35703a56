package templates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/plotmsg/pkg/dict"
	perr "github.com/matzehuels/plotmsg/pkg/errors"
	"github.com/matzehuels/plotmsg/pkg/plot"
	"github.com/matzehuels/plotmsg/pkg/wire"
)

func kwarg(t *testing.T, tr *plot.Trace, key string) dict.Value {
	t.Helper()
	v, ok := tr.Kwargs().Get(key)
	require.True(t, ok, "missing %q in %s", key, tr.Kwargs())
	return v
}

func TestScatter(t *testing.T) {
	tr := Scatter([]int{1, 2, 3}, []int{4, 5, 6})
	assert.Equal(t, plot.GraphObjects, tr.Method())
	assert.Equal(t, "Scatter", tr.Name())
	assert.Equal(t, []int64{1, 2, 3}, kwarg(t, tr, "x").Ints())
	assert.Equal(t, "markers", kwarg(t, tr, "mode").Str())
	assert.Equal(t, int64(10), kwarg(t, tr, "marker_size").Int())

	f := Scatter([]float32{0.5}, []float32{1.5})
	assert.Equal(t, []float64{0.5}, kwarg(t, f, "x").Doubles())
}

func TestScatterWithColour(t *testing.T) {
	tr := ScatterWithColour([]float64{1, 2}, []float64{3, 4}, []int{0, 1})
	assert.Equal(t, []int64{0, 1}, kwarg(t, tr, "marker_color").Ints())
}

func TestScatter3D(t *testing.T) {
	tr := Scatter3D([]int{1}, []int{2}, []int{3})
	assert.Equal(t, "Scatter3d", tr.Name())
	assert.Equal(t, []string{"x", "y", "z"}, tr.Kwargs().Keys())
}

func TestContour(t *testing.T) {
	x, y, z := []float64{0, 1}, []float64{0, 1}, []float64{1, 2}

	plain := Contour(x, y, z, false, false)
	assert.Equal(t, []string{"x", "y", "z"}, plain.Kwargs().Keys())

	styled := Contour(x, y, z, true, true)
	assert.Equal(t, "heatmap", kwarg(t, styled, "contours_coloring").Str())
	assert.True(t, kwarg(t, styled, "contours_showlabels").Bool())
	assert.Equal(t, "white", kwarg(t, styled, "contours_labelfont_color").Str())
}

func TestHeatmap(t *testing.T) {
	tr := Heatmap([]int{0, 1}, []int{0, 1}, []int{5, 6})
	assert.Equal(t, "Heatmap", tr.Name())
}

func TestEdges2DInsertsGaps(t *testing.T) {
	tr, err := Edges2D(
		[][2]int{{0, 1}, {2, 3}},
		[][2]int{{0, 1}, {2, 3}},
	)
	require.NoError(t, err)

	x := kwarg(t, tr, "x")
	require.Equal(t, dict.KindAnySeries, x.Kind())
	assert.Equal(t, []any{int64(0), int64(1), nil, int64(2), int64(3), nil}, x.Any())

	assert.Equal(t, "lines+markers", kwarg(t, tr, "mode").Str())
	assert.Equal(t, 0.5, kwarg(t, tr, "line_width").Double())
	assert.Equal(t, int64(1), kwarg(t, tr, "marker_size").Int())
}

func TestEdgesSurviveEncoding(t *testing.T) {
	tr, err := Edges3D(
		[][2]float64{{0, 1}},
		[][2]float64{{0, 1}},
		[][2]float64{{0, 2}},
	)
	require.NoError(t, err)
	assert.Equal(t, "Scatter3d", tr.Name())

	fig := plot.New("edges")
	fig.AddTrace(tr)
	b, err := fig.Encode()
	require.NoError(t, err)
	env, err := wire.Unmarshal(b)
	require.NoError(t, err)

	z, _ := env.Figure.Traces[0].Kwargs.Get("z")
	assert.Equal(t, []any{0.0, 2.0, nil}, z.Any())
}

func TestEdgesLengthMismatch(t *testing.T) {
	_, err := Edges2D([][2]int{{0, 1}}, nil)
	assert.True(t, perr.Is(err, perr.ErrCodeInvalidInput))
}

func TestVertices(t *testing.T) {
	tr := VerticesWithColour([]float64{1, 2}, []float64{3, 4}, []float64{0.1, 0.2})
	assert.Equal(t, "markers", kwarg(t, tr, "mode").Str())
	assert.Equal(t, "YlGnBu", kwarg(t, tr, "marker_colorscale").Str())
	assert.Equal(t, []float64{0.1, 0.2}, kwarg(t, tr, "marker_color").Doubles())
	assert.Equal(t, "Vertices", kwarg(t, tr, "marker_colorbar_title").Str())

	v3 := Vertices3D([]int{1}, []int{2}, []int{3})
	assert.Equal(t, 0, kwarg(t, v3, "marker_color").SeriesLen())
}

func TestVectorFields(t *testing.T) {
	xs := []float64{0, 1}

	q := Quiver(xs, xs, xs, xs)
	assert.Equal(t, plot.FigureFactory, q.Method())
	assert.Equal(t, "create_quiver", q.Name())

	c := Cone(xs, xs, xs, xs, xs, xs)
	assert.Equal(t, "Cone", c.Name())

	vf := VectorField3D(xs, xs, xs, xs, xs, xs, 2)
	assert.Equal(t, plot.Custom, vf.Method())
	assert.Equal(t, 2.0, kwarg(t, vf, "scale").Double())
}

func TestSetEqualAxis(t *testing.T) {
	fig := plot.New("t1")
	SetEqualAxis(fig)
	cmds := fig.Commands()
	require.Len(t, cmds, 1)
	assert.Equal(t, "update_yaxes", cmds[0].Func)
	assert.Equal(t, "Dict(scaleanchor:x, scaleratio:1)", cmds[0].Kwargs.String())
}

func TestBoxplot(t *testing.T) {
	fig := plot.New("box")
	Boxplot(fig, []Box{
		{Name: "a", Y: []float64{1, 2, 3}},
		{Name: "b", X: []string{"g1", "g2"}, Y: []float64{4, 5}},
	})

	assert.Equal(t, 2, fig.Len())
	first, _ := fig.GetTrace(0)
	assert.False(t, first.Has("x"))
	second, _ := fig.GetTrace(1)
	assert.True(t, second.Has("x"))

	cmds := fig.Commands()
	require.Len(t, cmds, 2)
	assert.Equal(t, "update_traces", cmds[0].Func)
	assert.Equal(t, "update_layout", cmds[1].Func)
}

func TestBoundingElement(t *testing.T) {
	b, err := BoundingElement([]float64{3, -1, 7, 7, -1})
	require.NoError(t, err)
	assert.Equal(t, Bounds[float64]{MinIndex: 1, MaxIndex: 2, Min: -1, Max: 7}, b)

	one, err := BoundingElement([]int{5})
	require.NoError(t, err)
	assert.Equal(t, Bounds[int]{Min: 5, Max: 5}, one)

	_, err = BoundingElement([]int{})
	assert.True(t, perr.Is(err, perr.ErrCodeInvalidInput))
}
