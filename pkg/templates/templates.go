// Package templates builds ready-styled Traces for common chart types.
//
// Every constructor returns a fresh *plot.Trace whose kwargs the caller may
// keep adjusting before handing it to Figure.AddTrace:
//
//	tr := templates.Scatter(xs, ys)
//	tr.At("marker").At("color").Set("red")
//	fig.AddTrace(tr)
package templates

import (
	"github.com/matzehuels/plotmsg/pkg/dict"
	perr "github.com/matzehuels/plotmsg/pkg/errors"
	"github.com/matzehuels/plotmsg/pkg/plot"
)

// Number is the element type accepted for coordinate series.
type Number interface {
	int | int32 | int64 | float32 | float64
}

// series converts xs to an int series for integer T and a double series
// otherwise.
func series[T Number](xs []T) dict.Value {
	var zero T
	switch any(zero).(type) {
	case float32, float64:
		out := make([]float64, len(xs))
		for i, x := range xs {
			out[i] = float64(x)
		}
		return dict.DoubleSeries(out)
	}
	out := make([]int64, len(xs))
	for i, x := range xs {
		out[i] = int64(x)
	}
	return dict.IntSeries(out)
}

func scalar[T Number](x T) dict.Scalar {
	switch v := any(x).(type) {
	case float32:
		return dict.AnyDouble(float64(v))
	case float64:
		return dict.AnyDouble(v)
	}
	return dict.AnyInt(int64(x))
}

// ScatterStyled returns a marker-only Scatter trace with a Viridis colour
// scale and no data.
func ScatterStyled() *plot.Trace {
	return plot.NewTrace(plot.GraphObjects, "Scatter", dict.New(
		"mode", "markers",
		"marker_size", 10,
		"marker_colorscale", "Viridis",
		"marker_colorbar_title", "Colorbar",
	))
}

// Scatter returns a styled 2D scatter of the points (x[i], y[i]).
func Scatter[T Number](x, y []T) *plot.Trace {
	tr := ScatterStyled()
	tr.At("x").Set(series(x))
	tr.At("y").Set(series(y))
	return tr
}

// Scatter3D returns an unstyled 3D scatter.
func Scatter3D[T Number](x, y, z []T) *plot.Trace {
	return plot.NewTrace(plot.GraphObjects, "Scatter3d", dict.New(
		"x", series(x),
		"y", series(y),
		"z", series(z),
	))
}

// ScatterWithColour is Scatter with per-point marker colours.
func ScatterWithColour[T, C Number](x, y []T, c []C) *plot.Trace {
	tr := Scatter(x, y)
	tr.At("marker_color").Set(series(c))
	return tr
}

// Contour returns a contour plot of z over the grid x, y. label turns on
// white contour labels; continuous fills between lines like a heatmap.
func Contour[T Number](x, y, z []T, label, continuous bool) *plot.Trace {
	tr := plot.NewTrace(plot.GraphObjects, "Contour", dict.New(
		"x", series(x),
		"y", series(y),
		"z", series(z),
	))
	if continuous {
		tr.At("contours_coloring").Set("heatmap")
	}
	if label {
		tr.UpdateKwargs(dict.New(
			"contours_showlabels", true,
			"contours_labelfont_size", 12,
			"contours_labelfont_color", "white",
		))
	}
	return tr
}

// Heatmap returns a heatmap of z over x, y.
func Heatmap[T Number](x, y, z []T) *plot.Trace {
	return plot.NewTrace(plot.GraphObjects, "Heatmap", dict.New(
		"x", series(x),
		"y", series(y),
		"z", series(z),
	))
}

// edgeSeries flattens per-dimension edge lists into any-series of the form
// from, to, gap, from, to, gap, ... so one trace draws disjoint segments.
func edgeSeries[T Number](dims ...[][2]T) ([][]dict.Scalar, error) {
	n := len(dims[0])
	for d, edges := range dims {
		if len(edges) != n {
			return nil, perr.New(perr.ErrCodeInvalidInput, "dimension %d has %d edges, want %d", d, len(edges), n)
		}
	}
	out := make([][]dict.Scalar, len(dims))
	for d, edges := range dims {
		s := make([]dict.Scalar, 0, 3*n)
		for _, e := range edges {
			s = append(s, scalar(e[0]), scalar(e[1]))
			s = dict.AppendNull(s)
		}
		out[d] = s
	}
	return out, nil
}

func edgeStyle() *dict.Dictionary {
	return dict.New(
		"line_width", 0.5,
		"line_color", "#888",
		"hoverinfo", "none",
		"mode", "lines+markers",
		"marker_size", 1,
	)
}

// Edges2D draws the line segments (x[i][0], y[i][0]) to (x[i][1], y[i][1])
// in one trace, separated by null gaps.
func Edges2D[T Number](x, y [][2]T) (*plot.Trace, error) {
	s, err := edgeSeries(x, y)
	if err != nil {
		return nil, err
	}
	tr := ScatterStyled()
	tr.At("x").Set(s[0])
	tr.At("y").Set(s[1])
	tr.UpdateKwargs(edgeStyle())
	return tr, nil
}

// Edges3D is Edges2D in three dimensions.
func Edges3D[T Number](x, y, z [][2]T) (*plot.Trace, error) {
	s, err := edgeSeries(x, y, z)
	if err != nil {
		return nil, err
	}
	tr := plot.NewTrace(plot.GraphObjects, "Scatter3d", dict.New(
		"x", s[0],
		"y", s[1],
		"z", s[2],
	))
	tr.UpdateKwargs(edgeStyle())
	return tr, nil
}

func vertexStyle() *dict.Dictionary {
	return dict.New(
		"mode", "markers",
		"hoverinfo", "text",
		"marker_showscale", true,
		"marker_colorscale", "YlGnBu",
		"marker_reversescale", true,
		"marker_color", []int{},
		"marker_size", 10,
		"marker_line_width", 2,
	)
}

// Vertices draws graph nodes as large outlined markers.
func Vertices[T Number](x, y []T) *plot.Trace {
	tr := Scatter(x, y)
	tr.UpdateKwargs(vertexStyle())
	return tr
}

// Vertices3D is Vertices in three dimensions.
func Vertices3D[T Number](x, y, z []T) *plot.Trace {
	tr := Scatter3D(x, y, z)
	tr.UpdateKwargs(vertexStyle())
	return tr
}

// VerticesWithColour is Vertices coloured by c with a labelled colour bar.
func VerticesWithColour[T, C Number](x, y []T, c []C) *plot.Trace {
	tr := Vertices(x, y)
	tr.UpdateKwargs(dict.New(
		"marker_color", series(c),
		"marker_colorbar_thickness", 15,
		"marker_colorbar_title", "Vertices",
		"marker_colorbar_xanchor", "left",
		"marker_colorbar_titleside", "right",
	))
	return tr
}

// Quiver draws a 2D vector field with the figure factory create_quiver:
// arrows from (x[i], y[i]) along (u[i], v[i]).
func Quiver[T Number](x, y, u, v []T) *plot.Trace {
	return plot.NewTrace(plot.FigureFactory, "create_quiver", dict.New(
		"x", series(x),
		"y", series(y),
		"u", series(u),
		"v", series(v),
		"scale", 0.25,
		"arrow_scale", 0.4,
		"name", "quiver",
		"line_width", 1,
	))
}

// Cone draws a 3D vector field as cones.
func Cone[T Number](x, y, z, u, v, w []T) *plot.Trace {
	return plot.NewTrace(plot.GraphObjects, "Cone", dict.New(
		"x", series(x),
		"y", series(y),
		"z", series(z),
		"u", series(u),
		"v", series(v),
		"w", series(w),
		"sizemode", "absolute",
		"sizeref", 2,
		"name", "quiver",
	))
}

// VectorField3D asks the renderer's custom "vector_field" helper to draw
// the field as line segments scaled by scale.
func VectorField3D[T Number](x, y, z, u, v, w []T, scale float64) *plot.Trace {
	return plot.NewTrace(plot.Custom, "vector_field", dict.New(
		"x", series(x),
		"y", series(y),
		"z", series(z),
		"u", series(u),
		"v", series(v),
		"w", series(w),
		"scale", scale,
	))
}
