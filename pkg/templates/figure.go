package templates

import (
	"cmp"

	"github.com/matzehuels/plotmsg/pkg/dict"
	perr "github.com/matzehuels/plotmsg/pkg/errors"
	"github.com/matzehuels/plotmsg/pkg/plot"
)

// SetEqualAxis locks the y axis scale to the x axis.
func SetEqualAxis(fig *plot.Figure) {
	fig.AddCommand("update_yaxes", dict.New(
		"scaleanchor", "x",
		"scaleratio", 1,
	))
}

// Box is one box of a grouped box plot. X labels the group of each value
// and may be empty.
type Box struct {
	Name string
	X    []string
	Y    []float64
}

// Boxplot adds one notched Box trace per entry, then groups the boxes and
// shows all points next to them.
func Boxplot(fig *plot.Figure, boxes []Box) {
	for _, b := range boxes {
		kw := dict.New(
			"y", b.Y,
			"name", b.Name,
			"notched", true,
		)
		if len(b.X) > 0 {
			kw.Add("x", b.X)
		}
		fig.AddTraceOf(plot.GraphObjects, "Box", kw)
	}
	fig.AddCommand("update_traces", dict.New("boxpoints", "all"))
	fig.AddCommand("update_layout", dict.New("boxmode", "group"))
}

// Bounds holds the extremes of a series and where they first occur.
type Bounds[T cmp.Ordered] struct {
	MinIndex, MaxIndex int
	Min, Max           T
}

// BoundingElement returns the minimum and maximum of xs with their indices.
// It fails with INVALID_INPUT on an empty series.
func BoundingElement[T cmp.Ordered](xs []T) (Bounds[T], error) {
	if len(xs) == 0 {
		return Bounds[T]{}, perr.New(perr.ErrCodeInvalidInput, "bounding element of an empty series")
	}
	b := Bounds[T]{Min: xs[0], Max: xs[0]}
	for i, x := range xs[1:] {
		if x < b.Min {
			b.Min, b.MinIndex = x, i+1
		}
		if x > b.Max {
			b.Max, b.MaxIndex = x, i+1
		}
	}
	return b, nil
}
