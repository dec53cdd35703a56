package plot

import (
	"fmt"

	"github.com/matzehuels/plotmsg/pkg/dict"
	"github.com/matzehuels/plotmsg/pkg/wire"
)

// CreationMethod selects how the renderer builds a trace.
type CreationMethod = wire.CreationMethod

const (
	GraphObjects  = wire.GraphObjects
	FigureFactory = wire.FigureFactory
	Custom        = wire.Custom
)

// ParseCreationMethod parses "graph_objects", "figure_factory" or "custom".
func ParseCreationMethod(s string) (CreationMethod, error) {
	return wire.ParseCreationMethod(s)
}

// Trace is one plotted series: a creation method, the renderer function to
// call and the keyword arguments passed to it.
//
// The zero Trace is a graph_objects trace with no function name and empty
// kwargs. A Trace owns its kwargs exclusively.
type Trace struct {
	method CreationMethod
	name   string
	kwargs *dict.Dictionary
}

// NewTrace returns a Trace calling name with kwargs. kwargs is consumed and
// left empty; a nil kwargs starts the Trace with empty arguments.
func NewTrace(method CreationMethod, name string, kwargs *dict.Dictionary) *Trace {
	return &Trace{method: method, name: name, kwargs: kwargs.Take()}
}

// Method returns the creation method.
func (t *Trace) Method() CreationMethod { return t.method }

// Name returns the renderer function name, e.g. "Scatter".
func (t *Trace) Name() string { return t.name }

// SetMethod changes how the renderer builds the trace.
func (t *Trace) SetMethod(method CreationMethod, name string) {
	t.method = method
	t.name = name
}

// Kwargs returns the live keyword arguments. Mutating the result mutates t.
func (t *Trace) Kwargs() *dict.Dictionary {
	if t.kwargs == nil {
		t.kwargs = &dict.Dictionary{}
	}
	return t.kwargs
}

// At returns a proxy for key in the kwargs, see [dict.Dictionary.At].
func (t *Trace) At(key string) dict.Proxy {
	return t.Kwargs().At(key)
}

// SetKwargs replaces the kwargs with d, consuming it.
func (t *Trace) SetKwargs(d *dict.Dictionary) {
	t.Kwargs().Set(d)
}

// UpdateKwargs merges d into the kwargs, overwriting on conflict, and
// consumes d.
func (t *Trace) UpdateKwargs(d *dict.Dictionary) {
	t.Kwargs().Update(d)
}

// Clone returns a Trace with deep-copied kwargs.
func (t *Trace) Clone() *Trace {
	return &Trace{method: t.method, name: t.name, kwargs: t.kwargs.Clone()}
}

// take moves t into a new Trace, leaving t with empty kwargs.
func (t *Trace) take() *Trace {
	return &Trace{method: t.method, name: t.name, kwargs: t.kwargs.Take()}
}

func (t *Trace) toWire() wire.Trace {
	return wire.Trace{Method: t.method, MethodFunc: t.name, Kwargs: t.kwargs}
}

func (t *Trace) String() string {
	return fmt.Sprintf("Trace<%s|%s|%s>", t.method, t.name, t.Kwargs())
}
