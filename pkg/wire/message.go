// Package wire encodes plot messages into the PlotMsgProto protobuf schema
// consumed by the renderer, and decodes them back.
//
// The schema is checked in as proto/plotmsg.proto. Encoding is written
// directly against google.golang.org/protobuf/encoding/protowire: the
// in-memory [dict.Dictionary] is a sum-type tree, and mapping it onto
// generated structs would mean a second full copy per send.
//
// Output is deterministic. Map entries are emitted in ascending key order,
// so two Dictionaries with equal contents always encode to identical bytes.
// [Digest] relies on this.
package wire

import (
	"strings"

	"github.com/matzehuels/plotmsg/pkg/dict"
	perr "github.com/matzehuels/plotmsg/pkg/errors"
)

// CreationMethod selects how the renderer builds a trace.
type CreationMethod int32

const (
	// GraphObjects builds the trace with a native plot object call,
	// e.g. graph_objects.Scatter(**kwargs).
	GraphObjects CreationMethod = 0
	// FigureFactory calls a figure factory; its traces are merged into the figure.
	FigureFactory CreationMethod = 1
	// Custom calls a renderer-side helper by name.
	Custom CreationMethod = 2
)

var creationMethodNames = map[CreationMethod]string{
	GraphObjects:  "graph_objects",
	FigureFactory: "figure_factory",
	Custom:        "custom",
}

func (m CreationMethod) String() string {
	if s, ok := creationMethodNames[m]; ok {
		return s
	}
	return "<unknown CreationMethod>"
}

// ParseCreationMethod parses the schema name of a creation method. The
// short forms "go" and "ff" are accepted too, and matching ignores case.
func ParseCreationMethod(s string) (CreationMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "graph_objects", "go", "":
		return GraphObjects, nil
	case "figure_factory", "ff":
		return FigureFactory, nil
	case "custom":
		return Custom, nil
	}
	return 0, perr.New(perr.ErrCodeInvalidInput, "unknown creation method %q (want graph_objects, figure_factory or custom)", s)
}

// Trace is the wire form of one trace. Kwargs may be nil, which encodes as
// an empty Dictionary.
type Trace struct {
	Method     CreationMethod
	MethodFunc string
	Kwargs     *dict.Dictionary
}

// Command is the wire form of a post-render directive.
type Command struct {
	Func   string
	Kwargs *dict.Dictionary
}

// Figure is the wire form of a complete plot request.
type Figure struct {
	UUID     string
	Traces   []Trace
	Commands []Command
}

// Envelope is the top-level MessageContainer. Exactly one of Figure and
// Dict is set.
type Envelope struct {
	Figure *Figure
	Dict   *dict.Dictionary
}

// Kind returns "figure", "dict" or "" for an empty envelope.
func (e Envelope) Kind() string {
	switch {
	case e.Figure != nil:
		return "figure"
	case e.Dict != nil:
		return "dict"
	}
	return ""
}

// Field numbers of the PlotMsgProto schema.
const (
	containerFig  = 1
	containerDict = 2

	figureUUID     = 1
	figureTraces   = 2
	figureCommands = 3

	traceMethod     = 1
	traceMethodFunc = 2
	traceKwargs     = 3

	commandFunc   = 1
	commandKwargs = 2

	dictData  = 1
	entryKey  = 1
	entryVal  = 2
	seriesVal = 1

	itemBool         = 1
	itemInt          = 2
	itemDouble       = 3
	itemString       = 4
	itemSeriesD      = 5
	itemSeriesI      = 6
	itemSeriesString = 7
	itemSeriesAny    = 8
	itemDict         = 9

	anyNull   = 1
	anyString = 2
	anyDouble = 3
	anyInt    = 4
)
