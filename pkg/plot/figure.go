package plot

import (
	"context"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/matzehuels/plotmsg/pkg/dict"
	perr "github.com/matzehuels/plotmsg/pkg/errors"
	"github.com/matzehuels/plotmsg/pkg/wire"
)

// DefaultUUID is the figure id used when none is given.
const DefaultUUID = "default"

// ErrIndexOutOfRange is returned for trace indices outside the Figure.
// Every out-of-range error matches it with errors.Is.
var ErrIndexOutOfRange = perr.New(perr.ErrCodeIndexOutOfRange, "trace index out of range")

// Sender publishes one encoded message. transport.Publisher implements it.
type Sender interface {
	Publish(ctx context.Context, msg []byte) error
}

// Command is a directive the renderer applies after all traces are loaded,
// e.g. Func "update_yaxes" with kwargs {scaleanchor: "x"}.
type Command struct {
	Func   string
	Kwargs *dict.Dictionary
}

// Figure is an ordered list of Traces and Commands sent as one message.
//
// Order is meaningful: traces render in order and commands apply in order.
// Sending drains the Figure; the uuid survives so the same Figure can be
// filled and sent again.
type Figure struct {
	uuid     string
	traces   []*Trace
	commands []Command
}

// New returns an empty Figure. An empty id selects [DefaultUUID].
func New(id string) *Figure {
	if id == "" {
		id = DefaultUUID
	}
	return &Figure{uuid: id}
}

// NewRandom returns an empty Figure with a random v4 UUID.
func NewRandom() *Figure {
	return New(uuid.NewString())
}

// UUID returns the figure id.
func (f *Figure) UUID() string { return f.uuid }

// SetUUID changes the figure id.
func (f *Figure) SetUUID(id string) { f.uuid = id }

// Len returns the number of traces.
func (f *Figure) Len() int { return len(f.traces) }

// AddTrace appends t and returns the new number of traces. The kwargs of t
// move into the Figure; t is left with empty kwargs.
func (f *Figure) AddTrace(t *Trace) int {
	f.traces = append(f.traces, t.take())
	return len(f.traces)
}

// AddTraceOf builds a Trace from its parts and appends it, consuming kwargs.
func (f *Figure) AddTraceOf(method CreationMethod, name string, kwargs *dict.Dictionary) int {
	return f.AddTrace(NewTrace(method, name, kwargs))
}

// Trace returns the trace at idx. Negative indices count from the end, so
// -1 is the last trace.
func (f *Figure) Trace(idx int) (*Trace, error) {
	i, err := f.index(idx)
	if err != nil {
		return nil, err
	}
	return f.traces[i], nil
}

// GetTrace returns the live kwargs of the trace at idx.
func (f *Figure) GetTrace(idx int) (*dict.Dictionary, error) {
	t, err := f.Trace(idx)
	if err != nil {
		return nil, err
	}
	return t.Kwargs(), nil
}

// TraceCopy returns a deep copy of the trace at idx.
func (f *Figure) TraceCopy(idx int) (*Trace, error) {
	t, err := f.Trace(idx)
	if err != nil {
		return nil, err
	}
	return t.Clone(), nil
}

// SetTraceKwargs replaces the kwargs of the trace at idx, consuming d.
func (f *Figure) SetTraceKwargs(idx int, d *dict.Dictionary) error {
	t, err := f.Trace(idx)
	if err != nil {
		return err
	}
	t.SetKwargs(d)
	return nil
}

// AddKwargs sets key on the trace at idx. v is converted with
// [dict.ValueOf].
func (f *Figure) AddKwargs(idx int, key string, v any) error {
	t, err := f.Trace(idx)
	if err != nil {
		return err
	}
	return t.Kwargs().TryAdd(key, v)
}

// RemoveTrace removes the trace at idx. The remaining traces keep their order.
func (f *Figure) RemoveTrace(idx int) error {
	i, err := f.index(idx)
	if err != nil {
		return err
	}
	f.traces = slices.Delete(f.traces, i, i+1)
	return nil
}

// AddCommand appends a post-render directive, consuming kwargs.
func (f *Figure) AddCommand(fn string, kwargs *dict.Dictionary) {
	f.commands = append(f.commands, Command{Func: fn, Kwargs: kwargs.Take()})
}

// Commands returns the queued commands. The kwargs are live.
func (f *Figure) Commands() []Command {
	return slices.Clone(f.commands)
}

// Encode builds the wire message for f without sending or draining it.
func (f *Figure) Encode() ([]byte, error) {
	return wire.Marshal(wire.Envelope{Figure: f.toWire()})
}

// Send encodes f, publishes it with exactly one call to s, then resets f.
// On failure f is left untouched and the error from s is returned as is.
func (f *Figure) Send(ctx context.Context, s Sender) error {
	b, err := wire.Encode(ctx, wire.Envelope{Figure: f.toWire()})
	if err != nil {
		return err
	}
	if err := s.Publish(ctx, b); err != nil {
		return err
	}
	f.Reset()
	return nil
}

// Reset removes every trace and command. The uuid is kept.
func (f *Figure) Reset() {
	f.traces = nil
	f.commands = nil
}

// Copy returns an independent Figure with the same uuid and deep copies of
// every trace and command.
func (f *Figure) Copy() *Figure {
	out := &Figure{uuid: f.uuid}
	for _, t := range f.traces {
		out.traces = append(out.traces, t.Clone())
	}
	for _, c := range f.commands {
		out.commands = append(out.commands, Command{Func: c.Func, Kwargs: c.Kwargs.Clone()})
	}
	return out
}

// FromWire rebuilds a Figure from a decoded message. The kwargs of w move
// into the result.
func FromWire(w *wire.Figure) *Figure {
	f := &Figure{uuid: w.UUID}
	for _, t := range w.Traces {
		f.traces = append(f.traces, NewTrace(t.Method, t.MethodFunc, t.Kwargs))
	}
	for _, c := range w.Commands {
		f.AddCommand(c.Func, c.Kwargs)
	}
	return f
}

func (f *Figure) String() string {
	var b strings.Builder
	b.WriteString("Figure<")
	b.WriteString(f.uuid)
	b.WriteByte('|')
	for _, t := range f.traces {
		b.WriteString(t.String())
	}
	for _, c := range f.commands {
		b.WriteString("Command<")
		b.WriteString(c.Func)
		b.WriteByte('|')
		b.WriteString(c.Kwargs.String())
		b.WriteByte('>')
	}
	b.WriteByte('>')
	return b.String()
}

func (f *Figure) toWire() *wire.Figure {
	w := &wire.Figure{UUID: f.uuid}
	for _, t := range f.traces {
		w.Traces = append(w.Traces, t.toWire())
	}
	for _, c := range f.commands {
		w.Commands = append(w.Commands, wire.Command{Func: c.Func, Kwargs: c.Kwargs})
	}
	return w
}

func (f *Figure) index(idx int) (int, error) {
	n := len(f.traces)
	i := idx
	if i < 0 {
		i += n
	}
	if i < 0 || i >= n {
		return 0, perr.New(perr.ErrCodeIndexOutOfRange, "trace index %d out of range for %d traces", idx, n)
	}
	return i, nil
}

// SendDictionary publishes d as a bare dictionary message and resets d on
// success. Like [Figure.Send], a failed send leaves d untouched.
func SendDictionary(ctx context.Context, s Sender, d *dict.Dictionary) error {
	if d == nil {
		d = &dict.Dictionary{}
	}
	b, err := wire.Encode(ctx, wire.Envelope{Dict: d})
	if err != nil {
		return err
	}
	if err := s.Publish(ctx, b); err != nil {
		return err
	}
	d.Reset()
	return nil
}
