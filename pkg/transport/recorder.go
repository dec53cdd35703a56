package transport

import (
	"context"
	"slices"
	"sync"
)

// Recorder is an in-memory Socket that keeps every message it is sent.
// Set Err to make Listen and Send fail.
type Recorder struct {
	mu     sync.Mutex
	Err    error
	addrs  []string
	msgs   [][]byte
	modes  []Mode
	closed bool
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Listen(addr string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.addrs = append(r.addrs, addr)
	return nil
}

func (r *Recorder) Send(ctx context.Context, msg []byte, mode Mode) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.msgs = append(r.msgs, slices.Clone(msg))
	r.modes = append(r.modes, mode)
	return nil
}

func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

// Messages returns copies of the messages sent so far.
func (r *Recorder) Messages() [][]byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([][]byte, len(r.msgs))
	for i, m := range r.msgs {
		out[i] = slices.Clone(m)
	}
	return out
}

// Modes returns the send mode of each message.
func (r *Recorder) Modes() []Mode {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.modes)
}

// Listens returns the addresses passed to Listen, in call order.
func (r *Recorder) Listens() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.addrs)
}

// Closed reports whether Close was called.
func (r *Recorder) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}
