package transport

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	perr "github.com/matzehuels/plotmsg/pkg/errors"
	"github.com/matzehuels/plotmsg/pkg/observability"
)

const (
	// DefaultAddress is where the renderer subscribes by default.
	DefaultAddress = "tcp://127.0.0.1:5557"
	// DefaultWarmUp gives subscribers time to connect after the bind.
	DefaultWarmUp = time.Second
)

// Options configures a Publisher.
type Options struct {
	// Address to bind. Empty means DefaultAddress.
	Address string
	// WarmUp is the pause after binding. Zero means DefaultWarmUp; a
	// negative value disables the pause.
	WarmUp time.Duration
	// Mode is passed to every Send.
	Mode Mode
	// Logger receives debug output. Nil means log.Default().
	Logger *log.Logger
}

// Publisher sends encoded messages over one Socket. The socket is bound on
// the first Publish (or an explicit Initialize) and stays bound until Close.
//
// Publisher is safe for concurrent use; sends are serialized.
type Publisher struct {
	sock   Socket
	opts   Options
	logger *log.Logger

	mu     sync.Mutex
	bound  bool
	ready  bool
	closed bool
}

// NewPublisher returns a Publisher for sock. Nothing is bound yet.
func NewPublisher(sock Socket, opts Options) *Publisher {
	if opts.Address == "" {
		opts.Address = DefaultAddress
	}
	if opts.WarmUp == 0 {
		opts.WarmUp = DefaultWarmUp
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Publisher{sock: sock, opts: opts, logger: logger}
}

// Addr returns the bind address.
func (p *Publisher) Addr() string { return p.opts.Address }

// Initialize binds the socket and waits the warm-up delay. Calls after the
// first successful one return immediately. If ctx ends during the warm-up
// the socket stays bound and the next call waits again.
func (p *Publisher) Initialize(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.initLocked(ctx)
}

func (p *Publisher) initLocked(ctx context.Context) error {
	if p.closed {
		return perr.New(perr.ErrCodeTransport, "publisher for %s is closed", p.opts.Address)
	}
	if p.ready {
		return nil
	}
	if !p.bound {
		if err := perr.ValidateAddress(p.opts.Address); err != nil {
			return err
		}
		err := p.sock.Listen(p.opts.Address)
		observability.Publish().OnConnect(ctx, p.opts.Address, err)
		if err != nil {
			return perr.Wrap(perr.ErrCodeTransport, err, "bind %s", p.opts.Address)
		}
		p.bound = true
		p.logger.Debug("publisher bound", "addr", p.opts.Address, "warmup", p.opts.WarmUp)
	}

	if p.opts.WarmUp > 0 {
		t := time.NewTimer(p.opts.WarmUp)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	p.ready = true
	return nil
}

// Publish initializes the publisher if needed and sends msg once.
func (p *Publisher) Publish(ctx context.Context, msg []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.initLocked(ctx); err != nil {
		return err
	}

	hooks := observability.Publish()
	hooks.OnPublishStart(ctx, p.opts.Address, len(msg))
	start := time.Now()
	err := p.sock.Send(ctx, msg, p.opts.Mode)
	hooks.OnPublishComplete(ctx, p.opts.Address, len(msg), time.Since(start), err)
	if err != nil {
		return perr.Wrap(perr.ErrCodeTransport, err, "publish %d bytes to %s", len(msg), p.opts.Address)
	}
	p.logger.Debug("published", "addr", p.opts.Address, "bytes", len(msg), "mode", p.opts.Mode)
	return nil
}

// Close releases the socket. Further calls to Publish fail.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	if err := p.sock.Close(); err != nil {
		return perr.Wrap(perr.ErrCodeTransport, err, "close %s", p.opts.Address)
	}
	return nil
}
