package transport

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/go-zeromq/zmq4"

	perr "github.com/matzehuels/plotmsg/pkg/errors"
	"github.com/matzehuels/plotmsg/pkg/observability"
)

// zmqPubSocket is a ZeroMQ PUB socket. Messages go out as a single frame.
type zmqPubSocket struct {
	sock zmq4.Socket
}

// NewZMQPubSocket returns an unbound ZeroMQ PUB socket. The socket lives
// until Close is called or ctx is cancelled.
func NewZMQPubSocket(ctx context.Context) Socket {
	return &zmqPubSocket{sock: zmq4.NewPub(ctx)}
}

func (s *zmqPubSocket) Listen(addr string) error {
	return s.sock.Listen(addr)
}

// Send writes msg to every connected subscriber. PUB sockets never queue
// for absent peers, so ModeDontWait and ModeBlock differ only in that
// ModeBlock gives up when ctx is done.
func (s *zmqPubSocket) Send(ctx context.Context, msg []byte, mode Mode) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if mode == ModeDontWait {
		return s.sock.Send(zmq4.NewMsg(msg))
	}
	done := make(chan error, 1)
	go func() { done <- s.sock.Send(zmq4.NewMsg(msg)) }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *zmqPubSocket) Close() error {
	return s.sock.Close()
}

// ZMQSubscriber receives messages from a ZeroMQ PUB socket. A background
// goroutine reads the socket so Recv can honour its context.
type ZMQSubscriber struct {
	sock zmq4.Socket
	addr string

	msgs   chan []byte
	failed chan struct{}
	err    error

	done      chan struct{}
	closeOnce sync.Once
}

// NewZMQSubscriber connects a SUB socket to addr and subscribes to every
// message.
func NewZMQSubscriber(ctx context.Context, addr string) (*ZMQSubscriber, error) {
	if err := perr.ValidateAddress(addr); err != nil {
		return nil, err
	}
	sock := zmq4.NewSub(ctx, zmq4.WithDialerRetry(250*time.Millisecond))
	if err := sock.Dial(addr); err != nil {
		_ = sock.Close()
		return nil, perr.Wrap(perr.ErrCodeTransport, err, "connect to %s", addr)
	}
	if err := sock.SetOption(zmq4.OptionSubscribe, ""); err != nil {
		_ = sock.Close()
		return nil, perr.Wrap(perr.ErrCodeTransport, err, "subscribe on %s", addr)
	}

	s := &ZMQSubscriber{
		sock:   sock,
		addr:   addr,
		msgs:   make(chan []byte),
		failed: make(chan struct{}),
		done:   make(chan struct{}),
	}
	go s.readLoop()
	return s, nil
}

func (s *ZMQSubscriber) readLoop() {
	for {
		msg, err := s.sock.Recv()
		if err != nil {
			s.err = err
			close(s.failed)
			return
		}
		select {
		case s.msgs <- bytes.Join(msg.Frames, nil):
		case <-s.done:
			return
		}
	}
}

// Recv returns the next message.
func (s *ZMQSubscriber) Recv(ctx context.Context) ([]byte, error) {
	select {
	case b := <-s.msgs:
		observability.Publish().OnReceive(ctx, s.addr, len(b))
		return b, nil
	case <-s.failed:
		return nil, perr.Wrap(perr.ErrCodeTransport, s.err, "receive from %s", s.addr)
	case <-s.done:
		return nil, perr.New(perr.ErrCodeTransport, "subscriber for %s is closed", s.addr)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Addr returns the publisher address.
func (s *ZMQSubscriber) Addr() string { return s.addr }

// Close stops the subscriber.
func (s *ZMQSubscriber) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		err = s.sock.Close()
	})
	return err
}
