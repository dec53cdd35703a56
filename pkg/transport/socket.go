// Package transport moves encoded plot messages between producers and the
// renderer.
//
// A [Publisher] owns one publish [Socket] and binds it lazily on first use,
// then waits a short warm-up so subscribers that connect right away do not
// miss the first message. Two socket families are supported: ZeroMQ PUB/SUB
// (the renderer's native transport) and MQTT. [Recorder] is an in-memory
// Socket for tests and dry runs.
//
// Transport failures are reported with code TRANSPORT and are never retried.
package transport

import (
	"context"
	"strings"

	perr "github.com/matzehuels/plotmsg/pkg/errors"
)

// Mode controls whether Send may wait for the peer.
type Mode int

const (
	// ModeDontWait hands the message to the socket and returns without
	// waiting for delivery.
	ModeDontWait Mode = iota
	// ModeBlock waits until the socket accepted the message or ctx is done.
	ModeBlock
)

func (m Mode) String() string {
	switch m {
	case ModeDontWait:
		return "dontwait"
	case ModeBlock:
		return "block"
	}
	return "<unknown Mode>"
}

// ParseMode parses "dontwait" or "block". The empty string is ModeDontWait.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "dontwait", "dont_wait", "nonblock":
		return ModeDontWait, nil
	case "block", "blocking":
		return ModeBlock, nil
	}
	return 0, perr.New(perr.ErrCodeInvalidConfig, "unknown send mode %q (want dontwait or block)", s)
}

// Socket is the publish side of a transport.
type Socket interface {
	// Listen binds (ZeroMQ) or connects (MQTT) to addr.
	Listen(addr string) error
	// Send publishes one message.
	Send(ctx context.Context, msg []byte, mode Mode) error
	// Close releases the socket.
	Close() error
}

// Subscriber is the receive side of a transport.
type Subscriber interface {
	// Recv blocks until a message arrives, ctx is done or the subscriber is
	// closed.
	Recv(ctx context.Context) ([]byte, error)
	// Addr returns the address the subscriber is connected to.
	Addr() string
	// Close releases the subscriber. Pending Recv calls return an error.
	Close() error
}

// Kind names a socket family.
type Kind string

const (
	KindZMQ  Kind = "zmq"
	KindMQTT Kind = "mqtt"
)

// ParseKind parses "zmq" or "mqtt". The empty string is KindZMQ.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case "", KindZMQ, "zeromq":
		return KindZMQ, nil
	case KindMQTT:
		return KindMQTT, nil
	}
	return "", perr.New(perr.ErrCodeInvalidConfig, "unknown transport %q (want zmq or mqtt)", s)
}

// NewSocket returns an unbound publish socket of the given kind. mq is
// only used for KindMQTT.
func NewSocket(ctx context.Context, kind Kind, mq MQTTOptions) (Socket, error) {
	switch kind {
	case KindZMQ, "":
		return NewZMQPubSocket(ctx), nil
	case KindMQTT:
		return NewMQTTPubSocket(mq), nil
	}
	return nil, perr.New(perr.ErrCodeInvalidConfig, "unknown transport %q", kind)
}

// NewSubscriber connects a subscriber of the given kind to addr.
func NewSubscriber(ctx context.Context, kind Kind, addr string, mq MQTTOptions) (Subscriber, error) {
	switch kind {
	case KindZMQ, "":
		return NewZMQSubscriber(ctx, addr)
	case KindMQTT:
		return NewMQTTSubscriber(addr, mq)
	}
	return nil, perr.New(perr.ErrCodeInvalidConfig, "unknown transport %q", kind)
}
