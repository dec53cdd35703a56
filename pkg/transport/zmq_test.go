package transport

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	perr "github.com/matzehuels/plotmsg/pkg/errors"
)

func freeTCPAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return fmt.Sprintf("tcp://%s", l.Addr())
}

func TestZMQPubSubLoopback(t *testing.T) {
	if testing.Short() {
		t.Skip("opens TCP sockets")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	addr := freeTCPAddr(t)
	pub := NewPublisher(NewZMQPubSocket(ctx), Options{Address: addr, WarmUp: -1, Logger: quietLogger()})
	defer pub.Close()
	require.NoError(t, pub.Initialize(ctx))

	sub, err := NewZMQSubscriber(ctx, addr)
	require.NoError(t, err)
	defer sub.Close()
	assert.Equal(t, addr, sub.Addr())

	// PUB drops messages until the subscription has propagated, so keep
	// publishing until one arrives.
	want := []byte{0x0a, 0x02, 0x0a, 0x00}
	got := make(chan []byte, 1)
	go func() {
		b, err := sub.Recv(ctx)
		if err == nil {
			got <- b
		}
	}()

	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case b := <-got:
			assert.Equal(t, want, b)
			return
		case <-tick.C:
			require.NoError(t, pub.Publish(ctx, want))
		case <-ctx.Done():
			t.Fatal("no message received")
		}
	}
}

func TestZMQSubscriberRecvHonoursContext(t *testing.T) {
	if testing.Short() {
		t.Skip("opens TCP sockets")
	}
	addr := freeTCPAddr(t)
	pubSock := NewZMQPubSocket(context.Background())
	require.NoError(t, pubSock.Listen(addr))
	defer pubSock.Close()

	sub, err := NewZMQSubscriber(context.Background(), addr)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = sub.Recv(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	_ = sub.Close()
	_, err = sub.Recv(context.Background())
	assert.True(t, perr.Is(err, perr.ErrCodeTransport))
}

func TestZMQSubscriberRejectsBadAddress(t *testing.T) {
	_, err := NewZMQSubscriber(context.Background(), "localhost")
	assert.True(t, perr.Is(err, perr.ErrCodeInvalidAddress))
}
