package transport

import (
	"context"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	perr "github.com/matzehuels/plotmsg/pkg/errors"
	"github.com/matzehuels/plotmsg/pkg/observability"
)

// DefaultMQTTTopic is the topic figures are published to over MQTT.
const DefaultMQTTTopic = "plotmsg/figures"

// MQTTOptions configures the MQTT sockets.
type MQTTOptions struct {
	// Topic messages are published to and subscribed from.
	Topic string
	// ClientID identifies the client at the broker. Empty means
	// "plotmsg-<random>".
	ClientID string
	// QoS is the MQTT quality of service level (0, 1 or 2).
	QoS byte
	// ConnectTimeout bounds the broker handshake. Zero means 5s.
	ConnectTimeout time.Duration
}

func (o MQTTOptions) withDefaults() MQTTOptions {
	if o.Topic == "" {
		o.Topic = DefaultMQTTTopic
	}
	if o.ClientID == "" {
		o.ClientID = "plotmsg-" + uuid.NewString()[:8]
	}
	if o.ConnectTimeout == 0 {
		o.ConnectTimeout = 5 * time.Second
	}
	return o
}

// brokerURL maps mqtt:// and mqtts:// onto the schemes paho dials.
func brokerURL(addr string) string {
	switch {
	case strings.HasPrefix(addr, "mqtt://"):
		return "tcp://" + strings.TrimPrefix(addr, "mqtt://")
	case strings.HasPrefix(addr, "mqtts://"):
		return "ssl://" + strings.TrimPrefix(addr, "mqtts://")
	}
	return addr
}

func connectMQTT(addr string, opts MQTTOptions) (mqtt.Client, error) {
	if err := perr.ValidateTopic(opts.Topic); err != nil {
		return nil, err
	}
	co := mqtt.NewClientOptions()
	co.AddBroker(brokerURL(addr))
	co.SetClientID(opts.ClientID)
	co.SetAutoReconnect(true)
	co.SetConnectTimeout(opts.ConnectTimeout)

	client := mqtt.NewClient(co)
	token := client.Connect()
	if !token.WaitTimeout(opts.ConnectTimeout) {
		return nil, perr.New(perr.ErrCodeTransport, "mqtt connect to %s timed out after %s", addr, opts.ConnectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, perr.Wrap(perr.ErrCodeTransport, err, "mqtt connect to %s", addr)
	}
	return client, nil
}

// mqttPubSocket publishes each message to a fixed topic on a broker.
type mqttPubSocket struct {
	opts   MQTTOptions
	client mqtt.Client
}

// NewMQTTPubSocket returns an MQTT socket. Listen connects to the broker.
func NewMQTTPubSocket(opts MQTTOptions) Socket {
	return &mqttPubSocket{opts: opts.withDefaults()}
}

func (s *mqttPubSocket) Listen(addr string) error {
	client, err := connectMQTT(addr, s.opts)
	if err != nil {
		return err
	}
	s.client = client
	return nil
}

// Send publishes msg. With ModeDontWait the publish token is not awaited,
// so broker-side failures go unreported.
func (s *mqttPubSocket) Send(ctx context.Context, msg []byte, mode Mode) error {
	if s.client == nil {
		return perr.New(perr.ErrCodeTransport, "mqtt socket is not connected")
	}
	token := s.client.Publish(s.opts.Topic, s.opts.QoS, false, msg)
	if mode == ModeDontWait {
		return nil
	}
	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *mqttPubSocket) Close() error {
	if s.client != nil && s.client.IsConnected() {
		s.client.Disconnect(250)
	}
	return nil
}

// MQTTSubscriber receives messages from an MQTT topic.
type MQTTSubscriber struct {
	addr   string
	client mqtt.Client

	msgs      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

// NewMQTTSubscriber connects to the broker at addr and subscribes to
// opts.Topic.
func NewMQTTSubscriber(addr string, opts MQTTOptions) (*MQTTSubscriber, error) {
	if err := perr.ValidateAddress(addr); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()
	client, err := connectMQTT(addr, opts)
	if err != nil {
		return nil, err
	}

	s := &MQTTSubscriber{
		addr:   addr,
		client: client,
		msgs:   make(chan []byte, 64),
		done:   make(chan struct{}),
	}
	token := client.Subscribe(opts.Topic, opts.QoS, func(_ mqtt.Client, m mqtt.Message) {
		select {
		case s.msgs <- m.Payload():
		case <-s.done:
		}
	})
	if !token.WaitTimeout(opts.ConnectTimeout) {
		client.Disconnect(0)
		return nil, perr.New(perr.ErrCodeTransport, "mqtt subscribe to %s timed out", opts.Topic)
	}
	if err := token.Error(); err != nil {
		client.Disconnect(0)
		return nil, perr.Wrap(perr.ErrCodeTransport, err, "mqtt subscribe to %s", opts.Topic)
	}
	return s, nil
}

// Recv returns the next message.
func (s *MQTTSubscriber) Recv(ctx context.Context) ([]byte, error) {
	select {
	case b := <-s.msgs:
		observability.Publish().OnReceive(ctx, s.addr, len(b))
		return b, nil
	case <-s.done:
		return nil, perr.New(perr.ErrCodeTransport, "subscriber for %s is closed", s.addr)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Addr returns the broker address.
func (s *MQTTSubscriber) Addr() string { return s.addr }

// Close disconnects from the broker.
func (s *MQTTSubscriber) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
		s.client.Disconnect(250)
	})
	return nil
}
