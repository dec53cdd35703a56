package errors

import (
	"net/url"
	"strings"
	"unicode"
)

// supportedSchemes lists the endpoint schemes understood by the transports.
// zmq uses tcp/ipc/inproc; MQTT brokers use tcp/ssl/ws/wss/mqtt.
var supportedSchemes = []string{"tcp", "ipc", "inproc", "ssl", "tls", "ws", "wss", "mqtt", "mqtts"}

// ValidateAddress validates a transport endpoint such as "tcp://127.0.0.1:5557".
//
// Validation rules:
//   - Address cannot be empty
//   - No control characters
//   - Must be of the form scheme://rest with a supported scheme
//   - tcp-like schemes must carry a host:port
func ValidateAddress(addr string) error {
	if addr == "" {
		return New(ErrCodeInvalidAddress, "address cannot be empty")
	}

	for _, r := range addr {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidAddress, "address contains invalid control characters")
		}
	}

	scheme, rest, ok := strings.Cut(addr, "://")
	if !ok || rest == "" {
		return New(ErrCodeInvalidAddress, "address must look like scheme://endpoint: %q", addr)
	}

	supported := false
	for _, s := range supportedSchemes {
		if scheme == s {
			supported = true
			break
		}
	}
	if !supported {
		return New(ErrCodeInvalidAddress, "unsupported address scheme %q", scheme)
	}

	switch scheme {
	case "ipc", "inproc":
		return nil
	}

	u, err := url.Parse(addr)
	if err != nil {
		return Wrap(ErrCodeInvalidAddress, err, "parse address %q", addr)
	}
	if u.Port() == "" {
		return New(ErrCodeInvalidAddress, "address %q has no port", addr)
	}
	return nil
}

// ValidateTopic validates an MQTT publish topic.
// Wildcards are rejected because a publisher must name a concrete topic.
func ValidateTopic(topic string) error {
	if topic == "" {
		return New(ErrCodeInvalidInput, "topic cannot be empty")
	}
	if len(topic) > 65535 {
		return New(ErrCodeInvalidInput, "topic too long (max 65535 bytes)")
	}
	if strings.ContainsAny(topic, "+#\x00") {
		return New(ErrCodeInvalidInput, "topic %q contains wildcard or null characters", topic)
	}
	return nil
}

// ValidateKey validates a Dictionary key or archive key.
// Keys must be non-empty and must not contain control characters.
func ValidateKey(key string) error {
	if key == "" {
		return New(ErrCodeInvalidInput, "key cannot be empty")
	}
	for _, r := range key {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "key %q contains invalid characters", key)
		}
	}
	return nil
}
