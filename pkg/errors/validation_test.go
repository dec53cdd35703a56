package errors

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateAddress(t *testing.T) {
	tests := []struct {
		name    string
		addr    string
		wantErr bool
	}{
		{"default zmq endpoint", "tcp://127.0.0.1:5557", false},
		{"wildcard bind", "tcp://*:5557", false},
		{"ipc endpoint", "ipc:///tmp/plotmsg.sock", false},
		{"inproc endpoint", "inproc://plots", false},
		{"mqtt broker", "tcp://broker.local:1883", false},
		{"websocket broker", "ws://broker.local:8080", false},
		{"empty", "", true},
		{"no scheme", "127.0.0.1:5557", true},
		{"unknown scheme", "http://127.0.0.1:5557", true},
		{"missing port", "tcp://127.0.0.1", true},
		{"empty endpoint", "tcp://", true},
		{"control characters", "tcp://127.0.0.1:5557\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAddress(tt.addr)
			if tt.wantErr {
				assert.True(t, Is(err, ErrCodeInvalidAddress), "got %v", err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidateTopic(t *testing.T) {
	assert.NoError(t, ValidateTopic("plotmsg/figures"))
	assert.Error(t, ValidateTopic(""))
	assert.Error(t, ValidateTopic("plotmsg/+"))
	assert.Error(t, ValidateTopic("plotmsg/#"))
	assert.Error(t, ValidateTopic(strings.Repeat("a", 65536)))
}

func TestValidateKey(t *testing.T) {
	assert.NoError(t, ValidateKey("marker_size"))
	assert.Error(t, ValidateKey(""))
	assert.Error(t, ValidateKey("bad\x00key"))
	assert.Error(t, ValidateKey("tab\tkey"))
}
