package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	perr "github.com/matzehuels/plotmsg/pkg/errors"
	"github.com/matzehuels/plotmsg/pkg/transport"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func isolate(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	t.Setenv(EnvAddress, "")
	t.Setenv(EnvTransport, "")
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, "zmq", cfg.Publisher.Transport)
	assert.Equal(t, transport.DefaultAddress, cfg.Publisher.Address)
	assert.Equal(t, time.Second, cfg.Publisher.WarmUp)
	assert.Equal(t, "dontwait", cfg.Publisher.Mode)
	assert.Equal(t, transport.DefaultMQTTTopic, cfg.MQTT.Topic)
	assert.Equal(t, "file", cfg.Archive.Backend)
	assert.NoError(t, cfg.Validate())
}

func TestLoadMissingDefaultFile(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Empty(t, cfg.Path)
	assert.Equal(t, transport.DefaultAddress, cfg.Publisher.Address)
	assert.Equal(t, filepath.Join(os.Getenv("XDG_CACHE_HOME"), "plotmsg", "archive"), cfg.Archive.Path)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	isolate(t)

	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.True(t, perr.Is(err, perr.ErrCodeInvalidConfig))
}

func TestLoadFile(t *testing.T) {
	isolate(t)
	path := writeConfig(t, `
[publisher]
transport = "mqtt"
address = "tcp://0.0.0.0:6000"
warmup = "250ms"
mode = "block"

[mqtt]
broker = "mqtt://broker.local:1883"
topic = "lab/plots"
client_id = "bench"
qos = 1

[archive]
backend = "sqlite"
path = "/tmp/plotmsg.db"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, cfg.Path)
	assert.Equal(t, transport.KindMQTT, cfg.Kind())
	assert.Equal(t, transport.ModeBlock, cfg.SendMode())
	assert.Equal(t, 250*time.Millisecond, cfg.Publisher.WarmUp)
	assert.Equal(t, "mqtt://broker.local:1883", cfg.Endpoint())

	mq := cfg.MQTTOptions()
	assert.Equal(t, "lab/plots", mq.Topic)
	assert.Equal(t, "bench", mq.ClientID)
	assert.Equal(t, byte(1), mq.QoS)

	assert.Equal(t, "sqlite", cfg.Archive.Backend)
	assert.Equal(t, "/tmp/plotmsg.db", cfg.Archive.Path)
}

func TestLoadDefaultLocation(t *testing.T) {
	isolate(t)
	dir := filepath.Join(os.Getenv("XDG_CONFIG_HOME"), "plotmsg")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"),
		[]byte("[publisher]\naddress = \"tcp://127.0.0.1:7000\"\n"), 0o644))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "tcp://127.0.0.1:7000", cfg.Publisher.Address)
	assert.Equal(t, filepath.Join(dir, "config.toml"), cfg.Path)
}

func TestEnvOverrides(t *testing.T) {
	isolate(t)
	path := writeConfig(t, "[publisher]\naddress = \"tcp://127.0.0.1:7000\"\n")
	t.Setenv(EnvAddress, "tcp://127.0.0.1:8000")
	t.Setenv(EnvTransport, "MQTT")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "tcp://127.0.0.1:8000", cfg.Publisher.Address)
	assert.Equal(t, transport.KindMQTT, cfg.Kind())
	assert.Equal(t, DefaultMQTTBroker, cfg.Endpoint())
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"syntax", "[publisher\n"},
		{"unknown key", "[publisher]\nadress = \"tcp://127.0.0.1:1\"\n"},
		{"bad transport", "[publisher]\ntransport = \"udp\"\n"},
		{"bad address", "[publisher]\naddress = \"127.0.0.1\"\n"},
		{"bad mode", "[publisher]\nmode = \"sometimes\"\n"},
		{"negative warmup", "[publisher]\nwarmup = \"-1s\"\n"},
		{"wildcard topic", "[mqtt]\ntopic = \"plots/#\"\n"},
		{"bad qos", "[mqtt]\nqos = 3\n"},
		{"bad backend", "[archive]\nbackend = \"redis\"\n"},
		{"empty archive path", "[archive]\nbackend = \"sqlite\"\npath = \"\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.True(t, perr.Is(err, perr.ErrCodeInvalidConfig), "got %v", err)
		})
	}
}

func TestArchiveNoneNeedsNoPath(t *testing.T) {
	isolate(t)
	cfg, err := Load(writeConfig(t, "[archive]\nbackend = \"none\"\npath = \"\"\n"))
	require.NoError(t, err)
	assert.Equal(t, "none", cfg.Archive.Backend)
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "x"), expandHome("~/x"))
	assert.Equal(t, "/abs/x", expandHome("/abs/x"))
	assert.Equal(t, "~user/x", expandHome("~user/x"))
}

func TestEncodeRoundTrip(t *testing.T) {
	isolate(t)
	want := Defaults()
	want.Publisher.WarmUp = 3 * time.Second
	want.MQTT.QoS = 2

	text, err := want.Encode()
	require.NoError(t, err)

	got, err := Load(writeConfig(t, text))
	require.NoError(t, err)
	assert.Equal(t, want.Publisher, got.Publisher)
	assert.Equal(t, want.MQTT, got.MQTT)
	assert.Equal(t, want.Archive, got.Archive)
}

func TestDefaultPathXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/custom-config")
	assert.Equal(t, filepath.Join("/tmp/custom-config", "plotmsg", "config.toml"), DefaultPath())
}

func TestDefaultPathHome(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config", "plotmsg", "config.toml"), DefaultPath())
}

func TestDefaultArchivePath(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".cache", "plotmsg", "archive"), defaultArchivePath())

	t.Setenv("XDG_CACHE_HOME", "/tmp/custom-cache")
	assert.Equal(t, filepath.Join("/tmp/custom-cache", "plotmsg", "archive"), defaultArchivePath())
}
