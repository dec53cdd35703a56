// Package config loads plotmsg settings from a TOML file and the environment.
//
// The file lives at $XDG_CONFIG_HOME/plotmsg/config.toml (or
// ~/.config/plotmsg/config.toml) unless a path is given explicitly. A missing
// default file is not an error; every setting has a default.
//
//	[publisher]
//	transport = "zmq"
//	address   = "tcp://127.0.0.1:5557"
//	warmup    = "1s"
//	mode      = "dontwait"
//
//	[mqtt]
//	broker    = "tcp://localhost:1883"
//	topic     = "plotmsg/figures"
//	client_id = ""
//	qos       = 0
//
//	[archive]
//	backend = "file"
//	path    = "~/.cache/plotmsg/archive"
//
// PLOTMSG_ADDRESS and PLOTMSG_TRANSPORT override the publisher settings.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	perr "github.com/matzehuels/plotmsg/pkg/errors"
	"github.com/matzehuels/plotmsg/pkg/transport"
)

const appName = "plotmsg"

// Environment variables that override file settings.
const (
	EnvAddress   = "PLOTMSG_ADDRESS"
	EnvTransport = "PLOTMSG_TRANSPORT"
)

// DefaultMQTTBroker is used when [mqtt] broker is empty.
const DefaultMQTTBroker = "tcp://localhost:1883"

// Config is the full configuration.
type Config struct {
	Publisher Publisher `toml:"publisher"`
	MQTT      MQTT      `toml:"mqtt"`
	Archive   Archive   `toml:"archive"`

	// Path is the file the configuration was read from, empty if none.
	Path string `toml:"-"`
}

// Publisher configures the outgoing socket.
type Publisher struct {
	Transport string        `toml:"transport"`
	Address   string        `toml:"address"`
	WarmUp    time.Duration `toml:"warmup"`
	Mode      string        `toml:"mode"`
}

// MQTT configures the MQTT transport.
type MQTT struct {
	Broker   string `toml:"broker"`
	Topic    string `toml:"topic"`
	ClientID string `toml:"client_id"`
	QoS      int    `toml:"qos"`
}

// Archive configures where received messages are recorded.
type Archive struct {
	Backend string `toml:"backend"`
	Path    string `toml:"path"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Publisher: Publisher{
			Transport: string(transport.KindZMQ),
			Address:   transport.DefaultAddress,
			WarmUp:    transport.DefaultWarmUp,
			Mode:      transport.ModeDontWait.String(),
		},
		MQTT: MQTT{
			Broker: DefaultMQTTBroker,
			Topic:  transport.DefaultMQTTTopic,
		},
		Archive: Archive{
			Backend: "file",
			Path:    defaultArchivePath(),
		},
	}
}

// Load reads the configuration at path on top of Defaults, applies the
// environment overrides and validates the result. An empty path means the
// default location, which may be absent.
func Load(path string) (Config, error) {
	cfg := Defaults()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		md, err := toml.DecodeFile(path, &cfg)
		switch {
		case err == nil:
			cfg.Path = path
			if undecoded := md.Undecoded(); len(undecoded) > 0 {
				return Config{}, perr.New(perr.ErrCodeInvalidConfig, "%s: unknown key %s", path, undecoded[0])
			}
		case errors.Is(err, fs.ErrNotExist) && !explicit:
		case errors.Is(err, fs.ErrNotExist):
			return Config{}, perr.Wrap(perr.ErrCodeInvalidConfig, err, "config file not found: %s", path)
		default:
			return Config{}, perr.Wrap(perr.ErrCodeInvalidConfig, err, "parse %s", path)
		}
	}

	cfg.applyEnv()
	cfg.Archive.Path = expandHome(cfg.Archive.Path)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvAddress)); v != "" {
		c.Publisher.Address = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvTransport)); v != "" {
		c.Publisher.Transport = v
	}
}

// Validate checks that every setting is usable.
func (c Config) Validate() error {
	kind, err := transport.ParseKind(c.Publisher.Transport)
	if err != nil {
		return err
	}
	if err := perr.ValidateAddress(c.Publisher.Address); err != nil {
		return perr.Wrap(perr.ErrCodeInvalidConfig, err, "publisher.address")
	}
	if _, err := transport.ParseMode(c.Publisher.Mode); err != nil {
		return err
	}
	if c.Publisher.WarmUp < 0 {
		return perr.New(perr.ErrCodeInvalidConfig, "publisher.warmup must not be negative (got %s)", c.Publisher.WarmUp)
	}

	if kind == transport.KindMQTT {
		if err := perr.ValidateAddress(c.MQTT.Broker); err != nil {
			return perr.Wrap(perr.ErrCodeInvalidConfig, err, "mqtt.broker")
		}
	}
	if err := perr.ValidateTopic(c.MQTT.Topic); err != nil {
		return perr.Wrap(perr.ErrCodeInvalidConfig, err, "mqtt.topic")
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		return perr.New(perr.ErrCodeInvalidConfig, "mqtt.qos must be 0, 1 or 2 (got %d)", c.MQTT.QoS)
	}

	switch c.Archive.Backend {
	case "file", "sqlite":
		if c.Archive.Path == "" {
			return perr.New(perr.ErrCodeInvalidConfig, "archive.path is required for the %s backend", c.Archive.Backend)
		}
	case "none":
	default:
		return perr.New(perr.ErrCodeInvalidConfig, "archive.backend must be file, sqlite or none (got %q)", c.Archive.Backend)
	}
	return nil
}

// Kind returns the parsed publisher transport. Call after Validate.
func (c Config) Kind() transport.Kind {
	kind, _ := transport.ParseKind(c.Publisher.Transport)
	return kind
}

// SendMode returns the parsed publisher send mode. Call after Validate.
func (c Config) SendMode() transport.Mode {
	mode, _ := transport.ParseMode(c.Publisher.Mode)
	return mode
}

// MQTTOptions returns the transport options for the [mqtt] section.
func (c Config) MQTTOptions() transport.MQTTOptions {
	return transport.MQTTOptions{
		Topic:    c.MQTT.Topic,
		ClientID: c.MQTT.ClientID,
		QoS:      byte(c.MQTT.QoS),
	}
}

// Endpoint returns the address a publisher binds (or connects) to. For MQTT
// that is the broker; for ZeroMQ the publisher address.
func (c Config) Endpoint() string {
	if c.Kind() == transport.KindMQTT {
		return c.MQTT.Broker
	}
	return c.Publisher.Address
}

// Encode writes c as TOML.
func (c Config) Encode() (string, error) {
	var b strings.Builder
	if err := toml.NewEncoder(&b).Encode(c); err != nil {
		return "", perr.Wrap(perr.ErrCodeInternal, err, "encode config")
	}
	return b.String(), nil
}

// DefaultPath returns the default config file location using the XDG
// standard (~/.config/plotmsg/config.toml). It is empty when no home
// directory can be found.
func DefaultPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName, "config.toml")
}

// defaultArchivePath returns ~/.cache/plotmsg/archive, honouring
// XDG_CACHE_HOME.
func defaultArchivePath() string {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, appName, "archive")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".cache", appName, "archive")
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
