// Package cli implements the plotmsg command-line interface.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/plotmsg/internal/config"
	"github.com/matzehuels/plotmsg/pkg/archive"
	"github.com/matzehuels/plotmsg/pkg/buildinfo"
	"github.com/matzehuels/plotmsg/pkg/transport"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "plotmsg"

	// defaultReceiveTimeout bounds how long listen waits between messages
	// when --timeout is not given. Zero means forever.
	defaultReceiveTimeout = 0
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	cfg        config.Config

	// newSocket is swapped out in tests.
	newSocket func(ctx context.Context, kind transport.Kind, mq transport.MQTTOptions) (transport.Socket, error)
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger:    newLogger(w, level),
		cfg:       config.Defaults(),
		newSocket: transport.NewSocket,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	version, _, _ := buildinfo.Resolve()
	root := &cobra.Command{
		Use:          "plotmsg",
		Short:        "plotmsg publishes plot descriptions to a live viewer",
		Long:         `plotmsg builds figures (traces plus keyword arguments), encodes them as protobuf messages and publishes them over ZeroMQ or MQTT to a plotting subscriber.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			c.cfg = cfg
			if cfg.Path != "" {
				c.Logger.Debug("loaded config", "path", cfg.Path)
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/plotmsg/config.toml)")

	// Register all subcommands
	root.AddCommand(c.sendCommand())
	root.AddCommand(c.demoCommand())
	root.AddCommand(c.listenCommand())
	root.AddCommand(c.replayCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.archiveCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Transport Flags
// =============================================================================

// transportFlags are the per-command overrides of the [publisher] section.
type transportFlags struct {
	transport string
	address   string
	warmUp    time.Duration
	mode      string
}

func (f *transportFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.transport, "transport", "", "transport: zmq or mqtt (default from config)")
	cmd.Flags().StringVarP(&f.address, "address", "a", "", "endpoint to bind or connect (default from config)")
	cmd.Flags().DurationVar(&f.warmUp, "warmup", -1, "delay after binding before the first send (default from config)")
	cmd.Flags().StringVar(&f.mode, "mode", "", "send mode: dontwait or block (default from config)")
}

// apply returns cfg with the flag overrides applied and validated.
func (f *transportFlags) apply(cfg config.Config) (config.Config, error) {
	if f.transport != "" {
		cfg.Publisher.Transport = f.transport
	}
	if f.address != "" {
		if cfg.Kind() == transport.KindMQTT {
			cfg.MQTT.Broker = f.address
		} else {
			cfg.Publisher.Address = f.address
		}
	}
	if f.warmUp >= 0 {
		cfg.Publisher.WarmUp = f.warmUp
	}
	if f.mode != "" {
		cfg.Publisher.Mode = f.mode
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// =============================================================================
// Publisher & Archive Factories
// =============================================================================

// newPublisher creates a publisher for cfg. The socket is bound lazily on
// the first publish.
func (c *CLI) newPublisher(ctx context.Context, cfg config.Config) (*transport.Publisher, error) {
	sock, err := c.newSocket(ctx, cfg.Kind(), cfg.MQTTOptions())
	if err != nil {
		return nil, err
	}
	warmUp := cfg.Publisher.WarmUp
	if warmUp == 0 {
		warmUp = -1 // zero in the config file means no warm-up
	}
	return transport.NewPublisher(sock, transport.Options{
		Address: cfg.Endpoint(),
		WarmUp:  warmUp,
		Mode:    cfg.SendMode(),
		Logger:  c.Logger,
	}), nil
}

// openArchive opens the configured archive store. With disabled set the
// null store is returned.
func (c *CLI) openArchive(ctx context.Context, disabled bool) (archive.Store, error) {
	if disabled {
		return archive.NewNullStore(), nil
	}
	return archive.Open(ctx, c.cfg.Archive.Backend, c.cfg.Archive.Path)
}
