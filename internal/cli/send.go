package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/plotmsg/internal/config"
	"github.com/matzehuels/plotmsg/pkg/archive"
	"github.com/matzehuels/plotmsg/pkg/dict"
	perr "github.com/matzehuels/plotmsg/pkg/errors"
	"github.com/matzehuels/plotmsg/pkg/plot"
	"github.com/matzehuels/plotmsg/pkg/transport"
)

// sendOptions holds the flags of the send command.
type sendOptions struct {
	transportFlags
	uuid     string
	method   string
	fn       string
	kwargs   string
	sets     []string
	commands []string
	figure   string
	asDict   bool
	out      string
	dryRun   bool
	record   bool
}

// sendCommand creates the send command for publishing a single figure.
func (c *CLI) sendCommand() *cobra.Command {
	var opts sendOptions

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Publish one figure",
		Long: `Build a figure from flags and files, encode it and publish it once.

A trace is added when --func is given. Its keyword arguments come from
--kwargs (a YAML or JSON mapping, "-" for stdin) and --set key=value pairs;
dotted keys create nested dictionaries. --figure loads a whole figure
(uuid, traces, commands) from a YAML or JSON document.

With --dict the keyword arguments are published as a bare dictionary
instead of a figure.`,
		Example: `  # Scatter plot from inline values
  plotmsg send --uuid demo --func Scatter --set 'x=[1,2,3]' --set 'y=[4,1,2]'

  # Trace from a file plus a layout command
  plotmsg send --func Scatter3d --kwargs points.yaml --command update_layout=layout.yaml

  # Encode only, write the bytes for inspection
  plotmsg send --figure fig.yaml --dry-run --out fig.pb`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSend(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	opts.transportFlags.register(cmd)
	cmd.Flags().StringVar(&opts.uuid, "uuid", "", "figure id (default: random)")
	cmd.Flags().StringVar(&opts.method, "method", "go", "trace creation method: go, ff or custom")
	cmd.Flags().StringVar(&opts.fn, "func", "", "trace function, e.g. Scatter")
	cmd.Flags().StringVar(&opts.kwargs, "kwargs", "", "YAML/JSON file with the trace keyword arguments")
	cmd.Flags().StringArrayVar(&opts.sets, "set", nil, "keyword argument key=value (repeatable)")
	cmd.Flags().StringArrayVar(&opts.commands, "command", nil, "figure command func[=FILE] (repeatable)")
	cmd.Flags().StringVar(&opts.figure, "figure", "", "YAML/JSON figure document")
	cmd.Flags().BoolVar(&opts.asDict, "dict", false, "publish the keyword arguments as a bare dictionary")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "also write the encoded message to this file")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "encode without publishing")
	cmd.Flags().BoolVar(&opts.record, "record", false, "store the message in the archive")

	cmd.MarkFlagsMutuallyExclusive("figure", "dict")

	return cmd
}

func (c *CLI) runSend(ctx context.Context, w io.Writer, opts sendOptions) error {
	logger := loggerFromContext(ctx)

	cfg, err := opts.apply(c.cfg)
	if err != nil {
		return err
	}

	kwargs, err := opts.buildKwargs()
	if err != nil {
		return err
	}

	var fig *plot.Figure
	if !opts.asDict {
		fig, err = opts.buildFigure(kwargs)
		if err != nil {
			return err
		}
	}

	sender, err := c.newCaptureSender(ctx, cfg, opts.dryRun)
	if err != nil {
		return err
	}
	defer sender.Close()

	if !opts.dryRun && cfg.Publisher.WarmUp > 0 {
		spin := newSpinner(fmt.Sprintf("Connecting to %s", cfg.Endpoint()))
		spin.Start()
		err := sender.pub.Initialize(ctx)
		spin.Stop()
		if err != nil {
			return err
		}
	}

	prog := newProgress(logger)
	if fig != nil {
		logger.Debug("sending figure", "uuid", fig.UUID(), "traces", fig.Len())
		err = fig.Send(ctx, sender)
	} else {
		logger.Debug("sending dictionary", "keys", kwargs.Len())
		err = plot.SendDictionary(ctx, sender, kwargs)
	}
	if err != nil {
		return err
	}
	prog.done("Published message")

	payload := sender.last
	sum, _, err := summarize(ctx, payload)
	if err != nil {
		return err
	}

	if opts.out != "" {
		if err := os.WriteFile(opts.out, payload, 0o644); err != nil {
			return perr.Wrap(perr.ErrCodeInternal, err, "write %s", opts.out)
		}
	}
	if opts.record {
		key, err := c.record(ctx, payload, cfg.Endpoint())
		if err != nil {
			return err
		}
		sum.key = key
	}

	verb := "Published"
	if opts.dryRun {
		verb = "Encoded"
	}
	fmt.Fprintf(w, "%s %s %s\n", styleIconSuccess.Render(iconSuccess), verb, sum.render())
	if opts.out != "" {
		fmt.Fprintln(w, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(opts.out))
	}
	return nil
}

// buildKwargs merges --kwargs and --set into one dictionary.
func (o sendOptions) buildKwargs() (*dict.Dictionary, error) {
	kwargs := dict.New()
	if o.kwargs != "" {
		d, err := readKwargs(o.kwargs)
		if err != nil {
			return nil, err
		}
		kwargs = d
	}
	if err := applyAssignments(kwargs, o.sets); err != nil {
		return nil, err
	}
	return kwargs, nil
}

// buildFigure assembles the figure from --figure, --func and --command.
// kwargs is consumed by the trace.
func (o sendOptions) buildFigure(kwargs *dict.Dictionary) (*plot.Figure, error) {
	var fig *plot.Figure
	switch {
	case o.figure != "":
		f, err := readFigure(o.figure)
		if err != nil {
			return nil, err
		}
		fig = f
		if o.uuid != "" {
			fig.SetUUID(o.uuid)
		}
	case o.uuid != "":
		fig = plot.New(o.uuid)
	default:
		fig = plot.NewRandom()
	}

	if o.fn != "" {
		method, err := plot.ParseCreationMethod(o.method)
		if err != nil {
			return nil, err
		}
		fig.AddTraceOf(method, o.fn, kwargs)
	} else if kwargs.Len() > 0 {
		return nil, perr.New(perr.ErrCodeInvalidInput, "--kwargs and --set need --func (or --dict)")
	}

	for _, spec := range o.commands {
		fn, ckw, err := parseCommandFlag(spec)
		if err != nil {
			return nil, err
		}
		fig.AddCommand(fn, ckw)
	}
	return fig, nil
}

// record stores payload in the configured archive and returns its key.
func (c *CLI) record(ctx context.Context, payload []byte, source string) (string, error) {
	store, err := c.openArchive(ctx, false)
	if err != nil {
		return "", err
	}
	defer store.Close()
	return store.Put(ctx, archive.NewRecord(payload, source))
}

// captureSender publishes through a Publisher and remembers the last
// message it sent.
type captureSender struct {
	pub  *transport.Publisher
	last []byte
}

// newCaptureSender builds the publisher for cfg. In dry-run mode the
// socket is an in-memory recorder and no warm-up is applied.
func (c *CLI) newCaptureSender(ctx context.Context, cfg config.Config, dryRun bool) (*captureSender, error) {
	if dryRun {
		return &captureSender{pub: transport.NewPublisher(transport.NewRecorder(), transport.Options{
			Address: cfg.Endpoint(),
			WarmUp:  -1,
			Logger:  c.Logger,
		})}, nil
	}
	pub, err := c.newPublisher(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &captureSender{pub: pub}, nil
}

func (s *captureSender) Publish(ctx context.Context, msg []byte) error {
	if err := s.pub.Publish(ctx, msg); err != nil {
		return err
	}
	s.last = msg
	return nil
}

func (s *captureSender) Close() error {
	return s.pub.Close()
}
