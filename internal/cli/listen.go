package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/plotmsg/pkg/archive"
	perr "github.com/matzehuels/plotmsg/pkg/errors"
	"github.com/matzehuels/plotmsg/pkg/transport"
	"github.com/matzehuels/plotmsg/pkg/wire"
)

// listenOptions holds the flags of the listen command.
type listenOptions struct {
	transportFlags
	count   int
	record  bool
	tui     bool
	timeout time.Duration
}

// received is one message taken off the wire.
type received struct {
	at      time.Time
	payload []byte
	sum     messageSummary
	env     wire.Envelope
	err     error // decode or archive failure
}

// listenCommand creates the listen command for subscribing to messages.
func (c *CLI) listenCommand() *cobra.Command {
	var opts listenOptions

	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Subscribe and print incoming messages",
		Long: `Connect a subscriber to the publisher address (or MQTT broker), decode every
message that arrives and print a one-line summary. With --record each
message is also stored in the archive for later replay or inspection.`,
		Example: `  # Print the next three messages
  plotmsg listen --count 3

  # Record everything, with a live list view
  plotmsg listen --record --tui`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runListen(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	opts.transportFlags.register(cmd)
	cmd.Flags().IntVarP(&opts.count, "count", "n", 0, "stop after this many messages (0 = forever)")
	cmd.Flags().BoolVar(&opts.record, "record", false, "store received messages in the archive")
	cmd.Flags().BoolVar(&opts.tui, "tui", false, "show an interactive message list")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", defaultReceiveTimeout, "give up after waiting this long for a message (0 = forever)")

	return cmd
}

func (c *CLI) runListen(ctx context.Context, w io.Writer, opts listenOptions) error {
	cfg, err := opts.apply(c.cfg)
	if err != nil {
		return err
	}

	store, err := c.openArchive(ctx, !opts.record)
	if err != nil {
		return err
	}
	defer store.Close()

	sub, err := transport.NewSubscriber(ctx, cfg.Kind(), cfg.Endpoint(), cfg.MQTTOptions())
	if err != nil {
		return err
	}
	defer sub.Close()

	loggerFromContext(ctx).Info("Listening", "addr", sub.Addr(), "transport", cfg.Kind())

	if opts.tui {
		return c.listenTUI(ctx, sub, store, opts)
	}

	n := 0
	err = c.receive(ctx, sub, store, opts, func(r received) {
		n++
		if r.err != nil {
			fmt.Fprintf(w, "%s %s\n", styleIconWarning.Render(iconWarning), StyleWarning.Render(perr.UserMessage(r.err)))
			return
		}
		fmt.Fprintf(w, "%s %s %s\n", styleIconInfo.Render(iconInfo), StyleDim.Render(r.at.Format("15:04:05.00")), r.sum.render())
	})
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		err = nil // interrupted by the user
	}
	if err == nil && opts.record && n > 0 {
		printDetail("Recorded %s", plural(n, "message"))
	}
	return err
}

// receive reads messages from sub until opts.count is reached, ctx is done
// or the subscriber fails. Every message, decodable or not, is passed to fn
// and counts towards opts.count. Decodable messages are stored in store.
func (c *CLI) receive(ctx context.Context, sub transport.Subscriber, store archive.Store, opts listenOptions, fn func(received)) error {
	for n := 0; opts.count <= 0 || n < opts.count; n++ {
		msg, err := recvWithTimeout(ctx, sub, opts.timeout)
		if err != nil {
			return err
		}

		r := received{at: time.Now(), payload: msg}
		r.sum, r.env, r.err = summarize(ctx, msg)
		if r.err == nil {
			key, err := store.Put(ctx, archive.NewRecord(msg, sub.Addr()))
			if err != nil {
				r.err = err
			} else if opts.record {
				r.sum.key = key
			}
		}
		fn(r)
	}
	return nil
}

func recvWithTimeout(ctx context.Context, sub transport.Subscriber, timeout time.Duration) ([]byte, error) {
	if timeout <= 0 {
		return sub.Recv(ctx)
	}
	rctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	msg, err := sub.Recv(rctx)
	if err != nil && errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		return nil, perr.Wrap(perr.ErrCodeTransport, err, "no message on %s within %s", sub.Addr(), timeout)
	}
	return msg, err
}

// listenTUI runs the receive loop behind an interactive list.
func (c *CLI) listenTUI(ctx context.Context, sub transport.Subscriber, store archive.Store, opts listenOptions) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newListenModel(sub.Addr(), opts.record), tea.WithContext(ctx), tea.WithAltScreen())
	go func() {
		err := c.receive(ctx, sub, store, opts, func(r received) {
			p.Send(receivedMsg(r))
		})
		p.Send(listenDoneMsg{err: err})
	}()

	final, err := p.Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	if m, ok := final.(listenModel); ok && m.err != nil && !errors.Is(m.err, context.Canceled) {
		return m.err
	}
	return nil
}
