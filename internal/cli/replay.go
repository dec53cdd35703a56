package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/plotmsg/pkg/archive"
	perr "github.com/matzehuels/plotmsg/pkg/errors"
)

// replayOptions holds the flags of the replay command.
type replayOptions struct {
	transportFlags
	delay  time.Duration
	latest int
}

// replayCommand creates the replay command for republishing archived messages.
func (c *CLI) replayCommand() *cobra.Command {
	var opts replayOptions

	cmd := &cobra.Command{
		Use:   "replay [KEY...]",
		Short: "Republish archived messages",
		Long: `Publish archived messages again, byte for byte, in the order given. Keys may
be abbreviated to any unique prefix. Without keys every archived message
is replayed, oldest first.`,
		Example: `  plotmsg replay 3f2a9c1b 77e0
  plotmsg replay --latest 5 --delay 500ms`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runReplay(cmd.Context(), cmd.OutOrStdout(), args, opts)
		},
	}

	opts.transportFlags.register(cmd)
	cmd.Flags().DurationVar(&opts.delay, "delay", 0, "pause between messages")
	cmd.Flags().IntVar(&opts.latest, "latest", 0, "only replay the N most recent messages")

	return cmd
}

func (c *CLI) runReplay(ctx context.Context, w io.Writer, keys []string, opts replayOptions) error {
	cfg, err := opts.apply(c.cfg)
	if err != nil {
		return err
	}

	store, err := c.openArchive(ctx, false)
	if err != nil {
		return err
	}
	defer store.Close()

	recs, err := selectRecords(ctx, store, keys, opts.latest)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		printInfo("Archive is empty")
		return nil
	}

	pub, err := c.newPublisher(ctx, cfg)
	if err != nil {
		return err
	}
	defer pub.Close()

	logger := loggerFromContext(ctx)
	prog := newProgress(logger)
	for i, rec := range recs {
		if i > 0 && opts.delay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(opts.delay):
			}
		}
		logger.Debug("replaying", "key", rec.Key, "size", len(rec.Payload))
		if err := pub.Publish(ctx, rec.Payload); err != nil {
			return err
		}
		sum, _, err := summarize(ctx, rec.Payload)
		if err != nil {
			return err
		}
		sum.key = rec.Key
		fmt.Fprintf(w, "%s %s\n", styleIconSuccess.Render(iconSuccess), sum.render())
	}
	prog.done(fmt.Sprintf("Replayed %s", plural(len(recs), "message")))
	return nil
}

// selectRecords resolves keys (or prefixes) against store. Without keys it
// returns every record, or the newest latest ones when latest > 0.
func selectRecords(ctx context.Context, store archive.Store, keys []string, latest int) ([]archive.Record, error) {
	if len(keys) > 0 {
		if latest > 0 {
			return nil, perr.New(perr.ErrCodeInvalidInput, "--latest cannot be combined with keys")
		}
		recs := make([]archive.Record, 0, len(keys))
		for _, k := range keys {
			rec, err := archive.Find(ctx, store, k)
			if err != nil {
				return nil, err
			}
			recs = append(recs, rec)
		}
		return recs, nil
	}

	recs, err := store.List(ctx)
	if err != nil {
		return nil, err
	}
	if latest > 0 && latest < len(recs) {
		recs = recs[len(recs)-latest:]
	}
	return recs, nil
}
