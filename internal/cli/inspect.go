package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/matzehuels/plotmsg/pkg/archive"
	perr "github.com/matzehuels/plotmsg/pkg/errors"
	"github.com/matzehuels/plotmsg/pkg/wire"
)

// inspectCommand creates the inspect command for decoding messages.
func (c *CLI) inspectCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "inspect FILE|KEY",
		Short: "Decode an encoded message",
		Long: `Decode a message written by "send --out" (FILE, "-" for stdin) or stored
in the archive (KEY, or any unique key prefix) and print its contents.`,
		Example: `  plotmsg inspect fig.pb
  plotmsg inspect 3f2a9c1b --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			payload, source, err := c.loadMessage(ctx, args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(ctx, cmd.OutOrStdout(), payload)
			}
			return writeText(ctx, cmd.OutOrStdout(), payload, source)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the message as JSON")

	return cmd
}

// loadMessage reads arg as a file, falling back to an archive lookup when
// no such file exists.
func (c *CLI) loadMessage(ctx context.Context, arg string) ([]byte, string, error) {
	data, err := readFile(arg)
	if err == nil {
		return data, arg, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, "", perr.Wrap(perr.ErrCodeInvalidInput, err, "read %s", arg)
	}

	store, err := c.openArchive(ctx, false)
	if err != nil {
		return nil, "", err
	}
	defer store.Close()

	rec, err := archive.Find(ctx, store, arg)
	if err != nil {
		if perr.Is(err, perr.ErrCodeInvalidInput) {
			return nil, "", perr.New(perr.ErrCodeNotFound, "%s is neither a file nor an archive key", arg)
		}
		return nil, "", err
	}
	return rec.Payload, rec.Source, nil
}

// summarize decodes payload and describes it in one line.
func summarize(ctx context.Context, payload []byte) (messageSummary, wire.Envelope, error) {
	env, err := wire.Decode(ctx, payload)
	if err != nil {
		return messageSummary{}, wire.Envelope{}, err
	}
	sum := messageSummary{kind: env.Kind(), size: len(payload)}
	if env.Figure != nil {
		sum.uuid = env.Figure.UUID
		sum.traces = len(env.Figure.Traces)
		sum.commands = len(env.Figure.Commands)
	} else {
		sum.keys = env.Dict.Len()
	}
	return sum, env, nil
}

func writeText(ctx context.Context, w io.Writer, payload []byte, source string) error {
	sum, env, err := summarize(ctx, payload)
	if err != nil {
		return err
	}

	fmt.Fprintln(w, StyleTitle.Render("Message"))
	printKeyValue(w, "kind", env.Kind())
	printKeyValue(w, "size", fmt.Sprintf("%d bytes", sum.size))
	printKeyValue(w, "digest", wire.Digest(payload))
	if source != "" {
		printKeyValue(w, "source", source)
	}

	if env.Dict != nil {
		fmt.Fprintln(w)
		fmt.Fprintln(w, StyleTitle.Render("Dictionary"))
		fmt.Fprintln(w, indent(env.Dict.String()))
		return nil
	}

	fig := env.Figure
	printKeyValue(w, "uuid", fig.UUID)
	for i, tr := range fig.Traces {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%s %s %s\n",
			StyleTitle.Render(fmt.Sprintf("Trace %d", i)),
			StyleHighlight.Render(tr.MethodFunc),
			StyleDim.Render(tr.Method.String()))
		fmt.Fprintln(w, indent(tr.Kwargs.String()))
	}
	for i, cmd := range fig.Commands {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%s %s\n",
			StyleTitle.Render(fmt.Sprintf("Command %d", i)),
			StyleHighlight.Render(cmd.Func))
		fmt.Fprintln(w, indent(cmd.Kwargs.String()))
	}
	return nil
}

// messageJSON is the --json rendering of a decoded message.
type messageJSON struct {
	Kind   string         `json:"kind"`
	Size   int            `json:"size"`
	Digest string         `json:"digest"`
	Figure *figureJSON    `json:"figure,omitempty"`
	Dict   map[string]any `json:"dict,omitempty"`
}

type figureJSON struct {
	UUID     string        `json:"uuid"`
	Traces   []traceJSON   `json:"traces"`
	Commands []commandJSON `json:"commands"`
}

type traceJSON struct {
	Method string         `json:"method"`
	Func   string         `json:"func"`
	Kwargs map[string]any `json:"kwargs"`
}

type commandJSON struct {
	Func   string         `json:"func"`
	Kwargs map[string]any `json:"kwargs"`
}

func writeJSON(ctx context.Context, w io.Writer, payload []byte) error {
	env, err := wire.Decode(ctx, payload)
	if err != nil {
		return err
	}

	out := messageJSON{
		Kind:   env.Kind(),
		Size:   len(payload),
		Digest: wire.Digest(payload),
	}
	if env.Dict != nil {
		out.Dict = env.Dict.ToMap()
	} else {
		fj := &figureJSON{
			UUID:     env.Figure.UUID,
			Traces:   []traceJSON{},
			Commands: []commandJSON{},
		}
		for _, tr := range env.Figure.Traces {
			fj.Traces = append(fj.Traces, traceJSON{
				Method: tr.Method.String(),
				Func:   tr.MethodFunc,
				Kwargs: tr.Kwargs.ToMap(),
			})
		}
		for _, cmd := range env.Figure.Commands {
			fj.Commands = append(fj.Commands, commandJSON{Func: cmd.Func, Kwargs: cmd.Kwargs.ToMap()})
		}
		out.Figure = fj
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return perr.Wrap(perr.ErrCodeInternal, err, "encode json")
	}
	return nil
}
