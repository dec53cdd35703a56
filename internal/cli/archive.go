package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/matzehuels/plotmsg/pkg/archive"
)

// archiveCommand creates the archive management command.
func (c *CLI) archiveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Manage recorded messages",
	}

	cmd.AddCommand(c.archiveListCommand())
	cmd.AddCommand(c.archiveRemoveCommand())
	cmd.AddCommand(c.archiveClearCommand())
	cmd.AddCommand(c.archivePathCommand())

	return cmd
}

// archiveListCommand creates the "archive list" subcommand.
func (c *CLI) archiveListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List archived messages, oldest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := c.openArchive(ctx, false)
			if err != nil {
				return err
			}
			defer store.Close()

			recs, err := store.List(ctx)
			if err != nil {
				return err
			}
			if len(recs) == 0 {
				printInfo("Archive is empty")
				return nil
			}

			rows := make([][]string, 0, len(recs))
			for _, rec := range recs {
				contents := "undecodable"
				kind := "?"
				if sum, _, err := summarize(ctx, rec.Payload); err == nil {
					kind = sum.kind
					contents = plural(sum.keys, "key")
					if sum.kind == "figure" {
						contents = fmt.Sprintf("%s · %s", sum.uuid, plural(sum.traces, "trace"))
					}
				}
				rows = append(rows, []string{
					shortKey(rec.Key),
					rec.ReceivedAt.Local().Format("2006-01-02 15:04:05"),
					kind,
					contents,
					humanize.Bytes(uint64(len(rec.Payload))),
					rec.Source,
				})
			}

			t := table.New().
				Border(lipgloss.RoundedBorder()).
				BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
				Headers("Key", "Received", "Kind", "Contents", "Size", "Source").
				Rows(rows...).
				StyleFunc(func(row, col int) lipgloss.Style {
					switch {
					case row == table.HeaderRow:
						return lipgloss.NewStyle().Foreground(colorGray).Bold(true)
					case col == 0:
						return StyleHighlight
					case col == 1 || col == 5:
						return StyleDim
					}
					return lipgloss.NewStyle()
				})
			fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			return nil
		},
	}
}

// archiveRemoveCommand creates the "archive rm" subcommand.
func (c *CLI) archiveRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rm KEY...",
		Short: "Delete archived messages",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := c.openArchive(ctx, false)
			if err != nil {
				return err
			}
			defer store.Close()

			for _, k := range args {
				rec, err := archive.Find(ctx, store, k)
				if err != nil {
					return err
				}
				if err := store.Delete(ctx, rec.Key); err != nil {
					return err
				}
				printSuccess("Deleted %s", shortKey(rec.Key))
			}
			return nil
		},
	}
}

// archiveClearCommand creates the "archive clear" subcommand.
func (c *CLI) archiveClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every archived message",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := c.openArchive(ctx, false)
			if err != nil {
				return err
			}
			defer store.Close()

			recs, err := store.List(ctx)
			if err != nil {
				return err
			}
			if len(recs) == 0 {
				printInfo("Archive is empty")
				return nil
			}
			for _, rec := range recs {
				if err := store.Delete(ctx, rec.Key); err != nil {
					return err
				}
			}
			printSuccess("Cleared %s", plural(len(recs), "archived message"))
			printDetail("%s: %s", c.cfg.Archive.Backend, c.cfg.Archive.Path)
			return nil
		},
	}
}

// archivePathCommand creates the "archive path" subcommand.
func (c *CLI) archivePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the archive location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), c.cfg.Archive.Path)
			return nil
		},
	}
}
