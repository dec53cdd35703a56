package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/plotmsg/internal/config"
)

// configCommand creates the config command for showing settings.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := c.cfg.Encode()
			if err != nil {
				return err
			}
			if c.cfg.Path != "" {
				fmt.Fprintln(cmd.OutOrStdout(), "# "+c.cfg.Path)
			}
			fmt.Fprint(cmd.OutOrStdout(), text)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the default config file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), config.DefaultPath())
			return nil
		},
	})

	return cmd
}
