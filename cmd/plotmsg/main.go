package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/matzehuels/plotmsg/internal/cli"
	perr "github.com/matzehuels/plotmsg/pkg/errors"
)

// Exit codes beyond the generic failure, so scripts can tell a bad
// invocation from an unreachable viewer.
const (
	exitFailure   = 1
	exitUsage     = 2
	exitTransport = 3
	exitInterrupt = 130 // Standard shell convention for SIGINT
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		code := exitCode(err)
		if code != exitInterrupt {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(code)
	}
}

func run(ctx context.Context) error {
	var verbose bool

	c := cli.New(os.Stderr, cli.LogInfo)
	root := c.RootCommand()

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	// Apply the log level before the root pre-run loads the config.
	loadConfig := root.PersistentPreRunE
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if verbose {
			c.SetLogLevel(cli.LogDebug)
		}
		if loadConfig != nil {
			return loadConfig(cmd, args)
		}
		return nil
	}

	return root.ExecuteContext(ctx)
}

func exitCode(err error) int {
	if errors.Is(err, context.Canceled) {
		return exitInterrupt
	}
	switch perr.GetCode(err) {
	case perr.ErrCodeInvalidConfig, perr.ErrCodeInvalidInput, perr.ErrCodeInvalidAddress:
		return exitUsage
	case perr.ErrCodeTransport:
		return exitTransport
	}
	return exitFailure
}
