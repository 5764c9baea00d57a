// Package main provides the web3mock CLI, which validates fixture files and serves mocked
// providers to clients that cannot share a process with the engine.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/smartcontractkit/web3-mock/pkg/commands"
	"github.com/smartcontractkit/web3-mock/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	lggr, err := logger.New()
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = lggr.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmds := commands.New(lggr)
	root := &cobra.Command{
		Use:           "web3mock",
		Short:         "Mock blockchain providers for client tests",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(cmds.Serve(), cmds.Fixtures())

	return root.ExecuteContext(ctx)
}
