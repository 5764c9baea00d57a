// Package commands provides the CLI commands of web3mock.
//
// There are two ways to use commands from this package:
//
// 1. Via the Commands factory (recommended for most use cases):
//
//	cmds := commands.New(lggr)
//	app.AddCommand(
//	    cmds.Serve(),
//	    cmds.Fixtures(),
//	)
//
// 2. Via direct package imports (for advanced DI/testing):
//
//	import "github.com/smartcontractkit/web3-mock/pkg/commands/serve"
//
//	app.AddCommand(serve.NewCommand(serve.Config{
//	    Logger: lggr,
//	    Deps:   serve.Deps{...}, // inject a custom engine factory for testing
//	}))
package commands

import (
	"github.com/spf13/cobra"

	"github.com/smartcontractkit/web3-mock/pkg/commands/fixtures"
	"github.com/smartcontractkit/web3-mock/pkg/commands/serve"
	"github.com/smartcontractkit/web3-mock/pkg/logger"
)

// Commands provides a factory for creating CLI commands with shared configuration.
type Commands struct {
	lggr logger.Logger
}

// New creates a new Commands factory with the given logger.
// The logger will be shared across all commands created by this factory.
func New(lggr logger.Logger) *Commands {
	return &Commands{lggr: lggr}
}

// Serve creates the command serving mocked providers over HTTP.
func (c *Commands) Serve() *cobra.Command {
	return serve.NewCommand(serve.Config{Logger: c.lggr})
}

// Fixtures creates the fixtures command group.
func (c *Commands) Fixtures() *cobra.Command {
	return fixtures.NewCommand(fixtures.Config{Logger: c.lggr})
}
