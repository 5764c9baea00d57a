// Package fixtures provides CLI commands for mock fixture files.
package fixtures

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/smartcontractkit/web3-mock/chain"
	"github.com/smartcontractkit/web3-mock/mock"
	"github.com/smartcontractkit/web3-mock/pkg/commands/text"
	"github.com/smartcontractkit/web3-mock/pkg/logger"
)

// Config holds the configuration for fixture commands.
type Config struct {
	// Logger is the logger to use for command output. Required.
	Logger logger.Logger
}

// NewCommand creates the fixtures command with all subcommands.
func NewCommand(cfg Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fixtures",
		Short: "Fixture commands",
	}

	cmd.AddCommand(newCheckCmd(cfg), newBlockchainsCmd())

	return cmd
}

var (
	checkLong = text.LongDesc(`
		Mocks every configuration of the given fixture files on a new engine and reports the
		mocks that were registered. Fails on the first file or configuration that is rejected.
	`)

	checkExample = text.Examples(`
		# Check a fixture file
		web3mock fixtures check testdata/mocks.yml

		# Check several files as they would be loaded together
		web3mock fixtures check evm.yml solana.toml
	`)
)

func newCheckCmd(cfg Config) *cobra.Command {
	return &cobra.Command{
		Use:     "check <file>...",
		Short:   "Validate fixture files",
		Long:    checkLong,
		Example: checkExample,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e := mock.New(mock.WithLogger(cfg.Logger))
			handles, err := e.LoadFixtures(args...)
			if err != nil {
				return fmt.Errorf("invalid fixtures: %w", err)
			}

			for i, h := range handles {
				line := fmt.Sprintf("%d: %s, %d rules", i, h.Blockchain(), len(h.Rules()))
				if id := h.TransactionID(); id != "" {
					line += ", transaction " + id
				}
				cmd.Println(line)
			}
			cmd.Printf("%d mocks OK\n", len(handles))

			return nil
		},
	}
}

func newBlockchainsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "blockchains",
		Short: "List the blockchains and wallets fixtures can mock",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, family := range []chain.Family{chain.EVM, chain.Solana} {
				cmd.Printf("%s\n", family)
				cmd.Printf("  blockchains: %s\n", strings.Join(chain.Supported(family), ", "))
				cmd.Printf("  wallets: %s\n", strings.Join(mock.Wallets(family), ", "))
			}

			return nil
		},
	}
}
