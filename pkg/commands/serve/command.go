package serve

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smartcontractkit/web3-mock/chain"
	"github.com/smartcontractkit/web3-mock/pkg/commands/text"
	"github.com/smartcontractkit/web3-mock/pkg/logger"
)

// DefaultAddr is the address served when --addr is not set.
const DefaultAddr = "127.0.0.1:8545"

// Config holds the configuration for the serve command.
type Config struct {
	// Logger is the logger to use for command output. Required.
	Logger logger.Logger

	// Deps holds optional dependencies that can be overridden.
	// If fields are nil, production defaults are used.
	Deps Deps
}

// deps returns the Deps with defaults applied.
func (c *Config) deps() *Deps {
	c.Deps.applyDefaults()

	return &c.Deps
}

var (
	serveLong = text.LongDesc(`
		Loads the fixtures listed in the engine configuration and serves the mocked providers as
		JSON-RPC endpoints, EVM blockchains on /evm and Solana on /solana.

		Calls that match no mock are answered with a method not found error.
	`)

	serveExample = text.Examples(`
		# Serve the fixtures of a config file
		web3mock serve --config web3mock.yml

		# Serve the fixtures listed in WEB3MOCK_FIXTURES on another port
		WEB3MOCK_FIXTURES=mocks.yml web3mock serve --addr 127.0.0.1:9545
	`)
)

// NewCommand creates the serve command.
//
// Usage:
//
//	rootCmd.AddCommand(serve.NewCommand(serve.Config{
//	    Logger: lggr,
//	}))
func NewCommand(cfg Config) *cobra.Command {
	cfg.deps()

	var (
		configPath string
		addr       string
	)

	cmd := &cobra.Command{
		Use:     "serve",
		Short:   "Serve mocked providers over HTTP",
		Long:    serveLong,
		Example: serveExample,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, cfg, configPath, addr)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Engine config file. Default is the WEB3MOCK_* environment")
	cmd.Flags().StringVarP(&addr, "addr", "a", DefaultAddr, "Address to listen on")

	return cmd
}

// runServe executes the serve command logic.
func runServe(cmd *cobra.Command, cfg Config, configPath, addr string) error {
	deps := cfg.deps()

	engineCfg, err := deps.ConfigLoader(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	e, err := deps.EngineFactory(engineCfg)
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}

	cmd.Printf("Serving %d mocks on %s\n", e.Registry().Len(), addr)
	if p, ok := e.EVM(); ok {
		cmd.Printf("  %s (%s): http://%s%s\n", p.Blockchain(), chain.EVM, addr, EVMPath)
	}
	if p, ok := e.Solana(); ok {
		cmd.Printf("  %s (%s): http://%s%s\n", p.Blockchain(), chain.Solana, addr, SolanaPath)
	}
	cfg.Logger.Infow("Serving mocks", "addr", addr, "mocks", e.Registry().Len())

	if err = deps.Serve(cmd.Context(), addr, Handler(e)); err != nil {
		return fmt.Errorf("failed to serve: %w", err)
	}

	return nil
}
