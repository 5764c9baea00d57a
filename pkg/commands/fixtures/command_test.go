package fixtures

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcontractkit/web3-mock/mock"
	"github.com/smartcontractkit/web3-mock/pkg/logger"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := NewCommand(Config{Logger: logger.Test(t)})
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(args)
	err := cmd.Execute()

	return out.String(), err
}

// TestNewCommand_Structure verifies the command structure is correct.
func TestNewCommand_Structure(t *testing.T) {
	t.Parallel()

	cmd := NewCommand(Config{Logger: logger.Nop()})

	assert.Equal(t, "fixtures", cmd.Use)
	subs := cmd.Commands()
	require.Len(t, subs, 2)
	assert.Equal(t, "blockchains", subs[0].Name())
	assert.Equal(t, "check", subs[1].Name())
}

func TestCheck(t *testing.T) {
	t.Parallel()

	yml := writeFile(t, "evm.yml", `
version: 1.0.0
mocks:
  - bsc
  - blockchain: ethereum
    transaction:
      to: "0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045"
      value: 1
`)
	toml := writeFile(t, "solana.toml", `
version = "1.1.0"
mocks = [{ blockchain = "solana", estimate = { return = 10000 } }]
`)

	out, err := execute(t, "check", yml, toml)
	require.NoError(t, err)
	assert.Contains(t, out, "0: bsc, 0 rules\n")
	assert.Contains(t, out, "1: ethereum, 1 rules, transaction 0x")
	assert.Contains(t, out, "2: solana, 1 rules\n")
	assert.Contains(t, out, "3 mocks OK")
}

func TestCheck_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{
			name:    "no files",
			args:    []string{"check"},
			wantErr: "requires at least 1 arg(s)",
		},
		{
			name:    "rejected configuration",
			args:    []string{"check", writeFile(t, "mocks.yml", "version: 1.0.0\nmocks:\n  - blockchain: ethereum\n    request:\n      method: decimals\n")},
			wantErr: "Please provide the api for the request",
		},
		{
			name:    "unknown wallet",
			args:    []string{"check", writeFile(t, "wallet.yml", "version: 1.0.0\nmocks:\n  - blockchain: bsc\n    wallet: trezor\n")},
			wantErr: mock.ErrUnknownWallet.Error(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestBlockchains(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "blockchains")
	require.NoError(t, err)
	assert.Contains(t, out, "evm\n  blockchains: arbitrum, avalanche, base, bsc, ethereum")
	assert.Contains(t, out, "  wallets: coinbase, metamask, walletconnect, walletlink\n")
	assert.Contains(t, out, "solana\n  blockchains: solana\n  wallets: phantom\n")
}
