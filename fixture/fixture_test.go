package fixture_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcontractkit/web3-mock/chain"
	"github.com/smartcontractkit/web3-mock/chain/evm"
	"github.com/smartcontractkit/web3-mock/chain/solana"
	"github.com/smartcontractkit/web3-mock/fixture"
)

const yamlFixture = `
version: 1.2.0
mocks:
  - bsc
  - blockchain: ethereum
    wallet: metamask
    balance:
      for: "0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045"
      return: "1000000000000000000"
    request:
      to: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"
      method: decimals
      api:
        - type: function
          name: decimals
          stateMutability: view
          inputs: []
          outputs:
            - name: ""
              type: uint8
      return: 6
    transaction:
      to: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"
      error: user rejected the transaction
    rpc:
      - method: eth_blockNumber
        return: "0x10"
  - blockchain: solana
    wallet: phantom
    request:
      method: getBalance
      to: "11111111111111111111111111111111"
      return: 5000
    transaction:
      instructions:
        - to: "11111111111111111111111111111111"
          api: raw
          params: "3Bxs4Bc3VYuGVB19"
`

const tomlFixture = `
version = "1.0.0"
mocks = [
  "polygon",
  { blockchain = "solana", estimate = { return = 10000 } },
  { blockchain = "arbitrum", accounts = { return = ["0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045"] } },
]
`

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoad_YAML(t *testing.T) {
	t.Parallel()

	configs, err := fixture.Load(writeFixture(t, "mocks.yml", yamlFixture))
	require.NoError(t, err)
	require.Len(t, configs, 3)

	assert.Equal(t, "bsc", configs[0])

	eth, ok := configs[1].(evm.Config)
	require.True(t, ok, "got %T", configs[1])
	assert.Equal(t, "ethereum", eth.Blockchain)
	assert.Equal(t, "metamask", eth.Wallet)
	require.NotNil(t, eth.Balance)
	assert.Equal(t, "1000000000000000000", eth.Balance.Return)
	require.NotNil(t, eth.Request)
	assert.Equal(t, "decimals", eth.Request.Method)
	assert.Equal(t, json.Number("6"), eth.Request.Return)
	_, err = evm.ParseAPI(eth.Request.API)
	require.NoError(t, err)
	require.NotNil(t, eth.Transaction)
	require.EqualError(t, eth.Transaction.Error, "user rejected the transaction")
	require.Len(t, eth.RPC, 1)
	assert.Equal(t, "eth_blockNumber", eth.RPC[0].Method)
	require.NoError(t, eth.RPC[0].Error)

	sol, ok := configs[2].(solana.Config)
	require.True(t, ok, "got %T", configs[2])
	assert.Equal(t, "phantom", sol.Wallet)
	require.NotNil(t, sol.Request)
	assert.Nil(t, sol.Request.API)
	require.NotNil(t, sol.Transaction)
	require.Len(t, sol.Transaction.Instructions, 1)
	assert.Equal(t, solana.Raw{}, sol.Transaction.Instructions[0].API)
	assert.Equal(t, "3Bxs4Bc3VYuGVB19", sol.Transaction.Instructions[0].Params)
}

func TestLoad_TOML(t *testing.T) {
	t.Parallel()

	configs, err := fixture.Load(writeFixture(t, "mocks.toml", tomlFixture))
	require.NoError(t, err)
	require.Len(t, configs, 3)

	assert.Equal(t, "polygon", configs[0])

	sol, ok := configs[1].(solana.Config)
	require.True(t, ok, "got %T", configs[1])
	require.NotNil(t, sol.Estimate)
	assert.Equal(t, json.Number("10000"), sol.Estimate.Return)

	arb, ok := configs[2].(evm.Config)
	require.True(t, ok, "got %T", configs[2])
	require.NotNil(t, arb.Accounts)
	assert.Equal(t, []string{"0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045"}, arb.Accounts.Return)
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		file    string
		content string
		wantErr error
	}{
		{
			name:    "unsupported extension",
			file:    "mocks.json",
			content: `{}`,
			wantErr: fixture.ErrUnsupportedFormat,
		},
		{
			name:    "missing version",
			file:    "mocks.yml",
			content: "mocks: [bsc]",
			wantErr: fixture.ErrUnsupportedVersion,
		},
		{
			name:    "major version",
			file:    "mocks.yml",
			content: "version: 2.0.0\nmocks: [bsc]",
			wantErr: fixture.ErrUnsupportedVersion,
		},
		{
			name:    "malformed version",
			file:    "mocks.toml",
			content: "version = \"one\"\nmocks = [\"bsc\"]",
			wantErr: fixture.ErrUnsupportedVersion,
		},
		{
			name:    "unknown blockchain",
			file:    "mocks.yml",
			content: "version: 1.0.0\nmocks:\n  - blockchain: doge",
			wantErr: chain.ErrUnknownBlockchain,
		},
		{
			name:    "unknown field",
			file:    "mocks.yml",
			content: "version: 1.0.0\nmocks:\n  - blockchain: bsc\n    requests: {}",
			wantErr: fixture.ErrInvalidMock,
		},
		{
			name:    "unknown solana api",
			file:    "mocks.yml",
			content: "version: 1.0.0\nmocks:\n  - blockchain: solana\n    transaction:\n      instructions:\n        - api: anchor",
			wantErr: fixture.ErrInvalidMock,
		},
		{
			name:    "list mock",
			file:    "mocks.yml",
			content: "version: 1.0.0\nmocks:\n  - [bsc]",
			wantErr: fixture.ErrInvalidMock,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := fixture.Load(writeFixture(t, tt.file, tt.content))
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := fixture.Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestFormatOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want fixture.Format
	}{
		{path: "a.yaml", want: fixture.YAML},
		{path: "a.YML", want: fixture.YAML},
		{path: "dir/a.toml", want: fixture.TOML},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()

			got, err := fixture.FormatOf(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
