package serve

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/smartcontractkit/freeport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcontractkit/web3-mock/config"
	"github.com/smartcontractkit/web3-mock/mock"
	"github.com/smartcontractkit/web3-mock/pkg/logger"
)

const bscFixture = `
version: 1.0.0
mocks:
  - blockchain: bsc
    rpc:
      - method: eth_blockNumber
        return: "0x10"
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

// TestNewCommand_Structure verifies the command structure is correct.
func TestNewCommand_Structure(t *testing.T) {
	t.Parallel()

	cmd := NewCommand(Config{Logger: logger.Nop()})

	assert.Equal(t, "serve", cmd.Use)
	assert.Equal(t, "Serve mocked providers over HTTP", cmd.Short)
	assert.NotEmpty(t, cmd.Long)
	assert.True(t, strings.HasPrefix(cmd.Example, "  # Serve"))

	c := cmd.Flags().Lookup("config")
	require.NotNil(t, c)
	assert.Equal(t, "c", c.Shorthand)
	assert.Empty(t, c.Value.String())

	a := cmd.Flags().Lookup("addr")
	require.NotNil(t, a)
	assert.Equal(t, "a", a.Shorthand)
	assert.Equal(t, DefaultAddr, a.Value.String())
}

// TestServe_Success loads a config file with its fixtures and queries the served provider with
// a real client.
func TestServe_Success(t *testing.T) {
	t.Parallel()

	fixturePath := writeFile(t, "mocks.yml", bscFixture)
	configPath := writeFile(t, "web3mock.yml", "name: Served\nlog:\n  level: warn\nfixtures:\n  - "+fixturePath+"\n")

	var (
		servedAddr string
		handler    http.Handler
	)
	cmd := NewCommand(Config{
		Logger: logger.Test(t),
		Deps: Deps{
			Serve: func(_ context.Context, addr string, h http.Handler) error {
				servedAddr, handler = addr, h
				return nil
			},
		},
	})

	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{"--config", configPath, "-a", "127.0.0.1:9545"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "127.0.0.1:9545", servedAddr)
	assert.Contains(t, out.String(), "Serving 1 mocks on 127.0.0.1:9545")
	assert.Contains(t, out.String(), "bsc (evm): http://127.0.0.1:9545/evm")
	require.NotNil(t, handler)

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := ethclient.DialContext(t.Context(), srv.URL+EVMPath)
	require.NoError(t, err)
	t.Cleanup(client.Close)

	block, err := client.BlockNumber(t.Context())
	require.NoError(t, err)
	assert.Equal(t, uint64(16), block)

	id, err := client.ChainID(t.Context())
	require.NoError(t, err)
	assert.Equal(t, uint64(56), id.Uint64())

	resp, err := http.Post(srv.URL+SolanaPath, "application/json", strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"getSlot"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServe_Errors(t *testing.T) {
	t.Parallel()

	errLoad := errors.New("load failed")
	errServe := errors.New("address in use")

	tests := []struct {
		name    string
		deps    Deps
		wantErr error
		wantMsg string
	}{
		{
			name: "config loader fails",
			deps: Deps{
				ConfigLoader: func(string) (*config.Config, error) { return nil, errLoad },
			},
			wantErr: errLoad,
			wantMsg: "failed to load config",
		},
		{
			name: "invalid fixture",
			deps: Deps{
				ConfigLoader: func(string) (*config.Config, error) {
					return &config.Config{Fixtures: []string{"mocks.json"}}, nil
				},
			},
			wantMsg: "failed to create engine",
		},
		{
			name: "serve fails",
			deps: Deps{
				ConfigLoader: func(string) (*config.Config, error) { return &config.Config{}, nil },
				EngineFactory: func(*config.Config) (*mock.Engine, error) {
					return mock.New(), nil
				},
				Serve: func(context.Context, string, http.Handler) error { return errServe },
			},
			wantErr: errServe,
			wantMsg: "failed to serve",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cmd := NewCommand(Config{Logger: logger.Nop(), Deps: tt.deps})
			cmd.SetOut(new(bytes.Buffer))
			cmd.SetErr(new(bytes.Buffer))
			cmd.SetArgs([]string{})

			err := cmd.Execute()
			require.Error(t, err)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			}
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestDefaultServe(t *testing.T) {
	t.Parallel()

	ports, err := freeport.Take(1)
	require.NoError(t, err)
	t.Cleanup(func() { freeport.Return(ports) })
	addr := fmt.Sprintf("127.0.0.1:%d", ports[0])

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() {
		done <- defaultServe(ctx, addr, Handler(mock.New()))
	}()

	require.Eventually(t, func() bool {
		resp, rerr := http.Post("http://"+addr+EVMPath, "application/json", strings.NewReader(`{}`))
		if rerr != nil {
			return false
		}
		_ = resp.Body.Close()

		return resp.StatusCode == http.StatusNotFound
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}
