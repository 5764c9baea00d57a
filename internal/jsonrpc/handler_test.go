package jsonrpc_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcontractkit/web3-mock/internal/jsonrpc"
	"github.com/smartcontractkit/web3-mock/pkg/logger"
	"github.com/smartcontractkit/web3-mock/registry"
)

type requesterFunc func(ctx context.Context, method string, params ...any) (any, error)

func (f requesterFunc) Request(ctx context.Context, method string, params ...any) (any, error) {
	return f(ctx, method, params...)
}

type revertError struct{}

func (revertError) Error() string { return "execution reverted" }
func (revertError) ErrorCode() int { return 3 }
func (revertError) ErrorData() any { return "0x08c379a0" }

func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	r := requesterFunc(func(_ context.Context, method string, params ...any) (any, error) {
		switch method {
		case "echo":
			return params, nil
		case "null":
			return nil, nil
		case "revert":
			return nil, revertError{}
		case "unmatched":
			return nil, &registry.UnmatchedCallError{Name: registry.DefaultName, Call: registry.Call{Kind: registry.KindRPC, Method: method}}
		default:
			return nil, errors.New("boom")
		}
	})

	srv := httptest.NewServer(jsonrpc.NewHandler(r, logger.Test(t)))
	t.Cleanup(srv.Close)

	return srv
}

func post(t *testing.T, srv *httptest.Server, body string) []byte {
	t.Helper()

	req, err := http.NewRequestWithContext(t.Context(), http.MethodPost, srv.URL, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var raw json.RawMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&raw))

	return raw
}

func TestHandler_Single(t *testing.T) {
	t.Parallel()

	srv := newServer(t)

	tests := []struct {
		name       string
		body       string
		wantResult string
		wantCode   int
		wantData   any
	}{
		{
			name:       "positional params",
			body:       `{"jsonrpc":"2.0","id":1,"method":"echo","params":["0x1",true,7]}`,
			wantResult: `["0x1",true,7]`,
		},
		{
			name:       "named params",
			body:       `{"jsonrpc":"2.0","id":1,"method":"echo","params":{"to":"0x1"}}`,
			wantResult: `[{"to":"0x1"}]`,
		},
		{
			name:       "no params",
			body:       `{"jsonrpc":"2.0","id":1,"method":"echo"}`,
			wantResult: `null`,
		},
		{
			name:       "null result",
			body:       `{"jsonrpc":"2.0","id":1,"method":"null","params":[]}`,
			wantResult: `null`,
		},
		{
			name:     "rpc error code",
			body:     `{"jsonrpc":"2.0","id":1,"method":"revert"}`,
			wantCode: 3,
			wantData: "0x08c379a0",
		},
		{
			name:     "unmatched call",
			body:     `{"jsonrpc":"2.0","id":1,"method":"unmatched"}`,
			wantCode: jsonrpc.CodeMethodNotFound,
		},
		{
			name:     "internal error",
			body:     `{"jsonrpc":"2.0","id":1,"method":"other"}`,
			wantCode: jsonrpc.CodeInternalError,
		},
		{
			name:     "missing method",
			body:     `{"jsonrpc":"2.0","id":1}`,
			wantCode: jsonrpc.CodeInvalidRequest,
		},
		{
			name:     "malformed",
			body:     `{"jsonrpc":`,
			wantCode: jsonrpc.CodeParseError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var resp jsonrpc.Response
			require.NoError(t, json.Unmarshal(post(t, srv, tt.body), &resp))
			assert.Equal(t, "2.0", resp.JSONRPC)

			if tt.wantCode != 0 {
				require.NotNil(t, resp.Error)
				assert.Equal(t, tt.wantCode, resp.Error.Code)
				assert.Equal(t, tt.wantData, resp.Error.Data)

				return
			}
			require.Nil(t, resp.Error)
			assert.JSONEq(t, `1`, string(resp.ID))
			assert.JSONEq(t, tt.wantResult, string(resp.Result))
		})
	}
}

func TestHandler_Batch(t *testing.T) {
	t.Parallel()

	srv := newServer(t)

	var resp []jsonrpc.Response
	raw := post(t, srv, `[
		{"jsonrpc":"2.0","id":1,"method":"echo","params":["a"]},
		{"jsonrpc":"2.0","id":"two","method":"other"}
	]`)
	require.NoError(t, json.Unmarshal(raw, &resp))
	require.Len(t, resp, 2)

	assert.JSONEq(t, `["a"]`, string(resp[0].Result))
	assert.JSONEq(t, `"two"`, string(resp[1].ID))
	require.NotNil(t, resp[1].Error)
	assert.Equal(t, "boom", resp[1].Error.Message)
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	t.Parallel()

	srv := newServer(t)

	req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
