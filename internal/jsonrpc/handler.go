// Package jsonrpc serves a mocked provider over HTTP as a JSON-RPC 2.0 endpoint, so that real
// clients such as ethclient or the solana-go rpc client can be pointed at it.
package jsonrpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/ethereum/go-ethereum/rpc"

	"github.com/smartcontractkit/web3-mock/pkg/logger"
	"github.com/smartcontractkit/web3-mock/registry"
)

const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInternalError  = -32603
)

// Requester answers a JSON-RPC method call.
type Requester interface {
	Request(ctx context.Context, method string, params ...any) (any, error)
}

// Request is a JSON-RPC 2.0 request object.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response is a JSON-RPC 2.0 response object.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// Error is a JSON-RPC 2.0 error object.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

type handler struct {
	requester Requester
	lggr      logger.Logger
}

// NewHandler returns an http.Handler answering single and batch JSON-RPC requests with r.
func NewHandler(r Requester, lggr logger.Logger) http.Handler {
	if lggr == nil {
		lggr = logger.Nop()
	}

	return &handler{requester: r, lggr: lggr}
}

func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.write(w, errorResponse(nil, CodeParseError, err.Error()))
		return
	}

	body = bytes.TrimSpace(body)
	if len(body) > 0 && body[0] == '[' {
		var batch []Request
		if err = json.Unmarshal(body, &batch); err != nil {
			h.write(w, errorResponse(nil, CodeParseError, err.Error()))
			return
		}
		if len(batch) == 0 {
			h.write(w, errorResponse(nil, CodeInvalidRequest, "empty batch"))
			return
		}

		out := make([]Response, len(batch))
		for i, req := range batch {
			out[i] = h.handle(r.Context(), req)
		}
		h.write(w, out)

		return
	}

	var req Request
	if err = json.Unmarshal(body, &req); err != nil {
		h.write(w, errorResponse(nil, CodeParseError, err.Error()))
		return
	}
	h.write(w, h.handle(r.Context(), req))
}

func (h *handler) handle(ctx context.Context, req Request) Response {
	if req.Method == "" {
		return errorResponse(req.ID, CodeInvalidRequest, "missing method")
	}

	params, err := decodeParams(req.Params)
	if err != nil {
		return errorResponse(req.ID, CodeInvalidRequest, err.Error())
	}

	result, err := h.requester.Request(ctx, req.Method, params...)
	if err != nil {
		h.lggr.Debugw("JSON-RPC request failed", "method", req.Method, "err", err)
		return toErrorResponse(req.ID, err)
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return errorResponse(req.ID, CodeInternalError, err.Error())
	}

	return Response{JSONRPC: "2.0", ID: id(req.ID), Result: raw}
}

// decodeParams decodes positional params into a slice. A by-name params object is passed as the
// single param.
func decodeParams(raw json.RawMessage) ([]any, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	if raw[0] == '[' {
		var params []any
		if err := dec.Decode(&params); err != nil {
			return nil, err
		}

		return params, nil
	}

	var param any
	if err := dec.Decode(&param); err != nil {
		return nil, err
	}

	return []any{param}, nil
}

func toErrorResponse(reqID json.RawMessage, err error) Response {
	code := CodeInternalError
	if errors.Is(err, registry.ErrUnmatchedCall) {
		code = CodeMethodNotFound
	}

	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		code = rpcErr.ErrorCode()
	}

	resp := errorResponse(reqID, code, err.Error())

	var dataErr rpc.DataError
	if errors.As(err, &dataErr) {
		resp.Error.Data = dataErr.ErrorData()
	}

	return resp
}

func errorResponse(reqID json.RawMessage, code int, msg string) Response {
	return Response{
		JSONRPC: "2.0",
		ID:      id(reqID),
		Error:   &Error{Code: code, Message: msg},
	}
}

func id(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return json.RawMessage("null")
	}

	return raw
}

func (h *handler) write(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.lggr.Errorw("Failed to write JSON-RPC response", "err", err)
	}
}
