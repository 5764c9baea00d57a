package solana

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"sync"

	binary "github.com/gagliardetto/binary"
	sollib "github.com/gagliardetto/solana-go"

	"github.com/smartcontractkit/web3-mock/chain"
	"github.com/smartcontractkit/web3-mock/host"
	"github.com/smartcontractkit/web3-mock/internal/jsonrpc"
	"github.com/smartcontractkit/web3-mock/pkg/logger"
	"github.com/smartcontractkit/web3-mock/registry"
)

var (
	// ErrNotInstalled is returned by providers no mock was installed on.
	ErrNotInstalled = errors.New("provider not installed")
	// ErrInvalidParams is returned for requests whose params cannot be decoded.
	ErrInvalidParams = errors.New("invalid params")
)

// SignAndSendMethod is the method transaction calls are recorded under.
const SignAndSendMethod = "signAndSendTransaction"

// contextMethods answer with an RpcResponse, a value wrapped with the slot it was read at.
var contextMethods = map[string]bool{
	"getAccountInfo":          true,
	"getBalance":              true,
	"getFeeForMessage":        true,
	"getLatestBlockhash":      true,
	"getMultipleAccounts":     true,
	"getTokenAccountBalance":  true,
	"getTokenAccountsByOwner": true,
	"getTokenSupply":          true,
}

// Provider is a mocked Solana wallet and RPC node.
//
// sendTransaction and SignAndSendTransaction decode the transaction and dispatch its instructions
// as one group of transaction calls, getFeeForMessage is dispatched as an estimate call and every
// other RPC method as a request call about the account in its first param.
type Provider struct {
	host.Emitter
	host.Flags

	mu         sync.RWMutex
	blockchain string
	apis       map[string]API
	dispatcher registry.Dispatcher

	lggr    logger.Logger
	handler http.Handler
}

var _ host.Provider = (*Provider)(nil)

// NewProvider returns a provider that answers requests once a mock is installed on it.
func NewProvider(lggr logger.Logger) *Provider {
	if lggr == nil {
		lggr = logger.Nop()
	}
	p := &Provider{
		apis: make(map[string]API),
		lggr: lggr.Named("solana"),
	}
	p.handler = jsonrpc.NewHandler(p, p.lggr)

	return p
}

// Family implements host.Provider.
func (p *Provider) Family() chain.Family { return chain.Solana }

// Blockchain returns the blockchain the provider currently serves.
func (p *Provider) Blockchain() string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.blockchain
}

func (p *Provider) bind(d registry.Dispatcher, blockchain string, apis map[string]API) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.dispatcher = d
	p.blockchain = blockchain
	if p.apis == nil {
		p.apis = make(map[string]API)
	}
	for program, api := range apis {
		p.apis[program] = api
	}
}

func (p *Provider) state() (registry.Dispatcher, string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.dispatcher == nil {
		return nil, "", ErrNotInstalled
	}

	return p.dispatcher, p.blockchain, nil
}

// Request answers a JSON-RPC method call.
func (p *Provider) Request(ctx context.Context, method string, params ...any) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d, blockchain, err := p.state()
	if err != nil {
		return nil, err
	}

	p.lggr.Debugw("Request", "blockchain", blockchain, "method", method)

	switch method {
	case "sendTransaction":
		tx, derr := decodeTransaction(params)
		if derr != nil {
			return nil, derr
		}

		return p.dispatchTransaction(d, blockchain, tx)
	case "getFeeForMessage":
		value, derr := d.Dispatch(registry.Call{
			Blockchain: blockchain,
			Kind:       registry.KindEstimate,
			Method:     method,
			Args:       params,
			Raw:        params,
		})
		if derr != nil {
			return nil, derr
		}

		return withContext(value), nil
	default:
		call := registry.Call{
			Blockchain: blockchain,
			Kind:       registry.KindRequest,
			Method:     method,
			Args:       params,
			Raw:        params,
		}
		if len(params) > 0 {
			if to, ok := params[0].(string); ok {
				call.To = to
				call.Args = params[1:]
			}
		}

		value, derr := d.Dispatch(call)
		if derr != nil {
			return nil, derr
		}
		if contextMethods[method] {
			return withContext(value), nil
		}

		return value, nil
	}
}

// SignAndSendTransaction answers a wallet's signAndSendTransaction with the mocked signature.
func (p *Provider) SignAndSendTransaction(ctx context.Context, tx *sollib.Transaction) (sollib.Signature, error) {
	if err := ctx.Err(); err != nil {
		return sollib.Signature{}, err
	}
	if tx == nil {
		return sollib.Signature{}, fmt.Errorf("%w: missing transaction", ErrInvalidParams)
	}
	d, blockchain, err := p.state()
	if err != nil {
		return sollib.Signature{}, err
	}

	value, err := p.dispatchTransaction(d, blockchain, tx)
	if err != nil {
		return sollib.Signature{}, err
	}

	switch sig := value.(type) {
	case sollib.Signature:
		return sig, nil
	case string:
		return sollib.SignatureFromBase58(sig)
	default:
		return sollib.Signature{}, fmt.Errorf("mocked signature must be a base58 string, got %T", value)
	}
}

// ServeHTTP serves the provider as a JSON-RPC endpoint.
func (p *Provider) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.handler.ServeHTTP(w, r)
}

// instructionInput is the raw payload of an instruction call.
type instructionInput struct {
	accounts []*sollib.AccountMeta
	data     []byte
}

type instructionSummary struct {
	Program string `json:"program"`
	Args    any    `json:"args"`
}

func (p *Provider) dispatchTransaction(d registry.Dispatcher, blockchain string, tx *sollib.Transaction) (any, error) {
	msg := tx.Message
	extras := map[string]any{}
	if len(msg.AccountKeys) > 0 {
		extras["from"] = msg.AccountKeys[0].String()
	}

	p.mu.RLock()
	apis := maps.Clone(p.apis)
	p.mu.RUnlock()

	parts := make([]registry.Call, 0, len(msg.Instructions))
	summaries := make([]any, 0, len(msg.Instructions))
	for i, ci := range msg.Instructions {
		if int(ci.ProgramIDIndex) >= len(msg.AccountKeys) {
			return nil, fmt.Errorf("%w: instruction %d program index out of range", ErrInvalidParams, i)
		}
		program := msg.AccountKeys[ci.ProgramIDIndex].String()
		accounts, err := ci.ResolveInstructionAccounts(&msg)
		if err != nil {
			return nil, fmt.Errorf("%w: instruction %d: %w", ErrInvalidParams, i, err)
		}
		input := instructionInput{accounts: accounts, data: ci.Data}

		var args any = sollib.Base58(ci.Data).String()
		if api, ok := apis[program]; ok {
			if decoded, derr := api.Decode(accounts, ci.Data); derr == nil {
				args = decoded
			}
		}

		parts = append(parts, registry.Call{
			Blockchain: blockchain,
			Kind:       registry.KindTransaction,
			To:         program,
			Args:       args,
			Extras:     extras,
			Raw:        input,
		})
		summaries = append(summaries, instructionSummary{Program: program, Args: args})
	}

	summary := registry.Call{
		Blockchain: blockchain,
		Kind:       registry.KindTransaction,
		Method:     SignAndSendMethod,
		Args:       summaries,
		Extras:     extras,
		Raw:        tx,
	}

	return d.DispatchGroup(summary, parts)
}

func decodeTransaction(params []any) (*sollib.Transaction, error) {
	if len(params) == 0 {
		return nil, fmt.Errorf("%w: missing transaction", ErrInvalidParams)
	}
	encoded, ok := params[0].(string)
	if !ok {
		return nil, fmt.Errorf("%w: transaction must be a string", ErrInvalidParams)
	}

	encoding := "base58"
	if len(params) > 1 {
		if opts, isMap := params[1].(map[string]any); isMap {
			if enc, isString := opts["encoding"].(string); isString {
				encoding = enc
			}
		}
	}

	var raw []byte
	switch encoding {
	case "base64":
		decoded, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidParams, err)
		}
		raw = decoded
	default:
		decoded, err := Raw{}.Encode(encoded)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidParams, err)
		}
		raw = decoded
	}

	tx, err := sollib.TransactionFromDecoder(binary.NewBinDecoder(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}

	return tx, nil
}

func withContext(value any) any {
	if m, ok := value.(map[string]any); ok {
		if _, hasContext := m["context"]; hasContext {
			return value
		}
	}

	return map[string]any{
		"context": map[string]any{"slot": 0},
		"value":   value,
	}
}
