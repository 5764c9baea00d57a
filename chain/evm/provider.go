package evm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strconv"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"

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

// Provider is a mocked EIP-1193 provider. It answers eth_chainId and net_version for the mocked
// blockchain and turns every other request into a registry call.
//
// Contract interactions are decoded with the ABIs of the installed mocks: eth_call and
// eth_estimateGas become request and estimate calls, eth_sendTransaction and
// eth_sendRawTransaction become transaction calls. Any other method is dispatched as an rpc call
// with its params as arguments.
type Provider struct {
	host.Emitter
	host.Flags

	mu         sync.RWMutex
	blockchain string
	chainID    uint64
	methods    methodIndex
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
		methods: make(methodIndex),
		lggr:    lggr.Named("evm"),
	}
	p.handler = jsonrpc.NewHandler(p, p.lggr)

	return p
}

// Family implements host.Provider.
func (p *Provider) Family() chain.Family { return chain.EVM }

// Blockchain returns the blockchain the provider currently serves.
func (p *Provider) Blockchain() string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.blockchain
}

// ChainID returns the chain id of the blockchain the provider currently serves.
func (p *Provider) ChainID() uint64 {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.chainID
}

// bind points the provider at blockchain and extends its method index.
func (p *Provider) bind(d registry.Dispatcher, blockchain string, chainID uint64, methods methodIndex) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.dispatcher = d
	p.blockchain = blockchain
	p.chainID = chainID
	if p.methods == nil {
		p.methods = make(methodIndex)
	}
	for k, m := range methods {
		p.methods[k] = m
	}
}

// Request answers a JSON-RPC method call.
func (p *Provider) Request(ctx context.Context, method string, params ...any) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.RLock()
	d, blockchain, chainID := p.dispatcher, p.blockchain, p.chainID
	p.mu.RUnlock()
	if d == nil {
		return nil, ErrNotInstalled
	}

	p.lggr.Debugw("Request", "blockchain", blockchain, "method", method)

	switch method {
	case "eth_chainId":
		return hexutil.EncodeUint64(chainID), nil
	case "net_version":
		return strconv.FormatUint(chainID, 10), nil
	case "eth_call":
		call, m, err := p.decodeCall(registry.KindRequest, blockchain, params)
		if err != nil {
			return nil, err
		}
		value, err := d.Dispatch(call)
		if err != nil {
			return nil, err
		}

		return encodeOutputs(m, value)
	case "eth_estimateGas":
		call, _, err := p.decodeCall(registry.KindEstimate, blockchain, params)
		if err != nil {
			return nil, err
		}
		value, err := d.Dispatch(call)
		if err != nil {
			return nil, err
		}
		gas, err := toBig(value)
		if err != nil {
			return nil, fmt.Errorf("estimate: %w", err)
		}

		return hexutil.EncodeBig(gas), nil
	case "eth_sendTransaction":
		call, _, err := p.decodeCall(registry.KindTransaction, blockchain, params)
		if err != nil {
			return nil, err
		}

		return d.Dispatch(call)
	case "eth_sendRawTransaction":
		args, err := decodeRawTransaction(params)
		if err != nil {
			return nil, err
		}
		call, _, err := p.contractCall(registry.KindTransaction, blockchain, args)
		if err != nil {
			return nil, err
		}

		return d.Dispatch(call)
	default:
		return d.Dispatch(registry.Call{
			Blockchain: blockchain,
			Kind:       registry.KindRPC,
			Method:     method,
			Args:       params,
			Raw:        params,
		})
	}
}

// ServeHTTP serves the provider as a JSON-RPC endpoint.
func (p *Provider) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.handler.ServeHTTP(w, r)
}

// callArgs is the transaction object of eth_call, eth_estimateGas and eth_sendTransaction.
type callArgs struct {
	From  *common.Address `json:"from"`
	To    *common.Address `json:"to"`
	Data  *hexutil.Bytes  `json:"data"`
	Input *hexutil.Bytes  `json:"input"`
	Value *hexutil.Big    `json:"value"`
}

func (a callArgs) data() []byte {
	if a.Input != nil {
		return *a.Input
	}
	if a.Data != nil {
		return *a.Data
	}

	return nil
}

func (p *Provider) decodeCall(kind registry.Kind, blockchain string, params []any) (registry.Call, *abi.Method, error) {
	if len(params) == 0 {
		return registry.Call{}, nil, fmt.Errorf("%w: missing transaction object", ErrInvalidParams)
	}

	var args callArgs
	raw, err := json.Marshal(params[0])
	if err != nil {
		return registry.Call{}, nil, fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}
	if err = json.Unmarshal(raw, &args); err != nil {
		return registry.Call{}, nil, fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}

	return p.contractCall(kind, blockchain, args)
}

func decodeRawTransaction(params []any) (callArgs, error) {
	if len(params) == 0 {
		return callArgs{}, fmt.Errorf("%w: missing raw transaction", ErrInvalidParams)
	}
	s, ok := params[0].(string)
	if !ok {
		return callArgs{}, fmt.Errorf("%w: raw transaction must be a hex string", ErrInvalidParams)
	}
	raw, err := hexutil.Decode(s)
	if err != nil {
		return callArgs{}, fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}

	tx := new(types.Transaction)
	if err = tx.UnmarshalBinary(raw); err != nil {
		return callArgs{}, fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}

	data := hexutil.Bytes(tx.Data())
	args := callArgs{
		To:    tx.To(),
		Input: &data,
		Value: (*hexutil.Big)(tx.Value()),
	}
	// The sender is informational, signatures are not verified.
	if from, err := types.Sender(types.LatestSignerForChainID(tx.ChainId()), tx); err == nil {
		args.From = &from
	}

	return args, nil
}

// contractCall builds the registry call for a transaction object, decoding its input with the
// ABI registered for the target when there is one. Input without a known ABI is dispatched with
// the hex selector as method.
func (p *Provider) contractCall(kind registry.Kind, blockchain string, args callArgs) (registry.Call, *abi.Method, error) {
	value := new(big.Int)
	if args.Value != nil {
		value = args.Value.ToInt()
	}

	call := registry.Call{
		Blockchain: blockchain,
		Kind:       kind,
		Extras:     map[string]any{"value": value.String()},
	}
	if args.To != nil {
		call.To = addressKey(*args.To)
	}
	if args.From != nil {
		call.Extras["from"] = addressKey(*args.From)
	}

	data := args.data()
	call.Raw = data
	if len(data) < 4 {
		return call, nil, nil
	}

	p.mu.RLock()
	m, ok := p.methods.lookup(call.To, data[:4])
	p.mu.RUnlock()
	if !ok {
		call.Method = hexutil.Encode(data[:4])
		call.Args = hexutil.Encode(data[4:])

		return call, nil, nil
	}

	inputs, err := decodeInputs(m, data[4:])
	if err != nil {
		return registry.Call{}, nil, fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}
	call.Method = m.Name
	call.Args = inputs

	return call, m, nil
}
