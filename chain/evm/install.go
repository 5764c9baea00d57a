package evm

import (
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/smartcontractkit/web3-mock/chain"
	"github.com/smartcontractkit/web3-mock/host"
	"github.com/smartcontractkit/web3-mock/pkg/logger"
	"github.com/smartcontractkit/web3-mock/registry"
)

// ErrMissingAPI is returned when a contract interaction names a method without an api.
var ErrMissingAPI = errors.New("missing api")

// Installation is the outcome of installing a Config.
type Installation struct {
	// Provider is the provider the rules are served by.
	Provider *Provider
	Rules    []*registry.Rule

	activate func()
}

// Activate binds the provider to the installed rules and places it on the environment. Register
// the rules before activating so that the provider never serves a blockchain without its rules.
func (i *Installation) Activate() {
	i.activate()
}

// Install normalises cfg into rules and selects the EVM provider serving them, reusing the
// provider already installed on env. When cfg carries its own provider that one is bound instead
// and attached to env. txID answers transactions that do not set a return value.
//
// Neither the provider nor env change until the returned Installation is activated.
func Install(env *host.Environment, d registry.Dispatcher, cfg Config, txID string, lggr logger.Logger) (*Installation, error) {
	chainID, err := chain.ChainID(cfg.Blockchain)
	if err != nil {
		return nil, err
	}

	b := &ruleBuilder{methods: make(methodIndex), txID: txID}
	if err = b.build(cfg); err != nil {
		return nil, fmt.Errorf("install %s mock: %w", cfg.Blockchain, err)
	}

	p, external := cfg.Provider, cfg.Provider != nil
	if !external {
		if installed, ok := env.Provider(chain.EVM); ok {
			p, _ = installed.(*Provider)
		}
		if p == nil {
			p = NewProvider(lggr)
		}
	}
	activate := func() {
		p.bind(d, cfg.Blockchain, chainID, b.methods)
		if external {
			env.Attach(p)
		} else {
			env.Install(p)
		}
	}

	return &Installation{Provider: p, Rules: b.rules, activate: activate}, nil
}

// NewTransactionID returns a random 32 byte transaction hash.
func NewTransactionID() string {
	var b [common.HashLength]byte
	_, _ = rand.Read(b[:])

	return common.BytesToHash(b[:]).Hex()
}

type ruleBuilder struct {
	methods methodIndex
	txID    string
	rules   []*registry.Rule
}

func (b *ruleBuilder) build(cfg Config) error {
	if r := cfg.Request; r != nil {
		if err := b.contract(registry.KindRequest, "request", contractSpec{
			to: r.To, api: r.API, method: r.Method, params: r.Params,
		}, registry.AnyMethod, response(r.Return, r.Error)); err != nil {
			return err
		}
	}
	if t := cfg.Transaction; t != nil {
		resp := response(t.Return, t.Error)
		if t.Return == nil && t.Error == nil {
			resp = registry.Return(b.txID)
		}
		if err := b.contract(registry.KindTransaction, "transaction", contractSpec{
			from: t.From, to: t.To, api: t.API, method: t.Method, params: t.Params, value: t.Value,
		}, "", resp); err != nil {
			return err
		}
	}
	if e := cfg.Estimate; e != nil {
		ret := e.Return
		if ret == nil {
			ret = DefaultGasEstimate
		}
		if err := b.contract(registry.KindEstimate, "estimate", contractSpec{
			from: e.From, to: e.To, api: e.API, method: e.Method, params: e.Params,
		}, registry.AnyMethod, response(ret, e.Error)); err != nil {
			return err
		}
	}
	if bal := cfg.Balance; bal != nil {
		if err := b.balance(bal); err != nil {
			return err
		}
	}
	if a := cfg.Accounts; a != nil {
		for _, method := range []string{"eth_accounts", "eth_requestAccounts"} {
			b.rules = append(b.rules, &registry.Rule{
				Kind:     registry.KindRPC,
				Method:   method,
				Response: response(a.Return, a.Error),
			})
		}
	}
	for i, r := range cfg.RPC {
		if r.Method == "" {
			return fmt.Errorf("rpc %d: missing method", i)
		}
		b.rules = append(b.rules, &registry.Rule{
			Kind:     registry.KindRPC,
			Method:   r.Method,
			Matcher:  registry.Params(r.Params),
			Response: response(r.Return, r.Error),
		})
	}

	return nil
}

type contractSpec struct {
	from, to string
	api      any
	method   string
	params   any
	value    any
}

// contract adds the rule of a contract interaction. anyMethod is the rule method used when the
// interaction does not name one.
func (b *ruleBuilder) contract(kind registry.Kind, label string, s contractSpec, anyMethod string, resp registry.Response) error {
	to, err := normalizeAddress(s.to)
	if err != nil {
		return fmt.Errorf("%s to: %w", label, err)
	}

	var m *abi.Method
	if s.api != nil {
		parsed, perr := ParseAPI(s.api)
		if perr != nil {
			return fmt.Errorf("%s: %w", label, perr)
		}
		b.methods.add(to, parsed)
		if s.method != "" {
			if m, err = lookupMethod(parsed, s.method); err != nil {
				return fmt.Errorf("%s: %w", label, err)
			}
		}
	} else if s.method != "" {
		return fmt.Errorf("%s %s: %w", label, s.method, ErrMissingAPI)
	}

	rule := &registry.Rule{
		Kind:     kind,
		Method:   anyMethod,
		To:       to,
		Matcher:  registry.Params(paramsPattern(m, s.params)),
		Response: resp,
	}
	if m != nil {
		rule.Method = m.Name
	}

	extras := make(map[string]any)
	if s.from != "" {
		from, ferr := normalizeAddress(s.from)
		if ferr != nil {
			return fmt.Errorf("%s from: %w", label, ferr)
		}
		extras["from"] = from
	}
	if s.value != nil {
		v, verr := toBig(s.value)
		if verr != nil {
			return fmt.Errorf("%s value: %w", label, verr)
		}
		extras["value"] = v.String()
	}
	if len(extras) > 0 {
		rule.Extras = extras
	}

	b.rules = append(b.rules, rule)

	return nil
}

func (b *ruleBuilder) balance(bal *Balance) error {
	addr, err := normalizeAddress(bal.For)
	if err != nil {
		return fmt.Errorf("balance for: %w", err)
	}

	resp := registry.Fail(bal.Error)
	if bal.Error == nil {
		v, verr := toBig(bal.Return)
		if verr != nil {
			return fmt.Errorf("balance return: %w", verr)
		}
		resp = registry.Return(hexutil.EncodeBig(v))
	}

	var pattern any
	if addr != "" {
		pattern = []any{addr}
	}
	b.rules = append(b.rules, &registry.Rule{
		Kind:     registry.KindRPC,
		Method:   "eth_getBalance",
		Matcher:  registry.Params(pattern),
		Response: resp,
	})

	return nil
}

func response(value any, err error) registry.Response {
	if err != nil {
		return registry.Fail(err)
	}

	return registry.Return(value)
}
