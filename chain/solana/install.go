package solana

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	sollib "github.com/gagliardetto/solana-go"

	"github.com/smartcontractkit/web3-mock/chain"
	"github.com/smartcontractkit/web3-mock/host"
	"github.com/smartcontractkit/web3-mock/pkg/logger"
	"github.com/smartcontractkit/web3-mock/registry"
)

// ErrMissingAPI is returned when a transaction instruction has no api.
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

// Install normalises cfg into rules and selects the Solana provider serving them, reusing the
// provider already installed on env. When cfg carries its own provider that one is bound instead
// and attached to env. txID answers transactions that do not set a return value.
//
// Neither the provider nor env change until the returned Installation is activated.
func Install(env *host.Environment, d registry.Dispatcher, cfg Config, txID string, lggr logger.Logger) (*Installation, error) {
	family, err := chain.Classify(cfg.Blockchain)
	if err != nil {
		return nil, err
	}
	if family != chain.Solana {
		return nil, fmt.Errorf("%w: %q is not part of the %s family", chain.ErrWrongFamily, cfg.Blockchain, chain.Solana)
	}

	b := &ruleBuilder{apis: make(map[string]API), txID: txID}
	if err = b.build(cfg); err != nil {
		return nil, fmt.Errorf("install %s mock: %w", cfg.Blockchain, err)
	}

	p, external := cfg.Provider, cfg.Provider != nil
	if !external {
		if installed, ok := env.Provider(chain.Solana); ok {
			p, _ = installed.(*Provider)
		}
		if p == nil {
			p = NewProvider(lggr)
		}
	}
	activate := func() {
		p.bind(d, cfg.Blockchain, b.apis)
		if external {
			env.Attach(p)
		} else {
			env.Install(p)
		}
	}

	return &Installation{Provider: p, Rules: b.rules, activate: activate}, nil
}

// NewTransactionID returns a random transaction signature.
func NewTransactionID() string {
	var sig sollib.Signature
	_, _ = rand.Read(sig[:])

	return sig.String()
}

type ruleBuilder struct {
	apis  map[string]API
	txID  string
	rules []*registry.Rule
}

func (b *ruleBuilder) build(cfg Config) error {
	if r := cfg.Request; r != nil {
		if err := b.request(r); err != nil {
			return err
		}
	}
	if t := cfg.Transaction; t != nil {
		if err := b.transaction(t); err != nil {
			return err
		}
	}
	if e := cfg.Estimate; e != nil {
		ret := e.Return
		if ret == nil {
			ret = DefaultFee
		}
		b.rules = append(b.rules, &registry.Rule{
			Kind:     registry.KindEstimate,
			Method:   "getFeeForMessage",
			Response: response(ret, e.Error),
		})
	}

	return nil
}

func (b *ruleBuilder) request(r *Request) error {
	to, err := normalizeAddress(r.To)
	if err != nil {
		return fmt.Errorf("request to: %w", err)
	}

	method := r.Method
	if method == "" {
		method = registry.AnyMethod
	}

	resp := response(r.Return, r.Error)
	if r.Error == nil && r.API != nil && r.Method == "getAccountInfo" {
		account, aerr := accountInfo(r)
		if aerr != nil {
			return fmt.Errorf("request %s: %w", r.Method, aerr)
		}
		resp = registry.Return(account)
	}

	b.rules = append(b.rules, &registry.Rule{
		Kind:     registry.KindRequest,
		Method:   method,
		To:       to,
		Matcher:  registry.Params(r.Params),
		Response: resp,
	})

	return nil
}

// accountInfo encodes the mocked account data with the request's API, as returned by
// getAccountInfo with the base64 encoding.
func accountInfo(r *Request) (map[string]any, error) {
	enc, ok := r.API.(Encoder)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrNotEncodable, r.API)
	}
	data, err := enc.Encode(r.Return)
	if err != nil {
		return nil, err
	}

	owner := sollib.SystemProgramID.String()
	if r.Owner != "" {
		if owner, err = normalizeAddress(r.Owner); err != nil {
			return nil, fmt.Errorf("owner: %w", err)
		}
	}

	return map[string]any{
		"data":       []any{base64.StdEncoding.EncodeToString(data), "base64"},
		"executable": false,
		"lamports":   0,
		"owner":      owner,
		"rentEpoch":  0,
		"space":      len(data),
	}, nil
}

func (b *ruleBuilder) transaction(t *Transaction) error {
	from, err := normalizeAddress(t.From)
	if err != nil {
		return fmt.Errorf("transaction from: %w", err)
	}
	var extras map[string]any
	if from != "" {
		extras = map[string]any{"from": from}
	}

	resp := response(t.Return, t.Error)
	if t.Return == nil && t.Error == nil {
		resp = registry.Return(b.txID)
	}

	if len(t.Instructions) == 0 {
		b.rules = append(b.rules, &registry.Rule{
			Kind:     registry.KindTransaction,
			Extras:   extras,
			Response: resp,
		})

		return nil
	}

	for i, ins := range t.Instructions {
		if ins.API == nil {
			return fmt.Errorf("instruction %d: %w", i, ErrMissingAPI)
		}
		program, perr := normalizeAddress(ins.To)
		if perr != nil {
			return fmt.Errorf("instruction %d to: %w", i, perr)
		}
		if program != "" {
			b.apis[program] = ins.API
		}

		b.rules = append(b.rules, &registry.Rule{
			Kind:     registry.KindTransaction,
			To:       program,
			Matcher:  instructionMatcher{api: ins.API, pattern: registry.Canonical(ins.Params), wildcard: ins.Params == nil},
			Extras:   extras,
			Response: resp,
		})
	}

	return nil
}

// instructionMatcher decodes an instruction with its own API before comparing it to the pattern,
// so that instructions of other layouts never match.
type instructionMatcher struct {
	api      API
	pattern  any
	wildcard bool
}

func (m instructionMatcher) Match(call registry.Call) registry.Score {
	input, ok := call.Raw.(instructionInput)
	if !ok {
		return registry.NoMatch
	}
	decoded, err := m.api.Decode(input.accounts, input.data)
	if err != nil {
		return registry.NoMatch
	}
	if m.wildcard {
		return registry.Wildcard
	}

	return registry.Compare(m.pattern, registry.Canonical(decoded))
}

func response(value any, err error) registry.Response {
	if err != nil {
		return registry.Fail(err)
	}

	return registry.Return(value)
}
