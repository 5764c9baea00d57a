package mock

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/smartcontractkit/web3-mock/chain"
	"github.com/smartcontractkit/web3-mock/chain/evm"
	"github.com/smartcontractkit/web3-mock/chain/solana"
)

const (
	// APIPlaceholder is rendered in place of a missing api.
	APIPlaceholder = "PLACE API HERE"
	// ProviderPlaceholder is rendered in place of a provider.
	ProviderPlaceholder = "PROVIDER"
)

// Blockchain is the bare form of a configuration: it installs a provider for the blockchain
// without any call rules. A plain string is accepted as well.
type Blockchain string

// target is a configuration that passed preflight, resolved to its family.
type target struct {
	family     chain.Family
	blockchain string
	wallet     string
	require    string
	evm        *evm.Config
	solana     *solana.Config
}

// preflight validates cfg and resolves it to a target. It never mutates cfg.
func (e *Engine) preflight(cfg any) (*target, error) {
	t, err := e.resolve(cfg)
	if err != nil {
		return nil, err
	}

	family, err := chain.Classify(t.blockchain)
	if err != nil {
		return nil, err
	}
	if t.family != "" && t.family != family {
		return nil, e.configErr(ErrFamilyMismatch, fmt.Sprintf("%T cannot mock %q", cfg, t.blockchain))
	}
	t.family = family

	switch {
	case t.evm != nil:
		if err = e.checkEVM(t.evm); err != nil {
			return nil, err
		}
	case t.solana != nil:
		if err = e.checkSolana(t.solana); err != nil {
			return nil, err
		}
	case family == chain.EVM:
		t.evm = &evm.Config{Blockchain: t.blockchain}
	default:
		t.solana = &solana.Config{Blockchain: t.blockchain}
	}

	if t.wallet != "" {
		if err = e.checkWallet(t.wallet, family, t.blockchain); err != nil {
			return nil, err
		}
	}

	return t, nil
}

func (e *Engine) resolve(cfg any) (*target, error) {
	switch c := cfg.(type) {
	case nil:
		return nil, e.configErr(ErrNoMock, "")
	case string:
		return e.resolve(Blockchain(c))
	case Blockchain:
		if c == "" {
			return nil, e.configErr(ErrNoMock, "")
		}

		return &target{blockchain: string(c)}, nil
	case evm.Config:
		return e.resolve(&c)
	case *evm.Config:
		if c == nil {
			return nil, e.configErr(ErrNoMock, "")
		}
		if reflect.ValueOf(*c).IsZero() {
			return nil, e.configErr(ErrEmptyConfiguration, "")
		}

		return &target{
			family:     chain.EVM,
			blockchain: c.Blockchain,
			wallet:     c.Wallet,
			require:    c.Require,
			evm:        c,
		}, nil
	case solana.Config:
		return e.resolve(&c)
	case *solana.Config:
		if c == nil {
			return nil, e.configErr(ErrNoMock, "")
		}
		if reflect.ValueOf(*c).IsZero() {
			return nil, e.configErr(ErrEmptyConfiguration, "")
		}

		return &target{
			family:     chain.Solana,
			blockchain: c.Blockchain,
			wallet:     c.Wallet,
			require:    c.Require,
			solana:     c,
		}, nil
	default:
		return nil, e.configErr(ErrUnknownConfigurationType, fmt.Sprintf("%T", cfg))
	}
}

// checkEVM requires an api for contract interactions that name a method, checking request,
// transaction and estimate in that order.
func (e *Engine) checkEVM(c *evm.Config) error {
	switch {
	case c.Request != nil && c.Request.Method != "" && c.Request.API == nil:
		return e.missingAPI("request", renderEVM(c, "request"))
	case c.Transaction != nil && c.Transaction.Method != "" && c.Transaction.API == nil:
		return e.missingAPI("transaction", renderEVM(c, "transaction"))
	case c.Estimate != nil && c.Estimate.Method != "" && c.Estimate.API == nil:
		return e.missingAPI("estimate", renderEVM(c, "estimate"))
	}

	return nil
}

// checkSolana requires an api for every instruction of a transaction.
func (e *Engine) checkSolana(c *solana.Config) error {
	if c.Transaction == nil {
		return nil
	}
	for _, ins := range c.Transaction.Instructions {
		if ins.API == nil {
			return e.missingAPI("transaction", renderSolana(c))
		}
	}

	return nil
}

func (e *Engine) missingAPI(typ string, rendering map[string]any) error {
	raw, err := json.Marshal(rendering)
	if err != nil {
		raw = []byte(fmt.Sprintf("%v", rendering))
	}

	return &ConfigurationError{Name: e.name, Err: ErrMissingAPI, Type: typ, Configuration: string(raw)}
}

func (e *Engine) configErr(err error, detail string) error {
	return &ConfigurationError{Name: e.name, Err: err, Detail: detail}
}

// renderEVM renders c as JSON-ready data with the api of the faulty sub-configuration replaced by
// the placeholder and the provider redacted.
func renderEVM(c *evm.Config, faulty string) map[string]any {
	shadow := *c
	shadow.Provider = nil

	apis := map[string]any{}
	if r := c.Request; r != nil {
		copied := *r
		apis["request"], copied.API = r.API, nil
		shadow.Request = &copied
	}
	if tx := c.Transaction; tx != nil {
		copied := *tx
		apis["transaction"], copied.API = tx.API, nil
		shadow.Transaction = &copied
	}
	if est := c.Estimate; est != nil {
		copied := *est
		apis["estimate"], copied.API = est.API, nil
		shadow.Estimate = &copied
	}

	out := toMap(shadow)
	for typ, api := range apis {
		sub, ok := out[typ].(map[string]any)
		if !ok {
			continue
		}
		switch {
		case typ == faulty:
			sub["api"] = []any{APIPlaceholder}
		case api != nil:
			sub["api"] = renderAPI(api)
		}
	}
	if c.Provider != nil {
		out["provider"] = ProviderPlaceholder
	}

	return out
}

// renderSolana renders c as JSON-ready data with the api of instructions that lack one replaced
// by the placeholder and the provider redacted.
func renderSolana(c *solana.Config) map[string]any {
	shadow := *c
	shadow.Provider = nil

	var requestAPI solana.API
	if r := c.Request; r != nil {
		copied := *r
		requestAPI, copied.API = r.API, nil
		shadow.Request = &copied
	}
	var instructionAPIs []solana.API
	if tx := c.Transaction; tx != nil {
		copied := *tx
		copied.Instructions = make([]solana.Instruction, len(tx.Instructions))
		for i, ins := range tx.Instructions {
			instructionAPIs = append(instructionAPIs, ins.API)
			ins.API = nil
			copied.Instructions[i] = ins
		}
		shadow.Transaction = &copied
	}

	out := toMap(shadow)
	if sub, ok := out["request"].(map[string]any); ok && requestAPI != nil {
		sub["api"] = renderAPI(requestAPI)
	}
	if sub, ok := out["transaction"].(map[string]any); ok {
		instructions, _ := sub["instructions"].([]any)
		for i, api := range instructionAPIs {
			if i >= len(instructions) {
				break
			}
			ins, isMap := instructions[i].(map[string]any)
			if !isMap {
				continue
			}
			if api == nil {
				ins["api"] = []any{APIPlaceholder}
			} else {
				ins["api"] = renderAPI(api)
			}
		}
	}
	if c.Provider != nil {
		out["provider"] = ProviderPlaceholder
	}

	return out
}

// renderAPI keeps apis given as JSON and names the type of any other api.
func renderAPI(api any) any {
	switch a := api.(type) {
	case string:
		if json.Valid([]byte(a)) {
			return json.RawMessage(a)
		}

		return a
	case []byte:
		if json.Valid(a) {
			return json.RawMessage(a)
		}

		return string(a)
	case json.RawMessage, []any, []map[string]any:
		return a
	default:
		return fmt.Sprintf("%T", api)
	}
}

func toMap(v any) map[string]any {
	out := map[string]any{}
	raw, err := json.Marshal(v)
	if err != nil {
		out["error"] = err.Error()
		return out
	}
	if err = json.Unmarshal(raw, &out); err != nil {
		out["error"] = err.Error()
	}

	return out
}
