package fixture

import (
	"fmt"

	"github.com/smartcontractkit/web3-mock/chain/evm"
	"github.com/smartcontractkit/web3-mock/chain/solana"
)

// The entry types shadow the fields a fixture cannot express directly: errors are declared as
// messages and Solana apis by name.

type evmEntry struct {
	evm.Config
	Request     *evmRequest     `json:"request,omitempty"`
	Transaction *evmTransaction `json:"transaction,omitempty"`
	Estimate    *evmEstimate    `json:"estimate,omitempty"`
	Balance     *evmBalance     `json:"balance,omitempty"`
	Accounts    *evmAccounts    `json:"accounts,omitempty"`
	RPC         []evmRPC        `json:"rpc,omitempty"`
}

type evmRequest struct {
	evm.Request
	Error string `json:"error,omitempty"`
}

type evmTransaction struct {
	evm.Transaction
	Error string `json:"error,omitempty"`
}

type evmEstimate struct {
	evm.Estimate
	Error string `json:"error,omitempty"`
}

type evmBalance struct {
	evm.Balance
	Error string `json:"error,omitempty"`
}

type evmAccounts struct {
	evm.Accounts
	Error string `json:"error,omitempty"`
}

type evmRPC struct {
	evm.RPC
	Error string `json:"error,omitempty"`
}

func (e *evmEntry) build() evm.Config {
	cfg := e.Config
	if e.Request != nil {
		r := e.Request.Request
		r.Error = fail(e.Request.Error)
		cfg.Request = &r
	}
	if e.Transaction != nil {
		tx := e.Transaction.Transaction
		tx.Error = fail(e.Transaction.Error)
		cfg.Transaction = &tx
	}
	if e.Estimate != nil {
		est := e.Estimate.Estimate
		est.Error = fail(e.Estimate.Error)
		cfg.Estimate = &est
	}
	if e.Balance != nil {
		b := e.Balance.Balance
		b.Error = fail(e.Balance.Error)
		cfg.Balance = &b
	}
	if e.Accounts != nil {
		a := e.Accounts.Accounts
		a.Error = fail(e.Accounts.Error)
		cfg.Accounts = &a
	}
	for _, rpc := range e.RPC {
		r := rpc.RPC
		r.Error = fail(rpc.Error)
		cfg.RPC = append(cfg.RPC, r)
	}

	return cfg
}

type solanaEntry struct {
	solana.Config
	Request     *solanaRequest     `json:"request,omitempty"`
	Transaction *solanaTransaction `json:"transaction,omitempty"`
	Estimate    *solanaEstimate    `json:"estimate,omitempty"`
}

type solanaRequest struct {
	solana.Request
	API   string `json:"api,omitempty"`
	Error string `json:"error,omitempty"`
}

type solanaTransaction struct {
	solana.Transaction
	Instructions []solanaInstruction `json:"instructions,omitempty"`
	Error        string              `json:"error,omitempty"`
}

type solanaInstruction struct {
	solana.Instruction
	API string `json:"api,omitempty"`
}

type solanaEstimate struct {
	solana.Estimate
	Error string `json:"error,omitempty"`
}

func (e *solanaEntry) build() (solana.Config, error) {
	cfg := e.Config
	if e.Request != nil {
		r := e.Request.Request
		api, err := solanaAPI(e.Request.API)
		if err != nil {
			return solana.Config{}, fmt.Errorf("request: %w", err)
		}
		r.API = api
		r.Error = fail(e.Request.Error)
		cfg.Request = &r
	}
	if e.Transaction != nil {
		tx := e.Transaction.Transaction
		tx.Error = fail(e.Transaction.Error)
		tx.Instructions = make([]solana.Instruction, 0, len(e.Transaction.Instructions))
		for i, ins := range e.Transaction.Instructions {
			api, err := solanaAPI(ins.API)
			if err != nil {
				return solana.Config{}, fmt.Errorf("instruction %d: %w", i, err)
			}
			out := ins.Instruction
			out.API = api
			tx.Instructions = append(tx.Instructions, out)
		}
		cfg.Transaction = &tx
	}
	if e.Estimate != nil {
		est := e.Estimate.Estimate
		est.Error = fail(e.Estimate.Error)
		cfg.Estimate = &est
	}

	return cfg, nil
}

// solanaAPI resolves an api name. An empty name resolves to no api.
func solanaAPI(name string) (solana.API, error) {
	switch name {
	case "":
		return nil, nil
	case RawAPI:
		return solana.Raw{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown solana api %q", ErrInvalidMock, name)
	}
}
