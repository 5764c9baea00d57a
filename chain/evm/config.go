package evm

// Config mocks an EVM blockchain. Blockchain is required, every other field is optional.
//
// Request, Transaction and Estimate describe contract interactions and need an API whenever they
// name a Method. Balance, Accounts and RPC are shorthands for plain JSON-RPC methods.
type Config struct {
	Blockchain string `json:"blockchain"`
	// Provider is mocked instead of the environment's EVM provider when set.
	Provider *Provider `json:"provider,omitempty"`
	// Wallet is the wallet the provider identifies as, e.g. "metamask".
	Wallet string `json:"wallet,omitempty"`
	// Require substitutes the named module with the provider.
	Require string `json:"require,omitempty"`

	Request     *Request     `json:"request,omitempty"`
	Transaction *Transaction `json:"transaction,omitempty"`
	Estimate    *Estimate    `json:"estimate,omitempty"`

	Balance  *Balance  `json:"balance,omitempty"`
	Accounts *Accounts `json:"accounts,omitempty"`
	RPC      []RPC     `json:"rpc,omitempty"`
}

// Request mocks a read-only contract call made through eth_call.
type Request struct {
	To string `json:"to,omitempty"`
	// API is the contract ABI: an *abi.ABI, an abi.ABI, or its JSON as a string or []byte.
	API    any    `json:"api,omitempty"`
	Method string `json:"method,omitempty"`
	// Params is the argument pattern, either positional or keyed by argument name. Nil matches any
	// arguments.
	Params any `json:"params,omitempty"`
	// Return is the decoded return value. Multiple outputs are given positionally or keyed by name.
	Return any   `json:"return,omitempty"`
	Error  error `json:"-"`
}

// Transaction mocks eth_sendTransaction and eth_sendRawTransaction. Unless Return or Error is set
// the call is answered with the mock's synthetic transaction id.
type Transaction struct {
	From   string `json:"from,omitempty"`
	To     string `json:"to,omitempty"`
	API    any    `json:"api,omitempty"`
	Method string `json:"method,omitempty"`
	Params any    `json:"params,omitempty"`
	// Value is the amount of wei transferred.
	Value  any   `json:"value,omitempty"`
	Return any   `json:"return,omitempty"`
	Error  error `json:"-"`
}

// Estimate mocks eth_estimateGas. Without a Method it answers every estimate.
type Estimate struct {
	From   string `json:"from,omitempty"`
	To     string `json:"to,omitempty"`
	API    any    `json:"api,omitempty"`
	Method string `json:"method,omitempty"`
	Params any    `json:"params,omitempty"`
	// Return is the gas estimate, DefaultGasEstimate when unset.
	Return any   `json:"return,omitempty"`
	Error  error `json:"-"`
}

// Balance mocks eth_getBalance for an account.
type Balance struct {
	For    string `json:"for"`
	Return any    `json:"return,omitempty"`
	Error  error  `json:"-"`
}

// Accounts mocks eth_accounts and eth_requestAccounts.
type Accounts struct {
	Return []string `json:"return,omitempty"`
	Error  error    `json:"-"`
}

// RPC mocks an arbitrary JSON-RPC method. The result is returned as is.
type RPC struct {
	Method string `json:"method"`
	Params any    `json:"params,omitempty"`
	Return any    `json:"return,omitempty"`
	Error  error  `json:"-"`
}

// DefaultGasEstimate answers estimates that do not set a return value.
const DefaultGasEstimate = 21000
