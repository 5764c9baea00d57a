package solana

// Config mocks a Solana blockchain. Blockchain is required, every other field is optional.
type Config struct {
	Blockchain string `json:"blockchain"`
	// Provider is mocked instead of the environment's Solana provider when set.
	Provider *Provider `json:"provider,omitempty"`
	// Wallet is the wallet the provider identifies as, e.g. "phantom".
	Wallet string `json:"wallet,omitempty"`
	// Require substitutes the named module with the provider.
	Require string `json:"require,omitempty"`

	Request     *Request     `json:"request,omitempty"`
	Transaction *Transaction `json:"transaction,omitempty"`
	Estimate    *Estimate    `json:"estimate,omitempty"`
}

// Request mocks an RPC method such as getBalance or getAccountInfo.
type Request struct {
	// Method is the RPC method. Empty matches every method.
	Method string `json:"method,omitempty"`
	// To is the account the request is about, i.e. its first param.
	To string `json:"to,omitempty"`
	// API encodes Return as account data when Method is getAccountInfo.
	API API `json:"api,omitempty"`
	// Owner is the program owning the returned account, the system program by default.
	Owner string `json:"owner,omitempty"`
	// Params is the pattern for the params following To.
	Params any   `json:"params,omitempty"`
	Return any   `json:"return,omitempty"`
	Error  error `json:"-"`
}

// Transaction mocks sendTransaction and wallet signAndSendTransaction calls. A transaction matches
// when each configured instruction matches one of its instructions. Unless Return or Error is set
// it is answered with the mock's synthetic signature.
type Transaction struct {
	// From is the fee payer.
	From         string        `json:"from,omitempty"`
	Instructions []Instruction `json:"instructions,omitempty"`
	Return       any           `json:"return,omitempty"`
	Error        error         `json:"-"`
}

// Instruction matches one instruction of a transaction.
type Instruction struct {
	// To is the program id.
	To string `json:"to,omitempty"`
	// API decodes the instruction data before it is compared to Params.
	API    API `json:"api,omitempty"`
	Params any `json:"params,omitempty"`
}

// Estimate mocks getFeeForMessage.
type Estimate struct {
	// Return is the fee in lamports, DefaultFee when unset.
	Return any   `json:"return,omitempty"`
	Error  error `json:"-"`
}

// DefaultFee answers fee estimates that do not set a return value.
const DefaultFee = 5000
