package serve

import (
	"net/http"

	"github.com/smartcontractkit/web3-mock/chain"
	"github.com/smartcontractkit/web3-mock/mock"
)

// Paths the providers of each family are served on.
const (
	EVMPath    = "/evm"
	SolanaPath = "/solana"
)

// Handler routes JSON-RPC requests to the providers installed on e. Providers are looked up on
// every request, so mocks registered after the handler was created are served too.
func Handler(e *mock.Engine) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(EVMPath, func(w http.ResponseWriter, r *http.Request) {
		p, ok := e.EVM()
		if !ok {
			notMocked(w, chain.EVM)
			return
		}
		p.ServeHTTP(w, r)
	})
	mux.HandleFunc(SolanaPath, func(w http.ResponseWriter, r *http.Request) {
		p, ok := e.Solana()
		if !ok {
			notMocked(w, chain.Solana)
			return
		}
		p.ServeHTTP(w, r)
	})

	return mux
}

func notMocked(w http.ResponseWriter, family chain.Family) {
	http.Error(w, "no "+string(family)+" blockchain is mocked", http.StatusNotFound)
}
