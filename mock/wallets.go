package mock

import (
	"fmt"
	"slices"

	"github.com/smartcontractkit/web3-mock/chain"
	"github.com/smartcontractkit/web3-mock/host"
)

// Supported wallet identities.
const (
	MetaMask      = "metamask"
	Coinbase      = "coinbase"
	WalletConnect = "walletconnect"
	WalletLink    = "walletlink"
	Phantom       = "phantom"
)

type wallet struct {
	family chain.Family
	flags  []string
}

// wallets maps a wallet identity to the flags its provider carries.
var wallets = map[string]wallet{
	MetaMask:      {family: chain.EVM, flags: []string{"isMetaMask"}},
	Coinbase:      {family: chain.EVM, flags: []string{"isCoinbaseWallet", "isWalletLink"}},
	WalletConnect: {family: chain.EVM, flags: []string{"isWalletConnect"}},
	WalletLink:    {family: chain.EVM, flags: []string{"isWalletLink"}},
	Phantom:       {family: chain.Solana, flags: []string{"isPhantom"}},
}

// Wallets returns the supported wallet identities of family, sorted.
func Wallets(family chain.Family) []string {
	var out []string
	for name, w := range wallets {
		if w.family == family {
			out = append(out, name)
		}
	}
	slices.Sort(out)

	return out
}

func (e *Engine) checkWallet(name string, family chain.Family, blockchain string) error {
	w, ok := wallets[name]
	if !ok {
		return fmt.Errorf("%s: %w: %q", e.name, ErrUnknownWallet, name)
	}
	if w.family != family {
		return e.configErr(ErrFamilyMismatch, fmt.Sprintf("wallet %q is not available on %s", name, blockchain))
	}

	return nil
}

// applyWallet sets the identity flags of wallet name on p. The wallet must have passed
// checkWallet.
func applyWallet(p host.Provider, name string) {
	for _, flag := range wallets[name].flags {
		p.SetFlag(flag, true)
	}
}
