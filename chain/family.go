package chain

import (
	"errors"
	"fmt"
	"slices"

	chainsel "github.com/smartcontractkit/chain-selectors"
)

// ErrUnknownBlockchain is returned when a blockchain identifier belongs to no supported family.
var ErrUnknownBlockchain = errors.New("unknown blockchain")

// ErrWrongFamily is returned when a blockchain is used where another family is expected.
var ErrWrongFamily = errors.New("wrong blockchain family")

// Family is a blockchain family, named the same way chain-selectors names them.
type Family string

const (
	EVM    Family = Family(chainsel.FamilyEVM)
	Solana Family = Family(chainsel.FamilySolana)
)

// network describes a supported blockchain identifier.
type network struct {
	family Family
	// chainID is the EVM chain id. Zero for non EVM networks.
	chainID uint64
	// selector is set for networks that cannot be derived from an EVM chain id.
	selector uint64
}

// networks is the static membership table behind Classify.
var networks = map[string]network{
	"ethereum":   {family: EVM, chainID: 1},
	"bsc":        {family: EVM, chainID: 56},
	"polygon":    {family: EVM, chainID: 137},
	"fantom":     {family: EVM, chainID: 250},
	"arbitrum":   {family: EVM, chainID: 42161},
	"avalanche":  {family: EVM, chainID: 43114},
	"gnosis":     {family: EVM, chainID: 100},
	"optimism":   {family: EVM, chainID: 10},
	"base":       {family: EVM, chainID: 8453},
	"worldchain": {family: EVM, chainID: 480},
	"solana":     {family: Solana, selector: chainsel.SOLANA_MAINNET.Selector},
}

// Classify returns the family of the blockchain identified by id.
func Classify(id string) (Family, error) {
	n, ok := networks[id]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownBlockchain, id)
	}

	return n.family, nil
}

// IsEVM reports whether id is a supported EVM blockchain.
func IsEVM(id string) bool {
	f, err := Classify(id)

	return err == nil && f == EVM
}

// IsSolana reports whether id is a supported Solana blockchain.
func IsSolana(id string) bool {
	f, err := Classify(id)

	return err == nil && f == Solana
}

// ChainID returns the EVM chain id of the blockchain identified by id.
func ChainID(id string) (uint64, error) {
	n, ok := networks[id]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownBlockchain, id)
	}
	if n.family != EVM {
		return 0, fmt.Errorf("%w: %q is not part of the %s family", ErrWrongFamily, id, EVM)
	}

	return n.chainID, nil
}

// Selector returns the chain-selectors selector of the blockchain identified by id.
func Selector(id string) (uint64, error) {
	n, ok := networks[id]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownBlockchain, id)
	}
	if n.selector != 0 {
		return n.selector, nil
	}

	selector, err := chainsel.SelectorFromChainId(n.chainID)
	if err != nil {
		return 0, fmt.Errorf("failed to get selector for %q: %w", id, err)
	}

	return selector, nil
}

// Supported returns the sorted identifiers of the given family.
func Supported(family Family) []string {
	ids := make([]string, 0, len(networks))
	for id, n := range networks {
		if n.family == family {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)

	return ids
}
