/*
Package chain classifies blockchain identifiers into the families the mock engine supports.

# Overview

Every mock configuration names the blockchain it mocks with a short identifier such as "ethereum"
or "solana". The chain package maps these identifiers to a Family, which selects the adapter that
installs the provider and translates calls, and to the chain metadata providers report.

# Families

	family, err := chain.Classify("bsc")
	if err != nil {
		// errors.Is(err, chain.ErrUnknownBlockchain)
	}
	fmt.Println(family) // "evm"

	chain.IsEVM("polygon")    // true
	chain.IsSolana("solana")  // true
	chain.Supported(chain.EVM) // sorted EVM identifiers

# Chain Metadata

EVM providers answer eth_chainId and net_version from the chain id of the blockchain they serve:

	id, _ := chain.ChainID("bsc") // 56

Chain selectors are resolved through github.com/smartcontractkit/chain-selectors:

	selector, _ := chain.Selector("ethereum")
*/
package chain
