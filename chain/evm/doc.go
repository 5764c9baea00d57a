// Package evm adapts mock configurations of EVM blockchains to registry rules and serves them
// through an EIP-1193 style Provider. Contract calls are decoded with the configured ABI so that
// rules match on method names and arguments instead of raw calldata.
package evm
