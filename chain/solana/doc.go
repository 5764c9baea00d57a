// Package solana adapts mock configurations of Solana to registry rules and serves them through a
// Provider that also answers the Solana JSON-RPC methods of github.com/gagliardetto/solana-go.
package solana
