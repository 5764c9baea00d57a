package solana

import (
	"errors"
	"fmt"

	sollib "github.com/gagliardetto/solana-go"
)

// ErrInvalidAddress is returned for strings that are not base58 encoded public keys.
var ErrInvalidAddress = errors.New("invalid Solana address")

// ParseAddress parses a base58 encoded public key.
func ParseAddress(address string) (sollib.PublicKey, error) {
	pubkey, err := sollib.PublicKeyFromBase58(address)
	if err != nil {
		return sollib.PublicKey{}, fmt.Errorf("%w: %q: %w", ErrInvalidAddress, address, err)
	}

	return pubkey, nil
}

// normalizeAddress validates an optional address.
func normalizeAddress(address string) (string, error) {
	if address == "" {
		return "", nil
	}
	pubkey, err := ParseAddress(address)
	if err != nil {
		return "", err
	}

	return pubkey.String(), nil
}
