package evm

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// ErrInvalidAddress is returned for strings that are not 20 byte hex addresses.
var ErrInvalidAddress = errors.New("invalid EVM address")

// ParseAddress parses a hex address, with or without the 0x prefix.
func ParseAddress(address string) (common.Address, error) {
	if !common.IsHexAddress(address) {
		return common.Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, address)
	}

	return common.HexToAddress(address), nil
}

// normalizeAddress returns the lower-case 0x form of an optional address.
func normalizeAddress(address string) (string, error) {
	if address == "" {
		return "", nil
	}
	addr, err := ParseAddress(address)
	if err != nil {
		return "", err
	}

	return addressKey(addr), nil
}

func addressKey(addr common.Address) string {
	return "0x" + common.Bytes2Hex(addr.Bytes())
}
