package solana

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	binary "github.com/gagliardetto/binary"
	sollib "github.com/gagliardetto/solana-go"
)

// ErrNotEncodable is returned when account data is mocked with an API that cannot encode it.
var ErrNotEncodable = errors.New("api cannot encode account data")

// API decodes the data of a program's instructions or accounts. It plays the part an IDL or an
// ABI plays for EVM contracts. Accounts are nil when account data is decoded.
type API interface {
	Decode(accounts []*sollib.AccountMeta, data []byte) (any, error)
}

// Encoder is implemented by APIs that can also encode data, which is needed to mock account data.
type Encoder interface {
	Encode(v any) ([]byte, error)
}

// APIFunc adapts an instruction decoder, such as one generated for an Anchor program, to API.
type APIFunc func(accounts []*sollib.AccountMeta, data []byte) (any, error)

// Decode implements API.
func (f APIFunc) Decode(accounts []*sollib.AccountMeta, data []byte) (any, error) {
	return f(accounts, data)
}

// DIFn wraps a typed decoder into an APIFunc.
func DIFn[T any](fn func(accounts []*sollib.AccountMeta, data []byte) (T, error)) APIFunc {
	return func(accounts []*sollib.AccountMeta, data []byte) (any, error) {
		return fn(accounts, data)
	}
}

// Borsh decodes and encodes data as T using the borsh layout.
type Borsh[T any] struct{}

// Decode implements API.
func (Borsh[T]) Decode(_ []*sollib.AccountMeta, data []byte) (any, error) {
	var v T
	if err := binary.NewBorshDecoder(data).Decode(&v); err != nil {
		return nil, fmt.Errorf("borsh decode %T: %w", v, err)
	}

	return v, nil
}

// Encode implements Encoder.
func (Borsh[T]) Encode(v any) ([]byte, error) {
	return binary.MarshalBorsh(v)
}

// Bin decodes and encodes data as T using the little endian binary layout of native programs.
type Bin[T any] struct{}

// Decode implements API.
func (Bin[T]) Decode(_ []*sollib.AccountMeta, data []byte) (any, error) {
	var v T
	if err := binary.NewBinDecoder(data).Decode(&v); err != nil {
		return nil, fmt.Errorf("bin decode %T: %w", v, err)
	}

	return v, nil
}

// Encode implements Encoder.
func (Bin[T]) Encode(v any) ([]byte, error) {
	return binary.MarshalBin(v)
}

// Raw leaves data undecoded and renders it as base58. It is what declarative fixtures use.
type Raw struct{}

// Decode implements API.
func (Raw) Decode(_ []*sollib.AccountMeta, data []byte) (any, error) {
	return sollib.Base58(data).String(), nil
}

// Encode implements Encoder. It accepts bytes or a base58 string.
func (Raw) Encode(v any) ([]byte, error) {
	switch d := v.(type) {
	case []byte:
		return d, nil
	case string:
		var b sollib.Base58
		if err := json.Unmarshal([]byte(strconv.Quote(d)), &b); err != nil {
			return nil, fmt.Errorf("decode base58: %w", err)
		}

		return b, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrNotEncodable, v)
	}
}
