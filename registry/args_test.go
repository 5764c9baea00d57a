package registry_test

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"

	"github.com/smartcontractkit/web3-mock/registry"
)

type transfer struct {
	To     string   `json:"to"`
	Amount *big.Int `json:"amount"`
}

func TestCanonical(t *testing.T) {
	t.Parallel()

	addr := common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
	tests := []struct {
		name string
		give any
		want any
	}{
		{name: "nil", give: nil, want: nil},
		{name: "plain string", give: "Hello", want: "Hello"},
		{name: "hex string", give: "0xABCDEF", want: "0xabcdef"},
		{name: "int", give: 42, want: "42"},
		{name: "uint64", give: uint64(18446744073709551615), want: "18446744073709551615"},
		{name: "float", give: 1.5, want: "1.5"},
		{name: "big int", give: big.NewInt(1000), want: "1000"},
		{name: "nil big int", give: (*big.Int)(nil), want: nil},
		{name: "json number", give: json.Number("12"), want: "12"},
		{name: "bytes", give: []byte{0xde, 0xad}, want: "0xdead"},
		{name: "address", give: addr, want: "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"},
		{name: "address pointer", give: &addr, want: "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"},
		{name: "typed slice", give: []int{1, 2}, want: []any{"1", "2"}},
		{name: "typed map", give: map[string]int{"a": 1}, want: map[string]any{"a": "1"}},
		{
			name: "struct",
			give: transfer{To: "0xAB", Amount: big.NewInt(5)},
			want: map[string]any{"to": "0xab", "amount": "5"},
		},
		{
			name: "raw json",
			give: json.RawMessage(`{"value":[1,"0xAA"]}`),
			want: map[string]any{"value": []any{"1", "0xaa"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, registry.Canonical(tt.give))
		})
	}
}

func TestCompare(t *testing.T) {
	t.Parallel()

	value := registry.Canonical(map[string]any{
		"owner":  "0xabc",
		"amount": 10,
		"path":   []any{"0x1", "0x2"},
	})
	tests := []struct {
		name    string
		pattern any
		want    registry.Score
	}{
		{name: "nil pattern", pattern: nil, want: registry.Wildcard},
		{
			name:    "identical",
			pattern: map[string]any{"owner": "0xABC", "amount": "10", "path": []any{"0x1", "0x2"}},
			want:    registry.Exact,
		},
		{name: "subset of keys", pattern: map[string]any{"owner": "0xabc"}, want: registry.Partial},
		{name: "slice prefix", pattern: map[string]any{"path": []any{"0x1"}}, want: registry.Partial},
		{
			name:    "anything placeholder",
			pattern: map[string]any{"owner": registry.Anything, "amount": "10", "path": []any{"0x1", "0x2"}},
			want:    registry.Partial,
		},
		{name: "different value", pattern: map[string]any{"owner": "0xdef"}, want: registry.NoMatch},
		{name: "missing key", pattern: map[string]any{"spender": "0xabc"}, want: registry.NoMatch},
		{name: "different shape", pattern: []any{"0xabc"}, want: registry.NoMatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := registry.Compare(registry.Canonical(tt.pattern), value)
			assert.Equal(t, tt.want, got, "got %s", got)
		})
	}
}

func TestCompare_ByteValues(t *testing.T) {
	t.Parallel()

	value := registry.Canonical([]any{[]uint8{1, 2}, [2]byte{0xab, 0xcd}})
	tests := []struct {
		name    string
		pattern any
		want    registry.Score
	}{
		{name: "numbers", pattern: []any{[]int{1, 2}, []int{171, 205}}, want: registry.Exact},
		{name: "hex", pattern: []any{"0x0102", "0xABCD"}, want: registry.Exact},
		{name: "mixed", pattern: []any{[]int{1, 2}, "0xabcd"}, want: registry.Exact},
		{name: "byte prefix", pattern: []any{[]int{1}}, want: registry.Partial},
		{name: "byte placeholder", pattern: []any{[]any{registry.Anything, 2}}, want: registry.Partial},
		{name: "different byte", pattern: []any{[]int{1, 3}}, want: registry.NoMatch},
		{name: "too many bytes", pattern: []any{[]int{1, 2, 3}}, want: registry.NoMatch},
		{name: "second value differs", pattern: []any{[]int{1, 2}, []int{1}}, want: registry.NoMatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := registry.Compare(registry.Canonical(tt.pattern), value)
			assert.Equal(t, tt.want, got, "got %s", got)
		})
	}

	assert.Equal(t, registry.NoMatch, registry.Compare(registry.Canonical([]int{1}), "plain"))
}

func TestParams(t *testing.T) {
	t.Parallel()

	call := registry.Call{Args: []any{big.NewInt(3), "0xFF"}}

	assert.Equal(t, registry.Wildcard, registry.Params(nil).Match(call))
	assert.Equal(t, registry.Exact, registry.Params([]any{3, "0xff"}).Match(call))
	assert.Equal(t, registry.Partial, registry.Params([]any{"3"}).Match(call))
	assert.Equal(t, registry.NoMatch, registry.Params([]any{"4"}).Match(call))
}
