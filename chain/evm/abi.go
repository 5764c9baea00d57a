package evm

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

var (
	// ErrInvalidAPI is returned when a configured api is not a usable contract ABI.
	ErrInvalidAPI = errors.New("invalid api")
	// ErrUnknownMethod is returned when a configured method is not part of the api.
	ErrUnknownMethod = errors.New("method not found in api")
)

// ParseAPI returns the contract ABI described by api: an *abi.ABI, an abi.ABI, or its JSON as a
// string or []byte.
func ParseAPI(api any) (*abi.ABI, error) {
	switch a := api.(type) {
	case *abi.ABI:
		if a == nil {
			return nil, fmt.Errorf("%w: nil ABI", ErrInvalidAPI)
		}

		return a, nil
	case abi.ABI:
		return &a, nil
	case string:
		return parseABIJSON(a)
	case []byte:
		return parseABIJSON(string(a))
	case json.RawMessage:
		return parseABIJSON(string(a))
	case []any, []map[string]any:
		raw, err := json.Marshal(a)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidAPI, err)
		}

		return parseABIJSON(string(raw))
	default:
		return nil, fmt.Errorf("%w: unsupported type %T", ErrInvalidAPI, api)
	}
}

func parseABIJSON(s string) (*abi.ABI, error) {
	parsed, err := abi.JSON(strings.NewReader(s))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAPI, err)
	}

	return &parsed, nil
}

// lookupMethod finds name in parsed, by its unique name first and its raw name second.
func lookupMethod(parsed *abi.ABI, name string) (*abi.Method, error) {
	if m, ok := parsed.Methods[name]; ok {
		return &m, nil
	}
	for _, m := range parsed.Methods {
		if m.RawName == name {
			return &m, nil
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrUnknownMethod, name)
}

// methodIndex resolves 4 byte selectors to ABI methods, per contract address. Methods registered
// without an address are used for every contract.
type methodIndex map[string]*abi.Method

func (idx methodIndex) add(to string, parsed *abi.ABI) {
	for name := range parsed.Methods {
		m := parsed.Methods[name]
		idx[to+":"+hex.EncodeToString(m.ID)] = &m
	}
}

func (idx methodIndex) lookup(to string, selector []byte) (*abi.Method, bool) {
	sel := hex.EncodeToString(selector)
	if m, ok := idx[to+":"+sel]; ok {
		return m, true
	}
	m, ok := idx[":"+sel]

	return m, ok
}

// decodeInputs unpacks call data into arguments keyed by input name, or position when unnamed.
func decodeInputs(m *abi.Method, data []byte) (map[string]any, error) {
	values, err := m.Inputs.Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("unpack %s inputs: %w", m.Name, err)
	}

	return namedValues(m.Inputs, values), nil
}

func namedValues(args abi.Arguments, values []any) map[string]any {
	out := make(map[string]any, len(values))
	for i, v := range values {
		out[argName(args, i)] = v
	}

	return out
}

func argName(args abi.Arguments, i int) string {
	if i < len(args) && args[i].Name != "" {
		return args[i].Name
	}

	return strconv.Itoa(i)
}

// paramsPattern keys a positional parameter pattern by the method's input names. Maps are left as
// they are and a single value is taken as the first argument.
func paramsPattern(m *abi.Method, params any) any {
	if params == nil || m == nil {
		return params
	}

	rv := reflect.ValueOf(params)
	switch rv.Kind() {
	case reflect.Map:
		return params
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			break
		}
		out := make(map[string]any, rv.Len())
		for i := range rv.Len() {
			out[argName(m.Inputs, i)] = rv.Index(i).Interface()
		}

		return out
	default:
	}

	return map[string]any{argName(m.Inputs, 0): params}
}

// encodeOutputs packs a mocked return value as the method's ABI encoded outputs. Raw bytes are
// returned as they are.
func encodeOutputs(m *abi.Method, value any) (hexutil.Bytes, error) {
	switch v := value.(type) {
	case hexutil.Bytes:
		return v, nil
	case []byte:
		return v, nil
	}
	if m == nil {
		raw, err := toBytes(value)
		if err != nil {
			return nil, fmt.Errorf("return value of an unknown method must be bytes: %w", err)
		}

		return raw, nil
	}

	values, err := outputValues(m.Outputs, value)
	if err != nil {
		return nil, fmt.Errorf("encode %s outputs: %w", m.Name, err)
	}
	packed, err := m.Outputs.Pack(values...)
	if err != nil {
		return nil, fmt.Errorf("encode %s outputs: %w", m.Name, err)
	}

	return packed, nil
}

func outputValues(outputs abi.Arguments, value any) ([]any, error) {
	var raw []any
	switch {
	case len(outputs) == 0:
		return nil, nil
	case len(outputs) == 1:
		raw = []any{value}
	default:
		rv := reflect.ValueOf(value)
		switch rv.Kind() {
		case reflect.Slice, reflect.Array:
			for i := range rv.Len() {
				raw = append(raw, rv.Index(i).Interface())
			}
		case reflect.Map:
			for i := range outputs {
				e := rv.MapIndex(reflect.ValueOf(argName(outputs, i)))
				if !e.IsValid() {
					return nil, fmt.Errorf("missing output %s", argName(outputs, i))
				}
				raw = append(raw, e.Interface())
			}
		default:
			return nil, fmt.Errorf("%d outputs need a list or a map, got %T", len(outputs), value)
		}
	}
	if len(raw) != len(outputs) {
		return nil, fmt.Errorf("%d outputs, got %d values", len(outputs), len(raw))
	}

	out := make([]any, len(raw))
	for i, v := range raw {
		converted, err := convertABIValue(outputs[i].Type, v)
		if err != nil {
			return nil, fmt.Errorf("output %s: %w", argName(outputs, i), err)
		}
		out[i] = converted
	}

	return out, nil
}

// convertABIValue converts loosely typed values, as found in fixtures, into the Go type the ABI
// packer expects for t.
func convertABIValue(t abi.Type, v any) (any, error) {
	target := t.GetType()
	if v != nil && reflect.TypeOf(v) == target {
		return v, nil
	}

	switch t.T {
	case abi.IntTy, abi.UintTy:
		b, err := toBig(v)
		if err != nil {
			return nil, err
		}
		if target.Kind() == reflect.Pointer {
			return b, nil
		}
		rv := reflect.New(target).Elem()
		if t.T == abi.UintTy {
			rv.SetUint(b.Uint64())
		} else {
			rv.SetInt(b.Int64())
		}

		return rv.Interface(), nil
	case abi.BoolTy:
		switch b := v.(type) {
		case bool:
			return b, nil
		case string:
			return strconv.ParseBool(b)
		}
	case abi.StringTy:
		if s, ok := v.(string); ok {
			return s, nil
		}

		return fmt.Sprint(v), nil
	case abi.AddressTy:
		switch a := v.(type) {
		case common.Address:
			return a, nil
		case string:
			return ParseAddress(a)
		}
	case abi.BytesTy:
		return toBytes(v)
	case abi.FixedBytesTy, abi.HashTy:
		raw, err := toBytes(v)
		if err != nil {
			return nil, err
		}
		if len(raw) > target.Len() {
			return nil, fmt.Errorf("%d bytes do not fit %s", len(raw), t.String())
		}
		rv := reflect.New(target).Elem()
		reflect.Copy(rv, reflect.ValueOf(common.LeftPadBytes(raw, target.Len())))

		return rv.Interface(), nil
	case abi.SliceTy, abi.ArrayTy:
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			break
		}
		var out reflect.Value
		if t.T == abi.SliceTy {
			out = reflect.MakeSlice(target, rv.Len(), rv.Len())
		} else {
			if rv.Len() != t.Size {
				return nil, fmt.Errorf("%s needs %d elements, got %d", t.String(), t.Size, rv.Len())
			}
			out = reflect.New(target).Elem()
		}
		for i := range rv.Len() {
			e, err := convertABIValue(*t.Elem, rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			out.Index(i).Set(reflect.ValueOf(e))
		}

		return out.Interface(), nil
	default:
		// Tuples and functions are passed through for the packer to validate.
		return v, nil
	}

	return nil, fmt.Errorf("cannot use %T as %s", v, t.String())
}

// toBig converts integers, decimal or 0x hex strings and json numbers to a big.Int.
func toBig(v any) (*big.Int, error) {
	switch n := v.(type) {
	case nil:
		return new(big.Int), nil
	case *big.Int:
		return new(big.Int).Set(n), nil
	case big.Int:
		return new(big.Int).Set(&n), nil
	case *hexutil.Big:
		return new(big.Int).Set(n.ToInt()), nil
	case hexutil.Big:
		return new(big.Int).Set(n.ToInt()), nil
	case json.Number:
		return toBig(n.String())
	case string:
		b, ok := new(big.Int).SetString(n, 0)
		if !ok {
			return nil, fmt.Errorf("invalid number %q", n)
		}

		return b, nil
	case float64:
		if n != float64(int64(n)) {
			return nil, fmt.Errorf("invalid integer %v", n)
		}

		return big.NewInt(int64(n)), nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return big.NewInt(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return new(big.Int).SetUint64(rv.Uint()), nil
	default:
		return nil, fmt.Errorf("cannot convert %T to an integer", v)
	}
}

func toBytes(v any) ([]byte, error) {
	switch b := v.(type) {
	case []byte:
		return b, nil
	case hexutil.Bytes:
		return b, nil
	case common.Hash:
		return b.Bytes(), nil
	case string:
		return hexutil.Decode(b)
	default:
		return nil, fmt.Errorf("cannot convert %T to bytes", v)
	}
}
