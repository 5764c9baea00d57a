package registry

import (
	"bytes"
	"encoding"
	"encoding/json"
	"fmt"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/suzuki-shunsuke/go-convmap/convmap"
)

type anything struct{}

func (anything) MarshalJSON() ([]byte, error) {
	return []byte(`"<anything>"`), nil
}

// Anything can be placed anywhere inside a parameter pattern and matches any value at that
// position. A pattern that contains it never counts as an exact match.
var Anything any = anything{}

// Canonical converts v into the comparable form used by matchers: maps with string keys, []any
// slices, strings, bools and nil. Numbers become decimal strings, byte slices and arrays become
// 0x-prefixed hex, and 0x-prefixed strings are lower-cased so that checksummed and plain
// addresses compare equal.
func Canonical(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case anything:
		return x
	case string:
		return canonicalString(x)
	case bool:
		return x
	case json.Number:
		return x.String()
	case json.RawMessage:
		return canonicalJSON(x)
	case *big.Int:
		if x == nil {
			return nil
		}

		return x.String()
	case []byte:
		return hexutil.Encode(x)
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = Canonical(e)
		}

		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = Canonical(e)
		}

		return out
	case encoding.TextMarshaler:
		if isNilPointer(v) {
			return nil
		}
		text, err := x.MarshalText()
		if err == nil {
			return canonicalString(string(text))
		}
	}

	return canonicalReflect(reflect.ValueOf(v))
}

func canonicalReflect(rv reflect.Value) any {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil
		}

		return Canonical(rv.Elem().Interface())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64)
	case reflect.Bool:
		return rv.Bool()
	case reflect.String:
		return canonicalString(rv.String())
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return []any{}
		}
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			raw := make([]byte, rv.Len())
			for i := range rv.Len() {
				raw[i] = byte(rv.Index(i).Uint())
			}

			return hexutil.Encode(raw)
		}
		out := make([]any, rv.Len())
		for i := range rv.Len() {
			out[i] = Canonical(rv.Index(i).Interface())
		}

		return out
	case reflect.Map:
		converted, err := convmap.Convert(rv.Interface(), nil)
		if err != nil {
			return fmt.Sprint(rv.Interface())
		}
		if m, ok := converted.(map[string]any); ok {
			return Canonical(m)
		}

		return canonicalJSONValue(converted)
	case reflect.Struct:
		return canonicalJSONValue(rv.Interface())
	case reflect.Invalid:
		return nil
	default:
		return fmt.Sprint(rv.Interface())
	}
}

// canonicalJSONValue round trips v through encoding/json so that struct field names and custom
// marshalers are honoured.
func canonicalJSONValue(v any) any {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}

	return canonicalJSON(raw)
}

func canonicalJSON(raw []byte) any {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var decoded any
	if err := dec.Decode(&decoded); err != nil {
		return string(raw)
	}

	return Canonical(decoded)
}

func canonicalString(s string) string {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return strings.ToLower(s)
	}

	return s
}

func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)

	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

// Compare scores value against pattern. Both are expected in canonical form.
//
// Exact is returned when the two are identical, Partial when pattern is a subset of value (map
// keys missing from the pattern, trailing slice elements, or Anything placeholders) and NoMatch
// otherwise. A nil pattern scores Wildcard. A list pattern also matches a byte value, which is
// canonical hex, element by element, so uint8[] arguments can be given as numbers or as hex.
func Compare(pattern, value any) Score {
	if pattern == nil {
		return Wildcard
	}
	if exact(pattern, value) {
		return Exact
	}
	if subset(pattern, value) {
		return Partial
	}

	return NoMatch
}

func exact(pattern, value any) bool {
	switch p := pattern.(type) {
	case anything:
		return false
	case map[string]any:
		v, ok := value.(map[string]any)
		if !ok || len(v) != len(p) {
			return false
		}
		for k, pe := range p {
			ve, found := v[k]
			if !found || !exact(pe, ve) {
				return false
			}
		}

		return true
	case []any:
		v, ok := asList(value)
		if !ok || len(v) != len(p) {
			return false
		}
		for i := range p {
			if !exact(p[i], v[i]) {
				return false
			}
		}

		return true
	default:
		return pattern == value
	}
}

func subset(pattern, value any) bool {
	switch p := pattern.(type) {
	case anything:
		return true
	case map[string]any:
		v, ok := value.(map[string]any)
		if !ok {
			return false
		}
		for k, pe := range p {
			ve, found := v[k]
			if !found || !subset(pe, ve) {
				return false
			}
		}

		return true
	case []any:
		v, ok := asList(value)
		if !ok || len(p) > len(v) {
			return false
		}
		for i := range p {
			if !subset(p[i], v[i]) {
				return false
			}
		}

		return true
	default:
		return pattern == value
	}
}

// asList returns value as a list. Hex byte strings expand to their decimal byte values.
func asList(value any) ([]any, bool) {
	switch v := value.(type) {
	case []any:
		return v, true
	case string:
		if !strings.HasPrefix(v, "0x") {
			return nil, false
		}
		raw, err := hexutil.Decode(v)
		if err != nil {
			return nil, false
		}
		out := make([]any, len(raw))
		for i, b := range raw {
			out[i] = strconv.FormatUint(uint64(b), 10)
		}

		return out, true
	}

	return nil, false
}
