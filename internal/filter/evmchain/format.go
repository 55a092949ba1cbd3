// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ChainPulse Contributors

package evmchain

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"reflect"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// FormatDecodedValue renders one ABI-decoded Go value into the string
// form the parameter model carries: addresses as lowercase 0x-hex, ints
// as decimal, bytes as 0x-hex, arrays and maps as JSON, tuples as
// "(a,b,c)".
func FormatDecodedValue(v any) string {
	switch val := v.(type) {
	case common.Address:
		return strings.ToLower(val.Hex())
	case common.Hash:
		return strings.ToLower(val.Hex())
	case *big.Int:
		return val.String()
	case bool:
		return fmt.Sprintf("%t", val)
	case string:
		return val
	case []byte:
		return "0x" + hex.EncodeToString(val)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			buf := make([]byte, rv.Len())
			reflect.Copy(reflect.ValueOf(buf), rv)
			return "0x" + hex.EncodeToString(buf)
		}
		return marshalComposite(v)
	case reflect.Slice:
		return marshalComposite(v)
	case reflect.Struct:
		// Decoded solidity tuples arrive as anonymous structs.
		parts := make([]string, rv.NumField())
		for i := range rv.NumField() {
			parts[i] = FormatDecodedValue(rv.Field(i).Interface())
		}
		return "(" + strings.Join(parts, ",") + ")"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return fmt.Sprintf("%d", rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return fmt.Sprintf("%d", rv.Uint())
	default:
		return fmt.Sprintf("%v", v)
	}
}

// marshalComposite renders slices and nested composites as compact JSON.
func marshalComposite(v any) string {
	out, err := json.Marshal(toJSONValue(v))
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(out)
}

// toJSONValue maps a decoded value into a JSON-marshalable tree. Numbers
// become json.RawMessage so 256-bit values stay unquoted and exact.
func toJSONValue(v any) any {
	switch val := v.(type) {
	case common.Address:
		return strings.ToLower(val.Hex())
	case common.Hash:
		return strings.ToLower(val.Hex())
	case *big.Int:
		return json.RawMessage(val.String())
	case bool, string:
		return val
	case []byte:
		return "0x" + hex.EncodeToString(val)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			buf := make([]byte, rv.Len())
			reflect.Copy(reflect.ValueOf(buf), rv)
			return "0x" + hex.EncodeToString(buf)
		}
		fallthrough
	case reflect.Slice:
		out := make([]any, rv.Len())
		for i := range rv.Len() {
			out[i] = toJSONValue(rv.Index(i).Interface())
		}
		return out
	case reflect.Struct:
		out := make([]any, rv.NumField())
		for i := range rv.NumField() {
			out[i] = toJSONValue(rv.Field(i).Interface())
		}
		return out
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return json.RawMessage(fmt.Sprintf("%d", rv.Int()))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return json.RawMessage(fmt.Sprintf("%d", rv.Uint()))
	default:
		return fmt.Sprintf("%v", v)
	}
}

// formatTopicValue decodes an indexed event argument from its topic word.
// Dynamic types (string, bytes, slices, tuples) are stored as the keccak
// hash of the value, so the topic hex is the best available rendering.
func formatTopicValue(t abi.Type, topic common.Hash) string {
	switch t.T {
	case abi.AddressTy:
		return strings.ToLower(common.BytesToAddress(topic.Bytes()).Hex())
	case abi.UintTy:
		return new(big.Int).SetBytes(topic.Bytes()).String()
	case abi.IntTy:
		v := new(big.Int).SetBytes(topic.Bytes())
		if v.Bit(255) == 1 {
			v.Sub(v, new(big.Int).Lsh(big.NewInt(1), 256))
		}
		return v.String()
	case abi.BoolTy:
		if topic.Big().Sign() != 0 {
			return "true"
		}
		return "false"
	case abi.FixedBytesTy:
		return "0x" + hex.EncodeToString(topic.Bytes()[:t.Size])
	default:
		return strings.ToLower(topic.Hex())
	}
}

// canonicalSignature builds "name(type1,type2,...)" from ABI arguments.
func canonicalSignature(name string, args abi.Arguments) string {
	types := make([]string, len(args))
	for i, a := range args {
		types[i] = a.Type.String()
	}
	return name + "(" + strings.Join(types, ",") + ")"
}
