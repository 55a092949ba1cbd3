// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ChainPulse Contributors

// Package stellarchain implements the Stellar/Soroban side of the match
// pipeline: conversion of XDR ScVal payloads into a uniform value tree,
// contract-spec driven signature resolution, the condition evaluator for
// Soroban types, and the per-ledger filter.
package stellarchain

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"sort"
	"strings"

	"github.com/samber/oops"
	"github.com/stellar/go/strkey"
	"github.com/stellar/go/xdr"

	"github.com/chainpulse/chainpulse/internal/model"
)

// ValueKind enumerates the Soroban type lattice exposed to expressions.
type ValueKind int

const (
	KindBool ValueKind = iota
	KindVoid
	KindU32
	KindI32
	KindU64
	KindI64
	KindU128
	KindI128
	KindU256
	KindI256
	KindBytes
	KindString
	KindSymbol
	KindVec
	KindMap
	KindTuple
	KindAddress
	KindTimepoint
	KindDuration
	KindUdt
)

// Value is the internal tree a decoded ScVal folds into. Numbers wider
// than 64 bits are carried as decimal strings.
type Value struct {
	Kind ValueKind

	Bool    bool
	U64     uint64
	I64     int64
	Big     string // U128/I128/U256/I256 decimal rendering
	Bytes   []byte
	Str     string // String, Symbol, Address, Udt name
	Entries []Value
	MapVal  map[string]Value
}

// FromScVal converts a Stellar contract value into the internal tree.
// Unknown variants fold to Void.
func FromScVal(val xdr.ScVal) Value {
	switch val.Type {
	case xdr.ScValTypeScvBool:
		return Value{Kind: KindBool, Bool: bool(*val.B)}
	case xdr.ScValTypeScvVoid:
		return Value{Kind: KindVoid}
	case xdr.ScValTypeScvU32:
		return Value{Kind: KindU32, U64: uint64(*val.U32)}
	case xdr.ScValTypeScvI32:
		return Value{Kind: KindI32, I64: int64(*val.I32)}
	case xdr.ScValTypeScvU64:
		return Value{Kind: KindU64, U64: uint64(*val.U64)}
	case xdr.ScValTypeScvI64:
		return Value{Kind: KindI64, I64: int64(*val.I64)}
	case xdr.ScValTypeScvTimepoint:
		return Value{Kind: KindTimepoint, U64: uint64(*val.Timepoint)}
	case xdr.ScValTypeScvDuration:
		return Value{Kind: KindDuration, U64: uint64(*val.Duration)}
	case xdr.ScValTypeScvU128:
		return Value{Kind: KindU128, Big: CombineU128(*val.U128)}
	case xdr.ScValTypeScvI128:
		return Value{Kind: KindI128, Big: CombineI128(*val.I128)}
	case xdr.ScValTypeScvU256:
		return Value{Kind: KindU256, Big: CombineU256(*val.U256)}
	case xdr.ScValTypeScvI256:
		return Value{Kind: KindI256, Big: CombineI256(*val.I256)}
	case xdr.ScValTypeScvBytes:
		return Value{Kind: KindBytes, Bytes: []byte(*val.Bytes)}
	case xdr.ScValTypeScvString:
		return Value{Kind: KindString, Str: string(*val.Str)}
	case xdr.ScValTypeScvSymbol:
		return Value{Kind: KindSymbol, Str: string(*val.Sym)}
	case xdr.ScValTypeScvVec:
		if val.Vec == nil || *val.Vec == nil {
			return Value{Kind: KindVec}
		}
		entries := make([]Value, 0, len(**val.Vec))
		for _, item := range **val.Vec {
			entries = append(entries, FromScVal(item))
		}
		return Value{Kind: KindVec, Entries: entries}
	case xdr.ScValTypeScvMap:
		out := Value{Kind: KindMap, MapVal: map[string]Value{}}
		if val.Map == nil || *val.Map == nil {
			return out
		}
		for _, entry := range **val.Map {
			key := FromScVal(entry.Key)
			keyStr := key.Str
			if key.Kind != KindString && key.Kind != KindSymbol {
				keyStr = key.String()
			}
			out.MapVal[keyStr] = FromScVal(entry.Val)
		}
		return out
	case xdr.ScValTypeScvAddress:
		return Value{Kind: KindAddress, Str: EncodeScAddress(*val.Address)}
	default:
		return Value{Kind: KindVoid}
	}
}

// EncodeScAddress renders an ScAddress as its strkey form.
func EncodeScAddress(addr xdr.ScAddress) string {
	switch addr.Type {
	case xdr.ScAddressTypeScAddressTypeAccount:
		if addr.AccountId != nil {
			if ed, ok := addr.AccountId.GetEd25519(); ok {
				if s, err := strkey.Encode(strkey.VersionByteAccountID, ed[:]); err == nil {
					return s
				}
			}
		}
	case xdr.ScAddressTypeScAddressTypeContract:
		if addr.ContractId != nil {
			if s, err := strkey.Encode(strkey.VersionByteContract, addr.ContractId[:]); err == nil {
				return s
			}
		}
	}
	return ""
}

// CombineU128 recombines the two 64-bit limbs of an unsigned 128-bit value.
func CombineU128(parts xdr.UInt128Parts) string {
	v := new(big.Int).SetUint64(uint64(parts.Hi))
	v.Lsh(v, 64)
	v.Or(v, new(big.Int).SetUint64(uint64(parts.Lo)))
	return v.String()
}

// CombineI128 recombines a signed 128-bit value; the high limb carries the
// sign.
func CombineI128(parts xdr.Int128Parts) string {
	v := big.NewInt(int64(parts.Hi))
	v.Lsh(v, 64)
	v.Add(v, new(big.Int).SetUint64(uint64(parts.Lo)))
	return v.String()
}

// CombineU256 recombines the four 64-bit limbs of an unsigned 256-bit
// value.
func CombineU256(parts xdr.UInt256Parts) string {
	v := new(big.Int).SetUint64(uint64(parts.HiHi))
	for _, limb := range []uint64{uint64(parts.HiLo), uint64(parts.LoHi), uint64(parts.LoLo)} {
		v.Lsh(v, 64)
		v.Or(v, new(big.Int).SetUint64(limb))
	}
	return v.String()
}

// CombineI256 recombines a signed 256-bit value with sign extension from
// the highest limb.
func CombineI256(parts xdr.Int256Parts) string {
	v := big.NewInt(int64(parts.HiHi))
	for _, limb := range []uint64{uint64(parts.HiLo), uint64(parts.LoHi), uint64(parts.LoLo)} {
		v.Lsh(v, 64)
		v.Add(v, new(big.Int).SetUint64(limb))
	}
	return v.String()
}

// TypeTag renders the runtime type of a value in the contract-spec
// notation ("U128", "Vec<Address>", "Map<String,U32>", ...).
func (v Value) TypeTag() string {
	switch v.Kind {
	case KindBool:
		return "Bool"
	case KindVoid:
		return "Void"
	case KindU32:
		return "U32"
	case KindI32:
		return "I32"
	case KindU64:
		return "U64"
	case KindI64:
		return "I64"
	case KindU128:
		return "U128"
	case KindI128:
		return "I128"
	case KindU256:
		return "U256"
	case KindI256:
		return "I256"
	case KindBytes:
		if len(v.Bytes) == 0 {
			return "Bytes"
		}
		return fmt.Sprintf("Bytes%d", len(v.Bytes))
	case KindString:
		return "String"
	case KindSymbol:
		return "Symbol"
	case KindVec:
		return "Vec<" + dedupedElementTag(v.Entries) + ">"
	case KindMap:
		values := make([]Value, 0, len(v.MapVal))
		for _, key := range sortedKeys(v.MapVal) {
			values = append(values, v.MapVal[key])
		}
		return "Map<String," + dedupedElementTag(values) + ">"
	case KindTuple:
		tags := make([]string, len(v.Entries))
		for i, e := range v.Entries {
			tags[i] = e.TypeTag()
		}
		if len(tags) == 0 {
			return "Tuple<Void>"
		}
		return "Tuple<" + strings.Join(tags, ",") + ">"
	case KindAddress:
		return "Address"
	case KindTimepoint:
		return "Timepoint"
	case KindDuration:
		return "Duration"
	case KindUdt:
		return v.Str
	default:
		return "Void"
	}
}

// dedupedElementTag collapses homogeneous element types to one tag and
// renders heterogeneous ones as a comma-joined union.
func dedupedElementTag(entries []Value) string {
	if len(entries) == 0 {
		return "Void"
	}
	var tags []string
	seen := map[string]bool{}
	for _, e := range entries {
		tag := e.TypeTag()
		if !seen[tag] {
			seen[tag] = true
			tags = append(tags, tag)
		}
	}
	return strings.Join(tags, ",")
}

func sortedKeys(m map[string]Value) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// String renders the value the way parameter entries carry it: scalars
// bare, Vec as [a,b], Map as {k:v}, Tuple as (a,b).
func (v Value) String() string {
	switch v.Kind {
	case KindBool:
		return fmt.Sprintf("%t", v.Bool)
	case KindVoid:
		return "null"
	case KindU32, KindU64, KindTimepoint, KindDuration:
		return fmt.Sprintf("%d", v.U64)
	case KindI32, KindI64:
		return fmt.Sprintf("%d", v.I64)
	case KindU128, KindI128, KindU256, KindI256:
		return v.Big
	case KindBytes:
		return hex.EncodeToString(v.Bytes)
	case KindString, KindSymbol, KindAddress, KindUdt:
		return v.Str
	case KindVec:
		parts := make([]string, len(v.Entries))
		for i, e := range v.Entries {
			parts[i] = e.String()
		}
		return "[" + strings.Join(parts, ",") + "]"
	case KindMap:
		keys := sortedKeys(v.MapVal)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + ":" + v.MapVal[k].String()
		}
		return "{" + strings.Join(parts, ",") + "}"
	case KindTuple:
		parts := make([]string, len(v.Entries))
		for i, e := range v.Entries {
			parts[i] = e.String()
		}
		return "(" + strings.Join(parts, ",") + ")"
	default:
		return "null"
	}
}

// ToJSON maps the value into a JSON-marshalable tree. Wide integers keep
// a {type, value} wrapper so their width survives the round trip.
func (v Value) ToJSON() any {
	switch v.Kind {
	case KindBool:
		return v.Bool
	case KindVoid:
		return nil
	case KindU32, KindU64, KindTimepoint, KindDuration:
		return v.U64
	case KindI32, KindI64:
		return v.I64
	case KindU128, KindI128, KindU256, KindI256:
		return map[string]any{"type": v.TypeTag(), "value": v.Big}
	case KindBytes:
		return hex.EncodeToString(v.Bytes)
	case KindString, KindSymbol, KindAddress, KindUdt:
		return v.Str
	case KindVec, KindTuple:
		out := make([]any, len(v.Entries))
		for i, e := range v.Entries {
			out[i] = e.ToJSON()
		}
		return out
	case KindMap:
		out := make(map[string]any, len(v.MapVal))
		for k, e := range v.MapVal {
			out[k] = e.ToJSON()
		}
		return out
	default:
		return nil
	}
}

// ToParamEntry renders the value as a chain-agnostic parameter entry.
func (v Value) ToParamEntry(name string, indexed bool) model.ParamEntry {
	return model.ParamEntry{
		Name:    name,
		Value:   v.String(),
		Kind:    v.TypeTag(),
		Indexed: indexed,
	}
}

// DecodeScValBase64 parses one base64 XDR ScVal payload.
func DecodeScValBase64(encoded string) (xdr.ScVal, error) {
	var val xdr.ScVal
	if err := xdr.SafeUnmarshalBase64(encoded, &val); err != nil {
		return val, oops.Code("STELLAR_XDR_DECODE").Wrapf(err, "unmarshalling ScVal XDR")
	}
	return val, nil
}
