// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ChainPulse Contributors

package stellarchain

import (
	"fmt"
	"strings"

	"github.com/stellar/go/xdr"

	"github.com/chainpulse/chainpulse/internal/model"
)

// Spec is the Stellar contract spec: the ScSpec entries embedded in the
// contract WASM, folded into the function table the filter matches
// against. Loaded eagerly alongside addresses; immutable during
// filtering.
type Spec struct {
	Entries   []xdr.ScSpecEntry
	Functions []ContractFunction
}

// ContractFunction is one spec-declared entry point.
type ContractFunction struct {
	Name      string
	Inputs    []ContractInput
	Signature string
}

// ContractInput is one declared function parameter.
type ContractInput struct {
	Name string
	Kind string
}

// NewSpec folds raw spec entries into the formatted function table.
func NewSpec(entries []xdr.ScSpecEntry) *Spec {
	spec := &Spec{Entries: entries}
	for _, entry := range entries {
		if entry.Kind != xdr.ScSpecEntryKindScSpecEntryFunctionV0 || entry.FunctionV0 == nil {
			continue
		}
		fn := entry.FunctionV0
		inputs := make([]ContractInput, len(fn.Inputs))
		types := make([]string, len(fn.Inputs))
		for i, input := range fn.Inputs {
			kind := SpecTypeTag(input.Type)
			inputs[i] = ContractInput{Name: string(input.Name), Kind: kind}
			types[i] = kind
		}
		spec.Functions = append(spec.Functions, ContractFunction{
			Name:      string(fn.Name),
			Inputs:    inputs,
			Signature: fmt.Sprintf("%s(%s)", string(fn.Name), strings.Join(types, ",")),
		})
	}
	return spec
}

// ChainType marks the spec as Stellar for the model.ContractSpec
// interface.
func (s *Spec) ChainType() model.ChainType { return model.ChainStellar }

// SpecTypeTag renders a declared spec type in the same notation runtime
// values produce, so declared and observed types compare directly.
func SpecTypeTag(def xdr.ScSpecTypeDef) string {
	switch def.Type {
	case xdr.ScSpecTypeScSpecTypeBool:
		return "Bool"
	case xdr.ScSpecTypeScSpecTypeVoid:
		return "Void"
	case xdr.ScSpecTypeScSpecTypeU32:
		return "U32"
	case xdr.ScSpecTypeScSpecTypeI32:
		return "I32"
	case xdr.ScSpecTypeScSpecTypeU64:
		return "U64"
	case xdr.ScSpecTypeScSpecTypeI64:
		return "I64"
	case xdr.ScSpecTypeScSpecTypeU128:
		return "U128"
	case xdr.ScSpecTypeScSpecTypeI128:
		return "I128"
	case xdr.ScSpecTypeScSpecTypeU256:
		return "U256"
	case xdr.ScSpecTypeScSpecTypeI256:
		return "I256"
	case xdr.ScSpecTypeScSpecTypeBytes:
		return "Bytes"
	case xdr.ScSpecTypeScSpecTypeBytesN:
		if def.BytesN != nil {
			return fmt.Sprintf("Bytes%d", def.BytesN.N)
		}
		return "Bytes"
	case xdr.ScSpecTypeScSpecTypeString:
		return "String"
	case xdr.ScSpecTypeScSpecTypeSymbol:
		return "Symbol"
	case xdr.ScSpecTypeScSpecTypeAddress:
		return "Address"
	case xdr.ScSpecTypeScSpecTypeTimepoint:
		return "Timepoint"
	case xdr.ScSpecTypeScSpecTypeDuration:
		return "Duration"
	case xdr.ScSpecTypeScSpecTypeVec:
		if def.Vec != nil {
			return "Vec<" + SpecTypeTag(def.Vec.ElementType) + ">"
		}
		return "Vec<Void>"
	case xdr.ScSpecTypeScSpecTypeMap:
		if def.Map != nil {
			return "Map<" + SpecTypeTag(def.Map.KeyType) + "," + SpecTypeTag(def.Map.ValueType) + ">"
		}
		return "Map<String,Void>"
	case xdr.ScSpecTypeScSpecTypeTuple:
		if def.Tuple != nil {
			tags := make([]string, len(def.Tuple.ValueTypes))
			for i, t := range def.Tuple.ValueTypes {
				tags[i] = SpecTypeTag(t)
			}
			return "Tuple<" + strings.Join(tags, ",") + ">"
		}
		return "Tuple<Void>"
	case xdr.ScSpecTypeScSpecTypeUdt:
		if def.Udt != nil {
			return string(def.Udt.Name)
		}
		return "Void"
	default:
		return "Void"
	}
}

// lenientTypePrefixes are composite tags matched by base shape only: a
// declared Map<Request> may observe Map<String,Address,U32> at runtime
// once UDTs are flattened.
var lenientTypePrefixes = []string{"Vec<", "Map<", "Tuple<"}

// TypesCompatible reports whether a declared input type admits an
// observed runtime type. Composites wildcard-match on their base shape;
// scalars require exact equality.
func TypesCompatible(declared, observed string) bool {
	for _, prefix := range lenientTypePrefixes {
		if strings.HasPrefix(declared, prefix) && strings.HasPrefix(observed, prefix) {
			return true
		}
	}
	return declared == observed
}

// FindFunction resolves a function by name, arity, and per-argument type
// compatibility against the observed argument kinds.
func (s *Spec) FindFunction(name string, argKinds []string) (ContractFunction, bool) {
	for _, fn := range s.Functions {
		if fn.Name != name || len(fn.Inputs) != len(argKinds) {
			continue
		}
		compatible := true
		for i, input := range fn.Inputs {
			if !TypesCompatible(input.Kind, argKinds[i]) {
				compatible = false
				break
			}
		}
		if compatible {
			return fn, true
		}
	}
	return ContractFunction{}, false
}
