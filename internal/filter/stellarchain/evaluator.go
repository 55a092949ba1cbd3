// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ChainPulse Contributors

package stellarchain

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/chainpulse/chainpulse/internal/expr"
	"github.com/chainpulse/chainpulse/internal/filter/evmchain"
	"github.com/chainpulse/chainpulse/internal/model"
)

var unsignedKinds = map[string]bool{"u32": true, "u64": true, "u128": true, "u256": true, "timepoint": true, "duration": true}
var signedKinds = map[string]bool{"i32": true, "i64": true, "i128": true, "i256": true}

// Evaluator implements expr.ConditionEvaluator for Soroban parameter
// kinds. Symbol compares like String; Address normalises like the EVM
// side; Vec and Map compare structurally when their rendering is valid
// JSON and element-wise on the bare rendering otherwise.
type Evaluator struct {
	args []model.ParamEntry
}

// NewEvaluator builds an evaluator over the given decoded parameters.
func NewEvaluator(args []model.ParamEntry) *Evaluator {
	return &Evaluator{args: args}
}

// GetBaseParam resolves a base variable from the parameter entries.
func (ev *Evaluator) GetBaseParam(name string) (string, string, error) {
	for _, p := range ev.args {
		if p.Name == name {
			return p.Value, p.Kind, nil
		}
	}
	return "", "", expr.VariableNotFoundf("base parameter not found: %s", name)
}

// GetKindFromJSONValue derives a Soroban kind tag from a traversed JSON
// node. Strings that parse as strkeys read as Address.
func (ev *Evaluator) GetKindFromJSONValue(v any) string {
	switch val := v.(type) {
	case string:
		if IsAddress(val) {
			return "Address"
		}
		return "String"
	case json.Number:
		s := val.String()
		if strings.Contains(s, ".") {
			return "F64"
		}
		if strings.HasPrefix(s, "-") {
			return "I64"
		}
		return "U64"
	case bool:
		return "Bool"
	case []any:
		return "Vec"
	case map[string]any:
		return "Map"
	default:
		return "Void"
	}
}

// CompareFinalValues routes the resolved value to the comparator for its
// kind. Parameterised tags compare on their base name ("Vec<Address>"
// routes as Vec, "Bytes32" as Bytes).
func (ev *Evaluator) CompareFinalValues(kind, value string, op expr.ComparisonOperator, lit expr.Literal) (bool, error) {
	base := strings.ToLower(baseKind(kind))

	switch {
	case unsignedKinds[base]:
		return ev.compareUnsigned(value, op, lit)
	case signedKinds[base]:
		return ev.compareSigned(value, op, lit)
	}

	switch base {
	case "bool":
		return ev.compareBool(value, op, lit)
	case "string", "symbol", "bytes":
		return ev.compareString(value, op, lit)
	case "f64":
		return ev.compareDecimal(value, op, lit)
	case "address":
		return ev.compareAddress(value, op, lit)
	case "vec":
		return ev.compareVec(value, op, lit)
	case "map":
		return ev.compareMap(value, op, lit)
	case "tuple":
		return ev.compareTuple(value, op, lit)
	case "void":
		return ev.compareVoid(op, lit)
	default:
		// UDT values render as opaque strings.
		return ev.compareString(value, op, lit)
	}
}

// baseKind strips a parameterisation ("Vec<U32>" -> "Vec") and a BytesN
// width ("Bytes32" -> "Bytes").
func baseKind(kind string) string {
	if idx := strings.Index(kind, "<"); idx >= 0 {
		return kind[:idx]
	}
	if strings.HasPrefix(strings.ToLower(kind), "bytes") {
		return "Bytes"
	}
	return kind
}

func numericLiteralText(lit expr.Literal, what string) (string, error) {
	switch lit.Kind {
	case expr.LiteralNumber, expr.LiteralStr:
		return lit.Text, nil
	default:
		return "", expr.TypeMismatchf("expected number or string literal for %s comparison, found %s", what, lit)
	}
}

func (ev *Evaluator) compareUnsigned(left string, op expr.ComparisonOperator, lit expr.Literal) (bool, error) {
	l, err := evmchain.StringToU256(left)
	if err != nil {
		return false, expr.ParseErrorf("parsing %q as unsigned integer: %v", left, err)
	}
	rightText, err := numericLiteralText(lit, "unsigned integer")
	if err != nil {
		return false, err
	}
	r, err := evmchain.StringToU256(rightText)
	if err != nil {
		return false, expr.ParseErrorf("parsing %q as unsigned integer: %v", rightText, err)
	}
	return expr.CompareWith(l.Cmp(r), op)
}

func (ev *Evaluator) compareSigned(left string, op expr.ComparisonOperator, lit expr.Literal) (bool, error) {
	l, err := evmchain.StringToI256(left)
	if err != nil {
		return false, expr.ParseErrorf("parsing %q as signed integer: %v", left, err)
	}
	rightText, err := numericLiteralText(lit, "signed integer")
	if err != nil {
		return false, err
	}
	r, err := evmchain.StringToI256(rightText)
	if err != nil {
		return false, expr.ParseErrorf("parsing %q as signed integer: %v", rightText, err)
	}
	return expr.CompareWith(l.Cmp(r), op)
}

func (ev *Evaluator) compareDecimal(left string, op expr.ComparisonOperator, lit expr.Literal) (bool, error) {
	l, err := decimal.NewFromString(left)
	if err != nil {
		return false, expr.ParseErrorf("parsing %q as decimal: %v", left, err)
	}
	rightText, err := numericLiteralText(lit, "decimal")
	if err != nil {
		return false, err
	}
	r, err := decimal.NewFromString(rightText)
	if err != nil {
		return false, expr.ParseErrorf("parsing %q as decimal: %v", rightText, err)
	}
	return expr.CompareWith(l.Cmp(r), op)
}

func (ev *Evaluator) compareBool(left string, op expr.ComparisonOperator, lit expr.Literal) (bool, error) {
	if lit.Kind != expr.LiteralBool {
		return false, expr.TypeMismatchf("expected bool literal for Bool comparison, found %s", lit)
	}
	var l bool
	switch strings.ToLower(strings.TrimSpace(left)) {
	case "true":
		l = true
	case "false":
		l = false
	default:
		return false, expr.ParseErrorf("parsing %q as bool", left)
	}
	switch op {
	case expr.Eq:
		return l == lit.Bool, nil
	case expr.Ne:
		return l != lit.Bool, nil
	default:
		return false, expr.UnsupportedOperatorf("operator %s not supported for Bool", op)
	}
}

func (ev *Evaluator) compareString(left string, op expr.ComparisonOperator, lit expr.Literal) (bool, error) {
	if lit.Kind != expr.LiteralStr {
		return false, expr.TypeMismatchf("expected string literal for String comparison, found %s", lit)
	}
	l := strings.ToLower(left)
	r := strings.ToLower(lit.Text)
	switch op {
	case expr.Eq:
		return l == r, nil
	case expr.Ne:
		return l != r, nil
	case expr.StartsWith:
		return strings.HasPrefix(l, r), nil
	case expr.EndsWith:
		return strings.HasSuffix(l, r), nil
	case expr.Contains:
		return strings.Contains(l, r), nil
	default:
		return false, expr.UnsupportedOperatorf("operator %s not supported for String", op)
	}
}

func (ev *Evaluator) compareAddress(left string, op expr.ComparisonOperator, lit expr.Literal) (bool, error) {
	if lit.Kind != expr.LiteralStr {
		return false, expr.TypeMismatchf("expected string literal for Address comparison, found %s", lit)
	}
	switch op {
	case expr.Eq:
		return SameAddress(left, lit.Text), nil
	case expr.Ne:
		return !SameAddress(left, lit.Text), nil
	default:
		return false, expr.UnsupportedOperatorf("operator %s not supported for Address", op)
	}
}

func (ev *Evaluator) compareVoid(op expr.ComparisonOperator, lit expr.Literal) (bool, error) {
	isNull := lit.Kind == expr.LiteralStr && strings.EqualFold(lit.Text, "null")
	switch op {
	case expr.Eq:
		return isNull, nil
	case expr.Ne:
		return !isNull, nil
	default:
		return false, expr.UnsupportedOperatorf("operator %s not supported for Void", op)
	}
}

// compareVec compares Vec values. JSON renderings (from path traversal)
// compare structurally via the shared array comparator; the bare
// "[a,b,c]" rendering of parameter entries falls back to element-wise
// comparison on the comma-split content.
func (ev *Evaluator) compareVec(left string, op expr.ComparisonOperator, lit expr.Literal) (bool, error) {
	if json.Valid([]byte(left)) {
		return evmchain.NewEvaluator(nil).CompareFinalValues("array", left, op, lit)
	}

	switch op {
	case expr.Eq, expr.Ne:
		if lit.Kind != expr.LiteralStr {
			return false, expr.TypeMismatchf("expected string literal for Vec comparison, found %s", lit)
		}
		equal := NormalizeSignature(left) == NormalizeSignature(lit.Text)
		if op == expr.Ne {
			return !equal, nil
		}
		return equal, nil
	case expr.Contains:
		if lit.Kind == expr.LiteralBool {
			return false, expr.TypeMismatchf("expected string or number literal for Vec contains, found %s", lit)
		}
		body := strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(left), "["), "]")
		for _, element := range strings.Split(body, ",") {
			if strings.EqualFold(strings.TrimSpace(element), lit.Text) {
				return true, nil
			}
		}
		return false, nil
	default:
		return false, expr.UnsupportedOperatorf("operator %s not supported for Vec", op)
	}
}

// compareMap mirrors compareVec for the "{k:v,...}" rendering.
func (ev *Evaluator) compareMap(left string, op expr.ComparisonOperator, lit expr.Literal) (bool, error) {
	if json.Valid([]byte(left)) {
		return evmchain.NewEvaluator(nil).CompareFinalValues("map", left, op, lit)
	}

	switch op {
	case expr.Eq, expr.Ne:
		if lit.Kind != expr.LiteralStr {
			return false, expr.TypeMismatchf("expected string literal for Map comparison, found %s", lit)
		}
		equal := NormalizeSignature(left) == NormalizeSignature(lit.Text)
		if op == expr.Ne {
			return !equal, nil
		}
		return equal, nil
	case expr.Contains:
		if lit.Kind == expr.LiteralBool {
			return false, expr.TypeMismatchf("expected string or number literal for Map contains, found %s", lit)
		}
		body := strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(left), "{"), "}")
		for _, entry := range strings.Split(body, ",") {
			value := entry
			if idx := strings.Index(entry, ":"); idx >= 0 {
				value = entry[idx+1:]
			}
			if strings.EqualFold(strings.TrimSpace(value), lit.Text) {
				return true, nil
			}
		}
		return false, nil
	default:
		return false, expr.UnsupportedOperatorf("operator %s not supported for Map", op)
	}
}

func (ev *Evaluator) compareTuple(left string, op expr.ComparisonOperator, lit expr.Literal) (bool, error) {
	return evmchain.NewEvaluator(nil).CompareFinalValues("tuple", left, op, lit)
}
