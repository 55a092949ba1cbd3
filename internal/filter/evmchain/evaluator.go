// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ChainPulse Contributors

package evmchain

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/chainpulse/chainpulse/internal/expr"
	"github.com/chainpulse/chainpulse/internal/model"
)

var unsignedIntegerKinds = map[string]bool{
	"uint8": true, "uint16": true, "uint32": true, "uint64": true,
	"uint128": true, "uint256": true, "number": true,
}

var signedIntegerKinds = map[string]bool{
	"int8": true, "int16": true, "int32": true, "int64": true,
	"int128": true, "int256": true,
}

// arrayKindPattern accepts the generic "array" tag plus any solidity
// element type suffixed with [] ("uint256[]", "tuple[]", "bytes32[]", ...).
var arrayKindPattern = regexp.MustCompile(`^([a-z0-9]+(\[\d*\])*)\[\]$`)

func isArrayKind(kind string) bool {
	return kind == "array" || arrayKindPattern.MatchString(kind)
}

var hexDigits = regexp.MustCompile(`^[0-9a-fA-F]+$`)

// Evaluator implements expr.ConditionEvaluator for EVM parameter kinds.
// The argument slice is borrowed for the duration of one evaluation.
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

// GetKindFromJSONValue derives an EVM kind tag from a traversed JSON node.
// Address detection is shape-based (0x + 40 hex); 0x + 64 hex reads as
// bytes32, any other 0x-hex as bytes; a parseable number containing '.'
// reads as fixed.
func (ev *Evaluator) GetKindFromJSONValue(v any) string {
	switch val := v.(type) {
	case string:
		lower := strings.ToLower(val)
		if strings.HasPrefix(lower, "0x") && hexDigits.MatchString(val[2:]) {
			switch len(val) {
			case 42:
				return "address"
			case 66:
				return "bytes32"
			default:
				return "bytes"
			}
		}
		if _, err := decimal.NewFromString(val); err == nil && strings.Contains(val, ".") {
			return "fixed"
		}
		return "string"
	case json.Number:
		s := val.String()
		if strings.Contains(s, ".") {
			return "fixed"
		}
		if strings.HasPrefix(s, "-") {
			return "int64"
		}
		return "number"
	case bool:
		return "bool"
	case []any:
		return "array"
	case map[string]any:
		return "map"
	default:
		return "null"
	}
}

// CompareFinalValues routes the resolved value to the comparator for its
// kind.
func (ev *Evaluator) CompareFinalValues(kind, value string, op expr.ComparisonOperator, lit expr.Literal) (bool, error) {
	k := strings.ToLower(kind)

	switch {
	case signedIntegerKinds[k]:
		return ev.compareI256(value, op, lit)
	case unsignedIntegerKinds[k]:
		return ev.compareU256(value, op, lit)
	case isArrayKind(k):
		return ev.compareArray(value, op, lit)
	}

	switch k {
	case "fixed", "ufixed":
		return ev.compareFixedPoint(value, op, lit)
	case "address":
		return ev.compareAddress(value, op, lit)
	case "string", "bytes", "bytes32":
		return ev.compareString(value, op, lit)
	case "bool":
		return ev.compareBoolean(value, op, lit)
	case "map":
		return ev.compareMap(value, op, lit)
	case "tuple":
		return ev.compareTuple(value, op, lit)
	default:
		return false, expr.TypeMismatchf("unsupported EVM parameter kind %q", kind)
	}
}

func numericLiteralText(lit expr.Literal, what string) (string, error) {
	switch lit.Kind {
	case expr.LiteralNumber, expr.LiteralStr:
		return lit.Text, nil
	default:
		return "", expr.TypeMismatchf("expected number or string literal for %s comparison, found %s", what, lit)
	}
}

func (ev *Evaluator) compareU256(left string, op expr.ComparisonOperator, lit expr.Literal) (bool, error) {
	l, err := StringToU256(left)
	if err != nil {
		return false, expr.ParseErrorf("parsing %q as uint256: %v", left, err)
	}
	rightText, err := numericLiteralText(lit, "uint256")
	if err != nil {
		return false, err
	}
	r, err := StringToU256(rightText)
	if err != nil {
		return false, expr.ParseErrorf("parsing %q as uint256: %v", rightText, err)
	}
	return expr.CompareWith(l.Cmp(r), op)
}

func (ev *Evaluator) compareI256(left string, op expr.ComparisonOperator, lit expr.Literal) (bool, error) {
	l, err := StringToI256(left)
	if err != nil {
		return false, expr.ParseErrorf("parsing %q as int256: %v", left, err)
	}
	rightText, err := numericLiteralText(lit, "int256")
	if err != nil {
		return false, err
	}
	r, err := StringToI256(rightText)
	if err != nil {
		return false, expr.ParseErrorf("parsing %q as int256: %v", rightText, err)
	}
	return expr.CompareWith(l.Cmp(r), op)
}

func (ev *Evaluator) compareAddress(left string, op expr.ComparisonOperator, lit expr.Literal) (bool, error) {
	if lit.Kind != expr.LiteralStr {
		return false, expr.TypeMismatchf("expected string literal for address comparison, found %s", lit)
	}
	switch op {
	case expr.Eq:
		return SameAddress(left, lit.Text), nil
	case expr.Ne:
		return !SameAddress(left, lit.Text), nil
	default:
		return false, expr.UnsupportedOperatorf("operator %s not supported for addresses", op)
	}
}

func (ev *Evaluator) compareString(left string, op expr.ComparisonOperator, lit expr.Literal) (bool, error) {
	if lit.Kind != expr.LiteralStr {
		return false, expr.TypeMismatchf("expected string literal for string comparison, found %s", lit)
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
		return false, expr.UnsupportedOperatorf("operator %s not supported for strings", op)
	}
}

func (ev *Evaluator) compareFixedPoint(left string, op expr.ComparisonOperator, lit expr.Literal) (bool, error) {
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

func (ev *Evaluator) compareBoolean(left string, op expr.ComparisonOperator, lit expr.Literal) (bool, error) {
	var l bool
	switch strings.ToLower(strings.TrimSpace(left)) {
	case "true":
		l = true
	case "false":
		l = false
	default:
		return false, expr.ParseErrorf("parsing %q as bool", left)
	}
	if lit.Kind != expr.LiteralBool {
		return false, expr.TypeMismatchf("expected bool literal for bool comparison, found %s", lit)
	}
	switch op {
	case expr.Eq:
		return l == lit.Bool, nil
	case expr.Ne:
		return l != lit.Bool, nil
	default:
		return false, expr.UnsupportedOperatorf("operator %s not supported for bools", op)
	}
}

// containsTarget extracts the search target for Eq/Ne/Contains over
// composites: strings always, numbers only under Contains.
func containsTarget(lit expr.Literal, op expr.ComparisonOperator, what string) (string, error) {
	switch lit.Kind {
	case expr.LiteralStr:
		return lit.Text, nil
	case expr.LiteralNumber:
		if op == expr.Contains {
			return lit.Text, nil
		}
		return "", expr.TypeMismatchf("expected a string literal (a JSON %s) for Eq/Ne comparison, found number %s", what, lit)
	default:
		return "", expr.TypeMismatchf("expected string literal for %s comparison, found %s", what, lit)
	}
}

// checkJSONValueMatches reports whether a JSON node matches the target
// string: addresses compare normalised, numbers as decimals when both
// sides parse, everything else case-insensitively; objects and arrays are
// searched recursively.
func (ev *Evaluator) checkJSONValueMatches(node any, target string) bool {
	switch val := node.(type) {
	case string:
		if ev.GetKindFromJSONValue(val) == "address" {
			return SameAddress(val, target)
		}
		return strings.EqualFold(val, target)
	case json.Number:
		l, lerr := decimal.NewFromString(val.String())
		r, rerr := decimal.NewFromString(target)
		if lerr == nil && rerr == nil {
			return l.Equal(r)
		}
		return val.String() == target
	case bool:
		if val {
			return strings.EqualFold(target, "true")
		}
		return strings.EqualFold(target, "false")
	case map[string]any:
		for _, inner := range val {
			if ev.checkJSONValueMatches(inner, target) {
				return true
			}
		}
		return false
	case []any:
		for _, inner := range val {
			if ev.checkJSONValueMatches(inner, target) {
				return true
			}
		}
		return false
	case nil:
		return target == "null"
	default:
		return false
	}
}

func decodeJSON(s string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

func (ev *Evaluator) compareArray(left string, op expr.ComparisonOperator, lit expr.Literal) (bool, error) {
	target, err := containsTarget(lit, op, "array")
	if err != nil {
		return false, err
	}

	switch op {
	case expr.Eq, expr.Ne:
		l, err := decodeJSON(strings.ToLower(left))
		if err != nil {
			return false, expr.ParseErrorf("parsing %q as JSON array: %v", left, err)
		}
		r, err := decodeJSON(strings.ToLower(target))
		if err != nil {
			return false, expr.ParseErrorf("parsing %q as JSON array: %v", target, err)
		}
		la, lok := l.([]any)
		ra, rok := r.([]any)
		if !lok || !rok {
			return false, expr.TypeMismatchf("array Eq/Ne needs JSON arrays on both sides")
		}
		equal := jsonEqual(la, ra)
		if op == expr.Ne {
			return !equal, nil
		}
		return equal, nil
	case expr.Contains:
		l, err := decodeJSON(left)
		if err != nil {
			return false, expr.ParseErrorf("parsing %q as JSON array: %v", left, err)
		}
		arr, ok := l.([]any)
		if !ok {
			return false, expr.TypeMismatchf("contains on non-array value %q", left)
		}
		for _, item := range arr {
			if ev.checkJSONValueMatches(item, target) {
				return true, nil
			}
		}
		return false, nil
	default:
		return false, expr.UnsupportedOperatorf("operator %s not supported for arrays", op)
	}
}

func (ev *Evaluator) compareMap(left string, op expr.ComparisonOperator, lit expr.Literal) (bool, error) {
	target, err := containsTarget(lit, op, "map")
	if err != nil {
		return false, err
	}

	switch op {
	case expr.Eq, expr.Ne:
		l, err := decodeJSON(left)
		if err != nil {
			return false, expr.ParseErrorf("parsing %q as JSON map: %v", left, err)
		}
		r, err := decodeJSON(target)
		if err != nil {
			return false, expr.ParseErrorf("parsing %q as JSON map: %v", target, err)
		}
		lm, lok := l.(map[string]any)
		rm, rok := r.(map[string]any)
		if !lok || !rok {
			return false, expr.TypeMismatchf("map Eq/Ne needs JSON objects on both sides")
		}
		equal := jsonEqual(lm, rm)
		if op == expr.Ne {
			return !equal, nil
		}
		return equal, nil
	case expr.Contains:
		l, err := decodeJSON(left)
		if err != nil {
			return false, expr.ParseErrorf("parsing %q as JSON map: %v", left, err)
		}
		obj, ok := l.(map[string]any)
		if !ok {
			return false, expr.TypeMismatchf("contains on non-object value %q", left)
		}
		for _, item := range obj {
			if ev.checkJSONValueMatches(item, target) {
				return true, nil
			}
		}
		return false, nil
	default:
		return false, expr.UnsupportedOperatorf("operator %s not supported for maps", op)
	}
}

// jsonEqual compares decoded JSON structurally; numbers compare as
// decimals so 1 and 1.0 are equal.
func jsonEqual(a, b any) bool {
	switch av := a.(type) {
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !jsonEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			other, ok := bv[k]
			if !ok || !jsonEqual(v, other) {
				return false
			}
		}
		return true
	case json.Number:
		bv, ok := b.(json.Number)
		if !ok {
			return false
		}
		l, lerr := decimal.NewFromString(av.String())
		r, rerr := decimal.NewFromString(bv.String())
		if lerr != nil || rerr != nil {
			return av == bv
		}
		return l.Equal(r)
	default:
		return a == b
	}
}
