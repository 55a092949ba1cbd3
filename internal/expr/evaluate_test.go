// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ChainPulse Contributors

package expr

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainpulse/chainpulse/pkg/errutil"
)

// fakeEvaluator resolves from a fixed map and compares string-wise. It
// records every comparison so short-circuit behaviour is observable.
type fakeEvaluator struct {
	params   map[string][2]string // name -> {value, kind}
	compared []string
}

func (f *fakeEvaluator) GetBaseParam(name string) (string, string, error) {
	p, ok := f.params[name]
	if !ok {
		return "", "", variableNotFoundf("base parameter not found: %s", name)
	}
	return p[0], p[1], nil
}

func (f *fakeEvaluator) GetKindFromJSONValue(v any) string {
	switch v.(type) {
	case string:
		return "string"
	case json.Number:
		return "number"
	case bool:
		return "bool"
	case []any:
		return "array"
	case map[string]any:
		return "map"
	}
	return "null"
}

func (f *fakeEvaluator) CompareFinalValues(kind, value string, op ComparisonOperator, lit Literal) (bool, error) {
	f.compared = append(f.compared, value)
	switch op {
	case Eq:
		return strings.EqualFold(value, lit.String()) || value == lit.Text, nil
	case Ne:
		return value != lit.Text, nil
	case Gt:
		return value > lit.Text, nil
	default:
		return false, unsupportedOperatorf("fake evaluator does not support %s", op)
	}
}

func TestEvaluateSimpleCondition(t *testing.T) {
	ev := &fakeEvaluator{params: map[string][2]string{"name": {"alice", "string"}}}
	e, err := Parse("name == 'alice'")
	require.NoError(t, err)

	ok, err := Evaluate(e, ev)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEvaluateVariableNotFound(t *testing.T) {
	ev := &fakeEvaluator{params: map[string][2]string{}}
	e, err := Parse("missing == 1")
	require.NoError(t, err)

	_, err = Evaluate(e, ev)
	errutil.AssertErrorCode(t, err, CodeVariableNotFound)
}

func TestEvaluateShortCircuitAnd(t *testing.T) {
	ev := &fakeEvaluator{params: map[string][2]string{
		"a": {"1", "number"},
		"b": {"2", "number"},
	}}
	e, err := Parse("a == 999 AND b == 2")
	require.NoError(t, err)

	ok, err := Evaluate(e, ev)
	require.NoError(t, err)
	assert.False(t, ok)
	// b must never have been compared.
	assert.Equal(t, []string{"1"}, ev.compared)
}

func TestEvaluateShortCircuitOr(t *testing.T) {
	ev := &fakeEvaluator{params: map[string][2]string{
		"a": {"1", "number"},
		"b": {"2", "number"},
	}}
	e, err := Parse("a == 1 OR b == 2")
	require.NoError(t, err)

	ok, err := Evaluate(e, ev)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"1"}, ev.compared)
}

func TestEvaluatePathTraversal(t *testing.T) {
	ev := &fakeEvaluator{params: map[string][2]string{
		"transaction": {`{"to":"0xccc","meta":{"idx":7}}`, "map"},
	}}

	e, err := Parse("transaction.to == '0xccc'")
	require.NoError(t, err)
	ok, err := Evaluate(e, ev)
	require.NoError(t, err)
	assert.True(t, ok)

	e, err = Parse("transaction.meta.idx == 7")
	require.NoError(t, err)
	ok, err = Evaluate(e, ev)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEvaluatePathErrors(t *testing.T) {
	ev := &fakeEvaluator{params: map[string][2]string{
		"obj": {`{"a":[1,2]}`, "map"},
		"raw": {"not json", "string"},
	}}

	tests := []struct {
		input string
		code  string
	}{
		{"obj.missing == 1", CodeFieldNotFound},
		{"obj.a[5] == 1", CodeIndexOutOfBounds},
		{"obj.a.key == 1", CodeTypeMismatch},
		{"obj[0] == 1", CodeTypeMismatch},
		{"raw.field == 1", CodeParse},
	}
	for _, tt := range tests {
		e, err := Parse(tt.input)
		require.NoError(t, err, tt.input)
		_, err = Evaluate(e, ev)
		require.Error(t, err, tt.input)
		assert.Equal(t, tt.code, ErrorCode(err), tt.input)
	}
}

func TestEvaluateTraversalPreservesBigNumbers(t *testing.T) {
	const big = "115792089237316195423570985008687907853269984665640564039457584007913129639935"
	ev := &fakeEvaluator{params: map[string][2]string{
		"data": {`{"amount":` + big + `}`, "map"},
	}}

	e, err := Parse("data.amount == " + big)
	require.NoError(t, err)
	ok, err := Evaluate(e, ev)
	require.NoError(t, err)
	assert.True(t, ok)
	// The traversed value must not round-trip through a float64.
	assert.Equal(t, []string{big}, ev.compared)
}

func TestSerializeJSONValue(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{"plain", "plain"},
		{json.Number("42"), "42"},
		{true, "true"},
		{nil, "null"},
		{[]any{json.Number("1"), "x"}, `[1,"x"]`},
		{map[string]any{"k": json.Number("2")}, `{"k":2}`},
	}
	for _, tt := range tests {
		got, err := serializeJSONValue(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestCompareOrdered(t *testing.T) {
	ok, err := CompareOrdered(uint64(5), Gte, uint64(5))
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = CompareOrdered(uint64(5), Contains, uint64(5))
	errutil.AssertErrorCode(t, err, CodeUnsupportedOperator)
}

func TestCompareWith(t *testing.T) {
	for _, tt := range []struct {
		cmp  int
		op   ComparisonOperator
		want bool
	}{
		{-1, Lt, true}, {-1, Gte, false}, {0, Eq, true}, {0, Ne, false}, {1, Gt, true},
	} {
		got, err := CompareWith(tt.cmp, tt.op)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}
