// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ChainPulse Contributors

package evmchain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainpulse/chainpulse/internal/expr"
	"github.com/chainpulse/chainpulse/internal/model"
	"github.com/chainpulse/chainpulse/pkg/errutil"
)

func evalExpr(t *testing.T, expression string, args []model.ParamEntry) (bool, error) {
	t.Helper()
	parsed, err := expr.Parse(expression)
	require.NoError(t, err, expression)
	return expr.Evaluate(parsed, NewEvaluator(args))
}

func param(name, value, kind string) model.ParamEntry {
	return model.ParamEntry{Name: name, Value: value, Kind: kind}
}

func TestCompareU256(t *testing.T) {
	args := []model.ParamEntry{
		param("value", "1000", "uint256"),
		param("max", "115792089237316195423570985008687907853269984665640564039457584007913129639935", "uint256"),
		param("hexval", "0x3e8", "uint256"),
	}

	tests := []struct {
		expression string
		want       bool
	}{
		{"value > 500", true},
		{"value >= 1000", true},
		{"value < 1000", false},
		{"value <= 1000", true},
		{"value == 1000", true},
		{"value != 1000", false},
		{"max > 1000", true},
		{"max == 115792089237316195423570985008687907853269984665640564039457584007913129639935", true},
		{"hexval == 1000", true},
		{"value == '1000'", true},
	}
	for _, tt := range tests {
		got, err := evalExpr(t, tt.expression, args)
		require.NoError(t, err, tt.expression)
		assert.Equal(t, tt.want, got, tt.expression)
	}
}

func TestCompareU256Errors(t *testing.T) {
	args := []model.ParamEntry{param("value", "not-a-number", "uint256")}
	_, err := evalExpr(t, "value > 1", args)
	errutil.AssertErrorCode(t, err, expr.CodeParse)

	args = []model.ParamEntry{param("value", "7", "uint256")}
	_, err = evalExpr(t, "value == true", args)
	errutil.AssertErrorCode(t, err, expr.CodeTypeMismatch)
}

func TestCompareI256(t *testing.T) {
	args := []model.ParamEntry{
		param("delta", "-42", "int256"),
		param("min", "-57896044618658097711785492504343953926634992332820282019728792003956564819968", "int256"),
	}

	tests := []struct {
		expression string
		want       bool
	}{
		{"delta < 0", true},
		{"delta == -42", true},
		{"delta > -100", true},
		{"delta <= -42", true},
		{"min < -1", true},
		{"min == -57896044618658097711785492504343953926634992332820282019728792003956564819968", true},
	}
	for _, tt := range tests {
		got, err := evalExpr(t, tt.expression, args)
		require.NoError(t, err, tt.expression)
		assert.Equal(t, tt.want, got, tt.expression)
	}
}

func TestCompareAddress(t *testing.T) {
	args := []model.ParamEntry{
		param("sender", "0xAbC0000000000000000000000000000000000001", "address"),
	}

	got, err := evalExpr(t, "sender == '0xabc0000000000000000000000000000000000001'", args)
	require.NoError(t, err)
	assert.True(t, got)

	got, err = evalExpr(t, "sender != '0x0000000000000000000000000000000000000002'", args)
	require.NoError(t, err)
	assert.True(t, got)

	_, err = evalExpr(t, "sender > '0x01'", args)
	errutil.AssertErrorCode(t, err, expr.CodeUnsupportedOperator)
}

func TestCompareString(t *testing.T) {
	args := []model.ParamEntry{param("memo", "Hello World", "string")}

	tests := []struct {
		expression string
		want       bool
	}{
		{"memo == 'hello world'", true},
		{"memo != 'bye'", true},
		{"memo starts_with 'HELLO'", true},
		{"memo ends_with 'world'", true},
		{"memo contains 'lo wo'", true},
		{"memo contains 'xyz'", false},
	}
	for _, tt := range tests {
		got, err := evalExpr(t, tt.expression, args)
		require.NoError(t, err, tt.expression)
		assert.Equal(t, tt.want, got, tt.expression)
	}
}

func TestCompareFixedPoint(t *testing.T) {
	args := []model.ParamEntry{param("price", "12.50", "fixed")}

	got, err := evalExpr(t, "price > 12.4", args)
	require.NoError(t, err)
	assert.True(t, got)

	got, err = evalExpr(t, "price == 12.5", args)
	require.NoError(t, err)
	assert.True(t, got)
}

func TestCompareBoolean(t *testing.T) {
	args := []model.ParamEntry{param("approved", "true", "bool")}

	got, err := evalExpr(t, "approved == true", args)
	require.NoError(t, err)
	assert.True(t, got)

	_, err = evalExpr(t, "approved == 'true'", args)
	errutil.AssertErrorCode(t, err, expr.CodeTypeMismatch)

	_, err = evalExpr(t, "approved > true", args)
	errutil.AssertErrorCode(t, err, expr.CodeUnsupportedOperator)
}

func TestCompareArray(t *testing.T) {
	args := []model.ParamEntry{
		param("recipients", `["0xAbC0000000000000000000000000000000000001","0xdef0000000000000000000000000000000000002"]`, "address[]"),
		param("amounts", `[100,200,300]`, "uint256[]"),
		param("nested", `[{"to":"0xAbC0000000000000000000000000000000000001"}]`, "array"),
	}

	tests := []struct {
		expression string
		want       bool
	}{
		{"recipients contains '0xABC0000000000000000000000000000000000001'", true},
		{"recipients contains '0x0000000000000000000000000000000000000009'", false},
		{"amounts contains 200", true},
		{"amounts contains 250", false},
		{"nested contains '0xabc0000000000000000000000000000000000001'", true},
		{`amounts == '[100, 200, 300]'`, true},
		{`amounts != '[100]'`, true},
	}
	for _, tt := range tests {
		got, err := evalExpr(t, tt.expression, args)
		require.NoError(t, err, tt.expression)
		assert.Equal(t, tt.want, got, tt.expression)
	}
}

func TestCompareArrayEqNeRejectsNumberLiteral(t *testing.T) {
	args := []model.ParamEntry{param("amounts", `[1]`, "uint256[]")}
	_, err := evalExpr(t, "amounts == 1", args)
	errutil.AssertErrorCode(t, err, expr.CodeTypeMismatch)
}

func TestCompareMap(t *testing.T) {
	args := []model.ParamEntry{
		param("meta", `{"owner":"0xAbC0000000000000000000000000000000000001","level":3}`, "map"),
	}

	tests := []struct {
		expression string
		want       bool
	}{
		{"meta contains '0xabc0000000000000000000000000000000000001'", true},
		{"meta contains 3", true},
		{"meta contains 'absent'", false},
		{`meta == '{"owner":"0xAbC0000000000000000000000000000000000001","level":3}'`, true},
		{`meta != '{"level":4}'`, true},
	}
	for _, tt := range tests {
		got, err := evalExpr(t, tt.expression, args)
		require.NoError(t, err, tt.expression)
		assert.Equal(t, tt.want, got, tt.expression)
	}
}

func TestCompareTuple(t *testing.T) {
	args := []model.ParamEntry{
		param("order", `(12,'limit order',[5,6],(7,8))`, "tuple"),
	}

	tests := []struct {
		expression string
		want       bool
	}{
		{"order contains 12", true},
		{"order contains 'limit order'", true},
		{"order contains 6", true},
		{"order contains 8", true},
		{"order contains 99", false},
		{`order == "(12, 'limit order', [5,6], (7,8))"`, true},
		{`order != "(1)"`, true},
	}
	for _, tt := range tests {
		got, err := evalExpr(t, tt.expression, args)
		require.NoError(t, err, tt.expression)
		assert.Equal(t, tt.want, got, tt.expression)
	}
}

func TestTupleParserHandlesQuotesAndEscapes(t *testing.T) {
	elements, err := parseTupleElements(`12,"a,b",'c\'d',[1,2],{"k":"v"}`)
	require.NoError(t, err)
	require.Len(t, elements, 5)
	assert.Equal(t, "a,b", elements[1])
	assert.Equal(t, `c'd`, elements[2])
}

func TestGetKindFromJSONValue(t *testing.T) {
	ev := NewEvaluator(nil)
	tests := []struct {
		value any
		want  string
	}{
		{"0xAbC0000000000000000000000000000000000001", "address"},
		{"0x1111111111111111111111111111111111111111111111111111111111111111", "bytes32"},
		{"0xdeadbeef", "bytes"},
		{"12.5", "fixed"},
		{"plain", "string"},
		{true, "bool"},
		{[]any{}, "array"},
		{map[string]any{}, "map"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ev.GetKindFromJSONValue(tt.value), "%v", tt.value)
	}
}

func TestPathTraversalIntoEventArgument(t *testing.T) {
	args := []model.ParamEntry{
		param("details", `{"to":"0xAbC0000000000000000000000000000000000001","amounts":[100,250]}`, "tuple"),
	}

	got, err := evalExpr(t, "details.to == '0xabc0000000000000000000000000000000000001'", args)
	require.NoError(t, err)
	assert.True(t, got)

	got, err = evalExpr(t, "details.amounts[1] >= 250", args)
	require.NoError(t, err)
	assert.True(t, got)

	_, err = evalExpr(t, "details.from == '0x01'", args)
	errutil.AssertErrorCode(t, err, expr.CodeFieldNotFound)
}

func TestLogicalCombinations(t *testing.T) {
	args := []model.ParamEntry{
		param("value", "1000", "uint256"),
		param("sender", "0xabc0000000000000000000000000000000000001", "address"),
	}

	got, err := evalExpr(t, "value > 500 AND sender == '0xAbC0000000000000000000000000000000000001'", args)
	require.NoError(t, err)
	assert.True(t, got)

	got, err = evalExpr(t, "value > 5000 OR sender == '0xAbC0000000000000000000000000000000000001'", args)
	require.NoError(t, err)
	assert.True(t, got)

	got, err = evalExpr(t, "(value > 5000 OR value < 100) AND sender == '0xAbC0000000000000000000000000000000000001'", args)
	require.NoError(t, err)
	assert.False(t, got)
}

func TestUnknownKind(t *testing.T) {
	args := []model.ParamEntry{param("x", "1", "exotic")}
	_, err := evalExpr(t, "x == 1", args)
	errutil.AssertErrorCode(t, err, expr.CodeTypeMismatch)
}
