// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ChainPulse Contributors

package expr

import (
	"errors"

	"github.com/samber/oops"
)

// Error codes attached to evaluation failures. Callers treat all of them
// as "condition did not match" and log them at error level.
const (
	CodeParse               = "EXPR_PARSE"
	CodeVariableNotFound    = "EXPR_VARIABLE_NOT_FOUND"
	CodeTypeMismatch        = "EXPR_TYPE_MISMATCH"
	CodeUnsupportedOperator = "EXPR_UNSUPPORTED_OPERATOR"
	CodeIndexOutOfBounds    = "EXPR_INDEX_OUT_OF_BOUNDS"
	CodeFieldNotFound       = "EXPR_FIELD_NOT_FOUND"
)

// ErrorCode extracts the expression error code from err, or "" when err
// carries none.
func ErrorCode(err error) string {
	var oe oops.OopsError
	if errors.As(err, &oe) {
		return oe.Code()
	}
	return ""
}

func parseErrorf(format string, args ...any) error {
	return oops.Code(CodeParse).Errorf(format, args...)
}

func variableNotFoundf(format string, args ...any) error {
	return oops.Code(CodeVariableNotFound).Errorf(format, args...)
}

func typeMismatchf(format string, args ...any) error {
	return oops.Code(CodeTypeMismatch).Errorf(format, args...)
}

func unsupportedOperatorf(format string, args ...any) error {
	return oops.Code(CodeUnsupportedOperator).Errorf(format, args...)
}

func indexOutOfBoundsf(format string, args ...any) error {
	return oops.Code(CodeIndexOutOfBounds).Errorf(format, args...)
}

func fieldNotFoundf(format string, args ...any) error {
	return oops.Code(CodeFieldNotFound).Errorf(format, args...)
}

// Exported constructors for chain evaluators implementing
// ConditionEvaluator outside this package.

// ParseErrorf reports a value that could not be parsed into the form a
// comparator requires.
func ParseErrorf(format string, args ...any) error { return parseErrorf(format, args...) }

// VariableNotFoundf reports an unknown base parameter name.
func VariableNotFoundf(format string, args ...any) error { return variableNotFoundf(format, args...) }

// TypeMismatchf reports a literal or value of the wrong shape for the
// attempted comparison.
func TypeMismatchf(format string, args ...any) error { return typeMismatchf(format, args...) }

// UnsupportedOperatorf reports an operator the value kind does not admit.
func UnsupportedOperatorf(format string, args ...any) error {
	return unsupportedOperatorf(format, args...)
}
