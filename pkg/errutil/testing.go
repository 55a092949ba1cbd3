// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ChainPulse Contributors

package errutil

import (
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertErrorCode asserts that err is non-nil and carries the given oops
// error code. Wrapped and joined errors are unwrapped on the way.
func AssertErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	oopsErr, ok := oops.AsOops(err)
	require.True(t, ok, "expected an oops error carrying code %q, got %T: %v", code, err, err)
	assert.Equal(t, code, oopsErr.Code(), "wrong code on error: %v", err)
}

// AssertErrorContext asserts that err is non-nil and carries the given
// oops context key/value pair.
func AssertErrorContext(t *testing.T, err error, key string, value any) {
	t.Helper()
	require.Error(t, err)
	oopsErr, ok := oops.AsOops(err)
	require.True(t, ok, "expected an oops error with context, got %T: %v", err, err)
	ctx := oopsErr.Context()
	require.Contains(t, ctx, key, "missing context key on error: %v", err)
	assert.Equal(t, value, ctx[key])
}
