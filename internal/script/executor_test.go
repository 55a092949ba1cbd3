// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ChainPulse Contributors

package script

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainpulse/chainpulse/internal/model"
	"github.com/chainpulse/chainpulse/pkg/errutil"
)

func testMatch() model.MonitorMatch {
	return model.MonitorMatch{EVM: &model.EVMMonitorMatch{
		Monitor: model.Monitor{Name: "Watch"},
	}}
}

func TestExecuteShellTrueVerdict(t *testing.T) {
	executor, err := NewExecutor(model.ScriptBash, `cat > /dev/null; echo "checking"; echo "true"`)
	require.NoError(t, err)

	ok, err := executor.Execute(t.Context(), testMatch(), 5000, nil, false)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestExecuteShellFalseVerdict(t *testing.T) {
	executor, err := NewExecutor(model.ScriptBash, `cat > /dev/null; echo "False"`)
	require.NoError(t, err)

	ok, err := executor.Execute(t.Context(), testMatch(), 5000, nil, false)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestExecuteShellReceivesJSONInput(t *testing.T) {
	// The script echoes back whether stdin contained the monitor_match key.
	executor, err := NewExecutor(model.ScriptBash,
		`if grep -q "monitor_match" -; then echo true; else echo false; fi`)
	require.NoError(t, err)

	ok, err := executor.Execute(t.Context(), testMatch(), 5000, []string{"--verbose"}, false)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestExecuteNonBooleanOutput(t *testing.T) {
	executor, err := NewExecutor(model.ScriptBash, `cat > /dev/null; echo "maybe"`)
	require.NoError(t, err)

	_, err = executor.Execute(t.Context(), testMatch(), 5000, nil, false)
	errutil.AssertErrorCode(t, err, CodeExecution)
}

func TestExecuteEmptyOutput(t *testing.T) {
	executor, err := NewExecutor(model.ScriptBash, `cat > /dev/null`)
	require.NoError(t, err)

	_, err = executor.Execute(t.Context(), testMatch(), 5000, nil, false)
	require.Error(t, err)
}

func TestExecuteNonZeroExitReportsStderr(t *testing.T) {
	executor, err := NewExecutor(model.ScriptBash, `cat > /dev/null; echo "boom" >&2; exit 3`)
	require.NoError(t, err)

	_, err = executor.Execute(t.Context(), testMatch(), 5000, nil, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestExecuteCustomNotificationIgnoresOutput(t *testing.T) {
	executor, err := NewExecutor(model.ScriptBash, `cat > /dev/null; echo "not a boolean"`)
	require.NoError(t, err)

	ok, err := executor.Execute(t.Context(), testMatch(), 5000, nil, true)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestExecuteTimeout(t *testing.T) {
	executor, err := NewExecutor(model.ScriptBash, `sleep 5; echo true`)
	require.NoError(t, err)

	_, err = executor.Execute(t.Context(), testMatch(), 50, nil, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")
}

func TestNewExecutorRejectsEmptyContent(t *testing.T) {
	_, err := NewExecutor(model.ScriptBash, "   ")
	require.Error(t, err)
}

func TestNewExecutorRejectsUnknownLanguage(t *testing.T) {
	_, err := NewExecutor(model.ScriptLanguage("ruby"), "puts true")
	require.Error(t, err)
}

func TestParseVerdict(t *testing.T) {
	ok, err := parseVerdict("log line\nTrue\n")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = parseVerdict("FALSE")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = parseVerdict("")
	require.Error(t, err)

	_, err = parseVerdict("42")
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	require.NoError(t, Validate(model.ScriptPython, "check.py", "print(True)"))
	require.NoError(t, Validate(model.ScriptBash, "check.sh", "echo true"))

	err := Validate(model.ScriptPython, "check.sh", "print(True)")
	require.Error(t, err)

	err = Validate(model.ScriptBash, "check.sh", "  ")
	require.Error(t, err)

	err = Validate(model.ScriptLanguage("ruby"), "check.rb", "true")
	require.Error(t, err)
}
