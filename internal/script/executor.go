// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ChainPulse Contributors

// Package script executes user-supplied trigger scripts in an external
// interpreter. The script receives one JSON document on stdin and reports
// its verdict through the exit code and the last non-empty stdout line.
package script

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os/exec"
	"strings"
	"time"

	"github.com/samber/oops"

	"github.com/chainpulse/chainpulse/internal/model"
)

// CodeExecution tags script execution failures.
const CodeExecution = "SCRIPT_EXECUTION"

// ErrorCode extracts the script error code from err, or "" when err
// carries none.
func ErrorCode(err error) string {
	var oe oops.OopsError
	if errors.As(err, &oe) {
		return oe.Code()
	}
	return ""
}

// Executor runs one script body under a language interpreter.
type Executor interface {
	// Execute feeds the monitor match and arguments to the script and
	// returns the boolean verdict from its last output line. In custom
	// notification mode the verdict is exit-status only.
	Execute(ctx context.Context, match model.MonitorMatch, timeoutMs uint32, args []string, fromCustomNotification bool) (bool, error)
}

// interpreterExecutor spawns "<command> <flag> <script body>".
type interpreterExecutor struct {
	command string
	flag    string
	content string
}

// NewExecutor selects the interpreter for the script language.
func NewExecutor(language model.ScriptLanguage, content string) (Executor, error) {
	if strings.TrimSpace(content) == "" {
		return nil, oops.Code(CodeExecution).Errorf("script content cannot be empty")
	}
	switch language {
	case model.ScriptPython:
		return &interpreterExecutor{command: "python3", flag: "-c", content: content}, nil
	case model.ScriptJavaScript:
		return &interpreterExecutor{command: "node", flag: "-e", content: content}, nil
	case model.ScriptBash:
		return &interpreterExecutor{command: "sh", flag: "-c", content: content}, nil
	default:
		return nil, oops.Code(CodeExecution).Errorf("unsupported script language %q", language)
	}
}

func (e *interpreterExecutor) Execute(ctx context.Context, match model.MonitorMatch, timeoutMs uint32, args []string, fromCustomNotification bool) (bool, error) {
	input, err := json.Marshal(map[string]any{
		"monitor_match": match,
		"args":          args,
	})
	if err != nil {
		return false, oops.Code(CodeExecution).Wrapf(err, "serialising script input")
	}

	runCtx := ctx
	var cancel context.CancelFunc
	if timeoutMs > 0 {
		runCtx, cancel = context.WithTimeout(ctx, time.Duration(timeoutMs)*time.Millisecond)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, e.command, e.flag, e.content)
	cmd.Stdin = bytes.NewReader(input)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	if runCtx.Err() == context.DeadlineExceeded {
		return false, oops.Code(CodeExecution).Errorf("Script execution timed out")
	}
	if err != nil {
		return false, oops.Code(CodeExecution).Errorf("script execution failed: %s", strings.TrimSpace(stderr.String()))
	}

	if fromCustomNotification {
		return true, nil
	}

	return parseVerdict(stdout.String())
}

// parseVerdict reads the last non-empty stdout line as a boolean.
func parseVerdict(output string) (bool, error) {
	trimmed := strings.TrimSpace(output)
	if trimmed == "" {
		return false, oops.Code(CodeExecution).Errorf("script produced no output")
	}

	lines := strings.Split(trimmed, "\n")
	lastLine := strings.TrimSpace(lines[len(lines)-1])

	switch strings.ToLower(lastLine) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, oops.Code(CodeExecution).Errorf("last line of output is not a valid boolean: %s", lastLine)
	}
}
