// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ChainPulse Contributors

package script

import (
	"path/filepath"
	"strings"

	"github.com/samber/oops"

	"github.com/chainpulse/chainpulse/internal/model"
)

// extensionsByLanguage maps each supported language to its expected
// script file extension.
var extensionsByLanguage = map[model.ScriptLanguage]string{
	model.ScriptPython:     ".py",
	model.ScriptJavaScript: ".js",
	model.ScriptBash:       ".sh",
}

// Validate checks that a trigger script declaration is internally
// consistent before it is ever executed: known language, non-empty
// content, and a path extension matching the declared language.
func Validate(language model.ScriptLanguage, scriptPath, content string) error {
	ext, ok := extensionsByLanguage[language]
	if !ok {
		return oops.Code(CodeExecution).Errorf("unsupported script language %q", language)
	}
	if strings.TrimSpace(content) == "" {
		return oops.Code(CodeExecution).Errorf("script %q has no content", scriptPath)
	}
	if scriptPath != "" && filepath.Ext(scriptPath) != ext {
		return oops.Code(CodeExecution).Errorf(
			"script %q has extension %q but language %q expects %q",
			scriptPath, filepath.Ext(scriptPath), language, ext)
	}
	return nil
}
