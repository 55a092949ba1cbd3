// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ChainPulse Contributors

package filter

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"

	"github.com/chainpulse/chainpulse/internal/model"
)

// HandleMatch converts a monitor match into the flattened variable map
// and hands it to the trigger executor. Dispatch errors are logged by the
// executor and swallowed here so sibling matches keep flowing.
func HandleMatch(ctx context.Context, match model.MonitorMatch, executor TriggerExecutor, scripts model.TriggerScripts, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	data := matchDocument(match)
	variables := FlattenVariables(data)

	if err := executor.Execute(ctx, match.Triggers(), variables, match, scripts); err != nil {
		logger.Error("dispatching match", "monitor", match.MonitorName(), "error", err)
	}
	return nil
}

// matchDocument builds the nested document the variable map flattens
// from: monitor and transaction identity plus the matched events and
// functions with their decoded arguments.
func matchDocument(match model.MonitorMatch) map[string]any {
	doc := map[string]any{
		"monitor":   map[string]any{"name": match.MonitorName()},
		"events":    []any{},
		"functions": []any{},
	}

	switch {
	case match.EVM != nil:
		m := match.EVM
		tx := map[string]any{
			"hash":  strings.ToLower(m.Transaction.Hash.Hex()),
			"value": "0",
		}
		if m.Transaction.Value != nil {
			tx["value"] = m.Transaction.Value.String()
		}
		if m.Transaction.From != nil {
			tx["from"] = strings.ToLower(m.Transaction.From.Hex())
		}
		if m.Transaction.To != nil {
			tx["to"] = strings.ToLower(m.Transaction.To.Hex())
		}
		doc["transaction"] = tx
		doc["events"] = conditionsDocument(conditionSignatures(m.MatchedOn.Events), argsFor(m.MatchedOnArgs, true))
		doc["functions"] = conditionsDocument(functionSignatures(m.MatchedOn.Functions), argsFor(m.MatchedOnArgs, false))
	case match.Stellar != nil:
		m := match.Stellar
		doc["transaction"] = map[string]any{"hash": m.Transaction.Hash}
		doc["events"] = conditionsDocument(conditionSignatures(m.MatchedOn.Events), argsFor(m.MatchedOnArgs, true))
		doc["functions"] = conditionsDocument(functionSignatures(m.MatchedOn.Functions), argsFor(m.MatchedOnArgs, false))
	}

	return doc
}

func conditionSignatures(conds []model.EventCondition) []string {
	out := make([]string, len(conds))
	for i, c := range conds {
		out[i] = c.Signature
	}
	return out
}

func functionSignatures(conds []model.FunctionCondition) []string {
	out := make([]string, len(conds))
	for i, c := range conds {
		out[i] = c.Signature
	}
	return out
}

func argsFor(args *model.MatchArguments, events bool) []model.MatchParamsMap {
	if args == nil {
		return nil
	}
	if events {
		return args.Events
	}
	return args.Functions
}

// conditionsDocument pairs each matched signature with the decoded
// arguments recorded under that signature.
func conditionsDocument(signatures []string, decoded []model.MatchParamsMap) []any {
	out := make([]any, 0, len(signatures))
	for _, sig := range signatures {
		entry := map[string]any{"signature": sig, "args": map[string]any{}}
		argsObj := entry["args"].(map[string]any)
		for _, params := range decoded {
			if params.Signature != sig {
				continue
			}
			for _, arg := range params.Args {
				argsObj[arg.Name] = arg.Value
			}
		}
		out = append(out, entry)
	}
	return out
}

// FlattenVariables flattens a nested document into dotted-path keys with
// stringified leaf values. A primitive at the root flattens to the key
// "value".
func FlattenVariables(doc any) map[string]string {
	out := make(map[string]string)
	flattenInto(doc, "", out)
	return out
}

func flattenInto(v any, prefix string, out map[string]string) {
	switch val := v.(type) {
	case map[string]any:
		for key, inner := range val {
			next := key
			if prefix != "" {
				next = prefix + "." + key
			}
			flattenInto(inner, next, out)
		}
	case []any:
		for i, inner := range val {
			flattenInto(inner, prefix+"."+strconv.Itoa(i), out)
		}
	case string:
		insertLeaf(prefix, val, out)
	case json.Number:
		insertLeaf(prefix, val.String(), out)
	case bool:
		insertLeaf(prefix, strconv.FormatBool(val), out)
	case nil:
		insertLeaf(prefix, "null", out)
	case int:
		insertLeaf(prefix, strconv.Itoa(val), out)
	case int64:
		insertLeaf(prefix, strconv.FormatInt(val, 10), out)
	case uint64:
		insertLeaf(prefix, strconv.FormatUint(val, 10), out)
	case float64:
		insertLeaf(prefix, strconv.FormatFloat(val, 'f', -1, 64), out)
	default:
		insertLeaf(prefix, stringify(val), out)
	}
}

func insertLeaf(prefix, value string, out map[string]string) {
	key := prefix
	if key == "" {
		key = "value"
	}
	out[key] = value
}

func stringify(v any) string {
	if s, ok := v.(interface{ String() string }); ok {
		return s.String()
	}
	return ""
}
