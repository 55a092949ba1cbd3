// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ChainPulse Contributors

package notify

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// FormatTemplate substitutes ${name} variables into the template. The
// special tokens ${events} and ${functions} expand into a formatted
// "Matched Events/Functions" section built from the variable map, or
// empty when no matching keys exist.
func FormatTemplate(template string, variables map[string]string) string {
	message := template
	for key, value := range variables {
		message = strings.ReplaceAll(message, "${"+key+"}", value)
	}

	if strings.Contains(template, "${functions}") {
		message = strings.ReplaceAll(message, "${functions}", buildMatchReasons(variables, "functions"))
	}
	if strings.Contains(template, "${events}") {
		message = strings.ReplaceAll(message, "${events}", buildMatchReasons(variables, "events"))
	}
	return message
}

// buildMatchReasons renders the matched events or functions section from
// keys of shape "<prefix>.<index>.signature" and
// "<prefix>.<index>.args.<name>", ordered by numeric index with args
// sorted by name. Returns "" when the prefix has no entries.
func buildMatchReasons(variables map[string]string, prefix string) string {
	var indexes []int
	for key := range variables {
		rest, ok := strings.CutPrefix(key, prefix+".")
		if !ok {
			continue
		}
		indexPart, ok := strings.CutSuffix(rest, ".signature")
		if !ok {
			continue
		}
		if index, err := strconv.Atoi(indexPart); err == nil {
			indexes = append(indexes, index)
		}
	}
	if len(indexes) == 0 {
		return ""
	}
	sort.Ints(indexes)

	title := strings.ToUpper(prefix[:1]) + prefix[1:]
	var b strings.Builder
	fmt.Fprintf(&b, "\n\n*Matched %s:*\n", title)

	lastIndex := indexes[len(indexes)-1]
	for reasonNumber, index := range indexes {
		signature, ok := variables[fmt.Sprintf("%s.%d.signature", prefix, index)]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "\n*Reason %d*\n", reasonNumber+1)
		fmt.Fprintf(&b, "\n*Signature:* `%s`\n", signature)
		b.WriteString("\n*Params:*\n")

		argPrefix := fmt.Sprintf("%s.%d.args.", prefix, index)
		type arg struct{ name, value string }
		var args []arg
		for key, value := range variables {
			if name, ok := strings.CutPrefix(key, argPrefix); ok {
				args = append(args, arg{name, value})
			}
		}
		sort.Slice(args, func(i, j int) bool { return args[i].name < args[j].name })
		for _, a := range args {
			fmt.Fprintf(&b, "\n%s: `%s`", a.name, a.value)
		}

		if index != lastIndex {
			b.WriteByte('\n')
		}
	}

	return b.String()
}
