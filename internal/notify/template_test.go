// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ChainPulse Contributors

package notify

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatTemplateBasicSubstitution(t *testing.T) {
	vars := map[string]string{
		"monitor.name":     "USDT Watch",
		"transaction.hash": "0xabc",
	}
	got := FormatTemplate("Monitor ${monitor.name} saw ${transaction.hash}", vars)
	assert.Equal(t, "Monitor USDT Watch saw 0xabc", got)
}

func TestFormatTemplateMissingVariableLeftIntact(t *testing.T) {
	got := FormatTemplate("value: ${missing}", map[string]string{})
	assert.Equal(t, "value: ${missing}", got)
}

func TestFormatTemplateEventsSection(t *testing.T) {
	vars := map[string]string{
		"events.0.signature":  "Transfer(address,address,uint256)",
		"events.0.args.to":    "0x70bf",
		"events.0.args.from":  "0x2e81",
		"events.0.args.value": "88248701",
	}
	got := FormatTemplate("${events}", vars)

	assert.Contains(t, got, "*Matched Events:*")
	assert.Contains(t, got, "*Reason 1*")
	assert.Contains(t, got, "*Signature:* `Transfer(address,address,uint256)`")
	// Args render sorted by name.
	assert.Contains(t, got, "from: `0x2e81`")
	assert.Contains(t, got, "to: `0x70bf`")
	assert.Contains(t, got, "value: `88248701`")
	assert.Less(t, strings.Index(got, "from: `0x2e81`"), strings.Index(got, "to: `0x70bf`"))
}

func TestFormatTemplateEventsSectionOrdersByIndex(t *testing.T) {
	vars := map[string]string{
		"events.2.signature": "B()",
		"events.0.signature": "A()",
	}
	got := FormatTemplate("${events}", vars)
	assert.Less(t, strings.Index(got, "A()"), strings.Index(got, "B()"))
	assert.Contains(t, got, "*Reason 1*")
	assert.Contains(t, got, "*Reason 2*")
}

func TestFormatTemplateFunctionsSection(t *testing.T) {
	vars := map[string]string{
		"functions.0.signature":   "transfer(address,uint256)",
		"functions.0.args.amount": "2000",
	}
	got := FormatTemplate("intro ${functions}", vars)
	assert.Contains(t, got, "*Matched Functions:*")
	assert.Contains(t, got, "amount: `2000`")
}

func TestFormatTemplateEmptySectionsCollapse(t *testing.T) {
	got := FormatTemplate("before${events}${functions}after", map[string]string{})
	assert.Equal(t, "beforeafter", got)
}

func TestBuildMatchReasonsIgnoresMalformedKeys(t *testing.T) {
	vars := map[string]string{
		"events.notanumber.signature": "X()",
		"events.signature":            "Y()",
	}
	assert.Equal(t, "", buildMatchReasons(vars, "events"))
}
