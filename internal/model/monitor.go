// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ChainPulse Contributors

package model

// TransactionStatus constrains a transaction match condition to a
// particular execution outcome.
type TransactionStatus string

const (
	TxStatusAny     TransactionStatus = "any"
	TxStatusSuccess TransactionStatus = "success"
	TxStatusFailure TransactionStatus = "failure"
)

// EventCondition matches a decoded event by canonical signature, with an
// optional predicate over the decoded arguments.
type EventCondition struct {
	Signature  string `koanf:"signature" json:"signature"`
	Expression string `koanf:"expression" json:"expression,omitempty"`
}

// FunctionCondition matches a decoded function call by canonical signature,
// with an optional predicate over the decoded arguments.
type FunctionCondition struct {
	Signature  string `koanf:"signature" json:"signature"`
	Expression string `koanf:"expression" json:"expression,omitempty"`
}

// TransactionCondition matches a transaction by status, with an optional
// predicate over the transaction parameter set.
type TransactionCondition struct {
	Status     TransactionStatus `koanf:"status" json:"status"`
	Expression string            `koanf:"expression" json:"expression,omitempty"`
}

// MatchConditions groups the three condition categories of a monitor.
// Empty categories are treated per the acceptance table in the filters.
type MatchConditions struct {
	Events       []EventCondition       `koanf:"events" json:"events"`
	Functions    []FunctionCondition    `koanf:"functions" json:"functions"`
	Transactions []TransactionCondition `koanf:"transactions" json:"transactions"`
}

// ContractSpec is an opaque per-chain contract declaration. EVM specs wrap
// a JSON ABI; Stellar specs wrap decoded ScSpec entries. The filters type
// assert to their own concrete spec type.
type ContractSpec interface {
	ChainType() ChainType
}

// AddressWithSpec pairs a monitored address with its optional contract spec.
type AddressWithSpec struct {
	Address string       `koanf:"address" json:"address"`
	Spec    ContractSpec `koanf:"-" json:"-"`
}

// ScriptLanguage selects the interpreter for a trigger condition script.
type ScriptLanguage string

const (
	ScriptPython     ScriptLanguage = "python"
	ScriptJavaScript ScriptLanguage = "javascript"
	ScriptBash       ScriptLanguage = "bash"
)

// ScriptCondition is a filter script that gates matches before dispatch.
type ScriptCondition struct {
	ScriptPath string         `koanf:"script_path" json:"script_path"`
	Language   ScriptLanguage `koanf:"language" json:"language"`
	Arguments  []string       `koanf:"arguments" json:"arguments,omitempty"`
	TimeoutMs  uint32         `koanf:"timeout_ms" json:"timeout_ms"`
}

// Monitor is a user-declared watch over one or more networks.
type Monitor struct {
	Name              string            `koanf:"name" json:"name"`
	Networks          []string          `koanf:"networks" json:"networks"`
	Paused            bool              `koanf:"paused" json:"paused"`
	Addresses         []AddressWithSpec `koanf:"addresses" json:"addresses"`
	Match             MatchConditions   `koanf:"match_conditions" json:"match_conditions"`
	TriggerConditions []ScriptCondition `koanf:"trigger_conditions" json:"trigger_conditions,omitempty"`
	Triggers          []string          `koanf:"triggers" json:"triggers"`
}

// WithoutSpecs returns a copy of the monitor with contract specs removed
// from every address. Matches materialised for dispatch must not carry
// ABIs or ScSpec entries.
func (m Monitor) WithoutSpecs() Monitor {
	addrs := make([]AddressWithSpec, len(m.Addresses))
	for i, a := range m.Addresses {
		addrs[i] = AddressWithSpec{Address: a.Address}
	}
	m.Addresses = addrs
	return m
}
