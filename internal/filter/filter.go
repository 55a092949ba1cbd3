// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ChainPulse Contributors

// Package filter defines the chain-agnostic filtering contract and the
// match handler that turns filter output into trigger dispatches.
package filter

import (
	"context"

	"github.com/chainpulse/chainpulse/internal/model"
)

// Error codes surfaced by block filters.
const (
	CodeBlockTypeMismatch = "FILTER_BLOCK_TYPE_MISMATCH"
)

// BlockFilter processes one block against a set of monitors and returns
// the produced matches. Implementations are stateless; a filter-level
// error aborts the block for the calling monitor set but not siblings.
type BlockFilter interface {
	FilterBlock(ctx context.Context, network model.Network, block model.Block, monitors []model.Monitor) ([]model.MonitorMatch, error)
}

// TriggerExecutor dispatches a match to its configured triggers. Errors
// for individual triggers are logged by the implementation and do not
// abort sibling dispatches.
type TriggerExecutor interface {
	Execute(ctx context.Context, triggerNames []string, variables map[string]string, match model.MonitorMatch, scripts model.TriggerScripts) error
}
