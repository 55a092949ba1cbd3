// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ChainPulse Contributors

// Package rpc declares the blockchain client contracts the filters
// consume and a typed, lazily-initialised client pool per chain family.
// The JSON-RPC transport behind these interfaces lives outside the core.
package rpc

import (
	"context"

	"github.com/chainpulse/chainpulse/internal/model"
)

// BlockchainClient is the chain-agnostic surface every network client
// exposes.
type BlockchainClient interface {
	// GetLatestBlockNumber returns the tip height (EVM) or latest ledger
	// sequence (Stellar).
	GetLatestBlockNumber(ctx context.Context) (uint64, error)

	// GetBlocks fetches the inclusive range [start, end]. A nil end
	// fetches the single block at start.
	GetBlocks(ctx context.Context, start uint64, end *uint64) ([]model.Block, error)
}

// EVMClient adds the EVM-only operations the block filter needs.
type EVMClient interface {
	BlockchainClient

	// GetLogsForBlocks returns all logs emitted in [from, to], optionally
	// restricted to the given emitting addresses.
	GetLogsForBlocks(ctx context.Context, from, to uint64, addresses []string) ([]model.EVMLog, error)

	// GetTransactionReceipt fetches the receipt for one transaction hash.
	GetTransactionReceipt(ctx context.Context, txHash string) (*model.EVMReceipt, error)
}

// StellarClient adds the Stellar-only operations the block filter needs.
// Event retrieval is bundled with block retrieval.
type StellarClient interface {
	BlockchainClient

	// GetContractSpec fetches and decodes the ScSpec entries embedded in
	// the contract's WASM.
	GetContractSpec(ctx context.Context, contractID string) (model.ContractSpec, error)
}
