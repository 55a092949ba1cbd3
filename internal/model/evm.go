// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ChainPulse Contributors

package model

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// EVMBlock is the subset of an EVM block the filter consumes.
type EVMBlock struct {
	Number       uint64           `json:"number"`
	Hash         common.Hash      `json:"hash"`
	Timestamp    uint64           `json:"timestamp"`
	Transactions []EVMTransaction `json:"transactions"`
}

// EVMTransaction carries the transaction fields exposed to match
// conditions. From is nil for transactions whose sender could not be
// recovered; To is nil for contract creations.
type EVMTransaction struct {
	Hash                 common.Hash     `json:"hash"`
	From                 *common.Address `json:"from,omitempty"`
	To                   *common.Address `json:"to,omitempty"`
	Value                *big.Int        `json:"value"`
	GasPrice             *big.Int        `json:"gas_price,omitempty"`
	MaxFeePerGas         *big.Int        `json:"max_fee_per_gas,omitempty"`
	MaxPriorityFeePerGas *big.Int        `json:"max_priority_fee_per_gas,omitempty"`
	GasLimit             uint64          `json:"gas_limit"`
	Nonce                uint64          `json:"nonce"`
	Input                []byte          `json:"input"`
	Index                uint64          `json:"transaction_index"`
}

// EVMLog is a receipt log entry.
type EVMLog struct {
	Address common.Address `json:"address"`
	Topics  []common.Hash  `json:"topics"`
	Data    []byte         `json:"data"`
	TxHash  common.Hash    `json:"transaction_hash"`
	Index   uint           `json:"log_index"`
}

// EVMReceipt is the subset of a transaction receipt the filter consumes.
type EVMReceipt struct {
	TxHash  common.Hash `json:"transaction_hash"`
	Status  uint64      `json:"status"`
	GasUsed uint64      `json:"gas_used"`
	Logs    []EVMLog    `json:"logs"`
}

// EVMMonitorMatch is the EVM variant of a produced match.
type EVMMonitorMatch struct {
	Monitor       Monitor         `json:"monitor"`
	Transaction   EVMTransaction  `json:"transaction"`
	Receipt       *EVMReceipt     `json:"receipt,omitempty"`
	Logs          []EVMLog        `json:"logs,omitempty"`
	NetworkSlug   string          `json:"network_slug"`
	MatchedOn     MatchConditions `json:"matched_on"`
	MatchedOnArgs *MatchArguments `json:"matched_on_args,omitempty"`
}
