// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ChainPulse Contributors

// Package modeltest provides fluent builders for test fixtures: monitors,
// networks, transactions, and receipts with sensible defaults so package
// tests only spell out what they are exercising.
package modeltest

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/chainpulse/chainpulse/internal/model"
)

// MonitorBuilder builds test Monitor instances.
type MonitorBuilder struct {
	monitor model.Monitor
}

// NewMonitor creates a builder with defaults: an unpaused monitor named
// "TestMonitor" watching the zero address on ethereum_mainnet, with no
// match conditions and no triggers.
func NewMonitor() *MonitorBuilder {
	return &MonitorBuilder{monitor: model.Monitor{
		Name:     "TestMonitor",
		Networks: []string{"ethereum_mainnet"},
		Addresses: []model.AddressWithSpec{
			{Address: "0x0000000000000000000000000000000000000000"},
		},
	}}
}

// Name sets the monitor name.
func (b *MonitorBuilder) Name(name string) *MonitorBuilder {
	b.monitor.Name = name
	return b
}

// Networks replaces the watched network slugs.
func (b *MonitorBuilder) Networks(slugs ...string) *MonitorBuilder {
	b.monitor.Networks = slugs
	return b
}

// Paused sets the paused flag.
func (b *MonitorBuilder) Paused(paused bool) *MonitorBuilder {
	b.monitor.Paused = paused
	return b
}

// Address replaces the address list with a single spec-less address.
func (b *MonitorBuilder) Address(address string) *MonitorBuilder {
	b.monitor.Addresses = []model.AddressWithSpec{{Address: address}}
	return b
}

// AddressWithSpec replaces the address list with a single address bound
// to a contract spec.
func (b *MonitorBuilder) AddressWithSpec(address string, spec model.ContractSpec) *MonitorBuilder {
	b.monitor.Addresses = []model.AddressWithSpec{{Address: address, Spec: spec}}
	return b
}

// Addresses replaces the address list with spec-less addresses.
func (b *MonitorBuilder) Addresses(addresses ...string) *MonitorBuilder {
	b.monitor.Addresses = nil
	for _, address := range addresses {
		b.monitor.Addresses = append(b.monitor.Addresses, model.AddressWithSpec{Address: address})
	}
	return b
}

// EventCondition appends an event match condition.
func (b *MonitorBuilder) EventCondition(signature, expression string) *MonitorBuilder {
	b.monitor.Match.Events = append(b.monitor.Match.Events, model.EventCondition{
		Signature:  signature,
		Expression: expression,
	})
	return b
}

// FunctionCondition appends a function match condition.
func (b *MonitorBuilder) FunctionCondition(signature, expression string) *MonitorBuilder {
	b.monitor.Match.Functions = append(b.monitor.Match.Functions, model.FunctionCondition{
		Signature:  signature,
		Expression: expression,
	})
	return b
}

// TransactionCondition appends a transaction match condition.
func (b *MonitorBuilder) TransactionCondition(status model.TransactionStatus, expression string) *MonitorBuilder {
	b.monitor.Match.Transactions = append(b.monitor.Match.Transactions, model.TransactionCondition{
		Status:     status,
		Expression: expression,
	})
	return b
}

// MatchConditions replaces the whole condition set.
func (b *MonitorBuilder) MatchConditions(match model.MatchConditions) *MonitorBuilder {
	b.monitor.Match = match
	return b
}

// Triggers replaces the attached trigger names.
func (b *MonitorBuilder) Triggers(names ...string) *MonitorBuilder {
	b.monitor.Triggers = names
	return b
}

// Build returns the monitor.
func (b *MonitorBuilder) Build() model.Monitor {
	return b.monitor
}

// NetworkBuilder builds test Network instances.
type NetworkBuilder struct {
	network model.Network
}

// NewNetwork creates a builder with defaults: an EVM network named
// "Test Network" with slug "ethereum_mainnet" and one local RPC URL.
func NewNetwork() *NetworkBuilder {
	return &NetworkBuilder{network: model.Network{
		Name:      "Test Network",
		Slug:      "ethereum_mainnet",
		ChainType: model.ChainEVM,
		RPCURLs:   []string{"http://localhost:8545"},
	}}
}

// Name sets the display name.
func (b *NetworkBuilder) Name(name string) *NetworkBuilder {
	b.network.Name = name
	return b
}

// Slug sets the network slug.
func (b *NetworkBuilder) Slug(slug string) *NetworkBuilder {
	b.network.Slug = slug
	return b
}

// ChainType sets the chain family.
func (b *NetworkBuilder) ChainType(chainType model.ChainType) *NetworkBuilder {
	b.network.ChainType = chainType
	return b
}

// RPCURLs replaces the endpoint list.
func (b *NetworkBuilder) RPCURLs(urls ...string) *NetworkBuilder {
	b.network.RPCURLs = urls
	return b
}

// Confirmations sets the confirmation depth.
func (b *NetworkBuilder) Confirmations(confirmations uint64) *NetworkBuilder {
	b.network.Confirmations = confirmations
	return b
}

// Build returns the network.
func (b *NetworkBuilder) Build() model.Network {
	return b.network
}

// EVMTransactionBuilder builds test EVM transactions.
type EVMTransactionBuilder struct {
	tx model.EVMTransaction
}

// NewEVMTransaction creates a builder with defaults: a zero-value
// transfer between the zero address and itself with a 21000 gas limit.
func NewEVMTransaction() *EVMTransactionBuilder {
	zero := common.Address{}
	return &EVMTransactionBuilder{tx: model.EVMTransaction{
		From:     &zero,
		To:       &zero,
		Value:    big.NewInt(0),
		GasLimit: 21000,
	}}
}

// Hash sets the transaction hash.
func (b *EVMTransactionBuilder) Hash(hash common.Hash) *EVMTransactionBuilder {
	b.tx.Hash = hash
	return b
}

// From sets the sender address.
func (b *EVMTransactionBuilder) From(from common.Address) *EVMTransactionBuilder {
	b.tx.From = &from
	return b
}

// To sets the recipient address.
func (b *EVMTransactionBuilder) To(to common.Address) *EVMTransactionBuilder {
	b.tx.To = &to
	return b
}

// ContractCreation clears the recipient, as for deployments.
func (b *EVMTransactionBuilder) ContractCreation() *EVMTransactionBuilder {
	b.tx.To = nil
	return b
}

// Value sets the transferred amount.
func (b *EVMTransactionBuilder) Value(value *big.Int) *EVMTransactionBuilder {
	b.tx.Value = value
	return b
}

// Input sets the calldata.
func (b *EVMTransactionBuilder) Input(input []byte) *EVMTransactionBuilder {
	b.tx.Input = input
	return b
}

// GasPrice sets the legacy gas price.
func (b *EVMTransactionBuilder) GasPrice(gasPrice *big.Int) *EVMTransactionBuilder {
	b.tx.GasPrice = gasPrice
	return b
}

// GasLimit sets the gas limit.
func (b *EVMTransactionBuilder) GasLimit(gasLimit uint64) *EVMTransactionBuilder {
	b.tx.GasLimit = gasLimit
	return b
}

// Nonce sets the sender nonce.
func (b *EVMTransactionBuilder) Nonce(nonce uint64) *EVMTransactionBuilder {
	b.tx.Nonce = nonce
	return b
}

// Index sets the position within the block.
func (b *EVMTransactionBuilder) Index(index uint64) *EVMTransactionBuilder {
	b.tx.Index = index
	return b
}

// Build returns the transaction.
func (b *EVMTransactionBuilder) Build() model.EVMTransaction {
	return b.tx
}

// EVMReceiptBuilder builds test EVM receipts.
type EVMReceiptBuilder struct {
	receipt model.EVMReceipt
}

// NewEVMReceipt creates a builder with defaults: a successful receipt
// that used 21000 gas and emitted no logs.
func NewEVMReceipt() *EVMReceiptBuilder {
	return &EVMReceiptBuilder{receipt: model.EVMReceipt{
		Status:  1,
		GasUsed: 21000,
	}}
}

// TransactionHash sets the receipt's transaction hash.
func (b *EVMReceiptBuilder) TransactionHash(hash common.Hash) *EVMReceiptBuilder {
	b.receipt.TxHash = hash
	return b
}

// Status sets the execution outcome.
func (b *EVMReceiptBuilder) Status(success bool) *EVMReceiptBuilder {
	if success {
		b.receipt.Status = 1
	} else {
		b.receipt.Status = 0
	}
	return b
}

// GasUsed sets the gas consumed.
func (b *EVMReceiptBuilder) GasUsed(gasUsed uint64) *EVMReceiptBuilder {
	b.receipt.GasUsed = gasUsed
	return b
}

// Logs replaces the emitted logs.
func (b *EVMReceiptBuilder) Logs(logs ...model.EVMLog) *EVMReceiptBuilder {
	b.receipt.Logs = logs
	return b
}

// Build returns the receipt.
func (b *EVMReceiptBuilder) Build() *model.EVMReceipt {
	receipt := b.receipt
	return &receipt
}

// StellarTransactionBuilder builds test Stellar transactions.
type StellarTransactionBuilder struct {
	tx model.StellarTransaction
}

// NewStellarTransaction creates a builder with defaults: a successful
// transaction with a placeholder hash and no envelope.
func NewStellarTransaction() *StellarTransactionBuilder {
	return &StellarTransactionBuilder{tx: model.StellarTransaction{
		Hash:       "0000000000000000000000000000000000000000000000000000000000000000",
		Successful: true,
	}}
}

// Hash sets the transaction hash.
func (b *StellarTransactionBuilder) Hash(hash string) *StellarTransactionBuilder {
	b.tx.Hash = hash
	return b
}

// EnvelopeXDR sets the base64 envelope payload.
func (b *StellarTransactionBuilder) EnvelopeXDR(envelope string) *StellarTransactionBuilder {
	b.tx.EnvelopeXDR = envelope
	return b
}

// ApplicationOrder sets the position within the ledger.
func (b *StellarTransactionBuilder) ApplicationOrder(order int32) *StellarTransactionBuilder {
	b.tx.ApplicationOrder = order
	return b
}

// Successful sets the execution outcome.
func (b *StellarTransactionBuilder) Successful(successful bool) *StellarTransactionBuilder {
	b.tx.Successful = successful
	return b
}

// Build returns the transaction.
func (b *StellarTransactionBuilder) Build() model.StellarTransaction {
	return b.tx
}

// EVMBlock wraps transactions into a chain-tagged block.
func EVMBlock(number uint64, txs ...model.EVMTransaction) model.Block {
	return model.Block{EVM: &model.EVMBlock{
		Number:       number,
		Transactions: txs,
	}}
}

// StellarLedger wraps transactions and events into a chain-tagged block.
func StellarLedger(sequence uint64, txs []model.StellarTransaction, events []model.StellarEvent) model.Block {
	return model.Block{Stellar: &model.StellarBlock{
		Sequence:     sequence,
		Transactions: txs,
		Events:       events,
	}}
}
