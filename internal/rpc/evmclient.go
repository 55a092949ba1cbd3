// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ChainPulse Contributors

package rpc

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/samber/oops"

	"github.com/chainpulse/chainpulse/internal/model"
)

// GethClient adapts an ethclient connection to the EVMClient contract.
type GethClient struct {
	client *ethclient.Client
}

// NewGethClient dials the first RPC URL of the network.
func NewGethClient(ctx context.Context, network model.Network) (*GethClient, error) {
	if len(network.RPCURLs) == 0 {
		return nil, oops.Code("RPC_CONFIG").Errorf("network %q has no RPC URLs", network.Slug)
	}
	client, err := ethclient.DialContext(ctx, network.RPCURLs[0])
	if err != nil {
		return nil, oops.Code("RPC_DIAL").Wrapf(err, "dialing %q", network.RPCURLs[0])
	}
	return &GethClient{client: client}, nil
}

// GetLatestBlockNumber returns the chain tip height.
func (c *GethClient) GetLatestBlockNumber(ctx context.Context) (uint64, error) {
	number, err := c.client.BlockNumber(ctx)
	if err != nil {
		return 0, oops.Code("RPC_REQUEST").Wrapf(err, "eth_blockNumber")
	}
	return number, nil
}

// GetBlocks fetches the inclusive range [start, end] with full
// transaction bodies.
func (c *GethClient) GetBlocks(ctx context.Context, start uint64, end *uint64) ([]model.Block, error) {
	last := start
	if end != nil {
		last = *end
	}

	var blocks []model.Block
	for number := start; number <= last; number++ {
		block, err := c.client.BlockByNumber(ctx, new(big.Int).SetUint64(number))
		if err != nil {
			return nil, oops.Code("RPC_REQUEST").Wrapf(err, "eth_getBlockByNumber(%d)", number)
		}
		blocks = append(blocks, model.Block{EVM: convertBlock(block)})
	}
	return blocks, nil
}

func convertBlock(block *types.Block) *model.EVMBlock {
	out := &model.EVMBlock{
		Number:    block.NumberU64(),
		Hash:      block.Hash(),
		Timestamp: block.Time(),
	}
	signer := types.LatestSignerForChainID(nil)
	for i, tx := range block.Transactions() {
		converted := model.EVMTransaction{
			Hash:                 tx.Hash(),
			To:                   tx.To(),
			Value:                tx.Value(),
			GasPrice:             tx.GasPrice(),
			MaxFeePerGas:         tx.GasFeeCap(),
			MaxPriorityFeePerGas: tx.GasTipCap(),
			GasLimit:             tx.Gas(),
			Nonce:                tx.Nonce(),
			Input:                tx.Data(),
			Index:                uint64(i),
		}
		if from, err := types.Sender(signer, tx); err == nil {
			converted.From = &from
		}
		out.Transactions = append(out.Transactions, converted)
	}
	return out
}

// GetLogsForBlocks returns the logs emitted in [from, to], optionally
// restricted to the given emitters.
func (c *GethClient) GetLogsForBlocks(ctx context.Context, from, to uint64, addresses []string) ([]model.EVMLog, error) {
	query := ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(from),
		ToBlock:   new(big.Int).SetUint64(to),
	}
	for _, addr := range addresses {
		query.Addresses = append(query.Addresses, common.HexToAddress(addr))
	}

	logs, err := c.client.FilterLogs(ctx, query)
	if err != nil {
		return nil, oops.Code("RPC_REQUEST").Wrapf(err, "eth_getLogs(%d..%d)", from, to)
	}

	out := make([]model.EVMLog, len(logs))
	for i, log := range logs {
		out[i] = model.EVMLog{
			Address: log.Address,
			Topics:  log.Topics,
			Data:    log.Data,
			TxHash:  log.TxHash,
			Index:   log.Index,
		}
	}
	return out, nil
}

// GetTransactionReceipt fetches one receipt.
func (c *GethClient) GetTransactionReceipt(ctx context.Context, txHash string) (*model.EVMReceipt, error) {
	receipt, err := c.client.TransactionReceipt(ctx, common.HexToHash(txHash))
	if err != nil {
		return nil, oops.Code("RPC_REQUEST").Wrapf(err, "eth_getTransactionReceipt(%s)", txHash)
	}

	out := &model.EVMReceipt{
		TxHash:  receipt.TxHash,
		Status:  receipt.Status,
		GasUsed: receipt.GasUsed,
	}
	for _, log := range receipt.Logs {
		out.Logs = append(out.Logs, model.EVMLog{
			Address: log.Address,
			Topics:  log.Topics,
			Data:    log.Data,
			TxHash:  log.TxHash,
			Index:   log.Index,
		})
	}
	return out, nil
}
