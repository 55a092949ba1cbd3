// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ChainPulse Contributors

package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/samber/oops"
	"github.com/stellar/go/strkey"
	"github.com/stellar/go/xdr"

	"github.com/chainpulse/chainpulse/internal/filter/stellarchain"
	"github.com/chainpulse/chainpulse/internal/model"
)

// SorobanClient speaks JSON-RPC to a soroban-rpc endpoint.
type SorobanClient struct {
	endpoint string
	http     *http.Client
	nextID   atomic.Int64
}

// NewSorobanClient binds to the first RPC URL of the network.
func NewSorobanClient(_ context.Context, network model.Network) (*SorobanClient, error) {
	if len(network.RPCURLs) == 0 {
		return nil, oops.Code("RPC_CONFIG").Errorf("network %q has no RPC URLs", network.Slug)
	}
	return &SorobanClient{
		endpoint: network.RPCURLs[0],
		http:     &http.Client{Timeout: 30 * time.Second},
	}, nil
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int64  `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *SorobanClient) call(ctx context.Context, method string, params, out any) error {
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      c.nextID.Add(1),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return oops.Code("RPC_REQUEST").Wrapf(err, "encoding %s request", method)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return oops.Code("RPC_REQUEST").Wrapf(err, "building %s request", method)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return oops.Code("RPC_REQUEST").Wrapf(err, "calling %s", method)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return oops.Code("RPC_REQUEST").Wrapf(err, "reading %s response", method)
	}

	var parsed rpcResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return oops.Code("RPC_REQUEST").Wrapf(err, "decoding %s response", method)
	}
	if parsed.Error != nil {
		return oops.Code("RPC_REQUEST").Errorf("%s failed: %d %s", method, parsed.Error.Code, parsed.Error.Message)
	}
	return json.Unmarshal(parsed.Result, out)
}

// GetLatestBlockNumber returns the latest closed ledger sequence.
func (c *SorobanClient) GetLatestBlockNumber(ctx context.Context) (uint64, error) {
	var result struct {
		Sequence uint64 `json:"sequence"`
	}
	if err := c.call(ctx, "getLatestLedger", nil, &result); err != nil {
		return 0, err
	}
	return result.Sequence, nil
}

type ledgerTransaction struct {
	Hash             string `json:"txHash"`
	EnvelopeXDR      string `json:"envelopeXdr"`
	ApplicationOrder int32  `json:"applicationOrder"`
	Status           string `json:"status"`
	Ledger           uint64 `json:"ledger"`
}

// GetBlocks fetches the transactions and contract events for each ledger
// in the inclusive range [start, end].
func (c *SorobanClient) GetBlocks(ctx context.Context, start uint64, end *uint64) ([]model.Block, error) {
	last := start
	if end != nil {
		last = *end
	}

	blocksBySeq := make(map[uint64]*model.StellarBlock)
	for seq := start; seq <= last; seq++ {
		blocksBySeq[seq] = &model.StellarBlock{Sequence: seq}
	}

	var txResult struct {
		Transactions []ledgerTransaction `json:"transactions"`
	}
	txParams := map[string]any{
		"startLedger": start,
		"pagination":  map[string]any{"limit": 200},
	}
	if err := c.call(ctx, "getTransactions", txParams, &txResult); err != nil {
		return nil, err
	}
	for _, tx := range txResult.Transactions {
		block, ok := blocksBySeq[tx.Ledger]
		if !ok {
			continue
		}
		block.Transactions = append(block.Transactions, model.StellarTransaction{
			Hash:             tx.Hash,
			EnvelopeXDR:      tx.EnvelopeXDR,
			ApplicationOrder: tx.ApplicationOrder,
			Successful:       tx.Status == "SUCCESS",
		})
	}

	var eventResult struct {
		Events []struct {
			ContractID string   `json:"contractId"`
			TxHash     string   `json:"txHash"`
			Topics     []string `json:"topic"`
			Value      string   `json:"value"`
			Ledger     uint64   `json:"ledger"`
		} `json:"events"`
	}
	eventParams := map[string]any{
		"startLedger": start,
		"filters":     []map[string]any{{"type": "contract"}},
		"pagination":  map[string]any{"limit": 1000},
	}
	if err := c.call(ctx, "getEvents", eventParams, &eventResult); err != nil {
		return nil, err
	}
	for _, event := range eventResult.Events {
		block, ok := blocksBySeq[event.Ledger]
		if !ok {
			continue
		}
		block.Events = append(block.Events, model.StellarEvent{
			ContractID:      event.ContractID,
			TransactionHash: event.TxHash,
			Topics:          event.Topics,
			Value:           event.Value,
		})
	}

	blocks := make([]model.Block, 0, last-start+1)
	for seq := start; seq <= last; seq++ {
		blocks = append(blocks, model.Block{Stellar: blocksBySeq[seq]})
	}
	return blocks, nil
}

// GetContractSpec resolves the ScSpec entries for a deployed contract:
// contract instance -> wasm hash -> contract code -> spec entries from
// the WASM custom section.
func (c *SorobanClient) GetContractSpec(ctx context.Context, contractID string) (model.ContractSpec, error) {
	instanceKey, err := contractInstanceLedgerKey(contractID)
	if err != nil {
		return nil, err
	}
	instanceEntry, err := c.getLedgerEntry(ctx, instanceKey)
	if err != nil {
		return nil, err
	}

	wasmHash, err := wasmHashFromInstance(instanceEntry)
	if err != nil {
		return nil, err
	}

	codeKey, err := xdr.MarshalBase64(xdr.LedgerKey{
		Type:         xdr.LedgerEntryTypeContractCode,
		ContractCode: &xdr.LedgerKeyContractCode{Hash: wasmHash},
	})
	if err != nil {
		return nil, oops.Code("STELLAR_XDR_DECODE").Wrapf(err, "encoding contract code key")
	}
	codeEntry, err := c.getLedgerEntry(ctx, codeKey)
	if err != nil {
		return nil, err
	}
	if codeEntry.Data.ContractCode == nil {
		return nil, oops.Code("RPC_REQUEST").Errorf("ledger entry for %q is not contract code", contractID)
	}

	entries, err := specEntriesFromWasm(codeEntry.Data.ContractCode.Code)
	if err != nil {
		return nil, err
	}
	return stellarchain.NewSpec(entries), nil
}

func (c *SorobanClient) getLedgerEntry(ctx context.Context, key string) (*xdr.LedgerEntry, error) {
	var result struct {
		Entries []struct {
			XDR string `json:"xdr"`
		} `json:"entries"`
	}
	params := map[string]any{"keys": []string{key}}
	if err := c.call(ctx, "getLedgerEntries", params, &result); err != nil {
		return nil, err
	}
	if len(result.Entries) == 0 {
		return nil, oops.Code("RPC_REQUEST").Errorf("ledger entry not found")
	}

	var data xdr.LedgerEntryData
	if err := xdr.SafeUnmarshalBase64(result.Entries[0].XDR, &data); err != nil {
		return nil, oops.Code("STELLAR_XDR_DECODE").Wrapf(err, "decoding ledger entry")
	}
	return &xdr.LedgerEntry{Data: data}, nil
}

// contractInstanceLedgerKey builds the base64 ledger key addressing a
// contract's instance entry.
func contractInstanceLedgerKey(contractID string) (string, error) {
	raw, err := strkey.Decode(strkey.VersionByteContract, contractID)
	if err != nil {
		return "", oops.Code("RPC_CONFIG").Wrapf(err, "decoding contract id %q", contractID)
	}
	var hash xdr.ContractId
	copy(hash[:], raw)

	key := xdr.LedgerKey{
		Type: xdr.LedgerEntryTypeContractData,
		ContractData: &xdr.LedgerKeyContractData{
			Contract: xdr.ScAddress{
				Type:       xdr.ScAddressTypeScAddressTypeContract,
				ContractId: &hash,
			},
			Key:        xdr.ScVal{Type: xdr.ScValTypeScvLedgerKeyContractInstance},
			Durability: xdr.ContractDataDurabilityPersistent,
		},
	}
	encoded, err := xdr.MarshalBase64(key)
	if err != nil {
		return "", oops.Code("STELLAR_XDR_DECODE").Wrapf(err, "encoding instance key")
	}
	return encoded, nil
}

func wasmHashFromInstance(entry *xdr.LedgerEntry) (xdr.Hash, error) {
	var zero xdr.Hash
	data := entry.Data.ContractData
	if data == nil || data.Val.Instance == nil {
		return zero, oops.Code("RPC_REQUEST").Errorf("ledger entry is not a contract instance")
	}
	executable := data.Val.Instance.Executable
	if executable.WasmHash == nil {
		return zero, oops.Code("RPC_REQUEST").Errorf("contract instance has no wasm executable")
	}
	return *executable.WasmHash, nil
}

// specEntriesFromWasm extracts the "contractspecv0" custom section from
// the module and decodes its concatenated ScSpecEntry values.
func specEntriesFromWasm(code []byte) ([]xdr.ScSpecEntry, error) {
	section, err := wasmCustomSection(code, "contractspecv0")
	if err != nil {
		return nil, err
	}

	var entries []xdr.ScSpecEntry
	reader := bytes.NewReader(section)
	for reader.Len() > 0 {
		var entry xdr.ScSpecEntry
		if _, err := xdr.Unmarshal(reader, &entry); err != nil {
			return nil, oops.Code("STELLAR_XDR_DECODE").Wrapf(err, "decoding spec entry")
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// wasmCustomSection walks the module's section table and returns the
// payload of the named custom section.
func wasmCustomSection(code []byte, name string) ([]byte, error) {
	const headerLen = 8 // magic + version
	if len(code) < headerLen || !bytes.Equal(code[:4], []byte{0x00, 0x61, 0x73, 0x6d}) {
		return nil, oops.Code("STELLAR_XDR_DECODE").Errorf("not a wasm module")
	}

	offset := headerLen
	for offset < len(code) {
		sectionID := code[offset]
		offset++
		size, n, err := readUvarint(code[offset:])
		if err != nil {
			return nil, err
		}
		offset += n
		if offset+int(size) > len(code) {
			return nil, oops.Code("STELLAR_XDR_DECODE").Errorf("truncated wasm section")
		}
		payload := code[offset : offset+int(size)]
		offset += int(size)

		if sectionID != 0 {
			continue
		}
		nameLen, n, err := readUvarint(payload)
		if err != nil {
			return nil, err
		}
		if int(nameLen)+n > len(payload) {
			return nil, oops.Code("STELLAR_XDR_DECODE").Errorf("truncated custom section name")
		}
		if string(payload[n:n+int(nameLen)]) == name {
			return payload[n+int(nameLen):], nil
		}
	}
	return nil, oops.Code("STELLAR_XDR_DECODE").Errorf("custom section %q not found", name)
}

func readUvarint(buf []byte) (uint64, int, error) {
	var value uint64
	var shift uint
	for i, b := range buf {
		value |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return value, i + 1, nil
		}
		shift += 7
		if shift > 63 {
			break
		}
	}
	return 0, 0, oops.Code("STELLAR_XDR_DECODE").Errorf("malformed varint")
}
