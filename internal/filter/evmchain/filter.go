// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ChainPulse Contributors

package evmchain

import (
	"context"
	"encoding/hex"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/samber/oops"

	"github.com/chainpulse/chainpulse/internal/expr"
	"github.com/chainpulse/chainpulse/internal/filter"
	"github.com/chainpulse/chainpulse/internal/model"
	"github.com/chainpulse/chainpulse/internal/rpc"
)

// Filter matches EVM blocks against monitors: transaction conditions over
// the fixed parameter schema, function conditions via ABI input decoding,
// and event conditions via log decoding.
type Filter struct {
	client rpc.EVMClient
	logger *slog.Logger
}

// NewFilter builds an EVM block filter over the given client.
func NewFilter(client rpc.EVMClient, logger *slog.Logger) *Filter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Filter{client: client, logger: logger}
}

func addressString(a *common.Address) string {
	if a == nil {
		return ""
	}
	return strings.ToLower(a.Hex())
}

// transactionParams builds the fixed transaction parameter schema exposed
// to transaction-condition expressions.
func transactionParams(tx model.EVMTransaction, receipt *model.EVMReceipt) []model.ParamEntry {
	gasUsed := ""
	if receipt != nil {
		gasUsed = formatUint(receipt.GasUsed)
	}
	value := "0"
	if tx.Value != nil {
		value = tx.Value.String()
	}
	gasPrice, maxFee, maxPriority := "0", "0", "0"
	if tx.GasPrice != nil {
		gasPrice = tx.GasPrice.String()
	}
	if tx.MaxFeePerGas != nil {
		maxFee = tx.MaxFeePerGas.String()
	}
	if tx.MaxPriorityFeePerGas != nil {
		maxPriority = tx.MaxPriorityFeePerGas.String()
	}

	return []model.ParamEntry{
		{Name: "value", Value: value, Kind: "uint256"},
		{Name: "from", Value: addressString(tx.From), Kind: "address"},
		{Name: "to", Value: addressString(tx.To), Kind: "address"},
		{Name: "hash", Value: strings.ToLower(tx.Hash.Hex()), Kind: "string"},
		{Name: "gas_price", Value: gasPrice, Kind: "uint256"},
		{Name: "max_fee_per_gas", Value: maxFee, Kind: "uint256"},
		{Name: "max_priority_fee_per_gas", Value: maxPriority, Kind: "uint256"},
		{Name: "gas_limit", Value: formatUint(tx.GasLimit), Kind: "uint256"},
		{Name: "nonce", Value: formatUint(tx.Nonce), Kind: "uint256"},
		{Name: "input", Value: "0x" + hex.EncodeToString(tx.Input), Kind: "string"},
		{Name: "gas_used", Value: gasUsed, Kind: "uint256"},
		{Name: "transaction_index", Value: formatUint(tx.Index), Kind: "uint64"},
	}
}

func formatUint(v uint64) string {
	return strconv.FormatUint(v, 10)
}

// EvaluateExpression parses and evaluates an expression against decoded
// EVM parameters.
func (f *Filter) EvaluateExpression(expression string, args []model.ParamEntry) (bool, error) {
	if strings.TrimSpace(expression) == "" {
		return false, expr.ParseErrorf("expression cannot be empty")
	}
	parsed, err := expr.Parse(expression)
	if err != nil {
		return false, err
	}
	return expr.Evaluate(parsed, NewEvaluator(args))
}

// findMatchingTransaction appends the first transaction condition the
// transaction satisfies. An empty condition list produces one synthetic
// any-status match.
func (f *Filter) findMatchingTransaction(
	status model.TransactionStatus,
	tx model.EVMTransaction,
	receipt *model.EVMReceipt,
	monitor model.Monitor,
	matched *[]model.TransactionCondition,
) {
	if len(monitor.Match.Transactions) == 0 {
		*matched = append(*matched, model.TransactionCondition{Status: model.TxStatusAny})
		return
	}

	for _, cond := range monitor.Match.Transactions {
		if cond.Status != model.TxStatusAny && cond.Status != status {
			continue
		}
		if cond.Expression == "" {
			*matched = append(*matched, model.TransactionCondition{Status: status})
			return
		}
		ok, err := f.EvaluateExpression(cond.Expression, transactionParams(tx, receipt))
		if err != nil {
			f.logger.Error("evaluating transaction expression",
				"expression", cond.Expression, "error", err)
			continue
		}
		if ok {
			*matched = append(*matched, model.TransactionCondition{
				Status:     status,
				Expression: cond.Expression,
			})
			return
		}
	}
}

// findMatchingFunctions decodes the transaction input against the ABI of
// the monitored `to` address and appends matching function conditions.
func (f *Filter) findMatchingFunctions(
	tx model.EVMTransaction,
	monitor model.Monitor,
	matched *[]model.FunctionCondition,
	matchedArgs *model.MatchArguments,
) {
	if len(monitor.Match.Functions) == 0 || tx.To == nil || len(tx.Input) < 4 {
		return
	}

	var contractABI *ContractABI
	for _, addr := range monitor.Addresses {
		if SameAddress(addr.Address, addressString(tx.To)) {
			if spec, ok := addr.Spec.(*ContractABI); ok {
				contractABI = spec
			}
			break
		}
	}
	if contractABI == nil {
		return
	}

	method, ok := contractABI.MethodBySelector(tx.Input[:4])
	if !ok {
		return
	}
	signature := canonicalSignature(method.Name, method.Inputs)

	decoded, err := method.Inputs.Unpack(tx.Input[4:])
	if err != nil {
		f.logger.Error("decoding function input", "signature", signature, "error", err)
		return
	}
	params := make([]model.ParamEntry, len(method.Inputs))
	for i, input := range method.Inputs {
		params[i] = model.ParamEntry{
			Name:  input.Name,
			Value: FormatDecodedValue(decoded[i]),
			Kind:  input.Type.String(),
		}
	}

	for _, cond := range monitor.Match.Functions {
		if !SameSignature(cond.Signature, signature) {
			continue
		}
		if cond.Expression != "" {
			ok, err := f.EvaluateExpression(cond.Expression, params)
			if err != nil {
				f.logger.Error("evaluating function expression",
					"expression", cond.Expression, "error", err)
				continue
			}
			if !ok {
				continue
			}
		}
		*matched = append(*matched, model.FunctionCondition{
			Signature:  signature,
			Expression: cond.Expression,
		})
		matchedArgs.Functions = append(matchedArgs.Functions, model.MatchParamsMap{
			Signature:    signature,
			Args:         params,
			HexSignature: "0x" + hex.EncodeToString(method.ID),
		})
		return
	}
}

// findMatchingEvents decodes logs from monitored emitters and appends
// matching event conditions. An empty condition list accepts every
// decodable event from a monitored address.
func (f *Filter) findMatchingEvents(
	logs []model.EVMLog,
	monitor model.Monitor,
	matched *[]model.EventCondition,
	matchedArgs *model.MatchArguments,
	involvedAddresses *[]string,
) {
	for _, log := range logs {
		var monitored *model.AddressWithSpec
		for i, addr := range monitor.Addresses {
			if SameAddress(addr.Address, strings.ToLower(log.Address.Hex())) {
				monitored = &monitor.Addresses[i]
				break
			}
		}
		if monitored == nil {
			continue
		}

		*involvedAddresses = append(*involvedAddresses, strings.ToLower(log.Address.Hex()))

		contractABI, ok := monitored.Spec.(*ContractABI)
		if !ok || contractABI == nil {
			continue
		}

		decoded := f.DecodeEvent(contractABI, log)
		if decoded == nil {
			continue
		}

		if len(monitor.Match.Events) == 0 {
			*matched = append(*matched, model.EventCondition{Signature: decoded.Signature})
			matchedArgs.Events = append(matchedArgs.Events, *decoded)
			continue
		}

		for _, cond := range monitor.Match.Events {
			if !SameSignature(cond.Signature, decoded.Signature) {
				continue
			}
			if cond.Expression != "" {
				ok, err := f.EvaluateExpression(cond.Expression, decoded.Args)
				if err != nil {
					f.logger.Error("evaluating event expression",
						"expression", cond.Expression, "error", err)
					continue
				}
				if !ok {
					continue
				}
			}
			*matched = append(*matched, model.EventCondition{
				Signature:  decoded.Signature,
				Expression: cond.Expression,
			})
			matchedArgs.Events = append(matchedArgs.Events, *decoded)
			break
		}
	}
}

// DecodeEvent decodes one log against the contract ABI, preserving the
// declared parameter order and tagging indexed entries.
func (f *Filter) DecodeEvent(contractABI *ContractABI, log model.EVMLog) *model.MatchParamsMap {
	if len(log.Topics) == 0 {
		return nil
	}
	event, ok := contractABI.EventByTopic(log.Topics[0])
	if !ok {
		f.logger.Debug("no matching event for log topic", "topic", log.Topics[0].Hex())
		return nil
	}

	nonIndexed, err := event.Inputs.NonIndexed().Unpack(log.Data)
	if err != nil {
		f.logger.Error("decoding event data", "event", event.Name, "error", err)
		return nil
	}

	params := make([]model.ParamEntry, 0, len(event.Inputs))
	topicIdx, bodyIdx := 1, 0
	for _, input := range event.Inputs {
		var value string
		if input.Indexed {
			if topicIdx >= len(log.Topics) {
				f.logger.Error("missing topic for indexed event argument",
					"event", event.Name, "argument", input.Name)
				return nil
			}
			value = formatTopicValue(input.Type, log.Topics[topicIdx])
			topicIdx++
		} else {
			if bodyIdx >= len(nonIndexed) {
				return nil
			}
			value = FormatDecodedValue(nonIndexed[bodyIdx])
			bodyIdx++
		}
		params = append(params, model.ParamEntry{
			Name:    input.Name,
			Value:   value,
			Kind:    input.Type.String(),
			Indexed: input.Indexed,
		})
	}

	return &model.MatchParamsMap{
		Signature:    canonicalSignature(event.Name, event.Inputs),
		Args:         params,
		HexSignature: strings.ToLower(event.ID.Hex()),
	}
}

// needsReceipt reports whether any transaction condition requires receipt
// data: a non-any status when the block produced no logs (a failed
// transaction emits none, so status cannot be inferred), or a gas_used
// reference in an expression.
func (f *Filter) needsReceipt(monitor model.Monitor, logs []model.EVMLog) bool {
	for _, cond := range monitor.Match.Transactions {
		if cond.Status != model.TxStatusAny && len(logs) == 0 {
			return true
		}
		if strings.Contains(cond.Expression, "gas_used") {
			return true
		}
	}
	return false
}

// FilterBlock implements filter.BlockFilter for EVM blocks.
func (f *Filter) FilterBlock(ctx context.Context, network model.Network, block model.Block, monitors []model.Monitor) ([]model.MonitorMatch, error) {
	if block.EVM == nil {
		return nil, oops.Code(filter.CodeBlockTypeMismatch).Errorf("expected EVM block for network %q", network.Slug)
	}
	evmBlock := block.EVM

	f.logger.Debug("processing block", "network", network.Slug, "block", evmBlock.Number)

	// Logs are fetched one block at a time; some RPC providers cap the
	// range tightly enough that batching is not worth the failure modes.
	blockLogs, err := f.client.GetLogsForBlocks(ctx, evmBlock.Number, evmBlock.Number, nil)
	if err != nil {
		return nil, oops.Wrapf(err, "fetching logs for block %d", evmBlock.Number)
	}

	logsByTx := make(map[common.Hash][]model.EVMLog)
	for _, log := range blockLogs {
		logsByTx[log.TxHash] = append(logsByTx[log.TxHash], log)
	}

	var results []model.MonitorMatch

	for _, monitor := range monitors {
		shouldFetchReceipt := f.needsReceipt(monitor, blockLogs)

		for _, tx := range evmBlock.Transactions {
			logs := logsByTx[tx.Hash]

			var receipt *model.EVMReceipt
			if shouldFetchReceipt {
				receipt, err = f.client.GetTransactionReceipt(ctx, tx.Hash.Hex())
				if err != nil {
					return nil, oops.Wrapf(err, "fetching receipt for %s", tx.Hash.Hex())
				}
			}

			// Without a receipt assume success: failed transactions emit
			// no logs, and a receipt is fetched whenever status matters.
			status := model.TxStatusSuccess
			if receipt != nil && receipt.Status != 1 {
				status = model.TxStatusFailure
			}

			involved := make([]string, 0, 4)
			if tx.From != nil {
				involved = append(involved, addressString(tx.From))
			}
			if tx.To != nil {
				involved = append(involved, addressString(tx.To))
			}

			matchedArgs := &model.MatchArguments{}
			var matchedTxs []model.TransactionCondition
			var matchedEvents []model.EventCondition
			var matchedFunctions []model.FunctionCondition

			f.findMatchingTransaction(status, tx, receipt, monitor, &matchedTxs)
			f.findMatchingEvents(logs, monitor, &matchedEvents, matchedArgs, &involved)
			f.findMatchingFunctions(tx, monitor, &matchedFunctions, matchedArgs)

			slices.Sort(involved)
			involved = slices.Compact(involved)

			hasAddressMatch := false
			for _, addr := range monitor.Addresses {
				if slices.ContainsFunc(involved, func(a string) bool { return SameAddress(a, addr.Address) }) {
					hasAddressMatch = true
					break
				}
			}
			if !hasAddressMatch {
				continue
			}

			match := buildMatch(monitor, network, tx, receipt, logs,
				matchedTxs, matchedEvents, matchedFunctions, matchedArgs)
			if match != nil {
				results = append(results, *match)
			}
		}
	}

	return results, nil
}

// buildMatch applies the acceptance table over the three condition
// categories and materialises the match with contract specs dropped.
func buildMatch(
	monitor model.Monitor,
	network model.Network,
	tx model.EVMTransaction,
	receipt *model.EVMReceipt,
	logs []model.EVMLog,
	matchedTxs []model.TransactionCondition,
	matchedEvents []model.EventCondition,
	matchedFunctions []model.FunctionCondition,
	matchedArgs *model.MatchArguments,
) *model.MonitorMatch {
	noEventConds := len(monitor.Match.Events) == 0
	noFunctionConds := len(monitor.Match.Functions) == 0
	noTxConds := len(monitor.Match.Transactions) == 0

	hasEventMatch := !noEventConds && len(matchedEvents) > 0
	hasFunctionMatch := !noFunctionConds && len(matchedFunctions) > 0
	hasTxMatch := !noTxConds && len(matchedTxs) > 0

	var accept bool
	switch {
	case noEventConds && noFunctionConds && noTxConds:
		accept = true
	case noEventConds && noFunctionConds:
		accept = hasTxMatch
	case noTxConds:
		accept = hasEventMatch || hasFunctionMatch
	default:
		accept = (hasEventMatch || hasFunctionMatch) && hasTxMatch
	}
	if !accept {
		return nil
	}

	matchedOn := model.MatchConditions{}
	if hasEventMatch {
		matchedOn.Events = matchedEvents
	}
	if hasFunctionMatch {
		matchedOn.Functions = matchedFunctions
	}
	if hasTxMatch {
		matchedOn.Transactions = matchedTxs
	}

	args := &model.MatchArguments{}
	if hasEventMatch {
		args.Events = matchedArgs.Events
	}
	if hasFunctionMatch {
		args.Functions = matchedArgs.Functions
	}

	return &model.MonitorMatch{EVM: &model.EVMMonitorMatch{
		Monitor:       monitor.WithoutSpecs(),
		Transaction:   tx,
		Receipt:       receipt,
		Logs:          logs,
		NetworkSlug:   network.Slug,
		MatchedOn:     matchedOn,
		MatchedOnArgs: args,
	}}
}
