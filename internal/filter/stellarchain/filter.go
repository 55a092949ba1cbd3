// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ChainPulse Contributors

package stellarchain

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/samber/oops"
	"github.com/stellar/go/xdr"

	"github.com/chainpulse/chainpulse/internal/expr"
	"github.com/chainpulse/chainpulse/internal/filter"
	"github.com/chainpulse/chainpulse/internal/model"
	"github.com/chainpulse/chainpulse/internal/rpc"
)

// Filter matches Stellar ledgers against monitors: transaction conditions
// over the envelope, function conditions over decoded host-function
// invocations, and event conditions over contract events.
type Filter struct {
	client rpc.StellarClient
	logger *slog.Logger
}

// NewFilter builds a Stellar block filter over the given client.
func NewFilter(client rpc.StellarClient, logger *slog.Logger) *Filter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Filter{client: client, logger: logger}
}

// invocation is one decoded InvokeHostFunction operation.
type invocation struct {
	ContractAddress string
	FunctionName    string
	Signature       string
	Args            []model.ParamEntry
}

// EvaluateExpression parses and evaluates an expression against decoded
// Stellar parameters.
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

// decodeInvocations extracts every contract invocation from a transaction
// envelope. The signature is resolved from the contract spec when one is
// available for the target address, otherwise synthesised from the
// runtime argument kinds.
func (f *Filter) decodeInvocations(tx model.StellarTransaction, monitor model.Monitor) []invocation {
	var env xdr.TransactionEnvelope
	if err := xdr.SafeUnmarshalBase64(tx.EnvelopeXDR, &env); err != nil {
		f.logger.Error("decoding transaction envelope", "tx", tx.Hash, "error", err)
		return nil
	}

	var out []invocation
	for _, op := range env.Operations() {
		invokeOp, ok := op.Body.GetInvokeHostFunctionOp()
		if !ok {
			continue
		}
		contractArgs, ok := invokeOp.HostFunction.GetInvokeContract()
		if !ok {
			continue
		}

		contractAddress := EncodeScAddress(contractArgs.ContractAddress)
		functionName := string(contractArgs.FunctionName)

		values := make([]Value, len(contractArgs.Args))
		kinds := make([]string, len(contractArgs.Args))
		for i, arg := range contractArgs.Args {
			values[i] = FromScVal(arg)
			kinds[i] = values[i].TypeTag()
		}

		var spec *Spec
		for _, addr := range monitor.Addresses {
			if SameAddress(addr.Address, contractAddress) {
				if s, ok := addr.Spec.(*Spec); ok {
					spec = s
				}
				break
			}
		}

		signature := functionName + "(" + strings.Join(kinds, ",") + ")"
		params := make([]model.ParamEntry, len(values))
		if spec != nil {
			if fn, ok := spec.FindFunction(functionName, kinds); ok {
				signature = fn.Signature
				for i, v := range values {
					params[i] = v.ToParamEntry(fn.Inputs[i].Name, false)
				}
			} else {
				spec = nil
			}
		}
		if spec == nil {
			for i, v := range values {
				params[i] = v.ToParamEntry("arg"+strconv.Itoa(i), false)
			}
		}

		out = append(out, invocation{
			ContractAddress: contractAddress,
			FunctionName:    functionName,
			Signature:       signature,
			Args:            params,
		})
	}
	return out
}

// DecodeEvent folds a contract event into the parameter model. Symbol
// topics act as the event discriminator and join into the signature name;
// the remaining topics decode as indexed arguments, the body value as a
// non-indexed argument.
func (f *Filter) DecodeEvent(event model.StellarEvent) (*model.MatchParamsMap, error) {
	var symbols []string
	var args []model.ParamEntry
	var kinds []string

	for _, topic := range event.Topics {
		scVal, err := DecodeScValBase64(topic)
		if err != nil {
			return nil, err
		}
		value := FromScVal(scVal)
		if value.Kind == KindSymbol && len(args) == 0 {
			symbols = append(symbols, value.Str)
			continue
		}
		args = append(args, value.ToParamEntry("arg"+strconv.Itoa(len(args)), true))
		kinds = append(kinds, value.TypeTag())
	}

	if event.Value != "" {
		scVal, err := DecodeScValBase64(event.Value)
		if err != nil {
			return nil, err
		}
		value := FromScVal(scVal)
		args = append(args, value.ToParamEntry("arg"+strconv.Itoa(len(args)), false))
		kinds = append(kinds, value.TypeTag())
	}

	name := strings.Join(symbols, "_")
	if name == "" {
		name = "unknown_event"
	}

	return &model.MatchParamsMap{
		Signature: fmt.Sprintf("%s(%s)", name, strings.Join(kinds, ",")),
		Args:      args,
	}, nil
}

// transactionParams builds the transaction parameter set exposed to
// transaction-condition expressions.
func transactionParams(tx model.StellarTransaction) []model.ParamEntry {
	return []model.ParamEntry{
		{Name: "hash", Value: tx.Hash, Kind: "String"},
		{Name: "application_order", Value: strconv.FormatInt(int64(tx.ApplicationOrder), 10), Kind: "I64"},
		{Name: "successful", Value: strconv.FormatBool(tx.Successful), Kind: "Bool"},
	}
}

func (f *Filter) findMatchingTransaction(
	status model.TransactionStatus,
	tx model.StellarTransaction,
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
		ok, err := f.EvaluateExpression(cond.Expression, transactionParams(tx))
		if err != nil {
			f.logger.Error("evaluating transaction expression",
				"expression", cond.Expression, "error", err)
			continue
		}
		if ok {
			*matched = append(*matched, model.TransactionCondition{Status: status, Expression: cond.Expression})
			return
		}
	}
}

func (f *Filter) findMatchingFunctions(
	invocations []invocation,
	monitor model.Monitor,
	matched *[]model.FunctionCondition,
	matchedArgs *model.MatchArguments,
	involved *[]string,
) {
	for _, inv := range invocations {
		monitored := false
		for _, addr := range monitor.Addresses {
			if SameAddress(addr.Address, inv.ContractAddress) {
				monitored = true
				break
			}
		}
		if !monitored {
			continue
		}
		*involved = append(*involved, inv.ContractAddress)

		if len(monitor.Match.Functions) == 0 {
			continue
		}
		for _, cond := range monitor.Match.Functions {
			if !SameSignature(cond.Signature, inv.Signature) {
				continue
			}
			if cond.Expression != "" {
				ok, err := f.EvaluateExpression(cond.Expression, inv.Args)
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
				Signature:  inv.Signature,
				Expression: cond.Expression,
			})
			matchedArgs.Functions = append(matchedArgs.Functions, model.MatchParamsMap{
				Signature: inv.Signature,
				Args:      inv.Args,
			})
			break
		}
	}
}

func (f *Filter) findMatchingEvents(
	events []model.StellarEvent,
	monitor model.Monitor,
	matched *[]model.EventCondition,
	matchedArgs *model.MatchArguments,
	involved *[]string,
) {
	for _, event := range events {
		monitored := false
		for _, addr := range monitor.Addresses {
			if SameAddress(addr.Address, event.ContractID) {
				monitored = true
				break
			}
		}
		if !monitored {
			continue
		}
		*involved = append(*involved, event.ContractID)

		decoded, err := f.DecodeEvent(event)
		if err != nil {
			f.logger.Error("decoding contract event", "contract", event.ContractID, "error", err)
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

// FilterBlock implements filter.BlockFilter for Stellar ledgers.
func (f *Filter) FilterBlock(ctx context.Context, network model.Network, block model.Block, monitors []model.Monitor) ([]model.MonitorMatch, error) {
	if block.Stellar == nil {
		return nil, oops.Code(filter.CodeBlockTypeMismatch).Errorf("expected Stellar ledger for network %q", network.Slug)
	}
	ledger := block.Stellar

	f.logger.Debug("processing ledger", "network", network.Slug, "sequence", ledger.Sequence)

	eventsByTx := make(map[string][]model.StellarEvent)
	for _, event := range ledger.Events {
		eventsByTx[event.TransactionHash] = append(eventsByTx[event.TransactionHash], event)
	}

	var results []model.MonitorMatch

	for _, monitor := range monitors {
		for _, tx := range ledger.Transactions {
			status := model.TxStatusSuccess
			if !tx.Successful {
				status = model.TxStatusFailure
			}

			invocations := f.decodeInvocations(tx, monitor)

			var involved []string
			matchedArgs := &model.MatchArguments{}
			var matchedTxs []model.TransactionCondition
			var matchedEvents []model.EventCondition
			var matchedFunctions []model.FunctionCondition

			f.findMatchingTransaction(status, tx, monitor, &matchedTxs)
			f.findMatchingEvents(eventsByTx[tx.Hash], monitor, &matchedEvents, matchedArgs, &involved)
			f.findMatchingFunctions(invocations, monitor, &matchedFunctions, matchedArgs, &involved)

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

			match := buildMatch(monitor, network, tx, matchedTxs, matchedEvents, matchedFunctions, matchedArgs)
			if match != nil {
				results = append(results, *match)
			}
		}
	}

	return results, nil
}

// buildMatch applies the acceptance table over the condition categories
// and materialises the match with contract specs dropped.
func buildMatch(
	monitor model.Monitor,
	network model.Network,
	tx model.StellarTransaction,
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

	return &model.MonitorMatch{Stellar: &model.StellarMonitorMatch{
		Monitor:       monitor.WithoutSpecs(),
		Transaction:   tx,
		NetworkSlug:   network.Slug,
		MatchedOn:     matchedOn,
		MatchedOnArgs: args,
	}}
}
