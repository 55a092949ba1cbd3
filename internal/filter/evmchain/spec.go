// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ChainPulse Contributors

package evmchain

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/samber/oops"

	"github.com/chainpulse/chainpulse/internal/model"
)

// ContractABI is the EVM contract spec: a parsed JSON ABI kept alongside
// its source text. Loaded eagerly with the monitor addresses; immutable
// during filtering.
type ContractABI struct {
	raw string
	abi abi.ABI
}

// ParseABI parses a JSON ABI document into a ContractABI.
func ParseABI(raw string) (*ContractABI, error) {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		return nil, oops.Code("EVM_ABI_PARSE").Wrapf(err, "parsing contract ABI")
	}
	return &ContractABI{raw: raw, abi: parsed}, nil
}

// ChainType marks the spec as EVM for the model.ContractSpec interface.
func (c *ContractABI) ChainType() model.ChainType { return model.ChainEVM }

// Raw returns the ABI source document.
func (c *ContractABI) Raw() string { return c.raw }

// MethodBySelector finds the function whose 4-byte selector matches.
func (c *ContractABI) MethodBySelector(selector []byte) (abi.Method, bool) {
	m, err := c.abi.MethodById(selector)
	if err != nil || m == nil {
		return abi.Method{}, false
	}
	return *m, true
}

// EventByTopic finds the event whose topic-0 hash matches.
func (c *ContractABI) EventByTopic(topic [32]byte) (abi.Event, bool) {
	for _, ev := range c.abi.Events {
		if ev.ID == topic {
			return ev, true
		}
	}
	return abi.Event{}, false
}
