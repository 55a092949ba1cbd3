// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ChainPulse Contributors

// Package evmchain implements the EVM side of the match pipeline: the
// condition evaluator for EVM parameter kinds, ABI-driven decoding of
// function calls and event logs, and the per-block filter.
package evmchain

import (
	"math/big"
	"strings"

	"github.com/holiman/uint256"
	"github.com/samber/oops"
)

// NormalizeAddress lowercases an address and strips whitespace so mixed
// checksum casings compare equal.
func NormalizeAddress(addr string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(addr), " ", ""))
}

// SameAddress reports whether two addresses are equal after normalisation.
func SameAddress(a, b string) bool {
	return NormalizeAddress(a) == NormalizeAddress(b)
}

// NormalizeSignature removes whitespace and lowercases a signature so
// "Transfer(address, address, uint256)" matches the canonical form.
func NormalizeSignature(sig string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(sig), " ", ""))
}

// SameSignature reports whether two event/function signatures are equal
// after normalisation.
func SameSignature(a, b string) bool {
	return NormalizeSignature(a) == NormalizeSignature(b)
}

// maxI256 and minI256 bound the 256-bit two's-complement range.
var (
	maxI256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 255), big.NewInt(1))
	minI256 = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 255))
)

// StringToU256 parses a decimal or 0x-prefixed hex string into a 256-bit
// unsigned integer.
func StringToU256(s string) (*uint256.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, oops.Errorf("empty value")
	}
	if strings.HasPrefix(strings.ToLower(s), "0x") {
		v, err := uint256.FromHex("0x" + strings.TrimPrefix(strings.ToLower(s), "0x"))
		if err != nil {
			return nil, oops.Wrapf(err, "parsing hex %q", s)
		}
		return v, nil
	}
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, oops.Wrapf(err, "parsing decimal %q", s)
	}
	return v, nil
}

// StringToI256 parses a decimal (optionally signed) or 0x-prefixed hex
// string into a signed integer constrained to the 256-bit two's-complement
// range. Hex values at or above 2^255 are interpreted as negative.
func StringToI256(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, oops.Errorf("empty value")
	}

	if strings.HasPrefix(strings.ToLower(s), "0x") {
		v, ok := new(big.Int).SetString(strings.TrimPrefix(strings.ToLower(s), "0x"), 16)
		if !ok {
			return nil, oops.Errorf("parsing hex %q", s)
		}
		if v.BitLen() > 256 {
			return nil, oops.Errorf("value %q exceeds 256 bits", s)
		}
		// Two's complement: interpret the top bit as the sign.
		if v.Bit(255) == 1 {
			v.Sub(v, new(big.Int).Lsh(big.NewInt(1), 256))
		}
		return v, nil
	}

	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, oops.Errorf("parsing decimal %q", s)
	}
	if v.Cmp(maxI256) > 0 || v.Cmp(minI256) < 0 {
		return nil, oops.Errorf("value %q outside the signed 256-bit range", s)
	}
	return v, nil
}
