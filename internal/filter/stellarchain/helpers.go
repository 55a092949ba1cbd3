// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ChainPulse Contributors

package stellarchain

import (
	"strings"

	"github.com/stellar/go/strkey"
)

// NormalizeAddress strips whitespace and lowercases for loose address
// identity. Strkeys are case-normalised uppercase on chain, so lowering
// both sides is safe.
func NormalizeAddress(addr string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(addr), " ", ""))
}

// SameAddress reports whether two Stellar addresses are equal after
// normalisation.
func SameAddress(a, b string) bool {
	return NormalizeAddress(a) == NormalizeAddress(b)
}

// NormalizeSignature strips whitespace and lowercases a function or event
// signature.
func NormalizeSignature(sig string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(sig), " ", ""))
}

// SameSignature reports whether two signatures are equal after
// normalisation.
func SameSignature(a, b string) bool {
	return NormalizeSignature(a) == NormalizeSignature(b)
}

// IsAddress reports whether the string parses as an account or contract
// strkey.
func IsAddress(addr string) bool {
	if _, err := strkey.Decode(strkey.VersionByteAccountID, addr); err == nil {
		return true
	}
	if _, err := strkey.Decode(strkey.VersionByteContract, addr); err == nil {
		return true
	}
	return false
}
