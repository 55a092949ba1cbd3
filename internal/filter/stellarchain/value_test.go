// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ChainPulse Contributors

package stellarchain

import (
	"testing"

	"github.com/stellar/go/xdr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scSymbol(s string) xdr.ScVal {
	sym := xdr.ScSymbol(s)
	return xdr.ScVal{Type: xdr.ScValTypeScvSymbol, Sym: &sym}
}

func scU64(v uint64) xdr.ScVal {
	u := xdr.Uint64(v)
	return xdr.ScVal{Type: xdr.ScValTypeScvU64, U64: &u}
}

func scI128(hi int64, lo uint64) xdr.ScVal {
	parts := xdr.Int128Parts{Hi: xdr.Int64(hi), Lo: xdr.Uint64(lo)}
	return xdr.ScVal{Type: xdr.ScValTypeScvI128, I128: &parts}
}

func scContractAddress(id [32]byte) xdr.ScVal {
	contractID := xdr.ContractId(id)
	addr := xdr.ScAddress{
		Type:       xdr.ScAddressTypeScAddressTypeContract,
		ContractId: &contractID,
	}
	return xdr.ScVal{Type: xdr.ScValTypeScvAddress, Address: &addr}
}

func TestCombineU128(t *testing.T) {
	assert.Equal(t, "0", CombineU128(xdr.UInt128Parts{}))
	assert.Equal(t, "1", CombineU128(xdr.UInt128Parts{Lo: 1}))
	// 2^64
	assert.Equal(t, "18446744073709551616", CombineU128(xdr.UInt128Parts{Hi: 1}))
	// 2^128 - 1
	assert.Equal(t, "340282366920938463463374607431768211455",
		CombineU128(xdr.UInt128Parts{Hi: ^xdr.Uint64(0), Lo: ^xdr.Uint64(0)}))
}

func TestCombineI128Negative(t *testing.T) {
	// -1 in two's complement: all limbs set.
	assert.Equal(t, "-1", CombineI128(xdr.Int128Parts{Hi: -1, Lo: ^xdr.Uint64(0)}))
	// -2^64
	assert.Equal(t, "-18446744073709551616", CombineI128(xdr.Int128Parts{Hi: -1, Lo: 0}))
	assert.Equal(t, "42", CombineI128(xdr.Int128Parts{Hi: 0, Lo: 42}))
}

func TestCombineU256(t *testing.T) {
	assert.Equal(t, "1", CombineU256(xdr.UInt256Parts{LoLo: 1}))
	// 2^192
	assert.Equal(t, "6277101735386680763835789423207666416102355444464034512896",
		CombineU256(xdr.UInt256Parts{HiHi: 1}))
}

func TestCombineI256Negative(t *testing.T) {
	all := ^xdr.Uint64(0)
	assert.Equal(t, "-1", CombineI256(xdr.Int256Parts{HiHi: -1, HiLo: all, LoHi: all, LoLo: all}))
	// -2^255
	assert.Equal(t, "-57896044618658097711785492504343953926634992332820282019728792003956564819968",
		CombineI256(xdr.Int256Parts{HiHi: -(int64(1) << 63)}))
}

func TestFromScValScalars(t *testing.T) {
	v := FromScVal(scSymbol("transfer"))
	assert.Equal(t, KindSymbol, v.Kind)
	assert.Equal(t, "transfer", v.Str)
	assert.Equal(t, "Symbol", v.TypeTag())

	v = FromScVal(scU64(7))
	assert.Equal(t, "7", v.String())
	assert.Equal(t, "U64", v.TypeTag())

	v = FromScVal(scI128(0, 500))
	assert.Equal(t, "500", v.String())
	assert.Equal(t, "I128", v.TypeTag())

	b := true
	v = FromScVal(xdr.ScVal{Type: xdr.ScValTypeScvBool, B: &b})
	assert.Equal(t, "true", v.String())
}

func TestFromScValAddress(t *testing.T) {
	var id [32]byte
	id[31] = 1
	v := FromScVal(scContractAddress(id))
	assert.Equal(t, KindAddress, v.Kind)
	assert.True(t, IsAddress(v.Str), "expected a valid strkey, got %q", v.Str)
	assert.Equal(t, "Address", v.TypeTag())
}

func TestFromScValVec(t *testing.T) {
	vec := &xdr.ScVec{scU64(1), scU64(2)}
	v := FromScVal(xdr.ScVal{Type: xdr.ScValTypeScvVec, Vec: &vec})
	require.Equal(t, KindVec, v.Kind)
	assert.Equal(t, "[1,2]", v.String())
	assert.Equal(t, "Vec<U64>", v.TypeTag())

	mixed := &xdr.ScVec{scU64(1), scSymbol("x")}
	v = FromScVal(xdr.ScVal{Type: xdr.ScValTypeScvVec, Vec: &mixed})
	assert.Equal(t, "Vec<U64,Symbol>", v.TypeTag())
}

func TestValueToParamEntry(t *testing.T) {
	entry := FromScVal(scI128(0, 123)).ToParamEntry("amount", false)
	assert.Equal(t, "amount", entry.Name)
	assert.Equal(t, "123", entry.Value)
	assert.Equal(t, "I128", entry.Kind)
	assert.False(t, entry.Indexed)
}

func TestDecodeScValBase64RoundTrip(t *testing.T) {
	encoded, err := xdr.MarshalBase64(scSymbol("mint"))
	require.NoError(t, err)

	val, err := DecodeScValBase64(encoded)
	require.NoError(t, err)
	assert.Equal(t, "mint", FromScVal(val).Str)

	_, err = DecodeScValBase64("not base64 at all!!!")
	require.Error(t, err)
}
