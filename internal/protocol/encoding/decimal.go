// SPDX-FileCopyrightText: 2014-2020 SAP SE
//
// SPDX-License-Identifier: Apache-2.0

package encoding

import (
	"math/big"
	"math/bits"
)

// _S is the machine word size in bytes, used to pack a big.Int's Bits()
// words into the little-endian byte layout FIXED8/FIXED12/FIXED16 and
// DECIMAL wire values use (spec §6).
const _S = bits.UintSize / 8

// dec128Bias and decSize follow the IEEE 754-2008 decimal128 layout HANA's
// DECIMAL type borrows its exponent bias and byte width from:
// http://en.wikipedia.org/wiki/Decimal128_floating-point_format
const dec128Bias = 6176
const decSize = 16

var natOne = big.NewInt(1)

// twosComplement flips bs in place from its unsigned magnitude to its
// two's-complement negative representation (or back again — the operation
// is its own inverse), assuming little-endian byte order (bs[0] is the
// least significant byte). Used to encode a negative FIXED8/12/16 mantissa,
// since big.Int's Bits() only ever exposes an unsigned magnitude.
//
// Algorithm: scan from the least significant byte looking for the first set
// bit, leave every bit up to and including it untouched, and invert every
// bit after it.
func twosComplement(bs []byte) {

	i := 0
	l := len(bs)

	for i < l && bs[i] == 0 {
		i++
	}
	if i == l { // zero value -> done
		return
	}

	// find first '1' position in bs[i]
	b := bs[i]
	p := 0
	m := byte(1)
	for p < 8 && b&m != m {
		p++
		m <<= 1
	}
	p++

	bs[i] = ^bs[i]                // invert byte
	bs[i] = (bs[i] >> p) << p     // delete non invert relevant part
	b = (b << (8 - p)) >> (8 - p) // delete revert relevant part
	bs[i] |= b                    // combine

	i++
	// rest of bytes get inverted
	for i < l {
		bs[i] = ^bs[i]
		i++
	}
}
