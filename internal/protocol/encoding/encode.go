// SPDX-FileCopyrightText: 2014-2020 SAP SE
//
// SPDX-License-Identifier: Apache-2.0

package encoding

import (
	"encoding/binary"
	"io"
	"math"
	"math/big"

	"github.com/sqldbc/hdbcore/internal/cesu8"
	"golang.org/x/text/transform"
)

const writeScratchSize = 4096

// Encoder encodes SQLDBC wire datatypes on top of an io.Writer.
type Encoder struct {
	wr  io.Writer
	err error
	b   []byte // scratch buffer (min 8 bytes)
	tr  transform.Transformer
	cnt int
}

// NewEncoder creates a new Encoder instance.
func NewEncoder(wr io.Writer) *Encoder {
	return &Encoder{
		wr: wr,
		b:  make([]byte, writeScratchSize),
		tr: cesu8.DefaultEncoder(),
	}
}

// Cnt returns the number of bytes written so far.
func (e *Encoder) Cnt() int { return e.cnt }

// Error returns the first error encountered, if any.
func (e *Encoder) Error() error { return e.err }

// Zeroes writes cnt zero byte values.
func (e *Encoder) Zeroes(cnt int) {
	if e.err != nil || cnt <= 0 {
		return
	}
	l := cnt
	if l > len(e.b) {
		l = len(e.b)
	}
	for i := 0; i < l; i++ {
		e.b[i] = 0
	}
	for i := 0; i < cnt; {
		j := cnt - i
		if j > len(e.b) {
			j = len(e.b)
		}
		n, err := e.wr.Write(e.b[:j])
		e.cnt += n
		if err != nil {
			e.err = err
			return
		}
		i += n
	}
}

// Bytes writes a byte slice.
func (e *Encoder) Bytes(p []byte) {
	if e.err != nil {
		return
	}
	n, err := e.wr.Write(p)
	e.cnt += n
	if err != nil {
		e.err = err
	}
}

// Byte writes a byte.
func (e *Encoder) Byte(b byte) {
	if e.err != nil {
		return
	}
	e.b[0] = b
	e.Bytes(e.b[:1])
}

// Bool writes a boolean.
func (e *Encoder) Bool(v bool) {
	if v {
		e.Byte(1)
	} else {
		e.Byte(0)
	}
}

// Int8 writes an int8.
func (e *Encoder) Int8(i int8) { e.Byte(byte(i)) }

// Int16 writes an int16.
func (e *Encoder) Int16(i int16) {
	if e.err != nil {
		return
	}
	binary.LittleEndian.PutUint16(e.b[:2], uint16(i))
	e.Bytes(e.b[:2])
}

// Uint16 writes an uint16.
func (e *Encoder) Uint16(i uint16) {
	if e.err != nil {
		return
	}
	binary.LittleEndian.PutUint16(e.b[:2], i)
	e.Bytes(e.b[:2])
}

// Int32 writes an int32.
func (e *Encoder) Int32(i int32) {
	if e.err != nil {
		return
	}
	binary.LittleEndian.PutUint32(e.b[:4], uint32(i))
	e.Bytes(e.b[:4])
}

// Uint32 writes an uint32.
func (e *Encoder) Uint32(i uint32) {
	if e.err != nil {
		return
	}
	binary.LittleEndian.PutUint32(e.b[:4], i)
	e.Bytes(e.b[:4])
}

// Int64 writes an int64.
func (e *Encoder) Int64(i int64) {
	if e.err != nil {
		return
	}
	binary.LittleEndian.PutUint64(e.b[:8], uint64(i))
	e.Bytes(e.b[:8])
}

// Uint64 writes an uint64.
func (e *Encoder) Uint64(i uint64) {
	if e.err != nil {
		return
	}
	binary.LittleEndian.PutUint64(e.b[:8], i)
	e.Bytes(e.b[:8])
}

// Float32 writes a float32.
func (e *Encoder) Float32(f float32) {
	if e.err != nil {
		return
	}
	binary.LittleEndian.PutUint32(e.b[:4], math.Float32bits(f))
	e.Bytes(e.b[:4])
}

// Float64 writes a float64.
func (e *Encoder) Float64(f float64) {
	if e.err != nil {
		return
	}
	binary.LittleEndian.PutUint64(e.b[:8], math.Float64bits(f))
	e.Bytes(e.b[:8])
}

// String writes a raw (already-encoded) byte string.
func (e *Encoder) String(s string) { e.Bytes([]byte(s)) }

// CESU8Bytes writes an UTF-8 byte slice as CESU-8 and returns the number of CESU-8 bytes written.
func (e *Encoder) CESU8Bytes(p []byte) int {
	if e.err != nil {
		return 0
	}
	e.tr.Reset()
	cnt := 0
	i := 0
	for i < len(p) {
		m, n, err := e.tr.Transform(e.b, p[i:], true)
		if err != nil && err != transform.ErrShortDst {
			e.err = err
			return cnt
		}
		if m == 0 {
			e.err = transform.ErrShortDst
			return cnt
		}
		e.Bytes(e.b[:m])
		cnt += m
		i += n
	}
	return cnt
}

// CESU8String is CESU8Bytes with an UTF-8 string argument.
func (e *Encoder) CESU8String(s string) int { return e.CESU8Bytes([]byte(s)) }

// DecimalNull writes the 16-byte null representation of the legacy wire decimal.
func (e *Encoder) DecimalNull() { e.Zeroes(15); e.Byte(0x70) }

// Decimal writes m*10^exp in the 16-byte legacy wire decimal format.
// The caller guarantees exp lies within [-6143, 6144] and m fits 113 bits.
func (e *Encoder) Decimal(m *big.Int, exp int) {
	bs := make([]byte, decSize)

	neg := m.Sign() < 0
	abs := new(big.Int).Abs(m)
	words := abs.Bits()
	for i := 0; i < len(words) && i*_S < 15; i++ {
		w := words[i]
		for j := 0; j < _S && i*_S+j < 15; j++ {
			bs[i*_S+j] = byte(w >> (j * 8))
		}
	}

	biased := uint16(exp + dec128Bias)
	bs[14] |= byte(biased<<1) & 0xfe
	bs[15] = byte(biased >> 7)
	if neg {
		bs[15] |= 0x80
	}
	e.Bytes(bs)
}

// Fixed writes m as a size-byte two's-complement mantissa (FIXED8/12/16).
func (e *Encoder) Fixed(m *big.Int, size int) {
	bs := make([]byte, size)
	neg := m.Sign() < 0

	val := new(big.Int).Set(m)
	if neg {
		val.Neg(val)
	}
	words := val.Bits()
	for i := 0; i < len(words) && i*_S < size; i++ {
		w := words[i]
		for j := 0; j < _S && i*_S+j < size; j++ {
			bs[i*_S+j] = byte(w >> (j * 8))
		}
	}
	if neg {
		twosComplement(bs)
	}
	e.Bytes(bs)
}
