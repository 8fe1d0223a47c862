// Package encoding implements the scalar and string wire codecs shared by
// every part of the SQLDBC message protocol: fixed-width little-endian
// integers, floats, CESU-8 byte strings, and the two decimal wire shapes.
package encoding

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"math/big"

	"github.com/sqldbc/hdbcore/internal/cesu8"
	"golang.org/x/text/transform"
)

// Decoder reads scalar and string values from an underlying byte stream in
// SQLDBC wire format. A single persistent error short-circuits further reads
// so callers can chain decode calls and check Error() once at the end.
type Decoder struct {
	rd  io.Reader
	b   [8]byte
	cnt int
	err error
}

// NewDecoder returns a Decoder reading from rd.
func NewDecoder(rd io.Reader) *Decoder { return &Decoder{rd: rd} }

// Cnt returns the number of bytes read so far.
func (d *Decoder) Cnt() int { return d.cnt }

// ResetCnt resets the byte counter to zero.
func (d *Decoder) ResetCnt() { d.cnt = 0 }

// Error returns the first error encountered, if any.
func (d *Decoder) Error() error { return d.err }

// ResetError clears the decoder's error and returns the previous value.
func (d *Decoder) ResetError() error {
	err := d.err
	d.err = nil
	return err
}

func (d *Decoder) readFull(buf []byte) (int, error) {
	if d.err != nil {
		return 0, d.err
	}
	n, err := io.ReadFull(d.rd, buf)
	d.cnt += n
	if err != nil {
		d.err = err
	}
	return n, err
}

// Skip discards cnt bytes.
func (d *Decoder) Skip(cnt int) {
	if d.err != nil {
		return
	}
	if _, err := io.CopyN(io.Discard, d.rd, int64(cnt)); err != nil {
		d.err = err
		return
	}
	d.cnt += cnt
}

// Byte reads a single byte.
func (d *Decoder) Byte() byte {
	if _, err := d.readFull(d.b[:1]); err != nil {
		return 0
	}
	return d.b[0]
}

// Bytes reads len(p) bytes into p.
func (d *Decoder) Bytes(p []byte) {
	if _, err := d.readFull(p); err != nil {
		return
	}
}

// Bool reads a one-byte boolean.
func (d *Decoder) Bool() bool { return d.Byte() != 0 }

// Int8 reads a signed byte.
func (d *Decoder) Int8() int8 { return int8(d.Byte()) }

// Int16 reads a little-endian int16.
func (d *Decoder) Int16() int16 {
	if _, err := d.readFull(d.b[:2]); err != nil {
		return 0
	}
	return int16(binary.LittleEndian.Uint16(d.b[:2]))
}

// Uint16 reads a little-endian uint16.
func (d *Decoder) Uint16() uint16 {
	if _, err := d.readFull(d.b[:2]); err != nil {
		return 0
	}
	return binary.LittleEndian.Uint16(d.b[:2])
}

// Int32 reads a little-endian int32.
func (d *Decoder) Int32() int32 {
	if _, err := d.readFull(d.b[:4]); err != nil {
		return 0
	}
	return int32(binary.LittleEndian.Uint32(d.b[:4]))
}

// Uint32 reads a little-endian uint32.
func (d *Decoder) Uint32() uint32 {
	if _, err := d.readFull(d.b[:4]); err != nil {
		return 0
	}
	return binary.LittleEndian.Uint32(d.b[:4])
}

// Int64 reads a little-endian int64.
func (d *Decoder) Int64() int64 {
	if _, err := d.readFull(d.b[:8]); err != nil {
		return 0
	}
	return int64(binary.LittleEndian.Uint64(d.b[:8]))
}

// Uint64 reads a little-endian uint64.
func (d *Decoder) Uint64() uint64 {
	if _, err := d.readFull(d.b[:8]); err != nil {
		return 0
	}
	return binary.LittleEndian.Uint64(d.b[:8])
}

// Float32 reads a little-endian IEEE-754 float32.
func (d *Decoder) Float32() float32 {
	if _, err := d.readFull(d.b[:4]); err != nil {
		return 0
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(d.b[:4]))
}

// Float64 reads a little-endian IEEE-754 float64.
func (d *Decoder) Float64() float64 {
	if _, err := d.readFull(d.b[:8]); err != nil {
		return 0
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(d.b[:8]))
}

// Decimal reads the 16-byte "old" wire decimal and returns its mantissa,
// decimal exponent, and, for the null representation, ok=false.
func (d *Decoder) Decimal() (m *big.Int, exp int, ok bool) {
	bs := make([]byte, decSize)
	if _, err := d.readFull(bs); err != nil {
		return nil, 0, false
	}

	if (bs[15] & 0x70) == 0x70 { // null value: bits 4,5,6 set
		return nil, 0, false
	}
	if (bs[15] & 0x60) == 0x60 {
		d.err = fmt.Errorf("decimal: unsupported special value %v", bs)
		return nil, 0, false
	}

	neg := (bs[15] & 0x80) != 0
	exp = int((((uint16(bs[15])<<8)|uint16(bs[14]))<<1)>>2) - dec128Bias
	bs[14] &= 0x01 // keep the mantissa bit, strip sign and exponent

	msb := 14
	for msb > 0 && bs[msb] == 0 {
		msb--
	}
	numWords := (msb / _S) + 1
	ws := make([]big.Word, numWords)
	bs = bs[:msb+1]
	for i, b := range bs {
		ws[i/_S] |= big.Word(b) << (i % _S * 8)
	}
	m = new(big.Int).SetBits(ws)
	if neg {
		m.Neg(m)
	}
	return m, exp, true
}

// Fixed reads a size-byte two's-complement fixed-point mantissa (the
// FIXED8/FIXED12/FIXED16 wire shapes).
func (d *Decoder) Fixed(size int) *big.Int {
	bs := make([]byte, size)
	if _, err := d.readFull(bs); err != nil {
		return nil
	}

	neg := (bs[size-1] & 0x80) != 0
	msb := size - 1
	for msb > 0 && bs[msb] == 0 {
		msb--
	}
	numWords := (msb / _S) + 1
	ws := make([]big.Word, numWords)
	bs = bs[:msb+1]
	for i, b := range bs {
		if neg {
			b = ^b
		}
		ws[i/_S] |= big.Word(b) << (i % _S * 8)
	}
	m := new(big.Int).SetBits(ws)
	if neg {
		m.Add(m, natOne)
		m.Neg(m)
	}
	return m
}

// CESU8Bytes reads a size-byte CESU-8 encoded string and returns its UTF-8 translation.
func (d *Decoder) CESU8Bytes(size int) []byte {
	p := make([]byte, size)
	if _, err := d.readFull(p); err != nil {
		return nil
	}
	out, _, err := transform.Bytes(cesu8.DefaultDecoder(), p)
	if err != nil {
		d.err = err
		return nil
	}
	return out
}
