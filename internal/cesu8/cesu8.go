// Package cesu8 implements the CESU-8 Unicode transformation format used on
// the SQLDBC wire. CESU-8 agrees with UTF-8 for all code points in the Basic
// Multilingual Plane; non-BMP code points are encoded as a surrogate pair,
// each surrogate half taking 3 bytes (6 bytes total instead of UTF-8's 4).
package cesu8

import (
	"unicode/utf8"

	"golang.org/x/text/transform"
)

// CESUMax is the maximum number of bytes required to CESU-8 encode a single rune.
const CESUMax = 6

const (
	surr1 = 0xd800
	surr2 = 0xdc00
	surr3 = 0xe000

	surrSelf = 0x10000
)

// RuneLen returns the number of bytes required to encode r in CESU-8.
func RuneLen(r rune) int {
	switch {
	case r < 0:
		return -1
	case r < surrSelf:
		return utf8.RuneLen(r)
	case r <= utf8.MaxRune:
		return 2 * 3 // two surrogate halves, 3 bytes each
	default:
		return -1
	}
}

// EncodeRune writes the CESU-8 encoding of r to p and returns the number of
// bytes written. p must be at least CESUMax bytes.
func EncodeRune(p []byte, r rune) int {
	if r < surrSelf {
		return utf8.EncodeRune(p, r)
	}
	r1, r2 := utf16SurrogatePair(r)
	p[0], p[1], p[2] = 0xed, 0x80|byte(r1>>6)&0x3f, 0x80|byte(r1)&0x3f
	p[3], p[4], p[5] = 0xed, 0x80|byte(r2>>6)&0x3f, 0x80|byte(r2)&0x3f
	return 6
}

func utf16SurrogatePair(r rune) (rune, rune) {
	r -= surrSelf
	return surr1 + (r>>10)&0x3ff, surr2 + r&0x3ff
}

// DecodeRune unpacks the first CESU-8 encoding in p and returns the rune and
// its width in bytes.
func DecodeRune(p []byte) (rune, int) {
	if len(p) < 6 || p[0] != 0xed || p[1] < 0xa0 || p[1] > 0xaf || p[2]&0xc0 != 0x80 ||
		p[3] != 0xed || p[4] < 0xb0 || p[4] > 0xbf || p[5]&0xc0 != 0x80 {
		return utf8.DecodeRune(p)
	}
	hi := rune(p[1]&0x0f)<<6 | rune(p[2]&0x3f)
	lo := rune(p[4]&0x0f)<<6 | rune(p[5]&0x3f)
	return hi<<10 | lo + surrSelf, 6
}

// StringSize returns the number of bytes required to CESU-8 encode s.
func StringSize(s string) int {
	n := 0
	for _, r := range s {
		n += RuneLen(r)
	}
	return n
}

// Size returns the number of bytes required to CESU-8 encode p.
func Size(p []byte) int {
	n := 0
	for i := 0; i < len(p); {
		r, sz := utf8.DecodeRune(p[i:])
		n += RuneLen(r)
		i += sz
	}
	return n
}

// Valid2ndSurrogate reports whether b could start the second half of a
// surrogate pair (CESU-8 encodes the low surrogate 0xDC00-0xDFFF as the
// 3-byte UTF-8 sequence 0xED 0xB0..0xBF 0x80..0xBF).
func Valid2ndSurrogate(b []byte) bool {
	return len(b) >= 3 && b[0] == 0xed && b[1] >= 0xb0 && b[1] <= 0xbf
}

// tailLen finds the number of trailing bytes in p that do not form a complete
// code point according to decode, so callers can buffer them and prepend to
// the next chunk. It never inspects more than CESUMax-1 trailing bytes.
func tailLen(p []byte, decode func([]byte) (rune, int)) int {
	n := len(p)
	if n == 0 {
		return 0
	}
	limit := CESUMax - 1
	if limit > n {
		limit = n
	}
	for i := 1; i <= limit; i++ {
		start := n - i
		if utf8.RuneStart(p[start]) && !utf8.FullRune(p[start:]) {
			return i // lead byte whose continuation bytes have not arrived
		}
		r, size := decode(p[start:])
		if r == utf8.RuneError && size <= 1 {
			continue // not a valid lead byte yet
		}
		if size == i {
			return 0 // the last i bytes are already a complete rune
		}
		if size > i {
			return i // incomplete rune starting at start
		}
	}
	return 0
}

// GetUTF8TailLen returns the number of trailing bytes of p that form an
// incomplete UTF-8 code point.
func GetUTF8TailLen(p []byte) int { return tailLen(p, utf8.DecodeRune) }

// GetCESU8TailLen returns the number of trailing bytes of p that form an
// incomplete CESU-8 code point, including an orphaned first surrogate half.
func GetCESU8TailLen(p []byte) int {
	// a first surrogate half (0xED 0xA0..0xAF) in the last five bytes has
	// no complete second half after it, so it and what follows are carried.
	for i := 2; i < CESUMax && i <= len(p); i++ {
		if s := len(p) - i; p[s] == 0xed && p[s+1] >= 0xa0 && p[s+1] <= 0xaf {
			return i
		}
	}
	return tailLen(p, DecodeRune)
}

// StringFromCESU8 decodes p, preferring plain UTF-8 when p is already valid
// UTF-8 (the common case for BMP-only data) and falling back to CESU-8
// surrogate-pair decoding otherwise.
func StringFromCESU8(p []byte) string {
	if utf8.Valid(p) {
		return string(p)
	}
	buf := make([]rune, 0, len(p))
	for i := 0; i < len(p); {
		r, sz := DecodeRune(p[i:])
		buf = append(buf, r)
		i += sz
	}
	return string(buf)
}

// decoder is a transform.Transformer translating a CESU-8 byte stream into
// UTF-8, buffering an incomplete trailing code point across Transform calls
// the way chunked LOB reads require.
type decoder struct{}

// DefaultDecoder returns a fresh CESU-8-to-UTF-8 transform.Transformer.
func DefaultDecoder() transform.Transformer { return decoder{} }

func (decoder) Reset() {}

func (decoder) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	tail := 0
	if !atEOF {
		tail = GetCESU8TailLen(src)
	}
	limit := len(src) - tail
	for nSrc < limit {
		r, size := DecodeRune(src[nSrc:limit])
		if nDst+utf8.UTFMax > len(dst) {
			return nDst, nSrc, transform.ErrShortDst
		}
		n := utf8.EncodeRune(dst[nDst:], r)
		nDst += n
		nSrc += size
	}
	if tail > 0 {
		err = transform.ErrShortSrc
	}
	return nDst, nSrc, err
}

// encoder is a transform.Transformer translating a UTF-8 byte stream into CESU-8.
type encoder struct{}

// DefaultEncoder returns a fresh UTF-8-to-CESU8 transform.Transformer.
func DefaultEncoder() transform.Transformer { return encoder{} }

func (encoder) Reset() {}

func (encoder) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	tail := 0
	if !atEOF {
		tail = GetUTF8TailLen(src)
	}
	limit := len(src) - tail
	for nSrc < limit {
		r, size := utf8.DecodeRune(src[nSrc:limit])
		if nDst+CESUMax > len(dst) {
			return nDst, nSrc, transform.ErrShortDst
		}
		n := EncodeRune(dst[nDst:], r)
		nDst += n
		nSrc += size
	}
	if tail > 0 {
		err = transform.ErrShortSrc
	}
	return nDst, nSrc, err
}
