// SPDX-FileCopyrightText: 2014-2021 SAP SE
//
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"fmt"
	"math"
	"math/big"
	"time"

	"github.com/sqldbc/hdbcore/internal/cesu8"
	"github.com/sqldbc/hdbcore/internal/protocol/encoding"
)

// Decimal is the in-memory representation of a DECIMAL/SMALLDECIMAL wire
// value: value == Mantissa * 10^Exp.
type Decimal struct {
	Mantissa *big.Int
	Exp      int
}

// fieldNames decodes the interned name table that trails a result metadata
// or parameter metadata part: every *Offset field in the preceding field
// descriptors points into this table, which is itself laid out as a
// sequence of (length byte, cesu-8 bytes) entries keyed by their own byte
// offset within the table.
type fieldNames map[uint32]string

func (n fieldNames) insert(offset uint32) {
	if offset != noFieldNameOffset {
		n[offset] = ""
	}
}

func (n fieldNames) name(offset uint32) string {
	return n[offset]
}

// offsets are sorted, decoded once and assigned back to every requesting
// entry so that a name shared by several fields is only read once.
func (n fieldNames) decode(dec *encoding.Decoder) {
	if len(n) == 0 {
		return
	}
	offsets := make([]uint32, 0, len(n))
	for offset := range n {
		offsets = append(offsets, offset)
	}
	sortUint32(offsets)

	var pos uint32
	for _, offset := range offsets {
		if offset > pos {
			dec.Skip(int(offset - pos))
			pos = offset
		}
		size := dec.Byte()
		pos++
		b := dec.CESU8Bytes(int(size))
		pos += uint32(size)
		n[offset] = string(b)
	}
}

func sortUint32(s []uint32) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

// noFieldNameOffset marks a field descriptor with no associated name.
const noFieldNameOffset uint32 = 0xFFFFFFFF

// Lob represents the inline portion of a lob value as delivered together
// with a result row: the locator to use for subsequent read lob requests
// plus whatever bytes the server included with the row itself.
type Lob struct {
	ID         locatorID
	CharLength int64
	ByteLength int64
	Data       []byte
	Eof        bool
	CharBased  bool
}

func decodeLob(dec *encoding.Decoder, tc typeCode) (*Lob, error) {
	dec.Int8() // type code repeated, unused
	opt := dec.Int8()
	dec.Skip(2)
	charLen := dec.Int64()
	byteLen := dec.Int64()
	id := dec.Uint64()
	chunkLen := dec.Int32()

	null := (lobOptions(opt) & loNullindicator) != 0
	eof := (lobOptions(opt) & loLastdata) != 0

	if null {
		dec.Error()
		return nil, nil
	}

	data := make([]byte, chunkLen)
	dec.Bytes(data)

	return &Lob{
		ID:         locatorID(id),
		CharLength: charLen,
		ByteLength: byteLen,
		Data:       data,
		Eof:        eof,
		CharBased:  tc.isCharBased(),
	}, dec.Error()
}

// string / binary length indicators, shared by char and binary wire types.
const (
	bytesLenIndNullValue byte = 255
	bytesLenIndSmall     byte = 245
	bytesLenIndMedium    byte = 246
	bytesLenIndBig       byte = 247
)

func readBytesLen(dec *encoding.Decoder) (int, bool) {
	ind := dec.Byte()
	switch {
	case ind == bytesLenIndNullValue:
		return 0, true
	case ind <= bytesLenIndSmall:
		return int(ind), false
	case ind == bytesLenIndMedium:
		return int(dec.Int16()), false
	case ind == bytesLenIndBig:
		return int(dec.Int32()), false
	default:
		return 0, false
	}
}

func writeBytesLen(enc *encoding.Encoder, size int) error {
	switch {
	case size <= int(bytesLenIndSmall):
		enc.Byte(byte(size))
	case size <= math.MaxInt16:
		enc.Byte(bytesLenIndMedium)
		enc.Int16(int16(size))
	case size <= math.MaxInt32:
		enc.Byte(bytesLenIndBig)
		enc.Int32(int32(size))
	default:
		return fmt.Errorf("max argument length %d of string exceeded", size)
	}
	return nil
}

func readLIBytes(dec *encoding.Decoder) ([]byte, bool) {
	size, null := readBytesLen(dec)
	if null {
		return nil, true
	}
	b := make([]byte, size)
	dec.Bytes(b)
	return b, false
}

func readLICESU8Bytes(dec *encoding.Decoder) ([]byte, bool) {
	size, null := readBytesLen(dec)
	if null {
		return nil, true
	}
	return dec.CESU8Bytes(size), false
}

func writeLIBytes(enc *encoding.Encoder, b []byte) {
	writeBytesLen(enc, len(b))
	enc.Bytes(b)
}

func writeLICESU8String(enc *encoding.Encoder, s string) {
	writeBytesLen(enc, cesu8.StringSize(s))
	enc.CESU8String(s)
}

// decodeRes decodes a single result (or call output) field value according
// to its wire type code, returning a native Go representation. Integral,
// floating point and character types map onto the corresponding native Go
// kind; DECIMAL/SMALLDECIMAL are returned as Decimal (mantissa and
// exponent) and FIXED8/FIXED12/FIXED16 as *big.Int; lob types are
// returned as *Lob placeholders carrying the initial chunk and locator id
// needed to continue streaming.
func decodeRes(dec *encoding.Decoder, tc typeCode) (any, error) {
	switch tc {

	case tcTinyint:
		b := dec.Byte()
		if dec.Error() != nil {
			return nil, dec.Error()
		}
		return int64(b), nil

	case tcSmallint:
		v := dec.Int16()
		return int64(v), dec.Error()

	case tcInteger:
		v := dec.Int32()
		return int64(v), dec.Error()

	case tcBigint:
		v := dec.Int64()
		return v, dec.Error()

	case tcReal:
		bits := dec.Uint32()
		if dec.Error() != nil {
			return nil, dec.Error()
		}
		if bits == realNullValue {
			return nil, nil
		}
		return float64(math.Float32frombits(bits)), nil

	case tcDouble:
		bits := dec.Uint64()
		if dec.Error() != nil {
			return nil, dec.Error()
		}
		if bits == doubleNullValue {
			return nil, nil
		}
		return math.Float64frombits(bits), nil

	case tcBoolean:
		v := dec.Int8()
		if v == 2 { // null representation used by the wire protocol
			return nil, dec.Error()
		}
		return v != 0, dec.Error()

	case tcFixed8, tcFixed12, tcFixed16:
		size := 16
		switch tc {
		case tcFixed8:
			size = 8
		case tcFixed12:
			size = 12
		}
		m := dec.Fixed(size)
		if dec.Error() != nil {
			return nil, dec.Error()
		}
		return m, nil

	case tcDecimal, tcSmalldecimal:
		m, exp, ok := dec.Decimal()
		if dec.Error() != nil {
			return nil, dec.Error()
		}
		if !ok {
			return nil, nil
		}
		return Decimal{Mantissa: m, Exp: exp}, nil

	case tcChar, tcVarchar, tcString, tcAlphanum, tcShorttext, tcBinary, tcVarbinary, tcBstring:
		b, null := readLIBytes(dec)
		if null {
			return nil, dec.Error()
		}
		return b, dec.Error()

	case tcNchar, tcNvarchar, tcNstring:
		b, null := readLICESU8Bytes(dec)
		if null {
			return nil, dec.Error()
		}
		return string(b), dec.Error()

	case tcDate:
		return readOldDate(dec)

	case tcTime:
		return readOldTime(dec)

	case tcTimestamp:
		return readOldTimestamp(dec)

	case tcLongdate:
		v := dec.Int64()
		if dec.Error() != nil {
			return nil, dec.Error()
		}
		if v == 3155380704000000001 { // null longdate
			return nil, nil
		}
		return convertLongdateToTime(v), nil

	case tcSeconddate:
		v := dec.Int64()
		if dec.Error() != nil {
			return nil, dec.Error()
		}
		if v == 315538070400 { // null seconddate
			return nil, nil
		}
		return convertSeconddateToTime(v), nil

	case tcDaydate:
		v := dec.Int32()
		if dec.Error() != nil {
			return nil, dec.Error()
		}
		if v == 3652062 {
			return nil, nil
		}
		return convertDaydateToTime(int64(v)), nil

	case tcSecondtime:
		v := dec.Int32()
		if dec.Error() != nil {
			return nil, dec.Error()
		}
		if v == 86401 {
			return nil, nil
		}
		return convertSecondtimeToTime(int(v)), nil

	case tcClob, tcNclob, tcBlob, tcText, tcBintext:
		lob, err := decodeLob(dec, tc)
		if err != nil {
			return nil, err
		}
		return lob, nil

	default:
		return nil, fmt.Errorf("decode: unsupported type code %s", tc)
	}
}

func readOldDate(dec *encoding.Decoder) (any, error) {
	year := dec.Int16()
	month := dec.Int8()
	day := dec.Int8()
	if dec.Error() != nil {
		return nil, dec.Error()
	}
	if year == 0 && month == 0 && day == 0 {
		return nil, nil
	}
	return time.Date(int(year), time.Month(month), int(day), 0, 0, 0, 0, time.UTC), nil
}

func readOldTime(dec *encoding.Decoder) (any, error) {
	hour := dec.Int8()
	minute := dec.Int8()
	second := dec.Int16()
	if dec.Error() != nil {
		return nil, dec.Error()
	}
	if (hour & 0x80) == 0 {
		return nil, nil
	}
	hour &^= 0x80
	return time.Date(1, 1, 1, int(hour), int(minute), int(second), 0, time.UTC), nil
}

func readOldTimestamp(dec *encoding.Decoder) (any, error) {
	d, err := readOldDate(dec)
	if err != nil || d == nil {
		return d, err
	}
	t, err := readOldTime(dec)
	if err != nil || t == nil {
		return nil, err
	}
	dt := d.(time.Time)
	tt := t.(time.Time)
	return time.Date(dt.Year(), dt.Month(), dt.Day(), tt.Hour(), tt.Minute(), tt.Second(), 0, time.UTC), nil
}

// encodeVal encodes a native Go value as an input parameter field matching
// the given wire type code. Nil encodes the type's null representation.
func encodeVal(enc *encoding.Encoder, tc typeCode, v any) error {
	if v == nil {
		return encodeValNull(enc, tc)
	}

	switch tc {
	case tcTinyint:
		enc.Int8(int8(toInt64(v)))
	case tcSmallint:
		enc.Int16(int16(toInt64(v)))
	case tcInteger:
		enc.Int32(int32(toInt64(v)))
	case tcBigint:
		enc.Int64(toInt64(v))
	case tcReal:
		enc.Float32(float32(toFloat64(v)))
	case tcDouble:
		enc.Float64(toFloat64(v))
	case tcBoolean:
		b, _ := v.(bool)
		if b {
			enc.Int8(1)
		} else {
			enc.Int8(0)
		}
	case tcDecimal, tcSmalldecimal:
		d, ok := v.(Decimal)
		if !ok {
			return fmt.Errorf("encode: value for %s must be a Decimal", tc)
		}
		enc.Decimal(d.Mantissa, d.Exp)
	case tcFixed8, tcFixed12, tcFixed16:
		size := 16
		switch tc {
		case tcFixed8:
			size = 8
		case tcFixed12:
			size = 12
		}
		m, ok := v.(*big.Int)
		if !ok {
			return fmt.Errorf("encode: value for %s must be a *big.Int", tc)
		}
		enc.Fixed(m, size)
	case tcChar, tcVarchar, tcString, tcAlphanum, tcShorttext, tcBinary, tcVarbinary, tcBstring:
		b := toBytes(v)
		writeLIBytes(enc, b)
	case tcNchar, tcNvarchar, tcNstring:
		s := toString(v)
		writeLICESU8String(enc, s)
	case tcLongdate:
		t, _ := v.(time.Time)
		enc.Int64(convertTimeToLongdate(t))
	case tcSeconddate:
		t, _ := v.(time.Time)
		enc.Int64(convertTimeToSeconddate(t))
	case tcDaydate:
		t, _ := v.(time.Time)
		enc.Int32(int32(convertTimeToDayDate(t)))
	case tcSecondtime:
		t, _ := v.(time.Time)
		enc.Int32(int32(convertTimeToSecondtime(t)))
	default:
		return fmt.Errorf("encode: unsupported type code %s", tc)
	}
	return nil
}

// encodeValNull writes the fixed-length null sentinel for types that carry
// one inline; callers are responsible for flagging the field as null in the
// enclosing input parameter row via its null indicator byte for every other
// type (variable length fields use the 0xFF length indicator, handled here).
func encodeValNull(enc *encoding.Encoder, tc typeCode) error {
	switch tc {
	case tcTinyint, tcSmallint, tcInteger, tcBigint, tcBoolean:
		enc.Int64(0)
	case tcReal:
		enc.Uint32(realNullValue)
	case tcDouble:
		enc.Uint64(doubleNullValue)
	case tcDecimal, tcSmalldecimal:
		enc.DecimalNull()
	case tcFixed8:
		enc.Zeroes(8)
	case tcFixed12:
		enc.Zeroes(12)
	case tcFixed16:
		enc.Zeroes(16)
	case tcLongdate:
		enc.Int64(3155380704000000001)
	case tcSeconddate:
		enc.Int64(315538070400)
	case tcDaydate:
		enc.Int32(3652062)
	case tcSecondtime:
		enc.Int32(86401)
	default:
		enc.Byte(bytesLenIndNullValue)
	}
	return nil
}

func toInt64(v any) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int32:
		return int64(t)
	case int:
		return int64(t)
	case bool:
		if t {
			return 1
		}
		return 0
	default:
		return 0
	}
}

func toFloat64(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case float32:
		return float64(t)
	default:
		return 0
	}
}

func toBytes(v any) []byte {
	switch t := v.(type) {
	case []byte:
		return t
	case string:
		return []byte(t)
	default:
		return nil
	}
}

func toString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return fmt.Sprintf("%v", v)
	}
}

const (
	realNullValue   uint32 = ^uint32(0)
	doubleNullValue uint64 = ^uint64(0)
)

// nanosecond: HDB - 7 digit precision (not 9 digits).
func convertTimeToLongdate(t time.Time) int64 {
	t = t.UTC()
	return (((((((int64(convertTimeToDayDate(t))-1)*24)+int64(t.Hour()))*60)+int64(t.Minute()))*60)+int64(t.Second()))*10000000 + int64(t.Nanosecond()/100) + 1
}

func convertLongdateToTime(longdate int64) time.Time {
	const dayfactor = 10000000 * 24 * 60 * 60
	longdate--
	d := (longdate % dayfactor) * 100
	t := convertDaydateToTime((longdate / dayfactor) + 1)
	return t.Add(time.Duration(d))
}

func convertTimeToSeconddate(t time.Time) int64 {
	t = t.UTC()
	return (((((int64(convertTimeToDayDate(t))-1)*24)+int64(t.Hour()))*60)+int64(t.Minute()))*60 + int64(t.Second()) + 1
}

func convertSeconddateToTime(seconddate int64) time.Time {
	const dayfactor = 24 * 60 * 60
	seconddate--
	d := (seconddate % dayfactor) * 1000000000
	t := convertDaydateToTime((seconddate / dayfactor) + 1)
	return t.Add(time.Duration(d))
}

var dayEpoch = time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC)

func convertTimeToDayDate(t time.Time) int64 {
	t = t.UTC()
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return 1 + (midnight.Unix()-dayEpoch.Unix())/86400
}

func convertDaydateToTime(daydate int64) time.Time {
	return time.Unix(dayEpoch.Unix()+(daydate-1)*86400, 0).UTC()
}

func convertTimeToSecondtime(t time.Time) int {
	t = t.UTC()
	return (t.Hour()*60+t.Minute())*60 + t.Second() + 1
}

func convertSecondtimeToTime(secondtime int) time.Time {
	return dayEpoch.Add(time.Duration(int64(secondtime-1) * 1000000000))
}
