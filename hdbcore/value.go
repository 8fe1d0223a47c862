// SPDX-FileCopyrightText: 2014-2021 SAP SE
//
// SPDX-License-Identifier: Apache-2.0

package hdbcore

import (
	"math/big"
	"time"

	"github.com/sqldbc/hdbcore/internal/protocol"
)

// HdbValue is any value that can be bound to a parameter or decoded from a
// result set column: nil, the Go numeric/string/[]byte/time.Time types
// internal/protocol already decodes wire values into, or a LOB handle
// (*BLob/*CLob/*NCLob) for streamed content (spec §4.2's HdbValue).
//
// It is an alias rather than a closed interface because the wire decoder
// hands back plain Go values directly; the type switch in CheckAssignable
// is what gives callers the closed-set behavior a sum type would.
type HdbValue = any

// integer/decimal/string/binary/date type name groups, drawn from
// internal/protocol's typeCode.typeName() output, used by CheckAssignable.
var (
	integerTypeNames = map[string]bool{
		"TINYINT": true, "SMALLINT": true, "INTEGER": true, "BIGINT": true,
	}
	decimalTypeNames = map[string]bool{
		"DECIMAL": true, "SMALLDECIMAL": true, "FIXED8": true, "FIXED12": true, "FIXED16": true,
	}
	fixedPointTypeNames = map[string]bool{
		"FIXED8": true, "FIXED12": true, "FIXED16": true,
	}
	geospatialTypeNames = map[string]bool{
		"GEOMETRY": true, "POINT": true,
	}
	binaryTargetTypeNames = map[string]bool{
		"BLOB": true, "BLOCATOR": true, "VARBINARY": true, "BINARY": true, "BSTRING": true,
		"GEOMETRY": true, "POINT": true,
	}
)

// CheckAssignable reports whether a value of Go type goType (as produced by
// fmt's %T, e.g. "bool", "string", "[]uint8") may be bound to a column or
// parameter whose wire type is named typeName, per the value-to-value
// compatibility table (spec §4.2): BOOLEAN assigns to any integer column;
// STRING assigns to any non-geospatial column; BINARY assigns to
// BLOB/BLOCATOR/VARBINARY/GEOMETRY/POINT; DECIMAL assigns to
// FIXED8/FIXED12/FIXED16. Anything else must match the column's own type
// family exactly.
func CheckAssignable(v HdbValue, typeName string) error {
	if v == nil {
		return nil
	}
	switch v.(type) {
	case bool:
		if integerTypeNames[typeName] || typeName == "BOOLEAN" {
			return nil
		}
		return &ConversionError{From: "BOOLEAN", To: typeName}
	case string:
		if geospatialTypeNames[typeName] {
			return &ConversionError{From: "STRING", To: typeName}
		}
		return nil
	case []byte:
		if binaryTargetTypeNames[typeName] {
			return nil
		}
		return &ConversionError{From: "BINARY", To: typeName}
	case int8, int16, int32, int64, int:
		if integerTypeNames[typeName] || decimalTypeNames[typeName] {
			return nil
		}
		return &ConversionError{From: "INTEGER", To: typeName}
	case float32, float64:
		if typeName == "REAL" || typeName == "DOUBLE" || decimalTypeNames[typeName] {
			return nil
		}
		return &ConversionError{From: "DOUBLE", To: typeName}
	case protocol.Decimal, *big.Int:
		if fixedPointTypeNames[typeName] || decimalTypeNames[typeName] {
			return nil
		}
		return &ConversionError{From: "DECIMAL", To: typeName}
	case time.Time:
		switch typeName {
		case "LONGDATE", "SECONDDATE", "DAYDATE", "SECONDTIME", "DATE", "TIME", "TIMESTAMP":
			return nil
		default:
			return &ConversionError{From: "TIMESTAMP", To: typeName}
		}
	case *BLob, *CLob, *NCLob, *protocol.Lob:
		if typeName == "BLOB" || typeName == "CLOB" || typeName == "NCLOB" ||
			typeName == "BLOCATOR" || typeName == "NLOCATOR" {
			return nil
		}
		return &ConversionError{From: "LOBSTREAM", To: typeName}
	default:
		return &ConversionError{From: "UNKNOWN", To: typeName}
	}
}

// lobFromRow adapts a raw *protocol.Lob decoded inline with a result row
// into the streaming handle appropriate for its column type, so the row's
// LOB cell can keep growing past the inline chunk the row carried.
func lobFromRow(core *ConnectionCore, lob *protocol.Lob) HdbValue {
	if lob == nil {
		return nil
	}
	id := uint64(lob.ID)
	if lob.CharBased {
		h := newCLob(core, id)
		if lob.Eof {
			h.blob.done = true
		}
		h.carry = append([]byte(nil), lob.Data...)
		h.blob.ofs = int64(len(lob.Data))
		return h
	}
	h := newBLob(core, id)
	h.done = lob.Eof
	h.ofs = lob.ByteLength - int64(len(lob.Data))
	return h
}
