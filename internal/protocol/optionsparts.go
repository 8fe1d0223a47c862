// SPDX-FileCopyrightText: 2014-2021 SAP SE
//
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"fmt"

	"github.com/sqldbc/hdbcore/internal/cesu8"
	"github.com/sqldbc/hdbcore/internal/protocol/encoding"
)

// connectOption identifies a single key of a connect options part.
type connectOption int8

// connectOption key values. None of the retrieved example generations carry
// the numeric assignments for this part (only the encode/decode dispatch
// machinery they plug into, in plainOptions/optType below, is attested) -
// these follow the publicly documented HANA client/server wire protocol.
//
//nolint
const (
	coConnectionID                connectOption = 1
	coCompleteArrayExecution      connectOption = 2 // deprecated, always true
	coClientLocale                connectOption = 3
	coSupportsLargeBulkOperations connectOption = 4
	coDistributionProtocolVersion connectOption = 10
	coSplitBatchCommands          connectOption = 11
	coDataFormatVersion2          connectOption = 12
	coSelectForUpdateSupported    connectOption = 14
	coClientDistributionMode      connectOption = 18
	coEngineDataFormatVersion     connectOption = 19
	coImplicitLobStreaming        connectOption = 34
	coOSUser                      connectOption = 46
)

// topologyOption identifies a single key of a topology information part.
type topologyOption int8

// topologyOption key values, reconstructed alongside connectOption above -
// every generation in the pack decodes a topologyInformation part but none
// names its option keys.
//
//nolint
const (
	toHostName         topologyOption = 1
	toHostPortNumber   topologyOption = 2
	toTenantName       topologyOption = 3
	toLoadFactor       topologyOption = 4
	toVolumeID         topologyOption = 5
	toIsMaster         topologyOption = 6
	toIsCurrentSession topologyOption = 7
	toServiceType      topologyOption = 8
	toNetworkDomain    topologyOption = 9
	toIsStandby        topologyOption = 10
	toAllIPAddresses   topologyOption = 11
)

// transactionFlagType identifies a single key of a transaction flags part.
// Grounded on the newer teacher generation's optionsparts.go, which is the
// one place in the pack naming these constants.
type transactionFlagType int8

//nolint
const (
	tfRolledback                     transactionFlagType = 0
	tfCommitted                      transactionFlagType = 1
	tfNewIsolationLevel              transactionFlagType = 2
	tfDDLCommitModeChanged           transactionFlagType = 3
	tfWriteTransactionStarted        transactionFlagType = 4
	tfNoWriteTransactionStarted      transactionFlagType = 5
	tfSessionClosingTransactionError transactionFlagType = 6
	tfReadOnlyMode                   transactionFlagType = 8
)

// optIntType is the plain int8-valued option key type used by the client
// distribution mode / distribution protocol version constants.
type optIntType int8

// plainOptions is a typed key/value map transferred as a single wire part:
// every value is preceded on the wire by the type code identifying how to
// decode it (see optType below), so the Go side can just as well store an
// untyped interface{} per key.
type plainOptions map[int8]interface{}

// multiLineOptions is a sequence of plainOptions, used by parts (e.g.
// topology information) that describe more than one row of typed options.
type multiLineOptions []plainOptions

func (o plainOptions) size() int {
	size := 2 * len(o) // key + type code
	for _, v := range o {
		size += optSize(v)
	}
	return size
}

func (o plainOptions) decode(dec *encoding.Decoder, numArg int) {
	for i := 0; i < numArg; i++ {
		k := dec.Int8()
		tc := typeCode(dec.Byte())
		o[k] = optDecode(dec, tc)
	}
}

func (o plainOptions) encode(enc *encoding.Encoder) {
	for k, v := range o {
		enc.Int8(k)
		enc.Byte(byte(optTypeCode(v)))
		optEncode(enc, v)
	}
}

// asString reads a string-valued key, returning "" if absent or of another
// type.
func (o plainOptions) asString(k int8) string {
	s, _ := o[k].(string)
	return s
}

// asInt reads an int-valued key, returning 0 if absent or of another type.
func (o plainOptions) asInt(k int8) int {
	switch v := o[k].(type) {
	case optIntType:
		return int(v)
	case int32:
		return int(v)
	default:
		return 0
	}
}

// asBool reads a bool-valued key, returning false if absent or of another
// type.
func (o plainOptions) asBool(k int8) bool {
	b, _ := o[k].(bool)
	return b
}

func (o multiLineOptions) size() int {
	size := 0
	for _, po := range o {
		size += 2 + po.size() // row argument count prefix + row options
	}
	return size
}

func (o *multiLineOptions) decode(dec *encoding.Decoder, numArg int) {
	lines := make(multiLineOptions, numArg)
	for i := 0; i < numArg; i++ {
		argCount := int(dec.Int16())
		po := plainOptions{}
		po.decode(dec, argCount)
		lines[i] = po
	}
	*o = lines
}

func (o multiLineOptions) encode(enc *encoding.Encoder) {
	for _, po := range o {
		enc.Int16(int16(len(po)))
		po.encode(enc)
	}
}

// optTypeCode reports the wire type code used to transfer a Go option
// value, mirroring the small set of kinds the HANA wire protocol supports
// for connect/topology/statement-context/transaction-flag option parts.
func optTypeCode(v interface{}) typeCode {
	switch v.(type) {
	case bool:
		return tcBoolean
	case int8, optIntType:
		return tcTinyint
	case int32:
		return tcInteger
	case int64:
		return tcBigint
	case float64:
		return tcDouble
	case string:
		return tcString
	case []byte:
		return tcBstring
	default:
		panic(fmt.Sprintf("unsupported option value type %T", v))
	}
}

func optSize(v interface{}) int {
	switch t := v.(type) {
	case bool:
		return 1
	case int8:
		return 1
	case optIntType:
		return 1
	case int32:
		return 4
	case int64:
		return 8
	case float64:
		return 8
	case string:
		return 2 + cesu8.StringSize(t)
	case []byte:
		return 2 + len(t)
	default:
		panic(fmt.Sprintf("unsupported option value type %T", v))
	}
}

func optEncode(enc *encoding.Encoder, v interface{}) {
	switch t := v.(type) {
	case bool:
		enc.Bool(t)
	case int8:
		enc.Int8(t)
	case optIntType:
		enc.Int8(int8(t))
	case int32:
		enc.Int32(t)
	case int64:
		enc.Int64(t)
	case float64:
		enc.Float64(t)
	case string:
		enc.Int16(int16(cesu8.StringSize(t)))
		enc.CESU8String(t)
	case []byte:
		enc.Int16(int16(len(t)))
		enc.Bytes(t)
	default:
		panic(fmt.Sprintf("unsupported option value type %T", v))
	}
}

func optDecode(dec *encoding.Decoder, tc typeCode) interface{} {
	switch tc {
	case tcBoolean:
		return dec.Bool()
	case tcTinyint:
		return dec.Int8()
	case tcInteger:
		return dec.Int32()
	case tcBigint:
		return dec.Int64()
	case tcDouble:
		return dec.Float64()
	case tcString:
		size := int(dec.Int16())
		return string(dec.CESU8Bytes(size))
	case tcBstring:
		size := int(dec.Int16())
		b := make([]byte, size)
		dec.Bytes(b)
		return b
	default:
		panic(fmt.Sprintf("unsupported option type code %s", tc))
	}
}
