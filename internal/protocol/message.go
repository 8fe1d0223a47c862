// SPDX-FileCopyrightText: 2014-2020 SAP SE
//
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"fmt"

	"github.com/sqldbc/hdbcore/internal/protocol/encoding"
)

const messageHeaderSize = 32

// messageHeader is the 32-byte envelope prefixed to every request and reply:
// session_id:i64 | sequence_number:i32 | varpart_size:u32 | varpart_remaining:u32 |
// segment_count:i16 | packet_type:i8 | reserved[9].
type messageHeader struct {
	sessionID        int64
	sequenceNumber   int32
	varPartSize      uint32
	varPartRemaining uint32
	segmentCount     int16
	packetType       int8
}

func (h *messageHeader) String() string {
	return fmt.Sprintf("session id %d sequenceNumber %d varPartSize %d varPartRemaining %d segmentCount %d packetType %d",
		h.sessionID,
		h.sequenceNumber,
		h.varPartSize,
		h.varPartRemaining,
		h.segmentCount,
		h.packetType)
}

func (h *messageHeader) encode(enc *encoding.Encoder) error {
	enc.Int64(h.sessionID)
	enc.Int32(h.sequenceNumber)
	enc.Uint32(h.varPartSize)
	enc.Uint32(h.varPartRemaining)
	enc.Int16(h.segmentCount)
	enc.Int8(h.packetType)
	enc.Zeroes(9)
	return nil
}

func (h *messageHeader) decode(dec *encoding.Decoder) error {
	h.sessionID = dec.Int64()
	h.sequenceNumber = dec.Int32()
	h.varPartSize = dec.Uint32()
	h.varPartRemaining = dec.Uint32()
	h.segmentCount = dec.Int16()
	h.packetType = dec.Int8()
	dec.Skip(9)
	return dec.Error()
}
