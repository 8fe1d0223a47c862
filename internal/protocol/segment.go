// SPDX-FileCopyrightText: 2014-2021 SAP SE
//
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"fmt"

	"github.com/sqldbc/hdbcore/internal/protocol/encoding"
)

const segmentHeaderSize = 24

type segmentKind int8

const (
	skInvalid segmentKind = 0
	skRequest segmentKind = 1
	skReply   segmentKind = 2
	skError   segmentKind = 5
)

func (k segmentKind) String() string {
	switch k {
	case skRequest:
		return "request"
	case skReply:
		return "reply"
	case skError:
		return "error"
	default:
		return fmt.Sprintf("segmentKind(%d)", int8(k))
	}
}

// functionCode identifies the kind of request or reply carried by a segment
// (spec §4.3); it is only meaningful for reply segments, where it lets the
// caller pick the right part-decoding path without inspecting every part.
type functionCode int16

const (
	fcNil             functionCode = 0
	fcDdl             functionCode = 1
	fcInsert          functionCode = 2
	fcUpdate          functionCode = 3
	fcDelete          functionCode = 4
	fcSelect          functionCode = 5
	fcSelectForUpdate functionCode = 6
	fcExplain         functionCode = 7
	fcDBProcedureCall functionCode = 8
	fcDBProcedureCallWithResult functionCode = 9
	fcFetch           functionCode = 10
	fcCommit          functionCode = 11
	fcRollback        functionCode = 12
	fcSavepoint       functionCode = 13
	fcConnect         functionCode = 14
	fcWriteLob        functionCode = 15
	fcReadLob         functionCode = 16
	fcDisconnect      functionCode = 18
	fcCloseCursor     functionCode = 19
	fcFindLob         functionCode = 20
	fcAbapStream      functionCode = 21
	fcXAStart         functionCode = 22
	fcXAJoin          functionCode = 23
	fcXopenXAStart    functionCode = 24
	fcXopenXAEnd      functionCode = 25
	fcXopenXAPrepare  functionCode = 26
	fcXopenXACommit   functionCode = 27
	fcXopenXARollback functionCode = 28
	fcXopenXARecover  functionCode = 29
	fcXopenXAForget   functionCode = 30
)

// segmentHeader is the 24-byte envelope prefixed to every segment within a
// message: segment_length:i32 | segment_offset:i32 | parts_count:i16 |
// segment_index:i16 | segment_kind:i8 | message_type:i8 | commit_flag:i8 |
// command_options:i8 | reserved[8].
type segmentHeader struct {
	segmentLength   int32
	segmentOffset   int32
	partsCount      int16
	segmentIndex    int16
	segmentKind     segmentKind
	messageType     messageType
	commitFlag      bool
	commandOptions  int8
	functionCode    functionCode // reply segments only
}

func (h *segmentHeader) String() string {
	return fmt.Sprintf("segmentLength %d segmentOffset %d partsCount %d segmentIndex %d segmentKind %s messageType %d commitFlag %t commandOptions %d",
		h.segmentLength,
		h.segmentOffset,
		h.partsCount,
		h.segmentIndex,
		h.segmentKind,
		h.messageType,
		h.commitFlag,
		h.commandOptions,
	)
}

func (h *segmentHeader) encode(enc *encoding.Encoder) error {
	enc.Int32(h.segmentLength)
	enc.Int32(h.segmentOffset)
	enc.Int16(h.partsCount)
	enc.Int16(h.segmentIndex)
	enc.Int8(int8(h.segmentKind))
	if h.segmentKind == skRequest {
		enc.Int8(int8(h.messageType))
		enc.Bool(h.commitFlag)
		enc.Int8(h.commandOptions)
		enc.Zeroes(8)
	} else {
		enc.Zeroes(11)
	}
	return nil
}

// decode reads the fixed 24-byte segment header. The reply-only fields
// (function code) overlay the same bytes the request side uses for message
// type / commit flag / command options, so the caller tells decode which
// shape to expect via isReply.
func (h *segmentHeader) decode(dec *encoding.Decoder, isReply bool) error {
	h.segmentLength = dec.Int32()
	h.segmentOffset = dec.Int32()
	h.partsCount = dec.Int16()
	h.segmentIndex = dec.Int16()
	h.segmentKind = segmentKind(dec.Int8())
	if isReply {
		dec.Skip(1) // reserved
		h.functionCode = functionCode(dec.Int16())
		dec.Skip(8)
	} else {
		h.messageType = messageType(dec.Int8())
		h.commitFlag = dec.Bool()
		h.commandOptions = dec.Int8()
		dec.Skip(8)
	}
	return dec.Error()
}
