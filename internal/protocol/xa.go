// SPDX-FileCopyrightText: 2014-2021 SAP SE
//
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"fmt"

	"github.com/sqldbc/hdbcore/internal/protocol/encoding"
)

// xaFlags mirrors the subset of the X/Open XA flag bitfield the HANA wire
// protocol actually transports (spec §4.10): start accepts only
// Join|Resume, end accepts only Success|Fail|Suspend, commit accepts only
// OnePhase.
type xaFlags int32

//nolint
const (
	xaFlagNone    xaFlags = 0x00000000
	xaFlagJoin    xaFlags = 0x00200000
	xaFlagSuccess xaFlags = 0x04000000
	xaFlagFail    xaFlags = 0x20000000
	xaFlagSuspend xaFlags = 0x02000000
	xaFlagResume  xaFlags = 0x08000000
	xaFlagOnePhase xaFlags = 0x40000000
)

// xid is a distributed transaction identifier: a format id plus a global
// transaction id and branch qualifier, each up to 64 bytes (the X/Open XA
// shape spec §4.10 requires the resource manager to carry over the wire).
type xid struct {
	formatID int32
	gtrid    []byte
	bqual    []byte
}

func (x *xid) size() int { return 4 + 4 + len(x.gtrid) + 4 + len(x.bqual) }

func (x *xid) encode(enc *encoding.Encoder) {
	enc.Int32(x.formatID)
	enc.Int32(int32(len(x.gtrid)))
	enc.Bytes(x.gtrid)
	enc.Int32(int32(len(x.bqual)))
	enc.Bytes(x.bqual)
}

func (x *xid) decode(dec *encoding.Decoder) {
	x.formatID = dec.Int32()
	gtridLen := int(dec.Int32())
	x.gtrid = make([]byte, gtridLen)
	dec.Bytes(x.gtrid)
	bqualLen := int(dec.Int32())
	x.bqual = make([]byte, bqualLen)
	dec.Bytes(x.bqual)
}

// xatOptions is the request/reply payload of every XA verb: the
// transaction id the verb applies to, the verb's flags, and - for recover
// only - the list of prepared transaction ids the reply carries back.
type xatOptions struct {
	xid     *xid
	flags   xaFlags
	xids    []*xid // every xid of a reply; read by XARecover
}

func (*xatOptions) kind() partKind { return pkXatOptions }
func (*xatOptions) numArg() int    { return 1 }

func (o *xatOptions) String() string {
	return fmt.Sprintf("xid %+v flags %x xids %d", o.xid, o.flags, len(o.xids))
}

func (o *xatOptions) size() int {
	if o.xid == nil {
		return 4 // flags only
	}
	return 4 + o.xid.size()
}

func (o *xatOptions) encode(enc *encoding.Encoder) error {
	enc.Int32(int32(o.flags))
	if o.xid != nil {
		o.xid.encode(enc)
	}
	return enc.Error()
}

// decode parses the flags followed by one xid per part argument into xids
// (start/end/prepare/commit/rollback/forget echo back the transaction they
// acted on; recover lists the prepared xids). A reply with exactly one xid
// also sets xid.
func (o *xatOptions) decode(dec *encoding.Decoder, ph *partHeader) error {
	o.flags = xaFlags(dec.Int32())
	o.xids = make([]*xid, ph.numArg())
	for i := range o.xids {
		x := &xid{}
		x.decode(dec)
		o.xids[i] = x
	}
	if len(o.xids) == 1 {
		o.xid = o.xids[0]
	}
	return dec.Error()
}

var (
	_ part       = (*xatOptions)(nil)
	_ partWriter = (*xatOptions)(nil)
	_ partReader = (*xatOptions)(nil)
)
