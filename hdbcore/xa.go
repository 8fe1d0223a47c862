// SPDX-FileCopyrightText: 2014-2021 SAP SE
//
// SPDX-License-Identifier: Apache-2.0

package hdbcore

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sqldbc/hdbcore/internal/protocol"
)

// XAErrorCode classifies a HANA-specific XA error (spec §4.10's HANA
// 210-216 range), grounded on the HANA client's own kind_from_code mapping
// rather than the generic X/Open XAER_*/XA_RB* return-code family, which
// HANA's XA verbs do not actually return.
type XAErrorCode int

// XA error kinds, matching HANA server codes 210-216 one for one (213 is
// not mapped by HANA itself and falls through to XAUnknownErrorCode).
const (
	XAUnknownErrorCode      XAErrorCode = iota
	XADuplicateTransactionID            // 210
	XAInvalidArguments                  // 211
	XAInvalidTransactionID              // 212
	XAProtocolError                     // 214
	XARMError                           // 215
	XARMFailure                         // 216
)

// xaCodeByServerCode maps HANA's XA-specific server error codes (210-216)
// to the XAErrorCode kinds above; codes outside this table (including 213,
// which HANA never assigns a specific kind to) fall back to
// XAUnknownErrorCode.
var xaCodeByServerCode = map[int]XAErrorCode{
	210: XADuplicateTransactionID,
	211: XAInvalidArguments,
	212: XAInvalidTransactionID,
	214: XAProtocolError,
	215: XARMError,
	216: XARMFailure,
}

// XAError reports a failed XA verb, carrying both the underlying driver
// error and the HANA-specific error kind a resource manager caller expects.
type XAError struct {
	Code       XAErrorCode
	ServerCode int
	Err        error
}

func (e *XAError) Error() string {
	return fmt.Sprintf("hdbcore: xa: code %d (server code %d): %v", e.Code, e.ServerCode, e.Err)
}
func (e *XAError) Unwrap() error { return e.Err }

func classifyXAError(err error) error {
	if err == nil {
		return nil
	}
	if se, ok := err.(*ServerError); ok {
		return &XAError{Code: xaCodeByServerCode[se.Code], ServerCode: se.Code, Err: se}
	}
	return &XAError{Code: XAUnknownErrorCode, ServerCode: 0, Err: err}
}

// XABranch is a resource-manager handle for one distributed transaction
// branch, wrapping protocol.Session's X/Open XA verbs with client-side flag
// validation (spec §4.10).
type XABranch struct {
	core *ConnectionCore
	xid  protocol.XID
}

// NewXID builds an XID with a random branch qualifier, convenient when the
// caller does not need to correlate the qualifier with an external
// transaction manager's own id.
func NewXID(formatID int32, gtrid []byte) protocol.XID {
	bqual, _ := uuid.New().MarshalBinary()
	return protocol.XID{FormatID: formatID, Gtrid: gtrid, Bqual: bqual}
}

// Branch returns a handle for the given transaction branch on this
// connection. It does not itself contact the server; call Start first.
func (c *ConnectionCore) Branch(xid protocol.XID) *XABranch {
	return &XABranch{core: c, xid: xid}
}

// Start associates the connection with this branch. join must be false for
// a fresh branch and true only to join or resume a branch started
// elsewhere; any other TMJOIN/TMRESUME combination is a caller error the
// underlying verb itself rejects.
func (b *XABranch) Start(join bool) error {
	err := b.core.withSession(false, func(s *protocol.Session) error {
		return s.XAStart(b.xid, join)
	})
	return classifyXAError(err)
}

// End disassociates the connection from the branch. Exactly one of fail or
// suspend may be true; both false marks the branch successful.
func (b *XABranch) End(fail, suspend bool) error {
	if fail && suspend {
		return &UsageError{Msg: "xa end: fail and suspend are mutually exclusive"}
	}
	err := b.core.withSession(false, func(s *protocol.Session) error {
		return s.XAEnd(b.xid, fail, suspend)
	})
	return classifyXAError(err)
}

// Prepare votes the branch ready to commit.
func (b *XABranch) Prepare() error {
	err := b.core.withSession(false, func(s *protocol.Session) error {
		return s.XAPrepare(b.xid)
	})
	return classifyXAError(err)
}

// Commit commits the branch; onePhase skips the prepare phase and must only
// be used when this is the sole resource manager participating.
func (b *XABranch) Commit(onePhase bool) error {
	err := b.core.withSession(false, func(s *protocol.Session) error {
		return s.XACommit(b.xid, onePhase)
	})
	return classifyXAError(err)
}

// Rollback rolls back the branch.
func (b *XABranch) Rollback() error {
	err := b.core.withSession(false, func(s *protocol.Session) error {
		return s.XARollback(b.xid)
	})
	return classifyXAError(err)
}

// Forget discards a heuristically-completed branch.
func (b *XABranch) Forget() error {
	err := b.core.withSession(false, func(s *protocol.Session) error {
		return s.XAForget(b.xid)
	})
	return classifyXAError(err)
}

// Recover lists prepared-but-not-yet-committed branches known to the server.
func (c *ConnectionCore) Recover() ([]protocol.XID, error) {
	var xids []protocol.XID
	err := c.withSession(false, func(s *protocol.Session) error {
		var err error
		xids, err = s.XARecover()
		return err
	})
	if err != nil {
		return nil, classifyXAError(err)
	}
	return xids, nil
}
