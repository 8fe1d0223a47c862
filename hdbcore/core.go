// SPDX-FileCopyrightText: 2014-2021 SAP SE
//
// SPDX-License-Identifier: Apache-2.0

// Package hdbcore implements a native client driver core for SAP HANA's
// SQLDBC wire protocol: connection lifecycle, statement preparation and
// execution, result set iteration, LOB streaming, and XA distributed
// transactions, built on top of the unexported internal/protocol package.
package hdbcore

import (
	"context"
	"crypto/tls"
	"errors"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/sqldbc/hdbcore/internal/dial"
	"github.com/sqldbc/hdbcore/internal/protocol"
)

// ConnState is the lifecycle state of a ConnectionCore (spec §4.6).
type ConnState int

const (
	StateNew ConnState = iota
	StateAuthenticating
	StateReady
	StateInFlight
	StateReconnecting
	StateBroken
	StateClosed
)

func (s ConnState) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateAuthenticating:
		return "authenticating"
	case StateReady:
		return "ready"
	case StateInFlight:
		return "inFlight"
	case StateReconnecting:
		return "reconnecting"
	case StateBroken:
		return "broken"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// TransactionState tracks the open/closed shape of the current transaction
// (spec §3's TransactionState).
type TransactionState struct {
	Open           bool
	IsolationLevel string
	RolledBack     bool
	Committed      bool
}

// ConnectionCore wraps one protocol.Session with the reconnect, statistics,
// logging, and state-machine semantics the raw wire session does not
// provide on its own. It is the single connection-level type every other
// hdbcore handle (PreparedStatement, ResultSetState, lob handles) is built
// from.
type ConnectionCore struct {
	mu sync.Mutex

	params *ConnectParams
	log    *slog.Logger
	retry  *RetryPolicy

	sess  *protocol.Session
	state ConnState
	txn   TransactionState

	stats *statsTracker
}

// Open dials the transport and performs the SQLDBC authentication handshake,
// returning a ConnectionCore ready to run statements. logger may be nil, in
// which case log/slog's default logger is used (matching the teacher's own
// fallback-to-stdlib-logger convention); retry may be nil to use
// DefaultRetryPolicy.
func Open(ctx context.Context, params *ConnectParams, logger *slog.Logger, retry *RetryPolicy) (*ConnectionCore, error) {
	if params == nil {
		return nil, &ConnParamsError{Msg: "params must not be nil"}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if retry == nil {
		retry = DefaultRetryPolicy()
	}

	c := &ConnectionCore{
		params: params,
		log:    logger,
		retry:  retry,
		state:  StateNew,
		txn:    TransactionState{},
	}

	if err := c.connect(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *ConnectionCore) tlsConfig() *tls.Config {
	switch c.params.TLSMode {
	case TLSOff:
		return nil
	case TLSInsecure:
		cfg := &tls.Config{InsecureSkipVerify: true} //nolint:gosec
		if c.params.TLSConfig != nil {
			cfg = c.params.TLSConfig.Clone()
			cfg.InsecureSkipVerify = true
		}
		return cfg
	default:
		if c.params.TLSConfig != nil {
			return c.params.TLSConfig.Clone()
		}
		return &tls.Config{}
	}
}

func (c *ConnectionCore) connect(ctx context.Context) error {
	c.state = StateAuthenticating
	c.log.Debug("hdbcore: connecting", "host", c.params.Host, "port", c.params.Port)

	transport, err := dial.Dial(ctx, dial.Config{
		Host:    c.params.Host + ":" + c.params.Port,
		Timeout: c.params.ReadTimeout,
		TLS:     c.tlsConfig(),
	})
	if err != nil {
		c.state = StateBroken
		return &IoError{Kind: classifyDialErr(err), Err: err}
	}

	minCompression := c.params.MinCompressionSize
	if c.params.Uncompressed {
		minCompression = 0
	}

	sess, info, err := protocol.Connect(protocol.ConnectConfig{
		Transport:           transport,
		Username:            c.params.Username,
		Password:            c.params.Password,
		ClientID:            newClientID(),
		ClientLocale:        c.params.ClientLocale,
		ApplicationProgram:  c.params.ApplicationProgram,
		DriverVersion:       c.params.DriverVersion,
		DriverName:          c.params.DriverName,
		MinCompressionSize:  minCompression,
	})
	if err != nil {
		c.state = StateBroken
		return &AuthenticationError{Msg: "connect handshake failed", Err: err}
	}

	c.sess = sess
	c.state = StateReady
	c.txn = TransactionState{}
	c.stats = newStatsTracker(sess, time.Now())
	c.log.Debug("hdbcore: connected", "sessionID", info.SessionID)
	return nil
}

// classifyDialErr has no live transport to inspect, so a failure to even
// establish the socket falls back to connection reset unless the error
// chain carries a net.Error reporting a timeout.
func classifyDialErr(err error) IoKind {
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return IoKindTimedOut
	}
	return IoKindConnectionReset
}

// State returns the connection's current lifecycle state.
func (c *ConnectionCore) State() ConnState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Transaction returns the current transaction state.
func (c *ConnectionCore) Transaction() TransactionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.txn
}

// Stats returns a point-in-time Statistics snapshot.
func (c *ConnectionCore) Stats() Statistics {
	c.mu.Lock()
	stats := c.stats
	c.mu.Unlock()
	return stats.Snapshot()
}

// ResetStats zeroes the accumulating counters.
func (c *ConnectionCore) ResetStats() {
	c.mu.Lock()
	stats := c.stats
	c.mu.Unlock()
	stats.Reset(time.Now())
}

// withSession runs fn against the live protocol.Session, classifying any
// returned error and retrying once via reconnect when the RetryPolicy allows
// it. Without a retry, a non-fatal ServerError leaves the connection in
// StateReady and any other error leaves it in StateBroken.
//
// repeatable must be true only when fn issues a request whose message type
// is safe to resend verbatim after a fresh connection (a parse, a cursor
// read, or an idempotent release) — never an execute, commit/rollback, lob
// write, or XA verb, all of which may have already taken effect server-side
// before the transport failed. Reconnect-and-resend is further gated on
// AutoCommit being off, matching the original client's
// `is_repeatable && !is_auto_commit` rule (spec §4.6): under autocommit,
// any failed request might already have committed, so it is never resent
// regardless of its message type.
func (c *ConnectionCore) withSession(repeatable bool, fn func(*protocol.Session) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateClosed {
		return &UsageError{Msg: "connection is closed"}
	}
	if c.state == StateBroken {
		return ErrConnectionBroken
	}

	c.state = StateInFlight
	start := time.Now()
	err := fn(c.sess)
	c.stats.addWait(time.Since(start))
	c.stats.nextSeqNo()

	if err == nil {
		c.state = StateReady
		return nil
	}

	classified := c.classify(err)
	canResend := repeatable && !c.params.AutoCommit && c.retry.IsRetriable(classified)
	if !canResend {
		c.state = StateReady
		if se, isServer := classified.(*ServerError); !isServer || se.IsFatal() {
			c.state = StateBroken
		}
		return classified
	}

	c.state = StateReconnecting
	c.log.Debug("hdbcore: retrying after transport error", "err", classified)
	if rerr := c.connect(context.Background()); rerr != nil {
		c.state = StateBroken
		return &ErrorAfterReconnectError{First: classified, Second: rerr}
	}

	start = time.Now()
	err2 := fn(c.sess)
	c.stats.addWait(time.Since(start))
	c.stats.nextSeqNo()
	if err2 != nil {
		classified2 := c.classify(err2)
		c.state = StateBroken
		return &ErrorAfterReconnectError{First: classified, Second: classified2}
	}
	c.state = StateReady
	return nil
}

// classify turns a raw protocol.Session error into the exported error
// taxonomy: a server error part becomes ServerError (or a join of them for a
// multi-row batch failure), a dial/transport failure becomes IoError, and
// anything else is an ImplError (a protocol invariant violated by the
// server or an inconsistent reply).
func (c *ConnectionCore) classify(err error) error {
	if err == nil {
		return nil
	}
	if se := classifyServerError(err); se != err {
		return se
	}
	if ioe, ok := err.(*IoError); ok {
		return ioe
	}
	if errors.Is(err, dial.ErrBadConnection) {
		return &IoError{Kind: IoKindConnectionReset, Err: err}
	}
	return &ImplError{Msg: err.Error()}
}

// Close tells the server the client is going away and releases the
// transport. Close is idempotent.
func (c *ConnectionCore) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateClosed {
		return nil
	}
	var err error
	if c.sess != nil && !c.sess.Bad() {
		err = c.sess.Disconnect()
	}
	c.state = StateClosed
	return err
}

// ExecuteDirect runs a statement with no bound parameters (spec §4.7).
func (c *ConnectionCore) ExecuteDirect(query string) (*protocol.DirectResult, error) {
	var res *protocol.DirectResult
	err := c.withSession(false, func(s *protocol.Session) error {
		var err error
		res, err = s.ExecuteDirect(query, c.params.AutoCommit)
		return err
	})
	if err != nil {
		return nil, err
	}
	c.noteTransaction()
	convertLobCells(c, res.Rows)
	return res, nil
}

// Prepare parses and prepares a statement, returning a PreparedStatement
// bound to this connection.
func (c *ConnectionCore) Prepare(query string) (*PreparedStatement, error) {
	var pr *protocol.PrepareResult
	err := c.withSession(true, func(s *protocol.Session) error {
		var err error
		pr, err = s.Prepare(query)
		return err
	})
	if err != nil {
		return nil, err
	}
	return newPreparedStatement(c, pr), nil
}

// Commit commits the current transaction.
func (c *ConnectionCore) Commit() error {
	err := c.withSession(false, func(s *protocol.Session) error { return s.Commit() })
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.txn = TransactionState{Committed: true}
	c.mu.Unlock()
	return nil
}

// Rollback rolls back the current transaction.
func (c *ConnectionCore) Rollback() error {
	err := c.withSession(false, func(s *protocol.Session) error { return s.Rollback() })
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.txn = TransactionState{RolledBack: true}
	c.mu.Unlock()
	return nil
}

func (c *ConnectionCore) noteTransaction() {
	if c.params.AutoCommit {
		return
	}
	c.mu.Lock()
	c.txn = TransactionState{Open: true}
	c.mu.Unlock()
}

// DBConnectInfo asks the connected database where databaseName is actually
// hosted (spec §4.12). It does not redial on the caller's behalf: a false
// IsConnected means the caller should Close this connection and Open a new
// one against the returned Host/Port.
func (c *ConnectionCore) DBConnectInfo(databaseName string) (protocol.DBConnectInfo, error) {
	var info protocol.DBConnectInfo
	err := c.withSession(true, func(s *protocol.Session) error {
		var err error
		info, err = s.DBConnectInfo(databaseName)
		return err
	})
	return info, err
}

// DataFormatVersion2 reports the negotiated coDataFormatVersion2 connect
// option. It is informational: nothing in this package reads it, and the
// decimal wire shape of each value follows its field's type code.
func (c *ConnectionCore) DataFormatVersion2() (int, bool) {
	c.mu.Lock()
	sess := c.sess
	c.mu.Unlock()
	if sess == nil {
		return 0, false
	}
	return sess.DataFormatVersion2()
}
