// SPDX-FileCopyrightText: 2014-2021 SAP SE
//
// SPDX-License-Identifier: Apache-2.0

// Package dial provides the abstract byte transport the protocol layer
// reads and writes through, grounded on the teacher's sessionConn/dbConn
// (internal/protocol/session.go): a TCP (optionally TLS) connection with
// per-operation read/write deadlines that turns any I/O failure into a
// single sentinel the caller can use to decide whether to reconnect.
//
// Only the synchronous, blocking Transport is implemented here - see
// DESIGN.md's Open Question decision on sync vs async transport. The
// interface shape below does not assume a blocking implementation, so a
// future cooperative/async Transport can satisfy it unchanged.
package dial

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net"
	"time"
)

// ErrBadConnection is returned by Read/Write when the underlying transport
// failed and the caller should tear down and reconnect rather than retry
// the same Transport.
var ErrBadConnection = errors.New("dial: bad connection")

// Transport is the abstract capability the protocol layer needs from a
// connection: read/write with the framer-imposed deadlines, flush, and
// close. bufio buffering is layered on top by the caller.
type Transport interface {
	io.Reader
	io.Writer
	Flush() error
	Close() error
	// Bad reports whether a previous Read/Write failed; once bad, a
	// Transport must be closed and replaced, never reused.
	Bad() bool
}

// Config describes how to reach and authenticate the network connection
// itself (TLS), independent of the HANA-level authentication handshake
// layered on top once connected.
type Config struct {
	Host    string
	Timeout time.Duration
	TLS     *tls.Config
}

// tcpTransport wraps a net.Conn, applying Config.Timeout as both the read
// and the write deadline on every operation (spec §6's read_timeout
// default of "none" is expressed as a zero Duration, which disables the
// deadline entirely).
type tcpTransport struct {
	conn net.Conn
	cfg  Config
	bad  bool
}

// Dial opens a TCP connection to cfg.Host, optionally upgrading to TLS.
func Dial(ctx context.Context, cfg Config) (Transport, error) {
	dialer := net.Dialer{Timeout: cfg.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", cfg.Host)
	if err != nil {
		return nil, err
	}
	if cfg.TLS != nil {
		conn = tls.Client(conn, cfg.TLS)
	}
	return &tcpTransport{conn: conn, cfg: cfg}, nil
}

func (t *tcpTransport) deadline() time.Time {
	if t.cfg.Timeout <= 0 {
		return time.Time{}
	}
	return time.Now().Add(t.cfg.Timeout)
}

func (t *tcpTransport) Read(b []byte) (int, error) {
	if err := t.conn.SetReadDeadline(t.deadline()); err != nil {
		return 0, err
	}
	n, err := t.conn.Read(b)
	if err != nil {
		t.bad = true
		return n, ErrBadConnection
	}
	return n, nil
}

func (t *tcpTransport) Write(b []byte) (int, error) {
	if err := t.conn.SetWriteDeadline(t.deadline()); err != nil {
		return 0, err
	}
	n, err := t.conn.Write(b)
	if err != nil {
		t.bad = true
		return n, ErrBadConnection
	}
	return n, nil
}

// Flush is a no-op: buffering is layered on top by the caller (bufio.Writer
// around this Transport); kept so Transport can be swapped for an
// implementation that needs an explicit flush point.
func (t *tcpTransport) Flush() error { return nil }

func (t *tcpTransport) Close() error { return t.conn.Close() }
func (t *tcpTransport) Bad() bool    { return t.bad }
