// SPDX-FileCopyrightText: 2014-2021 SAP SE
//
// SPDX-License-Identifier: Apache-2.0

package hdbcore

import (
	"crypto/tls"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/sqldbc/hdbcore/internal/protocol"
)

func TestConnStateString(t *testing.T) {
	tests := []struct {
		s    ConnState
		want string
	}{
		{StateNew, "new"},
		{StateAuthenticating, "authenticating"},
		{StateReady, "ready"},
		{StateInFlight, "inFlight"},
		{StateReconnecting, "reconnecting"},
		{StateBroken, "broken"},
		{StateClosed, "closed"},
		{ConnState(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("ConnState(%d).String() = %q, want %q", tt.s, got, tt.want)
		}
	}
}

func TestConnectionCoreTLSConfig(t *testing.T) {
	c := &ConnectionCore{params: &ConnectParams{TLSMode: TLSOff}}
	if cfg := c.tlsConfig(); cfg != nil {
		t.Errorf("TLSOff: got %v, want nil", cfg)
	}

	c = &ConnectionCore{params: &ConnectParams{TLSMode: TLSInsecure}}
	cfg := c.tlsConfig()
	if cfg == nil || !cfg.InsecureSkipVerify {
		t.Errorf("TLSInsecure: got %v, want InsecureSkipVerify=true", cfg)
	}

	custom := &tls.Config{ServerName: "hana.example.com"}
	c = &ConnectionCore{params: &ConnectParams{TLSMode: TLSVerify, TLSConfig: custom}}
	cfg = c.tlsConfig()
	if cfg == nil || cfg.ServerName != "hana.example.com" || cfg.InsecureSkipVerify {
		t.Errorf("TLSVerify with custom config: got %+v", cfg)
	}
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassifyDialErr(t *testing.T) {
	if got := classifyDialErr(errors.New("connection refused")); got != IoKindConnectionReset {
		t.Errorf("plain error: got %v, want IoKindConnectionReset", got)
	}

	var nerr net.Error = timeoutErr{}
	if got := classifyDialErr(nerr); got != IoKindTimedOut {
		t.Errorf("net.Error with Timeout()=true: got %v, want IoKindTimedOut", got)
	}
}

func TestConnectionCoreNoteTransactionRespectsAutoCommit(t *testing.T) {
	c := &ConnectionCore{params: &ConnectParams{AutoCommit: true}}
	c.noteTransaction()
	if c.Transaction().Open {
		t.Error("noteTransaction must not open a transaction under AutoCommit")
	}

	c = &ConnectionCore{params: &ConnectParams{AutoCommit: false}}
	c.noteTransaction()
	if !c.Transaction().Open {
		t.Error("noteTransaction must mark the transaction open when AutoCommit is false")
	}
}

func TestConnectionCoreClassifyWrapsUnknownErrorsAsImpl(t *testing.T) {
	c := &ConnectionCore{}
	err := c.classify(errors.New("something unexpected"))
	if _, ok := err.(*ImplError); !ok {
		t.Fatalf("expected *ImplError, got %T", err)
	}
}

func TestConnectionCoreClassifyPassesThroughIoError(t *testing.T) {
	c := &ConnectionCore{}
	ioErr := &IoError{Kind: IoKindTimedOut, Err: errors.New("read deadline exceeded")}
	got := c.classify(ioErr)
	if got != ioErr {
		t.Errorf("IoError should pass through classify unchanged, got %v", got)
	}
}

func TestConnectionCoreWithSessionRejectsClosedOrBroken(t *testing.T) {
	c := &ConnectionCore{state: StateClosed}
	if err := c.withSession(true, func(*protocol.Session) error { return nil }); err == nil {
		t.Error("expected error on closed connection")
	}

	c = &ConnectionCore{state: StateBroken}
	if err := c.withSession(true, func(*protocol.Session) error { return nil }); err != ErrConnectionBroken {
		t.Errorf("expected ErrConnectionBroken on broken connection, got %v", err)
	}
}

func TestConnectionCoreWithSessionGatesResendOnRepeatableAndAutoCommit(t *testing.T) {
	// ioErr's kind is retriable under DefaultRetryPolicy, isolating this test
	// to withSession's own repeatable/auto-commit gate.
	ioErr := &IoError{Kind: IoKindConnectionReset, Err: errors.New("reset")}
	fails := func(*protocol.Session) error { return ioErr }

	// Not repeatable: must never attempt a reconnect-and-resend, regardless
	// of AutoCommit or retriability.
	c := &ConnectionCore{
		params: &ConnectParams{AutoCommit: false},
		retry:  DefaultRetryPolicy(),
		stats:  newStatsTracker(nil, time.Now()),
		state:  StateReady,
	}
	if err := c.withSession(false, fails); err == nil {
		t.Fatal("expected error for a failing non-repeatable request")
	}
	if c.state != StateBroken {
		t.Errorf("non-repeatable failure should leave the connection StateBroken, got %v", c.State())
	}

	// Repeatable but AutoCommit is on: a failed request might already have
	// committed, so resend must still be refused.
	c = &ConnectionCore{
		params: &ConnectParams{AutoCommit: true},
		retry:  DefaultRetryPolicy(),
		stats:  newStatsTracker(nil, time.Now()),
		state:  StateReady,
	}
	if err := c.withSession(true, fails); err == nil {
		t.Fatal("expected error for a failing repeatable request under AutoCommit")
	}
	if c.state != StateBroken {
		t.Errorf("AutoCommit should suppress resend and leave the connection StateBroken, got %v", c.State())
	}
}

func TestConnectionCoreDataFormatVersion2NoSession(t *testing.T) {
	c := &ConnectionCore{}
	if _, ok := c.DataFormatVersion2(); ok {
		t.Error("expected ok=false with no live session")
	}
}
