// SPDX-FileCopyrightText: 2014-2021 SAP SE
//
// SPDX-License-Identifier: Apache-2.0

package hdbcore

import (
	"errors"
	"fmt"

	"github.com/sqldbc/hdbcore/internal/protocol"
)

// IoKind classifies the underlying transport failure an Io error wraps,
// used by RetryPolicy to decide whether a request is safe to resend.
type IoKind int

const (
	IoKindOther IoKind = iota
	IoKindConnectionReset
	IoKindWouldBlock
	IoKindTimedOut
)

func (k IoKind) String() string {
	switch k {
	case IoKindConnectionReset:
		return "connectionReset"
	case IoKindWouldBlock:
		return "wouldBlock"
	case IoKindTimedOut:
		return "timedOut"
	default:
		return "other"
	}
}

// UsageError reports a caller mistake: a bad argument, wrong parameter
// arity, or an operation invoked on a handle in the wrong state.
type UsageError struct {
	Msg string
}

func (e *UsageError) Error() string { return "hdbcore: usage: " + e.Msg }

// ConnParamsError reports connect parameters the core cannot use.
type ConnParamsError struct {
	Msg string
}

func (e *ConnParamsError) Error() string { return "hdbcore: invalid connect parameters: " + e.Msg }

// AuthenticationError reports a rejected or failed authentication attempt.
type AuthenticationError struct {
	Msg string
	Err error
}

func (e *AuthenticationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("hdbcore: authentication failed: %s: %v", e.Msg, e.Err)
	}
	return "hdbcore: authentication failed: " + e.Msg
}

func (e *AuthenticationError) Unwrap() error { return e.Err }

// IoError wraps an underlying transport failure, classified so RetryPolicy
// can decide whether the request that triggered it may be resent.
type IoError struct {
	Kind IoKind
	Err  error
}

func (e *IoError) Error() string { return fmt.Sprintf("hdbcore: io (%s): %v", e.Kind, e.Err) }
func (e *IoError) Unwrap() error { return e.Err }

// ServerError reports a structured error returned by a reply's error part.
type ServerError struct {
	Code     int
	Position int
	SQLState string
	Level    protocol.ErrorLevel
	Text     string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("hdbcore: server: %s %d (%s) at position %d: %s", e.Level, e.Code, e.SQLState, e.Position, e.Text)
}

// IsFatal reports whether the error invalidates the connection.
func (e *ServerError) IsFatal() bool { return e.Level == protocol.HdbFatalError }

// ImplError reports a protocol invariant violated by the server: a missing
// required part, an inconsistent size, or an unknown mandatory type id.
type ImplError struct {
	Msg string
}

func (e *ImplError) Error() string { return "hdbcore: protocol error: " + e.Msg }

// RowOutcome is the per-row classification MixedResultsError carries for a
// batch execute that produced a mix of successes and failures.
type RowOutcome struct {
	Index        int
	RowsAffected int32
	Err          error
}

// MixedResultsError reports that a batch execute produced at least one
// successful row and at least one failed row.
type MixedResultsError struct {
	Results []RowOutcome
}

func (e *MixedResultsError) Error() string {
	failed := 0
	for _, r := range e.Results {
		if r.Err != nil {
			failed++
		}
	}
	return fmt.Sprintf("hdbcore: batch execute: %d of %d rows failed", failed, len(e.Results))
}

// ErrorAfterReconnectError reports that a retriable request failed twice:
// once before the reconnect attempt and once after.
type ErrorAfterReconnectError struct {
	First  error
	Second error
}

func (e *ErrorAfterReconnectError) Error() string {
	return fmt.Sprintf("hdbcore: request failed after reconnect: first=%v second=%v", e.First, e.Second)
}

func (e *ErrorAfterReconnectError) Unwrap() []error { return []error{e.First, e.Second} }

// DeserializationError reports a malformed value on the wire that could not
// be decoded into any HdbValue variant.
type DeserializationError struct {
	Msg string
}

func (e *DeserializationError) Error() string { return "hdbcore: deserialization: " + e.Msg }

// Cesu8Error reports malformed CESU-8 byte content.
type Cesu8Error struct {
	Msg string
}

func (e *Cesu8Error) Error() string { return "hdbcore: cesu8: " + e.Msg }

// ConversionError reports a value whose type id is incompatible with the
// target column's type id per the value-to-value compatibility table.
type ConversionError struct {
	From string
	To   string
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("hdbcore: cannot convert %s to %s", e.From, e.To)
}

// Sentinel usage errors for conditions that need no dynamic message.
var (
	ErrNestedTransaction  = errors.New("hdbcore: nested transaction not supported")
	ErrResultSetClosed    = errors.New("hdbcore: result set is closed")
	ErrEmptyBatch         = errors.New("hdbcore: batch execute requires at least one row")
	ErrStatementArity     = errors.New("hdbcore: parameter row arity mismatch")
	ErrConnectionBroken   = errors.New("hdbcore: connection is broken")
	ErrLobStreamExhausted = errors.New("hdbcore: lob stream reader exhausted mid chunk")
)

// classifyServerError turns a protocol-level error-part error into the
// exported ServerError taxonomy member (joining multiple entries when a
// batch failed on more than one row), or returns err unchanged if it is not
// a server error (already an Io/Impl-shaped failure).
func classifyServerError(err error) error {
	type entryLister interface {
		Entries() []protocol.ErrorEntry
	}
	el, ok := err.(entryLister)
	if !ok {
		return err
	}
	entries := el.Entries()
	if len(entries) == 1 {
		return serverErrorFromEntry(entries[0])
	}
	errs := make([]error, len(entries))
	for i, e := range entries {
		errs[i] = serverErrorFromEntry(e)
	}
	return errors.Join(errs...)
}

func serverErrorFromEntry(e protocol.ErrorEntry) *ServerError {
	return &ServerError{
		Code:     e.Code(),
		Position: e.Position(),
		SQLState: e.SQLState(),
		Level:    e.Level(),
		Text:     e.Text(),
	}
}
