// SPDX-FileCopyrightText: 2014-2021 SAP SE
//
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"fmt"

	"github.com/sqldbc/hdbcore/internal/protocol/encoding"
)

const sqlStateSize = 5

type sqlState [sqlStateSize]byte

func (s sqlState) String() string { return string(s[:]) }

// ErrorLevel classifies a single server error entry (spec §4.6).
type ErrorLevel int8

const (
	// HdbWarning marks an entry that did not abort statement execution.
	HdbWarning ErrorLevel = 0
	// HdbError marks an entry that aborted the current statement.
	HdbError ErrorLevel = 1
	// HdbFatalError marks an entry that invalidates the session.
	HdbFatalError ErrorLevel = 2
)

func (l ErrorLevel) String() string {
	switch l {
	case HdbWarning:
		return "warning"
	case HdbError:
		return "error"
	case HdbFatalError:
		return "fatal error"
	default:
		return fmt.Sprintf("errorLevel(%d)", int8(l))
	}
}

// hdbError is a single entry of an error part: a server SQL error or
// warning, carrying the error code, 1-based error position within the
// executed statement, SQLSTATE, and level.
type hdbError struct {
	errorCode     int32
	errorPosition int32
	errorLevel    ErrorLevel
	sqlState      sqlState
	errorText     []byte
}

func (e *hdbError) String() string {
	return fmt.Sprintf("errorCode %d errorPosition %d errorLevel %s sqlState %s errorText %s",
		e.errorCode, e.errorPosition, e.errorLevel, e.sqlState, e.errorText)
}

// Error implements the error interface.
func (e *hdbError) Error() string {
	return fmt.Sprintf("SQL %s %d (%s): %s", e.errorLevel, e.errorCode, e.sqlState, e.errorText)
}

// Code returns the server-assigned SQL error code.
func (e *hdbError) Code() int { return int(e.errorCode) }

// Position returns the 1-based error position within the executed statement.
func (e *hdbError) Position() int { return int(e.errorPosition) }

// Level returns the error's severity.
func (e *hdbError) Level() ErrorLevel { return e.errorLevel }

// Text returns the server-supplied error message.
func (e *hdbError) Text() string { return string(e.errorText) }

// IsWarning reports whether the entry is a warning only.
func (e *hdbError) IsWarning() bool { return e.errorLevel == HdbWarning }

// IsError reports whether the entry aborted the current statement.
func (e *hdbError) IsError() bool { return e.errorLevel == HdbError }

// IsFatal reports whether the entry invalidates the session.
func (e *hdbError) IsFatal() bool { return e.errorLevel == HdbFatalError }

// hdbErrors is the decoded pkError part: one entry per argument, used both
// for single-statement errors and for the per-row errors of a failed batch
// execute.
type hdbErrors struct {
	errors []*hdbError
}

func (e *hdbErrors) String() string { return fmt.Sprintf("errors %v", e.errors) }

// Error implements the error interface, concatenating every entry.
func (e *hdbErrors) Error() string {
	if len(e.errors) == 1 {
		return e.errors[0].Error()
	}
	s := fmt.Sprintf("%d errors:", len(e.errors))
	for _, err := range e.errors {
		s += "\n" + err.Error()
	}
	return s
}

// ErrorEntry exposes a single server error or warning entry to callers
// outside this package, without exposing the unexported hdbError type.
type ErrorEntry interface {
	Code() int
	Position() int
	Level() ErrorLevel
	SQLState() string
	Text() string
}

var _ ErrorEntry = (*hdbError)(nil)

// SQLState returns the five-character SQLSTATE code.
func (e *hdbError) SQLState() string { return string(e.sqlState[:]) }

// Entries returns every error or warning entry decoded in this reply.
func (e *hdbErrors) Entries() []ErrorEntry {
	out := make([]ErrorEntry, len(e.errors))
	for i, he := range e.errors {
		out[i] = he
	}
	return out
}

// IsWarning reports whether every entry is a warning only.
func (e *hdbErrors) IsWarning() bool {
	for _, err := range e.errors {
		if !err.IsWarning() {
			return false
		}
	}
	return true
}

func (e *hdbErrors) decode(dec *encoding.Decoder, ph *partHeader) error {
	numArg := ph.numArg()
	e.errors = make([]*hdbError, numArg)

	for i := 0; i < numArg; i++ {
		he := new(hdbError)

		he.errorCode = dec.Int32()
		he.errorPosition = dec.Int32()
		errorTextLength := dec.Int32()
		he.errorLevel = ErrorLevel(dec.Int8())
		dec.Bytes(he.sqlState[:])

		// error text carries non-CESU-8 bytes for some server errors
		// (invalid character encoding reports), so it is kept raw.
		he.errorText = make([]byte, int(errorTextLength))
		dec.Bytes(he.errorText)

		// part buffer length counts one filler byte per entry beyond the text.
		dec.Skip(1)

		e.errors[i] = he
	}
	return dec.Error()
}
