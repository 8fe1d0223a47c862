// SPDX-FileCopyrightText: 2014-2021 SAP SE
//
// SPDX-License-Identifier: Apache-2.0

package hdbcore

import (
	"errors"
	"testing"
)

func TestIoErrorUnwrap(t *testing.T) {
	cause := errors.New("connection reset by peer")
	err := &IoError{Kind: IoKindConnectionReset, Err: cause}
	if !errors.Is(err, cause) {
		t.Fatal("expected errors.Is to find the wrapped cause")
	}
}

func TestErrorAfterReconnectErrorUnwrap(t *testing.T) {
	first := errors.New("first")
	second := errors.New("second")
	err := &ErrorAfterReconnectError{First: first, Second: second}
	if !errors.Is(err, first) || !errors.Is(err, second) {
		t.Fatal("expected errors.Is to find both wrapped errors")
	}
}

func TestServerErrorIsFatal(t *testing.T) {
	warn := &ServerError{Level: 0}
	if warn.IsFatal() {
		t.Error("a warning-level server error should not be fatal")
	}
	fatal := &ServerError{Level: 2}
	if !fatal.IsFatal() {
		t.Error("a fatal-level server error should report IsFatal")
	}
}

func TestMixedResultsErrorCountsFailures(t *testing.T) {
	err := &MixedResultsError{Results: []RowOutcome{
		{Index: 0, RowsAffected: 1},
		{Index: 1, Err: errors.New("constraint violation")},
		{Index: 2, RowsAffected: 1},
	}}
	got := err.Error()
	want := "hdbcore: batch execute: 1 of 3 rows failed"
	if got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}
