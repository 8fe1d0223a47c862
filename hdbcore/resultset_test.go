// SPDX-FileCopyrightText: 2014-2021 SAP SE
//
// SPDX-License-Identifier: Apache-2.0

package hdbcore

import "testing"

func TestResultSetStateIteratesBufferedRows(t *testing.T) {
	rows := [][]any{{int64(1), "a"}, {int64(2), "b"}}
	rs := newResultSetState(&ConnectionCore{}, 1, nil, rows, true, 100)

	var got [][]any
	for {
		ok, err := rs.Next()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !ok {
			break
		}
		got = append(got, rs.Row())
	}
	if len(got) != 2 {
		t.Fatalf("iterated %d rows, want 2", len(got))
	}
	if got[0][1] != "a" || got[1][1] != "b" {
		t.Errorf("unexpected row contents: %v", got)
	}
}

func TestResultSetStateNextAfterCloseFails(t *testing.T) {
	rs := newResultSetState(&ConnectionCore{}, 1, nil, nil, true, 100)
	rs.closed = true
	if _, err := rs.Next(); err != ErrResultSetClosed {
		t.Fatalf("expected ErrResultSetClosed, got %v", err)
	}
}

func TestResultSetStateFetchAllDrainsBuffer(t *testing.T) {
	rows := [][]any{{int64(1)}, {int64(2)}, {int64(3)}}
	rs := newResultSetState(&ConnectionCore{}, 1, nil, rows, true, 100)

	// consume the first row through Next, then FetchAll should return the rest.
	if ok, err := rs.Next(); err != nil || !ok {
		t.Fatalf("Next() = %v, %v", ok, err)
	}
	rest, err := rs.FetchAll()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rest) != 2 {
		t.Fatalf("FetchAll returned %d rows, want 2", len(rest))
	}
}
