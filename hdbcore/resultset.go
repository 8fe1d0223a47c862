// SPDX-FileCopyrightText: 2014-2021 SAP SE
//
// SPDX-License-Identifier: Apache-2.0

package hdbcore

import (
	"github.com/sqldbc/hdbcore/internal/protocol"
)

// ResultSetState tracks one open result set: its server-assigned id, field
// layout, and a FIFO buffer of rows fetched so far, fetching the next chunk
// on demand as the caller's iterator runs past the buffered rows (spec §4.7
// / §4.8).
type ResultSetState struct {
	core   *ConnectionCore
	id     uint64
	fields []protocol.Field

	fetchSize int32

	buf    [][]any
	pos    int
	closed bool
	last   bool
}

func newResultSetState(core *ConnectionCore, id uint64, fields []protocol.Field, rows [][]any, last bool, fetchSize int32) *ResultSetState {
	convertLobCells(core, rows)
	return &ResultSetState{
		core:      core,
		id:        id,
		fields:    fields,
		fetchSize: fetchSize,
		buf:       rows,
		last:      last,
	}
}

// convertLobCells replaces every inline *protocol.Lob cell decoded with a
// row with the streaming handle appropriate for its column, so callers
// iterating a ResultSetState never see the wire-layer Lob type directly.
func convertLobCells(core *ConnectionCore, rows [][]any) {
	for _, row := range rows {
		for i, cell := range row {
			if lob, ok := cell.(*protocol.Lob); ok {
				row[i] = lobFromRow(core, lob)
			}
		}
	}
}

// Fields returns the result set's column descriptors.
func (r *ResultSetState) Fields() []protocol.Field { return r.fields }

// Next advances to the next row, fetching another chunk from the server
// when the local buffer is exhausted and the server has more to send.
// It returns false once every row has been consumed.
func (r *ResultSetState) Next() (bool, error) {
	if r.closed {
		return false, ErrResultSetClosed
	}
	if r.pos < len(r.buf) {
		r.pos++
		return true, nil
	}
	if r.last {
		return false, nil
	}

	var fr *protocol.FetchResult
	err := r.core.withSession(true, func(s *protocol.Session) error {
		var err error
		fr, err = s.FetchNext(r.id, r.fields, r.fetchSize)
		return err
	})
	if err != nil {
		return false, err
	}

	convertLobCells(r.core, fr.Rows)
	r.buf = fr.Rows
	r.pos = 0
	r.last = fr.LastPacket
	if fr.ResultsetClosed {
		r.closed = true
	}
	if len(r.buf) == 0 {
		return false, nil
	}
	r.pos = 1
	return true, nil
}

// Row returns the row the most recent successful Next call advanced to.
func (r *ResultSetState) Row() []any {
	if r.pos == 0 || r.pos > len(r.buf) {
		return nil
	}
	return r.buf[r.pos-1]
}

// FetchAll drains every remaining row, returning them alongside whatever was
// already buffered.
func (r *ResultSetState) FetchAll() ([][]any, error) {
	var out [][]any
	out = append(out, r.buf[r.pos:]...)
	r.pos = len(r.buf)
	for !r.last {
		var fr *protocol.FetchResult
		err := r.core.withSession(true, func(s *protocol.Session) error {
			var err error
			fr, err = s.FetchNext(r.id, r.fields, r.fetchSize)
			return err
		})
		if err != nil {
			return out, err
		}
		convertLobCells(r.core, fr.Rows)
		out = append(out, fr.Rows...)
		r.last = fr.LastPacket
		if fr.ResultsetClosed {
			r.closed = true
		}
	}
	return out, nil
}

// Close releases server-side resources held by the result set. Close is
// idempotent and safe to call after the server has already closed the
// result set as a side effect of the final fetch.
func (r *ResultSetState) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return r.core.withSession(true, func(s *protocol.Session) error {
		return s.CloseResultset(r.id)
	})
}
