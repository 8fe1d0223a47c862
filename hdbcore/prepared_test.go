// SPDX-FileCopyrightText: 2014-2021 SAP SE
//
// SPDX-License-Identifier: Apache-2.0

package hdbcore

import (
	"testing"

	"github.com/sqldbc/hdbcore/internal/protocol"
)

func TestPreparedStatementAddBatchArity(t *testing.T) {
	pr := &protocol.PrepareResult{
		ParameterFields: make([]protocol.Field, 2),
	}
	p := newPreparedStatement(&ConnectionCore{}, pr)

	if err := p.AddBatch([]any{1, "x"}); err != nil {
		t.Fatalf("unexpected error for matching arity: %v", err)
	}
	if err := p.AddBatch([]any{1}); err != ErrStatementArity {
		t.Fatalf("expected ErrStatementArity, got %v", err)
	}
	if len(p.rows) != 1 {
		t.Errorf("rows = %d, want 1 (the rejected row must not be queued)", len(p.rows))
	}
}

func TestPreparedStatementExecuteBatchRejectsEmpty(t *testing.T) {
	pr := &protocol.PrepareResult{}
	p := newPreparedStatement(&ConnectionCore{}, pr)
	if _, _, err := p.ExecuteBatch(); err != ErrEmptyBatch {
		t.Fatalf("expected ErrEmptyBatch, got %v", err)
	}
}

func TestPreparedStatementDropIsIdempotent(t *testing.T) {
	pr := &protocol.PrepareResult{StatementID: 7}
	p := newPreparedStatement(&ConnectionCore{}, pr)
	p.dropped = true
	if err := p.Drop(); err != nil {
		t.Fatalf("Drop on an already-dropped statement should be a no-op: %v", err)
	}
}
