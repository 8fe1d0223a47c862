// SPDX-FileCopyrightText: 2014-2021 SAP SE
//
// SPDX-License-Identifier: Apache-2.0

package hdbcore

import (
	"github.com/sqldbc/hdbcore/internal/protocol"
)

// PreparedStatement is a parsed, server-side-cached statement bound to one
// ConnectionCore. Parameter rows are accumulated with AddBatch and sent on
// ExecuteBatch, one Execute round trip per row.
type PreparedStatement struct {
	core *ConnectionCore
	pr   *protocol.PrepareResult

	rows [][]any

	dropped bool
}

func newPreparedStatement(core *ConnectionCore, pr *protocol.PrepareResult) *PreparedStatement {
	return &PreparedStatement{core: core, pr: pr}
}

// Kind reports what the statement does (select, insert, call, ...).
func (p *PreparedStatement) Kind() protocol.StatementKind { return p.pr.Kind }

// ParameterFields describes every bind parameter, in server-declared order.
func (p *PreparedStatement) ParameterFields() []protocol.Field { return p.pr.ParameterFields }

// ResultFields describes the result set columns this statement produces
// when executed, if any.
func (p *PreparedStatement) ResultFields() []protocol.Field { return p.pr.ResultFields }

// AddBatch appends one row of bind values, validating its arity against the
// statement's declared parameter count before accepting it.
func (p *PreparedStatement) AddBatch(args []any) error {
	if len(args) != len(p.pr.ParameterFields) {
		return ErrStatementArity
	}
	p.rows = append(p.rows, args)
	return nil
}

// Execute runs the statement once against a single row of bind values,
// equivalent to AddBatch followed by ExecuteBatch with exactly one row.
func (p *PreparedStatement) Execute(args []any) (*protocol.ExecuteResult, *ResultSetState, error) {
	if err := p.AddBatch(args); err != nil {
		return nil, nil, err
	}
	results, rs, err := p.ExecuteBatch()
	if err != nil {
		return nil, rs, err
	}
	return results[0], rs, nil
}

// ExecuteBatch sends each accumulated row in its own Execute round trip, in
// order; the rows are not combined into one multi-row request. When every
// row succeeds, it returns one *protocol.ExecuteResult per row plus the
// result set opened by the last row that opened one, if any. When some rows
// succeed and others fail, it returns the successful rows' results and
// result set together with a *MixedResultsError listing every row's outcome.
func (p *PreparedStatement) ExecuteBatch() ([]*protocol.ExecuteResult, *ResultSetState, error) {
	if len(p.rows) == 0 {
		return nil, nil, ErrEmptyBatch
	}
	rows := p.rows
	p.rows = nil

	results := make([]*protocol.ExecuteResult, 0, len(rows))
	var rs *ResultSetState
	var outcomes []RowOutcome
	hasFailure := false
	hasSuccess := false

	for i, args := range rows {
		var res *protocol.ExecuteResult
		err := p.core.withSession(false, func(s *protocol.Session) error {
			var err error
			res, err = s.Execute(p.pr, args, p.core.params.AutoCommit)
			return err
		})
		if err != nil {
			hasFailure = true
			outcomes = append(outcomes, RowOutcome{Index: i, Err: err})
			continue
		}
		hasSuccess = true
		var affected int32
		if len(res.RowsAffected) > 0 {
			affected = res.RowsAffected[0]
		}
		outcomes = append(outcomes, RowOutcome{Index: i, RowsAffected: affected})
		results = append(results, res)

		if res.ResultSetID != 0 && len(res.Fields) > 0 {
			rs = newResultSetState(p.core, res.ResultSetID, res.Fields, res.Rows, res.LastPacket, p.core.params.FetchSize)
			if res.ResultsetClosed {
				rs.closed = true
			}
		}
	}

	p.core.noteTransaction()

	if hasFailure && hasSuccess {
		return results, rs, &MixedResultsError{Results: outcomes}
	}
	if hasFailure {
		return nil, nil, outcomes[len(outcomes)-1].Err
	}
	return results, rs, nil
}

// Drop releases the server-side prepared statement. Drop is idempotent and
// best-effort: an error from the server is still returned, but Drop never
// needs to be retried by the caller.
func (p *PreparedStatement) Drop() error {
	if p.dropped {
		return nil
	}
	p.dropped = true
	return p.core.withSession(true, func(s *protocol.Session) error {
		return s.DropStatement(p.pr.StatementID)
	})
}
