// SPDX-FileCopyrightText: 2014-2021 SAP SE
//
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"fmt"

	"github.com/sqldbc/hdbcore/internal/protocol/encoding"
)

// statementID identifies a prepared statement for the lifetime of a session.
type statementID uint64

func (id statementID) String() string { return fmt.Sprintf("%d", id) }
func (id *statementID) decode(dec *encoding.Decoder, ph *partHeader) error {
	*id = statementID(dec.Uint64())
	return dec.Error()
}
func (id statementID) encode(enc *encoding.Encoder) error { enc.Uint64(uint64(id)); return nil }
