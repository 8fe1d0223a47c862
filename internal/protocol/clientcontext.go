// SPDX-FileCopyrightText: 2014-2021 SAP SE
//
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"fmt"

	"github.com/sqldbc/hdbcore/internal/protocol/encoding"
)

// clientContext carries client identification (driver version, driver
// name, application program name) sent once right after authentication,
// keyed by clientContextOption.
type clientContext plainOptions

func (o clientContext) kind() partKind { return pkClientContext }
func (o clientContext) size() int      { return plainOptions(o).size() }
func (o clientContext) numArg() int    { return len(o) }

func (o clientContext) String() string {
	m := make(map[clientContextOption]interface{})
	for k, v := range o {
		m[clientContextOption(k)] = v
	}
	return fmt.Sprintf("options %s", m)
}

func (o clientContext) set(k clientContextOption, v interface{}) { o[int8(k)] = v }

func (o *clientContext) decode(dec *encoding.Decoder, ph *partHeader) error {
	*o = clientContext{}
	plainOptions(*o).decode(dec, ph.numArg())
	return dec.Error()
}

func (o clientContext) encode(enc *encoding.Encoder) error {
	plainOptions(o).encode(enc)
	return nil
}

var (
	_ part       = (clientContext)(nil)
	_ partWriter = (clientContext)(nil)
	_ partReader = (*clientContext)(nil)
)
