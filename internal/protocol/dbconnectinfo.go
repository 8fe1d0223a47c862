// SPDX-FileCopyrightText: 2014-2021 SAP SE
//
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"fmt"

	"github.com/sqldbc/hdbcore/internal/protocol/encoding"
)

// dbConnectInfoType identifies a single key of a DB connect info part, sent
// by a client that wants to be redirected to the tenant database actually
// hosting the requested database name (spec §4.4's "initial connect, then
// redirect" path).
type dbConnectInfoType int8

// Grounded on the newer teacher generation's optionsparts.go, which names
// these constants (CiDatabaseName/CiHost/CiPort/CiIsConnected).
const (
	ciDatabaseName dbConnectInfoType = 1 // string
	ciHost         dbConnectInfoType = 2 // string
	ciPort         dbConnectInfoType = 3 // int4
	ciIsConnected  dbConnectInfoType = 4 // bool
)

// dbConnectInfo carries a requested database name out and the resolved
// host/port/connected triple back. It is exchanged over an already
// authenticated session (Session.DBConnectInfo).
type dbConnectInfo plainOptions

func (o dbConnectInfo) kind() partKind { return pkDBConnectInfo }
func (o dbConnectInfo) size() int      { return plainOptions(o).size() }
func (o dbConnectInfo) numArg() int    { return len(o) }

func (o dbConnectInfo) String() string {
	m := make(map[dbConnectInfoType]interface{})
	for k, v := range o {
		m[dbConnectInfoType(k)] = v
	}
	return fmt.Sprintf("options %s", m)
}

func (o dbConnectInfo) set(k dbConnectInfoType, v interface{}) { o[int8(k)] = v }

func (o dbConnectInfo) get(k dbConnectInfoType) (interface{}, bool) {
	v, ok := o[int8(k)]
	return v, ok
}

func (o *dbConnectInfo) decode(dec *encoding.Decoder, ph *partHeader) error {
	*o = dbConnectInfo{}
	plainOptions(*o).decode(dec, ph.numArg())
	return dec.Error()
}

func (o dbConnectInfo) encode(enc *encoding.Encoder) error {
	plainOptions(o).encode(enc)
	return nil
}

var (
	_ part       = (dbConnectInfo)(nil)
	_ partWriter = (dbConnectInfo)(nil)
	_ partReader = (*dbConnectInfo)(nil)
)
