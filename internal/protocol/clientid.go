// SPDX-FileCopyrightText: 2014-2021 SAP SE
//
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"github.com/sqldbc/hdbcore/internal/cesu8"
	"github.com/sqldbc/hdbcore/internal/protocol/encoding"
)

// clientID is a free-form string identifying the client process, sent once
// as part of the connect sequence (spec §4.5).
type clientID []byte

func (c clientID) String() string { return string(c) }
func (c clientID) size() int      { return cesu8.Size(c) }
func (c clientID) encode(enc *encoding.Encoder) error { enc.CESU8Bytes(c); return nil }
func (c *clientID) decode(dec *encoding.Decoder, ph *partHeader) error {
	*c = sizeBuffer(*c, int(ph.bufferLength))
	*c = dec.CESU8Bytes(len(*c))
	return dec.Error()
}
