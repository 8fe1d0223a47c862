/*
Copyright 2014 SAP SE

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package protocol

import (
	"fmt"

	"github.com/sqldbc/hdbcore/internal/protocol/encoding"
)

// padding size every message/segment/part body is padded up to.
const padding = 8

func padBytes(size int) int {
	if r := size % padding; r != 0 {
		return padding - r
	}
	return 0
}

// endianess identifies the byte order the client announces in the
// connection prolog. The wire protocol has only ever shipped little endian
// implementations; the field survives for protocol-version reasons.
type endianess int8

const littleEndian endianess = 1

// version is a major.minor pair as exchanged in the prolog.
type version struct {
	major int8
	minor int16
}

func (v version) String() string { return fmt.Sprintf("%d.%d", v.major, v.minor) }

const (
	productVersionMajor  = 4
	productVersionMinor  = 20
	protocolVersionMajor = 4
	protocolVersionMinor = 1
)

// initRequest is the fixed 14-byte prolog sent once, before any message
// header, announcing the client's product/protocol version and byte order.
// Neither generation in the retrieved pack defines this type by name (the
// legacy protocol.go references it without a visible source file); its
// shape here follows the field order writeProlog encodes in that file.
type initRequest struct {
	product    version
	protocol   version
	numOptions int8
	endianess  endianess
}

func (r *initRequest) String() string {
	return fmt.Sprintf("product %s protocol %s endianess %d", r.product, r.protocol, r.endianess)
}

func (r *initRequest) encode(enc *encoding.Encoder) error {
	enc.Bytes([]byte{0xff, 0xff, 0xff, 0xff}) // filler
	enc.Int8(r.product.major)
	enc.Int16(r.product.minor)
	enc.Int8(r.protocol.major)
	enc.Int16(r.protocol.minor)
	enc.Zeroes(1) // reserved
	enc.Int8(r.numOptions)
	enc.Int8(1) // option id: endianess
	enc.Int8(int8(r.endianess))
	return enc.Error()
}

// initReply is the server's answer to the prolog: the product/protocol
// version it settled on.
type initReply struct {
	product  version
	protocol version
}

func (r *initReply) String() string {
	return fmt.Sprintf("product %s protocol %s", r.product, r.protocol)
}

func (r *initReply) decode(dec *encoding.Decoder) error {
	r.product.major = dec.Int8()
	r.product.minor = dec.Int16()
	r.protocol.major = dec.Int8()
	r.protocol.minor = dec.Int16()
	dec.Skip(3)
	return dec.Error()
}
