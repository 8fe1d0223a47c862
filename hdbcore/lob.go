// SPDX-FileCopyrightText: 2014-2021 SAP SE
//
// SPDX-License-Identifier: Apache-2.0

package hdbcore

import (
	"github.com/sqldbc/hdbcore/internal/cesu8"
	"github.com/sqldbc/hdbcore/internal/protocol"
)

// LobKind distinguishes the three LOB column types the wire protocol
// supports (spec §4.9); NCLob and CLob both carry CESU-8 text, BLob carries
// raw bytes.
type LobKind int

const (
	LobKindBlob LobKind = iota
	LobKindClob
	LobKindNClob
)

// BLob is a streaming handle onto a server-side BLOB locator, read or
// written in chunks bounded by the connection's lob_read_length/
// lob_write_length (spec §4.9).
type BLob struct {
	core *ConnectionCore
	id   uint64
	ofs  int64
	done bool
}

func newBLob(core *ConnectionCore, id uint64) *BLob { return &BLob{core: core, id: id} }

// LocatorID returns the server-assigned locator id backing this handle.
func (l *BLob) LocatorID() uint64 { return l.id }

// Read fills buf with up to len(buf) bytes read from the current offset,
// advancing the offset and returning io.EOF-shaped (n=0, err=nil, done=true
// on the final chunk; callers should stop once Done reports true) semantics
// through the done flag, matching the chunked fetch contract the rest of
// this package uses.
func (l *BLob) Read(buf []byte) (int, error) {
	var n int
	var done bool
	err := l.core.withSession(true, func(s *protocol.Session) error {
		var err error
		n, done, err = s.ReadLobChunk(l.id, l.ofs, buf)
		return err
	})
	if err != nil {
		return 0, err
	}
	l.ofs += int64(n)
	l.done = done
	return n, nil
}

// Done reports whether the most recent Read reached the end of the locator.
func (l *BLob) Done() bool { return l.done }

// Write appends data as one or more chunks no larger than
// lob_write_length, marking the final chunk when last is true.
func (l *BLob) Write(data []byte, last bool) error {
	chunkSize := l.core.params.LobWriteLength
	if chunkSize <= 0 || int(chunkSize) >= len(data) {
		return l.core.withSession(false, func(s *protocol.Session) error {
			return s.WriteLobChunk(l.id, data, last)
		})
	}
	for off := 0; off < len(data); off += int(chunkSize) {
		end := off + int(chunkSize)
		if end > len(data) {
			end = len(data)
		}
		isLast := last && end == len(data)
		chunk := data[off:end]
		if err := l.core.withSession(false, func(s *protocol.Session) error {
			return s.WriteLobChunk(l.id, chunk, isLast)
		}); err != nil {
			return err
		}
	}
	return nil
}

// CLob/NCLob are text LOB handles: content on the wire is CESU-8, decoded to
// UTF-8 incrementally so a chunk boundary never splits inside a multi-byte
// or surrogate-pair code point (spec §4.9's CESU-8 split-carry requirement).
type textLob struct {
	blob *BLob
	kind LobKind

	carry []byte // CESU-8 bytes held back from the previous chunk
}

// CLob is a streaming handle onto a server-side CLOB locator.
type CLob struct{ textLob }

// NCLob is a streaming handle onto a server-side NCLOB locator.
type NCLob struct{ textLob }

func newCLob(core *ConnectionCore, id uint64) *CLob {
	return &CLob{textLob{blob: newBLob(core, id), kind: LobKindClob}}
}

func newNCLob(core *ConnectionCore, id uint64) *NCLob {
	return &NCLob{textLob{blob: newBLob(core, id), kind: LobKindNClob}}
}

// LocatorID returns the server-assigned locator id backing this handle.
func (t *textLob) LocatorID() uint64 { return t.blob.LocatorID() }

// Done reports whether the most recent ReadString reached the end of the
// locator and every carried byte has been consumed.
func (t *textLob) Done() bool { return t.blob.Done() && len(t.carry) == 0 }

// ReadString reads up to maxBytes of CESU-8 wire content, decodes it to a
// UTF-8 string, and carries forward any trailing bytes that did not form a
// complete code point so the next call can prepend them.
func (t *textLob) ReadString(maxBytes int) (string, error) {
	buf := make([]byte, maxBytes)
	n, err := t.blob.Read(buf)
	if err != nil {
		return "", err
	}
	chunk := append(t.carry, buf[:n]...)

	tail := 0
	if !t.blob.Done() {
		tail = cesu8.GetCESU8TailLen(chunk)
	}
	complete := chunk[:len(chunk)-tail]
	t.carry = append([]byte(nil), chunk[len(chunk)-tail:]...)

	if tail > 0 && t.blob.Done() {
		return "", &Cesu8Error{Msg: "lob stream ended mid code point"}
	}
	return cesu8.StringFromCESU8(complete), nil
}

// WriteString CESU-8-encodes s and writes it as one or more wire chunks,
// marking the final chunk when last is true.
func (t *textLob) WriteString(s string, last bool) error {
	enc := cesu8.DefaultEncoder()
	dst := make([]byte, cesu8.StringSize(s))
	n, _, err := enc.Transform(dst, []byte(s), true)
	if err != nil {
		return &Cesu8Error{Msg: err.Error()}
	}
	return t.blob.Write(dst[:n], last)
}
