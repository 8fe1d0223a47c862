// SPDX-FileCopyrightText: 2014-2021 SAP SE
//
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"bytes"
	"io"

	"github.com/sqldbc/hdbcore/internal/protocol/encoding"
)

// locatorID identifies a server side lob locator used while streaming lob
// content over several read or write lob requests.
type locatorID uint64

// chunkReader supplies successive chunks of outbound lob data for a write
// lob request.
type chunkReader interface {
	locatorID() locatorID
	eof() bool
	next() int // size of the next chunk in bytes, used for size estimation
	bytes() ([]byte, error)
}

// chunkWriter receives successive chunks of inbound lob data for a read lob
// reply and reports the next read offset/length to request.
type chunkWriter interface {
	id() locatorID
	readOfsLen() (int64, int32)
	write(dec *encoding.Decoder, chunkLen int, eof bool) error
}

// readerChunkReader streams chunks out of an io.Reader, sizing each chunk to
// chunkSize bytes.
type readerChunkReader struct {
	id        locatorID
	r         io.Reader
	chunkSize int
	buf       []byte
	isEOF     bool
}

func newReaderChunkReader(id locatorID, r io.Reader, chunkSize int) *readerChunkReader {
	if chunkSize <= 0 {
		chunkSize = 1 << 14
	}
	return &readerChunkReader{id: id, r: r, chunkSize: chunkSize}
}

func (c *readerChunkReader) locatorID() locatorID { return c.id }
func (c *readerChunkReader) eof() bool             { return c.isEOF }
func (c *readerChunkReader) next() int             { return c.chunkSize }

func (c *readerChunkReader) bytes() ([]byte, error) {
	buf := make([]byte, c.chunkSize)
	n, err := io.ReadFull(c.r, buf)
	switch err {
	case nil:
		return buf, nil
	case io.ErrUnexpectedEOF, io.EOF:
		c.isEOF = true
		return buf[:n], nil
	default:
		return nil, err
	}
}

// bufferChunkWriter accumulates inbound lob chunks into an in-memory buffer,
// fetching full content in one pass (the streaming, offset-driven case is
// handled by the higher level lob handle in hdbcore, which drives repeated
// read lob requests against the same locator).
type bufferChunkWriter struct {
	locID    locatorID
	buf      bytes.Buffer
	isEOF    bool
	byteLen  int64
	readOfs  int64
	chunkLen int32
}

func newBufferChunkWriter(id locatorID, byteLen int64, chunkLen int32) *bufferChunkWriter {
	return &bufferChunkWriter{locID: id, byteLen: byteLen, chunkLen: chunkLen}
}

func (w *bufferChunkWriter) id() locatorID { return w.locID }

func (w *bufferChunkWriter) readOfsLen() (int64, int32) {
	remaining := w.byteLen - w.readOfs
	if remaining < int64(w.chunkLen) {
		return w.readOfs, int32(remaining)
	}
	return w.readOfs, w.chunkLen
}

func (w *bufferChunkWriter) write(dec *encoding.Decoder, chunkLen int, eof bool) error {
	b := make([]byte, chunkLen)
	dec.Bytes(b)
	if _, err := w.buf.Write(b); err != nil {
		return err
	}
	w.readOfs += int64(chunkLen)
	w.isEOF = eof
	return dec.Error()
}

func (w *bufferChunkWriter) bytes() []byte { return w.buf.Bytes() }
func (w *bufferChunkWriter) done() bool    { return w.isEOF }
