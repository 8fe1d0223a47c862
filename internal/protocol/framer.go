// SPDX-FileCopyrightText: 2014-2021 SAP SE
//
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"math"

	"github.com/sqldbc/hdbcore/internal/protocol/encoding"
)

// partIter walks the sequence of parts within one segment, applying the
// protocol's "last segment not always padded" quirk: every part body is
// padded to an 8 byte boundary except the final part of the final segment
// of a message whose message header varPartSize equals the segment length
// exactly (msgSize == 0 below).
type partIter struct {
	dec     *encoding.Decoder
	msgSize int64
	numPart int
	cnt     int
	ph      *partHeader
}

func newPartIter(dec *encoding.Decoder) *partIter {
	return &partIter{dec: dec, ph: &partHeader{}}
}

func (p *partIter) partKind() partKind { return p.ph.partKind }

func (p *partIter) reset(msgSize int64, numPart int) {
	p.msgSize = msgSize
	p.numPart = numPart
	p.cnt = 0
}

func (p *partIter) next() bool {
	if p.cnt >= p.numPart {
		return false
	}
	p.cnt++
	return p.ph.decode(p.dec) == nil
}

func (p *partIter) pad() {
	if p.cnt != p.numPart || p.msgSize == 0 {
		p.dec.Skip(padBytes(int(p.ph.bufferLength)))
	}
}

func (p *partIter) skip() {
	p.dec.Skip(int(p.ph.bufferLength))
	p.pad()
}

func (p *partIter) read(part partReader) error {
	p.dec.ResetCnt()
	if err := part.decode(p.dec, p.ph); err != nil {
		return err
	}
	cnt := p.dec.Cnt()
	bufferLen := int(p.ph.bufferLength)
	switch {
	case cnt < bufferLen:
		p.dec.Skip(bufferLen - cnt)
	case cnt > bufferLen:
		return fmt.Errorf("protocol error: read bytes %d exceeds buffer length %d", cnt, bufferLen)
	}
	p.pad()
	return nil
}

// segIter walks the segments of one message.
type segIter struct {
	partIter *partIter
	dec      *encoding.Decoder
	msgSize  int64
	numSeg   int
	cnt      int
	sh       *segmentHeader
}

func newSegIter(partIter *partIter, dec *encoding.Decoder) *segIter {
	return &segIter{partIter: partIter, dec: dec, sh: &segmentHeader{}}
}

func (s *segIter) functionCode() functionCode { return s.sh.functionCode }

func (s *segIter) reset(msgSize int64, numSeg int) {
	s.msgSize = msgSize
	s.numSeg = numSeg
	s.cnt = 0
}

func (s *segIter) next() bool {
	if s.cnt >= s.numSeg {
		return false
	}
	s.cnt++
	if err := s.sh.decode(s.dec, true); err != nil {
		return false
	}
	s.msgSize -= int64(s.sh.segmentLength)
	s.partIter.reset(s.msgSize, int(s.sh.partsCount))
	return true
}

// msgIter holds the message header that begins every reply. Its decode step
// lives on messageReader.beginMessage, which additionally has to decide
// whether the varpart that follows is lz4-compressed before segIter/partIter
// can read it.
type msgIter struct {
	mh *messageHeader
}

func newMsgIter() *msgIter { return &msgIter{mh: &messageHeader{}} }

// partCache holds one pre-allocated partReader per part kind the client
// ever needs to read into, so the read loop can dispatch by kind without
// allocating on every reply.
type partCache struct {
	clientID            *clientID
	connectOptions       *connectOptions
	dbConnectInfo        *dbConnectInfo
	topologyInformation  *topologyInformation
	rowsAffected         *rowsAffected
	transactionFlags     *transactionFlags
	statementContext     *statementContext
	statementID          *statementID
	parameterMetadata    *parameterMetadata
	inputParameters      *inputParameters
	outputParameters     *outputParameters
	resultMetadata       *resultMetadata
	resultsetID          *resultsetID
	fetchSize            *fetchsize
	resultset            *resultset
	readLobReply         *readLobReply
	writeLobReply        *writeLobReply
	xatOptions           *xatOptions
	hdbErrors            *hdbErrors

	parts map[partKind]partReader
}

func newPartCache() *partCache {
	c := &partCache{
		clientID:            &clientID{},
		connectOptions:      &connectOptions{},
		dbConnectInfo:       &dbConnectInfo{},
		topologyInformation: &topologyInformation{},
		rowsAffected:        &rowsAffected{},
		transactionFlags:    &transactionFlags{},
		statementContext:    &statementContext{},
		statementID:         new(statementID),
		parameterMetadata:   &parameterMetadata{},
		inputParameters:     &inputParameters{},
		outputParameters:    &outputParameters{},
		resultMetadata:      &resultMetadata{},
		resultsetID:         new(resultsetID),
		fetchSize:           new(fetchsize),
		resultset:           &resultset{},
		writeLobReply:       &writeLobReply{},
		xatOptions:          &xatOptions{},
		hdbErrors:           &hdbErrors{},
	}
	c.parts = map[partKind]partReader{
		pkClientID:            c.clientID,
		pkConnectOptions:      c.connectOptions,
		pkDBConnectInfo:       c.dbConnectInfo,
		pkTopologyInformation: c.topologyInformation,
		pkRowsAffected:        c.rowsAffected,
		pkTransactionFlags:    c.transactionFlags,
		pkStatementContext:    c.statementContext,
		pkStatementID:         c.statementID,
		pkParameterMetadata:   c.parameterMetadata,
		pkOutputParameters:    c.outputParameters,
		pkResultMetadata:      c.resultMetadata,
		pkResultsetID:         c.resultsetID,
		pkFetchSize:           c.fetchSize,
		pkResultset:           c.resultset,
		pkWriteLobReply:       c.writeLobReply,
		pkXatOptions:          c.xatOptions,
		pkError:               c.hdbErrors,
	}
	return c
}

func (c *partCache) get(pk partKind) (partReader, bool) {
	part, ok := c.parts[pk]
	return part, ok
}

// messageReader drives the message -> segment -> part read loop against a
// buffered connection, always needing always-read parts (errors, rows
// affected) while letting callers opt out of the rest.
type messageReader struct {
	dec      *encoding.Decoder
	msgIter  *msgIter
	segIter  *segIter
	partIter *partIter

	errorFlag        bool
	rowsAffectedFlag bool

	*partCache

	stats compressionStats

	err error
}

func newMessageReader(rd io.Reader) *messageReader {
	dec := encoding.NewDecoder(rd)
	partIter := newPartIter(dec)
	segIter := newSegIter(partIter, dec)
	msgIter := newMsgIter()
	return &messageReader{
		dec:       dec,
		partCache: newPartCache(),
		partIter:  partIter,
		segIter:   segIter,
		msgIter:   msgIter,
	}
}

func (r *messageReader) readProlog() error {
	rep := &initReply{}
	return rep.decode(r.dec)
}

// beginMessage decodes the message header and, if it flags a compressed
// varpart (varPartRemaining != 0), reads and lz4-decompresses the body
// before pointing segIter/partIter at it; an uncompressed message leaves
// them reading straight off the wire decoder. Either way msgIter.mh ends up
// holding the header, and segIter is positioned to read its first segment.
func (r *messageReader) beginMessage() error {
	mh := r.msgIter.mh
	if err := mh.decode(r.dec); err != nil {
		return err
	}

	if mh.varPartRemaining == 0 {
		r.segIter.dec = r.dec
		r.partIter.dec = r.dec
		r.segIter.reset(int64(mh.varPartSize), int(mh.segmentCount))
		return nil
	}

	compressed := make([]byte, mh.varPartSize)
	r.dec.Bytes(compressed)
	if err := r.dec.Error(); err != nil {
		return err
	}
	decompressed, err := decompressPayload(compressed, int(mh.varPartRemaining))
	if err != nil {
		return err
	}
	r.stats.repCount++
	r.stats.repCompressedSize += int64(len(compressed))
	r.stats.repUncompressedSize += int64(len(decompressed))

	msgDec := encoding.NewDecoder(bytes.NewReader(decompressed))
	r.segIter.dec = msgDec
	r.partIter.dec = msgDec
	r.segIter.reset(int64(mh.varPartRemaining), int(mh.segmentCount))
	return nil
}

// checkError surfaces the server error part, if any, as it was decoded. It
// does not correlate the error part with the rowsAffected part of the same
// reply, and per-row successes in that reply are not returned with it.
func (r *messageReader) checkError() error {
	defer func() {
		r.errorFlag = false
		r.rowsAffectedFlag = false
		r.err = nil
		r.dec.ResetError()
	}()

	if r.err != nil {
		return r.err
	}
	if err := r.dec.Error(); err != nil {
		return err
	}
	if !r.errorFlag {
		return nil
	}
	if r.hdbErrors.IsWarning() {
		return nil
	}
	return r.hdbErrors
}

func (r *messageReader) canSkip(pk partKind) bool {
	return pk != pkError && pk != pkRowsAffected
}

func (r *messageReader) read(part partReader) {
	switch r.partIter.partKind() {
	case pkError:
		r.errorFlag = true
	case pkRowsAffected:
		r.rowsAffectedFlag = true
	}
	r.err = r.partIter.read(part)
}

func (r *messageReader) skip() {
	pk := r.partIter.partKind()
	if r.canSkip(pk) {
		r.partIter.skip()
		return
	}
	switch pk {
	case pkError:
		r.errorFlag = true
	case pkRowsAffected:
		r.rowsAffectedFlag = true
	}
	part, ok := r.partCache.get(pk)
	if !ok {
		r.err = fmt.Errorf("protocol: no cached reader for part kind %s", pk)
		return
	}
	r.err = r.partIter.read(part)
}

func (r *messageReader) readSkip() error {
	if err := r.beginMessage(); err != nil {
		return err
	}
	r.segIter.next()
	for r.partIter.next() {
		r.skip()
	}
	return r.checkError()
}

// readInto drives one full message -> segment -> part read loop, decoding
// every part whose kind is a key of targets into the supplied partReader and
// skipping (or, for the always-tracked error/rowsAffected kinds, decoding
// into the shared partCache) everything else. Exactly one segment is
// expected per reply, matching the request side's messageWriter.write. The
// returned map carries the wire partAttributes (last-packet/row-not-found/
// resultset-closed flags) observed for each part that was actually decoded
// into a caller-supplied target, since those flags live on the part header
// rather than in the decoded payload.
func (r *messageReader) readInto(targets map[partKind]partReader) (map[partKind]partAttributes, error) {
	attrs := make(map[partKind]partAttributes, len(targets))
	if err := r.beginMessage(); err != nil {
		return attrs, err
	}
	r.segIter.next()
	for r.partIter.next() {
		pk := r.partIter.partKind()
		if target, ok := targets[pk]; ok {
			r.read(target)
			attrs[pk] = r.partIter.ph.partAttributes
			continue
		}
		r.skip()
	}
	return attrs, r.checkError()
}

// sessionID returns the session id the server assigned in the last message
// header read, valid only once readInto/readSkip/readProlog has succeeded.
func (r *messageReader) sessionID() int64 { return r.msgIter.mh.sessionID }

// functionCode returns the last reply segment's function code.
func (r *messageReader) functionCode() functionCode { return r.segIter.functionCode() }

// messageWriter serializes one request message (one segment, N parts). The
// segment and its parts are always rendered into a scratch buffer first
// (renderSegment) so that write can decide, after seeing the true payload
// size, whether to lz4-compress it before handing it to the wire encoder -
// the compressed-payload path and the plain path share the same rendering
// code and therefore always agree byte for byte on the uncompressed form.
type messageWriter struct {
	wr    *bufio.Writer
	enc   *encoding.Encoder
	mh    *messageHeader
	sh    *segmentHeader
	ph    *partHeader
	buf   bytes.Buffer
	sEnc  *encoding.Encoder

	minCompressionSize int
	stats              compressionStats
}

func newMessageWriter(wr *bufio.Writer) *messageWriter {
	w := &messageWriter{
		wr: wr,
		enc: encoding.NewEncoder(wr),
		mh:  new(messageHeader),
		sh:  new(segmentHeader),
		ph:  new(partHeader),
	}
	w.sEnc = encoding.NewEncoder(&w.buf)
	return w
}

// setMinCompressionSize configures the lz4 compression gate threshold; zero
// or negative disables compression entirely.
func (w *messageWriter) setMinCompressionSize(n int) { w.minCompressionSize = n }

func (w *messageWriter) writeProlog() error {
	req := &initRequest{
		product:    version{major: productVersionMajor, minor: productVersionMinor},
		protocol:   version{major: protocolVersionMajor, minor: protocolVersionMinor},
		numOptions: 1,
		endianess:  littleEndian,
	}
	if err := req.encode(w.enc); err != nil {
		return err
	}
	return w.wr.Flush()
}

// renderSegment encodes the segment header and every part into w.buf,
// returning the rendered size (equal to the varpart size of an uncompressed
// message).
func (w *messageWriter) renderSegment(mt messageType, commit bool, writers ...partWriter) (int64, error) {
	numWriters := len(writers)
	partSize := make([]int, numWriters)
	size := int64(segmentHeaderSize + numWriters*partHeaderSize)

	for i, p := range writers {
		s := p.size()
		size += int64(s + padBytes(s))
		partSize[i] = s
	}
	if size > math.MaxUint32 {
		return 0, fmt.Errorf("message size %d exceeds maximum message header value", size)
	}
	if size > math.MaxInt32 {
		return 0, fmt.Errorf("message size %d exceeds maximum segment header value", size)
	}

	w.buf.Reset()

	w.sh.segmentLength = int32(size)
	w.sh.segmentOffset = 0
	w.sh.partsCount = int16(numWriters)
	w.sh.segmentIndex = 1
	w.sh.segmentKind = skRequest
	w.sh.messageType = mt
	w.sh.commitFlag = commit
	w.sh.commandOptions = 0
	if err := w.sh.encode(w.sEnc); err != nil {
		return 0, err
	}

	bufferSize := size - segmentHeaderSize

	for i, p := range writers {
		s := partSize[i]
		pad := padBytes(s)

		w.ph.partKind = p.kind()
		if err := w.ph.setNumArg(p.numArg()); err != nil {
			return 0, err
		}
		w.ph.bufferLength = int32(s)
		w.ph.bufferSize = int32(bufferSize)
		if err := w.ph.encode(w.sEnc); err != nil {
			return 0, err
		}
		if err := p.encode(w.sEnc); err != nil {
			return 0, err
		}
		w.sEnc.Zeroes(pad)
		bufferSize -= int64(s + pad)
	}

	return size, w.sEnc.Error()
}

func (w *messageWriter) write(sessionID int64, sequenceNumber int32, mt messageType, commit bool, writers ...partWriter) error {
	size, err := w.renderSegment(mt, commit, writers...)
	if err != nil {
		return err
	}

	payload := w.buf.Bytes()
	varPartSize := size
	varPartRemaining := int64(0)

	if w.minCompressionSize > 0 && len(payload) > w.minCompressionSize {
		compressed, cerr := compressPayload(payload)
		if cerr == nil && len(compressed) < len(payload) {
			w.stats.reqCount++
			w.stats.reqCompressedSize += int64(len(compressed))
			w.stats.reqUncompressedSize += int64(len(payload))
			varPartSize = int64(len(compressed))
			varPartRemaining = int64(len(payload))
			payload = compressed
		}
	}

	w.mh.sessionID = sessionID
	w.mh.sequenceNumber = sequenceNumber
	w.mh.varPartSize = uint32(varPartSize)
	w.mh.varPartRemaining = uint32(varPartRemaining)
	w.mh.segmentCount = 1
	if err := w.mh.encode(w.enc); err != nil {
		return err
	}

	w.enc.Bytes(payload)
	if err := w.enc.Error(); err != nil {
		return err
	}
	return w.wr.Flush()
}
