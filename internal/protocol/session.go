// SPDX-FileCopyrightText: 2014-2021 SAP SE
//
// SPDX-License-Identifier: Apache-2.0

// Session drives one SQLDBC wire connection end to end. It is the main
// entry point of this package: the other exported types are the values its
// methods take and return, and messages, segments, parts and typecodes stay
// unexported wire plumbing.
package protocol

import (
	"bufio"
	"fmt"
	"sync"

	"github.com/sqldbc/hdbcore/internal/dial"
)

// StatementKind classifies what a statement does, derived from the
// function code the server returns in its reply segment (spec §4.3).
type StatementKind int

const (
	KindUnknown StatementKind = iota
	KindDDL
	KindInsert
	KindUpdate
	KindDelete
	KindSelect
	KindSelectForUpdate
	KindCall
	KindCallWithResult
)

func (k StatementKind) String() string {
	switch k {
	case KindDDL:
		return "ddl"
	case KindInsert:
		return "insert"
	case KindUpdate:
		return "update"
	case KindDelete:
		return "delete"
	case KindSelect:
		return "select"
	case KindSelectForUpdate:
		return "selectForUpdate"
	case KindCall:
		return "call"
	case KindCallWithResult:
		return "callWithResult"
	default:
		return "unknown"
	}
}

func kindFromFunctionCode(fc functionCode) StatementKind {
	switch fc {
	case fcDdl:
		return KindDDL
	case fcInsert:
		return KindInsert
	case fcUpdate:
		return KindUpdate
	case fcDelete:
		return KindDelete
	case fcSelect:
		return KindSelect
	case fcSelectForUpdate:
		return KindSelectForUpdate
	case fcDBProcedureCall:
		return KindCall
	case fcDBProcedureCallWithResult:
		return KindCallWithResult
	default:
		return KindUnknown
	}
}

// ConnectConfig carries everything Connect needs: the transport to read and
// write through, plus every value that feeds the authentication handshake
// and the connect options sent right after it.
type ConnectConfig struct {
	Transport dial.Transport

	Username string
	Password string

	// ClientID is the free-form client identification string sent once
	// during connect (spec §4.5); building one that is actually unique
	// (e.g. including a UUID) is the caller's responsibility.
	ClientID string

	ClientLocale string

	// ApplicationProgram names the calling program in the client context
	// part (spec §4.5); optional.
	ApplicationProgram string

	// DriverVersion/DriverName populate the client context's version and
	// type entries; optional.
	DriverVersion string
	DriverName    string

	// MinCompressionSize gates request compression (spec §4.2's
	// min_compression_size); zero disables it.
	MinCompressionSize int
}

// ConnectInfo summarizes what Connect learned about the server once the
// handshake completed: the session id it assigned. Negotiated connect
// options and topology are not included.
type ConnectInfo struct {
	SessionID int64
}

// DirectResult is the outcome of ExecuteDirect: either a row-producing
// result set or a rows-affected count, depending on Kind.
type DirectResult struct {
	Kind            StatementKind
	FunctionCode    int16
	RowsAffected    int64
	ResultSetID     uint64
	Fields          []Field
	Rows            [][]any
	LastPacket      bool
	ResultsetClosed bool
}

// PrepareResult describes a prepared statement: its server-assigned id and
// the parameter/result field layout the caller binds against on Execute.
type PrepareResult struct {
	StatementID     uint64
	Kind            StatementKind
	ParameterFields []Field
	ResultFields    []Field

	inFields  []*parameterField
	outFields []*parameterField
}

// ExecuteResult is the outcome of Execute: rows affected per statement in
// the batch, any INOUT/OUT parameter values, and - for a procedure call or
// a query prepared with a cursor - a result set.
type ExecuteResult struct {
	Kind            StatementKind
	RowsAffected    []int32
	OutputValues    []any
	ResultSetID     uint64
	Fields          []Field
	Rows            [][]any
	LastPacket      bool
	ResultsetClosed bool
}

// FetchResult is one page of rows fetched from an open result set.
type FetchResult struct {
	Rows            [][]any
	LastPacket      bool
	ResultsetClosed bool
}

// Session drives one SQLDBC connection: the authentication handshake and
// every subsequent request/reply round-trip. All exported methods
// serialize on an internal mutex, mirroring the teacher's one-request-
// in-flight-at-a-time model for a single physical connection.
type Session struct {
	mu sync.Mutex

	transport dial.Transport
	bw        *bufio.Writer
	mw        *messageWriter
	mr        *messageReader

	sessionID int64
	seqNo     int32

	connectOptions connectOptions
	topology       topologyInformation

	bad bool
}

// Connect performs the connection prolog, the SCRAM authentication
// handshake, and the subsequent connect options/client context exchange,
// returning a ready-to-use Session.
func Connect(cfg ConnectConfig) (*Session, ConnectInfo, error) {
	s := &Session{transport: cfg.Transport}
	s.bw = bufio.NewWriter(cfg.Transport)
	br := bufio.NewReaderSize(cfg.Transport, 1<<16)
	s.mw = newMessageWriter(s.bw)
	s.mr = newMessageReader(br)

	if err := s.mw.writeProlog(); err != nil {
		return nil, ConnectInfo{}, fmt.Errorf("protocol: prolog request: %w", err)
	}
	if err := s.mr.readProlog(); err != nil {
		return nil, ConnectInfo{}, fmt.Errorf("protocol: prolog reply: %w", err)
	}

	if err := s.authenticate(cfg); err != nil {
		s.bad = true
		return nil, ConnectInfo{}, err
	}

	if cfg.MinCompressionSize > 0 {
		s.mw.setMinCompressionSize(cfg.MinCompressionSize)
	}

	if err := s.sendClientContext(cfg); err != nil {
		s.bad = true
		return nil, ConnectInfo{}, err
	}

	return s, ConnectInfo{SessionID: s.sessionID}, nil
}

func (s *Session) nextSeqNo() int32 {
	s.seqNo++
	return s.seqNo
}

func (s *Session) authenticate(cfg ConnectConfig) error {
	neg, err := NewNegotiation(cfg.Username, cfg.Password)
	if err != nil {
		return fmt.Errorf("protocol: %w", err)
	}

	if err := s.mw.write(0, s.nextSeqNo(), mtAuthenticate, false, neg.InitRequest()); err != nil {
		return fmt.Errorf("protocol: auth init request: %w", err)
	}
	initRep := neg.InitReply()
	if _, err := s.mr.readInto(map[partKind]partReader{pkAuthentication: initRep}); err != nil {
		return fmt.Errorf("protocol: auth init reply: %w", err)
	}

	finalReq, err := neg.FinalRequest()
	if err != nil {
		return fmt.Errorf("protocol: %w", err)
	}

	id := clientID(cfg.ClientID)
	co := connectOptions{}
	co.set(coDistributionProtocolVersion, optIntType(dpvBaseline))
	co.set(coSelectForUpdateSupported, true)
	co.set(coSplitBatchCommands, true)
	co.set(coCompleteArrayExecution, true)
	co.set(coClientDistributionMode, optIntType(cdmOff))
	if cfg.ClientLocale != "" {
		co.set(coClientLocale, cfg.ClientLocale)
	}

	if err := s.mw.write(0, s.nextSeqNo(), mtConnect, false, finalReq, id, co); err != nil {
		return fmt.Errorf("protocol: connect request: %w", err)
	}

	finalRep := neg.FinalReply()
	topo := &topologyInformation{}
	gotCO := &connectOptions{}
	targets := map[partKind]partReader{
		pkAuthentication:      finalRep,
		pkTopologyInformation: topo,
		pkConnectOptions:      gotCO,
	}
	if _, err := s.mr.readInto(targets); err != nil {
		return fmt.Errorf("protocol: connect reply: %w", err)
	}

	s.sessionID = s.mr.sessionID()
	s.topology = *topo
	s.connectOptions = *gotCO
	return nil
}

// sendClientContext sends driver identification right after connect;
// HANA accepts but does not require it, so a failure here is folded into
// the connect error rather than treated as its own retriable step.
func (s *Session) sendClientContext(cfg ConnectConfig) error {
	cc := clientContext{}
	if cfg.DriverVersion != "" {
		cc.set(ccoClientVersion, cfg.DriverVersion)
	}
	if cfg.DriverName != "" {
		cc.set(ccoClientType, cfg.DriverName)
	}
	if cfg.ApplicationProgram != "" {
		cc.set(ccoClientApplicationProgram, cfg.ApplicationProgram)
	}
	if len(cc) == 0 {
		return nil
	}
	if err := s.mw.write(s.sessionID, s.nextSeqNo(), mtConnect, false, cc); err != nil {
		return fmt.Errorf("protocol: client context: %w", err)
	}
	return s.mr.readSkip()
}

// DataFormatVersion2 returns the negotiated coDataFormatVersion2 connect
// option, used to decide between the legacy 16-byte decimal wire shape and
// FIXED8/FIXED12/FIXED16.
func (s *Session) DataFormatVersion2() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.connectOptions.get(coDataFormatVersion2)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case optIntType:
		return int(n), true
	case int32:
		return int(n), true
	default:
		return 0, false
	}
}

// Bad reports whether a previous round-trip failed in a way that leaves the
// Session's framing state unreliable; a bad Session must be disconnected
// and replaced, never reused.
func (s *Session) Bad() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bad || s.transport.Bad()
}

// roundTrip sends one request segment and decodes the reply, marking the
// Session bad on any I/O-shaped failure so the caller knows to reconnect
// rather than retry on the same Session.
func (s *Session) roundTrip(mt messageType, commit bool, targets map[partKind]partReader, writers ...partWriter) (map[partKind]partAttributes, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.bad {
		return nil, fmt.Errorf("protocol: session is no longer usable")
	}
	if err := s.mw.write(s.sessionID, s.nextSeqNo(), mt, commit, writers...); err != nil {
		s.bad = true
		return nil, err
	}
	attrs, err := s.mr.readInto(targets)
	if _, ok := err.(*hdbErrors); !ok && err != nil {
		s.bad = true
	}
	return attrs, err
}

func decodeRows(fields []*resultField, rs *resultset) [][]any {
	cols := len(fields)
	if cols == 0 {
		return nil
	}
	numRows := len(rs.fieldValues) / cols
	rows := make([][]any, numRows)
	for i := 0; i < numRows; i++ {
		rows[i] = rs.fieldValues[i*cols : (i+1)*cols]
	}
	return rows
}

// ExecuteDirect runs a statement that carries no parameters, such as DDL or
// a literal-only query (spec §4.7's ExecuteDirect).
func (s *Session) ExecuteDirect(query string, commit bool) (*DirectResult, error) {
	rs := &resultset{}
	ra := &rowsAffected{}
	sc := &statementContext{}
	rmd := &resultMetadata{}
	rsID := new(resultsetID)

	targets := map[partKind]partReader{
		pkResultMetadata:   rmd,
		pkResultsetID:      rsID,
		pkResultset:        rs,
		pkRowsAffected:     ra,
		pkStatementContext: sc,
	}

	attrs, err := s.roundTrip(mtExecuteDirect, commit, targets, command(query))
	if err != nil {
		return nil, err
	}

	kind := kindFromFunctionCode(s.mr.functionCode())
	res := &DirectResult{Kind: kind, RowsAffected: ra.total()}

	if len(rmd.resultFields) > 0 {
		rs.resultFields = rmd.resultFields
		res.Fields = resultFieldSlice(rmd.resultFields)
		res.ResultSetID = uint64(*rsID)
		res.Rows = decodeRows(rmd.resultFields, rs)
		a := attrs[pkResultset]
		res.LastPacket = a.LastPacket()
		res.ResultsetClosed = a.ResultsetClosed()
	}
	return res, nil
}

// Prepare parses and prepares a statement, returning its statement id and
// parameter/result field layout.
func (s *Session) Prepare(query string) (*PrepareResult, error) {
	pmd := &parameterMetadata{}
	rmd := &resultMetadata{}
	stmtID := new(statementID)

	targets := map[partKind]partReader{
		pkStatementID:       stmtID,
		pkParameterMetadata: pmd,
		pkResultMetadata:    rmd,
	}

	if _, err := s.roundTrip(mtPrepare, false, targets, command(query)); err != nil {
		return nil, err
	}

	kind := kindFromFunctionCode(s.mr.functionCode())

	var inFields, outFields []*parameterField
	for _, f := range pmd.parameterFields {
		if f.In() {
			inFields = append(inFields, f)
		}
		if f.Out() {
			outFields = append(outFields, f)
		}
	}

	return &PrepareResult{
		StatementID:     uint64(*stmtID),
		Kind:            kind,
		ParameterFields: parameterFieldSlice(pmd.parameterFields),
		ResultFields:    resultFieldSlice(rmd.resultFields),
		inFields:        inFields,
		outFields:       outFields,
	}, nil
}

// Execute runs a previously prepared statement once per row of args (a
// single row is just a batch of one), args laid out row-major against
// pr.ParameterFields' In()/InOut() subset.
func (s *Session) Execute(pr *PrepareResult, args []any, commit bool) (*ExecuteResult, error) {
	ip := &inputParameters{fields: pr.inFields, values: args}
	op := &outputParameters{fields: pr.outFields}
	ra := &rowsAffected{}
	rs := &resultset{}
	rsID := new(resultsetID)
	sc := &statementContext{}

	targets := map[partKind]partReader{
		pkRowsAffected:     ra,
		pkOutputParameters: op,
		pkResultsetID:      rsID,
		pkResultset:        rs,
		pkStatementContext: sc,
	}

	stmtID := statementID(pr.StatementID)
	writers := []partWriter{stmtID}
	if len(ip.fields) > 0 && len(ip.values) > 0 {
		writers = append(writers, ip)
	}

	attrs, err := s.roundTrip(mtExecute, commit, targets, writers...)
	if err != nil {
		return nil, err
	}

	res := &ExecuteResult{Kind: pr.Kind, RowsAffected: []int32(*ra), OutputValues: op.values}
	if pr.Kind == KindCallWithResult || pr.Kind == KindSelect || pr.Kind == KindSelectForUpdate {
		rs.resultFields = toResultFields(pr.ResultFields)
		if len(rs.resultFields) > 0 {
			res.Fields = pr.ResultFields
			res.ResultSetID = uint64(*rsID)
			res.Rows = decodeRows(rs.resultFields, rs)
			a := attrs[pkResultset]
			res.LastPacket = a.LastPacket()
			res.ResultsetClosed = a.ResultsetClosed()
		}
	}
	return res, nil
}

func toResultFields(fields []Field) []*resultField {
	out := make([]*resultField, 0, len(fields))
	for _, f := range fields {
		if rf, ok := f.(*resultField); ok {
			out = append(out, rf)
		}
	}
	return out
}

// FetchNext requests the next chunk of rows from an open result set.
func (s *Session) FetchNext(resultSetID uint64, fields []Field, fetchSize int32) (*FetchResult, error) {
	rs := &resultset{resultFields: toResultFields(fields)}
	targets := map[partKind]partReader{pkResultset: rs}

	rsID := resultsetID(resultSetID)
	fs := fetchsize(fetchSize)
	attrs, err := s.roundTrip(mtFetchNext, false, targets, rsID, fs)
	if err != nil {
		return nil, err
	}

	a := attrs[pkResultset]
	return &FetchResult{
		Rows:            decodeRows(rs.resultFields, rs),
		LastPacket:      a.LastPacket(),
		ResultsetClosed: a.ResultsetClosed(),
	}, nil
}

// CloseResultset releases server-side resources held by an open result set.
func (s *Session) CloseResultset(resultSetID uint64) error {
	rsID := resultsetID(resultSetID)
	_, err := s.roundTrip(mtCloseResultset, false, nil, rsID)
	return err
}

// DropStatement releases a prepared statement.
func (s *Session) DropStatement(stmtID uint64) error {
	id := statementID(stmtID)
	_, err := s.roundTrip(mtDropStatementID, false, nil, id)
	return err
}

// Commit commits the current transaction.
func (s *Session) Commit() error {
	tf := &transactionFlags{}
	_, err := s.roundTrip(mtCommit, true, map[partKind]partReader{pkTransactionFlags: tf})
	return err
}

// Rollback rolls back the current transaction.
func (s *Session) Rollback() error {
	tf := &transactionFlags{}
	_, err := s.roundTrip(mtRollback, true, map[partKind]partReader{pkTransactionFlags: tf})
	return err
}

// Disconnect tells the server the client is going away; the transport
// itself is closed by the caller afterward.
func (s *Session) Disconnect() error {
	_, err := s.roundTrip(mtDisconnect, false, nil)
	return err
}

// DBConnectInfo is the resolution of a tenant database name to the host and
// port actually hosting it, as reported by a system database (spec §4.12).
type DBConnectInfo struct {
	DatabaseName string
	Host         string
	Port         int
	IsConnected  bool
}

// DBConnectInfo asks the currently connected database (typically the system
// database, SYSTEMDB) where databaseName is actually hosted. IsConnected is
// true when the current connection already is that tenant, in which case
// Host/Port echo the current connection and no redial is needed.
func (s *Session) DBConnectInfo(databaseName string) (DBConnectInfo, error) {
	ci := dbConnectInfo{int8(ciDatabaseName): databaseName}
	targets := map[partKind]partReader{pkDBConnectInfo: &ci}
	if _, err := s.roundTrip(mtDBConnectInfo, false, targets, ci); err != nil {
		return DBConnectInfo{}, err
	}
	return DBConnectInfo{
		DatabaseName: databaseName,
		Host:         plainOptions(ci).asString(int8(ciHost)),
		Port:         plainOptions(ci).asInt(int8(ciPort)),
		IsConnected:  plainOptions(ci).asBool(int8(ciIsConnected)),
	}, nil
}

// ReadLobChunk requests up to len(buf) bytes of lob content starting at
// byte offset ofs (0-based) from the given server-side locator, returning
// the number of bytes actually read and whether the locator is now
// exhausted.
func (s *Session) ReadLobChunk(id uint64, ofs int64, buf []byte) (int, bool, error) {
	w := newBufferChunkWriter(locatorID(id), ofs+int64(len(buf)), int32(len(buf)))
	w.readOfs = ofs
	req := &readLobRequest{writer: w}
	rep := &readLobReply{writer: w}

	if _, err := s.roundTrip(mtReadLob, false, map[partKind]partReader{pkReadLobReply: rep}, req); err != nil {
		return 0, false, err
	}
	b := w.bytes()
	n := copy(buf, b)
	return n, w.done(), nil
}

// WriteLobChunk appends data to the content of the given server-side
// locator; last marks the final chunk of the stream.
func (s *Session) WriteLobChunk(id uint64, data []byte, last bool) error {
	cr := &staticChunkReader{id: locatorID(id), data: data, last: last}
	req := &writeLobRequest{chunkReaders: []chunkReader{cr}}
	rep := &writeLobReply{}
	_, err := s.roundTrip(mtWriteLob, false, map[partKind]partReader{pkWriteLobReply: rep}, req)
	return err
}

// staticChunkReader supplies a single already-in-memory chunk to a write
// lob request, used by WriteLobChunk's one-chunk-at-a-time contract (the
// higher-level streaming loop lives in hdbcore's lob handle).
type staticChunkReader struct {
	id   locatorID
	data []byte
	last bool
	sent bool
}

func (c *staticChunkReader) locatorID() locatorID { return c.id }
func (c *staticChunkReader) eof() bool             { return c.last }
func (c *staticChunkReader) next() int             { return len(c.data) }
func (c *staticChunkReader) bytes() ([]byte, error) {
	c.sent = true
	return c.data, nil
}

// xaVerb runs one X/Open XA verb against the given transaction id.
func (s *Session) xaVerb(mt messageType, xid *xid, flags xaFlags) (*xatOptions, error) {
	req := &xatOptions{xid: xid, flags: flags}
	rep := &xatOptions{}
	if _, err := s.roundTrip(mt, false, map[partKind]partReader{pkXatOptions: rep}, req); err != nil {
		return nil, err
	}
	return rep, nil
}

// XID identifies a distributed transaction branch: a format id, global
// transaction id, and branch qualifier (spec §4.10).
type XID struct {
	FormatID int32
	Gtrid    []byte
	Bqual    []byte
}

func (x XID) toWire() *xid { return &xid{formatID: x.FormatID, gtrid: x.Gtrid, bqual: x.Bqual} }

// XAStart associates the session with a distributed transaction branch.
// join indicates this is a join/resume of a branch already started
// elsewhere rather than a fresh start.
func (s *Session) XAStart(x XID, join bool) error {
	flags := xaFlagNone
	if join {
		flags = xaFlagJoin
	}
	_, err := s.xaVerb(mtXopenXAStart, x.toWire(), flags)
	return err
}

// XAEnd disassociates the session from the branch, marking it successful,
// failed, or suspended.
func (s *Session) XAEnd(x XID, fail bool, suspend bool) error {
	flags := xaFlagSuccess
	switch {
	case fail:
		flags = xaFlagFail
	case suspend:
		flags = xaFlagSuspend
	}
	_, err := s.xaVerb(mtXopenXAEnd, x.toWire(), flags)
	return err
}

// XAPrepare votes the branch ready to commit.
func (s *Session) XAPrepare(x XID) error {
	_, err := s.xaVerb(mtXopenXAPrepare, x.toWire(), xaFlagNone)
	return err
}

// XACommit commits the branch; onePhase skips the prepare phase.
func (s *Session) XACommit(x XID, onePhase bool) error {
	flags := xaFlagNone
	if onePhase {
		flags = xaFlagOnePhase
	}
	_, err := s.xaVerb(mtXopenXACommit, x.toWire(), flags)
	return err
}

// XARollback rolls back the branch.
func (s *Session) XARollback(x XID) error {
	_, err := s.xaVerb(mtXopenXARollback, x.toWire(), xaFlagNone)
	return err
}

// XAForget discards a heuristically-completed branch.
func (s *Session) XAForget(x XID) error {
	_, err := s.xaVerb(mtXopenXAForget, x.toWire(), xaFlagNone)
	return err
}

// XARecover lists prepared-but-not-yet-committed branches.
func (s *Session) XARecover() ([]XID, error) {
	rep, err := s.xaVerb(mtXopenXARecover, &xid{}, xaFlagNone)
	if err != nil {
		return nil, err
	}
	out := make([]XID, 0, len(rep.xids))
	for _, x := range rep.xids {
		out = append(out, XID{FormatID: x.formatID, Gtrid: x.gtrid, Bqual: x.bqual})
	}
	return out, nil
}

// Stats returns the accumulated request/reply compression counters.
func (s *Session) Stats() (req, rep CompressionStats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mw.stats.req(), s.mr.stats.rep()
}

// ResetStats zeroes the accumulated compression counters.
func (s *Session) ResetStats() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mw.stats = compressionStats{}
	s.mr.stats = compressionStats{}
}
