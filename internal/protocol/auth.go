package protocol

// Authentication part payloads implementing the wire side of the two-round
// exchange negotiated between client and server: a client offers a list of
// authenticator methods together with per-method client challenges, the
// server picks one and returns its challenge (and, for SCRAMPBKDF2SHA256,
// a round count), the client answers with a proof, and the server replies
// with its own proof. The actual SCRAM math lives in internal/auth; this
// file only knows how to put the fields on and take them off the wire.

import (
	"fmt"
	"math"

	"github.com/sqldbc/hdbcore/internal/auth"
	"github.com/sqldbc/hdbcore/internal/cesu8"
	"github.com/sqldbc/hdbcore/internal/protocol/encoding"
)

// authFieldSize returns the wire size of a one-byte-length-prefixed field.
func authFieldSize(b []byte) int { return 1 + len(b) }

func authReadField(dec *encoding.Decoder) []byte {
	size := dec.Byte()
	b := make([]byte, size)
	dec.Bytes(b)
	return b
}

func authWriteField(enc *encoding.Encoder, b []byte) error {
	if len(b) > math.MaxUint8 {
		return fmt.Errorf("auth: field too large: %d bytes", len(b))
	}
	enc.Byte(byte(len(b)))
	enc.Bytes(b)
	return nil
}

func authReadCESU8Field(dec *encoding.Decoder) string {
	size := dec.Byte()
	return string(dec.CESU8Bytes(int(size)))
}

func authWriteCESU8Field(enc *encoding.Encoder, s string) error {
	size := cesu8.StringSize(s)
	if size > math.MaxUint8 {
		return fmt.Errorf("auth: username too large: %d bytes", size)
	}
	enc.Byte(byte(size))
	enc.CESU8String(s)
	return nil
}

// authMethodOffer is a single (method name, client challenge) pair offered
// to the server in the initial request.
type authMethodOffer struct {
	method          string
	clientChallenge []byte
}

func (m *authMethodOffer) size() int {
	return authFieldSize([]byte(m.method)) + authFieldSize(m.clientChallenge)
}

func (m *authMethodOffer) encode(enc *encoding.Encoder) error {
	if err := authWriteField(enc, []byte(m.method)); err != nil {
		return err
	}
	return authWriteField(enc, m.clientChallenge)
}

// authInitRequest is the first message of the authentication handshake: the
// username plus every authenticator method the client is willing to use.
type authInitRequest struct {
	username string
	methods  []*authMethodOffer
}

func (*authInitRequest) kind() partKind { return pkAuthentication }
func (*authInitRequest) numArg() int    { return 1 }

func (r *authInitRequest) size() int {
	size := 2 + authFieldSize([]byte(r.username)) // field count + username
	for _, m := range r.methods {
		size += m.size()
	}
	return size
}

func (r *authInitRequest) encode(enc *encoding.Encoder) error {
	enc.Int16(int16(1 + len(r.methods)*2))
	if err := authWriteCESU8Field(enc, r.username); err != nil {
		return err
	}
	for _, m := range r.methods {
		if err := m.encode(enc); err != nil {
			return err
		}
	}
	return nil
}

// authInitReply is the server's answer to authInitRequest: the chosen
// method, its salt and server challenge, and - for SCRAMPBKDF2SHA256 only -
// an iteration count.
type authInitReply struct {
	method          string
	salt            []byte
	serverChallenge []byte
	rounds          uint32
}

func (*authInitReply) kind() partKind { return pkAuthentication }

func (r *authInitReply) decode(dec *encoding.Decoder, ph *partHeader) error {
	numPrm := int(dec.Int16())
	if numPrm < 2 {
		return fmt.Errorf("auth: invalid init reply parameter count %d", numPrm)
	}
	r.method = string(authReadField(dec))

	switch r.method {
	case auth.MethodSCRAMSHA256:
		if numPrm != 3 {
			return fmt.Errorf("auth: invalid %s init reply parameter count %d", r.method, numPrm)
		}
		r.salt = authReadField(dec)
		r.serverChallenge = authReadField(dec)
	case auth.MethodSCRAMPBKDF2SHA256:
		if numPrm != 4 {
			return fmt.Errorf("auth: invalid %s init reply parameter count %d", r.method, numPrm)
		}
		r.salt = authReadField(dec)
		r.serverChallenge = authReadField(dec)
		roundsField := authReadField(dec)
		if len(roundsField) != 4 {
			return fmt.Errorf("auth: invalid rounds field size %d", len(roundsField))
		}
		r.rounds = uint32(roundsField[0])<<24 | uint32(roundsField[1])<<16 | uint32(roundsField[2])<<8 | uint32(roundsField[3])
	default:
		return fmt.Errorf("auth: unsupported authentication method %q", r.method)
	}
	return dec.Error()
}

// authFinalRequest answers the chosen method's challenge with a client proof.
type authFinalRequest struct {
	username    string
	method      string
	clientProof []byte
}

func (*authFinalRequest) kind() partKind { return pkAuthentication }
func (*authFinalRequest) numArg() int    { return 1 }

func (r *authFinalRequest) size() int {
	return 2 + authFieldSize([]byte(r.username)) + authFieldSize([]byte(r.method)) + authFieldSize(r.clientProof)
}

func (r *authFinalRequest) encode(enc *encoding.Encoder) error {
	enc.Int16(3)
	if err := authWriteCESU8Field(enc, r.username); err != nil {
		return err
	}
	if err := authWriteField(enc, []byte(r.method)); err != nil {
		return err
	}
	return authWriteField(enc, r.clientProof)
}

// authFinalReply carries the server's proof that it knows the password too.
type authFinalReply struct {
	method      string
	serverProof []byte
}

func (*authFinalReply) kind() partKind { return pkAuthentication }

func (r *authFinalReply) decode(dec *encoding.Decoder, ph *partHeader) error {
	numPrm := int(dec.Int16())
	if numPrm != 2 {
		return fmt.Errorf("auth: invalid final reply parameter count %d", numPrm)
	}
	r.method = string(authReadField(dec))
	r.serverProof = authReadField(dec)
	return dec.Error()
}

// Negotiation drives the two-round SCRAM exchange for a single connect
// attempt. Callers advance it step by step, handing each produced
// partWriter to the request that gets sent and each matching partReader to
// the reply that gets decoded - Session.authenticate in session.go drives
// the round trips.
type Negotiation struct {
	username string
	password string
	methods  []auth.Method
	initRep  *authInitReply
}

// NewNegotiation returns a Negotiation offering every supported
// authenticator, strongest first.
func NewNegotiation(username, password string) (*Negotiation, error) {
	pbkdf2, err := auth.NewSCRAMPBKDF2SHA256(password)
	if err != nil {
		return nil, err
	}
	sha256, err := auth.NewSCRAMSHA256(password)
	if err != nil {
		return nil, err
	}
	return &Negotiation{
		username: username,
		password: password,
		methods:  []auth.Method{pbkdf2, sha256},
	}, nil
}

// InitRequest returns the request to send first.
func (n *Negotiation) InitRequest() *authInitRequest {
	offers := make([]*authMethodOffer, len(n.methods))
	for i, m := range n.methods {
		offers[i] = &authMethodOffer{method: m.Name(), clientChallenge: m.ClientChallenge()}
	}
	return &authInitRequest{username: n.username, methods: offers}
}

// InitReply returns the target to decode the server's init reply into.
func (n *Negotiation) InitReply() *authInitReply {
	n.initRep = &authInitReply{}
	return n.initRep
}

// FinalRequest computes the client proof for the method the server chose
// and returns the request to send next.
func (n *Negotiation) FinalRequest() (*authFinalRequest, error) {
	if n.initRep == nil {
		return nil, fmt.Errorf("auth: final request requested before init reply")
	}
	var method auth.Method
	for _, m := range n.methods {
		if m.Name() == n.initRep.method {
			method = m
			break
		}
	}
	if method == nil {
		return nil, fmt.Errorf("auth: server chose unknown method %q", n.initRep.method)
	}
	proof, err := method.ClientProof(n.initRep.salt, n.initRep.serverChallenge, n.initRep.rounds)
	if err != nil {
		return nil, err
	}
	return &authFinalRequest{username: n.username, method: n.initRep.method, clientProof: proof}, nil
}

// FinalReply returns the target to decode the server's final reply into.
func (n *Negotiation) FinalReply() *authFinalReply { return &authFinalReply{} }
