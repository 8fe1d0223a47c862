// Package auth computes the SCRAM client proof for the two authenticators
// the SQLDBC wire protocol negotiates during connect: SCRAMSHA256 and
// SCRAMPBKDF2SHA256. It knows nothing about wire framing; callers feed it
// the salt and server challenge bytes decoded from an authentication part
// and get back a client proof to encode into the next one.
package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

// Authenticator method names as they appear on the wire.
const (
	MethodSCRAMSHA256       = "SCRAMSHA256"
	MethodSCRAMPBKDF2SHA256 = "SCRAMPBKDF2SHA256"
)

// Field sizes the server is expected to use for each authenticator.
const (
	ClientChallengeSize = 64
	ServerChallengeSize = 48
	SaltSize            = 16
	ClientProofSize     = 32
)

// Method is a single authenticator capability: it can hand out a client
// challenge and turn a server challenge plus password into a client proof.
type Method interface {
	// Name returns the wire method name (e.g. "SCRAMSHA256").
	Name() string
	// ClientChallenge returns this method's random client challenge.
	ClientChallenge() []byte
	// ClientProof derives the client proof from salt and serverChallenge.
	// rounds is only meaningful for SCRAMPBKDF2SHA256.
	ClientProof(salt, serverChallenge []byte, rounds uint32) ([]byte, error)
}

// NewClientChallenge returns a fresh random client challenge.
func NewClientChallenge() ([]byte, error) {
	b := make([]byte, ClientChallengeSize)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("auth: client challenge: %w", err)
	}
	return b, nil
}

type scramSHA256 struct {
	challenge []byte
	password  string
}

// NewSCRAMSHA256 returns the password-only SCRAM authenticator.
func NewSCRAMSHA256(password string) (Method, error) {
	challenge, err := NewClientChallenge()
	if err != nil {
		return nil, err
	}
	return &scramSHA256{challenge: challenge, password: password}, nil
}

func (m *scramSHA256) Name() string            { return MethodSCRAMSHA256 }
func (m *scramSHA256) ClientChallenge() []byte { return m.challenge }

func (m *scramSHA256) ClientProof(salt, serverChallenge []byte, _ uint32) ([]byte, error) {
	if len(salt) != SaltSize {
		return nil, fmt.Errorf("auth: invalid salt size %d - expected %d", len(salt), SaltSize)
	}
	if len(serverChallenge) != ServerChallengeSize {
		return nil, fmt.Errorf("auth: invalid server challenge size %d - expected %d", len(serverChallenge), ServerChallengeSize)
	}
	key := sha256Sum(hmacSum([]byte(m.password), salt))
	return scramble(key, salt, serverChallenge, m.challenge), nil
}

type scramPBKDF2SHA256 struct {
	challenge []byte
	password  string
}

// NewSCRAMPBKDF2SHA256 returns the PBKDF2-strengthened SCRAM authenticator.
func NewSCRAMPBKDF2SHA256(password string) (Method, error) {
	challenge, err := NewClientChallenge()
	if err != nil {
		return nil, err
	}
	return &scramPBKDF2SHA256{challenge: challenge, password: password}, nil
}

func (m *scramPBKDF2SHA256) Name() string            { return MethodSCRAMPBKDF2SHA256 }
func (m *scramPBKDF2SHA256) ClientChallenge() []byte { return m.challenge }

func (m *scramPBKDF2SHA256) ClientProof(salt, serverChallenge []byte, rounds uint32) ([]byte, error) {
	if len(salt) != SaltSize {
		return nil, fmt.Errorf("auth: invalid salt size %d - expected %d", len(salt), SaltSize)
	}
	if len(serverChallenge) != ServerChallengeSize {
		return nil, fmt.Errorf("auth: invalid server challenge size %d - expected %d", len(serverChallenge), ServerChallengeSize)
	}
	if rounds == 0 {
		return nil, fmt.Errorf("auth: invalid pbkdf2 round count 0")
	}
	derived, err := pbkdf2.Key(sha256.New, m.password, salt, int(rounds), ClientProofSize)
	if err != nil {
		return nil, fmt.Errorf("auth: pbkdf2: %w", err)
	}
	key := sha256Sum(derived)
	return scramble(key, salt, serverChallenge, m.challenge), nil
}

// scramble computes xor(hmac(sha256(key), salt||serverChallenge||clientChallenge), key).
func scramble(key, salt, serverChallenge, clientChallenge []byte) []byte {
	msg := make([]byte, 0, len(salt)+len(serverChallenge)+len(clientChallenge))
	msg = append(msg, salt...)
	msg = append(msg, serverChallenge...)
	msg = append(msg, clientChallenge...)

	sig := hmacSum(sha256Sum(key), msg)
	return xorBytes(sig, key)
}

func sha256Sum(p []byte) []byte {
	h := sha256.Sum256(p)
	return h[:]
}

func hmacSum(key, p []byte) []byte {
	h := hmac.New(sha256.New, key)
	h.Write(p)
	return h.Sum(nil)
}

func xorBytes(a, b []byte) []byte {
	r := make([]byte, len(a))
	for i := range a {
		r[i] = a[i] ^ b[i]
	}
	return r
}
