// SPDX-FileCopyrightText: 2014-2021 SAP SE
//
// SPDX-License-Identifier: Apache-2.0

package hdbcore

import (
	"crypto/tls"
	"time"

	"github.com/google/uuid"
)

// TLSMode selects how ConnectParams establishes transport security.
type TLSMode int

const (
	// TLSOff disables TLS entirely (plain TCP).
	TLSOff TLSMode = iota
	// TLSInsecure enables TLS without verifying the server certificate.
	TLSInsecure
	// TLSVerify enables TLS, verifying against the configured certificate
	// sources (or the system pool if none are set).
	TLSVerify
)

const (
	defaultFetchSize          = 10000
	defaultLobReadLength      = 199 * 1024
	defaultLobWriteLength     = 199 * 1024
	minBufferSize             = 10 * 1024
	defaultMaxBufferSize      = 200 * 1024
	defaultMinCompressionSize = 5 * 1024
)

// ConnectParams carries everything needed to open a connection: network
// location, credentials, TLS configuration, and per-connection defaults
// (spec §6's "Connect parameters" / "Configuration defaults"). Built via
// NewConnectParams plus functional options rather than URL-string parsing,
// which is explicitly out of scope.
type ConnectParams struct {
	Host string
	Port string

	Username string
	Password string

	DatabaseName string
	NetworkGroup string

	TLSMode   TLSMode
	TLSConfig *tls.Config

	ClientLocale string
	Uncompressed bool

	AutoCommit          bool
	CursorHoldability   CursorHoldability
	FetchSize           int32
	LobReadLength       int32
	LobWriteLength      int32
	MaxBufferSize       int
	MinCompressionSize  int
	ReadTimeout         time.Duration
	ApplicationProgram  string
	DriverVersion       string
	DriverName          string
}

// CursorHoldability mirrors the server-side cursor holdability setting
// (spec §3's ConnectionConfiguration.cursor_holdability).
type CursorHoldability int

const (
	// HoldOverCommit keeps cursors open across commit, closing them on
	// rollback; the protocol default.
	HoldOverCommit CursorHoldability = iota
	// HoldNone closes cursors on both commit and rollback.
	HoldNone
)

// ConnectParamOption mutates a ConnectParams being built by
// NewConnectParams.
type ConnectParamOption func(*ConnectParams)

// NewConnectParams returns a ConnectParams for host:port with every
// configuration default from spec §6 applied, then overridden by opts in
// order.
func NewConnectParams(host, port string, opts ...ConnectParamOption) (*ConnectParams, error) {
	if host == "" {
		return nil, &ConnParamsError{Msg: "host must not be empty"}
	}
	if port == "" {
		return nil, &ConnParamsError{Msg: "port must not be empty"}
	}

	p := &ConnectParams{
		Host:               host,
		Port:               port,
		AutoCommit:         true,
		CursorHoldability:  HoldOverCommit,
		FetchSize:          defaultFetchSize,
		LobReadLength:      defaultLobReadLength,
		LobWriteLength:     defaultLobWriteLength,
		MaxBufferSize:      defaultMaxBufferSize,
		MinCompressionSize: defaultMinCompressionSize,
		ClientLocale:       "en_US",
		DriverName:         "hdbcore",
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.MaxBufferSize < 2*minBufferSize {
		p.MaxBufferSize = 2 * minBufferSize
	}
	if p.Username == "" {
		return nil, &ConnParamsError{Msg: "username must not be empty"}
	}
	return p, nil
}

// WithCredentials sets the username and password used for authentication.
func WithCredentials(username, password string) ConnectParamOption {
	return func(p *ConnectParams) {
		p.Username = username
		p.Password = password
	}
}

// WithDatabaseName records the tenant database this connection is meant
// for. It is not sent as part of the handshake: call
// ConnectionCore.DBConnectInfo with the same name against a system database
// connection to discover the tenant's host/port (spec §4.12) before Opening
// the tenant connection itself.
func WithDatabaseName(name string) ConnectParamOption {
	return func(p *ConnectParams) { p.DatabaseName = name }
}

// WithNetworkGroup records a HANA network group in ConnectParams.NetworkGroup.
// The connect handshake does not send it to the server.
func WithNetworkGroup(group string) ConnectParamOption {
	return func(p *ConnectParams) { p.NetworkGroup = group }
}

// WithTLS enables TLS in the given mode with an optional *tls.Config
// (server certificate sources); cfg may be nil for TLSInsecure.
func WithTLS(mode TLSMode, cfg *tls.Config) ConnectParamOption {
	return func(p *ConnectParams) {
		p.TLSMode = mode
		p.TLSConfig = cfg
	}
}

// WithClientLocale overrides the client locale sent during connect.
func WithClientLocale(locale string) ConnectParamOption {
	return func(p *ConnectParams) { p.ClientLocale = locale }
}

// WithUncompressed disables the lz4 compression gate entirely regardless of
// MinCompressionSize.
func WithUncompressed() ConnectParamOption {
	return func(p *ConnectParams) { p.Uncompressed = true }
}

// WithAutoCommit overrides the auto_commit default.
func WithAutoCommit(on bool) ConnectParamOption {
	return func(p *ConnectParams) { p.AutoCommit = on }
}

// WithCursorHoldability overrides the cursor_holdability default.
func WithCursorHoldability(h CursorHoldability) ConnectParamOption {
	return func(p *ConnectParams) { p.CursorHoldability = h }
}

// WithFetchSize overrides the default fetch_size.
func WithFetchSize(n int32) ConnectParamOption {
	return func(p *ConnectParams) { p.FetchSize = n }
}

// WithLobReadLength overrides the default lob_read_length.
func WithLobReadLength(n int32) ConnectParamOption {
	return func(p *ConnectParams) { p.LobReadLength = n }
}

// WithLobWriteLength overrides the default lob_write_length.
func WithLobWriteLength(n int32) ConnectParamOption {
	return func(p *ConnectParams) { p.LobWriteLength = n }
}

// WithMaxBufferSize overrides the default max_buffer_size; values below
// 2*MIN_BUFFER_SIZE are coerced upward per spec §3.
func WithMaxBufferSize(n int) ConnectParamOption {
	return func(p *ConnectParams) { p.MaxBufferSize = n }
}

// WithMinCompressionSize overrides the default min_compression_size.
func WithMinCompressionSize(n int) ConnectParamOption {
	return func(p *ConnectParams) { p.MinCompressionSize = n }
}

// WithReadTimeout bounds every socket read performed by the connection.
func WithReadTimeout(d time.Duration) ConnectParamOption {
	return func(p *ConnectParams) { p.ReadTimeout = d }
}

// WithApplicationProgram names the calling program in the client context
// part sent right after authentication.
func WithApplicationProgram(name string) ConnectParamOption {
	return func(p *ConnectParams) { p.ApplicationProgram = name }
}

// newClientID returns an opaque, collision-resistant client identification
// string for the connect sequence (spec §4.5), generalized from the
// teacher's hand-rolled id to a UUID.
func newClientID() string {
	return "go-hdbcore@" + uuid.NewString()
}
