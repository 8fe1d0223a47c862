// SPDX-FileCopyrightText: 2014-2021 SAP SE
//
// SPDX-License-Identifier: Apache-2.0

package hdbcore

import "testing"

func TestNewConnectParamsDefaults(t *testing.T) {
	p, err := NewConnectParams("hana.example.com", "39015", WithCredentials("SYSTEM", "secret"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.FetchSize != defaultFetchSize {
		t.Errorf("FetchSize = %d, want %d", p.FetchSize, defaultFetchSize)
	}
	if p.MinCompressionSize != defaultMinCompressionSize {
		t.Errorf("MinCompressionSize = %d, want %d", p.MinCompressionSize, defaultMinCompressionSize)
	}
	if !p.AutoCommit {
		t.Error("AutoCommit should default to true")
	}
	if p.CursorHoldability != HoldOverCommit {
		t.Error("CursorHoldability should default to HoldOverCommit")
	}
}

func TestNewConnectParamsMaxBufferSizeCoercedUpward(t *testing.T) {
	p, err := NewConnectParams("h", "1", WithCredentials("u", "p"), WithMaxBufferSize(1024))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.MaxBufferSize != 2*minBufferSize {
		t.Errorf("MaxBufferSize = %d, want %d", p.MaxBufferSize, 2*minBufferSize)
	}
}

func TestNewConnectParamsRequiresHostPortUsername(t *testing.T) {
	if _, err := NewConnectParams("", "1", WithCredentials("u", "p")); err == nil {
		t.Error("expected error for empty host")
	}
	if _, err := NewConnectParams("h", "", WithCredentials("u", "p")); err == nil {
		t.Error("expected error for empty port")
	}
	if _, err := NewConnectParams("h", "1"); err == nil {
		t.Error("expected error for missing username")
	}
}

func TestWithUncompressedSetsUncompressedFlag(t *testing.T) {
	p, err := NewConnectParams("h", "1", WithCredentials("u", "p"), WithUncompressed())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.Uncompressed {
		t.Error("expected Uncompressed to be true")
	}
}
