// SPDX-FileCopyrightText: 2014-2021 SAP SE
//
// SPDX-License-Identifier: Apache-2.0

package hdbcore

import (
	"errors"
	"testing"
)

func TestRetryPolicyIsRetriable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"connection reset is retriable", &IoError{Kind: IoKindConnectionReset, Err: errors.New("reset")}, true},
		{"would block is retriable", &IoError{Kind: IoKindWouldBlock, Err: errors.New("wouldblock")}, true},
		{"timed out is retriable", &IoError{Kind: IoKindTimedOut, Err: errors.New("timeout")}, true},
		{"other io kind is not retriable", &IoError{Kind: IoKindOther, Err: errors.New("other")}, false},
		{"server error is never retriable", &ServerError{Code: 1, Text: "bad sql"}, false},
		{"impl error is never retriable", &ImplError{Msg: "missing part"}, false},
		{"nil error is not retriable", nil, false},
	}

	p := DefaultRetryPolicy()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.IsRetriable(tt.err); got != tt.want {
				t.Fatalf("IsRetriable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestRetryPolicyCustomKinds(t *testing.T) {
	p := &RetryPolicy{Kinds: []IoKind{IoKindOther}}
	if !p.IsRetriable(&IoError{Kind: IoKindOther, Err: errors.New("x")}) {
		t.Fatal("expected IoKindOther to be retriable under custom policy")
	}
	if p.IsRetriable(&IoError{Kind: IoKindTimedOut, Err: errors.New("x")}) {
		t.Fatal("expected IoKindTimedOut to not be retriable under custom policy")
	}
}
