// SPDX-FileCopyrightText: 2014-2021 SAP SE
//
// SPDX-License-Identifier: Apache-2.0

package hdbcore

import "testing"

func TestClassifyXAErrorMapsKnownServerCodes(t *testing.T) {
	tests := []struct {
		serverCode int
		want       XAErrorCode
	}{
		{210, XADuplicateTransactionID},
		{211, XAInvalidArguments},
		{212, XAInvalidTransactionID},
		{213, XAUnknownErrorCode},
		{214, XAProtocolError},
		{215, XARMError},
		{216, XARMFailure},
		{999, XAUnknownErrorCode},
	}
	for _, tt := range tests {
		se := &ServerError{Code: tt.serverCode}
		err := classifyXAError(se)
		xaErr, ok := err.(*XAError)
		if !ok {
			t.Fatalf("expected *XAError, got %T", err)
		}
		if xaErr.Code != tt.want {
			t.Errorf("server code %d: Code = %v, want %v", tt.serverCode, xaErr.Code, tt.want)
		}
	}
}

func TestClassifyXAErrorNilIsNil(t *testing.T) {
	if classifyXAError(nil) != nil {
		t.Error("classifyXAError(nil) should return nil")
	}
}

func TestXABranchEndRejectsFailAndSuspendTogether(t *testing.T) {
	b := &XABranch{core: &ConnectionCore{}}
	if err := b.End(true, true); err == nil {
		t.Error("expected usage error when both fail and suspend are set")
	}
}
