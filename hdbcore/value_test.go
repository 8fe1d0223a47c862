// SPDX-FileCopyrightText: 2014-2021 SAP SE
//
// SPDX-License-Identifier: Apache-2.0

package hdbcore

import (
	"testing"
	"time"
)

func TestCheckAssignable(t *testing.T) {
	tests := []struct {
		name     string
		v        HdbValue
		typeName string
		wantErr  bool
	}{
		{"nil is always assignable", nil, "INTEGER", false},
		{"bool to integer column", true, "BIGINT", false},
		{"bool to boolean column", false, "BOOLEAN", false},
		{"bool to char column fails", true, "CHAR", true},
		{"string to string-like column", "hi", "NVARCHAR", false},
		{"string to geospatial column fails", "POINT(1 1)", "POINT", true},
		{"binary to blob column", []byte{1, 2}, "BLOB", false},
		{"binary to integer column fails", []byte{1, 2}, "INTEGER", true},
		{"int to integer column", int64(42), "INTEGER", false},
		{"int to decimal column", int64(42), "DECIMAL", false},
		{"int to string column fails", int64(42), "VARCHAR", true},
		{"float to double column", 3.14, "DOUBLE", false},
		{"time to longdate column", time.Now(), "LONGDATE", false},
		{"time to integer column fails", time.Now(), "INTEGER", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckAssignable(tt.v, tt.typeName)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CheckAssignable(%v, %s) error = %v, wantErr %v", tt.v, tt.typeName, err, tt.wantErr)
			}
		})
	}
}
