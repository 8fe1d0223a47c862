// SPDX-FileCopyrightText: 2014-2021 SAP SE
//
// SPDX-License-Identifier: Apache-2.0

package protocol

import "testing"

func TestPlainOptionsAccessors(t *testing.T) {
	o := plainOptions{
		int8(ciDatabaseName): "TENANT1",
		int8(ciHost):         "tenant1.example.com",
		int8(ciPort):         int32(30015),
		int8(ciIsConnected):  true,
	}

	if got := o.asString(int8(ciDatabaseName)); got != "TENANT1" {
		t.Errorf("asString = %q, want TENANT1", got)
	}
	if got := o.asInt(int8(ciPort)); got != 30015 {
		t.Errorf("asInt = %d, want 30015", got)
	}
	if got := o.asBool(int8(ciIsConnected)); !got {
		t.Error("asBool = false, want true")
	}
}

func TestPlainOptionsAccessorsMissingKey(t *testing.T) {
	o := plainOptions{}
	if got := o.asString(int8(ciHost)); got != "" {
		t.Errorf("asString on missing key = %q, want empty", got)
	}
	if got := o.asInt(int8(ciPort)); got != 0 {
		t.Errorf("asInt on missing key = %d, want 0", got)
	}
	if got := o.asBool(int8(ciIsConnected)); got {
		t.Error("asBool on missing key = true, want false")
	}
}
