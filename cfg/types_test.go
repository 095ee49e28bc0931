// Copyright 2024 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cfg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOctal_UnmarshalText(t *testing.T) {
	var o Octal
	require.NoError(t, o.UnmarshalText([]byte("0755")))
	assert.EqualValues(t, 0o755, o)
}

func TestOctal_UnmarshalText_Invalid(t *testing.T) {
	var o Octal
	assert.Error(t, o.UnmarshalText([]byte("99")))
}

func TestOctal_MarshalText(t *testing.T) {
	o := Octal(0o644)
	b, err := o.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "0644", string(b))
}

func TestOctal_String(t *testing.T) {
	assert.Equal(t, "0022", Octal(0o22).String())
}

func TestLogSeverity_UnmarshalText(t *testing.T) {
	var l LogSeverity
	require.NoError(t, l.UnmarshalText([]byte("warning")))
	assert.Equal(t, WarningLogSeverity, l)
}

func TestLogSeverity_UnmarshalText_Invalid(t *testing.T) {
	var l LogSeverity
	assert.Error(t, l.UnmarshalText([]byte("VERBOSE")))
}

func TestLogSeverity_Rank(t *testing.T) {
	assert.Equal(t, 0, TraceLogSeverity.Rank())
	assert.Equal(t, 5, OffLogSeverity.Rank())
	assert.Equal(t, -1, LogSeverity("BOGUS").Rank())
	assert.Less(t, DebugLogSeverity.Rank(), InfoLogSeverity.Rank())
}

func TestNetworkType_UnmarshalText(t *testing.T) {
	var n NetworkType
	require.NoError(t, n.UnmarshalText([]byte("Broadcast")))
	assert.Equal(t, NetworkBroadcast, n)
}

func TestNetworkType_UnmarshalText_Invalid(t *testing.T) {
	var n NetworkType
	assert.Error(t, n.UnmarshalText([]byte("token-ring")))
}
