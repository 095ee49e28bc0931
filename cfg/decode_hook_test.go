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
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHookFunc_Octal(t *testing.T) {
	fn := hookFunc()
	out, err := fn(reflect.TypeOf(""), reflect.TypeOf(Octal(0)), "0755")
	require.NoError(t, err)
	assert.EqualValues(t, 0o755, out)
}

func TestHookFunc_LogSeverity(t *testing.T) {
	fn := hookFunc()
	out, err := fn(reflect.TypeOf(""), reflect.TypeOf(LogSeverity("")), "warning")
	require.NoError(t, err)
	assert.Equal(t, "WARNING", out)
}

func TestHookFunc_LogSeverity_Invalid(t *testing.T) {
	fn := hookFunc()
	_, err := fn(reflect.TypeOf(""), reflect.TypeOf(LogSeverity("")), "VERBOSE")
	assert.Error(t, err)
}

func TestHookFunc_NetworkType(t *testing.T) {
	fn := hookFunc()
	out, err := fn(reflect.TypeOf(""), reflect.TypeOf(NetworkType("")), "Point-To-Point")
	require.NoError(t, err)
	assert.Equal(t, "point-to-point", out)
}

func TestHookFunc_NetworkType_Invalid(t *testing.T) {
	fn := hookFunc()
	_, err := fn(reflect.TypeOf(""), reflect.TypeOf(NetworkType("")), "token-ring")
	assert.Error(t, err)
}

func TestHookFunc_PassesThroughNonStrings(t *testing.T) {
	fn := hookFunc()
	out, err := fn(reflect.TypeOf(0), reflect.TypeOf(Octal(0)), 42)
	require.NoError(t, err)
	assert.Equal(t, 42, out)
}

func TestDecodeHook_Composes(t *testing.T) {
	assert.NotNil(t, DecodeHook())
}
