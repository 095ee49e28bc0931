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

package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStat_CustomFormat(t *testing.T) {
	ctx := newPermCtx(t)
	out, code := Stat(ctx, []string{"-c", "%n %a", "/file.txt"}, "")
	assert.Equal(t, 0, code)
	assert.Equal(t, "file.txt 644\n", out)
}

func TestStat_DefaultBlockIncludesSizeAndInode(t *testing.T) {
	ctx := newPermCtx(t)
	out, code := Stat(ctx, []string{"/file.txt"}, "")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "File: /file.txt")
	assert.Contains(t, out, "Inode:")
}

func TestStat_MissingOperandErrors(t *testing.T) {
	ctx := newPermCtx(t)
	out, code := Stat(ctx, nil, "")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "missing operand")
}

func TestStat_MissingFileReportsError(t *testing.T) {
	ctx := newPermCtx(t)
	out, code := Stat(ctx, []string{"/nope.txt"}, "")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "cannot stat")
	require.NotEmpty(t, out)
}
