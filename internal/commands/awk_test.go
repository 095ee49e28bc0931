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

	"github.com/mkokutoyori/netsim/internal/shell"
	"github.com/stretchr/testify/assert"
)

func TestAwk_PrintFirstField(t *testing.T) {
	out, code := Awk(&shell.Context{}, []string{"{ print $1 }"}, "alice 30\nbob 40\n")
	assert.Equal(t, 0, code)
	assert.Equal(t, "alice\nbob\n", out)
}

func TestAwk_FieldComparisonFiltersRows(t *testing.T) {
	out, code := Awk(&shell.Context{}, []string{"$2 > 35 { print $1 }"}, "alice 30\nbob 40\n")
	assert.Equal(t, 0, code)
	assert.Equal(t, "bob\n", out)
}

func TestAwk_SumWithBeginAndEnd(t *testing.T) {
	out, code := Awk(&shell.Context{}, []string{"BEGIN { sum = 0 } { sum += $2 } END { print sum }"}, "a 10\nb 20\n")
	assert.Equal(t, 0, code)
	assert.Equal(t, "30\n", out)
}

func TestAwk_NoArgsReturnsError(t *testing.T) {
	out, code := Awk(&shell.Context{}, nil, "")
	assert.Equal(t, 1, code)
	assert.Empty(t, out)
}
