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
)

func TestIsOSPFEnabled(t *testing.T) {
	assert.False(t, IsOSPFEnabled(&Config{}))
	assert.True(t, IsOSPFEnabled(&Config{
		Network: NetworkConfig{Interfaces: []InterfaceConfig{{Name: "eth0"}}},
	}))
}

func TestFindArea(t *testing.T) {
	c := &Config{
		Network: NetworkConfig{
			Areas: []AreaConfig{{ID: "0.0.0.0"}, {ID: "0.0.0.1", Stub: true}},
		},
	}

	a, ok := FindArea(c, "0.0.0.1")
	assert.True(t, ok)
	assert.True(t, a.Stub)

	_, ok = FindArea(c, "1.2.3.4")
	assert.False(t, ok)
}
