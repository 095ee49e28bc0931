// Copyright 2024 Google LLC
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

func TestRationalize_FillsInterfaceDefaults(t *testing.T) {
	c := &Config{
		Network: NetworkConfig{
			Interfaces: []InterfaceConfig{{Name: "eth0"}},
		},
	}

	require.NoError(t, Rationalize(c))

	iface := c.Network.Interfaces[0]
	assert.Equal(t, DefaultInterfaceCost, iface.Cost)
	assert.Equal(t, DefaultInterfacePriority, iface.Priority)
	assert.Equal(t, DefaultHelloIntervalSecs, iface.HelloIntervalSecs)
	assert.Equal(t, DefaultDeadIntervalSecs, iface.DeadIntervalSecs)
	assert.Equal(t, NetworkBroadcast, iface.NetworkType)
}

func TestRationalize_PreservesExplicitValues(t *testing.T) {
	c := &Config{
		Network: NetworkConfig{
			Interfaces: []InterfaceConfig{{
				Name:        "eth0",
				Cost:        100,
				Priority:    5,
				NetworkType: NetworkPointToPoint,
			}},
		},
	}

	require.NoError(t, Rationalize(c))

	iface := c.Network.Interfaces[0]
	assert.Equal(t, 100, iface.Cost)
	assert.Equal(t, 5, iface.Priority)
	assert.Equal(t, NetworkPointToPoint, iface.NetworkType)
}

func TestRationalize_DefaultHostname(t *testing.T) {
	c := &Config{}
	require.NoError(t, Rationalize(c))
	assert.Equal(t, "vhost", c.Hostname)
}

func TestRationalize_MutexDebugBumpsSeverity(t *testing.T) {
	c := &Config{Debug: DebugConfig{LogMutex: true}}
	require.NoError(t, Rationalize(c))
	assert.Equal(t, TraceLogSeverity, c.Logging.Severity)
}
