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

package device

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/mkokutoyori/netsim/cfg"
	"github.com/mkokutoyori/netsim/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *cfg.Config {
	return &cfg.Config{
		Hostname: "router1",
		Groups: []cfg.GroupConfig{
			{Name: "ops", Members: []string{"alice"}},
			{Name: "sudo"},
		},
		Users: []cfg.UserConfig{
			{Username: "alice", Sudoer: true},
		},
		Network: cfg.NetworkConfig{
			RouterID: "1.1.1.1",
			Areas:    []cfg.AreaConfig{{ID: "0.0.0.0"}},
			Interfaces: []cfg.InterfaceConfig{
				{Name: "eth0", Addresses: []string{"10.0.0.1/24"}, Area: "0.0.0.0"},
			},
		},
	}
}

func TestNew_MaterializesBootTreeAndSeedsAccounts(t *testing.T) {
	d, err := New(testConfig(), clock.NewSimulatedClock(time.Unix(0, 0)))
	require.NoError(t, err)

	data, err := d.vfs.ReadFile("/etc/hostname", "/")
	require.NoError(t, err)
	assert.Equal(t, "router1\n", string(data))

	_, ok := d.users.User("alice")
	assert.True(t, ok)
	assert.Contains(t, d.users.SupplementaryGroups("alice"), "ops")
	assert.Contains(t, d.users.SupplementaryGroups("alice"), "sudo")
}

func TestNew_BootsNetworkInterfaces(t *testing.T) {
	d, err := New(testConfig(), clock.NewSimulatedClock(time.Unix(0, 0)))
	require.NoError(t, err)

	links, err := d.ospf.ListLinks()
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, "eth0", links[0].Name)
}

func TestRunShell_ExecutesCommandsAndPrintsPrompt(t *testing.T) {
	d, err := New(testConfig(), clock.NewSimulatedClock(time.Unix(0, 0)))
	require.NoError(t, err)

	stdin := strings.NewReader("whoami\nexit\n")
	var stdout, stderr bytes.Buffer

	err = d.RunShell(context.Background(), stdin, &stdout, &stderr)
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "root")
	assert.Contains(t, stdout.String(), "router1")
}

func TestShutdown_FlushesFinalJournalEntry(t *testing.T) {
	d, err := New(testConfig(), clock.NewSimulatedClock(time.Unix(0, 0)))
	require.NoError(t, err)

	require.NoError(t, d.Shutdown(context.Background()))

	tail := d.journal.Tail(1)
	require.Len(t, tail, 1)
	assert.Contains(t, tail[0].Message, "shutting down")
}
