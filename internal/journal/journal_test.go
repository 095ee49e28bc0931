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

package journal

import (
	"log"
	"testing"
	"time"

	"github.com/mkokutoyori/netsim/clock"
	"github.com/mkokutoyori/netsim/internal/vfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) (*Manager, *vfs.FS) {
	fs := vfs.New(clock.NewSimulatedClock(time.Unix(0, 0)), 0, 0)
	require.NoError(t, fs.Mkdirp("/var/log", "/", 0o022))
	m := New(fs, clock.NewSimulatedClock(time.Unix(0, 0)), Options{
		Stderr: log.New(noopWriter{}, "", 0),
	})
	return m, fs
}

type noopWriter struct{}

func (noopWriter) Write(p []byte) (int, error) { return len(p), nil }

func TestWrite_MirrorsToVFS(t *testing.T) {
	m, fs := newTestManager(t)

	m.Write(FacilitySyslog, SeverityInfo, "interface %s up", "eth0")

	data, err := fs.ReadFile("/var/log/syslog", "/")
	require.NoError(t, err)
	assert.Contains(t, string(data), "interface eth0 up")
}

func TestWrite_DropsEntriesBelowMinSeverity(t *testing.T) {
	fs := vfs.New(clock.NewSimulatedClock(time.Unix(0, 0)), 0, 0)
	require.NoError(t, fs.Mkdirp("/var/log", "/", 0o022))
	m := New(fs, clock.NewSimulatedClock(time.Unix(0, 0)), Options{
		MinSeverity: SeverityWarning,
		Stderr:      log.New(noopWriter{}, "", 0),
	})

	m.Write(FacilityKernel, SeverityDebug, "ignored")
	m.Write(FacilityKernel, SeverityError, "kept")

	entries := m.Tail(0)
	require.Len(t, entries, 1)
	assert.Equal(t, "kept", entries[0].Message)
}

func TestTail_ReturnsOldestFirstAndRespectsCapacity(t *testing.T) {
	fs := vfs.New(clock.NewSimulatedClock(time.Unix(0, 0)), 0, 0)
	require.NoError(t, fs.Mkdirp("/var/log", "/", 0o022))
	m := New(fs, clock.NewSimulatedClock(time.Unix(0, 0)), Options{
		Capacity: 3,
		Stderr:   log.New(noopWriter{}, "", 0),
	})

	for i := 0; i < 5; i++ {
		m.Write(FacilitySyslog, SeverityInfo, "entry-%d", i)
	}

	entries := m.Tail(0)
	require.Len(t, entries, 3)
	assert.Equal(t, "entry-2", entries[0].Message)
	assert.Equal(t, "entry-4", entries[2].Message)
}

func TestQuery_FiltersByFacilityAndText(t *testing.T) {
	m, _ := newTestManager(t)

	m.Write(FacilitySyslog, SeverityInfo, "link eth0 up")
	m.Write(FacilityAuth, SeverityNotice, "user root logged in")

	out := m.Query(QueryOptions{Facility: FacilityAuth})
	require.Len(t, out, 1)
	assert.Contains(t, out[0].Message, "root")

	out = m.Query(QueryOptions{Contains: "ETH0"})
	require.Len(t, out, 1)
	assert.Contains(t, out[0].Message, "eth0")
}

func TestSessionID_IsStableAcrossWrites(t *testing.T) {
	m, _ := newTestManager(t)
	id := m.SessionID()
	m.Write(FacilitySyslog, SeverityInfo, "noop")
	assert.Equal(t, id, m.SessionID())
	assert.NotEmpty(t, id)
}
