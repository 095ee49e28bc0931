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
	"log"
	"testing"
	"time"

	"github.com/mkokutoyori/netsim/clock"
	"github.com/mkokutoyori/netsim/internal/journal"
	"github.com/mkokutoyori/netsim/internal/shell"
	"github.com/mkokutoyori/netsim/internal/users"
	"github.com/mkokutoyori/netsim/internal/vfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func newJournalctlCtx(t *testing.T) *shell.Context {
	clk := clock.NewSimulatedClock(time.Unix(0, 0))
	fs := vfs.New(clk, 0, 0)
	require.NoError(t, fs.Mkdirp("/etc", "/", 0o022))
	require.NoError(t, fs.Mkdirp("/var/log", "/", 0o022))

	j := journal.New(fs, clk, journal.Options{Stderr: log.New(discard{}, "", 0)})
	j.Write(journal.FacilityAuth, journal.SeverityNotice, "user root logged in")
	j.Write(journal.FacilitySyslog, journal.SeverityWarning, "link eth0 flapping")

	return &shell.Context{
		VFS:     fs,
		Users:   users.New(fs, clk),
		Journal: j,
		Cwd:     "/",
		Env:     map[string]string{},
	}
}

func TestJournalctl_TailsMostRecentEntries(t *testing.T) {
	ctx := newJournalctlCtx(t)

	out, code := Journalctl(ctx, []string{"-n", "1"}, "")

	assert.Equal(t, 0, code)
	assert.Contains(t, out, "flapping")
	assert.NotContains(t, out, "logged in")
}

func TestJournalctl_FiltersByFacility(t *testing.T) {
	ctx := newJournalctlCtx(t)

	out, code := Journalctl(ctx, []string{"-u", "auth"}, "")

	assert.Equal(t, 0, code)
	assert.Contains(t, out, "logged in")
	assert.NotContains(t, out, "flapping")
}

func TestJournalctl_WithoutJournalReportsUnavailable(t *testing.T) {
	ctx := &shell.Context{}
	out, code := Journalctl(ctx, nil, "")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "not available")
}
