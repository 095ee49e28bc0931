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

// Package journal implements the device's Log/Journal Manager (spec §7,
// §9): a ring buffer of structured entries multiplexed to stderr for
// operator visibility and mirrored onto the in-VFS /var/log/* files, with
// size-based rotation (rotate.go) the way the teacher mirrors its cache
// state to disk.
package journal

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mkokutoyori/netsim/clock"
	"github.com/mkokutoyori/netsim/internal/vfs"
)

// Severity mirrors syslog's eight levels; only the subset the device
// actually emits is named here.
type Severity int

const (
	SeverityDebug Severity = iota
	SeverityInfo
	SeverityNotice
	SeverityWarning
	SeverityError
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "DEBUG"
	case SeverityInfo:
		return "INFO"
	case SeverityNotice:
		return "NOTICE"
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	case SeverityCritical:
		return "CRIT"
	default:
		return "UNKNOWN"
	}
}

// Facility names the subsystem an entry came from, used to route it to
// the matching /var/log file the way syslog facilities pick a log file.
type Facility string

const (
	FacilitySyslog Facility = "syslog"
	FacilityAuth   Facility = "auth"
	FacilityKernel Facility = "kern"
	FacilityBoot   Facility = "boot"
)

// logPaths maps a facility to the /var/log file it mirrors to.
var logPaths = map[Facility]string{
	FacilitySyslog: "/var/log/syslog",
	FacilityAuth:   "/var/log/auth.log",
	FacilityKernel: "/var/log/kern.log",
	FacilityBoot:   "/var/log/boot.log",
}

// Entry is one ring-buffer record, the unit journalctl reads back out.
type Entry struct {
	Time     time.Time
	Facility Facility
	Severity Severity
	Message  string
	TraceID  string
}

// Manager owns the in-memory ring buffer and its VFS/stderr mirrors. The
// zero value is not usable; build one with New.
type Manager struct {
	mu sync.Mutex

	clock     clock.Clock
	vfs       *vfs.FS
	capacity  int
	entries   []Entry
	start     int // index of the oldest entry in entries, once full
	count     int
	minLevel  Severity
	sessionID string
	stderr    *log.Logger
	rotators  map[Facility]*rotator
}

// Options configures a Manager; zero values fall back to sane defaults.
type Options struct {
	Capacity    int      // ring buffer size, default 4096 entries
	MinSeverity Severity // entries below this are dropped, default Debug
	Stderr      *log.Logger
	Rotate      RotateConfig
}

// New builds a Manager backed by vfs for mirroring and clock for
// timestamps, assigning a fresh per-boot session id (spec's journal
// session id).
func New(fs *vfs.FS, clk clock.Clock, opts Options) *Manager {
	capacity := opts.Capacity
	if capacity <= 0 {
		capacity = 4096
	}
	stderr := opts.Stderr
	if stderr == nil {
		stderr = log.Default()
	}

	m := &Manager{
		clock:     clk,
		vfs:       fs,
		capacity:  capacity,
		entries:   make([]Entry, capacity),
		minLevel:  opts.MinSeverity,
		sessionID: uuid.NewString(),
		stderr:    stderr,
		rotators:  make(map[Facility]*rotator),
	}
	for fac, path := range logPaths {
		m.rotators[fac] = newRotator(fs, path, opts.Rotate)
	}
	return m
}

// SessionID returns the journal's per-boot UUID, stamped into boot.log
// and available to other components that want to correlate against
// this run.
func (m *Manager) SessionID() string {
	return m.sessionID
}

// Write appends an entry to the ring buffer, mirrors it to stderr and to
// the facility's /var/log file (rotating first if the file has grown
// past its size threshold), and returns the entry's trace id.
func (m *Manager) Write(facility Facility, severity Severity, format string, args ...any) string {
	if severity < m.minLevel {
		return ""
	}
	msg := fmt.Sprintf(format, args...)
	traceID := uuid.NewString()

	m.mu.Lock()
	now := m.clock.Now()
	entry := Entry{Time: now, Facility: facility, Severity: severity, Message: msg, TraceID: traceID}
	idx := (m.start + m.count) % m.capacity
	m.entries[idx] = entry
	if m.count < m.capacity {
		m.count++
	} else {
		m.start = (m.start + 1) % m.capacity
	}
	m.mu.Unlock()

	line := formatLine(entry)
	m.stderr.Print(line)
	if r, ok := m.rotators[facility]; ok {
		r.Append(now, line)
	}
	return traceID
}

func formatLine(e Entry) string {
	return fmt.Sprintf("%s %s[%s]: %s", e.Time.Format(time.RFC3339), e.Facility, e.Severity, e.Message)
}

// Tail returns the last n entries (oldest first), or all buffered
// entries if n <= 0 or greater than the buffer's current size.
func (m *Manager) Tail(n int) []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()

	if n <= 0 || n > m.count {
		n = m.count
	}
	out := make([]Entry, n)
	for i := 0; i < n; i++ {
		idx := (m.start + m.count - n + i) % m.capacity
		out[i] = m.entries[idx]
	}
	return out
}

// QueryOptions filters Query's result set.
type QueryOptions struct {
	Facility    Facility // empty matches all facilities
	MinSeverity Severity
	Since       time.Time // zero value matches everything
	Contains    string    // empty matches everything
}

// Query scans the ring buffer oldest-first, returning entries matching
// every set filter (journalctl's -u/-p/--since semantics, spec's
// journalctl read path).
func (m *Manager) Query(opts QueryOptions) []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []Entry
	for i := 0; i < m.count; i++ {
		idx := (m.start + i) % m.capacity
		e := m.entries[idx]
		if opts.Facility != "" && e.Facility != opts.Facility {
			continue
		}
		if e.Severity < opts.MinSeverity {
			continue
		}
		if !opts.Since.IsZero() && e.Time.Before(opts.Since) {
			continue
		}
		if opts.Contains != "" && !containsFold(e.Message, opts.Contains) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func containsFold(haystack, needle string) bool {
	return len(needle) == 0 || indexFold(haystack, needle) >= 0
}

func indexFold(haystack, needle string) int {
	hl, nl := len(haystack), len(needle)
	if nl == 0 {
		return 0
	}
	for i := 0; i+nl <= hl; i++ {
		if equalFold(haystack[i:i+nl], needle) {
			return i
		}
	}
	return -1
}

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}
