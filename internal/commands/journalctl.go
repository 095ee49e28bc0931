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
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mkokutoyori/netsim/internal/journal"
	"github.com/mkokutoyori/netsim/internal/shell"
)

// Journalctl implements a `journalctl`-like read path over the Log/Journal
// Manager's ring buffer: `-n N` tails the last N entries, `-u FACILITY`
// filters by facility, `-p LEVEL` sets a minimum severity, `--since DUR`
// filters entries newer than now-DUR, and `-g PATTERN` greps message text.
func Journalctl(ctx *shell.Context, args []string, stdin string) (string, int) {
	if ctx.Journal == nil {
		return "journalctl: journal not available on this device\n", 1
	}

	var n int
	var opts journal.QueryOptions
	useTail := true

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-n", "--lines":
			i++
			if i < len(args) {
				n, _ = strconv.Atoi(args[i])
			}
		case "-u", "--unit":
			i++
			if i < len(args) {
				opts.Facility = journal.Facility(args[i])
				useTail = false
			}
		case "-p", "--priority":
			i++
			if i < len(args) {
				opts.MinSeverity = parseSeverity(args[i])
				useTail = false
			}
		case "-g", "--grep":
			i++
			if i < len(args) {
				opts.Contains = args[i]
				useTail = false
			}
		case "--since":
			i++
			if i < len(args) {
				if d, err := time.ParseDuration(args[i]); err == nil {
					opts.Since = time.Now().Add(-d)
					useTail = false
				}
			}
		}
	}

	var entries []journal.Entry
	if useTail {
		entries = ctx.Journal.Tail(n)
	} else {
		entries = ctx.Journal.Query(opts)
		if n > 0 && len(entries) > n {
			entries = entries[len(entries)-n:]
		}
	}

	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "%s %s[%s]: %s\n", e.Time.Format("Jan 02 15:04:05"), e.Facility, e.Severity, e.Message)
	}
	return b.String(), 0
}

func parseSeverity(s string) journal.Severity {
	switch strings.ToLower(s) {
	case "debug":
		return journal.SeverityDebug
	case "info":
		return journal.SeverityInfo
	case "notice":
		return journal.SeverityNotice
	case "warning", "warn":
		return journal.SeverityWarning
	case "err", "error":
		return journal.SeverityError
	case "crit", "critical":
		return journal.SeverityCritical
	default:
		return journal.SeverityDebug
	}
}
