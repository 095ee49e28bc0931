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

// Package device wires together the VFS, User/Group Manager, Shell
// Kernel, Log/Journal Manager, and OSPF Engine into one bootable
// simulated device (spec §2 composition, §6 external interfaces), the
// way the teacher's own top-level server type assembles its file
// system, cache, and GCS client into one mount.
package device

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/mkokutoyori/netsim/cfg"
	"github.com/mkokutoyori/netsim/clock"
	"github.com/mkokutoyori/netsim/common"
	"github.com/mkokutoyori/netsim/internal/commands"
	"github.com/mkokutoyori/netsim/internal/journal"
	"github.com/mkokutoyori/netsim/internal/ospf"
	"github.com/mkokutoyori/netsim/internal/shell"
	"github.com/mkokutoyori/netsim/internal/users"
	"github.com/mkokutoyori/netsim/internal/vfs"
)

// Device is one simulated Linux/network host: one of each component,
// process-wide singletons per spec §5 "Shared-resource policy".
type Device struct {
	cfg *cfg.Config

	clock   clock.Clock
	vfs     *vfs.FS
	users   *users.Manager
	journal *journal.Manager
	ospf    *ospf.Engine
	metrics common.MetricHandle

	executor *shell.Executor
}

// New boots a device from cfg: materializes the VFS tree, seeds the
// user/group database, starts the Log/Journal Manager, brings up the
// OSPF engine's areas/interfaces, and builds the shell executor over the
// full command table (spec §2, §6).
func New(c *cfg.Config, clk clock.Clock) (*Device, error) {
	fs := vfs.New(clk, c.FileSystem.RootUid, c.FileSystem.RootGid)
	fs.SetInvariantChecking(c.Debug.ExitOnInvariantViolation)
	userMgr := users.New(fs, clk)

	var metrics common.MetricHandle
	if c.Metrics.Enabled {
		m, err := common.NewOTelMetrics()
		if err != nil {
			return nil, fmt.Errorf("device: installing otel metrics: %w", err)
		}
		metrics = m
	} else {
		metrics = common.NewNoopMetrics()
	}

	d := &Device{
		cfg:     c,
		clock:   clk,
		vfs:     fs,
		users:   userMgr,
		metrics: metrics,
	}

	umask := uint32(c.FileSystem.Umask)

	if err := d.materializeBootTree(umask); err != nil {
		return nil, fmt.Errorf("device: materializing boot tree: %w", err)
	}

	d.journal = journal.New(fs, clk, journal.Options{
		MinSeverity: severityFromConfig(c.Logging.Severity),
		Rotate:      c.Logging.LogRotate,
	})
	d.journal.Write(journal.FacilityBoot, journal.SeverityInfo, "booting %s (session %s)", c.Hostname, d.journal.SessionID())

	if err := d.seedAccounts(); err != nil {
		return nil, fmt.Errorf("device: seeding accounts: %w", err)
	}

	d.ospf = ospf.New(c.Network.RouterID, clk)
	d.ospf.SetEventLogger(func(event, format string, args ...any) {
		d.journal.Write(journal.FacilityKernel, journal.SeverityInfo, "ospf."+event+": "+format, args...)
	})
	d.ospf.SetMetrics(metrics)
	if err := d.bootNetwork(); err != nil {
		return nil, fmt.Errorf("device: booting network: %w", err)
	}

	ctx := &shell.Context{
		VFS:     fs,
		Users:   userMgr,
		Net:     d.ospf,
		Journal: d.journal,
		Metrics: metrics,
		Cwd:     "/root",
		Umask:   umask,
		Uid:     0,
		Gid:     0,
		Env: map[string]string{
			"HOME": "/root",
			"PATH": "/usr/local/sbin:/usr/local/bin:/usr/sbin:/usr/bin:/sbin:/bin",
			"PS1":  "\\u@" + c.Hostname + ":\\w\\$ ",
		},
	}
	d.executor = shell.NewExecutor(ctx, commands.Register())

	return d, nil
}

func severityFromConfig(s cfg.LogSeverity) journal.Severity {
	switch s {
	case cfg.TraceLogSeverity, cfg.DebugLogSeverity:
		return journal.SeverityDebug
	case cfg.WarningLogSeverity:
		return journal.SeverityWarning
	case cfg.ErrorLogSeverity:
		return journal.SeverityError
	case cfg.OffLogSeverity:
		return journal.SeverityCritical + 1
	default:
		return journal.SeverityInfo
	}
}

// Shutdown cancels the OSPF engine's timers/LSDB/routes and flushes a
// final journal entry (spec §5 "Cancellation").
func (d *Device) Shutdown(ctx context.Context) error {
	shutdown := common.JoinShutdownFunc(
		func(ctx context.Context) error { return d.ospf.Shutdown(ctx) },
		func(ctx context.Context) error {
			d.journal.Write(journal.FacilityBoot, journal.SeverityInfo, "shutting down %s", d.cfg.Hostname)
			return nil
		},
	)
	return shutdown(ctx)
}

// RunShell presents an interactive read-eval-print loop on stdin,
// writing a prompt and command output to stdout (spec §6 "Command-line
// surface").
func (d *Device) RunShell(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer) error {
	scanner := bufio.NewScanner(stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		d.ospf.Tick(d.clock.Now())
		fmt.Fprint(stdout, d.prompt())
		if !scanner.Scan() {
			break
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		line := scanner.Text()
		if line == "" {
			continue
		}
		out := d.executor.Run(line)
		fmt.Fprint(stdout, out)
		d.ospf.Tick(d.clock.Now())
	}
	return scanner.Err()
}

func (d *Device) prompt() string {
	ctx := d.executor.Ctx
	user := "root"
	if u, ok := d.users.User("root"); ok && ctx.Uid != u.Uid {
		user = fmt.Sprintf("uid%d", ctx.Uid)
	}
	return fmt.Sprintf("%s@%s:%s# ", user, d.cfg.Hostname, ctx.Cwd)
}
