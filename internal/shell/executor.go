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

package shell

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mkokutoyori/netsim/common"
	"github.com/mkokutoyori/netsim/internal/vfs"
)

// ErrExit is an exported sentinel for a request to stop interpreting.
// The `exit`/`logout` builtins do not return it: they pop the su stack
// (a no-op when it is empty) and report exit status 0.
var ErrExit = errors.New("exit")

// Executor owns the dispatch table and all per-session mutable state:
// environment, su stack, last exit code (spec §4.2 "executor-local"
// state).
type Executor struct {
	Ctx *Context

	dispatch map[string]Handler
	suStack  []suFrame
	lastExit int
}

// NewExecutor creates an executor bound to ctx, with handlers supplying
// the command library (populated by the device's wiring code to avoid
// a shell -> commands import cycle).
func NewExecutor(ctx *Context, handlers map[string]Handler) *Executor {
	return &Executor{Ctx: ctx, dispatch: handlers}
}

// LastExitCode returns the exit code of the most recently run pipeline.
func (e *Executor) LastExitCode() int {
	return e.lastExit
}

// Run executes one input line end to end: chain split, pipeline
// execution, redirection application, exit-code propagation (spec §4.2
// Execution semantics).
func (e *Executor) Run(line string) string {
	chain := ParseChain(line)

	var visible string
	prevOp := ChainNone
	prevExit := 0

	for _, seg := range chain {
		if prevOp == ChainAnd && prevExit != 0 {
			prevOp = seg.Op
			continue
		}
		if prevOp == ChainOr && prevExit == 0 {
			prevOp = seg.Op
			continue
		}

		out, code := e.runPipeline(seg.Pipeline)
		visible += out
		prevExit = code
		prevOp = seg.Op
	}

	e.lastExit = prevExit
	return visible
}

func (e *Executor) runPipeline(cmds []PipelineCmd) (string, int) {
	if len(cmds) == 0 {
		return "", 0
	}

	stdin := ""
	exitCode := 0
	var lastRedirects Redirects
	var rawOutput string

	for i, cmd := range cmds {
		lastRedirects = cmd.Redirects

		in := stdin
		if cmd.Redirects.Stdin != "" {
			data, err := e.Ctx.VFS.ReadFile(cmd.Redirects.Stdin, e.Ctx.Cwd)
			if err != nil {
				return fmt.Sprintf("%s: %s\n", cmd.Redirects.Stdin, vfsErrText(err)), 1
			}
			in = string(data)
		}

		out, code := e.dispatchOne(cmd.Argv, in)
		exitCode = code
		rawOutput = out

		if i < len(cmds)-1 {
			stdin = stripSGR(out)
		}
	}

	visible := e.applyRedirects(rawOutput, exitCode, lastRedirects)
	return visible, exitCode
}

// dispatchOne resolves a single command name to a handler (or, failing
// that, to the Script Executor or "command not found") and runs it with
// environment-expanded arguments (spec §4.2 Dispatch table).
func (e *Executor) dispatchOne(argv []string, stdin string) (string, int) {
	if len(argv) == 0 {
		return "", 0
	}

	name := argv[0]
	args := e.expandArgs(argv[1:])

	if handled, out, code := e.handleBuiltin(name, args); handled {
		return out, code
	}

	if rootOnlyCommands[name] && e.Ctx.Uid != 0 {
		return "Permission denied\n", 1
	}
	if name == "passwd" && len(args) > 0 && e.Ctx.Uid != 0 {
		return "Permission denied\n", 1
	}

	if handler, ok := e.dispatch[name]; ok {
		return e.runMetered(name, handler, args, stdin)
	}

	if len(name) > 0 && (name[0] == '/' || (len(name) > 1 && name[0] == '.' && name[1] == '/')) {
		if _, err := e.Ctx.VFS.Stat(name, e.Ctx.Cwd, true); err == nil {
			return e.RunScript(name, args)
		}
	}

	return fmt.Sprintf("%s: command not found\n", name), 127
}

// runMetered invokes handler, recording the command's count/latency/error
// rate on e.Ctx.Metrics the way the teacher records its own FUSE op
// metrics around each file-system call.
func (e *Executor) runMetered(name string, handler Handler, args []string, stdin string) (string, int) {
	if e.Ctx.Metrics == nil {
		return handler(e.Ctx, args, stdin)
	}

	attrs := []common.MetricAttr{{Key: common.FSOpKey, Value: name}}
	start := time.Now()
	out, code := handler(e.Ctx, args, stdin)

	ctx := context.Background()
	e.Ctx.Metrics.OpsCount(ctx, 1, attrs)
	e.Ctx.Metrics.OpsLatency(ctx, time.Since(start), attrs)
	if code != 0 {
		e.Ctx.Metrics.OpsErrorCount(ctx, 1, attrs)
	}
	return out, code
}

// applyRedirects implements step 4 of spec §4.2 Execution semantics:
// stderr first (if 2> without 2>&1 and the command failed), then
// stdout, each suppressing the corresponding visible output once
// consumed.
func (e *Executor) applyRedirects(out string, exitCode int, r Redirects) string {
	visible := out

	if exitCode != 0 && r.Stderr != "" && !r.StderrToStdout {
		e.writeRedirectTarget(r.Stderr, visible, r.StderrAppend)
		visible = ""
	}

	if r.Stdout != "" {
		e.writeRedirectTarget(r.Stdout, visible, r.StdoutAppend)
		visible = ""
	}

	return visible
}

func (e *Executor) writeRedirectTarget(target, data string, appendMode bool) {
	_ = e.Ctx.VFS.WriteFile(target, e.Ctx.Cwd, []byte(data), appendMode, e.Ctx.Umask)
}

func vfsErrText(err error) string {
	switch {
	case errors.Is(err, vfs.ErrNotFound):
		return "No such file or directory"
	case errors.Is(err, vfs.ErrIsDir):
		return "Is a directory"
	case errors.Is(err, vfs.ErrNotDir):
		return "Not a directory"
	case errors.Is(err, vfs.ErrPermission):
		return "Permission denied"
	default:
		return err.Error()
	}
}
