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
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/mkokutoyori/netsim/internal/vfs"
)

// handleBuiltin runs commands that must mutate Executor/Context state
// directly (environment, privilege stack, cwd) rather than through the
// pure Handler signature. Returns handled=false for anything else.
func (e *Executor) handleBuiltin(name string, args []string) (handled bool, out string, code int) {
	switch name {
	case "export":
		return true, e.builtinExport(args)
	case "env":
		return true, e.builtinEnv(), 0
	case "cd":
		return true, e.builtinCd(args)
	case "su":
		return true, e.builtinSu(args)
	case "sudo":
		return true, e.builtinSudo(args)
	case "exit", "logout":
		return true, e.builtinExit()
	default:
		return false, "", 0
	}
}

var assignRE = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)=(.*)$`)

func (e *Executor) builtinExport(args []string) (string, int) {
	for _, arg := range args {
		m := assignRE.FindStringSubmatch(arg)
		if m == nil {
			continue
		}
		e.Ctx.Env[m[1]] = e.expandOne(m[2])
	}
	return "", 0
}

func (e *Executor) builtinEnv() string {
	names := make([]string, 0, len(e.Ctx.Env))
	for k := range e.Ctx.Env {
		names = append(names, k)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, k := range names {
		fmt.Fprintf(&b, "%s=%s\n", k, e.Ctx.Env[k])
	}
	return b.String()
}

func (e *Executor) builtinCd(args []string) (string, int) {
	target := e.Ctx.Env["HOME"]
	if len(args) > 0 {
		target = args[0]
	}
	norm := vfs.Normalize(target, e.Ctx.Cwd)
	ino, err := e.Ctx.VFS.Stat(norm, e.Ctx.Cwd, true)
	if err != nil {
		return fmt.Sprintf("cd: %s: %s\n", target, vfsErrText(err)), 1
	}
	if ino.Type.String() != "directory" {
		return fmt.Sprintf("cd: %s: Not a directory\n", target), 1
	}
	e.Ctx.Cwd = norm
	return "", 0
}

// builtinSu pushes the current context onto the su stack and adopts
// the target user's uid/gid/home (spec §4.2 Privilege stacking). A
// nologin shell refuses.
func (e *Executor) builtinSu(args []string) (string, int) {
	username := "root"
	for _, a := range args {
		if a == "-l" || a == "-" || a == "--login" {
			continue
		}
		username = a
	}

	u, ok := e.Ctx.Users.User(username)
	if !ok {
		return fmt.Sprintf("su: user %s does not exist\n", username), 1
	}
	if strings.HasSuffix(u.Shell, "nologin") {
		return "This account is currently not available.\n", 1
	}

	e.suStack = append(e.suStack, suFrame{
		Username: currentUsername(e.Ctx), Uid: e.Ctx.Uid, Gid: e.Ctx.Gid, Cwd: e.Ctx.Cwd, Umask: e.Ctx.Umask,
	})
	e.Ctx.Uid = u.Uid
	e.Ctx.Gid = u.Gid
	e.Ctx.Cwd = u.Home
	return "", 0
}

// builtinSudo temporarily promotes uid/gid to 0 for the duration of
// cmd, restoring afterward. If cmd is "su", the top of the su stack is
// rewritten so exiting su returns to the pre-sudo user rather than to
// root (spec §4.2, the documented "sudo su" fix).
func (e *Executor) builtinSudo(args []string) (string, int) {
	if len(args) == 0 {
		return "", 0
	}

	savedUid, savedGid := e.Ctx.Uid, e.Ctx.Gid
	preSudoUsername := currentUsername(e.Ctx)
	e.Ctx.Uid, e.Ctx.Gid = 0, 0

	out, code := e.dispatchOne(args, "")

	if args[0] == "su" && len(e.suStack) > 0 {
		top := &e.suStack[len(e.suStack)-1]
		top.Username = preSudoUsername
		top.Uid = savedUid
		top.Gid = savedGid
	} else {
		e.Ctx.Uid, e.Ctx.Gid = savedUid, savedGid
	}

	return out, code
}

func (e *Executor) builtinExit() (string, int) {
	if len(e.suStack) == 0 {
		return "", 0
	}
	top := e.suStack[len(e.suStack)-1]
	e.suStack = e.suStack[:len(e.suStack)-1]
	e.Ctx.Uid = top.Uid
	e.Ctx.Gid = top.Gid
	e.Ctx.Cwd = top.Cwd
	e.Ctx.Umask = top.Umask
	return "", 0
}

func currentUsername(ctx *Context) string {
	out, _ := ctx.Users.Getent("passwd", "")
	for _, line := range strings.Split(out, "\n") {
		parts := strings.SplitN(line, ":", 4)
		if len(parts) < 3 {
			continue
		}
		if parts[2] == strconv.Itoa(ctx.Uid) {
			return parts[0]
		}
	}
	return fmt.Sprintf("uid%d", ctx.Uid)
}

var varRE = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}|\$([A-Za-z_][A-Za-z0-9_]*)`)

// expandOne expands $VAR and ${VAR} references against the executor's
// environment; unknown variables are left unexpanded (spec §4.2
// Environment: "for script passthrough").
func (e *Executor) expandOne(s string) string {
	return varRE.ReplaceAllStringFunc(s, func(m string) string {
		sub := varRE.FindStringSubmatch(m)
		name := sub[1]
		if name == "" {
			name = sub[2]
		}
		if v, ok := e.Ctx.Env[name]; ok {
			return v
		}
		return m
	})
}

func (e *Executor) expandArgs(args []string) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = e.expandOne(a)
	}
	return out
}
