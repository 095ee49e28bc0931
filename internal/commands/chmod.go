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

	"github.com/mkokutoyori/netsim/internal/shell"
	"github.com/mkokutoyori/netsim/internal/vfs"
)

// Chown implements `chown [-R] owner[:group] FILE...` (spec §4.1
// `chown/chgrp`).
func Chown(ctx *shell.Context, args []string, stdin string) (string, int) {
	recursive := false
	var ownerSpec string
	var paths []string
	for _, a := range args {
		switch {
		case a == "-R":
			recursive = true
		case ownerSpec == "":
			ownerSpec = a
		default:
			paths = append(paths, a)
		}
	}
	paths = expandGlobs(ctx, paths)

	owner, group, _ := strings.Cut(ownerSpec, ":")
	uid := -1
	if owner != "" {
		if u, ok := ctx.Users.User(owner); ok {
			uid = u.Uid
		}
	}
	gid := -1
	if group != "" {
		if g, ok := ctx.Users.Group(group); ok {
			gid = g.Gid
		}
	}

	var b strings.Builder
	exit := 0
	for _, p := range paths {
		if err := ctx.VFS.Chown(p, ctx.Cwd, uid, gid, recursive); err != nil {
			b.WriteString(fmt.Sprintf("chown: changing ownership of '%s': %s\n", p, vfsErrText(err)))
			exit = 1
		}
	}
	return b.String(), exit
}

// Chgrp implements `chgrp [-R] group FILE...`.
func Chgrp(ctx *shell.Context, args []string, stdin string) (string, int) {
	recursive := false
	var group string
	var paths []string
	for _, a := range args {
		switch {
		case a == "-R":
			recursive = true
		case group == "":
			group = a
		default:
			paths = append(paths, a)
		}
	}
	paths = expandGlobs(ctx, paths)

	gid := -1
	if g, ok := ctx.Users.Group(group); ok {
		gid = g.Gid
	}

	var b strings.Builder
	exit := 0
	for _, p := range paths {
		if err := ctx.VFS.Chown(p, ctx.Cwd, -1, gid, recursive); err != nil {
			b.WriteString(fmt.Sprintf("chgrp: changing group of '%s': %s\n", p, vfsErrText(err)))
			exit = 1
		}
	}
	return b.String(), exit
}

// Chmod implements `chmod`: an octal mode, or symbolic clauses like
// "u+s", "g-w", "o=r", "a+x", "+t" (spec §4.1 `chmod`).
func Chmod(ctx *shell.Context, args []string, stdin string) (string, int) {
	recursive := false
	var spec string
	var paths []string

	for _, a := range args {
		switch {
		case a == "-R":
			recursive = true
		case spec == "":
			spec = a
		default:
			paths = append(paths, a)
		}
	}
	paths = expandGlobs(ctx, paths)

	var b strings.Builder
	exit := 0
	for _, p := range paths {
		ino, err := ctx.VFS.Stat(p, ctx.Cwd, false)
		if err != nil {
			b.WriteString(fmt.Sprintf("chmod: cannot access '%s': %s\n", p, vfsErrText(err)))
			exit = 1
			continue
		}
		newMode, ok := applyChmodSpec(spec, ino.Mode)
		if !ok {
			b.WriteString(fmt.Sprintf("chmod: invalid mode: '%s'\n", spec))
			return b.String(), 1
		}
		if err := ctx.VFS.Chmod(p, ctx.Cwd, newMode, recursive); err != nil {
			b.WriteString(fmt.Sprintf("chmod: changing permissions of '%s': %s\n", p, vfsErrText(err)))
			exit = 1
		}
	}
	return b.String(), exit
}

// applyChmodSpec parses an octal literal or one or more comma-separated
// symbolic clauses against the current mode.
func applyChmodSpec(spec string, current uint32) (uint32, bool) {
	if n, err := strconv.ParseUint(spec, 8, 32); err == nil {
		return uint32(n), true
	}

	mode := current
	for _, clause := range strings.Split(spec, ",") {
		var who string
		var op byte
		var idx int
		for idx = 0; idx < len(clause); idx++ {
			if clause[idx] == '+' || clause[idx] == '-' || clause[idx] == '=' {
				who = clause[:idx]
				op = clause[idx]
				break
			}
		}
		if op == 0 {
			return 0, false
		}
		perm := symbolicBits(who, clause[idx+1:])

		switch op {
		case '+':
			mode |= perm
		case '-':
			mode &^= perm
		case '=':
			mask := whoMask(who)
			mode &^= mask
			mode |= perm
		}
	}
	return mode, true
}

func whoMask(who string) uint32 {
	if who == "" || who == "a" {
		return vfs.ModePerm | vfs.ModeSetuid | vfs.ModeSetgid | vfs.ModeSticky
	}
	var mask uint32
	for _, c := range who {
		switch c {
		case 'u':
			mask |= 0o700 | vfs.ModeSetuid
		case 'g':
			mask |= 0o070 | vfs.ModeSetgid
		case 'o':
			mask |= 0o007
		case 'a':
			mask |= vfs.ModePerm | vfs.ModeSetuid | vfs.ModeSetgid | vfs.ModeSticky
		}
	}
	return mask
}

func symbolicBits(who, rights string) uint32 {
	var perm uint32
	for _, c := range rights {
		switch c {
		case 'r':
			perm |= bitsFor(who, 0o400, 0o040, 0o004)
		case 'w':
			perm |= bitsFor(who, 0o200, 0o020, 0o002)
		case 'x':
			perm |= bitsFor(who, 0o100, 0o010, 0o001)
		case 's':
			perm |= bitsFor(who, vfs.ModeSetuid, vfs.ModeSetgid, 0)
		case 't':
			perm |= vfs.ModeSticky
		}
	}
	return perm
}

func bitsFor(who string, user, group, other uint32) uint32 {
	if who == "" || who == "a" {
		return user | group | other
	}
	var out uint32
	for _, c := range who {
		switch c {
		case 'u':
			out |= user
		case 'g':
			out |= group
		case 'o':
			out |= other
		case 'a':
			out |= user | group | other
		}
	}
	return out
}
