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

// Package commands implements the command library: pure functions over
// a shell.Context plus arguments and piped stdin (spec §4.3). Handlers
// are registered into the shell's dispatch table by internal/device so
// that this package, not internal/shell, owns utility behaviour.
package commands

import (
	"path"
	"strings"

	"github.com/mkokutoyori/netsim/internal/shell"
	"github.com/mkokutoyori/netsim/internal/vfs"
)

// expandGlob expands a single relative or absolute pattern against ctx's
// cwd (spec §4.1 `globExpand`). A pattern with no glob metacharacters,
// or one whose directory component doesn't resolve, passes through
// unchanged — "non-matching literal returns itself".
func expandGlob(ctx *shell.Context, pattern string) []string {
	if !strings.ContainsAny(pattern, "*?") {
		return []string{pattern}
	}

	dir, base := path.Split(pattern)
	dirArg := dir
	if dirArg == "" {
		dirArg = "."
	} else {
		dirArg = strings.TrimSuffix(dirArg, "/")
	}

	dirIno, err := ctx.VFS.Stat(dirArg, ctx.Cwd, true)
	if err != nil {
		return []string{pattern}
	}

	matches := ctx.VFS.GlobExpand(dirIno, base)
	if len(matches) == 0 {
		return []string{pattern}
	}

	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = dir + m
	}
	return out
}

// expandGlobs expands every argument in args, concatenating results in
// order (spec §4.3: "propagate glob expansion for relative patterns").
func expandGlobs(ctx *shell.Context, args []string) []string {
	var out []string
	for _, a := range args {
		out = append(out, expandGlob(ctx, a)...)
	}
	return out
}

// splitFlags separates leading `-xyz`-style short flag bundles from
// positional arguments. It does not handle `--long` flags or attached
// values; command handlers that need those parse args themselves.
func splitFlags(args []string) (flags string, rest []string) {
	var b strings.Builder
	for _, a := range args {
		if strings.HasPrefix(a, "-") && a != "-" && len(a) > 1 {
			b.WriteString(strings.TrimPrefix(a, "-"))
			continue
		}
		rest = append(rest, a)
	}
	return b.String(), rest
}

func hasFlag(flags string, c byte) bool {
	return strings.IndexByte(flags, c) >= 0
}

func vfsErrText(err error) string {
	switch {
	case err == vfs.ErrNotFound:
		return "No such file or directory"
	case err == vfs.ErrIsDir:
		return "Is a directory"
	case err == vfs.ErrNotDir:
		return "Not a directory"
	case err == vfs.ErrNotEmpty:
		return "Directory not empty"
	case err == vfs.ErrExists:
		return "File exists"
	case err == vfs.ErrPermission:
		return "Permission denied"
	case err == vfs.ErrLoop:
		return "Too many levels of symbolic links"
	default:
		return err.Error()
	}
}
