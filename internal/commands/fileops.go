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
	"bytes"
	"fmt"
	"strings"

	"github.com/mkokutoyori/netsim/common"
	"github.com/mkokutoyori/netsim/internal/shell"
	"github.com/mkokutoyori/netsim/internal/vfs"
)

// Cat implements `cat`: concatenates files, or echoes stdin if none are
// given.
func Cat(ctx *shell.Context, args []string, stdin string) (string, int) {
	files := expandGlobs(ctx, args)
	if len(files) == 0 {
		return stdin, 0
	}

	var b strings.Builder
	exit := 0
	for _, f := range files {
		data, err := ctx.VFS.ReadFile(f, ctx.Cwd)
		if err != nil {
			b.WriteString(fmt.Sprintf("cat: %s: %s\n", f, vfsErrText(err)))
			exit = 1
			continue
		}
		b.Write(data)
	}
	return b.String(), exit
}

var echoEscapes = strings.NewReplacer(
	`\n`, "\n", `\t`, "\t", `\r`, "\r", `\0`, "\x00", `\\`, `\`,
)

// Echo implements `echo`, including `-e` escape interpretation (spec
// §4.3).
func Echo(ctx *shell.Context, args []string, stdin string) (string, int) {
	interpret := false
	noNewline := false

	var words []string
	for _, a := range args {
		switch a {
		case "-e":
			interpret = true
		case "-n":
			noNewline = true
		case "-en", "-ne":
			interpret, noNewline = true, true
		default:
			words = append(words, a)
		}
	}

	out := strings.Join(words, " ")
	if interpret {
		out = echoEscapes.Replace(out)
	}
	if !noNewline {
		out += "\n"
	}
	return out, 0
}

// Pwd implements `pwd`.
func Pwd(ctx *shell.Context, args []string, stdin string) (string, int) {
	return ctx.Cwd + "\n", 0
}

// Touch implements `touch` (spec §4.1 `touch`).
func Touch(ctx *shell.Context, args []string, stdin string) (string, int) {
	files := expandGlobs(ctx, args)
	var b strings.Builder
	exit := 0
	for _, f := range files {
		if err := ctx.VFS.Touch(f, ctx.Cwd, ctx.Umask); err != nil {
			b.WriteString(fmt.Sprintf("touch: %s: %s\n", f, vfsErrText(err)))
			exit = 1
		}
	}
	return b.String(), exit
}

// Mkdir implements `mkdir`, with `-p` for mkdirp semantics.
func Mkdir(ctx *shell.Context, args []string, stdin string) (string, int) {
	flags, paths := splitFlags(args)
	parents := hasFlag(flags, 'p')

	var b strings.Builder
	exit := 0
	for _, p := range paths {
		var err error
		if parents {
			err = ctx.VFS.Mkdirp(p, ctx.Cwd, ctx.Umask)
		} else {
			err = ctx.VFS.Mkdir(p, ctx.Cwd, ctx.Umask)
		}
		if err != nil {
			b.WriteString(fmt.Sprintf("mkdir: cannot create directory '%s': %s\n", p, vfsErrText(err)))
			exit = 1
		}
	}
	return b.String(), exit
}

// Rmdir implements `rmdir`.
func Rmdir(ctx *shell.Context, args []string, stdin string) (string, int) {
	var b strings.Builder
	exit := 0
	for _, p := range expandGlobs(ctx, args) {
		if err := ctx.VFS.Rmdir(p, ctx.Cwd); err != nil {
			b.WriteString(fmt.Sprintf("rmdir: failed to remove '%s': %s\n", p, vfsErrText(err)))
			exit = 1
		}
	}
	return b.String(), exit
}

// Rm implements `rm`, with `-r`/`-f` (`-rf` combined).
func Rm(ctx *shell.Context, args []string, stdin string) (string, int) {
	flags, paths := splitFlags(args)
	recursive := hasFlag(flags, 'r') || hasFlag(flags, 'R')
	force := hasFlag(flags, 'f')

	var b strings.Builder
	exit := 0
	for _, p := range expandGlobs(ctx, paths) {
		var err error
		if recursive {
			err = ctx.VFS.Rmrf(p, ctx.Cwd)
		} else {
			err = ctx.VFS.Unlink(p, ctx.Cwd)
		}
		if err != nil && !force {
			b.WriteString(fmt.Sprintf("rm: cannot remove '%s': %s\n", p, vfsErrText(err)))
			exit = 1
		}
	}
	return b.String(), exit
}

// Cp implements `cp`, including `-r` for directory trees.
func Cp(ctx *shell.Context, args []string, stdin string) (string, int) {
	flags, paths := splitFlags(args)
	recursive := hasFlag(flags, 'r') || hasFlag(flags, 'R')
	paths = expandGlobs(ctx, paths)

	if len(paths) < 2 {
		return "cp: missing file operand\n", 1
	}
	dst := paths[len(paths)-1]
	srcs := paths[:len(paths)-1]

	dstIno, dstErr := ctx.VFS.Stat(dst, ctx.Cwd, true)
	dstIsDir := dstErr == nil && dstIno.Type == vfs.TypeDir

	if len(srcs) > 1 && !dstIsDir {
		return fmt.Sprintf("cp: target '%s' is not a directory\n", dst), 1
	}

	var b strings.Builder
	exit := 0
	for _, src := range srcs {
		target := dst
		if dstIsDir {
			target = strings.TrimSuffix(dst, "/") + "/" + lastSegment(src)
		}
		if err := copyPath(ctx, src, target, recursive); err != nil {
			b.WriteString(fmt.Sprintf("cp: cannot copy '%s': %s\n", src, err))
			exit = 1
		}
	}
	return b.String(), exit
}

func copyPath(ctx *shell.Context, src, dst string, recursive bool) error {
	ino, err := ctx.VFS.Stat(src, ctx.Cwd, true)
	if err != nil {
		return fmt.Errorf("%s", vfsErrText(err))
	}

	if ino.Type == vfs.TypeDir {
		if !recursive {
			return fmt.Errorf("omitting directory '%s'", src)
		}
		if err := ctx.VFS.Mkdirp(dst, ctx.Cwd, ctx.Umask); err != nil && err != vfs.ErrExists {
			return err
		}
		names, err := ctx.VFS.ReadDir(src, ctx.Cwd)
		if err != nil {
			return err
		}
		for _, name := range names {
			if err := copyPath(ctx, src+"/"+name, dst+"/"+name, recursive); err != nil {
				return err
			}
		}
		return nil
	}

	data, err := ctx.VFS.ReadFile(src, ctx.Cwd)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if _, err := common.CopyWhole(&buf, bytes.NewReader(data), int64(len(data))); err != nil {
		return err
	}
	return ctx.VFS.WriteFile(dst, ctx.Cwd, buf.Bytes(), false, ctx.Umask)
}

// Mv implements `mv`, backed by VFS.Rename (spec §4.1 `rename`). Moving
// into an existing directory target is handled by VFS.Rename itself;
// this still rejects a multi-source move into a non-directory target,
// mirroring Cp.
func Mv(ctx *shell.Context, args []string, stdin string) (string, int) {
	paths := expandGlobs(ctx, args)
	if len(paths) < 2 {
		return "mv: missing file operand\n", 1
	}
	dst := paths[len(paths)-1]
	srcs := paths[:len(paths)-1]

	dstIno, dstErr := ctx.VFS.Stat(dst, ctx.Cwd, true)
	dstIsDir := dstErr == nil && dstIno.Type == vfs.TypeDir

	if len(srcs) > 1 && !dstIsDir {
		return fmt.Sprintf("mv: target '%s' is not a directory\n", dst), 1
	}

	var b strings.Builder
	exit := 0
	for _, src := range srcs {
		if err := ctx.VFS.Rename(src, dst, ctx.Cwd); err != nil {
			b.WriteString(fmt.Sprintf("mv: cannot move '%s' to '%s': %s\n", src, dst, vfsErrText(err)))
			exit = 1
		}
	}
	return b.String(), exit
}

// Ln implements `ln`, with `-s` for symlinks; otherwise a hard link
// (spec §4.1 `createSymlink`/`createHardLink`).
func Ln(ctx *shell.Context, args []string, stdin string) (string, int) {
	flags, paths := splitFlags(args)
	symbolic := hasFlag(flags, 's')

	if len(paths) != 2 {
		return "ln: missing file operand\n", 1
	}
	target, link := paths[0], paths[1]

	var err error
	if symbolic {
		err = ctx.VFS.CreateSymlink(link, ctx.Cwd, target)
	} else {
		err = ctx.VFS.CreateHardLink(link, ctx.Cwd, target)
	}
	if err != nil {
		return fmt.Sprintf("ln: failed to create link '%s': %s\n", link, vfsErrText(err)), 1
	}
	return "", 0
}

// Tee implements `tee`: writes stdin through to stdout and to each
// named file, with `-a` for append.
func Tee(ctx *shell.Context, args []string, stdin string) (string, int) {
	flags, files := splitFlags(args)
	appendMode := hasFlag(flags, 'a')

	exit := 0
	for _, f := range files {
		if err := ctx.VFS.WriteFile(f, ctx.Cwd, []byte(stdin), appendMode, ctx.Umask); err != nil {
			exit = 1
		}
	}
	return stdin, exit
}

func lastSegment(p string) string {
	p = strings.TrimSuffix(p, "/")
	if idx := strings.LastIndex(p, "/"); idx >= 0 {
		return p[idx+1:]
	}
	return p
}
