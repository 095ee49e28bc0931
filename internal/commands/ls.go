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
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mkokutoyori/netsim/internal/shell"
	"github.com/mkokutoyori/netsim/internal/vfs"
)

const terminalWidth = 80

type lsEntry struct {
	name string
	dir  string
	ino  *vfs.Inode
}

// Ls implements `ls` with flags -l -a -i -S -t -R -d -F -1 (spec §4.3).
func Ls(ctx *shell.Context, args []string, stdin string) (string, int) {
	flags, paths := splitFlags(args)
	if len(paths) == 0 {
		paths = []string{"."}
	}
	paths = expandGlobs(ctx, paths)

	opts := lsOpts{
		long:      hasFlag(flags, 'l'),
		all:       hasFlag(flags, 'a'),
		inode:     hasFlag(flags, 'i'),
		sizeSort:  hasFlag(flags, 'S'),
		timeSort:  hasFlag(flags, 't'),
		recursive: hasFlag(flags, 'R'),
		dirOnly:   hasFlag(flags, 'd'),
		classify:  hasFlag(flags, 'F'),
		oneCol:    hasFlag(flags, '1'),
	}

	var b strings.Builder
	exit := 0
	multiple := len(paths) > 1 || opts.recursive
	for i, p := range paths {
		if i > 0 {
			b.WriteString("\n")
		}
		if err := lsOne(ctx, &b, p, opts, multiple); err != nil {
			b.WriteString(fmt.Sprintf("ls: cannot access '%s': %s\n", p, vfsErrText(err)))
			exit = 2
		}
	}
	return b.String(), exit
}

type lsOpts struct {
	long, all, inode, sizeSort, timeSort, recursive, dirOnly, classify, oneCol bool
}

func lsOne(ctx *shell.Context, b *strings.Builder, p string, opts lsOpts, header bool) error {
	ino, err := ctx.VFS.Stat(p, ctx.Cwd, true)
	if err != nil {
		return err
	}

	if ino.Type != vfs.TypeDir || opts.dirOnly {
		entries := []lsEntry{{name: p, dir: ".", ino: ino}}
		writeEntries(ctx, b, entries, opts)
		return nil
	}

	if header {
		b.WriteString(p + ":\n")
	}

	names, err := ctx.VFS.ReadDir(p, ctx.Cwd)
	if err != nil {
		return err
	}

	var entries []lsEntry
	if opts.all {
		entries = append(entries, lsEntry{name: ".", dir: p, ino: ino})
		parentIno, perr := ctx.VFS.Stat(p+"/..", ctx.Cwd, true)
		if perr == nil {
			entries = append(entries, lsEntry{name: "..", dir: p, ino: parentIno})
		}
	}
	for _, name := range names {
		if !opts.all && strings.HasPrefix(name, ".") {
			continue
		}
		childIno, err := ctx.VFS.Stat(p+"/"+name, ctx.Cwd, false)
		if err != nil {
			continue
		}
		entries = append(entries, lsEntry{name: name, dir: p, ino: childIno})
	}

	sortEntries(entries, opts)
	writeEntries(ctx, b, entries, opts)

	if opts.recursive {
		for _, name := range names {
			if strings.HasPrefix(name, ".") {
				continue
			}
			child := p + "/" + name
			childIno, err := ctx.VFS.Stat(child, ctx.Cwd, false)
			if err == nil && childIno.Type == vfs.TypeDir {
				b.WriteString("\n")
				_ = lsOne(ctx, b, child, opts, true)
			}
		}
	}
	return nil
}

func sortEntries(entries []lsEntry, opts lsOpts) {
	switch {
	case opts.sizeSort:
		sort.SliceStable(entries, func(i, j int) bool { return entries[i].ino.Size() > entries[j].ino.Size() })
	case opts.timeSort:
		sort.SliceStable(entries, func(i, j int) bool { return entries[i].ino.Mtime.After(entries[j].ino.Mtime) })
	default:
		sort.SliceStable(entries, func(i, j int) bool { return entries[i].name < entries[j].name })
	}
}

func writeEntries(ctx *shell.Context, b *strings.Builder, entries []lsEntry, opts lsOpts) {
	if opts.long {
		writeLong(ctx, b, entries)
		return
	}

	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = displayName(e, opts)
	}

	if opts.oneCol || opts.recursive {
		for _, n := range names {
			b.WriteString(n + "\n")
		}
		return
	}

	writeColumns(b, names)
}

// writeColumns lays names out column-major for an 80-column terminal
// (spec §4.3 ls "Short mode uses column-major layout").
func writeColumns(b *strings.Builder, names []string) {
	if len(names) == 0 {
		return
	}
	width := 0
	for _, n := range names {
		if len(n) > width {
			width = len(n)
		}
	}
	colWidth := width + 2
	cols := terminalWidth / colWidth
	if cols < 1 {
		cols = 1
	}
	rows := (len(names) + cols - 1) / cols

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			idx := c*rows + r
			if idx >= len(names) {
				continue
			}
			n := names[idx]
			if c == cols-1 || idx+rows >= len(names) {
				b.WriteString(n)
			} else {
				b.WriteString(n + strings.Repeat(" ", colWidth-len(n)))
			}
		}
		b.WriteString("\n")
	}
}

func displayName(e lsEntry, opts lsOpts) string {
	n := e.name
	if opts.classify {
		switch e.ino.Type {
		case vfs.TypeDir:
			n += "/"
		case vfs.TypeSymlink:
			n += "@"
		case vfs.TypeFifo:
			n += "|"
		}
	}
	if opts.inode {
		n = fmt.Sprintf("%d %s", e.ino.ID, n)
	}
	return n
}

// writeLong renders `ls -l`'s aligned columns: links, owner, group,
// size, date, name (spec §4.3 "Long mode computes aligned widths").
func writeLong(ctx *shell.Context, b *strings.Builder, entries []lsEntry) {
	widths := struct{ links, owner, group, size int }{}
	rows := make([][5]string, len(entries))

	for i, e := range entries {
		owner := ownerName(ctx, e.ino.Uid)
		group := groupName(ctx, e.ino.Gid)
		links := strconv.Itoa(e.ino.LinkCount)
		size := strconv.FormatInt(e.ino.Size(), 10)

		rows[i] = [5]string{
			vfs.FormatPermissions(e.ino), links, owner, group, size,
		}
		widths.links = maxLen(widths.links, len(links))
		widths.owner = maxLen(widths.owner, len(owner))
		widths.group = maxLen(widths.group, len(group))
		widths.size = maxLen(widths.size, len(size))
	}

	for i, e := range entries {
		name := e.name
		if e.ino.Type == vfs.TypeSymlink {
			target, _ := ctx.VFS.ReadSymlink(e.dir+"/"+e.name, ctx.Cwd)
			name = fmt.Sprintf("%s -> %s", e.name, target)
		}
		fmt.Fprintf(b, "%s %s %s %s %s %s %s\n",
			rows[i][0],
			padLeft(rows[i][1], widths.links),
			padRight(rows[i][2], widths.owner),
			padRight(rows[i][3], widths.group),
			padLeft(rows[i][4], widths.size),
			formatLsDate(e.ino.Mtime),
			name,
		)
	}
}

func maxLen(a, b int) int {
	if b > a {
		return b
	}
	return a
}

func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// formatLsDate switches to "Mon DD YYYY" beyond six months, like real
// `ls -l` (spec §4.3).
func formatLsDate(t time.Time) string {
	if time.Since(t) > 6*30*24*time.Hour {
		return t.Format("Jan _2  2006")
	}
	return t.Format("Jan _2 15:04")
}

func ownerName(ctx *shell.Context, uid int) string {
	for _, name := range allUsernames(ctx) {
		if u, ok := ctx.Users.User(name); ok && u.Uid == uid {
			return name
		}
	}
	return strconv.Itoa(uid)
}

func groupName(ctx *shell.Context, gid int) string {
	if g, ok := ctx.Users.GroupByGid(gid); ok {
		return g.Name
	}
	return strconv.Itoa(gid)
}

// allUsernames is a small shim so ls can look names up without the
// Manager exposing a full enumerator beyond what it already does for
// getent (reuses the same sorted listing).
func allUsernames(ctx *shell.Context) []string {
	out, _ := ctx.Users.Getent("passwd", "")
	var names []string
	for _, line := range strings.Split(out, "\n") {
		if line == "" {
			continue
		}
		names = append(names, line[:strings.IndexByte(line, ':')])
	}
	return names
}
