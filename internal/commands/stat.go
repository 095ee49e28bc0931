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

// Stat implements `stat [-c FMT] FILE` (spec §4.1 `stat`), supporting
// the conversions %n %U %G %a %i %s %h %F %A.
func Stat(ctx *shell.Context, args []string, stdin string) (string, int) {
	var format string
	var paths []string

	for i := 0; i < len(args); i++ {
		if args[i] == "-c" && i+1 < len(args) {
			i++
			format = args[i]
			continue
		}
		paths = append(paths, args[i])
	}
	paths = expandGlobs(ctx, paths)

	if len(paths) == 0 {
		return "stat: missing operand\n", 1
	}

	var b strings.Builder
	exit := 0
	for _, p := range paths {
		ino, err := ctx.VFS.Stat(p, ctx.Cwd, false)
		if err != nil {
			b.WriteString(fmt.Sprintf("stat: cannot stat '%s': %s\n", p, vfsErrText(err)))
			exit = 1
			continue
		}
		if format != "" {
			b.WriteString(expandStatFormat(ctx, format, p, ino) + "\n")
		} else {
			b.WriteString(defaultStatBlock(ctx, p, ino))
		}
	}
	return b.String(), exit
}

func expandStatFormat(ctx *shell.Context, format, path string, ino *vfs.Inode) string {
	var b strings.Builder
	for i := 0; i < len(format); i++ {
		if format[i] != '%' || i+1 >= len(format) {
			b.WriteByte(format[i])
			continue
		}
		i++
		switch format[i] {
		case 'n':
			b.WriteString(lastSegment(path))
		case 'U':
			b.WriteString(ownerName(ctx, ino.Uid))
		case 'G':
			b.WriteString(groupName(ctx, ino.Gid))
		case 'a':
			fmt.Fprintf(&b, "%o", ino.Mode&vfs.ModePerm)
		case 'i':
			fmt.Fprintf(&b, "%d", ino.ID)
		case 's':
			fmt.Fprintf(&b, "%d", ino.Size())
		case 'h':
			fmt.Fprintf(&b, "%d", ino.LinkCount)
		case 'F':
			b.WriteString(ino.Type.String())
		case 'A':
			b.WriteString(vfs.FormatPermissions(ino))
		default:
			b.WriteByte('%')
			b.WriteByte(format[i])
		}
	}
	return b.String()
}

func defaultStatBlock(ctx *shell.Context, path string, ino *vfs.Inode) string {
	var b strings.Builder
	fmt.Fprintf(&b, "  File: %s\n", path)
	fmt.Fprintf(&b, "  Size: %-10d\tBlocks: %-10d IO Block: 4096   %s\n",
		ino.Size(), (ino.Size()+511)/512, ino.Type.String())
	fmt.Fprintf(&b, "Device: simfs\tInode: %d\tLinks: %d\n", ino.ID, ino.LinkCount)
	fmt.Fprintf(&b, "Access: (%s/%s)  Uid: (%5d/%8s)   Gid: (%5d/%8s)\n",
		strconv.FormatUint(uint64(ino.Mode&vfs.ModePerm), 8), vfs.FormatPermissions(ino),
		ino.Uid, ownerName(ctx, ino.Uid), ino.Gid, groupName(ctx, ino.Gid))
	fmt.Fprintf(&b, "Access: %s\n", ino.Atime.Format("2006-01-02 15:04:05.000000000 -0700"))
	fmt.Fprintf(&b, "Modify: %s\n", ino.Mtime.Format("2006-01-02 15:04:05.000000000 -0700"))
	fmt.Fprintf(&b, "Change: %s\n", ino.Ctime.Format("2006-01-02 15:04:05.000000000 -0700"))
	return b.String()
}
