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

	"github.com/mkokutoyori/netsim/internal/shell"
	"github.com/mkokutoyori/netsim/internal/vfs"
)

// Find implements `find [path] -name P -type T -empty -mtime N -user U
// -group G -exec CMD {} \;` (spec §4.1 `find`).
func Find(ctx *shell.Context, args []string, stdin string) (string, int) {
	root := "."
	pred := vfs.FindPredicate{}
	var execArgs []string

	i := 0
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		root = args[0]
		i = 1
	}

	for ; i < len(args); i++ {
		switch args[i] {
		case "-name":
			i++
			if i < len(args) {
				pred.Name = args[i]
			}
		case "-type":
			i++
			if i < len(args) {
				t := findTypeFromLetter(args[i])
				pred.Type = &t
			}
		case "-empty":
			pred.Empty = true
		case "-user":
			i++
			if i < len(args) {
				if u, ok := ctx.Users.User(args[i]); ok {
					pred.Uid = &u.Uid
				}
			}
		case "-group":
			i++
			if i < len(args) {
				if g, ok := ctx.Users.Group(args[i]); ok {
					pred.Gid = &g.Gid
				}
			}
		case "-mtime":
			i++
			if i < len(args) {
				if n, err := strconv.Atoi(args[i]); err == nil {
					cutoff := time.Now().Add(-time.Duration(n) * 24 * time.Hour)
					pred.MtimeMax = &cutoff
				}
			}
		case "-exec":
			i++
			for i < len(args) && args[i] != ";" {
				execArgs = append(execArgs, args[i])
				i++
			}
		}
	}

	paths, err := ctx.VFS.Find(root, ctx.Cwd, pred)
	if err != nil {
		return fmt.Sprintf("find: '%s': %s\n", root, vfsErrText(err)), 1
	}

	if len(execArgs) > 0 {
		return runFindExec(ctx, paths, execArgs)
	}

	var b strings.Builder
	for _, p := range paths {
		b.WriteString(p + "\n")
	}
	return b.String(), 0
}

func findTypeFromLetter(letter string) vfs.InodeType {
	switch letter {
	case "d":
		return vfs.TypeDir
	case "l":
		return vfs.TypeSymlink
	case "p":
		return vfs.TypeFifo
	case "c":
		return vfs.TypeCharDev
	default:
		return vfs.TypeFile
	}
}

// runFindExec substitutes each matched path for `{}` and dispatches the
// command through the same handler table find's caller registered
// (spec §4.1 `-exec`).
func runFindExec(ctx *shell.Context, paths []string, execArgs []string) (string, int) {
	var b strings.Builder
	exit := 0
	for _, p := range paths {
		cmdArgs := make([]string, len(execArgs)-1)
		for i, a := range execArgs[1:] {
			if a == "{}" {
				cmdArgs[i] = p
			} else {
				cmdArgs[i] = a
			}
		}
		handler, ok := Registry[execArgs[0]]
		if !ok {
			return fmt.Sprintf("find: %s: No such command\n", execArgs[0]), 1
		}
		out, code := handler(ctx, cmdArgs, "")
		b.WriteString(out)
		if code != 0 {
			exit = code
		}
	}
	return b.String(), exit
}
