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
	"github.com/mkokutoyori/netsim/internal/shell"
	"github.com/mkokutoyori/netsim/internal/vfs"
)

// accessCheck implements the "higher-level access checks" spec §4.1
// reserves for the shell kernel (the VFS itself stays permission-
// agnostic; commands consult this before mutating). Root bypasses every
// check except the execute bit on directories (spec §7 kind 3).
func accessCheck(ctx *shell.Context, ino *vfs.Inode, want byte) bool {
	if ctx.Uid == 0 {
		return true
	}

	perm := vfs.FormatPermissions(ino)[1:] // drop the type char
	var triple string
	switch {
	case ino.Uid == ctx.Uid:
		triple = perm[0:3]
	case ino.Gid == ctx.Gid:
		triple = perm[3:6]
	default:
		triple = perm[6:9]
	}

	switch want {
	case 'r':
		return triple[0] == 'r'
	case 'w':
		return triple[1] == 'w'
	case 'x':
		c := triple[2]
		return c == 'x' || c == 's' || c == 't'
	default:
		return false
	}
}

func canRead(ctx *shell.Context, ino *vfs.Inode) bool  { return accessCheck(ctx, ino, 'r') }
func canWrite(ctx *shell.Context, ino *vfs.Inode) bool { return accessCheck(ctx, ino, 'w') }
func canExec(ctx *shell.Context, ino *vfs.Inode) bool  { return accessCheck(ctx, ino, 'x') }
