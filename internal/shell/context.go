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
	"github.com/mkokutoyori/netsim/common"
	"github.com/mkokutoyori/netsim/internal/journal"
	"github.com/mkokutoyori/netsim/internal/netctx"
	"github.com/mkokutoyori/netsim/internal/users"
	"github.com/mkokutoyori/netsim/internal/vfs"
)

// Context is the (vfs, userMgr, cwd, umask, uid, gid) tuple every
// command handler runs against (spec §4.2 ShellContext).
type Context struct {
	VFS     *vfs.FS
	Users   *users.Manager
	Net     netctx.Context
	Journal *journal.Manager
	Metrics common.MetricHandle
	Cwd     string
	Umask   uint32
	Uid     int
	Gid     int
	Env     map[string]string
}

// suFrame is one entry of the su stack: the context to restore when the
// pushed shell exits.
type suFrame struct {
	Username string
	Uid      int
	Gid      int
	Cwd      string
	Umask    uint32
}

// Handler is a command implementation: a pure function of context,
// arguments, and piped stdin, returning the text it produced and its
// exit code (spec §4.3).
type Handler func(ctx *Context, args []string, stdin string) (string, int)

// rootOnlyCommands fail with "Permission denied" for non-root callers
// (spec §4.2 Root-only guard).
var rootOnlyCommands = map[string]bool{
	"useradd": true, "adduser": true, "usermod": true, "userdel": true, "deluser": true,
	"groupadd": true, "groupmod": true, "groupdel": true,
	"chpasswd": true, "chage": true, "chown": true, "chgrp": true,
}
