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

import "github.com/mkokutoyori/netsim/internal/shell"

// Registry is the full command table, built once by Register and
// reused by `find -exec` to invoke command handlers by name.
var Registry map[string]shell.Handler

// Register builds the dispatch table passed to shell.NewExecutor,
// assembling every command the library offers (spec §4.3 summary
// table).
func Register() map[string]shell.Handler {
	table := map[string]shell.Handler{
		"cat":   Cat,
		"echo":  Echo,
		"pwd":   Pwd,
		"touch": Touch,
		"mkdir": Mkdir,
		"rmdir": Rmdir,
		"rm":    Rm,
		"cp":    Cp,
		"mv":    Mv,
		"ln":    Ln,
		"tee":   Tee,

		"ls":    Ls,
		"head":  Head,
		"tail":  Tail,
		"wc":    Wc,
		"sort":  Sort,
		"uniq":  Uniq,
		"cut":   Cut,
		"tr":    Tr,
		"grep":  Grep,
		"awk":   Awk,
		"find":  Find,
		"chmod": Chmod,
		"chown": Chown,
		"chgrp": Chgrp,
		"stat":  Stat,
		"ip":    Ip,

		"useradd":  Useradd,
		"adduser":  Useradd,
		"usermod":  Usermod,
		"userdel":  Userdel,
		"deluser":  Userdel,
		"passwd":   Passwd,
		"chpasswd": Chpasswd,
		"chage":    Chage,
		"groupadd": Groupadd,
		"groupmod": Groupmod,
		"groupdel": Groupdel,
		"gpasswd":  Gpasswd,
		"id":       Id,
		"whoami":   Whoami,
		"groups":   GroupsCmd,
		"who":      Who,
		"w":        W,
		"last":     Last,
		"getent":   Getent,

		"journalctl": Journalctl,
	}

	Registry = table
	return table
}
