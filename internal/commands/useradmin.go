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
	"github.com/mkokutoyori/netsim/internal/users"
)

// Useradd implements `useradd` (spec §4.5).
func Useradd(ctx *shell.Context, args []string, stdin string) (string, int) {
	opts := users.AddUserOptions{CreateHome: true}
	var username string

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-m":
			opts.CreateHome = true
		case "-M":
			opts.CreateHome = false
		case "-c":
			i++
			if i < len(args) {
				opts.GECOS = args[i]
			}
		case "-d":
			i++
			if i < len(args) {
				opts.Home = args[i]
			}
		case "-s":
			i++
			if i < len(args) {
				opts.Shell = args[i]
			}
		case "-g":
			i++
			if i < len(args) {
				if gid, err := strconv.Atoi(args[i]); err == nil {
					opts.PrimaryGid = &gid
				}
			}
		case "-G":
			i++
			if i < len(args) {
				opts.SupplGroups = strings.Split(args[i], ",")
			}
		default:
			username = args[i]
		}
	}
	opts.Username = username

	if err := ctx.Users.AddUser(opts); err != nil {
		return fmt.Sprintf("useradd: %s\n", err), 1
	}
	return "", 0
}

// Usermod implements `usermod`.
func Usermod(ctx *shell.Context, args []string, stdin string) (string, int) {
	var opts users.ModUserOptions
	var username string

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-c":
			i++
			if i < len(args) {
				v := args[i]
				opts.GECOS = &v
			}
		case "-d":
			i++
			if i < len(args) {
				v := args[i]
				opts.Home = &v
			}
		case "-s":
			i++
			if i < len(args) {
				v := args[i]
				opts.Shell = &v
			}
		case "-g":
			i++
			if i < len(args) {
				if gid, err := strconv.Atoi(args[i]); err == nil {
					opts.PrimaryGid = &gid
				}
			}
		case "-L":
			v := true
			opts.Lock = &v
		case "-U":
			v := false
			opts.Lock = &v
		default:
			username = args[i]
		}
	}

	if err := ctx.Users.ModUser(username, opts); err != nil {
		return fmt.Sprintf("usermod: %s\n", err), 1
	}
	return "", 0
}

// Userdel implements `userdel`, with `-r` to remove the home directory.
func Userdel(ctx *shell.Context, args []string, stdin string) (string, int) {
	flags, rest := splitFlags(args)
	removeHome := hasFlag(flags, 'r')
	if len(rest) == 0 {
		return "userdel: missing username\n", 1
	}
	if err := ctx.Users.DelUser(rest[0], removeHome); err != nil {
		return fmt.Sprintf("userdel: %s\n", err), 1
	}
	return "", 0
}

// Passwd implements `passwd [user]`: sets the caller's own password (or,
// as root, any account's).
func Passwd(ctx *shell.Context, args []string, stdin string) (string, int) {
	username := currentUsername(ctx)
	if len(args) > 0 {
		username = args[0]
	}
	password := strings.TrimSuffix(stdin, "\n")
	if err := ctx.Users.SetPassword(username, password); err != nil {
		return fmt.Sprintf("passwd: %s\n", err), 1
	}
	return fmt.Sprintf("passwd: password updated successfully for %s\n", username), 0
}

// Chpasswd implements `chpasswd`: reads "username:password" pairs from
// stdin, one per line.
func Chpasswd(ctx *shell.Context, args []string, stdin string) (string, int) {
	pairs := map[string]string{}
	for _, line := range splitLines(stdin) {
		idx := strings.IndexByte(line, ':')
		if idx < 0 {
			continue
		}
		pairs[line[:idx]] = line[idx+1:]
	}
	if err := ctx.Users.ChPasswd(pairs); err != nil {
		return fmt.Sprintf("chpasswd: %s\n", err), 1
	}
	return "", 0
}

// Chage implements `chage` with `-m -M -W -I -E` aging flags.
func Chage(ctx *shell.Context, args []string, stdin string) (string, int) {
	var opts users.ChageOptions
	var username string

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-m":
			i++
			if i < len(args) {
				if n, err := strconv.Atoi(args[i]); err == nil {
					opts.MinDays = &n
				}
			}
		case "-M":
			i++
			if i < len(args) {
				if n, err := strconv.Atoi(args[i]); err == nil {
					opts.MaxDays = &n
				}
			}
		case "-W":
			i++
			if i < len(args) {
				if n, err := strconv.Atoi(args[i]); err == nil {
					opts.WarnDays = &n
				}
			}
		case "-I":
			i++
			if i < len(args) {
				if n, err := strconv.Atoi(args[i]); err == nil {
					opts.InactiveDays = &n
				}
			}
		case "-E":
			i++
			if i < len(args) {
				if n, err := strconv.Atoi(args[i]); err == nil {
					opts.ExpireDay = &n
				}
			}
		default:
			username = args[i]
		}
	}

	if err := ctx.Users.Chage(username, opts); err != nil {
		return fmt.Sprintf("chage: %s\n", err), 1
	}
	return "", 0
}

// Groupadd implements `groupadd [-g GID] name`.
func Groupadd(ctx *shell.Context, args []string, stdin string) (string, int) {
	var gid *int
	var name string
	for i := 0; i < len(args); i++ {
		if args[i] == "-g" && i+1 < len(args) {
			i++
			if n, err := strconv.Atoi(args[i]); err == nil {
				gid = &n
			}
			continue
		}
		name = args[i]
	}
	if err := ctx.Users.AddGroup(name, gid); err != nil {
		return fmt.Sprintf("groupadd: %s\n", err), 1
	}
	return "", 0
}

// Groupmod implements `groupmod [-n NEWNAME] [-g GID] name`.
func Groupmod(ctx *shell.Context, args []string, stdin string) (string, int) {
	var newName string
	var newGid *int
	var name string
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-n":
			i++
			if i < len(args) {
				newName = args[i]
			}
		case "-g":
			i++
			if i < len(args) {
				if n, err := strconv.Atoi(args[i]); err == nil {
					newGid = &n
				}
			}
		default:
			name = args[i]
		}
	}
	if err := ctx.Users.ModGroup(name, newName, newGid); err != nil {
		return fmt.Sprintf("groupmod: %s\n", err), 1
	}
	return "", 0
}

// Groupdel implements `groupdel name`.
func Groupdel(ctx *shell.Context, args []string, stdin string) (string, int) {
	if len(args) == 0 {
		return "groupdel: missing group name\n", 1
	}
	if err := ctx.Users.DelGroup(args[0]); err != nil {
		return fmt.Sprintf("groupdel: %s\n", err), 1
	}
	return "", 0
}

// Gpasswd implements `gpasswd -a user group` / `gpasswd -d user group`.
func Gpasswd(ctx *shell.Context, args []string, stdin string) (string, int) {
	if len(args) < 3 {
		return "gpasswd: usage: gpasswd -a|-d user group\n", 1
	}
	mode, user, group := args[0], args[1], args[2]
	var err error
	switch mode {
	case "-a":
		err = ctx.Users.Gpasswd(group, user, "")
	case "-d":
		err = ctx.Users.Gpasswd(group, "", user)
	default:
		return "gpasswd: usage: gpasswd -a|-d user group\n", 1
	}
	if err != nil {
		return fmt.Sprintf("gpasswd: %s\n", err), 1
	}
	return "", 0
}

// Id implements `id [user]`.
func Id(ctx *shell.Context, args []string, stdin string) (string, int) {
	username := currentUsername(ctx)
	if len(args) > 0 {
		username = args[0]
	}
	out, err := ctx.Users.IdString(username)
	if err != nil {
		return fmt.Sprintf("id: %s\n", err), 1
	}
	return out + "\n", 0
}

// Whoami implements `whoami`.
func Whoami(ctx *shell.Context, args []string, stdin string) (string, int) {
	return currentUsername(ctx) + "\n", 0
}

// GroupsCmd implements `groups [user]`.
func GroupsCmd(ctx *shell.Context, args []string, stdin string) (string, int) {
	username := currentUsername(ctx)
	if len(args) > 0 {
		username = args[0]
	}
	out, err := ctx.Users.Groups(username)
	if err != nil {
		return fmt.Sprintf("groups: %s\n", err), 1
	}
	return out + "\n", 0
}

// Getent implements `getent passwd|group [key]`.
func Getent(ctx *shell.Context, args []string, stdin string) (string, int) {
	if len(args) == 0 {
		return "getent: missing database\n", 1
	}
	db := args[0]
	key := ""
	if len(args) > 1 {
		key = args[1]
	}
	out, err := ctx.Users.Getent(db, key)
	if err != nil {
		return fmt.Sprintf("getent: %s\n", err), 2
	}
	return out + "\n", 0
}

// Who implements `who`.
func Who(ctx *shell.Context, args []string, stdin string) (string, int) {
	var b strings.Builder
	for _, rec := range ctx.Users.Who() {
		fmt.Fprintf(&b, "%-10s %-8s %s\n", rec.Username, rec.TTY, rec.LoginAt.Format("2006-01-02 15:04"))
	}
	return b.String(), 0
}

// W implements `w`.
func W(ctx *shell.Context, args []string, stdin string) (string, int) {
	var b strings.Builder
	b.WriteString("USER     TTY      LOGIN@          IDLE\n")
	now := time.Now()
	for _, rec := range ctx.Users.W() {
		idle := now.Sub(rec.LoginAt)
		fmt.Fprintf(&b, "%-8s %-8s %-15s %s\n", rec.Username, rec.TTY, rec.LoginAt.Format("15:04"), idle.Round(time.Second))
	}
	return b.String(), 0
}

// Last implements `last`: most recent session first.
func Last(ctx *shell.Context, args []string, stdin string) (string, int) {
	var b strings.Builder
	for _, rec := range ctx.Users.Last() {
		end := "still logged in"
		if !rec.LogoutAt.IsZero() {
			end = rec.LogoutAt.Format("Mon Jan _2 15:04")
		}
		fmt.Fprintf(&b, "%-10s %-8s %s - %s\n", rec.Username, rec.TTY, rec.LoginAt.Format("Mon Jan _2 15:04"), end)
	}
	return b.String(), 0
}

func currentUsername(ctx *shell.Context) string {
	out, _ := ctx.Users.Getent("passwd", "")
	for _, line := range strings.Split(out, "\n") {
		parts := strings.SplitN(line, ":", 4)
		if len(parts) < 3 {
			continue
		}
		uidStr := parts[2]
		if uidStr == strconv.Itoa(ctx.Uid) {
			return parts[0]
		}
	}
	return "root"
}
