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

package users

import (
	"fmt"
	"sort"

	"github.com/mkokutoyori/netsim/cfg"
	"github.com/mkokutoyori/netsim/clock"
	"github.com/mkokutoyori/netsim/internal/vfs"
)

// Manager owns the users and groups tables and keeps /etc/passwd,
// /etc/shadow, and /etc/group synchronized with them. Every mutating
// method calls syncToFilesystem before returning (spec §4.5).
type Manager struct {
	vfs   *vfs.FS
	clock clock.Clock

	users  map[string]*User
	groups map[string]*Group

	nextUid int
	nextGid int

	logins []LoginRecord
}

// New seeds the manager with a root account/group and writes the
// initial /etc/passwd, /etc/shadow, /etc/group.
func New(fs *vfs.FS, clk clock.Clock) *Manager {
	m := &Manager{
		vfs:     fs,
		clock:   clk,
		users:   make(map[string]*User),
		groups:  make(map[string]*Group),
		nextUid: cfg.FirstUnprivilegedUid,
		nextGid: cfg.FirstUnprivilegedGid,
	}

	m.users["root"] = &User{
		Username: "root", Uid: 0, Gid: 0, GECOS: "root", Home: "/root", Shell: "/bin/bash",
		Password: "", LastChangeDay: daysSinceEpoch(clk),
		MinDays: 0, MaxDays: 99999, WarnDays: 7, InactiveDays: unsetAging, ExpireDay: unsetAging,
	}
	m.groups["root"] = &Group{Name: "root", Gid: 0}

	m.syncToFilesystem()
	return m
}

func daysSinceEpoch(clk clock.Clock) int {
	return int(clk.Now().Unix() / 86400)
}

// User looks up an account by name.
func (m *Manager) User(username string) (*User, bool) {
	u, ok := m.users[username]
	return u, ok
}

// Group looks up a group by name.
func (m *Manager) Group(name string) (*Group, bool) {
	g, ok := m.groups[name]
	return g, ok
}

// GroupByGid finds the group with the given gid, if any.
func (m *Manager) GroupByGid(gid int) (*Group, bool) {
	for _, g := range m.groups {
		if g.Gid == gid {
			return g, true
		}
	}
	return nil, false
}

// allocUid returns the next free uid >= FirstUnprivilegedUid and below
// LastValidId, and advances nextUid past it (spec §4.5 invariant).
func (m *Manager) allocUid() (int, error) {
	for m.nextUid < cfg.LastValidId {
		uid := m.nextUid
		m.nextUid++
		if !m.uidInUse(uid) {
			return uid, nil
		}
	}
	return 0, fmt.Errorf("no free uid below %d", cfg.LastValidId)
}

func (m *Manager) allocGid() (int, error) {
	for m.nextGid < cfg.LastValidId {
		gid := m.nextGid
		m.nextGid++
		if !m.gidInUse(gid) {
			return gid, nil
		}
	}
	return 0, fmt.Errorf("no free gid below %d", cfg.LastValidId)
}

func (m *Manager) uidInUse(uid int) bool {
	for _, u := range m.users {
		if u.Uid == uid {
			return true
		}
	}
	return false
}

func (m *Manager) gidInUse(gid int) bool {
	for _, g := range m.groups {
		if g.Gid == gid {
			return true
		}
	}
	return false
}

// sortedUsernames returns account names sorted for deterministic file
// output.
func (m *Manager) sortedUsernames() []string {
	names := make([]string, 0, len(m.users))
	for n := range m.users {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (m *Manager) sortedGroupNames() []string {
	names := make([]string, 0, len(m.groups))
	for n := range m.groups {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// syncToFilesystem rewrites /etc/passwd, /etc/shadow, /etc/group from
// the in-memory tables (spec §4.5, §6 file formats).
func (m *Manager) syncToFilesystem() {
	var passwd, shadow, group string

	for _, name := range m.sortedUsernames() {
		u := m.users[name]
		passwd += fmt.Sprintf("%s:x:%d:%d:%s:%s:%s\n", u.Username, u.Uid, u.Gid, u.GECOS, u.Home, u.Shell)

		pwField := u.Password
		if u.Locked {
			pwField = "!" + pwField
		}
		shadow += fmt.Sprintf("%s:%s:%s:%s:%s:%s:%s:%s:\n",
			u.Username, pwField,
			agingField(u.LastChangeDay), agingField(u.MinDays), agingField(u.MaxDays),
			agingField(u.WarnDays), agingField(u.InactiveDays), agingField(u.ExpireDay))
	}

	for _, name := range m.sortedGroupNames() {
		g := m.groups[name]
		group += fmt.Sprintf("%s:x:%d:%s\n", g.Name, g.Gid, joinComma(g.Members))
	}

	_ = m.vfs.WriteFile("/etc/passwd", "/", []byte(passwd), false, 0o022)
	_ = m.vfs.WriteFile("/etc/shadow", "/", []byte(shadow), false, 0o022)
	_ = m.vfs.WriteFile("/etc/group", "/", []byte(group), false, 0o022)
}

func agingField(v int) string {
	if v == unsetAging {
		return ""
	}
	return fmt.Sprintf("%d", v)
}

func joinComma(ss []string) string {
	out := ""
	for i, s := range ss {
		if i > 0 {
			out += ","
		}
		out += s
	}
	return out
}
