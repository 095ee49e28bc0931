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
)

// AddUserOptions configures `useradd`. An empty Shell defaults to
// /bin/bash; an empty Home defaults to /home/<username>. If PrimaryGid
// is nil, a private group matching the username is created, the usual
// distro default.
type AddUserOptions struct {
	Username    string
	GECOS       string
	Home        string
	Shell       string
	PrimaryGid  *int
	SupplGroups []string
	CreateHome  bool
}

const defaultSkelBashrc = "# ~/.bashrc\n"
const defaultSkelBashLogout = "# ~/.bash_logout\n"
const defaultSkelProfile = "# ~/.profile\n"

// AddUser creates an account (and, unless a primary gid is supplied, a
// matching private group) and, if requested, a populated home directory
// (spec §4.5, §8 example 3).
func (m *Manager) AddUser(opts AddUserOptions) error {
	if opts.Username == "" {
		return fmt.Errorf("useradd: empty username")
	}
	if _, exists := m.users[opts.Username]; exists {
		return fmt.Errorf("useradd: user %q already exists", opts.Username)
	}

	uid, err := m.allocUid()
	if err != nil {
		return err
	}

	gid := uid
	if opts.PrimaryGid != nil {
		gid = *opts.PrimaryGid
		if _, ok := m.GroupByGid(gid); !ok {
			return fmt.Errorf("useradd: group %d does not exist", gid)
		}
	} else {
		m.groups[opts.Username] = &Group{Name: opts.Username, Gid: gid}
		if gid >= m.nextGid {
			m.nextGid = gid + 1
		}
	}

	home := opts.Home
	if home == "" {
		home = "/home/" + opts.Username
	}
	shell := opts.Shell
	if shell == "" {
		shell = "/bin/bash"
	}

	u := &User{
		Username: opts.Username, Uid: uid, Gid: gid, GECOS: opts.GECOS, Home: home, Shell: shell,
		LastChangeDay: daysSinceEpoch(m.clock),
		MinDays:       0, MaxDays: 99999, WarnDays: 7, InactiveDays: unsetAging, ExpireDay: unsetAging,
	}
	u.Locked = true // no password set yet, matches useradd's default locked state
	m.users[opts.Username] = u

	for _, gname := range opts.SupplGroups {
		g, ok := m.groups[gname]
		if !ok {
			continue
		}
		g.Members = append(g.Members, opts.Username)
	}

	if opts.CreateHome {
		_ = m.vfs.Mkdirp(home, "/", 0o022)
		_ = m.vfs.Chown(home, "/", uid, gid, false)
		for name, content := range map[string]string{
			".bashrc":      defaultSkelBashrc,
			".bash_logout": defaultSkelBashLogout,
			".profile":     defaultSkelProfile,
		} {
			path := home + "/" + name
			_ = m.vfs.WriteFile(path, "/", []byte(content), false, 0o022)
			_ = m.vfs.Chown(path, "/", uid, gid, false)
		}
	}

	m.syncToFilesystem()
	return nil
}

// ModUserOptions configures `usermod`; nil/empty fields leave the
// existing value unchanged.
type ModUserOptions struct {
	GECOS      *string
	Home       *string
	Shell      *string
	PrimaryGid *int
	Lock       *bool
}

func (m *Manager) ModUser(username string, opts ModUserOptions) error {
	u, ok := m.users[username]
	if !ok {
		return fmt.Errorf("usermod: user %q does not exist", username)
	}
	if opts.GECOS != nil {
		u.GECOS = *opts.GECOS
	}
	if opts.Home != nil {
		u.Home = *opts.Home
	}
	if opts.Shell != nil {
		u.Shell = *opts.Shell
	}
	if opts.PrimaryGid != nil {
		if _, ok := m.GroupByGid(*opts.PrimaryGid); !ok {
			return fmt.Errorf("usermod: group %d does not exist", *opts.PrimaryGid)
		}
		u.Gid = *opts.PrimaryGid
	}
	if opts.Lock != nil {
		u.Locked = *opts.Lock
	}

	m.syncToFilesystem()
	return nil
}

// DelUser removes the account, and its home directory if removeHome.
func (m *Manager) DelUser(username string, removeHome bool) error {
	u, ok := m.users[username]
	if !ok {
		return fmt.Errorf("userdel: user %q does not exist", username)
	}

	for _, g := range m.groups {
		g.Members = removeMember(g.Members, username)
	}
	if g, ok := m.groups[username]; ok && g.Gid == u.Gid {
		delete(m.groups, username)
	}
	delete(m.users, username)

	if removeHome {
		_ = m.vfs.Rmrf(u.Home, "/")
	}

	m.syncToFilesystem()
	return nil
}

func removeMember(members []string, name string) []string {
	out := members[:0]
	for _, m := range members {
		if m != name {
			out = append(out, m)
		}
	}
	return out
}

// SetPassword implements `passwd`: sets the plaintext credential and
// unlocks the account.
func (m *Manager) SetPassword(username, password string) error {
	u, ok := m.users[username]
	if !ok {
		return fmt.Errorf("passwd: user %q does not exist", username)
	}
	u.Password = password
	u.Locked = false
	u.LastChangeDay = daysSinceEpoch(m.clock)

	m.syncToFilesystem()
	return nil
}

// ChageOptions carries the aging-field updates for `chage`: a nil field
// is left unchanged, and -1 clears a field (rendered empty in shadow).
type ChageOptions struct {
	MinDays      *int
	MaxDays      *int
	WarnDays     *int
	InactiveDays *int
	ExpireDay    *int
}

func (m *Manager) Chage(username string, opts ChageOptions) error {
	u, ok := m.users[username]
	if !ok {
		return fmt.Errorf("chage: user %q does not exist", username)
	}
	if opts.MinDays != nil {
		u.MinDays = *opts.MinDays
	}
	if opts.MaxDays != nil {
		u.MaxDays = *opts.MaxDays
	}
	if opts.WarnDays != nil {
		u.WarnDays = *opts.WarnDays
	}
	if opts.InactiveDays != nil {
		u.InactiveDays = *opts.InactiveDays
	}
	if opts.ExpireDay != nil {
		u.ExpireDay = *opts.ExpireDay
	}

	m.syncToFilesystem()
	return nil
}

// AddGroup implements `groupadd`.
func (m *Manager) AddGroup(name string, gid *int) error {
	if _, exists := m.groups[name]; exists {
		return fmt.Errorf("groupadd: group %q already exists", name)
	}

	var g int
	if gid != nil {
		if _, ok := m.GroupByGid(*gid); ok {
			return fmt.Errorf("groupadd: gid %d already in use", *gid)
		}
		g = *gid
		if g >= m.nextGid {
			m.nextGid = g + 1
		}
	} else {
		var err error
		g, err = m.allocGid()
		if err != nil {
			return err
		}
	}

	m.groups[name] = &Group{Name: name, Gid: g}
	m.syncToFilesystem()
	return nil
}

// ModGroup implements `groupmod`.
func (m *Manager) ModGroup(name string, newName string, newGid *int) error {
	g, ok := m.groups[name]
	if !ok {
		return fmt.Errorf("groupmod: group %q does not exist", name)
	}
	if newGid != nil {
		g.Gid = *newGid
	}
	if newName != "" && newName != name {
		delete(m.groups, name)
		g.Name = newName
		m.groups[newName] = g
	}

	m.syncToFilesystem()
	return nil
}

// DelGroup implements `groupdel`.
func (m *Manager) DelGroup(name string) error {
	g, ok := m.groups[name]
	if !ok {
		return fmt.Errorf("groupdel: group %q does not exist", name)
	}
	for _, u := range m.users {
		if u.Gid == g.Gid {
			return fmt.Errorf("groupdel: cannot remove the primary group of user %q", u.Username)
		}
	}
	delete(m.groups, name)

	m.syncToFilesystem()
	return nil
}

// Gpasswd implements `gpasswd`: adds and/or removes one member. It does
// not set a group password or designate group admins.
func (m *Manager) Gpasswd(name string, addMember, delMember string) error {
	g, ok := m.groups[name]
	if !ok {
		return fmt.Errorf("gpasswd: group %q does not exist", name)
	}
	if addMember != "" {
		g.Members = append(g.Members, addMember)
	}
	if delMember != "" {
		g.Members = removeMember(g.Members, delMember)
	}

	m.syncToFilesystem()
	return nil
}

// ChPasswd applies username:password pairs in bulk, one SetPassword
// call per line's worth of input.
func (m *Manager) ChPasswd(pairs map[string]string) error {
	for username, password := range pairs {
		if err := m.SetPassword(username, password); err != nil {
			return err
		}
	}
	return nil
}

// SupplementaryGroups returns the names of every group (besides the
// primary) username belongs to, in the order `id`/`groups` print them.
func (m *Manager) SupplementaryGroups(username string) []string {
	var out []string
	for _, name := range m.sortedGroupNames() {
		g := m.groups[name]
		for _, member := range g.Members {
			if member == username {
				out = append(out, name)
				break
			}
		}
	}
	return out
}
