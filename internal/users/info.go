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
	"strings"
	"time"
)

// IdString implements `id [user]`: "uid=N(name) gid=N(name)
// groups=N(name),N(name)...".
func (m *Manager) IdString(username string) (string, error) {
	u, ok := m.users[username]
	if !ok {
		return "", fmt.Errorf("id: %q: no such user", username)
	}

	primaryGroupName := fmt.Sprintf("%d", u.Gid)
	if g, ok := m.GroupByGid(u.Gid); ok {
		primaryGroupName = g.Name
	}

	groupParts := []string{fmt.Sprintf("%d(%s)", u.Gid, primaryGroupName)}
	for _, name := range m.SupplementaryGroups(username) {
		g := m.groups[name]
		groupParts = append(groupParts, fmt.Sprintf("%d(%s)", g.Gid, g.Name))
	}

	return fmt.Sprintf("uid=%d(%s) gid=%s groups=%s",
		u.Uid, u.Username, groupParts[0], strings.Join(groupParts, ",")), nil
}

// Groups implements `groups [user]`: "name : group1 group2 ...".
func (m *Manager) Groups(username string) (string, error) {
	u, ok := m.users[username]
	if !ok {
		return "", fmt.Errorf("groups: %q: no such user", username)
	}

	names := []string{}
	if g, ok := m.GroupByGid(u.Gid); ok {
		names = append(names, g.Name)
	}
	names = append(names, m.SupplementaryGroups(username)...)

	return fmt.Sprintf("%s : %s", username, strings.Join(names, " ")), nil
}

// Getent implements `getent passwd|group [key]`.
func (m *Manager) Getent(database, key string) (string, error) {
	switch database {
	case "passwd":
		if key != "" {
			u, ok := m.users[key]
			if !ok {
				return "", fmt.Errorf("getent: %q: no such entry", key)
			}
			return passwdLine(u), nil
		}
		var lines []string
		for _, name := range m.sortedUsernames() {
			lines = append(lines, passwdLine(m.users[name]))
		}
		return strings.Join(lines, "\n"), nil
	case "group":
		if key != "" {
			g, ok := m.groups[key]
			if !ok {
				return "", fmt.Errorf("getent: %q: no such entry", key)
			}
			return groupLine(g), nil
		}
		var lines []string
		for _, name := range m.sortedGroupNames() {
			lines = append(lines, groupLine(m.groups[name]))
		}
		return strings.Join(lines, "\n"), nil
	default:
		return "", fmt.Errorf("getent: unknown database %q", database)
	}
}

func passwdLine(u *User) string {
	return fmt.Sprintf("%s:x:%d:%d:%s:%s:%s", u.Username, u.Uid, u.Gid, u.GECOS, u.Home, u.Shell)
}

func groupLine(g *Group) string {
	return fmt.Sprintf("%s:x:%d:%s", g.Name, g.Gid, joinComma(g.Members))
}

// RecordLogin appends a new login-history entry, used by `who`/`w`/
// `last`.
func (m *Manager) RecordLogin(username, tty string, at time.Time) {
	m.logins = append(m.logins, LoginRecord{Username: username, TTY: tty, LoginAt: at})
}

// RecordLogout closes the most recent open session for username.
func (m *Manager) RecordLogout(username string, at time.Time) {
	for i := len(m.logins) - 1; i >= 0; i-- {
		if m.logins[i].Username == username && m.logins[i].LogoutAt.IsZero() {
			m.logins[i].LogoutAt = at
			return
		}
	}
}

// Who implements `who`: one line per still-logged-in session.
func (m *Manager) Who() []LoginRecord {
	var out []LoginRecord
	for _, rec := range m.logins {
		if rec.LogoutAt.IsZero() {
			out = append(out, rec)
		}
	}
	return out
}

// W is Who plus the current time, to compute idle/uptime in the
// command layer.
func (m *Manager) W() []LoginRecord {
	return m.Who()
}

// Last returns login history, most recent first (spec's `last`).
func (m *Manager) Last() []LoginRecord {
	out := make([]LoginRecord, len(m.logins))
	for i, rec := range m.logins {
		out[len(m.logins)-1-i] = rec
	}
	return out
}
