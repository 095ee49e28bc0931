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
	"testing"

	"github.com/mkokutoyori/netsim/clock"
	"github.com/mkokutoyori/netsim/internal/vfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *Manager {
	fs := vfs.New(&clock.FakeClock{}, 0, 0)
	require.NoError(t, fs.Mkdirp("/etc", "/", 0o022))
	require.NoError(t, fs.Mkdirp("/home", "/", 0o022))
	return New(fs, &clock.FakeClock{})
}

func TestNew_SeedsRootAndSyncsFiles(t *testing.T) {
	m := newTestManager(t)

	data, err := m.vfs.ReadFile("/etc/passwd", "/")
	require.NoError(t, err)
	assert.Contains(t, string(data), "root:x:0:0:")

	data, err = m.vfs.ReadFile("/etc/group", "/")
	require.NoError(t, err)
	assert.Contains(t, string(data), "root:x:0:")
}

func TestAddUser_CreatesPrivateGroupAndHome(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.AddUser(AddUserOptions{Username: "alice", CreateHome: true}))

	u, ok := m.User("alice")
	require.True(t, ok)
	assert.Equal(t, 1000, u.Uid)
	assert.Equal(t, 1000, u.Gid)

	g, ok := m.GroupByGid(1000)
	require.True(t, ok)
	assert.Equal(t, "alice", g.Name)

	for _, f := range []string{"/home/alice/.bashrc", "/home/alice/.bash_logout", "/home/alice/.profile"} {
		ino, err := m.vfs.Stat(f, "/", true)
		require.NoError(t, err, f)
		assert.Equal(t, 1000, ino.Uid)
	}

	idStr, err := m.IdString("alice")
	require.NoError(t, err)
	assert.Equal(t, "uid=1000(alice) gid=1000(alice) groups=1000(alice)", idStr)
}

func TestAddUser_UidsMonotonicallyIncrease(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.AddUser(AddUserOptions{Username: "alice"}))
	require.NoError(t, m.AddUser(AddUserOptions{Username: "bob"}))

	alice, _ := m.User("alice")
	bob, _ := m.User("bob")
	assert.Equal(t, 1000, alice.Uid)
	assert.Equal(t, 1001, bob.Uid)
}

func TestAddUser_Duplicate(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.AddUser(AddUserOptions{Username: "alice"}))
	assert.Error(t, m.AddUser(AddUserOptions{Username: "alice"}))
}

func TestDelUser_RestoresUserTable(t *testing.T) {
	m := newTestManager(t)
	before := len(m.users)
	require.NoError(t, m.AddUser(AddUserOptions{Username: "alice", CreateHome: true}))
	require.NoError(t, m.DelUser("alice", true))

	assert.Len(t, m.users, before)
	_, ok := m.User("alice")
	assert.False(t, ok)
	_, err := m.vfs.Stat("/home/alice", "/", true)
	assert.Error(t, err)
}

func TestSetPassword_UnlocksAccount(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.AddUser(AddUserOptions{Username: "alice"}))
	alice, _ := m.User("alice")
	assert.True(t, alice.Locked)

	require.NoError(t, m.SetPassword("alice", "hunter2"))
	assert.False(t, alice.Locked)
	assert.Equal(t, "hunter2", alice.Password)

	data, err := m.vfs.ReadFile("/etc/shadow", "/")
	require.NoError(t, err)
	assert.Contains(t, string(data), "alice:hunter2:")
}

func TestGroupAdd_ModGroup_DelGroup(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.AddGroup("devs", nil))
	g, ok := m.Group("devs")
	require.True(t, ok)
	assert.Equal(t, 1000, g.Gid)

	require.NoError(t, m.ModGroup("devs", "engineers", nil))
	_, ok = m.Group("devs")
	assert.False(t, ok)
	g, ok = m.Group("engineers")
	require.True(t, ok)
	assert.Equal(t, 1000, g.Gid)

	require.NoError(t, m.DelGroup("engineers"))
	_, ok = m.Group("engineers")
	assert.False(t, ok)
}

func TestDelGroup_RefusesWhenPrimaryGroup(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.AddUser(AddUserOptions{Username: "alice"}))
	assert.Error(t, m.DelGroup("alice"))
}

func TestGpasswd_AddAndRemoveMember(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.AddGroup("devs", nil))
	require.NoError(t, m.AddUser(AddUserOptions{Username: "alice"}))

	require.NoError(t, m.Gpasswd("devs", "alice", ""))
	assert.ElementsMatch(t, []string{"devs"}, m.SupplementaryGroups("alice"))

	require.NoError(t, m.Gpasswd("devs", "", "alice"))
	assert.Empty(t, m.SupplementaryGroups("alice"))
}

func TestGetent_PasswdAndGroup(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.AddUser(AddUserOptions{Username: "alice"}))

	line, err := m.Getent("passwd", "alice")
	require.NoError(t, err)
	assert.Contains(t, line, "alice:x:1000:1000:")

	_, err = m.Getent("passwd", "nope")
	assert.Error(t, err)
}

func TestLoginHistory_WhoAndLast(t *testing.T) {
	m := newTestManager(t)
	now := m.clock.Now()
	m.RecordLogin("alice", "pts/0", now)
	m.RecordLogin("bob", "pts/1", now)
	m.RecordLogout("alice", now)

	who := m.Who()
	require.Len(t, who, 1)
	assert.Equal(t, "bob", who[0].Username)

	last := m.Last()
	require.Len(t, last, 2)
	assert.Equal(t, "bob", last[0].Username, "last shows most recent first")
}

func TestChage_UpdatesAgingFields(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.AddUser(AddUserOptions{Username: "alice"}))

	maxDays := 30
	require.NoError(t, m.Chage("alice", ChageOptions{MaxDays: &maxDays}))
	alice, _ := m.User("alice")
	assert.Equal(t, 30, alice.MaxDays)
}
