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
	"testing"
	"time"

	"github.com/mkokutoyori/netsim/clock"
	"github.com/mkokutoyori/netsim/internal/shell"
	"github.com/mkokutoyori/netsim/internal/users"
	"github.com/mkokutoyori/netsim/internal/vfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserCtx(t *testing.T) *shell.Context {
	fs := vfs.New(clock.NewSimulatedClock(time.Unix(0, 0)), 0, 0)
	require.NoError(t, fs.Mkdirp("/home", "/", 0o022))
	return &shell.Context{
		VFS: fs, Users: users.New(fs, clock.NewSimulatedClock(time.Unix(0, 0))),
		Cwd: "/", Uid: 0, Env: map[string]string{},
	}
}

func TestUseradd_CreatesAccount(t *testing.T) {
	ctx := newUserCtx(t)
	out, code := Useradd(ctx, []string{"-c", "Alice", "-s", "/bin/bash", "alice"}, "")
	assert.Empty(t, out)
	assert.Equal(t, 0, code)

	u, ok := ctx.Users.User("alice")
	require.True(t, ok)
	assert.Equal(t, "Alice", u.GECOS)
	assert.Equal(t, "/bin/bash", u.Shell)
}

func TestUseradd_DuplicateUsernameErrors(t *testing.T) {
	ctx := newUserCtx(t)
	_, code := Useradd(ctx, []string{"bob"}, "")
	require.Equal(t, 0, code)

	out, code := Useradd(ctx, []string{"bob"}, "")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "useradd:")
}

func TestUserdel_RemovesAccount(t *testing.T) {
	ctx := newUserCtx(t)
	_, code := Useradd(ctx, []string{"carol"}, "")
	require.Equal(t, 0, code)

	out, code := Userdel(ctx, []string{"carol"}, "")
	assert.Empty(t, out)
	assert.Equal(t, 0, code)

	_, ok := ctx.Users.User("carol")
	assert.False(t, ok)
}

func TestPasswd_SetsPasswordFromStdin(t *testing.T) {
	ctx := newUserCtx(t)
	_, code := Useradd(ctx, []string{"dave"}, "")
	require.Equal(t, 0, code)

	out, code := Passwd(ctx, []string{"dave"}, "hunter2\n")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "updated successfully")
}

func TestGroupadd_AndGpasswdAddsMember(t *testing.T) {
	ctx := newUserCtx(t)
	_, code := Groupadd(ctx, []string{"ops"}, "")
	require.Equal(t, 0, code)
	_, code = Useradd(ctx, []string{"erin"}, "")
	require.Equal(t, 0, code)

	out, code := Gpasswd(ctx, []string{"-a", "erin", "ops"}, "")
	assert.Empty(t, out)
	assert.Equal(t, 0, code)
	assert.Contains(t, ctx.Users.SupplementaryGroups("erin"), "ops")
}

func TestGroupdel_RemovesGroup(t *testing.T) {
	ctx := newUserCtx(t)
	_, code := Groupadd(ctx, []string{"temp"}, "")
	require.Equal(t, 0, code)

	out, code := Groupdel(ctx, []string{"temp"}, "")
	assert.Empty(t, out)
	assert.Equal(t, 0, code)

	_, ok := ctx.Users.Group("temp")
	assert.False(t, ok)
}

func TestWhoami_ReportsRootByDefault(t *testing.T) {
	ctx := newUserCtx(t)
	out, code := Whoami(ctx, nil, "")
	assert.Equal(t, 0, code)
	assert.Equal(t, "root\n", out)
}

func TestId_ReportsUnknownUser(t *testing.T) {
	ctx := newUserCtx(t)
	out, code := Id(ctx, []string{"nobody"}, "")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "id:")
}

func TestGetent_PasswdLookupByKey(t *testing.T) {
	ctx := newUserCtx(t)
	_, code := Useradd(ctx, []string{"frank"}, "")
	require.Equal(t, 0, code)

	out, code := Getent(ctx, []string{"passwd", "frank"}, "")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "frank:")
}
