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

func newPermCtx(t *testing.T) *shell.Context {
	fs := vfs.New(clock.NewSimulatedClock(time.Unix(0, 0)), 0, 0)
	require.NoError(t, fs.Touch("/file.txt", "/", 0o022))
	mgr := users.New(fs, clock.NewSimulatedClock(time.Unix(0, 0)))
	require.NoError(t, mgr.AddGroup("ops", nil))
	require.NoError(t, mgr.AddUser(users.AddUserOptions{Username: "alice"}))
	return &shell.Context{VFS: fs, Users: mgr, Cwd: "/", Env: map[string]string{}}
}

func TestChmod_OctalMode(t *testing.T) {
	ctx := newPermCtx(t)
	out, code := Chmod(ctx, []string{"644", "/file.txt"}, "")
	assert.Empty(t, out)
	assert.Equal(t, 0, code)

	ino, err := ctx.VFS.Stat("/file.txt", "/", false)
	require.NoError(t, err)
	assert.Equal(t, uint32(0o644), ino.Mode&vfs.ModePerm)
}

func TestChmod_SymbolicMode(t *testing.T) {
	ctx := newPermCtx(t)
	_, code := Chmod(ctx, []string{"u+x,g-w", "/file.txt"}, "")
	require.Equal(t, 0, code)

	ino, err := ctx.VFS.Stat("/file.txt", "/", false)
	require.NoError(t, err)
	assert.NotZero(t, ino.Mode&0o100)
}

func TestChmod_InvalidModeReportsError(t *testing.T) {
	ctx := newPermCtx(t)
	out, code := Chmod(ctx, []string{"zzz", "/file.txt"}, "")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "invalid mode")
}

func TestChmod_MissingFileReportsError(t *testing.T) {
	ctx := newPermCtx(t)
	out, code := Chmod(ctx, []string{"644", "/nope.txt"}, "")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "cannot access")
}

func TestChown_ChangesOwnerAndGroup(t *testing.T) {
	ctx := newPermCtx(t)
	out, code := Chown(ctx, []string{"alice:ops", "/file.txt"}, "")
	assert.Empty(t, out)
	assert.Equal(t, 0, code)

	ino, err := ctx.VFS.Stat("/file.txt", "/", false)
	require.NoError(t, err)
	alice, _ := ctx.Users.User("alice")
	ops, _ := ctx.Users.Group("ops")
	assert.Equal(t, alice.Uid, ino.Uid)
	assert.Equal(t, ops.Gid, ino.Gid)
}

func TestChgrp_ChangesGroupOnly(t *testing.T) {
	ctx := newPermCtx(t)
	before, err := ctx.VFS.Stat("/file.txt", "/", false)
	require.NoError(t, err)

	out, code := Chgrp(ctx, []string{"ops", "/file.txt"}, "")
	assert.Empty(t, out)
	assert.Equal(t, 0, code)

	after, err := ctx.VFS.Stat("/file.txt", "/", false)
	require.NoError(t, err)
	ops, _ := ctx.Users.Group("ops")
	assert.Equal(t, ops.Gid, after.Gid)
	assert.Equal(t, before.Uid, after.Uid)
}
