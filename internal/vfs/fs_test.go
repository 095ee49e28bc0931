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

package vfs

import (
	"testing"

	"github.com/mkokutoyori/netsim/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFS() *FS {
	return New(&clock.FakeClock{}, 0, 0)
}

func TestNormalize(t *testing.T) {
	cases := []struct {
		path, cwd, want string
	}{
		{"/a/b", "/x", "/a/b"},
		{"b", "/a", "/a/b"},
		{"../b", "/a/c", "/a/b"},
		{"./b", "/a", "/a/b"},
		{"", "/a", "/a"},
		{"/a//b/", "/x", "/a/b"},
		{"../../b", "/a", "/b"},
		{"/", "/a", "/"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Normalize(tc.path, tc.cwd), "path=%q cwd=%q", tc.path, tc.cwd)
	}
}

func TestFS_RootExists(t *testing.T) {
	fs := newTestFS()
	root := fs.Inode(fs.RootID())
	require.NotNil(t, root)
	assert.Equal(t, TypeDir, root.Type)
	assert.Equal(t, uint32(0o755), root.Mode)
}

func TestTouch_CreatesThenRefreshes(t *testing.T) {
	fs := newTestFS()
	require.NoError(t, fs.Touch("/a", "/", 0o022))

	ino, err := fs.Stat("/a", "/", true)
	require.NoError(t, err)
	assert.Equal(t, TypeFile, ino.Type)
	assert.Equal(t, uint32(0o644), ino.Mode)

	mtimeBefore := ino.Mtime
	require.NoError(t, fs.Touch("/a", "/", 0o022))
	assert.False(t, ino.Mtime.Before(mtimeBefore))
}

func TestWriteFile_ThenReadFile(t *testing.T) {
	fs := newTestFS()
	require.NoError(t, fs.WriteFile("/a.txt", "/", []byte("hello"), false, 0o022))

	data, err := fs.ReadFile("/a.txt", "/")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	require.NoError(t, fs.WriteFile("/a.txt", "/", []byte(" world"), true, 0o022))
	data, err = fs.ReadFile("/a.txt", "/")
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))

	require.NoError(t, fs.WriteFile("/a.txt", "/", []byte("bye"), false, 0o022))
	data, err = fs.ReadFile("/a.txt", "/")
	require.NoError(t, err)
	assert.Equal(t, "bye", string(data))
}

func TestReadFile_OnDirectory_IsDir(t *testing.T) {
	fs := newTestFS()
	require.NoError(t, fs.Mkdir("/d", "/", 0o022))
	_, err := fs.ReadFile("/d", "/")
	assert.ErrorIs(t, err, ErrIsDir)
}

func TestCharDevs_ReadSemantics(t *testing.T) {
	fs := newTestFS()
	require.NoError(t, fs.CreateCharDev("/devnull", "/", 0o666, DevNull))
	require.NoError(t, fs.CreateCharDev("/devzero", "/", 0o666, DevZero))
	require.NoError(t, fs.CreateCharDev("/devrandom", "/", 0o666, DevURandom))

	data, err := fs.ReadFile("/devnull", "/")
	require.NoError(t, err)
	assert.Empty(t, data)

	data, err = fs.ReadFile("/devzero", "/")
	require.NoError(t, err)
	assert.Len(t, data, 1024)
	for _, b := range data {
		assert.Equal(t, byte(0), b)
	}

	data, err = fs.ReadFile("/devrandom", "/")
	require.NoError(t, err)
	assert.Len(t, data, 1024)
}

func TestWriteFile_ToDevNull_Discards(t *testing.T) {
	fs := newTestFS()
	require.NoError(t, fs.CreateCharDev("/devnull", "/", 0o666, DevNull))
	require.NoError(t, fs.WriteFile("/devnull", "/", []byte("discard me"), false, 0o022))
}

func TestMkdir_RequiresExistingParent(t *testing.T) {
	fs := newTestFS()
	err := fs.Mkdir("/a/b", "/", 0o022)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMkdirp_CreatesIntermediateDirs(t *testing.T) {
	fs := newTestFS()
	require.NoError(t, fs.Mkdirp("/a/b/c", "/", 0o022))

	for _, p := range []string{"/a", "/a/b", "/a/b/c"} {
		ino, err := fs.Stat(p, "/", true)
		require.NoError(t, err, p)
		assert.Equal(t, TypeDir, ino.Type, p)
	}

	// Idempotent when the tail already exists as a directory.
	assert.NoError(t, fs.Mkdirp("/a/b/c", "/", 0o022))
}

func TestRmdir_EmptyVsNonEmpty(t *testing.T) {
	fs := newTestFS()
	require.NoError(t, fs.Mkdir("/a", "/", 0o022))
	require.NoError(t, fs.Rmdir("/a", "/"))
	_, err := fs.Stat("/a", "/", true)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, fs.Mkdirp("/b/c", "/", 0o022))
	err = fs.Rmdir("/b", "/")
	assert.ErrorIs(t, err, ErrNotEmpty)
}

func TestRmrf_RemovesTreeAndTolerantOfMissing(t *testing.T) {
	fs := newTestFS()
	require.NoError(t, fs.Mkdirp("/a/b/c", "/", 0o022))
	require.NoError(t, fs.WriteFile("/a/b/f.txt", "/", []byte("x"), false, 0o022))

	countBefore := fs.Count()
	require.NoError(t, fs.Rmrf("/a", "/"))
	assert.Less(t, fs.Count(), countBefore)

	_, err := fs.Stat("/a", "/", true)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, fs.Rmrf("/nonexistent", "/"))
}

func TestMkdirRmdir_RoundTripRestoresInodeCount(t *testing.T) {
	fs := newTestFS()
	before := fs.Count()
	require.NoError(t, fs.Mkdir("/tmp1", "/", 0o022))
	require.NoError(t, fs.Rmdir("/tmp1", "/"))
	assert.Equal(t, before, fs.Count())
}

func TestUnlink_FreesInodeOnceLinkCountZero(t *testing.T) {
	fs := newTestFS()
	require.NoError(t, fs.WriteFile("/a", "/", []byte("x"), false, 0o022))
	require.NoError(t, fs.CreateHardLink("/b", "/", "/a"))

	ino, err := fs.Stat("/a", "/", true)
	require.NoError(t, err)
	assert.Equal(t, 2, ino.LinkCount)

	require.NoError(t, fs.Unlink("/a", "/"))
	_, err = fs.Stat("/a", "/", true)
	assert.ErrorIs(t, err, ErrNotFound)

	data, err := fs.ReadFile("/b", "/")
	require.NoError(t, err)
	assert.Equal(t, "x", string(data))

	require.NoError(t, fs.Unlink("/b", "/"))
	_, err = fs.Stat("/b", "/", true)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUnlink_OnDirectory_IsDir(t *testing.T) {
	fs := newTestFS()
	require.NoError(t, fs.Mkdir("/d", "/", 0o022))
	assert.ErrorIs(t, fs.Unlink("/d", "/"), ErrIsDir)
}

func TestRename_SameDir(t *testing.T) {
	fs := newTestFS()
	require.NoError(t, fs.WriteFile("/a", "/", []byte("x"), false, 0o022))
	require.NoError(t, fs.Rename("/a", "/b", "/"))

	_, err := fs.Stat("/a", "/", true)
	assert.ErrorIs(t, err, ErrNotFound)
	data, err := fs.ReadFile("/b", "/")
	require.NoError(t, err)
	assert.Equal(t, "x", string(data))
}

func TestRename_AcrossDirs(t *testing.T) {
	fs := newTestFS()
	require.NoError(t, fs.Mkdir("/d1", "/", 0o022))
	require.NoError(t, fs.Mkdir("/d2", "/", 0o022))
	require.NoError(t, fs.WriteFile("/d1/a", "/", []byte("x"), false, 0o022))

	require.NoError(t, fs.Rename("/d1/a", "/d2/a", "/"))
	_, err := fs.Stat("/d1/a", "/", true)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = fs.Stat("/d2/a", "/", true)
	assert.NoError(t, err)
}

func TestRename_OntoNonEmptyDir_Fails(t *testing.T) {
	fs := newTestFS()
	require.NoError(t, fs.Mkdirp("/a", "/", 0o022))
	require.NoError(t, fs.Mkdirp("/b/a/child", "/", 0o022))
	assert.ErrorIs(t, fs.Rename("/a", "/b", "/"), ErrNotEmpty)
}

func TestSymlink_ResolutionFollowsTarget(t *testing.T) {
	fs := newTestFS()
	require.NoError(t, fs.WriteFile("/real", "/", []byte("payload"), false, 0o022))
	require.NoError(t, fs.CreateSymlink("/link", "/", "/real"))

	data, err := fs.ReadFile("/link", "/")
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))

	target, err := fs.ReadSymlink("/link", "/")
	require.NoError(t, err)
	assert.Equal(t, "/real", target)
}

func TestSymlink_IntermediateAlwaysFollowed(t *testing.T) {
	fs := newTestFS()
	require.NoError(t, fs.Mkdir("/real", "/", 0o022))
	require.NoError(t, fs.WriteFile("/real/f", "/", []byte("x"), false, 0o022))
	require.NoError(t, fs.CreateSymlink("/link", "/", "/real"))

	data, err := fs.ReadFile("/link/f", "/")
	require.NoError(t, err)
	assert.Equal(t, "x", string(data))
}

func TestSymlink_LoopDetection(t *testing.T) {
	fs := newTestFS()
	require.NoError(t, fs.CreateSymlink("/a", "/", "/b"))
	require.NoError(t, fs.CreateSymlink("/b", "/", "/a"))

	_, err := fs.ReadFile("/a", "/")
	assert.ErrorIs(t, err, ErrLoop)
}

func TestChmod_RecursiveAppliesToSubtree(t *testing.T) {
	fs := newTestFS()
	require.NoError(t, fs.Mkdirp("/a/b", "/", 0o022))
	require.NoError(t, fs.WriteFile("/a/b/f", "/", []byte("x"), false, 0o022))

	require.NoError(t, fs.Chmod("/a", "/", 0o700, true))

	for _, p := range []string{"/a", "/a/b", "/a/b/f"} {
		ino, err := fs.Stat(p, "/", true)
		require.NoError(t, err)
		assert.Equal(t, uint32(0o700), ino.Mode, p)
	}
}

func TestChown_UidOnlyLeavesGidAlone(t *testing.T) {
	fs := newTestFS()
	require.NoError(t, fs.WriteFile("/a", "/", []byte("x"), false, 0o022))
	require.NoError(t, fs.Chown("/a", "/", 1000, -1, false))

	ino, err := fs.Stat("/a", "/", true)
	require.NoError(t, err)
	assert.Equal(t, 1000, ino.Uid)
	assert.Equal(t, 0, ino.Gid)
}

func TestFormatPermissions(t *testing.T) {
	cases := []struct {
		mode uint32
		typ  InodeType
		want string
	}{
		{0o755, TypeDir, "drwxr-xr-x"},
		{0o644, TypeFile, "-rw-r--r--"},
		{0o4755, TypeFile, "-rwsr-xr-x"},
		{0o1777, TypeDir, "drwxrwxrwt"},
	}
	for _, tc := range cases {
		ino := &Inode{Type: tc.typ, Mode: tc.mode}
		assert.Equal(t, tc.want, FormatPermissions(ino), "mode=%o", tc.mode)
	}
}

func TestFind_ByNameAndType(t *testing.T) {
	fs := newTestFS()
	require.NoError(t, fs.Mkdirp("/a/b", "/", 0o022))
	require.NoError(t, fs.WriteFile("/a/foo.txt", "/", []byte("x"), false, 0o022))
	require.NoError(t, fs.WriteFile("/a/b/bar.txt", "/", []byte("x"), false, 0o022))
	require.NoError(t, fs.WriteFile("/a/baz.log", "/", []byte("x"), false, 0o022))

	results, err := fs.Find("/a", "/", FindPredicate{Name: "*.txt"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"/a/foo.txt", "/a/b/bar.txt"}, results)

	dirType := TypeDir
	results, err = fs.Find("/a", "/", FindPredicate{Type: &dirType})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"/a", "/a/b"}, results)
}

func TestFind_Empty(t *testing.T) {
	fs := newTestFS()
	require.NoError(t, fs.Mkdir("/empty", "/", 0o022))
	require.NoError(t, fs.Mkdir("/full", "/", 0o022))
	require.NoError(t, fs.WriteFile("/full/f", "/", []byte("x"), false, 0o022))

	results, err := fs.Find("/", "/", FindPredicate{Empty: true})
	require.NoError(t, err)
	assert.Contains(t, results, "/empty")
	assert.NotContains(t, results, "/full")
}

func TestGlobExpand(t *testing.T) {
	fs := newTestFS()
	require.NoError(t, fs.WriteFile("/a.txt", "/", []byte("x"), false, 0o022))
	require.NoError(t, fs.WriteFile("/b.txt", "/", []byte("x"), false, 0o022))
	require.NoError(t, fs.WriteFile("/c.log", "/", []byte("x"), false, 0o022))

	root, err := fs.Stat("/", "/", true)
	require.NoError(t, err)

	matches := fs.GlobExpand(root, "*.txt")
	assert.Equal(t, []string{"a.txt", "b.txt"}, matches)

	literal := fs.GlobExpand(root, "nomatch")
	assert.Equal(t, []string{"nomatch"}, literal)
}

func TestCreateFifo(t *testing.T) {
	fs := newTestFS()
	require.NoError(t, fs.CreateFifo("/p", "/", 0o644))
	ino, err := fs.Stat("/p", "/", true)
	require.NoError(t, err)
	assert.Equal(t, TypeFifo, ino.Type)
}
