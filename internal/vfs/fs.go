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
	"strings"

	"github.com/mkokutoyori/netsim/clock"
)

// maxSymlinkDepth bounds path-resolution recursion (spec §4.1).
const maxSymlinkDepth = 20

// FS is a flat inode table keyed by a monotonically increasing id (spec §9
// "translates directly to an arena keyed by integer index"), rooted at a
// single directory inode. Not safe for concurrent use — the device's
// single-threaded execution model (spec §5) is the only synchronization.
type FS struct {
	clock clock.Clock

	inodes map[InodeID]*Inode
	nextID InodeID

	root InodeID

	debugInvariants bool
}

// New creates an FS containing only the root directory, owned by uid/gid
// with mode 0o755.
func New(clk clock.Clock, rootUid, rootGid int) *FS {
	fs := &FS{
		clock:  clk,
		inodes: make(map[InodeID]*Inode),
	}

	root := fs.allocInode(TypeDir, 0o755, rootUid, rootGid)
	root.LinkCount = 2
	fs.root = root.ID

	return fs
}

// RootID returns the inode id of "/".
func (fs *FS) RootID() InodeID {
	return fs.root
}

// Inode returns the inode for id, or nil if it has been freed.
func (fs *FS) Inode(id InodeID) *Inode {
	return fs.inodes[id]
}

// Count returns the number of live inodes, used by the round-trip
// invariant tests in spec §8 (mkdir;rmdir restores inode count).
func (fs *FS) Count() int {
	return len(fs.inodes)
}

func (fs *FS) allocInode(t InodeType, mode uint32, uid, gid int) *Inode {
	fs.nextID++
	now := fs.clock.Now()
	ino := &Inode{
		ID:    fs.nextID,
		Type:  t,
		Mode:  mode,
		Uid:   uid,
		Gid:   gid,
		Mtime: now,
		Atime: now,
		Ctime: now,
	}
	switch t {
	case TypeDir:
		ino.dir = newDirListing()
		ino.LinkCount = 2
	case TypeFile:
		ino.Content = NewContent(fs.clock)
		ino.LinkCount = 1
	default:
		ino.LinkCount = 1
	}
	fs.inodes[ino.ID] = ino
	return ino
}

func (fs *FS) freeInode(id InodeID) {
	delete(fs.inodes, id)
}

// Normalize resolves path against cwd into an absolute, "."/".."-free,
// empty-segment-free path always beginning with "/" (spec §4.1).
func Normalize(path, cwd string) string {
	if path == "" {
		path = "."
	}
	if !strings.HasPrefix(path, "/") {
		path = cwd + "/" + path
	}

	segments := strings.Split(path, "/")
	out := make([]string, 0, len(segments))
	for _, seg := range segments {
		switch seg {
		case "", ".":
			continue
		case "..":
			if len(out) > 0 {
				out = out[:len(out)-1]
			}
		default:
			out = append(out, seg)
		}
	}
	return "/" + strings.Join(out, "/")
}

// split breaks a normalized path into its directory and base name. "/"
// itself splits to ("/", "").
func split(path string) (dir, base string) {
	if path == "/" {
		return "/", ""
	}
	idx := strings.LastIndex(path, "/")
	dir = path[:idx]
	if dir == "" {
		dir = "/"
	}
	base = path[idx+1:]
	return dir, base
}

// resolve walks path (already normalized) from the root, following
// symlinks in intermediate (and, if followSymlinks, final) components.
// Returns the resolved inode, or an error from the vfs error taxonomy.
func (fs *FS) resolve(path string, followSymlinks bool) (*Inode, error) {
	return fs.resolveDepth(path, followSymlinks, 0)
}

func (fs *FS) resolveDepth(path string, followSymlinks bool, depth int) (*Inode, error) {
	if depth > maxSymlinkDepth {
		return nil, ErrLoop
	}

	cur := fs.inodes[fs.root]
	if path == "/" {
		return cur, nil
	}

	segments := strings.Split(strings.TrimPrefix(path, "/"), "/")
	for i, seg := range segments {
		if cur.Type != TypeDir {
			return nil, ErrNotDir
		}
		childID, ok := cur.dir.lookup(seg)
		if !ok {
			return nil, ErrNotFound
		}
		child := fs.inodes[childID]
		isLast := i == len(segments)-1

		if child.Type == TypeSymlink && (!isLast || followSymlinks) {
			target := child.SymlinkTarget
			var resolvedTarget string
			if strings.HasPrefix(target, "/") {
				resolvedTarget = target
			} else {
				parentPath := "/" + strings.Join(segments[:i], "/")
				resolvedTarget = Normalize(target, parentPath)
			}
			resolved, err := fs.resolveDepth(resolvedTarget, true, depth+1)
			if err != nil {
				return nil, err
			}
			cur = resolved
			continue
		}
		cur = child
	}
	return cur, nil
}

// resolveParent resolves the parent directory of a normalized path,
// returning the parent inode and the final path component.
func (fs *FS) resolveParent(path string) (parent *Inode, name string, err error) {
	dir, base := split(path)
	parent, err = fs.resolve(dir, true)
	if err != nil {
		return nil, "", err
	}
	if parent.Type != TypeDir {
		return nil, "", ErrNotDir
	}
	return parent, base, nil
}
