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
	"path/filepath"
	"strings"
	"time"

	"github.com/mkokutoyori/netsim/common"
)

// Chmod sets an inode's mode bits (spec §4.1 `chmod`), optionally
// recursing into a directory tree.
func (fs *FS) Chmod(path, cwd string, mode uint32, recursive bool) error {
	ino, err := fs.resolve(Normalize(path, cwd), true)
	if err != nil {
		return err
	}
	if recursive {
		fs.chmodTree(ino, mode)
		return nil
	}
	ino.Mode = mode
	ino.Ctime = fs.clock.Now()
	return nil
}

func (fs *FS) chmodTree(ino *Inode, mode uint32) {
	ino.Mode = mode
	ino.Ctime = fs.clock.Now()
	if ino.Type != TypeDir {
		return
	}
	for _, name := range ino.dir.names() {
		childID, _ := ino.dir.lookup(name)
		fs.chmodTree(fs.inodes[childID], mode)
	}
}

// Chown sets an inode's owner uid, and its gid too when gid >= 0 (spec
// §4.1 `chown`/`chgrp`), optionally recursing.
func (fs *FS) Chown(path, cwd string, uid, gid int, recursive bool) error {
	ino, err := fs.resolve(Normalize(path, cwd), true)
	if err != nil {
		return err
	}
	if recursive {
		fs.chownTree(ino, uid, gid)
		return nil
	}
	applyChown(ino, uid, gid, fs.clock.Now())
	return nil
}

func (fs *FS) chownTree(ino *Inode, uid, gid int) {
	applyChown(ino, uid, gid, fs.clock.Now())
	if ino.Type != TypeDir {
		return
	}
	for _, name := range ino.dir.names() {
		childID, _ := ino.dir.lookup(name)
		fs.chownTree(fs.inodes[childID], uid, gid)
	}
}

func applyChown(ino *Inode, uid, gid int, now time.Time) {
	if uid >= 0 {
		ino.Uid = uid
	}
	if gid >= 0 {
		ino.Gid = gid
	}
	ino.Ctime = now
}

// FormatPermissions renders the 10-character `ls -l` permission string:
// type char, then three rwx triples with setuid/setgid/sticky overlays.
func FormatPermissions(ino *Inode) string {
	var b strings.Builder
	b.WriteByte(ino.Type.typeChar())

	perm := ino.Mode & ModePerm
	triples := [3]struct {
		read, write, exec uint32
	}{
		{0o400, 0o200, 0o100},
		{0o040, 0o020, 0o010},
		{0o004, 0o002, 0o001},
	}
	for i, t := range triples {
		if perm&t.read != 0 {
			b.WriteByte('r')
		} else {
			b.WriteByte('-')
		}
		if perm&t.write != 0 {
			b.WriteByte('w')
		} else {
			b.WriteByte('-')
		}

		x := perm&t.exec != 0
		switch {
		case i == 0 && ino.Mode&ModeSetuid != 0:
			b.WriteByte(setBit(x, 's', 'S'))
		case i == 1 && ino.Mode&ModeSetgid != 0:
			b.WriteByte(setBit(x, 's', 'S'))
		case i == 2 && ino.Mode&ModeSticky != 0:
			b.WriteByte(setBit(x, 't', 'T'))
		case x:
			b.WriteByte('x')
		default:
			b.WriteByte('-')
		}
	}
	return b.String()
}

func setBit(execBitSet bool, lower, upper byte) byte {
	if execBitSet {
		return lower
	}
	return upper
}

// FindPredicate conjoins the filters `find` supports: a nil field means
// "don't filter on this".
type FindPredicate struct {
	Name     string
	Type     *InodeType
	Empty    bool
	Uid      *int
	Gid      *int
	MtimeMin *time.Time
	MtimeMax *time.Time
}

func (p FindPredicate) matches(ino *Inode, base string) bool {
	if p.Name != "" {
		if ok, _ := filepath.Match(p.Name, base); !ok {
			return false
		}
	}
	if p.Type != nil && ino.Type != *p.Type {
		return false
	}
	if p.Empty {
		switch ino.Type {
		case TypeDir:
			if !ino.dir.isEmpty() {
				return false
			}
		case TypeFile:
			if ino.Content.Len() != 0 {
				return false
			}
		default:
			return false
		}
	}
	if p.Uid != nil && ino.Uid != *p.Uid {
		return false
	}
	if p.Gid != nil && ino.Gid != *p.Gid {
		return false
	}
	if p.MtimeMin != nil && ino.Mtime.Before(*p.MtimeMin) {
		return false
	}
	if p.MtimeMax != nil && ino.Mtime.After(*p.MtimeMax) {
		return false
	}
	return true
}

// findWalkItem is one pending directory-tree entry in Find's traversal
// queue.
type findWalkItem struct {
	ino  *Inode
	path string
	base string
}

// Find walks the tree rooted at path breadth-first via a work queue,
// returning the absolute paths of every entry matching pred (spec §4.1
// `find`).
func (fs *FS) Find(path, cwd string, pred FindPredicate) ([]string, error) {
	root := Normalize(path, cwd)
	ino, err := fs.resolve(root, true)
	if err != nil {
		return nil, err
	}

	var out []string
	pending := common.NewLinkedListQueue[findWalkItem]()
	pending.Push(findWalkItem{ino: ino, path: root, base: filepath.Base(root)})

	for !pending.IsEmpty() {
		item := pending.Pop()
		if pred.matches(item.ino, item.base) {
			out = append(out, item.path)
		}
		if item.ino.Type != TypeDir {
			continue
		}
		for _, name := range item.ino.dir.names() {
			childID, _ := item.ino.dir.lookup(name)
			child := fs.inodes[childID]
			childPath := item.path
			if childPath == "/" {
				childPath += name
			} else {
				childPath += "/" + name
			}
			pending.Push(findWalkItem{ino: child, path: childPath, base: name})
		}
	}
	return out, nil
}

// GlobExpand expands a single path component containing `*`/`?` against
// the children of dir, returning matching names in sorted order (spec
// §4.1 `globExpand`). Non-glob patterns pass through unchanged whether
// or not they match, per shell convention.
func (fs *FS) GlobExpand(dirIno *Inode, pattern string) []string {
	if !strings.ContainsAny(pattern, "*?") {
		return []string{pattern}
	}
	if dirIno.Type != TypeDir {
		return nil
	}

	var matches []string
	for _, name := range dirIno.dir.names() {
		if ok, _ := filepath.Match(pattern, name); ok {
			matches = append(matches, name)
		}
	}
	return matches
}
