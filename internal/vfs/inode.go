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

import "time"

// InodeID uniquely identifies a file/directory/symlink/fifo/chardev
// regardless of how many names it has, mirroring struct inode::i_no in a
// real VFS layer.
type InodeID uint64

// InodeType is the kind of filesystem object an Inode represents.
type InodeType int

const (
	TypeFile InodeType = iota
	TypeDir
	TypeSymlink
	TypeFifo
	TypeCharDev
)

func (t InodeType) String() string {
	switch t {
	case TypeFile:
		return "file"
	case TypeDir:
		return "directory"
	case TypeSymlink:
		return "symlink"
	case TypeFifo:
		return "fifo"
	case TypeCharDev:
		return "chardev"
	default:
		return "unknown"
	}
}

// typeChar is the leading character `ls -l`/`stat` print for this type.
func (t InodeType) typeChar() byte {
	switch t {
	case TypeDir:
		return 'd'
	case TypeSymlink:
		return 'l'
	case TypeFifo:
		return 'p'
	case TypeCharDev:
		return 'c'
	default:
		return '-'
	}
}

// CharDevKind is a fixed character-device personality (spec §4.1).
type CharDevKind int

const (
	DevNull CharDevKind = iota
	DevZero
	DevURandom
)

// Mode bits, matching the standard POSIX layout used by chmod/stat.
const (
	ModeSetuid = 1 << 11
	ModeSetgid = 1 << 10
	ModeSticky = 1 << 9
	ModePerm   = 0o777
)

// Inode is one filesystem object. Directories carry a *dirListing;
// files carry a *Content; symlinks carry a target string; character
// devices carry a fixed CharDevKind. The zero value is never valid on its
// own — use the FS constructors.
type Inode struct {
	ID   InodeID
	Type InodeType

	// Mode holds the 12-bit permission word: setuid/setgid/sticky plus
	// three rwx triples (ModePerm masks out the low 9 bits).
	Mode uint32

	Uid int
	Gid int

	LinkCount int

	Mtime time.Time
	Atime time.Time
	Ctime time.Time

	Content       *Content    // valid iff Type == TypeFile
	dir           *dirListing // valid iff Type == TypeDir
	SymlinkTarget string      // valid iff Type == TypeSymlink
	CharDev       CharDevKind // valid iff Type == TypeCharDev
}

// Size returns the inode's reported size, used by stat/ls -l.
func (i *Inode) Size() int64 {
	switch i.Type {
	case TypeFile:
		return i.Content.Len()
	case TypeSymlink:
		return int64(len(i.SymlinkTarget))
	default:
		return 0
	}
}
