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

import "math/rand"

const charDevReadSize = 1024

// Touch creates an empty file at path with mode 0o666&^umask if it does
// not exist, and always refreshes atime/mtime (spec §4.1 `touch`).
func (fs *FS) Touch(path, cwd string, umask uint32) error {
	path = Normalize(path, cwd)
	if ino, err := fs.resolve(path, true); err == nil {
		ino.Atime = fs.clock.Now()
		ino.Mtime = fs.clock.Now()
		return nil
	}

	parent, name, err := fs.resolveParent(path)
	if err != nil {
		return err
	}
	if _, exists := parent.dir.lookup(name); exists {
		return ErrExists
	}

	ino := fs.allocInode(TypeFile, 0o666&^umask, parent.Uid, parent.Gid)
	parent.dir.add(name, ino.ID)
	return nil
}

// ReadFile returns a file or character device's content (spec §4.1
// `readFile`).
func (fs *FS) ReadFile(path, cwd string) ([]byte, error) {
	ino, err := fs.resolve(Normalize(path, cwd), true)
	if err != nil {
		return nil, err
	}
	ino.Atime = fs.clock.Now()

	switch ino.Type {
	case TypeFile:
		return ino.Content.Bytes(), nil
	case TypeCharDev:
		return readCharDev(ino.CharDev), nil
	default:
		return nil, ErrIsDir
	}
}

func readCharDev(kind CharDevKind) []byte {
	switch kind {
	case DevNull:
		return nil
	case DevZero:
		return make([]byte, charDevReadSize)
	case DevURandom:
		buf := make([]byte, charDevReadSize)
		_, _ = rand.Read(buf)
		return buf
	default:
		return nil
	}
}

// WriteFile creates or overwrites (or appends to, if append is true) a
// file's content. Writing to /dev/null silently discards (spec §4.1).
func (fs *FS) WriteFile(path, cwd string, data []byte, append bool, umask uint32) error {
	path = Normalize(path, cwd)
	ino, err := fs.resolve(path, true)
	if err != nil {
		if err != ErrNotFound {
			return err
		}
		parent, name, perr := fs.resolveParent(path)
		if perr != nil {
			return perr
		}
		ino = fs.allocInode(TypeFile, 0o666&^umask, parent.Uid, parent.Gid)
		parent.dir.add(name, ino.ID)
	}

	switch ino.Type {
	case TypeFile:
		if append {
			ino.Content.Append(data)
		} else {
			ino.Content.Set(data)
		}
		ino.Mtime = fs.clock.Now()
		return nil
	case TypeCharDev:
		if ino.CharDev == DevNull {
			return nil
		}
		return ErrPermission
	default:
		return ErrIsDir
	}
}

// ReadSymlink returns a symlink's stored target string.
func (fs *FS) ReadSymlink(path, cwd string) (string, error) {
	ino, err := fs.resolve(Normalize(path, cwd), false)
	if err != nil {
		return "", err
	}
	if ino.Type != TypeSymlink {
		return "", ErrInvalid
	}
	return ino.SymlinkTarget, nil
}

// CreateSymlink stores target as a symlink at path, mode 0o777 (spec
// §4.1 `createSymlink`).
func (fs *FS) CreateSymlink(path, cwd, target string) error {
	parent, name, err := fs.resolveParent(Normalize(path, cwd))
	if err != nil {
		return err
	}
	if _, exists := parent.dir.lookup(name); exists {
		return ErrExists
	}

	ino := fs.allocInode(TypeSymlink, 0o777, parent.Uid, parent.Gid)
	ino.SymlinkTarget = target
	parent.dir.add(name, ino.ID)
	return nil
}

// CreateHardLink adds name to the parent directory of path, pointing at
// the inode targetPath resolves to, and increments its link count (spec
// §4.1 `createHardLink`). The target must be a non-directory file.
func (fs *FS) CreateHardLink(path, cwd, targetPath string) error {
	target, err := fs.resolve(Normalize(targetPath, cwd), true)
	if err != nil {
		return err
	}
	if target.Type == TypeDir {
		return ErrIsDir
	}

	parent, name, err := fs.resolveParent(Normalize(path, cwd))
	if err != nil {
		return err
	}
	if _, exists := parent.dir.lookup(name); exists {
		return ErrExists
	}

	parent.dir.add(name, target.ID)
	target.LinkCount++
	return nil
}

// CreateFifo creates a named pipe inode at path.
func (fs *FS) CreateFifo(path, cwd string, mode uint32) error {
	parent, name, err := fs.resolveParent(Normalize(path, cwd))
	if err != nil {
		return err
	}
	if _, exists := parent.dir.lookup(name); exists {
		return ErrExists
	}
	ino := fs.allocInode(TypeFifo, mode, parent.Uid, parent.Gid)
	parent.dir.add(name, ino.ID)
	return nil
}

// CreateCharDev creates a character-device inode at path with the given
// fixed personality (spec §3.1).
func (fs *FS) CreateCharDev(path, cwd string, mode uint32, kind CharDevKind) error {
	parent, name, err := fs.resolveParent(Normalize(path, cwd))
	if err != nil {
		return err
	}
	if _, exists := parent.dir.lookup(name); exists {
		return ErrExists
	}
	ino := fs.allocInode(TypeCharDev, mode, parent.Uid, parent.Gid)
	ino.CharDev = kind
	parent.dir.add(name, ino.ID)
	return nil
}

// Stat resolves path and returns its inode for read-only inspection.
func (fs *FS) Stat(path, cwd string, followSymlinks bool) (*Inode, error) {
	return fs.resolve(Normalize(path, cwd), followSymlinks)
}
