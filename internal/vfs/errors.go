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

// Package vfs implements an in-memory, inode-indexed POSIX-style
// filesystem: the substrate every command and the user/group manager
// mutate.
package vfs

import "errors"

// Sentinel errors every VFS operation returns, the way the teacher wraps
// kernel errno constants for its FUSE ops. Command handlers in
// internal/commands match against these with errors.Is to build the
// utility-specific message and exit code the shell prints.
var (
	ErrNotFound   = errors.New("no such file or directory")
	ErrNotDir     = errors.New("not a directory")
	ErrIsDir      = errors.New("is a directory")
	ErrExists     = errors.New("file exists")
	ErrNotEmpty   = errors.New("directory not empty")
	ErrLoop       = errors.New("too many levels of symbolic links")
	ErrPermission = errors.New("permission denied")
	ErrInvalid    = errors.New("invalid argument")
)
