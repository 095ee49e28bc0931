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

package journal

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"sync"
	"time"

	"github.com/mkokutoyori/netsim/cfg"
	"github.com/mkokutoyori/netsim/internal/vfs"
	"gopkg.in/natefinch/lumberjack.v2"
)

// RotateConfig is cfg.LogRotateLoggingConfig by another name at the
// package boundary, kept distinct so journal callers don't need to import
// cfg just to build one.
type RotateConfig = cfg.LogRotateLoggingConfig

// rotator mirrors one /var/log file inside the VFS, applying lumberjack's
// size-based rotation policy (roll to .1, .2, ... once the active file
// exceeds MaxFileSizeMb, dropping anything past BackupFileCount, gzipping
// rolled files when Compress is set) without ever touching the host
// filesystem. A lumberjack.Logger is kept alongside as an optional real
// on-disk mirror of the same stream, for operators tailing the device's
// actual log directory.
type rotator struct {
	mu sync.Mutex

	fs   *vfs.FS
	path string
	cfg  RotateConfig
	size int64

	disk *lumberjack.Logger
}

func newRotator(fs *vfs.FS, path string, cfg RotateConfig) *rotator {
	r := &rotator{fs: fs, path: path, cfg: cfg}
	if cfg.MaxFileSizeMb > 0 {
		r.disk = &lumberjack.Logger{
			Filename:   "." + path, // relative shadow copy, never absolute host paths
			MaxSize:    cfg.MaxFileSizeMb,
			MaxBackups: cfg.BackupFileCount,
			Compress:   cfg.Compress,
		}
	}
	return r
}

// maxBytes returns the configured rotation threshold, defaulting to a
// generous 8MB the way lumberjack defaults MaxSize to 100MB when unset.
func (r *rotator) maxBytes() int64 {
	if r.cfg.MaxFileSizeMb <= 0 {
		return 8 * 1024 * 1024
	}
	return int64(r.cfg.MaxFileSizeMb) * 1024 * 1024
}

// Append writes line to the mirrored file, rotating first if the write
// would push the file past its size threshold.
func (r *rotator) Append(now time.Time, line string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := []byte(line + "\n")
	if r.size+int64(len(data)) > r.maxBytes() && r.size > 0 {
		r.rotate(now)
	}
	if err := r.fs.WriteFile(r.path, "/", data, true, 0); err == nil {
		r.size += int64(len(data))
	}
	if r.disk != nil {
		_, _ = r.disk.Write(data)
	}
}

// rotate shifts backupN -> backupN+1 (dropping anything past
// BackupFileCount; a BackupFileCount of 0 keeps every backup), moves the
// active file to backup 1, optionally gzipping it, and resets the active
// file to empty.
func (r *rotator) rotate(now time.Time) {
	keep := r.cfg.BackupFileCount
	retainAll := keep <= 0
	if retainAll {
		// Shift every existing backup up by one, starting from the first
		// unused index.
		keep = 1
		for {
			if _, err := r.fs.ReadFile(r.backupName(keep), "/"); err != nil {
				break
			}
			keep++
		}
	}

	for n := keep; n >= 1; n-- {
		src := r.backupName(n)
		if n == keep && !retainAll {
			_ = r.fs.Unlink(src, "/")
			continue
		}
		dst := r.backupName(n + 1)
		if data, err := r.fs.ReadFile(src, "/"); err == nil {
			_ = r.fs.WriteFile(dst, "/", data, false, 0)
		}
	}

	data, err := r.fs.ReadFile(r.path, "/")
	if err == nil {
		if r.cfg.Compress {
			data = gzipBytes(data)
		}
		_ = r.fs.WriteFile(r.backupName(1), "/", data, false, 0)
	}
	_ = r.fs.WriteFile(r.path, "/", nil, false, 0)
	r.size = 0
}

func (r *rotator) backupName(n int) string {
	suffix := fmt.Sprintf(".%d", n)
	if r.cfg.Compress {
		suffix += ".gz"
	}
	return r.path + suffix
}

func gzipBytes(data []byte) []byte {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, _ = w.Write(data)
	_ = w.Close()
	return buf.Bytes()
}
