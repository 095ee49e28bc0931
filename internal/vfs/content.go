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
	"time"

	"github.com/mkokutoyori/netsim/clock"
)

// Content is a file inode's byte-string body: a single in-memory buffer
// with ReadAt/WriteAt/Truncate semantics and a clock-stamped mtime on every
// mutation. Adapted from the teacher's dual-lease MutableContent, collapsed
// to one buffer since there is no remote generation to branch from.
//
// External synchronization is required (the device's single-threaded
// execution model provides it; see spec §5).
type Content struct {
	clock clock.Clock

	buf []byte

	// The lowest byte index ever modified. Mirrors the teacher's
	// dirtyThreshold bookkeeping even though nothing here reads it back
	// yet; a future on-disk mirror can use it the same way the teacher
	// used it to avoid re-uploading untouched bytes.
	dirtyThreshold int64

	mtime time.Time
}

// NewContent creates an empty content buffer.
func NewContent(clk clock.Clock) *Content {
	return &Content{clock: clk, mtime: clk.Now()}
}

// NewContentFromBytes creates a content buffer seeded with data, without
// marking it dirty (used when materializing fixed boot-time file content).
func NewContentFromBytes(clk clock.Clock, data []byte) *Content {
	buf := make([]byte, len(data))
	copy(buf, data)
	return &Content{clock: clk, buf: buf, dirtyThreshold: int64(len(buf)), mtime: clk.Now()}
}

// Len returns the current size in bytes.
func (c *Content) Len() int64 {
	return int64(len(c.buf))
}

// Mtime returns the time of the last mutation.
func (c *Content) Mtime() time.Time {
	return c.mtime
}

// Bytes returns the full content. The caller must not mutate the result.
func (c *Content) Bytes() []byte {
	return c.buf
}

// ReadAt has io.ReaderAt semantics over the buffer.
func (c *Content) ReadAt(buf []byte, offset int64) (n int, err error) {
	if offset < 0 || offset > int64(len(c.buf)) {
		return 0, nil
	}
	n = copy(buf, c.buf[offset:])
	return n, nil
}

// WriteAt has io.WriterAt semantics over the buffer, growing it as needed.
func (c *Content) WriteAt(buf []byte, offset int64) (n int, err error) {
	end := offset + int64(len(buf))
	if end > int64(len(c.buf)) {
		grown := make([]byte, end)
		copy(grown, c.buf)
		c.buf = grown
	}
	n = copy(c.buf[offset:end], buf)

	if offset < c.dirtyThreshold {
		c.dirtyThreshold = offset
	}
	c.mtime = c.clock.Now()
	return n, nil
}

// Append writes buf at the current end of the content.
func (c *Content) Append(buf []byte) {
	_, _ = c.WriteAt(buf, int64(len(c.buf)))
}

// Truncate resizes the content to n bytes, zero-extending if n is larger
// than the current size.
func (c *Content) Truncate(n int64) error {
	switch {
	case n < int64(len(c.buf)):
		c.buf = c.buf[:n]
	case n > int64(len(c.buf)):
		grown := make([]byte, n)
		copy(grown, c.buf)
		c.buf = grown
	}
	if n < c.dirtyThreshold {
		c.dirtyThreshold = n
	}
	c.mtime = c.clock.Now()
	return nil
}

// Set replaces the entire content in one shot (used by writeFile without
// append).
func (c *Content) Set(data []byte) {
	c.buf = make([]byte, len(data))
	copy(c.buf, data)
	c.dirtyThreshold = 0
	c.mtime = c.clock.Now()
}
