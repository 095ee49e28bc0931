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

import "sort"

// dirListing wraps a directory inode's childName -> childID map the way
// the teacher's ListingProxy wraps a GCS prefix listing, minus the remote
// merge step: everything here is already authoritative, so add/remove/
// rename/lookup are plain map operations with ordering on top for `ls`.
type dirListing struct {
	children map[string]InodeID
}

func newDirListing() *dirListing {
	return &dirListing{children: make(map[string]InodeID)}
}

func (d *dirListing) lookup(name string) (InodeID, bool) {
	id, ok := d.children[name]
	return id, ok
}

func (d *dirListing) add(name string, id InodeID) {
	d.children[name] = id
}

func (d *dirListing) remove(name string) {
	delete(d.children, name)
}

func (d *dirListing) rename(oldName, newName string) {
	id, ok := d.children[oldName]
	if !ok {
		return
	}
	delete(d.children, oldName)
	d.children[newName] = id
}

func (d *dirListing) isEmpty() bool {
	return len(d.children) == 0
}

// names returns the child names in sorted order, the stable iteration
// order `ls` and `find` rely on.
func (d *dirListing) names() []string {
	names := make([]string, 0, len(d.children))
	for n := range d.children {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
