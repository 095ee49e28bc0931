// Copyright 2024 Google LLC
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

package common

// VFS operation names, used as metric attribute values the same way the
// teacher tags its FUSE ops.
const (
	OpLookup    = "Lookup"
	OpStat      = "Stat"
	OpReadFile  = "ReadFile"
	OpWriteFile = "WriteFile"
	OpMkdir     = "Mkdir"
	OpRmdir     = "Rmdir"
	OpUnlink    = "Unlink"
	OpRename    = "Rename"
	OpLink      = "Link"
	OpSymlink   = "Symlink"
	OpChmod     = "Chmod"
	OpChown     = "Chown"
	OpReadDir   = "ReadDir"
)

// OSPF event names, used as metric attribute values for the routing engine.
const (
	EventHelloRx          = "HelloRx"
	EventNeighborUp        = "NeighborUp"
	EventNeighborDown      = "NeighborDown"
	EventDRElection        = "DRElection"
	EventLSAOriginated     = "LSAOriginated"
	EventLSAFlooded        = "LSAFlooded"
	EventSPFRecomputed     = "SPFRecomputed"
)

// ReadType annotates whether a file read followed a sequential or random
// access pattern, mirroring the teacher's read-type attribute.
const ReadType = "read_type"

const (
	ReadTypeSequential = "Sequential"
	ReadTypeRandom     = "Random"
)
