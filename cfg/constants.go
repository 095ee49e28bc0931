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

package cfg

const (
	// Logging-level string constants, matching LogSeverity's values.

	TRACE   string = "TRACE"
	DEBUG   string = "DEBUG"
	INFO    string = "INFO"
	WARNING string = "WARNING"
	ERROR   string = "ERROR"
	OFF     string = "OFF"
)

const (
	// Allocation range reserved for system accounts created at boot; the
	// User/Group Manager's nextUid/nextGid allocator starts above this.
	FirstUnprivilegedUid = 1000
	FirstUnprivilegedGid = 1000

	// LastValidId is the conventional ceiling below which uid/gid
	// allocation must stay (nobody is 65534).
	LastValidId = 65534
)
