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

// Package users maintains the authoritative account and group tables for
// a simulated device and mirrors every mutation into /etc/passwd,
// /etc/shadow, and /etc/group.
package users

import "time"

// unsetAging marks an aging field as "never set", rendered as an empty
// field in /etc/shadow.
const unsetAging = -1

// User is one account row. Password holds the real (plaintext, since
// this is a simulator, not a security boundary) credential used to
// check logins; /etc/passwd always shows "x" in the password column
// (the real value lives in shadow).
type User struct {
	Username string
	Uid      int
	Gid      int
	GECOS    string
	Home     string
	Shell    string

	Password string
	Locked   bool

	LastChangeDay int
	MinDays       int
	MaxDays       int
	WarnDays      int
	InactiveDays  int
	ExpireDay     int
}

// Group is one group row.
type Group struct {
	Name     string
	Gid      int
	Members  []string
	Admins   []string
	Password string
}

// LoginRecord backs `last`/`who`/`w`.
type LoginRecord struct {
	Username string
	TTY      string
	LoginAt  time.Time
	LogoutAt time.Time // zero while still logged in
}
