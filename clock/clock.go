// Copyright 2025 Google LLC
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

// Package clock abstracts wall-clock access so the OSPF engine's timers
// (hello, dead, wait, SPF coalescing) and the VFS's mtime/ctime/atime
// stamping can run against real time in the standalone binary and against
// a manually-advanced clock in deterministic tests.
package clock

import "time"

// Clock is the seam between timer-driven components and the passage of
// time. RealClock drives it from the OS; SimulatedClock lets tests and
// scripted scenarios advance it explicitly.
type Clock interface {
	// Now returns the current time according to the clock.
	Now() time.Time

	// After returns a channel on which the clock's current time (at the
	// moment of firing) is sent once d has elapsed.
	After(d time.Duration) <-chan time.Time
}

var (
	_ Clock = RealClock{}
	_ Clock = &FakeClock{}
	_ Clock = &SimulatedClock{}
)
