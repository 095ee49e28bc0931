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

package shell

import "strings"

// stripSGR removes ANSI CSI "m"-terminated escape sequences (colour and
// style codes) from s, emulating the real terminal's isatty() check:
// once output is piped rather than printed to a tty, programs like
// `ls --color` and `grep --color` stop emitting them, so the simulator
// strips any that slipped through before handing the buffer to the next
// pipeline stage (spec §4.2 step 2).
func stripSGR(s string) string {
	const esc = '\x1b'
	var b strings.Builder
	b.Grow(len(s))

	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		if runes[i] == esc && i+1 < len(runes) && runes[i+1] == '[' {
			j := i + 2
			for j < len(runes) && runes[j] != 'm' {
				j++
			}
			if j < len(runes) {
				i = j
				continue
			}
		}
		b.WriteRune(runes[i])
	}
	return b.String()
}
