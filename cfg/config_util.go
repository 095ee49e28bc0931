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

package cfg

// IsOSPFEnabled reports whether the device has any OSPF-speaking
// interfaces configured.
func IsOSPFEnabled(c *Config) bool {
	return len(c.Network.Interfaces) > 0
}

// FindArea looks up an area by id, returning ok=false if it is not declared.
func FindArea(c *Config, id string) (AreaConfig, bool) {
	for _, a := range c.Network.Areas {
		if a.ID == id {
			return a, true
		}
	}
	return AreaConfig{}, false
}
