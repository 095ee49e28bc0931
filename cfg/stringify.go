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

import "fmt"

// Redacted renders the config for logging at boot with account passwords
// replaced by asterisks, the way a real device never echoes /etc/shadow
// contents into its boot log.
func (c Config) Redacted() string {
	users := make([]UserConfig, len(c.Users))
	copy(users, c.Users)
	for i := range users {
		if users[i].Password != "" {
			users[i].Password = "********"
		}
	}
	c.Users = users
	return fmt.Sprintf("%+v", struct {
		Hostname string
		Debug    DebugConfig
		Logging  LoggingConfig
		Users    []UserConfig
		Groups   []GroupConfig
		Network  NetworkConfig
	}{c.Hostname, c.Debug, c.Logging, c.Users, c.Groups, c.Network})
}
