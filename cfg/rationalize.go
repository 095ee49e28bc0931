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

// Rationalize fills in values left unset by the user based on the values of
// other fields, after validation and before the device boots.
func Rationalize(c *Config) error {
	if c.Debug.LogMutex {
		c.Logging.Severity = TraceLogSeverity
	}

	if c.Hostname == "" {
		c.Hostname = "vhost"
	}

	for i := range c.Network.Interfaces {
		iface := &c.Network.Interfaces[i]
		if iface.Cost == 0 {
			iface.Cost = DefaultInterfaceCost
		}
		if iface.Priority == 0 {
			iface.Priority = DefaultInterfacePriority
		}
		if iface.HelloIntervalSecs == 0 {
			iface.HelloIntervalSecs = DefaultHelloIntervalSecs
		}
		if iface.DeadIntervalSecs == 0 {
			iface.DeadIntervalSecs = DefaultDeadIntervalSecs
		}
		if iface.NetworkType == "" {
			iface.NetworkType = NetworkBroadcast
		}
	}

	return nil
}
