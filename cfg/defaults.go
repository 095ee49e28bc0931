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

// GetDefaultLoggingConfig returns the default configuration used during
// application startup, before a config file has been parsed.
func GetDefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		Severity: InfoLogSeverity,
		LogRotate: LogRotateLoggingConfig{
			BackupFileCount: 10,
			Compress:        true,
			MaxFileSizeMb:   8,
		},
	}
}

// GetDefaultConfig returns the configuration a device boots with when no
// config file is supplied: a single root account, the standard group set,
// and no network interfaces (an isolated device).
func GetDefaultConfig() Config {
	return Config{
		Hostname: "vhost",
		Logging:  GetDefaultLoggingConfig(),
		FileSystem: FileSystemConfig{
			Umask:   0o022,
			RootUid: 0,
			RootGid: 0,
		},
		Users: []UserConfig{
			{
				Username: "root",
				Uid:      0,
				Gid:      0,
				Gecos:    "root",
				Home:     "/root",
				Shell:    "/bin/bash",
				Password: "root",
			},
		},
		Groups: []GroupConfig{
			{Name: "root", Gid: 0, Members: []string{"root"}},
		},
	}
}

// DefaultInterfaceCost is applied to an interface that doesn't specify one,
// matching the conventional OSPF reference bandwidth of 100 Mbps.
const DefaultInterfaceCost = 10

// DefaultInterfacePriority is the RFC 2328 default router priority.
const DefaultInterfacePriority = 1

// DefaultHelloIntervalSecs and DefaultDeadIntervalSecs are RFC 2328's
// suggested defaults for broadcast networks.
const (
	DefaultHelloIntervalSecs = 10
	DefaultDeadIntervalSecs  = 40
)
