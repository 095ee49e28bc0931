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

func isValidLogRotateConfig(config *LogRotateLoggingConfig) error {
	if config.MaxFileSizeMb <= 0 {
		return fmt.Errorf("max-file-size-mb should be at least 1")
	}
	if config.BackupFileCount < 0 {
		return fmt.Errorf("backup-file-count should be 0 (to retain all backup files) or a positive value")
	}
	return nil
}

func isValidUserConfig(u *UserConfig) error {
	if u.Username == "" {
		return fmt.Errorf("username must not be empty")
	}
	if u.Uid < 0 {
		return fmt.Errorf("user %q: uid must not be negative", u.Username)
	}
	return nil
}

func isValidGroupConfig(g *GroupConfig) error {
	if g.Name == "" {
		return fmt.Errorf("group name must not be empty")
	}
	if g.Gid < 0 {
		return fmt.Errorf("group %q: gid must not be negative", g.Name)
	}
	return nil
}

func isValidInterfaceConfig(i *InterfaceConfig) error {
	if i.Name == "" {
		return fmt.Errorf("interface name must not be empty")
	}
	if i.Priority < 0 || i.Priority > 255 {
		return fmt.Errorf("interface %q: priority must be in [0, 255]", i.Name)
	}
	if i.Cost < 0 {
		return fmt.Errorf("interface %q: cost must not be negative", i.Name)
	}
	return nil
}

// ValidateConfig returns a non-nil error if the config is invalid. A device
// that fails validation aborts construction (spec §7, "Fatal errors at
// engine boot ... abort device construction").
func ValidateConfig(config *Config) error {
	if err := isValidLogRotateConfig(&config.Logging.LogRotate); err != nil {
		return fmt.Errorf("error parsing log-rotate config: %w", err)
	}

	seenUsers := map[string]bool{}
	for i := range config.Users {
		u := &config.Users[i]
		if err := isValidUserConfig(u); err != nil {
			return fmt.Errorf("error parsing users config: %w", err)
		}
		if seenUsers[u.Username] {
			return fmt.Errorf("error parsing users config: duplicate username %q", u.Username)
		}
		seenUsers[u.Username] = true
	}

	seenGroups := map[string]bool{}
	for i := range config.Groups {
		g := &config.Groups[i]
		if err := isValidGroupConfig(g); err != nil {
			return fmt.Errorf("error parsing groups config: %w", err)
		}
		if seenGroups[g.Name] {
			return fmt.Errorf("error parsing groups config: duplicate group name %q", g.Name)
		}
		seenGroups[g.Name] = true
	}

	seenIfaces := map[string]bool{}
	for i := range config.Network.Interfaces {
		iface := &config.Network.Interfaces[i]
		if err := isValidInterfaceConfig(iface); err != nil {
			return fmt.Errorf("error parsing network config: %w", err)
		}
		if seenIfaces[iface.Name] {
			return fmt.Errorf("error parsing network config: duplicate interface name %q", iface.Name)
		}
		seenIfaces[iface.Name] = true
	}

	return nil
}
