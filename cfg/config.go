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

// Package cfg describes the boot-time configuration of a simulated device:
// its identity, initial accounts, and network interfaces/OSPF areas. It is
// decoded from a YAML config file layered under CLI flags the same way the
// teacher layers mount options, via viper/pflag/mapstructure.
package cfg

import (
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the root of a device's boot-time configuration.
type Config struct {
	Hostname string `yaml:"hostname"`

	Debug DebugConfig `yaml:"debug"`

	Logging LoggingConfig `yaml:"logging"`

	Metrics MetricsConfig `yaml:"metrics"`

	FileSystem FileSystemConfig `yaml:"file-system"`

	Users []UserConfig `yaml:"users"`

	Groups []GroupConfig `yaml:"groups"`

	Network NetworkConfig `yaml:"network"`
}

// DebugConfig controls invariant enforcement, mirroring the teacher's
// fail-fast knobs for its own inode/lease invariants.
type DebugConfig struct {
	ExitOnInvariantViolation bool `yaml:"exit-on-invariant-violation"`

	LogMutex bool `yaml:"log-mutex"`
}

// MetricsConfig selects the device's MetricHandle implementation, the way
// the teacher's own --enable-metrics flag picks between a noop and an
// otel/prometheus-backed handle.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// LoggingConfig configures the Log/Journal Manager (spec §4, "Log / Journal
// Manager").
type LoggingConfig struct {
	Severity LogSeverity `yaml:"severity"`

	LogRotate LogRotateLoggingConfig `yaml:"log-rotate"`
}

// LogRotateLoggingConfig mirrors gopkg.in/natefinch/lumberjack.v2's Logger
// fields; the journal manager uses these to decide when to roll the
// in-memory /var/log/* files over, and uses a real lumberjack.Logger for the
// optional on-disk mirror.
type LogRotateLoggingConfig struct {
	MaxFileSizeMb int `yaml:"max-file-size-mb"`

	BackupFileCount int `yaml:"backup-file-count"`

	Compress bool `yaml:"compress"`
}

// FileSystemConfig seeds the VFS's default creation mask and root ownership.
type FileSystemConfig struct {
	Umask Octal `yaml:"umask"`

	RootUid int `yaml:"root-uid"`

	RootGid int `yaml:"root-gid"`
}

// UserConfig seeds an initial row in the User/Group Manager's user table.
type UserConfig struct {
	Username string `yaml:"username"`

	Uid int `yaml:"uid"`

	Gid int `yaml:"gid"`

	Gecos string `yaml:"gecos"`

	Home string `yaml:"home"`

	Shell string `yaml:"shell"`

	Password string `yaml:"password"`

	Sudoer bool `yaml:"sudoer"`
}

// GroupConfig seeds an initial row in the User/Group Manager's group table.
type GroupConfig struct {
	Name string `yaml:"name"`

	Gid int `yaml:"gid"`

	Members []string `yaml:"members"`
}

// NetworkConfig seeds the OSPF engine and its interfaces.
type NetworkConfig struct {
	RouterID string `yaml:"router-id"`

	Interfaces []InterfaceConfig `yaml:"interfaces"`

	Areas []AreaConfig `yaml:"areas"`
}

// InterfaceConfig seeds one OSPF-speaking virtual interface.
type InterfaceConfig struct {
	Name string `yaml:"name"`

	Addresses []string `yaml:"addresses"`

	Area string `yaml:"area"`

	Cost int `yaml:"cost"`

	Priority int `yaml:"priority"`

	HelloIntervalSecs int `yaml:"hello-interval-secs"`

	DeadIntervalSecs int `yaml:"dead-interval-secs"`

	NetworkType NetworkType `yaml:"network-type"`

	Passive bool `yaml:"passive"`

	IPv6 bool `yaml:"ipv6"`
}

// AreaConfig seeds one OSPF area.
type AreaConfig struct {
	ID string `yaml:"id"`

	Stub bool `yaml:"stub"`
}

// BindFlags registers the flags netsimd accepts, binding each into viper so
// that config-file, environment, and flag values layer the way the teacher's
// mount flags do.
func BindFlags(flagSet *pflag.FlagSet) error {
	var err error

	flagSet.StringP("hostname", "", "", "Hostname to boot the device with.")
	if err = viper.BindPFlag("hostname", flagSet.Lookup("hostname")); err != nil {
		return err
	}

	flagSet.BoolP("debug-invariants", "", false, "Exit when internal invariants are violated.")
	if err = viper.BindPFlag("debug.exit-on-invariant-violation", flagSet.Lookup("debug-invariants")); err != nil {
		return err
	}

	flagSet.BoolP("debug-mutex", "", false, "Log when a lock is held longer than expected.")
	if err = viper.BindPFlag("debug.log-mutex", flagSet.Lookup("debug-mutex")); err != nil {
		return err
	}

	flagSet.StringP("log-severity", "", string(InfoLogSeverity), "Minimum severity written to the journal.")
	if err = viper.BindPFlag("logging.severity", flagSet.Lookup("log-severity")); err != nil {
		return err
	}

	flagSet.BoolP("enable-metrics", "", false, "Record vfs/ospf metrics via OpenTelemetry instead of a noop handle.")
	if err = viper.BindPFlag("metrics.enabled", flagSet.Lookup("enable-metrics")); err != nil {
		return err
	}

	flagSet.IntP("umask", "", 0o022, "Default creation umask, in octal.")
	if err = viper.BindPFlag("file-system.umask", flagSet.Lookup("umask")); err != nil {
		return err
	}

	flagSet.StringP("router-id", "", "", "OSPF router-id override (defaults to the first interface address).")
	if err = viper.BindPFlag("network.router-id", flagSet.Lookup("router-id")); err != nil {
		return err
	}

	return nil
}
