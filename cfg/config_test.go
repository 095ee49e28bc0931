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

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindFlags_Defaults(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	fs := pflag.NewFlagSet("netsimd", pflag.ContinueOnError)
	require.NoError(t, BindFlags(fs))
	require.NoError(t, fs.Parse(nil))

	assert.Equal(t, string(InfoLogSeverity), viper.GetString("logging.severity"))
	assert.Equal(t, 0o022, viper.GetInt("file-system.umask"))
	assert.False(t, viper.GetBool("debug.exit-on-invariant-violation"))
}

func TestBindFlags_OverridesFromArgs(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	fs := pflag.NewFlagSet("netsimd", pflag.ContinueOnError)
	require.NoError(t, BindFlags(fs))
	require.NoError(t, fs.Parse([]string{
		"--hostname=core1",
		"--log-severity=DEBUG",
		"--debug-invariants",
		"--router-id=10.0.0.1",
	}))

	assert.Equal(t, "core1", viper.GetString("hostname"))
	assert.Equal(t, "DEBUG", viper.GetString("logging.severity"))
	assert.True(t, viper.GetBool("debug.exit-on-invariant-violation"))
	assert.Equal(t, "10.0.0.1", viper.GetString("network.router-id"))
}

func TestDecodeConfig_FromViperUnmarshal(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	fs := pflag.NewFlagSet("netsimd", pflag.ContinueOnError)
	require.NoError(t, BindFlags(fs))
	require.NoError(t, fs.Parse([]string{"--hostname=core1", "--log-severity=WARNING"}))

	var c Config
	require.NoError(t, viper.Unmarshal(&c, viper.DecodeHook(DecodeHook())))

	assert.Equal(t, "core1", c.Hostname)
	assert.Equal(t, WarningLogSeverity, c.Logging.Severity)
}

func TestRedacted_MasksPasswords(t *testing.T) {
	c := Config{
		Hostname: "core1",
		Users:    []UserConfig{{Username: "alice", Password: "hunter2"}},
	}

	out := c.Redacted()

	assert.Contains(t, out, "core1")
	assert.Contains(t, out, "********")
	assert.NotContains(t, out, "hunter2")
	assert.Equal(t, "hunter2", c.Users[0].Password, "Redacted must not mutate the receiver's own slice")
}
