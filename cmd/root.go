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

package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mkokutoyori/netsim/cfg"
	"github.com/mkokutoyori/netsim/clock"
	"github.com/mkokutoyori/netsim/internal/device"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile       string
	bindErr       error
	configFileErr error
	unmarshalErr  error
	DeviceConfig  cfg.Config
)

var rootCmd = &cobra.Command{
	Use:   "netsimd [flags]",
	Short: "Boot a simulated network device and drop into its shell",
	Long: `netsimd boots a single simulated Linux-like network device: a
virtual filesystem, a user/group manager, a command shell, and an OSPF
routing engine all running in one process. It reads its boot-time
identity, accounts, and interfaces from a YAML config file layered
under command-line flags, then presents an interactive shell on
stdin/stdout until the shell exits.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if bindErr != nil {
			return bindErr
		}
		if configFileErr != nil {
			return configFileErr
		}
		if unmarshalErr != nil {
			return unmarshalErr
		}
		if err := cfg.ValidateConfig(&DeviceConfig); err != nil {
			return err
		}
		if err := cfg.Rationalize(&DeviceConfig); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "booting %s with config:\n%s\n", DeviceConfig.Hostname, DeviceConfig.Redacted())

		dev, err := device.New(&DeviceConfig, clock.RealClock{})
		if err != nil {
			return fmt.Errorf("device.New: %w", err)
		}
		defer dev.Shutdown(context.Background())

		return dev.RunShell(cmd.Context(), os.Stdin, cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

// Execute is the entrypoint called by main.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config-file", "", "Path to a YAML config file.")
	bindErr = cfg.BindFlags(rootCmd.PersistentFlags())
}

func initConfig() {
	if cfgFile == "" {
		unmarshalErr = viper.Unmarshal(&DeviceConfig, viper.DecodeHook(cfg.DecodeHook()))
		return
	}

	viper.SetConfigFile(cfgFile)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		configFileErr = fmt.Errorf("error while reading config file: %w", err)
		return
	}
	unmarshalErr = viper.Unmarshal(&DeviceConfig, viper.DecodeHook(cfg.DecodeHook()))
}
