// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package main

import (
	"fmt"
	"io"

	"github.com/pelletier/go-toml"
	"github.com/scidaf/daf/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// newConfigCommand prints dafctl's effective configuration as TOML,
// grounded on the teacher's ctl.ConfigCommand.
func newConfigCommand(stdout io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, err := cmd.Flags().GetString("config")
			if err != nil {
				return err
			}
			cfg, err := loadConfig(cfgPath)
			if err != nil {
				return err
			}
			buf, err := toml.Marshal(*cfg)
			if err != nil {
				return err
			}
			fmt.Fprintln(stdout, string(buf))
			return nil
		},
	}
	return cmd
}

// loadConfig returns a Config seeded with defaults, then overlaid by
// path (if non-empty) via viper's TOML reader (spec.md §4.11).
func loadConfig(path string) (*config.Config, error) {
	cfg := config.NewConfig()
	if path == "" {
		return cfg, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading configuration file %q: %w", path, err)
	}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration file %q: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
