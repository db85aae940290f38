// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0

// Package config holds dafctl's effective configuration: the file
// layout is the teacher's Config/TLSConfig pattern (SPEC_FULL.md §4.11),
// trimmed to the fields this module's scope actually needs.
package config

import (
	"fmt"

	"github.com/scidaf/daf/toml"
)

// Backend names the storage implementation a dafctl invocation defaults
// to when a caller doesn't otherwise specify one.
const (
	BackendMemory = "memory"
	BackendBolt   = "bolt"
)

const (
	// DefaultDataDir is where dafctl looks for bolt-backed datasets when
	// none is given on the command line.
	DefaultDataDir = "./data"

	// DefaultBackend is the storage kind new datasets are created with.
	DefaultBackend = BackendBolt

	// DefaultLogLevel names the logger.Level* constant used when none is
	// configured.
	DefaultLogLevel = "info"
)

// Registry describes one out-of-tree query operation plugin dafctl
// should load at startup (spec.md §4.7's pluggable operation registry).
// daf itself never loads plugins; this is purely a note dafctl's own
// init sequence consults.
type Registry struct {
	// Name is an informational label, not used for dispatch.
	Name string `toml:"name"`
	// Path is the plugin's location on disk (a Go plugin .so, or a
	// directory dafctl's own startup code knows how to interpret).
	Path string `toml:"path"`
}

// Config is dafctl's top-level configuration, overlaid from a TOML file
// via github.com/spf13/viper and printed as TOML via
// github.com/pelletier/go-toml (SPEC_FULL.md §4.10-4.11); environment
// variables are not read. Unlike the
// teacher's Config it carries no clustering, gossip, or TLS fields:
// daf has no networked access in this module's scope.
type Config struct {
	// DataDir is the directory dafctl resolves relative dataset paths
	// against.
	DataDir string `toml:"data-dir"`

	// Backend is the default Format implementation new datasets are
	// created with: "memory" or "bolt".
	Backend string `toml:"backend"`

	LogLevel string `toml:"log-level"`
	LogPath  string `toml:"log-path"`

	// OpenTimeout bounds how long boltstore.Open waits for the bbolt
	// file lock before giving up.
	OpenTimeout toml.Duration `toml:"open-timeout"`

	// Registries lists query-operation plugins to load at startup, in
	// order.
	Registries []Registry `toml:"registries"`
}

// NewConfig returns a Config populated with default values.
func NewConfig() *Config {
	return &Config{
		DataDir:     DefaultDataDir,
		Backend:     DefaultBackend,
		LogLevel:    DefaultLogLevel,
		OpenTimeout: toml.Duration(defaultOpenTimeout),
	}
}

const defaultOpenTimeout = 1e9 // 1 second, in time.Duration's ns units

// Validate reports whether c describes a usable configuration.
func (c *Config) Validate() error {
	if c.Backend != BackendMemory && c.Backend != BackendBolt {
		return fmt.Errorf("invalid backend: %q (expected %q or %q)", c.Backend, BackendMemory, BackendBolt)
	}
	return nil
}
