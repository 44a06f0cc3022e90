// Package config provides configuration management for the uttergen CLI.
//
// Compiler-facing settings and defaults live in internal/config and are
// re-exported here so CLI code needs a single import.
package config

import (
	sharedcfg "github.com/leapstack-labs/uttergen/internal/config"
)

// LimitsConfig is an alias for the shared expansion limits.
type LimitsConfig = sharedcfg.LimitsConfig

// Config holds all CLI configuration options.
type Config struct {
	Grammar        string       `koanf:"grammar"`
	Out            string       `koanf:"out"`
	Format         string       `koanf:"format"`
	Verbose        bool         `koanf:"verbose"`
	Verbosity      int          `koanf:"verbosity"`
	LogFormat      string       `koanf:"log_format"`
	OutputFormat   string       `koanf:"output"`
	Parallelism    int          `koanf:"parallelism"`
	Lowercase      bool         `koanf:"lowercase"`
	Language       string       `koanf:"language"`
	InvocationName string       `koanf:"invocation_name"`
	Limits         LimitsConfig `koanf:"limits"`

	// ProjectRoot is the directory relative config paths resolve against.
	ProjectRoot string `koanf:"-"`
}

// Default configuration values, shared with internal/config.
const (
	DefaultFormat    = sharedcfg.DefaultFormat
	DefaultOutput    = sharedcfg.DefaultOutput
	DefaultLogFormat = sharedcfg.DefaultLogFormat
)

// EnvPrefix prefixes every environment variable read by the loader.
const EnvPrefix = "UTTERGEN_"
