package config

import (
	"fmt"

	"github.com/leapstack-labs/uttergen/pkg/corpus"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, err := corpus.ParseFormat(c.Format); err != nil {
		return err
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("log_format must be text or json, got %q", c.LogFormat)
	}
	if c.Parallelism < 1 {
		return fmt.Errorf("parallelism must be at least 1, got %d", c.Parallelism)
	}
	if c.Verbosity < 0 {
		return fmt.Errorf("verbosity must not be negative, got %d", c.Verbosity)
	}
	return c.Limits.Validate()
}

// GrammarPath returns the grammar to compile: the positional argument when
// given, else the configured grammar.
func (c *Config) GrammarPath(args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}
	if c.Grammar != "" {
		return c.Grammar, nil
	}
	return "", fmt.Errorf("no grammar given\nHint: pass a grammar file or set grammar in uttergen.yaml")
}
