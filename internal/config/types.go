// Package config provides shared configuration types and defaults for
// uttergen. It is decoupled from CLI concerns so the compiler-facing
// settings can be built without cobra or pflag.
package config

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// LimitsConfig bounds grammar expansion.
type LimitsConfig struct {
	// MaxDepth limits nonterminal nesting.
	MaxDepth int `koanf:"max_depth"`
	// MaxUtterances limits any expanded set; negative disables the check.
	MaxUtterances int `koanf:"max_utterances"`
}

// Validate checks the limits.
func (l LimitsConfig) Validate() error {
	if l.MaxDepth < 0 {
		return fmt.Errorf("limits.max_depth must not be negative, got %d", l.MaxDepth)
	}
	return nil
}

// ParseLanguage parses a BCP 47 tag for case folding. Empty means
// language.Und.
func ParseLanguage(s string) (language.Tag, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return language.Und, nil
	}
	tag, err := language.Parse(s)
	if err != nil {
		return language.Und, fmt.Errorf("invalid language %q: %w", s, err)
	}
	return tag, nil
}
