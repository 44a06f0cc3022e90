package config

import (
	"github.com/leapstack-labs/uttergen/pkg/corpus"
	"github.com/leapstack-labs/uttergen/pkg/expand"
)

// Default configuration values.
const (
	DefaultFormat         = string(corpus.FormatText)
	DefaultOutput         = "auto" // TTY=text, non-TTY=markdown
	DefaultLogFormat      = "text"
	DefaultParallelism    = 1
	DefaultInvocationName = corpus.DefaultInvocationName
	DefaultMaxDepth       = expand.DefaultMaxDepth
	DefaultMaxUtterances  = expand.DefaultMaxUtterances
)

// Defaults returns the default values keyed by config key.
func Defaults() map[string]any {
	return map[string]any{
		"format":                DefaultFormat,
		"output":                DefaultOutput,
		"log_format":            DefaultLogFormat,
		"verbose":               false,
		"verbosity":             0,
		"parallelism":           DefaultParallelism,
		"lowercase":             false,
		"language":              "",
		"invocation_name":       DefaultInvocationName,
		"limits.max_depth":      DefaultMaxDepth,
		"limits.max_utterances": DefaultMaxUtterances,
	}
}
