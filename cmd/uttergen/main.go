// Package main provides the CLI for the uttergen utterance grammar compiler.
package main

import (
	"os"

	"github.com/leapstack-labs/uttergen/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
