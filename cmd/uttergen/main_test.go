// Package main provides tests for the uttergen CLI.
package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/uttergen/internal/cli"
	"github.com/leapstack-labs/uttergen/internal/cli/config"
)

func testdataDir(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	return filepath.Join(wd, "..", "..", "testdata")
}

// run executes the root command in an empty working directory and
// returns stdout and stderr.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	td := testdataDir(t)
	config.ResetConfig()
	t.Cleanup(config.ResetConfig)
	t.Chdir(t.TempDir())

	for i, a := range args {
		if strings.HasSuffix(a, ".grammar") && !filepath.IsAbs(a) {
			args[i] = filepath.Join(td, a)
		}
	}

	cmd := cli.NewRootCmd()
	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "uttergen v")
}

func TestHelpCommand(t *testing.T) {
	out, _, err := run(t, "--help")
	require.NoError(t, err)
	for _, expected := range []string{"generate", "check", "stats", "repl", "watch", "completion"} {
		assert.Contains(t, out, expected)
	}
}

func TestGenerateCommand(t *testing.T) {
	out, _, err := run(t, "generate", "travel.grammar", "--intent", "Cancel,Help")
	require.NoError(t, err)
	assert.Equal(t, "Cancel cancel\nCancel cancel my booking\nHelp help\n", out)
}

func TestGenerateCommand_Counts(t *testing.T) {
	out, _, err := run(t, "generate", "travel.grammar", "-f", "json", "-p", "4")
	require.NoError(t, err)

	var got map[string][]string
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	// <when> expands to 3 days plus 2 morning variants.
	assert.Len(t, got["BookFlight"], 3*(1+5)+3)
	assert.Len(t, got["BookHotel"], 3*(1+3))
	assert.Equal(t, []string{"help"}, got["Help"])
}

func TestGenerateCommand_ConfigFile(t *testing.T) {
	td := testdataDir(t)
	config.ResetConfig()
	t.Cleanup(config.ResetConfig)
	dir := t.TempDir()
	t.Chdir(dir)

	cfg := "grammar: " + filepath.Join(td, "travel.grammar") + "\nformat: yaml\nlowercase: true\nout: corpus.yaml\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "uttergen.yaml"), []byte(cfg), 0o600))

	cmd := cli.NewRootCmd()
	stdout := new(bytes.Buffer)
	cmd.SetOut(stdout)
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"generate", "--intent", "Help"})
	require.NoError(t, cmd.Execute())

	data, err := os.ReadFile(filepath.Join(dir, "corpus.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "Help:\n  - help\n", string(data))
}

func TestGenerateCommand_SyntaxError(t *testing.T) {
	_, _, err := run(t, "generate", "broken.grammar")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 3")
}

func TestCheckCommand(t *testing.T) {
	out, _, err := run(t, "check", "travel.grammar", "-o", "json")
	require.NoError(t, err)

	var report struct {
		Status string `json:"status"`
		Errors int    `json:"errors"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "clean", report.Status)
	assert.Zero(t, report.Errors)

	_, _, err = run(t, "check", "broken.grammar")
	require.Error(t, err)
}

func TestInvalidConfig(t *testing.T) {
	_, _, err := run(t, "generate", "travel.grammar", "--format", "csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format")
}
