package commands

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/uttergen/internal/cli/output"
	"github.com/leapstack-labs/uttergen/internal/cli/testutil"
)

func runCheckCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetWorkingConfig(t)

	cmd := NewCheckCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCheck_Clean(t *testing.T) {
	_, path := testutil.SetupTestProject(t)

	out, err := runCheckCommand(t, path)
	require.NoError(t, err)

	testutil.AssertNoANSI(t, out)
	testutil.AssertValidMarkdown(t, out)
	assert.Contains(t, out, "| BookHotel | 1 | 6 | 6 |")
	assert.Contains(t, out, "| Greet | 2 | 2 | 1 |")
	assert.Contains(t, out, "- **Total utterances**: 12")
	assert.Contains(t, out, "Grammar is clean")
}

func TestCheck_WarningsAndStrict(t *testing.T) {
	path := testutil.WriteGrammar(t, t.TempDir(), "warn.grammar", "Ask ::= what about <weather>\n")

	out, err := runCheckCommand(t, path)
	require.NoError(t, err)
	assert.Contains(t, out, "unknown-nonterminal")
	assert.Contains(t, out, "Summary: 0 errors, 1 warning")

	_, err = runCheckCommand(t, path, "--strict")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCheckFailed))
}

func TestCheck_SyntaxError(t *testing.T) {
	path := testutil.WriteGrammar(t, t.TempDir(), "bad.grammar", "# comment\n\nfoo bar\n")

	out, err := runCheckCommand(t, path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCheckFailed))
	assert.Contains(t, out, "syntax")
	assert.Contains(t, out, "3:1")
	assert.Contains(t, out, "Summary: 1 error")
}

func TestRenderCheck_JSON(t *testing.T) {
	tr := testutil.NewTestRendererJSON()
	ctx := newTestContext(t, tr)
	_, path := testutil.SetupTestProject(t)
	opts, err := ctx.CompileOptions(nil)
	require.NoError(t, err)

	res, err := compileForTest(t, path, opts)
	require.NoError(t, err)
	renderCheck(tr.Renderer, path, res)

	var got output.CheckOutput
	require.NoError(t, json.Unmarshal(tr.Out.Bytes(), &got))
	assert.Equal(t, "clean", got.Status)
	assert.Equal(t, 0, got.Errors)
	require.Len(t, got.Intents, 3)
	assert.Equal(t, output.IntentCount{Intent: "Greet", Templates: 2, Utterances: 2, Unique: 1}, got.Intents[2])
	assert.Empty(t, got.Diagnostics)
}
