package compiler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/uttergen/internal/testutil"
	"github.com/leapstack-labs/uttergen/pkg/diag"
	"github.com/leapstack-labs/uttergen/pkg/expand"
	"github.com/leapstack-labs/uttergen/pkg/grammar"
)

const travelGrammar = `# travel skill
<city> ::= berlin | munich
BookFlight ::= fly to <city> [tomorrow]
`

func writeGrammar(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "skill.grammar")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o600))
	return path
}

func compileString(t *testing.T, src string, opts Options) (*Result, error) {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = testutil.NewTestLogger(t)
	}
	return CompileReader(context.Background(), "test.grammar", strings.NewReader(src), opts)
}

func TestCompile_BookFlightExample(t *testing.T) {
	path := writeGrammar(t, travelGrammar)

	res, err := Compile(context.Background(), path, Options{Logger: testutil.NewTestLogger(t)})
	require.NoError(t, err)

	assert.Equal(t, map[string][]string{
		"BookFlight": {
			"fly to berlin",
			"fly to berlin tomorrow",
			"fly to munich",
			"fly to munich tomorrow",
		},
	}, res.Corpus.Map())
	assert.Equal(t, diag.StatusClean, res.Diagnostics.Status())
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, 1, res.Grammar.Nonterminals.Len())
}

func TestCompile_IntentOrderAndDuplicates(t *testing.T) {
	src := `Second ::= b
First ::= a
Second ::= b
<x> ::= c
First ::= <x>
`
	res, err := compileString(t, src, Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"Second", "First"}, res.Corpus.Intents())
	assert.Equal(t, []string{"b", "b"}, res.Corpus.Utterances("Second"))
	assert.Equal(t, []string{"a", "c"}, res.Corpus.Utterances("First"))
}

func TestCompile_SyntaxErrorLine(t *testing.T) {
	src := "# header\n\n<city> ::= berlin\n   # indented comment\nfoo bar\n"

	res, err := compileString(t, src, Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, grammar.ErrSyntax))
	assert.False(t, errors.Is(err, ErrIO))

	var se *grammar.SyntaxError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 5, se.Pos.Line)

	assert.Nil(t, res.Corpus)
	assert.Equal(t, diag.StatusFailed, res.Diagnostics.Status())
	diags := res.Diagnostics.Diagnostics()
	require.Len(t, diags, 1)
	assert.Equal(t, diag.CodeSyntax, diags[0].Code)
	assert.Equal(t, 5, diags[0].Pos.Line)
}

func TestCompile_Cycle(t *testing.T) {
	src := "<a> ::= x <b>\n<b> ::= y <a>\nLoop ::= go <a>\n"

	res, err := compileString(t, src, Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, expand.ErrCycle))
	assert.Contains(t, err.Error(), "intent Loop")
	assert.Nil(t, res.Corpus)
	assert.Equal(t, 1, res.Diagnostics.Errors())
	assert.Equal(t, diag.CodeCycle, res.Diagnostics.Diagnostics()[0].Code)
}

func TestCompile_Limit(t *testing.T) {
	src := "<d> ::= 0 | 1 | 2 | 3 | 4 | 5 | 6 | 7 | 8 | 9\nPin ::= <d> <d> <d>\n"

	_, err := compileString(t, src, Options{MaxUtterances: 500})
	require.Error(t, err)
	assert.True(t, errors.Is(err, expand.ErrLimit))

	res, err := compileString(t, src, Options{MaxUtterances: 1000})
	require.NoError(t, err)
	assert.Equal(t, 1000, res.Corpus.Len())
}

func TestCompile_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.grammar")

	res, err := Compile(context.Background(), path, Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIO))
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.False(t, errors.Is(err, grammar.ErrSyntax))

	var ioErr *IOError
	require.True(t, errors.As(err, &ioErr))
	assert.Equal(t, "open", ioErr.Op)
	assert.Equal(t, diag.CodeIO, res.Diagnostics.Diagnostics()[0].Code)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk on fire") }

func TestCompileReader_ReadError(t *testing.T) {
	_, err := CompileReader(context.Background(), "broken", failingReader{}, Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIO))
	assert.Contains(t, err.Error(), "read broken")
}

func TestCompile_UnknownNonterminalDegrades(t *testing.T) {
	res, err := compileString(t, "Ask ::= what about <weather>\n", Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"what about <weather>"}, res.Corpus.Utterances("Ask"))
	assert.Equal(t, diag.StatusDegraded, res.Diagnostics.Status())
	assert.Equal(t, 1, res.Diagnostics.Warnings())
}

func TestCompile_ParallelMatchesSequential(t *testing.T) {
	var b strings.Builder
	b.WriteString("<city> ::= berlin | munich | new york | paris\n")
	b.WriteString("<day> ::= today | tomorrow | [next] monday\n")
	for i := range 20 {
		fmt.Fprintf(&b, "Intent%02d ::= [please] book %d <city> [on <day>]\n", i, i)
		fmt.Fprintf(&b, "Intent%02d ::= <city> <day>\n", i)
	}
	src := b.String()

	seq, err := compileString(t, src, Options{Parallelism: 1})
	require.NoError(t, err)

	for _, n := range []int{2, 4, 16} {
		t.Run(fmt.Sprintf("parallelism=%d", n), func(t *testing.T) {
			par, err := compileString(t, src, Options{Parallelism: n})
			require.NoError(t, err)
			assert.Equal(t, seq.Corpus.Intents(), par.Corpus.Intents())
			assert.Equal(t, seq.Corpus.Map(), par.Corpus.Map())
		})
	}
}

func TestCompile_IntentFilter(t *testing.T) {
	src := "A ::= a\nB ::= b\nC ::= c\n"

	res, err := compileString(t, src, Options{Intents: []string{"C", "A"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "C"}, res.Corpus.Intents())

	_, err = compileString(t, src, Options{Intents: []string{"Nope"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownIntent))
}

func TestCompile_Lowercase(t *testing.T) {
	res, err := compileString(t, "Greet ::= Hello [Dear] FRIEND\n", Options{Lowercase: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"hello friend", "hello dear friend"}, res.Corpus.Utterances("Greet"))
}

func TestCompile_EmptyTemplateKeepsIntent(t *testing.T) {
	res, err := compileString(t, "Silent ::=\nLoud ::= hey\n", Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"Silent", "Loud"}, res.Corpus.Intents())
	assert.Empty(t, res.Corpus.Utterances("Silent"))
	assert.Equal(t, 1, res.Diagnostics.Warnings())
}

func TestCompile_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := CompileReader(ctx, "x", strings.NewReader(travelGrammar), Options{})
	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, res.Corpus)
	assert.Equal(t, 0, res.Diagnostics.Errors())
}

func TestCompile_RunIDsDiffer(t *testing.T) {
	a, err := compileString(t, travelGrammar, Options{})
	require.NoError(t, err)
	b, err := compileString(t, travelGrammar, Options{})
	require.NoError(t, err)
	assert.NotEqual(t, a.RunID, b.RunID)
}

func TestLoad(t *testing.T) {
	path := writeGrammar(t, travelGrammar)

	res, err := Load(context.Background(), path, Options{})
	require.NoError(t, err)
	assert.Nil(t, res.Corpus)
	assert.Equal(t, []string{"BookFlight"}, res.Grammar.Intents.Names())
	assert.True(t, res.Grammar.Nonterminals.Has("<city>"))
}
