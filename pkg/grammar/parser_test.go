package grammar

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/uttergen/pkg/diag"
)

func TestParse_ClassifiesRules(t *testing.T) {
	src := `
# cities we serve
<city> ::= berlin | munich
BookFlight ::= fly to <city> [tomorrow]
BookFlight ::= book a flight to <city>
Cancel ::= cancel
`
	g, err := ParseString(src, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"<city>"}, g.Nonterminals.Names())
	alts, ok := g.Nonterminals.Lookup("<city>")
	require.True(t, ok)
	require.Len(t, alts, 2)
	assert.Equal(t, "berlin", alts[0].Text)
	assert.Equal(t, "munich", alts[1].Text)

	assert.Equal(t, []string{"BookFlight", "Cancel"}, g.Intents.Names())
	tmpls, ok := g.Intents.Templates("BookFlight")
	require.True(t, ok)
	require.Len(t, tmpls, 2)
	assert.Equal(t, "fly to <city> [tomorrow]", tmpls[0].Text)
	assert.Equal(t, "book a flight to <city>", tmpls[1].Text)
}

func TestParse_NonterminalDefinitionsAccumulate(t *testing.T) {
	src := `<city> ::= berlin | munich
<city> ::= hamburg | berlin`

	g, err := ParseString(src, nil)
	require.NoError(t, err)

	alts, _ := g.Nonterminals.Lookup("<city>")
	texts := make([]string, len(alts))
	for i, a := range alts {
		texts[i] = a.Text
	}
	assert.Equal(t, []string{"berlin", "munich", "hamburg", "berlin"}, texts)
	assert.Equal(t, 1, g.Nonterminals.Len())
}

func TestParse_SeparatorWhitespace(t *testing.T) {
	g, err := ParseString("<a>::=x|  y  |z\nGo::=go <a>", nil)
	require.NoError(t, err)

	alts, _ := g.Nonterminals.Lookup("<a>")
	require.Len(t, alts, 3)
	assert.Equal(t, "y", alts[1].Text)
	assert.Equal(t, 1, alts[1].Pos.Line)
	assert.Equal(t, 11, alts[1].Pos.Column)
	assert.True(t, g.Intents.Len() == 1)
}

func TestParse_EmptyAlternativeKept(t *testing.T) {
	g, err := ParseString("<maybe> ::= please |", nil)
	require.NoError(t, err)

	alts, _ := g.Nonterminals.Lookup("<maybe>")
	require.Len(t, alts, 2)
	assert.True(t, alts[1].IsEmpty())
}

func TestParse_SyntaxErrors(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		wantLine int
		wantMsg  string
	}{
		{
			name:     "missing separator",
			src:      "foo bar",
			wantLine: 1,
			wantMsg:  "expected",
		},
		{
			name:     "line number ignores comments and blanks",
			src:      "# comment\n\n<a> ::= x\n   # indented comment\nfoo bar\n",
			wantLine: 5,
			wantMsg:  `"foo bar"`,
		},
		{
			name:     "missing name",
			src:      "::= x",
			wantLine: 1,
			wantMsg:  "missing rule name",
		},
		{
			name:     "name with whitespace",
			src:      "Book Flight ::= fly",
			wantLine: 1,
			wantMsg:  "must not contain whitespace",
		},
		{
			name:     "malformed nonterminal",
			src:      "<city ::= x",
			wantLine: 1,
			wantMsg:  "malformed nonterminal",
		},
		{
			name:     "unterminated optional",
			src:      "A ::= a\nB ::= go [now",
			wantLine: 2,
			wantMsg:  "unterminated optional",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseString(tt.src, nil)
			require.Error(t, err)

			var synErr *SyntaxError
			require.True(t, errors.As(err, &synErr))
			assert.Equal(t, tt.wantLine, synErr.Pos.Line)
			assert.Contains(t, err.Error(), tt.wantMsg)
			assert.ErrorIs(t, err, ErrSyntax)
		})
	}
}

func TestParse_EmptyIntentTemplateWarns(t *testing.T) {
	c := diag.NewCollector(nil, 0)

	g, err := ParseString("Empty ::=\nFull ::= hello", c)
	require.NoError(t, err)

	assert.Equal(t, []string{"Empty", "Full"}, g.Intents.Names())
	tmpls, ok := g.Intents.Templates("Empty")
	require.True(t, ok)
	assert.Empty(t, tmpls)

	require.Equal(t, 1, c.Warnings())
	assert.Equal(t, diag.CodeEmptyTemplate, c.Diagnostics()[0].Code)
	assert.Equal(t, 1, c.Diagnostics()[0].Pos.Line)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("disk on fire")
}

func TestParse_ReadErrorIsNotSyntaxError(t *testing.T) {
	_, err := Parse(failingReader{}, nil)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrSyntax))
	assert.True(t, strings.Contains(err.Error(), "disk on fire"))
}
