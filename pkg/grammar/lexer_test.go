package grammar

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/uttergen/pkg/token"
)

func TestLexer_Classification(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		types  []token.TokenType
		values []string
	}{
		{
			name:   "plain words",
			input:  "fly to berlin",
			types:  []token.TokenType{token.WORD, token.WORD, token.WORD},
			values: []string{"fly", "to", "berlin"},
		},
		{
			name:   "nonterminal",
			input:  "to <city>",
			types:  []token.TokenType{token.WORD, token.NONTERMINAL},
			values: []string{"to", "<city>"},
		},
		{
			name:   "single optional",
			input:  "[please] stop",
			types:  []token.TokenType{token.OPTIONAL, token.WORD},
			values: []string{"please", "stop"},
		},
		{
			name:   "multi token optional",
			input:  "go [right now] home",
			types:  []token.TokenType{token.WORD, token.OPTIONAL_OPEN, token.OPTIONAL_CLOSE, token.WORD},
			values: []string{"go", "right", "now", "home"},
		},
		{
			name:   "inner words of optional",
			input:  "[a b <c> d]",
			types:  []token.TokenType{token.OPTIONAL_OPEN, token.WORD, token.NONTERMINAL, token.OPTIONAL_CLOSE},
			values: []string{"a", "b", "<c>", "d"},
		},
		{
			name:   "close bracket outside optional is a word",
			input:  "oops]",
			types:  []token.TokenType{token.WORD},
			values: []string{"oops]"},
		},
		{
			name:   "not quite nonterminals",
			input:  "<> <a b <x",
			types:  []token.TokenType{token.WORD, token.WORD, token.WORD, token.WORD},
			values: []string{"<>", "<a", "b", "<x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks, err := NewLexer(tt.input, 1, 1).Tokenize()
			require.NoError(t, err)
			require.Len(t, toks, len(tt.types)+1)
			assert.Equal(t, token.EOF, toks[len(toks)-1].Type)

			for i, typ := range tt.types {
				assert.Equal(t, typ, toks[i].Type, "token %d (%s)", i, toks[i].Literal)
				assert.Equal(t, tt.values[i], toks[i].Value, "token %d", i)
			}
		})
	}
}

func TestLexer_Positions(t *testing.T) {
	toks, err := NewLexer("fly  to <city>", 4, 12).Tokenize()
	require.NoError(t, err)

	assert.Equal(t, token.Position{Line: 4, Column: 12}, toks[0].Pos)
	assert.Equal(t, token.Position{Line: 4, Column: 17}, toks[1].Pos)
	assert.Equal(t, token.Position{Line: 4, Column: 20}, toks[2].Pos)
}

func TestLexer_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantMsg string
	}{
		{"unterminated", "go [right now", "unterminated optional"},
		{"nested", "go [right [now]]", "nested optional"},
		{"empty optional", "go []", "empty optional"},
		{"bracket inside single optional", "[[x]]", "nested optional"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLexer(tt.input, 9, 1).Tokenize()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrSyntax))
			assert.Contains(t, err.Error(), tt.wantMsg)
			assert.Contains(t, err.Error(), "line 9")
		})
	}
}

func TestIsNonterminalName(t *testing.T) {
	assert.True(t, IsNonterminalName("<city>"))
	assert.True(t, IsNonterminalName("<x>"))
	assert.True(t, IsNonterminalName("<city.name-2>"))
	assert.False(t, IsNonterminalName("<>"))
	assert.False(t, IsNonterminalName("city"))
	assert.False(t, IsNonterminalName("<my city>"))
	assert.False(t, IsNonterminalName("<a<b>"))
	assert.False(t, IsNonterminalName("<city"))
}
