package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/uttergen/pkg/token"
)

func TestParseTemplate_Terms(t *testing.T) {
	tmpl, err := ParseTemplate("fly to <city> [right now] [tomorrow]", token.Position{Line: 1, Column: 1})
	require.NoError(t, err)
	require.Len(t, tmpl.Terms, 5)

	assert.Equal(t, &Word{Text: "fly"}, tmpl.Terms[0])
	assert.Equal(t, &Word{Text: "to"}, tmpl.Terms[1])

	ref, ok := tmpl.Terms[2].(*Ref)
	require.True(t, ok)
	assert.Equal(t, "<city>", ref.Name)
	assert.Equal(t, 8, ref.Pos.Column)

	opt, ok := tmpl.Terms[3].(*Optional)
	require.True(t, ok)
	assert.Equal(t, "[right now]", opt.String())

	single, ok := tmpl.Terms[4].(*Optional)
	require.True(t, ok)
	require.Len(t, single.Body, 1)
	assert.Equal(t, &Word{Text: "tomorrow"}, single.Body[0])

	assert.Equal(t, "fly to <city> [right now] [tomorrow]", tmpl.String())
}

func TestParseTemplate_OptionalWithNonterminals(t *testing.T) {
	tmpl, err := ParseTemplate("[<greeting>] call [my <relative>]", token.Position{Line: 1, Column: 1})
	require.NoError(t, err)

	refs := tmpl.Refs()
	require.Len(t, refs, 2)
	assert.Equal(t, "<greeting>", refs[0].Name)
	assert.Equal(t, "<relative>", refs[1].Name)

	opt := tmpl.Terms[2].(*Optional)
	require.Len(t, opt.Body, 2)
	assert.IsType(t, &Word{}, opt.Body[0])
	assert.IsType(t, &Ref{}, opt.Body[1])
}

func TestParseTemplate_Empty(t *testing.T) {
	tmpl, err := ParseTemplate("", token.Position{Line: 1, Column: 1})
	require.NoError(t, err)
	assert.True(t, tmpl.IsEmpty())
	assert.Empty(t, tmpl.Refs())
}

func TestParseTemplate_LoneBracketsAreEmptyOptional(t *testing.T) {
	_, err := ParseTemplate("go [ ] now", token.Position{Line: 2, Column: 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSyntax)
	assert.Contains(t, err.Error(), ErrEmptyOptional)
}
