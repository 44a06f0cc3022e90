package grammar

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripComment(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"no comment", "a ::= b", "a ::= b"},
		{"full line", "# just a comment", ""},
		{"trailing", "a ::= b # note", "a ::= b "},
		{"escaped hash", `a ::= channel \#1`, "a ::= channel #1"},
		{"escaped then comment", `a ::= \# x # y`, "a ::= # x "},
		{"other backslash kept", `a ::= b\c`, `a ::= b\c`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripComment(tt.input))
		})
	}
}

func TestNormalizeLine(t *testing.T) {
	text, col, ok := NormalizeLine("   Play ::= play   # music")
	require.True(t, ok)
	assert.Equal(t, "Play ::= play", text)
	assert.Equal(t, 4, col)

	_, _, ok = NormalizeLine("   \t  ")
	assert.False(t, ok)

	_, _, ok = NormalizeLine("  # only a comment")
	assert.False(t, ok)
}

func TestReadLines_KeepsPhysicalLineNumbers(t *testing.T) {
	src := strings.Join([]string{
		"# header comment",
		"",
		"<city> ::= berlin | munich",
		"   ",
		"# another",
		"BookFlight ::= fly to <city>",
	}, "\n")

	lines, err := ReadLines(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, lines, 2)

	assert.Equal(t, 3, lines[0].Num)
	assert.Equal(t, "<city> ::= berlin | munich", lines[0].Text)
	assert.Equal(t, 6, lines[1].Num)
	assert.Equal(t, "BookFlight ::= fly to <city>", lines[1].Text)
}

func TestReadLines_CRLFAndBOM(t *testing.T) {
	src := "\ufeffA ::= x\r\nB ::= y\r\n"

	lines, err := ReadLines(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "A ::= x", lines[0].Text)
	assert.Equal(t, "B ::= y", lines[1].Text)
}
