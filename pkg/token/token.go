// Package token defines the token types produced by the grammar lexer.
//
// Every whitespace-separated piece of a template is classified exactly once
// into one of the kinds below; later stages switch on the kind instead of
// re-inspecting the text.
package token

import "fmt"

// TokenType represents the kind of a lexical token.
//
//nolint:revive // Accept stutter as token.TokenType mirrors the parser packages
type TokenType int32

//nolint:revive // ALL_CAPS names follow the lexer convention
const (
	// Special tokens
	EOF TokenType = iota
	ILLEGAL

	WORD           // plain word
	NONTERMINAL    // <name>
	OPTIONAL       // [word]
	OPTIONAL_OPEN  // [word
	OPTIONAL_CLOSE // word]
)

// String returns a human-readable representation of the token type.
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TOKEN(%d)", t)
}

var tokenNames = map[TokenType]string{
	EOF:     "EOF",
	ILLEGAL: "ILLEGAL",

	WORD:           "WORD",
	NONTERMINAL:    "NONTERMINAL",
	OPTIONAL:       "OPTIONAL",
	OPTIONAL_OPEN:  "OPTIONAL_OPEN",
	OPTIONAL_CLOSE: "OPTIONAL_CLOSE",
}

// IsOptional returns true for any of the optional-fragment token kinds.
func IsOptional(t TokenType) bool {
	return t == OPTIONAL || t == OPTIONAL_OPEN || t == OPTIONAL_CLOSE
}

// Token represents a lexical token with position information.
//
// Literal is the raw source text. Value is the text with the bracket
// syntax removed: the name including angle brackets for NONTERMINAL,
// the fragment content for the optional kinds, the word itself for WORD.
type Token struct {
	Type    TokenType
	Literal string
	Value   string
	Pos     Position
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)", t.Type, t.Literal)
}
