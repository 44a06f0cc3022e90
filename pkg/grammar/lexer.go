package grammar

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/leapstack-labs/uttergen/pkg/token"
)

// Lexer splits a template into whitespace-separated tokens and classifies
// each one exactly once.
type Lexer struct {
	input  string
	line   int
	column int // column of input[0] in the source line

	inOptional bool
	openTok    token.Token
}

// NewLexer creates a Lexer for input, which starts at the given 1-based
// line and column of the grammar source.
func NewLexer(input string, line, column int) *Lexer {
	if column < 1 {
		column = 1
	}
	return &Lexer{input: input, line: line, column: column}
}

// Tokenize returns all tokens of the input, terminated by an EOF token.
// An optional fragment that is opened but never closed is a syntax error.
func (l *Lexer) Tokenize() ([]token.Token, error) {
	var toks []token.Token
	for _, f := range fields(l.input) {
		pos := token.Position{Line: l.line, Column: l.column + f.col}
		tok, err := l.classify(f.text, pos)
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
	}

	if l.inOptional {
		return nil, &SyntaxError{
			Pos:     l.openTok.Pos,
			Text:    l.input,
			Message: fmt.Sprintf(ErrUnterminatedOptional, l.openTok.Literal),
		}
	}

	toks = append(toks, token.Token{
		Type: token.EOF,
		Pos:  token.Position{Line: l.line, Column: l.column + utf8.RuneCountInString(l.input)},
	})
	return toks, nil
}

func (l *Lexer) classify(lit string, pos token.Position) (token.Token, error) {
	tok := token.Token{Literal: lit, Value: lit, Pos: pos}

	if l.inOptional {
		if strings.HasPrefix(lit, "[") {
			return tok, l.errorf(pos, ErrNestedOptional, lit)
		}
		if strings.HasSuffix(lit, "]") {
			tok.Type = token.OPTIONAL_CLOSE
			tok.Value = strings.TrimSuffix(lit, "]")
			l.inOptional = false
			return tok, l.checkFragment(tok)
		}
		tok.Type = classifyPlain(lit)
		return tok, nil
	}

	switch {
	case len(lit) >= 2 && lit[0] == '[' && lit[len(lit)-1] == ']':
		tok.Type = token.OPTIONAL
		tok.Value = lit[1 : len(lit)-1]
		if tok.Value == "" {
			return tok, l.errorf(pos, ErrEmptyOptional)
		}
		return tok, l.checkFragment(tok)
	case lit[0] == '[':
		tok.Type = token.OPTIONAL_OPEN
		tok.Value = lit[1:]
		l.inOptional = true
		l.openTok = tok
		return tok, l.checkFragment(tok)
	default:
		tok.Type = classifyPlain(lit)
		return tok, nil
	}
}

// checkFragment rejects brackets inside an optional's own text.
func (l *Lexer) checkFragment(tok token.Token) error {
	if strings.ContainsAny(tok.Value, "[]") {
		return l.errorf(tok.Pos, ErrNestedOptional, tok.Literal)
	}
	return nil
}

func (l *Lexer) errorf(pos token.Position, format string, args ...any) error {
	return &SyntaxError{Pos: pos, Text: l.input, Message: fmt.Sprintf(format, args...)}
}

// classifyPlain returns NONTERMINAL for `<name>` and WORD for anything else.
func classifyPlain(lit string) token.TokenType {
	if IsNonterminalName(lit) {
		return token.NONTERMINAL
	}
	return token.WORD
}

// IsNonterminalName reports whether s has the form `<name>` with a
// non-empty name and no embedded whitespace or angle brackets.
func IsNonterminalName(s string) bool {
	if len(s) < 3 || s[0] != '<' || s[len(s)-1] != '>' {
		return false
	}
	inner := s[1 : len(s)-1]
	return !strings.ContainsAny(inner, "<>") && strings.IndexFunc(inner, unicode.IsSpace) < 0
}

type field struct {
	text string
	col  int // 0-based rune offset within the input
}

// fields splits s on Unicode whitespace and keeps each field's rune offset.
func fields(s string) []field {
	var out []field
	start := -1
	startCol := 0
	col := 0
	for i, r := range s {
		if unicode.IsSpace(r) {
			if start >= 0 {
				out = append(out, field{text: s[start:i], col: startCol})
				start = -1
			}
		} else if start < 0 {
			start = i
			startCol = col
		}
		col++
	}
	if start >= 0 {
		out = append(out, field{text: s[start:], col: startCol})
	}
	return out
}
