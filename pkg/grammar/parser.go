// Package grammar parses utterance grammars.
//
// A grammar is line oriented. Every non-blank line after comment removal
// is a rule of the form
//
//	<lhs> ::= <rhs>
//
// A bracketed left-hand side such as <city> defines a nonterminal whose
// right-hand side is a '|'-separated list of alternatives. Any other
// left-hand side names an intent, and the right-hand side is one template
// for it. Templates mix plain words, nonterminal references (<name>) and
// optional fragments ([word] or [several words]).
package grammar

import (
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/leapstack-labs/uttergen/pkg/diag"
	"github.com/leapstack-labs/uttergen/pkg/token"
)

// RuleSeparator separates a rule's name from its expansion.
const RuleSeparator = "::="

// Grammar holds the tables built from one grammar source.
type Grammar struct {
	Nonterminals *NonterminalTable
	Intents      *IntentTable
}

// Parser classifies grammar lines and accumulates the rule tables.
type Parser struct {
	reporter diag.Reporter
	grammar  *Grammar
}

// NewParser creates a parser reporting to r (a discarding collector if nil).
func NewParser(r diag.Reporter) *Parser {
	if r == nil {
		r = diag.NewCollector(nil, 0)
	}
	return &Parser{
		reporter: r,
		grammar: &Grammar{
			Nonterminals: NewNonterminalTable(),
			Intents:      NewIntentTable(),
		},
	}
}

// Grammar returns the tables built so far.
func (p *Parser) Grammar() *Grammar {
	return p.grammar
}

// Parse reads every line of r into a new Grammar. The first syntax error
// aborts parsing; read failures are returned unwrapped so callers can tell
// them apart from *SyntaxError.
func Parse(r io.Reader, rep diag.Reporter) (*Grammar, error) {
	lines, err := ReadLines(r)
	if err != nil {
		return nil, err
	}

	p := NewParser(rep)
	for _, line := range lines {
		if err := p.ParseLine(line); err != nil {
			return nil, err
		}
	}
	return p.Grammar(), nil
}

// ParseString parses an in-memory grammar.
func ParseString(src string, rep diag.Reporter) (*Grammar, error) {
	return Parse(strings.NewReader(src), rep)
}

// ParseLine classifies one normalized line and updates the tables.
func (p *Parser) ParseLine(line Line) error {
	linePos := token.Position{Line: line.Num, Column: line.Column}

	idx := strings.Index(line.Text, RuleSeparator)
	if idx < 0 {
		return &SyntaxError{Pos: linePos, Text: line.Text, Message: ErrMissingSeparator}
	}

	lhs := strings.TrimSpace(line.Text[:idx])
	rhsRaw := line.Text[idx+len(RuleSeparator):]
	rhs := strings.TrimSpace(rhsRaw)
	rhsCol := line.Column + utf8.RuneCountInString(line.Text[:idx+len(RuleSeparator)]) + leadingSpaceRunes(rhsRaw)

	switch {
	case lhs == "":
		return &SyntaxError{Pos: linePos, Text: line.Text, Message: ErrMissingName}
	case strings.IndexFunc(lhs, unicode.IsSpace) >= 0:
		return &SyntaxError{Pos: linePos, Text: line.Text, Message: fmt.Sprintf(ErrNameWhitespace, lhs)}
	case IsNonterminalName(lhs):
		return p.parseNonterminal(lhs, rhs, token.Position{Line: line.Num, Column: rhsCol})
	case strings.HasPrefix(lhs, "<") || strings.HasSuffix(lhs, ">"):
		return &SyntaxError{Pos: linePos, Text: line.Text, Message: fmt.Sprintf(ErrMalformedNonterminal, lhs)}
	default:
		return p.parseIntent(lhs, rhs, token.Position{Line: line.Num, Column: rhsCol})
	}
}

func (p *Parser) parseNonterminal(name, rhs string, pos token.Position) error {
	parts := strings.Split(rhs, "|")
	alts := make([]*Template, 0, len(parts))
	col := pos.Column
	for _, part := range parts {
		text := strings.TrimSpace(part)
		altPos := token.Position{Line: pos.Line, Column: col + leadingSpaceRunes(part)}
		tmpl, err := ParseTemplate(text, altPos)
		if err != nil {
			return err
		}
		alts = append(alts, tmpl)
		col += utf8.RuneCountInString(part) + 1
	}

	p.grammar.Nonterminals.Add(name, alts...)
	p.reporter.Debug(2, "nonterminal found", "line", pos.Line, "name", name, "alternatives", len(alts))
	return nil
}

func (p *Parser) parseIntent(name, rhs string, pos token.Position) error {
	tmpl, err := ParseTemplate(rhs, pos)
	if err != nil {
		return err
	}

	if tmpl.IsEmpty() {
		p.grammar.Intents.declare(name)
		p.reporter.Warning(diag.CodeEmptyTemplate, pos, fmt.Sprintf("intent %s has an empty template; skipped", name))
		return nil
	}

	p.grammar.Intents.Add(name, tmpl)
	p.reporter.Debug(2, "intent found", "line", pos.Line, "intent", name)
	return nil
}

func leadingSpaceRunes(s string) int {
	trimmed := strings.TrimLeftFunc(s, unicode.IsSpace)
	return utf8.RuneCountInString(s[:len(s)-len(trimmed)])
}
