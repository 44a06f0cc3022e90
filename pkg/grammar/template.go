package grammar

import (
	"strings"

	"github.com/leapstack-labs/uttergen/pkg/token"
)

// Term is one element of a parsed template.
type Term interface {
	term()
	String() string
}

// Word is a literal word.
type Word struct {
	Text string
}

// Ref is a reference to a nonterminal. Name includes the angle brackets.
type Ref struct {
	Name string
	Pos  token.Position
}

// Optional is a fragment that may be included or omitted.
type Optional struct {
	Body []Term
	Pos  token.Position
}

func (*Word) term()     {}
func (*Ref) term()      {}
func (*Optional) term() {}

func (w *Word) String() string { return w.Text }
func (r *Ref) String() string  { return r.Name }

func (o *Optional) String() string {
	return "[" + joinTerms(o.Body) + "]"
}

func joinTerms(terms []Term) string {
	parts := make([]string, len(terms))
	for i, t := range terms {
		parts[i] = t.String()
	}
	return strings.Join(parts, " ")
}

// Template is one right-hand-side token sequence: an intent template or a
// single nonterminal alternative.
type Template struct {
	// Text is the trimmed source text.
	Text string
	// Pos is where Text starts in the grammar source.
	Pos   token.Position
	Terms []Term
}

// String returns the canonical form of the template.
func (t *Template) String() string {
	return joinTerms(t.Terms)
}

// IsEmpty reports whether the template has no terms.
func (t *Template) IsEmpty() bool {
	return len(t.Terms) == 0
}

// Refs returns every nonterminal reference in the template, including
// those inside optional fragments, in source order.
func (t *Template) Refs() []*Ref {
	var refs []*Ref
	var walk func(terms []Term)
	walk = func(terms []Term) {
		for _, term := range terms {
			switch v := term.(type) {
			case *Ref:
				refs = append(refs, v)
			case *Optional:
				walk(v.Body)
			}
		}
	}
	walk(t.Terms)
	return refs
}

// ParseTemplate tokenizes text and builds its term list. pos is the
// source position of the first character of text.
func ParseTemplate(text string, pos token.Position) (*Template, error) {
	toks, err := NewLexer(text, pos.Line, pos.Column).Tokenize()
	if err != nil {
		return nil, err
	}

	tmpl := &Template{Text: text, Pos: pos}
	var open *Optional
	for _, tok := range toks {
		switch tok.Type {
		case token.EOF:
			// Tokenize guarantees every optional is closed by now.
		case token.WORD:
			appendTerm(&tmpl.Terms, open, &Word{Text: tok.Value})
		case token.NONTERMINAL:
			appendTerm(&tmpl.Terms, open, &Ref{Name: tok.Value, Pos: tok.Pos})
		case token.OPTIONAL:
			opt := &Optional{Pos: tok.Pos}
			opt.Body = appendValue(opt.Body, tok)
			tmpl.Terms = append(tmpl.Terms, opt)
		case token.OPTIONAL_OPEN:
			open = &Optional{Pos: tok.Pos}
			open.Body = appendValue(open.Body, tok)
		case token.OPTIONAL_CLOSE:
			open.Body = appendValue(open.Body, tok)
			if len(open.Body) == 0 {
				return nil, &SyntaxError{Pos: open.Pos, Text: text, Message: ErrEmptyOptional}
			}
			tmpl.Terms = append(tmpl.Terms, open)
			open = nil
		}
	}
	return tmpl, nil
}

func appendTerm(terms *[]Term, open *Optional, t Term) {
	if open != nil {
		open.Body = append(open.Body, t)
		return
	}
	*terms = append(*terms, t)
}

// appendValue adds the inner text of a bracketed token to an optional body.
func appendValue(body []Term, tok token.Token) []Term {
	switch {
	case tok.Value == "":
		return body
	case IsNonterminalName(tok.Value):
		return append(body, &Ref{Name: tok.Value, Pos: tok.Pos})
	default:
		return append(body, &Word{Text: tok.Value})
	}
}
