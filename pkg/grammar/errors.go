package grammar

import (
	"errors"
	"fmt"

	"github.com/leapstack-labs/uttergen/pkg/token"
)

// ErrSyntax is matched by every *SyntaxError via errors.Is.
var ErrSyntax = errors.New("grammar syntax error")

// SyntaxError reports a malformed grammar line. It is always fatal.
type SyntaxError struct {
	Pos     token.Position
	Text    string // offending source line, normalized
	Message string
}

func (e *SyntaxError) Error() string {
	if e.Text == "" {
		return fmt.Sprintf("syntax error at line %d: %s", e.Pos.Line, e.Message)
	}
	return fmt.Sprintf("syntax error at line %d: %s: %q", e.Pos.Line, e.Message, e.Text)
}

// Is reports whether target is ErrSyntax.
func (e *SyntaxError) Is(target error) bool {
	return target == ErrSyntax
}

// Common error messages
const (
	ErrMissingSeparator     = "expected '<name> ::= <expansion>'"
	ErrMissingName          = "missing rule name before '::='"
	ErrNameWhitespace       = "rule name %q must not contain whitespace"
	ErrMalformedNonterminal = "malformed nonterminal name %q"
	ErrUnterminatedOptional = "unterminated optional fragment starting with %q"
	ErrNestedOptional       = "nested optional fragment %q is not supported"
	ErrEmptyOptional        = "empty optional fragment"
)
