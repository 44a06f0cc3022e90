package expand

import (
	"errors"
	"fmt"
	"strings"

	"github.com/leapstack-labs/uttergen/pkg/token"
)

var (
	// ErrCycle is matched by every *CycleError via errors.Is.
	ErrCycle = errors.New("cyclic nonterminal reference")
	// ErrLimit is matched by every *LimitError via errors.Is.
	ErrLimit = errors.New("expansion limit exceeded")
)

// CycleError reports a nonterminal that references itself directly or
// transitively. Path starts and ends with the re-entered name.
type CycleError struct {
	Path []string
	Pos  token.Position // reference that closed the cycle
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cyclic nonterminal reference at line %d: %s", e.Pos.Line, strings.Join(e.Path, " -> "))
}

// Is reports whether target is ErrCycle.
func (e *CycleError) Is(target error) bool {
	return target == ErrCycle
}

// LimitKind names the budget that was exceeded.
type LimitKind string

// Budgets enforced by the expander.
const (
	LimitDepth      LimitKind = "depth"
	LimitUtterances LimitKind = "utterances"
)

// LimitError reports that an expansion exceeded a configured budget.
type LimitError struct {
	Kind  LimitKind
	Limit int
	Where string // template or nonterminal being expanded
	Pos   token.Position
}

func (e *LimitError) Error() string {
	switch e.Kind {
	case LimitDepth:
		return fmt.Sprintf("nonterminal nesting deeper than %d while resolving %s (line %d)", e.Limit, e.Where, e.Pos.Line)
	default:
		return fmt.Sprintf("expansion of %s (line %d) exceeds %d utterances", e.Where, e.Pos.Line, e.Limit)
	}
}

// Is reports whether target is ErrLimit.
func (e *LimitError) Is(target error) bool {
	return target == ErrLimit
}
