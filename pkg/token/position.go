package token

import "fmt"

// Position represents a location in the grammar source.
type Position struct {
	Line   int // 1-based line number
	Column int // 1-based column number
}

// IsValid returns true if the position is valid (line > 0).
func (p Position) IsValid() bool {
	return p.Line > 0
}

func (p Position) String() string {
	if !p.IsValid() {
		return "-"
	}
	if p.Column > 0 {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%d", p.Line)
}
