package corpus

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Normalizer canonicalizes generated utterances. Text is always put in
// Unicode NFC form; lower-casing is optional. A Normalizer holds no
// transformer state and may be shared between goroutines.
type Normalizer struct {
	lowercase bool
	tag       language.Tag
}

// NewNormalizer creates a Normalizer. tag selects the lower-casing rules;
// use language.Und when the grammar language is unknown.
func NewNormalizer(lowercase bool, tag language.Tag) *Normalizer {
	return &Normalizer{lowercase: lowercase, tag: tag}
}

// String normalizes one utterance.
func (n *Normalizer) String(s string) string {
	if n.lowercase {
		return cases.Lower(n.tag).String(norm.NFC.String(s))
	}
	return norm.NFC.String(s)
}

// Apply normalizes utterances in place and returns the slice.
func (n *Normalizer) Apply(utterances []string) []string {
	if !n.lowercase {
		for i, u := range utterances {
			utterances[i] = norm.NFC.String(u)
		}
		return utterances
	}

	lower := cases.Lower(n.tag)
	for i, u := range utterances {
		utterances[i] = lower.String(norm.NFC.String(u))
	}
	return utterances
}
