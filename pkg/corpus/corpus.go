// Package corpus holds generated utterances grouped by intent and writes
// them in the supported output formats.
package corpus

// Corpus maps intent names to their utterances. Intents keep insertion
// order; utterances keep expansion order, duplicates included.
type Corpus struct {
	intents    []string
	utterances map[string][]string
}

// New creates an empty corpus.
func New() *Corpus {
	return &Corpus{utterances: make(map[string][]string)}
}

// Add appends utterances to intent, registering the intent on first use.
func (c *Corpus) Add(intent string, utterances ...string) {
	if _, ok := c.utterances[intent]; !ok {
		c.intents = append(c.intents, intent)
		c.utterances[intent] = []string{}
	}
	c.utterances[intent] = append(c.utterances[intent], utterances...)
}

// Intents returns the intent names in insertion order.
func (c *Corpus) Intents() []string {
	return append([]string(nil), c.intents...)
}

// Utterances returns the utterances of intent.
func (c *Corpus) Utterances(intent string) []string {
	return c.utterances[intent]
}

// Len returns the total number of utterances.
func (c *Corpus) Len() int {
	n := 0
	for _, u := range c.utterances {
		n += len(u)
	}
	return n
}

// Map returns a copy of the corpus as a plain map.
func (c *Corpus) Map() map[string][]string {
	m := make(map[string][]string, len(c.intents))
	for _, intent := range c.intents {
		m[intent] = append(make([]string, 0, len(c.utterances[intent])), c.utterances[intent]...)
	}
	return m
}

// Unique returns the utterances of intent with later duplicates removed.
func (c *Corpus) Unique(intent string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, u := range c.utterances[intent] {
		if seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out
}
