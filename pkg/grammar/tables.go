package grammar

// NonterminalTable maps nonterminal names to their alternatives.
// Repeated definitions accumulate in file order.
type NonterminalTable struct {
	names []string
	rules map[string][]*Template
}

// NewNonterminalTable creates an empty table.
func NewNonterminalTable() *NonterminalTable {
	return &NonterminalTable{rules: make(map[string][]*Template)}
}

// Add appends alternatives to name, creating the entry if absent.
func (t *NonterminalTable) Add(name string, alts ...*Template) {
	if _, exists := t.rules[name]; !exists {
		t.names = append(t.names, name)
		t.rules[name] = []*Template{}
	}
	t.rules[name] = append(t.rules[name], alts...)
}

// Lookup returns all alternatives of name.
func (t *NonterminalTable) Lookup(name string) ([]*Template, bool) {
	alts, ok := t.rules[name]
	return alts, ok
}

// Has reports whether name is defined.
func (t *NonterminalTable) Has(name string) bool {
	_, ok := t.rules[name]
	return ok
}

// Names returns nonterminal names in first-definition order.
func (t *NonterminalTable) Names() []string {
	return append([]string(nil), t.names...)
}

// Len returns the number of distinct nonterminals.
func (t *NonterminalTable) Len() int {
	return len(t.names)
}

// IntentTable maps intent names to their templates in insertion order.
type IntentTable struct {
	names     []string
	templates map[string][]*Template
}

// NewIntentTable creates an empty table.
func NewIntentTable() *IntentTable {
	return &IntentTable{templates: make(map[string][]*Template)}
}

// Add appends a template to intent, creating the entry if absent.
func (t *IntentTable) Add(intent string, tmpl *Template) {
	t.declare(intent)
	t.templates[intent] = append(t.templates[intent], tmpl)
}

// declare registers intent without adding a template.
func (t *IntentTable) declare(intent string) {
	if _, exists := t.templates[intent]; !exists {
		t.names = append(t.names, intent)
		t.templates[intent] = []*Template{}
	}
}

// Templates returns the templates of intent.
func (t *IntentTable) Templates(intent string) ([]*Template, bool) {
	tmpls, ok := t.templates[intent]
	return tmpls, ok
}

// Names returns intent names in first-encounter order.
func (t *IntentTable) Names() []string {
	return append([]string(nil), t.names...)
}

// Len returns the number of distinct intents.
func (t *IntentTable) Len() int {
	return len(t.names)
}
