// Package expand enumerates every literal string a template can produce.
//
// Expansion is a left-to-right cross product: plain words extend every
// alternative, an optional fragment yields each alternative with and
// without the fragment, and a nonterminal reference multiplies the
// alternatives by the nonterminal's resolved set. Strings are joined with
// single spaces; empty pieces never introduce stray whitespace.
//
// Nonterminals are resolved bottom-up with an explicit stack instead of
// host recursion. The names on the active path are tracked so that a
// nonterminal reaching itself is reported as a *CycleError.
package expand

import (
	"fmt"
	"sync"

	"github.com/leapstack-labs/uttergen/pkg/diag"
	"github.com/leapstack-labs/uttergen/pkg/grammar"
	"github.com/leapstack-labs/uttergen/pkg/token"
)

// Default budgets.
const (
	DefaultMaxDepth      = 64
	DefaultMaxUtterances = 1_000_000
)

// Options bounds an expansion.
type Options struct {
	// MaxDepth limits nonterminal nesting. Zero means DefaultMaxDepth.
	MaxDepth int
	// MaxUtterances limits the size of any expanded set. Zero means
	// DefaultMaxUtterances; a negative value disables the check.
	MaxUtterances int
}

func (o Options) withDefaults() Options {
	if o.MaxDepth <= 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	if o.MaxUtterances == 0 {
		o.MaxUtterances = DefaultMaxUtterances
	}
	return o
}

// Expander expands templates against a nonterminal table. Resolved
// nonterminal sets are memoized, so one Expander should serve a whole
// compilation. It is safe for concurrent use.
type Expander struct {
	table    *grammar.NonterminalTable
	opts     Options
	reporter diag.Reporter

	mu    sync.Mutex
	cache map[string][]string
}

// New creates an Expander. A nil reporter discards diagnostics.
func New(table *grammar.NonterminalTable, opts Options, r diag.Reporter) *Expander {
	if r == nil {
		r = diag.NewCollector(nil, 0)
	}
	if table == nil {
		table = grammar.NewNonterminalTable()
	}
	return &Expander{
		table:    table,
		opts:     opts.withDefaults(),
		reporter: r,
		cache:    make(map[string][]string),
	}
}

// Expand returns every string tmpl can generate, in expansion order and
// with duplicates preserved. A template without terms yields one empty string.
func (e *Expander) Expand(tmpl *grammar.Template) ([]string, error) {
	return e.expandTerms(tmpl.Terms, tmpl, e.resolve)
}

// ExpandString parses text as a template and expands it.
func (e *Expander) ExpandString(text string) ([]string, error) {
	tmpl, err := grammar.ParseTemplate(text, token.Position{Line: 1, Column: 1})
	if err != nil {
		return nil, err
	}
	return e.Expand(tmpl)
}

// Resolve returns the full literal expansion set of a nonterminal.
// The boolean is false when name is not defined.
func (e *Expander) Resolve(name string) ([]string, bool, error) {
	if !e.table.Has(name) {
		return nil, false, nil
	}
	set, err := e.resolve(&grammar.Ref{Name: name})
	if err != nil {
		return nil, true, err
	}
	return set, true, nil
}

// resolveFunc returns the expansion set of a reference, or nil without
// error when the nonterminal is undefined.
type resolveFunc func(ref *grammar.Ref) ([]string, error)

func (e *Expander) expandTerms(terms []grammar.Term, where *grammar.Template, resolve resolveFunc) ([]string, error) {
	alts := []string{""}

	for _, term := range terms {
		switch t := term.(type) {
		case *grammar.Word:
			for i := range alts {
				alts[i] = join(alts[i], t.Text)
			}

		case *grammar.Ref:
			set, err := resolve(t)
			if err != nil {
				return nil, err
			}
			if set == nil {
				e.reporter.Warning(diag.CodeUnknownNonterminal, t.Pos,
					fmt.Sprintf("unknown nonterminal %s; using it as a literal word", t.Name))
				for i := range alts {
					alts[i] = join(alts[i], t.Name)
				}
				continue
			}
			if err := e.checkSize(len(alts), len(set), where); err != nil {
				return nil, err
			}
			next := make([]string, 0, len(alts)*len(set))
			for _, alt := range alts {
				for _, s := range set {
					next = append(next, join(alt, s))
				}
			}
			alts = next

		case *grammar.Optional:
			body, err := e.expandTerms(t.Body, where, resolve)
			if err != nil {
				return nil, err
			}
			if err := e.checkSize(len(alts), len(body)+1, where); err != nil {
				return nil, err
			}
			next := make([]string, 0, len(alts)*(len(body)+1))
			for _, alt := range alts {
				next = append(next, alt)
				for _, b := range body {
					next = append(next, join(alt, b))
				}
			}
			alts = next
		}
	}
	return alts, nil
}

func (e *Expander) checkSize(have, factor int, where *grammar.Template) error {
	limit := e.opts.MaxUtterances
	if limit < 0 || factor == 0 || have <= limit/factor {
		return nil
	}
	err := &LimitError{Kind: LimitUtterances, Limit: limit}
	if where != nil {
		err.Where = fmt.Sprintf("%q", where.Text)
		err.Pos = where.Pos
	}
	return err
}

// frame is one nonterminal on the active resolution path.
type frame struct {
	name string
	deps []*grammar.Ref
	next int
}

// resolve computes and caches the expansion set of ref's nonterminal.
// Dependencies are pushed on an explicit stack and resolved first, so by
// the time a nonterminal's own alternatives are expanded every reference
// in them is either cached or undefined.
func (e *Expander) resolve(ref *grammar.Ref) ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if set, ok := e.cache[ref.Name]; ok {
		return set, nil
	}
	if !e.table.Has(ref.Name) {
		return nil, nil
	}

	onPath := map[string]bool{ref.Name: true}
	stack := []*frame{e.newFrame(ref.Name)}

	for len(stack) > 0 {
		top := stack[len(stack)-1]

		if top.next < len(top.deps) {
			dep := top.deps[top.next]
			top.next++

			if _, done := e.cache[dep.Name]; done || !e.table.Has(dep.Name) {
				continue
			}
			if onPath[dep.Name] {
				return nil, &CycleError{Path: cyclePath(stack, dep.Name), Pos: dep.Pos}
			}
			if len(stack) >= e.opts.MaxDepth {
				return nil, &LimitError{Kind: LimitDepth, Limit: e.opts.MaxDepth, Where: ref.Name, Pos: dep.Pos}
			}
			onPath[dep.Name] = true
			stack = append(stack, e.newFrame(dep.Name))
			continue
		}

		set, err := e.expandNonterminal(top.name)
		if err != nil {
			return nil, err
		}
		e.cache[top.name] = set
		e.reporter.Debug(3, "nonterminal resolved", "name", top.name, "alternatives", len(set))

		delete(onPath, top.name)
		stack = stack[:len(stack)-1]
	}

	return e.cache[ref.Name], nil
}

func (e *Expander) newFrame(name string) *frame {
	alts, _ := e.table.Lookup(name)
	var deps []*grammar.Ref
	for _, alt := range alts {
		deps = append(deps, alt.Refs()...)
	}
	return &frame{name: name, deps: deps}
}

// expandNonterminal expands all alternatives of name. Called with e.mu
// held and with every dependency already cached.
func (e *Expander) expandNonterminal(name string) ([]string, error) {
	alts, _ := e.table.Lookup(name)
	cached := func(ref *grammar.Ref) ([]string, error) {
		return e.cache[ref.Name], nil
	}

	var set []string
	for _, alt := range alts {
		out, err := e.expandTerms(alt.Terms, alt, cached)
		if err != nil {
			return nil, err
		}
		if err := e.checkSize(1, len(set)+len(out), alt); err != nil {
			return nil, err
		}
		set = append(set, out...)
	}
	return set, nil
}

// cyclePath renders the active path from the first occurrence of name
// back to name, e.g. <a> -> <b> -> <a>.
func cyclePath(stack []*frame, name string) []string {
	start := 0
	for i, f := range stack {
		if f.name == name {
			start = i
			break
		}
	}
	path := make([]string, 0, len(stack)-start+1)
	for _, f := range stack[start:] {
		path = append(path, f.name)
	}
	return append(path, name)
}

// join appends word to s with a single separating space, skipping empty pieces.
func join(s, word string) string {
	switch {
	case word == "":
		return s
	case s == "":
		return word
	default:
		return s + " " + word
	}
}
