// Package dag provides the reference graph of a grammar: which intents and
// nonterminals use which nonterminals. It answers dependency-level,
// reachability and cycle questions without expanding anything.
package dag

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/leapstack-labs/uttergen/pkg/grammar"
)

// Kind classifies a node.
type Kind int

const (
	// KindNonterminal is a defined nonterminal.
	KindNonterminal Kind = iota
	// KindIntent is an intent.
	KindIntent
	// KindUndefined is a referenced but undefined nonterminal.
	KindUndefined
)

func (k Kind) String() string {
	switch k {
	case KindNonterminal:
		return "nonterminal"
	case KindIntent:
		return "intent"
	case KindUndefined:
		return "undefined"
	default:
		return "unknown"
	}
}

// Node represents a node in the graph.
type Node struct {
	// ID is the intent name or the bracketed nonterminal name.
	ID   string
	Kind Kind
}

// Graph is a directed graph with an edge from every referenced nonterminal
// to each rule that references it. Unlike a build graph it may contain
// cycles, self references included.
type Graph struct {
	nodes   map[string]*Node
	order   []string
	edges   map[string][]string // referenced -> users
	parents map[string][]string // user -> referenced
}

// NewGraph creates a new empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes:   make(map[string]*Node),
		edges:   make(map[string][]string),
		parents: make(map[string][]string),
	}
}

// Build creates the reference graph of g. Nonterminals come first, then
// intents, each in grammar order.
func Build(g *grammar.Grammar) *Graph {
	graph := NewGraph()
	for _, name := range g.Nonterminals.Names() {
		graph.AddNode(name, KindNonterminal)
	}
	for _, name := range g.Intents.Names() {
		graph.AddNode(name, KindIntent)
	}

	link := func(user string, tmpls []*grammar.Template) {
		for _, tmpl := range tmpls {
			for _, ref := range tmpl.Refs() {
				if _, ok := graph.nodes[ref.Name]; !ok {
					graph.AddNode(ref.Name, KindUndefined)
				}
				_ = graph.AddEdge(ref.Name, user)
			}
		}
	}
	for _, name := range g.Nonterminals.Names() {
		alts, _ := g.Nonterminals.Lookup(name)
		link(name, alts)
	}
	for _, name := range g.Intents.Names() {
		tmpls, _ := g.Intents.Templates(name)
		link(name, tmpls)
	}
	return graph
}

// AddNode adds a node to the graph. Adding an existing ID updates its kind.
func (g *Graph) AddNode(id string, kind Kind) {
	if node, exists := g.nodes[id]; exists {
		node.Kind = kind
		return
	}
	g.nodes[id] = &Node{ID: id, Kind: kind}
	g.order = append(g.order, id)
	g.edges[id] = []string{}
	g.parents[id] = []string{}
}

// AddEdge records that user references ref.
func (g *Graph) AddEdge(ref, user string) error {
	if _, exists := g.nodes[ref]; !exists {
		return fmt.Errorf("referenced node %q does not exist", ref)
	}
	if _, exists := g.nodes[user]; !exists {
		return fmt.Errorf("user node %q does not exist", user)
	}

	if !slices.Contains(g.edges[ref], user) {
		g.edges[ref] = append(g.edges[ref], user)
	}
	if !slices.Contains(g.parents[user], ref) {
		g.parents[user] = append(g.parents[user], ref)
	}
	return nil
}

// Node returns a node by ID.
func (g *Graph) Node(id string) (*Node, bool) {
	node, exists := g.nodes[id]
	return node, exists
}

// References returns the nonterminals id uses directly, in source order.
func (g *Graph) References(id string) []string {
	return g.parents[id]
}

// UsedBy returns the rules that use id directly.
func (g *Graph) UsedBy(id string) []string {
	return g.edges[id]
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, 0, len(g.order))
	for _, id := range g.order {
		nodes = append(nodes, g.nodes[id])
	}
	return nodes
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int {
	count := 0
	for _, users := range g.edges {
		count += len(users)
	}
	return count
}

// HasCycle reports whether any nonterminal reaches itself, along with the
// first cycle found written as a reference path, e.g. <a> -> <b> -> <a>.
func (g *Graph) HasCycle() (bool, []string) {
	visited := make(map[string]bool)
	onPath := make(map[string]bool)
	var stack []string
	var cyclePath []string

	var dfs func(id string) bool
	dfs = func(id string) bool {
		visited[id] = true
		onPath[id] = true
		stack = append(stack, id)

		for _, ref := range g.parents[id] {
			if onPath[ref] {
				start := slices.Index(stack, ref)
				cyclePath = append(slices.Clone(stack[start:]), ref)
				return true
			}
			if !visited[ref] && dfs(ref) {
				return true
			}
		}

		onPath[id] = false
		stack = stack[:len(stack)-1]
		return false
	}

	for _, id := range g.order {
		if !visited[id] && dfs(id) {
			return true, cyclePath
		}
	}
	return false, nil
}

// Levels groups nonterminals by nesting depth. Level 0 holds those whose
// alternatives reference nothing defined; level N those whose deepest
// reference sits at level N-1. Undefined references count as literals.
// Returns an error if the graph contains a cycle.
func (g *Graph) Levels() ([][]string, error) {
	if hasCycle, path := g.HasCycle(); hasCycle {
		return nil, fmt.Errorf("cycle detected: %s", strings.Join(path, " -> "))
	}

	assigned := make(map[string]int)
	var level func(id string) int
	level = func(id string) int {
		if l, ok := assigned[id]; ok {
			return l
		}
		l := 0
		for _, ref := range g.parents[id] {
			if g.nodes[ref].Kind != KindNonterminal {
				continue
			}
			l = max(l, level(ref)+1)
		}
		assigned[id] = l
		return l
	}

	var levels [][]string
	for _, id := range g.order {
		if g.nodes[id].Kind != KindNonterminal {
			continue
		}
		l := level(id)
		for len(levels) <= l {
			levels = append(levels, []string{})
		}
		levels[l] = append(levels[l], id)
	}
	return levels, nil
}

// Level returns the nesting level of a nonterminal (see Levels).
func (g *Graph) Level(id string) (int, error) {
	levels, err := g.Levels()
	if err != nil {
		return 0, err
	}
	for l, ids := range levels {
		if slices.Contains(ids, id) {
			return l, nil
		}
	}
	return 0, fmt.Errorf("nonterminal %q is not defined", id)
}

// Upstream returns every nonterminal id uses, directly or transitively,
// sorted by name.
func (g *Graph) Upstream(id string) []string {
	seen := make(map[string]bool)
	var mark func(nodeID string)
	mark = func(nodeID string) {
		for _, ref := range g.parents[nodeID] {
			if !seen[ref] {
				seen[ref] = true
				mark(ref)
			}
		}
	}
	mark(id)

	result := make([]string, 0, len(seen))
	for ref := range seen {
		result = append(result, ref)
	}
	sort.Strings(result)
	return result
}

// Unused returns defined nonterminals that no intent reaches, in grammar
// order.
func (g *Graph) Unused() []string {
	reached := make(map[string]bool)
	for _, id := range g.order {
		if g.nodes[id].Kind != KindIntent {
			continue
		}
		for _, ref := range g.Upstream(id) {
			reached[ref] = true
		}
	}

	var unused []string
	for _, id := range g.order {
		if g.nodes[id].Kind == KindNonterminal && !reached[id] {
			unused = append(unused, id)
		}
	}
	return unused
}

// Undefined returns referenced but undefined nonterminals in order of
// first reference.
func (g *Graph) Undefined() []string {
	var undefined []string
	for _, id := range g.order {
		if g.nodes[id].Kind == KindUndefined {
			undefined = append(undefined, id)
		}
	}
	return undefined
}
