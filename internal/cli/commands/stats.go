package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/uttergen/internal/cli/output"
	"github.com/leapstack-labs/uttergen/internal/compiler"
	"github.com/leapstack-labs/uttergen/internal/dag"
	"github.com/leapstack-labs/uttergen/pkg/diag"
	"github.com/leapstack-labs/uttergen/pkg/expand"
)

// NewStatsCommand creates the stats command.
func NewStatsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats [grammar]",
		Short: "Show corpus size per intent and nonterminal branching",
		Long: `Compile a grammar and tabulate how large its corpus is.

For each intent: template lines, generated utterances and distinct
utterances. For each nonterminal: alternatives as written, the size of
its fully expanded set, its nesting level and how many rules use it
directly. Nonterminals no intent reaches are listed as unused.`,
		Example: `  uttergen stats skill.grammar
  uttergen stats skill.grammar -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(cmd, args)
		},
	}
	addCompileFlags(cmd)
	return cmd
}

func runStats(cmd *cobra.Command, args []string) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	path, err := cmdCtx.Cfg.GrammarPath(args)
	if err != nil {
		return err
	}
	copts, err := cmdCtx.CompileOptions(nil)
	if err != nil {
		return err
	}

	res, err := compiler.Compile(cmd.Context(), path, copts)
	if err != nil {
		return err
	}

	nts, err := nonterminalStats(res, copts)
	if err != nil {
		return err
	}
	renderStats(cmdCtx.Renderer, output.StatsOutput{
		Grammar:      path,
		Intents:      intentCounts(res),
		Nonterminals: nts,
		Unused:       unusedNonterminals(res),
		Total:        res.Corpus.Len(),
	})
	return nil
}

// nonterminalStats resolves every nonterminal of a compiled grammar. A
// fresh collector keeps warnings already reported by the compile out of
// the count. Resolving first surfaces cycles among unused nonterminals as
// a CycleError before the graph is levelled.
func nonterminalStats(res *compiler.Result, opts compiler.Options) ([]output.NonterminalStats, error) {
	table := res.Grammar.Nonterminals
	exp := expand.New(table, expand.Options{
		MaxDepth:      opts.MaxDepth,
		MaxUtterances: opts.MaxUtterances,
	}, diag.NewCollector(nil, 0))

	stats := make([]output.NonterminalStats, 0, table.Len())
	for _, name := range table.Names() {
		alts, _ := table.Lookup(name)
		set, _, err := exp.Resolve(name)
		if err != nil {
			return nil, err
		}
		stats = append(stats, output.NonterminalStats{
			Name:         name,
			Alternatives: len(alts),
			Expansions:   len(set),
		})
	}

	graph := dag.Build(res.Grammar)
	levels, err := graph.Levels()
	if err != nil {
		return nil, err
	}
	levelOf := make(map[string]int, table.Len())
	for l, names := range levels {
		for _, name := range names {
			levelOf[name] = l
		}
	}
	for i := range stats {
		stats[i].Level = levelOf[stats[i].Name]
		stats[i].UsedBy = len(graph.UsedBy(stats[i].Name))
	}
	return stats, nil
}

func unusedNonterminals(res *compiler.Result) []string {
	unused := dag.Build(res.Grammar).Unused()
	if unused == nil {
		return []string{}
	}
	return unused
}

func renderStats(r *output.Renderer, stats output.StatsOutput) {
	if r.EffectiveMode() == output.ModeJSON {
		_ = r.JSON(stats)
		return
	}

	r.Header("Intents")
	rows := make([][]any, 0, len(stats.Intents))
	for _, c := range stats.Intents {
		rows = append(rows, []any{c.Intent, c.Templates, c.Utterances, c.Unique})
	}
	r.Table([]string{"Intent", "Templates", "Utterances", "Unique"}, rows)

	if len(stats.Nonterminals) > 0 {
		r.Println("")
		r.Header("Nonterminals")
		rows = make([][]any, 0, len(stats.Nonterminals))
		for _, nt := range stats.Nonterminals {
			rows = append(rows, []any{nt.Name, nt.Alternatives, nt.Expansions, nt.Level, nt.UsedBy})
		}
		r.Table([]string{"Nonterminal", "Alternatives", "Expansions", "Level", "Used by"}, rows)
	}
	if len(stats.Unused) > 0 {
		r.Println("")
		r.Println(r.Styles().Warning.Render("Unused nonterminals: " + strings.Join(stats.Unused, ", ")))
	}

	r.Println("")
	r.KeyValue("Total utterances", stats.Total)
}
