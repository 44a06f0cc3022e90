package commands

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/uttergen/internal/compiler"
	"github.com/leapstack-labs/uttergen/pkg/corpus"
	"github.com/leapstack-labs/uttergen/pkg/diag"
	"github.com/leapstack-labs/uttergen/pkg/expand"
	"github.com/leapstack-labs/uttergen/pkg/grammar"
)

const replPrompt = "uttergen> "

// NewREPLCommand creates the repl command.
func NewREPLCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repl [grammar]",
		Short: "Expand ad-hoc templates against a grammar interactively",
		Long: `Start an interactive prompt bound to a grammar's nonterminals.

Every line entered is parsed as a template and expanded, so
"fly to <city> [tomorrow]" prints each utterance it produces.
Dot commands inspect the grammar; type .help for the list.`,
		Example: `  uttergen repl skill.grammar`,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runREPL(cmd, args)
		},
	}
	addCompileFlags(cmd)
	return cmd
}

func runREPL(cmd *cobra.Command, args []string) error {
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

	res, err := compiler.Load(cmd.Context(), path, copts)
	if err != nil {
		return err
	}
	sess := newREPLSession(res.Grammar, copts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          replPrompt,
		HistoryFile:     filepath.Join(cmdCtx.Cfg.ProjectRoot, ".uttergen_history"),
		AutoComplete:    sess.completer(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	_, _ = fmt.Fprintf(sess.out, "uttergen REPL (grammar: %s)\n", path)
	_, _ = fmt.Fprintln(sess.out, "Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(sess.out)

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if quit := sess.handleLine(line); quit {
			return nil
		}
	}
}

// replSession expands input lines against one grammar. Each line gets a
// fresh collector so warnings are reported per line.
type replSession struct {
	grammar *grammar.Grammar
	opts    expand.Options
	norm    *corpus.Normalizer
	out     io.Writer
	errOut  io.Writer
}

func newREPLSession(g *grammar.Grammar, copts compiler.Options, out, errOut io.Writer) *replSession {
	return &replSession{
		grammar: g,
		opts:    expand.Options{MaxDepth: copts.MaxDepth, MaxUtterances: copts.MaxUtterances},
		norm:    corpus.NewNormalizer(copts.Lowercase, copts.Language),
		out:     out,
		errOut:  errOut,
	}
}

// handleLine processes one line of input and reports whether to quit.
func (s *replSession) handleLine(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	if strings.HasPrefix(line, ".") {
		return s.handleDotCommand(line)
	}
	s.expand(line)
	return false
}

func (s *replSession) expand(text string) {
	coll := diag.NewCollector(nil, 0)
	exp := expand.New(s.grammar.Nonterminals, s.opts, coll)

	utterances, err := exp.ExpandString(text)
	if err != nil {
		_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
		return
	}
	s.printUtterances(utterances)
	for _, d := range coll.Diagnostics() {
		_, _ = fmt.Fprintln(s.errOut, d.String())
	}
}

func (s *replSession) printUtterances(utterances []string) {
	for _, u := range s.norm.Apply(utterances) {
		_, _ = fmt.Fprintln(s.out, u)
	}
	_, _ = fmt.Fprintf(s.out, "(%d utterances)\n", len(utterances))
}

func (s *replSession) handleDotCommand(line string) bool {
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])

	switch command {
	case ".quit", ".exit":
		return true

	case ".help":
		printREPLHelp(s.out)

	case ".nonterminals":
		table := s.grammar.Nonterminals
		for _, name := range table.Names() {
			alts, _ := table.Lookup(name)
			texts := make([]string, len(alts))
			for i, alt := range alts {
				texts[i] = alt.Text
			}
			_, _ = fmt.Fprintf(s.out, "%s ::= %s\n", name, strings.Join(texts, " | "))
		}

	case ".intents":
		for _, name := range s.grammar.Intents.Names() {
			templates, _ := s.grammar.Intents.Templates(name)
			_, _ = fmt.Fprintf(s.out, "%s (%d templates)\n", name, len(templates))
		}

	case ".intent":
		if len(parts) < 2 {
			_, _ = fmt.Fprintln(s.errOut, "Usage: .intent <name>")
			return false
		}
		s.expandIntent(parts[1])

	default:
		_, _ = fmt.Fprintf(s.errOut, "Unknown command: %s (type .help for commands)\n", command)
	}
	return false
}

func (s *replSession) expandIntent(name string) {
	templates, ok := s.grammar.Intents.Templates(name)
	if !ok {
		_, _ = fmt.Fprintf(s.errOut, "Unknown intent: %s\n", name)
		return
	}

	exp := expand.New(s.grammar.Nonterminals, s.opts, diag.NewCollector(nil, 0))
	var utterances []string
	for _, tmpl := range templates {
		set, err := exp.Expand(tmpl)
		if err != nil {
			_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
			return
		}
		utterances = append(utterances, set...)
	}
	s.printUtterances(utterances)
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  .help            Show this help message
  .nonterminals    List nonterminals and their alternatives
  .intents         List intents
  .intent <name>   Expand every template of an intent
  .quit / .exit    Exit the REPL

Any other input is expanded as a template, e.g.
  fly to <city> [tomorrow]
`
	_, _ = fmt.Fprintln(w, help)
}

// completer offers dot commands, intent names and nonterminal names.
func (s *replSession) completer() *readline.PrefixCompleter {
	intents := make([]readline.PrefixCompleterInterface, 0, s.grammar.Intents.Len())
	for _, name := range s.grammar.Intents.Names() {
		intents = append(intents, readline.PcItem(name))
	}

	items := []readline.PrefixCompleterInterface{
		readline.PcItem(".help"),
		readline.PcItem(".nonterminals"),
		readline.PcItem(".intents"),
		readline.PcItem(".intent", intents...),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	}
	for _, name := range s.grammar.Nonterminals.Names() {
		items = append(items, readline.PcItem(name))
	}
	return readline.NewPrefixCompleter(items...)
}
