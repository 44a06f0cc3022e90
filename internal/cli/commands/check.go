package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/uttergen/internal/cli/output"
	"github.com/leapstack-labs/uttergen/internal/compiler"
	"github.com/leapstack-labs/uttergen/pkg/diag"
)

// ErrCheckFailed is returned when check finds errors, or warnings in
// strict mode.
var ErrCheckFailed = errors.New("check failed")

// CheckOptions holds options for the check command.
type CheckOptions struct {
	Strict bool // Fail on warnings too
}

// NewCheckCommand creates the check command.
func NewCheckCommand() *cobra.Command {
	opts := &CheckOptions{}
	cmd := &cobra.Command{
		Use:   "check [grammar]",
		Short: "Validate a grammar and report diagnostics",
		Long: `Compile a grammar without writing the corpus and report what was found.

Prints per-intent utterance counts and every diagnostic. Exits non-zero
when the grammar has errors, or any warning with --strict.

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format
  - JSON: Machine-readable format`,
		Example: `  # Validate a grammar
  uttergen check skill.grammar

  # Treat unknown nonterminals and empty templates as failures
  uttergen check skill.grammar --strict

  # Machine-readable report
  uttergen check skill.grammar -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "Fail on warnings as well as errors")
	addCompileFlags(cmd)

	return cmd
}

func runCheck(cmd *cobra.Command, args []string, opts *CheckOptions) error {
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

	// Fatal compile errors are reported as diagnostics below.
	res, _ := compiler.Compile(cmd.Context(), path, copts)
	renderCheck(cmdCtx.Renderer, path, res)

	coll := res.Diagnostics
	if coll.Status() == diag.StatusFailed || (opts.Strict && coll.Warnings() > 0) {
		return fmt.Errorf("%w: %s", ErrCheckFailed, coll.Summary())
	}
	return nil
}

func renderCheck(r *output.Renderer, path string, res *compiler.Result) {
	coll := res.Diagnostics
	counts := intentCounts(res)

	if r.EffectiveMode() == output.ModeJSON {
		_ = r.JSON(output.CheckOutput{
			Grammar:     path,
			Status:      coll.Status().String(),
			Errors:      coll.Errors(),
			Warnings:    coll.Warnings(),
			Intents:     counts,
			Diagnostics: diagnosticsOutput(coll.Diagnostics()),
		})
		return
	}

	r.Header(path)
	if len(counts) > 0 {
		rows := make([][]any, 0, len(counts))
		total := 0
		for _, c := range counts {
			rows = append(rows, []any{c.Intent, c.Templates, c.Utterances, c.Unique})
			total += c.Utterances
		}
		r.Table([]string{"Intent", "Templates", "Utterances", "Unique"}, rows)
		r.KeyValue("Total utterances", total)
	}

	if diags := coll.Diagnostics(); len(diags) > 0 {
		r.Println("")
		renderDiagnostics(r, diags)
	}
	r.Println("")

	switch coll.Status() {
	case diag.StatusClean:
		r.Success("Grammar is clean")
	case diag.StatusDegraded:
		r.Println(r.Styles().Warning.Render("Summary: " + coll.Summary()))
	default:
		r.Println(r.Styles().Error.Render("Summary: " + coll.Summary()))
	}
}
