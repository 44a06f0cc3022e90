package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/uttergen/internal/cli/config"
	"github.com/leapstack-labs/uttergen/internal/cli/output"
	"github.com/leapstack-labs/uttergen/internal/compiler"
	sharedcfg "github.com/leapstack-labs/uttergen/internal/config"
	"github.com/leapstack-labs/uttergen/pkg/corpus"
	"github.com/leapstack-labs/uttergen/pkg/diag"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext from the loaded configuration.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	cfg, err := getConfig()
	if err != nil {
		return nil, err
	}
	logger := config.GetLogger(cmd.Context())
	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}, nil
}

// getConfig returns the current configuration, loading defaults, the
// config file and the environment when no command loaded it yet.
func getConfig() (*config.Config, error) {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg, nil
	}
	return config.LoadConfig("", nil)
}

// CompileOptions maps the configuration onto compiler options.
func (c *CommandContext) CompileOptions(intents []string) (compiler.Options, error) {
	tag, err := sharedcfg.ParseLanguage(c.Cfg.Language)
	if err != nil {
		return compiler.Options{}, err
	}
	return compiler.Options{
		MaxDepth:      c.Cfg.Limits.MaxDepth,
		MaxUtterances: c.Cfg.Limits.MaxUtterances,
		Parallelism:   c.Cfg.Parallelism,
		Lowercase:     c.Cfg.Lowercase,
		Language:      tag,
		Intents:       intents,
		Logger:        c.Logger,
		Verbosity:     c.Cfg.Verbosity,
	}, nil
}

// Format returns the configured corpus format.
func (c *CommandContext) Format() (corpus.Format, error) {
	return corpus.ParseFormat(c.Cfg.Format)
}

// WriteOptions returns encoder options from the configuration.
func (c *CommandContext) WriteOptions() corpus.WriteOptions {
	return corpus.WriteOptions{InvocationName: c.Cfg.InvocationName}
}

// addCompileFlags registers the flags shared by commands that compile a
// grammar. Their values reach the config through the root loader.
func addCompileFlags(cmd *cobra.Command) {
	cmd.Flags().IntP("parallel", "p", sharedcfg.DefaultParallelism, "Number of intents expanded concurrently")
	cmd.Flags().Bool("lowercase", false, "Lower-case every utterance")
	cmd.Flags().String("language", "", "BCP 47 language used for lower-casing (e.g. tr)")
	cmd.Flags().Int("max-depth", sharedcfg.DefaultMaxDepth, "Maximum nonterminal nesting depth")
	cmd.Flags().Int("max-utterances", sharedcfg.DefaultMaxUtterances, "Maximum size of any expanded set (negative disables)")
}

// severityLabel renders a padded, styled severity.
func severityLabel(r *output.Renderer, sev diag.Severity) string {
	switch sev {
	case diag.SeverityError:
		return r.Styles().Error.Render("error  ")
	case diag.SeverityWarning:
		return r.Styles().Warning.Render("warning")
	default:
		return r.Styles().Info.Render("info   ")
	}
}

// renderDiagnostics prints one line per diagnostic.
func renderDiagnostics(r *output.Renderer, diags []diag.Diagnostic) {
	for _, d := range diags {
		r.Printf("  %s  %s  %s  %s\n",
			r.Styles().Muted.Render(fmt.Sprintf("%-6s", d.Pos.String())),
			severityLabel(r, d.Severity),
			r.Styles().Bold.Render(d.Code),
			d.Message,
		)
	}
}

func diagnosticsOutput(diags []diag.Diagnostic) []output.DiagnosticOutput {
	out := make([]output.DiagnosticOutput, 0, len(diags))
	for _, d := range diags {
		out = append(out, output.DiagnosticOutput{
			Severity: d.Severity.String(),
			Code:     d.Code,
			Message:  d.Message,
			Line:     d.Pos.Line,
			Column:   d.Pos.Column,
		})
	}
	return out
}

// intentCounts summarizes a compiled result per intent in grammar order.
func intentCounts(res *compiler.Result) []output.IntentCount {
	if res.Corpus == nil || res.Grammar == nil {
		return []output.IntentCount{}
	}
	counts := make([]output.IntentCount, 0, len(res.Corpus.Intents()))
	for _, intent := range res.Corpus.Intents() {
		templates, _ := res.Grammar.Intents.Templates(intent)
		counts = append(counts, output.IntentCount{
			Intent:     intent,
			Templates:  len(templates),
			Utterances: len(res.Corpus.Utterances(intent)),
			Unique:     len(res.Corpus.Unique(intent)),
		})
	}
	return counts
}
