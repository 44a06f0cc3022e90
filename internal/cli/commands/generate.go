package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/uttergen/internal/compiler"
	"github.com/leapstack-labs/uttergen/pkg/corpus"
	"github.com/leapstack-labs/uttergen/pkg/diag"
)

// GenerateOptions holds options for the generate command.
type GenerateOptions struct {
	Intents []string // Restrict output to these intents
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand() *cobra.Command {
	opts := &GenerateOptions{}
	cmd := &cobra.Command{
		Use:     "generate [grammar]",
		Aliases: []string{"gen"},
		Short:   "Compile a grammar into an utterance corpus",
		Long: `Expand every intent of a grammar into its utterances.

The corpus is written to --out (stdout by default) in the selected format:
  - text:  one "<intent> <utterance>" line per utterance
  - json:  an object mapping intents to utterance arrays
  - yaml:  a mapping of intents to utterance sequences
  - alexa: an interaction model with deduplicated sample utterances`,
		Example: `  # Print the corpus as text
  uttergen generate skill.grammar

  # Write an interaction model
  uttergen generate skill.grammar --format alexa --out model.json

  # Only two intents, lower-cased
  uttergen generate skill.grammar --intent BookFlight,Greet --lowercase`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, args, opts)
		},
	}

	cmd.Flags().String("out", "", "Output file (default: stdout)")
	cmd.Flags().StringP("format", "f", "", "Corpus format: text, json, yaml, alexa")
	cmd.Flags().String("invocation-name", "", "Invocation name for the alexa format")
	cmd.Flags().StringSliceVar(&opts.Intents, "intent", nil, "Only generate these intents")
	addCompileFlags(cmd)

	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats)

	return cmd
}

func completeFormats(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	names := make([]string, len(corpus.Formats))
	for i, f := range corpus.Formats {
		names[i] = string(f)
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

func runGenerate(cmd *cobra.Command, args []string, opts *GenerateOptions) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	path, err := cmdCtx.Cfg.GrammarPath(args)
	if err != nil {
		return err
	}

	res, err := cmdCtx.generate(cmd.Context(), path, opts.Intents, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	r := cmdCtx.Renderer
	if res.Diagnostics.Status() == diag.StatusDegraded {
		r.Warning(res.Diagnostics.Summary())
	}
	if cmdCtx.Cfg.Out != "" {
		r.Success(fmt.Sprintf("Wrote %d utterances for %d intents to %s",
			res.Corpus.Len(), len(res.Corpus.Intents()), cmdCtx.Cfg.Out))
	}
	return nil
}

// generate compiles path and writes the corpus to the configured output,
// or to stdout when no output file is configured.
func (c *CommandContext) generate(ctx context.Context, path string, intents []string, stdout io.Writer) (*compiler.Result, error) {
	format, err := c.Format()
	if err != nil {
		return nil, err
	}
	copts, err := c.CompileOptions(intents)
	if err != nil {
		return nil, err
	}

	res, err := compiler.Compile(ctx, path, copts)
	if err != nil {
		return res, err
	}

	if c.Cfg.Out == "" {
		return res, corpus.Write(stdout, res.Corpus, format, c.WriteOptions())
	}
	return res, writeCorpusFile(c.Cfg.Out, res.Corpus, format, c.WriteOptions())
}

// writeCorpusFile writes through a temporary file in the target directory
// so readers never observe a partial corpus.
func writeCorpusFile(path string, c *corpus.Corpus, format corpus.Format, opts corpus.WriteOptions) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := corpus.Write(tmp, c, format, opts); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write corpus: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write corpus: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to write corpus: %w", err)
	}
	return nil
}
