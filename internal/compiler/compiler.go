// Package compiler turns a grammar source into an utterance corpus.
//
// Compilation runs in two passes. The first parses every line into the
// nonterminal and intent tables. The second expands each intent's
// templates in grammar order. Any fatal error aborts the run and no
// partial corpus is returned; diagnostics are always available on the
// Result so callers can tell failed, degraded and clean runs apart.
package compiler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"

	"github.com/leapstack-labs/uttergen/pkg/corpus"
	"github.com/leapstack-labs/uttergen/pkg/diag"
	"github.com/leapstack-labs/uttergen/pkg/expand"
	"github.com/leapstack-labs/uttergen/pkg/grammar"
	"github.com/leapstack-labs/uttergen/pkg/token"
)

// Options configures a compilation.
type Options struct {
	// MaxDepth and MaxUtterances bound expansion (see expand.Options).
	MaxDepth      int
	MaxUtterances int
	// Parallelism is the number of intents expanded concurrently.
	// Values below 1 mean sequential.
	Parallelism int
	// Lowercase folds every utterance to lower case.
	Lowercase bool
	// Language selects case-folding rules. The zero value is language.Und.
	Language language.Tag
	// Intents restricts expansion to the named intents.
	Intents []string
	// Logger is the structured logger (optional, uses discard if nil).
	Logger *slog.Logger
	// Verbosity gates debug diagnostics.
	Verbosity int
}

// Result is the outcome of a compilation.
type Result struct {
	// Corpus is nil when compilation failed.
	Corpus      *corpus.Corpus
	Grammar     *grammar.Grammar
	Diagnostics *diag.Collector
	RunID       string
}

// Compile reads the grammar at path and expands every intent.
func Compile(ctx context.Context, path string, opts Options) (*Result, error) {
	res := newResult(path, opts)

	f, err := os.Open(path)
	if err != nil {
		return res, res.fail(&IOError{Op: "open", Path: path, Err: err})
	}
	defer func() { _ = f.Close() }()

	return compile(ctx, res, path, f, opts)
}

// CompileReader compiles a grammar read from r. name identifies the source
// in diagnostics.
func CompileReader(ctx context.Context, name string, r io.Reader, opts Options) (*Result, error) {
	return compile(ctx, newResult(name, opts), name, r, opts)
}

// Load runs the parse pass only.
func Load(ctx context.Context, path string, opts Options) (*Result, error) {
	res := newResult(path, opts)
	if err := ctx.Err(); err != nil {
		return res, err
	}

	f, err := os.Open(path)
	if err != nil {
		return res, res.fail(&IOError{Op: "open", Path: path, Err: err})
	}
	defer func() { _ = f.Close() }()

	if err := res.parse(path, f); err != nil {
		return res, err
	}
	return res, nil
}

func newResult(name string, opts Options) *Result {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	runID := uuid.New().String()
	logger = logger.With("run_id", runID, "grammar", name)

	return &Result{
		Diagnostics: diag.NewCollector(logger, opts.Verbosity),
		RunID:       runID,
	}
}

func compile(ctx context.Context, res *Result, name string, r io.Reader, opts Options) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return res, err
	}

	if err := res.parse(name, r); err != nil {
		return res, err
	}

	intents, err := selectIntents(res.Grammar.Intents, opts.Intents)
	if err != nil {
		return res, res.fail(err)
	}

	exp := expand.New(res.Grammar.Nonterminals, expand.Options{
		MaxDepth:      opts.MaxDepth,
		MaxUtterances: opts.MaxUtterances,
	}, res.Diagnostics)

	expanded, err := expandIntents(ctx, exp, res.Grammar.Intents, intents, opts.Parallelism, res.Diagnostics)
	if err != nil {
		return res, res.fail(err)
	}

	norm := corpus.NewNormalizer(opts.Lowercase, opts.Language)
	c := corpus.New()
	for i, intent := range intents {
		c.Add(intent, norm.Apply(expanded[i])...)
	}
	res.Corpus = c

	res.Diagnostics.Logger().Info("grammar compiled",
		"intents", len(intents),
		"utterances", c.Len(),
		"status", res.Diagnostics.Status().String(),
	)
	return res, nil
}

func (res *Result) parse(name string, r io.Reader) error {
	g, err := grammar.Parse(r, res.Diagnostics)
	if err != nil {
		var se *grammar.SyntaxError
		if errors.As(err, &se) {
			return res.fail(fmt.Errorf("%s: %w", name, err))
		}
		return res.fail(&IOError{Op: "read", Path: name, Err: err})
	}
	res.Grammar = g

	res.Diagnostics.Debug(1, "grammar parsed",
		"nonterminals", g.Nonterminals.Len(),
		"intents", g.Intents.Len(),
	)
	return nil
}

// fail records err on the collector and returns it. Cancellation is not
// a grammar diagnostic and is returned unrecorded.
func (res *Result) fail(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	code, pos := classify(err)
	res.Diagnostics.Error(code, pos, err.Error())
	return err
}

func classify(err error) (string, token.Position) {
	var (
		se *grammar.SyntaxError
		ce *expand.CycleError
		le *expand.LimitError
	)
	switch {
	case errors.As(err, &se):
		return diag.CodeSyntax, se.Pos
	case errors.As(err, &ce):
		return diag.CodeCycle, ce.Pos
	case errors.As(err, &le):
		return diag.CodeLimit, le.Pos
	case errors.Is(err, ErrIO):
		return diag.CodeIO, token.Position{}
	default:
		return diag.CodeConfig, token.Position{}
	}
}

// selectIntents returns the intents to expand, in grammar order.
func selectIntents(table *grammar.IntentTable, filter []string) ([]string, error) {
	if len(filter) == 0 {
		return table.Names(), nil
	}

	wanted := make(map[string]bool, len(filter))
	for _, name := range filter {
		if _, ok := table.Templates(name); !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownIntent, name)
		}
		wanted[name] = true
	}

	var out []string
	for _, name := range table.Names() {
		if wanted[name] {
			out = append(out, name)
		}
	}
	return out, nil
}

// expandIntents expands each intent into its own slot so the result order
// does not depend on scheduling.
func expandIntents(ctx context.Context, exp *expand.Expander, table *grammar.IntentTable, intents []string, parallelism int, rep diag.Reporter) ([][]string, error) {
	if parallelism < 1 {
		parallelism = 1
	}

	results := make([][]string, len(intents))
	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(parallelism)

	for i, intent := range intents {
		eg.Go(func() error {
			if err := egctx.Err(); err != nil {
				return err
			}
			utterances, err := expandIntent(exp, table, intent)
			if err != nil {
				return fmt.Errorf("intent %s: %w", intent, err)
			}
			rep.Debug(1, "intent expanded", "intent", intent, "utterances", len(utterances))
			results[i] = utterances
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		// egctx is canceled by the first failure; prefer the caller's error.
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, context.Canceled) {
			return nil, ctxErr
		}
		return nil, err
	}
	return results, nil
}

func expandIntent(exp *expand.Expander, table *grammar.IntentTable, intent string) ([]string, error) {
	templates, _ := table.Templates(intent)
	utterances := []string{}
	for _, tmpl := range templates {
		set, err := exp.Expand(tmpl)
		if err != nil {
			return nil, err
		}
		utterances = append(utterances, set...)
	}
	return utterances, nil
}
