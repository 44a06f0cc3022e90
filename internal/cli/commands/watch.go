package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/uttergen/pkg/diag"
)

// defaultDebounce coalesces the burst of events an editor save produces.
const defaultDebounce = 100 * time.Millisecond

// NewWatchCommand creates the watch command.
func NewWatchCommand() *cobra.Command {
	opts := &GenerateOptions{}
	cmd := &cobra.Command{
		Use:   "watch [grammar]",
		Short: "Regenerate the corpus whenever the grammar changes",
		Long: `Compile the grammar, write the corpus, then keep watching the grammar
file and regenerate after every change. Compile errors are reported and
the previous output is left in place. Stop with Ctrl+C.`,
		Example: `  uttergen watch skill.grammar --format json --out corpus.json`,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, args, opts)
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

func runWatch(cmd *cobra.Command, args []string, opts *GenerateOptions) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	path, err := cmdCtx.Cfg.GrammarPath(args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := cmdCtx.Renderer
	build := func(ctx context.Context) error {
		res, err := cmdCtx.generate(ctx, path, opts.Intents, cmd.OutOrStdout())
		if err != nil {
			r.Error(err.Error())
			return err
		}
		if res.Diagnostics.Status() == diag.StatusDegraded {
			r.Warning(res.Diagnostics.Summary())
		}
		if cmdCtx.Cfg.Out != "" {
			r.Success(fmt.Sprintf("Wrote %d utterances to %s", res.Corpus.Len(), cmdCtx.Cfg.Out))
		}
		return nil
	}

	w := newGrammarWatcher(path, build, cmdCtx.Logger)
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s (Ctrl+C to stop)\n", path)
	return w.Run(ctx)
}

// grammarWatcher rebuilds when the watched grammar file changes. The
// parent directory is watched so editors that replace the file on save
// are still seen.
type grammarWatcher struct {
	path     string
	build    func(ctx context.Context) error
	debounce time.Duration
	logger   *slog.Logger
}

func newGrammarWatcher(path string, build func(ctx context.Context) error, logger *slog.Logger) *grammarWatcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &grammarWatcher{
		path:     filepath.Clean(path),
		build:    build,
		debounce: defaultDebounce,
		logger:   logger,
	}
}

// Run performs an initial build and then rebuilds on change until ctx is
// done. Build failures are logged and never stop the watcher.
func (w *grammarWatcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.path, err)
	}

	if err := w.build(ctx); err != nil {
		w.logger.Warn("initial build failed", "grammar", w.path, "error", err)
	}

	// Serializes rebuilds fired by overlapping debounce timers.
	var mu sync.Mutex
	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(w.debounce, func() {
				mu.Lock()
				defer mu.Unlock()
				if ctx.Err() != nil {
					return
				}
				w.logger.Info("change detected", "grammar", w.path)
				if err := w.build(ctx); err != nil {
					w.logger.Warn("rebuild failed", "grammar", w.path, "error", err)
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}
