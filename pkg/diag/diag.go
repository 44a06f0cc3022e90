// Package diag collects compiler diagnostics.
//
// A Collector is created per compilation and threaded through the parser,
// expander and compiler. It forwards every diagnostic to a structured logger
// and keeps error and warning counts that callers read back after the run,
// so a run can be classified as failed, degraded or clean.
package diag

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/leapstack-labs/uttergen/pkg/token"
)

// Severity indicates the importance of a diagnostic.
type Severity int

// Severity levels for diagnostics.
const (
	// SeverityError marks a fatal condition; the run produced no corpus.
	SeverityError Severity = iota
	// SeverityWarning marks a recovered condition; the corpus may be degraded.
	SeverityWarning
	// SeverityInfo is informational feedback.
	SeverityInfo
)

// String returns the string representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	default:
		return "unknown"
	}
}

// Diagnostic codes.
const (
	CodeSyntax             = "syntax"
	CodeUnknownNonterminal = "unknown-nonterminal"
	CodeEmptyTemplate      = "empty-template"
	CodeCycle              = "cycle"
	CodeLimit              = "limit"
	CodeIO                 = "io"
	CodeConfig             = "config"
)

// Diagnostic is a single recorded warning or error.
type Diagnostic struct {
	Severity Severity
	Code     string
	Message  string
	Pos      token.Position
}

func (d Diagnostic) String() string {
	if d.Pos.IsValid() {
		return fmt.Sprintf("%s [%s] line %s: %s", d.Severity, d.Code, d.Pos, d.Message)
	}
	return fmt.Sprintf("%s [%s] %s", d.Severity, d.Code, d.Message)
}

// Reporter receives diagnostics from the compiler stages.
type Reporter interface {
	// Debug logs a trace message when level <= the configured verbosity.
	Debug(level int, msg string, args ...any)
	// Warning records a recoverable problem.
	Warning(code string, pos token.Position, msg string)
	// Error records a fatal problem.
	Error(code string, pos token.Position, msg string)
}

// Status classifies a finished run.
type Status int

// Run statuses.
const (
	StatusClean Status = iota
	StatusDegraded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusClean:
		return "clean"
	case StatusDegraded:
		return "degraded"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Collector is the default Reporter. It is safe for concurrent use.
type Collector struct {
	logger    *slog.Logger
	verbosity int

	mu          sync.Mutex
	diagnostics []Diagnostic
	errors      int
	warnings    int
}

// NewCollector creates a collector that logs to logger (discarded if nil).
// Debug messages with a level above verbosity are dropped.
func NewCollector(logger *slog.Logger, verbosity int) *Collector {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Collector{logger: logger, verbosity: verbosity}
}

// Logger returns the underlying structured logger.
func (c *Collector) Logger() *slog.Logger {
	return c.logger
}

// Verbosity returns the configured debug verbosity.
func (c *Collector) Verbosity() int {
	return c.verbosity
}

// Debug implements Reporter.
func (c *Collector) Debug(level int, msg string, args ...any) {
	if level > c.verbosity {
		return
	}
	c.logger.Debug(msg, append([]any{"level", level}, args...)...)
}

// Warning implements Reporter.
func (c *Collector) Warning(code string, pos token.Position, msg string) {
	c.record(Diagnostic{Severity: SeverityWarning, Code: code, Message: msg, Pos: pos})
	c.logger.Warn(msg, attrs(code, pos)...)
}

// Error implements Reporter.
func (c *Collector) Error(code string, pos token.Position, msg string) {
	c.record(Diagnostic{Severity: SeverityError, Code: code, Message: msg, Pos: pos})
	c.logger.Error(msg, attrs(code, pos)...)
}

func (c *Collector) record(d Diagnostic) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.diagnostics = append(c.diagnostics, d)
	switch d.Severity {
	case SeverityError:
		c.errors++
	case SeverityWarning:
		c.warnings++
	}
}

func attrs(code string, pos token.Position) []any {
	args := []any{"code", code}
	if pos.IsValid() {
		args = append(args, "line", pos.Line)
		if pos.Column > 0 {
			args = append(args, "column", pos.Column)
		}
	}
	return args
}

// Errors returns the number of recorded errors.
func (c *Collector) Errors() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errors
}

// Warnings returns the number of recorded warnings.
func (c *Collector) Warnings() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.warnings
}

// Diagnostics returns a copy of the recorded warnings and errors in report order.
func (c *Collector) Diagnostics() []Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Diagnostic, len(c.diagnostics))
	copy(out, c.diagnostics)
	return out
}

// Status classifies the run from the recorded counts.
func (c *Collector) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case c.errors > 0:
		return StatusFailed
	case c.warnings > 0:
		return StatusDegraded
	default:
		return StatusClean
	}
}

// Summary returns a one-line description of the counts.
func (c *Collector) Summary() string {
	errs, warns := c.Errors(), c.Warnings()
	var b strings.Builder
	fmt.Fprintf(&b, "%d error", errs)
	if errs != 1 {
		b.WriteString("s")
	}
	fmt.Fprintf(&b, ", %d warning", warns)
	if warns != 1 {
		b.WriteString("s")
	}
	return b.String()
}

// Reset clears all recorded diagnostics and counts.
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.diagnostics = nil
	c.errors = 0
	c.warnings = 0
}
