// Package testutil provides test utilities for structured logging and
// diagnostics.
package testutil

import (
	"log/slog"
	"testing"

	"github.com/leapstack-labs/uttergen/pkg/diag"
)

// NewTestLogger returns a logger that writes to t.Log().
// Logs only appear on test failure or when running with -v.
func NewTestLogger(t testing.TB) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(testWriter{t}, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

// NewTestCollector returns a diagnostics collector whose debug traces up
// to verbosity go to t.Log().
func NewTestCollector(t testing.TB, verbosity int) *diag.Collector {
	t.Helper()
	return diag.NewCollector(NewTestLogger(t), verbosity)
}

// Codes lists the codes of every diagnostic recorded by c, in order.
func Codes(c *diag.Collector) []string {
	diags := c.Diagnostics()
	codes := make([]string, 0, len(diags))
	for _, d := range diags {
		codes = append(codes, d.Code)
	}
	return codes
}

type testWriter struct {
	t testing.TB
}

func (w testWriter) Write(p []byte) (n int, err error) {
	w.t.Helper()
	w.t.Log(string(p))
	return len(p), nil
}
