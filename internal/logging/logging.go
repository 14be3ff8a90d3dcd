package logging

import (
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/floorper/floorper/internal/errors"
)

// Format selects how records are rendered on the console.
type Format string

const (
	// FormatText is the colorized, human-oriented console format.
	FormatText Format = "text"
	// FormatJSON emits one JSON object per record.
	FormatJSON Format = "json"
)

// DebugEnv raises verbosity when no -v flag is given: "1" or "true" selects
// Debug and "2" selects Trace.
const DebugEnv = "FLOORPER_DEBUG"

// Config describes the logger of one CLI invocation.
type Config struct {
	// Verbosity is the count of -v flags. Zero defers to DebugEnv.
	Verbosity int

	// Quiet limits output to errors. It cannot be combined with Verbosity.
	Quiet bool

	// Format applies to Output only. Unknown values render as text.
	Format Format

	// Output defaults to os.Stderr.
	Output io.Writer

	// File, when set, also receives every record as JSON. The file is
	// created with mode 0600 and appended to.
	File string
}

// Level resolves the minimum level cfg logs at.
func (c Config) Level() slog.Level {
	if c.Quiet {
		return slog.LevelError
	}
	v := c.Verbosity
	if v == 0 {
		v = verbosityFromEnv(os.Getenv(DebugEnv))
	}
	return LevelFromVerbosity(v)
}

func verbosityFromEnv(val string) int {
	switch val {
	case "1", "true":
		return 2
	case "2":
		return 3
	default:
		return 0
	}
}

// New builds the logger described by cfg. The returned func closes the log
// file, if any, and is safe to call when there is none.
func New(cfg Config) (*slog.Logger, func() error, error) {
	noop := func() error { return nil }
	if cfg.Quiet && cfg.Verbosity > 0 {
		return nil, noop, errors.New("quiet and verbose are mutually exclusive")
	}

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: cfg.Level()}

	console := consoleHandler(out, cfg.Format, opts)
	if cfg.File == "" {
		return slog.New(console), noop, nil
	}

	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, noop, errors.Wrapf(err, "opening log file %s", cfg.File)
	}
	h := NewMultiHandler(console, slog.NewJSONHandler(f, opts))
	return slog.New(h), f.Close, nil
}

func consoleHandler(out io.Writer, format Format, opts *slog.HandlerOptions) slog.Handler {
	if format == FormatJSON {
		return slog.NewJSONHandler(out, opts)
	}
	return NewHandler(out, opts)
}

// NewDiscard returns a logger with every level disabled.
func NewDiscard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// testWriter forwards handler output to t.Log, one call per record.
type testWriter struct {
	t testing.TB
}

func (w *testWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	n := len(p)
	if n > 0 && p[n-1] == '\n' {
		p = p[:n-1]
	}
	w.t.Log(string(p))
	return n, nil
}

// ForTest returns a Debug-level text logger that writes through t.Log, so
// output shows only for failing tests or under -v.
func ForTest(t testing.TB) *slog.Logger {
	t.Helper()
	return slog.New(NewHandler(&testWriter{t: t}, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
