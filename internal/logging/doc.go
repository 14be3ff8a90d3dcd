// Package logging provides structured logging for the floorper CLI using slog.
//
// The package supports both text and JSON output formats, configurable log
// levels, and helpers for testing. All loggers are based on the standard
// library's [log/slog] package.
//
// # Basic Usage
//
// [Config] resolves the level from -v counts, --quiet and FLOORPER_DEBUG,
// and [New] adds an optional JSON log file next to the console handler:
//
//	logger, closeLog, err := logging.New(logging.Config{
//		Verbosity: 2,
//		Format:    logging.FormatText,
//		File:      "/tmp/floorper.log",
//	})
//	if err != nil {
//		return err
//	}
//	defer closeLog()
//	logger.Debug("verified archive", "files", 12)
//
// # Testing
//
// For tests, use [ForTest] to capture log output via the testing framework:
//
//	func TestSomething(t *testing.T) {
//		logger := logging.ForTest(t)
//		// logs appear in test output on failure
//	}
//
// # Context Propagation
//
// Commands attach the configured logger to their context with [NewContext]
// and retrieve it with [FromContext], which falls back to slog.Default.
//
// # Quiet Mode
//
// Use [NewDiscard] when log output should be suppressed entirely:
//
//	logger := logging.NewDiscard()
package logging
