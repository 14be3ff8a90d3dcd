// Package errors provides error handling conventions for the floorper CLI.
//
// It forwards the constructors and inspectors of
// [github.com/cockroachdb/errors] so callers import a single errors package,
// defines sentinel errors shared across packages, and provides an
// [ExitError] type carrying a process exit code and an optional suggestion.
//
// # Sentinel Errors
//
//	if errors.Is(err, floorpererrors.ErrNotFound) {
//	    // handle not found case
//	}
//
// # Exit Codes
//
//   - ExitSuccess (0): Command completed successfully
//   - ExitUser (1): User-related error (invalid input, configuration, etc.)
//   - ExitSystem (2): System-related error (I/O, permissions, disk full)
//
// # ExitError
//
//	err := floorpererrors.NewUserError(floorpererrors.ErrInvalidConfig, "Check your config file")
//	var exitErr *floorpererrors.ExitError
//	if errors.As(err, &exitErr) {
//	    os.Exit(exitErr.Code)
//	}
package errors
