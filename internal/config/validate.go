package config

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/floorper/floorper/internal/browser"
	"github.com/floorper/floorper/internal/errors"
)

// Validation errors for configuration fields.
var (
	// ErrVersionTooLow indicates the version field is below the minimum.
	ErrVersionTooLow = errors.New("version must be >= 1")

	// ErrNegativeRetention indicates a retention below zero.
	ErrNegativeRetention = errors.New("retention must be >= 0")

	// ErrInvalidBrowser indicates default_browser is not a known browser.
	ErrInvalidBrowser = errors.New("invalid browser")

	// ErrInvalidPath indicates a path value is malformed.
	ErrInvalidPath = errors.New("invalid path")
)

// Validate checks a Config for validity.
// Returns nil if valid, or a slice of validation errors.
func Validate(cfg *Config) []error {
	if cfg == nil {
		return []error{errors.New("config is nil")}
	}

	var errs []error

	if cfg.Version < 1 {
		errs = append(errs, ErrVersionTooLow)
	}

	if cfg.Retention < 0 {
		errs = append(errs, ErrNegativeRetention)
	}

	if cfg.BackupDir == "" {
		errs = append(errs, &PathError{Field: "backup_dir", Err: ErrInvalidPath})
	} else if err := validatePath(cfg.BackupDir); err != nil {
		errs = append(errs, &PathError{Field: "backup_dir", Path: cfg.BackupDir, Err: err})
	}

	if cfg.DefaultBrowser != "" && !slices.Contains(browser.IDs(), cfg.DefaultBrowser) {
		errs = append(errs, &BrowserError{Browser: cfg.DefaultBrowser, Err: ErrInvalidBrowser})
	}

	return errs
}

// validatePath checks if a path string is well-formed.
// It does not check if the path exists, only that it's syntactically valid.
func validatePath(path string) error {
	if strings.ContainsRune(path, '\x00') {
		return ErrInvalidPath
	}

	cleaned := filepath.Clean(path)
	if cleaned == "" || cleaned == "." {
		return ErrInvalidPath
	}

	return nil
}

// BrowserError represents an error for a specific browser identifier.
type BrowserError struct {
	Browser string
	Err     error
}

func (e *BrowserError) Error() string {
	return e.Err.Error() + ": " + e.Browser
}

func (e *BrowserError) Unwrap() error {
	return e.Err
}

// PathError represents an error for a specific path field.
type PathError struct {
	Field string
	Path  string
	Err   error
}

func (e *PathError) Error() string {
	if e.Path == "" {
		return e.Field + ": " + e.Err.Error()
	}
	return e.Field + ": " + e.Err.Error() + ": " + e.Path
}

func (e *PathError) Unwrap() error {
	return e.Err
}
