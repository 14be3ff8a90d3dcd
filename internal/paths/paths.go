package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"

	"github.com/floorper/floorper/internal/errors"
)

// AppName is the directory name floorper uses under home and XDG roots.
const AppName = "floorper"

// Sentinel errors for path resolution.
var (
	// ErrHomeDirNotFound indicates the user's home directory could not be determined.
	ErrHomeDirNotFound = errors.New("home directory not found")

	// ErrInvalidPath indicates the provided path is malformed or invalid.
	ErrInvalidPath = errors.New("invalid path")
)

// DefaultDirPerm is the default permission for newly created directories (private).
const DefaultDirPerm = 0o700

// EnsureDir creates the directory and any necessary parents with specified permissions.
// If perm is 0, DefaultDirPerm (0700) is used.
// This function is idempotent; it returns nil if the directory already exists.
func EnsureDir(path string, perm os.FileMode) error {
	if path == "" {
		return ErrInvalidPath
	}
	if perm == 0 {
		perm = DefaultDirPerm
	}
	return errors.Wrapf(os.MkdirAll(path, perm), "creating %s", path)
}

// Home returns the user's home directory, or an empty string when it
// cannot be determined. Use ResolveHome for proper error handling.
func Home() string {
	h, _ := ResolveHome()
	return h
}

// ResolveHome returns the user's home directory.
// Returns ErrHomeDirNotFound if the directory cannot be determined.
func ResolveHome() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "", errors.Mark(errors.Wrap(ErrHomeDirNotFound, "resolving home"), ErrHomeDirNotFound)
	}
	return home, nil
}

// AppHome returns ~/.floorper, the directory holding floorper's own data
// such as the default backup store.
func AppHome() string {
	home := Home()
	if home == "" {
		return ""
	}
	return filepath.Join(home, "."+AppName)
}

// ConfigHome returns the XDG config home directory.
// On Linux: ~/.config
// On macOS: ~/Library/Application Support
// On Windows: %LOCALAPPDATA%
func ConfigHome() string {
	return xdg.ConfigHome
}

// ConfigDir returns <ConfigHome>/floorper.
func ConfigDir() string {
	return filepath.Join(ConfigHome(), AppName)
}

// DataHome returns the XDG data home directory.
func DataHome() string {
	return xdg.DataHome
}

// ExpandHome expands a leading ~ or ~/ to the user's home directory.
// Other paths, including ~user forms, are returned unchanged.
func ExpandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}

	home := Home()
	if home == "" {
		return path
	}

	if path == "~" {
		return home
	}

	if strings.HasPrefix(path, "~/") || strings.HasPrefix(path, `~\`) {
		return filepath.Join(home, path[2:])
	}

	return path
}
