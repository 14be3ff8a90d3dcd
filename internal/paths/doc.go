// Package paths resolves the filesystem locations floorper uses for its own
// state: the application home (~/.floorper), the XDG config directory and
// home-relative path expansion.
//
// # XDG Base Directory Compliance
//
// Config lookup wraps github.com/adrg/xdg, so the config file lives at
// ~/.config/floorper on Linux, ~/Library/Application Support/floorper on
// macOS and %LOCALAPPDATA%\floorper on Windows.
//
// # Application Home
//
// Backups default to <AppHome>/backups, i.e. ~/.floorper/backups, on every
// operating system, matching where earlier floorper releases stored them.
package paths
