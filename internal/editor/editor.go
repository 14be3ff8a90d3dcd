// Package editor launches the user's preferred text editor.
package editor

import (
	"os"
	"os/exec"
	"strings"

	"github.com/floorper/floorper/internal/errors"
)

// Open launches the user's preferred editor on path and waits for it to
// exit. The editor inherits the terminal.
func Open(path string) error {
	cmd := Command(path)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, "running editor %s", cmd.Path)
	}
	return nil
}

// Command builds the editor invocation for path. $EDITOR and $VISUAL may
// carry arguments, e.g. "code --wait".
func Command(path string) *exec.Cmd {
	argv := strings.Fields(detectEditor())
	argv = append(argv, path)
	return exec.Command(argv[0], argv[1:]...)
}

// detectEditor returns the editor command line.
// Fallback chain: $EDITOR, $VISUAL, nano, vi.
func detectEditor() string {
	if editor := strings.TrimSpace(os.Getenv("EDITOR")); editor != "" {
		return editor
	}
	if visual := strings.TrimSpace(os.Getenv("VISUAL")); visual != "" {
		return visual
	}
	if _, err := exec.LookPath("nano"); err == nil {
		return "nano"
	}
	return "vi"
}
