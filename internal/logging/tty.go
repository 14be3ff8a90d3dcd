package logging

import (
	"io"
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"
)

type fder interface{ Fd() uintptr }

// IsTTY reports whether w is an *os.File, or anything else exposing Fd,
// attached to a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(fder)
	return ok && term.IsTerminal(int(f.Fd()))
}

// SupportsColor reports whether log output to w should be colorized. It
// agrees with color.NoColor so logs and command output color together.
func SupportsColor(w io.Writer) bool {
	return colorAllowed(os.LookupEnv, IsTTY(w))
}

// colorAllowed layers the NO_COLOR convention (https://no-color.org) and
// TERM=dumb over terminal detection.
func colorAllowed(lookup func(string) (string, bool), tty bool) bool {
	if !tty || color.NoColor {
		return false
	}
	if _, set := lookup("NO_COLOR"); set {
		return false
	}
	if t, _ := lookup("TERM"); t == "dumb" {
		return false
	}
	return true
}
