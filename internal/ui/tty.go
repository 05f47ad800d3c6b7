package ui

import (
	"os"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// IsTerminal returns true if the file descriptor is a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// InteractiveOutput reports whether stdout can host a live dashboard.
func InteractiveOutput() bool {
	return IsTerminal(os.Stdout)
}

// ColorEnabled reports whether stdout supports colored output. NO_COLOR
// and dumb terminals disable it.
func ColorEnabled() bool {
	if !IsTerminal(os.Stdout) {
		return false
	}
	return termenv.EnvColorProfile() != termenv.Ascii
}
