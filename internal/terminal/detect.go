// Package terminal provides terminal detection utilities.
package terminal

import (
	"io"
	"os"

	"golang.org/x/term"
)

// IsInteractive reports whether stdin and stdout are both interactive terminals.
// This is the canonical implementation for terminal detection across the codebase.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// fdWriter is satisfied by *os.File and anything else backed by a descriptor.
type fdWriter interface {
	io.Writer
	Fd() uintptr
}

// IsTerminalWriter reports whether w writes to a terminal.
// Writers without a file descriptor (buffers, pipes wrapped in other writers) are never terminals.
func IsTerminalWriter(w io.Writer) bool {
	f, ok := w.(fdWriter)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// ColorEnabled reports whether colored output should be written to w.
// NO_COLOR (https://no-color.org) disables color regardless of the writer.
func ColorEnabled(w io.Writer) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return IsTerminalWriter(w)
}
