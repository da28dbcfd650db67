package ui

import (
	"os"

	"golang.org/x/term"
)

// Mode represents how output is rendered.
type Mode int

const (
	// ModePlain is used for pipes, files, CI logs and NO_COLOR.
	ModePlain Mode = iota
	// ModeStyled is used when a human reads the output on a terminal.
	ModeStyled
)

// DetectMode decides how output written to f is rendered.
//
// Returns ModePlain if:
//   - FLRLOAD_PLAIN=1 is set
//   - CI is set
//   - NO_COLOR is set
//   - f is not a terminal
func DetectMode(f *os.File) Mode {
	if os.Getenv("FLRLOAD_PLAIN") == "1" || os.Getenv("CI") != "" || os.Getenv("NO_COLOR") != "" {
		return ModePlain
	}
	if f == nil || !term.IsTerminal(int(f.Fd())) {
		return ModePlain
	}
	return ModeStyled
}

// IsInteractive reports whether a human can answer prompts: stdin and
// stderr are both terminals and no automation marker is set.
func IsInteractive() bool {
	if DetectMode(os.Stderr) != ModeStyled {
		return false
	}
	return term.IsTerminal(int(os.Stdin.Fd()))
}
