// Package term provides ANSI color state and terminal detection.
//
// Colors are package-level variables because logging and display both need
// them. [Configure] sets them once during startup; when colors are disabled
// the variables are empty strings and concatenation is a no-op.
package term

import (
	"os"
	"strings"

	xterm "golang.org/x/term"

	"github.com/backmassage/clipnamer/internal/config"
)

// ANSI color codes. Empty when colors are disabled.
var (
	Red     = ""
	Green   = ""
	Yellow  = ""
	Blue    = ""
	Cyan    = ""
	Magenta = ""
	NC      = "" // Reset sequence.
)

// Configure resolves the color mode against stdout and sets the
// package-level ANSI variables.
func Configure(mode config.ColorMode) {
	if !resolve(mode, os.Stdout) {
		Red, Green, Yellow, Blue, Cyan, Magenta, NC = "", "", "", "", "", "", ""
		return
	}
	Red = "\033[1;91m"
	Green = "\033[1;92m"
	Yellow = "\033[1;93m"
	Blue = "\033[1;94m"
	Cyan = "\033[1;96m"
	Magenta = "\033[1;95m"
	NC = "\033[0m"
}

// Enabled reports whether ANSI colors are currently active.
func Enabled() bool { return NC != "" }

// resolve honors NO_COLOR (https://no-color.org) and TERM=dumb in auto mode.
func resolve(mode config.ColorMode, f *os.File) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	default:
		return IsTerminal(f) &&
			os.Getenv("NO_COLOR") == "" &&
			!strings.EqualFold(os.Getenv("TERM"), "dumb")
	}
}

// IsTerminal reports whether f is a terminal.
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	return xterm.IsTerminal(int(f.Fd()))
}
