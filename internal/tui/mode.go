package tui

import (
	"io"
	"os"
	"runtime"

	"github.com/mattn/go-isatty"
)

// OutputMode is how a command reports what it is doing.
type OutputMode int

const (
	// ModeTUI redraws progress rows in place.
	ModeTUI OutputMode = iota
	// ModePlain prints one summary once the command is done.
	ModePlain
	// ModeJSON prints the result as JSON and nothing else.
	ModeJSON
)

// DetectMode picks the TUI only when out is an interactive terminal and the
// user asked for neither JSON nor plain output.
func DetectMode(out io.Writer, noProgress, jsonOutput bool) OutputMode {
	switch {
	case jsonOutput:
		return ModeJSON
	case noProgress || !Interactive(out):
		return ModePlain
	default:
		return ModeTUI
	}
}

// Interactive reports whether out is a terminal able to redraw lines.
func Interactive(out io.Writer) bool {
	f, ok := out.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	if !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
		return false
	}
	switch term := os.Getenv("TERM"); term {
	case "dumb":
		return false
	case "":
		return runtime.GOOS == "windows"
	}
	return true
}
