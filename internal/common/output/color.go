package output

import (
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"
)

var (
	// Version colors
	NewVersion = color.New(color.FgGreen)
	OldVersion = color.New(color.Faint)

	// Message colors
	Error = color.New(color.FgRed)

	// Structural colors
	Header  = color.New(color.FgWhite, color.Bold)
	Package = color.New(color.FgBlue, color.Bold)
)

// NoColor disables color output
func NoColor() {
	color.NoColor = true
}

// IsTerminal returns true if f is a terminal
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// ColorEnabled reports whether output written to f should be colored: f is
// a terminal, NO_COLOR is unset and TERM is not dumb. Each stream gets its
// own answer; fatih/color's global default only looks at stdout.
func ColorEnabled(f *os.File) bool {
	if _, set := os.LookupEnv("NO_COLOR"); set {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return IsTerminal(f)
}

// Paint renders s in c when enabled and returns it unchanged otherwise,
// whatever the global color setting is.
func Paint(c *color.Color, enabled bool, s string) string {
	if !enabled {
		return s
	}
	forced := *c
	forced.EnableColor()
	return forced.Sprint(s)
}

// FormatUpdate colors an update line of the form "name: new -> old".
// Lines not in that form are returned unchanged.
func FormatUpdate(line string, enabled bool) string {
	name, versions, ok := strings.Cut(line, ": ")
	if !ok {
		return line
	}
	newVer, oldVer, ok := strings.Cut(versions, " -> ")
	if !ok {
		return line
	}
	return Paint(Package, enabled, name) + ": " + Paint(NewVersion, enabled, newVer) + " -> " + Paint(OldVersion, enabled, oldVer)
}

// HighlightReport colors a report for the terminal: "* " lines are
// update entries, other non-empty lines are headers.
func HighlightReport(text string, enabled bool) string {
	if !enabled {
		return text
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "* "):
			lines[i] = "* " + FormatUpdate(strings.TrimPrefix(line, "* "), true)
		case line != "":
			lines[i] = Paint(Header, true, line)
		}
	}
	return strings.Join(lines, "\n")
}
