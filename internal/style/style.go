// Package style provides shared lipgloss styles for warden's console output.
//
// Primary results go to stdout; diagnostics use the Print* helpers, which
// write to stderr so hook callers can consume stdout cleanly.
package style

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

func init() {
	// Hooks run with piped output; emitting ANSI sequences there garbles
	// the transcript the host shows to the user.
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

var (
	// Bold is used for emphasis in command output.
	Bold = lipgloss.NewStyle().Bold(true)

	// Dim is used for secondary information.
	Dim = lipgloss.NewStyle().Faint(true)

	// Success renders positive outcomes (green).
	Success = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))

	// Warning renders recoverable problems (yellow).
	Warning = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))

	// Error renders failures (red).
	Error = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))

	// Info renders neutral status lines (blue).
	Info = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
)

// Rendered prefixes for check/report lines.
var (
	SuccessPrefix = Success.Render("✓")
	WarningPrefix = Warning.Render("!")
	ErrorPrefix   = Error.Render("✗")
	ArrowPrefix   = Dim.Render("→")
)

// PrintWarning writes a formatted warning line to stderr.
func PrintWarning(format string, a ...interface{}) {
	fmt.Fprintf(os.Stderr, "%s %s\n", Warning.Render("Warning:"), fmt.Sprintf(format, a...))
}

// PrintError writes a formatted error line to stderr.
func PrintError(format string, a ...interface{}) {
	fmt.Fprintf(os.Stderr, "%s %s\n", Error.Render("Error:"), fmt.Sprintf(format, a...))
}

// PrintInfo writes a formatted informational line to stderr.
func PrintInfo(format string, a ...interface{}) {
	fmt.Fprintf(os.Stderr, "%s %s\n", ArrowPrefix, fmt.Sprintf(format, a...))
}
