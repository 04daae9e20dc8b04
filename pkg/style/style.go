// Package style renders nojo's user-facing CLI output.
package style

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"github.com/pterm/pterm"
)

var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12")).
			Bold(true)

	MutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))

	AccentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("14"))
)

func init() {
	if !shouldColor() {
		pterm.DisableColor()
	}
}

// shouldColor reports whether stdout is a color-capable terminal.
func shouldColor() bool {
	fd := os.Stdout.Fd()
	if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
		return false
	}
	return termenv.ColorProfile() != termenv.Ascii
}

// Success prints a success line with counts-style messages.
func Success(format string, args ...interface{}) {
	pterm.Success.Printfln(format, args...)
}

// Info prints an informational line.
func Info(format string, args ...interface{}) {
	pterm.Info.Printfln(format, args...)
}

// Warning prints a warning line.
func Warning(format string, args ...interface{}) {
	pterm.Warning.Printfln(format, args...)
}

// Error prints an error line with an actionable message.
func Error(format string, args ...interface{}) {
	pterm.Error.Printfln(format, args...)
}

// Title renders a bold section heading.
func Title(text string) string {
	return TitleStyle.Render(text)
}

// Muted renders secondary text.
func Muted(text string) string {
	return MutedStyle.Render(text)
}

// Accent renders highlighted inline text.
func Accent(text string) string {
	return AccentStyle.Render(text)
}
