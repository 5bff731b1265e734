package tui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1)

	counterStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	messageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	// InfoStyle highlights values in command output
	InfoStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	// ErrorStyle highlights failures in command output
	ErrorStyle = errorStyle
)

// IsTerminal reports whether f is attached to a terminal
func IsTerminal(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}
