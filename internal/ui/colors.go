// Package ui provides terminal styling for CLI output.
package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
)

var (
	successStyle lipgloss.Style
	errorStyle   lipgloss.Style
	warningStyle lipgloss.Style
	dimStyle     lipgloss.Style
	headerStyle  lipgloss.Style
)

func init() {
	initStyles()
}

// IsTerminal reports whether stdout is an interactive terminal.
func IsTerminal() bool {
	info, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

func initStyles() {
	if !IsTerminal() {
		successStyle = lipgloss.NewStyle()
		errorStyle = lipgloss.NewStyle()
		warningStyle = lipgloss.NewStyle()
		dimStyle = lipgloss.NewStyle()
		headerStyle = lipgloss.NewStyle()
		return
	}

	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
}

// Success styles success text.
func Success(text string) string { return successStyle.Render(text) }

// Error styles error text.
func Error(text string) string { return errorStyle.Render(text) }

// Warning styles warning text.
func Warning(text string) string { return warningStyle.Render(text) }

// Dim styles de-emphasized text.
func Dim(text string) string { return dimStyle.Render(text) }

// Header styles a table or section header.
func Header(text string) string { return headerStyle.Render(text) }
