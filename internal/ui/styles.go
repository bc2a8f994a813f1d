package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Color palette
var (
	ColorPrimary   = lipgloss.Color("39")  // Cyan
	ColorSuccess   = lipgloss.Color("82")  // Green
	ColorWarning   = lipgloss.Color("214") // Orange
	ColorError     = lipgloss.Color("196") // Red
	ColorMuted     = lipgloss.Color("245") // Gray
	ColorHighlight = lipgloss.Color("226") // Yellow
)

// Styles for various UI elements
var (
	// Text styles
	Bold      = lipgloss.NewStyle().Bold(true)
	Dim       = lipgloss.NewStyle().Foreground(ColorMuted)
	Highlight = lipgloss.NewStyle().Foreground(ColorHighlight)
	Header    = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)

	// Status styles
	Success = lipgloss.NewStyle().Foreground(ColorSuccess)
	Warning = lipgloss.NewStyle().Foreground(ColorWarning)
	Error   = lipgloss.NewStyle().Foreground(ColorError)

	// Result styles
	FilePath    = lipgloss.NewStyle().Foreground(ColorPrimary)
	Symbol      = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)
	LineNum     = lipgloss.NewStyle().Foreground(ColorMuted)
	ResultScore = lipgloss.NewStyle().Foreground(ColorSuccess)

	// Section styles
	SectionTitle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true).
			MarginTop(1)
)

// FormatLocation formats a file path with a line number.
func FormatLocation(path string, line int) string {
	return FilePath.Render(path) + LineNum.Render(fmt.Sprintf(":%d", line))
}

// FormatScore formats a similarity score as a percentage.
func FormatScore(score float64) string {
	return ResultScore.Render(fmt.Sprintf("(%.1f%% match)", score*100))
}
