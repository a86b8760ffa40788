package cli

import "github.com/charmbracelet/lipgloss"

// Colour palette for terminal output.
var (
	colourPrimary = lipgloss.Color("#7C3AED")
	colourAccent  = lipgloss.Color("#06B6D4")
	colourMuted   = lipgloss.Color("#6C7086")
	colourSuccess = lipgloss.Color("#A6E3A1")
	colourWarning = lipgloss.Color("#F9E2AF")
	colourError   = lipgloss.Color("#F38BA8")
)

// styles holds pre-configured lipgloss styles. Colours degrade to plain
// text when output is not a terminal.
type styles struct {
	Title   lipgloss.Style
	Heading lipgloss.Style
	Source  lipgloss.Style
	Score   lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
}

func newStyles() styles {
	return styles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(colourPrimary),
		Heading: lipgloss.NewStyle().Bold(true),
		Source:  lipgloss.NewStyle().Foreground(colourAccent),
		Score:   lipgloss.NewStyle().Foreground(colourMuted),
		Muted:   lipgloss.NewStyle().Foreground(colourMuted),
		Success: lipgloss.NewStyle().Foreground(colourSuccess),
		Warning: lipgloss.NewStyle().Foreground(colourWarning),
		Error:   lipgloss.NewStyle().Bold(true).Foreground(colourError),
	}
}
