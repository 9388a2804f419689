// Package theme holds the terminal styles used by the CLI output.
package theme

import (
	"charm.land/lipgloss/v2"
)

// Palette
var (
	Primary   = lipgloss.Color("#8B5CF6")
	Secondary = lipgloss.Color("#14B8A6")
	Accent    = lipgloss.Color("#F97316")
	Success   = lipgloss.Color("#22C55E")
	Error     = lipgloss.Color("#F43F5E")
	Text      = lipgloss.Color("#F8FAFC")
	TextDim   = lipgloss.Color("#94A3B8")
	Border    = lipgloss.Color("#334155")
)

var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Label = lipgloss.NewStyle().
		Foreground(TextDim)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Dim = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)

	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(1, 2)

	Badge = lipgloss.NewStyle().
		Foreground(Text).
		Bold(true).
		Padding(0, 1)

	Passed = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	Failed = lipgloss.NewStyle().
		Foreground(Error).
		Bold(true)

	Warning = lipgloss.NewStyle().
		Foreground(Accent).
		Bold(true)

	LevelFilled = lipgloss.NewStyle().
			Background(Secondary)

	LevelEmpty = lipgloss.NewStyle().
			Background(Border)
)

// HintTypeColor picks the badge style for a hint type. Unknown types get
// a neutral badge.
func HintTypeColor(hintType string) lipgloss.Style {
	switch hintType {
	case "conceptual":
		return Badge.Background(Primary)
	case "approach":
		return Badge.Background(Secondary)
	case "implementation":
		return Badge.Background(Accent)
	case "debug":
		return Badge.Background(Error)
	default:
		return Badge.Background(Border)
	}
}
