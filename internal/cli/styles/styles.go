// Package styles centralizes lipgloss styling for CLI output.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	// TitleStyle is for primary headings (task titles, board name)
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7D56F4"))

	// SubtitleStyle is for secondary text (ids, timestamps)
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))

	// LabelStyle is for field labels like "Depth:", "Dependencies:"
	LabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#3B82F6"))

	// SectionStyle is for section headers like "Dependencies"
	SectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#3B82F6")).
			MarginTop(1)

	// ColumnStyle frames one board column
	ColumnStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#6B7280")).
			Padding(0, 1).
			Width(28)

	// SuccessStyle confirms a mutation
	SuccessStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#22C55E"))

	// ErrorStyle reports a failed operation
	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#EF4444"))
)
