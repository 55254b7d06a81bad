package ui

import "github.com/charmbracelet/lipgloss"

var (
	accentColor = lipgloss.Color("#AB8BFF")
	mutedColor  = lipgloss.Color("#A8B5DB")
	lightColor  = lipgloss.Color("#D6C7FF")

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Bold(true).
			MarginBottom(1)

	highlightStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Bold(true)

	inputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accentColor).
			Padding(0, 1)

	sectionTitleStyle = lipgloss.NewStyle().
				Foreground(lightColor).
				Bold(true).
				MarginTop(1)

	rankStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Bold(true).
			Width(4)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	metaStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5F5F")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			MarginTop(1)
)
