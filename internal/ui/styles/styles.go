// Package styles centralizes the lipgloss styles used by the chat view.
package styles

import "github.com/charmbracelet/lipgloss"

var (
	Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("230")).
		Background(lipgloss.Color("62")).
		Padding(0, 1)

	UserLabel = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	AssistantLabel = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	Toast = lipgloss.NewStyle().
		Foreground(lipgloss.Color("214")).
		Bold(true)

	Help = lipgloss.NewStyle().
		Faint(true)

	InputBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240"))
)
