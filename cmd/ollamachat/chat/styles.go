package chatcmder

import "github.com/charmbracelet/lipgloss"

var (
	userLabel      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	assistantLabel = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("35"))
	statusStyle    = lipgloss.NewStyle().Faint(true)
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("160"))
)
