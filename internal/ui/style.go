package ui

import "github.com/charmbracelet/lipgloss"

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("33"))
	doneStyle     = lipgloss.NewStyle().Strikethrough(true).Foreground(lipgloss.Color("244"))
	externalStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	successStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
)

// Header styles a section heading.
func Header(s string) string {
	return headerStyle.Render(s)
}

// Done styles the text of a completed task.
func Done(s string) string {
	return doneStyle.Render(s)
}

// External styles text that comes from the feed.
func External(s string) string {
	return externalStyle.Render(s)
}

// Error styles an error message.
func Error(s string) string {
	return errorStyle.Render(s)
}

// Success styles a confirmation message.
func Success(s string) string {
	return successStyle.Render(s)
}
