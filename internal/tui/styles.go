package tui

import "github.com/charmbracelet/lipgloss"

var (
	// HeaderStyle styles titles and table headers.
	HeaderStyle = lipgloss.NewStyle().Bold(true)

	// ActiveStyle marks the version a host application is using.
	ActiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)

	green  = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	blue   = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	yellow = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))

	statusStyles = map[string]lipgloss.Style{
		StatusInstalled: green,
		StatusActive:    green,

		StatusResolving:   blue,
		StatusDownloading: blue,
		StatusVerifying:   blue,
		StatusExtracting:  blue,

		StatusManaged: yellow,

		StatusError: lipgloss.NewStyle().Foreground(lipgloss.Color("1")),

		StatusPending: lipgloss.NewStyle().Faint(true),
	}
)

// StatusStyle returns the lipgloss style for the given status string.
func StatusStyle(status string) lipgloss.Style {
	if s, ok := statusStyles[status]; ok {
		return s
	}
	return lipgloss.NewStyle()
}
