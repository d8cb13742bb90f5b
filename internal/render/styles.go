package render

import "github.com/charmbracelet/lipgloss"

// Styles are package-level so repeated renders share one
// initialization and hydration stays idempotent.
var (
	tableHeaderStyle = lipgloss.NewStyle().Bold(true)
	mindMapRootStyle = lipgloss.NewStyle().Bold(true)
	flowBoxStyle     = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				Padding(0, 1)
	barStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	placeholderStyle = lipgloss.NewStyle().Faint(true).Italic(true)
)
