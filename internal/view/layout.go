package view

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	panelTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	recommendationStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("114"))

	emptyStyle = lipgloss.NewStyle().
			Faint(true).
			Padding(1, 2)
)

// Render lays the view out as bordered panels stacked vertically,
// wrapped to width. Rendering is deterministic for a given view.
func (v *View) Render(width int) string {
	if width <= 0 {
		width = 80
	}
	if v.Empty {
		return emptyStyle.Render("no session: submit text or a document to begin")
	}

	style := panelStyle.Width(width - 2)
	var sections []string

	sections = append(sections, renderPanel(style, v.Source))
	sections = append(sections, renderPanel(style, v.Interpretation))

	if len(v.Recommendations) > 0 {
		var b strings.Builder
		for i, rec := range v.Recommendations {
			if i > 0 {
				b.WriteByte('\n')
			}
			b.WriteString("• ")
			b.WriteString(rec)
		}
		sections = append(sections, renderPanel(style, Panel{
			Title: "Recommendations",
			Body:  recommendationStyle.Render(b.String()),
		}))
	}

	for _, artifact := range v.Diagrams {
		sections = append(sections, renderPanel(style, Panel{
			Title: artifact.Title,
			Body:  artifact.Body,
		}))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func renderPanel(style lipgloss.Style, p Panel) string {
	content := panelTitleStyle.Render(p.Title)
	if p.Body != "" {
		content += "\n" + p.Body
	}
	return style.Render(content)
}
