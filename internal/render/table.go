package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderTable turns pipe-delimited rows into an aligned grid. The first
// row is the header; markdown-style separator rows are ignored and rows
// whose cell count does not match the header are skipped individually.
func renderTable(markup string) (string, error) {
	var rows [][]string
	for _, line := range strings.Split(markup, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || isSeparatorRow(line) {
			continue
		}
		if !strings.Contains(line, "|") {
			continue
		}
		cells := splitRow(line)
		if len(rows) > 0 && len(cells) != len(rows[0]) {
			continue
		}
		rows = append(rows, cells)
	}
	if len(rows) == 0 {
		return "", fmt.Errorf("no well-formed rows")
	}

	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			if w := lipgloss.Width(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var b strings.Builder
	for r, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = pad(cell, widths[i])
		}
		line := strings.Join(cells, "  ")
		if r == 0 {
			b.WriteString(tableHeaderStyle.Render(line))
			b.WriteString("\n")
			b.WriteString(strings.Repeat("─", lipgloss.Width(line)))
		} else {
			b.WriteString(line)
		}
		if r < len(rows)-1 {
			b.WriteString("\n")
		}
	}
	return b.String(), nil
}

func isSeparatorRow(line string) bool {
	trimmed := strings.Trim(line, "|: -")
	return trimmed == "" && strings.ContainsAny(line, "-")
}

func splitRow(line string) []string {
	line = strings.Trim(line, "|")
	parts := strings.Split(line, "|")
	cells := make([]string, len(parts))
	for i, p := range parts {
		cells[i] = strings.TrimSpace(p)
	}
	return cells
}

func pad(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}
