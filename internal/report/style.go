package report

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	bannerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	ruleStyle   = lipgloss.NewStyle().Faint(true)
)

// Highlight decorates a report for terminal display. Only banner and rule
// lines are styled so the body stays copyable. Files are always written
// unstyled.
func Highlight(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		switch {
		case line == "PROMOTOR'S REPORT":
			lines[i] = bannerStyle.Render(line)
		case line != "" && strings.Trim(line, "=") == "":
			lines[i] = ruleStyle.Render(line)
		}
	}
	return strings.Join(lines, "\n")
}
