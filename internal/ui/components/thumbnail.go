package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// PreviewPane frames an ASCII thumbnail of the selected scan
type PreviewPane struct {
	Title   string
	Lines   []string
	Caption string
	Width   int
}

// Render renders the pane. Without thumbnail lines a placeholder is shown.
func (p *PreviewPane) Render() string {
	titleStyle := lipgloss.NewStyle().Foreground(infoColor).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(mutedColor)
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(mutedColor).
		Padding(0, 1)
	if p.Width > 0 {
		boxStyle = boxStyle.Width(p.Width)
	}

	body := mutedStyle.Render("No preview available for this file")
	if len(p.Lines) > 0 {
		body = strings.Join(p.Lines, "\n")
	}

	parts := []string{titleStyle.Render(p.Title), body}
	if p.Caption != "" {
		parts = append(parts, mutedStyle.Render(p.Caption))
	}
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}
