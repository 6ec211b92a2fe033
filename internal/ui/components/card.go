package components

import (
	"github.com/charmbracelet/lipgloss"
)

// Colors are local to avoid an import cycle with ui
var (
	successColor = lipgloss.AdaptiveColor{Light: "#10B981", Dark: "#34D399"}
	warningColor = lipgloss.AdaptiveColor{Light: "#F59E0B", Dark: "#FBBF24"}
	errorColor   = lipgloss.AdaptiveColor{Light: "#EF4444", Dark: "#F87171"}
	infoColor    = lipgloss.AdaptiveColor{Light: "#3B82F6", Dark: "#60A5FA"}
	mutedColor   = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}
)

func statusColor(status string) lipgloss.AdaptiveColor {
	switch status {
	case "success":
		return successColor
	case "warning":
		return warningColor
	case "error":
		return errorColor
	case "info":
		return infoColor
	default:
		return mutedColor
	}
}

// FigureCard shows a single headline figure such as the risk score
type FigureCard struct {
	Title       string
	Value       string
	Description string
	Status      string // "success", "warning", "error", "info"
	Icon        string
	Width       int
}

// NewFigureCard creates a new figure card
func NewFigureCard(title, value, description string) *FigureCard {
	return &FigureCard{
		Title:       title,
		Value:       value,
		Description: description,
		Status:      "info",
		Width:       22,
	}
}

// SetStatus sets the status color of the card
func (c *FigureCard) SetStatus(status string) *FigureCard {
	c.Status = status
	return c
}

// SetIcon sets the icon for the card
func (c *FigureCard) SetIcon(icon string) *FigureCard {
	c.Icon = icon
	return c
}

// SetWidth sets the width of the card
func (c *FigureCard) SetWidth(width int) *FigureCard {
	c.Width = width
	return c
}

// Render renders the figure card
func (c *FigureCard) Render() string {
	titleStyle := lipgloss.NewStyle().Foreground(infoColor).Bold(true)
	valueStyle := lipgloss.NewStyle().Foreground(statusColor(c.Status)).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(mutedColor)
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(statusColor(c.Status)).
		Padding(0, 1).
		Align(lipgloss.Center)

	title := titleStyle.Render(c.Title)
	if c.Icon != "" {
		title = c.Icon + " " + title
	}

	lines := []string{title, valueStyle.Render(c.Value)}
	if c.Description != "" {
		lines = append(lines, mutedStyle.Render(c.Description))
	}

	return boxStyle.
		Width(c.Width).
		Render(lipgloss.JoinVertical(lipgloss.Center, lines...))
}

// CardRow lays cards out side by side with a one column gap
func CardRow(cards ...*FigureCard) string {
	if len(cards) == 0 {
		return ""
	}
	rendered := make([]string, 0, len(cards)*2)
	for i, card := range cards {
		if i > 0 {
			rendered = append(rendered, " ")
		}
		rendered = append(rendered, card.Render())
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}
