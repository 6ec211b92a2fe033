package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// BusyBar is an indeterminate progress bar. Analysis reports no progress,
// so the bar only shows that work is happening and for how long.
type BusyBar struct {
	Width int
	Label string
}

// NewBusyBar creates a busy bar
func NewBusyBar(width int) *BusyBar {
	if width < 4 {
		width = 4
	}
	return &BusyBar{Width: width}
}

// Render draws the bar at the given animation frame
func (b *BusyBar) Render(frame int, elapsed time.Duration) string {
	activeStyle := lipgloss.NewStyle().Foreground(successColor).Bold(true)
	idleStyle := lipgloss.NewStyle().Foreground(mutedColor)

	pos := frame % b.Width
	if pos < 0 {
		pos += b.Width
	}

	var bar strings.Builder
	for i := 0; i < b.Width; i++ {
		if i >= pos && i < pos+3 {
			bar.WriteString(activeStyle.Render("█"))
		} else {
			bar.WriteString(idleStyle.Render("░"))
		}
	}

	result := fmt.Sprintf("[%s] %s", bar.String(), formatElapsed(elapsed))
	if b.Label != "" {
		result = b.Label + "\n" + result
	}
	return result
}

func formatElapsed(d time.Duration) string {
	if d < time.Second {
		return "0s"
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
}
