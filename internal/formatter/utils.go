package formatter

import (
	"fmt"
	"time"

	"github.com/yildizm/go-termfmt"

	"github.com/yildizm/mediscan/internal/report"
)

// formatNumber formats numbers with commas for readability
func formatNumber(n int64) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	return addCommas(fmt.Sprintf("%d", n))
}

// addCommas adds commas to number strings
func addCommas(s string) string {
	if len(s) <= 3 {
		return s
	}
	return addCommas(s[:len(s)-3]) + "," + s[len(s)-3:]
}

// formatPercent renders a 0-100 score the way the results card shows it
func formatPercent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

// formatElapsed rounds durations for display
func formatElapsed(d time.Duration) string {
	if d <= 0 {
		return "N/A"
	}
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(10 * time.Millisecond).String()
}

// getUrgencySymbol returns the severity symbol for an urgency level using go-termfmt
func getUrgencySymbol(urgency report.Urgency, opts *termfmt.TerminalOptions) string {
	switch urgency {
	case report.UrgencyHigh:
		return termfmt.GetEmoji("error", opts)
	case report.UrgencyMedium:
		return termfmt.GetEmoji("warning", opts)
	default:
		return termfmt.GetEmoji("info", opts)
	}
}

// createConfidenceBar renders a 0-100 score as a bar
func createConfidenceBar(score float64, opts *termfmt.TerminalOptions) string {
	if opts == nil {
		opts = termfmt.DefaultOptions()
	}
	return termfmt.CreateConfidenceBar(score/100, opts)
}

// previewSummary describes the preview in one line
func previewSummary(p *report.PreviewInfo) string {
	if p == nil {
		return "N/A"
	}
	if p.Width > 0 && p.Height > 0 {
		return fmt.Sprintf("%s (%dx%d)", p.Format, p.Width, p.Height)
	}
	return p.Format
}
