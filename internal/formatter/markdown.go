package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/yildizm/mediscan/internal/report"
)

// markdownFormatter formats output as Markdown
type markdownFormatter struct {
	now func() time.Time
}

// NewMarkdown creates a new Markdown formatter
func NewMarkdown() Formatter {
	return &markdownFormatter{now: time.Now}
}

func (f *markdownFormatter) Format(view *report.View) ([]byte, error) {
	var b strings.Builder

	b.WriteString("# " + report.Title + " Report\n\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", f.now().Format("2006-01-02 15:04:05"))

	if view.Banner != "" {
		fmt.Fprintf(&b, "> **Warning**: %s\n\n", view.Banner)
	}

	f.writeSummaryTable(&b, view)

	switch view.Mode {
	case report.ModeResults:
		f.writeFindings(&b, view.Findings)
	case report.ModeError:
		f.writeFailure(&b, view)
	}

	if len(view.Assessments) > 0 {
		b.WriteString(report.AssessmentsMarkdown(view.Assessments))
	}

	b.WriteString("---\n")
	b.WriteString("*Report generated by " + report.Title + ". Scores are not a diagnosis.*\n")

	return []byte(b.String()), nil
}

// writeSummaryTable writes the scan metadata table
func (f *markdownFormatter) writeSummaryTable(b *strings.Builder, view *report.View) {
	b.WriteString("## Summary\n\n")
	b.WriteString("| Field | Value |\n")
	b.WriteString("|-------|-------|\n")

	if view.File != nil {
		fmt.Fprintf(b, "| Scan | %s |\n", view.File.Name)
		fmt.Fprintf(b, "| Size | %s bytes |\n", formatNumber(view.File.Size))
	}
	fmt.Fprintf(b, "| Preview | %s |\n", previewSummary(view.Preview))
	fmt.Fprintf(b, "| Status | %s |\n", view.Status)
	fmt.Fprintf(b, "| Duration | %s |\n\n", formatElapsed(view.Duration))
}

// writeFindings writes figures, recommendations and notes
func (f *markdownFormatter) writeFindings(b *strings.Builder, findings *report.Findings) {
	if findings == nil {
		return
	}

	b.WriteString("## Analysis Results\n\n")
	fmt.Fprintf(b, "- **Risk Assessment**: %s (%s urgency)\n", formatPercent(findings.Risk), findings.Urgency)
	fmt.Fprintf(b, "- **AI Confidence**: %s\n", formatPercent(findings.Confidence))
	if findings.Executor != "" {
		fmt.Fprintf(b, "- **Executor**: %s\n", findings.Executor)
	}
	b.WriteString("\n")

	b.WriteString("## Recommendations\n\n")
	for i, rec := range findings.Recommendations {
		fmt.Fprintf(b, "%d. %s\n", i+1, rec)
	}
	b.WriteString("\n")

	if len(findings.Notes) > 0 {
		b.WriteString("## Clinical Notes\n\n")
		for _, note := range findings.Notes {
			b.WriteString(note + "\n\n")
		}
	}
}

// writeFailure writes the failure section
func (f *markdownFormatter) writeFailure(b *strings.Builder, view *report.View) {
	b.WriteString("## Analysis Failed\n\n")
	if view.Failure != nil {
		fmt.Fprintf(b, "**%s**: %s\n\n", view.Failure.Type, view.Failure.Message)
	}
	if view.Message != "" {
		b.WriteString(view.Message + "\n\n")
	}
}
