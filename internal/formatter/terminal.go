package formatter

import (
	"fmt"
	"strings"

	"github.com/yildizm/go-termfmt"

	"github.com/yildizm/mediscan/internal/emoji"
	"github.com/yildizm/mediscan/internal/report"
)

// terminalFormatter formats output as plain text for terminal display using go-termfmt
type terminalFormatter struct {
	opts *termfmt.TerminalOptions
}

// NewTerminal creates a new terminal formatter with optional color support
func NewTerminal(color bool) Formatter {
	opts := termfmt.DefaultOptions()
	opts.Color = color
	opts.Emoji = !emoji.IsEmojiDisabled()
	return &terminalFormatter{opts: opts}
}

func (f *terminalFormatter) Format(view *report.View) ([]byte, error) {
	var b strings.Builder

	f.writeHeader(&b)

	if view.Banner != "" {
		fmt.Fprintf(&b, "%s %s\n\n", termfmt.GetEmoji("warning", f.opts), view.Banner)
	}

	f.writeScan(&b, view)

	switch view.Mode {
	case report.ModeResults:
		f.writeResults(&b, view.Findings)
		f.writeRecommendations(&b, view.Findings)
		f.writeClinicalNotes(&b, view.Findings)
	case report.ModeError:
		f.writeFailure(&b, view)
	default:
		if view.Message != "" {
			b.WriteString(view.Message + "\n\n")
		}
	}

	if len(view.Assessments) > 0 {
		f.writeAssessments(&b, view.Assessments)
	}

	return []byte(b.String()), nil
}

// writeHeader writes the boxed product header
func (f *terminalFormatter) writeHeader(b *strings.Builder) {
	header := report.Title
	headerLen := len(header)

	b.WriteString("╔" + strings.Repeat("═", headerLen+2) + "╗\n")
	b.WriteString("║ " + header + " ║\n")
	b.WriteString("╚" + strings.Repeat("═", headerLen+2) + "╝\n\n")
}

// writeScan writes the selected file details as a tree
func (f *terminalFormatter) writeScan(b *strings.Builder, view *report.View) {
	if view.File == nil {
		return
	}

	fmt.Fprintf(b, "%s Scan: %s\n", emoji.GetEmoji("scan"), view.File.Name)

	items := []termfmt.TreeItem{
		{Label: "Path", Value: view.File.Path},
		{Label: "Size", Value: formatNumber(view.File.Size) + " bytes"},
		{Label: "Preview", Value: previewSummary(view.Preview)},
		{Label: "Status", Value: view.Status, Last: true},
	}

	tree := termfmt.TreeViewWithOptions(items, f.opts)
	b.WriteString(tree + "\n\n")
}

// writeResults writes the risk and confidence figures
func (f *terminalFormatter) writeResults(b *strings.Builder, findings *report.Findings) {
	if findings == nil {
		return
	}

	symbol := termfmt.GetEmoji("statistics", f.opts)
	b.WriteString(symbol + " Analysis Results\n")

	items := []termfmt.TreeItem{
		{
			Label: "Risk Assessment",
			Value: fmt.Sprintf("%s %s", formatPercent(findings.Risk), getUrgencySymbol(findings.Urgency, f.opts)),
		},
		{
			Label: "AI Confidence",
			Value: formatPercent(findings.Confidence),
			Children: []termfmt.TreeItem{
				{Label: createConfidenceBar(findings.Confidence, f.opts), Value: ""},
			},
		},
		{Label: "Urgency", Value: string(findings.Urgency)},
		{Label: "Executor", Value: fmt.Sprintf("%s (%s)", findings.Executor, formatElapsed(findings.Elapsed)), Last: true},
	}

	tree := termfmt.TreeViewWithOptions(items, f.opts)
	b.WriteString(tree + "\n\n")
}

// writeRecommendations writes follow-up advice
func (f *terminalFormatter) writeRecommendations(b *strings.Builder, findings *report.Findings) {
	if findings == nil {
		return
	}

	symbol := termfmt.GetEmoji("recommendations", f.opts)
	b.WriteString(symbol + " Recommendations\n")
	for _, rec := range findings.Recommendations {
		b.WriteString("• " + rec + "\n")
	}
	b.WriteString("\n")
}

// writeClinicalNotes writes the narrative notes
func (f *terminalFormatter) writeClinicalNotes(b *strings.Builder, findings *report.Findings) {
	if findings == nil || len(findings.Notes) == 0 {
		return
	}

	fmt.Fprintf(b, "%s Clinical Notes\n", emoji.GetEmoji("clipboard"))
	for _, note := range findings.Notes {
		b.WriteString(note + "\n")
	}
	b.WriteString("\n")
}

// writeFailure writes a failed analysis
func (f *terminalFormatter) writeFailure(b *strings.Builder, view *report.View) {
	symbol := termfmt.GetEmoji("error", f.opts)
	b.WriteString(symbol + " Analysis Failed\n")

	if view.Failure != nil {
		items := []termfmt.TreeItem{
			{Label: "Type", Value: string(view.Failure.Type)},
			{Label: "Reason", Value: view.Failure.Message},
			{Label: "Retryable", Value: fmt.Sprintf("%t", view.Failure.Retryable), Last: true},
		}
		b.WriteString(termfmt.TreeViewWithOptions(items, f.opts) + "\n")
	}
	b.WriteString(view.Message + "\n\n")
}

// writeAssessments writes the reference assessment cards
func (f *terminalFormatter) writeAssessments(b *strings.Builder, list []report.Assessment) {
	fmt.Fprintf(b, "%s Professional Assessment\n", emoji.GetEmoji("stethoscope"))

	items := make([]termfmt.TreeItem, 0, len(list))
	for i, a := range list {
		steps := make([]termfmt.TreeItem, 0, len(a.NextSteps))
		for j, step := range a.NextSteps {
			steps = append(steps, termfmt.TreeItem{Label: step, Last: j == len(a.NextSteps)-1})
		}

		items = append(items, termfmt.TreeItem{
			Label: fmt.Sprintf("%s %s", emoji.ForUrgency(string(a.Urgency)), a.Type),
			Value: fmt.Sprintf("(%s Priority)", a.Urgency),
			Children: []termfmt.TreeItem{
				{Label: "Findings", Value: a.Findings},
				{Label: "Recommendation", Value: a.Recommendation},
				{Label: "Next Steps", Children: steps, Last: true},
			},
			Last: i == len(list)-1,
		})
	}

	tree := termfmt.TreeViewWithOptions(items, f.opts)
	b.WriteString(tree + "\n")
}
