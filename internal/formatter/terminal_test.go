package formatter

import (
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/yildizm/mediscan/internal/common"
	"github.com/yildizm/mediscan/internal/report"
	"github.com/yildizm/mediscan/internal/session"
)

func resultView(risk float64, assessments bool) *report.View {
	snap := session.Snapshot{
		SessionID:  "test-session",
		Generation: 3,
		State:      session.StateSucceeded,
		Status:     session.StatusSucceeded,
		File:       &common.File{Path: "/scans/chest.png", Name: "chest.png", Size: 12345},
		Result:     &common.Result{Risk: risk, Confidence: 90.3, Executor: "simulated", Elapsed: 2 * time.Second},
		StartedAt:  time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
		FinishedAt: time.Date(2024, 5, 1, 9, 0, 2, 0, time.UTC),
	}
	v := report.Build(snap, report.Options{ShowAssessments: assessments})
	return &v
}

func failedView() *report.View {
	snap := session.Snapshot{
		State:  session.StateFailed,
		Status: session.StatusFailed,
		File:   &common.File{Path: "/scans/chest.png", Name: "chest.png", Size: 10},
		Err:    common.NewAnalysisError(common.ErrTypeTimeout, "analysis timed out", "simulated", nil),
	}
	v := report.Build(snap, report.Options{})
	return &v
}

func TestTerminalFormatResults(t *testing.T) {
	out, err := NewTerminal(false).Format(resultView(75, true))
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	output := string(out)

	for _, want := range []string{
		"MediScan AI",
		"chest.png",
		"12,345 bytes",
		"75.0%",
		"90.3%",
		"High",
		"Schedule follow-up examination within 2 weeks",
		"Consider additional immediate screening tests",
		"Clinical Notes",
		"Oncology Consultation",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected output to contain %q", want)
		}
	}
}

func TestTerminalFormatFailure(t *testing.T) {
	out, err := NewTerminal(false).Format(failedView())
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	output := string(out)

	if !strings.Contains(output, "Analysis Failed") {
		t.Error("Expected failure heading")
	}
	if !strings.Contains(output, "timeout") {
		t.Error("Expected failure type in output")
	}
	if strings.Contains(output, "Recommendations") {
		t.Error("Expected no recommendations for a failed analysis")
	}
}

func TestTerminalFormatUpload(t *testing.T) {
	v := report.Build(session.Snapshot{State: session.StateNoFile}, report.Options{})
	out, err := NewTerminal(false).Format(&v)
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	if !strings.Contains(string(out), "Upload a scan") {
		t.Errorf("Expected upload prompt, got %q", string(out))
	}
}

func TestJSONFormat(t *testing.T) {
	out, err := NewJSON().Format(resultView(40, false))
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}

	var decoded JSONOutput
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}
	if decoded.Mode != report.ModeResults {
		t.Errorf("Expected mode results, got %s", decoded.Mode)
	}
	if decoded.Findings == nil || decoded.Findings.Urgency != report.UrgencyMedium {
		t.Errorf("Expected medium urgency findings, got %+v", decoded.Findings)
	}
	if decoded.File == nil || decoded.File.Name != "chest.png" {
		t.Errorf("Expected file chest.png, got %+v", decoded.File)
	}
	if decoded.DurationMS != 2000 {
		t.Errorf("Expected duration 2000ms, got %d", decoded.DurationMS)
	}
}

func TestMarkdownFormat(t *testing.T) {
	f := &markdownFormatter{now: func() time.Time { return time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC) }}

	out, err := f.Format(resultView(40, true))
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	output := string(out)

	for _, want := range []string{
		"# MediScan AI Report",
		"Generated: 2024-05-01 10:00:00",
		"| Scan | chest.png |",
		"**Risk Assessment**: 40.0% (Medium urgency)",
		"1. Schedule follow-up examination within 3 months",
		"## Professional Assessment",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected markdown to contain %q", want)
		}
	}
}

func TestCSVFormat(t *testing.T) {
	out, err := NewCSV().Format(resultView(75, false))
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(string(out))).ReadAll()
	if err != nil {
		t.Fatalf("Output is not valid CSV: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected header and one record, got %d rows", len(records))
	}
	row := records[1]
	if row[0] != "/scans/chest.png" || row[2] != "75.00" || row[4] != "High" || row[5] != "2 weeks" {
		t.Errorf("Unexpected record %v", row)
	}

	out, err = NewCSVRows().Format(failedView())
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	records, _ = csv.NewReader(strings.NewReader(string(out))).ReadAll()
	if len(records) != 1 {
		t.Fatalf("Expected a single record without header, got %d rows", len(records))
	}
	if records[0][1] != "failed" || records[0][7] == "" {
		t.Errorf("Expected failed record with error, got %v", records[0])
	}
}

func TestEscapeCSVString(t *testing.T) {
	long := strings.Repeat("x", 150)
	if got := escapeCSVString(long); len(got) != 100 || !strings.HasSuffix(got, "...") {
		t.Errorf("Expected truncation to 100 chars, got %d", len(got))
	}
	if got := escapeCSVString("a\nb\rc"); got != "a b c" {
		t.Errorf("Expected newlines flattened, got %q", got)
	}
}

func TestNew(t *testing.T) {
	for _, format := range []string{"", "text", "json", "markdown", "csv"} {
		if _, err := New(format, false); err != nil {
			t.Errorf("Expected format %q to be supported, got %v", format, err)
		}
	}
	if _, err := New("xml", false); err == nil {
		t.Error("Expected error for unsupported format")
	}
}

func TestFormatNumber(t *testing.T) {
	tests := map[int64]string{
		0:       "0",
		999:     "999",
		1000:    "1,000",
		1234567: "1,234,567",
	}
	for n, want := range tests {
		if got := formatNumber(n); got != want {
			t.Errorf("Expected %s, got %s", want, got)
		}
	}
}
