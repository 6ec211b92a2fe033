package report

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/yildizm/mediscan/internal/common"
	"github.com/yildizm/mediscan/internal/session"
)

func TestUrgencyFor(t *testing.T) {
	tests := []struct {
		risk float64
		want Urgency
	}{
		{0, UrgencyLow},
		{30, UrgencyLow},
		{30.01, UrgencyMedium},
		{40, UrgencyMedium},
		{70, UrgencyMedium},
		{70.01, UrgencyHigh},
		{75, UrgencyHigh},
		{100, UrgencyHigh},
	}

	for _, tt := range tests {
		if got := UrgencyFor(tt.risk); got != tt.want {
			t.Errorf("Expected urgency %s for risk %v, got %s", tt.want, tt.risk, got)
		}
	}
}

func TestRecommendations(t *testing.T) {
	tests := []struct {
		name      string
		risk      float64
		followUp  string
		screening string
	}{
		{name: "high risk", risk: 75, followUp: "2 weeks", screening: "immediate"},
		{name: "medium risk below follow-up split", risk: 40, followUp: "3 months", screening: "routine"},
		{name: "medium risk above follow-up split", risk: 60, followUp: "2 weeks", screening: "routine"},
		{name: "follow-up split boundary", risk: 50, followUp: "3 months", screening: "routine"},
		{name: "low risk", risk: 10, followUp: "3 months", screening: "routine"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs := Recommendations(tt.risk)
			if len(recs) != 3 {
				t.Fatalf("Expected 3 recommendations, got %d", len(recs))
			}
			if !strings.HasSuffix(recs[0], tt.followUp) {
				t.Errorf("Expected follow-up within %s, got %q", tt.followUp, recs[0])
			}
			if !strings.Contains(recs[1], tt.screening) {
				t.Errorf("Expected %s screening, got %q", tt.screening, recs[1])
			}
			if recs[2] != SpecialistRecommendation {
				t.Errorf("Expected specialist recommendation, got %q", recs[2])
			}
		})
	}
}

func TestQuadrant(t *testing.T) {
	seen := make(map[int]bool)
	for gen := uint64(1); gen <= 64; gen++ {
		q := Quadrant("/scans/a.png", gen)
		if q < 1 || q > 4 {
			t.Fatalf("Expected quadrant in 1..4, got %d", q)
		}
		if Quadrant("/scans/a.png", gen) != q {
			t.Fatal("Expected quadrant to be stable for the same selection")
		}
		seen[q] = true
	}
	if len(seen) < 2 {
		t.Errorf("Expected quadrants to vary across selections, got %v", seen)
	}

	notes := ClinicalNotes(3)
	if len(notes) != 2 || !strings.Contains(notes[1], "quadrant 3") {
		t.Errorf("Expected quadrant 3 in notes, got %v", notes)
	}
}

func TestAssessmentsAreCopies(t *testing.T) {
	list := Assessments()
	if len(list) != 3 {
		t.Fatalf("Expected 3 assessments, got %d", len(list))
	}
	list[0].NextSteps[0] = "changed"
	if Assessments()[0].NextSteps[0] != "Schedule PET scan" {
		t.Error("Expected assessments to be returned as copies")
	}

	md := AssessmentsMarkdown(Assessments())
	for _, want := range []string{"### Pathology Review", "**High Priority**", "1. Molecular testing"} {
		if !strings.Contains(md, want) {
			t.Errorf("Expected markdown to contain %q", want)
		}
	}
}

func TestBuildModes(t *testing.T) {
	file := &common.File{Path: "/scans/a.png", Name: "a.png"}
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		snap session.Snapshot
		mode Mode
		busy bool
	}{
		{
			name: "no file",
			snap: session.Snapshot{State: session.StateNoFile, Status: session.StatusIdle},
			mode: ModeUpload,
		},
		{
			name: "analyzing",
			snap: session.Snapshot{State: session.StateAnalyzing, Status: session.StatusRunning, File: file, StartedAt: start},
			mode: ModeAnalyzing,
			busy: true,
		},
		{
			name: "cancelled",
			snap: session.Snapshot{State: session.StatePreviewingIdle, File: file},
			mode: ModeIdlePreview,
		},
		{
			name: "succeeded",
			snap: session.Snapshot{
				State:      session.StateSucceeded,
				File:       file,
				Generation: 2,
				Result:     &common.Result{Risk: 75, Confidence: 90},
				StartedAt:  start,
				FinishedAt: start.Add(2 * time.Second),
			},
			mode: ModeResults,
		},
		{
			name: "failed",
			snap: session.Snapshot{
				State: session.StateFailed,
				File:  file,
				Err:   common.NewAnalysisError(common.ErrTypeTimeout, "analysis timed out", "simulated", nil),
			},
			mode: ModeError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Build(tt.snap, Options{})
			if v.Mode != tt.mode {
				t.Errorf("Expected mode %s, got %s", tt.mode, v.Mode)
			}
			if v.Busy != tt.busy {
				t.Errorf("Expected busy %v, got %v", tt.busy, v.Busy)
			}
			if v.Assessments != nil {
				t.Error("Expected no assessments when disabled")
			}
		})
	}
}

func TestBuildResultsHighRisk(t *testing.T) {
	snap := session.Snapshot{
		State:      session.StateSucceeded,
		File:       &common.File{Path: "/scans/a.png", Name: "a.png"},
		Generation: 1,
		Result:     &common.Result{Risk: 75, Confidence: 91.5, Executor: "simulated"},
	}

	v := Build(snap, Options{ShowAssessments: true})
	if v.Findings == nil {
		t.Fatal("Expected findings")
	}
	if v.Findings.Urgency != UrgencyHigh {
		t.Errorf("Expected high urgency, got %s", v.Findings.Urgency)
	}
	if !strings.Contains(v.Findings.Recommendations[1], "immediate") {
		t.Errorf("Expected immediate screening, got %q", v.Findings.Recommendations[1])
	}
	if !strings.HasSuffix(v.Findings.Recommendations[0], "2 weeks") {
		t.Errorf("Expected 2 week follow-up, got %q", v.Findings.Recommendations[0])
	}
	if len(v.Assessments) != 3 {
		t.Errorf("Expected 3 assessments, got %d", len(v.Assessments))
	}
	if len(v.Findings.Notes) != 2 {
		t.Errorf("Expected 2 clinical notes, got %d", len(v.Findings.Notes))
	}
}

func TestBuildResultsMediumRisk(t *testing.T) {
	snap := session.Snapshot{
		State:  session.StateSucceeded,
		File:   &common.File{Path: "/scans/b.png", Name: "b.png"},
		Result: &common.Result{Risk: 40, Confidence: 88},
	}

	v := Build(snap, Options{})
	if v.Findings.Urgency != UrgencyMedium {
		t.Errorf("Expected medium urgency, got %s", v.Findings.Urgency)
	}
	if !strings.Contains(v.Findings.Recommendations[1], "routine") {
		t.Errorf("Expected routine screening, got %q", v.Findings.Recommendations[1])
	}
	if !strings.HasSuffix(v.Findings.Recommendations[0], "3 months") {
		t.Errorf("Expected 3 month follow-up, got %q", v.Findings.Recommendations[0])
	}
}

func TestBuildFailureAndBanner(t *testing.T) {
	snap := session.Snapshot{
		State:        session.StateFailed,
		File:         &common.File{Path: "/scans/a.png", Name: "a.png"},
		Err:          common.NewAnalysisError(common.ErrTypeBackend, "analysis failed", "onnx", errors.New("session run error")),
		SelectionErr: common.NewSelectionError("/scans/missing.png", "file does not exist", nil),
	}

	v := Build(snap, Options{})
	if v.Failure == nil {
		t.Fatal("Expected failure")
	}
	if v.Failure.Type != common.ErrTypeBackend || !v.Failure.Retryable {
		t.Errorf("Expected retryable backend failure, got %+v", v.Failure)
	}
	if !strings.Contains(v.Failure.Message, "session run error") {
		t.Errorf("Expected cause in failure message, got %q", v.Failure.Message)
	}
	if !strings.Contains(v.Message, "retry") {
		t.Errorf("Expected retry hint, got %q", v.Message)
	}
	if !strings.Contains(v.Banner, "missing.png") {
		t.Errorf("Expected selection banner, got %q", v.Banner)
	}
}
