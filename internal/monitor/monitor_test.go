package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/yildizm/mediscan/internal/common"
)

type stubExecutor struct {
	err error
}

func (s *stubExecutor) Name() string { return "stub" }

func (s *stubExecutor) Analyze(ctx context.Context, f common.File) (*common.Result, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &common.Result{Risk: 42, Confidence: 90}, nil
}

func (s *stubExecutor) Close() error { return nil }

func TestCounter(t *testing.T) {
	counter := NewCounter("test_counter")

	if counter.Get() != 0 {
		t.Errorf("Expected initial value 0, got %d", counter.Get())
	}

	counter.Inc()
	counter.Inc()
	counter.dec()
	if counter.Get() != 1 {
		t.Errorf("Expected value 1, got %d", counter.Get())
	}

	counter.Reset()
	if counter.Get() != 0 {
		t.Errorf("Expected value 0 after reset, got %d", counter.Get())
	}

	if counter.Name() != "test_counter" {
		t.Errorf("Expected name 'test_counter', got %s", counter.Name())
	}
}

func TestTimer(t *testing.T) {
	timer := NewTimer("test_timer")

	if timer.MinTime() != 0 {
		t.Errorf("Expected initial min time 0, got %v", timer.MinTime())
	}
	if timer.AvgTime() != 0 {
		t.Errorf("Expected initial avg time 0, got %v", timer.AvgTime())
	}

	timer.Record(100 * time.Millisecond)
	timer.Record(200 * time.Millisecond)
	timer.Record(150 * time.Millisecond)

	if timer.Count() != 3 {
		t.Errorf("Expected count 3, got %d", timer.Count())
	}
	if timer.TotalTime() != 450*time.Millisecond {
		t.Errorf("Expected total time 450ms, got %v", timer.TotalTime())
	}
	if timer.AvgTime() != 150*time.Millisecond {
		t.Errorf("Expected avg time 150ms, got %v", timer.AvgTime())
	}
	if timer.MinTime() != 100*time.Millisecond {
		t.Errorf("Expected min time 100ms, got %v", timer.MinTime())
	}
	if timer.MaxTime() != 200*time.Millisecond {
		t.Errorf("Expected max time 200ms, got %v", timer.MaxTime())
	}

	timer.Reset()
	if timer.Count() != 0 || timer.MinTime() != 0 || timer.MaxTime() != 0 {
		t.Errorf("Expected cleared timer after reset, got count=%d min=%v max=%v",
			timer.Count(), timer.MinTime(), timer.MaxTime())
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Outcome
	}{
		{"nil", nil, OutcomeSucceeded},
		{"deadline", context.DeadlineExceeded, OutcomeTimedOut},
		{"cancelled", context.Canceled, OutcomeCancelled},
		{"plain", errors.New("boom"), OutcomeFailed},
		{"validation", common.NewAnalysisError(common.ErrTypeValidation, "bad score", "stub", nil), OutcomeFailed},
		{"typed timeout", common.NewAnalysisError(common.ErrTypeTimeout, "slow", "stub", nil), OutcomeTimedOut},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err, "stub"); got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestInstrument(t *testing.T) {
	c := NewCollector("stub")
	tick := time.Unix(0, 0)
	c.now = func() time.Time {
		tick = tick.Add(10 * time.Millisecond)
		return tick
	}

	ok := Instrument(&stubExecutor{}, c)
	failing := Instrument(&stubExecutor{err: context.Canceled}, c)

	if ok.Name() != "stub" {
		t.Errorf("Expected wrapped name 'stub', got %s", ok.Name())
	}

	for i := 0; i < 3; i++ {
		if _, err := ok.Analyze(context.Background(), common.File{}); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
	}
	if _, err := failing.Analyze(context.Background(), common.File{}); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected the executor error to pass through, got %v", err)
	}

	if c.Count(OutcomeSucceeded) != 3 {
		t.Errorf("Expected 3 successes, got %d", c.Count(OutcomeSucceeded))
	}
	if c.Count(OutcomeCancelled) != 1 {
		t.Errorf("Expected 1 cancellation, got %d", c.Count(OutcomeCancelled))
	}
	if c.Count(Outcome("unknown")) != 0 {
		t.Errorf("Expected 0 for an unknown outcome, got %d", c.Count(Outcome("unknown")))
	}

	snap := c.Snapshot()
	if snap.Invocations != 4 {
		t.Errorf("Expected 4 invocations, got %d", snap.Invocations)
	}
	if snap.InFlight != 0 {
		t.Errorf("Expected 0 in flight, got %d", snap.InFlight)
	}
	if snap.AvgTime != 10*time.Millisecond {
		t.Errorf("Expected avg 10ms, got %v", snap.AvgTime)
	}
	if snap.SuccessRate() != 75 {
		t.Errorf("Expected success rate 75, got %f", snap.SuccessRate())
	}

	c.Reset()
	if c.Snapshot().Invocations != 0 {
		t.Errorf("Expected 0 invocations after reset, got %d", c.Snapshot().Invocations)
	}
}

func TestReport(t *testing.T) {
	c := NewCollector("simulated")
	c.Record(120*time.Millisecond, nil)
	c.Record(80*time.Millisecond, errors.New("boom"))
	snap := c.Snapshot()

	text, err := Report(snap, ReportFormatText)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	for _, want := range []string{"simulated executor", "Invocations: 2 (50.0% succeeded)", "succeeded=1", "failed=1", "min 80ms, avg 100ms, max 120ms"} {
		if !strings.Contains(string(text), want) {
			t.Errorf("Expected text report to contain %q, got:\n%s", want, text)
		}
	}

	data, err := Report(snap, ReportFormatJSON)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	var decoded Snapshot
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Failed to decode JSON report: %v", err)
	}
	if decoded.Outcomes[OutcomeFailed] != 1 {
		t.Errorf("Expected 1 failure in JSON report, got %d", decoded.Outcomes[OutcomeFailed])
	}

	if _, err := Report(snap, "xml"); err == nil {
		t.Error("Expected error for unsupported format")
	}
}

func TestReportEmpty(t *testing.T) {
	text, err := Report(NewCollector("onnx").Snapshot(), "")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if strings.Contains(string(text), "Duration") {
		t.Errorf("Expected no duration line without invocations, got:\n%s", text)
	}
	if !strings.Contains(string(text), "Invocations: 0\n") {
		t.Errorf("Expected zero invocations, got:\n%s", text)
	}
}
