package monitor

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ReportFormat represents the output format for reports
type ReportFormat string

const (
	ReportFormatText ReportFormat = "text"
	ReportFormatJSON ReportFormat = "json"
)

// Snapshot is a point-in-time copy of a collector's metrics
type Snapshot struct {
	Executor    string            `json:"executor"`
	Uptime      time.Duration     `json:"uptime_ns"`
	InFlight    int64             `json:"in_flight"`
	Invocations int64             `json:"invocations"`
	Outcomes    map[Outcome]int64 `json:"outcomes"`
	MinTime     time.Duration     `json:"min_time_ns"`
	MaxTime     time.Duration     `json:"max_time_ns"`
	AvgTime     time.Duration     `json:"avg_time_ns"`
}

// Snapshot copies the current metrics
func (c *Collector) Snapshot() Snapshot {
	s := Snapshot{
		Executor:    c.executor,
		Uptime:      c.now().Sub(c.started),
		InFlight:    c.inFlight.Get(),
		Invocations: c.timer.Count(),
		Outcomes:    make(map[Outcome]int64, len(Outcomes)),
		MinTime:     c.timer.MinTime(),
		MaxTime:     c.timer.MaxTime(),
		AvgTime:     c.timer.AvgTime(),
	}
	for _, o := range Outcomes {
		s.Outcomes[o] = c.outcomes[o].Get()
	}
	return s
}

// SuccessRate returns the share of invocations that succeeded, in percent
func (s Snapshot) SuccessRate() float64 {
	if s.Invocations == 0 {
		return 0
	}
	return float64(s.Outcomes[OutcomeSucceeded]) / float64(s.Invocations) * 100
}

// Report renders a snapshot in the given format
func Report(s Snapshot, format ReportFormat) ([]byte, error) {
	switch format {
	case ReportFormatJSON:
		return json.MarshalIndent(s, "", "  ")
	case ReportFormatText, "":
		return []byte(textReport(s)), nil
	default:
		return nil, fmt.Errorf("unsupported report format: %s", format)
	}
}

func textReport(s Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analysis metrics (%s executor, up %s)\n", s.Executor, s.Uptime.Round(time.Second))
	fmt.Fprintf(&b, "  Invocations: %d", s.Invocations)
	if s.Invocations > 0 {
		fmt.Fprintf(&b, " (%.1f%% succeeded)", s.SuccessRate())
	}
	b.WriteString("\n")

	parts := make([]string, 0, len(Outcomes))
	for _, o := range Outcomes {
		parts = append(parts, fmt.Sprintf("%s=%d", o, s.Outcomes[o]))
	}
	fmt.Fprintf(&b, "  Outcomes:    %s\n", strings.Join(parts, " "))

	if s.Invocations > 0 {
		fmt.Fprintf(&b, "  Duration:    min %s, avg %s, max %s\n",
			s.MinTime.Round(time.Millisecond), s.AvgTime.Round(time.Millisecond), s.MaxTime.Round(time.Millisecond))
	}
	if s.InFlight > 0 {
		fmt.Fprintf(&b, "  In flight:   %d\n", s.InFlight)
	}
	return b.String()
}
