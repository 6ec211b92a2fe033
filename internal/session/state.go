package session

import (
	"fmt"
	"time"

	"github.com/yildizm/mediscan/internal/common"
	"github.com/yildizm/mediscan/internal/preview"
)

// State is a node of the session state machine
type State int

const (
	StateNoFile State = iota
	StatePreviewingIdle
	StateAnalyzing
	StateSucceeded
	StateFailed
)

var stateNames = map[State]string{
	StateNoFile:         "no_file",
	StatePreviewingIdle: "previewing_idle",
	StateAnalyzing:      "analyzing",
	StateSucceeded:      "succeeded",
	StateFailed:         "failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// MarshalText renders the state name in JSON output
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Status is the coarse analysis status derived from the state
type Status string

const (
	StatusIdle      Status = "idle"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Status maps the state onto its analysis status
func (s State) Status() Status {
	switch s {
	case StateAnalyzing:
		return StatusRunning
	case StateSucceeded:
		return StatusSucceeded
	case StateFailed:
		return StatusFailed
	default:
		return StatusIdle
	}
}

// Snapshot is a read-only copy of the session handed to renderers
type Snapshot struct {
	SessionID    string                 `json:"session_id"`
	Generation   uint64                 `json:"generation"`
	State        State                  `json:"state"`
	Status       Status                 `json:"status"`
	File         *common.File           `json:"file,omitempty"`
	Preview      *preview.Handle        `json:"-"`
	Result       *common.Result         `json:"result,omitempty"`
	Err          *common.AnalysisError  `json:"error,omitempty"`
	SelectionErr *common.SelectionError `json:"selection_error,omitempty"`
	StartedAt    time.Time              `json:"started_at"`
	FinishedAt   time.Time              `json:"finished_at"`
}

// Settled reports whether no analysis is outstanding
func (s Snapshot) Settled() bool {
	return s.State != StateAnalyzing
}

// HasFile reports whether a file is selected
func (s Snapshot) HasFile() bool {
	return s.File != nil
}

// Elapsed returns how long the last analysis took, or has taken so far
func (s Snapshot) Elapsed(now time.Time) time.Duration {
	if s.StartedAt.IsZero() {
		return 0
	}
	if s.FinishedAt.IsZero() {
		return now.Sub(s.StartedAt)
	}
	return s.FinishedAt.Sub(s.StartedAt)
}
