// Package report maps session snapshots onto what a renderer shows. The
// mapping is pure: the same snapshot always yields the same View.
package report

import (
	"time"

	"github.com/yildizm/mediscan/internal/common"
	"github.com/yildizm/mediscan/internal/session"
)

// Title is the product name shown in headers
const Title = "MediScan AI"

// Mode selects which screen a renderer draws
type Mode string

const (
	ModeUpload      Mode = "upload"
	ModeAnalyzing   Mode = "analyzing"
	ModeIdlePreview Mode = "idle_preview"
	ModeResults     Mode = "results"
	ModeError       Mode = "error"
)

// UploadHint lists the formats offered by the upload affordance
const UploadHint = "Supported formats: DICOM, PNG, JPEG, TIFF"

// PreviewInfo describes the selected file's preview
type PreviewInfo struct {
	Format    string   `json:"format"`
	Width     int      `json:"width,omitempty"`
	Height    int      `json:"height,omitempty"`
	Thumbnail []string `json:"-"`
}

// Findings holds a successful result and everything derived from it
type Findings struct {
	Risk            float64       `json:"risk"`
	Confidence      float64       `json:"confidence"`
	Urgency         Urgency       `json:"urgency"`
	Recommendations []string      `json:"recommendations"`
	Notes           []string      `json:"clinical_notes"`
	Executor        string        `json:"executor,omitempty"`
	Elapsed         time.Duration `json:"elapsed"`
}

// Failure describes a failed analysis
type Failure struct {
	Type      common.ErrorType `json:"type"`
	Message   string           `json:"message"`
	Retryable bool             `json:"retryable"`
}

// View is everything a renderer needs for one frame
type View struct {
	Mode        Mode          `json:"mode"`
	SessionID   string        `json:"session_id"`
	Generation  uint64        `json:"generation"`
	Status      string        `json:"status"`
	File        *common.File  `json:"file,omitempty"`
	Preview     *PreviewInfo  `json:"preview,omitempty"`
	Busy        bool          `json:"busy"`
	Message     string        `json:"message,omitempty"`
	Findings    *Findings     `json:"findings,omitempty"`
	Failure     *Failure      `json:"failure,omitempty"`
	Banner      string        `json:"banner,omitempty"`
	Assessments []Assessment  `json:"assessments,omitempty"`
	Duration    time.Duration `json:"duration,omitempty"`
}

// Options controls optional parts of the view
type Options struct {
	ShowAssessments bool
}

// Build maps a snapshot onto a view
func Build(snap session.Snapshot, opts Options) View {
	v := View{
		SessionID:  snap.SessionID,
		Generation: snap.Generation,
		Status:     string(snap.Status),
	}

	if snap.File != nil {
		file := *snap.File
		v.File = &file
	}
	if snap.Preview != nil {
		v.Preview = &PreviewInfo{
			Format:    snap.Preview.Format,
			Width:     snap.Preview.Width,
			Height:    snap.Preview.Height,
			Thumbnail: snap.Preview.Thumbnail,
		}
	}
	if snap.SelectionErr != nil {
		v.Banner = snap.SelectionErr.Error()
	}
	if opts.ShowAssessments {
		v.Assessments = Assessments()
	}
	if !snap.StartedAt.IsZero() && !snap.FinishedAt.IsZero() {
		v.Duration = snap.FinishedAt.Sub(snap.StartedAt)
	}

	switch snap.State {
	case session.StateAnalyzing:
		v.Mode = ModeAnalyzing
		v.Busy = true
		v.Message = "Analyzing scan..."
	case session.StatePreviewingIdle:
		v.Mode = ModeIdlePreview
		v.Message = "Analysis cancelled. Press r to analyze again."
	case session.StateSucceeded:
		v.Mode = ModeResults
		v.Findings = findingsFor(snap)
	case session.StateFailed:
		v.Mode = ModeError
		v.Failure = failureFor(snap.Err)
		v.Message = "Analysis failed."
		if v.Failure.Retryable {
			v.Message += " Press r to retry or select another scan."
		} else {
			v.Message += " Select another scan."
		}
	default:
		v.Mode = ModeUpload
		v.Message = "Upload a scan to see AI analysis results"
	}

	return v
}

func findingsFor(snap session.Snapshot) *Findings {
	r := snap.Result
	if r == nil {
		return nil
	}
	path := ""
	if snap.File != nil {
		path = snap.File.Path
	}
	return &Findings{
		Risk:            r.Risk,
		Confidence:      r.Confidence,
		Urgency:         UrgencyFor(r.Risk),
		Recommendations: Recommendations(r.Risk),
		Notes:           ClinicalNotes(Quadrant(path, snap.Generation)),
		Executor:        r.Executor,
		Elapsed:         r.Elapsed,
	}
}

func failureFor(err *common.AnalysisError) *Failure {
	if err == nil {
		return &Failure{Type: common.ErrTypeInternal, Message: "unknown failure"}
	}
	msg := err.Message
	if err.Cause != nil {
		msg += ": " + err.Cause.Error()
	}
	return &Failure{
		Type:      err.Type,
		Message:   msg,
		Retryable: err.Retryable,
	}
}
