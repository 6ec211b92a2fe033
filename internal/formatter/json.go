package formatter

import (
	"encoding/json"

	"github.com/yildizm/mediscan/internal/report"
)

// jsonFormatter formats output as JSON
type jsonFormatter struct{}

// NewJSON creates a new JSON formatter
func NewJSON() Formatter {
	return &jsonFormatter{}
}

func (f *jsonFormatter) Format(view *report.View) ([]byte, error) {
	output := &JSONOutput{
		Mode:        view.Mode,
		SessionID:   view.SessionID,
		Generation:  view.Generation,
		Status:      view.Status,
		Preview:     view.Preview,
		Findings:    view.Findings,
		Failure:     view.Failure,
		Banner:      view.Banner,
		Assessments: view.Assessments,
	}
	if view.File != nil {
		output.File = &FileOutput{
			Path: view.File.Path,
			Name: view.File.Name,
			Size: view.File.Size,
		}
	}
	if view.Duration > 0 {
		output.DurationMS = view.Duration.Milliseconds()
	}

	return json.MarshalIndent(output, "", "  ")
}

// JSONOutput is the document written for one analysed scan
type JSONOutput struct {
	Mode        report.Mode         `json:"mode"`
	SessionID   string              `json:"session_id"`
	Generation  uint64              `json:"generation"`
	Status      string              `json:"status"`
	File        *FileOutput         `json:"file,omitempty"`
	Preview     *report.PreviewInfo `json:"preview,omitempty"`
	Findings    *report.Findings    `json:"findings,omitempty"`
	Failure     *report.Failure     `json:"failure,omitempty"`
	Banner      string              `json:"banner,omitempty"`
	DurationMS  int64               `json:"duration_ms,omitempty"`
	Assessments []report.Assessment `json:"assessments,omitempty"`
}

// FileOutput identifies the scan
type FileOutput struct {
	Path string `json:"path"`
	Name string `json:"name"`
	Size int64  `json:"size"`
}
