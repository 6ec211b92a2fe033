package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/yildizm/mediscan/internal/report"
)

// CSVHeader is the column layout of csv output
var CSVHeader = []string{
	"File",
	"Status",
	"Risk",
	"Confidence",
	"Urgency",
	"Follow Up",
	"Executor",
	"Error",
}

// csvFormatter formats one scan per CSV record
type csvFormatter struct {
	header bool
}

// NewCSV creates a new CSV formatter that writes a header row
func NewCSV() Formatter {
	return &csvFormatter{header: true}
}

// NewCSVRows creates a CSV formatter without the header row, for
// appending records to a stream that already has one
func NewCSVRows() Formatter {
	return &csvFormatter{}
}

func (f *csvFormatter) Format(view *report.View) ([]byte, error) {
	var b bytes.Buffer
	writer := csv.NewWriter(&b)

	if f.header {
		if err := writer.Write(CSVHeader); err != nil {
			return nil, fmt.Errorf("failed to write CSV headers: %w", err)
		}
	}

	record := make([]string, len(CSVHeader))
	if view.File != nil {
		record[0] = view.File.Path
	}
	record[1] = view.Status
	if fd := view.Findings; fd != nil {
		record[2] = fmt.Sprintf("%.2f", fd.Risk)
		record[3] = fmt.Sprintf("%.2f", fd.Confidence)
		record[4] = string(fd.Urgency)
		record[5] = report.FollowUpInterval(fd.Risk)
		record[6] = fd.Executor
	}
	if view.Failure != nil {
		record[7] = escapeCSVString(view.Failure.Message)
	} else if view.Banner != "" {
		record[7] = escapeCSVString(view.Banner)
	}

	if err := writer.Write(record); err != nil {
		return nil, fmt.Errorf("failed to write CSV record: %w", err)
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return b.Bytes(), nil
}

// escapeCSVString flattens and truncates messages for CSV
func escapeCSVString(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")

	if len(s) > 100 {
		s = s[:97] + "..."
	}

	return s
}
