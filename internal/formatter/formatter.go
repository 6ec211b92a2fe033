package formatter

import (
	"fmt"

	"github.com/yildizm/mediscan/internal/report"
)

// Formatter defines the interface for output formatting
type Formatter interface {
	Format(view *report.View) ([]byte, error)
}

// New returns the formatter for the named output format
func New(format string, color bool) (Formatter, error) {
	switch format {
	case "", "text":
		return NewTerminal(color), nil
	case "json":
		return NewJSON(), nil
	case "markdown":
		return NewMarkdown(), nil
	case "csv":
		return NewCSV(), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}
