package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// File is a reference to a user-selected scan on disk. It is a value:
// selecting a new scan replaces it wholesale.
type File struct {
	Path    string    `json:"path"`
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// OpenFile resolves path into a File, failing with a SelectionError when
// the path is missing, a directory, empty or unreadable.
func OpenFile(path string) (File, error) {
	if strings.TrimSpace(path) == "" {
		return File{}, NewSelectionError(path, "no file chosen", nil)
	}

	cleanPath := filepath.Clean(path)
	info, err := os.Stat(cleanPath)
	if err != nil {
		if os.IsNotExist(err) {
			return File{}, NewSelectionError(cleanPath, "file does not exist", err)
		}
		return File{}, NewSelectionError(cleanPath, "cannot access file", err)
	}
	if info.IsDir() {
		return File{}, NewSelectionError(cleanPath, "path is a directory", nil)
	}
	if info.Size() == 0 {
		return File{}, NewSelectionError(cleanPath, "file is empty", nil)
	}

	// #nosec G304 - opened only to verify read permission
	f, err := os.Open(cleanPath)
	if err != nil {
		return File{}, NewSelectionError(cleanPath, "file is not readable", err)
	}
	_ = f.Close()

	return File{
		Path:    cleanPath,
		Name:    info.Name(),
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

// Ext returns the lower-cased file extension including the dot
func (f File) Ext() string {
	return strings.ToLower(filepath.Ext(f.Path))
}

// String returns the display name of the file
func (f File) String() string {
	if f.Name != "" {
		return f.Name
	}
	return filepath.Base(f.Path)
}

// Score bounds shared by every executor
const (
	MinScore = 0.0
	MaxScore = 100.0
)

// Result holds the outcome of one successful analysis
type Result struct {
	Risk       float64       `json:"risk"`
	Confidence float64       `json:"confidence"`
	Executor   string        `json:"executor,omitempty"`
	Elapsed    time.Duration `json:"elapsed,omitempty"`
}

// Validate checks that both scores lie within [0,100]
func (r *Result) Validate() error {
	if r == nil {
		return fmt.Errorf("result is nil")
	}
	if !inRange(r.Risk) {
		return fmt.Errorf("risk %.3f out of range [%.0f,%.0f]", r.Risk, MinScore, MaxScore)
	}
	if !inRange(r.Confidence) {
		return fmt.Errorf("confidence %.3f out of range [%.0f,%.0f]", r.Confidence, MinScore, MaxScore)
	}
	return nil
}

// inRange also rejects NaN, which fails every comparison
func inRange(v float64) bool {
	return v >= MinScore && v <= MaxScore
}
