package common

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrStaleResult marks a completion delivered for a selection that has
// since been superseded. It is discarded and never shown to the user.
var ErrStaleResult = errors.New("stale analysis result discarded")

// SelectionError reports a file that could not be selected
type SelectionError struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
	Cause  error  `json:"-"`
}

// Error implements the error interface
func (e *SelectionError) Error() string {
	msg := fmt.Sprintf("cannot select %q: %s", e.Path, e.Reason)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying error
func (e *SelectionError) Unwrap() error {
	return e.Cause
}

// NewSelectionError creates a selection error
func NewSelectionError(path, reason string, cause error) *SelectionError {
	return &SelectionError{Path: path, Reason: reason, Cause: cause}
}

// ErrorType categorizes analysis failures
type ErrorType string

const (
	// ErrTypeBackend indicates the executor backend rejected or failed the request
	ErrTypeBackend ErrorType = "backend"

	// ErrTypeTimeout indicates the invocation ran past its deadline
	ErrTypeTimeout ErrorType = "timeout"

	// ErrTypeCancelled indicates the invocation context was cancelled
	ErrTypeCancelled ErrorType = "cancelled"

	// ErrTypeValidation indicates the backend returned an unusable result
	ErrTypeValidation ErrorType = "validation"

	// ErrTypeInternal indicates an unexpected failure
	ErrTypeInternal ErrorType = "internal"
)

// AnalysisError represents a failed analysis attempt
type AnalysisError struct {
	// Type categorizes the error
	Type ErrorType `json:"type"`

	// Message provides human-readable error description
	Message string `json:"message"`

	// Executor names the backend that produced the error
	Executor string `json:"executor,omitempty"`

	// Underlying error that caused this error
	Cause error `json:"-"`

	// Retryable indicates if selecting the file again may succeed
	Retryable bool `json:"retryable"`
}

// Error implements the error interface
func (e *AnalysisError) Error() string {
	var parts []string

	if e.Executor != "" {
		parts = append(parts, fmt.Sprintf("executor=%s", e.Executor))
	}

	parts = append(parts, fmt.Sprintf("type=%s", e.Type))
	parts = append(parts, e.Message)

	if e.Cause != nil {
		parts = append(parts, fmt.Sprintf("cause=%s", e.Cause.Error()))
	}

	return strings.Join(parts, ": ")
}

// Unwrap returns the underlying error
func (e *AnalysisError) Unwrap() error {
	return e.Cause
}

// Is matches another AnalysisError of the same type
func (e *AnalysisError) Is(target error) bool {
	if ae, ok := target.(*AnalysisError); ok {
		return e.Type == ae.Type
	}
	return false
}

// NewAnalysisError creates an analysis error with an optional cause
func NewAnalysisError(errType ErrorType, message, executor string, cause error) *AnalysisError {
	return &AnalysisError{
		Type:      errType,
		Message:   message,
		Executor:  executor,
		Cause:     cause,
		Retryable: isRetryable(errType),
	}
}

// AsAnalysisError classifies any executor error into an AnalysisError
func AsAnalysisError(err error, executor string) *AnalysisError {
	if err == nil {
		return nil
	}

	var ae *AnalysisError
	if errors.As(err, &ae) {
		if ae.Executor == "" {
			ae.Executor = executor
		}
		return ae
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return NewAnalysisError(ErrTypeTimeout, "analysis timed out", executor, err)
	case errors.Is(err, context.Canceled):
		return NewAnalysisError(ErrTypeCancelled, "analysis cancelled", executor, err)
	default:
		return NewAnalysisError(ErrTypeBackend, "analysis failed", executor, err)
	}
}

// isRetryable determines if an error type is worth retrying
func isRetryable(errType ErrorType) bool {
	switch errType {
	case ErrTypeTimeout, ErrTypeBackend, ErrTypeCancelled:
		return true
	default:
		return false
	}
}

// IsSelectionError checks if an error is a selection error
func IsSelectionError(err error) bool {
	var se *SelectionError
	return errors.As(err, &se)
}

// IsAnalysisError checks if an error is an analysis error
func IsAnalysisError(err error) bool {
	var ae *AnalysisError
	return errors.As(err, &ae)
}
