// Package session implements the scan session state machine. A Session
// owns the selected file, its preview handle and the analysis outcome.
// It is driven from a single goroutine: the bubbletea update loop or a
// Runner. Executor work happens elsewhere and comes back as a Completion;
// completions from superseded generations are discarded.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/yildizm/mediscan/internal/analysis"
	"github.com/yildizm/mediscan/internal/common"
	"github.com/yildizm/mediscan/internal/logger"
	"github.com/yildizm/mediscan/internal/preview"
)

var (
	// ErrClosed is returned by operations on a closed session
	ErrClosed = errors.New("session closed")

	// ErrNoFile is returned by Retry when nothing is selected
	ErrNoFile = errors.New("no file selected")
)

// Session holds the state of one interactive scan session
type Session struct {
	id       string
	executor analysis.Executor
	previews preview.Source
	log      *logger.Logger
	now      func() time.Time

	state      State
	generation uint64
	file       *common.File
	handle     *preview.Handle
	result     *common.Result
	err        *common.AnalysisError
	selErr     *common.SelectionError
	cancel     context.CancelFunc
	startedAt  time.Time
	finishedAt time.Time
	closed     bool
}

// New creates a session in the NoFile state
func New(executor analysis.Executor, previews preview.Source, log *logger.Logger) *Session {
	if log == nil {
		log = logger.Nop()
	}
	s := &Session{
		id:       uuid.New().String(),
		executor: executor,
		previews: previews,
		now:      time.Now,
		state:    StateNoFile,
	}
	s.log = log.WithComponent("session")
	return s
}

// ID returns the session identifier
func (s *Session) ID() string {
	return s.id
}

// State returns the current state
func (s *Session) State() State {
	return s.state
}

// Generation returns the current generation id
func (s *Session) Generation() uint64 {
	return s.generation
}

// SelectFile makes f the current file and starts analysing it. The new
// preview is acquired before anything else changes, so a file that cannot
// be previewed leaves the session untouched and returns a SelectionError.
// Any prior invocation is cancelled and its completion becomes stale.
func (s *Session) SelectFile(ctx context.Context, f common.File) (*Pending, error) {
	if s.closed {
		return nil, ErrClosed
	}

	handle, err := s.previews.Acquire(f)
	if err != nil {
		var selErr *common.SelectionError
		if !errors.As(err, &selErr) {
			selErr = common.NewSelectionError(f.Path, "preview unavailable", err)
		}
		s.selErr = selErr
		s.log.WarnWithFields("selection rejected", []logger.Field{
			logger.F("file", f.Path),
			logger.F("reason", selErr.Reason),
		})
		return nil, selErr
	}

	previous := s.handle
	file := f
	s.file = &file
	s.handle = handle
	s.selErr = nil

	if previous != nil {
		if err := previous.Release(); err != nil {
			s.log.Warn("failed to release preview %s: %v", previous.ID, err)
		}
	}

	return s.start(ctx), nil
}

// SelectPath resolves path and selects it. A path that cannot be opened
// is recorded as the session's selection error and nothing else changes.
func (s *Session) SelectPath(ctx context.Context, path string) (*Pending, error) {
	if s.closed {
		return nil, ErrClosed
	}

	f, err := common.OpenFile(path)
	if err != nil {
		var selErr *common.SelectionError
		if errors.As(err, &selErr) {
			s.selErr = selErr
		}
		s.log.WarnWithFields("selection rejected", []logger.Field{
			logger.F("file", path),
			logger.Error(err),
		})
		return nil, err
	}
	return s.SelectFile(ctx, f)
}

// Retry re-runs analysis for the current file and preview
func (s *Session) Retry(ctx context.Context) (*Pending, error) {
	if s.closed {
		return nil, ErrClosed
	}
	if s.file == nil {
		return nil, ErrNoFile
	}
	return s.start(ctx), nil
}

func (s *Session) start(ctx context.Context) *Pending {
	s.abort()
	s.generation++

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.state = StateAnalyzing
	s.result = nil
	s.err = nil
	s.startedAt = s.now()
	s.finishedAt = time.Time{}

	s.log.DebugWithFields("analysis started", []logger.Field{
		logger.Generation(s.generation),
		logger.F("file", s.file.Name),
		logger.F("executor", s.executor.Name()),
	})

	// the executor reads the preview's copy so it scores what is shown
	file := *s.file
	if s.handle != nil && s.handle.CachePath != "" {
		file.Path = s.handle.CachePath
	}

	return &Pending{
		Generation: s.generation,
		File:       file,
		ctx:        runCtx,
		executor:   s.executor,
	}
}

// Complete applies an executor outcome. Outcomes for anything but the
// live invocation return ErrStaleResult and change nothing.
func (s *Session) Complete(c Completion) error {
	if c.Generation != s.generation || s.state != StateAnalyzing {
		s.log.DebugWithFields("stale completion discarded", []logger.Field{
			logger.Generation(c.Generation),
			logger.F("current", s.generation),
		})
		return common.ErrStaleResult
	}

	s.abort()
	s.finishedAt = s.now()
	name := s.executor.Name()

	if c.Err != nil {
		s.fail(common.AsAnalysisError(c.Err, name))
		return nil
	}
	if err := c.Result.Validate(); err != nil {
		s.fail(common.NewAnalysisError(common.ErrTypeValidation, "executor returned invalid scores", name, err))
		return nil
	}

	result := *c.Result
	if result.Executor == "" {
		result.Executor = name
	}
	if result.Elapsed == 0 {
		result.Elapsed = c.Elapsed
	}

	s.result = &result
	s.err = nil
	s.state = StateSucceeded

	s.log.InfoWithFields("analysis succeeded", []logger.Field{
		logger.Generation(c.Generation),
		logger.F("risk", result.Risk),
		logger.F("confidence", result.Confidence),
		logger.Duration(result.Elapsed),
	})
	return nil
}

func (s *Session) fail(ae *common.AnalysisError) {
	s.err = ae
	s.result = nil
	s.state = StateFailed
	s.log.WarnWithFields("analysis failed", []logger.Field{
		logger.Generation(s.generation),
		logger.Error(ae),
	})
}

// CancelAnalysis stops the live invocation and keeps the preview. It
// reports whether anything was running.
func (s *Session) CancelAnalysis() bool {
	if s.state != StateAnalyzing {
		return false
	}
	s.abort()
	s.state = StatePreviewingIdle
	s.finishedAt = s.now()
	s.log.Info("analysis cancelled")
	return true
}

// Reset returns to NoFile, cancelling any invocation and releasing the
// preview.
func (s *Session) Reset() error {
	s.abort()
	s.generation++

	var err error
	if s.handle != nil {
		err = s.handle.Release()
	}

	s.state = StateNoFile
	s.file = nil
	s.handle = nil
	s.result = nil
	s.err = nil
	s.selErr = nil
	s.startedAt = time.Time{}
	s.finishedAt = time.Time{}

	return err
}

// Close resets the session and rejects further selections
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	err := s.Reset()
	s.closed = true
	return err
}

func (s *Session) abort() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// Snapshot copies the current state for rendering
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		SessionID:    s.id,
		Generation:   s.generation,
		State:        s.state,
		Status:       s.state.Status(),
		Preview:      s.handle,
		Err:          s.err,
		SelectionErr: s.selErr,
		StartedAt:    s.startedAt,
		FinishedAt:   s.finishedAt,
	}
	if s.file != nil {
		file := *s.file
		snap.File = &file
	}
	if s.result != nil {
		result := *s.result
		snap.Result = &result
	}
	return snap
}
