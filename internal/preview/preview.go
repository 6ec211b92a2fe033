// Package preview creates and releases the revocable preview resources
// bound to a selected scan. A Handle owns a private copy of the scan in the
// cache directory plus the decoded metadata and text thumbnail shown by the
// interactive screen; releasing it deletes the copy.
package preview

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	// Registered decoders
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/google/uuid"
	"github.com/yildizm/mediscan/internal/common"
	"github.com/yildizm/mediscan/internal/logger"
)

// ErrReleased is returned when a handle is released a second time
var ErrReleased = errors.New("preview handle already released")

// FormatUnknown is reported for files that do not decode as an image
const FormatUnknown = "unknown"

// Source acquires preview handles for selected files
type Source interface {
	Acquire(f common.File) (*Handle, error)
}

// Options configures a Store
type Options struct {
	CacheDir       string
	MaxBytes       int64
	ThumbnailWidth int
	RequireImage   bool
}

// Store creates preview handles and tracks how many are live
type Store struct {
	dir      string
	ownsDir  bool
	maxBytes int64
	width    int
	strict   bool
	log      *logger.Logger

	mu       sync.Mutex
	live     map[string]*Handle
	acquired int
	released int
}

// NewStore creates a store rooted at opts.CacheDir, or at a fresh
// temporary directory when it is empty.
func NewStore(opts Options, log *logger.Logger) (*Store, error) {
	if log == nil {
		log = logger.Nop()
	}

	dir := opts.CacheDir
	ownsDir := false
	if dir == "" {
		tmp, err := os.MkdirTemp("", "mediscan-preview-")
		if err != nil {
			return nil, fmt.Errorf("failed to create preview cache: %w", err)
		}
		dir = tmp
		ownsDir = true
	} else if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create preview cache %s: %w", dir, err)
	}

	maxBytes := opts.MaxBytes
	if maxBytes <= 0 {
		maxBytes = 64 << 20
	}

	return &Store{
		dir:      dir,
		ownsDir:  ownsDir,
		maxBytes: maxBytes,
		width:    opts.ThumbnailWidth,
		strict:   opts.RequireImage,
		log:      log.WithComponent("preview"),
		live:     make(map[string]*Handle),
	}, nil
}

// Handle is a preview resource bound to exactly one selected file
type Handle struct {
	ID        string
	Source    common.File
	CachePath string
	Format    string
	Width     int
	Height    int
	Thumbnail []string

	store    *Store
	released atomic.Bool
}

// Acquire copies f into the cache and decodes its preview. Unreadable or
// oversized files fail with a SelectionError; undecodable content fails
// only when the store requires images.
func (s *Store) Acquire(f common.File) (*Handle, error) {
	if f.Size > s.maxBytes {
		return nil, common.NewSelectionError(f.Path, fmt.Sprintf("file exceeds %d bytes", s.maxBytes), nil)
	}

	// #nosec G304 - path comes from a validated common.File
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, common.NewSelectionError(f.Path, "file is not readable", err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, common.NewSelectionError(f.Path, fmt.Sprintf("file exceeds %d bytes", s.maxBytes), nil)
	}

	h := &Handle{
		ID:     uuid.New().String(),
		Source: f,
		Format: FormatUnknown,
		store:  s,
	}

	img, format, decodeErr := image.Decode(bytes.NewReader(data))
	switch {
	case decodeErr == nil:
		bounds := img.Bounds()
		h.Format = format
		h.Width = bounds.Dx()
		h.Height = bounds.Dy()
		if s.width > 0 {
			h.Thumbnail = Thumbnail(img, s.width)
		}
	case s.strict:
		return nil, common.NewSelectionError(f.Path, "file is not a supported image", decodeErr)
	default:
		s.log.Debug("no decodable image in %s: %v", f.Name, decodeErr)
	}

	h.CachePath = filepath.Join(s.dir, h.ID+f.Ext())
	if err := os.WriteFile(h.CachePath, data, 0o600); err != nil {
		return nil, fmt.Errorf("failed to write preview copy: %w", err)
	}

	s.mu.Lock()
	s.live[h.ID] = h
	s.acquired++
	s.mu.Unlock()

	s.log.DebugWithFields("preview acquired", []logger.Field{
		logger.F("id", h.ID),
		logger.F("file", f.Name),
		logger.F("format", h.Format),
	})

	return h, nil
}

// Release deletes the cache copy. It succeeds exactly once per handle.
func (h *Handle) Release() error {
	if h == nil {
		return nil
	}
	if !h.released.CompareAndSwap(false, true) {
		return ErrReleased
	}
	return h.store.release(h)
}

// Released reports whether Release has been called
func (h *Handle) Released() bool {
	return h.released.Load()
}

// IsImage reports whether the file decoded as an image
func (h *Handle) IsImage() bool {
	return h.Format != FormatUnknown
}

func (s *Store) release(h *Handle) error {
	s.mu.Lock()
	delete(s.live, h.ID)
	s.released++
	s.mu.Unlock()

	s.log.Debug("preview released: %s", h.ID)

	if err := os.Remove(h.CachePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove preview copy: %w", err)
	}
	return nil
}

// Live returns the number of handles acquired and not yet released
func (s *Store) Live() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.live)
}

// Stats returns total acquisitions and releases
func (s *Store) Stats() (acquired, released int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.acquired, s.released
}

// Dir returns the cache directory
func (s *Store) Dir() string {
	return s.dir
}

// Close releases every live handle and removes the cache directory when
// the store created it.
func (s *Store) Close() error {
	s.mu.Lock()
	handles := make([]*Handle, 0, len(s.live))
	for _, h := range s.live {
		handles = append(handles, h)
	}
	s.mu.Unlock()

	var errs []error
	for _, h := range handles {
		if err := h.Release(); err != nil && !errors.Is(err, ErrReleased) {
			errs = append(errs, err)
		}
	}

	if s.ownsDir {
		if err := os.RemoveAll(s.dir); err != nil {
			errs = append(errs, fmt.Errorf("failed to remove preview cache: %w", err))
		}
	}

	return errors.Join(errs...)
}
