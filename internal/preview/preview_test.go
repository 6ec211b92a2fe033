package preview

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/yildizm/mediscan/internal/common"
)

func writePNG(t *testing.T, dir, name string, w, h int) common.File {
	t.Helper()

	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8((x * 255) / w)})
		}
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create image: %v", err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("Failed to encode image: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	file, err := common.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}
	return file
}

func writeText(t *testing.T, dir, name string) common.File {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("not an image"), 0o600); err != nil {
		t.Fatal(err)
	}
	file, err := common.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}
	return file
}

func newTestStore(t *testing.T, opts Options) *Store {
	t.Helper()
	if opts.CacheDir == "" {
		opts.CacheDir = t.TempDir()
	}
	store, err := NewStore(opts, nil)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	return store
}

func TestAcquireImage(t *testing.T) {
	store := newTestStore(t, Options{ThumbnailWidth: 16})
	file := writePNG(t, t.TempDir(), "scan.png", 64, 32)

	h, err := store.Acquire(file)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	if h.ID == "" {
		t.Error("Expected handle ID to be set")
	}
	if h.Format != "png" {
		t.Errorf("Expected format png, got %s", h.Format)
	}
	if h.Width != 64 || h.Height != 32 {
		t.Errorf("Expected 64x32, got %dx%d", h.Width, h.Height)
	}
	if !h.IsImage() {
		t.Error("Expected handle to report an image")
	}
	if len(h.Thumbnail) == 0 {
		t.Fatal("Expected thumbnail rows")
	}
	if len(h.Thumbnail[0]) != 16 {
		t.Errorf("Expected thumbnail width 16, got %d", len(h.Thumbnail[0]))
	}
	if _, err := os.Stat(h.CachePath); err != nil {
		t.Errorf("Expected cache copy to exist: %v", err)
	}
	if filepath.Dir(h.CachePath) != store.Dir() {
		t.Errorf("Expected cache copy in %s, got %s", store.Dir(), h.CachePath)
	}
	if store.Live() != 1 {
		t.Errorf("Expected 1 live handle, got %d", store.Live())
	}
}

func TestReleaseExactlyOnce(t *testing.T) {
	store := newTestStore(t, Options{})
	file := writePNG(t, t.TempDir(), "scan.png", 8, 8)

	h, err := store.Acquire(file)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	if err := h.Release(); err != nil {
		t.Fatalf("First release failed: %v", err)
	}
	if !h.Released() {
		t.Error("Expected handle to be marked released")
	}
	if _, err := os.Stat(h.CachePath); !os.IsNotExist(err) {
		t.Errorf("Expected cache copy to be removed, stat returned %v", err)
	}

	if err := h.Release(); !errors.Is(err, ErrReleased) {
		t.Errorf("Expected ErrReleased on second release, got %v", err)
	}

	acquired, released := store.Stats()
	if acquired != 1 || released != 1 {
		t.Errorf("Expected 1 acquired and 1 released, got %d and %d", acquired, released)
	}
	if store.Live() != 0 {
		t.Errorf("Expected 0 live handles, got %d", store.Live())
	}
}

func TestAcquireUndecodable(t *testing.T) {
	tests := []struct {
		name         string
		requireImage bool
		wantErr      bool
	}{
		{name: "lenient store keeps file", requireImage: false},
		{name: "strict store rejects file", requireImage: true, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore(t, Options{RequireImage: tt.requireImage, ThumbnailWidth: 8})
			file := writeText(t, t.TempDir(), "notes.dcm")

			h, err := store.Acquire(file)
			if tt.wantErr {
				if !common.IsSelectionError(err) {
					t.Errorf("Expected SelectionError, got %v", err)
				}
				if store.Live() != 0 {
					t.Errorf("Expected no live handles, got %d", store.Live())
				}
				return
			}

			if err != nil {
				t.Fatalf("Acquire failed: %v", err)
			}
			if h.Format != FormatUnknown {
				t.Errorf("Expected format %s, got %s", FormatUnknown, h.Format)
			}
			if h.Thumbnail != nil {
				t.Errorf("Expected no thumbnail, got %d rows", len(h.Thumbnail))
			}
		})
	}
}

func TestAcquireOversized(t *testing.T) {
	store := newTestStore(t, Options{MaxBytes: 4})
	file := writeText(t, t.TempDir(), "big.png")

	_, err := store.Acquire(file)
	if !common.IsSelectionError(err) {
		t.Errorf("Expected SelectionError for oversized file, got %v", err)
	}
}

func TestAcquireRemovedFile(t *testing.T) {
	store := newTestStore(t, Options{})
	file := writeText(t, t.TempDir(), "gone.png")
	if err := os.Remove(file.Path); err != nil {
		t.Fatal(err)
	}

	if _, err := store.Acquire(file); !common.IsSelectionError(err) {
		t.Errorf("Expected SelectionError for removed file, got %v", err)
	}
}

func TestStoreClose(t *testing.T) {
	store, err := NewStore(Options{}, nil)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	dir := t.TempDir()

	first, err := store.Acquire(writePNG(t, dir, "a.png", 4, 4))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.Acquire(writePNG(t, dir, "b.png", 4, 4)); err != nil {
		t.Fatal(err)
	}
	if err := first.Release(); err != nil {
		t.Fatal(err)
	}

	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if store.Live() != 0 {
		t.Errorf("Expected 0 live handles after close, got %d", store.Live())
	}
	if _, err := os.Stat(store.Dir()); !os.IsNotExist(err) {
		t.Errorf("Expected owned cache dir to be removed, stat returned %v", err)
	}
}

func TestThumbnail(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 20, 20))
	for y := 0; y < 20; y++ {
		for x := 10; x < 20; x++ {
			img.SetGray(x, y, color.Gray{Y: 255})
		}
	}

	rows := Thumbnail(img, 10)
	if len(rows) != 5 {
		t.Fatalf("Expected 5 rows, got %d", len(rows))
	}
	for _, row := range rows {
		if row != "     @@@@@" {
			t.Errorf("Expected half dark half bright row, got %q", row)
		}
	}

	if Thumbnail(img, 0) != nil {
		t.Error("Expected nil thumbnail for zero width")
	}
	if rows := Thumbnail(img, 100); len(rows[0]) != 20 {
		t.Errorf("Expected width clamped to 20, got %d", len(rows[0]))
	}
}
