package ui

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/yildizm/mediscan/internal/common"
	"github.com/yildizm/mediscan/internal/preview"
	"github.com/yildizm/mediscan/internal/session"
)

// fixedExecutor returns a risk looked up by file name
type fixedExecutor struct {
	mu   sync.Mutex
	risk map[string]float64
	err  error
}

func (e *fixedExecutor) Name() string { return "fixed" }

func (e *fixedExecutor) Analyze(ctx context.Context, f common.File) (*common.Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return nil, e.err
	}
	return &common.Result{Risk: e.risk[f.Name], Confidence: 92}, nil
}

func (e *fixedExecutor) Close() error { return nil }

func newTestModel(t *testing.T, exec *fixedExecutor) (*Model, *session.Session, *preview.Store) {
	t.Helper()
	store, err := preview.NewStore(preview.Options{CacheDir: t.TempDir()}, nil)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	s := session.New(exec, store, nil)
	m := NewModel(context.Background(), s, Options{}, nil)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m, s, store
}

func writeScan(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("scan:"+name), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func key(k string) tea.KeyMsg {
	switch k {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

// complete runs a command synchronously and feeds its message back
func complete(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		t.Fatal("Expected an analysis command")
	}
	msg, ok := cmd().(completionMsg)
	if !ok {
		t.Fatal("Expected a completion message")
	}
	m.Update(msg)
}

func TestModelUploadScreen(t *testing.T) {
	m, _, _ := newTestModel(t, &fixedExecutor{})

	out := m.View()
	for _, want := range []string{"MediScan AI", "Upload a scan", "Press o to choose a file"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected view to contain %q", want)
		}
	}
}

func TestModelSelectAndComplete(t *testing.T) {
	dir := t.TempDir()
	m, s, store := newTestModel(t, &fixedExecutor{risk: map[string]float64{"chest.png": 75}})

	_, cmd := m.Update(selectPathMsg{path: writeScan(t, dir, "chest.png")})
	if s.State() != session.StateAnalyzing {
		t.Fatalf("Expected analyzing, got %s", s.State())
	}
	if !strings.Contains(m.View(), "Analyzing scan...") {
		t.Error("Expected busy indicator while analyzing")
	}

	complete(t, m, cmd)
	if s.State() != session.StateSucceeded {
		t.Fatalf("Expected succeeded, got %s", s.State())
	}

	out := m.View()
	for _, want := range []string{"chest.png", "Risk Score", "75.0%", "92.0%", "High", "Recommendations", "Clinical Notes"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected view to contain %q", want)
		}
	}
	if store.Live() != 1 {
		t.Errorf("Expected 1 live preview, got %d", store.Live())
	}
}

func TestModelDiscardsSupersededCompletion(t *testing.T) {
	dir := t.TempDir()
	m, s, _ := newTestModel(t, &fixedExecutor{risk: map[string]float64{"a.png": 10, "b.png": 80}})

	_, first := m.Update(selectPathMsg{path: writeScan(t, dir, "a.png")})
	_, second := m.Update(selectPathMsg{path: writeScan(t, dir, "b.png")})

	complete(t, m, second)
	complete(t, m, first)

	snap := s.Snapshot()
	if snap.File == nil || snap.File.Name != "b.png" {
		t.Fatalf("Expected b.png selected, got %+v", snap.File)
	}
	if snap.Result == nil || snap.Result.Risk != 80 {
		t.Errorf("Expected result for b.png, got %+v", snap.Result)
	}
}

func TestModelCancelAndRetry(t *testing.T) {
	dir := t.TempDir()
	m, s, _ := newTestModel(t, &fixedExecutor{risk: map[string]float64{"a.png": 20}})

	_, cmd := m.Update(selectPathMsg{path: writeScan(t, dir, "a.png")})
	m.Update(key("c"))
	if s.State() != session.StatePreviewingIdle {
		t.Fatalf("Expected previewing_idle, got %s", s.State())
	}
	complete(t, m, cmd)
	if s.State() != session.StatePreviewingIdle {
		t.Errorf("Expected cancelled completion to be ignored, got %s", s.State())
	}
	if !strings.Contains(m.View(), "Analysis cancelled") {
		t.Error("Expected cancelled message")
	}

	_, retry := m.Update(key("r"))
	complete(t, m, retry)
	if s.State() != session.StateSucceeded {
		t.Errorf("Expected succeeded after retry, got %s", s.State())
	}
}

func TestModelNotices(t *testing.T) {
	m, _, _ := newTestModel(t, &fixedExecutor{})

	if _, cmd := m.Update(key("r")); cmd != nil {
		t.Error("Expected no command when retrying without a file")
	}
	if !strings.Contains(m.View(), "Select a scan first") {
		t.Error("Expected retry notice")
	}

	m.Update(key("c"))
	if !strings.Contains(m.View(), "No analysis is running") {
		t.Error("Expected cancel notice")
	}
}

func TestModelSelectionBanner(t *testing.T) {
	dir := t.TempDir()
	m, s, _ := newTestModel(t, &fixedExecutor{})

	if _, cmd := m.Update(selectPathMsg{path: filepath.Join(dir, "missing.png")}); cmd != nil {
		t.Error("Expected no command for a missing file")
	}
	if s.State() != session.StateNoFile {
		t.Errorf("Expected no_file, got %s", s.State())
	}
	if !strings.Contains(m.View(), "missing.png") {
		t.Error("Expected selection banner naming the file")
	}
}

func TestModelFailure(t *testing.T) {
	dir := t.TempDir()
	exec := &fixedExecutor{err: common.NewAnalysisError(common.ErrTypeBackend, "model unavailable", "fixed", nil)}
	m, s, _ := newTestModel(t, exec)

	_, cmd := m.Update(selectPathMsg{path: writeScan(t, dir, "a.png")})
	complete(t, m, cmd)
	if s.State() != session.StateFailed {
		t.Fatalf("Expected failed, got %s", s.State())
	}
	out := m.View()
	if !strings.Contains(out, "Analysis Failed") || !strings.Contains(out, "model unavailable") {
		t.Errorf("Expected failure details, got %q", out)
	}
}

func TestModelResetAndAssessments(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	dir := t.TempDir()
	m, s, store := newTestModel(t, &fixedExecutor{})

	_, cmd := m.Update(selectPathMsg{path: writeScan(t, dir, "a.png")})
	complete(t, m, cmd)

	m.Update(key("x"))
	if s.State() != session.StateNoFile {
		t.Errorf("Expected no_file after reset, got %s", s.State())
	}
	if store.Live() != 0 {
		t.Errorf("Expected previews released, got %d live", store.Live())
	}

	m.Update(key("a"))
	out := m.View()
	for _, want := range []string{"Professional Assessment", "Pathology Review"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected assessments to contain %q", want)
		}
	}
}

func TestModelPickerToggle(t *testing.T) {
	m, _, _ := newTestModel(t, &fixedExecutor{})

	m.Update(key("o"))
	if !m.picking {
		t.Fatal("Expected picker to open")
	}
	if !strings.Contains(m.View(), "Choose a scan") {
		t.Error("Expected picker screen")
	}

	m.Update(key("esc"))
	if m.picking {
		t.Error("Expected esc to close the picker")
	}
}

func TestModelQuitClosesSession(t *testing.T) {
	dir := t.TempDir()
	m, s, store := newTestModel(t, &fixedExecutor{})
	m.Update(selectPathMsg{path: writeScan(t, dir, "a.png")})

	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("Expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("Expected tea.QuitMsg")
	}
	if store.Live() != 0 {
		t.Errorf("Expected previews released on quit, got %d live", store.Live())
	}
	if _, err := s.Retry(context.Background()); err != session.ErrClosed {
		t.Errorf("Expected ErrClosed after quit, got %v", err)
	}
	if !strings.Contains(m.View(), "Session closed") {
		t.Error("Expected goodbye screen")
	}
}

func TestSetThemeByName(t *testing.T) {
	t.Cleanup(func() { SetThemeByName("default") })

	for _, name := range GetAvailableThemes() {
		if !SetThemeByName(name) {
			t.Errorf("Expected theme %s to be available", name)
		}
		if GetTheme().Name != name {
			t.Errorf("Expected active theme %s, got %s", name, GetTheme().Name)
		}
	}
	if SetThemeByName("neon") {
		t.Error("Expected unknown theme to be rejected")
	}
}
