// Package ui hosts a scan session in a bubbletea program. The update loop
// is the only goroutine that touches the session; executor invocations
// run as commands and report back through completion messages.
package ui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/yildizm/mediscan/internal/common"
	"github.com/yildizm/mediscan/internal/emoji"
	"github.com/yildizm/mediscan/internal/logger"
	"github.com/yildizm/mediscan/internal/report"
	"github.com/yildizm/mediscan/internal/session"
	"github.com/yildizm/mediscan/internal/ui/components"
)

var spinnerChars = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Options configures the scan model
type Options struct {
	InitialPath     string   // selected as soon as the program starts
	StartDir        string   // file picker starting directory
	AllowedTypes    []string // file picker extension filter
	ShowAssessments bool
}

// Model is the bubbletea model for a scan session
type Model struct {
	session *session.Session
	log     *logger.Logger
	ctx     context.Context
	cancel  context.CancelFunc
	opts    Options
	now     func() time.Time

	picker  filepicker.Model
	picking bool

	showAssessments bool
	markdownStyle   string
	renderer        *glamour.TermRenderer
	rendererWidth   int

	width        int
	height       int
	ready        bool
	quitting     bool
	spinnerFrame int
	frame        int
	notice       string
}

// NewModel creates a model around an existing session
func NewModel(ctx context.Context, s *session.Session, opts Options, log *logger.Logger) *Model {
	if log == nil {
		log = logger.Nop()
	}
	ctx, cancel := context.WithCancel(ctx)

	picker := filepicker.New()
	picker.AllowedTypes = opts.AllowedTypes
	picker.AutoHeight = true
	if opts.StartDir != "" {
		picker.CurrentDirectory = opts.StartDir
	}

	return &Model{
		session:         s,
		log:             log.WithComponent("ui"),
		ctx:             ctx,
		cancel:          cancel,
		opts:            opts,
		now:             time.Now,
		picker:          picker,
		showAssessments: opts.ShowAssessments,
		markdownStyle:   glamourStyle(),
	}
}

// Init initializes the model
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tick(), m.picker.Init()}
	if m.opts.InitialPath != "" {
		cmds = append(cmds, selectPath(m.opts.InitialPath))
	}
	return tea.Batch(cmds...)
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowResize(msg)
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case tickMsg:
		return m.handleTick()
	case selectPathMsg:
		return m.handleSelect(msg.path)
	case completionMsg:
		return m.handleCompletion(msg)
	}

	// directory listings and other picker internals
	return m.updatePicker(msg)
}

func (m *Model) handleWindowResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.ready = true
	return m.updatePicker(msg)
}

// handleKeyPress handles keyboard input
func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return m.handleQuit()
	}

	if m.picking {
		if key == "esc" {
			m.picking = false
			return m, nil
		}
		return m.updatePicker(msg)
	}

	switch key {
	case "q":
		return m.handleQuit()
	case "o", "enter":
		m.picking = true
		m.notice = ""
		return m, m.picker.Init()
	case "r":
		return m.handleRetry()
	case "c":
		return m.handleCancel()
	case "x":
		return m.handleReset()
	case "a":
		m.showAssessments = !m.showAssessments
		return m, nil
	}
	return m, nil
}

func (m *Model) updatePicker(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	if !m.picking {
		return m, cmd
	}

	if ok, path := m.picker.DidSelectFile(msg); ok {
		m.picking = false
		_, selectCmd := m.handleSelect(path)
		return m, tea.Batch(cmd, selectCmd)
	}
	if ok, path := m.picker.DidSelectDisabledFile(msg); ok {
		m.notice = fmt.Sprintf("%s is not a supported scan type", filepath.Base(path))
	}
	return m, cmd
}

func (m *Model) handleSelect(path string) (tea.Model, tea.Cmd) {
	pending, err := m.session.SelectPath(m.ctx, path)
	if err != nil {
		// selection errors surface as the banner
		if !common.IsSelectionError(err) {
			m.notice = err.Error()
		}
		return m, nil
	}
	m.notice = ""
	return m, runPending(pending)
}

func (m *Model) handleCompletion(msg completionMsg) (tea.Model, tea.Cmd) {
	if err := m.session.Complete(msg.completion); err != nil {
		if errors.Is(err, common.ErrStaleResult) {
			m.log.Debug("discarded completion for generation %d", msg.completion.Generation)
		} else {
			m.log.Warn("completion rejected: %v", err)
		}
	}
	return m, nil
}

func (m *Model) handleRetry() (tea.Model, tea.Cmd) {
	pending, err := m.session.Retry(m.ctx)
	if err != nil {
		if errors.Is(err, session.ErrNoFile) {
			m.notice = "Select a scan first (press o)"
		} else {
			m.notice = err.Error()
		}
		return m, nil
	}
	m.notice = ""
	return m, runPending(pending)
}

func (m *Model) handleCancel() (tea.Model, tea.Cmd) {
	if !m.session.CancelAnalysis() {
		m.notice = "No analysis is running"
	}
	return m, nil
}

func (m *Model) handleReset() (tea.Model, tea.Cmd) {
	if err := m.session.Reset(); err != nil {
		m.log.Warn("reset: %v", err)
	}
	m.notice = ""
	return m, nil
}

// handleQuit closes the session before leaving so previews are released
func (m *Model) handleQuit() (tea.Model, tea.Cmd) {
	m.quitting = true
	m.close()
	return m, tea.Quit
}

func (m *Model) close() {
	if err := m.session.Close(); err != nil {
		m.log.Warn("close session: %v", err)
	}
	m.cancel()
}

// handleTick handles timer ticks
func (m *Model) handleTick() (tea.Model, tea.Cmd) {
	m.frame++
	m.spinnerFrame = (m.spinnerFrame + 1) % len(spinnerChars)
	return m, tick()
}

// View renders the model
func (m *Model) View() string {
	if !m.ready {
		return m.renderLoadingScreen()
	}
	if m.quitting {
		return m.renderGoodbyeScreen()
	}
	if m.picking {
		return m.renderPicker()
	}

	snap := m.session.Snapshot()
	v := report.Build(snap, report.Options{ShowAssessments: m.showAssessments})
	return m.renderScreen(snap, &v)
}

func (m *Model) renderLoadingScreen() string {
	styles := GetStyles()
	loading := styles.Header.Render("Starting " + report.Title + "...")
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, loading)
}

func (m *Model) renderGoodbyeScreen() string {
	styles := GetStyles()
	goodbye := styles.Success.Render(emoji.GetEmoji("door") + " Session closed")
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, goodbye)
}

func (m *Model) renderPicker() string {
	styles := GetStyles()
	sections := []string{
		m.renderHeader(),
		styles.Subheader.Render(emoji.GetEmoji("upload") + " Choose a scan"),
		styles.Muted.Render(m.picker.CurrentDirectory),
		"",
		m.picker.View(),
	}
	if m.notice != "" {
		sections = append(sections, styles.Warning.Render(m.notice))
	}
	sections = append(sections, m.renderHelp("enter select", "esc close", "ctrl+c quit"))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) renderHeader() string {
	styles := GetStyles()
	return styles.Title.Render(emoji.GetEmoji("scan") + " " + report.Title)
}

func (m *Model) renderScreen(snap session.Snapshot, v *report.View) string {
	styles := GetStyles()

	sections := []string{m.renderHeader()}
	if v.Banner != "" {
		sections = append(sections, styles.Banner.Render(emoji.GetEmoji("warning")+" "+v.Banner))
	}
	if m.notice != "" {
		sections = append(sections, styles.Muted.Render(m.notice))
	}
	sections = append(sections, "")

	switch v.Mode {
	case report.ModeUpload:
		sections = append(sections, m.renderUpload(v))
	case report.ModeAnalyzing:
		sections = append(sections, m.renderAnalyzing(snap, v))
	case report.ModeIdlePreview:
		sections = append(sections, m.withPreview(v, styles.Muted.Render(emoji.GetEmoji("cancelled")+" "+v.Message)))
	case report.ModeResults:
		sections = append(sections, m.withPreview(v, m.renderFindings(v.Findings)))
	case report.ModeError:
		sections = append(sections, m.withPreview(v, m.renderFailure(v)))
	}

	if len(v.Assessments) > 0 {
		sections = append(sections, "", m.renderAssessments(v.Assessments))
	}

	sections = append(sections, "", m.helpFor(v.Mode))
	return lipgloss.NewStyle().Padding(0, 1).Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m *Model) renderUpload(v *report.View) string {
	styles := GetStyles()
	content := lipgloss.JoinVertical(lipgloss.Center,
		styles.Header.Render(emoji.GetEmoji("upload")+" "+v.Message),
		"",
		styles.Muted.Render(report.UploadHint),
		styles.Key.Render("Press o to choose a file"),
	)
	return styles.Box.Render(content)
}

func (m *Model) renderAnalyzing(snap session.Snapshot, v *report.View) string {
	styles := GetStyles()
	bar := components.NewBusyBar(30)
	bar.Label = styles.Header.Render(spinnerChars[m.spinnerFrame] + " " + v.Message)
	busy := bar.Render(m.frame, snap.Elapsed(m.now()))
	return m.withPreview(v, busy)
}

// withPreview places the preview pane to the left of content
func (m *Model) withPreview(v *report.View, content string) string {
	pane := &components.PreviewPane{Title: emoji.GetEmoji("file") + " scan"}
	if v.File != nil {
		pane.Title = emoji.GetEmoji("file") + " " + v.File.Name
	}
	if v.Preview != nil {
		pane.Lines = v.Preview.Thumbnail
		pane.Caption = previewCaption(v.Preview)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, pane.Render(), "  ", content)
}

func previewCaption(p *report.PreviewInfo) string {
	if p.Width > 0 && p.Height > 0 {
		return fmt.Sprintf("%s %dx%d", p.Format, p.Width, p.Height)
	}
	return p.Format + " format"
}

func (m *Model) renderFindings(f *report.Findings) string {
	if f == nil {
		return ""
	}
	styles := GetStyles()
	status := CardStatus(f.Urgency)

	cards := components.CardRow(
		components.NewFigureCard("Risk Score", fmt.Sprintf("%.1f%%", f.Risk), "").
			SetStatus(status).SetIcon(emoji.ForUrgency(string(f.Urgency))),
		components.NewFigureCard("Confidence", fmt.Sprintf("%.1f%%", f.Confidence), "").
			SetIcon(emoji.GetEmoji("confidence")),
		components.NewFigureCard("Urgency", string(f.Urgency), "").
			SetStatus(status),
	)

	lines := []string{cards, "", styles.Subheader.Render(emoji.GetEmoji("stethoscope") + " Recommendations")}
	for _, rec := range f.Recommendations {
		lines = append(lines, styles.Body.Render("• "+rec))
	}
	lines = append(lines, "", styles.Subheader.Render(emoji.GetEmoji("clipboard")+" Clinical Notes"))
	for _, note := range f.Notes {
		lines = append(lines, styles.Muted.Render(note))
	}
	if f.Executor != "" {
		lines = append(lines, "", styles.Muted.Render(fmt.Sprintf("%s in %s", f.Executor, f.Elapsed.Round(time.Millisecond))))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m *Model) renderFailure(v *report.View) string {
	styles := GetStyles()
	lines := []string{styles.Error.Render(emoji.GetEmoji("error") + " Analysis Failed")}
	if v.Failure != nil {
		lines = append(lines,
			styles.Muted.Render("type: "+string(v.Failure.Type)),
			styles.Body.Render(v.Failure.Message),
		)
	}
	lines = append(lines, "", styles.Warning.Render(v.Message))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m *Model) renderAssessments(list []report.Assessment) string {
	md := report.AssessmentsMarkdown(list)

	width := m.width - 4
	if width < 40 {
		width = 80
	}
	if m.renderer == nil || m.rendererWidth != width {
		r, err := glamour.NewTermRenderer(
			glamour.WithStylePath(m.markdownStyle),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			m.log.Warn("markdown renderer: %v", err)
			return md
		}
		m.renderer, m.rendererWidth = r, width
	}

	out, err := m.renderer.Render(md)
	if err != nil {
		m.log.Warn("render assessments: %v", err)
		return md
	}
	return strings.TrimRight(out, "\n")
}

// glamourStyle picks a markdown style. It probes the terminal, so it runs
// before the program takes over stdin.
func glamourStyle() string {
	switch {
	case IsColorDisabled():
		return "notty"
	case lipgloss.HasDarkBackground():
		return "dark"
	default:
		return "light"
	}
}

func (m *Model) helpFor(mode report.Mode) string {
	switch mode {
	case report.ModeUpload:
		return m.renderHelp("o open", "a assessments", "q quit")
	case report.ModeAnalyzing:
		return m.renderHelp("c cancel", "o open", "x reset", "a assessments", "q quit")
	default:
		return m.renderHelp("r retry", "o open", "x reset", "a assessments", "q quit")
	}
}

func (m *Model) renderHelp(keys ...string) string {
	styles := GetStyles()
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		key, desc, _ := strings.Cut(k, " ")
		parts = append(parts, styles.Key.Render(key)+" "+styles.Muted.Render(desc))
	}
	return strings.Join(parts, styles.Muted.Render(" • "))
}

// Run starts the TUI and blocks until the user quits
func Run(ctx context.Context, s *session.Session, opts Options, log *logger.Logger) error {
	model := NewModel(ctx, s, opts, log)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	model.close()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
