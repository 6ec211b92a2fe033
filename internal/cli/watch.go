package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/yildizm/mediscan/internal/app"
	"github.com/yildizm/mediscan/internal/emoji"
	"github.com/yildizm/mediscan/internal/formatter"
	"github.com/yildizm/mediscan/internal/logger"
	"github.com/yildizm/mediscan/internal/monitor"
	"github.com/yildizm/mediscan/internal/report"
	"github.com/yildizm/mediscan/internal/session"
)

var (
	watchAssessments bool
	watchMetrics     bool
)

func newWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Analyze scans as they appear in a directory",
		Long: `Watch a directory and select every scan that is created or written
in it. A file that is still being written is selected once it has been
quiet for the debounce period. When files arrive faster than they are
analyzed, only the latest one is reported.

Press Ctrl+C to stop; the analysis in flight is given watch.settle_timeout
to finish.

Examples:
  mediscan watch ./incoming
  mediscan watch --output csv ./incoming > results.csv
  mediscan watch --metrics ./incoming`,
		Args: cobra.ExactArgs(1),
		RunE: runWatch,
	}

	cmd.Flags().BoolVar(&watchAssessments, "assessments", false, "include professional assessment cards")
	cmd.Flags().BoolVar(&watchMetrics, "metrics", false, "print analysis metrics when the watch stops")

	return cmd
}

// watchOptions controls the watch loop
type watchOptions struct {
	Debounce      time.Duration
	SettleTimeout time.Duration
	AllowedTypes  []string
}

func runWatch(cmd *cobra.Command, args []string) error {
	dir := args[0]
	if err := validateWatchDir(dir); err != nil {
		return fmt.Errorf("invalid watch directory: %w", err)
	}

	cfg := GetGlobalConfig()
	log := newLogger("watch")

	a, err := app.New(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Warn("shutdown: %v", err)
		}
	}()

	printer, err := newReportPrinter(os.Stdout, os.Stderr, getOutputFormat(), !noColor,
		watchAssessments || cfg.Output.ShowAssessments)
	if err != nil {
		return err
	}

	watcher, err := createWatcher(dir)
	if err != nil {
		return err
	}
	defer cleanupWatcher(watcher, log)

	runner := a.NewRunner()
	defer func() { _ = runner.Close() }()

	if isVerbose() {
		fmt.Fprintf(os.Stderr, "%s Watching directory: %s\n", emoji.GetEmoji("watch"), filepath.Clean(dir))
		fmt.Fprintf(os.Stderr, "Press Ctrl+C to stop...\n\n")
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	err = runWatchLoop(ctx, watcher, runner, printer, watchOptions{
		Debounce:      cfg.Watch.Debounce,
		SettleTimeout: cfg.Watch.SettleTimeout,
		AllowedTypes:  cfg.Preview.AllowedTypes,
	}, log)

	if watchMetrics || isVerbose() {
		printMetrics(os.Stderr, a.Metrics, log)
	}
	return err
}

// printMetrics writes the analysis metrics summary
func printMetrics(w io.Writer, metrics *monitor.Collector, log *logger.Logger) {
	format := monitor.ReportFormatText
	if getOutputFormat() == "json" {
		format = monitor.ReportFormatJSON
	}
	out, err := monitor.Report(metrics.Snapshot(), format)
	if err != nil {
		log.Warn("failed to render metrics: %v", err)
		return
	}
	fmt.Fprintf(w, "\n%s\n", strings.TrimRight(string(out), "\n"))
}

// runWatchLoop feeds settled file events into the runner and prints
// every new outcome until ctx is done
func runWatchLoop(ctx context.Context, watcher *fsnotify.Watcher, runner *session.Runner, printer *reportPrinter, opts watchOptions, log *logger.Logger) error {
	updates, unsubscribe := runner.Subscribe(16)
	defer unsubscribe()

	deb := newDebouncer(opts.Debounce)
	defer deb.stop()

	for {
		select {
		case <-ctx.Done():
			return settle(runner, printer, opts.SettleTimeout)

		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if isScanEvent(event, opts.AllowedTypes) {
				log.Debug("scan event %s on %s", event.Op, event.Name)
				deb.touch(event.Name)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			log.Warn("watcher error: %v", err)

		case path := <-deb.ready:
			if err := runner.SelectPath(path); err != nil {
				return err
			}

		case snap, ok := <-updates:
			if !ok {
				return nil
			}
			if err := printer.handle(snap); err != nil {
				return err
			}
		}
	}
}

// settle gives the analysis in flight a bounded time to finish
func settle(runner *session.Runner, printer *reportPrinter, timeout time.Duration) error {
	if timeout <= 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	snap, err := runner.Wait(ctx)
	if err != nil {
		return nil
	}
	return printer.handle(snap)
}

// isScanEvent reports whether an event should lead to a selection
func isScanEvent(event fsnotify.Event, allowed []string) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return false
	}
	if strings.HasPrefix(filepath.Base(event.Name), ".") {
		return false
	}
	if len(allowed) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(event.Name))
	for _, a := range allowed {
		if ext == a {
			return true
		}
	}
	return false
}

// debouncer emits a path once it has not been touched for delay
type debouncer struct {
	delay  time.Duration
	ready  chan string
	done   chan struct{}
	mu     sync.Mutex
	timers map[string]*time.Timer
	once   sync.Once
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{
		delay:  delay,
		ready:  make(chan string),
		done:   make(chan struct{}),
		timers: make(map[string]*time.Timer),
	}
}

func (d *debouncer) touch(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.touchLocked(path)
}

func (d *debouncer) touchLocked(path string) {
	if t, ok := d.timers[path]; ok {
		t.Stop()
	}
	var timer *time.Timer
	timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		// a callback that lost the race with a newer touch stays quiet
		if d.timers[path] != timer {
			d.mu.Unlock()
			return
		}
		delete(d.timers, path)
		d.mu.Unlock()

		select {
		case d.ready <- path:
		case <-d.done:
		}
	})
	d.timers[path] = timer
}

func (d *debouncer) stop() {
	d.once.Do(func() {
		close(d.done)
		d.mu.Lock()
		defer d.mu.Unlock()
		for path, t := range d.timers {
			t.Stop()
			delete(d.timers, path)
		}
	})
}

// reportPrinter prints each settled outcome once
type reportPrinter struct {
	out         io.Writer
	errOut      io.Writer
	first       formatter.Formatter
	rest        formatter.Formatter
	assessments bool

	printed    int
	lastGen    uint64
	lastBanner string
}

func newReportPrinter(out, errOut io.Writer, format string, color, assessments bool) (*reportPrinter, error) {
	first, err := formatter.New(format, color)
	if err != nil {
		return nil, fmt.Errorf("failed to get formatter: %w", err)
	}
	rest := first
	if format == "csv" {
		rest = formatter.NewCSVRows()
	}
	return &reportPrinter{
		out:         out,
		errOut:      errOut,
		first:       first,
		rest:        rest,
		assessments: assessments,
	}, nil
}

func (p *reportPrinter) handle(snap session.Snapshot) error {
	banner := ""
	if snap.SelectionErr != nil {
		banner = snap.SelectionErr.Error()
	}
	if banner != p.lastBanner {
		p.lastBanner = banner
		if banner != "" {
			fmt.Fprintf(p.errOut, "%s %s\n", emoji.GetEmoji("warning"), banner)
		}
	}

	if snap.State != session.StateSucceeded && snap.State != session.StateFailed {
		return nil
	}
	if snap.Generation == p.lastGen {
		return nil
	}
	p.lastGen = snap.Generation

	f := p.rest
	if p.printed == 0 {
		f = p.first
	}
	view := report.Build(snap, report.Options{ShowAssessments: p.assessments && p.printed == 0})
	output, err := f.Format(&view)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	p.printed++

	_, err = p.out.Write(output)
	return err
}

// cleanupWatcher safely closes watcher with error logging
func cleanupWatcher(watcher *fsnotify.Watcher, log *logger.Logger) {
	if err := watcher.Close(); err != nil {
		log.Warn("failed to close watcher: %v", err)
	}
}

// createWatcher creates and configures a new file system watcher
func createWatcher(dir string) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	if err := watcher.Add(filepath.Clean(dir)); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch directory: %w", err)
	}

	return watcher, nil
}

// validateWatchDir validates that a path is a directory that can be watched
func validateWatchDir(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("empty directory path")
	}

	info, err := os.Stat(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("cannot access directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("cannot watch a file, must be a directory")
	}
	return nil
}
