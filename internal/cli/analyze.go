package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/yildizm/mediscan/internal/app"
	"github.com/yildizm/mediscan/internal/config"
	"github.com/yildizm/mediscan/internal/emoji"
	"github.com/yildizm/mediscan/internal/formatter"
	"github.com/yildizm/mediscan/internal/report"
	"github.com/yildizm/mediscan/internal/session"
)

var (
	analyzeExecutor    string
	analyzeTimeout     time.Duration
	analyzeOutputFile  string
	analyzeAssessments bool
)

func newAnalyzeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Analyze a single scan and print the report",
		Long: `Select a scan, run one analysis and print the resulting report
without starting the terminal UI.

The exit status is non-zero when the file cannot be selected or the
analysis fails.

Examples:
  mediscan analyze chest.png
  mediscan analyze --output json chest.png
  mediscan analyze --executor onnx --timeout 10s scan.tiff`,
		Args: cobra.ExactArgs(1),
		RunE: runAnalyze,
	}

	cmd.Flags().StringVarP(&analyzeExecutor, "executor", "e", "", "analysis executor (simulated, onnx)")
	cmd.Flags().DurationVar(&analyzeTimeout, "timeout", 0, "analysis timeout (default from config)")
	cmd.Flags().StringVar(&analyzeOutputFile, "output-file", "", "save output to file instead of stdout")
	cmd.Flags().BoolVar(&analyzeAssessments, "assessments", false, "include professional assessment cards")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := analyzeConfig(cmd, GetGlobalConfig())
	if err != nil {
		return err
	}

	log := newLogger("analyze")
	a, err := app.New(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Warn("shutdown: %v", err)
		}
	}()

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	snap, err := analyzeFile(ctx, a, args[0])
	if err != nil {
		return err
	}

	view := report.Build(snap, report.Options{ShowAssessments: analyzeAssessments || cfg.Output.ShowAssessments})
	if err := writeReport(&view); err != nil {
		return err
	}
	return outcomeError(snap)
}

// analyzeConfig applies command flags on top of the loaded configuration
func analyzeConfig(cmd *cobra.Command, base *config.Config) (*config.Config, error) {
	cfg := *base
	if cmd.Flag("executor").Changed {
		cfg.Analysis.Executor = analyzeExecutor
	}
	if cmd.Flag("timeout").Changed {
		cfg.Analysis.Timeout = analyzeTimeout
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid analyze flags: %w", err)
	}
	return &cfg, nil
}

// analyzeFile runs one selection to completion on a headless runner
func analyzeFile(ctx context.Context, a *app.App, path string) (session.Snapshot, error) {
	runner := a.NewRunner()
	defer func() { _ = runner.Close() }()

	if isVerbose() {
		fmt.Fprintf(os.Stderr, "%s Analyzing file: %s\n", emoji.GetEmoji("hourglass"), filepath.Clean(path))
	}

	if err := runner.SelectPath(path); err != nil {
		return session.Snapshot{}, err
	}
	snap, err := runner.Wait(ctx)
	if err != nil {
		// interrupted: report what we have, marked cancelled
		if cancelErr := runner.Cancel(); cancelErr == nil {
			if s, snapErr := runner.Snapshot(context.Background()); snapErr == nil {
				return s, nil
			}
		}
		return session.Snapshot{}, fmt.Errorf("analysis interrupted: %w", err)
	}
	return snap, nil
}

// outcomeError turns a settled snapshot into the command's exit status
func outcomeError(snap session.Snapshot) error {
	switch {
	case snap.SelectionErr != nil:
		return snap.SelectionErr
	case snap.Err != nil:
		return snap.Err
	case snap.State == session.StatePreviewingIdle:
		return fmt.Errorf("analysis cancelled")
	}
	return nil
}

// writeReport formats a view and writes it to the chosen destination
func writeReport(view *report.View) error {
	f, err := formatter.New(getOutputFormat(), !noColor)
	if err != nil {
		return fmt.Errorf("failed to get formatter: %w", err)
	}

	output, err := f.Format(view)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	return handleOutputDestination(output)
}

// handleOutputDestination writes output to file or stdout
func handleOutputDestination(output []byte) error {
	if analyzeOutputFile == "" {
		_, err := os.Stdout.Write(output)
		return err
	}

	if err := writeOutputBytesToFile(output, analyzeOutputFile); err != nil {
		return fmt.Errorf("failed to write output to file: %w", err)
	}
	if isVerbose() {
		fmt.Fprintf(os.Stderr, "Output saved to: %s\n", analyzeOutputFile)
	}
	return nil
}

// writeOutputBytesToFile writes output to a file with proper error handling
func writeOutputBytesToFile(output []byte, filePath string) error {
	cleanPath := filepath.Clean(filePath)

	file, err := os.Create(cleanPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && isVerbose() {
			fmt.Fprintf(os.Stderr, "Warning: failed to close output file: %v\n", closeErr)
		}
	}()

	if _, err := file.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := file.Sync(); err != nil {
		return fmt.Errorf("failed to sync output file: %w", err)
	}
	return nil
}
