package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yildizm/mediscan/internal/app"
	"github.com/yildizm/mediscan/internal/config"
	"github.com/yildizm/mediscan/internal/emoji"
	"github.com/yildizm/mediscan/internal/logger"
	"github.com/yildizm/mediscan/internal/ui"
)

var (
	cfgFile   string
	verbose   bool
	noColor   bool
	noEmoji   bool
	outputFmt string

	globalConfig *config.Config
)

// NewRootCommand creates the root command
func NewRootCommand(version, commit, date string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "mediscan [file]",
		Short: "Medical scan triage in the terminal",
		Long: `MediScan lets you pick a medical image, previews it and runs an AI
risk analysis on it. Selecting a new scan while one is being analyzed
supersedes the earlier analysis; only the latest selection is shown.

Without a subcommand an interactive terminal UI is started. Pass a file
to select it straight away.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Auto-disable emojis on Windows if not explicitly set
			if runtime.GOOS == "windows" && !cmd.Flag("no-emoji").Changed {
				noEmoji = true
			}
			emoji.SetEmojiDisabled(noEmoji)

			cfg, err := config.NewLoader().LoadConfig(cfgFile)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			applyGlobalFlags(cmd, cfg)
			globalConfig = cfg
			return nil
		},
		RunE: runInteractive,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVar(&noEmoji, "no-emoji", false, "disable emoji output (useful for Windows terminals)")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "", "output format (text, json, markdown, csv)")

	// Add subcommands
	rootCmd.AddCommand(newAnalyzeCommand())
	rootCmd.AddCommand(newWatchCommand())
	rootCmd.AddCommand(newConfigCommand())
	rootCmd.AddCommand(newVersionCommand(version, commit, date))

	return rootCmd
}

// applyGlobalFlags lets config fill in flags the user did not set
func applyGlobalFlags(cmd *cobra.Command, cfg *config.Config) {
	if !cmd.Flag("verbose").Changed && cfg.Output.Verbose {
		verbose = true
	}
	if !cmd.Flag("output").Changed || outputFmt == "" {
		outputFmt = cfg.Output.DefaultFormat
	}
	if !cmd.Flag("no-color").Changed {
		switch cfg.Output.ColorMode {
		case "never":
			noColor = true
		case "always":
			noColor = false
		default:
			noColor = os.Getenv("NO_COLOR") != ""
		}
	}
	if noColor {
		// lipgloss and glamour both honour NO_COLOR
		_ = os.Setenv("NO_COLOR", "1")
	}
	if cfg.Output.Theme != "" {
		ui.SetThemeByName(cfg.Output.Theme)
	}
}

func newVersionCommand(version, commit, date string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display version number, build commit, date, and runtime information",
		Run: func(cmd *cobra.Command, args []string) {
			displayVersion := version
			displayCommit := commit
			displayDate := date

			if version == "dev" || version == "" {
				displayVersion = "development"
			}
			if commit == "none" || commit == "" {
				displayCommit = "local-build"
			}
			if date == "unknown" || date == "" {
				displayDate = "local-build"
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "MediScan %s (%s) built on %s\n", displayVersion, displayCommit, displayDate)
			fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
			fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}

// runInteractive starts the terminal UI
func runInteractive(cmd *cobra.Command, args []string) error {
	cfg := GetGlobalConfig()

	// the TUI owns the screen, so logs go to a file or nowhere
	closeLog, err := redirectLogs(cfg.Output.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()

	log := newLogger("mediscan")
	a, err := app.New(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Warn("shutdown: %v", err)
		}
	}()

	opts := ui.Options{
		AllowedTypes:    cfg.Preview.AllowedTypes,
		ShowAssessments: cfg.Output.ShowAssessments,
	}
	if len(args) == 1 {
		opts.InitialPath = args[0]
		opts.StartDir = filepath.Dir(args[0])
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	return ui.Run(ctx, a.Session, opts, log)
}

// redirectLogs points the shared log output at path, or discards it
func redirectLogs(path string) (func(), error) {
	if path == "" {
		logger.SetOutput(io.Discard)
		return func() { logger.SetOutput(os.Stderr) }, nil
	}

	// #nosec G304 - log path comes from the user's own config
	f, err := os.OpenFile(filepath.Clean(path), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	logger.SetOutput(f)
	return func() {
		logger.Sync()
		logger.SetOutput(os.Stderr)
		_ = f.Close()
	}, nil
}

// signalContext is cancelled on SIGINT or SIGTERM
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

// GetGlobalConfig returns the loaded configuration, or defaults when the
// root command has not run
func GetGlobalConfig() *config.Config {
	if globalConfig == nil {
		return config.DefaultConfig()
	}
	return globalConfig
}

// Global helpers
func isVerbose() bool {
	return verbose
}

func getOutputFormat() string {
	return outputFmt
}

func newLogger(component string) *logger.Logger {
	return logger.NewWithCallback(component, isVerbose)
}
