package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/yildizm/mediscan/internal/config"
	"github.com/yildizm/mediscan/internal/emoji"
)

const defaultConfigFile = ".mediscan.yaml"

func newConfigCommand() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage MediScan configuration",
		Long: `Manage MediScan configuration files.

Subcommands create a sample file, print the effective configuration,
validate it and list the search paths.`,
		// a broken file must still be inspectable, so skip the root loader
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			emoji.SetEmojiDisabled(noEmoji)
		},
	}

	configCmd.AddCommand(
		newConfigInitCommand(),
		newConfigShowCommand(),
		newConfigValidateCommand(),
		newConfigPathCommand(),
	)
	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var (
		outputPath string
		minimal    bool
		force      bool
	)

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a sample configuration file",
		Long: `Write a configuration file with default values.

The full sample documents every option; --minimal keeps only the
settings most people change.`,
		Example: `  mediscan config init
  mediscan config init --minimal
  mediscan config init --output ~/.config/mediscan/config.yaml --force`,
		RunE: func(cmd *cobra.Command, args []string) error {
			content, kind := config.SampleConfig(), "full configuration with every option documented"
			if minimal {
				content, kind = config.MinimalSampleConfig(), "minimal configuration"
			}
			if err := writeSampleConfig(outputPath, content, force); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s Configuration file created at: %s\n", emoji.GetEmoji("success"), outputPath)
			fmt.Fprintf(out, "%s Wrote %s\n", emoji.GetEmoji("clipboard"), kind)
			return nil
		},
	}

	initCmd.Flags().StringVarP(&outputPath, "output", "o", defaultConfigFile, "output path for config file")
	initCmd.Flags().BoolVarP(&minimal, "minimal", "m", false, "create minimal configuration")
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite existing config file")

	return initCmd
}

// writeSampleConfig writes content to path, creating parent directories
func writeSampleConfig(path, content string, force bool) error {
	if !force && fileExists(path) {
		return fmt.Errorf("config file already exists at %s (use --force to overwrite)", path)
	}
	if dir := filepath.Dir(path); dir != "." && dir != "/" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func newConfigShowCommand() *cobra.Command {
	var format string

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Display the effective configuration",
		Long: `Print the effective configuration: defaults merged with the config
file and MEDISCAN_* environment overrides.`,
		Example: `  mediscan config show
  mediscan config show --format json
  mediscan config show --config /path/to/config.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewLoader().LoadConfig(cfgFile)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			data, err := renderConfig(cfg, format)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	showCmd.Flags().StringVarP(&format, "format", "f", "yaml", "output format (yaml, json)")

	return showCmd
}

// renderConfig marshals cfg as yaml or json
func renderConfig(cfg *config.Config, format string) ([]byte, error) {
	switch format {
	case "yaml":
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal config to YAML: %w", err)
		}
		return data, nil
	case "json":
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal config to JSON: %w", err)
		}
		return append(data, '\n'), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (use json or yaml)", format)
	}
}

func newConfigValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration file",
		Long: `Load a configuration file and check it for YAML syntax errors and
invalid values such as an unknown executor or a negative timeout.`,
		Example: `  mediscan config validate
  mediscan config validate --config /path/to/config.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			cfg, err := config.NewLoader().LoadConfig(cfgFile)
			if err != nil {
				fmt.Fprintf(out, "%s Configuration validation failed:\n   %v\n", emoji.GetEmoji("error"), err)
				return err
			}

			fmt.Fprintf(out, "%s Configuration is valid\n", emoji.GetEmoji("success"))
			fmt.Fprintf(out, "%s Configuration summary:\n", emoji.GetEmoji("clipboard"))
			writeConfigSummary(out, cfg)
			return nil
		},
	}
}

func writeConfigSummary(out io.Writer, cfg *config.Config) {
	rows := [][2]string{
		{"Version", cfg.Version},
		{"Executor", cfg.Analysis.Executor},
		{"Timeout", cfg.Analysis.Timeout.String()},
		{"Output Format", cfg.Output.DefaultFormat},
		{"Allowed Types", fmt.Sprintf("%d configured", len(cfg.Preview.AllowedTypes))},
		{"Watch Debounce", cfg.Watch.Debounce.String()},
	}
	for _, row := range rows {
		fmt.Fprintf(out, "   %s: %s\n", row[0], row[1])
	}
}

func newConfigPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show configuration file search paths",
		Long: `List the paths searched for a configuration file, in priority
order, and mark the ones that exist. The environment variables that
override file settings are listed after them.`,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s Configuration file search paths (in priority order):\n\n", emoji.GetEmoji("file"))

			for i, path := range config.GetConfigPaths() {
				status := " (not found)"
				if fileExists(path) {
					status = " " + emoji.GetEmoji("success") + " (exists)"
				}
				fmt.Fprintf(out, "  %d. %s%s\n", i+1, path, status)
			}
			fmt.Fprintln(out)

			if current, found := config.FindConfigFile(); found {
				fmt.Fprintf(out, "%s Current config file: %s\n", emoji.GetEmoji("info"), current)
			} else {
				fmt.Fprintf(out, "%s No config file found, using defaults\n", emoji.GetEmoji("info"))
			}

			fmt.Fprintf(out, "%s Environment overrides:\n", emoji.GetEmoji("help"))
			for _, name := range config.EnvVars() {
				fmt.Fprintf(out, "  %s\n", name)
			}
		},
	}
}

func fileExists(filename string) bool {
	_, err := os.Stat(filename)
	return err == nil
}
