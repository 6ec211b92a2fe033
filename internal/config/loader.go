package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigPaths defines the config file search paths in priority order
var ConfigPaths = []string{
	"./.mediscan.yaml",               // Project-specific config (highest priority)
	"~/.config/mediscan/config.yaml", // User config
	"/etc/mediscan/config.yaml",      // System config (lowest priority)
}

// Loader handles configuration loading with priority merging
type Loader struct {
	configPaths []string
}

// NewLoader creates a new config loader
func NewLoader() *Loader {
	return &Loader{
		configPaths: ConfigPaths,
	}
}

// LoadConfig loads configuration from multiple sources with priority order:
// 1. Command line flags (handled by caller)
// 2. Environment variables
// 3. ./.mediscan.yaml
// 4. ~/.config/mediscan/config.yaml
// 5. /etc/mediscan/config.yaml
// 6. Built-in defaults
func (l *Loader) LoadConfig(customPath string) (*Config, error) {
	config := DefaultConfig()

	if customPath != "" {
		if err := validateConfigPath(customPath); err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		if err := l.loadFromFile(config, customPath); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", customPath, err)
		}
	} else {
		// Lowest priority first so later files win
		for i := len(l.configPaths) - 1; i >= 0; i-- {
			expandedPath := expandPath(l.configPaths[i])
			if fileExists(expandedPath) {
				if err := l.loadFromFile(config, expandedPath); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: Failed to load config from %s: %v\n", expandedPath, err)
				}
			}
		}
	}

	if err := l.applyEnvOverrides(config); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	config.Preview.CacheDir = expandPath(config.Preview.CacheDir)
	config.Analysis.ModelDir = expandPath(config.Analysis.ModelDir)
	config.Output.LogFile = expandPath(config.Output.LogFile)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// loadFromFile decodes a YAML file onto config. Keys absent from the file
// keep the value they already had, so booleans that default to true
// survive partial files.
func (l *Loader) loadFromFile(config *Config, path string) error {
	// #nosec G304 - path is validated by validateConfigPath() or comes from ConfigPaths
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	// Decode into a copy so a parse error leaves config untouched
	merged := *config
	merged.Preview.AllowedTypes = append([]string(nil), config.Preview.AllowedTypes...)
	if err := yaml.Unmarshal(data, &merged); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	*config = merged
	return nil
}

// envBinding ties one MEDISCAN_* variable to the field it overrides
type envBinding struct {
	name string
	set  func(string) error
}

// envBindings lists every scalar override for config
func envBindings(config *Config) []envBinding {
	return []envBinding{
		{"MEDISCAN_ANALYSIS_EXECUTOR", setString(&config.Analysis.Executor)},
		{"MEDISCAN_ANALYSIS_DELAY", setParsed(time.ParseDuration, &config.Analysis.Delay)},
		{"MEDISCAN_ANALYSIS_TIMEOUT", setParsed(time.ParseDuration, &config.Analysis.Timeout)},
		{"MEDISCAN_ANALYSIS_MAX_RPS", setParsed(parseFloat, &config.Analysis.MaxRPS)},
		{"MEDISCAN_ANALYSIS_BURST", setParsed(strconv.Atoi, &config.Analysis.Burst)},
		{"MEDISCAN_ANALYSIS_MODEL_DIR", setString(&config.Analysis.ModelDir)},
		{"MEDISCAN_ANALYSIS_INPUT_SIZE", setParsed(strconv.Atoi, &config.Analysis.InputSize)},
		{"MEDISCAN_ANALYSIS_LIBRARY_PATH", setString(&config.Analysis.LibraryPath)},

		{"MEDISCAN_PREVIEW_CACHE_DIR", setString(&config.Preview.CacheDir)},
		{"MEDISCAN_PREVIEW_MAX_BYTES", setParsed(parseInt64, &config.Preview.MaxBytes)},
		{"MEDISCAN_PREVIEW_THUMBNAIL_WIDTH", setParsed(strconv.Atoi, &config.Preview.ThumbnailWidth)},
		{"MEDISCAN_PREVIEW_REQUIRE_IMAGE", setParsed(strconv.ParseBool, &config.Preview.RequireImage)},
		{"MEDISCAN_PREVIEW_ALLOWED_TYPES", setParsed(parseExtList, &config.Preview.AllowedTypes)},

		{"MEDISCAN_OUTPUT_DEFAULT_FORMAT", setString(&config.Output.DefaultFormat)},
		{"MEDISCAN_OUTPUT_COLOR_MODE", setString(&config.Output.ColorMode)},
		{"MEDISCAN_OUTPUT_VERBOSE", setParsed(strconv.ParseBool, &config.Output.Verbose)},
		{"MEDISCAN_OUTPUT_THEME", setString(&config.Output.Theme)},
		{"MEDISCAN_OUTPUT_SHOW_ASSESSMENTS", setParsed(strconv.ParseBool, &config.Output.ShowAssessments)},
		{"MEDISCAN_OUTPUT_LOG_FILE", setString(&config.Output.LogFile)},

		{"MEDISCAN_WATCH_DEBOUNCE", setParsed(time.ParseDuration, &config.Watch.Debounce)},
		{"MEDISCAN_WATCH_SETTLE_TIMEOUT", setParsed(time.ParseDuration, &config.Watch.SettleTimeout)},
	}
}

// EnvVars returns the names of every supported environment override
func EnvVars() []string {
	bindings := envBindings(&Config{})
	names := make([]string, len(bindings))
	for i, b := range bindings {
		names[i] = b.name
	}
	return names
}

// applyEnvOverrides applies environment variable overrides to the config
func (l *Loader) applyEnvOverrides(config *Config) error {
	for _, b := range envBindings(config) {
		value := os.Getenv(b.name)
		if value == "" {
			continue
		}
		if err := b.set(value); err != nil {
			return fmt.Errorf("invalid value for %s: %w", b.name, err)
		}
	}
	return nil
}

// GetConfigPaths returns the list of configuration file paths that will be searched
func GetConfigPaths() []string {
	paths := make([]string, 0, len(ConfigPaths))
	for _, path := range ConfigPaths {
		paths = append(paths, expandPath(path))
	}
	return paths
}

// FindConfigFile finds the first existing config file in the search paths
func FindConfigFile() (string, bool) {
	for _, path := range ConfigPaths {
		expandedPath := expandPath(path)
		if fileExists(expandedPath) {
			return expandedPath, true
		}
	}
	return "", false
}

// Helper functions

// validateConfigPath validates that a config path is safe to read
func validateConfigPath(path string) error {
	cleanPath := filepath.Clean(path)

	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path traversal not allowed")
	}

	ext := strings.ToLower(filepath.Ext(cleanPath))
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("config file must have .yaml or .yml extension")
	}

	absPath, err := filepath.Abs(cleanPath)
	if err != nil {
		return fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	if strings.HasPrefix(absPath, "/etc/passwd") ||
		strings.HasPrefix(absPath, "/etc/shadow") ||
		strings.HasPrefix(absPath, "/proc/") ||
		strings.HasPrefix(absPath, "/sys/") {
		return fmt.Errorf("access to system files not allowed")
	}

	return nil
}

// expandPath expands ~ to home directory
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

// fileExists checks if a file exists
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Type conversion helpers

func setString(dst *string) func(string) error {
	return func(v string) error {
		*dst = v
		return nil
	}
}

// setParsed stores parse(v) in dst, leaving dst alone on error
func setParsed[T any](parse func(string) (T, error), dst *T) func(string) error {
	return func(v string) error {
		val, err := parse(v)
		if err != nil {
			return err
		}
		*dst = val
		return nil
	}
}

func parseInt64(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}

// parseExtList splits a comma-separated extension list
func parseExtList(s string) ([]string, error) {
	parts := strings.Split(s, ",")
	exts := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			exts = append(exts, p)
		}
	}
	if len(exts) == 0 {
		return nil, fmt.Errorf("no extensions in %q", s)
	}
	return exts, nil
}
