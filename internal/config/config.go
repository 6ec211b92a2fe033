package config

import (
	"fmt"
	"strings"
	"time"
)

// Config holds the complete application configuration
type Config struct {
	Version  string         `yaml:"version" json:"version"`
	Analysis AnalysisConfig `yaml:"analysis" json:"analysis"`
	Preview  PreviewConfig  `yaml:"preview" json:"preview"`
	Output   OutputConfig   `yaml:"output" json:"output"`
	Watch    WatchConfig    `yaml:"watch" json:"watch"`
}

// AnalysisConfig configures the analysis executor
type AnalysisConfig struct {
	Executor string        `yaml:"executor" json:"executor"` // simulated|onnx
	Delay    time.Duration `yaml:"delay" json:"delay"`       // simulated executor delay
	Timeout  time.Duration `yaml:"timeout" json:"timeout"`   // per-invocation deadline, 0 disables
	MaxRPS   float64       `yaml:"max_rps" json:"max_rps"`   // invocation rate limit, 0 disables
	Burst    int           `yaml:"burst" json:"burst"`       // rate limiter burst

	// ONNX backend
	ModelDir    string `yaml:"model_dir" json:"model_dir"`
	ModelFile   string `yaml:"model_file" json:"model_file"`
	InputName   string `yaml:"input_name" json:"input_name"`
	OutputName  string `yaml:"output_name" json:"output_name"`
	InputSize   int    `yaml:"input_size" json:"input_size"`
	LibraryPath string `yaml:"library_path" json:"library_path"`
}

// PreviewConfig configures preview handle creation
type PreviewConfig struct {
	CacheDir       string   `yaml:"cache_dir" json:"cache_dir"`             // where preview copies live, empty means a temp dir
	MaxBytes       int64    `yaml:"max_bytes" json:"max_bytes"`             // largest file accepted for preview
	ThumbnailWidth int      `yaml:"thumbnail_width" json:"thumbnail_width"` // columns of the text thumbnail
	RequireImage   bool     `yaml:"require_image" json:"require_image"`     // reject files that do not decode as images
	AllowedTypes   []string `yaml:"allowed_types" json:"allowed_types"`     // file picker extension hint
}

// OutputConfig configures output formatting and display
type OutputConfig struct {
	DefaultFormat   string `yaml:"default_format" json:"default_format"`     // text|json|markdown|csv
	ColorMode       string `yaml:"color_mode" json:"color_mode"`             // auto|always|never
	Verbose         bool   `yaml:"verbose" json:"verbose"`                   // default verbosity
	Theme           string `yaml:"theme" json:"theme"`                       // default|high-contrast|minimal
	ShowAssessments bool   `yaml:"show_assessments" json:"show_assessments"` // show reference assessments pane
	LogFile         string `yaml:"log_file" json:"log_file"`                 // log destination while the TUI runs
}

// WatchConfig configures the directory watch command
type WatchConfig struct {
	Debounce      time.Duration `yaml:"debounce" json:"debounce"`             // quiet period before a written file is selected
	SettleTimeout time.Duration `yaml:"settle_timeout" json:"settle_timeout"` // how long to wait for the last analysis on shutdown
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Version: "1.0",
		Analysis: AnalysisConfig{
			Executor:   "simulated",
			Delay:      2 * time.Second,
			Timeout:    30 * time.Second,
			MaxRPS:     0,
			Burst:      1,
			ModelFile:  "model.onnx",
			InputName:  "pixel_values",
			OutputName: "logits",
			InputSize:  224,
		},
		Preview: PreviewConfig{
			CacheDir:       "",
			MaxBytes:       64 << 20, // 64MB
			ThumbnailWidth: 48,
			RequireImage:   false,
			AllowedTypes:   []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp", ".dcm"},
		},
		Output: OutputConfig{
			DefaultFormat:   "text",
			ColorMode:       "auto",
			Verbose:         false,
			Theme:           "default",
			ShowAssessments: true,
			LogFile:         "",
		},
		Watch: WatchConfig{
			Debounce:      250 * time.Millisecond,
			SettleTimeout: 30 * time.Second,
		},
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.validateAnalysisConfig(); err != nil {
		return err
	}
	if err := c.validatePreviewConfig(); err != nil {
		return err
	}
	if err := c.validateOutputConfig(); err != nil {
		return err
	}
	if err := c.validateWatchConfig(); err != nil {
		return err
	}
	return nil
}

// validateAnalysisConfig validates executor-related configuration
func (c *Config) validateAnalysisConfig() error {
	validExecutors := map[string]bool{
		"simulated": true,
		"onnx":      true,
	}
	if !validExecutors[c.Analysis.Executor] {
		return fmt.Errorf("invalid executor: %s (must be one of: simulated, onnx)", c.Analysis.Executor)
	}
	if c.Analysis.Delay < 0 {
		return fmt.Errorf("delay must be non-negative")
	}
	if c.Analysis.Timeout < 0 {
		return fmt.Errorf("timeout must be non-negative")
	}
	if c.Analysis.Executor == "simulated" && c.Analysis.Timeout > 0 && c.Analysis.Timeout <= c.Analysis.Delay {
		return fmt.Errorf("timeout %v must exceed the simulated delay %v", c.Analysis.Timeout, c.Analysis.Delay)
	}
	if c.Analysis.MaxRPS < 0 {
		return fmt.Errorf("max_rps must be non-negative")
	}
	if c.Analysis.MaxRPS > 0 && c.Analysis.Burst < 1 {
		return fmt.Errorf("burst must be greater than 0 when max_rps is set")
	}
	if c.Analysis.Executor == "onnx" {
		if c.Analysis.ModelDir == "" {
			return fmt.Errorf("model_dir is required for the onnx executor")
		}
		if c.Analysis.InputSize < 1 {
			return fmt.Errorf("input_size must be greater than 0")
		}
	}
	return nil
}

// validatePreviewConfig validates preview-related configuration
func (c *Config) validatePreviewConfig() error {
	if c.Preview.MaxBytes < 1 {
		return fmt.Errorf("max_bytes must be greater than 0")
	}
	if c.Preview.ThumbnailWidth < 0 {
		return fmt.Errorf("thumbnail_width must be non-negative")
	}
	for _, ext := range c.Preview.AllowedTypes {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("allowed type %q must start with a dot", ext)
		}
	}
	return nil
}

// validateOutputConfig validates output-related configuration
func (c *Config) validateOutputConfig() error {
	if c.Output.DefaultFormat != "" {
		validFormats := map[string]bool{
			"json":     true,
			"text":     true,
			"markdown": true,
			"csv":      true,
		}
		if !validFormats[c.Output.DefaultFormat] {
			return fmt.Errorf("invalid output format: %s (must be one of: json, text, markdown, csv)", c.Output.DefaultFormat)
		}
	}
	if c.Output.ColorMode != "" {
		validColorModes := map[string]bool{
			"auto":   true,
			"always": true,
			"never":  true,
		}
		if !validColorModes[c.Output.ColorMode] {
			return fmt.Errorf("invalid color mode: %s (must be one of: auto, always, never)", c.Output.ColorMode)
		}
	}
	if c.Output.Theme != "" {
		validThemes := map[string]bool{
			"default":       true,
			"high-contrast": true,
			"minimal":       true,
		}
		if !validThemes[c.Output.Theme] {
			return fmt.Errorf("invalid theme: %s (must be one of: default, high-contrast, minimal)", c.Output.Theme)
		}
	}
	return nil
}

// validateWatchConfig validates watch-related configuration
func (c *Config) validateWatchConfig() error {
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("debounce must be non-negative")
	}
	if c.Watch.SettleTimeout < 0 {
		return fmt.Errorf("settle_timeout must be non-negative")
	}
	return nil
}
