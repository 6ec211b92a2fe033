package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"

	"github.com/yildizm/mediscan/internal/report"
)

// Theme represents a color theme for the TUI
type Theme struct {
	Name string

	// Primary colors
	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Accent    lipgloss.AdaptiveColor

	// Semantic colors
	Success lipgloss.AdaptiveColor
	Warning lipgloss.AdaptiveColor
	Error   lipgloss.AdaptiveColor
	Info    lipgloss.AdaptiveColor

	// UI colors
	Border     lipgloss.AdaptiveColor
	Foreground lipgloss.AdaptiveColor
	Muted      lipgloss.AdaptiveColor
	Banner     lipgloss.AdaptiveColor
}

// palette lists [light, dark] pairs in Theme field order
type palette struct {
	primary, secondary, accent         [2]string
	success, warning, errorColor, info [2]string
	border, foreground, muted, banner  [2]string
}

func adaptive(c [2]string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: c[0], Dark: c[1]}
}

// buildTheme creates a theme from a palette
func buildTheme(name string, p palette) Theme {
	return Theme{
		Name:       name,
		Primary:    adaptive(p.primary),
		Secondary:  adaptive(p.secondary),
		Accent:     adaptive(p.accent),
		Success:    adaptive(p.success),
		Warning:    adaptive(p.warning),
		Error:      adaptive(p.errorColor),
		Info:       adaptive(p.info),
		Border:     adaptive(p.border),
		Foreground: adaptive(p.foreground),
		Muted:      adaptive(p.muted),
		Banner:     adaptive(p.banner),
	}
}

// Available themes
var (
	DefaultTheme = buildTheme("default", palette{
		primary: [2]string{"#1E40AF", "#3B82F6"}, secondary: [2]string{"#6B7280", "#9CA3AF"}, accent: [2]string{"#0E7490", "#22D3EE"},
		success: [2]string{"#059669", "#10B981"}, warning: [2]string{"#D97706", "#F59E0B"}, errorColor: [2]string{"#DC2626", "#EF4444"},
		info: [2]string{"#0891B2", "#06B6D4"}, border: [2]string{"#D1D5DB", "#374151"}, foreground: [2]string{"#111827", "#F9FAFB"},
		muted: [2]string{"#6B7280", "#9CA3AF"}, banner: [2]string{"#FEE2E2", "#7F1D1D"},
	})

	HighContrastTheme = buildTheme("high-contrast", palette{
		primary: [2]string{"#000000", "#FFFFFF"}, secondary: [2]string{"#666666", "#BBBBBB"}, accent: [2]string{"#000080", "#8080FF"},
		success: [2]string{"#006600", "#00FF00"}, warning: [2]string{"#CC6600", "#FFAA00"}, errorColor: [2]string{"#CC0000", "#FF4444"},
		info: [2]string{"#0066CC", "#4499FF"}, border: [2]string{"#000000", "#FFFFFF"}, foreground: [2]string{"#000000", "#FFFFFF"},
		muted: [2]string{"#666666", "#BBBBBB"}, banner: [2]string{"#FFFF00", "#660000"},
	})

	MinimalTheme = buildTheme("minimal", palette{
		primary: [2]string{"#2D3748", "#E2E8F0"}, secondary: [2]string{"#718096", "#A0AEC0"}, accent: [2]string{"#4A5568", "#CBD5E0"},
		success: [2]string{"#2F855A", "#68D391"}, warning: [2]string{"#C05621", "#F6AD55"}, errorColor: [2]string{"#C53030", "#FC8181"},
		info: [2]string{"#2B6CB0", "#63B3ED"}, border: [2]string{"#E2E8F0", "#2D3748"}, foreground: [2]string{"#2D3748", "#F7FAFC"},
		muted: [2]string{"#A0AEC0", "#718096"}, banner: [2]string{"#F7FAFC", "#2D3748"},
	})
)

var currentTheme = DefaultTheme

// GetTheme returns the current active theme
func GetTheme() Theme {
	return currentTheme
}

// SetTheme sets the active theme
func SetTheme(theme *Theme) {
	currentTheme = *theme
}

// SetThemeByName sets the theme by name
func SetThemeByName(name string) bool {
	switch name {
	case "default", "":
		SetTheme(&DefaultTheme)
	case "high-contrast":
		SetTheme(&HighContrastTheme)
	case "minimal":
		SetTheme(&MinimalTheme)
	default:
		return false
	}
	return true
}

// IsColorDisabled checks if colors should be disabled
func IsColorDisabled() bool {
	return os.Getenv("NO_COLOR") != ""
}

// GetAvailableThemes returns list of available theme names
func GetAvailableThemes() []string {
	return []string{"default", "high-contrast", "minimal"}
}

// Styles contains the styles derived from a theme
type Styles struct {
	Theme Theme

	Title     lipgloss.Style
	Header    lipgloss.Style
	Subheader lipgloss.Style
	Body      lipgloss.Style
	Muted     lipgloss.Style
	Key       lipgloss.Style

	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Info    lipgloss.Style
	Banner  lipgloss.Style

	Box   lipgloss.Style
	Panel lipgloss.Style
}

// GetStyles builds styles for the current theme
func GetStyles() *Styles {
	theme := GetTheme()

	return &Styles{
		Theme: theme,

		Title: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true).
			Padding(0, 1),
		Header: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true),
		Subheader: lipgloss.NewStyle().
			Foreground(theme.Secondary).
			Bold(true),
		Body: lipgloss.NewStyle().
			Foreground(theme.Foreground),
		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),
		Key: lipgloss.NewStyle().
			Foreground(theme.Accent).
			Bold(true),

		Success: lipgloss.NewStyle().
			Foreground(theme.Success).
			Bold(true),
		Warning: lipgloss.NewStyle().
			Foreground(theme.Warning).
			Bold(true),
		Error: lipgloss.NewStyle().
			Foreground(theme.Error).
			Bold(true),
		Info: lipgloss.NewStyle().
			Foreground(theme.Info),
		Banner: lipgloss.NewStyle().
			Background(theme.Banner).
			Foreground(theme.Error).
			Bold(true).
			Padding(0, 1),

		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(1, 2),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),
	}
}

// Urgency returns the style for an urgency level
func (s *Styles) Urgency(u report.Urgency) lipgloss.Style {
	switch u {
	case report.UrgencyHigh:
		return s.Error
	case report.UrgencyMedium:
		return s.Warning
	default:
		return s.Success
	}
}

// CardStatus maps an urgency level onto a figure card status
func CardStatus(u report.Urgency) string {
	switch u {
	case report.UrgencyHigh:
		return "error"
	case report.UrgencyMedium:
		return "warning"
	default:
		return "success"
	}
}
