package style

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var palette = DefaultPalette()

var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(palette.Primary).
			Bold(true).
			Margin(1, 0, 0, 0)

	SubHeaderStyle = lipgloss.NewStyle().
			Foreground(palette.Secondary).
			Bold(true)

	MutedStyle = lipgloss.NewStyle().
			Foreground(palette.TextMuted)

	LabelStyle = lipgloss.NewStyle().
			Foreground(palette.TextSecondary).
			Width(16)

	ValueStyle = lipgloss.NewStyle().
			Foreground(palette.Text).
			Bold(true)
)

var (
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.TextMuted).
			Padding(1, 2)

	ActivePanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(palette.Primary).
				Padding(1, 2)
)

var (
	SuccessStyle = lipgloss.NewStyle().Foreground(palette.Success).Bold(true)
	WarningStyle = lipgloss.NewStyle().Foreground(palette.Warning).Bold(true)
	ErrorStyle   = lipgloss.NewStyle().Foreground(palette.Error).Bold(true)
	InfoStyle    = lipgloss.NewStyle().Foreground(palette.Info)
)

// LevelStyle picks the style for a log level name.
func LevelStyle(level string) lipgloss.Style {
	switch strings.ToLower(level) {
	case "error", "fatal", "panic", "dpanic":
		return ErrorStyle
	case "warn", "warning":
		return WarningStyle
	case "debug":
		return MutedStyle
	default:
		return InfoStyle
	}
}

// KeyValue renders a labelled value on one line.
func KeyValue(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, LabelStyle.Render(label), ValueStyle.Render(value))
}
