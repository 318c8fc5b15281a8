package component

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap/zapcore"

	"github.com/rovshanmuradov/heliox/internal/logger"
	"github.com/rovshanmuradov/heliox/internal/ui/style"
)

// LogView shows the newest entries of a LogBuffer in a scrollable
// viewport.
type LogView struct {
	buffer   *logger.LogBuffer
	viewport viewport.Model
	minLevel zapcore.Level
	follow   bool
	limit    int

	timestampStyle lipgloss.Style
	loggerStyle    lipgloss.Style
	fieldStyle     lipgloss.Style
}

// NewLogView creates a viewer over buffer showing up to limit entries.
func NewLogView(buffer *logger.LogBuffer, limit int) *LogView {
	palette := style.DefaultPalette()

	return &LogView{
		buffer:   buffer,
		viewport: viewport.New(80, 10),
		minLevel: zapcore.DebugLevel,
		follow:   true,
		limit:    limit,

		timestampStyle: lipgloss.NewStyle().Foreground(palette.TextMuted),
		loggerStyle:    lipgloss.NewStyle().Foreground(palette.Secondary),
		fieldStyle:     lipgloss.NewStyle().Foreground(palette.TextSecondary),
	}
}

func (lv *LogView) SetSize(width, height int) {
	lv.viewport.Width = width
	if height < 3 {
		height = 3
	}
	lv.viewport.Height = height
}

// CycleLevel raises the minimum level shown, wrapping back to debug
// after error.
func (lv *LogView) CycleLevel() zapcore.Level {
	if lv.minLevel >= zapcore.ErrorLevel {
		lv.minLevel = zapcore.DebugLevel
	} else {
		lv.minLevel++
	}
	lv.Refresh()
	return lv.minLevel
}

func (lv *LogView) MinLevel() zapcore.Level {
	return lv.minLevel
}

// Follow keeps the view scrolled to the newest entry.
func (lv *LogView) Follow() {
	lv.follow = true
	lv.viewport.GotoBottom()
}

func (lv *LogView) Top() {
	lv.follow = false
	lv.viewport.GotoTop()
}

// Update scrolls the viewport. Scrolling up stops following.
func (lv *LogView) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	lv.viewport, cmd = lv.viewport.Update(msg)
	lv.follow = lv.viewport.AtBottom()
	return cmd
}

// Refresh reloads the entries from the buffer.
func (lv *LogView) Refresh() {
	lines := lv.Lines()
	if len(lines) == 0 {
		lv.viewport.SetContent(style.MutedStyle.Render("No log entries at " + lv.minLevel.CapitalString() + " or above"))
		return
	}
	lv.viewport.SetContent(strings.Join(lines, "\n"))
	if lv.follow {
		lv.viewport.GotoBottom()
	}
}

// Lines returns the formatted entries that pass the level filter.
func (lv *LogView) Lines() []string {
	if lv.buffer == nil {
		return nil
	}

	var lines []string
	for _, entry := range lv.buffer.GetRecentLogs(lv.limit) {
		var level zapcore.Level
		if err := level.UnmarshalText([]byte(entry.Level)); err != nil {
			level = zapcore.InfoLevel
		}
		if level < lv.minLevel {
			continue
		}
		lines = append(lines, lv.format(entry, level))
	}
	return lines
}

func (lv *LogView) format(entry logger.LogEntry, level zapcore.Level) string {
	parts := []string{
		lv.timestampStyle.Render(entry.Timestamp.Format("15:04:05")),
		style.LevelStyle(level.String()).Render(fmt.Sprintf("%-5s", level.CapitalString())),
	}
	if entry.Logger != "" {
		parts = append(parts, lv.loggerStyle.Render(entry.Logger))
	}
	parts = append(parts, entry.Message)
	if len(entry.Fields) > 0 {
		parts = append(parts, lv.fieldStyle.Render(formatFields(entry.Fields)))
	}
	return strings.Join(parts, " ")
}

func formatFields(fields map[string]interface{}) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = fmt.Sprintf("%s=%v", k, fields[k])
	}
	return strings.Join(pairs, " ")
}

func (lv *LogView) View() string {
	return lv.viewport.View()
}
