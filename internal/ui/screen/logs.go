package screen

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rovshanmuradov/heliox/internal/ui"
	"github.com/rovshanmuradov/heliox/internal/ui/component"
	"github.com/rovshanmuradov/heliox/internal/ui/router"
	"github.com/rovshanmuradov/heliox/internal/ui/style"
)

const (
	logsRefreshInterval = time.Second
	logsLimit           = 500
	// navbar, title and help bar
	logsChromeHeight = 8
)

type logsTickMsg time.Time

// LogsScreen tails the in-memory log buffer.
type LogsScreen struct {
	keyMap  ui.KeyMap
	helpBar *component.HelpBar
	view    *component.LogView

	width  int
	height int
}

// NewLogsScreen creates a new logs screen
func NewLogsScreen(services ui.ServiceProvider) *LogsScreen {
	return &LogsScreen{
		keyMap:  ui.DefaultKeyMap(),
		helpBar: component.NewHelpBar(),
		view:    component.NewLogView(services.GetLogBuffer(), logsLimit),
	}
}

func (l *LogsScreen) Route() ui.Route { return ui.RouteLogs }

func (l *LogsScreen) Capturing() bool { return false }

func (l *LogsScreen) Init() tea.Cmd {
	l.view.Refresh()
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(logsRefreshInterval, func(t time.Time) tea.Msg {
		return logsTickMsg(t)
	})
}

// Update handles screen updates
func (l *LogsScreen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case logsTickMsg:
		l.view.Refresh()
		return l, tick()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, l.keyMap.Filter):
			l.view.CycleLevel()
		case key.Matches(msg, l.keyMap.Top):
			l.view.Top()
		case key.Matches(msg, l.keyMap.Bottom):
			l.view.Follow()
		default:
			return l, l.view.Update(msg)
		}
	}
	return l, nil
}

// View renders the logs screen
func (l *LogsScreen) View() string {
	title := style.TitleStyle.Render("Logs") + "  " +
		style.MutedStyle.Render(fmt.Sprintf("level ≥ %s", l.view.MinLevel().CapitalString()))
	help := l.helpBar.SetWidth(l.width).SetKeyBindings(l.keyMap.ContextualHelp(ui.RouteLogs)).View()
	return lipgloss.JoinVertical(lipgloss.Left, title, l.view.View(), help)
}

// SetSize sets the screen dimensions
func (l *LogsScreen) SetSize(width, height int) {
	l.width = width
	l.height = height
	l.view.SetSize(width, height-logsChromeHeight)
}
