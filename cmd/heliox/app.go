package main

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/heliox/internal/market"
	"github.com/rovshanmuradov/heliox/internal/session"
	"github.com/rovshanmuradov/heliox/internal/ui"
	"github.com/rovshanmuradov/heliox/internal/ui/component"
	"github.com/rovshanmuradov/heliox/internal/ui/router"
	"github.com/rovshanmuradov/heliox/internal/ui/screen"
)

// AppModel represents the main TUI application model
type AppModel struct {
	services ui.ServiceProvider
	logger   *zap.Logger
	router   *router.Router
	navbar   *component.NavBar
	modal    *component.Modal
	keyMap   ui.KeyMap
	session  session.State
	width    int
	height   int
}

// NewAppModel creates the application showing the home screen.
func NewAppModel(services ui.ServiceProvider) *AppModel {
	sess := services.GetSession()
	account, signedIn := sess.CurrentAccount()
	state := session.State{AccountID: account, SignedIn: signedIn, Loading: sess.Loading()}

	return &AppModel{
		services: services,
		logger:   services.GetLogger().Named("app"),
		router:   router.New(screen.NewFactory(services), ui.RouteHome),
		navbar:   component.NewNavBar().SetActive(ui.RouteHome).SetSession(state),
		modal:    component.NewModal(),
		keyMap:   ui.DefaultKeyMap(),
		session:  state,
	}
}

// Init initializes the application
func (m *AppModel) Init() tea.Cmd {
	return tea.Batch(
		m.router.Init(),
		m.services.GetUpdates().Listen(),
	)
}

// Update handles application-level updates
func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ui.BusMsg:
		_, cmd := m.Update(msg.Msg)
		return m, tea.Batch(cmd, m.services.GetUpdates().Listen())

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.navbar.SetWidth(msg.Width)
		bodyHeight := msg.Height - lipgloss.Height(m.navbar.View())
		m.modal.SetSize(msg.Width, bodyHeight)
		m.router.SetSize(msg.Width, bodyHeight)
		return m, nil

	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case ui.RouterMsg:
		return m, m.navigate(msg.To)

	case ui.SessionChangedMsg:
		m.session = msg.State
		m.navbar.SetSession(msg.State)
		return m, m.router.Update(msg)

	case ui.ModalMsg:
		m.modal.Show(msg.Title, msg.Text, msg.Error)
		return m, nil

	case ui.ActionDoneMsg:
		if msg.Err != nil {
			m.logger.Warn("Action failed", zap.String("action", msg.Action), zap.Error(msg.Err))
			m.modal.Show("Action failed", market.UserMessage(msg.Err), true)
		}
		return m, m.router.Update(msg)
	}

	return m, m.router.Update(msg)
}

func (m *AppModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.Type == tea.KeyCtrlC {
		return tea.Quit
	}
	if m.modal.Visible() {
		m.modal.Hide()
		return nil
	}
	if m.router.Current().Capturing() {
		return m.router.Update(msg)
	}

	switch {
	case key.Matches(msg, m.keyMap.Quit):
		return tea.Quit
	case key.Matches(msg, m.keyMap.Home):
		return m.navigate(ui.RouteHome)
	case key.Matches(msg, m.keyMap.Marketplace):
		return m.navigate(ui.RouteMarketplace)
	case key.Matches(msg, m.keyMap.Logs):
		return m.navigate(ui.RouteLogs)
	case key.Matches(msg, m.keyMap.Next):
		return m.navigate(m.router.Current().Route().Next())
	case key.Matches(msg, m.keyMap.SignIn):
		return m.toggleSession()
	}
	return m.router.Update(msg)
}

func (m *AppModel) navigate(route ui.Route) tea.Cmd {
	m.navbar.SetActive(route)
	return m.router.Navigate(route)
}

// toggleSession signs out when signed in and starts a sign in otherwise.
// Presses while a sign in is in flight are ignored.
func (m *AppModel) toggleSession() tea.Cmd {
	if m.session.Loading {
		return nil
	}
	sess := m.services.GetSession()
	if m.session.SignedIn {
		sess.SignOut()
		return nil
	}

	ctx := m.services.GetContext()
	return func() tea.Msg {
		if err := sess.SignIn(ctx); err != nil {
			return ui.ModalMsg{Title: "Sign in failed", Text: market.UserMessage(err), Error: true}
		}
		return nil
	}
}

// View renders the application
func (m *AppModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	body := m.router.View()
	if m.modal.Visible() {
		body = m.modal.View()
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.navbar.View(), body)
}
