package screen

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/heliox/internal/market"
	"github.com/rovshanmuradov/heliox/internal/session"
	"github.com/rovshanmuradov/heliox/internal/ui"
	"github.com/rovshanmuradov/heliox/internal/ui/component"
	"github.com/rovshanmuradov/heliox/internal/ui/router"
	"github.com/rovshanmuradov/heliox/internal/ui/style"
)

type homeState int

const (
	homeLoading homeState = iota
	homeSignedOut
	homeReady
)

const (
	fieldMileage     = "mileage"
	fieldTemperature = "temperature"
)

// HomeScreen shows the vehicle card of the signed-in account.
type HomeScreen struct {
	services ui.ServiceProvider
	logger   *zap.Logger
	keyMap   ui.KeyMap
	tokenID  string

	helpBar *component.HelpBar
	form    *component.Form
	spinner spinner.Model

	width  int
	height int

	state      homeState
	card       market.VehicleCard
	refreshing bool
	pending    string
}

// NewHomeScreen creates the home screen.
func NewHomeScreen(services ui.ServiceProvider) *HomeScreen {
	palette := style.DefaultPalette()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(palette.Primary)

	return &HomeScreen{
		services: services,
		logger:   services.GetLogger().Named("home"),
		keyMap:   ui.DefaultKeyMap(),
		tokenID:  services.GetConfig().TokenID,
		helpBar:  component.NewHelpBar(),
		form: component.NewForm().
			AddField(fieldMileage, "Mileage", "e.g. 12500").
			AddField(fieldTemperature, "Temperature", "e.g. 21.5"),
		spinner: sp,
	}
}

func (h *HomeScreen) Route() ui.Route { return ui.RouteHome }

func (h *HomeScreen) Capturing() bool { return h.form.Active() }

// Init starts the first load.
func (h *HomeScreen) Init() tea.Cmd {
	return tea.Batch(h.spinner.Tick, h.load())
}

func (h *HomeScreen) load() tea.Cmd {
	ctx := h.services.GetContext()
	source := h.services.GetVehicleSource()
	return func() tea.Msg {
		snap, err := source.Load(ctx)
		return ui.VehicleLoadedMsg{Snapshot: snap, Err: err}
	}
}

// Update handles screen updates
func (h *HomeScreen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		h.spinner, cmd = h.spinner.Update(msg)
		return h, cmd

	case ui.VehicleLoadedMsg:
		h.refreshing = false
		switch {
		case errors.Is(msg.Err, session.ErrNoAccount):
			h.state = homeSignedOut
		case msg.Err != nil:
			// The page keeps its previous state; a first load stays in
			// loading until the user refreshes.
			h.logger.Error("Failed to load vehicle", zap.Error(msg.Err))
		default:
			h.card = market.NewVehicleCard(h.tokenID, msg.Snapshot)
			h.state = homeReady
		}
		return h, nil

	case ui.SessionChangedMsg:
		if msg.State.Loading {
			return h, nil
		}
		h.state = homeLoading
		h.form.Blur()
		return h, h.load()

	case ui.ReloadMsg:
		if msg.Route != ui.RouteHome {
			return h, nil
		}
		h.refreshing = true
		return h, h.load()

	case ui.ActionDoneMsg:
		h.pending = ""
		if msg.Err == nil && msg.Action == market.NameSubmitData {
			h.form.Reset()
		}
		return h, nil

	case tea.KeyMsg:
		if h.form.Active() {
			return h, h.updateForm(msg)
		}
		return h, h.handleKey(msg)
	}

	return h, nil
}

func (h *HomeScreen) updateForm(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, h.keyMap.Back):
		h.form.Blur()
		return nil
	case key.Matches(msg, h.keyMap.Enter):
		h.form.Blur()
		return h.submitData(h.form.GetValue(fieldMileage), h.form.GetValue(fieldTemperature))
	}
	_, cmd := h.form.Update(msg)
	return cmd
}

func (h *HomeScreen) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, h.keyMap.Refresh):
		h.refreshing = true
		return h.load()
	case key.Matches(msg, h.keyMap.EditData):
		if h.state == homeReady && h.pending == "" {
			return h.form.Focus()
		}
	case key.Matches(msg, h.keyMap.Claim):
		if h.state == homeReady && h.card.Claimable && h.pending == "" {
			return h.claim()
		}
	}
	return nil
}

func (h *HomeScreen) submitData(mileage, temperature string) tea.Cmd {
	h.pending = "Submitting vehicle data"
	ctx := h.services.GetContext()
	actions := h.services.GetActions()
	refresher := h.services.GetUpdates().Refresher(ui.RouteHome)
	return func() tea.Msg {
		err := actions.SubmitVehicleData(ctx, mileage, temperature, refresher)
		return ui.ActionDoneMsg{Action: market.NameSubmitData, Err: err}
	}
}

func (h *HomeScreen) claim() tea.Cmd {
	h.pending = "Claiming vehicle"
	ctx := h.services.GetContext()
	actions := h.services.GetActions()
	refresher := h.services.GetUpdates().Refresher(ui.RouteHome)
	tokenID := h.tokenID
	return func() tea.Msg {
		err := actions.ClaimVehicle(ctx, tokenID, refresher)
		return ui.ActionDoneMsg{Action: market.NameClaim, Err: err}
	}
}

// View renders the home screen
func (h *HomeScreen) View() string {
	var body string
	switch h.state {
	case homeLoading:
		body = h.spinner.View() + " Loading vehicle..."
	case homeSignedOut:
		body = lipgloss.JoinVertical(lipgloss.Left,
			style.SubHeaderStyle.Render("Welcome to HelioX"),
			"",
			"Own a share of a real vehicle and trade it on the marketplace.",
			style.MutedStyle.Render("Press s to login with NEAR."),
		)
	case homeReady:
		body = h.renderCard()
	}

	bindings := h.keyMap.ContextualHelp(ui.RouteHome)
	if h.form.Active() {
		bindings = h.keyMap.EditingHelp()
	}
	help := h.helpBar.SetWidth(h.width).SetKeyBindings(bindings).View()

	return lipgloss.JoinVertical(lipgloss.Left, body, help)
}

func (h *HomeScreen) renderCard() string {
	c := h.card

	status := style.SuccessStyle.Render(c.StatusLabel)
	if c.InMaintenance {
		status = style.WarningStyle.Render(c.StatusLabel)
	}

	lines := []string{
		style.TitleStyle.Render(c.Title),
	}
	if strings.TrimSpace(c.Description) != "" {
		lines = append(lines, style.MutedStyle.Render(c.Description))
	}
	lines = append(lines,
		"",
		style.KeyValue("Token", c.TokenID),
		style.KeyValue("Status", status),
		style.KeyValue("Your shares", c.BalanceLabel),
		style.KeyValue("Ownership", c.PercentLabel),
	)
	if c.DocumentURL != "" {
		lines = append(lines, style.KeyValue("Documents", c.DocumentURL))
	}
	if c.Claimable {
		lines = append(lines, "", style.SuccessStyle.Render("You own every share. Press c to claim the vehicle."))
	}

	card := style.PanelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))

	formPanel := style.PanelStyle
	if h.form.Active() {
		formPanel = style.ActivePanelStyle
	}
	form := formPanel.Render(lipgloss.JoinVertical(lipgloss.Left,
		style.SubHeaderStyle.Render("Vehicle data"),
		h.form.View(),
		style.MutedStyle.Render("e to edit, enter to submit"),
	))

	var activity string
	switch {
	case h.pending != "":
		activity = h.spinner.View() + " " + h.pending + "..."
	case h.refreshing:
		activity = h.spinner.View() + " Refreshing..."
	}

	content := lipgloss.JoinHorizontal(lipgloss.Top, card, " ", form)
	if activity != "" {
		content = lipgloss.JoinVertical(lipgloss.Left, content, activity)
	}
	return content
}

// SetSize sets the screen dimensions
func (h *HomeScreen) SetSize(width, height int) {
	h.width = width
	h.height = height
}
