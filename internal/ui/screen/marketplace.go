package screen

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/heliox/internal/market"
	"github.com/rovshanmuradov/heliox/internal/ui"
	"github.com/rovshanmuradov/heliox/internal/ui/component"
	"github.com/rovshanmuradov/heliox/internal/ui/router"
	"github.com/rovshanmuradov/heliox/internal/ui/style"
)

const fieldQuantity = "quantity"

// MarketplaceScreen lists the share offers and lets the user buy, cancel
// and list shares.
type MarketplaceScreen struct {
	services ui.ServiceProvider
	logger   *zap.Logger
	keyMap   ui.KeyMap
	quote    market.QuoteAsset

	helpBar *component.HelpBar
	table   *component.Table
	form    *component.Form
	spinner spinner.Model

	width  int
	height int

	loaded     bool
	snapshot   *market.MarketSnapshot
	rows       []market.Row
	refreshing bool
	pending    string
}

// NewMarketplaceScreen creates the marketplace screen.
func NewMarketplaceScreen(services ui.ServiceProvider) *MarketplaceScreen {
	palette := style.DefaultPalette()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(palette.Primary)

	table := component.NewTable().
		SetEmptyText("No shares are listed").
		SetColumns([]component.TableColumn{
			{Header: "Seller", Align: lipgloss.Left},
			{Header: "Quantity", Width: 12, Align: lipgloss.Right},
			{Header: "Total cost", Width: 18, Align: lipgloss.Right},
			{Header: "Action", Width: 10, Align: lipgloss.Center},
		})

	return &MarketplaceScreen{
		services: services,
		logger:   services.GetLogger().Named("marketplace"),
		keyMap:   ui.DefaultKeyMap(),
		quote:    services.GetConfig().Quote(),
		helpBar:  component.NewHelpBar(),
		table:    table,
		form:     component.NewForm().AddField(fieldQuantity, "Shares to list", "e.g. 10"),
		spinner:  sp,
	}
}

func (m *MarketplaceScreen) Route() ui.Route { return ui.RouteMarketplace }

func (m *MarketplaceScreen) Capturing() bool { return m.form.Active() }

func (m *MarketplaceScreen) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.load())
}

func (m *MarketplaceScreen) load() tea.Cmd {
	ctx := m.services.GetContext()
	source := m.services.GetMarketSource()
	return func() tea.Msg {
		snap, err := source.Load(ctx)
		return ui.MarketLoadedMsg{Snapshot: snap, Err: err}
	}
}

// Update handles screen updates
func (m *MarketplaceScreen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case ui.MarketLoadedMsg:
		m.refreshing = false
		if msg.Err != nil {
			m.logger.Error("Failed to load marketplace", zap.Error(msg.Err))
			return m, nil
		}
		m.apply(msg.Snapshot)
		return m, nil

	case ui.SessionChangedMsg:
		if msg.State.Loading {
			return m, nil
		}
		m.form.Blur()
		m.refreshing = true
		return m, m.load()

	case ui.ReloadMsg:
		if msg.Route != ui.RouteMarketplace {
			return m, nil
		}
		m.refreshing = true
		return m, m.load()

	case ui.ActionDoneMsg:
		m.pending = ""
		if msg.Err == nil && msg.Action == market.NameList {
			m.form.Reset()
		}
		return m, nil

	case tea.KeyMsg:
		if m.form.Active() {
			return m, m.updateForm(msg)
		}
		return m, m.handleKey(msg)
	}

	return m, nil
}

// apply shows snap with row states computed for the account the snapshot
// was loaded for.
func (m *MarketplaceScreen) apply(snap *market.MarketSnapshot) {
	if snap == nil {
		snap = &market.MarketSnapshot{}
	}
	m.snapshot = snap
	m.rows = market.BuildRows(snap, snap.Account, m.quote)
	m.loaded = true

	rows := make([]component.TableRow, len(m.rows))
	for i, row := range m.rows {
		rows[i] = component.TableRow{
			Data:      []string{row.SellerLabel, row.Quantity.String(), row.TotalCostLabel, string(row.Action)},
			Highlight: row.State == market.StateOwned,
		}
	}
	m.table.SetRows(rows)
}

func (m *MarketplaceScreen) updateForm(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keyMap.Back):
		m.form.Blur()
		return nil
	case key.Matches(msg, m.keyMap.Enter):
		m.form.Blur()
		return m.list(m.form.GetValue(fieldQuantity))
	}
	_, cmd := m.form.Update(msg)
	return cmd
}

func (m *MarketplaceScreen) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keyMap.Up):
		m.table.MoveUp()
	case key.Matches(msg, m.keyMap.Down):
		m.table.MoveDown()
	case key.Matches(msg, m.keyMap.Refresh):
		m.refreshing = true
		return m.load()
	case key.Matches(msg, m.keyMap.List):
		if m.pending == "" {
			return m.form.Focus()
		}
	case key.Matches(msg, m.keyMap.Trade):
		if row, ok := m.SelectedRow(); ok && m.pending == "" {
			return m.trade(row)
		}
	}
	return nil
}

// SelectedRow returns the highlighted offer.
func (m *MarketplaceScreen) SelectedRow() (market.Row, bool) {
	i := m.table.GetSelectedRow()
	if i < 0 || i >= len(m.rows) {
		return market.Row{}, false
	}
	return m.rows[i], true
}

func (m *MarketplaceScreen) trade(row market.Row) tea.Cmd {
	ctx := m.services.GetContext()
	actions := m.services.GetActions()
	refresher := m.services.GetUpdates().Refresher(ui.RouteMarketplace)

	if row.Action == market.ActionCancel {
		m.pending = "Cancelling listing"
		return func() tea.Msg {
			return ui.ActionDoneMsg{Action: market.NameCancel, Err: actions.Cancel(ctx, row, refresher)}
		}
	}
	m.pending = "Buying " + row.Quantity.String() + " shares"
	return func() tea.Msg {
		return ui.ActionDoneMsg{Action: market.NameBuy, Err: actions.Buy(ctx, row, refresher)}
	}
}

func (m *MarketplaceScreen) list(quantity string) tea.Cmd {
	m.pending = "Listing shares"
	ctx := m.services.GetContext()
	actions := m.services.GetActions()
	refresher := m.services.GetUpdates().Refresher(ui.RouteMarketplace)
	return func() tea.Msg {
		return ui.ActionDoneMsg{Action: market.NameList, Err: actions.ListShares(ctx, quantity, refresher)}
	}
}

// View renders the marketplace
func (m *MarketplaceScreen) View() string {
	bindings := m.keyMap.ContextualHelp(ui.RouteMarketplace)
	if m.form.Active() {
		bindings = m.keyMap.EditingHelp()
	}
	help := m.helpBar.SetWidth(m.width).SetKeyBindings(bindings).View()

	if !m.loaded {
		return lipgloss.JoinVertical(lipgloss.Left, m.spinner.View()+" Loading offers...", help)
	}

	summary := []string{
		style.TitleStyle.Render("Share offers"),
		style.KeyValue("Price per share", market.PriceLabel(m.snapshot, m.quote)),
	}
	if m.snapshot.OwnListed != nil {
		summary = append(summary, style.KeyValue("Your listed", m.snapshot.OwnListed.String()+" Shares"))
	}

	formPanel := style.PanelStyle
	if m.form.Active() {
		formPanel = style.ActivePanelStyle
	}
	listing := formPanel.Render(lipgloss.JoinVertical(lipgloss.Left,
		style.SubHeaderStyle.Render("Sell shares"),
		m.form.View(),
		style.MutedStyle.Render("l to edit, enter to list"),
	))

	parts := []string{
		lipgloss.JoinVertical(lipgloss.Left, summary...),
		"",
		m.table.SetWidth(m.width - lipgloss.Width(listing) - 2).View(),
	}
	switch {
	case m.pending != "":
		parts = append(parts, m.spinner.View()+" "+m.pending+"...")
	case m.refreshing:
		parts = append(parts, m.spinner.View()+" Refreshing...")
	}

	content := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.JoinVertical(lipgloss.Left, parts...), " ", listing)
	return lipgloss.JoinVertical(lipgloss.Left, content, help)
}

// SetSize sets the screen dimensions
func (m *MarketplaceScreen) SetSize(width, height int) {
	m.width = width
	m.height = height
}
