package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines keyboard shortcuts for the application
type KeyMap struct {
	// Global
	Quit   key.Binding
	Back   key.Binding
	SignIn key.Binding
	Next   key.Binding

	// Screens
	Home        key.Binding
	Marketplace key.Binding
	Logs        key.Binding

	// Navigation
	Up    key.Binding
	Down  key.Binding
	Enter key.Binding
	Tab   key.Binding

	// Actions
	Refresh  key.Binding
	EditData key.Binding
	Claim    key.Binding
	List     key.Binding
	Trade    key.Binding

	// Logs
	Filter key.Binding
	Top    key.Binding
	Bottom key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
		SignIn: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "login/logout"),
		),
		Next: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next screen"),
		),

		Home: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "home"),
		),
		Marketplace: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "marketplace"),
		),
		Logs: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "logs"),
		),

		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "submit"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab", "shift+tab"),
			key.WithHelp("tab", "next field"),
		),

		Refresh: key.NewBinding(
			key.WithKeys("r", "f5"),
			key.WithHelp("r", "refresh"),
		),
		EditData: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "submit vehicle data"),
		),
		Claim: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "claim vehicle"),
		),
		List: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "list shares"),
		),
		Trade: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "buy/cancel"),
		),

		Filter: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "level filter"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "follow"),
		),
	}
}

// ShortHelp returns the bindings available everywhere.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Home, k.Marketplace, k.Logs, k.SignIn, k.Quit}
}

// ContextualHelp returns help text based on the current route
func (k KeyMap) ContextualHelp(route Route) []key.Binding {
	switch route {
	case RouteHome:
		return append([]key.Binding{k.Refresh, k.EditData, k.Claim}, k.ShortHelp()...)
	case RouteMarketplace:
		return append([]key.Binding{k.Up, k.Down, k.Trade, k.List, k.Refresh}, k.ShortHelp()...)
	case RouteLogs:
		return append([]key.Binding{k.Up, k.Down, k.Filter, k.Top, k.Bottom}, k.ShortHelp()...)
	default:
		return k.ShortHelp()
	}
}

// EditingHelp returns the bindings shown while a text input has focus.
func (k KeyMap) EditingHelp() []key.Binding {
	return []key.Binding{k.Enter, k.Tab, k.Back}
}
