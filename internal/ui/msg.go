package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rovshanmuradov/heliox/internal/market"
	"github.com/rovshanmuradov/heliox/internal/session"
)

// RouterMsg asks the application to show another screen.
type RouterMsg struct {
	To Route
}

// SessionChangedMsg carries the session state after sign in, sign out or
// while a sign in is in flight.
type SessionChangedMsg struct {
	State session.State
}

// ModalMsg opens the blocking message box. Any key dismisses it.
type ModalMsg struct {
	Title string
	Text  string
	Error bool
}

// VehicleLoadedMsg is the result of a home page load.
type VehicleLoadedMsg struct {
	Snapshot *market.VehicleSnapshot
	Err      error
}

// MarketLoadedMsg is the result of a marketplace load.
type MarketLoadedMsg struct {
	Snapshot *market.MarketSnapshot
	Err      error
}

// ActionDoneMsg reports the outcome of a mutating action.
type ActionDoneMsg struct {
	Action string
	Err    error
}

// ReloadMsg asks the screen behind Route to fetch its data again.
type ReloadMsg struct {
	Route Route
}

// BusMsg wraps a message that arrived on the UpdateSender bus.
type BusMsg struct {
	Msg tea.Msg
}

// Route represents different screens in the application
type Route int

const (
	RouteHome Route = iota
	RouteMarketplace
	RouteLogs
)

// Routes lists the screens in navigation bar order.
var Routes = []Route{RouteHome, RouteMarketplace, RouteLogs}

// String returns the string representation of the route
func (r Route) String() string {
	switch r {
	case RouteHome:
		return "home"
	case RouteMarketplace:
		return "marketplace"
	case RouteLogs:
		return "logs"
	default:
		return "unknown"
	}
}

// Title is the label shown in the navigation bar.
func (r Route) Title() string {
	switch r {
	case RouteHome:
		return "Home"
	case RouteMarketplace:
		return "Marketplace"
	case RouteLogs:
		return "Logs"
	default:
		return "?"
	}
}

// Next returns the route after r, wrapping around.
func (r Route) Next() Route {
	for i, route := range Routes {
		if route == r {
			return Routes[(i+1)%len(Routes)]
		}
	}
	return RouteHome
}
