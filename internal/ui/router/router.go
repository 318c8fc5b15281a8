package router

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rovshanmuradov/heliox/internal/ui"
)

// Screen represents a screen that can be navigated to
type Screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Screen, tea.Cmd)
	View() string
	SetSize(width, height int)
	Route() ui.Route
	// Capturing reports whether key presses belong to a focused input, in
	// which case global shortcuts are suspended.
	Capturing() bool
}

// Factory builds the screen for a route.
type Factory func(route ui.Route) Screen

// Router shows one screen at a time. Navigating always mounts a fresh
// screen, so every visit loads its data again.
type Router struct {
	current Screen
	factory Factory
	width   int
	height  int
}

// New creates a router showing the screen for initial.
func New(factory Factory, initial ui.Route) *Router {
	return &Router{
		current: factory(initial),
		factory: factory,
	}
}

// Init initializes the router
func (r *Router) Init() tea.Cmd {
	return r.current.Init()
}

// Update processes messages and updates the current screen
func (r *Router) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case ui.RouterMsg:
		return r.Navigate(msg.To)

	case tea.WindowSizeMsg:
		r.SetSize(msg.Width, msg.Height)
		return nil
	}

	updated, cmd := r.current.Update(msg)
	r.current = updated
	return cmd
}

// View renders the current screen
func (r *Router) View() string {
	return r.current.View()
}

// SetSize sets the size for the router and current screen
func (r *Router) SetSize(width, height int) {
	r.width = width
	r.height = height
	r.current.SetSize(width, height)
}

// Navigate replaces the current screen with a fresh one for route.
func (r *Router) Navigate(route ui.Route) tea.Cmd {
	screen := r.factory(route)
	screen.SetSize(r.width, r.height)
	r.current = screen
	return screen.Init()
}

// Current returns the current screen
func (r *Router) Current() Screen {
	return r.current
}
