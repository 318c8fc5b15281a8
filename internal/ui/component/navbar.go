package component

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rovshanmuradov/heliox/internal/session"
	"github.com/rovshanmuradov/heliox/internal/ui"
	"github.com/rovshanmuradov/heliox/internal/ui/style"
)

// Session button labels.
const (
	LabelLoading = "Loading..."
	LabelLogin   = "Login with NEAR"
	accountChars = 10
)

// SessionLabel is the text of the login/logout button for state.
func SessionLabel(state session.State) string {
	switch {
	case state.Loading:
		return LabelLoading
	case state.SignedIn:
		runes := []rune(state.AccountID)
		if len(runes) > accountChars {
			runes = runes[:accountChars]
		}
		return "Logout " + string(runes) + "..."
	default:
		return LabelLogin
	}
}

// NavBar renders the screen tabs and the session button.
type NavBar struct {
	width   int
	active  ui.Route
	session session.State

	brandStyle     lipgloss.Style
	tabStyle       lipgloss.Style
	activeStyle    lipgloss.Style
	sessionStyle   lipgloss.Style
	loadingStyle   lipgloss.Style
	containerStyle lipgloss.Style
}

// NewNavBar creates a navigation bar.
func NewNavBar() *NavBar {
	palette := style.DefaultPalette()

	return &NavBar{
		brandStyle: lipgloss.NewStyle().
			Foreground(palette.Primary).
			Bold(true).
			Padding(0, 1),

		tabStyle: lipgloss.NewStyle().
			Foreground(palette.TextSecondary).
			Padding(0, 1),

		activeStyle: lipgloss.NewStyle().
			Foreground(palette.Background).
			Background(palette.Primary).
			Bold(true).
			Padding(0, 1),

		sessionStyle: lipgloss.NewStyle().
			Foreground(palette.Secondary).
			Bold(true).
			Padding(0, 1),

		loadingStyle: lipgloss.NewStyle().
			Foreground(palette.TextMuted).
			Italic(true).
			Padding(0, 1),

		containerStyle: lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(palette.TextMuted),
	}
}

func (n *NavBar) SetWidth(width int) *NavBar {
	n.width = width
	return n
}

func (n *NavBar) SetActive(route ui.Route) *NavBar {
	n.active = route
	return n
}

func (n *NavBar) SetSession(state session.State) *NavBar {
	n.session = state
	return n
}

// View renders the bar on one line, the session button right aligned.
func (n *NavBar) View() string {
	tabs := []string{n.brandStyle.Render("HelioX")}
	for i, route := range ui.Routes {
		label := string(rune('1'+i)) + " " + route.Title()
		if route == n.active {
			tabs = append(tabs, n.activeStyle.Render(label))
		} else {
			tabs = append(tabs, n.tabStyle.Render(label))
		}
	}
	left := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)

	buttonStyle := n.sessionStyle
	if n.session.Loading {
		buttonStyle = n.loadingStyle
	}
	right := buttonStyle.Render("[" + SessionLabel(n.session) + "]")

	gap := n.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return n.containerStyle.Render(left + strings.Repeat(" ", gap) + right)
}
