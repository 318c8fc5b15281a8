package component

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/rovshanmuradov/heliox/internal/ui/style"
)

// Modal is a blocking message box. The owner decides when it closes.
type Modal struct {
	title   string
	text    string
	isError bool
	visible bool
	width   int
	height  int

	boxStyle   lipgloss.Style
	errorBox   lipgloss.Style
	titleStyle lipgloss.Style
	errorTitle lipgloss.Style
	textStyle  lipgloss.Style
	hintStyle  lipgloss.Style
}

// NewModal creates a hidden modal.
func NewModal() *Modal {
	palette := style.DefaultPalette()

	return &Modal{
		boxStyle: lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(palette.Primary).
			Padding(1, 3),

		errorBox: lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(palette.Error).
			Padding(1, 3),

		titleStyle: lipgloss.NewStyle().
			Foreground(palette.Primary).
			Bold(true),

		errorTitle: lipgloss.NewStyle().
			Foreground(palette.Error).
			Bold(true),

		textStyle: lipgloss.NewStyle().
			Foreground(palette.Text).
			Width(48).
			MarginTop(1),

		hintStyle: lipgloss.NewStyle().
			Foreground(palette.TextMuted).
			Italic(true).
			MarginTop(1),
	}
}

// Show opens the modal, replacing whatever it showed before.
func (m *Modal) Show(title, text string, isError bool) {
	m.title = title
	m.text = text
	m.isError = isError
	m.visible = true
}

// Hide closes the modal.
func (m *Modal) Hide() {
	m.visible = false
}

func (m *Modal) Visible() bool {
	return m.visible
}

func (m *Modal) Text() string {
	return m.text
}

func (m *Modal) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// View renders the box centered in the available space.
func (m *Modal) View() string {
	if !m.visible {
		return ""
	}

	box, title := m.boxStyle, m.titleStyle
	if m.isError {
		box, title = m.errorBox, m.errorTitle
	}
	content := lipgloss.JoinVertical(lipgloss.Left,
		title.Render(m.title),
		m.textStyle.Render(m.text),
		m.hintStyle.Render("press any key to close"),
	)
	rendered := box.Render(content)

	if m.width == 0 || m.height == 0 {
		return rendered
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, rendered)
}
