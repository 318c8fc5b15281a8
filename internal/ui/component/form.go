package component

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rovshanmuradov/heliox/internal/ui/style"
)

// FormField is one labelled text input.
type FormField struct {
	Name      string
	Label     string
	textInput textinput.Model
}

// Form is a small stack of text inputs. Values are validated by whoever
// consumes them, not by the form.
type Form struct {
	fields     []FormField
	focusIndex int
	active     bool

	labelStyle   lipgloss.Style
	inputStyle   lipgloss.Style
	focusedStyle lipgloss.Style
}

// NewForm creates a new form component
func NewForm() *Form {
	palette := style.DefaultPalette()

	return &Form{
		labelStyle: lipgloss.NewStyle().
			Foreground(palette.Text).
			Bold(true),

		inputStyle: lipgloss.NewStyle().
			Foreground(palette.Text).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.TextMuted),

		focusedStyle: lipgloss.NewStyle().
			Foreground(palette.Text).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.Primary),
	}
}

// AddField adds a field to the form
func (f *Form) AddField(name, label, placeholder string) *Form {
	ti := textinput.New()
	ti.Width = 24
	ti.Placeholder = placeholder
	ti.CharLimit = 40

	f.fields = append(f.fields, FormField{
		Name:      name,
		Label:     label,
		textInput: ti,
	})
	return f
}

// Focus activates the form with the cursor in the first field.
func (f *Form) Focus() tea.Cmd {
	if len(f.fields) == 0 {
		return nil
	}
	f.active = true
	f.setFocus(0)
	return textinput.Blink
}

// Blur deactivates the form, keeping the typed values.
func (f *Form) Blur() {
	f.active = false
	for i := range f.fields {
		f.fields[i].textInput.Blur()
	}
}

// Active reports whether the form has keyboard focus.
func (f *Form) Active() bool {
	return f.active
}

// Update handles form input and updates
func (f *Form) Update(msg tea.Msg) (*Form, tea.Cmd) {
	if !f.active || len(f.fields) == 0 {
		return f, nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "tab", "down":
			f.setFocus((f.focusIndex + 1) % len(f.fields))
			return f, nil
		case "shift+tab", "up":
			f.setFocus((f.focusIndex - 1 + len(f.fields)) % len(f.fields))
			return f, nil
		}
	}

	var cmd tea.Cmd
	f.fields[f.focusIndex].textInput, cmd = f.fields[f.focusIndex].textInput.Update(msg)
	return f, cmd
}

// View renders the form
func (f *Form) View() string {
	var content strings.Builder

	for i, field := range f.fields {
		content.WriteString(f.labelStyle.Render(field.Label))
		content.WriteString("\n")

		fieldStyle := f.inputStyle
		if f.active && i == f.focusIndex {
			fieldStyle = f.focusedStyle
		}
		content.WriteString(fieldStyle.Render(field.textInput.View()))
		if i < len(f.fields)-1 {
			content.WriteString("\n")
		}
	}

	return content.String()
}

func (f *Form) setFocus(index int) {
	f.fields[f.focusIndex].textInput.Blur()
	f.focusIndex = index
	f.fields[f.focusIndex].textInput.Focus()
}

// GetValue returns the value of a specific field
func (f *Form) GetValue(name string) string {
	for _, field := range f.fields {
		if field.Name == name {
			return field.textInput.Value()
		}
	}
	return ""
}

// SetValue replaces the value of a field.
func (f *Form) SetValue(name, value string) *Form {
	for i := range f.fields {
		if f.fields[i].Name == name {
			f.fields[i].textInput.SetValue(value)
		}
	}
	return f
}

// Reset clears all form fields
func (f *Form) Reset() *Form {
	for i := range f.fields {
		f.fields[i].textInput.SetValue("")
	}
	return f
}
