package component

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/rovshanmuradov/heliox/internal/logger"
	"github.com/rovshanmuradov/heliox/internal/session"
	"github.com/rovshanmuradov/heliox/internal/ui"
)

func TestSessionLabel(t *testing.T) {
	assert.Equal(t, "Loading...", SessionLabel(session.State{Loading: true}))
	assert.Equal(t, "Login with NEAR", SessionLabel(session.State{}))
	assert.Equal(t, "Logout alice.test...", SessionLabel(session.State{AccountID: "alice.testnet", SignedIn: true}))
	assert.Equal(t, "Logout bob...", SessionLabel(session.State{AccountID: "bob", SignedIn: true}))
	assert.Equal(t, "Loading...", SessionLabel(session.State{AccountID: "alice.testnet", SignedIn: true, Loading: true}))
}

func TestNavBarView(t *testing.T) {
	nav := NewNavBar().SetWidth(100).SetActive(ui.RouteMarketplace)
	view := nav.View()
	assert.Contains(t, view, "1 Home")
	assert.Contains(t, view, "2 Marketplace")
	assert.Contains(t, view, "3 Logs")
	assert.Contains(t, view, "Login with NEAR")

	nav.SetSession(session.State{AccountID: "carol.testnet", SignedIn: true})
	assert.Contains(t, nav.View(), "Logout carol.test...")
}

func TestModal(t *testing.T) {
	m := NewModal()
	assert.False(t, m.Visible())
	assert.Empty(t, m.View())

	m.Show("Action failed", "Network unavailable, try again", true)
	assert.True(t, m.Visible())
	assert.Contains(t, m.View(), "Network unavailable, try again")
	assert.Contains(t, m.View(), "press any key")

	m.Hide()
	assert.False(t, m.Visible())
}

func TestTableSelection(t *testing.T) {
	table := NewTable().SetWidth(80).SetColumns([]TableColumn{
		{Header: "Seller"},
		{Header: "Qty", Width: 8},
	})
	assert.Equal(t, -1, table.GetSelectedRow())
	assert.Contains(t, table.View(), "No rows")

	table.SetRows([]TableRow{{Data: []string{"a", "1"}}, {Data: []string{"b", "2"}, Highlight: true}})
	assert.Equal(t, 0, table.GetSelectedRow())

	table.MoveDown().MoveDown()
	assert.Equal(t, 1, table.GetSelectedRow())
	table.MoveUp().MoveUp()
	assert.Equal(t, 0, table.GetSelectedRow())

	table.MoveDown()
	table.SetRows([]TableRow{{Data: []string{"only", "1"}}})
	assert.Equal(t, 0, table.GetSelectedRow(), "selection is clamped to the new rows")

	view := table.View()
	assert.Contains(t, view, "Seller")
	assert.Contains(t, view, "only")
}

func TestRenderCellTruncates(t *testing.T) {
	cell := renderCell("a-very-long-account-name.testnet", 12, 0, NewTable().rowStyle)
	assert.Contains(t, cell, "...")
	assert.NotContains(t, cell, "testnet")
}

func TestFormFocusAndValues(t *testing.T) {
	form := NewForm().
		AddField("mileage", "Mileage", "km").
		AddField("temperature", "Temperature", "°C")
	assert.False(t, form.Active())

	form.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("9")})
	assert.Empty(t, form.GetValue("mileage"), "inactive form ignores keys")

	form.Focus()
	require.True(t, form.Active())
	form.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("120")})
	form.Update(tea.KeyMsg{Type: tea.KeyTab})
	form.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("21.5")})

	assert.Equal(t, "120", form.GetValue("mileage"))
	assert.Equal(t, "21.5", form.GetValue("temperature"))

	form.Blur()
	assert.False(t, form.Active())
	assert.Equal(t, "120", form.GetValue("mileage"))

	form.Reset()
	assert.Empty(t, form.GetValue("temperature"))
	assert.Contains(t, form.View(), "Mileage")
}

func TestHelpBar(t *testing.T) {
	bar := NewHelpBar().SetWidth(200).SetKeyBindings([]key.Binding{
		key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "hidden"), key.WithDisabled()),
	})
	view := bar.View()
	assert.Contains(t, view, "refresh")
	assert.NotContains(t, view, "hidden")

	assert.Empty(t, NewHelpBar().View())

	narrow := NewHelpBar().SetWidth(20).SetKeyBindings(ui.DefaultKeyMap().ShortHelp())
	assert.Greater(t, strings.Count(narrow.View(), "\n"), 0)
}

func TestLogViewFilters(t *testing.T) {
	buffer, err := logger.NewLogBuffer(10, filepath.Join(t.TempDir(), "spill.log"), zap.NewNop())
	require.NoError(t, err)
	defer buffer.Close()

	require.NoError(t, buffer.Add("debug", "noise", nil))
	require.NoError(t, buffer.Add("info", "Signed in", map[string]interface{}{"account": "alice.testnet"}))
	require.NoError(t, buffer.Add("error", "Action failed", nil))

	view := NewLogView(buffer, 100)
	lines := view.Lines()
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "account=alice.testnet")

	assert.Equal(t, zapcore.InfoLevel, view.CycleLevel())
	assert.Len(t, view.Lines(), 2)
	assert.Equal(t, zapcore.WarnLevel, view.CycleLevel())
	assert.Equal(t, zapcore.ErrorLevel, view.CycleLevel())
	lines = view.Lines()
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "Action failed")
	assert.Equal(t, zapcore.DebugLevel, view.CycleLevel())
}
