package ui

import (
	"io"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockModel struct {
	panicOnUpdate bool
	panicOnView   bool
	updateCount   int32
	viewCount     int32
}

type tickMsg struct{}

func (m *mockModel) Init() tea.Cmd {
	return func() tea.Msg { return tickMsg{} }
}

func (m *mockModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	n := atomic.AddInt32(&m.updateCount, 1)
	if m.panicOnUpdate && n > 2 {
		panic("update panic test")
	}
	if n > 5 {
		return m, tea.Quit
	}
	return m, func() tea.Msg { return tickMsg{} }
}

func (m *mockModel) View() string {
	n := atomic.AddInt32(&m.viewCount, 1)
	if m.panicOnView && n > 3 {
		panic("view panic test")
	}
	return "Test UI"
}

func headless() []tea.ProgramOption {
	return []tea.ProgramOption{
		tea.WithInput(nil),
		tea.WithOutput(io.Discard),
		tea.WithoutSignalHandler(),
		tea.WithoutCatchPanics(),
	}
}

func runWithTimeout(t *testing.T, handler *RecoveryHandler) error {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- handler.RunWithRecovery() }()

	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		handler.Stop()
		t.Fatal("UI did not finish")
		return nil
	}
}

func TestRecoveryHandlerNormalExit(t *testing.T) {
	handler := NewRecoveryHandler(zap.NewNop(), func() (tea.Model, []tea.ProgramOption) {
		return &mockModel{}, headless()
	})
	handler.restartDelay = time.Millisecond

	require.NoError(t, runWithTimeout(t, handler))
	assert.Equal(t, 0, handler.GetRestartCount())
}

func TestRecoveryHandlerRestartsAfterPanic(t *testing.T) {
	var runs int32
	handler := NewRecoveryHandler(zap.NewNop(), func() (tea.Model, []tea.ProgramOption) {
		first := atomic.AddInt32(&runs, 1) == 1
		return &mockModel{panicOnUpdate: first}, headless()
	})
	handler.restartDelay = time.Millisecond

	require.NoError(t, runWithTimeout(t, handler))
	assert.Equal(t, 1, handler.GetRestartCount())
	assert.Equal(t, int32(2), atomic.LoadInt32(&runs))
}

func TestRecoveryHandlerGivesUp(t *testing.T) {
	handler := NewRecoveryHandler(zap.NewNop(), func() (tea.Model, []tea.ProgramOption) {
		return &mockModel{panicOnUpdate: true}, headless()
	})
	handler.restartDelay = time.Millisecond
	handler.maxRestarts = 2

	err := runWithTimeout(t, handler)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "crashed too many times")
	assert.Equal(t, 3, handler.GetRestartCount())
}

func TestSafeUIWrapper(t *testing.T) {
	model := &mockModel{panicOnView: true, panicOnUpdate: true}
	wrapper := NewSafeUIWrapper(model, zap.NewNop())

	assert.NotNil(t, wrapper.Init())

	next, cmd := wrapper.Update(tickMsg{})
	assert.Same(t, wrapper, next)
	assert.NotNil(t, cmd)

	model.updateCount = 10
	next, cmd = wrapper.Update(tickMsg{})
	assert.Same(t, wrapper, next)
	assert.Nil(t, cmd)

	assert.Equal(t, "Test UI", wrapper.View())
	model.viewCount = 10
	assert.Equal(t, "UI Error: View crashed. Press Ctrl+C to exit.", wrapper.View())
}
