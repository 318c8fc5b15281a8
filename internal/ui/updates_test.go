package ui

import (
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/heliox/internal/session"
)

func TestUpdateSenderNonBlocking(t *testing.T) {
	msgChan := make(chan tea.Msg, 10)
	sender := NewUpdateSender(msgChan, zap.NewNop())
	defer sender.Close()

	for i := 0; i < 10; i++ {
		sender.SendUpdate(ReloadMsg{Route: RouteHome})
	}

	start := time.Now()
	for i := 0; i < 100; i++ {
		sender.SendUpdate(ReloadMsg{Route: RouteHome})
	}
	assert.Less(t, time.Since(start), 100*time.Millisecond, "SendUpdate must not block")

	sent, dropped := sender.GetStats()
	assert.Equal(t, uint64(10), sent)
	assert.Equal(t, uint64(100), dropped)
}

func TestUpdateSenderConcurrent(t *testing.T) {
	msgChan := make(chan tea.Msg, 100)
	sender := NewUpdateSender(msgChan, zap.NewNop())
	defer sender.Close()

	var wg sync.WaitGroup
	numGoroutines := 10
	messagesPerGoroutine := 100

	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < messagesPerGoroutine; j++ {
				sender.SendUpdate(ModalMsg{Text: "test"})
			}
		}()
	}
	wg.Wait()

	sent, dropped := sender.GetStats()
	assert.Equal(t, uint64(numGoroutines*messagesPerGoroutine), sent+dropped)
	assert.Equal(t, uint64(100), sent)
}

func TestUpdateSenderListen(t *testing.T) {
	sender := NewUpdateSender(make(chan tea.Msg, 4), zap.NewNop())
	defer sender.Close()

	sender.SessionListener()(session.State{AccountID: "alice.testnet", SignedIn: true})
	sender.Refresher(RouteMarketplace).Refresh()

	msg := sender.Listen()()
	require.IsType(t, BusMsg{}, msg)
	changed, ok := msg.(BusMsg).Msg.(SessionChangedMsg)
	require.True(t, ok)
	assert.Equal(t, "alice.testnet", changed.State.AccountID)

	assert.Equal(t, BusMsg{Msg: ReloadMsg{Route: RouteMarketplace}}, sender.Listen()())
}

func TestUpdateSenderCloseTwice(t *testing.T) {
	sender := NewUpdateSender(make(chan tea.Msg, 1), zap.NewNop())
	sender.Close()
	assert.NotPanics(t, sender.Close)
}

func TestRouteNavigation(t *testing.T) {
	assert.Equal(t, RouteMarketplace, RouteHome.Next())
	assert.Equal(t, RouteLogs, RouteMarketplace.Next())
	assert.Equal(t, RouteHome, RouteLogs.Next())
	assert.Equal(t, "Marketplace", RouteMarketplace.Title())
	assert.Equal(t, "logs", RouteLogs.String())
}
