package ui

import (
	"sync"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/heliox/internal/market"
	"github.com/rovshanmuradov/heliox/internal/session"
)

// DefaultBusSize is the capacity of the application message bus.
const DefaultBusSize = 256

// UpdateSender delivers messages from background goroutines to the UI
// without ever blocking the sender.
type UpdateSender struct {
	msgChan        chan tea.Msg
	droppedUpdates uint64
	sentUpdates    uint64
	logger         *zap.Logger
	statsInterval  time.Duration
	stopStats      chan struct{}
	stopOnce       sync.Once
}

// NewUpdateSender creates a new non-blocking update sender
func NewUpdateSender(msgChan chan tea.Msg, logger *zap.Logger) *UpdateSender {
	us := &UpdateSender{
		msgChan:       msgChan,
		logger:        logger.Named("ui-bus"),
		statsInterval: 30 * time.Second,
		stopStats:     make(chan struct{}),
	}

	go us.logStats()

	return us
}

// SendUpdate sends a message to UI without blocking
func (us *UpdateSender) SendUpdate(msg tea.Msg) {
	select {
	case us.msgChan <- msg:
		atomic.AddUint64(&us.sentUpdates, 1)
	default:
		atomic.AddUint64(&us.droppedUpdates, 1)
	}
}

// Listen returns a command that waits for the next bus message and
// delivers it wrapped in a BusMsg. The receiver must issue it again after
// every BusMsg.
func (us *UpdateSender) Listen() tea.Cmd {
	return func() tea.Msg {
		return BusMsg{Msg: <-us.msgChan}
	}
}

// SessionListener publishes session changes on the bus.
func (us *UpdateSender) SessionListener() session.Listener {
	return func(state session.State) {
		us.SendUpdate(SessionChangedMsg{State: state})
	}
}

// Refresher returns the refresh capability handed to market actions: it
// asks route's screen to reload.
func (us *UpdateSender) Refresher(route Route) market.Refresher {
	return market.RefreshFunc(func() {
		us.SendUpdate(ReloadMsg{Route: route})
	})
}

// GetStats returns current statistics
func (us *UpdateSender) GetStats() (sent, dropped uint64) {
	sent = atomic.LoadUint64(&us.sentUpdates)
	dropped = atomic.LoadUint64(&us.droppedUpdates)
	return sent, dropped
}

func (us *UpdateSender) logStats() {
	ticker := time.NewTicker(us.statsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			sent, dropped := us.GetStats()
			if dropped > 0 {
				us.logger.Warn("UI update statistics",
					zap.Uint64("sent", sent),
					zap.Uint64("dropped", dropped),
					zap.Float64("drop_rate", float64(dropped)/float64(sent+dropped)*100))
			}
		case <-us.stopStats:
			return
		}
	}
}

// Close stops the update sender
func (us *UpdateSender) Close() {
	us.stopOnce.Do(func() { close(us.stopStats) })
}
