package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestShutdownReverseOrder(t *testing.T) {
	sh := NewShutdownHandler(zap.NewNop(), time.Second)

	var mu sync.Mutex
	var order []string
	for _, name := range []string{"first", "second", "third"} {
		name := name
		sh.AddFunc(name, func() error {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, name)
			return nil
		})
	}

	require.NoError(t, sh.Shutdown(context.Background()))
	assert.Equal(t, []string{"third", "second", "first"}, order)

	// services are closed once
	require.NoError(t, sh.Shutdown(context.Background()))
	assert.Len(t, order, 3)
}

func TestShutdownCollectsErrors(t *testing.T) {
	sh := NewShutdownHandler(zap.NewNop(), time.Second)
	boom := errors.New("boom")
	closed := false

	sh.AddFunc("ok", func() error { closed = true; return nil })
	sh.AddFunc("broken", func() error { return boom })

	err := sh.Shutdown(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "broken")
	assert.True(t, closed)
}

func TestShutdownTimeout(t *testing.T) {
	sh := NewShutdownHandler(zap.NewNop(), 50*time.Millisecond)
	release := make(chan struct{})
	defer close(release)

	sh.AddFunc("stuck", func() error {
		<-release
		return nil
	})

	err := sh.Shutdown(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stuck: shutdown timeout")
}
