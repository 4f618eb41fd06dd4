package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type countingRefresher struct {
	calls atomic.Int32
}

func (c *countingRefresher) Refresh(ctx context.Context) (SessionSnapshot, error) {
	if c.calls.Add(1)%2 == 0 {
		return SessionSnapshot{}, errBoom
	}
	return SessionSnapshot{State: StateIdle}, nil
}

func TestStatusPoller_RefreshesUntilStopped(t *testing.T) {
	refresher := &countingRefresher{}
	poller := NewStatusPoller(refresher, 10*time.Millisecond, zap.NewNop())

	poller.Start(context.Background())
	poller.Start(context.Background())

	assert.Eventually(t, func() bool {
		return refresher.calls.Load() >= 3
	}, time.Second, 5*time.Millisecond)

	poller.Stop()
	stopped := refresher.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, refresher.calls.Load())

	poller.Stop()
}

func TestStatusPoller_StopsWithContext(t *testing.T) {
	refresher := &countingRefresher{}
	poller := NewStatusPoller(refresher, time.Hour, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	poller.Start(ctx)
	assert.Eventually(t, func() bool {
		return refresher.calls.Load() == 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	done := make(chan struct{})
	go func() {
		poller.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller did not stop on context cancellation")
	}
}
