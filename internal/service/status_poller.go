package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// SessionRefresher is satisfied by *WorkSessionService
type SessionRefresher interface {
	Refresh(ctx context.Context) (SessionSnapshot, error)
}

// StatusPoller refreshes the work session on a fixed interval so that a
// check-out made from another device still ends the local session
type StatusPoller struct {
	refresher SessionRefresher
	interval  time.Duration
	logger    *zap.Logger

	mu       sync.Mutex
	started  bool
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewStatusPoller creates a new poller
func NewStatusPoller(refresher SessionRefresher, interval time.Duration, logger *zap.Logger) *StatusPoller {
	return &StatusPoller{
		refresher: refresher,
		interval:  interval,
		logger:    logger,
		stopChan:  make(chan struct{}),
	}
}

// Start runs one refresh immediately and then one per interval
func (p *StatusPoller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return
	}
	p.started = true

	p.wg.Add(1)
	go p.run(ctx)
	p.logger.Info("Status poller started", zap.Duration("interval", p.interval))
}

// Stop stops the poller and waits for the running refresh to finish
func (p *StatusPoller) Stop() {
	p.mu.Lock()
	select {
	case <-p.stopChan:
		p.mu.Unlock()
		return
	default:
		close(p.stopChan)
	}
	p.mu.Unlock()

	p.wg.Wait()
	p.logger.Info("Status poller stopped")
}

func (p *StatusPoller) run(ctx context.Context) {
	defer p.wg.Done()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-p.stopChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.poll(ctx)
	for {
		select {
		case <-ticker.C:
			p.poll(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (p *StatusPoller) poll(ctx context.Context) {
	snap, err := p.refresher.Refresh(ctx)
	if err != nil {
		p.logger.Debug("Session refresh failed", zap.Error(err))
		return
	}
	p.logger.Debug("Session refreshed", zap.String("state", string(snap.State)))
}
