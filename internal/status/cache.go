// Package status caches whether the current user has checked in today.
package status

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"adeelasgher847/attendance-agent/internal/clock"
	"adeelasgher847/attendance-agent/internal/models"

	"go.uber.org/zap"
)

// ErrStatusRefreshFailed marks a Status produced from a failed query. It is
// recorded on the Status and logged, never returned from Get.
var ErrStatusRefreshFailed = errors.New("attendance status refresh failed")

// Source is the remote today-summary query
type Source interface {
	TodaySummary(ctx context.Context, userID string) (models.TodaySummary, error)
}

// Status is one cache entry
type Status struct {
	HasCheckedInToday  bool                `json:"hasCheckedInToday"`
	HasCheckedOutToday bool                `json:"hasCheckedOutToday"`
	Summary            models.TodaySummary `json:"summary"`
	FetchedAt          time.Time           `json:"fetchedAt"`
	Err                error               `json:"-"`

	fetchedAtMono time.Duration
}

// Failed reports whether the entry is the conservative fallback for a failed query
func (s Status) Failed() bool {
	return s.Err != nil
}

type call struct {
	seq    uint64
	done   chan struct{}
	result Status
}

// Cache holds the today-status with a staleness window. Concurrent misses
// share one in-flight query; a forced read always issues its own.
type Cache struct {
	source Source
	userID string
	policy Policy
	clk    clock.Clock
	logger *zap.Logger

	mu       sync.Mutex
	entry    *Status
	entrySeq uint64
	seq      uint64
	minSeq   uint64
	inflight *call
}

// NewCache creates a status cache. A nil policy uses DefaultPolicy.
func NewCache(source Source, userID string, policy Policy, clk clock.Clock, logger *zap.Logger) *Cache {
	if policy == nil {
		policy = DefaultPolicy()
	}
	return &Cache{
		source: source,
		userID: userID,
		policy: policy,
		clk:    clk,
		logger: logger,
	}
}

// Policy returns the cache's staleness policy
func (c *Cache) Policy() Policy {
	return c.policy
}

// Get returns the cached status when it is younger than the policy window and
// force is false. Otherwise it queries the source. A failed query yields a
// not-checked-in status.
func (c *Cache) Get(ctx context.Context, force bool) Status {
	c.mu.Lock()
	if !force {
		if c.entry != nil && c.ageLocked() < c.policy.MaxAge() {
			s := *c.entry
			c.mu.Unlock()
			return s
		}
		if c.inflight != nil {
			inflight := c.inflight
			c.mu.Unlock()
			return c.wait(ctx, inflight)
		}
	}

	c.seq++
	cl := &call{seq: c.seq, done: make(chan struct{})}
	c.inflight = cl
	c.mu.Unlock()

	cl.result = c.fetch(ctx)

	c.mu.Lock()
	if c.inflight == cl {
		c.inflight = nil
	}
	// Results of queries started before the last invalidation, or older than
	// the stored entry, are handed to their waiters but not stored.
	if ctx.Err() == nil && cl.seq >= c.minSeq && cl.seq > c.entrySeq {
		s := cl.result
		c.entry = &s
		c.entrySeq = cl.seq
	}
	c.mu.Unlock()
	close(cl.done)

	return cl.result
}

func (c *Cache) wait(ctx context.Context, cl *call) Status {
	select {
	case <-cl.done:
		return cl.result
	case <-ctx.Done():
		return c.failed(fmt.Errorf("%w: %v", ErrStatusRefreshFailed, ctx.Err()))
	}
}

func (c *Cache) fetch(ctx context.Context) Status {
	summary, err := c.source.TodaySummary(ctx, c.userID)
	if err != nil {
		c.logger.Warn("Attendance status refresh failed, treating as not checked in",
			zap.Error(err),
			zap.String("user_id", c.userID),
		)
		return c.failed(fmt.Errorf("%w: %v", ErrStatusRefreshFailed, err))
	}

	s := Status{
		HasCheckedInToday:  summary.CheckedIn(),
		HasCheckedOutToday: summary.CheckedOut(),
		Summary:            summary,
		FetchedAt:          c.clk.Now(),
		fetchedAtMono:      c.clk.Monotonic(),
	}
	c.logger.Debug("Attendance status refreshed",
		zap.Bool("checked_in", s.HasCheckedInToday),
		zap.Bool("checked_out", s.HasCheckedOutToday),
	)
	return s
}

func (c *Cache) failed(err error) Status {
	return Status{
		FetchedAt:     c.clk.Now(),
		Err:           err,
		fetchedAtMono: c.clk.Monotonic(),
	}
}

// Peek returns the current entry without querying
func (c *Cache) Peek() (Status, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entry == nil {
		return Status{}, false
	}
	return *c.entry, true
}

// Age returns how long ago the current entry was fetched
func (c *Cache) Age() (time.Duration, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entry == nil {
		return 0, false
	}
	return c.ageLocked(), true
}

func (c *Cache) ageLocked() time.Duration {
	return c.clk.Monotonic() - c.entry.fetchedAtMono
}

// Invalidate drops the current entry. Queries already in flight still answer
// their callers but no longer populate the cache.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entry = nil
	c.inflight = nil
	c.minSeq = c.seq + 1
}

// RefreshIfOlder forces a refresh when there is no entry or the entry is
// older than maxAge. It reports whether a query was issued.
func (c *Cache) RefreshIfOlder(ctx context.Context, maxAge time.Duration) (Status, bool) {
	if age, ok := c.Age(); ok && age <= maxAge {
		s, _ := c.Peek()
		return s, false
	}
	return c.Get(ctx, true), true
}
