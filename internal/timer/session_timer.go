package timer

import (
	"context"
	"fmt"
	"time"

	"adeelasgher847/attendance-agent/internal/clock"
)

// DefaultMaxInitialElapsed caps the elapsed value taken from the wall clock
// when a session is picked up
const DefaultMaxInitialElapsed = 18 * time.Hour

// TickInterval is how often a running timer refreshes its display
const TickInterval = time.Second

// InitialElapsed returns now-start floored to whole seconds, or zero when the
// result is negative, start is unset, or it exceeds ceiling. A device clock
// that is days off therefore shows 0 instead of a nonsensical value.
func InitialElapsed(start, now time.Time, ceiling time.Duration) time.Duration {
	if start.IsZero() || now.IsZero() {
		return 0
	}

	// Sub saturates instead of overflowing, so extreme values land above the ceiling
	d := now.Sub(start)
	if d < 0 || d > ceiling {
		return 0
	}
	return d.Truncate(time.Second)
}

// SessionTimer computes the elapsed time of an active work session. The wall
// clock is read once when the timer is created; after that only the
// monotonic clock advances the value, so changing the system date mid-session
// cannot make the display jump or freeze.
type SessionTimer struct {
	clock     clock.Clock
	startTime time.Time
	initial   time.Duration
	monoStart time.Duration
}

// New starts a timer for a session that began at start (server time)
func New(start time.Time, clk clock.Clock, ceiling time.Duration) *SessionTimer {
	if ceiling <= 0 {
		ceiling = DefaultMaxInitialElapsed
	}
	return &SessionTimer{
		clock:     clk,
		startTime: start,
		initial:   InitialElapsed(start, clk.Now(), ceiling),
		monoStart: clk.Monotonic(),
	}
}

// StartTime returns the server-issued session start
func (t *SessionTimer) StartTime() time.Time {
	return t.startTime
}

// Initial returns the clamped wall-clock snapshot taken at creation
func (t *SessionTimer) Initial() time.Duration {
	return t.initial
}

// Elapsed returns initial + floor(monotonic now - monotonic at creation)
func (t *SessionTimer) Elapsed() time.Duration {
	delta := t.clock.Monotonic() - t.monoStart
	if delta < 0 {
		delta = 0
	}
	return t.initial + delta.Truncate(time.Second)
}

// Run calls fn with the elapsed value immediately and then once per second
// until ctx is done
func (t *SessionTimer) Run(ctx context.Context, fn func(time.Duration)) {
	t.RunEvery(ctx, TickInterval, fn)
}

// RunEvery is Run with a custom cadence
func (t *SessionTimer) RunEvery(ctx context.Context, interval time.Duration, fn func(time.Duration)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	fn(t.Elapsed())
	for {
		select {
		case <-ticker.C:
			fn(t.Elapsed())
		case <-ctx.Done():
			return
		}
	}
}

// Format renders d as "00h 30m 00s"
func Format(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	return fmt.Sprintf("%02dh %02dm %02ds", h, m, s)
}
