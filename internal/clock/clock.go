// Package clock separates wall-clock time, used for timestamps that cross the
// network, from monotonic readings, used for every elapsed-time computation.
package clock

import (
	"sync"
	"time"
)

// Clock provides both time sources
type Clock interface {
	// Now returns the wall-clock time
	Now() time.Time
	// Monotonic returns a reading that only moves forward; only differences
	// between readings are meaningful
	Monotonic() time.Duration
}

// MonotonicSource is satisfied by platform.Platform
type MonotonicSource interface {
	Monotonic() time.Duration
}

type system struct {
	mono MonotonicSource
}

// System returns a Clock backed by time.Now and the given monotonic source.
// A nil source uses the Go runtime's monotonic clock.
func System(mono MonotonicSource) Clock {
	if mono == nil {
		mono = runtimeSource{start: time.Now()}
	}
	return &system{mono: mono}
}

func (s *system) Now() time.Time {
	return time.Now()
}

func (s *system) Monotonic() time.Duration {
	return s.mono.Monotonic()
}

type runtimeSource struct {
	start time.Time
}

func (r runtimeSource) Monotonic() time.Duration {
	return time.Since(r.start)
}

// Manual is a Clock whose wall and monotonic readings are moved by hand. The
// two can be moved independently to simulate system clock adjustments.
type Manual struct {
	mu   sync.Mutex
	wall time.Time
	mono time.Duration
}

// NewManual returns a Manual clock with the wall clock set to now
func NewManual(now time.Time) *Manual {
	return &Manual{wall: now}
}

func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.wall
}

func (m *Manual) Monotonic() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mono
}

// Advance moves both clocks forward by d
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wall = m.wall.Add(d)
	m.mono += d
}

// SetWall changes only the wall clock, like a user editing the system date
func (m *Manual) SetWall(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wall = t
}
