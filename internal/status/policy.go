package status

import "time"

const (
	DefaultTTL              = 10 * time.Second
	DefaultVisibilityMaxAge = 30 * time.Second
)

// Policy decides how long a cached status may be reused. A push or long-poll
// transport can satisfy it as well as the focus-driven refresh the agent uses.
type Policy interface {
	// MaxAge is the coalescing window for non-forced reads
	MaxAge() time.Duration
	// VisibilityMaxAge is the age past which regaining visibility forces a refresh
	VisibilityMaxAge() time.Duration
}

// FixedPolicy is a Policy with constant durations
type FixedPolicy struct {
	TTL           time.Duration
	VisibilityAge time.Duration
}

// DefaultPolicy returns the 10s window and 30s visibility age
func DefaultPolicy() FixedPolicy {
	return FixedPolicy{TTL: DefaultTTL, VisibilityAge: DefaultVisibilityMaxAge}
}

func (p FixedPolicy) MaxAge() time.Duration {
	if p.TTL <= 0 {
		return DefaultTTL
	}
	return p.TTL
}

func (p FixedPolicy) VisibilityMaxAge() time.Duration {
	if p.VisibilityAge <= 0 {
		return DefaultVisibilityMaxAge
	}
	return p.VisibilityAge
}
