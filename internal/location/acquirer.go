package location

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Position is a geographic fix
type Position struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Accuracy  float64   `json:"accuracy,omitempty"` // meters, 0 if unknown
	FixedAt   time.Time `json:"fixedAt"`
}

// Options mirror the knobs of a platform geolocation request
type Options struct {
	HighAccuracy bool
	Timeout      time.Duration
	MaximumAge   time.Duration
}

var (
	// HighAccuracyOptions is the first attempt
	HighAccuracyOptions = Options{HighAccuracy: true, Timeout: 20 * time.Second, MaximumAge: 5 * time.Second}
	// LowAccuracyOptions is used once when the first attempt times out
	LowAccuracyOptions = Options{HighAccuracy: false, Timeout: 30 * time.Second, MaximumAge: 60 * time.Second}
)

// Provider obtains a position. Implementations should return one of the
// sentinel errors (wrapped or as a *LocationError) so the acquirer can tell a
// timeout from a denial.
type Provider interface {
	CurrentPosition(ctx context.Context, opts Options) (Position, error)
}

// Acquirer applies the two-tier accuracy policy on top of a Provider
type Acquirer struct {
	provider Provider
	high     Options
	low      Options
	logger   *zap.Logger
}

// NewAcquirer creates an acquirer. A nil provider means the device has no
// location capability and every call fails with ErrLocationUnavailable.
func NewAcquirer(provider Provider, logger *zap.Logger) *Acquirer {
	return &Acquirer{
		provider: provider,
		high:     HighAccuracyOptions,
		low:      LowAccuracyOptions,
		logger:   logger,
	}
}

// Available reports whether a provider is configured
func (a *Acquirer) Available() bool {
	return a.provider != nil
}

// Acquire requests a high-accuracy fix and, only if that times out, retries
// once with low accuracy. Denied and unavailable errors are returned as-is.
func (a *Acquirer) Acquire(ctx context.Context) (Position, error) {
	if a.provider == nil {
		return Position{}, newError(ErrLocationUnavailable, errors.New("no location provider"))
	}

	pos, err := a.attempt(ctx, a.high)
	if err == nil {
		return pos, nil
	}
	if !errors.Is(err, ErrLocationTimeout) {
		a.logger.Warn("Location request failed", zap.Error(err), zap.Bool("high_accuracy", true))
		return Position{}, err
	}

	a.logger.Info("High accuracy location timed out, retrying with low accuracy",
		zap.Duration("timeout", a.high.Timeout),
	)

	pos, err = a.attempt(ctx, a.low)
	if err != nil {
		a.logger.Warn("Location request failed", zap.Error(err), zap.Bool("high_accuracy", false))
		return Position{}, err
	}
	return pos, nil
}

func (a *Acquirer) attempt(ctx context.Context, opts Options) (Position, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	pos, err := a.provider.CurrentPosition(attemptCtx, opts)
	if err == nil {
		return pos, nil
	}
	return Position{}, classify(ctx, attemptCtx, err)
}

// classify maps provider errors onto the location taxonomy. A deadline on the
// attempt context is a timeout; cancellation by the caller is passed through.
func classify(parent, attemptCtx context.Context, err error) error {
	var locErr *LocationError
	if errors.As(err, &locErr) {
		return locErr
	}
	switch {
	case errors.Is(err, ErrLocationDenied):
		return newError(ErrLocationDenied, err)
	case errors.Is(err, ErrLocationTimeout):
		return newError(ErrLocationTimeout, err)
	case errors.Is(err, ErrLocationUnavailable):
		return newError(ErrLocationUnavailable, err)
	case parent.Err() != nil:
		return parent.Err()
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(attemptCtx.Err(), context.DeadlineExceeded):
		return newError(ErrLocationTimeout, err)
	default:
		return newError(ErrLocationUnavailable, err)
	}
}
