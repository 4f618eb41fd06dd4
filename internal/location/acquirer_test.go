package location

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type scriptedProvider struct {
	results []func(ctx context.Context) (Position, error)
	calls   []Options
}

func (p *scriptedProvider) CurrentPosition(ctx context.Context, opts Options) (Position, error) {
	p.calls = append(p.calls, opts)
	i := len(p.calls) - 1
	if i >= len(p.results) {
		return Position{}, errors.New("unexpected call")
	}
	return p.results[i](ctx)
}

func ok(lat, lon float64) func(context.Context) (Position, error) {
	return func(context.Context) (Position, error) {
		return Position{Latitude: lat, Longitude: lon}, nil
	}
}

func fail(err error) func(context.Context) (Position, error) {
	return func(context.Context) (Position, error) { return Position{}, err }
}

func TestAcquire_HighAccuracySuccess(t *testing.T) {
	p := &scriptedProvider{results: []func(context.Context) (Position, error){ok(31.5, 74.3)}}
	a := NewAcquirer(p, zap.NewNop())

	pos, err := a.Acquire(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 31.5, pos.Latitude)
	require.Len(t, p.calls, 1)
	assert.Equal(t, HighAccuracyOptions, p.calls[0])
}

func TestAcquire_TimeoutFallsBackToLowAccuracy(t *testing.T) {
	p := &scriptedProvider{results: []func(context.Context) (Position, error){
		fail(ErrLocationTimeout),
		ok(24.8, 67.0),
	}}
	a := NewAcquirer(p, zap.NewNop())

	pos, err := a.Acquire(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 24.8, pos.Latitude)
	require.Len(t, p.calls, 2)
	assert.Equal(t, LowAccuracyOptions, p.calls[1])
	assert.False(t, p.calls[1].HighAccuracy)
	assert.Equal(t, 30*time.Second, p.calls[1].Timeout)
	assert.Equal(t, 60*time.Second, p.calls[1].MaximumAge)
}

func TestAcquire_LowAccuracyFailureSurfaces(t *testing.T) {
	p := &scriptedProvider{results: []func(context.Context) (Position, error){
		fail(ErrLocationTimeout),
		fail(ErrLocationUnavailable),
	}}
	a := NewAcquirer(p, zap.NewNop())

	_, err := a.Acquire(context.Background())
	assert.True(t, errors.Is(err, ErrLocationUnavailable))
	assert.False(t, errors.Is(err, ErrLocationTimeout))
}

func TestAcquire_DeniedDoesNotRetry(t *testing.T) {
	p := &scriptedProvider{results: []func(context.Context) (Position, error){
		fail(ErrLocationDenied),
		ok(1, 1),
	}}
	a := NewAcquirer(p, zap.NewNop())

	_, err := a.Acquire(context.Background())
	assert.True(t, errors.Is(err, ErrLocationDenied))
	assert.Len(t, p.calls, 1)
}

func TestAcquire_UnavailableDoesNotRetry(t *testing.T) {
	p := &scriptedProvider{results: []func(context.Context) (Position, error){
		fail(errors.New("no satellites")),
		ok(1, 1),
	}}
	a := NewAcquirer(p, zap.NewNop())

	_, err := a.Acquire(context.Background())
	assert.True(t, errors.Is(err, ErrLocationUnavailable))
	assert.Len(t, p.calls, 1)
}

func TestAcquire_NoCapability(t *testing.T) {
	a := NewAcquirer(nil, zap.NewNop())

	assert.False(t, a.Available())
	_, err := a.Acquire(context.Background())
	assert.True(t, errors.Is(err, ErrLocationUnavailable))
}

func TestAcquire_AttemptDeadlineIsTimeout(t *testing.T) {
	blocking := func(ctx context.Context) (Position, error) {
		<-ctx.Done()
		return Position{}, ctx.Err()
	}
	p := &scriptedProvider{results: []func(context.Context) (Position, error){blocking, ok(2, 2)}}
	a := NewAcquirer(p, zap.NewNop())
	a.high.Timeout = 10 * time.Millisecond

	pos, err := a.Acquire(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2.0, pos.Latitude)
}

func TestAcquire_CallerCancellationPassesThrough(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	blocking := func(ctx context.Context) (Position, error) {
		<-ctx.Done()
		return Position{}, ctx.Err()
	}
	p := &scriptedProvider{results: []func(context.Context) (Position, error){blocking}}
	a := NewAcquirer(p, zap.NewNop())

	_, err := a.Acquire(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Len(t, p.calls, 1)
}
