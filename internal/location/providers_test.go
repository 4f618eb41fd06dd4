package location

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHTTPProvider_Success(t *testing.T) {
	var gotHigh string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHigh = r.URL.Query().Get("high_accuracy")
		w.Write([]byte(`{"latitude":31.52,"longitude":74.35,"accuracy":12}`))
	}))
	defer srv.Close()

	p := NewHTTPProvider(srv.URL, zap.NewNop())
	pos, err := p.CurrentPosition(context.Background(), HighAccuracyOptions)
	require.NoError(t, err)

	assert.Equal(t, "true", gotHigh)
	assert.InDelta(t, 31.52, pos.Latitude, 1e-9)
	assert.InDelta(t, 12, pos.Accuracy, 1e-9)
}

func TestHTTPProvider_StatusMapping(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusForbidden, ErrLocationDenied},
		{http.StatusUnauthorized, ErrLocationDenied},
		{http.StatusGatewayTimeout, ErrLocationTimeout},
		{http.StatusServiceUnavailable, ErrLocationUnavailable},
		{http.StatusNotFound, ErrLocationUnavailable},
	}
	for _, c := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(c.status)
		}))
		p := NewHTTPProvider(srv.URL, zap.NewNop())
		_, err := p.CurrentPosition(context.Background(), HighAccuracyOptions)
		assert.True(t, errors.Is(err, c.want), "status %d: %v", c.status, err)
		srv.Close()
	}
}

func TestHTTPProvider_MaximumAge(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Write([]byte(`{"latitude":1,"longitude":2}`))
	}))
	defer srv.Close()

	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	p := NewHTTPProvider(srv.URL, zap.NewNop())
	p.now = func() time.Time { return now }

	_, err := p.CurrentPosition(context.Background(), HighAccuracyOptions)
	require.NoError(t, err)

	now = now.Add(3 * time.Second)
	_, err = p.CurrentPosition(context.Background(), HighAccuracyOptions)
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))

	now = now.Add(3 * time.Second)
	_, err = p.CurrentPosition(context.Background(), HighAccuracyOptions)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))

	// A 60s low-accuracy window still accepts the last fix
	now = now.Add(40 * time.Second)
	_, err = p.CurrentPosition(context.Background(), LowAccuracyOptions)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestHTTPProvider_DeadlineIsTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	p := NewHTTPProvider(srv.URL, zap.NewNop())
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := p.CurrentPosition(ctx, HighAccuracyOptions)
	assert.True(t, errors.Is(err, ErrLocationTimeout), "%v", err)
}

func TestHTTPProvider_MissingCoordinates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"accuracy":5}`))
	}))
	defer srv.Close()

	p := NewHTTPProvider(srv.URL, zap.NewNop())
	_, err := p.CurrentPosition(context.Background(), HighAccuracyOptions)
	assert.True(t, errors.Is(err, ErrLocationUnavailable))
}

func TestStaticProvider(t *testing.T) {
	pos, err := StaticProvider{Latitude: 3, Longitude: 4}.CurrentPosition(context.Background(), LowAccuracyOptions)
	require.NoError(t, err)
	assert.Equal(t, 3.0, pos.Latitude)
	assert.Equal(t, 4.0, pos.Longitude)
}
