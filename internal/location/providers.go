package location

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
)

// StaticProvider always reports the configured coordinates
type StaticProvider struct {
	Latitude  float64
	Longitude float64
}

func (p StaticProvider) CurrentPosition(ctx context.Context, opts Options) (Position, error) {
	if err := ctx.Err(); err != nil {
		return Position{}, err
	}
	return Position{Latitude: p.Latitude, Longitude: p.Longitude, FixedAt: time.Now()}, nil
}

// HTTPProvider asks a geolocation service for the device position and keeps
// the last fix so requests inside MaximumAge are served locally
type HTTPProvider struct {
	serviceURL string
	httpClient *http.Client
	logger     *zap.Logger

	mu      sync.Mutex
	lastFix *Position
	now     func() time.Time
}

// NewHTTPProvider creates a provider for the service at serviceURL. The
// request deadline comes from the context, not from the http.Client.
func NewHTTPProvider(serviceURL string, logger *zap.Logger) *HTTPProvider {
	return &HTTPProvider{
		serviceURL: serviceURL,
		httpClient: &http.Client{},
		logger:     logger,
		now:        time.Now,
	}
}

type httpFix struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Accuracy  float64  `json:"accuracy"`
}

func (p *HTTPProvider) CurrentPosition(ctx context.Context, opts Options) (Position, error) {
	if cached, ok := p.cached(opts.MaximumAge); ok {
		return cached, nil
	}

	u, err := url.Parse(p.serviceURL)
	if err != nil {
		return Position{}, newError(ErrLocationUnavailable, fmt.Errorf("invalid location service url: %w", err))
	}
	q := u.Query()
	q.Set("high_accuracy", strconv.FormatBool(opts.HighAccuracy))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Position{}, newError(ErrLocationUnavailable, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return Position{}, newError(ErrLocationTimeout, err)
		}
		return Position{}, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return Position{}, newError(ErrLocationDenied, fmt.Errorf("location service returned status %d", resp.StatusCode))
	case resp.StatusCode == http.StatusRequestTimeout || resp.StatusCode == http.StatusGatewayTimeout:
		return Position{}, newError(ErrLocationTimeout, fmt.Errorf("location service returned status %d", resp.StatusCode))
	case resp.StatusCode != http.StatusOK:
		return Position{}, newError(ErrLocationUnavailable, fmt.Errorf("location service returned status %d: %s", resp.StatusCode, string(body)))
	}

	var fix httpFix
	if err := json.Unmarshal(body, &fix); err != nil {
		return Position{}, newError(ErrLocationUnavailable, fmt.Errorf("failed to parse location response: %w", err))
	}
	if fix.Latitude == nil || fix.Longitude == nil {
		return Position{}, newError(ErrLocationUnavailable, errors.New("location response has no coordinates"))
	}

	pos := Position{
		Latitude:  *fix.Latitude,
		Longitude: *fix.Longitude,
		Accuracy:  fix.Accuracy,
		FixedAt:   p.now(),
	}

	p.mu.Lock()
	p.lastFix = &pos
	p.mu.Unlock()

	p.logger.Debug("Location fix received",
		zap.Bool("high_accuracy", opts.HighAccuracy),
		zap.Float64("accuracy", fix.Accuracy),
	)

	return pos, nil
}

func (p *HTTPProvider) cached(maxAge time.Duration) (Position, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.lastFix == nil || maxAge <= 0 {
		return Position{}, false
	}
	if p.now().Sub(p.lastFix.FixedAt) > maxAge {
		return Position{}, false
	}
	return *p.lastFix, true
}
