package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"adeelasgher847/attendance-agent/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// APIClient talks to the remote attendance service
type APIClient struct {
	baseURL    string
	token      string
	deviceID   string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewAPIClient creates a new API client. timeout bounds every request.
func NewAPIClient(baseURL, token string, timeout time.Duration, logger *zap.Logger) *APIClient {
	return &APIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// SetToken replaces the bearer token
func (c *APIClient) SetToken(token string) {
	c.token = token
}

// SetDeviceID sets the X-Device-ID header sent with every request
func (c *APIClient) SetDeviceID(deviceID string) {
	c.deviceID = deviceID
}

// TodaySummary returns today's check-in and check-out for userID, or for the
// token's user when userID is empty
func (c *APIClient) TodaySummary(ctx context.Context, userID string) (models.TodaySummary, error) {
	q := url.Values{}
	if userID != "" {
		q.Set("userId", userID)
	}

	var summary models.TodaySummary
	if err := c.do(ctx, http.MethodGet, "/api/v1/attendance/today-summary", q, nil, &summary); err != nil {
		return models.TodaySummary{}, err
	}
	return summary, nil
}

// CreateAttendanceEvent submits a check-in or check-out
func (c *APIClient) CreateAttendanceEvent(ctx context.Context, req models.CreateAttendanceEventRequest) (models.AttendanceEvent, error) {
	var event models.AttendanceEvent
	if err := c.do(ctx, http.MethodPost, "/api/v1/attendance/events", nil, req, &event); err != nil {
		return models.AttendanceEvent{}, err
	}
	return event, nil
}

// ListAttendanceEvents returns raw events for userID in [from, to)
func (c *APIClient) ListAttendanceEvents(ctx context.Context, userID string, from, to time.Time) ([]models.AttendanceEvent, error) {
	q := url.Values{}
	if userID != "" {
		q.Set("userId", userID)
	}
	if !from.IsZero() {
		q.Set("from", from.Format(time.RFC3339))
	}
	if !to.IsZero() {
		q.Set("to", to.Format(time.RFC3339))
	}

	var events []models.AttendanceEvent
	if err := c.do(ctx, http.MethodGet, "/api/v1/attendance/events", q, nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// TeamAttendanceToday returns today's check-ins of the supervisor's team
func (c *APIClient) TeamAttendanceToday(ctx context.Context) ([]models.TeamCheckInRow, error) {
	var resp models.TeamAttendanceResponse
	if err := c.do(ctx, http.MethodGet, "/api/v1/attendance/team/today", nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// ApproveCheckIn approves a single check-in
func (c *APIClient) ApproveCheckIn(ctx context.Context, eventID string) error {
	return c.do(ctx, http.MethodPost, "/api/v1/attendance/events/"+url.PathEscape(eventID)+"/approve", nil, nil, nil)
}

// DisapproveCheckIn disapproves a single check-in
func (c *APIClient) DisapproveCheckIn(ctx context.Context, eventID string) error {
	return c.do(ctx, http.MethodPost, "/api/v1/attendance/events/"+url.PathEscape(eventID)+"/disapprove", nil, nil, nil)
}

// ApproveAllCheckIns approves every pending team check-in and returns the
// number of records the server updated
func (c *APIClient) ApproveAllCheckIns(ctx context.Context) (int, error) {
	var resp models.BulkUpdateResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/attendance/team/approve-all", nil, nil, &resp); err != nil {
		return 0, err
	}
	return resp.Updated, nil
}

// DisapproveAllCheckIns disapproves every pending team check-in
func (c *APIClient) DisapproveAllCheckIns(ctx context.Context) (int, error) {
	var resp models.BulkUpdateResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/attendance/team/disapprove-all", nil, nil, &resp); err != nil {
		return 0, err
	}
	return resp.Updated, nil
}

// ActiveSessions returns the open work sessions of userID. The service
// answers with null, a single session, or (on inconsistent data) a list;
// all three shapes are accepted.
func (c *APIClient) ActiveSessions(ctx context.Context, userID string) ([]models.WorkSession, error) {
	q := url.Values{}
	if userID != "" {
		q.Set("userId", userID)
	}

	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/api/v1/work-sessions/active", q, nil, &raw); err != nil {
		return nil, err
	}
	return decodeSessions(raw)
}

// StartSession opens a work session and returns it with the server start time
func (c *APIClient) StartSession(ctx context.Context) (models.WorkSession, error) {
	var session models.WorkSession
	if err := c.do(ctx, http.MethodPost, "/api/v1/work-sessions/start", nil, nil, &session); err != nil {
		return models.WorkSession{}, err
	}
	return session, nil
}

// EndSession closes the active work session
func (c *APIClient) EndSession(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/v1/work-sessions/end", nil, nil, nil)
}

// HealthCheck checks if the backend is reachable
func (c *APIClient) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}
	return nil
}

func decodeSessions(raw json.RawMessage) ([]models.WorkSession, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	if trimmed[0] == '[' {
		var sessions []models.WorkSession
		if err := json.Unmarshal(trimmed, &sessions); err != nil {
			return nil, fmt.Errorf("failed to parse sessions: %w", err)
		}
		return sessions, nil
	}

	var session models.WorkSession
	if err := json.Unmarshal(trimmed, &session); err != nil {
		return nil, fmt.Errorf("failed to parse session: %w", err)
	}
	return []models.WorkSession{session}, nil
}

// do sends one request. body is JSON-encoded when non-nil; out receives the
// decoded response when non-nil and the response has a body.
func (c *APIClient) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.deviceID != "" {
		req.Header.Set("X-Device-ID", c.deviceID)
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	startTime := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(startTime)

	if err != nil {
		c.logger.Error("Request failed",
			zap.Error(err),
			zap.String("method", method),
			zap.String("path", path),
			zap.String("request_id", requestID),
			zap.Duration("duration", duration),
		)
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.statusError(method, path, requestID, resp.StatusCode, respBody)
	}

	c.logger.Debug("Request completed",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status_code", resp.StatusCode),
		zap.String("request_id", requestID),
		zap.Duration("duration", duration),
	)

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func (c *APIClient) statusError(method, path, requestID string, status int, body []byte) error {
	errMsg := fmt.Sprintf("backend returned status %d: %s", status, string(body))
	fields := []zap.Field{
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status_code", status),
		zap.String("request_id", requestID),
	}

	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		c.logger.Error("Authentication failed", append(fields, zap.String("response", string(body)))...)
		return &AuthError{Message: errMsg, StatusCode: status}
	case http.StatusTooManyRequests:
		c.logger.Warn("Rate limited", fields...)
		return &RateLimitError{Message: errMsg, StatusCode: status}
	case http.StatusNotFound:
		c.logger.Warn("Resource not found", fields...)
		return &NotFoundError{Message: errMsg, StatusCode: status}
	case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity:
		c.logger.Error("Invalid request", append(fields, zap.String("response", string(body)))...)
		return &BadRequestError{Message: errMsg, StatusCode: status}
	default:
		c.logger.Error("Backend error", append(fields, zap.String("response", string(body)))...)
		return &BackendError{Message: errMsg, StatusCode: status}
	}
}
