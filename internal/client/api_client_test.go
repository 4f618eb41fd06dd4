package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"adeelasgher847/attendance-agent/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *APIClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewAPIClient(srv.URL+"/", "secret", 5*time.Second, zap.NewNop())
	c.SetDeviceID("device-1")
	return c
}

func TestTodaySummary_SendsHeadersAndDecodes(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/attendance/today-summary", r.URL.Path)
		assert.Equal(t, "u-1", r.URL.Query().Get("userId"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "device-1", r.Header.Get("X-Device-ID"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		w.Write([]byte(`{"checkIn":"2026-03-02T09:00:00Z","checkOut":null}`))
	})

	summary, err := c.TodaySummary(context.Background(), "u-1")
	require.NoError(t, err)
	require.NotNil(t, summary.CheckIn)
	assert.Nil(t, summary.CheckOut)
	assert.True(t, summary.CheckedIn())
}

func TestCreateAttendanceEvent_PostsBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req models.CreateAttendanceEventRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, models.EventCheckIn, req.Type)
		require.NotNil(t, req.Latitude)
		assert.Equal(t, 24.86, *req.Latitude)

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"e-1","userId":"u-1","timestamp":"2026-03-02T09:00:00Z","type":"CHECK_IN","approvalStatus":"rejected"}`))
	})

	lat, lon := 24.86, 67.01
	event, err := c.CreateAttendanceEvent(context.Background(), models.CreateAttendanceEventRequest{
		Type: models.EventCheckIn, Latitude: &lat, Longitude: &lon,
	})
	require.NoError(t, err)
	assert.Equal(t, "e-1", event.ID)
	assert.Equal(t, models.ApprovalDisapproved, event.ApprovalStatus)
}

func TestRequestIDsAreUnique(t *testing.T) {
	seen := map[string]bool{}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen[r.Header.Get("X-Request-ID")] = true
	})

	for i := 0; i < 3; i++ {
		require.NoError(t, c.EndSession(context.Background()))
	}
	assert.Len(t, seen, 3)
}

func TestListAttendanceEvents_Range(t *testing.T) {
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "2026-03-01T00:00:00Z", q.Get("from"))
		assert.Equal(t, "2026-03-08T00:00:00Z", q.Get("to"))
		w.Write([]byte(`[{"id":"a","type":"CHECK_IN","timestamp":"2026-03-02T09:00:00Z"},{"id":"b","type":"CHECK_OUT","timestamp":"2026-03-02T17:00:00Z"}]`))
	})

	events, err := c.ListAttendanceEvents(context.Background(), "u-1", from, to)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, models.EventCheckOut, events[1].Type)
}

func TestTeamAttendanceToday(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/attendance/team/today", r.URL.Path)
		w.Write([]byte(`{"items":[{"id":"e-1","userId":"u-2","name":"Sara","type":"CHECK_IN","timestamp":"2026-03-02T09:00:00Z","approvalStatus":null}]}`))
	})

	rows, err := c.TeamAttendanceToday(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Sara", rows[0].EmployeeName)
	assert.Equal(t, models.ApprovalPending, rows[0].ApprovalStatus)
}

func TestApproveAndBulk(t *testing.T) {
	var paths []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		if r.URL.Path == "/api/v1/attendance/team/approve-all" {
			w.Write([]byte(`{"updated":4}`))
		}
	})

	require.NoError(t, c.ApproveCheckIn(context.Background(), "e-1"))
	require.NoError(t, c.DisapproveCheckIn(context.Background(), "e-2"))
	n, err := c.ApproveAllCheckIns(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	assert.Equal(t, []string{
		"/api/v1/attendance/events/e-1/approve",
		"/api/v1/attendance/events/e-2/disapprove",
		"/api/v1/attendance/team/approve-all",
	}, paths)
}

func TestActiveSessions_Shapes(t *testing.T) {
	cases := map[string]struct {
		body string
		want int
	}{
		"null":   {body: `null`, want: 0},
		"empty":  {body: ``, want: 0},
		"object": {body: `{"id":"s-1","startTime":"2026-03-02T09:05:00Z","endTime":null}`, want: 1},
		"array":  {body: `[{"id":"s-1","startTime":"2026-03-02T09:05:00Z"},{"id":"s-2","startTime":"2026-03-02T10:00:00Z"}]`, want: 2},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tc.body))
			})

			sessions, err := c.ActiveSessions(context.Background(), "u-1")
			require.NoError(t, err)
			assert.Len(t, sessions, tc.want)
			if tc.want > 0 {
				assert.Equal(t, "s-1", sessions[0].ID)
				assert.True(t, sessions[0].Active())
			}
		})
	}
}

func TestStartSession(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/work-sessions/start", r.URL.Path)
		w.Write([]byte(`{"id":"s-9","startTime":"2026-03-02T09:05:00Z"}`))
	})

	session, err := c.StartSession(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "s-9", session.ID)
	assert.Equal(t, time.Date(2026, 3, 2, 9, 5, 0, 0, time.UTC), session.StartTime.UTC())
}

func TestStatusErrors(t *testing.T) {
	cases := []struct {
		status int
		check  func(error) bool
	}{
		{http.StatusUnauthorized, func(err error) bool { var e *AuthError; return errors.As(err, &e) }},
		{http.StatusForbidden, func(err error) bool { var e *AuthError; return errors.As(err, &e) }},
		{http.StatusTooManyRequests, func(err error) bool { var e *RateLimitError; return errors.As(err, &e) }},
		{http.StatusNotFound, func(err error) bool { var e *NotFoundError; return errors.As(err, &e) }},
		{http.StatusConflict, func(err error) bool { var e *BadRequestError; return errors.As(err, &e) }},
		{http.StatusBadGateway, func(err error) bool { var e *BackendError; return errors.As(err, &e) }},
	}

	for _, tc := range cases {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(`{"message":"nope"}`))
			})

			err := c.EndSession(context.Background())
			require.Error(t, err)
			assert.True(t, tc.check(err), "unexpected error type %T", err)
		})
	}
}

func TestMalformedBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	})

	_, err := c.TodaySummary(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse response")
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewAPIClient(srv.URL, "", time.Second, zap.NewNop())
	_, err := c.TodaySummary(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "request failed")
}
