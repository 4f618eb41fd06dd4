package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"adeelasgher847/attendance-agent/internal/events"
	"adeelasgher847/attendance-agent/internal/location"
	"adeelasgher847/attendance-agent/internal/models"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AttendanceRequest optionally carries coordinates fixed by the UI. Without
// them the agent acquires a position itself.
type AttendanceRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

type VisibilityRequest struct {
	Visible bool `json:"visible"`
}

type StatusResponse struct {
	HasCheckedInToday  bool       `json:"hasCheckedInToday"`
	HasCheckedOutToday bool       `json:"hasCheckedOutToday"`
	CheckIn            *time.Time `json:"checkIn"`
	CheckOut           *time.Time `json:"checkOut"`
	FetchedAt          time.Time  `json:"fetchedAt"`
	Stale              bool       `json:"stale"`
}

type TeamResponse struct {
	Items       []TeamRow `json:"items"`
	BulkEnabled bool      `json:"bulkEnabled"`
}

type TeamRow struct {
	models.TeamCheckInRow
	CanAct bool `json:"canAct"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	success(w, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().Unix(),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	force, _ := strconv.ParseBool(r.URL.Query().Get("force"))
	st := s.deps.Status.Get(r.Context(), force)
	success(w, StatusResponse{
		HasCheckedInToday:  st.HasCheckedInToday,
		HasCheckedOutToday: st.HasCheckedOutToday,
		CheckIn:            st.Summary.CheckIn,
		CheckOut:           st.Summary.DisplayCheckOut(),
		FetchedAt:          st.FetchedAt,
		Stale:              st.Failed(),
	})
}

func (s *Server) handleVisibility(w http.ResponseWriter, r *http.Request) {
	var req VisibilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body")
		return
	}
	refreshed := s.deps.Visibility.SetVisible(r.Context(), req.Visible)
	success(w, map[string]bool{"refreshed": refreshed})
}

func (s *Server) handleToday(w http.ResponseWriter, r *http.Request) {
	summary, err := s.deps.Attendance.TodaySummary(r.Context())
	if err != nil {
		s.logger.Warn("Failed to get today summary", zap.Error(err))
		writeError(w, http.StatusBadGateway, "BACKEND_ERROR", err.Error())
		return
	}
	success(w, summary)
}

// handleHistory serves ?from=&to= as dates (2006-01-02) or RFC 3339. The
// default is the last seven days including today.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	now := time.Now().In(s.deps.Location)
	tomorrow := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, s.deps.Location)

	from, err := s.parseTime(r.URL.Query().Get("from"), tomorrow.AddDate(0, 0, -7))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_FROM", err.Error())
		return
	}
	to, err := s.parseTime(r.URL.Query().Get("to"), tomorrow)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_TO", err.Error())
		return
	}
	if !to.After(from) {
		writeError(w, http.StatusBadRequest, "INVALID_RANGE", "to must be after from")
		return
	}

	days, err := s.deps.Attendance.History(r.Context(), from, to)
	if err != nil {
		s.logger.Warn("Failed to get attendance history", zap.Error(err))
		writeError(w, http.StatusBadGateway, "BACKEND_ERROR", err.Error())
		return
	}
	success(w, days)
}

func (s *Server) parseTime(raw string, fallback time.Time) (time.Time, error) {
	if raw == "" {
		return fallback, nil
	}
	if t, err := time.ParseInLocation("2006-01-02", raw, s.deps.Location); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q", raw)
	}
	return t, nil
}

func (s *Server) handleAttendance(w http.ResponseWriter, r *http.Request) {
	rawType := chi.URLParam(r, "type")

	var req AttendanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body")
		return
	}

	var (
		event models.AttendanceEvent
		err   error
	)
	switch {
	case req.Latitude != nil && req.Longitude != nil:
		event, err = s.deps.Attendance.Submit(r.Context(), rawType, &location.Position{
			Latitude:  *req.Latitude,
			Longitude: *req.Longitude,
		})
	default:
		var eventType models.EventType
		eventType, err = models.ParseEventType(rawType)
		if err == nil {
			if eventType == models.EventCheckIn {
				event, err = s.deps.Attendance.CheckIn(r.Context())
			} else {
				event, err = s.deps.Attendance.CheckOut(r.Context())
			}
		}
	}
	if err != nil {
		handleError(w, err)
		return
	}
	created(w, "Attendance recorded", event)
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	success(w, s.deps.Sessions.Snapshot())
}

func (s *Server) handleClockIn(w http.ResponseWriter, r *http.Request) {
	snap, err := s.deps.Sessions.ClockIn(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}
	success(w, snap)
}

func (s *Server) handleClockOut(w http.ResponseWriter, r *http.Request) {
	snap, err := s.deps.Sessions.ClockOut(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}
	success(w, snap)
}

func (s *Server) handleTeamToday(w http.ResponseWriter, r *http.Request) {
	rows, err := s.deps.Approvals.TeamToday(r.Context())
	if err != nil {
		s.logger.Warn("Failed to get team attendance", zap.Error(err))
		writeError(w, http.StatusBadGateway, "BACKEND_ERROR", err.Error())
		return
	}

	resp := TeamResponse{Items: make([]TeamRow, 0, len(rows)), BulkEnabled: s.deps.Approvals.BulkEnabled()}
	for _, row := range rows {
		resp.Items = append(resp.Items, TeamRow{TeamCheckInRow: row, CanAct: !row.ApprovalStatus.Final()})
	}
	success(w, resp)
}

func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Approvals.Approve(r.Context(), chi.URLParam(r, "eventID")); err != nil {
		handleError(w, err)
		return
	}
	success(w, map[string]string{"approvalStatus": string(models.ApprovalApproved)})
}

func (s *Server) handleDisapprove(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Approvals.Disapprove(r.Context(), chi.URLParam(r, "eventID")); err != nil {
		handleError(w, err)
		return
	}
	success(w, map[string]string{"approvalStatus": string(models.ApprovalDisapproved)})
}

func (s *Server) handleApproveAll(w http.ResponseWriter, r *http.Request) {
	updated, err := s.deps.Approvals.ApproveAll(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}
	success(w, models.BulkUpdateResponse{Updated: updated})
}

func (s *Server) handleDisapproveAll(w http.ResponseWriter, r *http.Request) {
	updated, err := s.deps.Approvals.DisapproveAll(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}
	success(w, models.BulkUpdateResponse{Updated: updated})
}

func (s *Server) handleJournal(w http.ResponseWriter, r *http.Request) {
	if s.deps.Journal == nil {
		writeError(w, http.StatusNotFound, "JOURNAL_DISABLED", "Journal is not enabled")
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 500 {
			writeError(w, http.StatusBadRequest, "INVALID_LIMIT", "limit must be between 1 and 500")
			return
		}
		limit = n
	}

	entries, err := s.deps.Journal.List(r.Context(), r.URL.Query().Get("kind"), limit)
	if err != nil {
		s.logger.Error("Failed to list journal", zap.Error(err))
		handleError(w, err)
		return
	}
	success(w, entries)
}

// handleEvents streams hub notifications as server-sent events
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if s.deps.Hub == nil {
		writeError(w, http.StatusNotFound, "EVENTS_DISABLED", "Event stream is not enabled")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	stream, cleanup := s.deps.Hub.Subscribe(events.All)
	defer cleanup()

	fmt.Fprint(w, "event: connected\ndata: {\"status\":\"connected\"}\n\n")
	flusher.Flush()

	keepalive := time.NewTicker(30 * time.Second)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-stream:
			if !ok {
				return
			}
			data, err := json.Marshal(event.Data)
			if err != nil {
				s.logger.Warn("Failed to encode event", zap.Error(err), zap.String("topic", event.Topic))
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Topic, data)
			flusher.Flush()

		case <-keepalive.C:
			fmt.Fprintf(w, "event: ping\ndata: {\"timestamp\":%d}\n\n", time.Now().Unix())
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
