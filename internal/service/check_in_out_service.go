package service

import (
	"context"
	"fmt"
	"time"

	"adeelasgher847/attendance-agent/internal/events"
	"adeelasgher847/attendance-agent/internal/journal"
	"adeelasgher847/attendance-agent/internal/location"
	"adeelasgher847/attendance-agent/internal/models"
	"adeelasgher847/attendance-agent/internal/summary"

	"go.uber.org/zap"
)

// CheckInOutService submits check-in and check-out events
type CheckInOutService struct {
	attendance AttendanceAPI
	locator    Locator
	status     StatusCache
	userID     string
	loc        *time.Location
	activity
	logger *zap.Logger
}

// NewCheckInOutService creates a new check-in/out service. A nil locator
// submits events without coordinates; a nil loc groups history by
// time.Local.
func NewCheckInOutService(
	attendance AttendanceAPI,
	locator Locator,
	status StatusCache,
	userID string,
	loc *time.Location,
	journal Recorder,
	hub *events.Hub,
	logger *zap.Logger,
) *CheckInOutService {
	return &CheckInOutService{
		attendance: attendance,
		locator:    locator,
		status:     status,
		userID:     userID,
		loc:        loc,
		activity:   activity{journal: journal, hub: hub, logger: logger},
		logger:     logger,
	}
}

// CheckIn acquires a position and submits a CHECK_IN
func (s *CheckInOutService) CheckIn(ctx context.Context) (models.AttendanceEvent, error) {
	return s.submitWithLocation(ctx, models.EventCheckIn)
}

// CheckOut acquires a position and submits a CHECK_OUT
func (s *CheckInOutService) CheckOut(ctx context.Context) (models.AttendanceEvent, error) {
	return s.submitWithLocation(ctx, models.EventCheckOut)
}

func (s *CheckInOutService) submitWithLocation(ctx context.Context, eventType models.EventType) (models.AttendanceEvent, error) {
	var pos *location.Position
	if s.locator != nil {
		p, err := s.locator.Acquire(ctx)
		if err != nil {
			s.logger.Warn("Failed to acquire location",
				zap.Error(err),
				zap.String("event_type", string(eventType)),
			)
			return models.AttendanceEvent{}, err
		}
		pos = &p
	}
	return s.Submit(ctx, string(eventType), pos)
}

// Submit normalizes rawType and sends the event. Unknown types are rejected
// with models.ErrUnknownEventType before any network call. On success the
// status cache is force-refreshed and an attendance notification is
// published; on failure nothing local changes.
func (s *CheckInOutService) Submit(ctx context.Context, rawType string, pos *location.Position) (models.AttendanceEvent, error) {
	eventType, err := models.ParseEventType(rawType)
	if err != nil {
		return models.AttendanceEvent{}, err
	}

	req := models.CreateAttendanceEventRequest{Type: eventType}
	if pos != nil {
		lat, lon := pos.Latitude, pos.Longitude
		req.Latitude = &lat
		req.Longitude = &lon
	}

	event, err := s.attendance.CreateAttendanceEvent(ctx, req)
	if err != nil {
		s.logger.Error("Failed to submit attendance event",
			zap.Error(err),
			zap.String("event_type", string(eventType)),
		)
		return models.AttendanceEvent{}, fmt.Errorf("%w: %w", ErrSubmissionFailed, err)
	}

	s.logger.Info("Attendance event submitted",
		zap.String("event_id", event.ID),
		zap.String("event_type", string(eventType)),
		zap.Bool("with_location", pos != nil),
	)

	s.status.Invalidate()
	s.status.Get(ctx, true)

	kind := journal.KindCheckIn
	if eventType == models.EventCheckOut {
		kind = journal.KindCheckOut
	}
	attrs := map[string]string{"event_id": event.ID}
	if pos != nil {
		attrs["latitude"] = fmt.Sprintf("%.6f", pos.Latitude)
		attrs["longitude"] = fmt.Sprintf("%.6f", pos.Longitude)
	}
	s.record(ctx, kind, "attendance event submitted", attrs)
	s.publish(events.TopicAttendance, AttendanceChange{Type: eventType, EventID: event.ID})

	return event, nil
}

// TodaySummary returns today's summary with the check-out hidden unless it
// is strictly later than the check-in
func (s *CheckInOutService) TodaySummary(ctx context.Context) (models.TodaySummary, error) {
	sum, err := s.attendance.TodaySummary(ctx, s.userID)
	if err != nil {
		return models.TodaySummary{}, fmt.Errorf("failed to get today summary: %w", err)
	}
	return models.TodaySummary{
		CheckIn:  sum.CheckIn,
		CheckOut: sum.DisplayCheckOut(),
	}, nil
}

// History returns per-day summaries for [from, to)
func (s *CheckInOutService) History(ctx context.Context, from, to time.Time) ([]models.DailyAttendanceSummary, error) {
	if !from.IsZero() && !to.IsZero() && !to.After(from) {
		return nil, fmt.Errorf("invalid range: %s is not after %s", to.Format(time.RFC3339), from.Format(time.RFC3339))
	}

	evts, err := s.attendance.ListAttendanceEvents(ctx, s.userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance events: %w", err)
	}
	return summary.Aggregate(evts, s.loc), nil
}
