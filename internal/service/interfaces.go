package service

import (
	"context"
	"time"

	"adeelasgher847/attendance-agent/internal/location"
	"adeelasgher847/attendance-agent/internal/models"
	"adeelasgher847/attendance-agent/internal/status"
)

// AttendanceAPI is the remote attendance query/command interface
type AttendanceAPI interface {
	TodaySummary(ctx context.Context, userID string) (models.TodaySummary, error)
	CreateAttendanceEvent(ctx context.Context, req models.CreateAttendanceEventRequest) (models.AttendanceEvent, error)
	ListAttendanceEvents(ctx context.Context, userID string, from, to time.Time) ([]models.AttendanceEvent, error)
}

// SessionAPI is the remote work-session query/command interface
type SessionAPI interface {
	ActiveSessions(ctx context.Context, userID string) ([]models.WorkSession, error)
	StartSession(ctx context.Context) (models.WorkSession, error)
	EndSession(ctx context.Context) error
}

// TeamAPI is the remote team-attendance query/command interface
type TeamAPI interface {
	TeamAttendanceToday(ctx context.Context) ([]models.TeamCheckInRow, error)
	ApproveCheckIn(ctx context.Context, eventID string) error
	DisapproveCheckIn(ctx context.Context, eventID string) error
	ApproveAllCheckIns(ctx context.Context) (int, error)
	DisapproveAllCheckIns(ctx context.Context) (int, error)
}

// StatusCache is satisfied by *status.Cache
type StatusCache interface {
	Get(ctx context.Context, force bool) status.Status
	Invalidate()
}

// Locator is satisfied by *location.Acquirer
type Locator interface {
	Acquire(ctx context.Context) (location.Position, error)
}

// Recorder is satisfied by *journal.Journal
type Recorder interface {
	Record(ctx context.Context, kind, message string, attrs map[string]string) error
}
