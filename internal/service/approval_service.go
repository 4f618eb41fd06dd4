package service

import (
	"context"
	"fmt"
	"sync"

	"adeelasgher847/attendance-agent/internal/events"
	"adeelasgher847/attendance-agent/internal/journal"
	"adeelasgher847/attendance-agent/internal/models"

	"go.uber.org/zap"
)

// ApprovalChange is published on events.TopicApproval
type ApprovalChange struct {
	EventIDs []string              `json:"eventIds"`
	Status   models.ApprovalStatus `json:"status"`
	Updated  int                   `json:"updated"`
}

// ApprovalService is the supervisor view over today's team check-ins.
// Approved and disapproved are final; only pending rows can be acted on.
type ApprovalService struct {
	team TeamAPI
	activity
	logger *zap.Logger

	mu     sync.RWMutex
	rows   []models.TeamCheckInRow
	loaded bool
}

// NewApprovalService creates a new approval service
func NewApprovalService(team TeamAPI, journal Recorder, hub *events.Hub, logger *zap.Logger) *ApprovalService {
	return &ApprovalService{
		team:     team,
		activity: activity{journal: journal, hub: hub, logger: logger},
		logger:   logger,
	}
}

// TeamToday fetches today's team check-ins and replaces the local rows
func (s *ApprovalService) TeamToday(ctx context.Context) ([]models.TeamCheckInRow, error) {
	rows, err := s.team.TeamAttendanceToday(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get team attendance: %w", err)
	}

	s.mu.Lock()
	s.rows = append([]models.TeamCheckInRow(nil), rows...)
	s.loaded = true
	s.mu.Unlock()

	return s.Rows(), nil
}

// Rows returns a copy of the last fetched rows
func (s *ApprovalService) Rows() []models.TeamCheckInRow {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.TeamCheckInRow{}, s.rows...)
}

// CanAct reports whether the row's approval control is enabled
func CanAct(row models.TeamCheckInRow) bool {
	return !row.ApprovalStatus.Final()
}

// BulkEnabled reports whether any loaded row is still pending
func (s *ApprovalService) BulkEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pendingLocked() > 0
}

// PendingCount returns the number of loaded rows still pending
func (s *ApprovalService) PendingCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pendingLocked()
}

func (s *ApprovalService) pendingLocked() int {
	n := 0
	for _, row := range s.rows {
		if CanAct(row) {
			n++
		}
	}
	return n
}

// Approve approves a single check-in
func (s *ApprovalService) Approve(ctx context.Context, eventID string) error {
	return s.decide(ctx, eventID, models.ApprovalApproved)
}

// Disapprove disapproves a single check-in
func (s *ApprovalService) Disapprove(ctx context.Context, eventID string) error {
	return s.decide(ctx, eventID, models.ApprovalDisapproved)
}

func (s *ApprovalService) decide(ctx context.Context, eventID string, to models.ApprovalStatus) error {
	s.mu.RLock()
	for _, row := range s.rows {
		if row.EventID == eventID && !CanAct(row) {
			s.mu.RUnlock()
			return ErrAttendanceAlreadyProcessed
		}
	}
	s.mu.RUnlock()

	var err error
	if to == models.ApprovalApproved {
		err = s.team.ApproveCheckIn(ctx, eventID)
	} else {
		err = s.team.DisapproveCheckIn(ctx, eventID)
	}
	if err != nil {
		s.logger.Error("Failed to update check-in approval",
			zap.Error(err),
			zap.String("event_id", eventID),
			zap.String("approval_status", string(to)),
		)
		return fmt.Errorf("%w: %w", ErrApprovalFailed, err)
	}

	s.mu.Lock()
	for i := range s.rows {
		if s.rows[i].EventID == eventID {
			s.rows[i].ApprovalStatus = to
		}
	}
	s.mu.Unlock()

	s.logger.Info("Check-in approval updated",
		zap.String("event_id", eventID),
		zap.String("approval_status", string(to)),
	)
	s.record(ctx, approvalKind(to), "check-in "+string(to), map[string]string{"event_id": eventID})
	s.publish(events.TopicApproval, ApprovalChange{EventIDs: []string{eventID}, Status: to, Updated: 1})
	return nil
}

// ApproveAll approves every pending check-in and returns the server's count
func (s *ApprovalService) ApproveAll(ctx context.Context) (int, error) {
	return s.decideAll(ctx, models.ApprovalApproved)
}

// DisapproveAll disapproves every pending check-in
func (s *ApprovalService) DisapproveAll(ctx context.Context) (int, error) {
	return s.decideAll(ctx, models.ApprovalDisapproved)
}

func (s *ApprovalService) decideAll(ctx context.Context, to models.ApprovalStatus) (int, error) {
	s.mu.RLock()
	loaded := s.loaded
	s.mu.RUnlock()

	if !loaded {
		if _, err := s.TeamToday(ctx); err != nil {
			return 0, err
		}
	}
	if !s.BulkEnabled() {
		return 0, ErrNoPendingCheckIns
	}

	var (
		updated int
		err     error
	)
	if to == models.ApprovalApproved {
		updated, err = s.team.ApproveAllCheckIns(ctx)
	} else {
		updated, err = s.team.DisapproveAllCheckIns(ctx)
	}
	if err != nil {
		s.logger.Error("Failed to bulk update check-ins",
			zap.Error(err),
			zap.String("approval_status", string(to)),
		)
		return 0, fmt.Errorf("%w: %w", ErrApprovalFailed, err)
	}

	var ids []string
	s.mu.Lock()
	for i := range s.rows {
		if CanAct(s.rows[i]) {
			s.rows[i].ApprovalStatus = to
			ids = append(ids, s.rows[i].EventID)
		}
	}
	s.mu.Unlock()

	s.logger.Info("Bulk check-in approval updated",
		zap.Int("updated", updated),
		zap.String("approval_status", string(to)),
	)
	s.record(ctx, approvalKind(to), fmt.Sprintf("%d check-ins %s", updated, to), map[string]string{
		"updated": fmt.Sprint(updated),
	})
	s.publish(events.TopicApproval, ApprovalChange{EventIDs: ids, Status: to, Updated: updated})
	return updated, nil
}

func approvalKind(status models.ApprovalStatus) string {
	if status == models.ApprovalApproved {
		return journal.KindApproval
	}
	return journal.KindDisapproval
}
