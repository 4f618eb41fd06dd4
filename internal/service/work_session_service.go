package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"adeelasgher847/attendance-agent/internal/clock"
	"adeelasgher847/attendance-agent/internal/events"
	"adeelasgher847/attendance-agent/internal/journal"
	"adeelasgher847/attendance-agent/internal/models"
	"adeelasgher847/attendance-agent/internal/timer"

	"go.uber.org/zap"
)

// SessionState is the local state of the work session
type SessionState string

const (
	StateIdle    SessionState = "idle"
	StateRunning SessionState = "running"
	// StateStopping is the pending clock-out intent. It displays as idle and
	// is replaced by whatever the next authoritative refresh reports.
	StateStopping SessionState = "stopping"
)

// Display maps the pending intent onto what the user sees
func (s SessionState) Display() SessionState {
	if s == StateStopping {
		return StateIdle
	}
	return s
}

// SessionSnapshot is a consistent copy of the work session state
type SessionSnapshot struct {
	State          SessionState        `json:"state"`
	Display        SessionState        `json:"display"`
	Session        *models.WorkSession `json:"session,omitempty"`
	Elapsed        time.Duration       `json:"-"`
	ElapsedSeconds int64               `json:"elapsedSeconds"`
	ElapsedText    string              `json:"elapsedText"`
}

// AttendanceChange is published on events.TopicAttendance
type AttendanceChange struct {
	Type    models.EventType `json:"type"`
	EventID string           `json:"eventId"`
}

// WorkSessionService orchestrates clock-in and clock-out of the timed work
// session and reconciles it with the server
type WorkSessionService struct {
	sessions SessionAPI
	status   StatusCache
	clock    clock.Clock
	ceiling  time.Duration
	userID   string
	activity
	logger *zap.Logger

	mu           sync.Mutex
	state        SessionState
	session      *models.WorkSession
	timer        *timer.SessionTimer
	generation   uint64
	starting     bool
	stopInFlight bool
}

// NewWorkSessionService creates a new work session service. journal and hub
// may be nil.
func NewWorkSessionService(
	sessions SessionAPI,
	status StatusCache,
	clk clock.Clock,
	maxInitialElapsed time.Duration,
	userID string,
	journal Recorder,
	hub *events.Hub,
	logger *zap.Logger,
) *WorkSessionService {
	return &WorkSessionService{
		sessions: sessions,
		status:   status,
		clock:    clk,
		ceiling:  maxInitialElapsed,
		userID:   userID,
		activity: activity{journal: journal, hub: hub, logger: logger},
		logger:   logger,
		state:    StateIdle,
	}
}

// ClockIn starts a work session. It fails with ErrNotCheckedIn, without any
// session call, unless the attendance status shows a check-in today.
func (s *WorkSessionService) ClockIn(ctx context.Context) (SessionSnapshot, error) {
	s.mu.Lock()
	switch {
	case s.state == StateRunning:
		s.mu.Unlock()
		return s.Snapshot(), ErrAlreadyClockedIn
	case s.starting || s.stopInFlight:
		s.mu.Unlock()
		return s.Snapshot(), ErrSessionBusy
	}
	s.starting = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.starting = false
		s.mu.Unlock()
	}()

	st := s.status.Get(ctx, false)
	if !st.HasCheckedInToday {
		s.logger.Info("Clock-in refused, not checked in", zap.String("user_id", s.userID))
		return s.Snapshot(), ErrNotCheckedIn
	}
	if st.HasCheckedOutToday {
		s.logger.Info("Clock-in refused, already checked out", zap.String("user_id", s.userID))
		return s.Snapshot(), ErrAlreadyCheckedOut
	}

	session, err := s.sessions.StartSession(ctx)
	if err != nil {
		s.logger.Error("Failed to start work session", zap.Error(err))
		// The server may have opened the session anyway
		if _, rerr := s.reconcile(ctx, false); rerr != nil {
			s.logger.Warn("Reconcile after failed clock-in failed", zap.Error(rerr))
		}
		return s.Snapshot(), fmt.Errorf("%w: %w", ErrSessionMutationFailed, err)
	}

	s.mu.Lock()
	s.generation++
	s.adoptLocked(&session)
	s.mu.Unlock()

	s.logger.Info("Clocked in",
		zap.String("session_id", session.ID),
		zap.Time("start_time", session.StartTime),
	)
	s.record(ctx, journal.KindClockIn, "clocked in", map[string]string{
		"session_id": session.ID,
		"start_time": session.StartTime.Format(time.RFC3339),
	})

	snap := s.Snapshot()
	s.publish(events.TopicSession, snap)
	return snap, nil
}

// ClockOut stops the running session. The local session is cleared before
// the stop command is sent. If the command fails the clear is kept and the
// state is re-read from the server.
func (s *WorkSessionService) ClockOut(ctx context.Context) (SessionSnapshot, error) {
	s.mu.Lock()
	if s.state != StateRunning {
		s.mu.Unlock()
		return s.Snapshot(), ErrNoActiveSession
	}
	s.generation++
	sessionID := s.session.ID
	s.state = StateStopping
	s.timer = nil
	s.stopInFlight = true
	s.mu.Unlock()

	s.publish(events.TopicSession, s.Snapshot())

	err := s.sessions.EndSession(ctx)

	s.mu.Lock()
	s.stopInFlight = false
	s.generation++
	if err == nil && s.state == StateStopping {
		s.clearLocked()
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("Failed to end work session, reconciling with server",
			zap.Error(err),
			zap.String("session_id", sessionID),
		)
		if _, rerr := s.reconcile(ctx, true); rerr != nil {
			s.logger.Warn("Reconcile after failed clock-out failed", zap.Error(rerr))
		}
		snap := s.Snapshot()
		s.publish(events.TopicSession, snap)
		return snap, fmt.Errorf("%w: %w", ErrSessionMutationFailed, err)
	}

	s.logger.Info("Clocked out", zap.String("session_id", sessionID))
	s.record(ctx, journal.KindClockOut, "clocked out", map[string]string{"session_id": sessionID})

	snap := s.Snapshot()
	s.publish(events.TopicSession, snap)
	return snap, nil
}

// Refresh re-reads the session and attendance status from the server. It is
// also the recovery path on startup.
func (s *WorkSessionService) Refresh(ctx context.Context) (SessionSnapshot, error) {
	return s.reconcile(ctx, false)
}

// HandleAttendanceChange reacts to an accepted check-in or check-out. A
// check-out ends any active session.
func (s *WorkSessionService) HandleAttendanceChange(ctx context.Context) (SessionSnapshot, error) {
	return s.reconcile(ctx, false)
}

// Watch calls HandleAttendanceChange for every attendance notification on
// hub until ctx is done
func (s *WorkSessionService) Watch(ctx context.Context, hub *events.Hub) {
	ch, cleanup := hub.Subscribe(events.TopicAttendance)
	defer cleanup()

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-ch:
			if !ok {
				return
			}
			if _, err := s.HandleAttendanceChange(ctx); err != nil {
				s.logger.Warn("Failed to reconcile after attendance change", zap.Error(err))
			}
		}
	}
}

// reconcile adopts the server's view unless a local mutation happened while
// it was being read
func (s *WorkSessionService) reconcile(ctx context.Context, forceStatus bool) (SessionSnapshot, error) {
	s.mu.Lock()
	gen := s.generation
	stopping := s.stopInFlight
	s.mu.Unlock()

	if stopping {
		return s.Snapshot(), nil
	}

	st := s.status.Get(ctx, forceStatus)

	sessions, err := s.sessions.ActiveSessions(ctx, s.userID)
	if err != nil {
		s.logger.Warn("Failed to query active session", zap.Error(err))
		return s.Snapshot(), fmt.Errorf("failed to query active session: %w", err)
	}
	canonical := firstOpen(sessions)
	if len(sessions) > 1 {
		s.logger.Warn("Server reported several open sessions, using the first",
			zap.Int("count", len(sessions)),
		)
	}

	s.mu.Lock()
	if s.generation != gen || s.stopInFlight {
		s.mu.Unlock()
		s.logger.Debug("Discarding stale session refresh")
		return s.Snapshot(), nil
	}

	if st.HasCheckedOutToday && (canonical != nil || s.state != StateIdle) {
		s.mu.Unlock()
		return s.terminate(ctx, canonical)
	}

	changed := s.applyLocked(canonical)
	s.mu.Unlock()

	snap := s.Snapshot()
	if changed {
		s.publish(events.TopicSession, snap)
	}
	return snap, nil
}

// terminate ends the session because the user checked out. Local state is
// cleared first; the stop command is best effort.
func (s *WorkSessionService) terminate(ctx context.Context, remote *models.WorkSession) (SessionSnapshot, error) {
	s.mu.Lock()
	sessionID := ""
	if s.session != nil {
		sessionID = s.session.ID
	} else if remote != nil {
		sessionID = remote.ID
	}
	s.generation++
	s.clearLocked()
	s.stopInFlight = remote != nil
	s.mu.Unlock()

	if remote != nil {
		err := s.sessions.EndSession(ctx)
		s.mu.Lock()
		s.stopInFlight = false
		s.generation++
		s.mu.Unlock()
		if err != nil {
			s.logger.Warn("Failed to end work session after check-out", zap.Error(err), zap.String("session_id", sessionID))
		}
	}

	s.logger.Info("Work session ended by check-out", zap.String("session_id", sessionID))
	s.record(ctx, journal.KindImplicitClockOut, "session ended by check-out", map[string]string{"session_id": sessionID})

	snap := s.Snapshot()
	s.publish(events.TopicSession, snap)
	return snap, nil
}

// applyLocked makes the local state match the canonical server session and
// reports whether anything changed. A session that is already running keeps
// its timer.
func (s *WorkSessionService) applyLocked(canonical *models.WorkSession) bool {
	if canonical == nil {
		if s.state == StateIdle {
			return false
		}
		s.clearLocked()
		return true
	}
	if s.state == StateRunning && s.session != nil && s.session.ID == canonical.ID {
		return false
	}
	s.adoptLocked(canonical)
	return true
}

func (s *WorkSessionService) adoptLocked(session *models.WorkSession) {
	cp := *session
	s.state = StateRunning
	s.session = &cp
	s.timer = timer.New(cp.StartTime, s.clock, s.ceiling)
}

func (s *WorkSessionService) clearLocked() {
	s.state = StateIdle
	s.session = nil
	s.timer = nil
}

// Snapshot returns the current state. Elapsed is zero unless running.
func (s *WorkSessionService) Snapshot() SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := SessionSnapshot{
		State:   s.state,
		Display: s.state.Display(),
	}
	if s.session != nil && s.state == StateRunning {
		cp := *s.session
		snap.Session = &cp
	}
	if s.timer != nil && s.state == StateRunning {
		snap.Elapsed = s.timer.Elapsed()
	}
	snap.ElapsedSeconds = int64(snap.Elapsed / time.Second)
	snap.ElapsedText = timer.Format(snap.Elapsed)
	return snap
}

// Timer returns the running session's timer, or nil when idle
func (s *WorkSessionService) Timer() *timer.SessionTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateRunning {
		return nil
	}
	return s.timer
}

func firstOpen(sessions []models.WorkSession) *models.WorkSession {
	for i := range sessions {
		if sessions[i].Active() {
			return &sessions[i]
		}
	}
	return nil
}
