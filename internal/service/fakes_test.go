package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"adeelasgher847/attendance-agent/internal/clock"
	"adeelasgher847/attendance-agent/internal/location"
	"adeelasgher847/attendance-agent/internal/models"
	"adeelasgher847/attendance-agent/internal/status"

	"go.uber.org/zap"
)

var errBoom = errors.New("boom")

func at(h, m int) time.Time {
	return time.Date(2026, 3, 2, h, m, 0, 0, time.UTC)
}

func ptr(t time.Time) *time.Time {
	return &t
}

type fakeAttendance struct {
	mu          sync.Mutex
	summary     models.TodaySummary
	summaryErr  error
	summaryHits int
	createErr   error
	created     []models.CreateAttendanceEventRequest
	events      []models.AttendanceEvent
	listFrom    time.Time
	listTo      time.Time
}

func (f *fakeAttendance) TodaySummary(ctx context.Context, userID string) (models.TodaySummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.summaryHits++
	return f.summary, f.summaryErr
}

func (f *fakeAttendance) CreateAttendanceEvent(ctx context.Context, req models.CreateAttendanceEventRequest) (models.AttendanceEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return models.AttendanceEvent{}, f.createErr
	}
	f.created = append(f.created, req)
	return models.AttendanceEvent{ID: "e-" + string(req.Type), Type: req.Type, Timestamp: at(9, 0)}, nil
}

func (f *fakeAttendance) ListAttendanceEvents(ctx context.Context, userID string, from, to time.Time) ([]models.AttendanceEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listFrom, f.listTo = from, to
	return f.events, nil
}

func (f *fakeAttendance) setSummary(s models.TodaySummary) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.summary = s
}

func (f *fakeAttendance) hits() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.summaryHits
}

type fakeSessions struct {
	mu         sync.Mutex
	active     []models.WorkSession
	activeErr  error
	activeHits int
	start      models.WorkSession
	startErr   error
	startHits  int
	endErr     error
	endHits    int
	// hooks run before the fake answers, outside the lock
	activeHook func()
	endHook    func()
}

func (f *fakeSessions) ActiveSessions(ctx context.Context, userID string) ([]models.WorkSession, error) {
	f.mu.Lock()
	hook := f.activeHook
	f.activeHook = nil
	f.mu.Unlock()
	if hook != nil {
		hook()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.activeHits++
	return append([]models.WorkSession(nil), f.active...), f.activeErr
}

func (f *fakeSessions) StartSession(ctx context.Context) (models.WorkSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.startHits++
	if f.startErr != nil {
		return models.WorkSession{}, f.startErr
	}
	f.active = []models.WorkSession{f.start}
	return f.start, nil
}

func (f *fakeSessions) EndSession(ctx context.Context) error {
	f.mu.Lock()
	hook := f.endHook
	f.endHook = nil
	f.mu.Unlock()
	if hook != nil {
		hook()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.endHits++
	if f.endErr != nil {
		return f.endErr
	}
	f.active = nil
	return nil
}

func (f *fakeSessions) counts() (active, start, end int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.activeHits, f.startHits, f.endHits
}

type fakeRecorder struct {
	mu    sync.Mutex
	kinds []string
	attrs []map[string]string
}

func (f *fakeRecorder) Record(ctx context.Context, kind, message string, attrs map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.kinds = append(f.kinds, kind)
	f.attrs = append(f.attrs, attrs)
	return nil
}

func (f *fakeRecorder) recorded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.kinds...)
}

type fakeLocator struct {
	pos   location.Position
	err   error
	calls int
}

func (f *fakeLocator) Acquire(ctx context.Context) (location.Position, error) {
	f.calls++
	return f.pos, f.err
}

type fixture struct {
	clk        *clock.Manual
	attendance *fakeAttendance
	sessions   *fakeSessions
	cache      *status.Cache
	recorder   *fakeRecorder
}

func newFixture() *fixture {
	clk := clock.NewManual(at(9, 5))
	attendance := &fakeAttendance{summary: models.TodaySummary{CheckIn: ptr(at(9, 0))}}
	return &fixture{
		clk:        clk,
		attendance: attendance,
		sessions: &fakeSessions{
			start: models.WorkSession{ID: "s-1", StartTime: at(9, 5)},
		},
		cache:    status.NewCache(attendance, "u-1", nil, clk, zap.NewNop()),
		recorder: &fakeRecorder{},
	}
}
