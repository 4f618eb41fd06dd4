// Package tray shows the session clock in the system tray and offers the
// attendance actions from its menu.
package tray

import (
	"context"
	"sync"
	"time"

	"adeelasgher847/attendance-agent/internal/events"
	"adeelasgher847/attendance-agent/internal/models"
	"adeelasgher847/attendance-agent/internal/service"
	"adeelasgher847/attendance-agent/internal/status"
	"adeelasgher847/attendance-agent/internal/timer"

	"github.com/getlantern/systray"
	"go.uber.org/zap"
)

type Attendance interface {
	CheckIn(ctx context.Context) (models.AttendanceEvent, error)
	CheckOut(ctx context.Context) (models.AttendanceEvent, error)
}

type Sessions interface {
	ClockIn(ctx context.Context) (service.SessionSnapshot, error)
	ClockOut(ctx context.Context) (service.SessionSnapshot, error)
	Snapshot() service.SessionSnapshot
	Timer() *timer.SessionTimer
}

type StatusReader interface {
	Get(ctx context.Context, force bool) status.Status
}

// BrowserOpener is satisfied by platform.Platform
type BrowserOpener interface {
	OpenBrowser(url string) error
}

type Tray struct {
	attendance   Attendance
	sessions     Sessions
	status       StatusReader
	hub          *events.Hub
	browser      BrowserOpener
	dashboardURL string
	logger       *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	tickCancel context.CancelFunc
	checkIn    *systray.MenuItem
	checkOut   *systray.MenuItem
	clockIn    *systray.MenuItem
	clockOut   *systray.MenuItem
	dashboard  *systray.MenuItem
	quit       *systray.MenuItem
}

func New(
	attendance Attendance,
	sessions Sessions,
	status StatusReader,
	hub *events.Hub,
	browser BrowserOpener,
	dashboardURL string,
	logger *zap.Logger,
) *Tray {
	ctx, cancel := context.WithCancel(context.Background())
	return &Tray{
		attendance:   attendance,
		sessions:     sessions,
		status:       status,
		hub:          hub,
		browser:      browser,
		dashboardURL: dashboardURL,
		logger:       logger,
		ctx:          ctx,
		cancel:       cancel,
	}
}

// Run blocks until Quit. It must be called from the main goroutine.
func (t *Tray) Run(onExit func()) {
	systray.Run(t.onReady, func() {
		t.cancel()
		if onExit != nil {
			onExit()
		}
	})
}

// Quit closes the tray and makes Run return
func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetTitle("Attendance")
	systray.SetTooltip("Attendance agent")

	t.checkIn = systray.AddMenuItem("Check in", "Record today's check-in")
	t.checkOut = systray.AddMenuItem("Check out", "Record today's check-out")
	systray.AddSeparator()
	t.clockIn = systray.AddMenuItem("Clock in", "Start a work session")
	t.clockOut = systray.AddMenuItem("Clock out", "Stop the work session")
	systray.AddSeparator()
	t.dashboard = systray.AddMenuItem("Open dashboard", "Open the attendance dashboard")
	if t.dashboardURL == "" {
		t.dashboard.Hide()
	}
	t.quit = systray.AddMenuItem("Quit", "Quit the agent")

	t.render(t.status.Get(t.ctx, false))

	go t.watch()
	go t.handleClicks()
}

// watch re-renders on every engine notification
func (t *Tray) watch() {
	ch, cleanup := t.hub.Subscribe(events.All)
	defer cleanup()

	for {
		select {
		case <-t.ctx.Done():
			return
		case _, ok := <-ch:
			if !ok {
				return
			}
			t.render(t.status.Get(t.ctx, false))
		}
	}
}

func (t *Tray) handleClicks() {
	for {
		select {
		case <-t.ctx.Done():
			return
		case <-t.checkIn.ClickedCh:
			t.act("check in", func(ctx context.Context) error {
				_, err := t.attendance.CheckIn(ctx)
				return err
			})
		case <-t.checkOut.ClickedCh:
			t.act("check out", func(ctx context.Context) error {
				_, err := t.attendance.CheckOut(ctx)
				return err
			})
		case <-t.clockIn.ClickedCh:
			t.act("clock in", func(ctx context.Context) error {
				_, err := t.sessions.ClockIn(ctx)
				return err
			})
		case <-t.clockOut.ClickedCh:
			t.act("clock out", func(ctx context.Context) error {
				_, err := t.sessions.ClockOut(ctx)
				return err
			})
		case <-t.dashboard.ClickedCh:
			if err := t.browser.OpenBrowser(t.dashboardURL); err != nil {
				t.logger.Warn("Failed to open dashboard", zap.Error(err))
			}
		case <-t.quit.ClickedCh:
			systray.Quit()
			return
		}
	}
}

func (t *Tray) act(name string, fn func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(t.ctx, 90*time.Second)
	defer cancel()

	if err := fn(ctx); err != nil {
		t.logger.Warn("Tray action failed", zap.String("action", name), zap.Error(err))
		systray.SetTooltip("Could not " + name + ": " + err.Error())
	}
	t.render(t.status.Get(t.ctx, false))
}

// render applies the view and starts or stops the per-second title updates
func (t *Tray) render(st status.Status) {
	snap := t.sessions.Snapshot()
	v := BuildView(snap, st)

	systray.SetTitle(v.Title)
	systray.SetTooltip(v.Tooltip)
	setEnabled(t.checkIn, v.CanCheckIn)
	setEnabled(t.checkOut, v.CanCheckOut)
	setEnabled(t.clockIn, v.CanClockIn)
	setEnabled(t.clockOut, v.CanClockOut)

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.tickCancel != nil {
		t.tickCancel()
		t.tickCancel = nil
	}
	if tm := t.sessions.Timer(); tm != nil {
		ctx, cancel := context.WithCancel(t.ctx)
		t.tickCancel = cancel
		go tm.Run(ctx, func(elapsed time.Duration) {
			systray.SetTitle(timer.Format(elapsed))
		})
	}
}

func setEnabled(item *systray.MenuItem, enabled bool) {
	if enabled {
		item.Enable()
	} else {
		item.Disable()
	}
}
