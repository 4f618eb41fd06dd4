package tray

import (
	"errors"
	"testing"

	"adeelasgher847/attendance-agent/internal/service"
	"adeelasgher847/attendance-agent/internal/status"

	"github.com/stretchr/testify/assert"
)

func TestBuildView(t *testing.T) {
	idle := service.SessionSnapshot{State: service.StateIdle, Display: service.StateIdle, ElapsedText: "00h 00m 00s"}
	running := service.SessionSnapshot{State: service.StateRunning, Display: service.StateRunning, ElapsedText: "00h 30m 00s"}
	stopping := service.SessionSnapshot{State: service.StateStopping, Display: service.StateIdle, ElapsedText: "00h 00m 00s"}

	cases := map[string]struct {
		snap service.SessionSnapshot
		st   status.Status
		want View
	}{
		"not checked in": {
			snap: idle,
			st:   status.Status{},
			want: View{Title: "Not checked in", Tooltip: "Check in to start your day", CanCheckIn: true},
		},
		"checked in": {
			snap: idle,
			st:   status.Status{HasCheckedInToday: true},
			want: View{Title: "Checked in", Tooltip: "Clock in to start a work session", CanCheckOut: true, CanClockIn: true},
		},
		"running": {
			snap: running,
			st:   status.Status{HasCheckedInToday: true},
			want: View{Title: "00h 30m 00s", Tooltip: "Work session running", CanCheckOut: true, CanClockOut: true},
		},
		"stopping shows idle": {
			snap: stopping,
			st:   status.Status{HasCheckedInToday: true},
			want: View{Title: "Checked in", Tooltip: "Clock in to start a work session", CanCheckOut: true, CanClockIn: true},
		},
		"checked out": {
			snap: idle,
			st:   status.Status{HasCheckedInToday: true, HasCheckedOutToday: true},
			want: View{Title: "Checked out", Tooltip: "You have checked out for today"},
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, BuildView(tc.snap, tc.st))
		})
	}
}

func TestBuildView_FailedStatus(t *testing.T) {
	v := BuildView(service.SessionSnapshot{Display: service.StateIdle}, status.Status{Err: errors.New("offline")})
	assert.True(t, v.CanCheckIn)
	assert.False(t, v.CanClockIn)
	assert.Contains(t, v.Tooltip, "status unavailable")
}
