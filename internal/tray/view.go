package tray

import (
	"adeelasgher847/attendance-agent/internal/service"
	"adeelasgher847/attendance-agent/internal/status"
)

// View is what the tray shows for a given engine state
type View struct {
	Title       string
	Tooltip     string
	CanCheckIn  bool
	CanCheckOut bool
	CanClockIn  bool
	CanClockOut bool
}

// BuildView derives the tray labels and enabled actions. Clock-in is only
// offered between check-in and check-out.
func BuildView(snap service.SessionSnapshot, st status.Status) View {
	checkedIn := st.HasCheckedInToday
	checkedOut := st.HasCheckedOutToday
	running := snap.State == service.StateRunning

	v := View{
		CanCheckIn:  !checkedIn,
		CanCheckOut: checkedIn && !checkedOut,
		CanClockIn:  checkedIn && !checkedOut && snap.Display == service.StateIdle,
		CanClockOut: running,
	}

	switch {
	case running:
		v.Title = snap.ElapsedText
		v.Tooltip = "Work session running"
	case checkedOut:
		v.Title = "Checked out"
		v.Tooltip = "You have checked out for today"
	case checkedIn:
		v.Title = "Checked in"
		v.Tooltip = "Clock in to start a work session"
	default:
		v.Title = "Not checked in"
		v.Tooltip = "Check in to start your day"
	}
	if st.Failed() {
		v.Tooltip += " (status unavailable)"
	}
	return v
}
