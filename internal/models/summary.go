package models

import "time"

// DailyAttendanceSummary is derived from the event stream for one calendar day
type DailyAttendanceSummary struct {
	Date        string     `json:"date"` // YYYY-MM-DD in the viewer's location
	CheckIn     *time.Time `json:"checkIn"`
	CheckOut    *time.Time `json:"checkOut"`
	WorkedHours *float64   `json:"workedHours"`
}
