// Package summary folds raw attendance events into per-day records.
package summary

import (
	"sort"
	"time"

	"adeelasgher847/attendance-agent/internal/models"
)

const dateLayout = "2006-01-02"

type day struct {
	checkIn  *time.Time
	checkOut *time.Time
}

// Aggregate groups events by calendar day in loc and returns one summary per
// day, oldest first. Each day uses its earliest CHECK_IN and its latest
// CHECK_OUT that is later than that check-in; any other check-out is
// dropped. WorkedHours is set only when both are present.
func Aggregate(events []models.AttendanceEvent, loc *time.Location) []models.DailyAttendanceSummary {
	if loc == nil {
		loc = time.Local
	}

	days := make(map[string]*day)
	for _, ev := range events {
		key := ev.Timestamp.In(loc).Format(dateLayout)
		d, ok := days[key]
		if !ok {
			d = &day{}
			days[key] = d
		}

		ts := ev.Timestamp
		switch ev.Type {
		case models.EventCheckIn:
			if d.checkIn == nil || ts.Before(*d.checkIn) {
				d.checkIn = &ts
			}
		case models.EventCheckOut:
			if d.checkOut == nil || ts.After(*d.checkOut) {
				d.checkOut = &ts
			}
		}
	}

	keys := make([]string, 0, len(days))
	for k := range days {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	result := make([]models.DailyAttendanceSummary, 0, len(keys))
	for _, k := range keys {
		d := days[k]
		s := models.DailyAttendanceSummary{Date: k, CheckIn: d.checkIn}

		if d.checkIn != nil && d.checkOut != nil && d.checkOut.After(*d.checkIn) {
			s.CheckOut = d.checkOut
			hours := d.checkOut.Sub(*d.checkIn).Seconds() / 3600
			s.WorkedHours = &hours
		}

		result = append(result, s)
	}

	return result
}
