package models

import "time"

// TeamCheckInRow joins a team member with one of today's attendance events
type TeamCheckInRow struct {
	EventID        string         `json:"id"`
	UserID         string         `json:"userId"`
	EmployeeName   string         `json:"name"`
	Department     *string        `json:"department,omitempty"`
	Timestamp      time.Time      `json:"timestamp"`
	Type           EventType      `json:"type"`
	Latitude       *float64       `json:"latitude,omitempty"`
	Longitude      *float64       `json:"longitude,omitempty"`
	NearBoundary   *bool          `json:"nearBoundary,omitempty"`
	ApprovalStatus ApprovalStatus `json:"approvalStatus"`
}

// TeamAttendanceResponse is the body of GET team-attendance-today
type TeamAttendanceResponse struct {
	Items []TeamCheckInRow `json:"items"`
}

// BulkUpdateResponse is the body returned by the approve-all and
// disapprove-all commands
type BulkUpdateResponse struct {
	Updated int `json:"updated"`
}
