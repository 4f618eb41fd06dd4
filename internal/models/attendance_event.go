package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// EventType is the closed vocabulary of attendance events
type EventType string

const (
	EventCheckIn  EventType = "CHECK_IN"
	EventCheckOut EventType = "CHECK_OUT"
)

// ErrUnknownEventType is returned when a raw event type cannot be mapped to
// CHECK_IN or CHECK_OUT
var ErrUnknownEventType = errors.New("unknown attendance event type")

// ParseEventType accepts the loose spellings callers send ("check-in",
// "check_in", "Check In", "CHECKIN", ...) and maps them to an EventType
func ParseEventType(raw string) (EventType, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.NewReplacer("-", "", "_", "", " ", "").Replace(s)

	switch s {
	case "checkin":
		return EventCheckIn, nil
	case "checkout":
		return EventCheckOut, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownEventType, raw)
	}
}

// ApprovalStatus is the supervisor review state of a check-in
type ApprovalStatus string

const (
	ApprovalPending     ApprovalStatus = "pending"
	ApprovalApproved    ApprovalStatus = "approved"
	ApprovalDisapproved ApprovalStatus = "disapproved"
)

// NormalizeApprovalStatus maps server labels onto ApprovalStatus. The legacy
// "rejected" label is read as disapproved and a missing label as pending.
func NormalizeApprovalStatus(raw string) ApprovalStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "approved":
		return ApprovalApproved
	case "disapproved", "rejected":
		return ApprovalDisapproved
	default:
		return ApprovalPending
	}
}

// Final reports whether no further approval action is possible
func (s ApprovalStatus) Final() bool {
	return s == ApprovalApproved || s == ApprovalDisapproved
}

func (s *ApprovalStatus) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = ApprovalPending
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("invalid approval status: %w", err)
	}
	*s = NormalizeApprovalStatus(raw)
	return nil
}

// AttendanceEvent is a single check-in or check-out as recorded by the server
type AttendanceEvent struct {
	ID             string         `json:"id"`
	UserID         string         `json:"userId"`
	Timestamp      time.Time      `json:"timestamp"`
	Type           EventType      `json:"type"`
	Latitude       *float64       `json:"latitude,omitempty"`
	Longitude      *float64       `json:"longitude,omitempty"`
	NearBoundary   *bool          `json:"nearBoundary,omitempty"`
	ApprovalStatus ApprovalStatus `json:"approvalStatus,omitempty"`
}

// CreateAttendanceEventRequest is the body of POST attendance-event
type CreateAttendanceEventRequest struct {
	Type      EventType `json:"type"`
	Latitude  *float64  `json:"latitude,omitempty"`
	Longitude *float64  `json:"longitude,omitempty"`
}

// TodaySummary is the server's view of the current user's day
type TodaySummary struct {
	CheckIn  *time.Time `json:"checkIn"`
	CheckOut *time.Time `json:"checkOut"`
}

// DisplayCheckOut returns the check-out only when it is strictly later than
// the check-in. A trailing check-out from an earlier day, or one without a
// check-in, is nil.
func (s TodaySummary) DisplayCheckOut() *time.Time {
	if s.CheckIn == nil || s.CheckOut == nil {
		return nil
	}
	if !s.CheckOut.After(*s.CheckIn) {
		return nil
	}
	return s.CheckOut
}

// CheckedIn reports whether a check-in exists for today
func (s TodaySummary) CheckedIn() bool {
	return s.CheckIn != nil
}

// CheckedOut reports whether a valid check-out follows today's check-in
func (s TodaySummary) CheckedOut() bool {
	return s.DisplayCheckOut() != nil
}
