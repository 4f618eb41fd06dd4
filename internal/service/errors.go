package service

import "errors"

// Attendance engine errors
var (
	// Preconditions, resolved locally without contacting the server
	ErrNotCheckedIn      = errors.New("you have not checked in yet")
	ErrAlreadyCheckedOut = errors.New("you have already checked out today")
	ErrAlreadyClockedIn  = errors.New("a work session is already running")
	ErrNoActiveSession   = errors.New("no active work session")
	ErrSessionBusy       = errors.New("another work session change is in progress")

	// Remote failures surfaced to the caller
	ErrSubmissionFailed      = errors.New("failed to submit attendance event")
	ErrSessionMutationFailed = errors.New("failed to change work session")

	// Approval workflow
	ErrAttendanceAlreadyProcessed = errors.New("attendance has already been approved or disapproved")
	ErrNoPendingCheckIns          = errors.New("no pending check-ins")
	ErrApprovalFailed             = errors.New("failed to update approval status")
)
