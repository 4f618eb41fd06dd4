package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"adeelasgher847/attendance-agent/internal/client"
	"adeelasgher847/attendance-agent/internal/location"
	"adeelasgher847/attendance-agent/internal/models"
	"adeelasgher847/attendance-agent/internal/service"
)

type Response struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Data    interface{}  `json:"data,omitempty"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func success(w http.ResponseWriter, data interface{}) {
	writeJSON(w, http.StatusOK, Response{Success: true, Data: data})
}

func created(w http.ResponseWriter, message string, data interface{}) {
	writeJSON(w, http.StatusCreated, Response{Success: true, Message: message, Data: data})
}

func writeError(w http.ResponseWriter, statusCode int, code, message string) {
	writeJSON(w, statusCode, Response{
		Success: false,
		Error:   &ErrorDetail{Code: code, Message: message},
	})
}

// handleError maps engine errors to HTTP responses
func handleError(w http.ResponseWriter, err error) {
	var authErr *client.AuthError

	switch {
	// Local preconditions
	case errors.Is(err, service.ErrNotCheckedIn):
		writeError(w, http.StatusConflict, "NOT_CHECKED_IN", err.Error())
	case errors.Is(err, service.ErrAlreadyCheckedOut):
		writeError(w, http.StatusConflict, "ALREADY_CHECKED_OUT", err.Error())
	case errors.Is(err, service.ErrAlreadyClockedIn):
		writeError(w, http.StatusConflict, "ALREADY_CLOCKED_IN", err.Error())
	case errors.Is(err, service.ErrNoActiveSession):
		writeError(w, http.StatusConflict, "NO_ACTIVE_SESSION", err.Error())
	case errors.Is(err, service.ErrSessionBusy):
		writeError(w, http.StatusConflict, "SESSION_BUSY", err.Error())
	case errors.Is(err, service.ErrAttendanceAlreadyProcessed):
		writeError(w, http.StatusConflict, "ALREADY_PROCESSED", err.Error())
	case errors.Is(err, service.ErrNoPendingCheckIns):
		writeError(w, http.StatusConflict, "NO_PENDING_CHECK_INS", err.Error())
	case errors.Is(err, models.ErrUnknownEventType):
		writeError(w, http.StatusBadRequest, "UNKNOWN_EVENT_TYPE", err.Error())

	// Location
	case errors.Is(err, location.ErrLocationDenied):
		writeError(w, http.StatusForbidden, "LOCATION_DENIED", err.Error())
	case errors.Is(err, location.ErrLocationTimeout):
		writeError(w, http.StatusGatewayTimeout, "LOCATION_TIMEOUT", err.Error())
	case errors.Is(err, location.ErrLocationUnavailable):
		writeError(w, http.StatusServiceUnavailable, "LOCATION_UNAVAILABLE", err.Error())

	// Remote
	case errors.As(err, &authErr):
		writeError(w, http.StatusUnauthorized, "BACKEND_UNAUTHORIZED", err.Error())
	case errors.Is(err, service.ErrSubmissionFailed):
		writeError(w, http.StatusBadGateway, "SUBMISSION_FAILED", err.Error())
	case errors.Is(err, service.ErrSessionMutationFailed):
		writeError(w, http.StatusBadGateway, "SESSION_MUTATION_FAILED", err.Error())
	case errors.Is(err, service.ErrApprovalFailed):
		writeError(w, http.StatusBadGateway, "APPROVAL_FAILED", err.Error())

	default:
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred")
	}
}
