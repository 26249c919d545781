package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"audittrack-engine/internal/audit"
	"audittrack-engine/internal/tracker"
)

// APIError is the body of every non-2xx response.
type APIError struct {
	Error struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"request_id,omitempty"`
		Details   any    `json:"details,omitempty"`
	} `json:"error"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeErrorDetails(w, r, status, code, message, nil)
}

func writeErrorDetails(w http.ResponseWriter, r *http.Request, status int, code, message string, details any) {
	var e APIError
	e.Error.Code = code
	e.Error.Message = message
	e.Error.RequestID = RequestIDFrom(r.Context())
	e.Error.Details = details
	WriteJSON(w, status, e)
}

// writeNotConfirmed returns the question the client must put to the user
// before retrying with ?confirm=true.
func writeNotConfirmed(w http.ResponseWriter, r *http.Request, prompt string) {
	WriteError(w, r, http.StatusPreconditionRequired, "confirmation_required", prompt)
}

// writeTrackerError maps tracker and audit errors onto the envelope.
// ErrUnsynced means the edit is applied locally and will be retried.
func writeTrackerError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, tracker.ErrNotFound):
		WriteError(w, r, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, audit.ErrUnknownDocument):
		WriteError(w, r, http.StatusNotFound, "unknown_document", err.Error())
	case errors.Is(err, tracker.ErrUnsynced):
		WriteError(w, r, http.StatusBadGateway, "store_unavailable", err.Error())
	case errors.Is(err, tracker.ErrStopped):
		WriteError(w, r, http.StatusServiceUnavailable, "unavailable", err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		WriteError(w, r, http.StatusServiceUnavailable, "canceled", err.Error())
	default:
		WriteError(w, r, http.StatusBadRequest, "invalid_request", err.Error())
	}
}
