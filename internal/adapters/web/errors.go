package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"pharmacy-backoffice/internal/core"
)

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	Retryable bool   `json:"retryable,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := errorResponse{
		Error:     message,
		Code:      code,
		Retryable: code == "STALE_ORDER_STATE",
		RequestID: requestIDFromContext(r.Context()),
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// writeEngineError maps the engine's error taxonomy onto HTTP statuses.
// Stale-state conflicts are flagged retryable; validation failures are not.
func writeEngineError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound), errors.Is(err, core.ErrPricingNotFound):
		writeError(w, r, err.Error(), "NOT_FOUND", http.StatusNotFound)
	case errors.Is(err, core.ErrValidation):
		writeError(w, r, err.Error(), "VALIDATION", http.StatusUnprocessableEntity)
	case errors.Is(err, core.ErrBelowMinimumOrder):
		writeError(w, r, err.Error(), "BELOW_MINIMUM_ORDER", http.StatusUnprocessableEntity)
	case errors.Is(err, core.ErrInvalidState):
		writeError(w, r, err.Error(), "INVALID_STATE", http.StatusConflict)
	case errors.Is(err, core.ErrDuplicateApproval):
		writeError(w, r, err.Error(), "DUPLICATE_APPROVAL", http.StatusConflict)
	case errors.Is(err, core.ErrStaleOrderState):
		writeError(w, r, err.Error(), "STALE_ORDER_STATE", http.StatusConflict)
	default:
		writeError(w, r, "internal server error", "INTERNAL_ERROR", http.StatusInternalServerError)
	}
}

// writeJSON writes a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
