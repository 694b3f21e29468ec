package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"boq-procurement/internal/core"
)

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// validationResponse carries every rejected line of a refused allocation so
// the caller can fix the whole draft in one pass.
type validationResponse struct {
	Error     string                `json:"error"`
	Code      string                `json:"code"`
	RequestID string                `json:"request_id,omitempty"`
	Lines     []core.LineViolations `json:"lines"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := errorResponse{
		Error:     message,
		Code:      code,
		RequestID: requestIDFromContext(r.Context()),
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// writeJSON writes a JSON response with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// writeServiceError translates core-layer errors into HTTP responses.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *core.ValidationErrors
	if errors.As(err, &verr) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(validationResponse{
			Error:     verr.Error(),
			Code:      "VALIDATION_FAILED",
			RequestID: requestIDFromContext(r.Context()),
			Lines:     verr.Lines,
		})
		return
	}

	var ierr *core.IntegrityError
	switch {
	case errors.As(err, &ierr):
		writeError(w, r, ierr.Detail, "BAD_REQUEST", http.StatusBadRequest)
	case errors.Is(err, core.ErrForbidden):
		writeError(w, r, "admin role required", "FORBIDDEN", http.StatusForbidden)
	case errors.Is(err, core.ErrInvalidCredentials):
		writeError(w, r, "invalid username or password", "UNAUTHORIZED", http.StatusUnauthorized)
	default:
		writeError(w, r, "internal server error", "INTERNAL_ERROR", http.StatusInternalServerError)
	}
}

// decodeJSON parses the request body into v, writing a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, r, "invalid JSON body", "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}
