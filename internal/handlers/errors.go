package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"kpssquiz/internal/auth"
)

// ErrMessageInternal is the generic message for 500 responses. Do not expose internal details to clients.
const ErrMessageInternal = "internal server error"

// JSONError sends a JSON error response with a single "error" field.
func JSONError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// JSONValidationError sends a JSON error response with "error" and optional "fields" for field-level details.
// status is typically http.StatusBadRequest (400).
func JSONValidationError(w http.ResponseWriter, message string, fields map[string]string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	out := map[string]interface{}{"error": message}
	if len(fields) > 0 {
		out["fields"] = fields
	}
	json.NewEncoder(w).Encode(out)
}

// WriteServiceError maps the account service's error taxonomy to HTTP.
// Anything outside the taxonomy is a storage/internal fault: logged loudly,
// reported generically.
func WriteServiceError(w http.ResponseWriter, err error) {
	var limited *auth.RateLimitedError
	if errors.As(err, &limited) {
		w.Header().Set("Retry-After", strconv.Itoa(int(limited.RetryAfter.Seconds())))
		JSONError(w, limited.Error(), http.StatusTooManyRequests)
		return
	}

	switch {
	case errors.Is(err, auth.ErrDuplicateUsername):
		JSONError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, auth.ErrWeakPassword):
		JSONError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, auth.ErrInvalidCredentials):
		JSONError(w, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, auth.ErrWrongPassword):
		JSONError(w, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, auth.ErrNotFound):
		JSONError(w, err.Error(), http.StatusNotFound)
	default:
		slog.Error("account service failure", "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
	}
}

func isRateLimited(err error) bool {
	return errors.Is(err, auth.ErrRateLimited)
}
