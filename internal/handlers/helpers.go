package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/tonyarciria-byte/psycomed/internal/logger"
	"github.com/tonyarciria-byte/psycomed/internal/models"
	"github.com/tonyarciria-byte/psycomed/internal/store"
	"go.uber.org/zap"
)

const maxErrorMessageLength = 200

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]any{
		"success":   true,
		"data":      data,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// sanitizeErrorMessage bounds the length of messages returned to clients
func sanitizeErrorMessage(message string) string {
	if len(message) > maxErrorMessageLength {
		return message[:maxErrorMessageLength] + "..."
	}
	return message
}

// respondJSONError sends an error JSON response with sanitized error messages
func respondJSONError(w http.ResponseWriter, status int, errorType, message string) {
	writeError(w, status, errorType, message, nil)
}

// respondValidationError sends 422 with the violated-rule messages
func respondValidationError(w http.ResponseWriter, details []string) {
	writeError(w, http.StatusUnprocessableEntity, "Unprocessable Entity", "Validation failed", details)
}

func writeError(w http.ResponseWriter, status int, errorType, message string, details []string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]any{
		"success":   false,
		"error":     errorType,
		"message":   sanitizeErrorMessage(message),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if details != nil {
		response["details"] = details
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// decodeJSON reads the request body into v. It writes the error response itself
// and returns false when the body is unusable.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			respondJSONError(w, http.StatusRequestEntityTooLarge, "Request Entity Too Large",
				fmt.Sprintf("Request body exceeds maximum size of %d bytes", maxBytesErr.Limit))
			return false
		}
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return false
	}
	return true
}

// pathDate returns the {date} route variable when it is a valid calendar date
func pathDate(w http.ResponseWriter, r *http.Request) (string, bool) {
	date := mux.Vars(r)["date"]
	if _, err := time.Parse(models.DateLayout, date); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid date format")
		return "", false
	}
	return date, true
}

// pathID parses the named uuid route variable
func pathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// handleStoreError maps store errors to responses. Persistence failures are only
// logged, since the in-memory change already took effect; the return value is
// true when a response was written and the handler must stop.
func handleStoreError(w http.ResponseWriter, msgs []string, err error, log *zap.Logger, op string) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, store.ErrValidation):
		respondValidationError(w, msgs)
	case errors.Is(err, store.ErrNotFound):
		respondJSONError(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, store.ErrAlreadyLogged):
		respondJSONError(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, store.ErrInvalidMood):
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
	default:
		log.Warn("state_not_persisted",
			zap.String("operation", op),
			zap.String("error", logger.SanitizeError(err)),
		)
		return false
	}
	return true
}

// clock returns now, or time.Now when now is nil
func clock(now func() time.Time) time.Time {
	if now == nil {
		return time.Now()
	}
	return now()
}
