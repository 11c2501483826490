// Package apierr maps domain errors onto HTTP responses.
package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"school-assistant-backend/internal/ai"
	"school-assistant-backend/internal/schema"
	"school-assistant-backend/internal/session"
)

// RetryNotice is what clients see when the model call failed.
const RetryNotice = "Could not get a response from the assistant. Please try again."

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Write picks the status for err. Validation failures list their fields;
// invocation failures get a generic retryable notice and the cause is only logged.
func Write(w http.ResponseWriter, logger *zap.Logger, err error) {
	var (
		verr *schema.ValidationError
		ierr *ai.InvocationError
	)

	switch {
	case errors.As(err, &verr):
		WriteJSON(w, http.StatusBadRequest, map[string]any{
			"error":  "invalid input",
			"fields": verr.Fields,
		})

	case errors.As(err, &ierr):
		logger.Warn("invocation error",
			zap.String("capability", string(ierr.Capability)),
			zap.String("stage", string(ierr.Stage)),
			zap.Error(ierr.Err),
		)
		WriteJSON(w, http.StatusBadGateway, map[string]any{
			"error":     RetryNotice,
			"retryable": true,
		})

	case errors.Is(err, session.ErrSessionNotFound):
		http.Error(w, "session not found", http.StatusNotFound)

	case errors.Is(err, session.ErrSessionExpired):
		http.Error(w, "session expired", http.StatusGone)

	case errors.Is(err, ai.ErrUnknownCapability):
		http.Error(w, "unknown capability", http.StatusNotFound)

	default:
		logger.Error("request failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
