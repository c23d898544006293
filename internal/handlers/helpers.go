package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/benvon/devotional/internal/devotional"
	"github.com/benvon/devotional/internal/onboarding"
	"github.com/benvon/devotional/internal/request"
	"github.com/benvon/devotional/internal/restoration"
	"github.com/benvon/devotional/internal/session"
	"github.com/benvon/devotional/internal/validation"
	"go.uber.org/zap"
)

// maxErrorMessageLength bounds messages echoed back to clients
const maxErrorMessageLength = 200

// Sessions hands out the per-device session
type Sessions interface {
	Get(deviceID string) (*session.Session, error)
}

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

// sanitizeErrorMessage trims messages so internal detail does not leak
func sanitizeErrorMessage(message string) string {
	if len(message) > maxErrorMessageLength {
		return message[:maxErrorMessageLength] + "..."
	}
	return message
}

// respondJSONError sends an error JSON response with sanitized error messages
func respondJSONError(w http.ResponseWriter, status int, errorType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]any{
		"success":   false,
		"error":     errorType,
		"message":   sanitizeErrorMessage(message),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// decodeAndValidate reads a JSON body into v and runs struct validation.
// It writes the 400 response itself and reports whether decoding succeeded.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		msg := "Invalid request body"
		if errors.Is(err, io.EOF) {
			msg = "Request body is required"
		}
		respondJSONError(w, http.StatusBadRequest, "Bad Request", msg)
		return false
	}
	if err := validation.Validate.Struct(v); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request",
			"Validation failed: "+strings.Join(validation.FieldErrors(err), ", "))
		return false
	}
	return true
}

// deviceSession resolves the caller's session. On failure the response has
// been written and nil is returned.
func deviceSession(w http.ResponseWriter, r *http.Request, sessions Sessions) *session.Session {
	deviceID := request.DeviceIDFromContext(r)
	if deviceID == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Device ID not found in context")
		return nil
	}
	s, err := sessions.Get(deviceID)
	if err != nil {
		respondJSONError(w, http.StatusServiceUnavailable, "Service Unavailable", "Server is shutting down")
		return nil
	}
	return s
}

// statusFor maps domain errors to an HTTP status and error label
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, session.ErrNoProfile), errors.Is(err, session.ErrNoPlan):
		return http.StatusNotFound, "Not Found"
	case errors.Is(err, restoration.ErrDayLocked):
		return http.StatusForbidden, "Forbidden"
	case errors.Is(err, session.ErrAlreadyOnboarded),
		errors.Is(err, session.ErrDevotionalDone),
		errors.Is(err, session.ErrSuperseded),
		errors.Is(err, session.ErrPlanExists),
		errors.Is(err, session.ErrPlanPending),
		errors.Is(err, devotional.ErrNotViewing):
		return http.StatusConflict, "Conflict"
	case errors.Is(err, restoration.ErrEmptySelection),
		errors.Is(err, restoration.ErrUnknownArea),
		errors.Is(err, restoration.ErrDayOutOfRange),
		errors.Is(err, onboarding.ErrUnknownStep),
		errors.Is(err, onboarding.ErrInvalidAnswer):
		return http.StatusBadRequest, "Bad Request"
	case errors.Is(err, session.ErrClosed):
		return http.StatusServiceUnavailable, "Service Unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "Gateway Timeout"
	default:
		return http.StatusInternalServerError, "Internal Server Error"
	}
}

// respondDomainError writes the mapped status for err. Unmapped errors are
// logged and reported without detail.
func respondDomainError(w http.ResponseWriter, logger *zap.Logger, op string, err error) {
	status, label := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error(op+"_failed", zap.Error(err))
		respondJSONError(w, status, label, fmt.Sprintf("Failed to %s", strings.ReplaceAll(op, "_", " ")))
		return
	}
	respondJSONError(w, status, label, err.Error())
}
