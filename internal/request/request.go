package request

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const deviceContextKey contextKey = "device"

// DeviceIDHeader carries the caller's device identifier
const DeviceIDHeader = "X-Device-ID"

// MaxDeviceIDLength bounds accepted device identifiers
const MaxDeviceIDLength = 128

// DeviceContextKey returns the context key used for the device ID. Exposed for tests that inject non-string values.
func DeviceContextKey() contextKey { return deviceContextKey }

// ClientIP extracts the client IP from the request, respecting X-Forwarded-For and X-Real-IP.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	return r.RemoteAddr
}

// ValidDeviceID reports whether id is non-empty, bounded and limited to
// letters, digits, '-' and '_'.
func ValidDeviceID(id string) bool {
	if id == "" || len(id) > MaxDeviceIDLength {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}

// WithDeviceID returns a context with the device ID attached.
func WithDeviceID(ctx context.Context, deviceID string) context.Context {
	return context.WithValue(ctx, deviceContextKey, deviceID)
}

// DeviceIDFromContext returns the device ID from the request context, or "" if missing or wrong type.
func DeviceIDFromContext(r *http.Request) string {
	id, _ := r.Context().Value(deviceContextKey).(string)
	return id
}
