package middleware

import (
	"net/http"
	"time"

	logpkg "github.com/benvon/devotional/internal/logger"
	"github.com/benvon/devotional/internal/request"
	"github.com/benvon/devotional/internal/services/ai"
	"go.uber.org/zap"
)

// Logging creates logging middleware
func Logging(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Wrap ResponseWriter to capture status code
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", logpkg.SanitizePath(r.URL.Path)),
				zap.Int("status_code", wrapped.statusCode),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
			}
			// DeviceID runs further in, so the header is read directly. Only
			// hashes reach the log.
			if id := r.Header.Get(request.DeviceIDHeader); request.ValidDeviceID(id) {
				fields = append(fields, zap.String("device", ai.HashDeviceID(id)))
			}
			logger.Info("http_request", fields...)
		})
	}
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// DeviceID requires a well-formed X-Device-ID header and attaches it to the
// request context. Requests without one are rejected with 400.
func DeviceID(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(request.DeviceIDHeader)
			if !request.ValidDeviceID(id) {
				respondErrorJSON(w, r, http.StatusBadRequest, "Bad Request", "missing or invalid "+request.DeviceIDHeader+" header", logger)
				return
			}
			ctx := request.WithDeviceID(r.Context(), id)
			ctx = ai.WithDeviceID(ctx, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
