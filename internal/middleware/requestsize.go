package middleware

import (
	"net/http"
)

// DefaultMaxRequestSize bounds request bodies. Journal entries and chat
// messages are the largest payloads the API accepts.
const DefaultMaxRequestSize int64 = 256 << 10

// MaxRequestSize rejects bodies declared larger than maxBytes and caps the
// reader for bodies of unknown length. Handlers see *http.MaxBytesError on overrun.
func MaxRequestSize(maxBytes int64) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxRequestSize
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				respondErrorJSON(w, r, http.StatusRequestEntityTooLarge, "Request Entity Too Large", "request body is too large", nil)
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
