package middleware

import (
	"encoding/json"
	"net/http"
	"time"
)

// DefaultRequestTimeout covers the slowest generation path, plan creation,
// including its fallback.
const DefaultRequestTimeout = 60 * time.Second

// Timeout cancels the handler context after timeout and answers 503 with the
// error envelope. http.TimeoutHandler writes a fixed body, so the envelope
// carries neither path nor timestamp.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	body := timeoutBody()

	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, timeout, body)
	}
}

func timeoutBody() string {
	b, err := json.Marshal(ErrorResponse{
		Error:   "Request Timeout",
		Message: "the request took too long",
	})
	if err != nil {
		return "Request Timeout"
	}
	return string(b)
}
