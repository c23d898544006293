package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// healthCheckTimeout bounds each dependency probe
const healthCheckTimeout = 5 * time.Second

// Pinger is a dependency that can report its health
type Pinger interface {
	HealthCheck(ctx context.Context) error
}

// PingerFunc adapts a function to Pinger
type PingerFunc func(ctx context.Context) error

// HealthCheck calls f
func (f PingerFunc) HealthCheck(ctx context.Context) error { return f(ctx) }

type namedCheck struct {
	name   string
	pinger Pinger
}

// HealthChecker handles health check requests
type HealthChecker struct {
	checks []namedCheck
}

// NewHealthChecker creates a health checker for the database. Optional
// dependencies are added with WithCheck.
func NewHealthChecker(db Pinger) *HealthChecker {
	h := &HealthChecker{}
	return h.WithCheck("database", db)
}

// WithCheck adds a named dependency probed in extended mode. A nil pinger
// is ignored so unconfigured dependencies are not reported.
func (h *HealthChecker) WithCheck(name string, p Pinger) *HealthChecker {
	if p != nil {
		h.checks = append(h.checks, namedCheck{name: name, pinger: p})
	}
	return h
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// HealthCheck handles the /healthz endpoint
func (h *HealthChecker) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	statusCode := http.StatusOK

	// Basic mode only reports that the server is running
	if r.URL.Query().Get("mode") == "extended" {
		response.Checks = make(map[string]string, len(h.checks))
		for _, c := range h.checks {
			if err := probe(r.Context(), c.pinger); err != nil {
				response.Status = "unhealthy"
				response.Checks[c.name] = "unhealthy: " + err.Error()
			} else {
				response.Checks[c.name] = "healthy"
			}
		}
		if response.Status == "unhealthy" {
			statusCode = http.StatusServiceUnavailable
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(response)
}

func probe(ctx context.Context, p Pinger) error {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()
	return p.HealthCheck(ctx)
}
