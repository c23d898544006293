package middleware

import (
	"net/http"
	"strings"

	"github.com/benvon/devotional/internal/request"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

// AllowedOrigins parses FRONTEND_URL (comma-separated origins), always
// including http://localhost:3000 and dropping duplicates.
func AllowedOrigins(frontendURL string) []string {
	origins := []string{"http://localhost:3000"}
	for _, origin := range strings.Split(frontendURL, ",") {
		trimmed := strings.TrimSpace(origin)
		if trimmed == "" {
			continue
		}
		exists := false
		for _, existing := range origins {
			if existing == trimmed {
				exists = true
				break
			}
		}
		if !exists {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

// CORS handles CORS headers and OPTIONS preflight requests for the
// configured frontend origins
func CORS(frontendURL string, logger *zap.Logger) func(http.Handler) http.Handler {
	origins := AllowedOrigins(frontendURL)
	logger.Info("cors_configured", zap.Strings("allowed_origins", origins))

	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", request.DeviceIDHeader},
		AllowCredentials: true,
		MaxAge:           86400,
	})
	return c.Handler
}
