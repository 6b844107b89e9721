package api

import (
	"context"
	"net/http"
	"time"
)

// handleHealth reports store connectivity and provider configuration. It
// never calls the provider; key presence is the signal.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	database := "connected"
	healthy := true
	if err := s.store.Ping(ctx); err != nil {
		database = "error: " + err.Error()
		healthy = false
	}

	geminiAPI := "configured"
	if len(s.cfg.GeminiAPIKeys) == 0 {
		geminiAPI = "missing"
		healthy = false
	}

	status := "healthy"
	code := http.StatusOK
	if !healthy {
		status = "unhealthy"
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, map[string]any{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"services": map[string]string{
			"database":   database,
			"gemini_api": geminiAPI,
		},
	})
}
