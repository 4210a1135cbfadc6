package server

import (
	"encoding/json"
	"net/http"
	"time"

	"gastobot/internal/logger"
	"gastobot/internal/processor"
)

// handleRoot redirects the bare root to the API root.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/api/", http.StatusFound)
}

// handleHome reports that the service is up.
func (s *Server) handleHome(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "Bot Service running correctly",
	})
}

// handleHealth is the health check endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// handleProcessMessage receives a message from the connector service, runs
// it through the pipeline, and returns the classification result.
func (s *Server) handleProcessMessage(w http.ResponseWriter, r *http.Request) {
	var req processor.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Log.Warn().Err(err).Msg("Rejecting request with invalid JSON body")
		writeJSON(w, http.StatusBadRequest, processor.Response{
			Success: false,
			Error:   "No data received",
		})
		return
	}

	resp := s.processor.Process(r.Context(), req)
	writeJSON(w, statusFor(resp.ErrorKind), resp)
}

// statusFor maps a pipeline error class onto an HTTP status code.
func statusFor(kind processor.ErrorKind) int {
	switch kind {
	case processor.ErrorNone:
		return http.StatusOK
	case processor.ErrorMissingInput:
		return http.StatusBadRequest
	case processor.ErrorUserNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeJSON serializes v as the response body.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Error().Err(err).Msg("Failed to encode response")
	}
}
