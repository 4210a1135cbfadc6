package server

import (
	"net/http"

	"gastobot/internal/logger"
)

// requireAuthKey authenticates requests using the static API key. The
// Authorization header must carry the key either bare or with a Bearer
// prefix. Health endpoints are not behind this check.
func (s *Server) requireAuthKey(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")

		if authHeader == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"error": "Missing Authorization header",
			})
			return
		}

		if authHeader != s.authKey && authHeader != "Bearer "+s.authKey {
			logger.Log.Warn().Str("remote", r.RemoteAddr).Msg("Rejected request with invalid auth key")
			writeJSON(w, http.StatusForbidden, map[string]string{
				"error": "Invalid Auth key",
			})
			return
		}

		next(w, r)
	}
}
