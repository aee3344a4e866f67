package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/JonMunkholm/resale/internal/config"
	"github.com/JonMunkholm/resale/internal/core"
)

// authError matches the web package's error body so clients parse one shape.
type authError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action"`
	Code    string `json:"code"`
}

// APIKeyAuth returns middleware that validates the X-API-Key header against
// configured keys. Health checks and CORS preflights always pass.
// If RequireAPIKey is false, all requests pass through.
func APIKeyAuth(cfg config.SecurityConfig, publicPaths ...string) func(http.Handler) http.Handler {
	public := make(map[string]bool, len(publicPaths))
	for _, p := range publicPaths {
		public[p] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.RequireAPIKey || r.Method == http.MethodOptions || public[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			apiKey := r.Header.Get("X-API-Key")
			if apiKey == "" {
				slog.Warn("auth: missing API key",
					"path", r.URL.Path,
					"method", r.Method,
					"remote_addr", r.RemoteAddr,
				)
				rejectAuth(w, http.StatusUnauthorized, "missing API key")
				return
			}

			if !isValidAPIKey(apiKey, cfg.APIKeys) {
				slog.Warn("auth: invalid API key",
					"path", r.URL.Path,
					"method", r.Method,
					"remote_addr", r.RemoteAddr,
				)
				rejectAuth(w, http.StatusForbidden, "invalid API key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func rejectAuth(w http.ResponseWriter, status int, reason string) {
	msg := core.MapError(errors.New(reason))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(authError{
		Error:   reason,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

// isValidAPIKey checks the key against every configured key in constant
// time, regardless of which key matches.
func isValidAPIKey(key string, validKeys []string) bool {
	valid := 0
	for _, validKey := range validKeys {
		valid |= subtle.ConstantTimeCompare([]byte(key), []byte(validKey))
	}
	return valid == 1
}
