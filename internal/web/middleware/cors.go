package middleware

import (
	"net/http"
	"strings"

	"github.com/rs/cors"
)

// CORS allows browser clients from allowedOrigins to call the API with
// credentials. A single "*" entry allows any origin without credentials.
// Preflight requests are answered here with 204.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	allowAll := len(allowedOrigins) == 1 && allowedOrigins[0] == "*"
	origins := make([]string, 0, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins = append(origins, strings.TrimSuffix(strings.TrimSpace(o), "/"))
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-Key", "X-Request-ID"},
		AllowCredentials: !allowAll,
		MaxAge:           300,
	})
	return c.Handler
}
