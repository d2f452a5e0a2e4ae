package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"
)

var localOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
}

// CORS admits the configured frontend origins. Local dev servers are added
// when allowLocal is set, which the router does outside production.
func CORS(allowLocal bool, origins ...string) func(http.Handler) http.Handler {
	allowed := make([]string, 0, len(origins)+len(localOrigins))
	for _, origin := range origins {
		if origin = strings.TrimRight(strings.TrimSpace(origin), "/"); origin != "" {
			allowed = append(allowed, origin)
		}
	}
	if allowLocal {
		allowed = append(allowed, localOrigins...)
	}
	return cors.New(cors.Options{
		AllowedOrigins: allowed,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id", "Content-Disposition", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}
