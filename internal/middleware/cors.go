package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORSMiddleware configures cross-origin access for the catalog API.
// The API is unauthenticated, so no credential or auth headers are
// allowed through; rate limit headers are exposed so browser clients
// can back off.
func CORSMiddleware(allowedOrigins []string, isDevelopment bool) func(http.Handler) http.Handler {
	// In development, allow all origins
	if isDevelopment {
		allowedOrigins = []string{"*"}
	}

	return cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{
			"X-RateLimit-Limit",
			"X-RateLimit-Remaining",
			"X-RateLimit-Reset",
			"Retry-After",
		},
		MaxAge: 300, // Maximum value not ignored by any of major browsers
	})
}
