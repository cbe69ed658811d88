package middleware

import (
	"net/http"

	"github.com/rs/cors"

	"github.com/davidbz/judgepanel/internal/config"
)

// exposedHeaders are readable by browser clients: the trace headers set by
// Trace and the attachment name set by the CSV export.
var exposedHeaders = []string{"X-Trace-Id", "X-Request-Id", "Content-Disposition"}

// CORS creates a middleware that handles Cross-Origin Resource Sharing
// using github.com/rs/cors.
func CORS(cfg *config.CORSConfig) Middleware {
	if cfg == nil {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   cfg.AllowedMethods,
		AllowedHeaders:   cfg.AllowedHeaders,
		ExposedHeaders:   exposedHeaders,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	})

	return c.Handler
}
