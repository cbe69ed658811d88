package middleware

import (
	"net/http"

	"github.com/davidbz/judgepanel/internal/config"
)

// Middleware wraps an http.Handler with additional functionality.
type Middleware func(http.Handler) http.Handler

// Chain composes multiple middlewares into a single middleware. The first
// middleware is the outermost wrapper and sees the request first.
func Chain(middlewares ...Middleware) Middleware {
	return func(final http.Handler) http.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			final = middlewares[i](final)
		}
		return final
	}
}

// BuildMiddlewareChain composes the middleware chain for production.
// Order matters: CORS -> Trace -> RateLimit.
func BuildMiddlewareChain(corsConfig *config.CORSConfig, limiter *RateLimiter) Middleware {
	return Chain(
		CORS(corsConfig),
		Trace(),
		limiter.Middleware(),
	)
}
