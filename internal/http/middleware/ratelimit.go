package middleware

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/davidbz/judgepanel/internal/config"
	"github.com/davidbz/judgepanel/internal/observability"
)

const (
	defaultIdleTimeout     = 10 * time.Minute
	defaultCleanupInterval = time.Minute
)

// limiterEntry is one client's token bucket and when it was last used.
type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter throttles requests per client IP. Buckets of clients that stay
// idle for the idle timeout are evicted by a background cleanup loop, which
// runs until Stop is called.
type RateLimiter struct {
	mu      sync.Mutex
	entries map[string]*limiterEntry

	enabled     bool
	limit       rate.Limit
	burst       int
	idleTimeout time.Duration

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewRateLimiter creates the per-IP limiter and starts its cleanup loop.
// A nil config or a non-positive rate disables limiting and starts nothing.
func NewRateLimiter(cfg *config.RateLimitConfig) *RateLimiter {
	l := &RateLimiter{
		mu:      sync.Mutex{},
		entries: make(map[string]*limiterEntry),
	}

	if cfg == nil || cfg.RequestsPerSecond <= 0 {
		return l
	}

	l.enabled = true
	l.limit = rate.Limit(cfg.RequestsPerSecond)
	l.burst = max(cfg.Burst, 1)

	l.idleTimeout = cfg.IdleTimeout
	if l.idleTimeout <= 0 {
		l.idleTimeout = defaultIdleTimeout
	}

	interval := cfg.CleanupInterval
	if interval <= 0 {
		interval = defaultCleanupInterval
	}

	l.stop = make(chan struct{})
	l.done = make(chan struct{})
	go l.cleanupLoop(interval)

	observability.FromContext(context.Background()).Info("rate limit cleanup started",
		observability.Duration("interval", interval),
		observability.Duration("idle_timeout", l.idleTimeout))

	return l
}

// Middleware returns the HTTP middleware enforcing the limit.
func (l *RateLimiter) Middleware() Middleware {
	if !l.enabled {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			if !l.allow(ip, time.Now()) {
				observability.FromContext(r.Context()).Warn("rate limit exceeded",
					observability.String("client_ip", ip),
					observability.String("path", r.URL.Path),
				)

				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "rate limit exceeded"})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (l *RateLimiter) allow(key string, now time.Time) bool {
	l.mu.Lock()
	entry, ok := l.entries[key]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.entries[key] = entry
	}
	entry.lastSeen = now
	l.mu.Unlock()

	return entry.limiter.AllowN(now, 1)
}

// CleanupStale evicts buckets not used since now minus the idle timeout and
// returns how many were removed.
func (l *RateLimiter) CleanupStale(now time.Time) int {
	cutoff := now.Add(-l.idleTimeout)

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, entry := range l.entries {
		if entry.lastSeen.Before(cutoff) {
			delete(l.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked clients.
func (l *RateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Stop terminates the cleanup loop and waits for it to exit. It is safe to
// call more than once.
func (l *RateLimiter) Stop() {
	if l.stop == nil {
		return
	}

	l.stopOnce.Do(func() {
		close(l.stop)
		<-l.done
		observability.FromContext(context.Background()).Info("rate limit cleanup stopped")
	})
}

func (l *RateLimiter) cleanupLoop(interval time.Duration) {
	defer close(l.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			if removed := l.CleanupStale(now); removed > 0 {
				observability.FromContext(context.Background()).Debug("evicted idle rate limiters",
					observability.Int("removed", removed))
			}
		case <-l.stop:
			return
		}
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
