package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimitConfig is a fixed-window limit: at most Requests per Window.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// Validate checks that both fields are positive.
func (c RateLimitConfig) Validate() error {
	if c.Requests <= 0 {
		return fmt.Errorf("rate limit requests must be > 0 (got %d)", c.Requests)
	}
	if c.Window <= 0 {
		return fmt.Errorf("rate limit window must be > 0 (got %s)", c.Window)
	}
	return nil
}

// RateLimitStore holds per-key counters. retryAfter is only meaningful when
// allowed is false.
type RateLimitStore interface {
	Allow(ctx context.Context, key string, cfg RateLimitConfig) (allowed bool, retryAfter time.Duration, err error)
}

type window struct {
	count int
	ends  time.Time
}

// InMemoryRateLimitStore is a fixed-window counter kept in process memory.
// It is safe for concurrent use but is not shared between replicas.
type InMemoryRateLimitStore struct {
	mu      sync.Mutex
	windows map[string]*window
	now     func() time.Time
}

// NewInMemoryRateLimitStore creates an empty store.
func NewInMemoryRateLimitStore() *InMemoryRateLimitStore {
	return &InMemoryRateLimitStore{windows: make(map[string]*window), now: time.Now}
}

// Allow implements RateLimitStore.
func (s *InMemoryRateLimitStore) Allow(_ context.Context, key string, cfg RateLimitConfig) (bool, time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	w, ok := s.windows[key]
	if !ok || !now.Before(w.ends) {
		s.windows[key] = &window{count: 1, ends: now.Add(cfg.Window)}
		return true, 0, nil
	}
	if w.count < cfg.Requests {
		w.count++
		return true, 0, nil
	}
	return false, w.ends.Sub(now), nil
}

// Cleanup drops expired windows. Call it periodically from a ticker.
func (s *InMemoryRateLimitStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, w := range s.windows {
		if !now.Before(w.ends) {
			delete(s.windows, key)
		}
	}
}

// fixedWindow increments the counter and starts its expiry on the first hit.
// It returns {count, remaining ttl in ms}.
var fixedWindow = redis.NewScript(`
local n = redis.call('INCR', KEYS[1])
if n == 1 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return {n, redis.call('PTTL', KEYS[1])}
`)

// RedisRateLimitStore keeps counters in Redis so every replica shares them.
type RedisRateLimitStore struct {
	client redis.Scripter
	prefix string
}

// NewRedisRateLimitStore creates a store whose keys start with prefix.
func NewRedisRateLimitStore(client redis.Scripter, prefix string) *RedisRateLimitStore {
	return &RedisRateLimitStore{client: client, prefix: prefix}
}

// Allow implements RateLimitStore.
func (s *RedisRateLimitStore) Allow(ctx context.Context, key string, cfg RateLimitConfig) (bool, time.Duration, error) {
	res, err := fixedWindow.Run(ctx, s.client, []string{s.prefix + key}, cfg.Window.Milliseconds()).Int64Slice()
	if err != nil {
		return false, 0, fmt.Errorf("middleware.RedisRateLimitStore.Allow: %w", err)
	}
	if len(res) != 2 {
		return false, 0, fmt.Errorf("middleware.RedisRateLimitStore.Allow: unexpected reply %v", res)
	}
	if res[0] <= int64(cfg.Requests) {
		return true, 0, nil
	}
	ttl := time.Duration(res[1]) * time.Millisecond
	if ttl <= 0 {
		ttl = cfg.Window
	}
	return false, ttl, nil
}

// KeyFunc extracts a rate limit key from an HTTP request.
type KeyFunc func(r *http.Request) string

// IPKeyFunc keys requests by client IP. Run it behind chi's RealIP so
// RemoteAddr already reflects X-Forwarded-For / X-Real-IP.
func IPKeyFunc() KeyFunc {
	return func(r *http.Request) string {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			return strings.TrimSpace(r.RemoteAddr)
		}
		return host
	}
}

// RateLimiter rejects requests over cfg with 429 and a Retry-After header.
// Store failures are logged and the request is let through. m may be nil.
func RateLimiter(store RateLimitStore, cfg RateLimitConfig, keyFunc KeyFunc, log *slog.Logger, m *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			endpoint := r.Method + " " + r.URL.Path
			m.incRateLimitChecks(endpoint)

			allowed, retryAfter, err := store.Allow(r.Context(), keyFunc(r), cfg)
			if err != nil {
				m.incRateLimitErrors()
				log.WarnContext(r.Context(), "rate limit store unavailable, allowing request", "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				m.incRateLimitBlocked(endpoint)
				secs := int(math.Ceil(retryAfter.Seconds()))
				if secs < 1 {
					secs = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(secs))
				writeError(w, http.StatusTooManyRequests, "rate_limited", "too many requests, try again later")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
