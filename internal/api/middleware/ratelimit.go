package middleware

import (
	"context"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/tsmart/voyage-api/internal/api/response"
	"github.com/tsmart/voyage-api/internal/pkg/metrics"
)

const (
	headerRateLimitLimit     = "X-RateLimit-Limit"
	headerRateLimitRemaining = "X-RateLimit-Remaining"
	headerRateLimitReset     = "X-RateLimit-Reset"

	defaultRateLimitWindow = 15 * time.Minute
	defaultRateLimitMax    = 100
)

// RateLimitStore counts requests per key in fixed windows. Hit records one
// request and returns the count so far and the end of the current window.
type RateLimitStore interface {
	Hit(ctx context.Context, key string, window time.Duration) (int, time.Time, error)
}

type RateLimitConfig struct {
	Window      time.Duration
	MaxRequests int
	// Store defaults to a process-local MemoryStore.
	Store RateLimitStore
	// KeyFunc defaults to the client IP.
	KeyFunc func(echo.Context) string
	Logger  zerolog.Logger
}

// RateLimit allows MaxRequests per client per Window. Every response carries
// the X-RateLimit-* headers; requests over budget get 429. When the store is
// unreachable the request is let through and a warning is logged.
func RateLimit(cfg RateLimitConfig) echo.MiddlewareFunc {
	if cfg.Window <= 0 {
		cfg.Window = defaultRateLimitWindow
	}
	if cfg.MaxRequests <= 0 {
		cfg.MaxRequests = defaultRateLimitMax
	}
	if cfg.Store == nil {
		cfg.Store = NewMemoryStore()
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = func(c echo.Context) string { return c.RealIP() }
	}
	limit := strconv.Itoa(cfg.MaxRequests)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := cfg.KeyFunc(c)
			if key == "" {
				key = "unknown"
			}

			count, resetAt, err := cfg.Store.Hit(c.Request().Context(), key, cfg.Window)
			if err != nil {
				cfg.Logger.Warn().Err(err).Str("key", key).Msg("rate limit store unavailable, allowing request")
				return next(c)
			}

			h := c.Response().Header()
			h.Set(headerRateLimitLimit, limit)
			h.Set(headerRateLimitRemaining, strconv.Itoa(max(cfg.MaxRequests-count, 0)))
			h.Set(headerRateLimitReset, strconv.FormatInt(ceilUnix(resetAt), 10))

			if count > cfg.MaxRequests {
				metrics.RateLimitRejectedTotal.Inc()
				return response.TooManyRequests("Rate limit exceeded")
			}
			return next(c)
		}
	}
}

func ceilUnix(t time.Time) int64 {
	return int64(math.Ceil(float64(t.UnixMilli()) / 1000))
}

// MemoryStore is a RateLimitStore local to one process. Replicas do not share
// budgets; use the Redis store for that. Expired windows are purged lazily.
type MemoryStore struct {
	mu        sync.Mutex
	windows   map[string]*rateWindow
	lastSweep time.Time
	now       func() time.Time
}

type rateWindow struct {
	count   int
	resetAt time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		windows: make(map[string]*rateWindow),
		now:     time.Now,
	}
}

func (s *MemoryStore) Hit(_ context.Context, key string, window time.Duration) (int, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if now.Sub(s.lastSweep) >= min(window, time.Minute) {
		for k, w := range s.windows {
			if !w.resetAt.After(now) {
				delete(s.windows, k)
			}
		}
		s.lastSweep = now
	}

	w, ok := s.windows[key]
	if !ok || !w.resetAt.After(now) {
		w = &rateWindow{resetAt: now.Add(window)}
		s.windows[key] = w
	}
	w.count++
	return w.count, w.resetAt, nil
}

// Len reports how many windows are tracked.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.windows)
}
