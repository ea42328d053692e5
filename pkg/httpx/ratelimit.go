package httpx

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig defines the token-bucket parameters for a limiter.
type RateLimitConfig struct {
	RequestsPerWindow int
	Window            time.Duration
	Burst             int
}

// Limit profiles for the different endpoint classes.
var (
	// StrictLimit guards the public accept endpoint against token
	// brute-forcing.
	StrictLimit = RateLimitConfig{RequestsPerWindow: 5, Window: time.Minute, Burst: 5}

	// ModerateLimit for authenticated admin operations.
	ModerateLimit = RateLimitConfig{RequestsPerWindow: 20, Window: time.Minute, Burst: 20}

	// LenientLimit for reads and health checks.
	LenientLimit = RateLimitConfig{RequestsPerWindow: 100, Window: time.Minute, Burst: 100}
)

func (c RateLimitConfig) limit() rate.Limit {
	return rate.Every(c.Window / time.Duration(c.RequestsPerWindow))
}

// limiterRegistry tracks one limiter per key with idle eviction so the map
// does not grow without bound.
type limiterRegistry struct {
	mu       sync.Mutex
	cfg      RateLimitConfig
	limiters map[string]*limiterEntry
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newLimiterRegistry(cfg RateLimitConfig) *limiterRegistry {
	reg := &limiterRegistry{
		cfg:      cfg,
		limiters: make(map[string]*limiterEntry),
	}
	go reg.evictIdle()
	return reg
}

func (reg *limiterRegistry) allow(key string) bool {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	entry, ok := reg.limiters[key]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(reg.cfg.limit(), reg.cfg.Burst)}
		reg.limiters[key] = entry
	}
	entry.lastSeen = time.Now()
	return entry.limiter.Allow()
}

func (reg *limiterRegistry) evictIdle() {
	const idleAfter = 10 * time.Minute
	for range time.Tick(time.Minute) {
		reg.mu.Lock()
		for key, entry := range reg.limiters {
			if time.Since(entry.lastSeen) > idleAfter {
				delete(reg.limiters, key)
			}
		}
		reg.mu.Unlock()
	}
}

// RateLimitByIP limits requests per client IP. Used on unauthenticated
// endpoints where no actor identity exists yet.
func RateLimitByIP(cfg RateLimitConfig) Middleware {
	reg := newLimiterRegistry(cfg)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			host, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				host = r.RemoteAddr
			}
			if !reg.allow(host) {
				writeRateLimited(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitByUser limits requests per authenticated actor. Falls back to IP
// when the request carries no identity.
func RateLimitByUser(cfg RateLimitConfig) Middleware {
	reg := newLimiterRegistry(cfg)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := UserID(r.Context())
			if key == "" {
				if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
					key = host
				} else {
					key = r.RemoteAddr
				}
			}
			if !reg.allow(key) {
				writeRateLimited(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeRateLimited(w http.ResponseWriter) {
	w.Header().Set("Retry-After", "60")
	http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
}
