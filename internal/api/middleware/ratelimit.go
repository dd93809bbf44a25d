package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/mkarpov/todoevo/internal/api/shared"
	"golang.org/x/time/rate"
)

// RateLimiter enforces a per-client request rate using token buckets keyed
// by remote IP. Buckets for idle clients are evicted periodically so the
// table does not grow without bound.
type RateLimiter struct {
	mu       sync.Mutex
	clients  map[string]*clientBucket
	limit    rate.Limit
	burst    int
	lastSeen time.Duration

	stopOnce sync.Once
	stop     chan struct{}
}

type clientBucket struct {
	limiter *rate.Limiter
	seen    time.Time
}

// NewRateLimiter creates a limiter allowing perMinute requests per minute
// per client IP, with a burst of the same size.
func NewRateLimiter(perMinute int) *RateLimiter {
	rl := &RateLimiter{
		clients:  make(map[string]*clientBucket),
		limit:    rate.Limit(float64(perMinute) / 60.0),
		burst:    perMinute,
		lastSeen: 3 * time.Minute,
		stop:     make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}

// Stop terminates the background eviction goroutine. Safe to call more
// than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// Limit is the middleware applying the rate limit. Requests over the
// limit receive 429 Too Many Requests.
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(clientIP(r)) {
			shared.RespondWithError(w, r, http.StatusTooManyRequests, "Rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.clients[ip]
	if !ok {
		b = &clientBucket{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[ip] = b
	}
	b.seen = time.Now()
	return b.limiter.Allow()
}

// cleanup evicts buckets that have not been used recently. It runs until
// Stop is called.
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
		}

		rl.mu.Lock()
		for ip, b := range rl.clients {
			if time.Since(b.seen) > rl.lastSeen {
				delete(rl.clients, ip)
			}
		}
		rl.mu.Unlock()
	}
}

// clientIP extracts the client address, relying on chi's RealIP middleware
// having rewritten RemoteAddr when the request came through a proxy.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
