package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// RateLimiter is a fixed-window limiter keyed by client IP.
type RateLimiter struct {
	requests int
	window   time.Duration
	now      func() time.Time

	mu      sync.Mutex
	clients map[string]*clientWindow
}

type clientWindow struct {
	count   int
	expires time.Time
}

// NewRateLimiter returns a disabled limiter when requests or window is not positive.
func NewRateLimiter(requests int, window time.Duration) *RateLimiter {
	if requests <= 0 || window <= 0 {
		return &RateLimiter{}
	}

	return &RateLimiter{
		requests: requests,
		window:   window,
		now:      time.Now,
		clients:  make(map[string]*clientWindow),
	}
}

func (r *RateLimiter) Middleware(next http.Handler) http.Handler {
	if r == nil || r.requests == 0 {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if exceeded := r.hit(clientKey(req)); exceeded {
			w.Header().Set("Retry-After", strconv.Itoa(int(r.window.Seconds())))
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, req)
	})
}

func (r *RateLimiter) hit(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.evictExpired(now)

	state, ok := r.clients[key]
	if !ok {
		r.clients[key] = &clientWindow{
			count:   1,
			expires: now.Add(r.window),
		}
		return false
	}

	if state.count >= r.requests {
		return true
	}

	state.count++
	return false
}

// evictExpired keeps the map bounded by the number of clients seen in one window.
func (r *RateLimiter) evictExpired(now time.Time) {
	for key, state := range r.clients {
		if now.After(state.expires) {
			delete(r.clients, key)
		}
	}
}

// clientKey relies on chi's RealIP middleware having rewritten RemoteAddr.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
