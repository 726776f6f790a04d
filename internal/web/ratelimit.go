package web

import (
	"net/http"
	"sync"
	"time"
)

// authLimitPerMinute bounds credential guessing on the auth endpoints.
// Panel navigation and entity forms are not limited; they already sit
// behind a signed-in session.
const authLimitPerMinute = 15

// limiter counts requests per client over a fixed one-minute window.
// Stale clients are pruned inline, so there is no background goroutine
// to stop on shutdown.
type limiter struct {
	mu      sync.Mutex
	clients map[string]*clientWindow
	limit   int
	now     func() time.Time
}

type clientWindow struct {
	since    time.Time
	requests int
}

func newLimiter(limit int) *limiter {
	return &limiter{
		clients: make(map[string]*clientWindow),
		limit:   limit,
		now:     time.Now,
	}
}

func (l *limiter) allow(client string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.prune(now)

	c, ok := l.clients[client]
	if !ok || now.Sub(c.since) > time.Minute {
		l.clients[client] = &clientWindow{since: now, requests: 1}
		return true
	}
	c.requests++
	return c.requests <= l.limit
}

func (l *limiter) prune(now time.Time) {
	cutoff := now.Add(-10 * time.Minute)
	for client, c := range l.clients {
		if c.since.Before(cutoff) {
			delete(l.clients, client)
		}
	}
}

// clientAddr picks the client address for limiting, preferring the
// proxy headers over the socket peer.
func clientAddr(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

// limitAuth rejects a client that hammers the credential endpoints.
func (s *Server) limitAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && !s.authLimiter.allow(clientAddr(r)) {
			s.log.Warn("Rate limit exceeded", "client", clientAddr(r), "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "too many attempts, try again later", http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}
