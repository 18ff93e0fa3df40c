// internal/app/system/ratelimit/ratelimit.go
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Limiter counts requests per key in fixed windows.
// It is safe for concurrent use.
type Limiter struct {
	mu       sync.Mutex
	windows  map[string]*window
	limit    int           // max requests per window
	duration time.Duration // window duration
	now      func() time.Time
}

type window struct {
	count     int
	expiresAt time.Time
}

// New creates a limiter allowing limit requests per key every duration.
func New(limit int, duration time.Duration) *Limiter {
	return &Limiter{
		windows:  make(map[string]*window),
		limit:    limit,
		duration: duration,
		now:      time.Now,
	}
}

// Allow counts one request for key and reports whether it is within the
// limit.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[key]
	if !ok || now.After(w.expiresAt) {
		l.windows[key] = &window{count: 1, expiresAt: now.Add(l.duration)}
		return true
	}
	if w.count >= l.limit {
		return false
	}
	w.count++
	return true
}

// Remaining returns how many requests are left for key in the current window.
func (l *Limiter) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || l.now().After(w.expiresAt) {
		return l.limit
	}
	if n := l.limit - w.count; n > 0 {
		return n
	}
	return 0
}

// Reset clears the window for key.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.windows, key)
}

// Sweep drops expired windows and returns how many were removed.
func (l *Limiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	n := 0
	for key, w := range l.windows {
		if now.After(w.expiresAt) {
			delete(l.windows, key)
			n++
		}
	}
	return n
}

// ClientIP extracts the client IP from an HTTP request.
// X-Forwarded-For and X-Real-IP win over RemoteAddr for proxied requests.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// SignInLimiter throttles sign-in attempts. Every attempt counts against the
// client IP; admin attempts also count against a tighter admin budget since
// each one costs a backend call.
type SignInLimiter struct {
	ip    *Limiter
	admin *Limiter
}

// NewSignInLimiter allows 10 attempts per IP per minute and 5 admin token
// attempts per IP every 5 minutes.
func NewSignInLimiter() *SignInLimiter {
	return &SignInLimiter{
		ip:    New(10, time.Minute),
		admin: New(5, 5*time.Minute),
	}
}

// Check counts one attempt and returns "" when it may proceed, or the
// message to show when it is throttled. A nil limiter allows everything.
func (sl *SignInLimiter) Check(r *http.Request, admin bool) string {
	if sl == nil {
		return ""
	}
	ip := ClientIP(r)
	if !sl.ip.Allow(ip) {
		return "Too many sign-in attempts. Please wait a minute before trying again."
	}
	if admin && !sl.admin.Allow(ip) {
		return "Too many admin sign-in attempts. Please wait a few minutes."
	}
	return ""
}

// Succeeded clears the admin budget for the client after a good sign-in.
func (sl *SignInLimiter) Succeeded(r *http.Request) {
	if sl == nil {
		return
	}
	sl.admin.Reset(ClientIP(r))
}

// Sweep drops expired windows from both budgets.
func (sl *SignInLimiter) Sweep() int {
	if sl == nil {
		return 0
	}
	return sl.ip.Sweep() + sl.admin.Sweep()
}
