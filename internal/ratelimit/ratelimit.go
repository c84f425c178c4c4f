// Package ratelimit implements fixed-window request counting keyed by
// (user, endpoint class). The store is process-local: in a multi-instance
// deployment each instance enforces its own independent quota. The limiter
// is injected into the server rather than held in package state so a
// shared implementation can replace it without touching handlers.
package ratelimit

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// Policy is a fixed-window quota: at most MaxRequests per Window per key.
type Policy struct {
	Window      time.Duration
	MaxRequests int
}

// Result reports the outcome of a quota check. Reset is the absolute time
// the current window ends, returned for denied requests too so callers can
// communicate a retry-after.
type Result struct {
	Allowed   bool
	Remaining int
	Reset     time.Time
}

type entry struct {
	count int
	reset time.Time
}

// Limiter holds one counter per key.
type Limiter struct {
	mu      sync.Mutex
	entries map[string]*entry
	now     func() time.Time
}

func NewLimiter() *Limiter {
	return &Limiter{
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

// Key builds the canonical limiter key for a user and endpoint class.
func Key(userID, endpoint string) string {
	return fmt.Sprintf("%s:%s", userID, endpoint)
}

// Check counts a request against the key's current window. A denied
// request does not consume quota.
func (l *Limiter) Check(key string, p Policy) Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.entries[key]
	if !ok || now.After(e.reset) {
		e = &entry{reset: now.Add(p.Window)}
		l.entries[key] = e
	}

	if e.count >= p.MaxRequests {
		return Result{Allowed: false, Remaining: 0, Reset: e.reset}
	}

	e.count++
	return Result{
		Allowed:   true,
		Remaining: p.MaxRequests - e.count,
		Reset:     e.reset,
	}
}

// Sweep removes entries whose window has expired and returns the number
// deleted. The server runs this periodically so memory is bounded by
// active keys rather than total historical traffic.
func (l *Limiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	removed := 0
	for key, e := range l.entries {
		if now.After(e.reset) {
			delete(l.entries, key)
			removed++
		}
	}
	return removed
}

// SetHeaders attaches the standard X-RateLimit headers to a response.
// Reset is reported as unix seconds, rounded up.
func SetHeaders(h http.Header, p Policy, r Result) {
	sec := r.Reset.Unix()
	if r.Reset.Nanosecond() > 0 {
		sec++
	}
	h.Set("X-RateLimit-Limit", strconv.Itoa(p.MaxRequests))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(r.Remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(sec, 10))
}
