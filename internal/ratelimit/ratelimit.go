// Package ratelimit implements per-user sliding-window admission control.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter keeps, for every user, the timestamps of the requests it admitted
// within the trailing window. Stale entries are pruned on every Allow call and
// by Sweep, so memory stays bounded by active users.
//
// Limiter is safe for concurrent use.
type Limiter struct {
	mu       sync.Mutex
	requests map[string][]time.Time
	now      func() time.Time
}

// New returns an empty Limiter using the wall clock.
func New() *Limiter {
	return NewWithClock(time.Now)
}

// NewWithClock returns an empty Limiter that reads time from now.
func NewWithClock(now func() time.Time) *Limiter {
	if now == nil {
		now = time.Now
	}
	return &Limiter{
		requests: make(map[string][]time.Time),
		now:      now,
	}
}

// Allow reports whether userID may make another request. A rejected attempt
// is not recorded.
func (l *Limiter) Allow(userID string, maxRequests int, window time.Duration) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	valid := prune(l.requests[userID], now, window)

	if len(valid) >= maxRequests {
		if len(valid) == 0 {
			delete(l.requests, userID)
		} else {
			l.requests[userID] = valid
		}
		return false
	}

	l.requests[userID] = append(valid, now)
	return true
}

// Sweep drops timestamps older than retention for every user and deletes
// users left with none. It returns the number of users removed.
func (l *Limiter) Sweep(retention time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	removed := 0
	for userID, stamps := range l.requests {
		valid := prune(stamps, now, retention)
		if len(valid) == 0 {
			delete(l.requests, userID)
			removed++
			continue
		}
		l.requests[userID] = valid
	}
	return removed
}

// Len returns the number of users currently tracked.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.requests)
}

// prune keeps timestamps t with now-t < window, reusing the backing array.
func prune(stamps []time.Time, now time.Time, window time.Duration) []time.Time {
	valid := stamps[:0]
	for _, t := range stamps {
		if now.Sub(t) < window {
			valid = append(valid, t)
		}
	}
	return valid
}
