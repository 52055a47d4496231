package service

import (
	"sync"
	"time"
)

type limiterKey struct {
	recipientID int64
	action      string
}

// RateLimiter bounds how often a recipient may trigger the same manual
// action within a sliding window. Process-local; resets on restart.
type RateLimiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu   sync.Mutex
	hits map[limiterKey][]time.Time
}

// NewRateLimiter allows up to limit consumptions per (recipient, action)
// within window.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:  limit,
		window: window,
		now:    time.Now,
		hits:   make(map[limiterKey][]time.Time),
	}
}

// TryConsume reports whether the action is allowed right now and, if so,
// records the consumption.
func (l *RateLimiter) TryConsume(recipientID int64, action string) bool {
	key := limiterKey{recipientID: recipientID, action: action}
	now := l.now()
	cutoff := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	recent := l.hits[key][:0]
	for _, t := range l.hits[key] {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}
	if len(recent) >= l.limit {
		l.hits[key] = recent
		return false
	}
	l.hits[key] = append(recent, now)
	return true
}
