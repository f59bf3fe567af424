package ratelimiter

import (
	"sync"
	"time"
)

// Limiter allows one action per interval for each key.
// It is safe for concurrent use.
type Limiter[K comparable] struct {
	mu          sync.Mutex
	interval    time.Duration
	lastAllowed map[K]time.Time
	now         func() time.Time
}

// New creates a new keyed rate limiter with the specified interval.
// A non-positive interval allows every action.
func New[K comparable](interval time.Duration) *Limiter[K] {
	return &Limiter[K]{
		interval:    interval,
		lastAllowed: make(map[K]time.Time),
		now:         time.Now,
	}
}

// Allow checks if an action for key is allowed at this time.
// Returns true if allowed (and records this as the key's last allowed time),
// or false with the remaining wait duration if rate-limited.
func (l *Limiter[K]) Allow(key K) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	last, seen := l.lastAllowed[key]
	if !seen || now.Sub(last) >= l.interval {
		l.lastAllowed[key] = now
		return true, 0
	}

	return false, l.interval - now.Sub(last)
}

// Reset clears the state of key, allowing its next action immediately.
func (l *Limiter[K]) Reset(key K) {
	l.mu.Lock()
	delete(l.lastAllowed, key)
	l.mu.Unlock()
}

// Prune forgets keys whose interval has passed and returns how many were dropped.
func (l *Limiter[K]) Prune() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	pruned := 0
	for key, last := range l.lastAllowed {
		if now.Sub(last) >= l.interval {
			delete(l.lastAllowed, key)
			pruned++
		}
	}
	return pruned
}

// Len returns the number of tracked keys.
func (l *Limiter[K]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.lastAllowed)
}

// Interval returns the configured rate limit interval.
func (l *Limiter[K]) Interval() time.Duration {
	return l.interval
}
