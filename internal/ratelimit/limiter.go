package ratelimit

import (
	"sync"
	"time"
)

// Limiter is an in-memory sliding-window rate limiter. Each instance owns
// its own state so tests and callers can construct isolated limiters.
// State does not survive a restart; see PersistentLimiter for that.
type Limiter struct {
	mu       sync.Mutex
	now      func() time.Time
	attempts map[string][]time.Time
}

func NewLimiter() *Limiter {
	return NewLimiterWithClock(time.Now)
}

func NewLimiterWithClock(now func() time.Time) *Limiter {
	return &Limiter{
		now:      now,
		attempts: map[string][]time.Time{},
	}
}

// IsRateLimited prunes attempts older than window and reports whether the
// identifier has exhausted maxAttempts. A refused attempt is not recorded,
// so the attempt that would exceed the limit is rejected and does not
// extend the window.
func (l *Limiter) IsRateLimited(identifier string, maxAttempts int, window time.Duration) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	valid := pruneAttempts(l.attempts[identifier], now, window)

	if len(valid) >= maxAttempts {
		l.attempts[identifier] = valid
		return true
	}

	l.attempts[identifier] = append(valid, now)
	return false
}

// ResetAttempts clears the identifier's history.
func (l *Limiter) ResetAttempts(identifier string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.attempts, identifier)
}

func pruneAttempts(attempts []time.Time, now time.Time, window time.Duration) []time.Time {
	valid := attempts[:0:len(attempts)]
	for _, at := range attempts {
		if now.Sub(at) < window {
			valid = append(valid, at)
		}
	}
	return valid
}
