package ratelimit

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"taskdesk/internal/localstore"
)

const storeKeyPrefix = "ratelimit:"

// PersistentLimiter enforces per-operation sliding windows backed by the
// durable local store, so limits survive a restart. Store failures are
// swallowed: rate limiting degrades to best effort rather than blocking
// the operation.
type PersistentLimiter struct {
	mu       sync.Mutex
	logger   zerolog.Logger
	store    *localstore.Store
	policies map[string]Policy
	now      func() time.Time
}

func NewPersistentLimiter(
	logger zerolog.Logger,
	store *localstore.Store,
	policies map[string]Policy,
) *PersistentLimiter {
	if policies == nil {
		policies = DefaultPolicies()
	}
	return &PersistentLimiter{
		logger:   logger,
		store:    store,
		policies: policies,
		now:      time.Now,
	}
}

// WithClock overrides the limiter's clock, for tests.
func (l *PersistentLimiter) WithClock(now func() time.Time) *PersistentLimiter {
	l.now = now
	return l
}

// IsRateLimited reports whether the identifier has exhausted the
// operation's threshold. Operations without a configured policy are never
// limited. A refused attempt is not recorded.
func (l *PersistentLimiter) IsRateLimited(identifier, operation string) bool {
	policy, ok := l.policies[operation]
	if !ok {
		return false
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	key := storeKey(identifier, operation)
	now := l.now()

	var stored []int64
	if _, err := l.store.Get(key, &stored); err != nil {
		l.logger.Debug().
			Err(err).
			Str("key", key).
			Msg("failed to read rate limit window")
		stored = nil
	}

	valid := stored[:0:len(stored)]
	for _, ms := range stored {
		if now.Sub(time.UnixMilli(ms)) < policy.Window {
			valid = append(valid, ms)
		}
	}

	if len(valid) >= policy.Max {
		l.logger.Warn().
			Str("identifier", identifier).
			Str("operation", operation).
			Int("max", policy.Max).
			Msg("rate limit exceeded")
		return true
	}

	valid = append(valid, now.UnixMilli())
	if err := l.store.Put(key, valid); err != nil {
		l.logger.Debug().
			Err(err).
			Str("key", key).
			Msg("failed to persist rate limit window")
	}
	return false
}

// Sweep prunes stored windows down to their still-valid attempts and
// drops windows that emptied out. It returns the number of keys removed.
func (l *PersistentLimiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	removed := 0
	for op, policy := range l.policies {
		for _, key := range l.store.Keys(storeKeyPrefix + op + "_") {
			var stored []int64
			ok, err := l.store.Get(key, &stored)
			if err != nil || !ok {
				continue
			}

			valid := stored[:0:len(stored)]
			for _, ms := range stored {
				if now.Sub(time.UnixMilli(ms)) < policy.Window {
					valid = append(valid, ms)
				}
			}

			switch {
			case len(valid) == 0:
				if err := l.store.Delete(key); err != nil {
					l.logger.Debug().
						Err(err).
						Str("key", key).
						Msg("failed to drop rate limit window")
					continue
				}
				removed++
			case len(valid) < len(stored):
				if err := l.store.Put(key, valid); err != nil {
					l.logger.Debug().
						Err(err).
						Str("key", key).
						Msg("failed to prune rate limit window")
				}
			}
		}
	}
	return removed
}

// Clear drops the identifier's window for the operation, e.g. after a
// successful login.
func (l *PersistentLimiter) Clear(identifier, operation string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := storeKey(identifier, operation)
	if err := l.store.Delete(key); err != nil {
		l.logger.Debug().
			Err(err).
			Str("key", key).
			Msg("failed to clear rate limit window")
	}
}

func storeKey(identifier, operation string) string {
	return storeKeyPrefix + operation + "_" + identifier
}
