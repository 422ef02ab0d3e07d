package lockout

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"taskdesk/internal/localstore"
	"taskdesk/internal/models"
)

// Fixed lockout policy.
const (
	MaxAttempts = 3
	Duration    = 15 * time.Minute
)

const storeKeyPrefix = "lockout:"

// Status reports the lockout state of one email.
type Status struct {
	Locked       bool
	Remaining    time.Duration
	AttemptsLeft int
	LockedUntil  time.Time
}

// Tracker counts failed login attempts per lowercased email and enforces
// a temporary lockout once MaxAttempts is reached. Records live in the
// durable local store; persistence failures are swallowed (best effort).
type Tracker struct {
	logger zerolog.Logger
	store  *localstore.Store
	now    func() time.Time
}

func NewTracker(logger zerolog.Logger, store *localstore.Store) *Tracker {
	return &Tracker{
		logger: logger,
		store:  store,
		now:    time.Now,
	}
}

// WithClock overrides the tracker's clock, for tests.
func (t *Tracker) WithClock(now func() time.Time) *Tracker {
	t.now = now
	return t
}

// CheckStatus reports whether the email is locked out. It is
// side-effect-free except for lazily dropping expired lock records.
func (t *Tracker) CheckStatus(email string) Status {
	if email == "" {
		return Status{AttemptsLeft: MaxAttempts}
	}

	record, ok := t.loadRecord(email)
	if !ok {
		return Status{AttemptsLeft: MaxAttempts}
	}

	now := t.now()
	if record.LockedUntil != nil && now.Before(*record.LockedUntil) {
		return Status{
			Locked:      true,
			Remaining:   record.LockedUntil.Sub(now),
			LockedUntil: *record.LockedUntil,
		}
	}

	attemptsLeft := MaxAttempts - record.Attempts
	if attemptsLeft < 0 {
		attemptsLeft = 0
	}
	return Status{AttemptsLeft: attemptsLeft}
}

// RecordFailure counts a failed login attempt. Reaching MaxAttempts locks
// the email for Duration and resets the counter for the next cycle.
func (t *Tracker) RecordFailure(email string) Status {
	if email == "" {
		return Status{AttemptsLeft: MaxAttempts}
	}

	now := t.now()
	record, ok := t.loadRecord(email)
	if !ok {
		record = models.LockoutRecord{FirstAttempt: now}
	}

	record.Attempts++
	record.LastAttempt = now

	if record.Attempts >= MaxAttempts {
		lockedUntil := now.Add(Duration)
		record.LockedUntil = &lockedUntil
		record.Attempts = 0
		t.logger.Warn().
			Str("email", strings.ToLower(email)).
			Time("locked_until", lockedUntil).
			Msg("account locked after repeated failed logins")
	}

	if err := t.store.Put(storeKey(email), record); err != nil {
		t.logger.Debug().
			Err(err).
			Msg("failed to persist lockout record")
	}
	return t.CheckStatus(email)
}

// Sweep drops expired lock records and attempt counters whose last
// failure is older than the lockout duration. It returns the number of
// records removed.
func (t *Tracker) Sweep() int {
	now := t.now()
	removed := 0
	for _, key := range t.store.Keys(storeKeyPrefix) {
		var record models.LockoutRecord
		ok, err := t.store.Get(key, &record)
		if err != nil || !ok {
			continue
		}

		expiredLock := record.LockedUntil != nil && !now.Before(*record.LockedUntil)
		staleAttempts := record.LockedUntil == nil && now.Sub(record.LastAttempt) >= Duration
		if !expiredLock && !staleAttempts {
			continue
		}

		if err := t.store.Delete(key); err != nil {
			t.logger.Debug().
				Err(err).
				Str("key", key).
				Msg("failed to drop lockout record")
			continue
		}
		removed++
	}
	return removed
}

// RecordSuccess clears the email's attempt history entirely.
func (t *Tracker) RecordSuccess(email string) {
	if email == "" {
		return
	}
	if err := t.store.Delete(storeKey(email)); err != nil {
		t.logger.Debug().
			Err(err).
			Msg("failed to clear lockout record")
	}
}

// loadRecord reads the email's record, dropping it when the lock expired.
func (t *Tracker) loadRecord(email string) (models.LockoutRecord, bool) {
	var record models.LockoutRecord
	ok, err := t.store.Get(storeKey(email), &record)
	if err != nil {
		t.logger.Debug().
			Err(err).
			Msg("failed to read lockout record")
		return models.LockoutRecord{}, false
	}
	if !ok {
		return models.LockoutRecord{}, false
	}

	if record.LockedUntil != nil && !t.now().Before(*record.LockedUntil) {
		if err := t.store.Delete(storeKey(email)); err != nil {
			t.logger.Debug().
				Err(err).
				Msg("failed to drop expired lockout record")
		}
		return models.LockoutRecord{}, false
	}
	return record, true
}

// FormatRemaining renders a remaining lockout duration for user-facing
// messages, rounding up to whole minutes.
func FormatRemaining(remaining time.Duration) string {
	minutes := int(math.Ceil(remaining.Minutes()))
	if minutes <= 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", minutes)
}

func storeKey(email string) string {
	return storeKeyPrefix + strings.ToLower(email)
}
