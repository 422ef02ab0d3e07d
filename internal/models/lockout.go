package models

import "time"

// LockoutRecord tracks failed login attempts for a single lowercased email.
// Once Attempts reaches the configured maximum the record transitions to
// locked (LockedUntil set) and the counter resets for the next cycle.
type LockoutRecord struct {
	Attempts     int        `json:"attempts"`
	FirstAttempt time.Time  `json:"firstAttempt"`
	LastAttempt  time.Time  `json:"lastAttempt"`
	LockedUntil  *time.Time `json:"lockedUntil,omitempty"`
}
