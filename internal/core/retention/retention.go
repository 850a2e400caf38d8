// Package retention computes permanent-deletion eligibility for soft-deleted
// records. All functions are pure; callers pass the wall clock so eligibility
// is recomputed on every read and never cached stale.
package retention

import "time"

// DefaultWindowDays is the period a soft-deleted record must age before it
// becomes eligible for permanent deletion.
const DefaultWindowDays = 90

// Eligible reports whether a record deleted at deletedAt has passed the
// retention window as of now.
//
// A nil deletedAt means the backend never recorded a deletion time; such
// records are never eligible (fail closed).
func Eligible(deletedAt *time.Time, windowDays int, now time.Time) bool {
	if deletedAt == nil {
		return false
	}
	return now.Sub(*deletedAt) >= window(windowDays)
}

// DaysUntilEligible returns the whole days remaining until a record becomes
// eligible. nil means never (no deletion timestamp); 0 means already
// eligible. A partial remaining day rounds up, so a record is never reported
// eligible while any of the window remains.
func DaysUntilEligible(deletedAt *time.Time, windowDays int, now time.Time) *int {
	if deletedAt == nil {
		return nil
	}
	remaining := window(windowDays) - now.Sub(*deletedAt)
	if remaining <= 0 {
		zero := 0
		return &zero
	}
	days := int((remaining + 24*time.Hour - 1) / (24 * time.Hour))
	return &days
}

func window(days int) time.Duration {
	return time.Duration(days) * 24 * time.Hour
}
