package settings

import "time"

// Transition names the change a lifecycle evaluation applied, if any
type Transition string

const (
	TransitionNone     Transition = ""
	TransitionExpired  Transition = "expired"
	TransitionRefilled Transition = "refilled"
)

// Evaluate applies the subscription lifecycle rules to a settings snapshot.
// It is pure: callers persist the result themselves when changed is true.
//
// Rules, in order:
//  1. A Pro subscription with a fixed end date in the past is downgraded:
//     Pro flag and both cloud sync toggles are cleared.
//  2. Otherwise, a free-plan user who has completed plan selection gets a
//     credit refill once per distinct calendar (year, month). Skipped months
//     are not back-filled; a single evaluation refills at most once.
//
// The two rules never fire in the same pass: an expiring Pro user is only
// downgraded, and the refill is picked up by the next evaluation.
func Evaluate(s Settings, now time.Time, refillAmount int) (Settings, Transition) {
	if s.IsPro && s.SubscriptionEndsAt != nil && now.After(*s.SubscriptionEndsAt) {
		s.IsPro = false
		s.CloudSyncEnabled = false
		s.AutoCloudSync = false
		s.UpdatedAt = now
		return s, TransitionExpired
	}

	if !s.IsPro && s.PlanSelected && monthAdvanced(s.MonthlyCreditsLastUpdated, now) {
		s.AICredits += refillAmount
		s.MonthlyCreditsLastUpdated = now
		s.UpdatedAt = now
		return s, TransitionRefilled
	}

	return s, TransitionNone
}

// monthAdvanced reports whether now is in a strictly later calendar month than last
func monthAdvanced(last, now time.Time) bool {
	if now.Year() != last.Year() {
		return now.Year() > last.Year()
	}
	return now.Month() > last.Month()
}
