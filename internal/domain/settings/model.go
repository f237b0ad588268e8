package settings

import "time"

// Settings is the per-user plan and sync record. One row per user.
type Settings struct {
	UserID           string     `json:"user_id"`
	IsPro            bool       `json:"is_pro"`
	PlanSelected     bool       `json:"plan_selected"`
	CloudSyncEnabled bool       `json:"cloud_sync_enabled"`
	AutoCloudSync    bool       `json:"auto_cloud_sync"`
	// SubscriptionEndsAt is nil for Pro entitlements with no fixed end.
	SubscriptionEndsAt *time.Time `json:"subscription_ends_at,omitempty"`
	ProTrialEndsAt     *time.Time `json:"pro_trial_ends_at,omitempty"`
	ProTrialUsed       bool       `json:"pro_trial_used"`
	AICredits          int        `json:"ai_credits"`
	// MonthlyCreditsLastUpdated is the last calendar month credits were topped up.
	MonthlyCreditsLastUpdated time.Time `json:"monthly_credits_last_updated"`
	UpdatedAt                 time.Time `json:"updated_at"`
}

// Plan tags carried inside commerce order identifiers
const (
	PlanTagMonthly = "m"
	PlanTagYearly  = "y"
)

// DefaultCredits is the AI credit balance granted to a new free-plan user
const DefaultCredits = 2

// Defaults returns a fresh settings record for a user who has never saved one
func Defaults(userID string, now time.Time) *Settings {
	return &Settings{
		UserID:                    userID,
		IsPro:                     false,
		PlanSelected:              false,
		CloudSyncEnabled:          false,
		AutoCloudSync:             false,
		ProTrialUsed:              false,
		AICredits:                 DefaultCredits,
		MonthlyCreditsLastUpdated: now,
		UpdatedAt:                 now,
	}
}

// Normalize fills fields a partial record (older schema, missing columns) may
// lack, so reads never observe zero values where defaults are expected.
func (s *Settings) Normalize(now time.Time) {
	if s.MonthlyCreditsLastUpdated.IsZero() {
		s.MonthlyCreditsLastUpdated = now
	}
	if s.AICredits < 0 {
		s.AICredits = 0
	}
}

// Snapshot returns a copy safe to hand to subscribers
func (s *Settings) Snapshot() Settings {
	out := *s
	if s.SubscriptionEndsAt != nil {
		t := *s.SubscriptionEndsAt
		out.SubscriptionEndsAt = &t
	}
	if s.ProTrialEndsAt != nil {
		t := *s.ProTrialEndsAt
		out.ProTrialEndsAt = &t
	}
	return out
}
