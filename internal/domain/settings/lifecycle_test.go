package settings

import (
	"testing"
	"time"
)

func tp(t time.Time) *time.Time { return &t }

func TestEvaluate_Expiry(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		in             Settings
		wantTransition Transition
		wantPro        bool
		wantSync       bool
	}{
		{
			name: "expired subscription is downgraded",
			in: Settings{
				UserID:                    "u1",
				IsPro:                     true,
				PlanSelected:              true,
				CloudSyncEnabled:          true,
				AutoCloudSync:             true,
				SubscriptionEndsAt:        tp(now.Add(-time.Hour)),
				MonthlyCreditsLastUpdated: now,
			},
			wantTransition: TransitionExpired,
			wantPro:        false,
			wantSync:       false,
		},
		{
			name: "active subscription is untouched",
			in: Settings{
				UserID:                    "u1",
				IsPro:                     true,
				PlanSelected:              true,
				CloudSyncEnabled:          true,
				AutoCloudSync:             true,
				SubscriptionEndsAt:        tp(now.Add(time.Hour)),
				MonthlyCreditsLastUpdated: now,
			},
			wantTransition: TransitionNone,
			wantPro:        true,
			wantSync:       true,
		},
		{
			name: "pro with no end date never expires",
			in: Settings{
				UserID:                    "u1",
				IsPro:                     true,
				PlanSelected:              true,
				CloudSyncEnabled:          true,
				AutoCloudSync:             true,
				MonthlyCreditsLastUpdated: now,
			},
			wantTransition: TransitionNone,
			wantPro:        true,
			wantSync:       true,
		},
		{
			name: "end date exactly now is not yet expired",
			in: Settings{
				UserID:                    "u1",
				IsPro:                     true,
				PlanSelected:              true,
				CloudSyncEnabled:          true,
				AutoCloudSync:             true,
				SubscriptionEndsAt:        tp(now),
				MonthlyCreditsLastUpdated: now,
			},
			wantTransition: TransitionNone,
			wantPro:        true,
			wantSync:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, transition := Evaluate(tt.in, now, DefaultCredits)

			if transition != tt.wantTransition {
				t.Errorf("Evaluate() transition = %q, want %q", transition, tt.wantTransition)
			}
			if out.IsPro != tt.wantPro {
				t.Errorf("Evaluate() IsPro = %v, want %v", out.IsPro, tt.wantPro)
			}
			if out.CloudSyncEnabled != tt.wantSync || out.AutoCloudSync != tt.wantSync {
				t.Errorf("Evaluate() sync toggles = %v/%v, want %v",
					out.CloudSyncEnabled, out.AutoCloudSync, tt.wantSync)
			}
		})
	}
}

func TestEvaluate_MonthlyRefill(t *testing.T) {
	refill := 2

	tests := []struct {
		name           string
		lastUpdated    time.Time
		now            time.Time
		planSelected   bool
		credits        int
		wantTransition Transition
		wantCredits    int
	}{
		{
			name:           "next calendar month refills",
			lastUpdated:    time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC),
			now:            time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			planSelected:   true,
			credits:        0,
			wantTransition: TransitionRefilled,
			wantCredits:    2,
		},
		{
			name:           "same month does not refill again",
			lastUpdated:    time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			now:            time.Date(2026, 3, 31, 23, 0, 0, 0, time.UTC),
			planSelected:   true,
			credits:        2,
			wantTransition: TransitionNone,
			wantCredits:    2,
		},
		{
			name:           "multi month gap refills exactly once",
			lastUpdated:    time.Date(2025, 11, 10, 0, 0, 0, 0, time.UTC),
			now:            time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
			planSelected:   true,
			credits:        1,
			wantTransition: TransitionRefilled,
			wantCredits:    3,
		},
		{
			name:           "year boundary counts as a later month",
			lastUpdated:    time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
			now:            time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			planSelected:   true,
			credits:        0,
			wantTransition: TransitionRefilled,
			wantCredits:    2,
		},
		{
			name:           "no refill before plan selection",
			lastUpdated:    time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
			now:            time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			planSelected:   false,
			credits:        0,
			wantTransition: TransitionNone,
			wantCredits:    0,
		},
		{
			name:           "clock gone backwards does not refill",
			lastUpdated:    time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
			now:            time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			planSelected:   true,
			credits:        2,
			wantTransition: TransitionNone,
			wantCredits:    2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := Settings{
				UserID:                    "u1",
				PlanSelected:              tt.planSelected,
				AICredits:                 tt.credits,
				MonthlyCreditsLastUpdated: tt.lastUpdated,
			}

			out, transition := Evaluate(in, tt.now, refill)

			if transition != tt.wantTransition {
				t.Errorf("Evaluate() transition = %q, want %q", transition, tt.wantTransition)
			}
			if out.AICredits != tt.wantCredits {
				t.Errorf("Evaluate() credits = %d, want %d", out.AICredits, tt.wantCredits)
			}
			if transition == TransitionRefilled && !out.MonthlyCreditsLastUpdated.Equal(tt.now) {
				t.Errorf("Evaluate() last updated = %v, want %v", out.MonthlyCreditsLastUpdated, tt.now)
			}
		})
	}
}

func TestEvaluate_ExpiryWinsOverRefill(t *testing.T) {
	// A pro user whose subscription lapsed and whose last refill is months old:
	// a single pass only downgrades, the refill lands on the next pass.
	now := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	in := Settings{
		UserID:                    "u1",
		IsPro:                     true,
		PlanSelected:              true,
		CloudSyncEnabled:          true,
		AutoCloudSync:             true,
		SubscriptionEndsAt:        tp(now.Add(-24 * time.Hour)),
		AICredits:                 0,
		MonthlyCreditsLastUpdated: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	out, transition := Evaluate(in, now, DefaultCredits)
	if transition != TransitionExpired {
		t.Fatalf("first pass transition = %q, want %q", transition, TransitionExpired)
	}
	if out.AICredits != 0 {
		t.Errorf("first pass credits = %d, want 0", out.AICredits)
	}

	out2, transition2 := Evaluate(out, now, DefaultCredits)
	if transition2 != TransitionRefilled {
		t.Fatalf("second pass transition = %q, want %q", transition2, TransitionRefilled)
	}
	if out2.AICredits != DefaultCredits {
		t.Errorf("second pass credits = %d, want %d", out2.AICredits, DefaultCredits)
	}
}

func TestEvaluate_Idempotent(t *testing.T) {
	now := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	in := Settings{
		UserID:                    "u1",
		PlanSelected:              true,
		AICredits:                 0,
		MonthlyCreditsLastUpdated: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	}

	out, transition := Evaluate(in, now, DefaultCredits)
	if transition != TransitionRefilled {
		t.Fatalf("first pass transition = %q, want %q", transition, TransitionRefilled)
	}

	again, transition2 := Evaluate(out, now, DefaultCredits)
	if transition2 != TransitionNone {
		t.Errorf("second pass transition = %q, want none", transition2)
	}
	if again.AICredits != out.AICredits {
		t.Errorf("second pass credits = %d, want %d", again.AICredits, out.AICredits)
	}
}

func TestSnapshot_CopiesPointers(t *testing.T) {
	ends := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	s := Settings{UserID: "u1", SubscriptionEndsAt: &ends}

	cp := s.Snapshot()
	*cp.SubscriptionEndsAt = cp.SubscriptionEndsAt.AddDate(1, 0, 0)

	if !s.SubscriptionEndsAt.Equal(ends) {
		t.Error("Snapshot() shares SubscriptionEndsAt with the original")
	}
}
