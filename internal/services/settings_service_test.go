package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rvalenzuelab/voznote/internal/domain/settings"
	"github.com/rvalenzuelab/voznote/internal/testutil"
)

func newTestSettingsStore(local, remote settings.Repository) *SettingsStore {
	store := NewSettingsStore(local, remote, settings.DefaultCredits, testutil.NewTestLogger())
	store.mirrorAsync = false
	store.now = func() time.Time { return time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC) }
	return store
}

func TestSettingsStore_ReadDefaults(t *testing.T) {
	local := testutil.NewMockSettingsRepository()
	store := newTestSettingsStore(local, nil)
	ctx := context.Background()

	got, err := store.Read(ctx, "u1")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if got.IsPro || got.PlanSelected || got.CloudSyncEnabled {
		t.Error("Read() defaults should start with all flags off")
	}
	if got.AICredits != settings.DefaultCredits {
		t.Errorf("Read() credits = %d, want %d", got.AICredits, settings.DefaultCredits)
	}
	if _, ok := local.Records["u1"]; !ok {
		t.Error("Read() did not persist defaults for a new user")
	}
}

func TestSettingsStore_ReadRemoteSupersedes(t *testing.T) {
	local := testutil.NewMockSettingsRepository()
	remote := testutil.NewMockSettingsRepository()
	store := newTestSettingsStore(local, remote)
	ctx := context.Background()
	now := store.now()

	local.Records["u1"] = &settings.Settings{
		UserID:                    "u1",
		AICredits:                 0,
		MonthlyCreditsLastUpdated: now,
	}
	ends := now.AddDate(0, 1, 0)
	remote.Records["u1"] = &settings.Settings{
		UserID:                    "u1",
		IsPro:                     true,
		PlanSelected:              true,
		CloudSyncEnabled:          true,
		SubscriptionEndsAt:        &ends,
		MonthlyCreditsLastUpdated: now,
	}

	got, err := store.Read(ctx, "u1")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if !got.IsPro {
		t.Error("Read() should prefer the mirrored record over the cache")
	}
	if cached := local.Records["u1"]; !cached.IsPro {
		t.Error("Read() should repair the cache from the mirror")
	}
}

func TestSettingsStore_ReadMirrorUnreachable(t *testing.T) {
	local := testutil.NewMockSettingsRepository()
	remote := testutil.NewMockSettingsRepository()
	remote.GetError = fmt.Errorf("connection refused")
	store := newTestSettingsStore(local, remote)
	ctx := context.Background()

	local.Records["u1"] = &settings.Settings{
		UserID:                    "u1",
		PlanSelected:              true,
		AICredits:                 1,
		MonthlyCreditsLastUpdated: store.now(),
	}

	got, err := store.Read(ctx, "u1")
	if err != nil {
		t.Fatalf("Read() should degrade to the cache, got error %v", err)
	}
	if got.AICredits != 1 {
		t.Errorf("Read() credits = %d, want cached 1", got.AICredits)
	}
}

func TestSettingsStore_ReadAppliesExpiry(t *testing.T) {
	local := testutil.NewMockSettingsRepository()
	store := newTestSettingsStore(local, nil)
	ctx := context.Background()
	now := store.now()

	ends := now.Add(-time.Hour)
	local.Records["u1"] = &settings.Settings{
		UserID:                    "u1",
		IsPro:                     true,
		PlanSelected:              true,
		CloudSyncEnabled:          true,
		AutoCloudSync:             true,
		SubscriptionEndsAt:        &ends,
		MonthlyCreditsLastUpdated: now,
	}

	got, err := store.Read(ctx, "u1")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if got.IsPro || got.CloudSyncEnabled || got.AutoCloudSync {
		t.Error("Read() should downgrade a lapsed subscription")
	}
	if stored := local.Records["u1"]; stored.IsPro {
		t.Error("Read() should persist the downgrade")
	}
}

func TestSettingsStore_ReadAppliesRefill(t *testing.T) {
	local := testutil.NewMockSettingsRepository()
	store := newTestSettingsStore(local, nil)
	ctx := context.Background()

	local.Records["u1"] = &settings.Settings{
		UserID:                    "u1",
		PlanSelected:              true,
		AICredits:                 0,
		MonthlyCreditsLastUpdated: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	}

	got, err := store.Read(ctx, "u1")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if got.AICredits != settings.DefaultCredits {
		t.Errorf("Read() credits = %d, want %d", got.AICredits, settings.DefaultCredits)
	}

	// A second read in the same month must not top up again
	again, err := store.Read(ctx, "u1")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if again.AICredits != settings.DefaultCredits {
		t.Errorf("second Read() credits = %d, want %d", again.AICredits, settings.DefaultCredits)
	}
}

func TestSettingsStore_WriteMirrors(t *testing.T) {
	local := testutil.NewMockSettingsRepository()
	remote := testutil.NewMockSettingsRepository()
	store := newTestSettingsStore(local, remote)
	ctx := context.Background()

	rec := settings.Defaults("u1", store.now())
	rec.PlanSelected = true
	if err := store.Write(ctx, rec); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	if mirrored, ok := remote.Records["u1"]; !ok || !mirrored.PlanSelected {
		t.Error("Write() did not mirror the record")
	}
}

func TestSettingsStore_WriteMirrorFailureIsSilent(t *testing.T) {
	local := testutil.NewMockSettingsRepository()
	remote := testutil.NewMockSettingsRepository()
	remote.UpsertError = fmt.Errorf("connection refused")
	store := newTestSettingsStore(local, remote)
	ctx := context.Background()

	if err := store.Write(ctx, settings.Defaults("u1", store.now())); err != nil {
		t.Fatalf("Write() should not surface mirror failures, got %v", err)
	}
	if _, ok := local.Records["u1"]; !ok {
		t.Error("Write() did not persist locally")
	}
}

func TestSettingsStore_ApplyUpgrade(t *testing.T) {
	local := testutil.NewMockSettingsRepository()
	store := newTestSettingsStore(local, nil)
	ctx := context.Background()
	now := store.now()

	trialEnd := now.Add(48 * time.Hour)
	local.Records["u1"] = &settings.Settings{
		UserID:                    "u1",
		ProTrialEndsAt:            &trialEnd,
		AICredits:                 1,
		MonthlyCreditsLastUpdated: now,
	}

	endsAt := now.AddDate(0, 1, 0)
	got, err := store.ApplyUpgrade(ctx, "u1", endsAt)
	if err != nil {
		t.Fatalf("ApplyUpgrade() error = %v", err)
	}

	if !got.IsPro || !got.PlanSelected || !got.CloudSyncEnabled || !got.AutoCloudSync {
		t.Error("ApplyUpgrade() should enable pro and both sync toggles")
	}
	if got.SubscriptionEndsAt == nil || !got.SubscriptionEndsAt.Equal(endsAt) {
		t.Errorf("ApplyUpgrade() ends at = %v, want %v", got.SubscriptionEndsAt, endsAt)
	}
	if got.ProTrialEndsAt != nil {
		t.Error("ApplyUpgrade() should clear the trial end date")
	}
	if !got.ProTrialUsed {
		t.Error("ApplyUpgrade() should mark the trial used")
	}
}

func TestSettingsStore_Subscribe(t *testing.T) {
	local := testutil.NewMockSettingsRepository()
	store := newTestSettingsStore(local, nil)
	ctx := context.Background()

	var seen []settings.Settings
	cancel := store.Subscribe("u1", func(s settings.Settings) {
		seen = append(seen, s)
	})

	if err := store.Write(ctx, settings.Defaults("u1", store.now())); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := store.Write(ctx, settings.Defaults("other", store.now())); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if len(seen) != 1 {
		t.Fatalf("subscriber saw %d snapshots, want 1", len(seen))
	}
	if seen[0].UserID != "u1" {
		t.Errorf("subscriber saw user %q, want u1", seen[0].UserID)
	}

	cancel()
	if err := store.Write(ctx, settings.Defaults("u1", store.now())); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if len(seen) != 1 {
		t.Errorf("cancelled subscriber saw %d snapshots, want 1", len(seen))
	}
}

func TestSettingsStore_EvaluateAll(t *testing.T) {
	local := testutil.NewMockSettingsRepository()
	store := newTestSettingsStore(local, nil)
	ctx := context.Background()
	now := store.now()

	lapsed := now.Add(-time.Hour)
	local.Records["expired"] = &settings.Settings{
		UserID:                    "expired",
		IsPro:                     true,
		SubscriptionEndsAt:        &lapsed,
		MonthlyCreditsLastUpdated: now,
	}
	local.Records["due"] = &settings.Settings{
		UserID:                    "due",
		PlanSelected:              true,
		AICredits:                 0,
		MonthlyCreditsLastUpdated: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	if err := store.EvaluateAll(ctx); err != nil {
		t.Fatalf("EvaluateAll() error = %v", err)
	}

	if local.Records["expired"].IsPro {
		t.Error("EvaluateAll() did not downgrade the lapsed user")
	}
	if local.Records["due"].AICredits != settings.DefaultCredits {
		t.Errorf("EvaluateAll() credits = %d, want %d",
			local.Records["due"].AICredits, settings.DefaultCredits)
	}
}
