package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/rvalenzuelab/voznote/internal/domain/settings"
	"github.com/rvalenzuelab/voznote/internal/pkg/errors"
	"github.com/rvalenzuelab/voznote/internal/repository/sqlite"
	"github.com/rvalenzuelab/voznote/internal/testutil"
)

func TestSettingsRepository_UpsertAndGet(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := sqlite.NewSettingsRepository(db)
	ctx := context.Background()

	now := time.Unix(time.Now().Unix(), 0) // second precision, matching storage
	ends := now.AddDate(0, 1, 0)
	in := &settings.Settings{
		UserID:                    "u1",
		IsPro:                     true,
		PlanSelected:              true,
		CloudSyncEnabled:          true,
		AutoCloudSync:             false,
		SubscriptionEndsAt:        &ends,
		ProTrialUsed:              true,
		AICredits:                 2,
		MonthlyCreditsLastUpdated: now,
		UpdatedAt:                 now,
	}

	if err := repo.Upsert(ctx, in); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	got, err := repo.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	if got.IsPro != in.IsPro || got.PlanSelected != in.PlanSelected ||
		got.CloudSyncEnabled != in.CloudSyncEnabled || got.AutoCloudSync != in.AutoCloudSync {
		t.Errorf("Get() flags = %+v", got)
	}
	if got.SubscriptionEndsAt == nil || !got.SubscriptionEndsAt.Equal(ends) {
		t.Errorf("Get() ends at = %v, want %v", got.SubscriptionEndsAt, ends)
	}
	if got.ProTrialEndsAt != nil {
		t.Errorf("Get() trial ends = %v, want nil", got.ProTrialEndsAt)
	}
	if got.AICredits != 2 {
		t.Errorf("Get() credits = %d, want 2", got.AICredits)
	}
	if !got.MonthlyCreditsLastUpdated.Equal(now) {
		t.Errorf("Get() last updated = %v, want %v", got.MonthlyCreditsLastUpdated, now)
	}
}

func TestSettingsRepository_UpsertReplaces(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := sqlite.NewSettingsRepository(db)
	ctx := context.Background()

	now := time.Unix(time.Now().Unix(), 0)
	rec := settings.Defaults("u1", now)
	if err := repo.Upsert(ctx, rec); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	rec.AICredits = 5
	rec.PlanSelected = true
	if err := repo.Upsert(ctx, rec); err != nil {
		t.Fatalf("second Upsert() error = %v", err)
	}

	got, err := repo.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.AICredits != 5 || !got.PlanSelected {
		t.Errorf("Get() after replace = %+v", got)
	}
}

func TestSettingsRepository_GetMissing(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := sqlite.NewSettingsRepository(db)

	_, err := repo.Get(context.Background(), "nobody")
	appErr, ok := err.(*errors.AppError)
	if !ok || appErr.Code != errors.ErrCodeNotFound {
		t.Fatalf("Get() error = %v, want NOT_FOUND", err)
	}
}

func TestSettingsRepository_ListUserIDs(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := sqlite.NewSettingsRepository(db)
	ctx := context.Background()

	now := time.Unix(time.Now().Unix(), 0)
	for _, id := range []string{"charlie", "alice", "bob"} {
		if err := repo.Upsert(ctx, settings.Defaults(id, now)); err != nil {
			t.Fatalf("Upsert(%s) error = %v", id, err)
		}
	}

	ids, err := repo.ListUserIDs(ctx)
	if err != nil {
		t.Fatalf("ListUserIDs() error = %v", err)
	}
	want := []string{"alice", "bob", "charlie"}
	if len(ids) != len(want) {
		t.Fatalf("ListUserIDs() returned %d ids, want %d", len(ids), len(want))
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("ListUserIDs()[%d] = %q, want %q", i, ids[i], want[i])
		}
	}
}
