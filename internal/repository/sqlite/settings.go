package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/rvalenzuelab/voznote/internal/domain/settings"
	"github.com/rvalenzuelab/voznote/internal/pkg/errors"
)

// SettingsRepository implements settings.Repository over the local cache
type SettingsRepository struct {
	db *sql.DB
}

// NewSettingsRepository creates a new local settings repository
func NewSettingsRepository(db *sql.DB) settings.Repository {
	return &SettingsRepository{db: db}
}

// Get retrieves the settings record for a user
func (r *SettingsRepository) Get(ctx context.Context, userID string) (*settings.Settings, error) {
	query := `
		SELECT user_id, is_pro, plan_selected, cloud_sync_enabled, auto_cloud_sync,
		       subscription_ends_at, pro_trial_ends_at, pro_trial_used,
		       ai_credits, monthly_credits_last_updated, updated_at
		FROM settings WHERE user_id = ?
	`

	var s settings.Settings
	var isPro, planSelected, cloudSync, autoSync, trialUsed int
	var subEnds, trialEnds sql.NullInt64
	var lastUpdated, updatedAt int64

	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&s.UserID, &isPro, &planSelected, &cloudSync, &autoSync,
		&subEnds, &trialEnds, &trialUsed,
		&s.AICredits, &lastUpdated, &updatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, errors.NotFound("Settings")
	}
	if err != nil {
		return nil, errors.StorageError("Failed to get settings", err)
	}

	s.IsPro = isPro == 1
	s.PlanSelected = planSelected == 1
	s.CloudSyncEnabled = cloudSync == 1
	s.AutoCloudSync = autoSync == 1
	s.ProTrialUsed = trialUsed == 1
	s.SubscriptionEndsAt = unixPtr(subEnds)
	s.ProTrialEndsAt = unixPtr(trialEnds)
	s.MonthlyCreditsLastUpdated = time.Unix(lastUpdated, 0)
	s.UpdatedAt = time.Unix(updatedAt, 0)

	return &s, nil
}

// Upsert creates or replaces the settings record
func (r *SettingsRepository) Upsert(ctx context.Context, s *settings.Settings) error {
	query := `
		INSERT INTO settings (
		    user_id, is_pro, plan_selected, cloud_sync_enabled, auto_cloud_sync,
		    subscription_ends_at, pro_trial_ends_at, pro_trial_used,
		    ai_credits, monthly_credits_last_updated, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
		    is_pro=excluded.is_pro,
		    plan_selected=excluded.plan_selected,
		    cloud_sync_enabled=excluded.cloud_sync_enabled,
		    auto_cloud_sync=excluded.auto_cloud_sync,
		    subscription_ends_at=excluded.subscription_ends_at,
		    pro_trial_ends_at=excluded.pro_trial_ends_at,
		    pro_trial_used=excluded.pro_trial_used,
		    ai_credits=excluded.ai_credits,
		    monthly_credits_last_updated=excluded.monthly_credits_last_updated,
		    updated_at=excluded.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		s.UserID, boolToInt(s.IsPro), boolToInt(s.PlanSelected),
		boolToInt(s.CloudSyncEnabled), boolToInt(s.AutoCloudSync),
		ptrUnix(s.SubscriptionEndsAt), ptrUnix(s.ProTrialEndsAt), boolToInt(s.ProTrialUsed),
		s.AICredits, s.MonthlyCreditsLastUpdated.Unix(), s.UpdatedAt.Unix(),
	)
	if err != nil {
		return errors.StorageError("Failed to upsert settings", err)
	}
	return nil
}

// ListUserIDs returns all user ids with a settings record
func (r *SettingsRepository) ListUserIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT user_id FROM settings ORDER BY user_id`)
	if err != nil {
		return nil, errors.StorageError("Failed to list settings", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, errors.StorageError("Failed to scan settings row", err)
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.StorageError("Failed to iterate settings", err)
	}
	return out, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func ptrUnix(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Unix()
}

func unixPtr(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.Unix(v.Int64, 0)
	return &t
}
