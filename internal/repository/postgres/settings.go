package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/rvalenzuelab/voznote/internal/domain/settings"
	"github.com/rvalenzuelab/voznote/internal/pkg/errors"
)

// SettingsRepository implements settings.Repository over the remote mirror
type SettingsRepository struct {
	db *sql.DB
}

// NewSettingsRepository creates a new remote settings repository
func NewSettingsRepository(db *sql.DB) settings.Repository {
	return &SettingsRepository{db: db}
}

// Get retrieves the settings record for a user
func (r *SettingsRepository) Get(ctx context.Context, userID string) (*settings.Settings, error) {
	query := `
		SELECT user_id, is_pro, plan_selected, cloud_sync_enabled, auto_cloud_sync,
		       subscription_ends_at, pro_trial_ends_at, pro_trial_used,
		       ai_credits, monthly_credits_last_updated, updated_at
		FROM settings WHERE user_id = $1
	`

	var s settings.Settings
	var subEnds, trialEnds sql.NullInt64
	var lastUpdated, updatedAt int64

	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&s.UserID, &s.IsPro, &s.PlanSelected, &s.CloudSyncEnabled, &s.AutoCloudSync,
		&subEnds, &trialEnds, &s.ProTrialUsed,
		&s.AICredits, &lastUpdated, &updatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, errors.NotFound("Settings")
	}
	if err != nil {
		return nil, errors.StorageError("Failed to get settings from mirror", err)
	}

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
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (user_id) DO UPDATE SET
		    is_pro=EXCLUDED.is_pro,
		    plan_selected=EXCLUDED.plan_selected,
		    cloud_sync_enabled=EXCLUDED.cloud_sync_enabled,
		    auto_cloud_sync=EXCLUDED.auto_cloud_sync,
		    subscription_ends_at=EXCLUDED.subscription_ends_at,
		    pro_trial_ends_at=EXCLUDED.pro_trial_ends_at,
		    pro_trial_used=EXCLUDED.pro_trial_used,
		    ai_credits=EXCLUDED.ai_credits,
		    monthly_credits_last_updated=EXCLUDED.monthly_credits_last_updated,
		    updated_at=EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		s.UserID, s.IsPro, s.PlanSelected, s.CloudSyncEnabled, s.AutoCloudSync,
		ptrUnix(s.SubscriptionEndsAt), ptrUnix(s.ProTrialEndsAt), s.ProTrialUsed,
		s.AICredits, s.MonthlyCreditsLastUpdated.Unix(), s.UpdatedAt.Unix(),
	)
	if err != nil {
		return errors.StorageError("Failed to upsert settings to mirror", err)
	}
	return nil
}

// ListUserIDs returns all user ids with a settings record
func (r *SettingsRepository) ListUserIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT user_id FROM settings ORDER BY user_id`)
	if err != nil {
		return nil, errors.StorageError("Failed to list settings from mirror", err)
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
