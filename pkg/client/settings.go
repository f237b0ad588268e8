package client

import (
	"context"
	"time"
)

// Settings represents the user's settings
type Settings struct {
	IsPro                     bool       `json:"isPro"`
	PlanSelected              bool       `json:"planSelected"`
	CloudSyncEnabled          bool       `json:"cloudSyncEnabled"`
	AutoCloudSync             bool       `json:"autoCloudSync"`
	SubscriptionEndsAt        *time.Time `json:"subscriptionEndsAt,omitempty"`
	ProTrialEndsAt            *time.Time `json:"proTrialEndsAt,omitempty"`
	ProTrialUsed              bool       `json:"proTrialUsed"`
	AICredits                 int        `json:"aiCredits"`
	MonthlyCreditsLastUpdated time.Time  `json:"monthlyCreditsLastUpdated"`
	UpdatedAt                 time.Time  `json:"updatedAt"`
}

// UpdateSettingsRequest carries the user-adjustable toggles; nil fields are
// left unchanged
type UpdateSettingsRequest struct {
	PlanSelected     *bool `json:"planSelected,omitempty"`
	CloudSyncEnabled *bool `json:"cloudSyncEnabled,omitempty"`
	AutoCloudSync    *bool `json:"autoCloudSync,omitempty"`
}

// PlanSummary summarizes the subscription state
type PlanSummary struct {
	Plan               string     `json:"plan"`
	PlanSelected       bool       `json:"planSelected"`
	SubscriptionEndsAt *time.Time `json:"subscriptionEndsAt,omitempty"`
	ProTrialEndsAt     *time.Time `json:"proTrialEndsAt,omitempty"`
	ProTrialUsed       bool       `json:"proTrialUsed"`
	AICredits          int        `json:"aiCredits"`
}

// GetSettings retrieves the current user's settings
func (c *Client) GetSettings(ctx context.Context) (*Settings, error) {
	var s Settings
	if err := c.doRequest(ctx, "GET", "/api/v1/settings", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// GetPlan retrieves the subscription summary
func (c *Client) GetPlan(ctx context.Context) (*PlanSummary, error) {
	var p PlanSummary
	if err := c.doRequest(ctx, "GET", "/api/v1/settings/plan", nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateSettings applies the user-adjustable toggles
func (c *Client) UpdateSettings(ctx context.Context, req UpdateSettingsRequest) (*Settings, error) {
	var s Settings
	if err := c.doRequest(ctx, "PUT", "/api/v1/settings", req, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
