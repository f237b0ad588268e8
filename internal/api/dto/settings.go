package dto

import (
	"time"

	"github.com/rvalenzuelab/voznote/internal/domain/settings"
)

// SettingsDTO represents the user's settings in API responses
type SettingsDTO struct {
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

// SettingsFromModel maps the domain record to its API shape
func SettingsFromModel(s *settings.Settings) *SettingsDTO {
	return &SettingsDTO{
		IsPro:                     s.IsPro,
		PlanSelected:              s.PlanSelected,
		CloudSyncEnabled:          s.CloudSyncEnabled,
		AutoCloudSync:             s.AutoCloudSync,
		SubscriptionEndsAt:        s.SubscriptionEndsAt,
		ProTrialEndsAt:            s.ProTrialEndsAt,
		ProTrialUsed:              s.ProTrialUsed,
		AICredits:                 s.AICredits,
		MonthlyCreditsLastUpdated: s.MonthlyCreditsLastUpdated,
		UpdatedAt:                 s.UpdatedAt,
	}
}

// PlanDTO summarizes the subscription state for paywall screens
type PlanDTO struct {
	Plan               string     `json:"plan"` // pro or free
	PlanSelected       bool       `json:"planSelected"`
	SubscriptionEndsAt *time.Time `json:"subscriptionEndsAt,omitempty"`
	ProTrialEndsAt     *time.Time `json:"proTrialEndsAt,omitempty"`
	ProTrialUsed       bool       `json:"proTrialUsed"`
	AICredits          int        `json:"aiCredits"`
}

// PlanFromModel maps the domain record to its plan summary
func PlanFromModel(s *settings.Settings) *PlanDTO {
	plan := "free"
	if s.IsPro {
		plan = "pro"
	}
	return &PlanDTO{
		Plan:               plan,
		PlanSelected:       s.PlanSelected,
		SubscriptionEndsAt: s.SubscriptionEndsAt,
		ProTrialEndsAt:     s.ProTrialEndsAt,
		ProTrialUsed:       s.ProTrialUsed,
		AICredits:          s.AICredits,
	}
}

// UpdateSettingsRequest carries the user-adjustable toggles. Absent fields are
// left unchanged; subscription state is managed by the payment flow and the
// lifecycle pass, never set directly.
type UpdateSettingsRequest struct {
	PlanSelected     *bool `json:"planSelected,omitempty"`
	CloudSyncEnabled *bool `json:"cloudSyncEnabled,omitempty"`
	AutoCloudSync    *bool `json:"autoCloudSync,omitempty"`
}
