package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rvalenzuelab/voznote/internal/api/dto"
	"github.com/rvalenzuelab/voznote/internal/api/middleware"
	"github.com/rvalenzuelab/voznote/internal/domain/settings"
	"github.com/rvalenzuelab/voznote/internal/pkg/errors"
	"github.com/rvalenzuelab/voznote/internal/pkg/logger"
	"github.com/rvalenzuelab/voznote/internal/pkg/utils"
)

// SettingsHandler handles settings requests
type SettingsHandler struct {
	store  settings.Store
	logger *logger.Logger
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(store settings.Store, log *logger.Logger) *SettingsHandler {
	return &SettingsHandler{store: store, logger: log}
}

// Get returns the current user's settings
// @Summary Get settings
// @Description Read the user's settings with subscription state up to date
// @Tags Settings
// @Produce json
// @Success 200 {object} dto.SettingsDTO "Settings"
// @Failure 401 {object} utils.ErrorResponse "Unauthorized"
// @Security BearerAuth
// @Router /api/v1/settings [get]
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		utils.WriteError(w, errors.Unauthorized("User not authenticated"))
		return
	}

	s, err := h.store.Read(r.Context(), userID)
	if err != nil {
		h.logger.WithError(err).With("user_id", userID).Error("Failed to read settings")
		utils.WriteAppError(w, err)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.SettingsFromModel(s))
}

// Plan returns the subscription summary
// @Summary Get plan summary
// @Description Read the user's subscription, trial and credit state
// @Tags Settings
// @Produce json
// @Success 200 {object} dto.PlanDTO "Plan summary"
// @Failure 401 {object} utils.ErrorResponse "Unauthorized"
// @Security BearerAuth
// @Router /api/v1/settings/plan [get]
func (h *SettingsHandler) Plan(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		utils.WriteError(w, errors.Unauthorized("User not authenticated"))
		return
	}

	s, err := h.store.Read(r.Context(), userID)
	if err != nil {
		h.logger.WithError(err).With("user_id", userID).Error("Failed to read settings")
		utils.WriteAppError(w, err)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.PlanFromModel(s))
}

// Update applies the user-adjustable toggles
// @Summary Update settings
// @Description Update the user-adjustable settings fields
// @Tags Settings
// @Accept json
// @Produce json
// @Param request body dto.UpdateSettingsRequest true "Fields to update"
// @Success 200 {object} dto.SettingsDTO "Updated settings"
// @Failure 400 {object} utils.ErrorResponse "Invalid request"
// @Security BearerAuth
// @Router /api/v1/settings [put]
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		utils.WriteError(w, errors.Unauthorized("User not authenticated"))
		return
	}

	var req dto.UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid request body"))
		return
	}

	s, err := h.store.Read(r.Context(), userID)
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}

	if req.PlanSelected != nil {
		s.PlanSelected = *req.PlanSelected
	}
	if req.CloudSyncEnabled != nil {
		s.CloudSyncEnabled = *req.CloudSyncEnabled
	}
	if req.AutoCloudSync != nil {
		s.AutoCloudSync = *req.AutoCloudSync
	}

	if err := h.store.Write(r.Context(), s); err != nil {
		h.logger.WithError(err).With("user_id", userID).Error("Failed to write settings")
		utils.WriteAppError(w, err)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.SettingsFromModel(s))
}
