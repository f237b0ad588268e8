package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rvalenzuelab/voznote/internal/api/dto"
	"github.com/rvalenzuelab/voznote/internal/api/middleware"
	"github.com/rvalenzuelab/voznote/internal/domain/recording"
	"github.com/rvalenzuelab/voznote/internal/pkg/errors"
	"github.com/rvalenzuelab/voznote/internal/pkg/logger"
	"github.com/rvalenzuelab/voznote/internal/pkg/utils"
	"github.com/rvalenzuelab/voznote/internal/pkg/validator"
	"github.com/rvalenzuelab/voznote/internal/services"
)

// maxUploadBytes caps a single audio upload at 64 MiB
const maxUploadBytes = 64 << 20

// RecordingHandler handles voice note requests
type RecordingHandler struct {
	recordings    recording.Service
	transcription *services.TranscriptionService
	logger        *logger.Logger
	validator     *validator.Validator
}

// NewRecordingHandler creates a new recording handler
func NewRecordingHandler(recordings recording.Service, transcription *services.TranscriptionService, log *logger.Logger, val *validator.Validator) *RecordingHandler {
	return &RecordingHandler{
		recordings:    recordings,
		transcription: transcription,
		logger:        log,
		validator:     val,
	}
}

// Create uploads a new voice note
// @Summary Upload recording
// @Description Upload an audio file as a new voice note
// @Tags Recordings
// @Accept multipart/form-data
// @Produce json
// @Param name formData string false "Display name"
// @Param audio formData file true "Audio file"
// @Success 201 {object} dto.RecordingDTO "Recording created"
// @Failure 400 {object} utils.ErrorResponse "Invalid upload"
// @Security BearerAuth
// @Router /api/v1/recordings [post]
func (h *RecordingHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		utils.WriteError(w, errors.Unauthorized("User not authenticated"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid multipart upload"))
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		utils.WriteError(w, errors.BadRequest("Missing audio file"))
		return
	}
	defer file.Close()

	name := r.FormValue("name")
	if name == "" {
		name = header.Filename
	}

	rec, err := h.recordings.Create(r.Context(), userID, name, file)
	if err != nil {
		h.logger.WithError(err).With("user_id", userID).Error("Failed to create recording")
		utils.WriteAppError(w, err)
		return
	}

	utils.WriteSuccess(w, http.StatusCreated, dto.RecordingFromModel(rec))
}

// List returns the user's recordings, newest first
// @Summary List recordings
// @Tags Recordings
// @Produce json
// @Success 200 {array} dto.RecordingDTO "Recordings"
// @Security BearerAuth
// @Router /api/v1/recordings [get]
func (h *RecordingHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		utils.WriteError(w, errors.Unauthorized("User not authenticated"))
		return
	}

	recs, err := h.recordings.List(r.Context(), userID)
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.RecordingsFromModels(recs))
}

// Get returns one recording
// @Summary Get recording
// @Tags Recordings
// @Produce json
// @Param id path string true "Recording ID"
// @Success 200 {object} dto.RecordingDTO "Recording"
// @Failure 404 {object} utils.ErrorResponse "Not found"
// @Security BearerAuth
// @Router /api/v1/recordings/{id} [get]
func (h *RecordingHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		utils.WriteError(w, errors.Unauthorized("User not authenticated"))
		return
	}

	rec, err := h.recordings.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.RecordingFromModel(rec))
}

// Rename updates a recording's display name
// @Summary Rename recording
// @Tags Recordings
// @Accept json
// @Produce json
// @Param id path string true "Recording ID"
// @Param request body dto.RenameRecordingRequest true "New name"
// @Success 200 {object} dto.RecordingDTO "Updated recording"
// @Failure 404 {object} utils.ErrorResponse "Not found"
// @Security BearerAuth
// @Router /api/v1/recordings/{id} [put]
func (h *RecordingHandler) Rename(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		utils.WriteError(w, errors.Unauthorized("User not authenticated"))
		return
	}

	var req dto.RenameRecordingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid request body"))
		return
	}
	if validationErrs := h.validator.Validate(req); len(validationErrs) > 0 {
		utils.WriteError(w, errors.ValidationError("Validation failed", validationErrs))
		return
	}

	rec, err := h.recordings.Rename(r.Context(), userID, chi.URLParam(r, "id"), req.Name)
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.RecordingFromModel(rec))
}

// Delete removes a recording
// @Summary Delete recording
// @Tags Recordings
// @Param id path string true "Recording ID"
// @Success 200 {object} utils.SuccessResponse "Deleted"
// @Failure 404 {object} utils.ErrorResponse "Not found"
// @Security BearerAuth
// @Router /api/v1/recordings/{id} [delete]
func (h *RecordingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		utils.WriteError(w, errors.Unauthorized("User not authenticated"))
		return
	}

	if err := h.recordings.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		utils.WriteAppError(w, err)
		return
	}

	utils.WriteSuccessWithMessage(w, http.StatusOK, "Recording deleted", nil)
}

// Audio streams the stored audio payload
// @Summary Download audio
// @Tags Recordings
// @Produce octet-stream
// @Param id path string true "Recording ID"
// @Success 200 {file} binary "Audio payload"
// @Failure 404 {object} utils.ErrorResponse "Not found"
// @Security BearerAuth
// @Router /api/v1/recordings/{id}/audio [get]
func (h *RecordingHandler) Audio(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		utils.WriteError(w, errors.Unauthorized("User not authenticated"))
		return
	}

	audio, err := h.recordings.OpenAudio(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}
	defer audio.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	if _, err := io.Copy(w, audio); err != nil {
		h.logger.WithError(err).Warn("Failed to stream audio payload")
	}
}

// Transcribe runs speech-to-text over a recording
// @Summary Transcribe recording
// @Description Convert the recording's audio to text; metered users spend one AI credit
// @Tags Recordings
// @Produce json
// @Param id path string true "Recording ID"
// @Success 200 {object} dto.RecordingDTO "Recording with transcript"
// @Failure 402 {object} utils.ErrorResponse "No AI credits remaining"
// @Failure 503 {object} utils.ErrorResponse "Transcription not configured"
// @Security BearerAuth
// @Router /api/v1/recordings/{id}/transcribe [post]
func (h *RecordingHandler) Transcribe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		utils.WriteError(w, errors.Unauthorized("User not authenticated"))
		return
	}

	rec, err := h.transcription.Transcribe(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.RecordingFromModel(rec))
}
