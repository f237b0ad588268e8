package services

import (
	"context"

	"github.com/rvalenzuelab/voznote/internal/domain/recording"
	"github.com/rvalenzuelab/voznote/internal/domain/settings"
	"github.com/rvalenzuelab/voznote/internal/pkg/errors"
	"github.com/rvalenzuelab/voznote/internal/pkg/logger"
	"github.com/rvalenzuelab/voznote/internal/pkg/metrics"
	"github.com/rvalenzuelab/voznote/internal/providers"
)

// TranscriptionService runs speech-to-text over stored recordings. Pro users
// transcribe freely; metered users spend one AI credit per transcription.
type TranscriptionService struct {
	transcriber providers.Transcriber // nil when the integration is not configured
	store       settings.Store
	recordings  recording.Service
	logger      *logger.Logger
}

// NewTranscriptionService creates a transcription service
func NewTranscriptionService(transcriber providers.Transcriber, store settings.Store, recordings recording.Service, log *logger.Logger) *TranscriptionService {
	return &TranscriptionService{
		transcriber: transcriber,
		store:       store,
		recordings:  recordings,
		logger:      log,
	}
}

// Configured reports whether the transcription provider is usable
func (s *TranscriptionService) Configured() bool {
	return s.transcriber != nil
}

// Transcribe converts a recording's audio to text, attaches the transcript and
// charges one credit for metered users.
func (s *TranscriptionService) Transcribe(ctx context.Context, userID, recordingID string) (*recording.Recording, error) {
	if s.transcriber == nil {
		return nil, errors.NotConfigured("transcription")
	}

	prefs, err := s.store.Read(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !prefs.IsPro && prefs.AICredits <= 0 {
		metrics.RecordTranscription("rejected")
		return nil, errors.CreditsExhausted()
	}

	rec, err := s.recordings.Get(ctx, userID, recordingID)
	if err != nil {
		return nil, err
	}

	audio, err := s.recordings.OpenAudio(ctx, userID, recordingID)
	if err != nil {
		return nil, err
	}
	defer audio.Close()

	text, err := s.transcriber.Transcribe(ctx, rec.AudioPath, audio)
	if err != nil {
		metrics.RecordTranscription("failed")
		return nil, errors.TranscriptionError(err)
	}

	updated, err := s.recordings.SetTranscript(ctx, userID, recordingID, text)
	if err != nil {
		return nil, err
	}

	if !prefs.IsPro {
		prefs.AICredits--
		if werr := s.store.Write(ctx, prefs); werr != nil {
			// Transcript is already attached; a lost debit is preferable to a
			// lost transcript
			s.logger.WithError(werr).With("user_id", userID).Error("Failed to debit AI credit")
		}
	}

	metrics.RecordTranscription("ok")
	s.logger.WithFields(map[string]interface{}{
		"user_id":      userID,
		"recording_id": recordingID,
		"chars":        len(text),
	}).Info("Recording transcribed")

	return updated, nil
}
