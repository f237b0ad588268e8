package dto

import (
	"time"

	"github.com/rvalenzuelab/voznote/internal/domain/recording"
)

// RecordingDTO represents a voice note in API responses
type RecordingDTO struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Transcript string    `json:"transcript,omitempty"`
	SizeBytes  int64     `json:"sizeBytes"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// RecordingFromModel maps the domain record to its API shape
func RecordingFromModel(r *recording.Recording) *RecordingDTO {
	return &RecordingDTO{
		ID:         r.ID,
		Name:       r.Name,
		Transcript: r.Transcript,
		SizeBytes:  r.SizeBytes,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

// RecordingsFromModels maps a list of recordings
func RecordingsFromModels(recs []*recording.Recording) []*RecordingDTO {
	out := make([]*RecordingDTO, 0, len(recs))
	for _, r := range recs {
		out = append(out, RecordingFromModel(r))
	}
	return out
}

// RenameRecordingRequest updates the display name
type RenameRecordingRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}
