package recording

import "time"

// Recording represents a captured voice note. The audio payload is immutable
// once created; the transcript is filled in later by an AI action.
type Recording struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Name       string    `json:"name"`
	Transcript string    `json:"transcript,omitempty"`
	AudioPath  string    `json:"audio_path"`
	SizeBytes  int64     `json:"size_bytes"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
