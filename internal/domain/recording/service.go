package recording

import (
	"context"
	"io"
)

// Service defines the business interface over voice notes
type Service interface {
	// Create stores the audio payload and inserts the recording, local-first
	// with fire-and-forget remote mirroring
	Create(ctx context.Context, userID, name string, audio io.Reader) (*Recording, error)

	// Get retrieves one recording
	Get(ctx context.Context, userID, id string) (*Recording, error)

	// List returns the user's recordings, newest first
	List(ctx context.Context, userID string) ([]*Recording, error)

	// Rename updates the display name
	Rename(ctx context.Context, userID, id, name string) (*Recording, error)

	// SetTranscript attaches transcription output to a recording
	SetTranscript(ctx context.Context, userID, id, transcript string) (*Recording, error)

	// Delete removes the recording locally; remote deletion failure is logged,
	// never blocks the local delete
	Delete(ctx context.Context, userID, id string) error

	// Sweep deletes recordings older than the configured retention window,
	// in batches, and returns the number deleted
	Sweep(ctx context.Context) (int, error)

	// OpenAudio opens the stored audio payload for reading
	OpenAudio(ctx context.Context, userID, id string) (io.ReadCloser, error)
}
