package client

import (
	"context"
	"io"
	"time"
)

// Recording represents a voice note
type Recording struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Transcript string    `json:"transcript,omitempty"`
	SizeBytes  int64     `json:"sizeBytes"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// ListRecordings returns the user's recordings, newest first
func (c *Client) ListRecordings(ctx context.Context) ([]Recording, error) {
	var recs []Recording
	if err := c.doRequest(ctx, "GET", "/api/v1/recordings", nil, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

// GetRecording retrieves one recording
func (c *Client) GetRecording(ctx context.Context, id string) (*Recording, error) {
	var rec Recording
	if err := c.doRequest(ctx, "GET", "/api/v1/recordings/"+id, nil, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// UploadRecording uploads an audio file as a new voice note
func (c *Client) UploadRecording(ctx context.Context, name, fileName string, audio io.Reader) (*Recording, error) {
	var rec Recording
	fields := map[string]string{"name": name}
	if err := c.upload(ctx, "/api/v1/recordings", "audio", fileName, audio, fields, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// RenameRecording updates the display name
func (c *Client) RenameRecording(ctx context.Context, id, name string) (*Recording, error) {
	var rec Recording
	if err := c.doRequest(ctx, "PUT", "/api/v1/recordings/"+id, map[string]string{"name": name}, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// DeleteRecording removes a recording
func (c *Client) DeleteRecording(ctx context.Context, id string) error {
	return c.doRequest(ctx, "DELETE", "/api/v1/recordings/"+id, nil, nil)
}

// TranscribeRecording runs speech-to-text over a recording
func (c *Client) TranscribeRecording(ctx context.Context, id string) (*Recording, error) {
	var rec Recording
	if err := c.doRequest(ctx, "POST", "/api/v1/recordings/"+id+"/transcribe", nil, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}
