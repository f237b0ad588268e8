package providers

import (
	"context"
	"io"

	openai "github.com/sashabaranov/go-openai"
)

// Transcriber converts audio into text
type Transcriber interface {
	Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error)
}

// OpenAITranscriber implements Transcriber over the OpenAI audio API
type OpenAITranscriber struct {
	client *openai.Client
}

// NewOpenAITranscriber creates a transcriber; apiKey must be non-empty
func NewOpenAITranscriber(apiKey string) *OpenAITranscriber {
	return &OpenAITranscriber{client: openai.NewClient(apiKey)}
}

// Transcribe sends the audio stream to Whisper and returns the transcript text
func (t *OpenAITranscriber) Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error) {
	resp, err := t.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: filename,
		Reader:   audio,
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}
