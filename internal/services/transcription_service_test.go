package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/rvalenzuelab/voznote/internal/domain/settings"
	"github.com/rvalenzuelab/voznote/internal/pkg/errors"
	"github.com/rvalenzuelab/voznote/internal/providers"
	"github.com/rvalenzuelab/voznote/internal/testutil"
)

// fakeTranscriber returns a fixed transcript
type fakeTranscriber struct {
	text  string
	err   error
	calls int
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

func newTranscriptionFixture(t *testing.T, transcriber *fakeTranscriber) (*TranscriptionService, *SettingsStore, *RecordingService) {
	t.Helper()

	store := newTestSettingsStore(testutil.NewMockSettingsRepository(), nil)
	recordings := newTestRecordingService(t, testutil.NewMockRecordingRepository(), nil)

	// A typed nil must stay a nil interface for the configured check
	var tr providers.Transcriber
	if transcriber != nil {
		tr = transcriber
	}
	svc := NewTranscriptionService(tr, store, recordings, testutil.NewTestLogger())
	return svc, store, recordings
}

func TestTranscriptionService_MeteredUser(t *testing.T) {
	transcriber := &fakeTranscriber{text: "buy milk"}
	svc, store, recordings := newTranscriptionFixture(t, transcriber)
	ctx := context.Background()

	prefs, err := store.Read(ctx, "u1")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	startCredits := prefs.AICredits

	rec, err := recordings.Create(ctx, "u1", "note.webm", strings.NewReader("audio"))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := svc.Transcribe(ctx, "u1", rec.ID)
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
	if got.Transcript != "buy milk" {
		t.Errorf("Transcribe() transcript = %q", got.Transcript)
	}

	after, err := store.Read(ctx, "u1")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if after.AICredits != startCredits-1 {
		t.Errorf("Transcribe() credits = %d, want %d", after.AICredits, startCredits-1)
	}
}

func TestTranscriptionService_CreditsExhausted(t *testing.T) {
	transcriber := &fakeTranscriber{text: "never seen"}
	svc, store, recordings := newTranscriptionFixture(t, transcriber)
	ctx := context.Background()

	prefs := settings.Defaults("u1", time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC))
	prefs.AICredits = 0
	if err := store.Write(ctx, prefs); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	rec, err := recordings.Create(ctx, "u1", "note.webm", strings.NewReader("audio"))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	_, err = svc.Transcribe(ctx, "u1", rec.ID)
	appErr, ok := err.(*errors.AppError)
	if !ok || appErr.Code != errors.ErrCodeCreditsExhausted {
		t.Fatalf("Transcribe() error = %v, want CREDITS_EXHAUSTED", err)
	}
	if transcriber.calls != 0 {
		t.Error("Transcribe() should not reach the provider without credits")
	}
}

func TestTranscriptionService_ProBypassesCredits(t *testing.T) {
	transcriber := &fakeTranscriber{text: "pro note"}
	svc, store, recordings := newTranscriptionFixture(t, transcriber)
	ctx := context.Background()

	ends := store.now().AddDate(0, 1, 0)
	prefs := settings.Defaults("u1", store.now())
	prefs.IsPro = true
	prefs.PlanSelected = true
	prefs.SubscriptionEndsAt = &ends
	prefs.AICredits = 0
	if err := store.Write(ctx, prefs); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	rec, err := recordings.Create(ctx, "u1", "note.webm", strings.NewReader("audio"))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := svc.Transcribe(ctx, "u1", rec.ID)
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
	if got.Transcript != "pro note" {
		t.Errorf("Transcribe() transcript = %q", got.Transcript)
	}

	after, err := store.Read(ctx, "u1")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if after.AICredits != 0 {
		t.Errorf("Transcribe() pro user credits = %d, want untouched 0", after.AICredits)
	}
}

func TestTranscriptionService_ProviderFailureKeepsCredit(t *testing.T) {
	transcriber := &fakeTranscriber{err: fmt.Errorf("model overloaded")}
	svc, store, recordings := newTranscriptionFixture(t, transcriber)
	ctx := context.Background()

	prefs, err := store.Read(ctx, "u1")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	startCredits := prefs.AICredits

	rec, err := recordings.Create(ctx, "u1", "note.webm", strings.NewReader("audio"))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	_, err = svc.Transcribe(ctx, "u1", rec.ID)
	appErr, ok := err.(*errors.AppError)
	if !ok || appErr.Code != errors.ErrCodeTranscription {
		t.Fatalf("Transcribe() error = %v, want TRANSCRIPTION_ERROR", err)
	}

	after, err := store.Read(ctx, "u1")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if after.AICredits != startCredits {
		t.Errorf("Transcribe() failure should not charge, credits = %d, want %d",
			after.AICredits, startCredits)
	}
}

func TestTranscriptionService_NotConfigured(t *testing.T) {
	svc, _, _ := newTranscriptionFixture(t, nil)

	_, err := svc.Transcribe(context.Background(), "u1", "any")
	appErr, ok := err.(*errors.AppError)
	if !ok || appErr.Code != errors.ErrCodeNotConfigured {
		t.Fatalf("Transcribe() error = %v, want NOT_CONFIGURED", err)
	}
}
