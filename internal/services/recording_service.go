package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rvalenzuelab/voznote/internal/config"
	"github.com/rvalenzuelab/voznote/internal/domain/recording"
	"github.com/rvalenzuelab/voznote/internal/pkg/errors"
	"github.com/rvalenzuelab/voznote/internal/pkg/logger"
	"github.com/rvalenzuelab/voznote/internal/pkg/metrics"
)

// RecordingService implements recording.Service: audio payloads on disk,
// metadata in the local cache, both mirrored fire-and-forget when enabled.
type RecordingService struct {
	local     recording.Repository
	remote    recording.Repository // nil when mirroring is disabled
	audioDir  string
	retention config.RetentionConfig
	logger    *logger.Logger
	now       func() time.Time

	mirrorAsync bool
}

// NewRecordingService creates a recording service. remote may be nil.
func NewRecordingService(local, remote recording.Repository, audioDir string, retention config.RetentionConfig, log *logger.Logger) (*RecordingService, error) {
	if err := os.MkdirAll(audioDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating audio directory: %w", err)
	}
	return &RecordingService{
		local:       local,
		remote:      remote,
		audioDir:    audioDir,
		retention:   retention,
		logger:      log,
		now:         time.Now,
		mirrorAsync: true,
	}, nil
}

// Create stores the audio payload and inserts the recording
func (s *RecordingService) Create(ctx context.Context, userID, name string, audio io.Reader) (*recording.Recording, error) {
	id := uuid.New().String()
	path := filepath.Join(s.audioDir, id+audioExt(name))

	size, err := writeAudio(path, audio)
	if err != nil {
		return nil, errors.StorageError("Failed to store audio payload", err)
	}

	now := s.now()
	rec := &recording.Recording{
		ID:        id,
		UserID:    userID,
		Name:      name,
		AudioPath: path,
		SizeBytes: size,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.local.Create(ctx, rec); err != nil {
		// Don't leave an orphaned payload behind
		if rmErr := os.Remove(path); rmErr != nil {
			s.logger.WithError(rmErr).Warn("Failed to remove orphaned audio payload")
		}
		return nil, err
	}

	s.mirror("create", rec.ID, func(mctx context.Context) error {
		return s.remote.Create(mctx, rec)
	})

	return rec, nil
}

// Get retrieves one recording
func (s *RecordingService) Get(ctx context.Context, userID, id string) (*recording.Recording, error) {
	return s.local.GetByID(ctx, userID, id)
}

// List returns the user's recordings, newest first
func (s *RecordingService) List(ctx context.Context, userID string) ([]*recording.Recording, error) {
	return s.local.ListByUser(ctx, userID)
}

// Rename updates the display name
func (s *RecordingService) Rename(ctx context.Context, userID, id, name string) (*recording.Recording, error) {
	return s.update(ctx, userID, id, func(rec *recording.Recording) {
		rec.Name = name
	})
}

// SetTranscript attaches transcription output to a recording
func (s *RecordingService) SetTranscript(ctx context.Context, userID, id, transcript string) (*recording.Recording, error) {
	return s.update(ctx, userID, id, func(rec *recording.Recording) {
		rec.Transcript = transcript
	})
}

// Delete removes the recording and its audio payload
func (s *RecordingService) Delete(ctx context.Context, userID, id string) error {
	rec, err := s.local.GetByID(ctx, userID, id)
	if err != nil {
		return err
	}

	if err := s.local.Delete(ctx, userID, id); err != nil {
		return err
	}

	if err := os.Remove(rec.AudioPath); err != nil && !os.IsNotExist(err) {
		s.logger.WithError(err).With("recording_id", id).Warn("Failed to remove audio payload")
	}

	s.mirror("delete", id, func(mctx context.Context) error {
		return s.remote.Delete(mctx, userID, id)
	})

	return nil
}

// Sweep deletes recordings older than the retention window, in batches of the
// configured size, and returns the number deleted.
func (s *RecordingService) Sweep(ctx context.Context) (int, error) {
	cutoff := s.now().AddDate(0, 0, -s.retention.MaxAgeDays)
	deleted := 0

	for {
		batch, err := s.local.ListOlderThan(ctx, cutoff, s.retention.BatchSize)
		if err != nil {
			return deleted, err
		}
		if len(batch) == 0 {
			break
		}

		for _, rec := range batch {
			if err := s.Delete(ctx, rec.UserID, rec.ID); err != nil {
				s.logger.WithError(err).With("recording_id", rec.ID).Warn("Retention sweep failed to delete recording")
				continue
			}
			deleted++
		}

		if len(batch) < s.retention.BatchSize {
			break
		}
	}

	if deleted > 0 {
		metrics.RecordSweepDeleted(deleted)
		s.logger.WithFields(map[string]interface{}{
			"deleted": deleted,
			"cutoff":  cutoff,
		}).Info("Retention sweep completed")
	}
	return deleted, nil
}

// OpenAudio opens the stored audio payload for reading
func (s *RecordingService) OpenAudio(ctx context.Context, userID, id string) (io.ReadCloser, error) {
	rec, err := s.local.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(rec.AudioPath)
	if err != nil {
		return nil, errors.StorageError("Failed to open audio payload", err)
	}
	return f, nil
}

func (s *RecordingService) update(ctx context.Context, userID, id string, apply func(*recording.Recording)) (*recording.Recording, error) {
	rec, err := s.local.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	apply(rec)
	rec.UpdatedAt = s.now()

	if err := s.local.Update(ctx, rec); err != nil {
		return nil, err
	}

	s.mirror("update", rec.ID, func(mctx context.Context) error {
		return s.remote.Update(mctx, rec)
	})

	return rec, nil
}

// mirror runs op against the remote from a detached goroutine, logging and
// counting failures instead of returning them
func (s *RecordingService) mirror(op, id string, fn func(ctx context.Context) error) {
	if s.remote == nil {
		return
	}
	run := func() {
		mctx, cancel := context.WithTimeout(context.Background(), mirrorTimeout)
		defer cancel()
		if err := fn(mctx); err != nil {
			s.logger.WithError(err).WithFields(map[string]interface{}{
				"op":           op,
				"recording_id": id,
			}).Warn("Recording mirror write failed")
			metrics.RecordMirrorSync("recordings", "failed")
			return
		}
		metrics.RecordMirrorSync("recordings", "ok")
	}
	if s.mirrorAsync {
		go run()
		return
	}
	run()
}

func writeAudio(path string, audio io.Reader) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	size, err := io.Copy(f, audio)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return 0, err
	}
	return size, nil
}

// audioExt keeps a sane extension from the uploaded name, defaulting to .webm
func audioExt(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".webm", ".ogg", ".mp3", ".m4a", ".wav", ".flac":
		return ext
	default:
		return ".webm"
	}
}
