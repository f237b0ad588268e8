package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/rvalenzuelab/voznote/internal/domain/recording"
	"github.com/rvalenzuelab/voznote/internal/pkg/errors"
)

// RecordingRepository implements recording.Repository over the local cache
type RecordingRepository struct {
	db *sql.DB
}

// NewRecordingRepository creates a new local recording repository
func NewRecordingRepository(db *sql.DB) recording.Repository {
	return &RecordingRepository{db: db}
}

const recordingColumns = `id, user_id, name, transcript, audio_path, size_bytes, created_at, updated_at`

// Create inserts a new recording
func (r *RecordingRepository) Create(ctx context.Context, rec *recording.Recording) error {
	query := `
		INSERT INTO recordings (` + recordingColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		rec.ID, rec.UserID, rec.Name, rec.Transcript, rec.AudioPath, rec.SizeBytes,
		rec.CreatedAt.Unix(), rec.UpdatedAt.Unix(),
	)
	if err != nil {
		return errors.StorageError("Failed to create recording", err)
	}
	return nil
}

// GetByID retrieves a recording owned by userID
func (r *RecordingRepository) GetByID(ctx context.Context, userID, id string) (*recording.Recording, error) {
	query := `SELECT ` + recordingColumns + ` FROM recordings WHERE id = ? AND user_id = ?`

	rec, err := scanRecording(r.db.QueryRowContext(ctx, query, id, userID))
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("Recording")
	}
	if err != nil {
		return nil, errors.StorageError("Failed to get recording", err)
	}
	return rec, nil
}

// ListByUser returns all recordings for a user, newest first
func (r *RecordingRepository) ListByUser(ctx context.Context, userID string) ([]*recording.Recording, error) {
	query := `SELECT ` + recordingColumns + ` FROM recordings WHERE user_id = ? ORDER BY created_at DESC, id`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, errors.StorageError("Failed to list recordings", err)
	}
	defer rows.Close()

	var out []*recording.Recording
	for rows.Next() {
		rec, err := scanRecording(rows)
		if err != nil {
			return nil, errors.StorageError("Failed to scan recording", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.StorageError("Failed to iterate recordings", err)
	}
	return out, nil
}

// Update replaces the mutable fields of an existing recording
func (r *RecordingRepository) Update(ctx context.Context, rec *recording.Recording) error {
	query := `
		UPDATE recordings
		SET name = ?, transcript = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		rec.Name, rec.Transcript, rec.UpdatedAt.Unix(), rec.ID, rec.UserID,
	)
	if err != nil {
		return errors.StorageError("Failed to update recording", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return errors.StorageError("Failed to get affected rows", err)
	}
	if rows == 0 {
		return errors.NotFound("Recording")
	}
	return nil
}

// Delete removes a recording
func (r *RecordingRepository) Delete(ctx context.Context, userID, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM recordings WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return errors.StorageError("Failed to delete recording", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return errors.StorageError("Failed to get affected rows", err)
	}
	if rows == 0 {
		return errors.NotFound("Recording")
	}
	return nil
}

// ListOlderThan returns up to limit recordings created before cutoff, oldest first
func (r *RecordingRepository) ListOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]*recording.Recording, error) {
	query := `SELECT ` + recordingColumns + ` FROM recordings WHERE created_at < ? ORDER BY created_at LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, cutoff.Unix(), limit)
	if err != nil {
		return nil, errors.StorageError("Failed to list old recordings", err)
	}
	defer rows.Close()

	var out []*recording.Recording
	for rows.Next() {
		rec, err := scanRecording(rows)
		if err != nil {
			return nil, errors.StorageError("Failed to scan recording", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.StorageError("Failed to iterate recordings", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecording(row rowScanner) (*recording.Recording, error) {
	var rec recording.Recording
	var createdAt, updatedAt int64
	if err := row.Scan(
		&rec.ID, &rec.UserID, &rec.Name, &rec.Transcript, &rec.AudioPath, &rec.SizeBytes,
		&createdAt, &updatedAt,
	); err != nil {
		return nil, err
	}
	rec.CreatedAt = time.Unix(createdAt, 0)
	rec.UpdatedAt = time.Unix(updatedAt, 0)
	return &rec, nil
}
