package recording

import (
	"context"
	"time"
)

// Repository defines the interface for recording persistence. The local cache
// and the remote mirror implement the same contract.
type Repository interface {
	// Create inserts a new recording
	Create(ctx context.Context, r *Recording) error

	// GetByID retrieves a recording owned by userID; NotFound when absent
	GetByID(ctx context.Context, userID, id string) (*Recording, error)

	// ListByUser returns all recordings for a user, newest first
	ListByUser(ctx context.Context, userID string) ([]*Recording, error)

	// Update replaces mutable fields (name, transcript) of an existing recording
	Update(ctx context.Context, r *Recording) error

	// Delete removes a recording; NotFound when absent
	Delete(ctx context.Context, userID, id string) error

	// ListOlderThan returns up to limit recordings created before cutoff,
	// oldest first, across all users. Used by the retention sweep.
	ListOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]*Recording, error)
}
