package settings

import "context"

// Repository defines the interface for settings persistence. The local cache
// and the remote mirror implement the same contract.
type Repository interface {
	// Get retrieves the settings record for a user; NotFound when absent
	Get(ctx context.Context, userID string) (*Settings, error)

	// Upsert creates or replaces the settings record for s.UserID
	Upsert(ctx context.Context, s *Settings) error

	// ListUserIDs returns the ids of all users with a settings record
	ListUserIDs(ctx context.Context) ([]string, error)
}
