package settings

import (
	"context"
	"time"
)

// Store defines the business interface over the local-first, optionally
// mirrored settings record.
type Store interface {
	// Read returns the settings for a user, local-first. When mirroring is
	// enabled and the remote is reachable, the remote copy supersedes the
	// cache and is written back to it. The lifecycle evaluator runs on every
	// read; any transition is persisted before the result is returned.
	// A missing record yields defaults (and persists them).
	Read(ctx context.Context, userID string) (*Settings, error)

	// Write persists the record to the local cache synchronously and, when
	// mirroring is enabled, upserts the remote copy from a detached goroutine.
	// Mirror failures are logged and counted, never returned.
	Write(ctx context.Context, s *Settings) error

	// ApplyUpgrade marks a user Pro until endsAt and enables cloud sync,
	// clearing trial bookkeeping. Used by the payment webhook path.
	ApplyUpgrade(ctx context.Context, userID string, endsAt time.Time) (*Settings, error)

	// Subscribe registers fn to receive every stored snapshot for userID.
	// The returned cancel func removes the subscription.
	Subscribe(userID string, fn func(Settings)) (cancel func())
}
