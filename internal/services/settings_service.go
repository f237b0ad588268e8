package services

import (
	"context"
	"sync"
	"time"

	"github.com/rvalenzuelab/voznote/internal/domain/settings"
	"github.com/rvalenzuelab/voznote/internal/pkg/errors"
	"github.com/rvalenzuelab/voznote/internal/pkg/logger"
	"github.com/rvalenzuelab/voznote/internal/pkg/metrics"
)

// mirrorTimeout bounds detached mirror writes so they cannot leak forever
const mirrorTimeout = 10 * time.Second

// SettingsStore implements settings.Store: a local-first record with an
// optional remote mirror and the lifecycle evaluator applied on every read.
type SettingsStore struct {
	local  settings.Repository
	remote settings.Repository // nil when mirroring is disabled
	refill int
	logger *logger.Logger
	now    func() time.Time

	// mirrorAsync is true in production; tests flip it to make the
	// fire-and-forget mirror write synchronous.
	mirrorAsync bool

	mu     sync.Mutex
	subs   map[string]map[int]func(settings.Settings)
	nextID int
}

// NewSettingsStore creates a settings store. remote may be nil.
func NewSettingsStore(local, remote settings.Repository, refill int, log *logger.Logger) *SettingsStore {
	return &SettingsStore{
		local:       local,
		remote:      remote,
		refill:      refill,
		logger:      log,
		now:         time.Now,
		mirrorAsync: true,
		subs:        make(map[string]map[int]func(settings.Settings)),
	}
}

// Read returns the settings for a user, applying the read-repair merge with
// the remote mirror and then the lifecycle evaluator. Mirror failures degrade
// silently to the cache; a missing record yields persisted defaults.
func (s *SettingsStore) Read(ctx context.Context, userID string) (*settings.Settings, error) {
	now := s.now()

	cur, err := s.local.Get(ctx, userID)
	if err != nil && errors.ErrCodeNotFound != appCode(err) {
		return nil, err
	}

	if s.remote != nil {
		remote, rerr := s.remote.Get(ctx, userID)
		switch {
		case rerr == nil:
			// Remote supersedes local; repair the cache
			cur = remote
			if uerr := s.local.Upsert(ctx, remote); uerr != nil {
				s.logger.WithError(uerr).Warn("Failed to write remote settings back to cache")
			}
		case appCode(rerr) == errors.ErrCodeNotFound:
			// Nothing mirrored yet; local wins
		default:
			s.logger.WithError(rerr).Warn("Settings mirror unreachable, serving cached copy")
			metrics.RecordMirrorSync("settings", "read_failed")
		}
	}

	if cur == nil {
		cur = settings.Defaults(userID, now)
		if err := s.Write(ctx, cur); err != nil {
			return nil, err
		}
		return cur, nil
	}

	cur.Normalize(now)

	next, transition := settings.Evaluate(*cur, now, s.refill)
	if transition != settings.TransitionNone {
		metrics.RecordLifecycleTransition(string(transition))
		s.logger.WithFields(map[string]interface{}{
			"user_id":    userID,
			"transition": string(transition),
		}).Info("Lifecycle transition applied")
		if err := s.Write(ctx, &next); err != nil {
			return nil, err
		}
		return &next, nil
	}

	return cur, nil
}

// Write persists the record locally, mirrors it fire-and-forget, and notifies
// subscribers with the stored snapshot.
func (s *SettingsStore) Write(ctx context.Context, rec *settings.Settings) error {
	rec.UpdatedAt = s.now()

	if err := s.local.Upsert(ctx, rec); err != nil {
		return err
	}

	if s.remote != nil {
		snapshot := rec.Snapshot()
		s.detach(func() {
			mctx, cancel := context.WithTimeout(context.Background(), mirrorTimeout)
			defer cancel()
			if err := s.remote.Upsert(mctx, &snapshot); err != nil {
				s.logger.WithError(err).With("user_id", snapshot.UserID).
					Warn("Settings mirror write failed")
				metrics.RecordMirrorSync("settings", "failed")
				return
			}
			metrics.RecordMirrorSync("settings", "ok")
		})
	}

	s.notify(rec.Snapshot())
	return nil
}

// ApplyUpgrade marks the user Pro until endsAt, enables both sync toggles and
// closes out trial bookkeeping. Used by the payment webhook path.
func (s *SettingsStore) ApplyUpgrade(ctx context.Context, userID string, endsAt time.Time) (*settings.Settings, error) {
	cur, err := s.Read(ctx, userID)
	if err != nil {
		return nil, err
	}

	cur.IsPro = true
	cur.PlanSelected = true
	cur.CloudSyncEnabled = true
	cur.AutoCloudSync = true
	cur.SubscriptionEndsAt = &endsAt
	cur.ProTrialEndsAt = nil
	cur.ProTrialUsed = true

	if err := s.Write(ctx, cur); err != nil {
		return nil, err
	}
	return cur, nil
}

// Subscribe registers fn for every stored snapshot of userID's settings
func (s *SettingsStore) Subscribe(userID string, fn func(settings.Settings)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.subs[userID] == nil {
		s.subs[userID] = make(map[int]func(settings.Settings))
	}
	id := s.nextID
	s.nextID++
	s.subs[userID][id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs[userID], id)
		if len(s.subs[userID]) == 0 {
			delete(s.subs, userID)
		}
	}
}

// EvaluateAll runs one lifecycle pass over every known user. Invoked by the
// periodic worker so expiry and refill apply even for idle sessions.
func (s *SettingsStore) EvaluateAll(ctx context.Context) error {
	ids, err := s.local.ListUserIDs(ctx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if _, err := s.Read(ctx, id); err != nil {
			s.logger.WithError(err).With("user_id", id).Warn("Lifecycle pass failed for user")
		}
	}
	return nil
}

func (s *SettingsStore) notify(snapshot settings.Settings) {
	s.mu.Lock()
	fns := make([]func(settings.Settings), 0, len(s.subs[snapshot.UserID]))
	for _, fn := range s.subs[snapshot.UserID] {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(snapshot)
	}
}

func (s *SettingsStore) detach(fn func()) {
	if s.mirrorAsync {
		go fn()
		return
	}
	fn()
}

// appCode extracts the AppError code, or empty for foreign errors
func appCode(err error) string {
	if appErr, ok := err.(*errors.AppError); ok {
		return appErr.Code
	}
	return ""
}
