package testutil

import (
	"context"
	"sort"
	"time"

	"github.com/rvalenzuelab/voznote/internal/domain/recording"
	"github.com/rvalenzuelab/voznote/internal/domain/settings"
	"github.com/rvalenzuelab/voznote/internal/domain/user"
	"github.com/rvalenzuelab/voznote/internal/pkg/errors"
)

// MockSettingsRepository is a mock implementation of settings.Repository
type MockSettingsRepository struct {
	Records     map[string]*settings.Settings
	GetError    error
	UpsertError error
	Upserts     int
}

func NewMockSettingsRepository() *MockSettingsRepository {
	return &MockSettingsRepository{
		Records: make(map[string]*settings.Settings),
	}
}

func (m *MockSettingsRepository) Get(ctx context.Context, userID string) (*settings.Settings, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	s, ok := m.Records[userID]
	if !ok {
		return nil, errors.NotFound("Settings")
	}
	cp := s.Snapshot()
	return &cp, nil
}

func (m *MockSettingsRepository) Upsert(ctx context.Context, s *settings.Settings) error {
	if m.UpsertError != nil {
		return m.UpsertError
	}
	cp := s.Snapshot()
	m.Records[s.UserID] = &cp
	m.Upserts++
	return nil
}

func (m *MockSettingsRepository) ListUserIDs(ctx context.Context) ([]string, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	ids := make([]string, 0, len(m.Records))
	for id := range m.Records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// MockRecordingRepository is a mock implementation of recording.Repository
type MockRecordingRepository struct {
	Recordings  map[string]*recording.Recording
	CreateError error
	GetError    error
	DeleteError error
	Deletes     int
}

func NewMockRecordingRepository() *MockRecordingRepository {
	return &MockRecordingRepository{
		Recordings: make(map[string]*recording.Recording),
	}
}

func (m *MockRecordingRepository) Create(ctx context.Context, rec *recording.Recording) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	cp := *rec
	m.Recordings[rec.ID] = &cp
	return nil
}

func (m *MockRecordingRepository) GetByID(ctx context.Context, userID, id string) (*recording.Recording, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	rec, ok := m.Recordings[id]
	if !ok || rec.UserID != userID {
		return nil, errors.NotFound("Recording")
	}
	cp := *rec
	return &cp, nil
}

func (m *MockRecordingRepository) ListByUser(ctx context.Context, userID string) ([]*recording.Recording, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	var out []*recording.Recording
	for _, rec := range m.Recordings {
		if rec.UserID == userID {
			cp := *rec
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *MockRecordingRepository) Update(ctx context.Context, rec *recording.Recording) error {
	existing, ok := m.Recordings[rec.ID]
	if !ok || existing.UserID != rec.UserID {
		return errors.NotFound("Recording")
	}
	cp := *rec
	m.Recordings[rec.ID] = &cp
	return nil
}

func (m *MockRecordingRepository) Delete(ctx context.Context, userID, id string) error {
	if m.DeleteError != nil {
		return m.DeleteError
	}
	rec, ok := m.Recordings[id]
	if !ok || rec.UserID != userID {
		return errors.NotFound("Recording")
	}
	delete(m.Recordings, id)
	m.Deletes++
	return nil
}

func (m *MockRecordingRepository) ListOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]*recording.Recording, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	var out []*recording.Recording
	for _, rec := range m.Recordings {
		if rec.CreatedAt.Before(cutoff) {
			cp := *rec
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// MockUserRepository is a mock implementation of user.Repository
type MockUserRepository struct {
	Users       map[string]*user.User
	EmailIndex  map[string]*user.User
	CreateError error
	GetError    error
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		Users:      make(map[string]*user.User),
		EmailIndex: make(map[string]*user.User),
	}
}

func (m *MockUserRepository) Create(ctx context.Context, u *user.User) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	if _, ok := m.EmailIndex[u.Email]; ok {
		return errors.Conflict("Email already registered")
	}
	cp := *u
	m.Users[u.ID] = &cp
	m.EmailIndex[u.Email] = &cp
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	u, ok := m.Users[id]
	if !ok {
		return nil, errors.NotFound("User")
	}
	cp := *u
	return &cp, nil
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	u, ok := m.EmailIndex[email]
	if !ok {
		return nil, errors.NotFound("User")
	}
	cp := *u
	return &cp, nil
}
