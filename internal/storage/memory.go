package storage

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Storage used for tests and development.
type MemoryStore struct {
	mu        sync.Mutex
	saves     map[uuid.UUID]*SaveRecord
	pingError error
}

// Ensure MemoryStore implements Storage interface
var _ Storage = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{saves: make(map[uuid.UUID]*SaveRecord)}
}

// SetPingError configures Ping to fail with the given error.
func (m *MemoryStore) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = err
}

func (m *MemoryStore) Ping(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pingError
}

func (m *MemoryStore) Close() error {
	return nil
}

func (m *MemoryStore) PutSave(ctx context.Context, rec *SaveRecord) error {
	if rec == nil {
		return errors.New("save record cannot be nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	rec.UpdatedAt = time.Now().UTC()
	stored := *rec
	m.saves[rec.ID] = &stored
	return nil
}

func (m *MemoryStore) GetSave(ctx context.Context, id uuid.UUID) (*SaveRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.saves[id]
	if !ok {
		return nil, nil
	}
	out := *rec
	return &out, nil
}

func (m *MemoryStore) LatestSave(ctx context.Context) (*SaveRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest *SaveRecord
	for _, rec := range m.saves {
		if latest == nil || rec.UpdatedAt.After(latest.UpdatedAt) {
			latest = rec
		}
	}
	if latest == nil {
		return nil, nil
	}
	out := *latest
	return &out, nil
}

func (m *MemoryStore) DeleteSave(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.saves, id)
	return nil
}
