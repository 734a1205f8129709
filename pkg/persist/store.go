// Package persist saves task progress so long-running operations can
// resume their counts after a restart.
package persist

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/arthur-debert/tasklines/pkg/core"
)

// Store is a durable key-value store of persisted task records
type Store interface {
	// Load returns the record for key; found is false when none exists
	Load(ctx context.Context, key string) (state core.PersistedState, found bool, err error)
	Save(ctx context.Context, key string, state core.PersistedState) error
	Delete(ctx context.Context, key string) error
}

// NewKey returns a fresh persistence key
func NewKey() string {
	return uuid.NewString()
}

// MemoryStore keeps records in memory
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]core.PersistedState
}

// NewMemoryStore returns an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]core.PersistedState)}
}

func (m *MemoryStore) Load(_ context.Context, key string) (core.PersistedState, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.records[key]
	return s, ok, nil
}

func (m *MemoryStore) Save(_ context.Context, key string, state core.PersistedState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[key] = state
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, key)
	return nil
}

// Keys lists stored keys, in no particular order
func (m *MemoryStore) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.records))
	for k := range m.records {
		keys = append(keys, k)
	}
	return keys
}
