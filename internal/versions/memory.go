package versions

import (
	"context"
	"sync"

	"github.com/goliatone/go-polycontent/internal/domain"
)

type entityKey struct {
	kind domain.EntityType
	id   string
}

// MemoryRepository keeps the ledger in process memory.
type MemoryRepository struct {
	mu       sync.RWMutex
	entries  []*Entry
	byID     map[string]*Entry
	byEntity map[entityKey][]*Entry
}

// NewMemoryRepository returns an empty ledger.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:     make(map[string]*Entry),
		byEntity: make(map[entityKey][]*Entry),
	}
}

var _ Repository = (*MemoryRepository)(nil)

func (m *MemoryRepository) Append(_ context.Context, entry *Entry) (*Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := entry.Clone()
	key := entityKey{kind: stored.EntityType, id: stored.EntityID}
	stored.Sequence = len(m.byEntity[key]) + 1

	m.entries = append(m.entries, stored)
	m.byID[stored.ID] = stored
	m.byEntity[key] = append(m.byEntity[key], stored)
	return stored.Clone(), nil
}

func (m *MemoryRepository) ListByEntity(_ context.Context, entityType domain.EntityType, entityID string) ([]*Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneAll(m.byEntity[entityKey{kind: entityType, id: entityID}]), nil
}

func (m *MemoryRepository) GetByID(_ context.Context, id string) (*Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entry, ok := m.byID[id]
	if !ok {
		return nil, &NotFoundError{VersionID: id}
	}
	return entry.Clone(), nil
}

func (m *MemoryRepository) List(context.Context) ([]*Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneAll(m.entries), nil
}

// Count reports how many entries an entity has.
func (m *MemoryRepository) Count(entityType domain.EntityType, entityID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byEntity[entityKey{kind: entityType, id: entityID}])
}

func cloneAll(entries []*Entry) []*Entry {
	out := make([]*Entry, len(entries))
	for i, entry := range entries {
		out[i] = entry.Clone()
	}
	return out
}
