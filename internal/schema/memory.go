package schema

import (
	"context"
	"slices"
	"sync"
)

// MemoryRepository keeps content types in process memory.
type MemoryRepository struct {
	mu    sync.RWMutex
	byID  map[string]*ContentType
	order []string
}

// NewMemoryRepository returns an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byID: make(map[string]*ContentType)}
}

func (m *MemoryRepository) Create(_ context.Context, ct *ContentType) (*ContentType, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.byID[ct.ID]; exists {
		return nil, &AlreadyExistsError{ID: ct.ID}
	}
	m.byID[ct.ID] = ct.Clone()
	m.order = append(m.order, ct.ID)
	return ct.Clone(), nil
}

func (m *MemoryRepository) GetByID(_ context.Context, id string) (*ContentType, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ct, ok := m.byID[id]
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	return ct.Clone(), nil
}

func (m *MemoryRepository) Update(_ context.Context, ct *ContentType) (*ContentType, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[ct.ID]; !ok {
		return nil, &NotFoundError{ID: ct.ID}
	}
	m.byID[ct.ID] = ct.Clone()
	return ct.Clone(), nil
}

func (m *MemoryRepository) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return &NotFoundError{ID: id}
	}
	delete(m.byID, id)
	m.order = slices.DeleteFunc(m.order, func(candidate string) bool { return candidate == id })
	return nil
}

func (m *MemoryRepository) List(context.Context) ([]*ContentType, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*ContentType, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.byID[id].Clone())
	}
	return out, nil
}
