package variants

import (
	"context"
	"sync"
)

// Repository persists variants. Save inserts or replaces by id.
type Repository interface {
	Save(ctx context.Context, variant *Variant) (*Variant, error)
	GetByID(ctx context.Context, id string) (*Variant, error)
	// FindByContentAndDimension returns the first stored match. Uniqueness of
	// the pair is not enforced.
	FindByContentAndDimension(ctx context.Context, contentID, dimension string) (*Variant, error)
	ListByContent(ctx context.Context, contentID string) ([]*Variant, error)
	Delete(ctx context.Context, id string) error
}

// MemoryRepository keeps variants in insertion order. Replacing a variant
// keeps its original position.
type MemoryRepository struct {
	mu       sync.RWMutex
	variants map[string]*Variant
	order    []string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{variants: make(map[string]*Variant)}
}

var _ Repository = (*MemoryRepository)(nil)

func (m *MemoryRepository) Save(_ context.Context, variant *Variant) (*Variant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := variant.Clone()
	if _, ok := m.variants[stored.ID]; !ok {
		m.order = append(m.order, stored.ID)
	}
	m.variants[stored.ID] = stored
	return stored.Clone(), nil
}

func (m *MemoryRepository) GetByID(_ context.Context, id string) (*Variant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	variant, ok := m.variants[id]
	if !ok {
		return nil, notFoundByID(id)
	}
	return variant.Clone(), nil
}

func (m *MemoryRepository) FindByContentAndDimension(_ context.Context, contentID, dimension string) (*Variant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, id := range m.order {
		variant := m.variants[id]
		if variant.ContentID == contentID && variant.Dimension == dimension {
			return variant.Clone(), nil
		}
	}
	return nil, notFoundByDimension(contentID, dimension)
}

func (m *MemoryRepository) ListByContent(_ context.Context, contentID string) ([]*Variant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []*Variant{}
	for _, id := range m.order {
		if variant := m.variants[id]; variant.ContentID == contentID {
			out = append(out, variant.Clone())
		}
	}
	return out, nil
}

func (m *MemoryRepository) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.variants[id]; !ok {
		return notFoundByID(id)
	}
	delete(m.variants, id)
	for i, existing := range m.order {
		if existing == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}
