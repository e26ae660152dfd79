package translations

import (
	"context"
	"sync"

	"github.com/goliatone/go-polycontent/internal/domain"
)

// Repository persists translations. Save inserts or replaces by id.
type Repository interface {
	Save(ctx context.Context, translation *Translation) (*Translation, error)
	GetByID(ctx context.Context, id string) (*Translation, error)
	FindByEntityAndLocale(ctx context.Context, entityType domain.EntityType, entityID, locale string) (*Translation, error)
	ListByEntity(ctx context.Context, entityType domain.EntityType, entityID string) ([]*Translation, error)
	Delete(ctx context.Context, id string) error
}

type MemoryRepository struct {
	mu           sync.RWMutex
	translations map[string]*Translation
	order        []string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{translations: make(map[string]*Translation)}
}

var _ Repository = (*MemoryRepository)(nil)

func (m *MemoryRepository) Save(_ context.Context, translation *Translation) (*Translation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := translation.Clone()
	if _, ok := m.translations[stored.ID]; !ok {
		m.order = append(m.order, stored.ID)
	}
	m.translations[stored.ID] = stored
	return stored.Clone(), nil
}

func (m *MemoryRepository) GetByID(_ context.Context, id string) (*Translation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	translation, ok := m.translations[id]
	if !ok {
		return nil, notFoundByID(id)
	}
	return translation.Clone(), nil
}

func (m *MemoryRepository) FindByEntityAndLocale(_ context.Context, entityType domain.EntityType, entityID, locale string) (*Translation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, id := range m.order {
		t := m.translations[id]
		if t.EntityType == entityType && t.EntityID == entityID && t.Locale == locale {
			return t.Clone(), nil
		}
	}
	return nil, notFoundByKey(entityType, entityID, locale)
}

func (m *MemoryRepository) ListByEntity(_ context.Context, entityType domain.EntityType, entityID string) ([]*Translation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []*Translation{}
	for _, id := range m.order {
		if t := m.translations[id]; t.EntityType == entityType && t.EntityID == entityID {
			out = append(out, t.Clone())
		}
	}
	return out, nil
}

func (m *MemoryRepository) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.translations[id]; !ok {
		return notFoundByID(id)
	}
	delete(m.translations, id)
	for i, existing := range m.order {
		if existing == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}
