package versions

import (
	"context"

	"github.com/goliatone/go-polycontent/internal/domain"
)

// Repository is the append-only ledger store. Entries are never updated or
// deleted.
type Repository interface {
	// Append stores entry, assigning its Sequence, and returns the stored copy.
	Append(ctx context.Context, entry *Entry) (*Entry, error)
	// ListByEntity returns the entity's entries in ledger order.
	ListByEntity(ctx context.Context, entityType domain.EntityType, entityID string) ([]*Entry, error)
	GetByID(ctx context.Context, id string) (*Entry, error)
	// List returns every entry in insertion order.
	List(ctx context.Context) ([]*Entry, error)
}
