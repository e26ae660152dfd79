package content

import (
	"context"

	"github.com/goliatone/go-polycontent/internal/versions"
)

// RecordRepository persists live records. Missing ids yield *NotFoundError.
type RecordRepository interface {
	Create(ctx context.Context, record *Record) (*Record, error)
	GetByID(ctx context.Context, id string) (*Record, error)
	Update(ctx context.Context, record *Record) (*Record, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*Record, error)
}

// Tx exposes the repositories bound to one unit of work.
type Tx struct {
	Records  RecordRepository
	Versions versions.Repository
}

// Store groups the record repository and the ledger, and runs writes that
// touch both atomically: either every write inside RunInTx lands or none do.
type Store interface {
	Records() RecordRepository
	Versions() versions.Repository
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}
