package content

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-polycontent/internal/versions"
)

// BunRecordRepository stores records with bun. It accepts a bun.IDB so it
// can be bound to a transaction.
type BunRecordRepository struct {
	db bun.IDB
}

var _ RecordRepository = (*BunRecordRepository)(nil)

func NewBunRecordRepository(db bun.IDB) *BunRecordRepository {
	return &BunRecordRepository{db: db}
}

func (r *BunRecordRepository) Create(ctx context.Context, record *Record) (*Record, error) {
	exists, err := r.db.NewSelect().
		Model((*Record)(nil)).
		Where("?TableAlias.id = ?", record.ID).
		Exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("content: check existing: %w", err)
	}
	if exists {
		return nil, ErrContentExists
	}
	stored := record.Clone()
	if _, err := r.db.NewInsert().Model(stored).Exec(ctx); err != nil {
		return nil, fmt.Errorf("content: insert: %w", err)
	}
	return stored.Clone(), nil
}

func (r *BunRecordRepository) GetByID(ctx context.Context, id string) (*Record, error) {
	record := new(Record)
	err := r.db.NewSelect().Model(record).Where("?TableAlias.id = ?", id).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("content: get: %w", err)
	}
	return record, nil
}

func (r *BunRecordRepository) Update(ctx context.Context, record *Record) (*Record, error) {
	stored := record.Clone()
	res, err := r.db.NewUpdate().
		Model(stored).
		Column("content_type_id", "status", "data", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("content: update: %w", err)
	}
	if affected(res) == 0 {
		return nil, notFound(record.ID)
	}
	return stored.Clone(), nil
}

func (r *BunRecordRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.NewDelete().
		Model((*Record)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("content: delete: %w", err)
	}
	if affected(res) == 0 {
		return notFound(id)
	}
	return nil
}

func (r *BunRecordRepository) List(ctx context.Context) ([]*Record, error) {
	var records []*Record
	err := r.db.NewSelect().
		Model(&records).
		OrderExpr("?TableAlias.created_at ASC, ?TableAlias.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("content: list: %w", err)
	}
	return records, nil
}

func affected(res sql.Result) int64 {
	if res == nil {
		return 0
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0
	}
	return n
}

// BunStore runs record writes and ledger appends in one database
// transaction.
type BunStore struct {
	db       *bun.DB
	records  *BunRecordRepository
	versions *versions.BunRepository
}

var _ Store = (*BunStore)(nil)

func NewBunStore(db *bun.DB) *BunStore {
	return &BunStore{
		db:       db,
		records:  NewBunRecordRepository(db),
		versions: versions.NewBunRepository(db),
	}
}

func (s *BunStore) Records() RecordRepository      { return s.records }
func (s *BunStore) Versions() versions.Repository { return s.versions }

func (s *BunStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, Tx{
			Records:  NewBunRecordRepository(tx),
			Versions: versions.NewBunRepository(tx),
		})
	})
}
