package versions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-polycontent/internal/domain"
)

// BunRepository stores ledger entries with bun. It accepts a bun.IDB so the
// same code runs against the database or inside a transaction.
type BunRepository struct {
	db bun.IDB
}

var _ Repository = (*BunRepository)(nil)

func NewBunRepository(db bun.IDB) *BunRepository {
	return &BunRepository{db: db}
}

func (r *BunRepository) Append(ctx context.Context, entry *Entry) (*Entry, error) {
	stored := entry.Clone()

	var last int
	err := r.db.NewSelect().
		Model((*Entry)(nil)).
		ColumnExpr("COALESCE(MAX(?TableAlias.sequence), 0)").
		Where("?TableAlias.entity_type = ?", stored.EntityType).
		Where("?TableAlias.entity_id = ?", stored.EntityID).
		Scan(ctx, &last)
	if err != nil {
		return nil, fmt.Errorf("versions: next sequence: %w", err)
	}
	stored.Sequence = last + 1

	if _, err := r.db.NewInsert().Model(stored).Exec(ctx); err != nil {
		return nil, fmt.Errorf("versions: append: %w", err)
	}
	return stored.Clone(), nil
}

func (r *BunRepository) ListByEntity(ctx context.Context, entityType domain.EntityType, entityID string) ([]*Entry, error) {
	var entries []*Entry
	err := r.db.NewSelect().
		Model(&entries).
		Where("?TableAlias.entity_type = ?", entityType).
		Where("?TableAlias.entity_id = ?", entityID).
		OrderExpr("?TableAlias.sequence ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("versions: list by entity: %w", err)
	}
	return entries, nil
}

func (r *BunRepository) GetByID(ctx context.Context, id string) (*Entry, error) {
	entry := new(Entry)
	err := r.db.NewSelect().Model(entry).Where("?TableAlias.id = ?", id).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{VersionID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("versions: get: %w", err)
	}
	return entry, nil
}

func (r *BunRepository) List(ctx context.Context) ([]*Entry, error) {
	var entries []*Entry
	err := r.db.NewSelect().
		Model(&entries).
		OrderExpr("?TableAlias.created_at ASC, ?TableAlias.entity_id ASC, ?TableAlias.sequence ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("versions: list: %w", err)
	}
	return entries, nil
}
