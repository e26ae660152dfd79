package variants

import (
	"context"
	"errors"
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-polycontent/internal/identity"
)

// VariantModel is the storage row for a variant.
type VariantModel struct {
	bun.BaseModel `bun:"table:content_variants,alias:cvar"`

	UID       uuid.UUID      `bun:"id,pk,type:uuid"`
	VariantID string         `bun:"variant_id,notnull,unique"`
	ContentID string         `bun:"content_id,notnull"`
	Dimension string         `bun:"dimension,notnull"`
	Overrides map[string]any `bun:"overrides,type:jsonb,notnull"`
	CreatedAt time.Time      `bun:"created_at,notnull"`
	UpdatedAt time.Time      `bun:"updated_at,notnull"`
}

func toModel(v *Variant) *VariantModel {
	overrides := v.Clone().Overrides
	if overrides == nil {
		overrides = map[string]any{}
	}
	return &VariantModel{
		UID:       identity.VariantUUID(v.ID),
		VariantID: v.ID,
		ContentID: v.ContentID,
		Dimension: v.Dimension,
		Overrides: overrides,
		CreatedAt: v.CreatedAt,
		UpdatedAt: v.UpdatedAt,
	}
}

func (m *VariantModel) toDomain() *Variant {
	return (&Variant{
		ID:        m.VariantID,
		ContentID: m.ContentID,
		Dimension: m.Dimension,
		Overrides: m.Overrides,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}).Clone()
}

// NewVariantModelRepository builds the go-repository-bun repository for
// variant rows, identified by variant_id.
func NewVariantModelRepository(db *bun.DB) repository.Repository[*VariantModel] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*VariantModel]{
		NewRecord: func() *VariantModel { return &VariantModel{} },
		GetID: func(m *VariantModel) uuid.UUID {
			return m.UID
		},
		SetID: func(m *VariantModel, id uuid.UUID) {
			m.UID = id
		},
		GetIdentifier: func() string {
			return "variant_id"
		},
		GetIdentifierValue: func(m *VariantModel) string {
			return m.VariantID
		},
	})
}

// variantNamespace matches the namespace repositorycache derives from VariantModel.
const variantNamespace = "variant_model"

// BunRepository stores variants through go-repository-bun with an optional
// read cache.
type BunRepository struct {
	repo         repository.Repository[*VariantModel]
	// base serves filtered lists; the cache keys SelectRawProcessor closures
	// by code pointer so their bound arguments never reach the key.
	base         repository.Repository[*VariantModel]
	cacheService cache.CacheService
	cachePrefix  string
}

var _ Repository = (*BunRepository)(nil)

func NewBunRepository(db *bun.DB) *BunRepository {
	return NewBunRepositoryWithCache(db, nil, nil)
}

func NewBunRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunRepository {
	base := NewVariantModelRepository(db)
	r := &BunRepository{repo: base, base: base}
	if cacheService != nil && serializer != nil {
		r.repo = repositorycache.New(base, cacheService, serializer)
		r.cacheService = cacheService
		r.cachePrefix = variantNamespace + cache.KeySeparator
	}
	return r
}

func (r *BunRepository) Save(ctx context.Context, variant *Variant) (*Variant, error) {
	_, err := r.repo.GetByIdentifier(ctx, variant.ID)
	switch {
	case err == nil:
		updated, err := r.repo.Update(ctx, toModel(variant))
		if err != nil {
			return nil, mapRepositoryError(err, variant.ID)
		}
		if err := r.InvalidateCache(ctx); err != nil {
			return nil, err
		}
		return updated.toDomain(), nil
	case goerrors.IsCategory(err, repository.CategoryDatabaseNotFound):
		created, err := r.repo.Create(ctx, toModel(variant))
		if err != nil {
			return nil, mapRepositoryError(err, variant.ID)
		}
		if err := r.InvalidateCache(ctx); err != nil {
			return nil, err
		}
		return created.toDomain(), nil
	default:
		return nil, mapRepositoryError(err, variant.ID)
	}
}

func (r *BunRepository) GetByID(ctx context.Context, id string) (*Variant, error) {
	record, err := r.repo.GetByIdentifier(ctx, id)
	if err != nil {
		return nil, mapRepositoryError(err, id)
	}
	return record.toDomain(), nil
}

func (r *BunRepository) FindByContentAndDimension(ctx context.Context, contentID, dimension string) (*Variant, error) {
	records, _, err := r.base.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				Where("?TableAlias.content_id = ?", contentID).
				Where("?TableAlias.dimension = ?", dimension).
				OrderExpr("?TableAlias.created_at ASC, ?TableAlias.variant_id ASC").
				Limit(1)
		}),
	)
	if err != nil {
		return nil, mapRepositoryError(err, contentID)
	}
	if len(records) == 0 {
		return nil, notFoundByDimension(contentID, dimension)
	}
	return records[0].toDomain(), nil
}

func (r *BunRepository) ListByContent(ctx context.Context, contentID string) ([]*Variant, error) {
	records, _, err := r.base.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				Where("?TableAlias.content_id = ?", contentID).
				OrderExpr("?TableAlias.created_at ASC, ?TableAlias.variant_id ASC")
		}),
	)
	if err != nil {
		return nil, mapRepositoryError(err, contentID)
	}
	out := make([]*Variant, 0, len(records))
	for _, record := range records {
		out = append(out, record.toDomain())
	}
	return out, nil
}

func (r *BunRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	if err := r.repo.Delete(ctx, &VariantModel{UID: identity.VariantUUID(id)}); err != nil {
		return mapRepositoryError(err, id)
	}
	return r.InvalidateCache(ctx)
}

// InvalidateCache drops cached variant reads.
func (r *BunRepository) InvalidateCache(ctx context.Context) error {
	if r.cacheService == nil || r.cachePrefix == "" {
		return nil
	}
	return r.cacheService.DeleteByPrefix(ctx, r.cachePrefix)
}

func mapRepositoryError(err error, key string) error {
	if err == nil {
		return nil
	}
	var notFound *NotFoundError
	if errors.As(err, &notFound) {
		return err
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return notFoundByID(key)
	}
	return fmt.Errorf("variant repository: %w", err)
}
