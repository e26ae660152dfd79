package schema

import (
	"context"
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

// ContentTypeModel is the storage row for a content type. The primary key is
// derived from the caller supplied id so lookups by id hit the unique
// type_id column.
type ContentTypeModel struct {
	bun.BaseModel `bun:"table:content_types,alias:ct"`

	UID       uuid.UUID `bun:"id,pk,type:uuid"`
	TypeID    string    `bun:"type_id,notnull,unique"`
	Code      string    `bun:"code,notnull"`
	Label     string    `bun:"label,notnull"`
	Fields    []Field   `bun:"fields,type:jsonb,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

func toModel(ct *ContentType) *ContentTypeModel {
	return &ContentTypeModel{
		UID:       identity.ContentTypeUUID(ct.ID),
		TypeID:    ct.ID,
		Code:      ct.Code,
		Label:     ct.Label,
		Fields:    ct.Clone().Fields,
		CreatedAt: ct.CreatedAt,
		UpdatedAt: ct.UpdatedAt,
	}
}

func (m *ContentTypeModel) toDomain() *ContentType {
	if m == nil {
		return nil
	}
	ct := &ContentType{
		ID:        m.TypeID,
		Code:      m.Code,
		Label:     m.Label,
		Fields:    m.Fields,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	if ct.Fields == nil {
		ct.Fields = []Field{}
	}
	return ct.Clone()
}

// NewContentTypeModelRepository builds the go-repository-bun repository for
// content type rows.
func NewContentTypeModelRepository(db *bun.DB) repository.Repository[*ContentTypeModel] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*ContentTypeModel]{
		NewRecord: func() *ContentTypeModel { return &ContentTypeModel{} },
		GetID: func(m *ContentTypeModel) uuid.UUID {
			return m.UID
		},
		SetID: func(m *ContentTypeModel, id uuid.UUID) {
			m.UID = id
		},
		GetIdentifier: func() string {
			return "type_id"
		},
		GetIdentifierValue: func(m *ContentTypeModel) string {
			return m.TypeID
		},
	})
}

// contentTypeNamespace matches the namespace repositorycache derives from ContentTypeModel.
const contentTypeNamespace = "content_type_model"

// BunRepository stores content types through go-repository-bun, optionally
// behind a go-repository-cache layer.
type BunRepository struct {
	repo         repository.Repository[*ContentTypeModel]
	// base serves filtered lists; the cache keys SelectRawProcessor closures
	// by code pointer so their bound arguments never reach the key.
	base         repository.Repository[*ContentTypeModel]
	cacheService cache.CacheService
	cachePrefix  string
}

var _ Repository = (*BunRepository)(nil)

// NewBunRepository returns an uncached repository.
func NewBunRepository(db *bun.DB) *BunRepository {
	return NewBunRepositoryWithCache(db, nil, nil)
}

// NewBunRepositoryWithCache wraps reads in the cache when both cache
// collaborators are provided.
func NewBunRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunRepository {
	base := NewContentTypeModelRepository(db)
	r := &BunRepository{repo: base, base: base}
	if cacheService != nil && serializer != nil {
		r.repo = repositorycache.New(base, cacheService, serializer)
		r.cacheService = cacheService
		r.cachePrefix = contentTypeNamespace + cache.KeySeparator
	}
	return r
}

func (r *BunRepository) Create(ctx context.Context, ct *ContentType) (*ContentType, error) {
	created, err := r.repo.Create(ctx, toModel(ct))
	if err != nil {
		return nil, mapRepositoryError(err, ct.ID)
	}
	return created.toDomain(), nil
}

func (r *BunRepository) GetByID(ctx context.Context, id string) (*ContentType, error) {
	record, err := r.repo.GetByIdentifier(ctx, id)
	if err != nil {
		return nil, mapRepositoryError(err, id)
	}
	return record.toDomain(), nil
}

func (r *BunRepository) Update(ctx context.Context, ct *ContentType) (*ContentType, error) {
	updated, err := r.repo.Update(ctx, toModel(ct))
	if err != nil {
		return nil, mapRepositoryError(err, ct.ID)
	}
	if err := r.InvalidateCache(ctx); err != nil {
		return nil, err
	}
	return updated.toDomain(), nil
}

func (r *BunRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	if err := r.repo.Delete(ctx, &ContentTypeModel{UID: identity.ContentTypeUUID(id)}); err != nil {
		return mapRepositoryError(err, id)
	}
	return r.InvalidateCache(ctx)
}

func (r *BunRepository) List(ctx context.Context) ([]*ContentType, error) {
	records, _, err := r.base.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("?TableAlias.created_at ASC, ?TableAlias.type_id ASC")
		}),
	)
	if err != nil {
		return nil, err
	}
	out := make([]*ContentType, 0, len(records))
	for _, record := range records {
		out = append(out, record.toDomain())
	}
	return out, nil
}

// InvalidateCache drops cached content type reads.
func (r *BunRepository) InvalidateCache(ctx context.Context) error {
	if r.cacheService == nil || r.cachePrefix == "" {
		return nil
	}
	return r.cacheService.DeleteByPrefix(ctx, r.cachePrefix)
}

func mapRepositoryError(err error, id string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{ID: id}
	}
	return fmt.Errorf("content type repository: %w", err)
}
