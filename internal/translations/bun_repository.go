package translations

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

	"github.com/goliatone/go-polycontent/internal/domain"
	"github.com/goliatone/go-polycontent/internal/identity"
)

// TranslationModel is the storage row for a translation overlay.
type TranslationModel struct {
	bun.BaseModel `bun:"table:content_translations,alias:ctr"`

	UID           uuid.UUID      `bun:"id,pk,type:uuid"`
	TranslationID string         `bun:"translation_id,notnull,unique"`
	EntityType    string         `bun:"entity_type,notnull"`
	EntityID      string         `bun:"entity_id,notnull"`
	Locale        string         `bun:"locale,notnull"`
	Fields        map[string]any `bun:"fields,type:jsonb,notnull"`
	CreatedAt     time.Time      `bun:"created_at,notnull"`
	UpdatedAt     time.Time      `bun:"updated_at,notnull"`
}

func toModel(t *Translation) *TranslationModel {
	fields := t.Clone().Fields
	if fields == nil {
		fields = map[string]any{}
	}
	return &TranslationModel{
		UID:           identity.TranslationUUID(t.ID),
		TranslationID: t.ID,
		EntityType:    string(t.EntityType),
		EntityID:      t.EntityID,
		Locale:        t.Locale,
		Fields:        fields,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}

func (m *TranslationModel) toDomain() *Translation {
	return (&Translation{
		ID:         m.TranslationID,
		EntityType: domain.EntityType(m.EntityType),
		EntityID:   m.EntityID,
		Locale:     m.Locale,
		Fields:     m.Fields,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}).Clone()
}

func NewTranslationModelRepository(db *bun.DB) repository.Repository[*TranslationModel] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*TranslationModel]{
		NewRecord: func() *TranslationModel { return &TranslationModel{} },
		GetID: func(m *TranslationModel) uuid.UUID {
			return m.UID
		},
		SetID: func(m *TranslationModel, id uuid.UUID) {
			m.UID = id
		},
		GetIdentifier: func() string {
			return "translation_id"
		},
		GetIdentifierValue: func(m *TranslationModel) string {
			return m.TranslationID
		},
	})
}

// translationNamespace matches the namespace repositorycache derives from TranslationModel.
const translationNamespace = "translation_model"

type BunRepository struct {
	repo         repository.Repository[*TranslationModel]
	// base serves filtered lists; the cache keys SelectRawProcessor closures
	// by code pointer so their bound arguments never reach the key.
	base         repository.Repository[*TranslationModel]
	cacheService cache.CacheService
	cachePrefix  string
}

var _ Repository = (*BunRepository)(nil)

func NewBunRepository(db *bun.DB) *BunRepository {
	return NewBunRepositoryWithCache(db, nil, nil)
}

func NewBunRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunRepository {
	base := NewTranslationModelRepository(db)
	r := &BunRepository{repo: base, base: base}
	if cacheService != nil && serializer != nil {
		r.repo = repositorycache.New(base, cacheService, serializer)
		r.cacheService = cacheService
		r.cachePrefix = translationNamespace + cache.KeySeparator
	}
	return r
}

func (r *BunRepository) Save(ctx context.Context, translation *Translation) (*Translation, error) {
	var (
		saved *TranslationModel
		err   error
	)
	if _, lookupErr := r.repo.GetByIdentifier(ctx, translation.ID); lookupErr == nil {
		saved, err = r.repo.Update(ctx, toModel(translation))
	} else if goerrors.IsCategory(lookupErr, repository.CategoryDatabaseNotFound) {
		saved, err = r.repo.Create(ctx, toModel(translation))
	} else {
		return nil, mapRepositoryError(lookupErr, translation.ID)
	}
	if err != nil {
		return nil, mapRepositoryError(err, translation.ID)
	}
	if err := r.InvalidateCache(ctx); err != nil {
		return nil, err
	}
	return saved.toDomain(), nil
}

func (r *BunRepository) GetByID(ctx context.Context, id string) (*Translation, error) {
	record, err := r.repo.GetByIdentifier(ctx, id)
	if err != nil {
		return nil, mapRepositoryError(err, id)
	}
	return record.toDomain(), nil
}

func (r *BunRepository) FindByEntityAndLocale(ctx context.Context, entityType domain.EntityType, entityID, locale string) (*Translation, error) {
	records, _, err := r.base.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				Where("?TableAlias.entity_type = ?", string(entityType)).
				Where("?TableAlias.entity_id = ?", entityID).
				Where("?TableAlias.locale = ?", locale).
				OrderExpr("?TableAlias.created_at ASC").
				Limit(1)
		}),
	)
	if err != nil {
		return nil, mapRepositoryError(err, entityID)
	}
	if len(records) == 0 {
		return nil, notFoundByKey(entityType, entityID, locale)
	}
	return records[0].toDomain(), nil
}

func (r *BunRepository) ListByEntity(ctx context.Context, entityType domain.EntityType, entityID string) ([]*Translation, error) {
	records, _, err := r.base.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				Where("?TableAlias.entity_type = ?", string(entityType)).
				Where("?TableAlias.entity_id = ?", entityID).
				OrderExpr("?TableAlias.created_at ASC, ?TableAlias.locale ASC")
		}),
	)
	if err != nil {
		return nil, mapRepositoryError(err, entityID)
	}
	out := make([]*Translation, 0, len(records))
	for _, record := range records {
		out = append(out, record.toDomain())
	}
	return out, nil
}

func (r *BunRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	if err := r.repo.Delete(ctx, &TranslationModel{UID: identity.TranslationUUID(id)}); err != nil {
		return mapRepositoryError(err, id)
	}
	return r.InvalidateCache(ctx)
}

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
	return fmt.Errorf("translation repository: %w", err)
}
